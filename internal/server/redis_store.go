// internal/server/redis_store.go
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"ufunda-bots/internal/models"
)

// ErrNotFound is returned by status updates against an unknown application.
var ErrNotFound = stderrors.New("application not found")

const (
	applicationKeyPrefix = "application:"
	applicationIndexKey  = "applications"
	botStatusKeyPrefix   = "bot_status:"
	botStatusIndexKey    = "bot_statuses"
)

// RedisStore is the redis-backed StatusStore. Records are JSON values keyed
// per id with a set index per type; the cache is volatile by design, the run
// artifacts are the durable record.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) SaveApplication(ctx context.Context, app models.Application) error {
	data, err := json.Marshal(app)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, applicationKeyPrefix+app.ID, data, 0).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, applicationIndexKey, app.ID).Err()
}

func (s *RedisStore) GetApplication(ctx context.Context, id string) (models.Application, bool, error) {
	data, err := s.client.Get(ctx, applicationKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return models.Application{}, false, nil
	}
	if err != nil {
		return models.Application{}, false, err
	}
	var app models.Application
	if err := json.Unmarshal(data, &app); err != nil {
		return models.Application{}, false, err
	}
	return app, true, nil
}

func (s *RedisStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	ids, err := s.client.SMembers(ctx, applicationIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.Application, 0, len(ids))
	for _, id := range ids {
		app, ok, err := s.GetApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, app)
		}
	}
	return out, nil
}

func (s *RedisStore) UpdateApplicationStatus(ctx context.Context, id, status, errorMessage string) error {
	app, ok, err := s.GetApplication(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	app.Status = status
	app.ErrorMessage = errorMessage
	app.UpdatedAt = time.Now().UTC()
	return s.SaveApplication(ctx, app)
}

func (s *RedisStore) SaveBotStatus(ctx context.Context, st models.BotStatus) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, botStatusKeyPrefix+st.BotID, data, 0).Err(); err != nil {
		return err
	}
	return s.client.SAdd(ctx, botStatusIndexKey, st.BotID).Err()
}

func (s *RedisStore) ListBotStatuses(ctx context.Context) ([]models.BotStatus, error) {
	ids, err := s.client.SMembers(ctx, botStatusIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]models.BotStatus, 0, len(ids))
	for _, id := range ids {
		data, err := s.client.Get(ctx, botStatusKeyPrefix+id).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var st models.BotStatus
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
