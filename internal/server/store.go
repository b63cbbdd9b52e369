// Package server hosts the orchestrator's HTTP surfaces: the inbound
// application webhook and the REST status API, both backed by an explicitly
// owned StatusStore.
package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"ufunda-bots/internal/models"
)

// StatusStore holds application records and live per-bot statuses. The
// in-memory implementation is the default; redis backs it when configured.
type StatusStore interface {
	SaveApplication(ctx context.Context, app models.Application) error
	GetApplication(ctx context.Context, id string) (models.Application, bool, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id, status, errorMessage string) error
	SaveBotStatus(ctx context.Context, st models.BotStatus) error
	ListBotStatuses(ctx context.Context) ([]models.BotStatus, error)
}

// MemoryStore is the volatile default StatusStore.
type MemoryStore struct {
	mu           sync.RWMutex
	applications map[string]models.Application
	botStatuses  map[string]models.BotStatus
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		applications: make(map[string]models.Application),
		botStatuses:  make(map[string]models.BotStatus),
	}
}

func (s *MemoryStore) SaveApplication(ctx context.Context, app models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications[app.ID] = app
	return nil
}

func (s *MemoryStore) GetApplication(ctx context.Context, id string) (models.Application, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.applications[id]
	return app, ok, nil
}

func (s *MemoryStore) ListApplications(ctx context.Context) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Application, 0, len(s.applications))
	for _, app := range s.applications {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateApplicationStatus(ctx context.Context, id, status, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.applications[id]
	if !ok {
		return ErrNotFound
	}
	app.Status = status
	app.ErrorMessage = errorMessage
	app.UpdatedAt = time.Now().UTC()
	s.applications[id] = app
	return nil
}

func (s *MemoryStore) SaveBotStatus(ctx context.Context, st models.BotStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.botStatuses[st.BotID] = st
	return nil
}

func (s *MemoryStore) ListBotStatuses(ctx context.Context) ([]models.BotStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.BotStatus, 0, len(s.botStatuses))
	for _, st := range s.botStatuses {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BotID < out[j].BotID })
	return out, nil
}
