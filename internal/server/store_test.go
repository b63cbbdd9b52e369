package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufunda-bots/internal/models"
)

func testApplication(id string, createdAt time.Time) models.Application {
	return models.Application{
		ID:           id,
		ApplicantRef: "ref-" + id,
		Bots:         []string{"gmail", "wits"},
		Status:       models.ApplicationAccepted,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// storeUnderTest runs the shared StatusStore contract against an
// implementation.
func storeUnderTest(t *testing.T, store StatusStore) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("application lifecycle", func(t *testing.T) {
		require.NoError(t, store.SaveApplication(ctx, testApplication("app-1", now)))

		app, ok, err := store.GetApplication(ctx, "app-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.ApplicationAccepted, app.Status)

		require.NoError(t, store.UpdateApplicationStatus(ctx, "app-1", models.ApplicationCompleted, "Payment error"))
		app, ok, err = store.GetApplication(ctx, "app-1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, models.ApplicationCompleted, app.Status)
		assert.Equal(t, "Payment error", app.ErrorMessage)
	})

	t.Run("missing application", func(t *testing.T) {
		_, ok, err := store.GetApplication(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, ok)

		assert.ErrorIs(t, store.UpdateApplicationStatus(ctx, "ghost", models.ApplicationRunning, ""), ErrNotFound)
	})

	t.Run("list applications", func(t *testing.T) {
		require.NoError(t, store.SaveApplication(ctx, testApplication("app-2", now.Add(time.Minute))))

		apps, err := store.ListApplications(ctx)
		require.NoError(t, err)
		assert.Len(t, apps, 2)
	})

	t.Run("bot statuses", func(t *testing.T) {
		require.NoError(t, store.SaveBotStatus(ctx, models.BotStatus{
			BotID:       "wits",
			Status:      models.BotStatusRunning,
			CurrentTask: "uploading documents",
			LastUpdated: now,
		}))
		require.NoError(t, store.SaveBotStatus(ctx, models.BotStatus{
			BotID:       "wits",
			Status:      models.BotStatusOK,
			LastUpdated: now.Add(time.Minute),
		}))

		statuses, err := store.ListBotStatuses(ctx)
		require.NoError(t, err)
		require.Len(t, statuses, 1, "second save must replace the first")
		assert.Equal(t, models.BotStatusOK, statuses[0].Status)
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	storeUnderTest(t, NewRedisStore(client))
}

// miniredis cannot simulate backend failures, so the error paths run against
// a mocked client.
func TestRedisStorePropagatesBackendErrors(t *testing.T) {
	ctx := context.Background()
	backendErr := stderrors.New("connection refused")

	t.Run("get", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(applicationKeyPrefix + "app-1").SetErr(backendErr)

		_, _, err := NewRedisStore(client).GetApplication(ctx, "app-1")
		assert.ErrorIs(t, err, backendErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectSMembers(applicationIndexKey).SetErr(backendErr)

		_, err := NewRedisStore(client).ListApplications(ctx)
		assert.ErrorIs(t, err, backendErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("save indexes after set", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		app := testApplication("app-1", time.Now().UTC())
		data, err := json.Marshal(app)
		require.NoError(t, err)
		mock.ExpectSet(applicationKeyPrefix+"app-1", data, 0).SetVal("OK")
		mock.ExpectSAdd(applicationIndexKey, "app-1").SetVal(1)

		require.NoError(t, NewRedisStore(client).SaveApplication(ctx, app))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMemoryStoreListOrderedByCreation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, store.SaveApplication(ctx, testApplication("later", base.Add(time.Hour))))
	require.NoError(t, store.SaveApplication(ctx, testApplication("earlier", base)))

	apps, err := store.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "earlier", apps[0].ID)
	assert.Equal(t, "later", apps[1].ID)
}
