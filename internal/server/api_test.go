package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/models"
	"ufunda-bots/pkg/registry"
)

func testManifest() *registry.BotManifest {
	return &registry.BotManifest{
		Version: "1.0.0",
		Bots: []registry.Bot{
			{ID: "gmail", DisplayName: "Gmail Account Creator", Category: "account", Status: "active"},
			{ID: "wits", DisplayName: "University of the Witwatersrand", Category: "university", Status: "active"},
		},
	}
}

func newTestAPI(t *testing.T, store StatusStore) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewAPI(store, testManifest(), logger.NewTestLogger(t)).Register(mux)
	return mux
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestBotStatusReport(t *testing.T) {
	store := NewMemoryStore()
	mux := newTestAPI(t, store)

	payload := `{"bot_id":"wits","university_name":"Wits","status":"running","current_task":"uploading documents"}`
	req := httptest.NewRequest(http.MethodPost, "/bot/status", strings.NewReader(payload))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	statuses, err := store.ListBotStatuses(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	assert.Equal(t, "wits", statuses[0].BotID)
	assert.Equal(t, "running", statuses[0].Status)
	assert.False(t, statuses[0].LastUpdated.IsZero(), "missing timestamp must be defaulted")
}

func TestBotStatusRequiresBotID(t *testing.T) {
	mux := newTestAPI(t, NewMemoryStore())

	req := httptest.NewRequest(http.MethodPost, "/bot/status", strings.NewReader(`{"status":"running"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestListBotsJoinsManifestWithLiveStatus(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.SaveBotStatus(context.Background(), models.BotStatus{
		BotID:       "wits",
		Status:      models.BotStatusRunning,
		CurrentTask: "payment",
		LastUpdated: time.Now().UTC(),
	}))
	mux := newTestAPI(t, store)

	req := httptest.NewRequest(http.MethodGet, "/bots", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	botList, ok := body["bots"].([]interface{})
	require.True(t, ok)
	require.Len(t, botList, 2)

	byID := map[string]map[string]interface{}{}
	for _, raw := range botList {
		bot := raw.(map[string]interface{})
		byID[bot["id"].(string)] = bot
	}

	assert.Equal(t, "idle", byID["gmail"]["live_status"], "bots without a report default to idle")
	assert.Equal(t, "running", byID["wits"]["live_status"])
	assert.Equal(t, "payment", byID["wits"]["current_task"])
}

func TestGetApplication(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()
	require.NoError(t, store.SaveApplication(context.Background(), testApplication("app-1", now)))
	mux := newTestAPI(t, store)

	req := httptest.NewRequest(http.MethodGet, "/application/app-1", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "app-1", body["id"])
	assert.Equal(t, "accepted", body["status"])
}

func TestGetApplicationNotFound(t *testing.T) {
	mux := newTestAPI(t, NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, "/application/ghost", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateApplication(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.SaveApplication(context.Background(), testApplication("app-1", time.Now().UTC())))
	mux := newTestAPI(t, store)

	req := httptest.NewRequest(http.MethodPost, "/application/app-1/update?status=completed&error_message=Payment+error", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	app, ok, err := store.GetApplication(context.Background(), "app-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.ApplicationCompleted, app.Status)
	assert.Equal(t, "Payment error", app.ErrorMessage)
}

func TestUpdateApplicationValidation(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.SaveApplication(context.Background(), testApplication("app-1", time.Now().UTC())))
	mux := newTestAPI(t, store)

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"missing status", http.MethodPost, "/application/app-1/update", http.StatusBadRequest},
		{"unknown application", http.MethodPost, "/application/ghost/update?status=running", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/application/app-1/update?status=running", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, req)
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestListApplications(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now().UTC()
	require.NoError(t, store.SaveApplication(context.Background(), testApplication("app-1", now)))
	require.NoError(t, store.SaveApplication(context.Background(), testApplication("app-2", now.Add(time.Second))))
	mux := newTestAPI(t, store)

	req := httptest.NewRequest(http.MethodGet, "/applications", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	apps, ok := body["applications"].([]interface{})
	require.True(t, ok)
	assert.Len(t, apps, 2)
}
