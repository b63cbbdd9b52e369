// internal/server/api.go
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/models"
	"ufunda-bots/pkg/registry"
)

// API serves the REST status surface the external bots and the dashboard
// poll: live bot status reporting and application CRUD over the StatusStore.
type API struct {
	store    StatusStore
	manifest *registry.BotManifest
	logger   logger.Logger
}

func NewAPI(store StatusStore, manifest *registry.BotManifest, log logger.Logger) *API {
	return &API{
		store:    store,
		manifest: manifest,
		logger:   log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Register mounts the API routes on a mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/bot/status", a.handleBotStatus)
	mux.HandleFunc("/bots", a.handleListBots)
	mux.HandleFunc("/applications", a.handleListApplications)
	mux.HandleFunc("/application/", a.handleApplication)
}

// handleBotStatus accepts POST {bot_id, university_name, status,
// current_task} from an externally-run bot reporting its own progress.
func (a *API) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var st models.BotStatus
	if err := json.NewDecoder(r.Body).Decode(&st); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed body"})
		return
	}
	if st.BotID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bot_id is required"})
		return
	}
	if st.LastUpdated.IsZero() {
		st.LastUpdated = time.Now().UTC()
	}

	if err := a.store.SaveBotStatus(r.Context(), st); err != nil {
		a.logger.Error("bot status save failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// botView joins one manifest entry with its live status.
type botView struct {
	registry.Bot
	LiveStatus  string `json:"live_status"`
	CurrentTask string `json:"current_task,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
}

func (a *API) handleListBots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	statuses, err := a.store.ListBotStatuses(r.Context())
	if err != nil {
		a.logger.Error("bot status list failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	live := make(map[string]models.BotStatus, len(statuses))
	for _, st := range statuses {
		live[st.BotID] = st
	}

	out := make([]botView, 0, len(a.manifest.Bots))
	for _, bot := range a.manifest.Bots {
		view := botView{Bot: bot, LiveStatus: models.BotStatusIdle}
		if st, ok := live[bot.ID]; ok {
			view.LiveStatus = st.Status
			view.CurrentTask = st.CurrentTask
			view.LastUpdated = st.LastUpdated.Format(time.RFC3339)
		}
		out = append(out, view)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bots": out})
}

func (a *API) handleListApplications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	apps, err := a.store.ListApplications(r.Context())
	if err != nil {
		a.logger.Error("application list failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"applications": apps})
}

// handleApplication routes GET /application/{id} and
// POST /application/{id}/update.
func (a *API) handleApplication(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/application/")
	if rest == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "application id required"})
		return
	}

	if id, ok := strings.CutSuffix(rest, "/update"); ok {
		a.updateApplication(w, r, id)
		return
	}
	a.getApplication(w, r, rest)
}

func (a *API) getApplication(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	app, ok, err := a.store.GetApplication(r.Context(), id)
	if err != nil {
		a.logger.Error("application fetch failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "application not found"})
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// updateApplication takes status and optional error_message as query
// parameters, the shape the externally-run bots already post.
func (a *API) updateApplication(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}
	errorMessage := r.URL.Query().Get("error_message")

	if err := a.store.UpdateApplicationStatus(r.Context(), id, status, errorMessage); err != nil {
		if err == ErrNotFound {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "application not found"})
			return
		}
		a.logger.Error("application update failed", map[string]interface{}{"error": err.Error()})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "store failure"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
