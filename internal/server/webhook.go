// internal/server/webhook.go
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/common/metrics"
	"ufunda-bots/internal/common/validation"
	"ufunda-bots/internal/dispatch"
	"ufunda-bots/internal/models"
)

// webhookSchema is the contract for inbound form submissions: the form
// service posts the collected applicant fields under "fields", optionally
// narrowing the bot set and carrying its own submission id.
var webhookSchema = []byte(`{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["fields"],
	"properties": {
		"form": {"type": "string"},
		"submission_id": {"type": "string"},
		"fields": {"type": "object"},
		"bots": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`)

type webhookPayload struct {
	Form         string                 `json:"form"`
	SubmissionID string                 `json:"submission_id"`
	Fields       map[string]interface{} `json:"fields"`
	Bots         []string               `json:"bots"`
}

// WebhookHandler accepts form-submission notifications, validates them, and
// detaches the run onto the trigger queue. The HTTP response never waits for
// bot execution.
type WebhookHandler struct {
	queue  *dispatch.Queue
	store  StatusStore
	logger logger.Logger
}

func NewWebhookHandler(queue *dispatch.Queue, store StatusStore, log logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		queue:  queue,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "webhook"}),
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		metrics.WebhookTriggers.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable body"})
		return
	}

	result, err := validation.ValidateBytes(webhookSchema, body)
	if err != nil {
		h.logger.Error("schema validation errored", map[string]interface{}{"error": err.Error()})
		metrics.WebhookTriggers.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payload validation failed"})
		return
	}
	if !result.Valid {
		h.logger.Warn("webhook payload rejected", map[string]interface{}{"errors": result.Errors})
		metrics.WebhookTriggers.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "payload validation failed",
			"detail": result.Errors,
		})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.WebhookTriggers.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed payload"})
		return
	}

	applicant := models.Applicant(payload.Fields)
	if applicant.Ref() == "" && payload.SubmissionID != "" {
		applicant["applicant_ref"] = payload.SubmissionID
	}

	appID := uuid.NewString()
	now := time.Now().UTC()
	app := models.Application{
		ID:           appID,
		ApplicantRef: applicant.Ref(),
		Bots:         payload.Bots,
		Status:       models.ApplicationAccepted,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.SaveApplication(r.Context(), app); err != nil {
		h.logger.Error("could not record application", map[string]interface{}{"error": err.Error()})
	}

	ticket, err := h.queue.Submit(appID, applicant, payload.Bots)
	if err != nil {
		metrics.WebhookTriggers.WithLabelValues("rejected").Inc()
		h.logger.Warn("trigger queue full, rejecting webhook", map[string]interface{}{"application_id": appID})
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "trigger queue full"})
		return
	}

	go h.trackRun(appID, ticket)

	metrics.WebhookTriggers.WithLabelValues("accepted").Inc()
	h.logger.Info("webhook accepted", map[string]interface{}{
		"application_id": appID,
		"applicant_ref":  app.ApplicantRef,
		"bots":           payload.Bots,
	})
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":         "accepted",
		"application_id": appID,
	})
}

// trackRun moves the application record through running and completed as the
// queued dispatch progresses.
func (h *WebhookHandler) trackRun(appID string, ticket *dispatch.Ticket) {
	ctx := context.Background()
	if err := h.store.UpdateApplicationStatus(ctx, appID, models.ApplicationRunning, ""); err != nil {
		h.logger.Warn("status update failed", map[string]interface{}{"application_id": appID, "error": err.Error()})
	}

	<-ticket.Done()

	errorMessage := ""
	if rec := ticket.Record(); rec != nil {
		for _, res := range rec.Results() {
			if res.IsError() {
				errorMessage = res.Err
				break
			}
		}
	}
	if err := h.store.UpdateApplicationStatus(ctx, appID, models.ApplicationCompleted, errorMessage); err != nil {
		h.logger.Warn("status update failed", map[string]interface{}{"application_id": appID, "error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
