// internal/notify/audit.go
package notify

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AuditLog appends newline-delimited JSON records {ts, event, data} to a
// file. It doubles as a Sink so every bot result and run completion lands in
// the audit trail.
type AuditLog struct {
	path string
	mu   sync.Mutex
}

func NewAuditLog(path string) *AuditLog {
	return &AuditLog{path: path}
}

type auditRecord struct {
	TS    float64                `json:"ts"`
	Event string                 `json:"event"`
	Data  map[string]interface{} `json:"data"`
}

// Append writes one audit record. The file is opened append-only per write
// so concurrent orchestrator and server writers interleave whole lines.
func (a *AuditLog) Append(event string, data map[string]interface{}) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	rec := auditRecord{
		TS:    float64(time.Now().UnixNano()) / 1e9,
		Event: event,
		Data:  data,
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

func (a *AuditLog) Name() string { return "audit" }

func (a *AuditLog) PublishBotResult(ctx context.Context, ev BotResultEvent) error {
	data := map[string]interface{}{
		"applicant_ref": ev.ApplicantRef,
		"bot":           ev.Bot,
		"status":        ev.Status,
	}
	if ev.Error != "" {
		data["error"] = ev.Error
	}
	return a.Append("bot_result", data)
}

func (a *AuditLog) PublishRunComplete(ctx context.Context, ev RunCompleteEvent) error {
	return a.Append("run_complete", map[string]interface{}{
		"applicant_ref": ev.ApplicantRef,
		"summary":       ev.Summary,
	})
}
