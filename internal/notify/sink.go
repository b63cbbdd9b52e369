// Package notify implements the outbound notification sinks: dashboard
// webhooks, email and SMS alerting, and the append-only audit log. Delivery
// is at-most-once and best-effort; the aggregator logs and swallows every
// sink failure.
package notify

import "context"

// BotResultEvent is pushed once per collected bot result, as it arrives.
type BotResultEvent struct {
	Event        string                 `json:"event"` // always "bot_result"
	ApplicantRef string                 `json:"applicant_ref"`
	Bot          string                 `json:"bot"`
	Status       string                 `json:"status"` // "ok" or "error"
	Result       map[string]interface{} `json:"result,omitempty"`
	Error        string                 `json:"error,omitempty"`
	TS           float64                `json:"ts"`
}

// RunCompleteEvent is pushed once per run, after the record is sealed.
type RunCompleteEvent struct {
	Event        string                 `json:"event"` // always "run_complete"
	ApplicantRef string                 `json:"applicant_ref"`
	Summary      map[string]interface{} `json:"summary"`
}

// Sink receives push notifications of run/bot status.
type Sink interface {
	Name() string
	PublishBotResult(ctx context.Context, ev BotResultEvent) error
	PublishRunComplete(ctx context.Context, ev RunCompleteEvent) error
}
