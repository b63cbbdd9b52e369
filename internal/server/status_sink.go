// internal/server/status_sink.go
package server

import (
	"context"
	"time"

	"ufunda-bots/internal/models"
	"ufunda-bots/internal/notify"
)

// StatusSink mirrors bot results into the StatusStore so the REST API shows
// live per-bot state without polling the dispatcher.
type StatusSink struct {
	store StatusStore
}

func NewStatusSink(store StatusStore) *StatusSink {
	return &StatusSink{store: store}
}

func (s *StatusSink) Name() string { return "status_store" }

func (s *StatusSink) PublishBotResult(ctx context.Context, ev notify.BotResultEvent) error {
	return s.store.SaveBotStatus(ctx, models.BotStatus{
		BotID:       ev.Bot,
		Status:      ev.Status,
		CurrentTask: ev.ApplicantRef,
		LastUpdated: time.Now().UTC(),
	})
}

func (s *StatusSink) PublishRunComplete(ctx context.Context, ev notify.RunCompleteEvent) error {
	// Application-level transitions are owned by the webhook handler, which
	// holds the run ticket.
	return nil
}
