// internal/notify/dashboard.go
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"ufunda-bots/internal/common/httpclient"
	"ufunda-bots/internal/common/logger"
)

// DashboardSink POSTs status events as JSON to zero or more webhook URLs.
type DashboardSink struct {
	urls   []string
	client *httpclient.Client
	logger logger.Logger
}

func NewDashboardSink(urls []string, client *httpclient.Client, log logger.Logger) *DashboardSink {
	return &DashboardSink{
		urls:   urls,
		client: client,
		logger: log.WithFields(map[string]interface{}{"sink": "dashboard"}),
	}
}

func (d *DashboardSink) Name() string { return "dashboard" }

func (d *DashboardSink) PublishBotResult(ctx context.Context, ev BotResultEvent) error {
	ev.Event = "bot_result"
	return d.post(ctx, ev)
}

func (d *DashboardSink) PublishRunComplete(ctx context.Context, ev RunCompleteEvent) error {
	ev.Event = "run_complete"
	return d.post(ctx, ev)
}

func (d *DashboardSink) post(ctx context.Context, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	var firstErr error
	for _, url := range d.urls {
		if err := d.client.PostJSON(ctx, url, body); err != nil {
			d.logger.Warn("dashboard push failed", map[string]interface{}{
				"url":   url,
				"error": err.Error(),
			})
			if firstErr == nil {
				firstErr = fmt.Errorf("push to %s: %w", url, err)
			}
		}
	}
	return firstErr
}
