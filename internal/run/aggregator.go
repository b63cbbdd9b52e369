// internal/run/aggregator.go
package run

import (
	"context"

	"ufunda-bots/internal/common/errors"
	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/common/metrics"
	"ufunda-bots/internal/notify"
)

// Aggregator receives bot results as the dispatcher collects them, streams
// them to the notification sinks, and persists the sealed record. Sink and
// persistence failures are logged and counted but never fail the run.
type Aggregator struct {
	artifacts *ArtifactStore
	sinks     []notify.Sink
	logger    logger.Logger
}

func NewAggregator(artifacts *ArtifactStore, sinks []notify.Sink, log logger.Logger) *Aggregator {
	return &Aggregator{
		artifacts: artifacts,
		sinks:     sinks,
		logger:    log.WithFields(map[string]interface{}{"component": "aggregator"}),
	}
}

// BotResult fans one collected result out to every sink.
func (a *Aggregator) BotResult(ctx context.Context, applicantRef string, res BotResult) {
	ev := notify.BotResultEvent{
		Event:        "bot_result",
		ApplicantRef: applicantRef,
		Bot:          res.Bot,
		Status:       res.Status(),
		Result:       res.Result,
		Error:        res.Err,
		TS:           epochSeconds(),
	}
	for _, sink := range a.sinks {
		if err := sink.PublishBotResult(ctx, ev); err != nil {
			metrics.SinkPushFailures.WithLabelValues(sink.Name()).Inc()
			a.logger.Warn("bot_result push failed", map[string]interface{}{
				"sink":  sink.Name(),
				"bot":   res.Bot,
				"error": err.Error(),
			})
		}
	}
}

// RunComplete persists the sealed record and fans the summary out to every
// sink.
func (a *Aggregator) RunComplete(ctx context.Context, applicantRef string, rec *Record) {
	path, err := a.artifacts.Save(rec)
	if err != nil {
		persErr := errors.NewPersistenceFailedError(a.artifacts.dir, err)
		a.logger.WithError(persErr).Error("run artifact write failed", map[string]interface{}{
			"applicant_ref": applicantRef,
		})
	} else {
		a.logger.Info("run artifact written", map[string]interface{}{
			"applicant_ref": applicantRef,
			"path":          path,
			"results":       rec.Len(),
		})
	}

	ev := notify.RunCompleteEvent{
		Event:        "run_complete",
		ApplicantRef: applicantRef,
		Summary:      rec.Summary(),
	}
	for _, sink := range a.sinks {
		if err := sink.PublishRunComplete(ctx, ev); err != nil {
			metrics.SinkPushFailures.WithLabelValues(sink.Name()).Inc()
			a.logger.Warn("run_complete push failed", map[string]interface{}{
				"sink":  sink.Name(),
				"error": err.Error(),
			})
		}
	}
}
