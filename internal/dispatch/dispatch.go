// Package dispatch implements the parallel bot dispatch core: a bounded
// worker pool that runs every requested adapter against one applicant and
// collects exactly one result per bot into a sealed run record.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"ufunda-bots/internal/bots"
	"ufunda-bots/internal/common/errors"
	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/common/metrics"
	"ufunda-bots/internal/common/observability"
	"ufunda-bots/internal/models"
	"ufunda-bots/internal/run"
)

const defaultMaxConcurrency = 3

// ResultObserver receives results as the pool collects them and the sealed
// record once per run. The aggregator satisfies it.
type ResultObserver interface {
	BotResult(ctx context.Context, applicantRef string, res run.BotResult)
	RunComplete(ctx context.Context, applicantRef string, rec *run.Record)
}

// Orchestrator owns one dispatch configuration: the registry to resolve
// against, the pool width, and the observer to stream results to.
type Orchestrator struct {
	registry       *bots.Registry
	observer       ResultObserver
	obs            *observability.Observability
	logger         logger.Logger
	maxConcurrency int
}

func NewOrchestrator(registry *bots.Registry, observer ResultObserver, obs *observability.Observability, log logger.Logger, maxConcurrency int) *Orchestrator {
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	return &Orchestrator{
		registry:       registry,
		observer:       observer,
		obs:            obs,
		logger:         log.WithFields(map[string]interface{}{"component": "dispatch"}),
		maxConcurrency: maxConcurrency,
	}
}

// Run executes the requested bots against one applicant and returns the
// sealed record. A nil or empty botIDs selects every registered bot.
// Unknown identifiers become error results immediately and never occupy a
// pool slot; known bots run concurrently, at most maxConcurrency at a time,
// in completion order. Run never fails the whole dispatch for a single bot:
// every requested identifier yields exactly one result.
func (o *Orchestrator) Run(ctx context.Context, applicant models.Applicant, botIDs []string) *run.Record {
	if len(botIDs) == 0 {
		botIDs = o.registry.IDs()
	}

	applicantRef := applicant.Ref()
	metrics.DispatchesTotal.Inc()

	ctx, span := o.obs.StartSpan(ctx, "dispatch.run",
		attribute.String("applicant_ref", applicantRef),
		attribute.Int("bots_requested", len(botIDs)),
	)
	defer span.End()

	o.logger.Info("dispatch started", map[string]interface{}{
		"applicant_ref": applicantRef,
		"bots":          botIDs,
		"concurrency":   o.maxConcurrency,
	})

	rec := run.NewRecord()
	dispatchStart := time.Now()

	// Resolve first: unknown identifiers are recorded up front, so a typo in
	// the request never blocks a pool slot or delays the real bots.
	type job struct {
		id      string
		adapter bots.Adapter
	}
	jobs := make([]job, 0, len(botIDs))
	for _, id := range botIDs {
		adapter, err := o.registry.Resolve(id)
		if err != nil {
			res := run.Failed(id, err.Error())
			rec.Append(res)
			o.observer.BotResult(ctx, applicantRef, res)
			metrics.BotRunsFailed.WithLabelValues(id, string(errors.ErrCodeUnknownBot)).Inc()
			o.logger.Warn("unknown bot requested", map[string]interface{}{"bot": id})
			continue
		}
		jobs = append(jobs, job{id: id, adapter: adapter})
	}

	sem := make(chan struct{}, o.maxConcurrency)
	results := make(chan run.BotResult)

	for _, j := range jobs {
		go func(j job) {
			sem <- struct{}{}
			defer func() { <-sem }()

			metrics.BotsActive.Inc()
			defer metrics.BotsActive.Dec()

			results <- o.execute(ctx, j.id, j.adapter, applicant)
		}(j)
	}

	for range jobs {
		res := <-results
		rec.Append(res)
		o.observer.BotResult(ctx, applicantRef, res)
	}

	rec.Seal()
	metrics.DispatchDuration.Observe(time.Since(dispatchStart).Seconds())

	o.observer.RunComplete(ctx, applicantRef, rec)

	summary := rec.Summary()
	o.logger.Info("dispatch complete", map[string]interface{}{
		"applicant_ref": applicantRef,
		"total":         summary["total"],
		"ok":            summary["ok"],
		"errors":        summary["errors"],
		"duration_s":    time.Since(dispatchStart).Seconds(),
	})
	return rec
}

// execute runs one adapter with panic isolation. A panicking adapter becomes
// an error result like any other failure.
func (o *Orchestrator) execute(ctx context.Context, id string, adapter bots.Adapter, applicant models.Applicant) (res run.BotResult) {
	start := time.Now()

	ctx, span := o.obs.StartSpan(ctx, "bot.execute", attribute.String("bot", id))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			res = run.Failed(id, fmt.Sprintf("bot panicked: %v", r))
			metrics.BotRunsFailed.WithLabelValues(id, "PANIC").Inc()
			o.logger.Error("bot panicked", map[string]interface{}{
				"bot":   id,
				"panic": fmt.Sprintf("%v", r),
			})
		}
		duration := time.Since(start)
		metrics.BotRunDuration.WithLabelValues(id).Observe(duration.Seconds())
		o.obs.RecordBotDuration(ctx, id, duration)
		o.obs.RecordBotExecuted(ctx, id, res.Status())
	}()

	o.logger.Info("bot started", map[string]interface{}{"bot": id})

	output, err := adapter.Execute(ctx, applicant)
	if err != nil {
		stdErr := errors.Normalize(err)
		metrics.BotRunsFailed.WithLabelValues(id, string(stdErr.Code)).Inc()
		o.logger.WithError(stdErr).Error("bot failed", map[string]interface{}{
			"bot":        id,
			"category":   errors.GetErrorCategory(stdErr.Code),
			"duration_s": time.Since(start).Seconds(),
		})
		return run.Failed(id, stdErr.Error())
	}

	metrics.BotRunsCompleted.WithLabelValues(id).Inc()
	o.logger.Info("bot finished", map[string]interface{}{
		"bot":        id,
		"duration_s": time.Since(start).Seconds(),
	})
	return run.Ok(id, output)
}
