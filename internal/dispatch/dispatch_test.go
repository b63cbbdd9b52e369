package dispatch

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ufunda-bots/internal/bots"
	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/common/observability"
	"ufunda-bots/internal/models"
	"ufunda-bots/internal/run"
)

// recordingObserver captures the streamed results and the sealed record.
type recordingObserver struct {
	mu        sync.Mutex
	results   []run.BotResult
	completed *run.Record
}

func (o *recordingObserver) BotResult(ctx context.Context, applicantRef string, res run.BotResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, res)
}

func (o *recordingObserver) RunComplete(ctx context.Context, applicantRef string, rec *run.Record) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.completed = rec
}

func (o *recordingObserver) streamed() []run.BotResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]run.BotResult, len(o.results))
	copy(out, o.results)
	return out
}

func stubAdapter(id string, delay time.Duration, err error) bots.Adapter {
	return bots.AdapterFunc{
		Name: id,
		Run: func(ctx context.Context, applicant models.Applicant) (bots.Result, error) {
			if delay > 0 {
				time.Sleep(delay)
			}
			if err != nil {
				return nil, err
			}
			return bots.Result{"bot": id, "success": true}, nil
		},
	}
}

func newTestOrchestrator(t *testing.T, registry *bots.Registry, observer ResultObserver, concurrency int) *Orchestrator {
	t.Helper()
	return NewOrchestrator(registry, observer, &observability.Observability{}, logger.NewTestLogger(t), concurrency)
}

func TestRunOneResultPerRequestedBot(t *testing.T) {
	registry := bots.NewRegistry()
	registry.Register(stubAdapter("gmail", 0, nil))
	registry.Register(stubAdapter("wits", 0, stderrors.New("portal down")))

	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, 2)

	rec := orch.Run(context.Background(), models.Applicant{"applicant_ref": "a1"}, []string{"gmail", "wits", "bogus"})

	require.Equal(t, 3, rec.Len())
	assert.True(t, rec.Sealed())

	byBot := map[string]run.BotResult{}
	for _, res := range rec.Results() {
		byBot[res.Bot] = res
	}
	assert.False(t, byBot["gmail"].IsError())
	assert.True(t, byBot["wits"].IsError())
	assert.True(t, byBot["bogus"].IsError())
}

func TestRunUnknownBotMessage(t *testing.T) {
	registry := bots.NewRegistry()
	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, 2)

	rec := orch.Run(context.Background(), models.Applicant{}, []string{"nope"})

	require.Equal(t, 1, rec.Len())
	res := rec.Results()[0]
	assert.True(t, res.IsError())
	assert.Equal(t, "Unknown bot: nope", res.Err)
}

func TestRunDuplicateIdentifiersYieldDuplicateResults(t *testing.T) {
	registry := bots.NewRegistry()
	registry.Register(stubAdapter("uct", 0, nil))

	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, 2)

	rec := orch.Run(context.Background(), models.Applicant{}, []string{"uct", "uct"})

	require.Equal(t, 2, rec.Len())
	for _, res := range rec.Results() {
		assert.Equal(t, "uct", res.Bot)
	}
}

func TestRunEmptySelectionRunsAllRegistered(t *testing.T) {
	registry := bots.NewRegistry()
	registry.Register(stubAdapter("gmail", 0, nil))
	registry.Register(stubAdapter("wits", 0, nil))
	registry.Register(stubAdapter("uj", 0, nil))

	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, 3)

	rec := orch.Run(context.Background(), models.Applicant{}, nil)

	assert.Equal(t, 3, rec.Len())
}

func TestRunConcurrencyBound(t *testing.T) {
	const bound = 2

	var active, peak int64
	registry := bots.NewRegistry()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		id := id
		registry.Register(bots.AdapterFunc{
			Name: id,
			Run: func(ctx context.Context, applicant models.Applicant) (bots.Result, error) {
				now := atomic.AddInt64(&active, 1)
				for {
					cur := atomic.LoadInt64(&peak)
					if now <= cur || atomic.CompareAndSwapInt64(&peak, cur, now) {
						break
					}
				}
				time.Sleep(30 * time.Millisecond)
				atomic.AddInt64(&active, -1)
				return bots.Result{"success": true}, nil
			},
		})
	}

	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, bound)

	rec := orch.Run(context.Background(), models.Applicant{}, nil)

	assert.Equal(t, 5, rec.Len())
	assert.LessOrEqual(t, atomic.LoadInt64(&peak), int64(bound))
}

func TestRunCollectsInCompletionOrder(t *testing.T) {
	registry := bots.NewRegistry()
	registry.Register(stubAdapter("slow", 80*time.Millisecond, nil))
	registry.Register(stubAdapter("fast", 0, nil))

	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, 2)

	rec := orch.Run(context.Background(), models.Applicant{}, []string{"slow", "fast"})

	results := rec.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "fast", results[0].Bot)
	assert.Equal(t, "slow", results[1].Bot)
}

func TestRunPanicBecomesErrorResult(t *testing.T) {
	registry := bots.NewRegistry()
	registry.Register(bots.AdapterFunc{
		Name: "crasher",
		Run: func(ctx context.Context, applicant models.Applicant) (bots.Result, error) {
			panic("boom")
		},
	})
	registry.Register(stubAdapter("steady", 0, nil))

	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, 2)

	rec := orch.Run(context.Background(), models.Applicant{}, []string{"crasher", "steady"})

	require.Equal(t, 2, rec.Len())
	byBot := map[string]run.BotResult{}
	for _, res := range rec.Results() {
		byBot[res.Bot] = res
	}
	assert.True(t, byBot["crasher"].IsError())
	assert.Contains(t, byBot["crasher"].Err, "bot panicked")
	assert.False(t, byBot["steady"].IsError())
}

func TestRunStreamsResultsToObserver(t *testing.T) {
	registry := bots.NewRegistry()
	registry.Register(stubAdapter("gmail", 0, nil))

	observer := &recordingObserver{}
	orch := newTestOrchestrator(t, registry, observer, 1)

	rec := orch.Run(context.Background(), models.Applicant{"applicant_ref": "ref-9"}, []string{"gmail", "bogus"})

	assert.Len(t, observer.streamed(), 2)
	require.NotNil(t, observer.completed)
	assert.Same(t, rec, observer.completed)
	assert.True(t, observer.completed.Sealed())
}

func TestRunZeroConcurrencyFallsBackToDefault(t *testing.T) {
	registry := bots.NewRegistry()
	registry.Register(stubAdapter("gmail", 0, nil))

	orch := newTestOrchestrator(t, registry, &recordingObserver{}, 0)
	assert.Equal(t, defaultMaxConcurrency, orch.maxConcurrency)

	rec := orch.Run(context.Background(), models.Applicant{}, nil)
	assert.Equal(t, 1, rec.Len())
}
