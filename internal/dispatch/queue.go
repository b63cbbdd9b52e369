// internal/dispatch/queue.go
package dispatch

import (
	"context"
	stderrors "errors"
	"sync"

	"ufunda-bots/internal/common/logger"
	"ufunda-bots/internal/models"
	"ufunda-bots/internal/run"
)

// ErrQueueFull is returned by Submit when the trigger queue has no capacity.
// The webhook maps it to 503.
var ErrQueueFull = stderrors.New("trigger queue is full")

// Ticket tracks one queued dispatch. Done closes when the run finishes and
// Record carries the sealed result afterwards.
type Ticket struct {
	ID        string
	Applicant models.Applicant
	BotIDs    []string

	done   chan struct{}
	record *run.Record
}

// Done returns a channel closed when the dispatch completes.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Record returns the sealed record, nil before Done closes.
func (t *Ticket) Record() *run.Record {
	select {
	case <-t.done:
		return t.record
	default:
		return nil
	}
}

// Queue decouples inbound triggers from dispatch execution: webhook handlers
// enqueue and return 202 while a single drain goroutine runs dispatches in
// arrival order. One run at a time keeps the per-run pool the only source of
// bot concurrency.
type Queue struct {
	orchestrator *Orchestrator
	tickets      chan *Ticket
	logger       logger.Logger

	stopOnce sync.Once
	stopped  chan struct{}
	drained  chan struct{}
}

func NewQueue(orchestrator *Orchestrator, size int, log logger.Logger) *Queue {
	if size <= 0 {
		size = 32
	}
	return &Queue{
		orchestrator: orchestrator,
		tickets:      make(chan *Ticket, size),
		logger:       log.WithFields(map[string]interface{}{"component": "trigger_queue"}),
		stopped:      make(chan struct{}),
		drained:      make(chan struct{}),
	}
}

// Start launches the drain goroutine.
func (q *Queue) Start(ctx context.Context) {
	go q.drain(ctx)
}

// Submit enqueues one trigger. It never blocks: a full queue returns
// ErrQueueFull immediately.
func (q *Queue) Submit(id string, applicant models.Applicant, botIDs []string) (*Ticket, error) {
	t := &Ticket{
		ID:        id,
		Applicant: applicant,
		BotIDs:    botIDs,
		done:      make(chan struct{}),
	}
	select {
	case <-q.stopped:
		return nil, ErrQueueFull
	case q.tickets <- t:
		q.logger.Info("trigger queued", map[string]interface{}{
			"trigger_id": id,
			"queued":     len(q.tickets),
		})
		return t, nil
	default:
		return nil, ErrQueueFull
	}
}

// Pending returns the number of queued, not-yet-started triggers.
func (q *Queue) Pending() int { return len(q.tickets) }

// Shutdown stops accepting triggers and waits for queued work to finish, or
// for ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.stopOnce.Do(func() {
		close(q.stopped)
	})
	select {
	case <-q.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) drain(ctx context.Context) {
	defer close(q.drained)
	for {
		select {
		case <-q.stopped:
			// Stopped: finish whatever was already queued, then exit. The
			// tickets channel is never closed; Submit refuses new work once
			// stopped is closed.
			for {
				select {
				case t := <-q.tickets:
					q.runTicket(ctx, t)
				default:
					return
				}
			}
		case t := <-q.tickets:
			q.runTicket(ctx, t)
		}
	}
}

func (q *Queue) runTicket(ctx context.Context, t *Ticket) {
	t.record = q.orchestrator.Run(ctx, t.Applicant, t.BotIDs)
	close(t.done)
}
