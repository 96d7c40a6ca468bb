package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker/v2"
)

// bufferSize is the capacity of the emit queue. When the queue is full,
// entries are dropped (and counted) rather than blocking the caller.
const bufferSize = 64

// writeTimeout bounds one repository write so a wedged database cannot pin
// the worker goroutine indefinitely.
const writeTimeout = 5 * time.Second

// Event is the caller-facing payload of Log. UserAgent and CreatedAt are
// filled in by the emitter.
type Event struct {
	Action     string
	ResourceID string
	Details    map[string]any
	// UserAgent, when known, is truncated to 200 chars before storage.
	UserAgent string
}

// Emitter appends audit entries asynchronously. Failures are logged to the
// diagnostic sink (slog) and never reach the caller; a circuit breaker
// backs off a failing store, and a missing-schema error disables the
// emitter for the remainder of the process.
type Emitter struct {
	repo    Repository
	breaker *gobreaker.CircuitBreaker[struct{}]
	now     func() time.Time

	ch        chan Entry
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	disabled atomic.Bool
	dropped  atomic.Uint64
}

// NewEmitter creates and starts an emitter over the given repository.
// Close must be called on shutdown to drain the queue.
func NewEmitter(repo Repository) *Emitter {
	e := &Emitter{
		repo: repo,
		now:  time.Now,
		ch:   make(chan Entry, bufferSize),
		done: make(chan struct{}),
	}

	e.breaker = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "audit-log",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("audit log breaker state change",
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	e.wg.Add(1)
	go e.run()
	return e
}

// Log queues one audit event. It never blocks and never returns an error:
// a full queue drops the event, a disabled emitter ignores it. Safe to call
// from any goroutine, including after Close (the event is then dropped).
func (e *Emitter) Log(event Event) {
	if e == nil || e.disabled.Load() {
		return
	}

	entry := Entry{
		Action:     event.Action,
		ResourceID: event.ResourceID,
		Details:    event.Details,
		UserAgent:  truncateUA(event.UserAgent),
		CreatedAt:  e.now().UTC(),
	}

	select {
	case e.ch <- entry:
	case <-e.done:
	default:
		e.dropped.Add(1)
	}
}

// Dropped returns how many events were discarded due to a full queue.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// Close stops the worker after draining queued entries.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.wg.Wait()
	})
}

// run is the worker loop: it writes queued entries through the circuit
// breaker until closed, then drains what remains.
func (e *Emitter) run() {
	defer e.wg.Done()

	for {
		select {
		case entry := <-e.ch:
			e.write(entry)
		case <-e.done:
			for {
				select {
				case entry := <-e.ch:
					e.write(entry)
				default:
					return
				}
			}
		}
	}
}

// write performs one best-effort append. Every failure mode ends here:
// breaker-open and transient errors are logged and forgotten; a missing
// schema latches the emitter off.
func (e *Emitter) write(entry Entry) {
	if e.disabled.Load() {
		return
	}

	_, err := e.breaker.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		return struct{}{}, e.repo.Insert(ctx, &entry)
	})
	if err == nil {
		return
	}

	if errors.Is(err, ErrSchemaMissing) {
		// Migrations haven't created audit_logs; stop trying for the
		// rest of the process instead of failing on every action.
		e.disabled.Store(true)
		slog.Warn("audit log schema missing, disabling audit writes",
			slog.Any("error", err),
		)
		return
	}

	slog.Warn("audit log write failed",
		slog.String("action", entry.Action),
		slog.Any("error", err),
	)
}

func truncateUA(ua string) string {
	if len(ua) > maxUserAgentLen {
		return ua[:maxUserAgentLen]
	}
	return ua
}
