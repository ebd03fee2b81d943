// Package mutation provides the generic optimistic-mutation runner.
//
// Every feed write (create, delete, remix, like) goes through Engine.Run with
// the same shape: apply an optimistic cache patch synchronously, perform the
// single remote round trip, then apply exactly one of the commit or rollback
// strategies. Centralizing the shape here keeps call sites from growing their
// own ad hoc cache patching.
package mutation

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/feedsync/internal/client/cache"
	"github.com/dmitrijs2005/feedsync/internal/client/models"
	"github.com/dmitrijs2005/feedsync/internal/logging"
)

// Status is the observable state of one in-flight mutation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// RemoteCall performs the single network round trip of a mutation. Calls
// that return no entity (delete) return nil.
type RemoteCall func(ctx context.Context) (*models.Entity, error)

// Patch applies the optimistic local change to the cache before the remote
// call settles.
type Patch func(s *cache.Store)

// Commit reconciles the authoritative result into the cache after a
// successful remote call.
type Commit func(s *cache.Store, result *models.Entity)

// Rollback recovers the cache after a failed remote call. Rather than trying
// to manually undo the optimistic patch (the prior state may have diverged
// under concurrent mutations), implementations typically invalidate and
// refetch the affected region.
type Rollback func(ctx context.Context, s *cache.Store)

// Ticket is the ephemeral record of one in-flight optimistic mutation. It is
// created pending, settles exactly once, and is discarded by the caller after
// reconciliation or rollback.
type Ticket struct {
	mu     sync.Mutex
	status Status
	err    error
	result *models.Entity
	done   chan struct{}
}

func newTicket() *Ticket {
	return &Ticket{status: StatusPending, done: make(chan struct{})}
}

// Status returns the current state: pending until the remote call settles.
func (t *Ticket) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the captured failure reason after an error settle, else nil.
func (t *Ticket) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Result returns the authoritative entity after a success settle, if the
// mutation produced one.
func (t *Ticket) Result() *models.Entity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Done is closed when the ticket settles.
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the ticket settles or ctx is cancelled and returns the
// mutation error, if any.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Ticket) resolve(result *models.Entity) {
	t.mu.Lock()
	t.status = StatusSuccess
	t.result = result
	t.mu.Unlock()
	close(t.done)
}

func (t *Ticket) reject(err error) {
	t.mu.Lock()
	t.status = StatusError
	t.err = err
	t.mu.Unlock()
	close(t.done)
}

// Engine runs optimistic mutations against a shared cache store. Construct
// one per store and inject it by reference; tests instantiate isolated pairs.
type Engine struct {
	store *cache.Store
	log   logging.Logger
}

func NewEngine(store *cache.Store, log logging.Logger) *Engine {
	return &Engine{store: store, log: log.With("component", "mutation")}
}

// Store exposes the cache the engine writes to, for read-side consumers.
func (e *Engine) Store() *cache.Store {
	return e.store
}

// Run applies the optimistic patch synchronously, then settles the remote
// call in the background. Exactly one of commit or rollback executes per
// call; retries are new, independent Run invocations, never automatic.
//
// The returned ticket is pending until the remote call settles; callers that
// need the result synchronously use Ticket.Wait.
func (e *Engine) Run(ctx context.Context, call RemoteCall, optimistic Patch, commit Commit, rollback Rollback) *Ticket {
	if optimistic != nil {
		optimistic(e.store)
	}

	t := newTicket()
	go func() {
		result, err := call(ctx)
		if err != nil {
			if rollback != nil {
				rollback(ctx, e.store)
			}
			e.log.Warn(ctx, "mutation failed", "error", err)
			t.reject(err)
			return
		}
		if commit != nil {
			commit(e.store, result)
		}
		t.resolve(result)
	}()
	return t
}
