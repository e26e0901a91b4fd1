// Package coordinator wraps the query engine in a single-slot,
// replace-latest mailbox: submitting a new query while one is still running
// cancels the in-flight one rather than queueing behind it, per spec §4.8.
//
// The worker's polling loop — a select against a timeout channel instead of
// a blocking receive — is grounded on the teacher's tea.Tick-driven redraw
// loops (status/model.go, analyze/model.go's searchTickMsg): there the timer
// drives "redraw," here it drives "check whether a newer query arrived."
package coordinator

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cboxdoerfer/fsearch-sub000/internal/fsdb"
	"github.com/cboxdoerfer/fsearch-sub000/internal/fsearchlog"
	"github.com/cboxdoerfer/fsearch-sub000/internal/query"
)

// pollInterval bounds how long the worker waits for a new submission
// before re-checking its shutdown flag.
const pollInterval = 500 * time.Millisecond

// Coordinator runs one query at a time against a *fsdb.Database, discarding
// superseded queries rather than queuing them.
type Coordinator struct {
	db     *fsdb.Database
	engine *query.Engine

	mu      sync.Mutex
	pending *query.Query
	wake    chan struct{}

	cancelled atomic.Bool
	shutdown  atomic.Bool
	done      chan struct{}
}

// New starts a Coordinator's worker goroutine against db, using engine to
// run each submitted query.
func New(db *fsdb.Database, engine *query.Engine) *Coordinator {
	c := &Coordinator{
		db:     db,
		engine: engine,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

// Submit replaces whatever query is pending or running with q. A query
// that is currently executing has its cancellation flag set so the worker
// abandons it at the next poll point and picks up q instead. A query that
// was sitting in the mailbox unclaimed is dropped and immediately handed
// to its own OnCancelled — every accepted query gets exactly one of
// OnResult/OnCancelled, including one superseded before the worker ever
// claimed it.
func (c *Coordinator) Submit(q *query.Query) {
	// Raise the flag before q becomes claimable: the worker clears it after
	// claiming a query, so q itself is never the one cancelled here.
	c.cancelled.Store(true)

	c.mu.Lock()
	prior := c.pending
	c.pending = q
	c.mu.Unlock()

	if prior != nil && prior.OnCancelled != nil {
		prior.OnCancelled()
	}

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Shutdown stops the worker goroutine after its current query (if any)
// finishes or is cancelled. It does not block; call Join to wait.
func (c *Coordinator) Shutdown() {
	c.shutdown.Store(true)
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// Join blocks until the worker goroutine has exited.
func (c *Coordinator) Join() {
	<-c.done
}

func (c *Coordinator) run() {
	defer close(c.done)
	for {
		q := c.takePending()
		if q == nil {
			if c.shutdown.Load() {
				return
			}
			select {
			case <-c.wake:
			case <-time.After(pollInterval):
			}
			continue
		}

		c.cancelled.Store(false)
		snap := c.db.Acquire()
		result, completed := c.engine.Run(q, snap.Array(), &c.cancelled)
		c.db.Release(snap)

		switch {
		case !completed:
			fsearchlog.Default().Debug("query cancelled", "text", q.Text)
			if q.OnCancelled != nil {
				q.OnCancelled()
			}
		default:
			if q.OnResult != nil {
				q.OnResult(result)
			}
		}

		if c.shutdown.Load() && c.peekPending() == nil {
			return
		}
	}
}

func (c *Coordinator) takePending() *query.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	q := c.pending
	c.pending = nil
	return q
}

func (c *Coordinator) peekPending() *query.Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}
