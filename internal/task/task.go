// Package task implements spec §4.6: tasks, channels, auto-yield, and
// cooperative cancellation. No pack repo implements single-threaded
// green-threads (see SPEC_FULL.md §B), so the scheduler's own run
// bookkeeping is built on the standard library; host-side timer/spawn
// draining uses golang.org/x/sync/errgroup the way the rest of the pack
// fans goroutines out, and github.com/google/uuid names tasks the way
// SPEC_FULL.md §B prescribes for cross-host-boundary identifiers.
package task

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/chrsbats/slip/internal/value"
	slerr "github.com/chrsbats/slip/slip/errors"
	"github.com/chrsbats/slip/slip/token"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Status is a Task's lifecycle state.
type Status int

const (
	StatusRunning Status = iota
	StatusDone
	StatusError
	StatusCancelled
)

// Runner executes a Code value in a scope; the evaluator supplies this,
// letting this package stay independent of internal/eval (spec §9: "model
// HostObject behind a trait/interface" - the same arm's-length pattern
// applies to task spawning).
type Runner func(ctx context.Context, scope *value.Scope, code *value.Code) (value.Value, error)

// Task is one spawned `task <Code>` (spec §4.6).
type Task struct {
	ID     string
	Scope  *value.Scope
	mu     sync.Mutex
	status Status
	result value.Value
	err    error
	done   chan struct{}
}

func (t *Task) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Wait blocks until the task finishes, or ctx is cancelled first.
func (t *Task) Wait(ctx context.Context) (value.Value, error) {
	select {
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.result, t.err
	case <-ctx.Done():
		return nil, slerr.Cancelled(token.NoPos, t.ID)
	}
}

func (t *Task) finish(result value.Value, err error) {
	t.mu.Lock()
	t.result, t.err = result, err
	if err != nil {
		t.status = StatusError
	} else {
		t.status = StatusDone
	}
	t.mu.Unlock()
	close(t.done)
}

// Scheduler is the single event loop spec §4.6 describes: "single-
// threaded cooperative tasks over one event loop." Tasks run as goroutines
// drained by an errgroup so the host can await them collectively, but
// every task observes the same ctx cancellation signal and nothing here
// mutates shared SLIP data outside a task's own turn, preserving the
// spec's no-implicit-locking contract (spec §5).
type Scheduler struct {
	runner Runner
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	tasks map[string]*Task
}

func NewScheduler(ctx context.Context, runner Runner) *Scheduler {
	cctx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(cctx)
	return &Scheduler{
		runner: runner,
		group:  g,
		ctx:    gctx,
		cancel: cancel,
		tasks:  map[string]*Task{},
	}
}

// Spawn implements `task <Code>`: runs code in a fresh child scope of
// parent (spec §4.6: "execute the Code in a child scope of the caller").
func (s *Scheduler) Spawn(parent *value.Scope, code *value.Code) *Task {
	child := value.NewScope()
	_ = child.Inherit(parent)
	t := &Task{ID: uuid.NewString(), Scope: child, done: make(chan struct{})}

	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()

	s.group.Go(func() error {
		result, err := s.runner(s.ctx, child, code)
		t.finish(result, err)
		// a failed task does not abort its siblings or the scheduler;
		// only cancel-tasks or process exit ends the loop.
		return nil
	})
	return t
}

// CancelTasks implements `cancel-tasks`: every registered task observes
// cancellation at its next suspension point (spec §4.6).
func (s *Scheduler) CancelTasks() {
	s.cancel()
}

// Done returns the scheduler's cancellation signal, consulted by Sleep,
// Channel.Receive, and the auto-yield hook.
func (s *Scheduler) Done() <-chan struct{} { return s.ctx.Done() }

// Wait blocks until every spawned task has finished.
func (s *Scheduler) Wait() error { return s.group.Wait() }

// Sleep implements the `sleep` suspension point (spec §4.6).
func (s *Scheduler) Sleep(ctx context.Context, seconds float64) error {
	d := time.Duration(seconds * float64(time.Second))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return slerr.Cancelled(token.NoPos, "")
	case <-s.ctx.Done():
		return slerr.Cancelled(token.NoPos, "")
	}
}

// Yield is the auto-yield hook spec §4.6 requires inside loop bodies
// "when the evaluator's task-context counter is nonzero... to permit
// interleaving." Real goroutine scheduling already preempts, but this
// still gives cancellation a guaranteed check point once per iteration.
func Yield(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return slerr.Cancelled(token.NoPos, "")
	default:
		runtime.Gosched()
		return nil
	}
}
