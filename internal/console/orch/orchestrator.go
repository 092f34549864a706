// Package orch is the scheduling core of the console. It owns the order
// of remote calls: every mutating action is followed by a best-effort
// refresh of the queue, analytics, logs, and status snapshots, and the
// automatic cycle never overlaps itself.
package orch

import (
	"context"
	"sync"
	"time"

	"github.com/opsdesk/vendormail/internal/console/api"
	"github.com/opsdesk/vendormail/internal/console/sched"
	"github.com/opsdesk/vendormail/internal/console/state"
	"github.com/opsdesk/vendormail/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseManualRunning
	PhaseAutoRunning
)

func (p Phase) String() string {
	switch p {
	case PhaseManualRunning:
		return "manual"
	case PhaseAutoRunning:
		return "auto"
	default:
		return "idle"
	}
}

// Event is pushed to the UI when an automatic cycle tick completes.
type Event struct {
	Status string
	At     time.Time
}

type Orchestrator struct {
	client    *api.Client
	store     *state.Store
	scheduler *sched.Scheduler
	interval  time.Duration

	mu          sync.Mutex
	autoToken   *sched.Token
	manualDepth int

	events chan Event
}

func New(client *api.Client, store *state.Store, scheduler *sched.Scheduler, interval time.Duration) *Orchestrator {
	return &Orchestrator{
		client:    client,
		store:     store,
		scheduler: scheduler,
		interval:  interval,
		events:    make(chan Event, 16),
	}
}

// Events carries automatic-cycle completions to the presentation layer.
func (o *Orchestrator) Events() <-chan Event {
	return o.events
}

// Bootstrap loads the agent config once and performs the initial full
// refresh. Both halves are best-effort; a down backend leaves the
// console usable with empty snapshots.
func (o *Orchestrator) Bootstrap(ctx context.Context) {
	if cfg, err := o.client.AgentConfig(ctx); err == nil {
		o.store.SetConfig(cfg)
	}
	o.RefreshAll(ctx)
}

// ProcessNext asks the backend to process at most one pending message.
// The refresh sequence runs regardless of the call's outcome.
func (o *Orchestrator) ProcessNext(ctx context.Context) (bool, error) {
	o.beginManual()
	defer o.endManual()

	processed, err := o.client.RunOnce(ctx)
	o.RefreshAll(ctx)
	return processed, err
}

// RunBounded runs the backend's bounded loop. Exactly one run-loop call
// is issued regardless of how many messages get processed.
func (o *Orchestrator) RunBounded(ctx context.Context, maxSteps int) (int, error) {
	o.beginManual()
	defer o.endManual()

	processed, err := o.client.RunLoop(ctx, maxSteps)
	o.RefreshAll(ctx)
	return processed, err
}

// Seed installs backend sample data. Seeding does not populate the
// mailbox queue, so the queue poll is skipped here.
func (o *Orchestrator) Seed(ctx context.Context) error {
	o.beginManual()
	defer o.endManual()

	err := o.client.SeedVendors(ctx)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { o.RefreshSummary(groupCtx); return nil })
	group.Go(func() error { o.RefreshStatus(groupCtx); return nil })
	_ = group.Wait()
	return err
}

// Ingest submits the draft as a synthetic inbound message; a new queue
// item is expected afterwards, so the full refresh runs.
func (o *Orchestrator) Ingest(ctx context.Context, draft domain.IngestDraft) error {
	o.beginManual()
	defer o.endManual()

	err := o.client.IngestMockEmail(ctx, draft)
	o.RefreshAll(ctx)
	return err
}

// RefreshAll runs the four read refreshes concurrently. They touch
// disjoint entities and each tolerates failure on its own, so the group
// never returns an error.
func (o *Orchestrator) RefreshAll(ctx context.Context) {
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { o.PollQueue(groupCtx); return nil })
	group.Go(func() error { o.RefreshSummary(groupCtx); return nil })
	group.Go(func() error { o.RefreshStatus(groupCtx); return nil })
	_ = group.Wait()
}

// StartAuto arms the repeating cycle. Calling it while already running
// re-arms: the existing timer is cancelled first so at most one timer is
// ever armed.
func (o *Orchestrator) StartAuto() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.autoToken != nil {
		o.scheduler.Cancel(o.autoToken)
	}
	o.autoToken = o.scheduler.Schedule(o.interval, o.autoTick)
}

// StopAuto disarms the cycle; a tick already in flight still completes
// its refresh sequence. Stopping while not running is a no-op.
func (o *Orchestrator) StopAuto() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.autoToken == nil {
		return
	}
	o.scheduler.Cancel(o.autoToken)
	o.autoToken = nil
}

func (o *Orchestrator) AutoRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.autoToken != nil
}

func (o *Orchestrator) Interval() time.Duration {
	return o.interval
}

// Phase reports the state machine position. AutoRunning persists across
// manual actions issued while the cycle is armed; they do not pause it.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.autoToken != nil {
		return PhaseAutoRunning
	}
	if o.manualDepth > 0 {
		return PhaseManualRunning
	}
	return PhaseIdle
}

// Close disarms any active timer. Must be called on console teardown to
// avoid orphaned cycles.
func (o *Orchestrator) Close() {
	o.StopAuto()
}

func (o *Orchestrator) autoTick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status := o.DoProcessNext(ctx)
	select {
	case o.events <- Event{Status: status, At: time.Now()}:
	default:
	}
}

func (o *Orchestrator) beginManual() {
	o.mu.Lock()
	o.manualDepth++
	o.mu.Unlock()
}

func (o *Orchestrator) endManual() {
	o.mu.Lock()
	o.manualDepth--
	o.mu.Unlock()
}
