package orch

import (
	"context"
	"fmt"

	"github.com/opsdesk/vendormail/internal/domain"
)

// Action surface: one entry point per user-facing action. Each returns
// the status line shown in the console; no business logic beyond
// message formatting lives here.

const (
	StatusProcessed   = "Processed one message."
	StatusNonePending = "No emails pending."
)

func (o *Orchestrator) DoProcessNext(ctx context.Context) string {
	processed, err := o.ProcessNext(ctx)
	if err != nil {
		return "process failed: " + err.Error()
	}
	if !processed {
		return StatusNonePending
	}
	return StatusProcessed
}

func (o *Orchestrator) DoRunBatch(ctx context.Context, maxSteps int) string {
	if maxSteps <= 0 {
		return "run failed: step count must be positive"
	}
	processed, err := o.RunBounded(ctx, maxSteps)
	if err != nil {
		return "run failed: " + err.Error()
	}
	if processed == 1 {
		return "Processed 1 message."
	}
	return fmt.Sprintf("Processed %d messages.", processed)
}

func (o *Orchestrator) DoSeed(ctx context.Context) string {
	if err := o.Seed(ctx); err != nil {
		return "seed failed: " + err.Error()
	}
	return "Seeded vendor sample data."
}

func (o *Orchestrator) DoIngest(ctx context.Context, draft domain.IngestDraft) string {
	if err := o.Ingest(ctx, draft); err != nil {
		return "ingest failed: " + err.Error()
	}
	return fmt.Sprintf("Ingested message from %s.", draft.FromEmail)
}

// DoToggleAuto flips the automatic cycle and reports the new state.
func (o *Orchestrator) DoToggleAuto() string {
	if o.AutoRunning() {
		o.StopAuto()
		return "Auto cycle stopped."
	}
	o.StartAuto()
	return fmt.Sprintf("Auto cycle started (every %s).", o.interval)
}
