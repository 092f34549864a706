package orch

import (
	"context"
	"log"
)

// PollQueue replaces the mailbox queue snapshot. Queue visibility is
// best-effort: a transport failure keeps the prior snapshot and must
// never block the other refreshes.
func (o *Orchestrator) PollQueue(ctx context.Context) {
	items, err := o.client.PollMailbox(ctx)
	if err != nil {
		log.Printf("queue poll skipped: %v", err)
		return
	}
	o.store.ReplaceQueue(items)
}

// RefreshStatus replaces the agent status counters, same tolerance.
func (o *Orchestrator) RefreshStatus(ctx context.Context) {
	status, err := o.client.AgentStatus(ctx)
	if err != nil {
		log.Printf("status refresh skipped: %v", err)
		return
	}
	o.store.SetStatus(status)
}
