package orch

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

// RefreshSummary fetches the analytics summary and the interaction logs
// as a pair, in parallel. Each half tolerates failure on its own: a
// failed fetch leaves that entity's prior value in place and does not
// affect the other half.
func (o *Orchestrator) RefreshSummary(ctx context.Context) {
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		summary, err := o.client.AnalyticsSummary(groupCtx)
		if err != nil {
			log.Printf("analytics refresh skipped: %v", err)
			return nil
		}
		o.store.SetAnalytics(summary)
		return nil
	})

	group.Go(func() error {
		entries, err := o.client.Logs(groupCtx)
		if err != nil {
			log.Printf("logs refresh skipped: %v", err)
			return nil
		}
		o.store.ReplaceLogs(entries)
		return nil
	})

	_ = group.Wait()
}
