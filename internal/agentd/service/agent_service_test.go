package service

import (
	"sync"
	"testing"

	"github.com/opsdesk/vendormail/internal/domain"
)

// memStore keeps appended entries in memory; failNext injects a single
// persistence failure.
type memStore struct {
	mu       sync.Mutex
	entries  []domain.LogEntry
	failNext bool
}

func (m *memStore) Load() error  { return nil }
func (m *memStore) Close() error { return nil }

func (m *memStore) ListLogs() ([]domain.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LogEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *memStore) AppendLog(entry domain.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return domain.Internal("append rejected", nil)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func newTestAgent() (*AgentService, *memStore) {
	logs := &memStore{}
	return New(logs, domain.ModeMock, domain.ModeMock), logs
}

func TestSeedPopulatesPendingButNotQueue(t *testing.T) {
	agent, _ := newTestAgent()

	seeded, err := agent.Seed()
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if seeded != 3 {
		t.Fatalf("expected 3 seeded inquiries, got %d", seeded)
	}

	status, err := agent.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Pending != 3 {
		t.Fatalf("expected pending=3 after seed, got %d", status.Pending)
	}
	if items := agent.Poll(); len(items) != 0 {
		t.Fatalf("seeded inquiries must not appear in the poll queue, got %v", items)
	}
}

func TestIngestAppearsInQueue(t *testing.T) {
	agent, _ := newTestAgent()

	item, err := agent.Ingest(domain.IngestDraft{
		FromEmail: "orders@acme-industrial.example",
		Subject:   "Where is VR-2025-0012?",
		Body:      "Need an update on shipment VR-2025-0012 before Friday.",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if item.MessageID == "" || item.ThreadID == "" {
		t.Fatalf("expected generated identifiers, got %+v", item)
	}

	items := agent.Poll()
	if len(items) != 1 || items[0].MessageID != item.MessageID {
		t.Fatalf("ingested message missing from queue: %v", items)
	}
	if items[0].Snippet == "" {
		t.Fatalf("expected body snippet on queue item")
	}
}

func TestIngestValidation(t *testing.T) {
	agent, _ := newTestAgent()

	_, err := agent.Ingest(domain.IngestDraft{Subject: "no sender"})
	appErr, ok := domain.AsAppError(err)
	if !ok || appErr.Code != domain.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for missing sender, got %v", err)
	}

	_, err = agent.Ingest(domain.IngestDraft{FromEmail: "a@b.example", Subject: "   "})
	appErr, ok = domain.AsAppError(err)
	if !ok || appErr.Code != domain.CodeInvalidArgument {
		t.Fatalf("expected invalid_argument for blank subject, got %v", err)
	}
}

func TestRunOnceEmptyIsStableNoOp(t *testing.T) {
	agent, _ := newTestAgent()

	before, err := agent.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	for i := 0; i < 5; i++ {
		processed, err := agent.RunOnce()
		if err != nil {
			t.Fatalf("run once: %v", err)
		}
		if processed {
			t.Fatalf("expected processed=false on empty mailbox")
		}
	}

	after, err := agent.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if after != before {
		t.Fatalf("no-op runs changed status: %+v -> %+v", before, after)
	}
}

func TestKnownRequestIDAutoResolves(t *testing.T) {
	agent, logs := newTestAgent()

	if _, err := agent.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// First seeded inquiry references VR-2025-0012, which the seeded
	// vendor catalog knows about.
	processed, err := agent.RunOnce()
	if err != nil || !processed {
		t.Fatalf("run once: processed=%v err=%v", processed, err)
	}

	entries, _ := logs.ListLogs()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Intent != IntentStatusInquiry {
		t.Fatalf("expected %s intent, got %s", IntentStatusInquiry, entry.Intent)
	}
	if entry.ResolutionType != ResolutionAutoResolved {
		t.Fatalf("expected %s, got %s", ResolutionAutoResolved, entry.ResolutionType)
	}
	if entry.Entities == nil || entry.Entities.RequestID != "VR-2025-0012" {
		t.Fatalf("expected extracted request id, got %+v", entry.Entities)
	}
	want := []string{"vendor-inquiry", IntentStatusInquiry, "auto-resolved"}
	if len(entry.Labels) != len(want) {
		t.Fatalf("unexpected labels: %v", entry.Labels)
	}
	for i := range want {
		if entry.Labels[i] != want[i] {
			t.Fatalf("label order mismatch: got %v, want %v", entry.Labels, want)
		}
	}
}

func TestComplaintEscalates(t *testing.T) {
	agent, logs := newTestAgent()

	_, err := agent.Ingest(domain.IngestDraft{
		FromEmail: "angry@globex-supply.example",
		Subject:   "This delay is unacceptable",
		Body:      "Third missed delivery in a row. Escalate to a manager.",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if processed, err := agent.RunOnce(); err != nil || !processed {
		t.Fatalf("run once: processed=%v err=%v", processed, err)
	}

	entries, _ := logs.ListLogs()
	if entries[0].Intent != IntentComplaint || entries[0].ResolutionType != ResolutionEscalated {
		t.Fatalf("expected escalated complaint, got %+v", entries[0])
	}

	status, err := agent.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Escalated != 1 || status.Responded != 0 {
		t.Fatalf("unexpected status counters: %+v", status)
	}
}

func TestMailboxProcessedBeforeBacklog(t *testing.T) {
	agent, logs := newTestAgent()

	if _, err := agent.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := agent.Ingest(domain.IngestDraft{
		FromEmail: "urgent@initech-parts.example",
		Subject:   "Pricing question",
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if processed, err := agent.RunOnce(); err != nil || !processed {
		t.Fatalf("run once: processed=%v err=%v", processed, err)
	}

	entries, _ := logs.ListLogs()
	if entries[0].FromEmail != "urgent@initech-parts.example" {
		t.Fatalf("expected ingested mail processed first, got %+v", entries[0])
	}
	if items := agent.Poll(); len(items) != 0 {
		t.Fatalf("processed message must leave the queue, got %v", items)
	}
}

func TestRunLoopBoundsAndDrains(t *testing.T) {
	agent, _ := newTestAgent()

	if _, err := agent.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	processed, err := agent.RunLoop(2)
	if err != nil {
		t.Fatalf("run loop: %v", err)
	}
	if processed != 2 {
		t.Fatalf("expected 2 processed under bound, got %d", processed)
	}

	// One seeded inquiry left; a generous bound drains and stops.
	processed, err = agent.RunLoop(10)
	if err != nil {
		t.Fatalf("run loop: %v", err)
	}
	if processed != 1 {
		t.Fatalf("expected 1 remaining message processed, got %d", processed)
	}
}

func TestRunLoopRejectsNonPositiveBound(t *testing.T) {
	agent, _ := newTestAgent()

	for _, bound := range []int{0, -3} {
		_, err := agent.RunLoop(bound)
		appErr, ok := domain.AsAppError(err)
		if !ok || appErr.Code != domain.CodeInvalidArgument {
			t.Fatalf("expected invalid_argument for bound %d, got %v", bound, err)
		}
	}
}

func TestFailedAppendRestoresMessage(t *testing.T) {
	agent, logs := newTestAgent()

	if _, err := agent.Ingest(domain.IngestDraft{
		FromEmail: "orders@acme-industrial.example",
		Subject:   "Quote for spring order",
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	logs.failNext = true
	processed, err := agent.RunOnce()
	if err == nil || processed {
		t.Fatalf("expected persistence failure, got processed=%v err=%v", processed, err)
	}

	// Message restored to the mailbox; the retry succeeds.
	if items := agent.Poll(); len(items) != 1 {
		t.Fatalf("expected message back in queue after failure, got %v", items)
	}
	processed, err = agent.RunOnce()
	if err != nil || !processed {
		t.Fatalf("retry: processed=%v err=%v", processed, err)
	}
}

func TestAnalyticsRecomputedFromLogs(t *testing.T) {
	agent, _ := newTestAgent()

	if _, err := agent.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := agent.RunLoop(10); err != nil {
		t.Fatalf("run loop: %v", err)
	}

	summary, err := agent.Analytics()
	if err != nil {
		t.Fatalf("analytics: %v", err)
	}
	if summary.Total != 3 {
		t.Fatalf("expected 3 interactions, got %d", summary.Total)
	}
	if summary.AutoResolved != 1 {
		t.Fatalf("expected 1 auto-resolved, got %d", summary.AutoResolved)
	}
	if summary.InfoRequest != 2 {
		t.Fatalf("expected 2 info requests, got %d", summary.InfoRequest)
	}
	if summary.ByIntent[IntentStatusInquiry] != 1 || summary.ByIntent[IntentInvoiceQuestion] != 1 || summary.ByIntent[IntentQuoteRequest] != 1 {
		t.Fatalf("unexpected intent breakdown: %v", summary.ByIntent)
	}
}
