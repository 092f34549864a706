// Package service implements the mock agent: a simulated mailbox,
// keyword intent classification, and the run-once/run-loop processing
// the console drives.
package service

import (
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opsdesk/vendormail/internal/agentd/store"
	"github.com/opsdesk/vendormail/internal/domain"
)

const (
	IntentStatusInquiry   = "status_inquiry"
	IntentQuoteRequest    = "quote_request"
	IntentInvoiceQuestion = "invoice_question"
	IntentComplaint       = "complaint"
	IntentOther           = "other"

	ResolutionAutoResolved = "auto_resolved"
	ResolutionInfoRequest  = "info_request"
	ResolutionEscalated    = "escalated"
)

var requestIDPattern = regexp.MustCompile(`\bVR-\d{4}-\d{4}\b`)

type message struct {
	ID       string
	ThreadID string
	From     string
	Subject  string
	Body     string
}

type vendorRecord struct {
	RequestID string
	Vendor    string
	Status    string
}

type AgentService struct {
	logs       store.LogStore
	gmailMode  string
	geminiMode string

	mu        sync.Mutex
	mailbox   []message
	backlog   []message // seeded inquiries awaiting processing, never polled
	vendors   map[string]vendorRecord
	inProcess int
}

func New(logs store.LogStore, gmailMode, geminiMode string) *AgentService {
	return &AgentService{
		logs:       logs,
		gmailMode:  gmailMode,
		geminiMode: geminiMode,
		vendors:    map[string]vendorRecord{},
	}
}

func (s *AgentService) Config() domain.AgentConfig {
	return domain.AgentConfig{GmailMode: s.gmailMode, GeminiMode: s.geminiMode}
}

func (s *AgentService) Status() (domain.AgentStatus, error) {
	entries, err := s.logs.ListLogs()
	if err != nil {
		return domain.AgentStatus{}, err
	}

	s.mu.Lock()
	status := domain.AgentStatus{
		Pending:   len(s.mailbox) + len(s.backlog),
		InProcess: s.inProcess,
	}
	s.mu.Unlock()

	for _, entry := range entries {
		if entry.ResolutionType == ResolutionEscalated {
			status.Escalated++
		} else {
			status.Responded++
		}
	}
	return status, nil
}

// Poll returns the wholesale mailbox snapshot. Seeded backlog items
// are not included; only ingested mail is visible in the queue.
func (s *AgentService) Poll() []domain.QueueItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]domain.QueueItem, 0, len(s.mailbox))
	for _, msg := range s.mailbox {
		items = append(items, domain.QueueItem{
			MessageID: msg.ID,
			ThreadID:  msg.ThreadID,
			From:      msg.From,
			Subject:   msg.Subject,
			Snippet:   snippet(msg.Body),
		})
	}
	return items
}

// Seed installs the vendor catalog and a batch of canned pending
// inquiries. Returns how many inquiries were queued.
func (s *AgentService) Seed() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, vendor := range sampleVendors() {
		s.vendors[vendor.RequestID] = vendor
	}
	batch := sampleInquiries()
	for i := range batch {
		batch[i].ID = uuid.NewString()
		batch[i].ThreadID = uuid.NewString()
	}
	s.backlog = append(s.backlog, batch...)
	return len(batch), nil
}

func (s *AgentService) Ingest(draft domain.IngestDraft) (domain.QueueItem, error) {
	from := strings.TrimSpace(draft.FromEmail)
	subject := strings.TrimSpace(draft.Subject)
	if from == "" {
		return domain.QueueItem{}, domain.InvalidArgument("from_email is required")
	}
	if subject == "" {
		return domain.QueueItem{}, domain.InvalidArgument("subject is required")
	}

	msg := message{
		ID:       uuid.NewString(),
		ThreadID: uuid.NewString(),
		From:     from,
		Subject:  subject,
		Body:     draft.Body,
	}

	s.mu.Lock()
	s.mailbox = append(s.mailbox, msg)
	s.mu.Unlock()

	return domain.QueueItem{
		MessageID: msg.ID,
		ThreadID:  msg.ThreadID,
		From:      msg.From,
		Subject:   msg.Subject,
		Snippet:   snippet(msg.Body),
	}, nil
}

// RunOnce processes at most one pending message: ingested mail first,
// then seeded backlog. Returns false, with state untouched, when nothing
// is pending.
func (s *AgentService) RunOnce() (bool, error) {
	s.mu.Lock()
	var msg message
	fromMailbox := false
	switch {
	case len(s.mailbox) > 0:
		msg = s.mailbox[0]
		s.mailbox = s.mailbox[1:]
		fromMailbox = true
	case len(s.backlog) > 0:
		msg = s.backlog[0]
		s.backlog = s.backlog[1:]
	default:
		s.mu.Unlock()
		return false, nil
	}
	s.inProcess++
	vendors := s.vendorsSnapshotLocked()
	s.mu.Unlock()

	entry := s.classify(msg, vendors)
	err := s.logs.AppendLog(entry)

	s.mu.Lock()
	s.inProcess--
	if err != nil {
		// Persisting the log failed; put the message back where it came
		// from so it is not silently lost.
		if fromMailbox {
			s.mailbox = append([]message{msg}, s.mailbox...)
		} else {
			s.backlog = append([]message{msg}, s.backlog...)
		}
	}
	s.mu.Unlock()

	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *AgentService) RunLoop(maxSteps int) (int, error) {
	if maxSteps <= 0 {
		return 0, domain.InvalidArgument("max_steps must be positive")
	}

	processed := 0
	for i := 0; i < maxSteps; i++ {
		ok, err := s.RunOnce()
		if err != nil {
			return processed, err
		}
		if !ok {
			break
		}
		processed++
	}
	return processed, nil
}

func (s *AgentService) Analytics() (domain.AnalyticsSummary, error) {
	entries, err := s.logs.ListLogs()
	if err != nil {
		return domain.AnalyticsSummary{}, err
	}

	summary := domain.AnalyticsSummary{ByIntent: map[string]int{}}
	for _, entry := range entries {
		summary.Total++
		switch entry.ResolutionType {
		case ResolutionAutoResolved:
			summary.AutoResolved++
		case ResolutionEscalated:
			summary.Escalated++
		default:
			summary.InfoRequest++
		}
		if entry.Intent != "" {
			summary.ByIntent[entry.Intent]++
		}
	}
	return summary, nil
}

func (s *AgentService) Logs() ([]domain.LogEntry, error) {
	return s.logs.ListLogs()
}

func (s *AgentService) classify(msg message, vendors map[string]vendorRecord) domain.LogEntry {
	text := strings.ToLower(msg.Subject + " " + msg.Body)
	requestID := requestIDPattern.FindString(msg.Subject + " " + msg.Body)

	intent := IntentOther
	resolution := ResolutionInfoRequest
	switch {
	case strings.Contains(text, "complaint") || strings.Contains(text, "unacceptable") || strings.Contains(text, "escalate"):
		intent = IntentComplaint
		resolution = ResolutionEscalated
	case requestID != "" || strings.Contains(text, "status"):
		intent = IntentStatusInquiry
		if _, known := vendors[requestID]; known {
			resolution = ResolutionAutoResolved
		}
	case strings.Contains(text, "quote") || strings.Contains(text, "pricing") || strings.Contains(text, "price"):
		intent = IntentQuoteRequest
	case strings.Contains(text, "invoice") || strings.Contains(text, "payment"):
		intent = IntentInvoiceQuestion
	}

	labels := []string{"vendor-inquiry", intent, resolutionLabel(resolution)}
	entry := domain.LogEntry{
		ID:             uuid.NewString(),
		FromEmail:      msg.From,
		Subject:        msg.Subject,
		Intent:         intent,
		ResolutionType: resolution,
		Labels:         labels,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339Nano),
	}
	if requestID != "" {
		entry.Entities = &domain.LogEntities{RequestID: requestID}
	}
	return entry
}

func (s *AgentService) vendorsSnapshotLocked() map[string]vendorRecord {
	out := make(map[string]vendorRecord, len(s.vendors))
	for id, vendor := range s.vendors {
		out[id] = vendor
	}
	return out
}

func resolutionLabel(resolution string) string {
	switch resolution {
	case ResolutionAutoResolved:
		return "auto-resolved"
	case ResolutionEscalated:
		return "escalated"
	default:
		return "needs-info"
	}
}

func snippet(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > 120 {
		return body[:120] + "..."
	}
	return body
}

func sampleVendors() []vendorRecord {
	return []vendorRecord{
		{RequestID: "VR-2025-0012", Vendor: "Acme Industrial", Status: "in transit"},
		{RequestID: "VR-2025-0031", Vendor: "Globex Supply", Status: "awaiting approval"},
		{RequestID: "VR-2025-0048", Vendor: "Initech Parts", Status: "delivered"},
	}
}

func sampleInquiries() []message {
	return []message{
		{
			From:    "orders@acme-industrial.example",
			Subject: "What is the status of VR-2025-0012?",
			Body:    "Hi team, could you confirm the delivery window for VR-2025-0012? Our line is waiting on it.",
		},
		{
			From:    "billing@globex-supply.example",
			Subject: "Invoice 4417 payment terms",
			Body:    "We have not received payment for invoice 4417. Can you confirm the payment schedule?",
		},
		{
			From:    "sales@initech-parts.example",
			Subject: "Quote request for Q4 restock",
			Body:    "Please send updated pricing for the Q4 restock order, part numbers attached.",
		},
	}
}
