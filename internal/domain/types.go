package domain

const (
	ModeMock = "mock"
	ModeLive = "live"
)

// AgentConfig reports which backend subsystems run simulated vs. real.
// Immutable from the console's perspective; fetched once at startup.
type AgentConfig struct {
	GmailMode  string `json:"gmail_mode"`
	GeminiMode string `json:"gemini_mode"`
}

// AgentStatus is a point-in-time counter snapshot of the agent's
// interaction lifecycle.
type AgentStatus struct {
	Pending   int `json:"pending"`
	InProcess int `json:"in_process"`
	Responded int `json:"responded"`
	Escalated int `json:"escalated"`
}

// QueueItem is one inbound message visible in the polled mailbox view.
// The whole collection is replaced on every poll, never merged.
type QueueItem struct {
	MessageID string `json:"message_id"`
	ThreadID  string `json:"thread_id,omitempty"`
	From      string `json:"from"`
	Subject   string `json:"subject"`
	Snippet   string `json:"snippet"`
}

// LogEntry is one completed interaction, append-only from the console's
// point of view.
type LogEntry struct {
	ID             string       `json:"_id"`
	FromEmail      string       `json:"from_email"`
	Subject        string       `json:"subject"`
	Intent         string       `json:"intent,omitempty"`
	Entities       *LogEntities `json:"entities,omitempty"`
	ResolutionType string       `json:"resolution_type,omitempty"`
	Labels         []string     `json:"labels"`
	CreatedAt      string       `json:"created_at,omitempty"`
}

type LogEntities struct {
	RequestID string `json:"request_id,omitempty"`
}

type AnalyticsSummary struct {
	Total        int            `json:"total"`
	AutoResolved int            `json:"auto_resolved"`
	InfoRequest  int            `json:"info_request"`
	Escalated    int            `json:"escalated"`
	ByIntent     map[string]int `json:"by_intent"`
}

// IngestDraft is the operator-edited synthetic inbound message. Purely
// local until explicitly submitted.
type IngestDraft struct {
	FromEmail string `json:"from_email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type PollResponse struct {
	Items []QueueItem `json:"items"`
}

type RunOnceResult struct {
	Processed bool `json:"processed"`
}

type RunLoopRequest struct {
	MaxSteps int `json:"max_steps"`
}

type RunLoopResult struct {
	Processed int `json:"processed"`
}

type SeedResult struct {
	Seeded int `json:"seeded"`
}
