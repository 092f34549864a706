// Package ui is the operator console. Presentation only: every remote
// interaction goes through the orchestrator's action surface.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/opsdesk/vendormail/internal/console/api"
	"github.com/opsdesk/vendormail/internal/console/config"
	"github.com/opsdesk/vendormail/internal/console/orch"
	"github.com/opsdesk/vendormail/internal/console/sched"
	"github.com/opsdesk/vendormail/internal/console/state"
	"github.com/opsdesk/vendormail/internal/domain"
)

type screen int

const (
	screenDashboard screen = iota
	screenIngest
)

type bootstrapDoneMsg struct{}

type actionDoneMsg struct {
	status string
}

type autoEventMsg orch.Event

type tickMsg time.Time

type model struct {
	cfg   config.Config
	store *state.Store
	orch  *orch.Orchestrator

	screen     screen
	width      int
	height     int
	statusLine string

	fromInput    textinput.Model
	subjectInput textinput.Model
	bodyInput    textarea.Model
	ingestFocus  int
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func Run(cfg config.Config) error {
	store := state.New()
	client := api.NewClient(cfg.APIBase, cfg.RequestTimeout)
	orchestrator := orch.New(client, store, sched.New(), cfg.AutoInterval)

	fromInput := textinput.New()
	fromInput.Prompt = "From: "
	fromInput.Placeholder = "vendor@example.com"

	subjectInput := textinput.New()
	subjectInput.Prompt = "Subject: "
	subjectInput.Placeholder = "What is the status of VR-2025-0012?"

	bodyInput := textarea.New()
	bodyInput.Prompt = ""
	bodyInput.Placeholder = "Message body..."
	bodyInput.SetHeight(5)
	bodyInput.SetWidth(96)

	m := model{
		cfg:          cfg,
		store:        store,
		orch:         orchestrator,
		screen:       screenDashboard,
		statusLine:   "Loading agent state...",
		fromInput:    fromInput,
		subjectInput: subjectInput,
		bodyInput:    bodyInput,
	}
	m.applyIngestFocus()

	program := tea.NewProgram(m, tea.WithAltScreen())
	_, err := program.Run()
	orchestrator.Close()
	return err
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		bootstrapCmd(m.orch),
		waitAutoCmd(m.orch.Events()),
		tickCmd(),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.bodyInput.SetWidth(maxInt(40, typed.Width-8))
		return m, nil
	case tea.KeyMsg:
		if typed.String() == "ctrl+c" {
			m.orch.Close()
			return m, tea.Quit
		}
	case bootstrapDoneMsg:
		m.statusLine = "Ready."
		return m, nil
	case actionDoneMsg:
		m.statusLine = typed.status
		return m, nil
	case autoEventMsg:
		m.statusLine = "auto: " + typed.Status
		return m, waitAutoCmd(m.orch.Events())
	case tickMsg:
		return m, tickCmd()
	}

	switch m.screen {
	case screenIngest:
		return m.updateIngest(msg)
	default:
		return m.updateDashboard(msg)
	}
}

func (m model) updateDashboard(msg tea.Msg) (model, tea.Cmd) {
	typed, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch typed.String() {
	case "q":
		m.orch.Close()
		return m, tea.Quit
	case "p":
		m.statusLine = "Processing next message..."
		return m, actionCmd(m.orch.DoProcessNext)
	case "r":
		batch := m.cfg.RunBatchSize
		m.statusLine = fmt.Sprintf("Running up to %d steps...", batch)
		return m, actionCmd(func(ctx context.Context) string {
			return m.orch.DoRunBatch(ctx, batch)
		})
	case "s":
		m.statusLine = "Seeding vendor data..."
		return m, actionCmd(m.orch.DoSeed)
	case "a":
		m.statusLine = m.orch.DoToggleAuto()
		return m, nil
	case "i":
		m.screen = screenIngest
		m.ingestFocus = 0
		m.applyIngestFocus()
		m.statusLine = "Compose a synthetic inbound message. Tab cycles fields."
		return m, nil
	case "g":
		m.statusLine = "Refreshing..."
		return m, actionCmd(func(ctx context.Context) string {
			m.orch.RefreshAll(ctx)
			return "Refreshed."
		})
	}
	return m, nil
}

func (m model) updateIngest(msg tea.Msg) (model, tea.Cmd) {
	if typed, ok := msg.(tea.KeyMsg); ok {
		switch typed.String() {
		case "esc":
			m.screen = screenDashboard
			m.statusLine = "Ready."
			return m, nil
		case "tab":
			m.ingestFocus = (m.ingestFocus + 1) % 3
			m.applyIngestFocus()
			return m, nil
		case "shift+tab":
			m.ingestFocus = (m.ingestFocus + 2) % 3
			m.applyIngestFocus()
			return m, nil
		case "enter":
			if m.ingestFocus != 2 {
				m.ingestFocus++
				m.applyIngestFocus()
				return m, nil
			}
			draft := domain.IngestDraft{
				FromEmail: strings.TrimSpace(m.fromInput.Value()),
				Subject:   strings.TrimSpace(m.subjectInput.Value()),
				Body:      m.bodyInput.Value(),
			}
			if draft.FromEmail == "" || draft.Subject == "" {
				m.statusLine = "from and subject are required"
				return m, nil
			}
			m.screen = screenDashboard
			m.statusLine = "Ingesting message..."
			return m, actionCmd(func(ctx context.Context) string {
				return m.orch.DoIngest(ctx, draft)
			})
		}
	}

	var cmd tea.Cmd
	switch m.ingestFocus {
	case 0:
		m.fromInput, cmd = m.fromInput.Update(msg)
	case 1:
		m.subjectInput, cmd = m.subjectInput.Update(msg)
	default:
		m.bodyInput, cmd = m.bodyInput.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var body string
	switch m.screen {
	case screenIngest:
		body = m.viewIngest()
	default:
		body = m.viewDashboard()
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Vendormail Console"),
		mutedStyle.Render("Backend: "+m.cfg.APIBase),
		"",
		body,
		"",
		mutedStyle.Render(m.statusLine),
	)
}

func (m model) viewDashboard() string {
	snap := m.store.Snapshot()

	auto := mutedStyle.Render("auto: off")
	if m.orch.AutoRunning() {
		auto = okStyle.Render(fmt.Sprintf("auto: every %s", m.orch.Interval()))
	}

	lines := []string{
		sectionStyle.Render("Agent"),
		fmt.Sprintf("gmail=%s gemini=%s | phase=%s | %s",
			modeBadge(snap.Config.GmailMode),
			modeBadge(snap.Config.GeminiMode),
			m.orch.Phase(),
			auto,
		),
		fmt.Sprintf("pending=%d in_process=%d responded=%d escalated=%d",
			snap.Status.Pending, snap.Status.InProcess, snap.Status.Responded, snap.Status.Escalated),
		"",
		sectionStyle.Render(fmt.Sprintf("Mailbox Queue (%d)", len(snap.Queue))),
	}
	if len(snap.Queue) == 0 {
		lines = append(lines, mutedStyle.Render("  (empty)"))
	}
	for i, item := range snap.Queue {
		if i >= 8 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("  ... %d more", len(snap.Queue)-i)))
			break
		}
		lines = append(lines, fmt.Sprintf("  %s  %s", padRight(item.From, 28), item.Subject))
	}

	lines = append(lines, "", sectionStyle.Render(fmt.Sprintf("Recent Interactions (%d)", len(snap.Logs))))
	if len(snap.Logs) == 0 {
		lines = append(lines, mutedStyle.Render("  (none)"))
	}
	shown := 0
	for i := len(snap.Logs) - 1; i >= 0 && shown < 8; i-- {
		entry := snap.Logs[i]
		resolution := entry.ResolutionType
		switch resolution {
		case "escalated":
			resolution = errStyle.Render(resolution)
		case "auto_resolved":
			resolution = okStyle.Render(resolution)
		default:
			resolution = warnStyle.Render(resolution)
		}
		lines = append(lines, fmt.Sprintf("  %s  %s  %s  [%s]",
			padRight(entry.FromEmail, 28), padRight(entry.Intent, 16), resolution, strings.Join(entry.Labels, ", ")))
		shown++
	}

	summary := snap.Analytics
	lines = append(lines, "",
		sectionStyle.Render("Analytics"),
		fmt.Sprintf("total=%d auto_resolved=%d info_request=%d escalated=%d",
			summary.Total, summary.AutoResolved, summary.InfoRequest, summary.Escalated),
	)
	if len(summary.ByIntent) > 0 {
		parts := make([]string, 0, len(summary.ByIntent))
		for intent, count := range summary.ByIntent {
			parts = append(parts, fmt.Sprintf("%s=%d", intent, count))
		}
		lines = append(lines, mutedStyle.Render("by intent: "+strings.Join(parts, " ")))
	}

	if oldest := m.store.OldestRefresh(); !oldest.IsZero() {
		lines = append(lines, "", mutedStyle.Render("oldest refresh: "+time.Since(oldest).Round(time.Second).String()+" ago"))
	}
	lines = append(lines, "", mutedStyle.Render("p: process next | r: run batch | s: seed | a: toggle auto | i: ingest | g: refresh | q: quit"))
	return strings.Join(lines, "\n")
}

func (m model) viewIngest() string {
	lines := []string{
		sectionStyle.Render("Ingest Mock Email"),
		focusPrefix(m.ingestFocus == 0) + m.fromInput.View(),
		focusPrefix(m.ingestFocus == 1) + m.subjectInput.View(),
		focusPrefix(m.ingestFocus == 2) + "Body:",
		m.bodyInput.View(),
		"",
		mutedStyle.Render("enter on body: submit | tab: next field | esc: cancel"),
	}
	return strings.Join(lines, "\n")
}

func (m *model) applyIngestFocus() {
	m.fromInput.Blur()
	m.subjectInput.Blur()
	m.bodyInput.Blur()
	switch m.ingestFocus {
	case 0:
		m.fromInput.Focus()
	case 1:
		m.subjectInput.Focus()
	default:
		m.bodyInput.Focus()
	}
}

func bootstrapCmd(orchestrator *orch.Orchestrator) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		orchestrator.Bootstrap(ctx)
		return bootstrapDoneMsg{}
	}
}

func actionCmd(action func(context.Context) string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return actionDoneMsg{status: action(ctx)}
	}
}

func waitAutoCmd(events <-chan orch.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return nil
		}
		return autoEventMsg(event)
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func modeBadge(mode string) string {
	switch mode {
	case domain.ModeLive:
		return warnStyle.Render("live")
	case domain.ModeMock:
		return "mock"
	case "":
		return mutedStyle.Render("?")
	default:
		return mode
	}
}

func focusPrefix(active bool) string {
	if active {
		return "> "
	}
	return "  "
}

func padRight(value string, width int) string {
	if len(value) >= width {
		return value[:width]
	}
	return value + strings.Repeat(" ", width-len(value))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
