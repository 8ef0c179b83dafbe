package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/alexanderramin/civic/internal/cli/formatter"
	"github.com/alexanderramin/civic/internal/domain"
	"github.com/alexanderramin/civic/internal/service"
)

// searchDebounce is how long typing must pause before the list re-filters.
const searchDebounce = 300 * time.Millisecond

// searchMsg applies a query once typing pauses. Messages carrying an older
// seq were superseded by later keystrokes and are ignored.
type searchMsg struct {
	seq   int
	query string
}

var browseKeys = []key.Binding{
	key.NewBinding(key.WithKeys("up", "down"), key.WithHelp("↑/↓", "move")),
	key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "start")),
	key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "complete")),
	key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "quit")),
}

// browseModel lists the current result set with live fuzzy search.
type browseModel struct {
	ctx    context.Context
	engine service.ActionEngine
	now    func() time.Time

	input   textinput.Model
	state   domain.FilterState
	actions []domain.Action
	cursor  int
	seq     int
	status  string

	openedAt time.Time
	quitting bool
}

func newBrowseModel(ctx context.Context, engine service.ActionEngine, base domain.FilterState, now func() time.Time) *browseModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search actions"
	ti.PromptStyle = formatter.StyleHeader
	ti.SetValue(base.SearchQuery)
	ti.Focus()

	m := &browseModel{
		ctx:      ctx,
		engine:   engine,
		now:      now,
		input:    ti,
		state:    base,
		openedAt: now(),
	}
	m.refresh()
	return m
}

func (m *browseModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *browseModel) refresh() {
	m.actions = m.engine.FilterActions(m.state)
	if m.cursor >= len(m.actions) {
		m.cursor = max(len(m.actions)-1, 0)
	}
}

func (m *browseModel) selected() (domain.Action, bool) {
	if m.cursor < len(m.actions) {
		return m.actions[m.cursor], true
	}
	return domain.Action{}, false
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.state.SearchQuery = strings.TrimSpace(msg.query)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			if secs := int64(m.now().Sub(m.openedAt).Seconds()); secs > 0 {
				m.engine.RecordTimeSpent(m.ctx, secs)
			}
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.actions)-1 {
				m.cursor++
			}
			return m, nil
		case "ctrl+s":
			if a, ok := m.selected(); ok {
				m.engine.RecordSave(m.ctx, a.ID)
				m.status = "Saved " + a.Title
				m.refresh()
			}
			return m, nil
		case "ctrl+t":
			if a, ok := m.selected(); ok {
				m.engine.StartAction(m.ctx, a.ID)
				m.status = "Started " + a.Title
			}
			return m, nil
		case "ctrl+o":
			if a, ok := m.selected(); ok {
				m.engine.RecordCompletion(m.ctx, a.ID, nil, "")
				m.status = "Completed " + a.Title
				m.refresh()
			}
			return m, nil
		}
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if value := m.input.Value(); value != prev {
		m.seq++
		seq := m.seq
		return m, tea.Batch(cmd, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchMsg{seq: seq, query: value}
		}))
	}
	return m, cmd
}

func (m *browseModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if len(m.actions) == 0 {
		b.WriteString(formatter.Dim("No actions match.") + "\n")
	}
	for i, a := range m.actions {
		marker := "  "
		title := formatter.StyleFg.Render(formatter.Truncate(a.Title, 48))
		if i == m.cursor {
			marker = formatter.StyleHeader.Render("▸ ")
			title = formatter.Bold(formatter.Truncate(a.Title, 48))
		}
		flags := ""
		if a.SavedAt != nil {
			flags += " ★"
		}
		if a.CompletedAt != nil {
			flags += " ✔"
		}
		fmt.Fprintf(&b, "%s%s  %s  %s%s\n", marker, title,
			formatter.CTABadge(a.CTAType), formatter.UrgencyIndicator(a.Urgency), formatter.StyleGreen.Render(flags))
	}

	if a, ok := m.selected(); ok {
		b.WriteString("\n" + formatter.FormatActionDetail(a) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n" + formatter.StyleGreen.Render(m.status) + "\n")
	}

	help := make([]string, len(browseKeys))
	for i, k := range browseKeys {
		h := k.Help()
		help[i] = h.Key + " " + h.Desc
	}
	b.WriteString("\n" + formatter.Dim(strings.Join(help, "  ·  ")))
	return b.String()
}
