package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spotifire/spotifire/internal/models"
)

// ViewState represents the current view in the audit browser.
type ViewState int

const (
	EventListView ViewState = iota
	EventDetailView
)

// eventItem wraps [models.Event] to implement [list.Item].
type eventItem struct {
	event *models.Event
}

func (i eventItem) FilterValue() string { return i.event.Metadata["prompt"] }

func (i eventItem) Title() string {
	title := string(i.event.Type)
	if prompt := i.event.Metadata["prompt"]; prompt != "" {
		title = fmt.Sprintf("%s: %s", title, prompt)
	}
	return title
}

func (i eventItem) Description() string {
	return fmt.Sprintf("user %s • %s", i.event.UserID, i.event.Timestamp.Format(time.RFC3339))
}

// Model is the bubbletea model for browsing the audit event log.
type Model struct {
	view      ViewState
	eventList list.Model
	selected  *models.Event
	width     int
	height    int
	help      help.Model
	keys      keyMap
}

// NewModel creates an audit browser over the given events.
func NewModel(events []*models.Event) *Model {
	items := make([]list.Item, len(events))
	for i, event := range events {
		items[i] = eventItem{event: event}
	}

	delegate := list.NewDefaultDelegate()
	eventList := list.New(items, delegate, 0, 0)
	eventList.Title = "Audit Events"
	eventList.SetShowHelp(false)

	return &Model{
		view:      EventListView,
		eventList: eventList,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.eventList.SetSize(msg.Width, msg.Height-4)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.enter):
			if m.view == EventListView {
				if item, ok := m.eventList.SelectedItem().(eventItem); ok {
					m.selected = item.event
					m.view = EventDetailView
				}
				return m, nil
			}

		case key.Matches(msg, m.keys.back):
			if m.view == EventDetailView {
				m.view = EventListView
				return m, nil
			}
		}
	}

	if m.view == EventListView {
		var cmd tea.Cmd
		m.eventList, cmd = m.eventList.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) View() string {
	switch m.view {
	case EventDetailView:
		return m.detailView()
	default:
		return m.eventList.View() + "\n" + styles.help.Render(m.help.View(m.keys))
	}
}

// detailView renders one event's full metadata.
func (m *Model) detailView() string {
	if m.selected == nil {
		return "No event selected"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(fmt.Sprintf("Event %s", m.selected.ID)) + "\n")

	style := styles.ok
	if m.selected.Type == models.EventFailed {
		style = styles.err
	}
	b.WriteString(fmt.Sprintf("Type:      %s\n", style.Render(string(m.selected.Type))))
	b.WriteString(fmt.Sprintf("User:      %s\n", m.selected.UserID))
	b.WriteString(fmt.Sprintf("Timestamp: %s\n", m.selected.Timestamp.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("Sequence:  %d\n", m.selected.Sequence))

	if len(m.selected.Metadata) > 0 {
		b.WriteString("\nMetadata:\n")
		keys := make([]string, 0, len(m.selected.Metadata))
		for k := range m.selected.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("  %s: %s\n", k, m.selected.Metadata[k]))
		}
	}

	b.WriteString("\n" + styles.help.Render("esc back • q quit"))
	return b.String()
}

// Browse runs the audit browser over the given events until the user quits.
func Browse(events []*models.Event) error {
	program := tea.NewProgram(NewModel(events), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run audit browser: %w", err)
	}
	return nil
}
