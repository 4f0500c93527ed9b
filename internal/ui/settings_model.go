package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/example/emojiscrub/internal/settings"
	"github.com/example/emojiscrub/internal/watch"
	"github.com/example/emojiscrub/pkg/ui" // Import the shared styles
)

// Controller is what the panel drives.
type Controller interface {
	ProcessAll(ctx context.Context) ([]watch.Result, error)
	SetAutoRenameOnCreate(enabled bool)
	SetAutoRenameOnRename(enabled bool)
}

type sessionState int

const (
	stateIdle sessionState = iota
	stateRemoving
	stateSaving
)

type action int

const (
	actionRemoveAll action = iota
	actionToggleCreate
	actionToggleRename
)

const maxNotices = 8

type settingItem struct {
	action action
	name   string
	desc   string
	on     bool
}

func (i settingItem) Title() string {
	if i.action == actionRemoveAll {
		return i.name
	}
	mark := "[ ]"
	if i.on {
		mark = "[x]"
	}
	return mark + " " + i.name
}
func (i settingItem) Description() string { return i.desc }
func (i settingItem) FilterValue() string { return i.name }

// Model is the settings panel: a manual trigger and the two auto-remove
// switches, each persisted on change.
type Model struct {
	state    sessionState
	spinner  spinner.Model
	list     list.Model
	ctrl     Controller
	store    settings.Store
	settings settings.Settings
	notices  []string
	status   string
	err      error
}

// NewSettingsModel returns a panel showing current.
func NewSettingsModel(ctrl Controller, store settings.Store, current settings.Settings) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	l := list.New(items(current), list.NewDefaultDelegate(), 0, 0)
	l.Title = "Filename emoji remover"
	l.Styles.Title = ui.TitleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)

	return Model{
		state:    stateIdle,
		spinner:  s,
		list:     l,
		ctrl:     ctrl,
		store:    store,
		settings: current,
	}
}

func items(s settings.Settings) []list.Item {
	return []list.Item{
		settingItem{
			action: actionRemoveAll,
			name:   "Remove manually",
			desc:   "Scan all your existing files and remove emojis from their names",
		},
		settingItem{
			action: actionToggleCreate,
			name:   "Auto-remove for new files",
			desc:   "When a new file is created, automatically remove emojis from its name",
			on:     s.AutoRemoveOnCreate,
		},
		settingItem{
			action: actionToggleRename,
			name:   "Auto-remove after rename",
			desc:   "When an existing file is renamed, automatically remove emojis from its name",
			on:     s.AutoRemoveOnRename,
		},
	}
}

// Settings returns the settings as last saved by the panel.
func (m Model) Settings() settings.Settings { return m.settings }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(msg.Height-maxNotices-4, 8))

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter", " ":
			if m.state != stateIdle {
				return m, nil
			}
			if i, ok := m.list.SelectedItem().(settingItem); ok {
				return m.activate(i)
			}
			return m, nil
		}

	case NoticeMsg:
		m.notices = append(m.notices, string(msg))
		if len(m.notices) > maxNotices {
			m.notices = m.notices[len(m.notices)-maxNotices:]
		}
		return m, nil

	case WatchErrMsg:
		m.err = msg.Err
		return m, nil

	case removedMsg:
		m.state = stateIdle
		m.err = msg.err
		renamed := 0
		for _, r := range msg.results {
			if r.Renamed {
				renamed++
			}
		}
		m.status = fmt.Sprintf("Renamed %d of %d files", renamed, len(msg.results))
		return m, nil

	case savedMsg:
		m.state = stateIdle
		m.settings = msg.settings
		m.err = nil
		m.status = "Settings saved"
		return m, m.list.SetItems(items(m.settings))

	case errMsg:
		if m.state == stateSaving {
			m.state = stateIdle
		}
		m.err = msg.err
		return m, nil
	}

	if m.state == stateRemoving {
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) activate(i settingItem) (tea.Model, tea.Cmd) {
	switch i.action {
	case actionRemoveAll:
		m.state = stateRemoving
		m.status = ""
		return m, tea.Batch(m.spinner.Tick, removeAllCmd(m.ctrl))
	case actionToggleCreate:
		next := m.settings
		next.AutoRemoveOnCreate = !next.AutoRemoveOnCreate
		m.state = stateSaving
		return m, saveCmd(m.store, next, func() { m.ctrl.SetAutoRenameOnCreate(next.AutoRemoveOnCreate) })
	case actionToggleRename:
		next := m.settings
		next.AutoRemoveOnRename = !next.AutoRemoveOnRename
		m.state = stateSaving
		return m, saveCmd(m.store, next, func() { m.ctrl.SetAutoRenameOnRename(next.AutoRemoveOnRename) })
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(m.list.View())
	b.WriteString("\n")

	if m.state == stateRemoving {
		b.WriteString(fmt.Sprintf("\n %s Removing emojis from all filenames...\n", m.spinner.View()))
	}
	for _, n := range m.notices {
		b.WriteString(" " + ui.Render(n) + "\n")
	}
	if m.status != "" {
		b.WriteString("\n " + ui.SubtleStyle.Render(m.status) + "\n")
	}
	if m.err != nil {
		b.WriteString("\n " + ui.Render("Error: "+m.err.Error()) + "\n")
	}
	return b.String()
}

// Commands and Messages

// NoticeMsg carries one rename notification into the panel.
type NoticeMsg string

// WatchErrMsg reports a failure of the background watcher.
type WatchErrMsg struct{ Err error }

// Notifier forwards notifications to a running program.
type Notifier struct {
	Program *tea.Program
}

// Notify implements watch.Notifier.
func (n *Notifier) Notify(message string) {
	if n.Program != nil {
		n.Program.Send(NoticeMsg(message))
	}
}

type removedMsg struct {
	results []watch.Result
	err     error
}

type savedMsg struct {
	settings settings.Settings
}

type errMsg struct{ err error }

func removeAllCmd(ctrl Controller) tea.Cmd {
	return func() tea.Msg {
		results, err := ctrl.ProcessAll(context.Background())
		return removedMsg{results: results, err: err}
	}
}

// saveCmd persists next first; the subscription only changes once the
// setting is on disk.
func saveCmd(store settings.Store, next settings.Settings, apply func()) tea.Cmd {
	return func() tea.Msg {
		if err := store.Save(next); err != nil {
			return errMsg{err: fmt.Errorf("failed to save settings: %w", err)}
		}
		apply()
		return savedMsg{settings: next}
	}
}
