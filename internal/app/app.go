package app

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/router"
	"github.com/asamadder/kodama/internal/screen"
	"github.com/asamadder/kodama/internal/screens/home"
	"github.com/asamadder/kodama/internal/store"
	"github.com/asamadder/kodama/internal/syncer"
	"github.com/asamadder/kodama/internal/ui/layout"
)

// Options carries the wired services for the TUI.
type Options struct {
	Store           *store.Store
	Client          *api.Client
	Syncer          *syncer.Coordinator
	LessonBatchSize int
}

// userLoadedMsg carries the locally stored account record for the header.
type userLoadedMsg struct {
	User *store.User
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	opts   Options
	router *router.Router
	user   *store.User
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	homeScreen := home.New(home.Deps{
		Store:           opts.Store,
		Client:          opts.Client,
		Syncer:          opts.Syncer,
		LessonBatchSize: opts.LessonBatchSize,
	})
	return AppModel{
		opts:   opts,
		router: router.New(homeScreen),
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadUser(),
		m.router.Active().Init(),
	)
}

func (m AppModel) loadUser() tea.Cmd {
	return func() tea.Msg {
		u, err := m.opts.Store.Users().Get(context.Background())
		if err != nil {
			return userLoadedMsg{}
		}
		return userLoadedMsg{User: u}
	}
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case userLoadedMsg:
		m.user = msg.User
		return m, nil

	case home.SyncDoneMsg:
		// Let the home screen handle it too, then refresh the header.
		cmd := m.router.Update(msg)
		return m, tea.Batch(cmd, m.loadUser())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	username := ""
	level := 0
	if m.user != nil {
		username = m.user.Username
		level = m.user.Level
	}
	header := layout.RenderHeader(title, username, level, m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
	if provider, ok := active.(screen.KeyHintProvider); ok {
		if hints := provider.KeyHints(); hints != nil {
			footerHints = hints
		}
	}
	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
