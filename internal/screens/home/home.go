package home

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/asamadder/kodama/internal/api"
	les "github.com/asamadder/kodama/internal/lesson"
	rev "github.com/asamadder/kodama/internal/review"
	"github.com/asamadder/kodama/internal/router"
	"github.com/asamadder/kodama/internal/screen"
	lessonscreen "github.com/asamadder/kodama/internal/screens/lesson"
	reviewscreen "github.com/asamadder/kodama/internal/screens/review"
	"github.com/asamadder/kodama/internal/store"
	"github.com/asamadder/kodama/internal/syncer"
	"github.com/asamadder/kodama/internal/ui/components"
	"github.com/asamadder/kodama/internal/ui/theme"
)

// Deps carries the shared services the home screen hands to sessions.
type Deps struct {
	Store           *store.Store
	Client          *api.Client
	Syncer          *syncer.Coordinator
	LessonBatchSize int
}

// statsMsg carries the refreshed dashboard counts.
type statsMsg struct {
	ReviewsDue       int
	LessonsAvailable int
	LastSync         *time.Time
	Err              error
}

// SyncDoneMsg is published when a sync triggered from the home screen
// finishes. The root model also watches it to refresh the header.
type SyncDoneMsg struct {
	Err error
}

// HomeScreen is the main menu of the application.
type HomeScreen struct {
	deps Deps

	menu             components.Menu
	reviewsDue       int
	lessonsAvailable int
	lastSync         *time.Time
	syncing          bool
	statusMsg        string
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu(h.menuItems())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) menuItems() []components.MenuItem {
	reviewBadge := ""
	if h.reviewsDue > 0 {
		reviewBadge = fmt.Sprintf("%d", h.reviewsDue)
	}
	lessonBadge := ""
	if h.lessonsAvailable > 0 {
		lessonBadge = fmt.Sprintf("%d", h.lessonsAvailable)
	}

	return []components.MenuItem{
		{Label: "REVIEWS", Badge: reviewBadge, Action: func() tea.Cmd {
			session := rev.NewSession(
				h.deps.Store.Assignments(),
				h.deps.Store.Subjects(),
				h.deps.Client,
			)
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: reviewscreen.New(session)}
			}
		}},
		{Label: "LESSONS", Badge: lessonBadge, Action: func() tea.Cmd {
			session := les.NewSession(
				h.deps.Store.Assignments(),
				h.deps.Store.Subjects(),
				h.deps.Client,
				les.WithBatchSize(h.deps.LessonBatchSize),
			)
			return func() tea.Msg {
				return router.PushScreenMsg{Screen: lessonscreen.New(session)}
			}
		}},
		{Label: "SYNC NOW", Action: func() tea.Cmd {
			return h.startSync()
		}},
		{Label: "EXIT", Action: func() tea.Cmd {
			return tea.Quit
		}},
	}
}

func (h *HomeScreen) loadStats() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		due, err := h.deps.Store.Assignments().DueForReview(ctx, time.Now())
		if err != nil {
			return statsMsg{Err: err}
		}
		lessons, err := h.deps.Store.Assignments().AvailableForLessons(ctx)
		if err != nil {
			return statsMsg{Err: err}
		}
		lastSync, err := h.deps.Store.Meta().LastSync(ctx)
		if err != nil {
			return statsMsg{Err: err}
		}

		return statsMsg{
			ReviewsDue:       len(due),
			LessonsAvailable: len(lessons),
			LastSync:         lastSync,
		}
	}
}

func (h *HomeScreen) startSync() tea.Cmd {
	if h.syncing {
		return nil
	}
	h.syncing = true
	h.statusMsg = "Syncing..."
	return func() tea.Msg {
		return SyncDoneMsg{Err: h.deps.Syncer.SyncEverything(context.Background(), nil)}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		if msg.Err != nil {
			h.statusMsg = "Couldn't load counts: " + msg.Err.Error()
			return h, nil
		}
		h.reviewsDue = msg.ReviewsDue
		h.lessonsAvailable = msg.LessonsAvailable
		h.lastSync = msg.LastSync
		selected := h.menu.Selected
		h.menu = components.NewMenu(h.menuItems())
		h.menu.Selected = selected
		return h, nil

	case SyncDoneMsg:
		h.syncing = false
		if msg.Err != nil {
			h.statusMsg = "Sync failed: " + msg.Err.Error()
			return h, nil
		}
		h.statusMsg = "Synced"
		return h, h.loadStats()
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var sections []string

	sections = append(sections, theme.Title.Width(width).Render("こだま — Kodama"))
	sections = append(sections, theme.Subtitle.Width(width).Render("spaced repetition, one terminal at a time"))

	stats := fmt.Sprintf("Reviews due: %d        Lessons: %d", h.reviewsDue, h.lessonsAvailable)
	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Render(stats)))

	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center, h.menu.View()))

	status := h.statusMsg
	if status == "" && h.lastSync != nil {
		status = "Last sync " + h.lastSync.Local().Format("Jan 2 15:04")
	}
	if status == "" {
		status = "Not synced yet — pick SYNC NOW to fetch your data"
	}
	sections = append(sections, lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Hint.Render(status)))

	content := strings.Join(sections, "\n\n")
	return lipgloss.PlaceVertical(height, lipgloss.Center, content)
}
