package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/asamadder/kodama/internal/api"
	rev "github.com/asamadder/kodama/internal/review"
	"github.com/asamadder/kodama/internal/router"
	"github.com/asamadder/kodama/internal/screen"
	"github.com/asamadder/kodama/internal/srs"
	"github.com/asamadder/kodama/internal/ui/components"
	"github.com/asamadder/kodama/internal/ui/layout"
	"github.com/asamadder/kodama/internal/ui/theme"
)

// ReviewScreen implements screen.Screen for an active review session.
type ReviewScreen struct {
	session *rev.Session
	input   components.TextInput

	showingFeedback bool
	lastOutcome     rev.Outcome
	statusMsg       string
}

var _ screen.Screen = (*ReviewScreen)(nil)
var _ screen.KeyHintProvider = (*ReviewScreen)(nil)

// New creates a new ReviewScreen over an unstarted session.
func New(session *rev.Session) *ReviewScreen {
	return &ReviewScreen{
		session: session,
		input:   components.NewTextInput("Your answer...", 64),
	}
}

func (s *ReviewScreen) Init() tea.Cmd {
	return tea.Batch(
		s.startSession(),
		s.input.Init(),
	)
}

func (s *ReviewScreen) Title() string {
	return "Reviews"
}

func (s *ReviewScreen) KeyHints() []layout.KeyHint {
	switch s.session.State() {
	case rev.StateReviewing:
		if s.showingFeedback {
			return nil
		}
		return []layout.KeyHint{
			{Key: "Enter", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Home"},
		}
	}
}

func (s *ReviewScreen) startSession() tea.Cmd {
	return func() tea.Msg {
		return sessionReadyMsg{Err: s.session.Start(context.Background())}
	}
}

func (s *ReviewScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionReadyMsg:
		return s, nil

	case feedbackDoneMsg:
		s.showingFeedback = false
		s.session.Advance()
		s.input.Reset()
		return s, s.input.Init()

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.session.State() == rev.StateReviewing && !s.showingFeedback {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *ReviewScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.session.State() {
	case rev.StateEmpty, rev.StateComplete, rev.StateError:
		if key == "enter" || key == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}

	if s.showingFeedback {
		return s, nil
	}

	switch key {
	case "enter":
		return s.submit()
	case "esc":
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ReviewScreen) submit() (screen.Screen, tea.Cmd) {
	outcome, err := s.session.SubmitAnswer(context.Background(), s.input.Value())
	if err != nil {
		if errors.Is(err, rev.ErrBlankAnswer) {
			return s, nil
		}
		s.statusMsg = submitErrorMessage(err)
		return s, nil
	}

	s.statusMsg = ""
	s.lastOutcome = outcome
	s.showingFeedback = true
	s.input.Submit(outcome.Correct)

	return s, tea.Tick(feedbackDelay, func(time.Time) tea.Msg {
		return feedbackDoneMsg{}
	})
}

// submitErrorMessage maps a failed review submit to a short status line.
// The answer is kept, so every case invites a retry.
func submitErrorMessage(err error) string {
	var rateErr *api.ErrRateLimited
	if errors.As(err, &rateErr) {
		return fmt.Sprintf("Rate limited — try again in %ds", int(rateErr.RetryAfter.Seconds()))
	}
	var connErr *api.ErrNoConnection
	if errors.As(err, &connErr) {
		return "No connection — press Enter to retry"
	}
	return "Couldn't submit — press Enter to retry"
}

func (s *ReviewScreen) View(width, height int) string {
	switch s.session.State() {
	case rev.StateLoading:
		return centered(width, height, theme.Hint.Render("Loading reviews..."))
	case rev.StateError:
		return centered(width, height,
			theme.Incorrect.Render("Couldn't start the session")+"\n\n"+
				theme.Subtitle.Render(s.session.Err().Error()))
	case rev.StateEmpty:
		return centered(width, height,
			theme.Title.Render("No reviews right now")+"\n\n"+
				theme.Subtitle.Render("Come back when the next batch unlocks."))
	case rev.StateComplete:
		return s.renderSummary(width, height)
	}
	return s.renderQuestion(width, height)
}

func (s *ReviewScreen) renderQuestion(width, height int) string {
	item := s.session.Current()
	if item == nil {
		return ""
	}

	var b strings.Builder

	completed, total := s.session.Progress()
	bar := components.NewProgressBar("", float64(completed)/float64(total), false, min(width-8, 50))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Hint.Render(fmt.Sprintf("%d of %d", completed, total))))
	b.WriteString("\n\n")

	b.WriteString(components.SubjectGlyph(item.Subject, width))
	b.WriteString("\n\n")

	prompt := "Meaning:"
	if item.Kind == rev.KindReading {
		prompt = "Reading:"
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Bold(true).Render(prompt)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))
	b.WriteString("\n\n")

	if s.showingFeedback {
		b.WriteString(s.renderFeedback(item, width))
	} else if s.statusMsg != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Incorrect.Render(s.statusMsg)))
	}

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}

func (s *ReviewScreen) renderFeedback(item *rev.Item, width int) string {
	if s.lastOutcome.Correct {
		msg := theme.Correct.Render("Correct!")
		if s.lastOutcome.Review != nil {
			switch {
			case s.lastOutcome.Review.DidLevelUp():
				msg += theme.Hint.Render("  up to " + srs.Stage(s.lastOutcome.Review.EndingSRSStage).Name())
			case s.lastOutcome.Review.DidLevelDown():
				msg += theme.Hint.Render("  back to " + srs.Stage(s.lastOutcome.Review.EndingSRSStage).Name())
			}
		}
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, msg)
	}

	accepted := item.Subject.AcceptedMeanings()
	if item.Kind == rev.KindReading {
		accepted = item.Subject.AcceptedReadings()
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Incorrect.Render("Incorrect")+
			theme.Hint.Render("  "+strings.Join(accepted, ", ")))
}

func (s *ReviewScreen) renderSummary(width, height int) string {
	correct, incorrect := s.session.Stats()
	total := correct + incorrect

	var b strings.Builder
	b.WriteString(theme.Title.Width(width).Render("Reviews complete!"))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Render(fmt.Sprintf("Items: %d        Correct: %d        Incorrect: %d",
			total, correct, incorrect))))
	if total > 0 {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Subtitle.Render(fmt.Sprintf("Accuracy: %.0f%%", float64(correct)/float64(total)*100))))
	}

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
