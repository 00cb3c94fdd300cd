package lesson

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	les "github.com/asamadder/kodama/internal/lesson"
	"github.com/asamadder/kodama/internal/router"
	"github.com/asamadder/kodama/internal/screen"
	"github.com/asamadder/kodama/internal/ui/components"
	"github.com/asamadder/kodama/internal/ui/layout"
	"github.com/asamadder/kodama/internal/ui/theme"
)

// sessionReadyMsg is sent when the session has loaded its batch.
type sessionReadyMsg struct {
	Err error
}

// LessonScreen implements screen.Screen for the lesson flow.
type LessonScreen struct {
	session  *les.Session
	input    components.TextInput
	tryAgain bool
}

var _ screen.Screen = (*LessonScreen)(nil)
var _ screen.KeyHintProvider = (*LessonScreen)(nil)

// New creates a new LessonScreen over an unstarted session.
func New(session *les.Session) *LessonScreen {
	return &LessonScreen{
		session: session,
		input:   components.NewTextInput("Your answer...", 64),
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return sessionReadyMsg{Err: s.session.Start(context.Background())}
	}
}

func (s *LessonScreen) Title() string {
	return "Lessons"
}

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	switch s.session.Phase() {
	case les.PhaseLearning:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start quiz"},
			{Key: "Esc", Description: "Quit"},
		}
	case les.PhaseQuizzing:
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

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionReadyMsg:
		return s, nil
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.session.Phase() == les.PhaseQuizzing {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LessonScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.session.Phase() {
	case les.PhaseLearning:
		switch key {
		case "enter":
			s.session.BeginQuiz()
			s.tryAgain = false
			s.input.Reset()
			return s, s.input.Init()
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil

	case les.PhaseQuizzing:
		switch key {
		case "enter":
			return s.submit()
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	default:
		if key == "enter" || key == "esc" {
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		}
		return s, nil
	}
}

func (s *LessonScreen) submit() (screen.Screen, tea.Cmd) {
	correct, err := s.session.SubmitAnswer(context.Background(), s.input.Value())
	if err != nil {
		// Blank answers and anything else just keep the quiz in place.
		if !errors.Is(err, les.ErrBlankAnswer) {
			s.tryAgain = true
		}
		return s, nil
	}

	s.tryAgain = !correct
	s.input.Reset()
	return s, s.input.Init()
}

func (s *LessonScreen) View(width, height int) string {
	switch s.session.Phase() {
	case les.PhaseLoading:
		return centered(width, height, theme.Hint.Render("Loading lessons..."))
	case les.PhaseError:
		return centered(width, height,
			theme.Incorrect.Render("Couldn't start lessons")+"\n\n"+
				theme.Subtitle.Render(s.session.Err().Error()))
	case les.PhaseEmpty:
		return centered(width, height,
			theme.Title.Render("No lessons available")+"\n\n"+
				theme.Subtitle.Render("Sync or level up to unlock more."))
	case les.PhaseComplete:
		_, total := s.session.Progress()
		return centered(width, height,
			theme.Title.Render("Lessons complete!")+"\n\n"+
				theme.Subtitle.Render(fmt.Sprintf("%d new items entered your review queue.", total)))
	case les.PhaseLearning:
		return s.renderStudy(width, height)
	}
	return s.renderQuiz(width, height)
}

// renderStudy shows the subject's details before the quiz.
func (s *LessonScreen) renderStudy(width, height int) string {
	item := s.session.Current()
	if item == nil {
		return ""
	}

	var b strings.Builder

	completed, total := s.session.Progress()
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Hint.Render(fmt.Sprintf("Lesson %d of %d", completed+1, total))))
	b.WriteString("\n\n")

	b.WriteString(components.SubjectGlyph(item.Subject, width))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Bold(true).Render(item.Subject.PrimaryMeaning())))
	b.WriteString("\n")

	if alternatives := secondaryMeanings(item.Subject.AcceptedMeanings(), item.Subject.PrimaryMeaning()); alternatives != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Subtitle.Render("also: "+alternatives)))
		b.WriteString("\n")
	}

	if item.Subject.HasReadings() {
		b.WriteString("\n")
		var readings []string
		for _, r := range item.Subject.Readings {
			label := r.Reading
			if r.Kind != "" {
				label += " (" + r.Kind + ")"
			}
			readings = append(readings, label)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Body.Render(strings.Join(readings, "  "))))
		b.WriteString("\n")
	}

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}

func (s *LessonScreen) renderQuiz(width, height int) string {
	item := s.session.Current()
	if item == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(components.SubjectGlyph(item.Subject, width))
	b.WriteString("\n\n")

	prompt := "Meaning:"
	if s.session.Question() == les.QuestionReading {
		prompt = "Reading:"
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Bold(true).Render(prompt)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.input.View()))

	if s.tryAgain {
		b.WriteString("\n\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Incorrect.Render("Not quite — try again")))
	}

	return lipgloss.PlaceVertical(height, lipgloss.Center, b.String())
}

func secondaryMeanings(accepted []string, primary string) string {
	var rest []string
	for _, m := range accepted {
		if m != primary {
			rest = append(rest, m)
		}
	}
	return strings.Join(rest, ", ")
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
