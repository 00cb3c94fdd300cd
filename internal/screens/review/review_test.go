package review

import (
	"context"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/asamadder/kodama/internal/api"
	rev "github.com/asamadder/kodama/internal/review"
	"github.com/asamadder/kodama/internal/router"
	"github.com/asamadder/kodama/internal/screen"
	"github.com/asamadder/kodama/internal/store"
)

// fakeAssignments implements rev.AssignmentSource for testing.
type fakeAssignments struct {
	due   []store.Assignment
	saved []store.Assignment
}

func (f *fakeAssignments) DueForReview(_ context.Context, _ time.Time) ([]store.Assignment, error) {
	return f.due, nil
}

func (f *fakeAssignments) Save(_ context.Context, a store.Assignment) error {
	f.saved = append(f.saved, a)
	return nil
}

// fakeSubjects implements rev.SubjectSource for testing.
type fakeSubjects struct {
	byID map[int]*store.Subject
}

func (f *fakeSubjects) GetByIDs(_ context.Context, _ []int) (map[int]*store.Subject, error) {
	return f.byID, nil
}

// fakeSubmitter implements rev.Submitter for testing.
type fakeSubmitter struct {
	submitted []api.CreateReview
}

func (f *fakeSubmitter) SubmitReview(_ context.Context, r api.CreateReview) (*api.Review, error) {
	f.submitted = append(f.submitted, r)
	return &api.Review{
		CreatedAt:               time.Now(),
		AssignmentID:            r.AssignmentID,
		StartingSRSStage:        2,
		EndingSRSStage:          3,
		IncorrectMeaningAnswers: r.IncorrectMeaningAnswers,
		IncorrectReadingAnswers: r.IncorrectReadingAnswers,
	}, nil
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// testReviewScreen builds a started screen over a single meaning-only
// radical so the question order is fixed.
func testReviewScreen(t *testing.T) (*ReviewScreen, *fakeSubmitter) {
	t.Helper()

	due := time.Now().Add(-time.Minute)
	assignments := &fakeAssignments{
		due: []store.Assignment{
			{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 2, AvailableAt: &due},
		},
	}
	subjects := &fakeSubjects{byID: map[int]*store.Subject{
		10: {
			ID:         10,
			Type:       store.SubjectRadical,
			Characters: "一",
			Slug:       "ground",
			Meanings:   []store.Meaning{{Meaning: "ground", Primary: true, AcceptedAnswer: true}},
		},
	}}
	submitter := &fakeSubmitter{}

	s := New(rev.NewSession(assignments, subjects, submitter))
	if err := s.session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s, submitter
}

func TestReviewScreen_Title(t *testing.T) {
	s, _ := testReviewScreen(t)
	if s.Title() != "Reviews" {
		t.Errorf("Title = %q, want %q", s.Title(), "Reviews")
	}
}

func TestReviewScreen_View_Question(t *testing.T) {
	s, _ := testReviewScreen(t)
	if s.View(80, 24) == "" {
		t.Error("expected non-empty view for an active question")
	}
}

func TestReviewScreen_View_Empty(t *testing.T) {
	s := New(rev.NewSession(&fakeAssignments{}, &fakeSubjects{}, &fakeSubmitter{}))
	if err := s.session.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.View(80, 24) == "" {
		t.Error("expected non-empty view for empty state")
	}
}

func TestReviewScreen_AnswerSubmit(t *testing.T) {
	s, submitter := testReviewScreen(t)

	s.input.Model.SetValue("ground")

	var scr screen.Screen = s
	scr, cmd := scr.Update(specialKey(tea.KeyEnter))
	rs := scr.(*ReviewScreen)

	if !rs.showingFeedback {
		t.Error("expected feedback to be shown after submit")
	}
	if !rs.lastOutcome.Correct {
		t.Error("expected answer to be correct")
	}
	if cmd == nil {
		t.Error("expected a feedback timer command")
	}
	if len(submitter.submitted) != 1 {
		t.Fatalf("submitted reviews = %d, want 1", len(submitter.submitted))
	}

	// Dismissing the feedback advances past the only item.
	scr, _ = rs.Update(feedbackDoneMsg{})
	rs = scr.(*ReviewScreen)
	if rs.session.State() != rev.StateComplete {
		t.Errorf("state = %v, want StateComplete", rs.session.State())
	}
}

func TestReviewScreen_WrongAnswerComesBack(t *testing.T) {
	s, submitter := testReviewScreen(t)

	s.input.Model.SetValue("mountain")

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	rs := scr.(*ReviewScreen)

	if rs.lastOutcome.Correct {
		t.Error("expected answer to be wrong")
	}
	if len(submitter.submitted) != 0 {
		t.Errorf("submitted reviews = %d, want 0", len(submitter.submitted))
	}

	scr, _ = rs.Update(feedbackDoneMsg{})
	rs = scr.(*ReviewScreen)
	if rs.session.State() != rev.StateReviewing {
		t.Errorf("state = %v, want StateReviewing after a wrong answer", rs.session.State())
	}
}

func TestReviewScreen_BlankAnswerIgnored(t *testing.T) {
	s, _ := testReviewScreen(t)

	var scr screen.Screen = s
	scr, _ = scr.Update(specialKey(tea.KeyEnter))
	rs := scr.(*ReviewScreen)

	if rs.showingFeedback {
		t.Error("expected no feedback for a blank answer")
	}
}

func TestReviewScreen_EscPops(t *testing.T) {
	s, _ := testReviewScreen(t)

	var scr screen.Screen = s
	_, cmd := scr.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected a command from Esc")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg from Esc")
	}
}

func TestReviewScreen_KeyHints(t *testing.T) {
	s, _ := testReviewScreen(t)
	if len(s.KeyHints()) == 0 {
		t.Error("expected non-empty key hints while reviewing")
	}
}
