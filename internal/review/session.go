// Package review drives an interactive review session over the locally
// synced assignments.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asamadder/kodama/internal/answer"
	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/srs"
	"github.com/asamadder/kodama/internal/store"
)

// State is the session lifecycle phase.
type State int

const (
	StateLoading State = iota
	StateReviewing
	StateEmpty
	StateComplete
	StateError
)

// QuestionKind distinguishes the two halves of a review item.
type QuestionKind string

const (
	KindMeaning QuestionKind = "meaning"
	KindReading QuestionKind = "reading"
)

// Item is one pending question: a subject asked for either its meaning or
// its reading.
type Item struct {
	Assignment store.Assignment
	Subject    *store.Subject
	Kind       QuestionKind
}

// record tracks per-assignment progress across the item's question halves.
type record struct {
	meaningCorrect   bool
	readingCorrect   bool
	needsReading     bool
	incorrectMeaning int
	incorrectReading int
}

func (r *record) complete() bool {
	return r.meaningCorrect && (!r.needsReading || r.readingCorrect)
}

// Outcome describes the result of one submitted answer.
type Outcome struct {
	Correct bool
	// ItemComplete is set when both question halves are answered correctly
	// and the review has been accepted by the server.
	ItemComplete bool
	// Review is the server response, present only when ItemComplete.
	Review *api.Review
}

// ErrBlankAnswer is returned when the submitted answer is empty after
// trimming. Blank answers are never scored.
var ErrBlankAnswer = errors.New("blank answer")

// AssignmentSource lists and persists assignments.
type AssignmentSource interface {
	DueForReview(ctx context.Context, now time.Time) ([]store.Assignment, error)
	Save(ctx context.Context, a store.Assignment) error
}

// SubjectSource resolves subjects for queued assignments.
type SubjectSource interface {
	GetByIDs(ctx context.Context, ids []int) (map[int]*store.Subject, error)
}

// Submitter sends completed reviews to the server.
type Submitter interface {
	SubmitReview(ctx context.Context, r api.CreateReview) (*api.Review, error)
}

// Session is the review state machine. It is not safe for concurrent use;
// the TUI drives it from a single goroutine.
type Session struct {
	ID string

	assignments AssignmentSource
	subjects    SubjectSource
	submitter   Submitter
	logger      *slog.Logger
	rng         *rand.Rand
	now         func() time.Time

	state     State
	err       error
	queue     []Item
	records   map[int]*record
	total     int
	completed int
	correct   int
	incorrect int
	lastWrong bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithRand sets the shuffle source, for deterministic tests.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.rng = r }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates an unstarted review session.
func NewSession(assignments AssignmentSource, subjects SubjectSource, submitter Submitter, opts ...Option) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		assignments: assignments,
		subjects:    subjects,
		submitter:   submitter,
		logger:      slog.Default(),
		rng:         rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:         time.Now,
		state:       StateLoading,
		records:     map[int]*record{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads due assignments and builds the shuffled question queue.
// Assignments whose subject is missing locally are skipped and logged;
// they resolve themselves on the next sync.
func (s *Session) Start(ctx context.Context) error {
	due, err := s.assignments.DueForReview(ctx, s.now())
	if err != nil {
		s.state = StateError
		s.err = fmt.Errorf("load due assignments: %w", err)
		return s.err
	}

	ids := make([]int, 0, len(due))
	for _, a := range due {
		ids = append(ids, a.SubjectID)
	}
	subjects, err := s.subjects.GetByIDs(ctx, ids)
	if err != nil {
		s.state = StateError
		s.err = fmt.Errorf("load subjects: %w", err)
		return s.err
	}

	for _, a := range due {
		sub, ok := subjects[a.SubjectID]
		if !ok {
			s.logger.Warn("skipping assignment with missing subject",
				"assignment_id", a.ID, "subject_id", a.SubjectID)
			continue
		}

		rec := &record{needsReading: sub.HasReadings()}
		s.records[a.ID] = rec

		s.queue = append(s.queue, Item{Assignment: a, Subject: sub, Kind: KindMeaning})
		if rec.needsReading {
			s.queue = append(s.queue, Item{Assignment: a, Subject: sub, Kind: KindReading})
		}
	}

	s.rng.Shuffle(len(s.queue), func(i, j int) {
		s.queue[i], s.queue[j] = s.queue[j], s.queue[i]
	})

	s.total = len(s.records)
	if s.total == 0 {
		s.state = StateEmpty
	} else {
		s.state = StateReviewing
	}
	s.logger.Info("review session started", "session_id", s.ID, "assignments", s.total)
	return nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Err returns the error that moved the session into StateError.
func (s *Session) Err() error { return s.err }

// Current returns the item being asked, or nil outside StateReviewing.
func (s *Session) Current() *Item {
	if s.state != StateReviewing || len(s.queue) == 0 {
		return nil
	}
	return &s.queue[0]
}

// Progress returns completed and total assignment counts.
func (s *Session) Progress() (completed, total int) {
	return s.completed, s.total
}

// Stats returns the number of assignments finished fully correct and the
// number finished with at least one wrong answer.
func (s *Session) Stats() (correct, incorrect int) {
	return s.correct, s.incorrect
}

// SubmitAnswer scores the answer for the current item. The current item
// does not change; call Advance once feedback has been shown. When the
// answer completes an assignment the review is sent to the server before
// returning: a transport or rate-limit error leaves the session unchanged
// so the same answer can be resubmitted.
func (s *Session) SubmitAnswer(ctx context.Context, userAnswer string) (Outcome, error) {
	item := s.Current()
	if item == nil {
		return Outcome{}, errors.New("no current item")
	}
	if strings.TrimSpace(userAnswer) == "" {
		return Outcome{}, ErrBlankAnswer
	}

	// A finished item stays at the head of the queue until Advance pops it,
	// but its record is gone. There is nothing left to score.
	rec, ok := s.records[item.Assignment.ID]
	if !ok {
		return Outcome{}, errors.New("item already completed")
	}

	var correct bool
	if item.Kind == KindMeaning {
		correct = answer.CheckMeaning(userAnswer, item.Subject)
	} else {
		correct = answer.CheckReading(userAnswer, item.Subject)
	}

	if !correct {
		if item.Kind == KindMeaning {
			rec.incorrectMeaning++
		} else {
			rec.incorrectReading++
		}
		s.lastWrong = true
		return Outcome{Correct: false}, nil
	}

	if item.Kind == KindMeaning {
		rec.meaningCorrect = true
	} else {
		rec.readingCorrect = true
	}
	s.lastWrong = false

	if !rec.complete() {
		return Outcome{Correct: true}, nil
	}

	review, err := s.submitter.SubmitReview(ctx, api.CreateReview{
		AssignmentID:            item.Assignment.ID,
		IncorrectMeaningAnswers: rec.incorrectMeaning,
		IncorrectReadingAnswers: rec.incorrectReading,
	})
	if err != nil {
		// Leave the record flags in place: a retry re-evaluates the same
		// answer as correct and attempts the submit again.
		return Outcome{}, fmt.Errorf("submit review: %w", err)
	}

	preview := srs.Calculate(srs.Stage(item.Assignment.SRSStage), rec.incorrectMeaning+rec.incorrectReading)
	if int(preview.NewStage) != review.EndingSRSStage {
		s.logger.Debug("stage preview differed from server",
			"assignment_id", item.Assignment.ID,
			"preview", int(preview.NewStage), "server", review.EndingSRSStage)
	}

	s.finishAssignment(ctx, item.Assignment, rec, review)
	return Outcome{Correct: true, ItemComplete: true, Review: review}, nil
}

// finishAssignment records the server result, purges leftover queue items
// for the assignment, and updates counters.
func (s *Session) finishAssignment(ctx context.Context, a store.Assignment, rec *record, review *api.Review) {
	a.SRSStage = review.EndingSRSStage
	// Cleared until the next sync brings the real schedule, so the
	// assignment does not reappear as due within this session's data.
	a.AvailableAt = nil
	a.UpdatedAt = review.CreatedAt
	if err := s.assignments.Save(ctx, a); err != nil {
		s.logger.Warn("persist reviewed assignment failed", "assignment_id", a.ID, "error", err)
	}

	if rec.incorrectMeaning == 0 && rec.incorrectReading == 0 {
		s.correct++
	} else {
		s.incorrect++
	}
	s.completed++
	delete(s.records, a.ID)

	kept := s.queue[:1]
	for _, it := range s.queue[1:] {
		if it.Assignment.ID != a.ID {
			kept = append(kept, it)
		}
	}
	s.queue = kept
}

// Advance pops the current item once its feedback has been shown. A
// wrongly answered item is reinserted at a random later position so it
// comes back around.
func (s *Session) Advance() {
	if s.state != StateReviewing || len(s.queue) == 0 {
		return
	}

	item := s.queue[0]
	s.queue = s.queue[1:]

	if _, active := s.records[item.Assignment.ID]; active && s.lastWrong {
		// Never position 0: the same question must not come straight back.
		pos := 0
		if len(s.queue) > 0 {
			pos = 1 + s.rng.IntN(len(s.queue))
		}
		s.queue = append(s.queue[:pos], append([]Item{item}, s.queue[pos:]...)...)
	}
	s.lastWrong = false

	if len(s.queue) == 0 {
		s.state = StateComplete
		s.logger.Info("review session complete",
			"session_id", s.ID, "correct", s.correct, "incorrect", s.incorrect)
	}
}
