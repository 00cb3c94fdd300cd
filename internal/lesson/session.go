// Package lesson drives the first-exposure flow for unlocked assignments:
// study the subject, pass a short quiz, then start the assignment on the
// server so it enters the review schedule.
package lesson

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/asamadder/kodama/internal/answer"
	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/store"
	"github.com/asamadder/kodama/internal/syncer"
)

// Phase is the session lifecycle phase.
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLearning
	PhaseQuizzing
	PhaseEmpty
	PhaseComplete
	PhaseError
)

// Question identifies which quiz half is being asked.
type Question string

const (
	QuestionMeaning Question = "meaning"
	QuestionReading Question = "reading"
)

// ErrBlankAnswer is returned for answers that are empty after trimming.
var ErrBlankAnswer = errors.New("blank answer")

// DefaultBatchSize caps how many lessons one session takes on.
const DefaultBatchSize = 5

// Item pairs an assignment with its resolved subject.
type Item struct {
	Assignment store.Assignment
	Subject    *store.Subject
}

// AssignmentSource lists and persists lesson assignments.
type AssignmentSource interface {
	AvailableForLessons(ctx context.Context) ([]store.Assignment, error)
	Save(ctx context.Context, a store.Assignment) error
}

// SubjectSource resolves subjects for queued assignments.
type SubjectSource interface {
	GetByIDs(ctx context.Context, ids []int) (map[int]*store.Subject, error)
}

// Starter moves a quizzed assignment into the review schedule.
type Starter interface {
	StartAssignment(ctx context.Context, id int, startedAt *time.Time) (*api.Assignment, error)
}

// Session is the lesson state machine. Like the review session it is
// driven from a single goroutine.
type Session struct {
	assignments AssignmentSource
	subjects    SubjectSource
	starter     Starter
	logger      *slog.Logger
	now         func() time.Time
	batchSize   int

	phase    Phase
	err      error
	items    []Item
	idx      int
	question Question
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithBatchSize caps how many lessons the session loads. Zero or negative
// falls back to DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates an unstarted lesson session.
func NewSession(assignments AssignmentSource, subjects SubjectSource, starter Starter, opts ...Option) *Session {
	s := &Session{
		assignments: assignments,
		subjects:    subjects,
		starter:     starter,
		logger:      slog.Default(),
		now:         time.Now,
		batchSize:   DefaultBatchSize,
		phase:       PhaseLoading,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the next batch of lessons in unlock order. Unlike reviews
// the order is stable: the curriculum presents radicals before the kanji
// built from them.
func (s *Session) Start(ctx context.Context) error {
	available, err := s.assignments.AvailableForLessons(ctx)
	if err != nil {
		s.phase = PhaseError
		s.err = fmt.Errorf("load lessons: %w", err)
		return s.err
	}
	if len(available) > s.batchSize {
		available = available[:s.batchSize]
	}

	ids := make([]int, 0, len(available))
	for _, a := range available {
		ids = append(ids, a.SubjectID)
	}
	subjects, err := s.subjects.GetByIDs(ctx, ids)
	if err != nil {
		s.phase = PhaseError
		s.err = fmt.Errorf("load subjects: %w", err)
		return s.err
	}

	for _, a := range available {
		sub, ok := subjects[a.SubjectID]
		if !ok {
			s.logger.Warn("skipping lesson with missing subject",
				"assignment_id", a.ID, "subject_id", a.SubjectID)
			continue
		}
		s.items = append(s.items, Item{Assignment: a, Subject: sub})
	}

	if len(s.items) == 0 {
		s.phase = PhaseEmpty
	} else {
		s.phase = PhaseLearning
	}
	s.logger.Info("lesson session started", "lessons", len(s.items))
	return nil
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase { return s.phase }

// Err returns the error that moved the session into PhaseError.
func (s *Session) Err() error { return s.err }

// Current returns the item being studied or quizzed, or nil.
func (s *Session) Current() *Item {
	if s.idx >= len(s.items) {
		return nil
	}
	if s.phase != PhaseLearning && s.phase != PhaseQuizzing {
		return nil
	}
	return &s.items[s.idx]
}

// Question returns the quiz half currently being asked.
func (s *Session) Question() Question { return s.question }

// Progress returns completed and total lesson counts.
func (s *Session) Progress() (completed, total int) {
	done := s.idx
	if s.phase == PhaseComplete {
		done = len(s.items)
	}
	return done, len(s.items)
}

// BeginQuiz moves the current lesson from study to its quiz.
func (s *Session) BeginQuiz() {
	if s.phase != PhaseLearning {
		return
	}
	s.phase = PhaseQuizzing
	s.question = QuestionMeaning
}

// SubmitAnswer checks the quiz answer. Wrong answers are not recorded
// anywhere; the learner retries until correct. When the last quiz half
// passes, the assignment is started on the server and the session moves
// to the next lesson. A failed start is logged and the session advances
// anyway so one bad request cannot wedge the batch; the server state
// converges on the next sync.
func (s *Session) SubmitAnswer(ctx context.Context, userAnswer string) (correct bool, err error) {
	item := s.Current()
	if item == nil || s.phase != PhaseQuizzing {
		return false, errors.New("no quiz in progress")
	}
	if strings.TrimSpace(userAnswer) == "" {
		return false, ErrBlankAnswer
	}

	if s.question == QuestionMeaning {
		if !answer.CheckMeaning(userAnswer, item.Subject) {
			return false, nil
		}
		if item.Subject.HasReadings() {
			s.question = QuestionReading
			return true, nil
		}
	} else {
		if !answer.CheckReading(userAnswer, item.Subject) {
			return false, nil
		}
	}

	s.startCurrent(ctx, item)
	s.advance()
	return true, nil
}

func (s *Session) startCurrent(ctx context.Context, item *Item) {
	startedAt := s.now()
	started, err := s.starter.StartAssignment(ctx, item.Assignment.ID, &startedAt)
	if err != nil {
		s.logger.Warn("start assignment failed",
			"assignment_id", item.Assignment.ID, "error", err)
		return
	}
	if err := s.assignments.Save(ctx, syncer.AssignmentFromAPI(*started)); err != nil {
		s.logger.Warn("persist started assignment failed",
			"assignment_id", item.Assignment.ID, "error", err)
	}
}

func (s *Session) advance() {
	s.idx++
	if s.idx >= len(s.items) {
		s.phase = PhaseComplete
		s.logger.Info("lesson session complete", "lessons", len(s.items))
		return
	}
	s.phase = PhaseLearning
}
