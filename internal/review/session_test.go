package review

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/store"
)

type fakeAssignments struct {
	due    []store.Assignment
	dueErr error
	saved  map[int]store.Assignment
}

func (f *fakeAssignments) DueForReview(ctx context.Context, now time.Time) ([]store.Assignment, error) {
	return f.due, f.dueErr
}

func (f *fakeAssignments) Save(ctx context.Context, a store.Assignment) error {
	if f.saved == nil {
		f.saved = map[int]store.Assignment{}
	}
	f.saved[a.ID] = a
	return nil
}

type fakeSubjects struct {
	subjects map[int]*store.Subject
}

func (f *fakeSubjects) GetByIDs(ctx context.Context, ids []int) (map[int]*store.Subject, error) {
	out := map[int]*store.Subject{}
	for _, id := range ids {
		if s, ok := f.subjects[id]; ok {
			out[id] = s
		}
	}
	return out, nil
}

type fakeSubmitter struct {
	submitted []api.CreateReview
	err       error
	ending    int
}

func (f *fakeSubmitter) SubmitReview(ctx context.Context, r api.CreateReview) (*api.Review, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.submitted = append(f.submitted, r)
	return &api.Review{
		CreatedAt:               time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		AssignmentID:            r.AssignmentID,
		StartingSRSStage:        2,
		EndingSRSStage:          f.ending,
		IncorrectMeaningAnswers: r.IncorrectMeaningAnswers,
		IncorrectReadingAnswers: r.IncorrectReadingAnswers,
	}, nil
}

func kanjiSubject(id int) *store.Subject {
	return &store.Subject{
		ID:   id,
		Type: store.SubjectKanji,
		Meanings: []store.Meaning{
			{Meaning: "One", Primary: true, AcceptedAnswer: true},
		},
		Readings: []store.Reading{
			{Reading: "いち", Primary: true, AcceptedAnswer: true, Kind: "onyomi"},
		},
	}
}

func radicalSubject(id int) *store.Subject {
	return &store.Subject{
		ID:   id,
		Type: store.SubjectRadical,
		Meanings: []store.Meaning{
			{Meaning: "Ground", Primary: true, AcceptedAnswer: true},
		},
	}
}

func seededSession(assignments *fakeAssignments, subjects *fakeSubjects, submitter *fakeSubmitter) *Session {
	return NewSession(assignments, subjects, submitter,
		WithRand(rand.New(rand.NewPCG(1, 2))))
}

// answerCurrent answers the current item correctly regardless of which
// half the shuffle put first.
func answerCurrent(t *testing.T, s *Session) Outcome {
	t.Helper()
	item := s.Current()
	require.NotNil(t, item)

	ans := "One"
	if item.Kind == KindReading {
		ans = "いち"
	}
	out, err := s.SubmitAnswer(context.Background(), ans)
	require.NoError(t, err)
	require.True(t, out.Correct)
	return out
}

func TestStartEmpty(t *testing.T) {
	s := seededSession(&fakeAssignments{}, &fakeSubjects{}, &fakeSubmitter{})
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, StateEmpty, s.State())
	assert.Nil(t, s.Current())
}

func TestStartLoadFailure(t *testing.T) {
	s := seededSession(&fakeAssignments{dueErr: errors.New("db locked")}, &fakeSubjects{}, &fakeSubmitter{})
	require.Error(t, s.Start(context.Background()))

	assert.Equal(t, StateError, s.State())
	assert.Error(t, s.Err())
}

func TestStartBuildsQueuePerSubjectShape(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectKanji, SRSStage: 2},
		{ID: 2, SubjectID: 11, SubjectType: store.SubjectRadical, SRSStage: 2},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{
		10: kanjiSubject(10),
		11: radicalSubject(11),
	}}

	s := seededSession(assignments, subjects, &fakeSubmitter{})
	require.NoError(t, s.Start(context.Background()))

	assert.Equal(t, StateReviewing, s.State())
	_, total := s.Progress()
	assert.Equal(t, 2, total)

	// Kanji contributes meaning and reading, the radical only meaning.
	kinds := map[int][]QuestionKind{}
	for _, it := range s.queue {
		kinds[it.Assignment.ID] = append(kinds[it.Assignment.ID], it.Kind)
	}
	assert.Len(t, kinds[1], 2)
	assert.Equal(t, []QuestionKind{KindMeaning}, kinds[2])
}

func TestStartSkipsMissingSubjects(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 1},
		{ID: 2, SubjectID: 999, SubjectType: store.SubjectKanji, SRSStage: 1},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{10: radicalSubject(10)}}

	s := seededSession(assignments, subjects, &fakeSubmitter{})
	require.NoError(t, s.Start(context.Background()))

	_, total := s.Progress()
	assert.Equal(t, 1, total)
}

func TestFullyCorrectItemSubmitsAndCompletes(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectKanji, SRSStage: 2},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{10: kanjiSubject(10)}}
	submitter := &fakeSubmitter{ending: 3}

	s := seededSession(assignments, subjects, submitter)
	require.NoError(t, s.Start(context.Background()))

	out := answerCurrent(t, s)
	assert.False(t, out.ItemComplete)
	s.Advance()

	out = answerCurrent(t, s)
	assert.True(t, out.ItemComplete)
	require.NotNil(t, out.Review)
	assert.Equal(t, 3, out.Review.EndingSRSStage)
	s.Advance()

	assert.Equal(t, StateComplete, s.State())
	correct, incorrect := s.Stats()
	assert.Equal(t, 1, correct)
	assert.Equal(t, 0, incorrect)

	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, 0, submitter.submitted[0].IncorrectMeaningAnswers)
	assert.Equal(t, 0, submitter.submitted[0].IncorrectReadingAnswers)

	// The local assignment picks up the server-computed stage and stops
	// being due.
	saved := assignments.saved[1]
	assert.Equal(t, 3, saved.SRSStage)
	assert.Nil(t, saved.AvailableAt)
}

func TestIncorrectAnswersAreCountedAndRetried(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 5},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{10: radicalSubject(10)}}
	submitter := &fakeSubmitter{ending: 4}

	s := seededSession(assignments, subjects, submitter)
	require.NoError(t, s.Start(context.Background()))

	out, err := s.SubmitAnswer(context.Background(), "Sky")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	s.Advance()

	// Wrong item comes back around.
	require.Equal(t, StateReviewing, s.State())
	require.NotNil(t, s.Current())

	out, err = s.SubmitAnswer(context.Background(), "Ground")
	require.NoError(t, err)
	assert.True(t, out.ItemComplete)
	s.Advance()

	assert.Equal(t, StateComplete, s.State())
	correct, incorrect := s.Stats()
	assert.Equal(t, 0, correct)
	assert.Equal(t, 1, incorrect)

	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, 1, submitter.submitted[0].IncorrectMeaningAnswers)
}

func TestBlankAnswerRejected(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 1},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{10: radicalSubject(10)}}
	submitter := &fakeSubmitter{}

	s := seededSession(assignments, subjects, submitter)
	require.NoError(t, s.Start(context.Background()))

	_, err := s.SubmitAnswer(context.Background(), "   ")
	require.ErrorIs(t, err, ErrBlankAnswer)

	// Nothing was scored.
	out, err := s.SubmitAnswer(context.Background(), "Ground")
	require.NoError(t, err)
	assert.True(t, out.ItemComplete)
	require.Len(t, submitter.submitted, 1)
	assert.Equal(t, 0, submitter.submitted[0].IncorrectMeaningAnswers)
}

func TestResubmitAfterCompleteIsRejected(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 1},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{10: radicalSubject(10)}}
	submitter := &fakeSubmitter{ending: 2}

	s := seededSession(assignments, subjects, submitter)
	require.NoError(t, s.Start(context.Background()))

	out, err := s.SubmitAnswer(context.Background(), "Ground")
	require.NoError(t, err)
	assert.True(t, out.ItemComplete)

	// The finished item is still current until Advance. Submitting again
	// must refuse, not score or resubmit.
	_, err = s.SubmitAnswer(context.Background(), "Ground")
	require.Error(t, err)
	assert.Len(t, submitter.submitted, 1)

	s.Advance()
	assert.Equal(t, StateComplete, s.State())
}

func TestWrongItemNotReinsertedAtFront(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 1},
		{ID: 2, SubjectID: 11, SubjectType: store.SubjectRadical, SRSStage: 1},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{
		10: radicalSubject(10),
		11: radicalSubject(11),
	}}

	s := seededSession(assignments, subjects, &fakeSubmitter{})
	require.NoError(t, s.Start(context.Background()))

	wrongID := s.Current().Assignment.ID
	out, err := s.SubmitAnswer(context.Background(), "Sky")
	require.NoError(t, err)
	assert.False(t, out.Correct)
	s.Advance()

	// The missed item goes behind the other pending question, never
	// straight back to the front.
	require.NotNil(t, s.Current())
	assert.NotEqual(t, wrongID, s.Current().Assignment.ID)
}

func TestSubmitFailureDoesNotAdvance(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 1},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{10: radicalSubject(10)}}
	submitter := &fakeSubmitter{err: &api.ErrRateLimited{RetryAfter: 30 * time.Second}}

	s := seededSession(assignments, subjects, submitter)
	require.NoError(t, s.Start(context.Background()))

	_, err := s.SubmitAnswer(context.Background(), "Ground")
	require.Error(t, err)
	var rateErr *api.ErrRateLimited
	require.True(t, errors.As(err, &rateErr))

	// The item is still current and the session did not move on.
	assert.Equal(t, StateReviewing, s.State())
	require.NotNil(t, s.Current())
	completed, _ := s.Progress()
	assert.Equal(t, 0, completed)

	// Once the server recovers the same answer goes through.
	submitter.err = nil
	out, err := s.SubmitAnswer(context.Background(), "Ground")
	require.NoError(t, err)
	assert.True(t, out.ItemComplete)
}

func TestPurgeLeavesOtherAssignmentsQueued(t *testing.T) {
	assignments := &fakeAssignments{due: []store.Assignment{
		{ID: 1, SubjectID: 10, SubjectType: store.SubjectRadical, SRSStage: 1},
		{ID: 2, SubjectID: 11, SubjectType: store.SubjectRadical, SRSStage: 1},
	}}
	subjects := &fakeSubjects{subjects: map[int]*store.Subject{
		10: radicalSubject(10),
		11: radicalSubject(11),
	}}

	s := seededSession(assignments, subjects, &fakeSubmitter{})
	require.NoError(t, s.Start(context.Background()))

	out, err := s.SubmitAnswer(context.Background(), "Ground")
	require.NoError(t, err)
	assert.True(t, out.ItemComplete)
	s.Advance()

	assert.Equal(t, StateReviewing, s.State())
	require.NotNil(t, s.Current())

	out, err = s.SubmitAnswer(context.Background(), "Ground")
	require.NoError(t, err)
	assert.True(t, out.ItemComplete)
	s.Advance()

	assert.Equal(t, StateComplete, s.State())
}
