package api

import "time"

// resource is the single-resource envelope every endpoint shares.
type resource[T any] struct {
	ID            int        `json:"id"`
	Object        string     `json:"object"`
	URL           string     `json:"url"`
	DataUpdatedAt *time.Time `json:"data_updated_at"`
	Data          T          `json:"data"`
}

// Pages carries the opaque pagination cursor of a collection response.
type Pages struct {
	PerPage     int    `json:"per_page"`
	NextURL     string `json:"next_url"`
	PreviousURL string `json:"previous_url"`
}

// collection is the paginated collection envelope.
type collection[T any] struct {
	Object        string     `json:"object"`
	URL           string     `json:"url"`
	Pages         Pages      `json:"pages"`
	TotalCount    int        `json:"total_count"`
	DataUpdatedAt *time.Time `json:"data_updated_at"`
	Data          []T        `json:"data"`
}

// Assignment is a user's progress record for one subject as returned by
// the server.
type Assignment struct {
	ID            int        `json:"id"`
	SubjectID     int        `json:"subject_id"`
	SubjectType   string     `json:"subject_type"`
	SRSStage      int        `json:"srs_stage"`
	CreatedAt     time.Time  `json:"created_at"`
	UnlockedAt    *time.Time `json:"unlocked_at"`
	StartedAt     *time.Time `json:"started_at"`
	PassedAt      *time.Time `json:"passed_at"`
	BurnedAt      *time.Time `json:"burned_at"`
	AvailableAt   *time.Time `json:"available_at"`
	ResurrectedAt *time.Time `json:"resurrected_at"`
	Hidden        bool       `json:"hidden"`
	UpdatedAt     time.Time  `json:"-"`
}

// assignmentData is the wire payload inside the assignment envelope.
type assignmentData struct {
	CreatedAt     time.Time  `json:"created_at"`
	SubjectID     int        `json:"subject_id"`
	SubjectType   string     `json:"subject_type"`
	SRSStage      int        `json:"srs_stage"`
	UnlockedAt    *time.Time `json:"unlocked_at"`
	StartedAt     *time.Time `json:"started_at"`
	PassedAt      *time.Time `json:"passed_at"`
	BurnedAt      *time.Time `json:"burned_at"`
	AvailableAt   *time.Time `json:"available_at"`
	ResurrectedAt *time.Time `json:"resurrected_at"`
	Hidden        bool       `json:"hidden"`
}

func assignmentFromResource(r resource[assignmentData]) Assignment {
	a := Assignment{
		ID:            r.ID,
		SubjectID:     r.Data.SubjectID,
		SubjectType:   r.Data.SubjectType,
		SRSStage:      r.Data.SRSStage,
		CreatedAt:     r.Data.CreatedAt,
		UnlockedAt:    r.Data.UnlockedAt,
		StartedAt:     r.Data.StartedAt,
		PassedAt:      r.Data.PassedAt,
		BurnedAt:      r.Data.BurnedAt,
		AvailableAt:   r.Data.AvailableAt,
		ResurrectedAt: r.Data.ResurrectedAt,
		Hidden:        r.Data.Hidden,
	}
	if r.DataUpdatedAt != nil {
		a.UpdatedAt = *r.DataUpdatedAt
	}
	return a
}

// User is the account record behind /user.
type User struct {
	ID                       string        `json:"id"`
	Username                 string        `json:"username"`
	Level                    int           `json:"level"`
	ProfileURL               string        `json:"profile_url"`
	StartedAt                time.Time     `json:"started_at"`
	CurrentVacationStartedAt *time.Time    `json:"current_vacation_started_at"`
	Subscription             Subscription  `json:"subscription"`
	Preferences              UserPrefs     `json:"preferences"`
}

// OnVacation reports whether reviews are currently paused server-side.
func (u *User) OnVacation() bool { return u.CurrentVacationStartedAt != nil }

// Subscription describes the account's access tier.
type Subscription struct {
	Active          bool       `json:"active"`
	Type            string     `json:"type"`
	MaxLevelGranted int        `json:"max_level_granted"`
	PeriodEndsAt    *time.Time `json:"period_ends_at"`
}

// UserPrefs mirrors the server-side preference blob. Only the fields the
// client reads are decoded.
type UserPrefs struct {
	DefaultVoiceActorID     int  `json:"default_voice_actor_id"`
	LessonsAutoplayAudio    bool `json:"lessons_autoplay_audio"`
	LessonsBatchSize        int  `json:"lessons_batch_size"`
	ReviewsAutoplayAudio    bool `json:"reviews_autoplay_audio"`
	ReviewsDisplaySRSStages bool `json:"reviews_display_srs_indicator"`
}

// Summary is the server-computed dashboard aggregate.
type Summary struct {
	Lessons       []SummaryBucket `json:"lessons"`
	Reviews       []SummaryBucket `json:"reviews"`
	NextReviewsAt *time.Time      `json:"next_reviews_at"`
}

// SummaryBucket groups subject IDs becoming available at one timestamp.
type SummaryBucket struct {
	AvailableAt time.Time `json:"available_at"`
	SubjectIDs  []int     `json:"subject_ids"`
}

// AvailableLessonsCount returns the number of lessons available at now.
func (s *Summary) AvailableLessonsCount(now time.Time) int {
	return countAvailable(s.Lessons, now)
}

// AvailableReviewsCount returns the number of reviews available at now.
func (s *Summary) AvailableReviewsCount(now time.Time) int {
	return countAvailable(s.Reviews, now)
}

func countAvailable(buckets []SummaryBucket, now time.Time) int {
	for _, b := range buckets {
		if !b.AvailableAt.After(now) {
			return len(b.SubjectIDs)
		}
	}
	return 0
}

// Review is the created review resource, carrying the server-computed
// stage transition that is authoritative over any local preview.
type Review struct {
	ID                      int       `json:"-"`
	CreatedAt               time.Time `json:"created_at"`
	AssignmentID            int       `json:"assignment_id"`
	SubjectID               int       `json:"subject_id"`
	StartingSRSStage        int       `json:"starting_srs_stage"`
	EndingSRSStage          int       `json:"ending_srs_stage"`
	IncorrectMeaningAnswers int       `json:"incorrect_meaning_answers"`
	IncorrectReadingAnswers int       `json:"incorrect_reading_answers"`
}

// IsCorrect reports whether the review carried no incorrect answers.
func (r *Review) IsCorrect() bool {
	return r.IncorrectMeaningAnswers == 0 && r.IncorrectReadingAnswers == 0
}

// DidLevelUp reports whether the server promoted the assignment.
func (r *Review) DidLevelUp() bool { return r.EndingSRSStage > r.StartingSRSStage }

// DidLevelDown reports whether the server demoted the assignment.
func (r *Review) DidLevelDown() bool { return r.EndingSRSStage < r.StartingSRSStage }

// CreateReview is the payload for POST /reviews.
type CreateReview struct {
	AssignmentID            int `json:"assignment_id"`
	IncorrectMeaningAnswers int `json:"incorrect_meaning_answers"`
	IncorrectReadingAnswers int `json:"incorrect_reading_answers"`
}

// ReviewStatistic aggregates historical accuracy for one subject.
type ReviewStatistic struct {
	ID                   int       `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
	SubjectID            int       `json:"subject_id"`
	SubjectType          string    `json:"subject_type"`
	MeaningCorrect       int       `json:"meaning_correct"`
	MeaningIncorrect     int       `json:"meaning_incorrect"`
	MeaningMaxStreak     int       `json:"meaning_max_streak"`
	MeaningCurrentStreak int       `json:"meaning_current_streak"`
	ReadingCorrect       int       `json:"reading_correct"`
	ReadingIncorrect     int       `json:"reading_incorrect"`
	ReadingMaxStreak     int       `json:"reading_max_streak"`
	ReadingCurrentStreak int       `json:"reading_current_streak"`
	PercentageCorrect    int       `json:"percentage_correct"`
	Hidden               bool      `json:"hidden"`
}

// TotalAnswers is the count of all recorded answers for the subject.
func (r *ReviewStatistic) TotalAnswers() int {
	return r.MeaningCorrect + r.MeaningIncorrect + r.ReadingCorrect + r.ReadingIncorrect
}

// LevelProgression records the user's pass through one level.
type LevelProgression struct {
	ID          int        `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	Level       int        `json:"level"`
	UnlockedAt  *time.Time `json:"unlocked_at"`
	StartedAt   *time.Time `json:"started_at"`
	PassedAt    *time.Time `json:"passed_at"`
	CompletedAt *time.Time `json:"completed_at"`
	AbandonedAt *time.Time `json:"abandoned_at"`
}
