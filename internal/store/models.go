package store

import (
	"time"
)

// SubjectType discriminates the payload shape of a subject.
type SubjectType string

const (
	SubjectRadical        SubjectType = "radical"
	SubjectKanji          SubjectType = "kanji"
	SubjectVocabulary     SubjectType = "vocabulary"
	SubjectKanaVocabulary SubjectType = "kana_vocabulary"
)

// Meaning is one accepted or auxiliary English meaning of a subject.
type Meaning struct {
	Meaning        string `json:"meaning"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
}

// Reading is one reading of a kanji or vocabulary subject. Kind carries
// the onyomi/kunyomi/nanori tag where the server provides one.
type Reading struct {
	Reading        string `json:"reading"`
	Primary        bool   `json:"primary"`
	AcceptedAnswer bool   `json:"accepted_answer"`
	Kind           string `json:"type,omitempty"`
}

// Subject is the locally stored projection of a learnable item. All four
// subject types share this shape; radicals simply have no readings and may
// have no display characters.
type Subject struct {
	ID         int
	Type       SubjectType
	Characters string // empty for image-only radicals
	Slug       string
	Level      int
	Meanings   []Meaning
	Readings   []Reading
	UpdatedAt  time.Time
}

// AcceptedMeanings returns the meanings usable as quiz answers.
func (s *Subject) AcceptedMeanings() []string {
	var out []string
	for _, m := range s.Meanings {
		if m.AcceptedAnswer {
			out = append(out, m.Meaning)
		}
	}
	return out
}

// AcceptedReadings returns the readings usable as quiz answers.
func (s *Subject) AcceptedReadings() []string {
	var out []string
	for _, r := range s.Readings {
		if r.AcceptedAnswer {
			out = append(out, r.Reading)
		}
	}
	return out
}

// PrimaryMeaning returns the meaning flagged primary, or the first accepted
// meaning when the flag is missing or duplicated upstream.
func (s *Subject) PrimaryMeaning() string {
	for _, m := range s.Meanings {
		if m.Primary {
			return m.Meaning
		}
	}
	if accepted := s.AcceptedMeanings(); len(accepted) > 0 {
		return accepted[0]
	}
	return ""
}

// PrimaryReading returns the reading flagged primary, or the first accepted
// reading as a fallback.
func (s *Subject) PrimaryReading() string {
	for _, r := range s.Readings {
		if r.Primary {
			return r.Reading
		}
	}
	if accepted := s.AcceptedReadings(); len(accepted) > 0 {
		return accepted[0]
	}
	return ""
}

// HasReadings reports whether the subject asks a reading question.
// Radicals do not.
func (s *Subject) HasReadings() bool {
	return len(s.Readings) > 0
}

// Assignment is a user's progress record for one subject.
type Assignment struct {
	ID            int
	SubjectID     int
	SubjectType   SubjectType
	SRSStage      int
	UnlockedAt    *time.Time
	StartedAt     *time.Time
	PassedAt      *time.Time
	BurnedAt      *time.Time
	AvailableAt   *time.Time
	ResurrectedAt *time.Time
	Hidden        bool
	UpdatedAt     time.Time
}

// IsAvailableForReview reports whether the assignment is due at now.
func (a *Assignment) IsAvailableForReview(now time.Time) bool {
	return a.AvailableAt != nil && !a.AvailableAt.After(now)
}

// IsAvailableForLesson reports whether the assignment is waiting for its
// first lesson: unlocked, never started, not hidden.
func (a *Assignment) IsAvailableForLesson() bool {
	return a.SRSStage == 0 && a.StartedAt == nil && a.UnlockedAt != nil && !a.Hidden
}

// User is the single local copy of the account record.
type User struct {
	ID         string
	Username   string
	Level      int
	StartedAt  time.Time
	OnVacation bool
	UpdatedAt  time.Time
}
