package syncer

import (
	"time"

	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/store"
)

func subjectFromAPI(s *api.Subject, fallback time.Time) store.Subject {
	out := store.Subject{
		ID:         s.ID,
		Type:       store.SubjectType(s.Type),
		Characters: s.Characters(),
		Slug:       s.Slug(),
		Level:      s.Level(),
		UpdatedAt:  fallback,
	}
	if s.DataUpdatedAt != nil {
		out.UpdatedAt = *s.DataUpdatedAt
	}

	for _, m := range s.Meanings() {
		out.Meanings = append(out.Meanings, store.Meaning{
			Meaning:        m.Meaning,
			Primary:        m.Primary,
			AcceptedAnswer: m.AcceptedAnswer,
		})
	}
	for _, r := range s.Readings() {
		out.Readings = append(out.Readings, store.Reading{
			Reading:        r.Reading,
			Primary:        r.Primary,
			AcceptedAnswer: r.AcceptedAnswer,
			Kind:           r.Kind,
		})
	}
	return out
}

// AssignmentFromAPI converts a wire assignment to its stored form. Session
// code reuses it to persist server responses after starts and reviews.
func AssignmentFromAPI(a api.Assignment) store.Assignment {
	return store.Assignment{
		ID:            a.ID,
		SubjectID:     a.SubjectID,
		SubjectType:   store.SubjectType(a.SubjectType),
		SRSStage:      a.SRSStage,
		UnlockedAt:    a.UnlockedAt,
		StartedAt:     a.StartedAt,
		PassedAt:      a.PassedAt,
		BurnedAt:      a.BurnedAt,
		AvailableAt:   a.AvailableAt,
		ResurrectedAt: a.ResurrectedAt,
		Hidden:        a.Hidden,
		UpdatedAt:     a.UpdatedAt,
	}
}

func userFromAPI(u *api.User, now time.Time) store.User {
	return store.User{
		ID:         u.ID,
		Username:   u.Username,
		Level:      u.Level,
		StartedAt:  u.StartedAt,
		OnVacation: u.OnVacation(),
		UpdatedAt:  now,
	}
}
