package store

import (
	"context"
	"time"
)

// SubjectRepo persists the synced subject catalog.
type SubjectRepo interface {
	// UpsertAll writes the given subjects, replacing existing rows by id.
	UpsertAll(ctx context.Context, subjects []Subject) error
	// Get returns the subject with the given id, or nil when absent.
	Get(ctx context.Context, id int) (*Subject, error)
	// GetByIDs returns the subjects for the given ids, keyed by id.
	// Missing ids are simply absent from the map.
	GetByIDs(ctx context.Context, ids []int) (map[int]*Subject, error)
	// Count returns the number of stored subjects.
	Count(ctx context.Context) (int, error)
}

// AssignmentRepo persists the user's assignment records.
type AssignmentRepo interface {
	// UpsertAll writes the given assignments, replacing existing rows by id.
	UpsertAll(ctx context.Context, assignments []Assignment) error
	// Save writes a single assignment, replacing any existing row.
	Save(ctx context.Context, a Assignment) error
	// Get returns the assignment with the given id, or nil when absent.
	Get(ctx context.Context, id int) (*Assignment, error)
	// DueForReview returns non-hidden assignments whose available_at is at
	// or before now.
	DueForReview(ctx context.Context, now time.Time) ([]Assignment, error)
	// AvailableForLessons returns unlocked, never-started, non-hidden
	// assignments ordered by subject level then id.
	AvailableForLessons(ctx context.Context) ([]Assignment, error)
	// Count returns the number of stored assignments.
	Count(ctx context.Context) (int, error)
}

// UserRepo persists the single local user record.
type UserRepo interface {
	Save(ctx context.Context, u User) error
	// Get returns the stored user, or nil when no sync has happened yet.
	Get(ctx context.Context) (*User, error)
}

// MetaRepo is a small key-value table holding sync bookkeeping.
type MetaRepo interface {
	// LastSync returns the watermark of the last completed full sync, or
	// nil when none has completed.
	LastSync(ctx context.Context) (*time.Time, error)
	// SetLastSync records the watermark of a completed full sync.
	SetLastSync(ctx context.Context, t time.Time) error
}
