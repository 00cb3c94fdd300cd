// Package syncer pulls the remote user, subject, and assignment state into
// the local database.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/asamadder/kodama/internal/api"
	"github.com/asamadder/kodama/internal/store"
)

// Client is the slice of the API surface the coordinator needs.
type Client interface {
	GetUser(ctx context.Context) (*api.User, error)
	GetAllSubjects(ctx context.Context, filter api.SubjectFilter) ([]api.Subject, error)
	GetAssignments(ctx context.Context, filter api.AssignmentFilter) ([]api.Assignment, error)
}

// Stage identifies a step of a full sync.
type Stage string

const (
	StageStarting    Stage = "starting"
	StageUser        Stage = "user"
	StageSubjects    Stage = "subjects"
	StageAssignments Stage = "assignments"
	StageCompleted   Stage = "completed"
	StageFailed      Stage = "failed"
)

// Progress is a single sync progress event. Count carries the number of
// records written for the subjects and assignments stages. Err is set only
// on StageFailed.
type Progress struct {
	Stage Stage
	Count int
	Err   error
}

// ProgressFunc receives sync progress events. It is called from the
// syncing goroutine.
type ProgressFunc func(Progress)

// Coordinator orchestrates incremental syncs against the local store.
type Coordinator struct {
	client Client
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger used for sync diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// New creates a Coordinator over the given client and store.
func New(client Client, st *store.Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		client: client,
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SyncEverything runs a full incremental sync: user, subjects, then
// assignments. The watermark advances only after all three stages commit,
// so a failed stage is retried in full on the next sync. Data written by
// earlier stages is kept.
func (c *Coordinator) SyncEverything(ctx context.Context, onProgress ProgressFunc) error {
	report := func(p Progress) {
		if onProgress != nil {
			onProgress(p)
		}
	}

	startedAt := c.now()
	report(Progress{Stage: StageStarting})

	since, err := c.store.Meta().LastSync(ctx)
	if err != nil {
		report(Progress{Stage: StageFailed, Err: err})
		return fmt.Errorf("read sync watermark: %w", err)
	}
	c.logger.Info("sync started", "incremental", since != nil)

	if err := c.SyncUser(ctx); err != nil {
		report(Progress{Stage: StageFailed, Err: err})
		return err
	}
	report(Progress{Stage: StageUser})

	nSubjects, err := c.SyncSubjects(ctx, since)
	if err != nil {
		report(Progress{Stage: StageFailed, Err: err})
		return err
	}
	report(Progress{Stage: StageSubjects, Count: nSubjects})

	nAssignments, err := c.SyncAssignments(ctx, since)
	if err != nil {
		report(Progress{Stage: StageFailed, Err: err})
		return err
	}
	report(Progress{Stage: StageAssignments, Count: nAssignments})

	// The watermark is the sync start, not its end, so records updated
	// while the sync ran are picked up next time.
	if err := c.store.Meta().SetLastSync(ctx, startedAt); err != nil {
		report(Progress{Stage: StageFailed, Err: err})
		return fmt.Errorf("write sync watermark: %w", err)
	}

	c.logger.Info("sync completed", "subjects", nSubjects, "assignments", nAssignments)
	report(Progress{Stage: StageCompleted})
	return nil
}

// SyncUser fetches the account record and stores it.
func (c *Coordinator) SyncUser(ctx context.Context) error {
	u, err := c.client.GetUser(ctx)
	if err != nil {
		return fmt.Errorf("fetch user: %w", err)
	}
	if err := c.store.Users().Save(ctx, userFromAPI(u, c.now())); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	return nil
}

// SyncSubjects fetches subjects updated since the given time (all subjects
// when nil) and upserts them. Returns the number of records written.
func (c *Coordinator) SyncSubjects(ctx context.Context, since *time.Time) (int, error) {
	subjects, err := c.client.GetAllSubjects(ctx, api.SubjectFilter{UpdatedAfter: since})
	if err != nil {
		return 0, fmt.Errorf("fetch subjects: %w", err)
	}

	converted := make([]store.Subject, 0, len(subjects))
	for i := range subjects {
		converted = append(converted, subjectFromAPI(&subjects[i], c.now()))
	}
	if err := c.store.Subjects().UpsertAll(ctx, converted); err != nil {
		return 0, fmt.Errorf("store subjects: %w", err)
	}
	return len(converted), nil
}

// SyncAssignments fetches assignments updated since the given time (all
// when nil) and upserts them. Returns the number of records written.
func (c *Coordinator) SyncAssignments(ctx context.Context, since *time.Time) (int, error) {
	assignments, err := c.client.GetAssignments(ctx, api.AssignmentFilter{UpdatedAfter: since})
	if err != nil {
		return 0, fmt.Errorf("fetch assignments: %w", err)
	}

	converted := make([]store.Assignment, 0, len(assignments))
	for _, a := range assignments {
		converted = append(converted, AssignmentFromAPI(a))
	}
	if err := c.store.Assignments().UpsertAll(ctx, converted); err != nil {
		return 0, fmt.Errorf("store assignments: %w", err)
	}
	return len(converted), nil
}
