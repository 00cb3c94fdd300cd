package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type assignmentRepo struct {
	db *sql.DB
}

const assignmentColumns = `id, subject_id, subject_type, srs_stage,
	unlocked_at, started_at, passed_at, burned_at, available_at, resurrected_at,
	hidden, updated_at`

const assignmentUpsert = `
	INSERT INTO assignments (id, subject_id, subject_type, srs_stage,
		unlocked_at, started_at, passed_at, burned_at, available_at, resurrected_at,
		hidden, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		subject_id = excluded.subject_id,
		subject_type = excluded.subject_type,
		srs_stage = excluded.srs_stage,
		unlocked_at = excluded.unlocked_at,
		started_at = excluded.started_at,
		passed_at = excluded.passed_at,
		burned_at = excluded.burned_at,
		available_at = excluded.available_at,
		resurrected_at = excluded.resurrected_at,
		hidden = excluded.hidden,
		updated_at = excluded.updated_at`

func (r *assignmentRepo) UpsertAll(ctx context.Context, assignments []Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, assignmentUpsert)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, assignmentArgs(a)...); err != nil {
			return fmt.Errorf("upsert assignment %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

func (r *assignmentRepo) Save(ctx context.Context, a Assignment) error {
	if _, err := r.db.ExecContext(ctx, assignmentUpsert, assignmentArgs(a)...); err != nil {
		return fmt.Errorf("save assignment %d: %w", a.ID, err)
	}
	return nil
}

func (r *assignmentRepo) Get(ctx context.Context, id int) (*Assignment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)

	a, err := scanAssignment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *assignmentRepo) DueForReview(ctx context.Context, now time.Time) ([]Assignment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments
		WHERE hidden = 0 AND available_at IS NOT NULL AND available_at <= ?
		ORDER BY available_at, id`, encodeTime(now))
	if err != nil {
		return nil, fmt.Errorf("query due assignments: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

func (r *assignmentRepo) AvailableForLessons(ctx context.Context) ([]Assignment, error) {
	// Level order puts radicals before the kanji built from them. The left
	// join keeps assignments whose subject has not synced yet; they sort
	// first and the session skips them.
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.subject_id, a.subject_type, a.srs_stage,
			a.unlocked_at, a.started_at, a.passed_at, a.burned_at, a.available_at, a.resurrected_at,
			a.hidden, a.updated_at
		FROM assignments a
		LEFT JOIN subjects s ON s.id = a.subject_id
		WHERE a.hidden = 0 AND a.srs_stage = 0 AND a.started_at IS NULL AND a.unlocked_at IS NOT NULL
		ORDER BY s.level, a.id`)
	if err != nil {
		return nil, fmt.Errorf("query lesson assignments: %w", err)
	}
	defer rows.Close()

	return collectAssignments(rows)
}

func (r *assignmentRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assignments`).Scan(&n)
	return n, err
}

func assignmentArgs(a Assignment) []any {
	return []any{
		a.ID, a.SubjectID, string(a.SubjectType), a.SRSStage,
		encodeTimePtr(a.UnlockedAt), encodeTimePtr(a.StartedAt),
		encodeTimePtr(a.PassedAt), encodeTimePtr(a.BurnedAt),
		encodeTimePtr(a.AvailableAt), encodeTimePtr(a.ResurrectedAt),
		boolToInt(a.Hidden), encodeTime(a.UpdatedAt),
	}
}

func scanAssignment(row rowScanner) (*Assignment, error) {
	var a Assignment
	var typ, updatedAt string
	var unlocked, started, passed, burned, available, resurrected sql.NullString
	var hidden int

	if err := row.Scan(&a.ID, &a.SubjectID, &typ, &a.SRSStage,
		&unlocked, &started, &passed, &burned, &available, &resurrected,
		&hidden, &updatedAt); err != nil {
		return nil, err
	}

	a.SubjectType = SubjectType(typ)
	a.Hidden = hidden != 0

	var err error
	if a.UnlockedAt, err = decodeTimePtr(unlocked); err != nil {
		return nil, err
	}
	if a.StartedAt, err = decodeTimePtr(started); err != nil {
		return nil, err
	}
	if a.PassedAt, err = decodeTimePtr(passed); err != nil {
		return nil, err
	}
	if a.BurnedAt, err = decodeTimePtr(burned); err != nil {
		return nil, err
	}
	if a.AvailableAt, err = decodeTimePtr(available); err != nil {
		return nil, err
	}
	if a.ResurrectedAt, err = decodeTimePtr(resurrected); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAssignments(rows *sql.Rows) ([]Assignment, error) {
	var out []Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
