package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type userRepo struct {
	db *sql.DB
}

func (r *userRepo) Save(ctx context.Context, u User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user (row, id, username, level, started_at, on_vacation, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(row) DO UPDATE SET
			id = excluded.id,
			username = excluded.username,
			level = excluded.level,
			started_at = excluded.started_at,
			on_vacation = excluded.on_vacation,
			updated_at = excluded.updated_at`,
		u.ID, u.Username, u.Level, encodeTime(u.StartedAt),
		boolToInt(u.OnVacation), encodeTime(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *userRepo) Get(ctx context.Context) (*User, error) {
	var u User
	var startedAt, updatedAt string
	var onVacation int

	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, level, started_at, on_vacation, updated_at
		FROM user WHERE row = 1`).
		Scan(&u.ID, &u.Username, &u.Level, &startedAt, &onVacation, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	u.OnVacation = onVacation != 0
	if u.StartedAt, err = decodeTime(startedAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = decodeTime(updatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

type metaRepo struct {
	db *sql.DB
}

const lastSyncKey = "last_sync"

func (r *metaRepo) LastSync(ctx context.Context) (*time.Time, error) {
	var v string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = ?`, lastSyncKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t, err := decodeTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *metaRepo) SetLastSync(ctx context.Context, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		lastSyncKey, encodeTime(t))
	if err != nil {
		return fmt.Errorf("set last sync: %w", err)
	}
	return nil
}
