package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type subjectRepo struct {
	db *sql.DB
}

func (r *subjectRepo) UpsertAll(ctx context.Context, subjects []Subject) error {
	if len(subjects) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO subjects (id, type, characters, slug, level, meanings, readings, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			characters = excluded.characters,
			slug = excluded.slug,
			level = excluded.level,
			meanings = excluded.meanings,
			readings = excluded.readings,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, s := range subjects {
		meanings, err := json.Marshal(s.Meanings)
		if err != nil {
			return fmt.Errorf("encode meanings for subject %d: %w", s.ID, err)
		}
		readings, err := json.Marshal(s.Readings)
		if err != nil {
			return fmt.Errorf("encode readings for subject %d: %w", s.ID, err)
		}

		if _, err := stmt.ExecContext(ctx,
			s.ID, string(s.Type), s.Characters, s.Slug, s.Level,
			string(meanings), string(readings), encodeTime(s.UpdatedAt),
		); err != nil {
			return fmt.Errorf("upsert subject %d: %w", s.ID, err)
		}
	}

	return tx.Commit()
}

func (r *subjectRepo) Get(ctx context.Context, id int) (*Subject, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, characters, slug, level, meanings, readings, updated_at
		FROM subjects WHERE id = ?`, id)

	s, err := scanSubject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func (r *subjectRepo) GetByIDs(ctx context.Context, ids []int) (map[int]*Subject, error) {
	out := make(map[int]*Subject, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, type, characters, slug, level, meanings, readings, updated_at
		FROM subjects WHERE id IN (%s)`, placeholders), args...)
	if err != nil {
		return nil, fmt.Errorf("query subjects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out[s.ID] = s
	}
	return out, rows.Err()
}

func (r *subjectRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subjects`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*Subject, error) {
	var s Subject
	var typ, meanings, readings, updatedAt string

	if err := row.Scan(&s.ID, &typ, &s.Characters, &s.Slug, &s.Level, &meanings, &readings, &updatedAt); err != nil {
		return nil, err
	}

	s.Type = SubjectType(typ)
	if err := json.Unmarshal([]byte(meanings), &s.Meanings); err != nil {
		return nil, fmt.Errorf("decode meanings for subject %d: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(readings), &s.Readings); err != nil {
		return nil, fmt.Errorf("decode readings for subject %d: %w", s.ID, err)
	}

	t, err := decodeTime(updatedAt)
	if err != nil {
		return nil, err
	}
	s.UpdatedAt = t
	return &s, nil
}
