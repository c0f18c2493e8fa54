package save

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"scoundrel/internal/game"
)

// SQLiteRepo stores saves in the saves table. Rules and snapshot are kept as
// JSON columns; the listing fields are denormalized for List.
type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(db *DB) *SQLiteRepo {
	return &SQLiteRepo{db: db.Conn()}
}

func (r *SQLiteRepo) Save(ctx context.Context, rec Record) error {
	if err := ValidateID(rec.ID); err != nil {
		return err
	}
	rules, err := json.Marshal(rec.Rules)
	if err != nil {
		return fmt.Errorf("marshal rules: %w", err)
	}
	snap, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = rec.UpdatedAt
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO saves (id, seed, preset, status, floor, room, life, rules, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			floor = excluded.floor,
			room = excluded.room,
			life = excluded.life,
			rules = excluded.rules,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		rec.ID, rec.Seed, rec.Preset, string(rec.Snapshot.Status),
		rec.Snapshot.FloorIndex, rec.Snapshot.RoomCounter, rec.Snapshot.Life,
		string(rules), string(snap), created.UnixNano(), rec.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", rec.ID, err)
	}
	return nil
}

func (r *SQLiteRepo) Load(ctx context.Context, id string) (Record, error) {
	var (
		rec              Record
		rules, snap      string
		created, updated int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, seed, preset, rules, snapshot, created_at, updated_at
		FROM saves WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Seed, &rec.Preset, &rules, &snap, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("load %s: %w", id, err)
	}
	if err := json.Unmarshal([]byte(rules), &rec.Rules); err != nil {
		return Record{}, fmt.Errorf("decode rules: %w", err)
	}
	if err := json.Unmarshal([]byte(snap), &rec.Snapshot); err != nil {
		return Record{}, fmt.Errorf("decode snapshot: %w", err)
	}
	rec.CreatedAt = time.Unix(0, created)
	rec.UpdatedAt = time.Unix(0, updated)
	return rec, nil
}

func (r *SQLiteRepo) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, preset, status, floor, room, life, updated_at
		FROM saves ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var (
			s       Summary
			status  string
			updated int64
		)
		if err := rows.Scan(&s.ID, &s.Preset, &status, &s.Floor, &s.Room, &s.Life, &updated); err != nil {
			return nil, err
		}
		s.Status = game.Status(status)
		s.UpdatedAt = time.Unix(0, updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
