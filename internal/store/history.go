package store

import (
	"context"
	"fmt"
	"time"
)

// DispatchRecord is one row of dispatch history: who ran what, through
// which platform, and how it came out.
type DispatchRecord struct {
	ID       int64     `json:"id"`
	Platform string    `json:"platform"`
	ActorID  string    `json:"actor_id"`
	Input    string    `json:"input"`
	Command  string    `json:"command"`
	Outcome  string    `json:"outcome"`
	At       time.Time `json:"at"`
}

// RecordDispatch appends a row to the dispatch history.
func (s *Store) RecordDispatch(ctx context.Context, rec DispatchRecord) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO command_log (platform, actor_id, input, command, outcome)
		VALUES ($1, $2, $3, $4, $5)`,
		rec.Platform, rec.ActorID, rec.Input, rec.Command, rec.Outcome)
	if err != nil {
		return fmt.Errorf("insert command log: %w", err)
	}
	return nil
}

// RecentDispatches returns the latest history rows, newest first. An empty
// actorID returns rows for all actors.
func (s *Store) RecentDispatches(ctx context.Context, actorID string, limit int) ([]DispatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, platform, actor_id, input, command, outcome, created_at
		FROM command_log`
	args := []any{}
	if actorID != "" {
		query += ` WHERE actor_id = $1`
		args = append(args, actorID)
	}
	query += fmt.Sprintf(` ORDER BY id DESC LIMIT %d`, limit)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query command log: %w", err)
	}
	defer rows.Close()

	var out []DispatchRecord
	for rows.Next() {
		var rec DispatchRecord
		if err := rows.Scan(&rec.ID, &rec.Platform, &rec.ActorID,
			&rec.Input, &rec.Command, &rec.Outcome, &rec.At); err != nil {
			return nil, fmt.Errorf("scan command log: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
