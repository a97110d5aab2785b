package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RecordActivity logs an experience-earning event for a user.
func (db *DB) RecordActivity(ctx context.Context, userID uuid.UUID, eventType, description string, expGained int, metadata []byte) (*Activity, error) {
	var act Activity
	err := db.pool.QueryRow(ctx,
		`INSERT INTO activities (user_id, event_type, description, exp_gained, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, event_type, description, exp_gained, metadata, created_at`,
		userID, eventType, description, expGained, metadata,
	).Scan(&act.ID, &act.UserID, &act.EventType, &act.Description,
		&act.ExpGained, &act.Metadata, &act.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}
	return &act, nil
}

// ListActivities returns a user's recent activity, newest first.
func (db *DB) ListActivities(ctx context.Context, userID uuid.UUID, limit int) ([]Activity, error) {
	if limit == 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, user_id, event_type, description, exp_gained, metadata, created_at
		 FROM activities
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	var acts []Activity
	for rows.Next() {
		var act Activity
		if err := rows.Scan(&act.ID, &act.UserID, &act.EventType, &act.Description,
			&act.ExpGained, &act.Metadata, &act.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		acts = append(acts, act)
	}
	return acts, nil
}
