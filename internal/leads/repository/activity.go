package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const activityColumns = `id, lead_id, user_id, type, actor, content, lead_name, created_at`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertActivity(ctx context.Context, q querier, params CreateActivityParams) (Activity, error) {
	query := `
		INSERT INTO lead_activities (lead_id, user_id, type, actor, content, lead_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + activityColumns

	var a Activity
	err := q.QueryRow(ctx, query,
		params.LeadID, params.UserID, params.Type, params.Actor, params.Content, params.LeadName,
	).Scan(&a.ID, &a.LeadID, &a.UserID, &a.Type, &a.Actor, &a.Content, &a.LeadName, &a.CreatedAt)
	if err != nil {
		return Activity{}, fmt.Errorf("insert activity: %w", err)
	}
	return a, nil
}

// AddActivity appends a timeline entry. The timeline is append-only; there
// is no update or delete path.
func (r *Repository) AddActivity(ctx context.Context, params CreateActivityParams) (Activity, error) {
	return insertActivity(ctx, r.pool, params)
}

// ListActivities returns a lead's timeline newest first. The user_id filter
// doubles as the ownership check: a foreign lead yields an empty timeline.
func (r *Repository) ListActivities(ctx context.Context, leadID, userID uuid.UUID) ([]Activity, error) {
	query := `
		SELECT ` + activityColumns + `
		FROM lead_activities
		WHERE lead_id = $1 AND user_id = $2
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, leadID, userID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	activities := []Activity{}
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.LeadID, &a.UserID, &a.Type, &a.Actor, &a.Content, &a.LeadName, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
