// Package repository persists leads and their activity timelines in Postgres.
// Every query is scoped by user_id so one account can never read or mutate
// another account's rows.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, user_id, name, email, phone, source, status, property_of_interest, ai_score, ai_score_factors, created_at, updated_at`

const (
	getLeadQuery   = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND user_id = $2`
	listLeadsQuery = `SELECT ` + leadColumns + ` FROM leads WHERE user_id = $1 ORDER BY created_at DESC`

	searchLeadsQuery = `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE user_id = $1
		  AND (name ILIKE $2 OR email ILIKE $2 OR property_of_interest ILIKE $2)
		ORDER BY created_at DESC`

	hotLeadsQuery = `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE user_id = $1 AND ai_score > $2
		ORDER BY ai_score DESC, created_at DESC`

	needingAttentionQuery = `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE user_id = $1 AND status = $2 AND updated_at < $3
		ORDER BY updated_at ASC`

	staleAcrossAccountsQuery = `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE status = $1 AND updated_at < $2
		ORDER BY user_id, updated_at ASC`

	bulkDeleteQuery = `DELETE FROM leads WHERE id = ANY($1) AND user_id = $2`
)

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.UserID, &l.Name, &l.Email, &l.Phone, &l.Source, &l.Status,
		&l.PropertyOfInterest, &l.AIScore, &l.AIScoreFactors, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()
	leads := []Lead{}
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	query := `
		INSERT INTO leads (user_id, name, email, phone, source, status, property_of_interest, ai_score, ai_score_factors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query,
		params.UserID, params.Name, params.Email, params.Phone, params.Source,
		params.Status, params.PropertyOfInterest, params.AIScore, params.AIScoreFactors,
	))
	if err != nil {
		return Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, getLeadQuery, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, listLeadsQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return collectLeads(rows)
}

// Search matches the term case-insensitively against name, email, and
// property of interest. LIKE metacharacters in the term are escaped so they
// match literally.
func (r *Repository) Search(ctx context.Context, userID uuid.UUID, term string) ([]Lead, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := r.pool.Query(ctx, searchLeadsQuery, userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}
	return collectLeads(rows)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// ListHot returns leads scoring strictly above the threshold, best first.
func (r *Repository) ListHot(ctx context.Context, userID uuid.UUID, threshold int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, hotLeadsQuery, userID, threshold)
	if err != nil {
		return nil, fmt.Errorf("list hot leads: %w", err)
	}
	return collectLeads(rows)
}

// ListNeedingAttention returns leads in the given status last touched
// strictly before olderThan, most neglected first.
func (r *Repository) ListNeedingAttention(ctx context.Context, userID uuid.UUID, status string, olderThan time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, needingAttentionQuery, userID, status, olderThan)
	if err != nil {
		return nil, fmt.Errorf("list leads needing attention: %w", err)
	}
	return collectLeads(rows)
}

// ListStaleAcrossAccounts is the background-scan variant of
// ListNeedingAttention: it spans all accounts and must never be reachable
// from a request handler.
func (r *Repository) ListStaleAcrossAccounts(ctx context.Context, status string, olderThan time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, staleAcrossAccountsQuery, status, olderThan)
	if err != nil {
		return nil, fmt.Errorf("scan stale leads: %w", err)
	}
	return collectLeads(rows)
}

func (r *Repository) Update(ctx context.Context, id, userID uuid.UUID, params UpdateLeadParams) (Lead, error) {
	query := `
		UPDATE leads
		SET name = COALESCE($3, name),
		    email = COALESCE($4, email),
		    phone = COALESCE($5, phone),
		    source = COALESCE($6, source),
		    property_of_interest = COALESCE($7, property_of_interest),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + leadColumns

	lead, err := scanLead(r.pool.QueryRow(ctx, query, id, userID,
		params.Name, params.Email, params.Phone, params.Source, params.PropertyOfInterest,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// UpdateStatusWithActivity writes the new status and its audit activity in a
// single transaction. Either both land or neither does.
func (r *Repository) UpdateStatusWithActivity(ctx context.Context, id, userID uuid.UUID, status string, activity CreateActivityParams) (Lead, Activity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Lead{}, Activity{}, fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE leads
		SET status = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + leadColumns

	lead, err := scanLead(tx.QueryRow(ctx, updateQuery, id, userID, status))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, Activity{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, Activity{}, fmt.Errorf("update lead status: %w", err)
	}

	act, err := insertActivity(ctx, tx, activity)
	if err != nil {
		return Lead{}, Activity{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Lead{}, Activity{}, fmt.Errorf("commit status update: %w", err)
	}
	return lead, act, nil
}

func (r *Repository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// BulkDelete removes the subset of ids owned by userID and reports how many
// rows went away. IDs belonging to other accounts are silently skipped.
func (r *Repository) BulkDelete(ctx context.Context, ids []uuid.UUID, userID uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, bulkDeleteQuery, ids, userID)
	if err != nil {
		return 0, fmt.Errorf("bulk delete leads: %w", err)
	}
	return tag.RowsAffected(), nil
}
