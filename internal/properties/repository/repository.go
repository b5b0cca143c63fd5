// Package repository persists property listings and their media records.
// Listings are owner-scoped like leads; public reads go through dedicated
// queries that only expose active listings.
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

// ErrNotFound is returned when a property does not exist or belongs to
// another account.
var ErrNotFound = errors.New("property not found")

// Listing statuses. Listings are archived, never deleted, so enquiry history
// keeps pointing at a real row.
const (
	StatusActive     = "Active"
	StatusUnderOffer = "Under Offer"
	StatusSold       = "Sold"
	StatusArchived   = "Archived"
)

// ValidStatus reports whether s is a known listing status.
func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusUnderOffer, StatusSold, StatusArchived:
		return true
	}
	return false
}

// Property is the persisted listing row.
type Property struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	Title          string
	Description    string
	Address        string
	City           string
	Price          int64
	Bedrooms       int
	Bathrooms      int
	AreaSqm        int
	Status         string
	Views          int64
	LeadsGenerated int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Media is one stored photo or document attached to a listing.
type Media struct {
	ID          uuid.UUID
	PropertyID  uuid.UUID
	UserID      uuid.UUID
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	CapturedAt  *time.Time
	CreatedAt   time.Time
}

// CreateParams carries the fields for inserting a listing.
type CreateParams struct {
	UserID      uuid.UUID
	Title       string
	Description string
	Address     string
	City        string
	Price       int64
	Bedrooms    int
	Bathrooms   int
	AreaSqm     int
}

// UpdateParams is a partial listing update; nil pointers leave columns
// untouched.
type UpdateParams struct {
	Title       *string
	Description *string
	Address     *string
	City        *string
	Price       *int64
	Bedrooms    *int
	Bathrooms   *int
	AreaSqm     *int
	Status      *string
}

// CreateMediaParams carries the fields for recording an uploaded object.
type CreateMediaParams struct {
	PropertyID  uuid.UUID
	UserID      uuid.UUID
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	CapturedAt  *time.Time
}

const propertyColumns = `id, user_id, title, description, address, city, price, bedrooms, bathrooms, area_sqm, status, views, leads_generated, created_at, updated_at`

const (
	getPropertyQuery    = `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND user_id = $2`
	listPropertiesQuery = `SELECT ` + propertyColumns + ` FROM properties WHERE user_id = $1 ORDER BY created_at DESC`

	// Public lookup deliberately ignores ownership but only serves listings
	// that are still on the market.
	getPublicPropertyQuery = `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1 AND status = '` + StatusActive + `'`

	matchPropertiesQuery = `
		SELECT ` + propertyColumns + `
		FROM properties
		WHERE user_id = $1
		  AND status = '` + StatusActive + `'
		  AND (title ILIKE $2 OR address ILIKE $2 OR city ILIKE $2)
		ORDER BY created_at DESC
		LIMIT $3`
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanProperty(row pgx.Row) (Property, error) {
	var p Property
	err := row.Scan(
		&p.ID, &p.UserID, &p.Title, &p.Description, &p.Address, &p.City,
		&p.Price, &p.Bedrooms, &p.Bathrooms, &p.AreaSqm, &p.Status,
		&p.Views, &p.LeadsGenerated, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func collect(rows pgx.Rows) ([]Property, error) {
	defer rows.Close()
	properties := []Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}
	return properties, rows.Err()
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Property, error) {
	query := `
		INSERT INTO properties (user_id, title, description, address, city, price, bedrooms, bathrooms, area_sqm, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, '` + StatusActive + `')
		RETURNING ` + propertyColumns

	property, err := scanProperty(r.pool.QueryRow(ctx, query,
		params.UserID, params.Title, params.Description, params.Address, params.City,
		params.Price, params.Bedrooms, params.Bathrooms, params.AreaSqm,
	))
	if err != nil {
		return Property{}, fmt.Errorf("insert property: %w", err)
	}
	return property, nil
}

func (r *Repository) GetByID(ctx context.Context, id, userID uuid.UUID) (Property, error) {
	property, err := scanProperty(r.pool.QueryRow(ctx, getPropertyQuery, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("get property: %w", err)
	}
	return property, nil
}

// GetPublic returns an active listing regardless of owner. Archived, sold,
// and under-offer listings are invisible to the public site.
func (r *Repository) GetPublic(ctx context.Context, id uuid.UUID) (Property, error) {
	property, err := scanProperty(r.pool.QueryRow(ctx, getPublicPropertyQuery, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("get public property: %w", err)
	}
	return property, nil
}

func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]Property, error) {
	rows, err := r.pool.Query(ctx, listPropertiesQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return collect(rows)
}

// Match finds the owner's active listings whose title, address, or city
// contains the term, newest first.
func (r *Repository) Match(ctx context.Context, userID uuid.UUID, term string, limit int) ([]Property, error) {
	pattern := "%" + escapeLike(term) + "%"
	rows, err := r.pool.Query(ctx, matchPropertiesQuery, userID, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("match properties: %w", err)
	}
	return collect(rows)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func (r *Repository) Update(ctx context.Context, id, userID uuid.UUID, params UpdateParams) (Property, error) {
	query := `
		UPDATE properties
		SET title = COALESCE($3, title),
		    description = COALESCE($4, description),
		    address = COALESCE($5, address),
		    city = COALESCE($6, city),
		    price = COALESCE($7, price),
		    bedrooms = COALESCE($8, bedrooms),
		    bathrooms = COALESCE($9, bathrooms),
		    area_sqm = COALESCE($10, area_sqm),
		    status = COALESCE($11, status),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + propertyColumns

	property, err := scanProperty(r.pool.QueryRow(ctx, query, id, userID,
		params.Title, params.Description, params.Address, params.City,
		params.Price, params.Bedrooms, params.Bathrooms, params.AreaSqm, params.Status,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("update property: %w", err)
	}
	return property, nil
}

// Archive takes a listing off the market. Rows are never deleted.
func (r *Repository) Archive(ctx context.Context, id, userID uuid.UUID) (Property, error) {
	query := `
		UPDATE properties
		SET status = '` + StatusArchived + `', updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + propertyColumns

	property, err := scanProperty(r.pool.QueryRow(ctx, query, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Property{}, ErrNotFound
	}
	if err != nil {
		return Property{}, fmt.Errorf("archive property: %w", err)
	}
	return property, nil
}

// RecordView bumps the public view counter. It does not touch updated_at;
// traffic is not an edit.
func (r *Repository) RecordView(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE properties SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}

// IncrementLeadsGenerated bumps the enquiry counter.
func (r *Repository) IncrementLeadsGenerated(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE properties SET leads_generated = leads_generated + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment leads generated: %w", err)
	}
	return nil
}

const mediaColumns = `id, property_id, user_id, object_key, content_type, size_bytes, captured_at, created_at`

func (r *Repository) CreateMedia(ctx context.Context, params CreateMediaParams) (Media, error) {
	query := `
		INSERT INTO property_media (property_id, user_id, object_key, content_type, size_bytes, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + mediaColumns

	var m Media
	err := r.pool.QueryRow(ctx, query,
		params.PropertyID, params.UserID, params.ObjectKey, params.ContentType, params.SizeBytes, params.CapturedAt,
	).Scan(&m.ID, &m.PropertyID, &m.UserID, &m.ObjectKey, &m.ContentType, &m.SizeBytes, &m.CapturedAt, &m.CreatedAt)
	if err != nil {
		return Media{}, fmt.Errorf("insert media: %w", err)
	}
	return m, nil
}

func (r *Repository) ListMedia(ctx context.Context, propertyID, userID uuid.UUID) ([]Media, error) {
	query := `
		SELECT ` + mediaColumns + `
		FROM property_media
		WHERE property_id = $1 AND user_id = $2
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, propertyID, userID)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	media := []Media{}
	for rows.Next() {
		var m Media
		if err := rows.Scan(&m.ID, &m.PropertyID, &m.UserID, &m.ObjectKey, &m.ContentType, &m.SizeBytes, &m.CapturedAt, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		media = append(media, m)
	}
	return media, rows.Err()
}
