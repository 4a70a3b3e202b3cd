// Package leads tracks the people behind analysis requests and the outcome
// their request reached.
package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead is one requester/brand pair with its latest lifecycle status.
type Lead struct {
	ID          uuid.UUID
	Email       string
	Phone       string
	BrandName   string
	Sector      string
	Language    string
	Status      string
	IPAddress   string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UpsertParams carries everything needed to create or refresh a lead.
type UpsertParams struct {
	Email       string
	Phone       string
	BrandName   string
	Sector      string
	Language    string
	Status      string
	IPAddress   string
	Referrer    string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert creates the lead or, when the requester already asked about the same
// brand, refreshes its status and contact details. (email, brand_name)
// carries a unique index.
func (r *Repository) Upsert(ctx context.Context, params UpsertParams) (Lead, error) {
	var lead Lead
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (email, phone, brand_name, sector, language, status, ip_address, referrer, utm_source, utm_medium, utm_campaign)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (email, brand_name) DO UPDATE SET
			phone = COALESCE(NULLIF(EXCLUDED.phone, ''), leads.phone),
			sector = EXCLUDED.sector,
			language = EXCLUDED.language,
			status = EXCLUDED.status,
			updated_at = now()
		RETURNING id, email, phone, brand_name, sector, language, status, ip_address, referrer, utm_source, utm_medium, utm_campaign, created_at, updated_at
	`,
		params.Email, params.Phone, params.BrandName, params.Sector, params.Language, params.Status,
		params.IPAddress, params.Referrer, params.UTMSource, params.UTMMedium, params.UTMCampaign,
	).Scan(
		&lead.ID, &lead.Email, &lead.Phone, &lead.BrandName, &lead.Sector, &lead.Language, &lead.Status,
		&lead.IPAddress, &lead.Referrer, &lead.UTMSource, &lead.UTMMedium, &lead.UTMCampaign,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return Lead{}, fmt.Errorf("upsert lead: %w", err)
	}
	return lead, nil
}

// ListRecent returns the newest leads for operator review.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, email, phone, brand_name, sector, language, status, ip_address, referrer, utm_source, utm_medium, utm_campaign, created_at, updated_at
		FROM leads
		ORDER BY updated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []Lead
	for rows.Next() {
		var lead Lead
		if err := rows.Scan(
			&lead.ID, &lead.Email, &lead.Phone, &lead.BrandName, &lead.Sector, &lead.Language, &lead.Status,
			&lead.IPAddress, &lead.Referrer, &lead.UTMSource, &lead.UTMMedium, &lead.UTMCampaign,
			&lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}
