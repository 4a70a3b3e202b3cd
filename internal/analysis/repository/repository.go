// Package repository persists completed and pending analyses in Postgres.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"brandscope_backend/internal/analysis/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("analysis: not found")
	// ErrDuplicateBrand is returned when an insert loses the race on the
	// brand key unique index.
	ErrDuplicateBrand = errors.New("analysis: brand already analyzed")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetCompletedByKey returns the completed analysis for a canonical brand key,
// or ErrNotFound.
func (r *Repository) GetCompletedByKey(ctx context.Context, brandKey string) (domain.CompletedAnalysis, error) {
	var ca domain.CompletedAnalysis
	err := r.pool.QueryRow(ctx, `
		SELECT id, brand_key, brand_name, sector, language, result, email, model, created_at
		FROM completed_analyses
		WHERE brand_key = $1
	`, brandKey).Scan(
		&ca.ID, &ca.BrandKey, &ca.BrandName, &ca.Sector, &ca.Language, &ca.Result, &ca.Email, &ca.Model, &ca.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CompletedAnalysis{}, ErrNotFound
		}
		return domain.CompletedAnalysis{}, fmt.Errorf("get completed analysis: %w", err)
	}
	return ca, nil
}

// InsertCompleted stores a finished analysis. The unique index on brand_key
// is the single serialization point for concurrent submissions of the same
// brand; a losing insert comes back as ErrDuplicateBrand.
func (r *Repository) InsertCompleted(ctx context.Context, ca domain.CompletedAnalysis) (domain.CompletedAnalysis, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO completed_analyses (brand_key, brand_name, sector, language, result, email, model)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, ca.BrandKey, ca.BrandName, ca.Sector, ca.Language, ca.Result, ca.Email, ca.Model).Scan(&ca.ID, &ca.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.CompletedAnalysis{}, ErrDuplicateBrand
		}
		return domain.CompletedAnalysis{}, fmt.Errorf("insert completed analysis: %w", err)
	}
	return ca, nil
}

// InsertPending queues a request that could not run because the provider was
// out of quota.
func (r *Repository) InsertPending(ctx context.Context, pa domain.PendingAnalysis) (domain.PendingAnalysis, error) {
	requestJSON, err := json.Marshal(pa.Request)
	if err != nil {
		return domain.PendingAnalysis{}, fmt.Errorf("marshal pending request: %w", err)
	}
	metaJSON, err := json.Marshal(pa.Meta)
	if err != nil {
		return domain.PendingAnalysis{}, fmt.Errorf("marshal pending meta: %w", err)
	}

	if pa.CorrelationID == uuid.Nil {
		pa.CorrelationID = uuid.New()
	}
	err = r.pool.QueryRow(ctx, `
		INSERT INTO pending_analyses (correlation_id, brand_key, request, meta, status, retry_count, last_error)
		VALUES ($1, $2, $3, $4, $5, 0, $6)
		RETURNING id, created_at
	`, pa.CorrelationID, pa.BrandKey, requestJSON, metaJSON, domain.PendingStatusQueued, pa.LastError).Scan(&pa.ID, &pa.CreatedAt)
	if err != nil {
		return domain.PendingAnalysis{}, fmt.Errorf("insert pending analysis: %w", err)
	}
	pa.Status = domain.PendingStatusQueued
	pa.RetryCount = 0
	return pa, nil
}

// ListQueued returns up to limit queued analyses with retry_count below
// maxRetries, oldest first.
func (r *Repository) ListQueued(ctx context.Context, limit, maxRetries int) ([]domain.PendingAnalysis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, correlation_id, brand_key, request, meta, status, retry_count, last_error, created_at, last_retry_at, resolved_at
		FROM pending_analyses
		WHERE status = $1 AND retry_count < $2
		ORDER BY created_at ASC
		LIMIT $3
	`, domain.PendingStatusQueued, maxRetries, limit)
	if err != nil {
		return nil, fmt.Errorf("list queued analyses: %w", err)
	}
	defer rows.Close()

	return scanPending(rows)
}

// ListRecent returns the newest pending analyses in any state, for the admin
// inspection endpoint.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]domain.PendingAnalysis, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, correlation_id, brand_key, request, meta, status, retry_count, last_error, created_at, last_retry_at, resolved_at
		FROM pending_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent pending analyses: %w", err)
	}
	defer rows.Close()

	return scanPending(rows)
}

func scanPending(rows pgx.Rows) ([]domain.PendingAnalysis, error) {
	var out []domain.PendingAnalysis
	for rows.Next() {
		var pa domain.PendingAnalysis
		var requestJSON, metaJSON []byte
		if err := rows.Scan(
			&pa.ID, &pa.CorrelationID, &pa.BrandKey, &requestJSON, &metaJSON, &pa.Status,
			&pa.RetryCount, &pa.LastError, &pa.CreatedAt, &pa.LastRetryAt, &pa.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan pending analysis: %w", err)
		}
		if err := json.Unmarshal(requestJSON, &pa.Request); err != nil {
			return nil, fmt.Errorf("unmarshal pending request %s: %w", pa.ID, err)
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &pa.Meta); err != nil {
				return nil, fmt.Errorf("unmarshal pending meta %s: %w", pa.ID, err)
			}
		}
		out = append(out, pa)
	}
	return out, rows.Err()
}

// MarkProcessed resolves a pending analysis after its request completed (or
// was found already completed by someone else).
func (r *Repository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pending_analyses
		SET status = $1, resolved_at = now(), last_error = ''
		WHERE id = $2
	`, domain.PendingStatusProcessed, id)
	if err != nil {
		return fmt.Errorf("mark pending processed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed terminally fails a pending analysis after a non-quota error.
func (r *Repository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pending_analyses
		SET status = $1, resolved_at = now(), last_error = $2
		WHERE id = $3
	`, domain.PendingStatusFailed, reason, id)
	if err != nil {
		return fmt.Errorf("mark pending failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RegisterQuotaRetry counts a quota-blocked retry attempt. When the new count
// reaches maxRetries the row flips to failed so the sweeper stops picking it
// up.
func (r *Repository) RegisterQuotaRetry(ctx context.Context, id uuid.UUID, reason string, maxRetries int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pending_analyses
		SET retry_count = retry_count + 1,
		    last_retry_at = now(),
		    last_error = $1,
		    status = CASE WHEN retry_count + 1 >= $2 THEN $3 ELSE status END,
		    resolved_at = CASE WHEN retry_count + 1 >= $2 THEN now() ELSE resolved_at END
		WHERE id = $4
	`, reason, maxRetries, domain.PendingStatusFailed, id)
	if err != nil {
		return fmt.Errorf("register quota retry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
