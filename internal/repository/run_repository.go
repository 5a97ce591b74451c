// backend-go/internal/repository/run_repository.go
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// RunRecord is a persisted distribution run summary. The full result document
// is stored as JSON so the editor can rehydrate placements without re-running
// the engine.
type RunRecord struct {
	ID            int64           `json:"id" db:"id"`
	GondolaID     int64           `json:"gondola_id" db:"gondola_id"`
	StartedAt     time.Time       `json:"started_at" db:"started_at"`
	TotalProducts int             `json:"total_products" db:"total_products"`
	Placed        int             `json:"placed" db:"placed"`
	Partial       int             `json:"partial" db:"partial"`
	Failed        int             `json:"failed" db:"failed"`
	Excluded      int             `json:"excluded" db:"excluded"`
	Result        json.RawMessage `json:"result" db:"result"`
}

// RunRepository persists run results so the caller can materialize segment
// and layer records later.
type RunRepository interface {
	SaveRun(ctx context.Context, result *domain.RunResult) (int64, error)
	GetLatestRun(ctx context.Context, gondolaID int64) (*RunRecord, error)
	ListRuns(ctx context.Context, gondolaID int64, limit int) ([]RunRecord, error)
}

type runRepository struct {
	db *sqlx.DB
}

func NewRunRepository(db *sqlx.DB) RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) SaveRun(ctx context.Context, result *domain.RunResult) (int64, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("error encoding run result: %w", err)
	}

	query := `
        INSERT INTO distribution_runs
            (gondola_id, started_at, total_products, placed, partial, failed, excluded, result)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `

	var id int64
	err = r.db.GetContext(ctx, &id, query,
		result.GondolaID, result.StartedAt, result.TotalProducts,
		result.Placed, result.Partial, result.Failed, result.Excluded, payload)
	if err != nil {
		return 0, fmt.Errorf("error saving distribution run: %w", err)
	}

	return id, nil
}

func (r *runRepository) GetLatestRun(ctx context.Context, gondolaID int64) (*RunRecord, error) {
	query := `
        SELECT id, gondola_id, started_at, total_products, placed, partial, failed, excluded, result
        FROM distribution_runs
        WHERE gondola_id = $1
        ORDER BY started_at DESC
        LIMIT 1
    `

	var record RunRecord
	if err := r.db.GetContext(ctx, &record, query, gondolaID); err != nil {
		return nil, fmt.Errorf("error fetching latest run for gondola %d: %w", gondolaID, err)
	}

	return &record, nil
}

func (r *runRepository) ListRuns(ctx context.Context, gondolaID int64, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
        SELECT id, gondola_id, started_at, total_products, placed, partial, failed, excluded, result
        FROM distribution_runs
        WHERE gondola_id = $1
        ORDER BY started_at DESC
        LIMIT $2
    `

	var records []RunRecord
	if err := r.db.SelectContext(ctx, &records, query, gondolaID, limit); err != nil {
		return nil, fmt.Errorf("error listing runs for gondola %d: %w", gondolaID, err)
	}

	return records, nil
}
