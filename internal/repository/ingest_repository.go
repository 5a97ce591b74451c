// backend-go/internal/repository/ingest_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// IngestRepository writes sales snapshot rows pulled from external sources.
type IngestRepository interface {
	ResolveEANs(ctx context.Context, eans []string) (map[string]int64, error)
	InsertSalesRecords(ctx context.Context, records []domain.SalesRecord) (int, error)
}

type ingestRepository struct {
	db *sqlx.DB
}

func NewIngestRepository(db *sqlx.DB) IngestRepository {
	return &ingestRepository{db: db}
}

func (r *ingestRepository) ResolveEANs(ctx context.Context, eans []string) (map[string]int64, error) {
	if len(eans) == 0 {
		return map[string]int64{}, nil
	}

	query := `SELECT id, ean FROM products WHERE ean = ANY($1)`
	var rows []struct {
		ID  int64  `db:"id"`
		EAN string `db:"ean"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(eans)); err != nil {
		return nil, fmt.Errorf("error resolving eans: %w", err)
	}

	resolved := make(map[string]int64, len(rows))
	for _, row := range rows {
		resolved[row.EAN] = row.ID
	}
	return resolved, nil
}

func (r *ingestRepository) InsertSalesRecords(ctx context.Context, records []domain.SalesRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting ingest transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
        INSERT INTO sales_history (product_id, store_id, day, quantity, sale_value, margin)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (product_id, store_id, day) DO UPDATE
        SET quantity = EXCLUDED.quantity,
            sale_value = EXCLUDED.sale_value,
            margin = EXCLUDED.margin
    `

	inserted := 0
	for _, record := range records {
		if _, err := tx.ExecContext(ctx, query,
			record.ProductID, record.StoreID, record.Day,
			record.Quantity, record.SaleValue, record.Margin); err != nil {
			return 0, fmt.Errorf("error inserting sales record for product %d: %w", record.ProductID, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing ingest transaction: %w", err)
	}
	return inserted, nil
}
