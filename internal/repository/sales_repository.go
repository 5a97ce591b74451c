// backend-go/internal/repository/sales_repository.go
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// SalesHistoryRepository provides daily sales rows for the demand statistics
// stage of a distribution run.
type SalesHistoryRepository interface {
	Query(ctx context.Context, productIDs []int64, dateRange domain.DateRange, storeID int64) ([]domain.SalesRecord, error)
}

type salesHistoryRepository struct {
	db *sqlx.DB
}

func NewSalesHistoryRepository(db *sqlx.DB) SalesHistoryRepository {
	return &salesHistoryRepository{db: db}
}

func (r *salesHistoryRepository) Query(ctx context.Context, productIDs []int64, dateRange domain.DateRange, storeID int64) ([]domain.SalesRecord, error) {
	query := `
        SELECT product_id, store_id, day, quantity, sale_value, margin
        FROM sales_history
        WHERE product_id = ANY($1::bigint[])
    `

	args := []interface{}{pq.Array(productIDs)}
	var conditions []string
	argCounter := 2

	if !dateRange.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("day >= $%d", argCounter))
		args = append(args, dateRange.From)
		argCounter++
	}

	if !dateRange.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("day <= $%d", argCounter))
		args = append(args, dateRange.To)
		argCounter++
	}

	if storeID > 0 {
		conditions = append(conditions, fmt.Sprintf("store_id = $%d", argCounter))
		args = append(args, storeID)
	}

	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY product_id, day"

	var records []domain.SalesRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("error querying sales history: %w", err)
	}

	return records, nil
}
