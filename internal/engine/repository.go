package engine

import (
	"context"

	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// SalesHistoryRepository provides daily sales rows for demand statistics.
type SalesHistoryRepository interface {
	Query(ctx context.Context, productIDs []int64, dateRange domain.DateRange, storeID int64) ([]domain.SalesRecord, error)
}

// ProductRepository provides catalog products with dimensions and sales
// aggregates.
type ProductRepository interface {
	FetchProducts(ctx context.Context, ids []int64) ([]domain.Product, error)
	FetchByCategories(ctx context.Context, categoryIDs []int64) ([]domain.Product, error)
}

// CategoryRepository provides hierarchy navigation.
type CategoryRepository interface {
	FetchCategory(ctx context.Context, id int64) (*domain.Category, error)
	FetchDescendants(ctx context.Context, id int64) ([]domain.Category, error)
}
