// backend-go/internal/repository/product_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// ProductRepository provides catalog products with their dimensions and sales
// aggregates over the analysis window.
type ProductRepository interface {
	FetchProducts(ctx context.Context, ids []int64) ([]domain.Product, error)
	FetchByCategories(ctx context.Context, categoryIDs []int64) ([]domain.Product, error)
}

type productRepository struct {
	db *sqlx.DB
}

func NewProductRepository(db *sqlx.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `
        p.id, p.ean, p.name, p.width, p.height, p.depth, p.category_id,
        COALESCE(s.sold_qty, 0) AS sold_qty,
        COALESCE(s.sold_value, 0) AS sold_value,
        COALESCE(s.sold_margin, 0) AS sold_margin
`

const productSalesJoin = `
    LEFT JOIN (
        SELECT product_id,
               SUM(quantity)   AS sold_qty,
               SUM(sale_value) AS sold_value,
               SUM(margin)     AS sold_margin
        FROM sales_history
        GROUP BY product_id
    ) s ON s.product_id = p.id
`

func (r *productRepository) FetchProducts(ctx context.Context, ids []int64) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p` + productSalesJoin + `
        WHERE p.id = ANY($1::bigint[])
        ORDER BY p.id`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("error fetching products: %w", err)
	}

	return products, nil
}

func (r *productRepository) FetchByCategories(ctx context.Context, categoryIDs []int64) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p` + productSalesJoin + `
        WHERE p.category_id = ANY($1::bigint[])
        ORDER BY p.id`

	var products []domain.Product
	if err := r.db.SelectContext(ctx, &products, query, pq.Array(categoryIDs)); err != nil {
		return nil, fmt.Errorf("error fetching products by category: %w", err)
	}

	return products, nil
}
