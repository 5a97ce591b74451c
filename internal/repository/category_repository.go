// backend-go/internal/repository/category_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// CategoryRepository navigates the merchandising hierarchy.
type CategoryRepository interface {
	FetchCategory(ctx context.Context, id int64) (*domain.Category, error)
	FetchDescendants(ctx context.Context, id int64) ([]domain.Category, error)
}

type categoryRepository struct {
	db *sqlx.DB
}

func NewCategoryRepository(db *sqlx.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FetchCategory(ctx context.Context, id int64) (*domain.Category, error) {
	query := `
        SELECT id, COALESCE(parent_id, 0) AS parent_id, level_name, name
        FROM categories
        WHERE id = $1
    `

	var category domain.Category
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		return nil, fmt.Errorf("error fetching category %d: %w", id, err)
	}

	return &category, nil
}

func (r *categoryRepository) FetchDescendants(ctx context.Context, id int64) ([]domain.Category, error) {
	query := `
        WITH RECURSIVE subtree AS (
            SELECT id, COALESCE(parent_id, 0) AS parent_id, level_name, name
            FROM categories
            WHERE parent_id = $1
            UNION ALL
            SELECT c.id, COALESCE(c.parent_id, 0) AS parent_id, c.level_name, c.name
            FROM categories c
            JOIN subtree s ON c.parent_id = s.id
        )
        SELECT id, parent_id, level_name, name FROM subtree
    `

	var categories []domain.Category
	if err := r.db.SelectContext(ctx, &categories, query, id); err != nil {
		return nil, fmt.Errorf("error fetching descendants of category %d: %w", id, err)
	}

	return categories, nil
}
