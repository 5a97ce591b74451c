// backend-go/internal/repository/gondola_repository.go
package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// GondolaRepository loads a gondola with its ordered sections and shelves.
type GondolaRepository interface {
	FetchGondola(ctx context.Context, id int64) (*domain.Gondola, error)
}

type gondolaRepository struct {
	db *sqlx.DB
}

func NewGondolaRepository(db *sqlx.DB) GondolaRepository {
	return &gondolaRepository{db: db}
}

func (r *gondolaRepository) FetchGondola(ctx context.Context, id int64) (*domain.Gondola, error) {
	var gondola domain.Gondola
	query := `SELECT id, store_id, name FROM gondolas WHERE id = $1`
	if err := r.db.GetContext(ctx, &gondola, query, id); err != nil {
		return nil, fmt.Errorf("error fetching gondola %d: %w", id, err)
	}

	sectionQuery := `
        SELECT id, ordering, width
        FROM sections
        WHERE gondola_id = $1
        ORDER BY ordering
    `
	if err := r.db.SelectContext(ctx, &gondola.Sections, sectionQuery, id); err != nil {
		return nil, fmt.Errorf("error fetching sections for gondola %d: %w", id, err)
	}

	shelfQuery := `
        SELECT sh.id, sh.section_id, sh.ordering, sh.width, sh.depth,
               COALESCE(sh.occupied_width, 0) AS occupied_width
        FROM shelves sh
        JOIN sections se ON se.id = sh.section_id
        WHERE se.gondola_id = $1
        ORDER BY sh.section_id, sh.ordering
    `
	var shelves []domain.Shelf
	if err := r.db.SelectContext(ctx, &shelves, shelfQuery, id); err != nil {
		return nil, fmt.Errorf("error fetching shelves for gondola %d: %w", id, err)
	}

	bySection := make(map[int64][]domain.Shelf)
	for _, shelf := range shelves {
		bySection[shelf.SectionID] = append(bySection[shelf.SectionID], shelf)
	}
	for i := range gondola.Sections {
		gondola.Sections[i].Shelves = bySection[gondola.Sections[i].ID]
	}

	return &gondola, nil
}
