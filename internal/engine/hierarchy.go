package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// maxAncestorHops bounds the upward walk in ResolveAtLevel so a corrupted
// parent chain (cycle, orphan loop) cannot hang a run.
const maxAncestorHops = 10

// Hierarchy resolves category ancestry and enumerates category subtrees.
type Hierarchy struct {
	categories CategoryRepository
	products   ProductRepository
	log        zerolog.Logger
}

// NewHierarchy creates a hierarchy navigator over the category and product
// sources.
func NewHierarchy(categories CategoryRepository, products ProductRepository, log zerolog.Logger) *Hierarchy {
	return &Hierarchy{categories: categories, products: products, log: log}
}

// ResolveAtLevel returns the ancestor of the product's category at the target
// level. If the immediate category already sits at that level it is returned
// as-is. If no ancestor at the level exists within the hop bound, the original
// category is returned; this fallback is deliberate so a shallow hierarchy
// still groups products somewhere sensible.
func (h *Hierarchy) ResolveAtLevel(ctx context.Context, product domain.Product, targetLevel string) (*domain.Category, error) {
	current, err := h.categories.FetchCategory(ctx, product.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching category %d: %v", ErrDataUnavailable, product.CategoryID, err)
	}

	origin := current
	for hops := 0; hops < maxAncestorHops; hops++ {
		if current.LevelName == targetLevel {
			return current, nil
		}
		if current.ParentID == 0 {
			break
		}
		parent, err := h.categories.FetchCategory(ctx, current.ParentID)
		if err != nil {
			return nil, fmt.Errorf("%w: fetching category %d: %v", ErrDataUnavailable, current.ParentID, err)
		}
		current = parent
	}

	h.log.Debug().
		Int64("category_id", origin.ID).
		Str("target_level", targetLevel).
		Msg("no ancestor at target level, falling back to product category")

	return origin, nil
}

// ProductsUnder returns every product whose category is in the subtree rooted
// at categoryID (the node itself included) and whose dimensions are all
// present and positive. Products failing the dimension check come back in the
// second slice so the caller can report them; they are never defaulted.
func (h *Hierarchy) ProductsUnder(ctx context.Context, categoryID int64) (valid, excluded []domain.Product, err error) {
	descendants, err := h.categories.FetchDescendants(ctx, categoryID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetching descendants of %d: %v", ErrDataUnavailable, categoryID, err)
	}

	ids := make([]int64, 0, len(descendants)+1)
	ids = append(ids, categoryID)
	for _, cat := range descendants {
		if cat.ID != categoryID {
			ids = append(ids, cat.ID)
		}
	}

	products, err := h.products.FetchByCategories(ctx, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: fetching products for category %d: %v", ErrDataUnavailable, categoryID, err)
	}

	for _, p := range products {
		if p.HasValidDimensions() {
			valid = append(valid, p)
		} else {
			excluded = append(excluded, p)
		}
	}

	return valid, excluded, nil
}
