package engine

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// runState is the mutable working set of one distribution pass: the ordered
// shelf slots, the forward-only cursor, and the accumulating reports. It is
// created fresh per run and discarded with the result.
type runState struct {
	req           Request
	log           zerolog.Logger
	slots         []ShelfSlot
	cursor        int
	seen          map[int64]bool
	startedAt     time.Time
	categoryOrder []int64
	reports       []domain.ProductReport
	placements    []domain.Placement
}

func newRunState(req Request, log zerolog.Logger) *runState {
	return &runState{
		req:       req,
		log:       log,
		slots:     FlattenGondola(req.Gondola),
		seen:      make(map[int64]bool),
		startedAt: time.Now().UTC(),
	}
}

// filterGeometry drops catalog entries without valid dimensions, recording
// each as an exclusion, and returns the placeable remainder.
func (rs *runState) filterGeometry(catalog []domain.Product) []domain.Product {
	var candidates []domain.Product
	for _, p := range catalog {
		if !p.HasValidDimensions() {
			rs.exclude(p, p.CategoryID, "missing or non-positive dimensions")
			rs.seen[p.ID] = true
			continue
		}
		candidates = append(candidates, p)
	}
	return candidates
}

// consume places up to wanted facings of the product starting at the cursor
// shelf, splitting across shelves as width allows. The cursor only ever moves
// forward; a full shelf is never revisited.
func (rs *runState) consume(product domain.Product, wanted int) int {
	remaining := wanted
	for remaining > 0 && rs.cursor < len(rs.slots) {
		slot := &rs.slots[rs.cursor]

		unitsFit := AdjustToFit(product, remaining, slot.Remaining())
		if unitsFit == 0 {
			rs.cursor++
			continue
		}

		slot.UsedWidth += float64(unitsFit) * product.Width
		remaining -= unitsFit
		rs.placements = append(rs.placements, domain.Placement{
			ProductID: product.ID,
			ShelfID:   slot.ShelfID,
			Facing:    unitsFit,
			Width:     float64(unitsFit) * product.Width,
		})

		if remaining > 0 {
			rs.cursor++
		}
	}
	return wanted - remaining
}

func (rs *runState) exclude(product domain.Product, categoryID int64, reason string) {
	rs.log.Warn().
		Int64("product_id", product.ID).
		Str("ean", product.EAN).
		Str("reason", reason).
		Msg("product excluded from distribution")
	rs.reports = append(rs.reports, domain.ProductReport{
		ProductID:  product.ID,
		CategoryID: categoryID,
		Status:     domain.PlacementExcluded,
		Reason:     reason,
	})
}

func (rs *runState) report(product domain.Product, categoryID int64, class domain.ABCClass, targetStock, wanted, placed int, reason string) {
	status := domain.PlacementPlaced
	switch {
	case placed == 0:
		status = domain.PlacementFailed
	case placed < wanted:
		status = domain.PlacementPartial
	}

	rs.reports = append(rs.reports, domain.ProductReport{
		ProductID:    product.ID,
		CategoryID:   categoryID,
		Class:        class,
		TargetStock:  targetStock,
		FacingWanted: wanted,
		FacingPlaced: placed,
		Status:       status,
		Reason:       reason,
	})
}

func (rs *runState) logCategory(categoryID int64) {
	var placed, partial, failed int
	for _, rep := range rs.reports {
		if rep.CategoryID != categoryID {
			continue
		}
		switch rep.Status {
		case domain.PlacementPlaced:
			placed++
		case domain.PlacementPartial:
			partial++
		case domain.PlacementFailed:
			failed++
		}
	}
	rs.log.Info().
		Int64("category_id", categoryID).
		Int("placed", placed).
		Int("partial", partial).
		Int("failed", failed).
		Msg("category processed")
}

// result freezes the run state into the caller-facing summary.
func (rs *runState) result() *domain.RunResult {
	result := &domain.RunResult{
		GondolaID:     rs.req.Gondola.ID,
		StartedAt:     rs.startedAt,
		CategoryOrder: rs.categoryOrder,
		Products:      rs.reports,
		Placements:    rs.placements,
	}

	perCategory := make(map[int64]*domain.CategoryRunStats)
	order := make([]int64, 0)
	for _, rep := range rs.reports {
		stats := perCategory[rep.CategoryID]
		if stats == nil {
			stats = &domain.CategoryRunStats{CategoryID: rep.CategoryID}
			perCategory[rep.CategoryID] = stats
			order = append(order, rep.CategoryID)
		}
		stats.Products++
		switch rep.Status {
		case domain.PlacementPlaced:
			stats.Placed++
			result.Placed++
		case domain.PlacementPartial:
			stats.Partial++
			result.Partial++
		case domain.PlacementFailed:
			stats.Failed++
			result.Failed++
		case domain.PlacementExcluded:
			stats.Excluded++
			result.Excluded++
		}
		result.TotalProducts++
	}

	for _, categoryID := range order {
		stats := perCategory[categoryID]
		attempted := stats.Placed + stats.Partial + stats.Failed
		if attempted > 0 {
			stats.SuccessPct = math.Round(float64(stats.Placed)/float64(attempted)*10000) / 100
		}
		result.CategoryStats = append(result.CategoryStats, *stats)
	}

	return result
}
