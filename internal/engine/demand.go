package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// DemandCalculator builds per-product daily demand statistics from the sales
// history source.
type DemandCalculator struct {
	sales SalesHistoryRepository
}

// NewDemandCalculator creates a demand calculator over the given sales source.
func NewDemandCalculator(sales SalesHistoryRepository) *DemandCalculator {
	return &DemandCalculator{sales: sales}
}

// Compute queries sales history for the given products and derives mean daily
// units, standard deviation and coefficient of variation per product. Products
// with no sales rows are omitted: callers must treat a missing entry as
// "unknown demand", not zero demand. An empty result is not an error; only a
// failing source is.
func (dc *DemandCalculator) Compute(ctx context.Context, productIDs []int64, dateRange domain.DateRange, storeID int64) (map[int64]domain.DemandStats, error) {
	if len(productIDs) == 0 {
		return map[int64]domain.DemandStats{}, nil
	}

	records, err := dc.sales.Query(ctx, productIDs, dateRange, storeID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying sales history: %v", ErrDataUnavailable, err)
	}

	// Group quantities by product and calendar day.
	daily := make(map[int64]map[time.Time]float64)
	for _, rec := range records {
		day := rec.Day.Truncate(24 * time.Hour)
		if daily[rec.ProductID] == nil {
			daily[rec.ProductID] = make(map[time.Time]float64)
		}
		daily[rec.ProductID][day] += rec.Quantity
	}

	stats := make(map[int64]domain.DemandStats, len(daily))
	for productID, days := range daily {
		stats[productID] = summarize(productID, days)
	}

	return stats, nil
}

func summarize(productID int64, days map[time.Time]float64) domain.DemandStats {
	n := float64(len(days))

	var sum float64
	for _, qty := range days {
		sum += qty
	}
	mean := sum / n

	var sqDiff float64
	for _, qty := range days {
		d := qty - mean
		sqDiff += d * d
	}
	stdDev := math.Sqrt(sqDiff / n)

	variability := 0.0
	if mean != 0 {
		variability = stdDev / mean
	}

	return domain.DemandStats{
		ProductID:    productID,
		Mean:         mean,
		StdDev:       stdDev,
		Variability:  variability,
		ObservedDays: len(days),
	}
}
