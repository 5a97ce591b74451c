package engine

import (
	"math"

	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// minTargetStock is the floor applied when a product has no demand statistics
// at all. Three units keeps an unknown-demand product visible on the shelf
// without inventing a forecast for it.
const minTargetStock = 3

// zScoreTable maps common service levels to standard-normal z-scores. Target
// stock picks the nearest entry rather than computing a true inverse CDF; the
// approximation is deliberate, service levels in practice come from this menu.
var zScoreTable = []struct {
	Level float64
	Z     float64
}{
	{0.50, 0.000},
	{0.80, 0.842},
	{0.85, 1.036},
	{0.90, 1.282},
	{0.95, 1.645},
	{0.975, 1.960},
	{0.99, 2.326},
}

// zScoreFor returns the z-score of the table entry closest to the requested
// service level.
func zScoreFor(serviceLevel float64) float64 {
	best := zScoreTable[0]
	for _, entry := range zScoreTable[1:] {
		if math.Abs(entry.Level-serviceLevel) < math.Abs(best.Level-serviceLevel) {
			best = entry
		}
	}
	return best.Z
}

// TargetStock converts demand statistics and a stock policy into an integer
// on-shelf target: expected demand over the coverage window plus a safety
// margin sized by the service level. When stats is nil the product has no
// sales history and the fixed minimum applies.
func TargetStock(stats *domain.DemandStats, policy domain.StockPolicy) int {
	if stats == nil {
		return minTargetStock
	}

	baseStock := stats.Mean * float64(policy.CoverageDays)
	safetyStock := stats.StdDev * zScoreFor(policy.ServiceLevel)

	return int(math.Ceil(baseStock + safetyStock))
}
