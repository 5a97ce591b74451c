package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// weightTolerance is how far the weight sum may drift from 1.0 before the
// classifier renormalizes and logs the adjustment.
const weightTolerance = 0.01

// Classification is the ordered outcome of one ABC pass over a product set.
// Records are sorted by composite score descending; ties keep the input order.
type Classification struct {
	Records []domain.ScoreRecord
	byID    map[int64]*domain.ScoreRecord
}

// Lookup returns the record for a product id, if the product was classified.
func (c *Classification) Lookup(productID int64) (domain.ScoreRecord, bool) {
	rec, ok := c.byID[productID]
	if !ok {
		return domain.ScoreRecord{}, false
	}
	return *rec, true
}

// Classifier computes ABC classifications over a product set. The same
// algorithm serves the whole catalog (global pass) and a single category
// (local pass); only the input set differs.
type Classifier struct {
	thresholds domain.ClassThresholds
	log        zerolog.Logger
}

// NewClassifier creates a classifier with the given cumulative-score
// thresholds.
func NewClassifier(thresholds domain.ClassThresholds, log zerolog.Logger) (*Classifier, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return &Classifier{thresholds: thresholds, log: log}, nil
}

// Classify scores and classes the given products. Component percentages are
// each product's share of the set totals (0 when a total is 0), the composite
// is the weighted sum, and classes are cut at the cumulative thresholds.
//
// The sort is stable: products with equal composite scores keep their input
// order, which makes reruns over the same snapshot deterministic.
func (cl *Classifier) Classify(products []domain.Product, weights domain.ABCWeights) (*Classification, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	weights = cl.normalizeWeights(weights)

	var totalQty, totalValue, totalMargin float64
	for _, p := range products {
		totalQty += p.SoldQty
		totalValue += p.SoldValue
		totalMargin += p.SoldMargin
	}

	records := make([]domain.ScoreRecord, 0, len(products))
	for _, p := range products {
		rec := domain.ScoreRecord{
			ProductID:   p.ID,
			QuantityPct: share(p.SoldQty, totalQty),
			ValuePct:    share(p.SoldValue, totalValue),
			MarginPct:   share(p.SoldMargin, totalMargin),
		}
		rec.Score = weights.Quantity*rec.QuantityPct +
			weights.Value*rec.ValuePct +
			weights.Margin*rec.MarginPct
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})

	var totalScore float64
	for _, rec := range records {
		totalScore += rec.Score
	}

	cumulative := 0.0
	for i := range records {
		cumulative += records[i].Score
		if totalScore > 0 {
			records[i].CumulativePct = cumulative / totalScore
		}
		records[i].Rank = i + 1
		records[i].Class = cl.classFor(records[i].CumulativePct)
	}

	byID := make(map[int64]*domain.ScoreRecord, len(records))
	for i := range records {
		byID[records[i].ProductID] = &records[i]
	}

	return &Classification{Records: records, byID: byID}, nil
}

// CategoryPriorities groups a global classification by category and ranks the
// categories for fill order: best class-A score first, then class-A count,
// then average score. Arrival order of products never decides the result.
func CategoryPriorities(global *Classification, categoryOf map[int64]int64) []domain.CategoryPriority {
	type agg struct {
		maxA   float64
		countA int
		sum    float64
		n      int
	}

	aggs := make(map[int64]*agg)
	for _, rec := range global.Records {
		catID, ok := categoryOf[rec.ProductID]
		if !ok {
			continue
		}
		a := aggs[catID]
		if a == nil {
			a = &agg{}
			aggs[catID] = a
		}
		a.sum += rec.Score
		a.n++
		if rec.Class == domain.ClassA {
			a.countA++
			if rec.Score > a.maxA {
				a.maxA = rec.Score
			}
		}
	}

	priorities := make([]domain.CategoryPriority, 0, len(aggs))
	for catID, a := range aggs {
		priorities = append(priorities, domain.CategoryPriority{
			CategoryID:     catID,
			MaxClassAScore: a.maxA,
			ClassACount:    a.countA,
			AvgScore:       a.sum / float64(a.n),
		})
	}

	sort.Slice(priorities, func(i, j int) bool {
		a, b := priorities[i], priorities[j]
		if a.MaxClassAScore != b.MaxClassAScore {
			return a.MaxClassAScore > b.MaxClassAScore
		}
		if a.ClassACount != b.ClassACount {
			return a.ClassACount > b.ClassACount
		}
		if a.AvgScore != b.AvgScore {
			return a.AvgScore > b.AvgScore
		}
		// Category id as the final tie-break keeps reruns deterministic.
		return a.CategoryID < b.CategoryID
	})

	return priorities
}

func (cl *Classifier) normalizeWeights(weights domain.ABCWeights) domain.ABCWeights {
	sum := weights.Sum()
	if math.Abs(sum-1.0) <= weightTolerance {
		return weights
	}

	cl.log.Warn().
		Float64("sum", sum).
		Msg("abc weights do not sum to 1.0, renormalizing proportionally")

	return domain.ABCWeights{
		Quantity: weights.Quantity / sum,
		Value:    weights.Value / sum,
		Margin:   weights.Margin / sum,
	}
}

func (cl *Classifier) classFor(cumulativePct float64) domain.ABCClass {
	switch {
	case cumulativePct <= cl.thresholds.A:
		return domain.ClassA
	case cumulativePct <= cl.thresholds.B:
		return domain.ClassB
	default:
		return domain.ClassC
	}
}

func share(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total
}
