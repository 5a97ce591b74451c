// backend-go/internal/domain/distribution.go
package domain

import (
	"fmt"
	"math"
	"time"
)

// ABCClass is the Pareto contribution class of a product.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// ABCWeights are the composite-score weights for the three sales components.
// They are expected to sum to 1.0; small drift is renormalized by the
// classifier with a logged warning.
type ABCWeights struct {
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
	Margin   float64 `json:"margin"`
}

// Sum returns the raw weight total.
func (w ABCWeights) Sum() float64 {
	return w.Quantity + w.Value + w.Margin
}

// Validate rejects weights that cannot be repaired by renormalization.
func (w ABCWeights) Validate() error {
	if w.Quantity < 0 || w.Value < 0 || w.Margin < 0 {
		return fmt.Errorf("abc weights must be non-negative, got %+v", w)
	}
	if w.Sum() <= 0 {
		return fmt.Errorf("abc weights must sum to a positive value, got %.4f", w.Sum())
	}
	return nil
}

// ClassThresholds are cumulative composite-score boundaries for class
// assignment. Defaults follow the usual 80/95 Pareto split.
type ClassThresholds struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// DefaultClassThresholds returns the standard 80/95 boundaries.
func DefaultClassThresholds() ClassThresholds {
	return ClassThresholds{A: 0.80, B: 0.95}
}

// Validate checks ordering and range of the boundaries.
func (t ClassThresholds) Validate() error {
	if t.A <= 0 || t.A >= 1 || t.B <= 0 || t.B > 1 {
		return fmt.Errorf("class thresholds out of range: A=%.3f B=%.3f", t.A, t.B)
	}
	if t.A >= t.B {
		return fmt.Errorf("class threshold A (%.3f) must be below B (%.3f)", t.A, t.B)
	}
	return nil
}

// StockPolicy is the replenishment target for one ABC class.
type StockPolicy struct {
	ServiceLevel float64 `json:"service_level"`
	CoverageDays int     `json:"coverage_days"`
}

// TargetStockParams maps an ABC class to its stock policy. All three classes
// must be present; the engine never infers a missing policy.
type TargetStockParams map[ABCClass]StockPolicy

// Validate ensures every class has a usable policy.
func (p TargetStockParams) Validate() error {
	for _, class := range []ABCClass{ClassA, ClassB, ClassC} {
		policy, ok := p[class]
		if !ok {
			return fmt.Errorf("target stock params missing class %s", class)
		}
		if policy.ServiceLevel <= 0 || policy.ServiceLevel >= 1 {
			return fmt.Errorf("class %s service level %.3f out of (0,1)", class, policy.ServiceLevel)
		}
		if policy.CoverageDays <= 0 {
			return fmt.Errorf("class %s coverage days must be positive, got %d", class, policy.CoverageDays)
		}
	}
	for class := range p {
		if class != ClassA && class != ClassB && class != ClassC {
			return fmt.Errorf("unknown abc class %q in target stock params", class)
		}
	}
	return nil
}

// ScoreRecord is one product's classification inside a scope (the whole
// catalog or one category). Recomputed each run, never persisted by the engine.
type ScoreRecord struct {
	ProductID     int64    `json:"product_id"`
	QuantityPct   float64  `json:"quantity_pct"`
	ValuePct      float64  `json:"value_pct"`
	MarginPct     float64  `json:"margin_pct"`
	Score         float64  `json:"score"`
	CumulativePct float64  `json:"cumulative_pct"`
	Class         ABCClass `json:"class"`
	Rank          int      `json:"rank"`
}

// DemandStats are per-product daily demand aggregates.
type DemandStats struct {
	ProductID    int64   `json:"product_id"`
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"std_dev"`
	Variability  float64 `json:"variability"`
	ObservedDays int     `json:"observed_days"`
}

// CategoryPriority ranks one category for fill order.
type CategoryPriority struct {
	CategoryID     int64   `json:"category_id"`
	MaxClassAScore float64 `json:"max_class_a_score"`
	ClassACount    int     `json:"class_a_count"`
	AvgScore       float64 `json:"avg_score"`
}

// PlacementStatus is the per-product outcome of the fill pass.
type PlacementStatus string

const (
	PlacementPlaced   PlacementStatus = "placed"
	PlacementPartial  PlacementStatus = "partial"
	PlacementFailed   PlacementStatus = "failed"
	PlacementExcluded PlacementStatus = "excluded"
)

// Placement is one shelf occupancy produced by the engine: enough for the
// caller to materialize persistent segment and layer records.
type Placement struct {
	ProductID int64   `json:"product_id" db:"product_id"`
	ShelfID   int64   `json:"shelf_id" db:"shelf_id"`
	Facing    int     `json:"facing" db:"facing"`
	Width     float64 `json:"width" db:"width"`
}

// ProductReport is the per-product summary of a run.
type ProductReport struct {
	ProductID    int64           `json:"product_id"`
	CategoryID   int64           `json:"category_id"`
	Class        ABCClass        `json:"class"`
	TargetStock  int             `json:"target_stock"`
	FacingWanted int             `json:"facing_wanted"`
	FacingPlaced int             `json:"facing_placed"`
	Status       PlacementStatus `json:"status"`
	Reason       string          `json:"reason,omitempty"`
}

// CategoryRunStats aggregates placement outcomes for one category.
type CategoryRunStats struct {
	CategoryID int64   `json:"category_id"`
	Products   int     `json:"products"`
	Placed     int     `json:"placed"`
	Partial    int     `json:"partial"`
	Failed     int     `json:"failed"`
	Excluded   int     `json:"excluded"`
	SuccessPct float64 `json:"success_pct"`
}

// RunResult is the full output of one distribution pass over a gondola.
type RunResult struct {
	GondolaID     int64              `json:"gondola_id"`
	StartedAt     time.Time          `json:"started_at"`
	TotalProducts int                `json:"total_products"`
	Placed        int                `json:"placed"`
	Partial       int                `json:"partial"`
	Failed        int                `json:"failed"`
	Excluded      int                `json:"excluded"`
	CategoryOrder []int64            `json:"category_order"`
	CategoryStats []CategoryRunStats `json:"category_stats"`
	Products      []ProductReport    `json:"products"`
	Placements    []Placement        `json:"placements"`
}

// SuccessRate is the fraction of attempted products fully placed. Excluded
// products are data-quality drops, not attempts, so they stay out of the
// denominator.
func (r *RunResult) SuccessRate() float64 {
	attempted := r.Placed + r.Partial + r.Failed
	if attempted == 0 {
		return 0
	}
	return math.Round(float64(r.Placed)/float64(attempted)*10000) / 10000
}
