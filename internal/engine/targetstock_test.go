package engine

import (
	"testing"

	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

func TestTargetStock(t *testing.T) {
	tests := []struct {
		name   string
		stats  *domain.DemandStats
		policy domain.StockPolicy
		want   int
	}{
		{
			name:   "base plus safety",
			stats:  &domain.DemandStats{Mean: 4, StdDev: 2},
			policy: domain.StockPolicy{ServiceLevel: 0.95, CoverageDays: 7},
			// ceil(28 + 2*1.645) = ceil(31.29) = 32
			want: 32,
		},
		{
			name:   "fifty percent service level has no safety stock",
			stats:  &domain.DemandStats{Mean: 3, StdDev: 5},
			policy: domain.StockPolicy{ServiceLevel: 0.50, CoverageDays: 4},
			want:   12,
		},
		{
			name:   "nearest table entry wins",
			stats:  &domain.DemandStats{Mean: 2, StdDev: 1},
			policy: domain.StockPolicy{ServiceLevel: 0.93, CoverageDays: 5},
			// 0.93 is closer to 0.95 than 0.90: ceil(10 + 1.645) = 12
			want: 12,
		},
		{
			name:   "no stats gets fixed minimum",
			stats:  nil,
			policy: domain.StockPolicy{ServiceLevel: 0.99, CoverageDays: 30},
			want:   minTargetStock,
		},
		{
			name:   "zero demand stats round up from zero",
			stats:  &domain.DemandStats{Mean: 0, StdDev: 0},
			policy: domain.StockPolicy{ServiceLevel: 0.95, CoverageDays: 7},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetStock(tt.stats, tt.policy); got != tt.want {
				t.Errorf("TargetStock = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestZScoreFor(t *testing.T) {
	tests := []struct {
		level float64
		want  float64
	}{
		{0.50, 0.000},
		{0.80, 0.842},
		{0.90, 1.282},
		{0.95, 1.645},
		{0.975, 1.960},
		{0.99, 2.326},
		{0.97, 1.960}, // nearest entry, not interpolation
		{0.60, 0.000},
	}
	for _, tt := range tests {
		if got := zScoreFor(tt.level); got != tt.want {
			t.Errorf("zScoreFor(%v) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
