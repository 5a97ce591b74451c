package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

func mustClassifier(t *testing.T) *Classifier {
	t.Helper()
	cl, err := NewClassifier(domain.DefaultClassThresholds(), testLogger)
	if err != nil {
		t.Fatalf("NewClassifier failed: %v", err)
	}
	return cl
}

// Hand-computed golden ranking: weights {0.3, 0.5, 0.2} over three products
// with share totals 100 / 1000 / 100 give composites 0.43, 0.39 and 0.18.
func TestClassifier_GoldenComposite(t *testing.T) {
	products := []domain.Product{
		testProduct(1, "Alpha", 10, 10, 600, 30),
		testProduct(2, "Beta", 10, 60, 300, 50),
		testProduct(3, "Gamma", 10, 30, 100, 20),
	}
	weights := domain.ABCWeights{Quantity: 0.3, Value: 0.5, Margin: 0.2}

	result, err := mustClassifier(t).Classify(products, weights)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	want := []struct {
		productID int64
		score     float64
		class     domain.ABCClass
	}{
		{2, 0.43, domain.ClassA},
		{1, 0.39, domain.ClassB},
		{3, 0.18, domain.ClassC},
	}

	if len(result.Records) != len(want) {
		t.Fatalf("got %d records, want %d", len(result.Records), len(want))
	}
	for i, w := range want {
		rec := result.Records[i]
		if rec.ProductID != w.productID {
			t.Errorf("rank %d: product %d, want %d", i+1, rec.ProductID, w.productID)
		}
		if math.Abs(rec.Score-w.score) > 1e-9 {
			t.Errorf("product %d score = %v, want %v", w.productID, rec.Score, w.score)
		}
		if rec.Class != w.class {
			t.Errorf("product %d class = %s, want %s", w.productID, rec.Class, w.class)
		}
		if rec.Rank != i+1 {
			t.Errorf("product %d rank = %d, want %d", w.productID, rec.Rank, i+1)
		}
	}
}

// Class boundaries must partition by cumulative score: no lower class may
// outrank a higher one.
func TestClassifier_MonotonicClasses(t *testing.T) {
	products := []domain.Product{
		testProduct(1, "P1", 1, 500, 5000, 900),
		testProduct(2, "P2", 1, 300, 2500, 500),
		testProduct(3, "P3", 1, 100, 1200, 250),
		testProduct(4, "P4", 1, 60, 700, 120),
		testProduct(5, "P5", 1, 25, 350, 60),
		testProduct(6, "P6", 1, 10, 150, 25),
		testProduct(7, "P7", 1, 5, 100, 15),
	}
	weights := domain.ABCWeights{Quantity: 0.3, Value: 0.5, Margin: 0.2}
	thresholds := domain.DefaultClassThresholds()

	result, err := mustClassifier(t).Classify(products, weights)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	rankOf := map[domain.ABCClass]int{domain.ClassA: 0, domain.ClassB: 1, domain.ClassC: 2}
	prev := -1
	for _, rec := range result.Records {
		if rec.Class == domain.ClassA && rec.CumulativePct > thresholds.A+1e-9 {
			t.Errorf("class A product %d has cumulative %.4f above threshold %.2f",
				rec.ProductID, rec.CumulativePct, thresholds.A)
		}
		if rankOf[rec.Class] < prev {
			t.Errorf("class order regressed at product %d (%s)", rec.ProductID, rec.Class)
		}
		prev = rankOf[rec.Class]
	}
}

// Products with identical composite scores keep their catalog order.
func TestClassifier_StableTies(t *testing.T) {
	products := []domain.Product{
		testProduct(10, "Tie first", 1, 40, 400, 80),
		testProduct(11, "Tie second", 1, 40, 400, 80),
		testProduct(12, "Tie third", 1, 40, 400, 80),
	}
	weights := domain.ABCWeights{Quantity: 0.3, Value: 0.5, Margin: 0.2}

	result, err := mustClassifier(t).Classify(products, weights)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	for i, wantID := range []int64{10, 11, 12} {
		if result.Records[i].ProductID != wantID {
			t.Errorf("position %d: product %d, want %d (stable tie-break)",
				i, result.Records[i].ProductID, wantID)
		}
	}
}

func TestClassifier_WeightHandling(t *testing.T) {
	products := []domain.Product{
		testProduct(1, "P1", 1, 60, 600, 60),
		testProduct(2, "P2", 1, 40, 400, 40),
	}

	t.Run("drifted weights renormalize", func(t *testing.T) {
		// Sums to 1.5; shares are identical across components so scores
		// must come out as the plain shares after renormalization.
		weights := domain.ABCWeights{Quantity: 0.5, Value: 0.5, Margin: 0.5}
		result, err := mustClassifier(t).Classify(products, weights)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		if math.Abs(result.Records[0].Score-0.6) > 1e-9 {
			t.Errorf("renormalized score = %v, want 0.6", result.Records[0].Score)
		}
	})

	t.Run("zero weights rejected", func(t *testing.T) {
		_, err := mustClassifier(t).Classify(products, domain.ABCWeights{})
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("negative weights rejected", func(t *testing.T) {
		weights := domain.ABCWeights{Quantity: -0.2, Value: 0.8, Margin: 0.4}
		_, err := mustClassifier(t).Classify(products, weights)
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
		}
	})
}

func TestClassifier_ZeroTotalsGuard(t *testing.T) {
	// No margin anywhere: margin percentages must be 0, not NaN.
	products := []domain.Product{
		testProduct(1, "P1", 1, 60, 600, 0),
		testProduct(2, "P2", 1, 40, 400, 0),
	}
	weights := domain.ABCWeights{Quantity: 0.3, Value: 0.5, Margin: 0.2}

	result, err := mustClassifier(t).Classify(products, weights)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	for _, rec := range result.Records {
		if math.IsNaN(rec.Score) || rec.MarginPct != 0 {
			t.Errorf("product %d: margin pct = %v, score = %v; want 0 margin pct and finite score",
				rec.ProductID, rec.MarginPct, rec.Score)
		}
	}
}

func TestCategoryPriorities(t *testing.T) {
	weights := domain.ABCWeights{Quantity: 0.3, Value: 0.5, Margin: 0.2}
	products := []domain.Product{
		testProduct(1, "Hero", 100, 500, 5000, 900),
		testProduct(2, "Side", 100, 50, 400, 80),
		testProduct(3, "Mid", 200, 300, 2500, 500),
		testProduct(4, "Mid2", 200, 200, 1800, 350),
		testProduct(5, "Tail", 300, 10, 100, 20),
	}
	categoryOf := map[int64]int64{1: 100, 2: 100, 3: 200, 4: 200, 5: 300}

	classify := func(ps []domain.Product) []domain.CategoryPriority {
		result, err := mustClassifier(t).Classify(ps, weights)
		if err != nil {
			t.Fatalf("Classify failed: %v", err)
		}
		return CategoryPriorities(result, categoryOf)
	}

	priorities := classify(products)
	if len(priorities) != 3 {
		t.Fatalf("got %d categories, want 3", len(priorities))
	}
	// Category 100 holds the single strongest product, so its best class-A
	// score wins over category 200's larger A count.
	if priorities[0].CategoryID != 100 {
		t.Errorf("first category = %d, want 100", priorities[0].CategoryID)
	}
	if priorities[len(priorities)-1].CategoryID != 300 {
		t.Errorf("last category = %d, want 300", priorities[len(priorities)-1].CategoryID)
	}

	// Reordering the input products must not change the derived category
	// order: the priorities are a function of the aggregates alone.
	shuffled := []domain.Product{products[4], products[2], products[0], products[3], products[1]}
	again := classify(shuffled)
	for i := range priorities {
		if priorities[i].CategoryID != again[i].CategoryID {
			t.Errorf("category order changed under input reordering at %d: %d vs %d",
				i, priorities[i].CategoryID, again[i].CategoryID)
		}
	}
}
