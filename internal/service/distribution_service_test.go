package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shelfworks/planogram/backend-go/internal/config"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
	"github.com/shelfworks/planogram/backend-go/internal/engine"
	"github.com/shelfworks/planogram/backend-go/internal/repository"
)

type fakeSalesRepo struct{ records []domain.SalesRecord }

func (f *fakeSalesRepo) Query(ctx context.Context, productIDs []int64, dateRange domain.DateRange, storeID int64) ([]domain.SalesRecord, error) {
	return f.records, nil
}

type fakeProductRepo struct{ products []domain.Product }

func (f *fakeProductRepo) FetchProducts(ctx context.Context, ids []int64) ([]domain.Product, error) {
	return f.products, nil
}

func (f *fakeProductRepo) FetchByCategories(ctx context.Context, categoryIDs []int64) ([]domain.Product, error) {
	return f.products, nil
}

type fakeCategoryRepo struct{ categories map[int64]domain.Category }

func (f *fakeCategoryRepo) FetchCategory(ctx context.Context, id int64) (*domain.Category, error) {
	cat, ok := f.categories[id]
	if !ok {
		return nil, errors.New("category not found")
	}
	return &cat, nil
}

func (f *fakeCategoryRepo) FetchDescendants(ctx context.Context, id int64) ([]domain.Category, error) {
	return nil, nil
}

type fakeGondolaRepo struct {
	gondola *domain.Gondola
	err     error
}

func (f *fakeGondolaRepo) FetchGondola(ctx context.Context, id int64) (*domain.Gondola, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.gondola, nil
}

type fakeRunRepo struct {
	saved  []*domain.RunResult
	latest *repository.RunRecord
}

func (f *fakeRunRepo) SaveRun(ctx context.Context, result *domain.RunResult) (int64, error) {
	f.saved = append(f.saved, result)
	return int64(len(f.saved)), nil
}

func (f *fakeRunRepo) GetLatestRun(ctx context.Context, gondolaID int64) (*repository.RunRecord, error) {
	if f.latest == nil {
		return nil, errors.New("no runs")
	}
	return f.latest, nil
}

func (f *fakeRunRepo) ListRuns(ctx context.Context, gondolaID int64, limit int) ([]repository.RunRecord, error) {
	if f.latest == nil {
		return nil, nil
	}
	return []repository.RunRecord{*f.latest}, nil
}

type fakeRunCache struct {
	results map[int64]*domain.RunResult
}

func (f *fakeRunCache) GetResult(ctx context.Context, gondolaID int64) (*domain.RunResult, bool, error) {
	result, ok := f.results[gondolaID]
	return result, ok, nil
}

func (f *fakeRunCache) SetResult(ctx context.Context, result *domain.RunResult) error {
	if f.results == nil {
		f.results = make(map[int64]*domain.RunResult)
	}
	f.results[result.GondolaID] = result
	return nil
}

func (f *fakeRunCache) Invalidate(ctx context.Context, gondolaID int64) error {
	delete(f.results, gondolaID)
	return nil
}

func testDistConfig() config.DistributionConfig {
	return config.DistributionConfig{
		ThresholdA:     0.80,
		ThresholdB:     0.95,
		HierarchyLevel: domain.LevelCategory,
		WeightQuantity: 0.3,
		WeightValue:    0.5,
		WeightMargin:   0.2,
		ServiceLevelA:  0.95,
		ServiceLevelB:  0.90,
		ServiceLevelC:  0.80,
		CoverageDaysA:  7,
		CoverageDaysB:  5,
		CoverageDaysC:  3,
	}
}

func testGondola() *domain.Gondola {
	return &domain.Gondola{
		ID:      42,
		StoreID: 1,
		Name:    "aisle 3 left",
		Sections: []domain.Section{
			{ID: 1, Ordering: 1, Width: 100, Shelves: []domain.Shelf{
				{ID: 11, SectionID: 1, Ordering: 1, Width: 100, Depth: 30},
			}},
		},
	}
}

func newTestService(gondolas repository.GondolaRepository, runs repository.RunRepository, runCache *fakeRunCache) DistributionService {
	cfg := testDistConfig()
	eng := engine.New(
		&fakeSalesRepo{records: []domain.SalesRecord{
			{ProductID: 1, StoreID: 1, Day: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Quantity: 5, SaleValue: 25, Margin: 5},
			{ProductID: 1, StoreID: 1, Day: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), Quantity: 7, SaleValue: 35, Margin: 7},
		}},
		&fakeProductRepo{products: []domain.Product{
			{ID: 1, Name: "cola 2L", Width: 10, Height: 25, Depth: 10, CategoryID: 100, SoldQty: 12, SoldValue: 60, SoldMargin: 12},
		}},
		&fakeCategoryRepo{categories: map[int64]domain.Category{
			100: {ID: 100, LevelName: domain.LevelCategory, Name: "soft drinks"},
		}},
		engine.Config{
			Thresholds:     domain.ClassThresholds{A: cfg.ThresholdA, B: cfg.ThresholdB},
			HierarchyLevel: cfg.HierarchyLevel,
		},
		zerolog.Nop(),
	)
	return NewDistributionService(eng, gondolas, runs, runCache, cfg)
}

func TestRunDistributionPersistsAndCaches(t *testing.T) {
	runs := &fakeRunRepo{}
	runCache := &fakeRunCache{}
	svc := newTestService(&fakeGondolaRepo{gondola: testGondola()}, runs, runCache)

	result, err := svc.RunDistribution(context.Background(), 42, RunOptions{ProductIDs: []int64{1}})
	if err != nil {
		t.Fatalf("RunDistribution() error = %v", err)
	}

	if result.GondolaID != 42 {
		t.Errorf("GondolaID = %d, want 42", result.GondolaID)
	}
	if result.Placed != 1 {
		t.Errorf("Placed = %d, want 1", result.Placed)
	}
	if len(runs.saved) != 1 {
		t.Fatalf("expected 1 persisted run, got %d", len(runs.saved))
	}
	if _, ok := runCache.results[42]; !ok {
		t.Error("run result not cached")
	}
}

func TestRunDistributionGondolaError(t *testing.T) {
	svc := newTestService(&fakeGondolaRepo{err: errors.New("boom")}, &fakeRunRepo{}, &fakeRunCache{})

	if _, err := svc.RunDistribution(context.Background(), 42, RunOptions{}); err == nil {
		t.Fatal("expected error when gondola cannot be loaded")
	}
}

func TestGetLatestResultPrefersCache(t *testing.T) {
	cached := &domain.RunResult{GondolaID: 42, Placed: 3}
	runCache := &fakeRunCache{results: map[int64]*domain.RunResult{42: cached}}
	svc := newTestService(&fakeGondolaRepo{gondola: testGondola()}, &fakeRunRepo{}, runCache)

	result, err := svc.GetLatestResult(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetLatestResult() error = %v", err)
	}
	if result != cached {
		t.Error("expected the cached result to be returned")
	}
}

func TestGetLatestResultFallsBackToStore(t *testing.T) {
	stored := &domain.RunResult{GondolaID: 42, Placed: 2, Failed: 1}
	payload, err := json.Marshal(stored)
	if err != nil {
		t.Fatal(err)
	}
	runs := &fakeRunRepo{latest: &repository.RunRecord{ID: 9, GondolaID: 42, Result: payload}}
	svc := newTestService(&fakeGondolaRepo{gondola: testGondola()}, runs, &fakeRunCache{})

	result, err := svc.GetLatestResult(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetLatestResult() error = %v", err)
	}
	if result.Placed != 2 || result.Failed != 1 {
		t.Errorf("unexpected rehydrated result: %+v", result)
	}
}
