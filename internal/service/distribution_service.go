// backend-go/internal/service/distribution_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shelfworks/planogram/backend-go/internal/cache"
	"github.com/shelfworks/planogram/backend-go/internal/config"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
	"github.com/shelfworks/planogram/backend-go/internal/engine"
	"github.com/shelfworks/planogram/backend-go/internal/repository"
)

// RunOptions are the per-request overrides for one distribution run. Zero
// values fall back to the configured tenant defaults.
type RunOptions struct {
	ProductIDs []int64            `json:"product_ids"`
	StoreID    int64              `json:"store_id"`
	Weights    *domain.ABCWeights `json:"weights,omitempty"`
	From       *time.Time         `json:"from,omitempty"`
	To         *time.Time         `json:"to,omitempty"`
}

// DistributionService runs the engine against stored gondolas and persists
// the results.
type DistributionService interface {
	RunDistribution(ctx context.Context, gondolaID int64, opts RunOptions) (*domain.RunResult, error)
	GetLatestResult(ctx context.Context, gondolaID int64) (*domain.RunResult, error)
	ListRuns(ctx context.Context, gondolaID int64, limit int) ([]repository.RunRecord, error)
}

type distributionService struct {
	engine   *engine.Engine
	gondolas repository.GondolaRepository
	runs     repository.RunRepository
	cache    cache.RunCache
	cfg      config.DistributionConfig

	// One run at a time per gondola. Concurrent requests for different
	// gondolas proceed independently.
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewDistributionService(
	eng *engine.Engine,
	gondolas repository.GondolaRepository,
	runs repository.RunRepository,
	runCache cache.RunCache,
	cfg config.DistributionConfig,
) DistributionService {
	return &distributionService{
		engine:   eng,
		gondolas: gondolas,
		runs:     runs,
		cache:    runCache,
		cfg:      cfg,
		locks:    make(map[int64]*sync.Mutex),
	}
}

func (s *distributionService) RunDistribution(ctx context.Context, gondolaID int64, opts RunOptions) (*domain.RunResult, error) {
	lock := s.gondolaLock(gondolaID)
	lock.Lock()
	defer lock.Unlock()

	gondola, err := s.gondolas.FetchGondola(ctx, gondolaID)
	if err != nil {
		return nil, fmt.Errorf("error loading gondola %d: %w", gondolaID, err)
	}

	req := s.buildRequest(*gondola, opts)

	started := time.Now()
	result, err := s.engine.Run(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("gondola_id", gondolaID).
		Dur("elapsed", time.Since(started)).
		Int("placed", result.Placed).
		Int("failed", result.Failed).
		Msg("distribution run completed")

	if _, err := s.runs.SaveRun(ctx, result); err != nil {
		// The run itself succeeded; persistence problems should not hide
		// the result from the caller.
		log.Error().Err(err).Int64("gondola_id", gondolaID).Msg("failed to persist distribution run")
	}

	if err := s.cache.SetResult(ctx, result); err != nil {
		log.Warn().Err(err).Int64("gondola_id", gondolaID).Msg("failed to cache distribution result")
	}

	return result, nil
}

func (s *distributionService) GetLatestResult(ctx context.Context, gondolaID int64) (*domain.RunResult, error) {
	if cached, ok, err := s.cache.GetResult(ctx, gondolaID); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Int64("gondola_id", gondolaID).Msg("run cache read failed, falling back to store")
	}

	record, err := s.runs.GetLatestRun(ctx, gondolaID)
	if err != nil {
		return nil, err
	}

	var result domain.RunResult
	if err := json.Unmarshal(record.Result, &result); err != nil {
		return nil, fmt.Errorf("error decoding stored run %d: %w", record.ID, err)
	}

	return &result, nil
}

func (s *distributionService) ListRuns(ctx context.Context, gondolaID int64, limit int) ([]repository.RunRecord, error) {
	return s.runs.ListRuns(ctx, gondolaID, limit)
}

// buildRequest merges configured defaults with per-request overrides.
func (s *distributionService) buildRequest(gondola domain.Gondola, opts RunOptions) engine.Request {
	weights := domain.ABCWeights{
		Quantity: s.cfg.WeightQuantity,
		Value:    s.cfg.WeightValue,
		Margin:   s.cfg.WeightMargin,
	}
	if opts.Weights != nil {
		weights = *opts.Weights
	}

	dateRange := domain.DateRange{}
	if opts.From != nil {
		dateRange.From = *opts.From
	}
	if opts.To != nil {
		dateRange.To = *opts.To
	}
	if dateRange.From.IsZero() && dateRange.To.IsZero() && s.cfg.AnalysisWindowD > 0 {
		dateRange.To = time.Now()
		dateRange.From = dateRange.To.AddDate(0, 0, -s.cfg.AnalysisWindowD)
	}

	storeID := opts.StoreID
	if storeID == 0 {
		storeID = gondola.StoreID
	}

	return engine.Request{
		Gondola:    gondola,
		ProductIDs: opts.ProductIDs,
		Weights:    weights,
		Params:     s.stockParams(),
		DateRange:  dateRange,
		StoreID:    storeID,
	}
}

func (s *distributionService) stockParams() domain.TargetStockParams {
	return domain.TargetStockParams{
		domain.ClassA: {ServiceLevel: s.cfg.ServiceLevelA, CoverageDays: s.cfg.CoverageDaysA},
		domain.ClassB: {ServiceLevel: s.cfg.ServiceLevelB, CoverageDays: s.cfg.CoverageDaysB},
		domain.ClassC: {ServiceLevel: s.cfg.ServiceLevelC, CoverageDays: s.cfg.CoverageDaysC},
	}
}

func (s *distributionService) gondolaLock(gondolaID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[gondolaID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[gondolaID] = lock
	}
	return lock
}
