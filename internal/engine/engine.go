package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

// Config tunes a distribution run. Thresholds drive both the global and the
// local ABC passes; HierarchyLevel is the category level products are grouped
// at for fill ordering.
type Config struct {
	Thresholds     domain.ClassThresholds
	HierarchyLevel string
}

// DefaultConfig groups products at the category level with the standard
// Pareto thresholds.
func DefaultConfig() Config {
	return Config{
		Thresholds:     domain.DefaultClassThresholds(),
		HierarchyLevel: domain.LevelCategory,
	}
}

// Request is one distribution invocation: a gondola snapshot, the candidate
// catalog, scoring weights and stock policies. The engine reads everything and
// mutates nothing it was handed.
type Request struct {
	Gondola    domain.Gondola
	ProductIDs []int64
	Weights    domain.ABCWeights
	Params     domain.TargetStockParams
	DateRange  domain.DateRange
	StoreID    int64
}

// Engine fills a gondola with products: score, classify, forecast, convert to
// facings, and allocate left to right across the ordered shelves. One run is
// single-threaded and synchronous; callers must not share a gondola between
// concurrent runs.
type Engine struct {
	demand    *DemandCalculator
	hierarchy *Hierarchy
	products  ProductRepository
	cfg       Config
	log       zerolog.Logger
}

// New creates a distribution engine over the given sources.
func New(sales SalesHistoryRepository, products ProductRepository, categories CategoryRepository, cfg Config, log zerolog.Logger) *Engine {
	if cfg.HierarchyLevel == "" {
		cfg.HierarchyLevel = domain.LevelCategory
	}
	return &Engine{
		demand:    NewDemandCalculator(sales),
		hierarchy: NewHierarchy(categories, products, log),
		products:  products,
		cfg:       cfg,
		log:       log,
	}
}

// Run executes one full distribution pass. Configuration problems and
// unreachable sources abort the run; per-product geometry exclusions and
// placement failures are recorded in the result and processing continues.
func (e *Engine) Run(ctx context.Context, req Request) (*domain.RunResult, error) {
	if err := req.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if err := req.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	classifier, err := NewClassifier(e.cfg.Thresholds, e.log)
	if err != nil {
		return nil, err
	}

	catalog, err := e.products.FetchProducts(ctx, req.ProductIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching catalog: %v", ErrDataUnavailable, err)
	}

	run := newRunState(req, e.log)

	candidates := run.filterGeometry(catalog)
	if len(candidates) == 0 {
		e.log.Warn().Int64("gondola_id", req.Gondola.ID).Msg("no placeable products in catalog")
		return run.result(), nil
	}

	stats, err := e.demand.Compute(ctx, productIDs(candidates), req.DateRange, req.StoreID)
	if err != nil {
		return nil, err
	}

	global, err := classifier.Classify(candidates, req.Weights)
	if err != nil {
		return nil, err
	}

	categoryOf, err := e.resolveCategories(ctx, candidates)
	if err != nil {
		return nil, err
	}

	priorities := CategoryPriorities(global, categoryOf)
	for _, p := range priorities {
		run.categoryOrder = append(run.categoryOrder, p.CategoryID)
	}

	e.log.Info().
		Int64("gondola_id", req.Gondola.ID).
		Int("products", len(candidates)).
		Int("shelves", len(run.slots)).
		Int("categories", len(priorities)).
		Msg("starting distribution pass")

	candidateSet := indexByID(candidates)
	for _, priority := range priorities {
		if err := e.processCategory(ctx, classifier, run, priority.CategoryID, candidateSet, global, stats); err != nil {
			return nil, err
		}
	}

	result := run.result()
	e.log.Info().
		Int64("gondola_id", req.Gondola.ID).
		Int("placed", result.Placed).
		Int("partial", result.Partial).
		Int("failed", result.Failed).
		Int("excluded", result.Excluded).
		Float64("success_rate", result.SuccessRate()).
		Msg("distribution pass finished")

	return result, nil
}

// processCategory runs the inner loop of one category: subtree fetch, local
// ABC ordering, then per-product target stock, facing and placement.
func (e *Engine) processCategory(ctx context.Context, classifier *Classifier, run *runState, categoryID int64, candidateSet map[int64]domain.Product, global *Classification, stats map[int64]domain.DemandStats) error {
	// Geometry exclusions already happened at catalog intake, so the
	// dimension-filtered remainder of the subtree is all that matters here.
	subtree, _, err := e.hierarchy.ProductsUnder(ctx, categoryID)
	if err != nil {
		return err
	}

	// Stay inside the catalog snapshot: the subtree may hold products the
	// caller did not submit, and a product already handled under another
	// resolved node must not be placed twice.
	var members []domain.Product
	for _, p := range subtree {
		if _, ok := candidateSet[p.ID]; !ok {
			continue
		}
		if run.seen[p.ID] {
			continue
		}
		members = append(members, p)
	}

	if len(members) == 0 {
		e.log.Info().Int64("category_id", categoryID).Msg("category empty after filtering, skipping")
		return nil
	}

	local, err := classifier.Classify(members, run.req.Weights)
	if err != nil {
		return err
	}

	ordered := orderByLocalScore(local, members)
	for _, product := range ordered {
		e.placeProduct(run, product, categoryID, global, stats)
	}

	run.logCategory(categoryID)
	return nil
}

// placeProduct computes target stock and facing for one product and consumes
// shelf width starting at the cursor. The computed facing is never reduced to
// force a fit: running out of shelves is a recorded failure.
func (e *Engine) placeProduct(run *runState, product domain.Product, categoryID int64, global *Classification, stats map[int64]domain.DemandStats) {
	run.seen[product.ID] = true

	// Target stock keys off the global class: the same classification a
	// human operator sees in catalog reports. Local class only orders the
	// category.
	globalRec, ok := global.Lookup(product.ID)
	if !ok {
		run.exclude(product, categoryID, "product missing from global classification")
		return
	}
	policy := run.req.Params[globalRec.Class]

	var productStats *domain.DemandStats
	if s, ok := stats[product.ID]; ok {
		productStats = &s
	}
	targetStock := TargetStock(productStats, policy)

	if run.cursor >= len(run.slots) {
		run.report(product, categoryID, globalRec.Class, targetStock, 0, 0, "no shelf capacity remaining")
		return
	}

	facing := Facing(product, targetStock, run.slots[run.cursor].Depth)
	if facing.DepthOverflow {
		e.log.Warn().
			Int64("product_id", product.ID).
			Float64("product_depth", product.Depth).
			Float64("shelf_depth", run.slots[run.cursor].Depth).
			Msg("product deeper than shelf, capping at one facing")
	}

	placed := run.consume(product, facing.Facing)

	reason := ""
	switch {
	case placed == 0:
		reason = "product does not fit on any remaining shelf"
	case placed < facing.Facing:
		reason = "shelves exhausted before full facing placed"
	}
	run.report(product, categoryID, globalRec.Class, targetStock, facing.Facing, placed, reason)
}

// resolveCategories maps each candidate to its category at the configured
// hierarchy level.
func (e *Engine) resolveCategories(ctx context.Context, products []domain.Product) (map[int64]int64, error) {
	categoryOf := make(map[int64]int64, len(products))
	for _, p := range products {
		cat, err := e.hierarchy.ResolveAtLevel(ctx, p, e.cfg.HierarchyLevel)
		if err != nil {
			return nil, err
		}
		categoryOf[p.ID] = cat.ID
	}
	return categoryOf, nil
}

// orderByLocalScore sorts category members by local composite score
// descending. Equal scores fall back to the package volume parsed from the
// display name (larger first); names without a parseable size keep catalog
// order.
func orderByLocalScore(local *Classification, members []domain.Product) []domain.Product {
	byID := indexByID(members)

	ordered := make([]domain.Product, 0, len(local.Records))
	for _, rec := range local.Records {
		ordered = append(ordered, byID[rec.ProductID])
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		recI, _ := local.Lookup(ordered[i].ID)
		recJ, _ := local.Lookup(ordered[j].ID)
		if recI.Score != recJ.Score {
			return recI.Score > recJ.Score
		}
		return packageVolume(ordered[i].Name) > packageVolume(ordered[j].Name)
	})

	return ordered
}

func productIDs(products []domain.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	return ids
}

func indexByID(products []domain.Product) map[int64]domain.Product {
	m := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		m[p.ID] = p
	}
	return m
}
