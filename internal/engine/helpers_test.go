package engine

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

var testLogger = zerolog.Nop()

// fakeSalesRepo serves canned sales records, optionally failing to simulate an
// unreachable source.
type fakeSalesRepo struct {
	records []domain.SalesRecord
	fail    bool
}

func (f *fakeSalesRepo) Query(_ context.Context, productIDs []int64, _ domain.DateRange, _ int64) ([]domain.SalesRecord, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	wanted := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}
	var out []domain.SalesRecord
	for _, rec := range f.records {
		if wanted[rec.ProductID] {
			out = append(out, rec)
		}
	}
	return out, nil
}

// fakeProductRepo serves products by id and by category id.
type fakeProductRepo struct {
	products []domain.Product
	fail     bool
}

func (f *fakeProductRepo) FetchProducts(_ context.Context, ids []int64) ([]domain.Product, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []domain.Product
	for _, p := range f.products {
		if wanted[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) FetchByCategories(_ context.Context, categoryIDs []int64) ([]domain.Product, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	wanted := make(map[int64]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = true
	}
	var out []domain.Product
	for _, p := range f.products {
		if wanted[p.CategoryID] {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeCategoryRepo serves a category tree held in a map.
type fakeCategoryRepo struct {
	categories map[int64]domain.Category
	fail       bool
}

func (f *fakeCategoryRepo) FetchCategory(_ context.Context, id int64) (*domain.Category, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	cat, ok := f.categories[id]
	if !ok {
		return nil, errors.New("category not found")
	}
	return &cat, nil
}

func (f *fakeCategoryRepo) FetchDescendants(_ context.Context, id int64) ([]domain.Category, error) {
	if f.fail {
		return nil, errors.New("connection refused")
	}
	var out []domain.Category
	var walk func(parentID int64)
	walk = func(parentID int64) {
		for _, cat := range f.categories {
			if cat.ParentID == parentID {
				out = append(out, cat)
				walk(cat.ID)
			}
		}
	}
	walk(id)
	return out, nil
}

func day(offset int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func sale(productID int64, dayOffset int, qty float64) domain.SalesRecord {
	return domain.SalesRecord{
		ProductID: productID,
		Day:       day(dayOffset),
		Quantity:  qty,
		SaleValue: qty * 2,
		Margin:    qty * 0.5,
	}
}

func testProduct(id int64, name string, categoryID int64, qty, value, margin float64) domain.Product {
	return domain.Product{
		ID:         id,
		EAN:        "200000000000" + string(rune('0'+id%10)),
		Name:       name,
		Width:      10,
		Height:     20,
		Depth:      8,
		CategoryID: categoryID,
		SoldQty:    qty,
		SoldValue:  value,
		SoldMargin: margin,
	}
}

func defaultParams() domain.TargetStockParams {
	return domain.TargetStockParams{
		domain.ClassA: {ServiceLevel: 0.95, CoverageDays: 7},
		domain.ClassB: {ServiceLevel: 0.90, CoverageDays: 5},
		domain.ClassC: {ServiceLevel: 0.80, CoverageDays: 3},
	}
}
