package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
	"github.com/shelfworks/planogram/backend-go/internal/engine"
	"github.com/shelfworks/planogram/backend-go/internal/export"
	"github.com/shelfworks/planogram/backend-go/internal/repository"
	"github.com/shelfworks/planogram/backend-go/internal/service"
)

type fakeDistributionService struct {
	result *domain.RunResult
	err    error
}

func (f *fakeDistributionService) RunDistribution(ctx context.Context, gondolaID int64, opts service.RunOptions) (*domain.RunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeDistributionService) GetLatestResult(ctx context.Context, gondolaID int64) (*domain.RunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeDistributionService) ListRuns(ctx context.Context, gondolaID int64, limit int) ([]repository.RunRecord, error) {
	return nil, f.err
}

func setupRouter(svc service.DistributionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewDistributionHandler(svc, export.NewExporter(nil))

	group := router.Group("/api/v1/distribution/gondolas/:id")
	group.POST("/run", handler.RunDistribution)
	group.GET("/result", handler.GetResult)
	group.GET("/exclusions", handler.GetExclusions)
	group.GET("/export/csv", handler.DownloadPlacementsCSV)
	return router
}

func sampleResult() *domain.RunResult {
	return &domain.RunResult{
		GondolaID: 42,
		Placed:    1,
		Excluded:  1,
		Products: []domain.ProductReport{
			{ProductID: 1, Status: domain.PlacementPlaced},
			{ProductID: 2, Status: domain.PlacementExcluded, Reason: "missing dimensions"},
		},
		Placements: []domain.Placement{
			{ProductID: 1, ShelfID: 11, Facing: 2, Width: 15},
		},
	}
}

func TestRunDistributionEndpoint(t *testing.T) {
	router := setupRouter(&fakeDistributionService{result: sampleResult()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/distribution/gondolas/42/run", strings.NewReader(`{"product_ids":[1,2]}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", w.Code, http.StatusOK, w.Body.String())
	}

	var result domain.RunResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if result.GondolaID != 42 || result.Placed != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestRunDistributionInvalidID(t *testing.T) {
	router := setupRouter(&fakeDistributionService{result: sampleResult()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/distribution/gondolas/abc/run", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestRunDistributionErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid configuration", engine.ErrInvalidConfiguration, http.StatusBadRequest},
		{"data unavailable", engine.ErrDataUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&fakeDistributionService{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/distribution/gondolas/42/run", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestGetExclusions(t *testing.T) {
	router := setupRouter(&fakeDistributionService{result: sampleResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/distribution/gondolas/42/exclusions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body struct {
		Products []domain.ProductReport `json:"products"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if len(body.Products) != 1 || body.Products[0].ProductID != 2 {
		t.Errorf("unexpected exclusions: %+v", body.Products)
	}
}

func TestDownloadPlacementsCSV(t *testing.T) {
	router := setupRouter(&fakeDistributionService{result: sampleResult()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/distribution/gondolas/42/export/csv", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", got)
	}
	if !strings.Contains(w.Body.String(), "42,11,1,2,15.00") {
		t.Errorf("csv body missing placement row: %s", w.Body.String())
	}
}
