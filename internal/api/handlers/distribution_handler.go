package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
	"github.com/shelfworks/planogram/backend-go/internal/engine"
	"github.com/shelfworks/planogram/backend-go/internal/export"
	"github.com/shelfworks/planogram/backend-go/internal/service"
)

type DistributionHandler struct {
	service  service.DistributionService
	exporter *export.Exporter
}

func NewDistributionHandler(service service.DistributionService, exporter *export.Exporter) *DistributionHandler {
	return &DistributionHandler{service: service, exporter: exporter}
}

// RunDistribution triggers a full engine pass over one gondola.
func (h *DistributionHandler) RunDistribution(c *gin.Context) {
	gondolaID, ok := h.gondolaID(c)
	if !ok {
		return
	}

	var opts service.RunOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
			return
		}
	}

	result, err := h.service.RunDistribution(c.Request.Context(), gondolaID, opts)
	if err != nil {
		h.runError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetResult returns the latest run result for a gondola.
func (h *DistributionHandler) GetResult(c *gin.Context) {
	gondolaID, ok := h.gondolaID(c)
	if !ok {
		return
	}

	result, err := h.service.GetLatestResult(c.Request.Context(), gondolaID)
	if err != nil {
		h.runError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPlacements returns only the shelf placements of the latest run.
func (h *DistributionHandler) GetPlacements(c *gin.Context) {
	gondolaID, ok := h.gondolaID(c)
	if !ok {
		return
	}

	result, err := h.service.GetLatestResult(c.Request.Context(), gondolaID)
	if err != nil {
		h.runError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"gondola_id": result.GondolaID,
		"placements": result.Placements,
	})
}

// GetExclusions returns the products dropped or failed in the latest run.
func (h *DistributionHandler) GetExclusions(c *gin.Context) {
	gondolaID, ok := h.gondolaID(c)
	if !ok {
		return
	}

	result, err := h.service.GetLatestResult(c.Request.Context(), gondolaID)
	if err != nil {
		h.runError(c, err)
		return
	}

	dropped := make([]domain.ProductReport, 0)
	for _, report := range result.Products {
		if report.Status == domain.PlacementExcluded || report.Status == domain.PlacementFailed {
			dropped = append(dropped, report)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"gondola_id": result.GondolaID,
		"products":   dropped,
	})
}

// ListRuns returns recent persisted runs for a gondola.
func (h *DistributionHandler) ListRuns(c *gin.Context) {
	gondolaID, ok := h.gondolaID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	records, err := h.service.ListRuns(c.Request.Context(), gondolaID, limit)
	if err != nil {
		h.runError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"runs": records})
}

// DownloadPlacementsCSV streams the latest placements as CSV.
func (h *DistributionHandler) DownloadPlacementsCSV(c *gin.Context) {
	gondolaID, ok := h.gondolaID(c)
	if !ok {
		return
	}

	result, err := h.service.GetLatestResult(c.Request.Context(), gondolaID)
	if err != nil {
		h.runError(c, err)
		return
	}

	payload, err := h.exporter.PlacementsCSV(result)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename := fmt.Sprintf("planogram_%d.csv", gondolaID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", payload)
}

// ExportRun uploads the latest run documents to object storage.
func (h *DistributionHandler) ExportRun(c *gin.Context) {
	gondolaID, ok := h.gondolaID(c)
	if !ok {
		return
	}

	result, err := h.service.GetLatestResult(c.Request.Context(), gondolaID)
	if err != nil {
		h.runError(c, err)
		return
	}

	key, err := h.exporter.Upload(c.Request.Context(), result)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key})
}

func (h *DistributionHandler) gondolaID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gondola id must be a positive integer"})
		return 0, false
	}
	return id, true
}

func (h *DistributionHandler) runError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrInvalidConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrDataUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.Is(err, sql.ErrNoRows):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
