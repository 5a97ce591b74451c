// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shelfworks/planogram/backend-go/internal/api/handlers"
	"github.com/shelfworks/planogram/backend-go/internal/api/middleware"
	"github.com/shelfworks/planogram/backend-go/internal/export"
	"github.com/shelfworks/planogram/backend-go/internal/service"
)

type Services struct {
	DistributionService service.DistributionService
	Exporter            *export.Exporter
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil && services.DistributionService != nil {
		distributionHandler := handlers.NewDistributionHandler(services.DistributionService, services.Exporter)
		gondolaGroup := apiGroup.Group("/distribution/gondolas/:id")
		{
			gondolaGroup.POST("/run", distributionHandler.RunDistribution)
			gondolaGroup.GET("/result", distributionHandler.GetResult)
			gondolaGroup.GET("/placements", distributionHandler.GetPlacements)
			gondolaGroup.GET("/exclusions", distributionHandler.GetExclusions)
			gondolaGroup.GET("/runs", distributionHandler.ListRuns)
			gondolaGroup.GET("/export/csv", distributionHandler.DownloadPlacementsCSV)
			gondolaGroup.POST("/export", distributionHandler.ExportRun)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
