package server

import (
	"github.com/gin-gonic/gin"

	"github.com/garment-labs/labelaudit/internal/common"
)

// SetupRouter wires the middleware chain and the API routes.
func SetupRouter(h *Handler, cfg common.ServerConfig) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(h.logger))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))

	router.GET("/health", h.Health)

	router.POST("/classify", h.Classify)
	router.POST("/extract", h.Extract)
	router.POST("/validate", h.Validate)

	router.GET("/extractions", h.ListExtractions)
	router.GET("/extractions/:id", h.GetExtraction)
	router.GET("/validations", h.ListValidations)
	router.GET("/validations/:id", h.GetValidation)
	router.GET("/validations/:id/report.xlsx", h.ValidationReportXLSX)

	return router
}
