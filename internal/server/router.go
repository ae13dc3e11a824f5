package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sadopc/carbontrack/internal/config"
)

// NewEngine builds the gin engine with every gateway route.
func NewEngine(cfg *config.Config, handler *Handler, metrics *Metrics, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		metricsMiddleware(metrics),
		corsMiddleware(cfg.HTTP.CORSOrigins),
		errorHandlingMiddleware(logger),
	)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", handler.Health)
		api.GET("/activity-types", handler.ActivityTypes)
		api.POST("/log-emission", handler.LogEmission)
		api.GET("/get-emissions", handler.GetEmissions)
		api.GET("/get-summary", handler.GetSummary)
		api.GET("/predict-emissions", handler.PredictEmissions)
		api.GET("/get-recommendations", handler.GetRecommendations)
		api.DELETE("/delete-emission/:id", handler.DeleteEmission)
		api.GET("/export-data", handler.ExportData)
		api.GET("/stats", handler.Stats)
	}
	router.NoRoute(handler.NotFound)

	return router
}

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, metrics *Metrics, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        NewEngine(cfg, handler, metrics, logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
