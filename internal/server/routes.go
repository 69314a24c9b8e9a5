// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Takita08/Marko-Docu-Ai/internal/config"
	"github.com/Takita08/Marko-Docu-Ai/internal/handler"
	"github.com/Takita08/Marko-Docu-Ai/internal/middleware"
	"github.com/Takita08/Marko-Docu-Ai/internal/session"
	"github.com/Takita08/Marko-Docu-Ai/internal/storage"
	"github.com/Takita08/Marko-Docu-Ai/internal/viewstate"
)

// Deps are the services the handlers need. main builds them once.
type Deps struct {
	Analyzer viewstate.Adapter
	Sessions *session.Store
	Calls    storage.CallRepository
}

// RegisterRoutes sets up all HTTP routes on the Gin engine.
// In Go, we pass dependencies explicitly. No DI container, no magic.
// Each handler gets exactly the dependencies it needs.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	maxUpload := cfg.Server.MaxUploadBytes()

	healthHandler := handler.NewHealthHandler()
	analysisHandler := handler.NewAnalysisHandler(deps.Analyzer, maxUpload, logger)
	sessionHandler := handler.NewSessionHandler(deps.Sessions, maxUpload, logger)
	usageHandler := handler.NewUsageHandler(deps.Calls, logger)

	// CORS sits on the engine, not the API group: preflight OPTIONS requests
	// match no route, and only engine-level middleware runs for those.
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	r.GET("/healthz", healthHandler.Healthz)

	api := r.Group("/api/v1")

	api.GET("/usage", usageHandler.Usage)

	// Everything below can reach an AI backend, so it is rate limited per client.
	limited := api.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		limited.POST("/documents/analyze", analysisHandler.AnalyzeDocument)
		limited.POST("/stocks/predict", analysisHandler.PredictMarket)

		limited.POST("/sessions", sessionHandler.Create)
		limited.GET("/sessions/:id", sessionHandler.Get)
		limited.DELETE("/sessions/:id", sessionHandler.Delete)
		limited.POST("/sessions/:id/document", sessionHandler.SubmitDocument)
		limited.POST("/sessions/:id/ticker", sessionHandler.SubmitTicker)
		limited.POST("/sessions/:id/reset", sessionHandler.Reset)
		limited.POST("/sessions/:id/mode", sessionHandler.SwitchMode)
	}
}
