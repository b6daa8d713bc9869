package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"user-directory-service/cmd/api/di"
	ginrouter "user-directory-service/internal/adapter/gin/router"
	"user-directory-service/internal/config"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(cfg *config.Config, c *di.Container, l *zap.Logger) *http.Server {
	// Setup Gin router with all middleware and routes
	router := ginrouter.SetupRouter(ginrouter.Config{
		Users:       c.UserHandler,
		Dashboard:   c.DashboardHandler,
		Health:      c.HealthHandler,
		Limiter:     c.Limiter,
		CORSOrigins: cfg.App.CORSAllowedOrigins,
		Production:  cfg.App.IsProduction(),
		Log:         l,
	})

	l.Info("Gin REST API configured",
		zap.String("address", ":"+cfg.App.HTTPPort),
		zap.String("swagger", "http://localhost:"+cfg.App.HTTPPort+"/swagger/index.html"),
	)

	return &http.Server{
		Addr:              ":" + cfg.App.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
