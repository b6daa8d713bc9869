package router

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"user-directory-service/internal/adapter/gin/handler"
	"user-directory-service/internal/adapter/gin/middleware"
	"user-directory-service/pkg/ratelimit"
)

//go:embed openapi.json
var openAPIDoc []byte

// Config holds everything the router needs
type Config struct {
	Users       *handler.UserHandler
	Dashboard   *handler.DashboardHandler
	Health      *handler.HealthHandler
	Limiter     ratelimit.Limiter // nil disables rate limiting
	CORSOrigins []string
	Production  bool
	Log         *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(cfg Config) *gin.Engine {
	if cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(cfg.Log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(cfg.Log))
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// API documentation
	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", openAPIDoc)
	})
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/openapi.json"))))

	api := router.Group("/api")
	api.Use(middleware.RateLimiter(cfg.Limiter, cfg.Log))
	{
		users := api.Group("/users")
		{
			users.GET("", cfg.Users.ListUsers)
			users.GET("/:id", cfg.Users.GetUser)
			users.POST("", cfg.Users.CreateUser)
			users.PUT("/:id", cfg.Users.UpdateUser)
			users.DELETE("/:id", cfg.Users.DeleteUser)
		}

		dashboard := api.Group("/dashboard")
		{
			dashboard.GET("", cfg.Dashboard.Overview)
			dashboard.GET("/analytics", cfg.Dashboard.Analytics)
		}

		api.GET("/health", cfg.Health.Health)
	}

	router.NoRoute(func(c *gin.Context) {
		handler.Fail(c, http.StatusNotFound, "Route not found")
	})

	return router
}
