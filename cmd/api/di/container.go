package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-directory-service/cmd/api/infrastructure"
	"user-directory-service/internal/adapter/cache"
	"user-directory-service/internal/adapter/db/sqlrepo"
	ginhandler "user-directory-service/internal/adapter/gin/handler"
	grpcadapter "user-directory-service/internal/adapter/grpc"
	"user-directory-service/internal/adapter/repository/cached"
	"user-directory-service/internal/adapter/repository/memory"
	"user-directory-service/internal/config"
	domain "user-directory-service/internal/domain/user"
	"user-directory-service/internal/usecase/dashboard"
	"user-directory-service/internal/usecase/health"
	"user-directory-service/internal/usecase/user"
	"user-directory-service/pkg/idgen"
	"user-directory-service/pkg/ratelimit"
	redisclient "user-directory-service/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	Limiter     ratelimit.Limiter

	UserHandler      *ginhandler.UserHandler
	DashboardHandler *ginhandler.DashboardHandler
	HealthHandler    *ginhandler.HealthHandler
	GRPCUserService  *grpcadapter.UserServiceServer
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (c *Container, err error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c = &Container{Config: cfg, Logger: l}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	// Initialize Redis client
	c.RedisClient, err = infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Initialize repository
	repo, ids, err := c.newRepository(ctx)
	if err != nil {
		return nil, err
	}

	// Initialize use cases
	c.UserUC = user.New(repo, ids, l)
	dashboardSvc := dashboard.New(nil)
	healthSvc := health.New(cfg.App.Env, c.pingers(), l)

	// Initialize rate limiter
	if cfg.RateLimit.Enabled {
		limits := ratelimit.Config{RequestsPerSecond: cfg.RateLimit.RPS, Burst: cfg.RateLimit.Burst}
		if c.RedisClient != nil {
			c.Limiter = ratelimit.NewRedisLimiter(c.RedisClient.Client, limits)
		} else {
			c.Limiter = ratelimit.NewLocalLimiter(limits)
		}
	}

	// Initialize transport handlers
	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l)
	c.DashboardHandler = ginhandler.NewDashboardHandler(dashboardSvc, l)
	c.HealthHandler = ginhandler.NewHealthHandler(healthSvc)
	c.GRPCUserService = grpcadapter.NewUserServiceServer(c.UserUC, l)

	return c, nil
}

// newRepository builds the configured storage and an id generator that
// continues after the stored ids.
func (c *Container) newRepository(ctx context.Context) (user.Repository, idgen.Generator, error) {
	cfg := c.Config

	var seed []domain.User
	if cfg.Storage.SeedDemoData {
		seed = domain.DemoUsers()
	}

	var (
		repo   user.Repository
		stored func(fn func(id string)) error
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		mem := memory.NewUserRepository(seed, c.Logger)
		repo = mem
		stored = func(fn func(id string)) error {
			for _, u := range seed {
				fn(u.ID)
			}
			return nil
		}

	default:
		db, err := infrastructure.NewDatabase(cfg, c.Logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db

		sqlRepo := sqlrepo.NewUserRepo(db, c.Logger)
		if err := sqlRepo.Migrate(ctx); err != nil {
			return nil, nil, err
		}
		if len(seed) > 0 {
			if err := sqlRepo.Seed(ctx, seed); err != nil {
				return nil, nil, err
			}
		}
		repo = sqlRepo
		stored = func(fn func(id string)) error { return sqlRepo.ForEachID(ctx, fn) }

		if cfg.Cache.Enabled && c.RedisClient != nil {
			userCache := cache.NewRedisUserCache(c.RedisClient.Client, cfg.Cache.TTL, c.Logger)
			repo = cached.NewUserRepository(sqlRepo, userCache, c.Logger)
			c.Logger.Info("user cache enabled", zap.Duration("ttl", cfg.Cache.TTL))
		}
	}

	switch cfg.Storage.IDStrategy {
	case config.IDULID:
		return repo, idgen.NewULID(), nil
	default:
		seq := idgen.NewSequence(0)
		if err := stored(seq.Observe); err != nil {
			return nil, nil, fmt.Errorf("failed to seed id sequence: %w", err)
		}
		return repo, seq, nil
	}
}

// pingers lists the dependencies reported by the health endpoint.
func (c *Container) pingers() map[string]health.Pinger {
	deps := map[string]health.Pinger{
		"database": health.PingFunc(func(context.Context) error { return nil }),
		"cache":    nil,
	}
	if c.DB != nil {
		deps["database"] = health.PingFunc(func(ctx context.Context) error {
			sqlDB, err := c.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		})
	}
	if c.RedisClient != nil {
		deps["cache"] = c.RedisClient
	}
	return deps
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
