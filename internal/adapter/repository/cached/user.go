package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-directory-service/internal/adapter/cache"
	domain "user-directory-service/internal/domain/user"
	"user-directory-service/internal/usecase/user"
)

// UserRepository implements user.Repository with caching support.
// It wraps a persistent repository (DB) and a cache implementation.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

var _ user.Repository = (*UserRepository)(nil)

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(dbRepo user.Repository, cache cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  cache,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	return r.dbRepo.Create(ctx, u)
}

// GetByID retrieves a user by ID using Cache-Aside pattern.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, err := r.cache.Get(ctx, id); err != nil {
		r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
	} else if u != nil {
		return u, nil
	}

	// Cache miss - use single-flight to prevent stampede. The shared load
	// outlives any single caller's cancellation; each caller still stops
	// waiting when its own ctx is done.
	flight := context.WithoutCancel(ctx)
	ch := r.group.DoChan(cache.Key(id), func() (any, error) {
		u, err := r.dbRepo.GetByID(flight, id)
		if err != nil {
			return nil, err
		}

		if err := r.cache.Set(flight, u); err != nil {
			r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
		}
		return u, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	u := res.Val.(*domain.User)
	if res.Shared {
		c := u.Clone()
		return &c, nil
	}
	return u, nil
}

// GetByEmail delegates to the DB repository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Update updates the user in DB and invalidates the cache.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error) {
	u, err := r.dbRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	r.invalidate(ctx, id)
	return u, nil
}

// Delete deletes the user from DB and invalidates the cache.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	if err := r.dbRepo.Delete(ctx, id); err != nil {
		return err
	}

	r.invalidate(ctx, id)
	return nil
}

// List delegates to the DB repository.
func (r *UserRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	return r.dbRepo.List(ctx, query, page, limit)
}

func (r *UserRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.Warn("failed to invalidate cache", zap.String("id", id), zap.Error(err))
	}
}
