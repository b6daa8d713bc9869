package cached

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-directory-service/internal/adapter/cache"
	"user-directory-service/internal/adapter/repository/memory"
	domain "user-directory-service/internal/domain/user"
	"user-directory-service/internal/usecase/user"
)

// countingRepo counts GetByID calls reaching the backing store.
type countingRepo struct {
	user.Repository
	gets  atomic.Int32
	delay time.Duration
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.gets.Add(1)
	time.Sleep(r.delay)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.Repository.GetByID(ctx, id)
}

func setup(t *testing.T) (*UserRepository, *countingRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	log := zaptest.NewLogger(t)
	backing := &countingRepo{Repository: memory.NewUserRepository(domain.DemoUsers(), log)}
	repo := NewUserRepository(backing, cache.NewRedisUserCache(client, time.Minute, log), log)
	return repo, backing, mr
}

func TestUserRepository_GetByIDCachesOnMiss(t *testing.T) {
	repo, backing, mr := setup(t)
	ctx := context.Background()

	first, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.True(t, mr.Exists("user:1"))

	second, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), backing.gets.Load())
}

func TestUserRepository_GetByIDNotFoundIsNotCached(t *testing.T) {
	repo, _, mr := setup(t)

	_, err := repo.GetByID(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists("user:999"))
}

func TestUserRepository_SingleFlight(t *testing.T) {
	repo, backing, _ := setup(t)
	backing.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			u, err := repo.GetByID(context.Background(), "2")
			assert.NoError(t, err)
			assert.Equal(t, "Sarah Wilson", u.Name)
		}()
	}
	wg.Wait()

	assert.Less(t, backing.gets.Load(), int32(10))
}

func TestUserRepository_SingleFlightSurvivesCallerCancel(t *testing.T) {
	repo, backing, mr := setup(t)
	backing.delay = 100 * time.Millisecond

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := repo.GetByID(leaderCtx, "3")
		leaderErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	follower := make(chan *domain.User, 1)
	followerErr := make(chan error, 1)
	go func() {
		u, err := repo.GetByID(context.Background(), "3")
		follower <- u
		followerErr <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	u := <-follower
	require.NoError(t, <-followerErr)
	assert.Equal(t, "Mike Johnson", u.Name)
	assert.Equal(t, int32(1), backing.gets.Load())
	assert.True(t, mr.Exists("user:3"))
}

func TestUserRepository_UpdateInvalidates(t *testing.T) {
	repo, _, mr := setup(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	require.True(t, mr.Exists("user:1"))

	name := "Johnny"
	updated, err := repo.Update(ctx, "1", domain.Patch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)
	assert.False(t, mr.Exists("user:1"))

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Johnny", got.Name)
}

func TestUserRepository_DeleteInvalidates(t *testing.T) {
	repo, _, mr := setup(t)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "3")
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "3"))
	assert.False(t, mr.Exists("user:3"))

	_, err = repo.GetByID(ctx, "3")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_FallsBackWhenCacheDown(t *testing.T) {
	repo, backing, mr := setup(t)
	mr.Close()

	u, err := repo.GetByID(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, "Emily Davis", u.Name)
	assert.Equal(t, int32(1), backing.gets.Load())

	assert.NoError(t, repo.Delete(context.Background(), "4"), "invalidation failures are not surfaced")
}

func TestUserRepository_Delegates(t *testing.T) {
	repo, _, _ := setup(t)
	ctx := context.Background()

	byEmail, err := repo.GetByEmail(ctx, "mike@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "3", byEmail.ID)

	users, total, err := repo.List(ctx, "", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Len(t, users, 2)

	require.NoError(t, repo.Create(ctx, &domain.User{ID: "5", Name: "Ann", Email: "ann@example.com"}))
}
