package sqlrepo

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "user-directory-service/internal/domain/user"
)

func setupRepo(t *testing.T) *UserRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewUserRepo(db, zaptest.NewLogger(t))
	require.NoError(t, repo.Migrate(context.Background()))
	require.NoError(t, repo.Seed(context.Background(), domain.DemoUsers()))
	return repo
}

func newUser(id, name, email string) *domain.User {
	return &domain.User{
		ID:       id,
		Name:     name,
		Email:    email,
		Role:     domain.RoleUser,
		Status:   domain.StatusPending,
		JoinDate: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	}
}

func TestUserRepo_SeedIsIdempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Seed(ctx, domain.DemoUsers()))

	users, total, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, users, 4)
	assert.Equal(t, "1", users[0].ID)
	assert.Equal(t, "4", users[3].ID)
	assert.Nil(t, users[2].Phone)
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	phone := "+1 555 0100"
	u := newUser("5", "Ann Lee", "ann@example.com")
	u.Phone = &phone
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", got.Name)
	assert.Equal(t, "2026-10-19", domain.DateOf(got.JoinDate).Format(domain.DateLayout))
	require.NotNil(t, got.Phone)
	assert.Equal(t, phone, *got.Phone)

	byEmail, err := repo.GetByEmail(ctx, "ANN@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, "5", byEmail.ID)

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestUserRepo_CreateDuplicateEmail(t *testing.T) {
	repo := setupRepo(t)

	err := repo.Create(context.Background(), newUser("5", "Copy Cat", "john@example.com"))
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserRepo_GetByIDNotFound(t *testing.T) {
	repo := setupRepo(t)

	_, err := repo.GetByID(context.Background(), "999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepo_Update(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	name := "Johnny Doe"
	role := domain.RoleModerator
	updated, err := repo.Update(ctx, "1", domain.Patch{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Johnny Doe", updated.Name)
	assert.Equal(t, domain.RoleModerator, updated.Role)
	assert.Equal(t, "john@example.com", updated.Email)

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	users, _, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "1", users[0].ID, "update keeps insertion order")
}

func TestUserRepo_UpdateClearsPhone(t *testing.T) {
	repo := setupRepo(t)

	empty := ""
	updated, err := repo.Update(context.Background(), "1", domain.Patch{Phone: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.Phone)
}

func TestUserRepo_UpdateErrors(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	name := "Ghost"
	_, err := repo.Update(ctx, "999", domain.Patch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	taken := "sarah@example.com"
	_, err = repo.Update(ctx, "1", domain.Patch{Email: &taken})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	own := "john@example.com"
	_, err = repo.Update(ctx, "1", domain.Patch{Email: &own})
	assert.NoError(t, err)
}

func TestUserRepo_Delete(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Delete(ctx, "2"))
	assert.ErrorIs(t, repo.Delete(ctx, "2"), domain.ErrNotFound)

	users, total, err := repo.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, []string{"1", "3", "4"}, []string{users[0].ID, users[1].ID, users[2].ID})

	var ids []string
	require.NoError(t, repo.ForEachID(ctx, func(id string) { ids = append(ids, id) }))
	assert.Equal(t, []string{"1", "3", "4"}, ids)
}

func TestUserRepo_ListSearch(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"matches name case-insensitively", "SARAH", []string{"2"}},
		{"matches email", "emily@", []string{"4"}},
		{"matches several", "example.com", []string{"1", "2", "3", "4"}},
		{"percent is literal", "%", nil},
		{"underscore is literal", "_", nil},
		{"no match", "zzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(ctx, tt.query, 1, 10)
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)

			var ids []string
			for _, u := range users {
				ids = append(ids, u.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUserRepo_ListFoldsUnicode(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("5", "Élodie Ünal", "elodie@test.io")))

	for _, q := range []string{"élodie", "ÉLODIE", "ünal"} {
		users, total, err := repo.List(ctx, q, 1, 10)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total, q)
		require.Len(t, users, 1)
		assert.Equal(t, "5", users[0].ID)
	}

	renamed := "Ørjan Åsen"
	updated, err := repo.Update(ctx, "5", domain.Patch{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, "Ørjan Åsen", updated.Name)

	users, _, err := repo.List(ctx, "ØRJAN", 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "5", users[0].ID)
}

func TestUserRepo_MigrateBackfillsSearchColumns(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.db.Exec("UPDATE users SET name_fold = '', email_fold = '' WHERE id = ?", "1").Error)
	users, _, err := repo.List(ctx, "john", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, repo.Migrate(ctx))

	users, _, err = repo.List(ctx, "john", 1, 10)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "1", users[0].ID)

	owner, err := repo.GetByEmail(ctx, "JOHN@example.com")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "1", owner.ID)
}

func TestUserRepo_ListPagination(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	for i := 5; i <= 12; i++ {
		id := fmt.Sprintf("%d", i)
		require.NoError(t, repo.Create(ctx, newUser(id, "User "+id, "user"+id+"@test.io")))
	}

	page, total, err := repo.List(ctx, "", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	require.Len(t, page, 5)
	assert.Equal(t, "6", page[0].ID)

	last, _, err := repo.List(ctx, "", 3, 5)
	require.NoError(t, err)
	assert.Len(t, last, 2)

	beyond, total, err := repo.List(ctx, "", 9, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Empty(t, beyond)

	large := []struct {
		name        string
		page, limit int64
		want        int
	}{
		{name: "max limit", page: 1, limit: math.MaxInt64, want: 12},
		{name: "max limit second page", page: 2, limit: math.MaxInt64, want: 0},
		{name: "overflowing offset", page: 922337203685477582, limit: 10, want: 0},
	}
	for _, tt := range large {
		t.Run(tt.name, func(t *testing.T) {
			users, total, err := repo.List(ctx, "", tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, int64(12), total)
			assert.Len(t, users, tt.want)
		})
	}
}

func TestUserRepo_Ping(t *testing.T) {
	repo := setupRepo(t)
	assert.NoError(t, repo.Ping(context.Background()))
}
