package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	domain "user-directory-service/internal/domain/user"
)

// UserRepository keeps users in an ordered slice guarded by a single lock.
// Every method is atomic with respect to the others.
type UserRepository struct {
	mu    sync.RWMutex
	users []domain.User
	log   *zap.Logger
}

// NewUserRepository creates an in-memory repository holding a copy of seed.
func NewUserRepository(seed []domain.User, log *zap.Logger) *UserRepository {
	users := make([]domain.User, len(seed))
	for i, u := range seed {
		users[i] = u.Clone()
	}
	return &UserRepository{users: users, log: log}
}

func (r *UserRepository) indexByID(id string) int {
	for i := range r.users {
		if r.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *UserRepository) indexByEmail(email string) int {
	for i := range r.users {
		if strings.EqualFold(r.users[i].Email, email) {
			return i
		}
	}
	return -1
}

// Create appends a user. It fails when the id or the email is already used.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByEmail(u.Email) >= 0 {
		return domain.ErrEmailTaken
	}
	if r.indexByID(u.ID) >= 0 {
		return fmt.Errorf("duplicate user id %q", u.ID)
	}

	r.users = append(r.users, u.Clone())
	r.log.Debug("user stored in memory", zap.String("id", u.ID), zap.Int("count", len(r.users)))
	return nil
}

// GetByID returns a copy of the user with the given id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	u := r.users[i].Clone()
	return &u, nil
}

// GetByEmail returns a copy of the user owning email, or nil when nobody does.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByEmail(email)
	if i < 0 {
		return nil, nil
	}
	u := r.users[i].Clone()
	return &u, nil
}

// Update merges patch into the stored user in place.
func (r *UserRepository) Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}
	if patch.Email != nil {
		if j := r.indexByEmail(*patch.Email); j >= 0 && j != i {
			return nil, domain.ErrEmailTaken
		}
	}

	updated := r.users[i].Clone()
	patch.Apply(&updated)
	r.users[i] = updated

	u := updated.Clone()
	return &u, nil
}

// Delete removes the user, preserving the order of the rest.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i < 0 {
		return domain.ErrNotFound
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	r.log.Debug("user removed from memory", zap.String("id", id), zap.Int("count", len(r.users)))
	return nil
}

// List filters by a case-insensitive substring of name or email and returns
// the requested page together with the number of matches.
func (r *UserRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	matched := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		if needle == "" ||
			strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			matched = append(matched, u)
		}
	}

	total := int64(len(matched))
	start, end := domain.Window(total, page, limit)

	out := make([]domain.User, 0, end-start)
	for _, u := range matched[start:end] {
		out = append(out, u.Clone())
	}
	return out, total, nil
}

// Len reports how many users are stored.
func (r *UserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}
