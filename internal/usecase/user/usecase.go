package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	domain "user-directory-service/internal/domain/user"
	pkgerrors "user-directory-service/pkg/errors"
	"user-directory-service/pkg/idgen"
	"user-directory-service/pkg/logger"
	"user-directory-service/pkg/security"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// Repository defines the interface for user data access operations.
// Implementations must make each call atomic and report domain.ErrNotFound
// and domain.ErrEmailTaken instead of driver errors.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error                                        // Append a new user
	GetByID(ctx context.Context, id string) (*domain.User, error)                            // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error)                      // Retrieve user by email, nil if absent
	Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error)         // Merge supplied fields
	Delete(ctx context.Context, id string) error                                             // Delete user by ID
	List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) // Page of matches plus match count
}

// Service implements the business logic for the user directory.
// It provides a clean separation between the transport layer and data layer.
type Service struct {
	repo     Repository          // Repository for data access
	ids      idgen.Generator     // Identifier source for new users
	log      *zap.Logger         // Logger for structured logging
	validate *validator.Validate // Validator for request validation
	now      func() time.Time    // Clock used for join dates
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to stamp join dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a new Service with the provided repository, id generator and logger.
func New(r Repository, ids idgen.Generator, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     r,
		ids:      ids,
		log:      log,
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ Usecase = (*Service)(nil)

func userNotFound() error {
	return pkgerrors.NewNotFoundError("user", "User not found")
}

func emailConflict() error {
	return pkgerrors.NewAlreadyExistsError("user", "User with this email already exists")
}

func internal(err error) error {
	return pkgerrors.NewInternalError("Internal server error", err)
}

// CreateUser creates a new user after validating the request and checking email uniqueness.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	existing, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		log.Error("failed to check existing email", zap.String("email", in.Email), zap.Error(err))
		return nil, internal(err)
	}
	if existing != nil {
		log.Warn("email already exists", zap.String("email", in.Email), zap.String("existing_id", existing.ID))
		return nil, emailConflict()
	}

	u := &domain.User{
		ID:       s.ids.NextID(),
		Name:     in.Name,
		Email:    in.Email,
		Role:     domain.Role(in.Role),
		Status:   domain.Status(in.Status),
		JoinDate: domain.DateOf(s.now()),
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) != "" {
		phone := strings.TrimSpace(*in.Phone)
		u.Phone = &phone
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			log.Warn("email taken during insert", zap.String("email", in.Email))
			return nil, emailConflict()
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, internal(err)
	}

	log.Info("user created", zap.String("id", u.ID))
	return &CreateUserResponse{User: toDTO(*u)}, nil
}

// UpdateUser merges the supplied fields into an existing user.
// Email uniqueness is enforced against every other user, after the user is
// known to exist.
func (s *Service) UpdateUser(ctx context.Context, in UpdateUserRequest) (*UpdateUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	in.ID = strings.TrimSpace(in.ID)
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if in.Phone != nil {
		phone := strings.TrimSpace(*in.Phone)
		in.Phone = &phone
	}
	log.Info("updating user", zap.String("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if in.Email != nil {
		// An unknown id is a 404 even when the email belongs to someone else
		if _, err := s.repo.GetByID(ctx, in.ID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				log.Warn("user not found", zap.String("id", in.ID))
				return nil, userNotFound()
			}
			log.Error("failed to get user", zap.String("id", in.ID), zap.Error(err))
			return nil, internal(err)
		}

		existing, err := s.repo.GetByEmail(ctx, *in.Email)
		if err != nil {
			log.Error("failed to check existing email", zap.String("email", *in.Email), zap.Error(err))
			return nil, internal(err)
		}
		if existing != nil && existing.ID != in.ID {
			log.Warn("email already exists", zap.String("email", *in.Email), zap.String("existing_id", existing.ID))
			return nil, emailConflict()
		}
	}

	patch := domain.Patch{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}
	if in.Role != nil {
		role := domain.Role(*in.Role)
		patch.Role = &role
	}
	if in.Status != nil {
		st := domain.Status(*in.Status)
		patch.Status = &st
	}

	u, err := s.repo.Update(ctx, in.ID, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			log.Warn("user not found", zap.String("id", in.ID))
			return nil, userNotFound()
		case errors.Is(err, domain.ErrEmailTaken):
			log.Warn("email taken during update", zap.String("id", in.ID))
			return nil, emailConflict()
		}
		log.Error("failed to update user", zap.String("id", in.ID), zap.Error(err))
		return nil, internal(err)
	}

	return &UpdateUserResponse{User: toDTO(*u)}, nil
}

// DeleteUser removes a user, keeping the order of the remaining users.
func (s *Service) DeleteUser(ctx context.Context, in DeleteUserRequest) (*DeleteUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	in.ID = strings.TrimSpace(in.ID)
	log.Info("deleting user", zap.String("id", in.ID))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("delete user validation failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	if err := s.repo.Delete(ctx, in.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("user not found", zap.String("id", in.ID))
			return nil, userNotFound()
		}
		log.Error("failed to delete user", zap.String("id", in.ID), zap.Error(err))
		return nil, internal(err)
	}

	return &DeleteUserResponse{ID: in.ID}, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error) {
	log := logger.WithContext(ctx, s.log)

	in.ID = strings.TrimSpace(in.ID)
	if err := s.validate.Struct(in); err != nil {
		log.Warn("get user validation failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Debug("user not found", zap.String("id", in.ID))
			return nil, userNotFound()
		}
		log.Error("failed to get user", zap.String("id", in.ID), zap.Error(err))
		return nil, internal(err)
	}

	return &GetUserResponse{User: toDTO(*u)}, nil
}

// ListUsers retrieves one page of users, optionally filtered by a
// case-insensitive substring of name or email.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if in.Page <= 0 {
		in.Page = defaultPage
	}
	if in.Limit <= 0 {
		in.Limit = defaultLimit
	}
	in.Search = security.NormalizeSearchQuery(in.Search)

	log.Info("listing users", zap.String("search", in.Search), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit))

	domainUsers, total, err := s.repo.List(ctx, in.Search, in.Page, in.Limit)
	if err != nil {
		log.Error("failed to list users", zap.String("search", in.Search), zap.Int64("page", in.Page), zap.Int64("limit", in.Limit), zap.Error(err))
		return nil, internal(err)
	}

	users := make([]User, len(domainUsers))
	for i, du := range domainUsers {
		users[i] = toDTO(du)
	}

	return &ListUsersResponse{
		Users:      users,
		Pagination: toPaginationDTO(domain.NewPagination(total, in.Page, in.Limit)),
	}, nil
}
