package sqlrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	domain "user-directory-service/internal/domain/user"
	"user-directory-service/pkg/security"
)

// UserRepo implements the user Repository on top of GORM. It works with any
// GORM dialector; postgres and sqlite are wired in.
type UserRepo struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepo creates a new instance of UserRepo.
func NewUserRepo(db *gorm.DB, log *zap.Logger) *UserRepo {
	return &UserRepo{db: db, log: log}
}

// UserSchema represents the database schema for the users table.
type UserSchema struct {
	Seq      int64   `gorm:"primaryKey;autoIncrement"`      // Insertion order
	ID       string  `gorm:"size:36;not null;uniqueIndex"`  // Public identifier
	Name     string  `gorm:"size:100;not null"`             // Display name
	Email    string  `gorm:"size:191;not null;uniqueIndex"` // Normalized unique email
	Phone    *string `gorm:"size:50"`                       // Optional phone
	Role     string  `gorm:"size:16;not null"`              // admin, user, moderator
	Status   string  `gorm:"size:16;not null"`              // active, inactive, pending
	JoinDate string  `gorm:"size:10;not null"`              // YYYY-MM-DD
	Avatar   *string `gorm:"size:255"`                      // Optional avatar reference

	// Search columns hold strings.ToLower of name and email. SQL LOWER()
	// folds only ASCII on sqlite, so folding happens in Go for every driver.
	NameFold  string `gorm:"size:100;not null;default:''"`
	EmailFold string `gorm:"size:191;not null;default:''"`
}

// TableName specifies the table name for the UserSchema model.
func (UserSchema) TableName() string {
	return "users"
}

// Migrate creates or updates the users table and fills the search columns
// of rows stored before they existed.
func (r *UserRepo) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&UserSchema{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}

	var stale []UserSchema
	if err := db.Where("name_fold = '' OR email_fold = ''").Find(&stale).Error; err != nil {
		return fmt.Errorf("failed to read unfolded users: %w", err)
	}
	for _, m := range stale {
		err := db.Model(&UserSchema{}).Where("seq = ?", m.Seq).Updates(map[string]any{
			"name_fold":  strings.ToLower(m.Name),
			"email_fold": strings.ToLower(m.Email),
		}).Error
		if err != nil {
			return fmt.Errorf("failed to fold user %s: %w", m.ID, err)
		}
	}
	if len(stale) > 0 {
		r.log.Info("backfilled user search columns", zap.Int("count", len(stale)))
	}
	return nil
}

// Seed inserts users that are not stored yet, matched by id.
func (r *UserRepo) Seed(ctx context.Context, users []domain.User) error {
	for _, u := range users {
		var count int64
		if err := r.db.WithContext(ctx).Model(&UserSchema{}).Where("id = ?", u.ID).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check seed user %s: %w", u.ID, err)
		}
		if count > 0 {
			continue
		}
		model := toSchema(u)
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}
	r.log.Info("seeded users", zap.Int("count", len(users)))
	return nil
}

func toSchema(u domain.User) UserSchema {
	return UserSchema{
		ID:       u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Phone:    u.Phone,
		Role:     string(u.Role),
		Status:   string(u.Status),
		JoinDate: u.JoinDate.Format(domain.DateLayout),
		Avatar:   u.Avatar,

		NameFold:  strings.ToLower(u.Name),
		EmailFold: strings.ToLower(u.Email),
	}
}

func (m UserSchema) toDomain() domain.User {
	joined, _ := time.Parse(domain.DateLayout, m.JoinDate)
	return domain.User{
		ID:       m.ID,
		Name:     m.Name,
		Email:    m.Email,
		Phone:    m.Phone,
		Role:     domain.Role(m.Role),
		Status:   domain.Status(m.Status),
		JoinDate: joined,
		Avatar:   m.Avatar,
	}
}

func emailOwner(tx *gorm.DB, email string) (*UserSchema, error) {
	var model UserSchema
	err := tx.Where("email_fold = ?", strings.ToLower(email)).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &model, nil
}

// Create inserts a new user into the database.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if u == nil {
		return errors.New("user cannot be nil")
	}

	model := toSchema(*u)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner, err := emailOwner(tx, u.Email)
		if err != nil {
			return err
		}
		if owner != nil {
			return domain.ErrEmailTaken
		}
		return tx.Create(&model).Error
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) || errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Warn("duplicate email on insert", zap.String("email", u.Email))
			return domain.ErrEmailTaken
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID), zap.Int64("seq", model.Seq))
	return nil
}

// Update merges patch into the stored user inside a transaction.
func (r *UserRepo) Update(ctx context.Context, id string, patch domain.Patch) (*domain.User, error) {
	var updated domain.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserSchema
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}

		if patch.Email != nil {
			owner, err := emailOwner(tx, *patch.Email)
			if err != nil {
				return err
			}
			if owner != nil && owner.ID != id {
				return domain.ErrEmailTaken
			}
		}

		updated = model.toDomain()
		patch.Apply(&updated)

		next := toSchema(updated)
		next.Seq = model.Seq
		return tx.Save(&next).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return nil, domain.ErrNotFound
		case errors.Is(err, domain.ErrEmailTaken), errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, domain.ErrEmailTaken
		}
		r.log.Error("failed to update user in db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	r.log.Info("user updated in db", zap.String("id", id))
	return &updated, nil
}

// Delete removes a user from the database by ID.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserSchema{})
	if res.Error != nil {
		r.log.Error("failed to delete user in db", zap.Error(res.Error), zap.String("id", id))
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}

	r.log.Info("user deleted in db", zap.String("id", id))
	return nil
}

// GetByID retrieves a user from the database by their unique ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("id", id))
			return nil, domain.ErrNotFound
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	u := model.toDomain()
	return &u, nil
}

// GetByEmail retrieves a user from the database by their email address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	model, err := emailOwner(r.db.WithContext(ctx), email)
	if err != nil {
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if model == nil {
		r.log.Debug("user not found by email", zap.String("email", email))
		return nil, nil
	}

	u := model.toDomain()
	return &u, nil
}

// List retrieves one page of users in insertion order, filtered by a
// case-insensitive substring of name or email, plus the number of matches.
func (r *UserRepo) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	qb := r.db.WithContext(ctx).Model(&UserSchema{})
	if query != "" {
		pattern := "%" + security.EscapeLike(strings.ToLower(query)) + "%"
		qb = qb.Where(`name_fold LIKE ? ESCAPE '\' OR email_fold LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		r.log.Error("failed to count users", zap.Error(err), zap.String("query", query))
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	start, end := domain.Window(total, page, limit)
	if start == end {
		return []domain.User{}, total, nil
	}

	var models []UserSchema
	if err := qb.Order("seq ASC").Offset(int(start)).Limit(int(end - start)).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err), zap.String("query", query), zap.Int64("page", page), zap.Int64("limit", limit))
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]domain.User, len(models))
	for i, model := range models {
		users[i] = model.toDomain()
	}

	return users, total, nil
}

// ForEachID calls fn with every stored id in insertion order.
func (r *UserRepo) ForEachID(ctx context.Context, fn func(id string)) error {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&UserSchema{}).Order("seq ASC").Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("failed to read user ids: %w", err)
	}
	for _, id := range ids {
		fn(id)
	}
	return nil
}

// Ping verifies the database connection.
func (r *UserRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
