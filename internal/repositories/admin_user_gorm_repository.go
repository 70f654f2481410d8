package repositories

import (
	"context"
	"errors"
	"fmt"

	"boutique/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMAdminUserRepository is a GORM implementation of AdminUserRepository.
type GORMAdminUserRepository struct {
	db *gorm.DB
}

// NewGORMAdminUserRepository creates a new instance of GORMAdminUserRepository.
func NewGORMAdminUserRepository(db *gorm.DB) *GORMAdminUserRepository {
	return &GORMAdminUserRepository{
		db: db,
	}
}

// Create creates a new admin in the database.
func (r *GORMAdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

func (r *GORMAdminUserRepository) first(ctx context.Context, field, value string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).First(&user, field+" = ?", value).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("admin user with %s %s: %w", field, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get admin user by %s %s: %w", field, value, err)
	}
	return &user, nil
}

// GetByUsername retrieves an admin by username.
func (r *GORMAdminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return r.first(ctx, "username", username)
}

// GetByEmail retrieves an admin by email.
func (r *GORMAdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	return r.first(ctx, "email", email)
}

// GetByID retrieves an admin by id.
func (r *GORMAdminUserRepository) GetByID(ctx context.Context, id string) (*models.AdminUser, error) {
	return r.first(ctx, "id", id)
}

// Count returns the number of admins.
func (r *GORMAdminUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.AdminUser{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count admin users: %w", err)
	}
	return n, nil
}
