package repositories

import (
	"context"

	"boutique/internal/models"
)

// UserRepository gives the dashboard access to customer accounts.
type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id int) (*models.User, error)
	Update(ctx context.Context, id int, update models.ProfileUpdate) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// AccountRepository performs customer self-service calls on behalf of the customer.
type AccountRepository interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	Me(ctx context.Context, jwt string) (*models.User, error)
	UpdateMe(ctx context.Context, jwt string, id int, update models.ProfileUpdate) (*models.User, error)
}

// AdminUserRepository stores dashboard operators.
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id string) (*models.AdminUser, error)
	Count(ctx context.Context) (int64, error)
}
