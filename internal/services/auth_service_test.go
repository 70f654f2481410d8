package services_test

import (
	"context"
	"testing"
	"time"

	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockAdminUserRepository is a mock implementation of repositories.AdminUserRepository
type MockAdminUserRepository struct {
	mock.Mock
}

func (m *MockAdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockAdminUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) GetByID(ctx context.Context, id string) (*models.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AdminUser), args.Error(1)
}

func (m *MockAdminUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

const testSecret = "test-secret-key-with-enough-length!!"

func TestAuthService_RegisterAdmin(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAdminUserRepository)
	service := services.NewAuthService(mockRepo, testSecret, time.Hour, zap.NewNop())

	admin := &models.AdminUser{Username: "ops", Email: "ops@shop.test", Password: "s3cret!"}
	mockRepo.On("GetByUsername", ctx, "ops").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByEmail", ctx, "ops@shop.test").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.AdminUser")).Return(nil).Once()

	require.NoError(t, service.RegisterAdmin(ctx, admin))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("s3cret!")))
	mockRepo.AssertExpectations(t)

	// Username taken
	mockRepo.On("GetByUsername", ctx, "ops").Return(&models.AdminUser{Username: "ops"}, nil).Once()
	err := service.RegisterAdmin(ctx, &models.AdminUser{Username: "ops", Email: "x@shop.test", Password: "pw"})
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestAuthService_LoginAndValidate(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockAdminUserRepository)
	service := services.NewAuthService(mockRepo, testSecret, time.Hour, zap.NewNop())

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	admin := &models.AdminUser{ID: "a1", Username: "ops", Password: string(hash)}

	mockRepo.On("GetByUsername", ctx, "ops").Return(admin, nil)
	mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, repositories.ErrNotFound)

	token, err := service.Login(ctx, "ops", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "a1", claims["user_id"])
	assert.Equal(t, "ops", claims["username"])

	_, err = service.Login(ctx, "ops", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = service.Login(ctx, "ghost", "password123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_ValidateToken_Rejects(t *testing.T) {
	service := services.NewAuthService(new(MockAdminUserRepository), testSecret, time.Hour, zap.NewNop())

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "a1",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	expiredString, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = service.ValidateToken(expiredString)
	assert.Error(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "a1"})
	foreignString, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = service.ValidateToken(foreignString)
	assert.Error(t, err)

	_, err = service.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestAuthService_SeedAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("empty table", func(t *testing.T) {
		mockRepo := new(MockAdminUserRepository)
		service := services.NewAuthService(mockRepo, testSecret, 0, zap.NewNop())
		mockRepo.On("Count", ctx).Return(int64(0), nil).Once()
		mockRepo.On("GetByUsername", ctx, "admin").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("GetByEmail", ctx, "admin@shop.test").Return(nil, repositories.ErrNotFound).Once()
		mockRepo.On("Create", ctx, mock.AnythingOfType("*models.AdminUser")).Return(nil).Once()

		created, err := service.SeedAdmin(ctx, "admin", "admin@shop.test", "changeme")
		require.NoError(t, err)
		assert.True(t, created)
		mockRepo.AssertExpectations(t)
	})

	t.Run("admins exist", func(t *testing.T) {
		mockRepo := new(MockAdminUserRepository)
		service := services.NewAuthService(mockRepo, testSecret, 0, zap.NewNop())
		mockRepo.On("Count", ctx).Return(int64(2), nil).Once()

		created, err := service.SeedAdmin(ctx, "admin", "admin@shop.test", "changeme")
		require.NoError(t, err)
		assert.False(t, created)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("no password configured", func(t *testing.T) {
		mockRepo := new(MockAdminUserRepository)
		service := services.NewAuthService(mockRepo, testSecret, 0, zap.NewNop())
		created, err := service.SeedAdmin(ctx, "admin", "admin@shop.test", "")
		require.NoError(t, err)
		assert.False(t, created)
		mockRepo.AssertNotCalled(t, "Count", mock.Anything)
	})
}
