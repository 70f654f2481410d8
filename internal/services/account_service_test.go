package services_test

import (
	"context"
	"fmt"
	"testing"

	"boutique/internal/cms"
	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAccountService(users *repositories.MockUserRepository, notifier services.Notifier) (*services.AccountService, *services.OrderService) {
	orders := services.NewOrderService(repositories.NewMockOrderRepository(), nil, "MS", zap.NewNop())
	return services.NewAccountService(users, users, orders, notifier, zap.NewNop()), orders
}

func TestAccountService_RegisterLoginProfile(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMockUserRepository()
	notifier := &recordingNotifier{}
	service, _ := newAccountService(users, notifier)

	resp, err := service.Register(ctx, models.RegisterRequest{Username: "anna", Email: " Anna@Example.com ", Password: "secret1", FirstName: "Anna"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.JWT)
	assert.Equal(t, "anna@example.com", resp.User.Email)
	require.Len(t, notifier.accounts, 1)

	_, err = service.Register(ctx, models.RegisterRequest{Username: "anna2", Email: "anna@example.com", Password: "secret1"})
	assert.Equal(t, 400, cms.StatusOf(err))

	login, err := service.Login(ctx, models.LoginRequest{Identifier: "anna", Password: "secret1"})
	require.NoError(t, err)

	city := "Berlin"
	updated, err := service.UpdateProfile(ctx, login.JWT, models.ProfileUpdate{City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Berlin", updated.City)

	_, err = service.UpdateProfile(ctx, login.JWT, models.ProfileUpdate{})
	assert.ErrorIs(t, err, services.ErrValidation)

	_, err = service.Profile(ctx, "bad-token")
	assert.Equal(t, 401, cms.StatusOf(err))
}

func TestAccountService_EmailExists(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMockUserRepository()
	service, _ := newAccountService(users, nil)

	_, err := users.Register(ctx, models.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw1234"})
	require.NoError(t, err)

	exists, err := service.EmailExists(ctx, "BOB@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = service.EmailExists(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

// unreachableUsers fails every lookup like a CMS that cannot be reached.
type unreachableUsers struct {
	*repositories.MockUserRepository
}

func (unreachableUsers) ExistsByEmail(context.Context, string) (bool, error) {
	return false, fmt.Errorf("failed to check email: %w", cms.ErrUnavailable)
}

func TestAccountService_EmailExists_Unavailable(t *testing.T) {
	users := repositories.NewMockUserRepository()
	orders := services.NewOrderService(repositories.NewMockOrderRepository(), nil, "MS", zap.NewNop())
	service := services.NewAccountService(users, unreachableUsers{users}, orders, nil, zap.NewNop())

	_, err := service.EmailExists(context.Background(), "a@b.c")
	assert.ErrorIs(t, err, services.ErrUpstreamUnavailable)
}

func TestAccountService_OrdersFollowProfileEmail(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMockUserRepository()
	service, orders := newAccountService(users, nil)

	resp, err := service.Register(ctx, models.RegisterRequest{Username: "anna", Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = orders.PlaceOrder(ctx, services.PlaceOrderRequest{FormData: sampleForm(), Items: sampleItems()})
	require.NoError(t, err)

	list, err := service.Orders(ctx, resp.JWT)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAccountService_AdminUsers(t *testing.T) {
	ctx := context.Background()
	users := repositories.NewMockUserRepository()
	service, _ := newAccountService(users, nil)

	resp, err := service.Register(ctx, models.RegisterRequest{Username: "anna", Email: "anna@example.com", Password: "secret1"})
	require.NoError(t, err)

	all, err := service.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	phone := "+49 30 1234"
	u, err := service.UpdateUser(ctx, resp.User.ID, models.ProfileUpdate{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, u.Phone)

	_, err = service.GetUser(ctx, 999)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
