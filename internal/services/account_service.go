package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boutique/internal/cms"
	"boutique/internal/models"
	"boutique/internal/repositories"

	"go.uber.org/zap"
)

// AccountService handles customer accounts, both self-service and admin.
type AccountService struct {
	accounts repositories.AccountRepository
	users    repositories.UserRepository
	orders   *OrderService
	notifier Notifier
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts repositories.AccountRepository, users repositories.UserRepository, orders *OrderService, notifier Notifier, logger *zap.Logger) *AccountService {
	return &AccountService{
		accounts: accounts,
		users:    users,
		orders:   orders,
		notifier: notifier,
		logger:   logger.Named("accounts"),
	}
}

func upstream(err error) error {
	if errors.Is(err, cms.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return err
}

// Register creates a customer account and sends the welcome email.
func (s *AccountService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	resp, err := s.accounts.Register(ctx, req)
	if err != nil {
		return nil, upstream(err)
	}
	if s.notifier != nil {
		if err := s.notifier.AccountCreated(ctx, resp.User); err != nil {
			s.logger.Warn("Failed to send welcome email", zap.String("email", resp.User.Email), zap.Error(err))
		}
	}
	return resp, nil
}

// Login signs a customer in.
func (s *AccountService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	resp, err := s.accounts.Login(ctx, req)
	if err != nil {
		return nil, upstream(err)
	}
	return resp, nil
}

// Profile returns the account behind jwt.
func (s *AccountService) Profile(ctx context.Context, jwt string) (*models.User, error) {
	u, err := s.accounts.Me(ctx, jwt)
	if err != nil {
		return nil, upstream(err)
	}
	return u, nil
}

// UpdateProfile changes the contact fields of the account behind jwt.
func (s *AccountService) UpdateProfile(ctx context.Context, jwt string, update models.ProfileUpdate) (*models.User, error) {
	if update.Empty() {
		return nil, invalid("nothing to update")
	}
	me, err := s.Profile(ctx, jwt)
	if err != nil {
		return nil, err
	}
	u, err := s.accounts.UpdateMe(ctx, jwt, me.ID, update)
	if err != nil {
		return nil, upstream(err)
	}
	return u, nil
}

// EmailExists reports whether an account uses email.
func (s *AccountService) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.users.ExistsByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return false, upstream(err)
	}
	return exists, nil
}

// SendWelcome (re)sends the welcome email to the account behind jwt.
func (s *AccountService) SendWelcome(ctx context.Context, jwt string) error {
	me, err := s.Profile(ctx, jwt)
	if err != nil {
		return err
	}
	if s.notifier == nil {
		return fmt.Errorf("no notifier configured")
	}
	return s.notifier.AccountCreated(ctx, *me)
}

// Orders lists the orders placed with the email of the account behind jwt.
func (s *AccountService) Orders(ctx context.Context, jwt string) ([]models.Order, error) {
	me, err := s.Profile(ctx, jwt)
	if err != nil {
		return nil, err
	}
	return s.orders.GetCustomerOrders(ctx, me.Email)
}

// GetAllUsers lists customer accounts.
func (s *AccountService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	return s.users.GetAll(ctx)
}

// GetUser retrieves a customer account.
func (s *AccountService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateUser edits a customer account on behalf of an admin.
func (s *AccountService) UpdateUser(ctx context.Context, id int, update models.ProfileUpdate) (*models.User, error) {
	if update.Empty() {
		return nil, invalid("nothing to update")
	}
	return s.users.Update(ctx, id, update)
}
