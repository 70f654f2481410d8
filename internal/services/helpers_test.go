package services_test

import (
	"context"
	"sync"

	"boutique/internal/models"
	"boutique/pkg/payment"

	"github.com/stretchr/testify/mock"
)

// recordingNotifier keeps every notification it is given.
type recordingNotifier struct {
	mu       sync.Mutex
	orders   []models.Order
	accounts []models.User
	err      error
}

func (n *recordingNotifier) OrderPlaced(_ context.Context, order models.Order) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
	return n.err
}

func (n *recordingNotifier) AccountCreated(_ context.Context, user models.User) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.accounts = append(n.accounts, user)
	return n.err
}

// MockGateway is a mock implementation of services.CheckoutGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}

func (m *MockGateway) GetCheckoutSession(ctx context.Context, id string) (*payment.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Session), args.Error(1)
}
