package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"boutique/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	nextID int
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		nextID: 1,
	}
}

// GetAll returns the orders matching filter.
func (r *MockOrderRepository) GetAll(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if filter.Matches(order) {
			list = append(list, order)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].CreatedAt, list[j].CreatedAt
		if a.Equal(*b) {
			if filter.Oldest {
				return list[i].ID < list[j].ID
			}
			return list[i].ID > list[j].ID
		}
		if filter.Oldest {
			return a.Before(*b)
		}
		return a.After(*b)
	})
	if filter.Limit > 0 && len(list) > filter.Limit {
		list = list[:filter.Limit]
	}
	return list, nil
}

// GetByCode returns an order by its code.
func (r *MockOrderRepository) GetByCode(_ context.Context, code string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.CustomOrderID == code {
			return &order, nil
		}
	}
	return nil, fmt.Errorf("order %s: %w", code, ErrNotFound)
}

// Create adds a new order.
func (r *MockOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.DocumentID == "" {
		order.DocumentID = uuid.New().String()
	}
	order.ID = r.nextID
	r.nextID++
	if order.CreatedAt == nil {
		now := time.Now()
		order.CreatedAt = &now
	}
	stored := *order
	stored.Items = append([]models.OrderItem(nil), order.Items...)
	r.orders[order.DocumentID] = stored
	return nil
}

// UpdateStatus updates the statuses of an order.
func (r *MockOrderRepository) UpdateStatus(_ context.Context, documentID string, update models.StatusUpdate) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[documentID]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", documentID, ErrNotFound)
	}
	update.Apply(&order)
	r.orders[documentID] = order
	return &order, nil
}

// Count returns the number of stored orders.
func (r *MockOrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}
