package repositories

import (
	"context"

	"boutique/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	GetByCode(ctx context.Context, code string) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, documentID string, update models.StatusUpdate) (*models.Order, error)
}
