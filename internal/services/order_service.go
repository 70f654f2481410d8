package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"boutique/internal/models"
	"boutique/internal/repositories"

	"go.uber.org/zap"
)

// PlaceOrderRequest is the pay-on-delivery checkout payload.
type PlaceOrderRequest struct {
	FormData      models.CustomerForm  `json:"formData"`
	Items         []models.OrderItem   `json:"items" validate:"required,min=1,dive"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod"`
}

// OrderService handles business logic related to orders.
type OrderService struct {
	orderRepo repositories.OrderRepository
	notifier  Notifier
	prefix    string
	logger    *zap.Logger
	now       func() time.Time
}

// NewOrderService creates a new OrderService. Codes of new orders start with prefix.
func NewOrderService(orderRepo repositories.OrderRepository, notifier Notifier, prefix string, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		notifier:  notifier,
		prefix:    prefix,
		logger:    logger.Named("orders"),
		now:       time.Now,
	}
}

func validateItems(items []models.OrderItem) error {
	if len(items) == 0 {
		return invalid("at least one item is required")
	}
	for i, it := range items {
		if it.ID == "" || strings.TrimSpace(it.Title) == "" {
			return invalid("item %d: id and title are required", i)
		}
		if it.Quantity < 1 {
			return invalid("item %d: quantity must be at least 1", i)
		}
		if it.Price.IsNegative() {
			return invalid("item %d: price cannot be negative", i)
		}
	}
	return nil
}

// PlaceOrder creates a cash-on-delivery order from a cart snapshot. The total
// is recomputed from the items; the client's figure is never trusted.
func (s *OrderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	switch req.PaymentMethod {
	case "", models.PaymentCOD:
	default:
		return nil, invalid("payment method %q is not accepted for direct orders", req.PaymentMethod)
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}

	cart := models.NewCart(req.Items)
	order := &models.Order{
		FirstName:       req.FormData.FirstName,
		LastName:        req.FormData.LastName,
		CustomerEmail:   req.FormData.Email,
		ShippingAddress: req.FormData.ShippingAddress(),
		Items:           cart.Snapshot(),
		TotalAmount:     cart.Total(),
		PaymentMethod:   models.PaymentCOD,
		PaymentStatus:   models.PaymentPending,
		OrderStatus:     models.OrderNew,
	}
	if err := s.Record(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// NewOrderCode mints a code for an order that is about to be recorded.
func (s *OrderService) NewOrderCode() string {
	return models.NewOrderCode(s.prefix, s.now())
}

// Record assigns an order code when missing, stores the order and notifies
// the customer. A notification failure does not fail the order.
func (s *OrderService) Record(ctx context.Context, order *models.Order) error {
	if order.CustomOrderID == "" {
		order.CustomOrderID = s.NewOrderCode()
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return fmt.Errorf("failed to create order %s: %w", order.CustomOrderID, err)
	}
	s.logger.Info("Order created",
		zap.String("order", order.CustomOrderID),
		zap.String("payment_method", string(order.PaymentMethod)),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)

	if s.notifier != nil {
		if err := s.notifier.OrderPlaced(ctx, *order); err != nil {
			s.logger.Warn("Failed to send order confirmation", zap.String("order", order.CustomOrderID), zap.Error(err))
		}
	}
	return nil
}

// GetAllOrders retrieves the orders matching filter.
func (s *OrderService) GetAllOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx, filter)
}

// GetOrderByCode retrieves a single order by its customer-facing code.
func (s *OrderService) GetOrderByCode(ctx context.Context, code string) (*models.Order, error) {
	return s.orderRepo.GetByCode(ctx, code)
}

// GetCustomerOrders lists the orders placed with email, newest first.
func (s *OrderService) GetCustomerOrders(ctx context.Context, email string) ([]models.Order, error) {
	if strings.TrimSpace(email) == "" {
		return []models.Order{}, nil
	}
	return s.orderRepo.GetAll(ctx, models.OrderFilter{CustomerEmail: email})
}

// UpdateOrderStatus updates the order and/or payment status of an order.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, documentID string, update models.StatusUpdate) (*models.Order, error) {
	if err := update.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	order, err := s.orderRepo.UpdateStatus(ctx, documentID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status for order %s: %w", documentID, err)
	}
	return order, nil
}
