package repositories

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"boutique/internal/cms"
	"boutique/internal/models"
)

// CMSOrderRepository stores orders in the CMS.
type CMSOrderRepository struct {
	client *cms.Client
}

// NewCMSOrderRepository creates a new instance of CMSOrderRepository.
func NewCMSOrderRepository(client *cms.Client) *CMSOrderRepository {
	return &CMSOrderRepository{client: client}
}

// orderQuery translates a filter into CMS query parameters.
func orderQuery(f models.OrderFilter) url.Values {
	q := url.Values{}
	if f.Oldest {
		q.Set("sort", "createdAt:asc")
	} else {
		q.Set("sort", "createdAt:desc")
	}
	if f.OrderStatus != "" {
		q.Set("filters[orderStatus][$eq]", string(f.OrderStatus))
	}
	if f.PaymentStatus != "" {
		q.Set("filters[paymentStatus][$eq]", string(f.PaymentStatus))
	}
	if f.CustomerEmail != "" {
		q.Set("filters[customerEmail][$eqi]", f.CustomerEmail)
	}
	if f.CreatedFrom != nil {
		q.Set("filters[createdAt][$gte]", f.CreatedFrom.UTC().Format(time.RFC3339))
	}
	if f.Query != "" {
		for i, field := range []string{"firstName", "lastName", "customerEmail", "customOrderId"} {
			q.Set(fmt.Sprintf("filters[$or][%d][%s][$containsi]", i, field), f.Query)
		}
	}
	return q
}

// GetAll retrieves orders matching filter.
func (r *CMSOrderRepository) GetAll(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	q := orderQuery(filter)
	var (
		orders []models.Order
		err    error
	)
	if filter.Limit > 0 {
		q.Set("pagination[page]", "1")
		q.Set("pagination[pageSize]", strconv.Itoa(filter.Limit))
		orders, err = cms.Get[[]models.Order](ctx, r.client, "/orders", q)
	} else {
		orders, err = cms.List[models.Order](ctx, r.client, "/orders", q)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, nil
}

// GetByCode retrieves an order by its customOrderId.
func (r *CMSOrderRepository) GetByCode(ctx context.Context, code string) (*models.Order, error) {
	q := url.Values{}
	q.Set("filters[customOrderId][$eq]", code)
	orders, err := cms.Get[[]models.Order](ctx, r.client, "/orders", q)
	if err != nil {
		return nil, fmt.Errorf("failed to get order %s: %w", code, err)
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order %s: %w", code, ErrNotFound)
	}
	return &orders[0], nil
}

// Create stores a new order and fills in its ids and creation time.
func (r *CMSOrderRepository) Create(ctx context.Context, order *models.Order) error {
	created, err := cms.Create[models.Order](ctx, r.client, "/orders", order)
	if err != nil {
		return fmt.Errorf("failed to create order in CMS: %w", err)
	}
	order.ID = created.ID
	order.DocumentID = created.DocumentID
	order.CreatedAt = created.CreatedAt
	return nil
}

// UpdateStatus changes an order's statuses.
func (r *CMSOrderRepository) UpdateStatus(ctx context.Context, documentID string, update models.StatusUpdate) (*models.Order, error) {
	updated, err := cms.Update[models.Order](ctx, r.client, "/orders/"+url.PathEscape(documentID), update)
	if err != nil {
		if cms.IsNotFound(err) {
			return nil, fmt.Errorf("order %s: %w", documentID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update order %s: %w", documentID, err)
	}
	return &updated, nil
}
