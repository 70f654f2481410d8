package services

import (
	"context"
	"fmt"
	"time"

	"boutique/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultPendingLimit is how many waiting orders the dashboard shows.
const DefaultPendingLimit = 4

// DashboardStats is the admin landing page summary.
type DashboardStats struct {
	TodayRevenue  decimal.Decimal `json:"todayRevenue"`
	TodayOrders   int             `json:"todayOrders"`
	PendingOrders []models.Order  `json:"pendingOrders"`
}

// DashboardService computes dashboard figures from the order list.
type DashboardService struct {
	orders *OrderService
	now    func() time.Time
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(orders *OrderService) *DashboardService {
	return &DashboardService{orders: orders, now: time.Now}
}

// Stats returns today's revenue and order count and the pendingLimit oldest
// orders still in the new state.
func (s *DashboardService) Stats(ctx context.Context, pendingLimit int) (*DashboardStats, error) {
	if pendingLimit <= 0 {
		pendingLimit = DefaultPendingLimit
	}
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var (
		today   []models.Order
		pending []models.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		today, err = s.orders.GetAllOrders(gctx, models.OrderFilter{CreatedFrom: &midnight})
		return err
	})
	g.Go(func() error {
		var err error
		pending, err = s.orders.GetAllOrders(gctx, models.OrderFilter{OrderStatus: models.OrderNew, Oldest: true, Limit: pendingLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load dashboard: %w", err)
	}

	stats := &DashboardStats{TodayRevenue: decimal.Zero, TodayOrders: len(today), PendingOrders: pending}
	for _, o := range today {
		if o.OrderStatus == models.OrderCancelled {
			continue
		}
		stats.TodayRevenue = stats.TodayRevenue.Add(o.TotalAmount)
	}
	return stats, nil
}
