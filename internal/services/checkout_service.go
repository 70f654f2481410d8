package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"boutique/internal/models"
	"boutique/internal/repositories"
	"boutique/pkg/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultSize = "Standard"

var sizePattern = regexp.MustCompile(`Size:\s*([^,]+)`)

// CheckoutGateway is the hosted payment page provider.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, req payment.SessionRequest) (*payment.Session, error)
	GetCheckoutSession(ctx context.Context, id string) (*payment.Session, error)
}

// StartCheckoutRequest is the payload that opens a hosted checkout session.
type StartCheckoutRequest struct {
	Items         []models.OrderItem  `json:"items" validate:"required,min=1,dive"`
	CustomerEmail string              `json:"customerEmail" validate:"omitempty,email"`
	FormData      models.CustomerForm `json:"formData"`
}

// CheckoutResult is the outcome of reconciling a paid session.
type CheckoutResult struct {
	Order     *models.Order `json:"order,omitempty"`
	OrderCode string        `json:"orderId"`
	// Duplicate is set when the session had already produced an order.
	Duplicate bool `json:"duplicate"`
}

// CheckoutService turns paid hosted-checkout sessions into orders.
type CheckoutService struct {
	gateway   CheckoutGateway
	orders    *OrderService
	ledger    repositories.ReconciliationRepository
	publicURL string
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService. A nil gateway disables
// online payments.
func NewCheckoutService(gateway CheckoutGateway, orders *OrderService, ledger repositories.ReconciliationRepository, publicURL string, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{
		gateway:   gateway,
		orders:    orders,
		ledger:    ledger,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.Named("checkout"),
	}
}

// ToMinorUnits converts a price to cents, rounding half away from zero.
func ToMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// FromMinorUnits converts cents to a price.
func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

// StartCheckout opens a hosted checkout session for the cart.
func (s *CheckoutService) StartCheckout(ctx context.Context, req StartCheckoutRequest) (*payment.Session, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	if err := validateItems(req.Items); err != nil {
		return nil, err
	}
	email := req.CustomerEmail
	if email == "" {
		email = req.FormData.Email
	}

	lines := make([]payment.LineItem, len(req.Items))
	for i, it := range req.Items {
		lines[i] = payment.LineItem{
			Name:        it.Title,
			Description: "Size: " + it.Size,
			Image:       it.Image,
			UnitAmount:  ToMinorUnits(it.Price),
			Quantity:    int64(it.Quantity),
		}
	}

	formJSON, err := json.Marshal(req.FormData)
	if err != nil {
		return nil, fmt.Errorf("failed to encode form data: %w", err)
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.SessionRequest{
		LineItems:     lines,
		CustomerEmail: email,
		SuccessURL:    s.publicURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     s.publicURL + "/checkout",
		Metadata: map[string]string{
			"customer_email":   email,
			"customer_name":    req.FormData.FullName(),
			"shipping_address": req.FormData.ShippingAddress(),
			"form_data":        string(formJSON),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess, nil
}

// CompleteCheckout records the order for a paid session. Calling it again for
// the same session returns the existing order code without writing anything.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, sessionID string) (*CheckoutResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentsDisabled
	}
	if strings.TrimSpace(sessionID) == "" {
		return nil, invalid("session id is required")
	}

	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if !sess.Paid() {
		return nil, fmt.Errorf("session %s is %q: %w", sessionID, sess.PaymentStatus, ErrPaymentNotConfirmed)
	}

	rec, claimed, err := s.ledger.Claim(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrClaimHeld) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrReconciliationInFlight)
		}
		return nil, err
	}
	if !claimed {
		s.logger.Info("Checkout session already reconciled", zap.String("session_id", sessionID), zap.String("order", rec.OrderCode))
		return &CheckoutResult{OrderCode: rec.OrderCode, Duplicate: true}, nil
	}

	// A claim taken over from an abandoned request may already have its order.
	if rec.OrderCode != "" {
		existing, err := s.orders.GetOrderByCode(ctx, rec.OrderCode)
		switch {
		case err == nil:
			s.logger.Warn("Recovered order of an abandoned checkout claim",
				zap.String("session_id", sessionID),
				zap.String("order", existing.CustomOrderID),
			)
			s.complete(ctx, sessionID, existing)
			return &CheckoutResult{Order: existing, OrderCode: existing.CustomOrderID, Duplicate: true}, nil
		case !errors.Is(err, ErrNotFound):
			return nil, fmt.Errorf("failed to look up order %s of session %s: %w", rec.OrderCode, sessionID, err)
		}
	}

	order := s.OrderFromSession(sess)
	order.CustomOrderID = rec.OrderCode
	if order.CustomOrderID == "" {
		order.CustomOrderID = s.orders.NewOrderCode()
		if err := s.ledger.Reserve(ctx, sessionID, order.CustomOrderID); err != nil {
			s.release(ctx, sessionID)
			return nil, err
		}
	}
	if err := s.orders.Record(ctx, order); err != nil {
		s.release(ctx, sessionID)
		return nil, err
	}
	s.complete(ctx, sessionID, order)
	return &CheckoutResult{Order: order, OrderCode: order.CustomOrderID}, nil
}

// complete marks the session reconciled, retrying once. A row left claimed is
// recovered through its reserved order code when the claim goes stale.
func (s *CheckoutService) complete(ctx context.Context, sessionID string, order *models.Order) {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if err = s.ledger.Complete(ctx, sessionID, order.CustomOrderID, order.DocumentID); err == nil {
			return
		}
	}
	s.logger.Error("Order created but ledger not updated",
		zap.String("session_id", sessionID),
		zap.String("order", order.CustomOrderID),
		zap.Error(err),
	)
}

func (s *CheckoutService) release(ctx context.Context, sessionID string) {
	if err := s.ledger.Release(ctx, sessionID); err != nil {
		s.logger.Error("Failed to release checkout claim", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// OrderFromSession rebuilds a paid order from the session's line items.
func (s *CheckoutService) OrderFromSession(sess *payment.Session) *models.Order {
	items := make([]models.OrderItem, len(sess.LineItems))
	for i, li := range sess.LineItems {
		image := ""
		if len(li.Images) > 0 {
			image = li.Images[0]
		}
		items[i] = models.OrderItem{
			ID:       models.ItemID(li.ProductID),
			Title:    li.ProductName,
			Image:    image,
			Size:     parseSize(li.ProductDescription, li.Description),
			Price:    FromMinorUnits(li.UnitAmount),
			Quantity: int(li.Quantity),
		}
	}

	var form models.CustomerForm
	if raw := sess.Metadata["form_data"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &form); err != nil {
			s.logger.Warn("Ignoring unreadable form_data on checkout session",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
			form = models.CustomerForm{}
		}
	}
	if form.FirstName == "" && form.LastName == "" {
		first, last, _ := strings.Cut(strings.TrimSpace(sess.Metadata["customer_name"]), " ")
		form.FirstName, form.LastName = first, last
	}
	email := sess.CustomerEmail
	if email == "" {
		email = sess.Metadata["customer_email"]
	}

	return &models.Order{
		FirstName:       form.FirstName,
		LastName:        form.LastName,
		CustomerEmail:   email,
		ShippingAddress: sess.Metadata["shipping_address"],
		Items:           items,
		TotalAmount:     FromMinorUnits(sess.AmountTotal),
		PaymentMethod:   models.PaymentStripe,
		PaymentStatus:   models.PaymentPaid,
		OrderStatus:     models.OrderNew,
	}
}

func parseSize(descriptions ...string) string {
	for _, d := range descriptions {
		if m := sizePattern.FindStringSubmatch(d); m != nil {
			if size := strings.TrimSpace(m[1]); size != "" {
				return size
			}
		}
	}
	return defaultSize
}
