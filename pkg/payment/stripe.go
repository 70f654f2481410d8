package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/checkout/session"
	"go.uber.org/zap"
)

// Config holds hosted checkout settings.
type Config struct {
	SecretKey string
	Currency  string
}

// LineItem is one cart line sent to the hosted checkout page.
type LineItem struct {
	Name        string
	Description string
	Image       string
	UnitAmount  int64 // minor units
	Quantity    int64
}

// SessionRequest describes a checkout session to create.
type SessionRequest struct {
	LineItems     []LineItem
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// SessionLineItem is a purchased line as reported back by the processor.
type SessionLineItem struct {
	ProductID          string
	ProductName        string
	ProductDescription string
	Description        string
	Images             []string
	UnitAmount         int64
	Quantity           int64
}

// Session is a processor-side checkout session.
type Session struct {
	ID            string
	URL           string
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64
	Currency      string
	Metadata      map[string]string
	LineItems     []SessionLineItem
}

// Paid reports whether the buyer's payment went through.
func (s *Session) Paid() bool {
	return s.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid)
}

// StripeGateway creates and reads Stripe Checkout sessions.
type StripeGateway struct {
	config Config
	logger *zap.Logger
}

// NewStripeGateway configures the Stripe client with the secret key.
func NewStripeGateway(cfg Config, logger *zap.Logger) (*StripeGateway, error) {
	if cfg.SecretKey == "" {
		return nil, fmt.Errorf("stripe: secret key is required")
	}
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyEUR)
	}
	stripe.Key = cfg.SecretKey
	return &StripeGateway{config: cfg, logger: logger.Named("stripe")}, nil
}

// CreateCheckoutSession opens a card payment session for the given lines.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req SessionRequest) (*Session, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(li.Name),
		}
		if li.Description != "" {
			product.Description = stripe.String(li.Description)
		}
		if li.Image != "" {
			product.Images = stripe.StringSlice([]string{li.Image})
		}
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(g.config.Currency),
				ProductData: product,
				UnitAmount:  stripe.Int64(li.UnitAmount),
			},
			Quantity: stripe.Int64(li.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
		params.PaymentIntentData = &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: map[string]string{"customer_email": req.CustomerEmail},
		}
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := session.New(params)
	if err != nil {
		g.logger.Error("Failed to create checkout session", zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	g.logger.Info("Created checkout session", zap.String("session_id", s.ID))
	return toSession(s), nil
}

// GetCheckoutSession retrieves a session and every one of its line items,
// with products expanded. Line items are listed page by page since the
// session object only embeds the first few.
func (g *StripeGateway) GetCheckoutSession(ctx context.Context, id string) (*Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	s, err := session.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("stripe: failed to retrieve checkout session %s: %w", id, err)
	}
	out := toSession(s)

	listParams := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(id)}
	listParams.Context = ctx
	listParams.AddExpand("data.price.product")
	it := session.ListLineItems(listParams)
	for it.Next() {
		out.LineItems = append(out.LineItems, toLineItem(it.LineItem()))
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("stripe: failed to list line items of checkout session %s: %w", id, err)
	}
	g.logger.Debug("Retrieved checkout session", zap.String("session_id", id), zap.Int("line_items", len(out.LineItems)))
	return out, nil
}

func toSession(s *stripe.CheckoutSession) *Session {
	out := &Session{
		ID:            s.ID,
		URL:           s.URL,
		PaymentStatus: string(s.PaymentStatus),
		CustomerEmail: s.CustomerEmail,
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
		Metadata:      s.Metadata,
	}
	if out.CustomerEmail == "" && s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	return out
}

func toLineItem(li *stripe.LineItem) SessionLineItem {
	item := SessionLineItem{
		Description: li.Description,
		Quantity:    li.Quantity,
	}
	if li.Price != nil {
		item.UnitAmount = li.Price.UnitAmount
		if p := li.Price.Product; p != nil {
			item.ProductID = p.ID
			item.ProductName = p.Name
			item.ProductDescription = p.Description
			item.Images = p.Images
		}
	}
	if item.ProductName == "" {
		item.ProductName = li.Description
	}
	return item
}
