package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/form"
	"go.uber.org/zap"
)

// mockBackend implements stripe.Backend for testing
type mockBackend struct {
	handler    func(method, path string, params stripe.ParamsContainer) ([]byte, error)
	rawHandler func(method, path string, body *form.Values) ([]byte, error)
}

func (m *mockBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	data, err := m.handler(method, path, params)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return nil
}

func (m *mockBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	if m.rawHandler == nil {
		return nil
	}
	data, err := m.rawHandler(method, path, body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (m *mockBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return nil
}

func (m *mockBackend) SetMaxNetworkRetries(maxNetworkRetries int64) {}

func setupMockBackend(t *testing.T, handler func(method, path string, params stripe.ParamsContainer) ([]byte, error)) *mockBackend {
	b := &mockBackend{handler: handler}
	stripe.SetBackend(stripe.APIBackend, b)
	t.Cleanup(func() {
		stripe.SetBackend(stripe.APIBackend, nil)
	})
	return b
}

// lineItemPage renders a list of count line items numbered from first, each
// costing 100 minor units.
func lineItemPage(first, count int, hasMore bool) []byte {
	items := make([]string, 0, count)
	for i := first; i < first+count; i++ {
		items = append(items, fmt.Sprintf(`{"id":"li_%d","object":"item","description":"Scent %d","quantity":1,
			"price":{"id":"price_%d","object":"price","unit_amount":100,
			  "product":{"id":"prod_%d","object":"product","name":"Scent %d","description":"Size: 10ml"}}}`, i, i, i, i, i))
	}
	return []byte(fmt.Sprintf(`{"object":"list","url":"/v1/checkout/sessions/cs_1/line_items","has_more":%t,"data":[%s]}`,
		hasMore, strings.Join(items, ",")))
}

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway(Config{}, zap.NewNop())
	assert.EqualError(t, err, "stripe: secret key is required")
}

func TestCreateCheckoutSession(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	setupMockBackend(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		assert.Equal(t, "POST", method)
		assert.Equal(t, "/v1/checkout/sessions", path)
		captured = params.(*stripe.CheckoutSessionParams)
		return []byte(`{"id":"cs_test_1","object":"checkout.session","url":"https://checkout.stripe.com/c/pay/cs_test_1"}`), nil
	})

	gw, err := NewStripeGateway(Config{SecretKey: "sk_test_123"}, zap.NewNop())
	require.NoError(t, err)

	s, err := gw.CreateCheckoutSession(context.Background(), SessionRequest{
		LineItems: []LineItem{
			{Name: "Amber Oud", Description: "Size: 50ml", Image: "https://cms/a.jpg", UnitAmount: 4990, Quantity: 2},
			{Name: "Sample", Description: "Size: Standard", UnitAmount: 500, Quantity: 1},
		},
		CustomerEmail: "ana@example.com",
		SuccessURL:    "https://shop/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://shop/checkout",
		Metadata:      map[string]string{"customer_name": "Ana Lopes"},
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", s.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", s.URL)

	require.NotNil(t, captured)
	assert.Equal(t, "payment", *captured.Mode)
	require.Len(t, captured.LineItems, 2)
	first := captured.LineItems[0]
	assert.Equal(t, "eur", *first.PriceData.Currency)
	assert.Equal(t, int64(4990), *first.PriceData.UnitAmount)
	assert.Equal(t, int64(2), *first.Quantity)
	assert.Equal(t, "Size: 50ml", *first.PriceData.ProductData.Description)
	assert.Len(t, first.PriceData.ProductData.Images, 1)
	assert.Empty(t, captured.LineItems[1].PriceData.ProductData.Images)
	assert.Equal(t, "ana@example.com", *captured.CustomerEmail)
	assert.Equal(t, "ana@example.com", captured.PaymentIntentData.Metadata["customer_email"])
	assert.Equal(t, "Ana Lopes", captured.Metadata["customer_name"])
}

func TestGetCheckoutSession_ExpandsLineItems(t *testing.T) {
	b := setupMockBackend(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		assert.Equal(t, "GET", method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1", path)
		return []byte(`{
			"id": "cs_test_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"amount_total": 10480,
			"currency": "eur",
			"customer_details": {"email": "ana@example.com"},
			"metadata": {"customer_name": "Ana Lopes"}
		}`), nil
	})
	b.rawHandler = func(method, path string, body *form.Values) ([]byte, error) {
		assert.Equal(t, "GET", method)
		assert.Equal(t, "/v1/checkout/sessions/cs_test_1/line_items", path)
		assert.Contains(t, body.Encode(), "data.price.product")
		return []byte(`{"object": "list", "has_more": false, "data": [
			{"id": "li_1", "object": "item", "description": "Amber Oud", "quantity": 2,
			 "price": {"id": "price_1", "object": "price", "unit_amount": 4990,
			   "product": {"id": "prod_1", "object": "product", "name": "Amber Oud", "description": "Size: 50ml", "images": ["https://cms/a.jpg"]}}}
		]}`), nil
	}

	gw, err := NewStripeGateway(Config{SecretKey: "sk_test_123"}, zap.NewNop())
	require.NoError(t, err)

	s, err := gw.GetCheckoutSession(context.Background(), "cs_test_1")
	require.NoError(t, err)
	assert.True(t, s.Paid())
	assert.Equal(t, int64(10480), s.AmountTotal)
	assert.Equal(t, "ana@example.com", s.CustomerEmail)
	require.Len(t, s.LineItems, 1)
	li := s.LineItems[0]
	assert.Equal(t, "prod_1", li.ProductID)
	assert.Equal(t, "Amber Oud", li.ProductName)
	assert.Equal(t, "Size: 50ml", li.ProductDescription)
	assert.Equal(t, int64(4990), li.UnitAmount)
	assert.Equal(t, int64(2), li.Quantity)
	assert.Equal(t, []string{"https://cms/a.jpg"}, li.Images)
}

func TestGetCheckoutSession_ReadsEveryLineItemPage(t *testing.T) {
	var calls []string
	b := setupMockBackend(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		calls = append(calls, method+" "+path)
		return []byte(`{"id":"cs_1","object":"checkout.session","payment_status":"paid","amount_total":1200,"currency":"eur"}`), nil
	})
	b.rawHandler = func(method, path string, body *form.Values) ([]byte, error) {
		calls = append(calls, method+" "+path)
		if after := body.Get("starting_after"); len(after) > 0 {
			assert.Equal(t, []string{"li_10"}, after)
			return lineItemPage(11, 2, false), nil
		}
		return lineItemPage(1, 10, true), nil
	}

	gw, err := NewStripeGateway(Config{SecretKey: "sk_test_123"}, zap.NewNop())
	require.NoError(t, err)

	s, err := gw.GetCheckoutSession(context.Background(), "cs_1")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"GET /v1/checkout/sessions/cs_1",
		"GET /v1/checkout/sessions/cs_1/line_items",
		"GET /v1/checkout/sessions/cs_1/line_items",
	}, calls)
	require.Len(t, s.LineItems, 12)
	var sum int64
	for _, li := range s.LineItems {
		sum += li.UnitAmount * li.Quantity
	}
	assert.Equal(t, s.AmountTotal, sum)
	assert.Equal(t, "Scent 12", s.LineItems[11].ProductName)
}

func TestGetCheckoutSession_LineItemError(t *testing.T) {
	b := setupMockBackend(t, func(method, path string, params stripe.ParamsContainer) ([]byte, error) {
		return []byte(`{"id":"cs_1","object":"checkout.session","payment_status":"paid"}`), nil
	})
	b.rawHandler = func(method, path string, body *form.Values) ([]byte, error) {
		return nil, &stripe.Error{HTTPStatusCode: 500, Msg: "boom"}
	}

	gw, err := NewStripeGateway(Config{SecretKey: "sk_test_123"}, zap.NewNop())
	require.NoError(t, err)

	_, err = gw.GetCheckoutSession(context.Background(), "cs_1")
	assert.ErrorContains(t, err, "failed to list line items")
}
