package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the buyer pays.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentStripe PaymentMethod = "stripe"
)

// PaymentStatus tracks money movement for an order.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// Valid reports whether s is a known payment status.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// OrderStatus tracks fulfilment of an order.
type OrderStatus string

const (
	OrderNew       OrderStatus = "new"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderNew, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// ItemID identifies the product a line was bought from. The storefront sends
// numeric CMS ids while hosted checkout yields processor product ids, so both
// JSON numbers and strings are accepted.
type ItemID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// OrderItem is a line of an order, copied from the cart at checkout time.
type OrderItem struct {
	ID       ItemID          `json:"id" validate:"required"`
	Title    string          `json:"title" validate:"required"`
	Image    string          `json:"image"`
	Size     string          `json:"size"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=1"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a placed order as stored in the CMS.
type Order struct {
	ID              int             `json:"id,omitempty"`
	DocumentID      string          `json:"documentId,omitempty"`
	CustomOrderID   string          `json:"customOrderId"`
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	CustomerEmail   string          `json:"customerEmail"`
	ShippingAddress string          `json:"shippingAddress"`
	Items           []OrderItem     `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	OrderStatus     OrderStatus     `json:"orderStatus"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
}

// CustomerName joins first and last name.
func (o *Order) CustomerName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// ItemsTotal sums the subtotals of items.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// CustomerForm is the checkout form filled in by the buyer.
type CustomerForm struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	City       string `json:"city" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// FullName joins first and last name.
func (f CustomerForm) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// ShippingAddress renders the single-line address stored on orders.
func (f CustomerForm) ShippingAddress() string {
	return fmt.Sprintf("%s, %s %s, %s", f.Address, f.PostalCode, f.City, f.Country)
}

// OrderFilter narrows the admin order list.
type OrderFilter struct {
	Query         string
	OrderStatus   OrderStatus
	PaymentStatus PaymentStatus
	CustomerEmail string
	CreatedFrom   *time.Time
	// Oldest sorts ascending by creation time instead of newest first.
	Oldest bool
	Limit  int
}

// Matches reports whether o passes every set criterion of f.
func (f OrderFilter) Matches(o Order) bool {
	if f.OrderStatus != "" && o.OrderStatus != f.OrderStatus {
		return false
	}
	if f.PaymentStatus != "" && o.PaymentStatus != f.PaymentStatus {
		return false
	}
	if f.CustomerEmail != "" && !strings.EqualFold(o.CustomerEmail, f.CustomerEmail) {
		return false
	}
	if f.CreatedFrom != nil && (o.CreatedAt == nil || o.CreatedAt.Before(*f.CreatedFrom)) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := strings.ToLower(strings.Join([]string{o.FirstName, o.LastName, o.CustomerEmail, o.CustomOrderID}, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// StatusUpdate changes the order and/or payment status. Nil fields are kept.
type StatusUpdate struct {
	OrderStatus   *OrderStatus   `json:"orderStatus,omitempty"`
	PaymentStatus *PaymentStatus `json:"paymentStatus,omitempty"`
}

// Validate rejects empty updates and unknown statuses.
func (u StatusUpdate) Validate() error {
	if u.OrderStatus == nil && u.PaymentStatus == nil {
		return fmt.Errorf("orderStatus or paymentStatus is required")
	}
	if u.OrderStatus != nil && !u.OrderStatus.Valid() {
		return fmt.Errorf("invalid order status: %s", *u.OrderStatus)
	}
	if u.PaymentStatus != nil && !u.PaymentStatus.Valid() {
		return fmt.Errorf("invalid payment status: %s", *u.PaymentStatus)
	}
	return nil
}

// Apply copies the set fields onto o.
func (u StatusUpdate) Apply(o *Order) {
	if u.OrderStatus != nil {
		o.OrderStatus = *u.OrderStatus
	}
	if u.PaymentStatus != nil {
		o.PaymentStatus = *u.PaymentStatus
	}
}
