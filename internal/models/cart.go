package models

import "github.com/shopspring/decimal"

// Cart mirrors the storefront cart: lines are keyed by product id and size.
type Cart struct {
	items []OrderItem
}

// NewCart returns a cart holding a copy of items, merging duplicate lines.
func NewCart(items []OrderItem) *Cart {
	c := &Cart{}
	for _, it := range items {
		c.Add(it)
	}
	return c
}

func (c *Cart) find(id ItemID, size string) int {
	for i, it := range c.items {
		if it.ID == id && it.Size == size {
			return i
		}
	}
	return -1
}

// Add appends item, or increments the quantity of the matching line.
func (c *Cart) Add(item OrderItem) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if i := c.find(item.ID, item.Size); i >= 0 {
		c.items[i].Quantity += item.Quantity
		return
	}
	c.items = append(c.items, item)
}

// Total is the sum of price times quantity over all lines.
func (c *Cart) Total() decimal.Decimal {
	return ItemsTotal(c.items)
}

// Snapshot returns a copy of the lines, safe to store on an order.
func (c *Cart) Snapshot() []OrderItem {
	out := make([]OrderItem, len(c.items))
	copy(out, c.items)
	return out
}
