package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidCart = errors.New("invalid cart")

// CartItem is one product line in the cart
type CartItem struct {
	ID     ProductID `json:"id"`
	Title  string    `json:"title"`
	Price  float64   `json:"price"`
	Image  string    `json:"image"`
	Amount int       `json:"amount"`
}

// NewCartItem builds a line for a product that is not in the cart yet
func NewCartItem(p Product, amount int) CartItem {
	return CartItem{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Image:  p.Image,
		Amount: amount,
	}
}

// Subtotal returns price times amount
func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Amount)
}

// Cart is an ordered, duplicate-free list of items.
// A Cart value is never modified in place: every change returns a new Cart.
type Cart struct {
	items []CartItem
}

// NewCart builds a cart from items, enforcing unique ids and positive amounts.
func NewCart(items []CartItem) (Cart, error) {
	seen := make(map[ProductID]struct{}, len(items))
	for _, item := range items {
		if item.Amount < 1 {
			return Cart{}, fmt.Errorf("%w: product %d has amount %d", ErrInvalidCart, item.ID, item.Amount)
		}
		if _, dup := seen[item.ID]; dup {
			return Cart{}, fmt.Errorf("%w: duplicate product %d", ErrInvalidCart, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return Cart{items: append([]CartItem(nil), items...)}, nil
}

// Items returns a copy of the lines in insertion order
func (c Cart) Items() []CartItem {
	return append([]CartItem{}, c.items...)
}

func (c Cart) Len() int {
	return len(c.items)
}

// Find returns the line for id
func (c Cart) Find(id ProductID) (CartItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.items[i], true
	}
	return CartItem{}, false
}

// AmountOf returns the amount of id in the cart, 0 if absent
func (c Cart) AmountOf(id ProductID) int {
	item, _ := c.Find(id)
	return item.Amount
}

// Append returns a cart with item added at the end.
// The caller guarantees item.ID is not present yet.
func (c Cart) Append(item CartItem) Cart {
	items := make([]CartItem, 0, len(c.items)+1)
	items = append(items, c.items...)
	return Cart{items: append(items, item)}
}

// WithAmount returns a cart where the line for id has the given amount.
// An amount below 1 drops the line.
func (c Cart) WithAmount(id ProductID, amount int) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	if amount < 1 {
		return c.Without(id)
	}
	items := c.Items()
	items[i].Amount = amount
	return Cart{items: items}
}

// Without returns a cart with the whole line for id removed
func (c Cart) Without(id ProductID) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	items := make([]CartItem, 0, len(c.items)-1)
	items = append(items, c.items[:i]...)
	items = append(items, c.items[i+1:]...)
	return Cart{items: items}
}

// TotalAmount returns the number of units across all lines
func (c Cart) TotalAmount() int {
	total := 0
	for _, item := range c.items {
		total += item.Amount
	}
	return total
}

// Subtotal returns the sum of all line subtotals
func (c Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// Amounts maps each product id to its amount
func (c Cart) Amounts() map[ProductID]int {
	amounts := make(map[ProductID]int, len(c.items))
	for _, item := range c.items {
		amounts[item.ID] = item.Amount
	}
	return amounts
}

func (c Cart) index(id ProductID) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// MarshalCart serializes the cart as a JSON array of items
func MarshalCart(c Cart) ([]byte, error) {
	items := c.items
	if items == nil {
		items = []CartItem{}
	}
	return json.Marshal(items)
}

// UnmarshalCart parses a blob written by MarshalCart
func UnmarshalCart(data []byte) (Cart, error) {
	var items []CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrInvalidCart, err)
	}
	return NewCart(items)
}
