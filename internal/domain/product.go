package domain

import (
	"errors"
	"strconv"
)

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrInvalidProductID    = errors.New("product id must be positive")
	ErrInvalidProductPrice = errors.New("product price must not be negative")
)

// ProductID identifies a product in the catalog
type ProductID int64

func (id ProductID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseProductID parses a decimal product identifier
func ParseProductID(s string) (ProductID, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, ErrInvalidProductID
	}
	return ProductID(v), nil
}

// Product is the catalog view of a purchasable item
type Product struct {
	ID    ProductID `json:"id"`
	Title string    `json:"title"`
	Price float64   `json:"price"`
	Image string    `json:"image"`
}

// Validate performs business validation on the product
func (p Product) Validate() error {
	if p.ID <= 0 {
		return ErrInvalidProductID
	}
	if p.Price < 0 {
		return ErrInvalidProductPrice
	}
	return nil
}

// StockRecord is the available quantity of a product, owned by the stock service.
type StockRecord struct {
	ID     ProductID `json:"id"`
	Amount int       `json:"amount"`
}
