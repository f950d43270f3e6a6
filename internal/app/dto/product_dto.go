package dto

import (
	"github.com/mrops-br/rocketshoes-cart/internal/domain"
)

// ProductResponse represents the catalog details of a product
type ProductResponse struct {
	ID    domain.ProductID `json:"id"`
	Title string           `json:"title"`
	Price float64          `json:"price"`
	Image string           `json:"image"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p domain.Product) *ProductResponse {
	return &ProductResponse{
		ID:    p.ID,
		Title: p.Title,
		Price: p.Price,
		Image: p.Image,
	}
}
