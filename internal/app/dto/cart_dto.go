package dto

import (
	"github.com/mrops-br/rocketshoes-cart/internal/domain"
)

// SetAmountRequest represents the request to overwrite a line amount
type SetAmountRequest struct {
	Amount int `json:"amount"`
}

// CartItemResponse represents one cart line
type CartItemResponse struct {
	ID       domain.ProductID `json:"id"`
	Title    string           `json:"title"`
	Price    float64          `json:"price"`
	Image    string           `json:"image"`
	Amount   int              `json:"amount"`
	Subtotal float64          `json:"subtotal"`
}

// CartResponse represents the cart with its totals
type CartResponse struct {
	Items       []*CartItemResponse      `json:"items"`
	TotalAmount int                      `json:"total_amount"`
	Subtotal    float64                  `json:"subtotal"`
	Amounts     map[domain.ProductID]int `json:"amounts"`
}

// OperationResponse represents the result of a cart mutation
type OperationResponse struct {
	Outcome string        `json:"outcome"`
	Cart    *CartResponse `json:"cart"`
}

// ToCartItemResponse converts a domain CartItem to CartItemResponse
func ToCartItemResponse(item domain.CartItem) *CartItemResponse {
	return &CartItemResponse{
		ID:       item.ID,
		Title:    item.Title,
		Price:    item.Price,
		Image:    item.Image,
		Amount:   item.Amount,
		Subtotal: item.Subtotal(),
	}
}

// ToCartResponse converts a domain Cart to CartResponse
func ToCartResponse(cart domain.Cart) *CartResponse {
	items := cart.Items()
	responses := make([]*CartItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToCartItemResponse(item)
	}
	return &CartResponse{
		Items:       responses,
		TotalAmount: cart.TotalAmount(),
		Subtotal:    cart.Subtotal(),
		Amounts:     cart.Amounts(),
	}
}
