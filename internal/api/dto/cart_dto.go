package dto

// AddCartItemRequest payload.
type AddCartItemRequest struct {
	ProductID string `json:"product_id"`
}

// UpdateCartItemRequest payload.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}
