package domain

// CartItem is a single product reference in a user's cart.
type CartItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartLine joins a cart item with its product for client responses.
type CartLine struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}
