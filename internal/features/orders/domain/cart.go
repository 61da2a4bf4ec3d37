package domain

import "time"

// Cart is the live cart a customer checks out from. Once the resulting order
// is paid, the cart is deleted so its id no longer resolves.
type Cart struct {
	// ID is the cart identifier referenced by Order.CartID.
	ID string `json:"id"`
	// UserID is the owning customer.
	UserID string `json:"userId"`
	// Items are the current cart lines.
	Items []OrderItem `json:"items"`
	// UpdatedAt is the last modification time.
	UpdatedAt time.Time `json:"updatedAt"`
}
