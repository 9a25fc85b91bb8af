package domain

import "time"

// CartItem is one product line in the visitor's cart.
type CartItem struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	ImageURL  string  `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity"`
}

// Cart is the server's view of the visitor's cart.
type Cart struct {
	Items    []CartItem `json:"items"`
	Subtotal float64    `json:"subtotal"`
}

// WishlistItem is one saved product on the visitor's wishlist.
type WishlistItem struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// StoreNotification is a storefront notification (order updates, promotions).
// Not to be confused with the toast side channel in the notify package.
type StoreNotification struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
