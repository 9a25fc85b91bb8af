package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/velora-shop/storefront-go/internal/core/domain"
)

// GetCart returns the session user's cart.
func (c *Client) GetCart(ctx context.Context) (*domain.Cart, error) {
	var cart domain.Cart
	if err := c.do(ctx, "cart.get", http.MethodGet, "/api/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddCartItem puts a product in the cart; the server assigns the line id and
// merges quantities for an already-present product.
func (c *Client) AddCartItem(ctx context.Context, productID int64, quantity int) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return c.do(ctx, "cart.add", http.MethodPost, "/api/cart", body, nil)
}

// UpdateCartItem sets the quantity of a cart line.
func (c *Client) UpdateCartItem(ctx context.Context, itemID int64, quantity int) error {
	body := map[string]any{"quantity": quantity}
	return c.do(ctx, "cart.update", http.MethodPut, fmt.Sprintf("/api/cart/items/%d", itemID), body, nil)
}

// RemoveCartItem deletes a cart line by id.
func (c *Client) RemoveCartItem(ctx context.Context, itemID int64) error {
	return c.do(ctx, "cart.remove", http.MethodDelete, fmt.Sprintf("/api/cart/items/%d", itemID), nil, nil)
}

// ClearCart empties the cart.
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, "cart.clear", http.MethodDelete, "/api/cart", nil, nil)
}
