package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/velora-shop/storefront-go/internal/core/domain"
)

// ListWishlist returns the session user's wishlist.
func (c *Client) ListWishlist(ctx context.Context) ([]domain.WishlistItem, error) {
	var items []domain.WishlistItem
	if err := c.do(ctx, "wishlist.list", http.MethodGet, "/api/wishlist", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist saves a product to the wishlist.
func (c *Client) AddToWishlist(ctx context.Context, productID int64) error {
	body := map[string]any{"product_id": productID}
	return c.do(ctx, "wishlist.add", http.MethodPost, "/api/wishlist", body, nil)
}

// RemoveFromWishlist deletes a wishlist entry by id.
func (c *Client) RemoveFromWishlist(ctx context.Context, itemID int64) error {
	return c.do(ctx, "wishlist.remove", http.MethodDelete, fmt.Sprintf("/api/wishlist/%d", itemID), nil, nil)
}
