package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/velora-shop/storefront-go/internal/core/domain"
)

// ListNotifications returns the session user's storefront notifications,
// newest first.
func (c *Client) ListNotifications(ctx context.Context) ([]domain.StoreNotification, error) {
	var items []domain.StoreNotification
	if err := c.do(ctx, "notifications.list", http.MethodGet, "/api/notifications", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkNotificationRead flags one notification as read.
func (c *Client) MarkNotificationRead(ctx context.Context, id int64) error {
	return c.do(ctx, "notifications.read", http.MethodPatch, fmt.Sprintf("/api/notifications/%d/read", id), nil, nil)
}

// MarkAllNotificationsRead flags every notification as read.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.do(ctx, "notifications.read_all", http.MethodPatch, "/api/notifications/read-all", nil, nil)
}
