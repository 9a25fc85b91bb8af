package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/velora-shop/storefront-go/internal/core/domain"
)

// GetProfile returns the complete profile aggregate for the session user.
func (c *Client) GetProfile(ctx context.Context) (*domain.CompleteProfile, error) {
	var profile domain.CompleteProfile
	if err := c.do(ctx, "profile.get", http.MethodGet, "/api/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies a partial update of profile fields.
func (c *Client) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) error {
	return c.do(ctx, "profile.update", http.MethodPut, "/api/profile", req, nil)
}

// UpdateAvatar replaces the profile's avatar URL.
func (c *Client) UpdateAvatar(ctx context.Context, avatarURL string) error {
	body := map[string]string{"avatar_url": avatarURL}
	return c.do(ctx, "profile.avatar", http.MethodPatch, "/api/profile/avatar", body, nil)
}

// ListAddresses returns the profile's address collection.
func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	var addresses []domain.Address
	if err := c.do(ctx, "address.list", http.MethodGet, "/api/profile/addresses", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// AddAddress creates a new address; the server assigns id and timestamps.
func (c *Client) AddAddress(ctx context.Context, input domain.AddressInput) error {
	return c.do(ctx, "address.add", http.MethodPost, "/api/profile/addresses", input, nil)
}

// UpdateAddress rewrites the address with the given id.
func (c *Client) UpdateAddress(ctx context.Context, id int64, input domain.AddressInput) error {
	return c.do(ctx, "address.update", http.MethodPut, fmt.Sprintf("/api/profile/addresses/%d", id), input, nil)
}

// DeleteAddress removes the address with the given id.
func (c *Client) DeleteAddress(ctx context.Context, id int64) error {
	return c.do(ctx, "address.delete", http.MethodDelete, fmt.Sprintf("/api/profile/addresses/%d", id), nil, nil)
}

// SetDefaultAddress promotes the address to the single default. Unsetting the
// previous default is the server's responsibility; callers must treat their
// local collection as stale until refreshed.
func (c *Client) SetDefaultAddress(ctx context.Context, id int64) error {
	return c.do(ctx, "address.default", http.MethodPatch, fmt.Sprintf("/api/profile/addresses/%d/default", id), nil, nil)
}

// UpdateSettings applies a partial settings mutation.
func (c *Client) UpdateSettings(ctx context.Context, update domain.SettingsUpdate) error {
	return c.do(ctx, "settings.update", http.MethodPut, "/api/profile/settings", update, nil)
}
