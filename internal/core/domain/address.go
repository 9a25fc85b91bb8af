package domain

import "time"

// Address is one entry in a profile's address collection. The backend
// guarantees at most one address per user has IsDefault set; the client never
// enforces that locally, it requests the change and refreshes.
type Address struct {
	ID            int64     `json:"id"`
	Label         string    `json:"label"`
	RecipientName string    `json:"recipient_name"`
	Phone         string    `json:"phone"`
	Line1         string    `json:"address_line1"`
	Line2         string    `json:"address_line2,omitempty"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	Country       string    `json:"country"`
	PostalCode    string    `json:"postal_code,omitempty"`
	IsDefault     bool      `json:"is_default"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AddressInput is the request body for creating or updating an address.
// The server assigns id and timestamps.
type AddressInput struct {
	Label         string `json:"label"`
	RecipientName string `json:"recipient_name"`
	Phone         string `json:"phone"`
	Line1         string `json:"address_line1"`
	Line2         string `json:"address_line2,omitempty"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	PostalCode    string `json:"postal_code,omitempty"`
	IsDefault     bool   `json:"is_default"`
}
