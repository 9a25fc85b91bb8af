package domain

import "time"

// Role classifies a storefront account. The set is open-ended: the backend may
// return roles this client has never seen, so unknown values must round-trip
// untouched rather than fail decoding.
type Role string

const (
	RoleBuyer Role = "buyer"
	RoleAdmin Role = "admin"
)

// SessionUser is the identity snapshot of the currently authenticated visitor.
// Its presence (non-nil) is the sole authority for "is this client logged in".
type SessionUser struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Role       Role      `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserProfile is the superset of SessionUser returned by the profile
// endpoints. The extra fields are all optional on the backend.
type UserProfile struct {
	SessionUser
	Phone       *string `json:"phone,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}

// CompleteProfile is the aggregate fetched once a session user exists:
// profile fields plus the address collection and account settings.
type CompleteProfile struct {
	User      UserProfile `json:"user"`
	Addresses []Address   `json:"addresses"`
	Settings  Settings    `json:"settings"`
}

// DefaultAddress returns the address marked as default, or nil.
func (p *CompleteProfile) DefaultAddress() *Address {
	for i := range p.Addresses {
		if p.Addresses[i].IsDefault {
			return &p.Addresses[i]
		}
	}
	return nil
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfileRequest carries a partial update of profile fields. Nil fields
// are left unchanged by the backend (and by the local optimistic merge).
type UpdateProfileRequest struct {
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	DateOfBirth *string `json:"date_of_birth,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	Bio         *string `json:"bio,omitempty"`
}
