package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// Password holds a bcrypt hash and must never be serialized in responses.
//
// OTP and OTPExpiry are set only while IsVerified is false and a code is
// outstanding; both are cleared exactly when verification succeeds.
type User struct {
	ID         string
	Name       string
	Email      string
	Password   string
	Title      string
	Role       string
	IsAdmin    bool
	IsActive   bool
	IsVerified bool
	OTP        *string
	OTPExpiry  *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Sanitized returns the fields safe to include in an outbound response.
func (u *User) Sanitized() map[string]any {
	return map[string]any{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"title":       u.Title,
		"role":        u.Role,
		"is_admin":    u.IsAdmin,
		"is_active":   u.IsActive,
		"is_verified": u.IsVerified,
		"created_at":  u.CreatedAt,
		"updated_at":  u.UpdatedAt,
	}
}
