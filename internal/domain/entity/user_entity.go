package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the account domain.
// PasswordHash is a bcrypt hash and is never empty for a persisted user.
// ResetToken and ResetTokenExpiration are both set while a reset is pending
// and both cleared once it is consumed.
type User struct {
	ID                   string
	Email                string
	PasswordHash         string
	ResetToken           string
	ResetTokenExpiration *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (u *User) OwnerID() string {
	if u == nil {
		return ""
	}
	return u.ID
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
