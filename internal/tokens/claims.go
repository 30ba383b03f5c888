package tokens

import (
	"slices"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/notes/internal/models"
)

// AccessClaims is the payload of an access token. sub carries the username
// and jti pairs the token with its refresh record.
type AccessClaims struct {
	Email  string           `json:"email"`
	UserID string           `json:"userId"`
	Roles  jwt.ClaimStrings `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *AccessClaims) Username() string { return c.Subject }

func (c *AccessClaims) JTI() string { return c.ID }

func (c *AccessClaims) HasRole(role models.Role) bool {
	return slices.Contains(c.Roles, string(role))
}

// ExpiresUnix returns the exp claim in seconds, or false when it is absent.
func (c *AccessClaims) ExpiresUnix() (int64, bool) {
	if c.ExpiresAt == nil {
		return 0, false
	}
	return c.ExpiresAt.Unix(), true
}
