// Package auth issues and validates the bearer tokens that carry the admin
// capability.
package auth

// Roles carried in the "role" claim.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Principal is the authenticated caller behind a token.
type Principal struct {
	Subject string
	Role    string
}

// IsAdmin reports whether the principal holds the admin capability.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
