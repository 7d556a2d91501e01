package types

import "strings"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Credential is the opaque bearer token plus the role the storefront
// reported at login.
type Credential struct {
	Token string `json:"token"`
	Role  Role   `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

func (c Credential) Valid() bool {
	return strings.TrimSpace(c.Token) != ""
}

// CanChat reports whether the support widget is available for this
// credential. Missing roles are treated as customers.
func (c Credential) CanChat() bool {
	if !c.Valid() {
		return false
	}
	return c.Role == "" || c.Role == RoleCustomer
}
