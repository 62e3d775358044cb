package models

import "fmt"

// Role is a member's standing inside a workspace. It is a closed set:
// every switch over Role in this module handles all three values.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleGuest  Role = "guest"
)

// Roles lists every valid role, highest privilege first.
var Roles = []Role{RoleAdmin, RoleMember, RoleGuest}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a raw string (request body, DB column) into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
