package domain

import "fmt"

// Role is the closed set of account roles. Gates are monotonic:
// admin passes every gate, manager passes manager and client gates,
// client passes only the client gate.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleClient  Role = "client"
	RoleGuest   Role = "guest"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleManager, RoleClient, RoleGuest:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleClient:
		return 1
	case RoleGuest:
		return 0
	}
	return -1 // unknown roles pass no gate
}

// Permits reports whether an account holding r clears a gate that
// requires at least the given role.
func (r Role) Permits(required Role) bool {
	return r.rank() >= 0 && r.rank() >= required.rank()
}
