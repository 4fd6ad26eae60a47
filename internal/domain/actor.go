package domain

import "fmt"

type Role string

const (
	RoleClient Role = "client"
	RoleWorker Role = "worker"
	RoleAdmin  Role = "admin"
)

// Actor is the authenticated caller as supplied by the identity provider.
type Actor struct {
	ID   string
	Role Role
}

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleClient, RoleWorker, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
