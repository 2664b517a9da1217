package domain

import (
	"errors"
	"fmt"
)

// Identity is the verified caller of a ledger command, supplied by the
// identity service.
type Identity struct {
	UserID string
	Role   Role
}

// Role represents a caller's access level
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleOperator can accept and block payments and read every ledger
	RoleOperator Role = "operator"

	// RoleMember can only act on its own account
	RoleMember Role = "member"
)

var validRoles = map[Role]bool{
	RoleAdmin:    true,
	RoleOperator: true,
	RoleMember:   true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrValidation, s)
	}
	return r, nil
}

// CanSettlePayments checks if the role can accept, block and register payments
func (r Role) CanSettlePayments() bool {
	return r == RoleAdmin || r == RoleOperator
}

// CanManageMembers checks if the role can register and block members
func (r Role) CanManageMembers() bool {
	return r == RoleAdmin
}

// CanAccess reports whether the identity may act on accountID.
func (i Identity) CanAccess(accountID string) bool {
	if i.Role == RoleAdmin || i.Role == RoleOperator {
		return true
	}

	return i.Role == RoleMember && i.UserID == accountID
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
