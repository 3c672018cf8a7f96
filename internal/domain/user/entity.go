package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Full access, user management, ledger grants
	RoleApprover Role = "approver" // Reviews and decides requests
	RoleUser     Role = "user"     // Regular employee
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleApprover, RoleUser:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         Role
	Department   *string
	Position     *string
	EmployeeID   *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanApprove checks if user can approve requests
func (u *User) CanApprove() bool {
	return u.Role == RoleAdmin || u.Role == RoleApprover
}

// Actor is the authenticated caller of an operation, taken from the bearer token.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a Actor) CanApprove() bool {
	return a.Role == RoleAdmin || a.Role == RoleApprover
}

// CanAccessUser reports whether the actor may read data owned by userID.
func (a Actor) CanAccessUser(userID string) bool {
	return a.ID == userID || a.IsAdmin()
}
