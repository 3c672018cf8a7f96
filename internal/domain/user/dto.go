package user

import (
	"strings"
	"time"

	"github.com/niwaya/kintai-backend/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func ToResponse(u User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		Department: u.Department,
		Position:   u.Position,
		EmployeeID: u.EmployeeID,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  u.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Name       string  `json:"name"`
	Role       string  `json:"role"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

// NormalizeEmail trims and lower-cases an address so lookups match.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate normalizes the email and defaults the role before checking.
func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = NormalizeEmail(r.Email)
	if validator.IsEmpty(r.Email) {
		errs.Add("email", "email is required")
	} else if !validator.IsValidEmail(r.Email) {
		errs.Add("email", "invalid email format")
	}

	if validator.IsEmpty(r.Password) {
		errs.Add("password", "password is required")
	} else if len(r.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}

	if validator.IsEmpty(r.Name) {
		errs.Add("name", "name is required")
	} else if len([]rune(r.Name)) > 100 {
		errs.Add("name", "name must not exceed 100 characters")
	}

	if validator.IsEmpty(r.Role) {
		r.Role = string(RoleUser)
	} else if !Role(r.Role).Valid() {
		errs.Add("role", "role must be one of [admin approver user]")
	}

	return errs.Err()
}

// UpdateUserRequest carries a partial update; nil fields are left untouched.
type UpdateUserRequest struct {
	ID         string  `json:"-"`
	Email      *string `json:"email,omitempty"`
	Name       *string `json:"name,omitempty"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (r *UpdateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Email != nil {
		email := NormalizeEmail(*r.Email)
		r.Email = &email
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs.Add("email", "invalid email format")
	}
	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs.Add("name", "name must not be empty")
	}
	if r.Role != nil && !Role(*r.Role).Valid() {
		errs.Add("role", "role must be one of [admin approver user]")
	}

	return errs.Err()
}

// Apply copies the set fields onto u.
func (r *UpdateUserRequest) Apply(u *User) {
	if r.Email != nil {
		u.Email = *r.Email
	}
	if r.Name != nil {
		u.Name = *r.Name
	}
	if r.Role != nil {
		u.Role = Role(*r.Role)
	}
	if r.Department != nil {
		u.Department = r.Department
	}
	if r.Position != nil {
		u.Position = r.Position
	}
	if r.EmployeeID != nil {
		u.EmployeeID = r.EmployeeID
	}
	if r.IsActive != nil {
		u.IsActive = *r.IsActive
	}
}

type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.NewPassword) < 8 {
		errs.Add("new_password", "new_password must be at least 8 characters")
	}
	return errs.Err()
}

type UserFilter struct {
	Role     *Role
	IsActive *bool
	Search   string
	Limit    int
	Offset   int
}

type ListUserResponse struct {
	Users []UserResponse `json:"users"`
	Total int64          `json:"total"`
}

type UserStats struct {
	TotalUsers    int64 `json:"total_users"`
	ActiveUsers   int64 `json:"active_users"`
	InactiveUsers int64 `json:"inactive_users"`
	AdminUsers    int64 `json:"admin_users"`
	ApproverUsers int64 `json:"approver_users"`
	RegularUsers  int64 `json:"regular_users"`
}
