package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	ListActiveByRoles(ctx context.Context, roles []Role) ([]User, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, u User) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	SetActive(ctx context.Context, userID string, active bool) error
	Delete(ctx context.Context, userID string) error
	HasRequests(ctx context.Context, userID string) (bool, error)
	CountByRole(ctx context.Context) (UserStats, error)
}
