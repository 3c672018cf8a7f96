package auth

import (
	"context"

	"github.com/niwaya/kintai-backend/internal/domain/user"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)
	Logout(ctx context.Context, token string, expiresAt int64) error
	Me(ctx context.Context, userID string) (user.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
}
