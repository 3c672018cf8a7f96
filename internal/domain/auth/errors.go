package auth

import "github.com/niwaya/kintai-backend/internal/pkg/apperror"

var (
	ErrInvalidCredentials = apperror.Authentication("invalid email or password")
	ErrInvalidToken       = apperror.Authentication("invalid or expired token")
	ErrMissingToken       = apperror.Authentication("authorization token is required")
	ErrWrongPassword      = apperror.Validation("current password is incorrect")
)
