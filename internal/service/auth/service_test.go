package auth

import (
	"context"
	"testing"
	"time"

	"github.com/niwaya/kintai-backend/internal/domain/auth"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/pkg/apperror"
	"github.com/niwaya/kintai-backend/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret-key-for-jwt"

type fakeUserRepo struct {
	user.UserRepository
	users map[string]user.User
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u := f.users[id]
	u.PasswordHash = hash
	f.users[id] = u
	return nil
}

func newAuthTest(t *testing.T) (*AuthServiceImpl, *fakeUserRepo, *jwt.JWTService) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &fakeUserRepo{users: map[string]user.User{
		"u1": {ID: "u1", Email: "sato@example.com", Name: "佐藤 一郎", PasswordHash: string(hash), Role: user.RoleUser, IsActive: true},
		"u2": {ID: "u2", Email: "gone@example.com", Name: "退職 三郎", PasswordHash: string(hash), Role: user.RoleUser, IsActive: false},
	}}
	jwtService := jwt.NewJWTService(testSecret, time.Hour)
	svc := NewAuthService(repo, jwtService).(*AuthServiceImpl)
	svc.cost = bcrypt.MinCost
	return svc, repo, jwtService
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _ := newAuthTest(t)

	resp, err := svc.Login(context.Background(), auth.LoginRequest{Email: "sato@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Greater(t, resp.ExpiresAt, time.Now().Unix())
	assert.Equal(t, "u1", resp.User.ID)
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, _, _ := newAuthTest(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  auth.LoginRequest
		want error
		kind apperror.Kind
	}{
		{"wrong password", auth.LoginRequest{Email: "sato@example.com", Password: "nope"}, auth.ErrInvalidCredentials, apperror.KindAuthentication},
		{"unknown email", auth.LoginRequest{Email: "who@example.com", Password: "password123"}, auth.ErrInvalidCredentials, apperror.KindAuthentication},
		{"inactive user", auth.LoginRequest{Email: "gone@example.com", Password: "password123"}, user.ErrUserInactive, apperror.KindAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
		})
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, _, jwtService := newAuthTest(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx, auth.LoginRequest{Email: "sato@example.com", Password: "password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken, resp.ExpiresAt))
	assert.True(t, jwtService.IsTokenRevoked(resp.AccessToken))
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, repo, _ := newAuthTest(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "u1", auth.ChangePasswordRequest{CurrentPassword: "wrong-one", NewPassword: "newpassword1"})
	assert.ErrorIs(t, err, auth.ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, "u1", auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["u1"].PasswordHash), []byte("newpassword1")))

	_, err = svc.Login(ctx, auth.LoginRequest{Email: "sato@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestAuthService_Me(t *testing.T) {
	svc, _, _ := newAuthTest(t)

	me, err := svc.Me(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "sato@example.com", me.Email)

	_, err = svc.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
