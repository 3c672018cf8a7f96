package user

import "context"

type UserService interface {
	List(ctx context.Context, filter UserFilter) (ListUserResponse, error)
	Get(ctx context.Context, actor Actor, id string) (UserResponse, error)
	Create(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	Update(ctx context.Context, req UpdateUserRequest) (UserResponse, error)
	Deactivate(ctx context.Context, actor Actor, id string) error
	ResetPassword(ctx context.Context, id string, req ResetPasswordRequest) error
	Delete(ctx context.Context, actor Actor, id string) error
}
