package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/niwaya/kintai-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	user.UserRepository
	cost int
}

func NewUserService(userRepository user.UserRepository) user.UserService {
	return &UserServiceImpl{
		UserRepository: userRepository,
		cost:           bcrypt.DefaultCost,
	}
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	resp := user.ListUserResponse{Users: make([]user.UserResponse, 0, len(users)), Total: total}
	for _, u := range users {
		resp.Users = append(resp.Users, user.ToResponse(u))
	}
	return resp, nil
}

// Get implements user.UserService.
func (s *UserServiceImpl) Get(ctx context.Context, actor user.Actor, id string) (user.UserResponse, error) {
	if !actor.CanAccessUser(id) {
		return user.UserResponse{}, user.ErrInsufficientPermissions
	}
	u, err := s.UserRepository.GetByID(ctx, id)
	if err != nil {
		return user.UserResponse{}, err
	}
	return user.ToResponse(u), nil
}

// Create implements user.UserService.
func (s *UserServiceImpl) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         strings.TrimSpace(req.Name),
		Role:         user.Role(req.Role),
		Department:   req.Department,
		Position:     req.Position,
		EmployeeID:   req.EmployeeID,
		IsActive:     true,
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("user created", "user_id", created.ID, "role", created.Role)
	return user.ToResponse(created), nil
}

// Update implements user.UserService.
func (s *UserServiceImpl) Update(ctx context.Context, req user.UpdateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	u, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}
	req.Apply(&u)

	if err := s.UserRepository.Update(ctx, u); err != nil {
		return user.UserResponse{}, err
	}

	updated, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to reload user: %w", err)
	}
	return user.ToResponse(updated), nil
}

// Deactivate implements user.UserService.
func (s *UserServiceImpl) Deactivate(ctx context.Context, actor user.Actor, id string) error {
	if actor.ID == id {
		return user.ErrCannotModifySelf
	}
	if err := s.UserRepository.SetActive(ctx, id, false); err != nil {
		return err
	}
	slog.Info("user deactivated", "user_id", id, "by", actor.ID)
	return nil
}

// ResetPassword implements user.UserService.
func (s *UserServiceImpl) ResetPassword(ctx context.Context, id string, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.UserRepository.UpdatePassword(ctx, id, string(hash))
}

// Delete implements user.UserService. Users that own requests, reports or
// ledger rows are deactivated instead so their history stays intact.
func (s *UserServiceImpl) Delete(ctx context.Context, actor user.Actor, id string) error {
	if actor.ID == id {
		return user.ErrCannotModifySelf
	}

	owns, err := s.UserRepository.HasRequests(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check user history: %w", err)
	}
	if owns {
		if err := s.UserRepository.SetActive(ctx, id, false); err != nil {
			return err
		}
		slog.Info("user has history, deactivated instead of deleted", "user_id", id, "by", actor.ID)
		return nil
	}

	if err := s.UserRepository.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("user deleted", "user_id", id, "by", actor.ID)
	return nil
}
