package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/niwaya/kintai-backend/internal/domain/user"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
)

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
	ResetPassword(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	userService user.UserService
}

func NewUserHandler(userService user.UserService) UserHandler {
	return &UserHandlerImpl{userService: userService}
}

// List implements UserHandler. Supports ?role=, ?is_active=, ?search=, ?limit=, ?offset=.
func (u *UserHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := user.UserFilter{Search: q.Get("search")}

	if raw := q.Get("role"); raw != "" {
		role := user.Role(raw)
		if !role.Valid() {
			response.BadRequest(w, "Invalid role", map[string]string{"role": "role must be one of [admin approver user]"})
			return
		}
		filter.Role = &role
	}
	if raw := q.Get("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(w, "Invalid is_active", nil)
			return
		}
		filter.IsActive = &active
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 20); err != nil {
		response.BadRequest(w, "Invalid limit", nil)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		response.BadRequest(w, "Invalid offset", nil)
		return
	}

	users, err := u.userService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMeta(w, users.Users, &response.Meta{Total: users.Total, Limit: filter.Limit, Offset: filter.Offset})
}

// Get implements UserHandler.
func (u *UserHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	found, err := u.userService.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, found)
}

// Create implements UserHandler.
func (u *UserHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	created, err := u.userService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Created(w, "User created successfully", created)
}

// Update implements UserHandler.
func (u *UserHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req user.UpdateUserRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	updated, err := u.userService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "User updated successfully", updated)
}

// Deactivate implements UserHandler.
func (u *UserHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := u.userService.Deactivate(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "User deactivated successfully", nil)
}

// ResetPassword implements UserHandler.
func (u *UserHandlerImpl) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req user.ResetPasswordRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	if err := u.userService.ResetPassword(r.Context(), chi.URLParam(r, "id"), req); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "Password reset successfully", nil)
}

// Delete implements UserHandler. Users who own requests are deactivated instead.
func (u *UserHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	if err := u.userService.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.SuccessWithMessage(w, "User deleted successfully", nil)
}
