package handler

import (
	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/service"
)

// UserController exposes the account use cases.
type UserController struct {
	Signup     *service.Signup
	Signin     *service.Signin
	Signout    *service.Signout
	SignoutAll *service.SignoutAll
	Refresh    *service.Refresh
	GetUser    *service.GetUser
	UpdateUser *service.UpdateUser
	DeleteUser *service.DeleteUser
}

func (h *UserController) SignupUser(req *dispatch.Request) (*dispatch.Response, error) {
	u, err := h.Signup.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("User created successfully.", u), nil
}

func (h *UserController) SigninUser(req *dispatch.Request) (*dispatch.Response, error) {
	u, err := h.Signin.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("Signed in successfully.", u), nil
}

func (h *UserController) SignoutUser(req *dispatch.Request) (*dispatch.Response, error) {
	if err := h.Signout.Execute(req); err != nil {
		return nil, err
	}
	return dispatch.Success("Signed out successfully.", nil), nil
}

func (h *UserController) SignoutEverywhere(req *dispatch.Request) (*dispatch.Response, error) {
	if err := h.SignoutAll.Execute(req); err != nil {
		return nil, err
	}
	return dispatch.Success("Signed out of all sessions.", nil), nil
}

func (h *UserController) RefreshSession(req *dispatch.Request) (*dispatch.Response, error) {
	if err := h.Refresh.Execute(req); err != nil {
		return nil, err
	}
	return dispatch.Success("Session refreshed.", nil), nil
}

func (h *UserController) Me(req *dispatch.Request) (*dispatch.Response, error) {
	p, err := h.GetUser.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("User retrieved successfully.", p), nil
}

func (h *UserController) UpdateMe(req *dispatch.Request) (*dispatch.Response, error) {
	p, err := h.UpdateUser.Execute(req)
	if err != nil {
		return nil, err
	}
	return dispatch.Success("User updated successfully.", p), nil
}

func (h *UserController) DeleteMe(req *dispatch.Request) (*dispatch.Response, error) {
	if err := h.DeleteUser.Execute(req); err != nil {
		return nil, err
	}
	return dispatch.Success("User deleted successfully.", nil), nil
}
