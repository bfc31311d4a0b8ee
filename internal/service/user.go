package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/iliyamo/todo-list/internal/auth"
	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/model"
	"github.com/iliyamo/todo-list/internal/validator"
)

const (
	msgUsernameTaken    = "Username already exists."
	msgEmailTaken       = "Email already exists."
	msgBadCredentials   = "Invalid username or password"
	msgRefreshMissing   = "Refresh token missing"
	msgRefreshInvalid   = "Invalid refresh token"
	msgRefreshExpired   = "Refresh token expired"
	msgUserNotFound     = "User not found."
	msgNotAuthenticated = "Unauthorized"
)

// Signup registers a user and signs them in.
type Signup struct {
	Users      UserStore
	Sessions   *Sessions
	BcryptCost int
}

func (s *Signup) Execute(req *dispatch.Request) (model.PublicUser, error) {
	v := validator.New(req)
	username, err := v.RequiredString("username", "Username", validator.MaxUsername)
	if err != nil {
		return model.PublicUser{}, err
	}
	email, err := v.Email("email")
	if err != nil {
		return model.PublicUser{}, err
	}
	password, err := v.Password("password")
	if err != nil {
		return model.PublicUser{}, err
	}

	ctx := req.Context()
	if err := checkUnique(req, s.Users, "", username, email); err != nil {
		return model.PublicUser{}, err
	}

	hash, err := auth.HashPassword(password, s.BcryptCost)
	if err != nil {
		return model.PublicUser{}, dispatch.Internal("hash password", err)
	}
	res := s.Users.Create(ctx, model.User{
		ID:       uuid.NewString(),
		Username: username,
		Email:    email,
		Password: hash,
	})
	if res.Duplicate() {
		// lost a race against a concurrent signup
		return model.PublicUser{}, duplicateConflict(req, s.Users, "", username)
	}
	if !res.Success {
		return model.PublicUser{}, dbError("create user", res.Failure())
	}

	if err := s.Sessions.Start(req, res.Data); err != nil {
		return model.PublicUser{}, err
	}
	return res.Data.Public(), nil
}

// checkUnique fails with Conflict when username or email belongs to a
// user other than selfID.
func checkUnique(req *dispatch.Request, users UserStore, selfID, username, email string) error {
	ctx := req.Context()
	byName := users.FindByUsername(ctx, username)
	if !byName.Success {
		return dbError("find user by username", byName.Failure())
	}
	if byName.Data != nil && byName.Data.ID != selfID {
		return dispatch.Conflict(msgUsernameTaken)
	}
	byEmail := users.FindByEmail(ctx, email)
	if !byEmail.Success {
		return dbError("find user by email", byEmail.Failure())
	}
	if byEmail.Data != nil && byEmail.Data.ID != selfID {
		return dispatch.Conflict(msgEmailTaken)
	}
	return nil
}

// duplicateConflict names the column a unique violation was raised on.
func duplicateConflict(req *dispatch.Request, users UserStore, selfID, username string) error {
	byName := users.FindByUsername(req.Context(), username)
	if byName.Success && byName.Data != nil && byName.Data.ID != selfID {
		return dispatch.Conflict(msgUsernameTaken)
	}
	return dispatch.Conflict(msgEmailTaken)
}

// Signin checks credentials and starts a session.  Unknown user and
// wrong password are indistinguishable to the caller.
type Signin struct {
	Users    UserStore
	Sessions *Sessions
}

func (s *Signin) Execute(req *dispatch.Request) (model.PublicUser, error) {
	v := validator.New(req)
	username, err := v.RequiredString("username", "Username", validator.MaxUsername)
	if err != nil {
		return model.PublicUser{}, err
	}
	password, err := v.RequiredString("password", "Password", 0)
	if err != nil {
		return model.PublicUser{}, err
	}

	res := s.Users.FindByUsername(req.Context(), username)
	if !res.Success {
		return model.PublicUser{}, dbError("find user by username", res.Failure())
	}
	if res.Data == nil || !auth.VerifyPassword(res.Data.Password, password) {
		return model.PublicUser{}, dispatch.Unauthorized(msgBadCredentials)
	}
	if err := s.Sessions.Start(req, *res.Data); err != nil {
		return model.PublicUser{}, err
	}
	return res.Data.Public(), nil
}

// Signout clears the access cookie.  The refresh token stays valid until
// it expires or is used.
type Signout struct {
	Cookies *auth.CookieManager
}

func (s *Signout) Execute(req *dispatch.Request) error {
	s.Cookies.ClearAccess(req)
	return nil
}

// SignoutAll revokes every refresh token of the caller and clears both
// cookies.
type SignoutAll struct {
	Sessions *Sessions
}

func (s *SignoutAll) Execute(req *dispatch.Request) error {
	if err := s.Sessions.Refresh.RevokeAllForUser(req.Context(), req.UserID()); err != nil {
		return dispatch.Internal("revoke refresh tokens", err)
	}
	s.Sessions.End(req)
	return nil
}

// Refresh rotates the refresh token: the presented token is consumed and
// a new access/refresh pair is issued.
type Refresh struct {
	Users    UserStore
	Sessions *Sessions
}

func (s *Refresh) Execute(req *dispatch.Request) error {
	ctx := req.Context()
	token, ok := s.Sessions.Cookies.RefreshToken(req)
	if !ok {
		return dispatch.Unauthorized(msgRefreshMissing)
	}
	userID, err := s.Sessions.Refresh.Verify(ctx, token)
	switch {
	case errors.Is(err, auth.ErrRefreshInvalid):
		return dispatch.Unauthorized(msgRefreshInvalid)
	case errors.Is(err, auth.ErrRefreshExpired):
		return dispatch.Unauthorized(msgRefreshExpired)
	case err != nil:
		return dispatch.Internal("verify refresh token", err)
	}
	if err := s.Sessions.Refresh.Revoke(ctx, token); err != nil {
		return dispatch.Internal("revoke refresh token", err)
	}

	res := s.Users.FindByID(ctx, userID)
	if !res.Success {
		return dbError("find user by id", res.Failure())
	}
	if res.Data == nil {
		return dispatch.Unauthorized(msgRefreshInvalid)
	}
	return s.Sessions.Start(req, *res.Data)
}

// GetUser returns the caller's profile.
type GetUser struct {
	Users UserStore
}

func (s *GetUser) Execute(req *dispatch.Request) (model.Profile, error) {
	u, err := currentUser(req, s.Users)
	if err != nil {
		return model.Profile{}, err
	}
	return u.Profile(), nil
}

func currentUser(req *dispatch.Request, users UserStore) (*model.User, error) {
	id := req.UserID()
	if id == "" {
		return nil, dispatch.Unauthorized(msgNotAuthenticated)
	}
	res := users.FindByID(req.Context(), id)
	if !res.Success {
		return nil, dbError("find user by id", res.Failure())
	}
	if res.Data == nil {
		return nil, dispatch.NotFound(msgUserNotFound)
	}
	return res.Data, nil
}

// UpdateUser changes username and email and re-issues the access cookie
// so that its payload carries the new username.
type UpdateUser struct {
	Users    UserStore
	Sessions *Sessions
}

func (s *UpdateUser) Execute(req *dispatch.Request) (model.Profile, error) {
	v := validator.New(req)
	username, err := v.RequiredString("username", "Username", validator.MaxUsername)
	if err != nil {
		return model.Profile{}, err
	}
	email, err := v.Email("email")
	if err != nil {
		return model.Profile{}, err
	}

	u, err := currentUser(req, s.Users)
	if err != nil {
		return model.Profile{}, err
	}
	if err := checkUnique(req, s.Users, u.ID, username, email); err != nil {
		return model.Profile{}, err
	}

	res := s.Users.Update(req.Context(), u.ID, username, email)
	if res.Duplicate() {
		return model.Profile{}, duplicateConflict(req, s.Users, u.ID, username)
	}
	if !res.Success {
		return model.Profile{}, dbError("update user", res.Failure())
	}
	if res.Affected == 0 {
		return model.Profile{}, dispatch.NotFound(msgUserNotFound)
	}

	u.Username, u.Email = username, email
	if err := s.Sessions.SetAccess(req, *u); err != nil {
		return model.Profile{}, err
	}
	return u.Profile(), nil
}

// DeleteUser removes the caller's account.  Tasks and tokens go with it.
type DeleteUser struct {
	Users    UserStore
	Sessions *Sessions
}

func (s *DeleteUser) Execute(req *dispatch.Request) error {
	id := req.UserID()
	if id == "" {
		return dispatch.Unauthorized(msgNotAuthenticated)
	}
	ctx := req.Context()
	if err := s.Sessions.Refresh.RevokeAllForUser(ctx, id); err != nil {
		return dispatch.Internal("revoke refresh tokens", err)
	}
	res := s.Users.Delete(ctx, id)
	if !res.Success {
		return dbError("delete user", res.Failure())
	}
	if res.Affected == 0 {
		return dispatch.NotFound(msgUserNotFound)
	}
	s.Sessions.End(req)
	return nil
}
