// Package router registers the API routes on the dispatcher.
package router

import (
	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/handler"
	"github.com/iliyamo/todo-list/internal/middleware"
)

// RegisterUsers registers the /v1/users routes.  signup, signin, signout
// and refresh are open; everything under /me needs a valid access token.
func RegisterUsers(r *dispatch.Router, u *handler.UserController, a *middleware.Auth) {
	r.Register("POST", "/v1/users/signup", u.SignupUser)
	r.Register("POST", "/v1/users/signin", u.SigninUser)
	r.Register("POST", "/v1/users/signout", u.SignoutUser)
	// the refresh cookie is the credential here, not the access token
	r.Register("POST", "/v1/users/refresh", u.RefreshSession)

	r.Register("POST", "/v1/users/signout-all", u.SignoutEverywhere, a.RequireAuth)
	r.Register("GET", "/v1/users/me", u.Me, a.RequireAuth)
	r.Register("PATCH", "/v1/users/me", u.UpdateMe, a.RequireAuth)
	r.Register("PUT", "/v1/users/me", u.UpdateMe, a.RequireAuth)
	r.Register("DELETE", "/v1/users/me", u.DeleteMe, a.RequireAuth)
}

// RegisterTasks registers the /v1/tasks routes, all of them protected.
// Fixed paths are registered before templated ones so that
// /v1/tasks/bulk-done is never captured by /v1/tasks/:id.
func RegisterTasks(r *dispatch.Router, t *handler.TaskController, a *middleware.Auth) {
	r.Register("POST", "/v1/tasks", t.AddTask, a.RequireAuth)
	r.Register("GET", "/v1/tasks", t.GetTasks, a.RequireAuth)
	r.Register("POST", "/v1/tasks/bulk-delete", t.BulkDeleteTasks, a.RequireAuth)
	r.Register("PATCH", "/v1/tasks/bulk-done", t.BulkMarkDoneTasks, a.RequireAuth)

	r.Register("GET", "/v1/tasks/:id", t.GetTask, a.RequireAuth)
	r.Register("PATCH", "/v1/tasks/:id", t.UpdateTask, a.RequireAuth)
	r.Register("DELETE", "/v1/tasks/:id", t.DeleteTask, a.RequireAuth)
	r.Register("PATCH", "/v1/tasks/:id/done", t.MarkDoneTask, a.RequireAuth)
	r.Register("POST", "/v1/tasks/:id/done", t.MarkDoneTask, a.RequireAuth)
}
