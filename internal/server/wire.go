package server

import (
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/todo-list/internal/auth"
	"github.com/iliyamo/todo-list/internal/config"
	"github.com/iliyamo/todo-list/internal/dispatch"
	"github.com/iliyamo/todo-list/internal/handler"
	"github.com/iliyamo/todo-list/internal/metrics"
	"github.com/iliyamo/todo-list/internal/middleware"
	"github.com/iliyamo/todo-list/internal/repository"
	"github.com/iliyamo/todo-list/internal/router"
	"github.com/iliyamo/todo-list/internal/service"
)

// NewRouter assembles repositories, services and controllers over db and
// registers every API route.  m may be nil.
func NewRouter(cfg config.Config, db *sql.DB, events service.EventPublisher, m *metrics.Metrics, l zerolog.Logger) (*dispatch.Router, error) {
	accessTTL := time.Duration(cfg.AccessTTLMin) * time.Minute
	refreshTTL := time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour

	jwtSvc, err := auth.NewJWTService(cfg.JWTSecret, accessTTL)
	if err != nil {
		return nil, err
	}
	users := repository.NewUserRepo(db)
	tasks := repository.NewTaskRepo(db)
	refresh := auth.NewRefreshTokenService(repository.NewTokenRepo(db), jwtSvc)
	cookies := auth.NewCookieManager(auth.CookieOptions{
		Secure:   cfg.CookieSecure,
		SameSite: cfg.CookieSameSite,
		Domain:   cfg.CookieDomain,
	}, accessTTL, refreshTTL)
	sessions := &service.Sessions{Access: jwtSvc, Refresh: refresh, Cookies: cookies, RefreshTTL: refreshTTL}

	uc := &handler.UserController{
		Signup:     &service.Signup{Users: users, Sessions: sessions, BcryptCost: cfg.BcryptCost},
		Signin:     &service.Signin{Users: users, Sessions: sessions},
		Signout:    &service.Signout{Cookies: cookies},
		SignoutAll: &service.SignoutAll{Sessions: sessions},
		Refresh:    &service.Refresh{Users: users, Sessions: sessions},
		GetUser:    &service.GetUser{Users: users},
		UpdateUser: &service.UpdateUser{Users: users, Sessions: sessions},
		DeleteUser: &service.DeleteUser{Users: users, Sessions: sessions},
	}
	tc := &handler.TaskController{
		Add:          &service.AddTask{Tasks: tasks, Events: events},
		List:         &service.GetTasks{Tasks: tasks},
		Get:          &service.GetTask{Tasks: tasks},
		Update:       &service.UpdateTask{Tasks: tasks, Events: events},
		MarkDone:     &service.MarkDoneTask{Tasks: tasks, Events: events},
		Delete:       &service.DeleteTask{Tasks: tasks, Events: events},
		BulkDelete:   &service.BulkDeleteTasks{Tasks: tasks, Events: events},
		BulkMarkDone: &service.BulkMarkDoneTasks{Tasks: tasks, Events: events},
	}

	rt := dispatch.New(l)
	authMW := middleware.NewAuth(jwtSvc)
	rt.AddMiddleware(authMW.RefreshJWT)
	if cfg.Debug {
		rt.AddMiddleware(middleware.Debug(l))
	}
	if m != nil {
		rt.Observe(m.ObserveRequest)
	}
	router.RegisterUsers(rt, uc, authMW)
	router.RegisterTasks(rt, tc, authMW)
	return rt, nil
}
