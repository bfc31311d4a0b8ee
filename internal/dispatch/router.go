// Package dispatch implements the in-process request pipeline: a route
// table keyed by method and path, a global and per-route middleware
// chain, and central conversion of errors into the JSON envelope.
package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Handler produces the response for a matched request.
type Handler func(*Request) (*Response, error)

// Middleware runs before the handler.  It may mutate the request; a
// non-nil error aborts the chain.
type Middleware func(*Request) error

// Observer is told about every dispatched request.
type Observer func(method, pattern string, status int, elapsed time.Duration)

type route struct {
	method      string
	pattern     string
	segments    []string
	templated   bool
	handler     Handler
	middlewares []Middleware
}

// RouteInfo describes one registered route.
type RouteInfo struct {
	Method  string
	Pattern string
}

// Router is configured once at startup and then only read by Dispatch,
// so no locking is needed as long as registration happens before the
// server starts.
type Router struct {
	routes    []*route
	index     map[string]*route
	global    []Middleware
	observers []Observer
	log       zerolog.Logger
}

// New returns an empty router logging through l.
func New(l zerolog.Logger) *Router {
	return &Router{index: map[string]*route{}, log: l}
}

// Register maps (method, path) to h.  Path segments starting with ':'
// capture route parameters.  Registering the same key again replaces the
// earlier handler and middleware.
func (rt *Router) Register(method, path string, h Handler, mws ...Middleware) {
	method, path = normalizeMethod(method), normalizePath(path)
	r := &route{
		method:      method,
		pattern:     path,
		segments:    split(path),
		handler:     h,
		middlewares: mws,
	}
	for _, s := range r.segments {
		if strings.HasPrefix(s, ":") {
			r.templated = true
			break
		}
	}
	k := key(method, path)
	if old, ok := rt.index[k]; ok {
		*old = *r
		return
	}
	rt.index[k] = r
	rt.routes = append(rt.routes, r)
}

// AddMiddleware appends a global middleware.  Global middleware runs
// before any route middleware.
func (rt *Router) AddMiddleware(mw Middleware) {
	rt.global = append(rt.global, mw)
}

// Observe registers a hook called after every dispatch.
func (rt *Router) Observe(o Observer) {
	rt.observers = append(rt.observers, o)
}

// Routes lists registered routes in registration order.
func (rt *Router) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(rt.routes))
	for _, r := range rt.routes {
		out = append(out, RouteInfo{Method: r.method, Pattern: r.pattern})
	}
	return out
}

// Dispatch runs req through the pipeline and always returns a response;
// errors and panics are converted to the error envelope here and only
// here.
func (rt *Router) Dispatch(req *Request) (resp *Response) {
	start := time.Now()
	req.Method, req.Path = normalizeMethod(req.Method), normalizePath(req.Path)
	pattern := ""

	defer func() {
		if p := recover(); p != nil {
			resp = rt.fail(req, Internal("panic during dispatch", fmt.Errorf("%v", p)))
		}
		resp.Cookies = append(resp.Cookies, req.OutgoingCookies()...)
		for _, o := range rt.observers {
			o(req.Method, pattern, resp.Status, time.Since(start))
		}
	}()

	r, params := rt.match(req.Method, req.Path)
	if r == nil {
		return rt.fail(req, NotFound(fmt.Sprintf("Route not found: %s %s", req.Method, req.Path)))
	}
	pattern = r.pattern
	for k, v := range params {
		req.Params[k] = v
	}

	for _, mw := range rt.global {
		if err := mw(req); err != nil {
			return rt.fail(req, err)
		}
	}
	for _, mw := range r.middlewares {
		if err := mw(req); err != nil {
			return rt.fail(req, err)
		}
	}

	out, err := r.handler(req)
	if err != nil {
		return rt.fail(req, err)
	}
	if out == nil {
		return Success("", nil)
	}
	return out
}

func (rt *Router) fail(req *Request, err error) *Response {
	e := AsError(err)
	ev := rt.log.Debug()
	if e.Kind == KindInternal {
		ev = rt.log.Error()
	}
	ev.Err(e.Err).
		Str("method", req.Method).
		Str("path", req.Path).
		Str("kind", e.Kind.String()).
		Msg(e.Message)
	return Failure(e)
}

// match finds the route for (method, path): an exact key first, then
// templated routes in registration order.
func (rt *Router) match(method, path string) (*route, map[string]string) {
	if r, ok := rt.index[key(method, path)]; ok {
		return r, nil
	}
	segs := split(path)
	for _, r := range rt.routes {
		if !r.templated || r.method != method || len(r.segments) != len(segs) {
			continue
		}
		params := map[string]string{}
		matched := true
		for i, s := range r.segments {
			if strings.HasPrefix(s, ":") {
				params[s[1:]] = segs[i]
				continue
			}
			if s != segs[i] {
				matched = false
				break
			}
		}
		if matched {
			return r, params
		}
	}
	return nil, nil
}

func key(method, path string) string { return method + " " + path }

func split(path string) []string {
	if path == "/" {
		return nil
	}
	return strings.Split(strings.TrimPrefix(path, "/"), "/")
}
