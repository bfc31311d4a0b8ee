package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Input is everything the transport collects about an inbound call.
type Input struct {
	Method  string
	Path    string
	Query   url.Values
	Raw     []byte     // raw request body; empty for multipart bodies
	Form    url.Values // decoded form/POST fields, used when Raw yields nothing
	Files   map[string][]*multipart.FileHeader
	Cookies []*http.Cookie
	Header  http.Header
}

// Request is the normalised view of one inbound call.  It is built once
// at the boundary; middleware may set Auth and Params, nothing re-reads
// transport state afterwards.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    map[string]any
	Params  map[string]string
	Files   map[string][]*multipart.FileHeader
	Header  http.Header
	Auth    map[string]any // decoded access token payload, nil when anonymous
	cookies map[string]string
	out     []*http.Cookie
	ctx     context.Context
}

// NewRequest normalises in.  Body precedence: a JSON object in Raw, then
// Raw as a URL-encoded query string, then Form.
func NewRequest(ctx context.Context, in Input) *Request {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &Request{
		Method:  normalizeMethod(in.Method),
		Path:    normalizePath(in.Path),
		Query:   in.Query,
		Body:    parseBody(in.Raw, in.Form),
		Params:  map[string]string{},
		Files:   in.Files,
		Header:  in.Header,
		cookies: map[string]string{},
		ctx:     ctx,
	}
	if r.Query == nil {
		r.Query = url.Values{}
	}
	if r.Header == nil {
		r.Header = http.Header{}
	}
	for _, c := range in.Cookies {
		r.cookies[c.Name] = c.Value
	}
	return r
}

func parseBody(raw []byte, form url.Values) map[string]any {
	if len(strings.TrimSpace(string(raw))) > 0 {
		var obj map[string]any
		if err := json.Unmarshal(raw, &obj); err == nil && obj != nil {
			return obj
		}
		s := strings.TrimSpace(string(raw))
		if strings.Contains(s, "=") {
			if vals, err := url.ParseQuery(s); err == nil && len(vals) > 0 {
				return flatten(vals)
			}
		}
	}
	return flatten(form)
}

func flatten(vals url.Values) map[string]any {
	out := make(map[string]any, len(vals))
	for k, vs := range vals {
		switch len(vs) {
		case 0:
			out[k] = ""
		case 1:
			out[k] = vs[0]
		default:
			list := make([]any, len(vs))
			for i, v := range vs {
				list[i] = v
			}
			out[k] = list
		}
	}
	return out
}

// Context returns the context of the inbound call.
func (r *Request) Context() context.Context { return r.ctx }

// Cookie returns the value of an inbound cookie.
func (r *Request) Cookie(name string) (string, bool) {
	v, ok := r.cookies[name]
	return v, ok && v != ""
}

// SetCookie queues a cookie to be written with the response.
func (r *Request) SetCookie(c *http.Cookie) {
	r.out = append(r.out, c)
}

// OutgoingCookies returns the cookies queued so far.
func (r *Request) OutgoingCookies() []*http.Cookie { return r.out }

// UserID returns the authenticated user's id, or "" when anonymous.
func (r *Request) UserID() string {
	if r.Auth == nil {
		return ""
	}
	s, _ := r.Auth["user_id"].(string)
	return s
}

// Param returns a route parameter.
func (r *Request) Param(key string) string { return r.Params[key] }

// HasBody reports whether key is present in the parsed body.
func (r *Request) HasBody(key string) bool {
	_, ok := r.Body[key]
	return ok
}

// BodyValue returns the raw parsed body value.
func (r *Request) BodyValue(key string) (any, bool) {
	v, ok := r.Body[key]
	return v, ok
}

func (r *Request) StringBody(key, def string) string {
	v, ok := r.Body[key]
	if !ok {
		return def
	}
	return toString(v)
}

func (r *Request) IntBody(key string, def int) int {
	v, ok := r.Body[key]
	if !ok {
		return def
	}
	return toInt(v)
}

func (r *Request) BoolBody(key string, def bool) bool {
	v, ok := r.Body[key]
	if !ok {
		return def
	}
	return toBool(v)
}

func (r *Request) StringQuery(key, def string) string {
	if !r.Query.Has(key) {
		return def
	}
	return r.Query.Get(key)
}

func (r *Request) IntQuery(key string, def int) int {
	if !r.Query.Has(key) {
		return def
	}
	return toInt(r.Query.Get(key))
}

func (r *Request) BoolQuery(key string, def bool) bool {
	if !r.Query.Has(key) {
		return def
	}
	return toBool(r.Query.Get(key))
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func toInt(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return 0
		}
		return int(t)
	case bool:
		if t {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int(f)
		}
	}
	return 0
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true
		}
	}
	return false
}

func normalizeMethod(m string) string {
	return strings.ToUpper(strings.TrimSpace(m))
}

func normalizePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
