// Package validator extracts typed, checked fields from a dispatch
// request.  Every violation is returned as a dispatch validation error
// whose message is shown to the client as is.
package validator

import (
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/iliyamo/todo-list/internal/dispatch"
)

const (
	// MaxTitle and MaxUsername are the VARCHAR(255) column limits.
	MaxTitle    = 255
	MaxUsername = 255
	MaxEmail    = 255
	// MinPassword is the shortest accepted password.
	MinPassword = 6

	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// Validator reads fields of one request.
type Validator struct {
	req *dispatch.Request
}

// New wraps req.
func New(req *dispatch.Request) *Validator {
	return &Validator{req: req}
}

// RequiredString returns the trimmed body field key.  It must be present,
// non-empty, and at most max runes long (max <= 0 disables the limit).
func (v *Validator) RequiredString(key, label string, max int) (string, error) {
	raw, ok := v.req.BodyValue(key)
	if !ok || raw == nil {
		return "", dispatch.Validation(fmt.Sprintf("%s is required.", label))
	}
	if _, isObj := raw.(map[string]any); isObj {
		return "", dispatch.Validation(fmt.Sprintf("%s must be a string.", label))
	}
	if _, isList := raw.([]any); isList {
		return "", dispatch.Validation(fmt.Sprintf("%s must be a string.", label))
	}
	s := strings.TrimSpace(v.req.StringBody(key, ""))
	if s == "" {
		return "", dispatch.Validation(fmt.Sprintf("%s is required.", label))
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", dispatch.Validation(fmt.Sprintf("%s must be at most %d characters.", label, max))
	}
	return s, nil
}

// OptionalString returns the trimmed body field key, or "" when absent.
func (v *Validator) OptionalString(key string, max int) (string, error) {
	if !v.req.HasBody(key) {
		return "", nil
	}
	s := strings.TrimSpace(v.req.StringBody(key, ""))
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", dispatch.Validation(fmt.Sprintf("%s must be at most %d characters.", capitalize(key), max))
	}
	return s, nil
}

// Email returns the body field key as a normalised e-mail address.
func (v *Validator) Email(key string) (string, error) {
	s, err := v.RequiredString(key, "Email", MaxEmail)
	if err != nil {
		return "", err
	}
	addr, perr := mail.ParseAddress(s)
	if perr != nil || addr.Address != s || !strings.Contains(s[strings.LastIndex(s, "@")+1:], ".") {
		return "", dispatch.Validation("Invalid email address.")
	}
	return s, nil
}

// Password returns the body field key untrimmed; it must be at least
// MinPassword characters.
func (v *Validator) Password(key string) (string, error) {
	raw, ok := v.req.BodyValue(key)
	if !ok || raw == nil {
		return "", dispatch.Validation("Password is required.")
	}
	s := v.req.StringBody(key, "")
	if s == "" {
		return "", dispatch.Validation("Password is required.")
	}
	if utf8.RuneCountInString(s) < MinPassword {
		return "", dispatch.Validation(fmt.Sprintf("Password must be at least %d characters.", MinPassword))
	}
	return s, nil
}

// Bool strictly parses body field key.  Accepted: JSON booleans,
// "true"/"false", "1"/"0" and the numbers 1/0.  Anything else, including
// a missing field, fails with msg.
func (v *Validator) Bool(key, msg string) (bool, error) {
	raw, ok := v.req.BodyValue(key)
	if !ok {
		return false, dispatch.Validation(msg)
	}
	b, ok := strictBool(raw)
	if !ok {
		return false, dispatch.Validation(msg)
	}
	return b, nil
}

// OptionalBool is Bool for a field that may be absent; the returned
// pointer is nil in that case.
func (v *Validator) OptionalBool(key, msg string) (*bool, error) {
	if !v.req.HasBody(key) {
		return nil, nil
	}
	b, err := v.Bool(key, msg)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// QueryBool reads an optional status filter from the query string.
func (v *Validator) QueryBool(key, msg string) (*bool, error) {
	if !v.req.Query.Has(key) {
		return nil, nil
	}
	raw := strings.TrimSpace(v.req.Query.Get(key))
	if raw == "" {
		return nil, nil
	}
	b, ok := strictBool(raw)
	if !ok {
		return nil, dispatch.Validation(msg)
	}
	return &b, nil
}

// ID returns route parameter param as a positive integer.
func (v *Validator) ID(param, msg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v.req.Param(param)), 10, 64)
	if err != nil || n <= 0 {
		return 0, dispatch.Validation(msg)
	}
	return n, nil
}

// IDs returns body field key as a non-empty list of positive integers.
// Duplicates are dropped; order is kept.
func (v *Validator) IDs(key string) ([]int64, error) {
	const msg = "A non-empty list of task ids is required."
	raw, ok := v.req.BodyValue(key)
	if !ok {
		return nil, dispatch.Validation(msg)
	}
	var items []any
	switch t := raw.(type) {
	case []any:
		items = t
	case string:
		for _, p := range strings.Split(t, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
	default:
		items = []any{t}
	}
	if len(items) == 0 {
		return nil, dispatch.Validation(msg)
	}
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		id, ok := positiveInt(it)
		if !ok {
			return nil, dispatch.Validation("Task ids must be positive integers.")
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Page returns the requested page, at least 1.
func (v *Validator) Page() int {
	p := v.req.IntQuery("page", DefaultPage)
	if p < 1 {
		return DefaultPage
	}
	return p
}

// PerPage returns the page size clamped to 1..MaxPerPage.
func (v *Validator) PerPage() int {
	n := v.req.IntQuery("per_page", DefaultPerPage)
	switch {
	case n < 1:
		return DefaultPerPage
	case n > MaxPerPage:
		return MaxPerPage
	}
	return n
}

func strictBool(raw any) (bool, bool) {
	switch t := raw.(type) {
	case bool:
		return t, true
	case float64:
		switch t {
		case 1:
			return true, true
		case 0:
			return false, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	}
	return false, false
}

func positiveInt(raw any) (int64, bool) {
	switch t := raw.(type) {
	case float64:
		if t != math.Trunc(t) || t < 1 || t >= math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		if err != nil || n < 1 {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
