package dispatch

import "net/http"

// Envelope types.
const (
	TypeSuccess = "success"
	TypeError   = "error"
	TypeInfo    = "info"
)

// Response is the JSON envelope every endpoint answers with.  Status and
// Cookies are written by the transport and are not part of the body.
type Response struct {
	Status     int            `json:"-"`
	Success    bool           `json:"success"`
	Type       string         `json:"type"`
	Message    string         `json:"message"`
	Data       any            `json:"data"`
	TotalPages *int           `json:"totalPages,omitempty"`
	Cookies    []*http.Cookie `json:"-"`
}

// Success builds a 200 success envelope.
func Success(message string, data any) *Response {
	return &Response{Status: http.StatusOK, Success: true, Type: TypeSuccess, Message: message, Data: emptyObject(data)}
}

// Info builds a 200 envelope for successful calls with nothing to show.
func Info(message string, data any) *Response {
	return &Response{Status: http.StatusOK, Success: true, Type: TypeInfo, Message: message, Data: emptyObject(data)}
}

// Failure builds the error envelope for err.
func Failure(err error) *Response {
	e := AsError(err)
	return &Response{Status: e.Kind.Status(), Success: false, Type: TypeError, Message: e.PublicMessage(), Data: struct{}{}}
}

// WithStatus overrides the HTTP status.
func (r *Response) WithStatus(status int) *Response {
	r.Status = status
	return r
}

// WithTotalPages attaches the pagination total.
func (r *Response) WithTotalPages(n int) *Response {
	r.TotalPages = &n
	return r
}

func emptyObject(data any) any {
	if data == nil {
		return struct{}{}
	}
	return data
}
