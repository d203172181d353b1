package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

// ErrorResponse is the JSON body written for every failed request.
type ErrorResponse struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Render writes err as an ErrorResponse. Errors that are not structured are
// logged and reported as an internal error so their text never leaves the
// process.
func Render(w http.ResponseWriter, r *http.Request, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = InternalWrap(err)
	}
	if e.Code == ErrCodeInternal {
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}

	render.Status(r, e.HTTPStatusCode())
	render.JSON(w, r, ErrorResponse{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
