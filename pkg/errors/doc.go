// Package errors provides the structured error type shared by the clinic-idm
// services and HTTP handlers.
//
// Services return their own sentinel errors. Handlers translate them into an
// *Error whose Code is stable for clients and whose Message never leaks
// internals; the wrapped cause is only logged.
//
//	err := errors.Wrap(dbErr, errors.ErrCodeInternal, "internal server error")
//	status := err.HTTPStatusCode() // 500
//
//	if errors.IsCode(err, errors.ErrCodeEmailNotVerified) {
//		// 403
//	}
package errors
