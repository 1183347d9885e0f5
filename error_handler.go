package accessmiddleware

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTokenMissing is returned when no token is present on the request.
	ErrTokenMissing = errors.New("access token missing")

	// ErrTokenInvalid is returned when a presented token fails verification.
	ErrTokenInvalid = errors.New("access token invalid")
)

// ErrorHandler is called whenever a request is denied. err can be checked
// against ErrTokenMissing and ErrTokenInvalid; the concrete verification
// failure is reachable through errors.As for logging. Handlers must answer
// missing and invalid tokens identically so callers cannot probe why a token
// failed, and must not leak internal error detail in api responses.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DenyHandler returns the default ErrorHandler for the given disposition:
// a redirect to the hosted login for html surfaces when redirectOnMissing is
// set, otherwise a bare 401.
func DenyHandler(mode ResponseMode, redirectOnMissing bool, loginURL string) ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if mode == ResponseModeHTML && redirectOnMissing {
			http.Redirect(w, r, loginURL, http.StatusFound)
			return
		}

		if mode == ResponseModeAPI {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"unauthorized"}`))
			return
		}

		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}
}

// invalidError wraps a verification failure with the concrete error
// ErrTokenInvalid. Not exported; Is and Unwrap give callers all they need.
type invalidError struct {
	details error
}

// Is allows the error to support equality to ErrTokenInvalid.
func (e *invalidError) Is(target error) bool {
	return target == ErrTokenInvalid
}

// Error returns a string representation of the error.
func (e *invalidError) Error() string {
	return fmt.Sprintf("%s: %s", ErrTokenInvalid, e.details)
}

// Unwrap allows the error to support equality to the underlying error and
// not just ErrTokenInvalid.
func (e *invalidError) Unwrap() error {
	return e.details
}
