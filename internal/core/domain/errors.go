package domain

import "errors"

// Sentinel errors for client-side registration validation. These are detected
// before any network call and never reach the backend.
var (
	// ErrPasswordTooShort indicates the chosen password is under the minimum length.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrPasswordMismatch indicates password and confirmation differ.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrTermsNotAccepted indicates the terms of service checkbox was left unchecked.
	ErrTermsNotAccepted = errors.New("you must accept the terms of service")
)

// APIError is the single error type produced for non-2xx backend responses.
// Message carries the server's user-facing text from the response envelope;
// every higher layer resolves its toast copy from it.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorMessage resolves the user-facing text for err: the backend's envelope
// message when one exists, else the given fallback (transport failures carry
// no server message).
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
