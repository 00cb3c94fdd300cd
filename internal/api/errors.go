package api

import (
	"fmt"
	"time"
)

// ErrNoConnection indicates the request never reached the server.
type ErrNoConnection struct {
	Err error
}

func (e *ErrNoConnection) Error() string {
	return fmt.Sprintf("no connection: %v", e.Err)
}

func (e *ErrNoConnection) Unwrap() error { return e.Err }

// ErrUnauthorized indicates the API token was rejected (401).
type ErrUnauthorized struct{}

func (e *ErrUnauthorized) Error() string { return "unauthorized: check your API token" }

// ErrRateLimited indicates the server returned 429.
type ErrRateLimited struct {
	RetryAfter time.Duration
}

func (e *ErrRateLimited) Error() string {
	return fmt.Sprintf("rate limited (retry after %s)", e.RetryAfter)
}

// ErrServer indicates a non-auth, non-rate-limit HTTP failure status.
type ErrServer struct {
	StatusCode int
}

func (e *ErrServer) Error() string {
	return fmt.Sprintf("server error: status %d", e.StatusCode)
}

// ErrDecode indicates the response body did not match the expected shape.
type ErrDecode struct {
	Err error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("decode response: %v", e.Err)
}

func (e *ErrDecode) Unwrap() error { return e.Err }

// ErrInvalidURL indicates a request URL could not be built.
type ErrInvalidURL struct {
	URL string
}

func (e *ErrInvalidURL) Error() string {
	return fmt.Sprintf("invalid URL: %s", e.URL)
}
