package shared

import (
	"errors"
	"fmt"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	ErrUnsupportedPlatform = fmt.Errorf("unsupported platform")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")
	ErrArtistNotFound     = fmt.Errorf("artist not found")

	// Cache errors
	ErrCacheIO = fmt.Errorf("cache I/O failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ValidationError reports an unrecognized configuration or argument value.
// It is always fatal.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("unsupported %s: %q", e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidArgument
}

// NewValidationError creates a [ValidationError] for field and value.
func NewValidationError(field, value string) error {
	return &ValidationError{Field: field, Value: value}
}

// RemoteCallError wraps a failure from the remote service with the operation
// and the offset, cursor or identifier that was being fetched.
type RemoteCallError struct {
	Op     string
	Detail string
	Err    error
}

func (e *RemoteCallError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Detail, e.Err)
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// NewRemoteCallError wraps err with op and a formatted detail.
func NewRemoteCallError(op string, err error, format string, args ...any) error {
	return &RemoteCallError{Op: op, Detail: fmt.Sprintf(format, args...), Err: err}
}

// CacheIOError wraps a failure reading or writing a cache file.
type CacheIOError struct {
	Op  string
	Key string
	Err error
}

func (e *CacheIOError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap returns both [ErrCacheIO] and the underlying error so callers can match either.
func (e *CacheIOError) Unwrap() []error {
	return []error{ErrCacheIO, e.Err}
}

// NewCacheIOError creates a [CacheIOError].
func NewCacheIOError(op, key string, err error) error {
	return &CacheIOError{Op: op, Key: key, Err: err}
}

// IsRemoteCallError reports whether err wraps a [RemoteCallError].
func IsRemoteCallError(err error) bool {
	var rce *RemoteCallError
	return errors.As(err, &rce)
}
