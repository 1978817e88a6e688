package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated is returned when a credential cannot be resolved to a user.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrPostNotFound is returned when no post has the requested id.
	ErrPostNotFound = errors.New("post not found")

	ErrCommentNotFound = errors.New("comment not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict is returned when a post changed between load and write.
	ErrConflict = errors.New("post was modified by another request")
)

// ValidationError represents a rejected input with field context.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error (%s): %s", e.Field, e.Message)
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// MediaOp names the lifecycle step that failed.
type MediaOp string

const (
	MediaOpUpload MediaOp = "upload"
	MediaOpUpdate MediaOp = "update"
	MediaOpDelete MediaOp = "delete"
)

// MediaIOError wraps an object store or staging fault. The cause is kept for logs only;
// callers see one kind regardless of whether disk or network failed.
type MediaIOError struct {
	Op  MediaOp
	Err error
}

func (e *MediaIOError) Error() string {
	return fmt.Sprintf("failed to %s media: %v", e.Op, e.Err)
}

func (e *MediaIOError) Unwrap() error { return e.Err }

func IsMediaIOError(err error) bool {
	var ioErr *MediaIOError
	return errors.As(err, &ioErr)
}
