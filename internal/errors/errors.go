package errors

import "fmt"

// ErrorCode represents a SkillTime error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrStillLocked    ErrorCode = "STILL_LOCKED"    // 423
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// VaultError represents a structured error with code, status, and details.
type VaultError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *VaultError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *VaultError {
	return &VaultError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a capsule or skill cannot be found.
func NewNotFound(kind, identifier string) *VaultError {
	return &VaultError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewStillLocked creates a 423 error for opening a capsule before its
// unlock instant.
func NewStillLocked(id, remaining string) *VaultError {
	return &VaultError{
		Code:    ErrStillLocked,
		Status:  423,
		Message: fmt.Sprintf("capsule %s is still sealed (%s)", id, remaining),
		Details: map[string]any{"id": id, "remaining": remaining},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *VaultError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &VaultError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a VaultError with the given code.
func Is(err error, code ErrorCode) bool {
	if vErr, ok := err.(*VaultError); ok {
		return vErr.Code == code
	}
	return false
}
