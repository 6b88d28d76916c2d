package apperrors

import "errors"

// Common errors
var (
	ErrNotFound = errors.New("resource not found")
	ErrConflict = errors.New("conflict")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrAccountDisabled    = errors.New("account is disabled")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Lifecycle errors
	ErrInvalidState      = errors.New("operation not valid for current state")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Storage errors
	ErrStorage = errors.New("storage failure")
)

// User errors
var (
	ErrUserNotFound          = errors.New("user not found")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrInvalidRole           = errors.New("invalid role")
)

// Course errors
var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseNotEnrollable = errors.New("course does not accept enrollments in its current status")
)

// Enrollment errors
var (
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAlreadyEnrolled    = errors.New("student is already enrolled in this course")
)

// Privilege errors
var (
	ErrPrivilegeNotFound        = errors.New("privilege not found for this instructor")
	ErrPrivilegeAlreadyAssigned = errors.New("privilege already assigned to this instructor")
	ErrInvalidPrivilegeName     = errors.New("invalid privilege name")
)

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Details map[string]interface{}
}

// Error implements the error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap returns the wrapped sentinel so errors.Is keeps working
func (e *CustomError) Unwrap() error {
	return e.Err
}

// WithDetails attaches context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode attaches a machine-readable error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// NewCustomError creates a CustomError wrapping the given sentinel
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// NewValidationError creates a validation error reporting the offending
// field and the rejected value.
func NewValidationError(field string, value interface{}, message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
		Details: map[string]interface{}{
			"field": field,
			"value": value,
		},
	}
}

// NewNotFoundError creates a not-found error with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a permission-denied error with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewInvalidTransitionError reports an illegal lifecycle transition.
func NewInvalidTransitionError(action, fromStatus string) error {
	return &CustomError{
		Err:     ErrInvalidTransition,
		Message: "cannot " + action + " a course in status '" + fromStatus + "'",
		Details: map[string]interface{}{
			"action": action,
			"status": fromStatus,
		},
	}
}

// NewStorageError wraps a datastore failure with operation and table
// context instead of leaking raw driver errors to callers.
func NewStorageError(err error, operation, table string) error {
	return &CustomError{
		Err:     ErrStorage,
		Message: "storage failure during " + operation + " on " + table + ": " + err.Error(),
		Details: map[string]interface{}{
			"operation": operation,
			"table":     table,
		},
	}
}
