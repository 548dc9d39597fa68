package domain

import (
	"errors"
	"net/http"
)

// Tag is the classification discriminant carried on every failed request.
// The set is closed: servers emit the remote tags, the client pipeline adds
// the two synthetic local kinds for failures that never produced a readable
// server body.
type Tag string

// Remote classification tags.
const (
	TagBadRequest         Tag = "BAD_REQUEST"
	TagNotFound           Tag = "NOT_FOUND"
	TagUnauthorized       Tag = "UNAUTHORIZED"
	TagForbidden          Tag = "FORBIDDEN"
	TagDuplicate          Tag = "DUPLICATE_ERROR"
	TagDatabase           Tag = "DATABASE_ERROR"
	TagResourceConflict   Tag = "RESOURCE_CONFLICT"
	TagValidation         Tag = "VALIDATION_ERROR"
	TagInternalServer     Tag = "INTERNAL_SERVER_ERROR"
	TagServiceUnavailable Tag = "SERVICE_UNAVAILABLE"
	TagSessionExpired     Tag = "SESSION_EXPIRED"
	TagSecurityAlert      Tag = "SECURITY_ALERT"
	TagScopeRequired      Tag = "SCOPE_REQUIRED"
)

// Synthetic local tags, never sent by a server.
const (
	TagTransport     Tag = "TRANSPORT_ERROR"
	TagUnknownServer Tag = "UNKNOWN_SERVER_ERROR"
)

// knownTags is the closed registry of recognized classifications.
var knownTags = map[Tag]bool{
	TagBadRequest:         true,
	TagNotFound:           true,
	TagUnauthorized:       true,
	TagForbidden:          true,
	TagDuplicate:          true,
	TagDatabase:           true,
	TagResourceConflict:   true,
	TagValidation:         true,
	TagInternalServer:     true,
	TagServiceUnavailable: true,
	TagSessionExpired:     true,
	TagSecurityAlert:      true,
	TagScopeRequired:      true,
	TagTransport:          true,
	TagUnknownServer:      true,
}

// ParseTag resolves a raw classification string from a response body.
// Unrecognized values report ok=false; callers must fall back to
// TagUnknownServer rather than swallow the failure.
func ParseTag(raw string) (Tag, bool) {
	t := Tag(raw)
	if knownTags[t] {
		return t, true
	}
	return TagUnknownServer, false
}

// InvalidatesSession reports whether a failure with this tag must tear the
// session down (clear state, clear caches, redirect to login).
func (t Tag) InvalidatesSession() bool {
	return t == TagSessionExpired || t == TagSecurityAlert
}

// AppError represents a classified failure with a tag, message, optional
// per-field details, and an optional wrapped cause.
type AppError struct {
	Tag     Tag               `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error for use with errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined classified errors.
//
// To check whether an error matches one of these categories, use the
// corresponding helper function (IsNotFound, IsSessionExpired, etc.)
// instead of errors.Is. The helpers use errors.As with tag comparison,
// so they correctly match any *AppError carrying the same tag — including
// freshly constructed instances from NewAppError and wrapped errors —
// whereas errors.Is only matches by pointer identity with the specific
// sentinel below.
var (
	ErrNotFound       = &AppError{Tag: TagNotFound, Message: "not found"}
	ErrUnauthorized   = &AppError{Tag: TagUnauthorized, Message: "unauthorized"}
	ErrForbidden      = &AppError{Tag: TagForbidden, Message: "forbidden"}
	ErrDuplicate      = &AppError{Tag: TagDuplicate, Message: "already exists"}
	ErrValidation     = &AppError{Tag: TagValidation, Message: "validation error"}
	ErrInternal       = &AppError{Tag: TagInternalServer, Message: "internal error"}
	ErrSessionExpired = &AppError{Tag: TagSessionExpired, Message: "session expired"}
	ErrScopeRequired  = &AppError{Tag: TagScopeRequired, Message: "required scope is not available"}
)

// NewAppError creates a new AppError with the given tag, message, and wrapped error.
func NewAppError(tag Tag, message string, err error) *AppError {
	return &AppError{
		Tag:     tag,
		Message: message,
		Err:     err,
	}
}

// IsNotFound reports whether err is or wraps an AppError tagged NOT_FOUND.
func IsNotFound(err error) bool {
	return hasTag(err, TagNotFound)
}

// IsDuplicate reports whether err is or wraps an AppError tagged DUPLICATE_ERROR.
func IsDuplicate(err error) bool {
	return hasTag(err, TagDuplicate)
}

// IsValidation reports whether err is or wraps an AppError tagged VALIDATION_ERROR.
func IsValidation(err error) bool {
	return hasTag(err, TagValidation)
}

// IsUnauthorized reports whether err is or wraps an AppError tagged UNAUTHORIZED.
func IsUnauthorized(err error) bool {
	return hasTag(err, TagUnauthorized)
}

// IsSessionExpired reports whether err is or wraps an AppError tagged SESSION_EXPIRED.
func IsSessionExpired(err error) bool {
	return hasTag(err, TagSessionExpired)
}

// IsScopeRequired reports whether err is or wraps an AppError tagged SCOPE_REQUIRED.
func IsScopeRequired(err error) bool {
	return hasTag(err, TagScopeRequired)
}

// IsTransport reports whether err is or wraps an AppError tagged TRANSPORT_ERROR.
func IsTransport(err error) bool {
	return hasTag(err, TagTransport)
}

// ClassifyTag extracts the classification tag from err. Errors that do not
// carry an *AppError classify as TRANSPORT_ERROR, the synthetic kind for
// failures without a structured body.
func ClassifyTag(err error) Tag {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Tag
	}
	return TagTransport
}

// hasTag checks whether err is or wraps an *AppError with the given tag.
func hasTag(err error, tag Tag) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Tag == tag
	}
	return false
}

// HTTPStatusCode maps a classified error to an HTTP status code, for the
// server side of the contract. Unclassified errors map to 500.
func HTTPStatusCode(err error) int {
	var appErr *AppError
	if err != nil && errors.As(err, &appErr) {
		if status, ok := tagStatus[appErr.Tag]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

var tagStatus = map[Tag]int{
	TagBadRequest:         http.StatusBadRequest,
	TagNotFound:           http.StatusNotFound,
	TagUnauthorized:       http.StatusUnauthorized,
	TagForbidden:          http.StatusForbidden,
	TagDuplicate:          http.StatusConflict,
	TagDatabase:           http.StatusInternalServerError,
	TagResourceConflict:   http.StatusConflict,
	TagValidation:         http.StatusBadRequest,
	TagInternalServer:     http.StatusInternalServerError,
	TagServiceUnavailable: http.StatusServiceUnavailable,
	TagSessionExpired:     http.StatusUnauthorized,
	TagSecurityAlert:      http.StatusUnauthorized,
	TagScopeRequired:      http.StatusBadRequest,
}
