package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for errors.Is. The typed errors below match their sentinel
// through an Is method.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("resource not found")
	ErrAlreadyFinalized   = errors.New("beneficiary status is already final and cannot be changed")
	ErrAlreadyDistributed = errors.New("package has already been distributed")
	ErrActionInProgress   = errors.New("another request for this record is still in progress")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrAuth               = errors.New("authentication failed")
)

type AuthKind string

const (
	InvalidCredentials AuthKind = "InvalidCredentials"
	AccountDisabled    AuthKind = "AccountDisabled"
	AccountNotFound    AuthKind = "AccountNotFound"
	NetworkFailure     AuthKind = "NetworkFailure"
	WeakPassword       AuthKind = "WeakPassword"
	EmailInUse         AuthKind = "EmailInUse"
)

const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldGeneral  = "general"
)

type AuthError struct {
	Kind    AuthKind
	Field   string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

func (e *AuthError) Is(target error) bool { return target == ErrAuth }

func NewAuthError(kind AuthKind, field, message string) *AuthError {
	if field == "" {
		field = FieldGeneral
	}
	return &AuthError{Kind: kind, Field: field, Message: message}
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// DuplicateKeyError names the entity and the key field that collided.
// Value is the colliding value when it is safe to echo back.
type DuplicateKeyError struct {
	Entity string
	Key    string
	Value  string
}

func (e *DuplicateKeyError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Key)
	}
	return fmt.Sprintf("%s with %s %s already exists", e.Entity, e.Key, e.Value)
}

func (e *DuplicateKeyError) Is(target error) bool { return target == ErrDuplicateKey }

type PermissionDeniedError struct {
	Action string
	Role   string
}

func (e *PermissionDeniedError) Error() string {
	return fmt.Sprintf("role %s is not allowed to %s", e.Role, e.Action)
}

func (e *PermissionDeniedError) Is(target error) bool { return target == ErrPermissionDenied }

type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyFinalizedError carries the authoritative record so callers can
// refresh their view after losing a race.
type AlreadyFinalizedError struct {
	Key     string
	Current interface{}
}

func (e *AlreadyFinalizedError) Error() string { return ErrAlreadyFinalized.Error() }

func (e *AlreadyFinalizedError) Is(target error) bool { return target == ErrAlreadyFinalized }

// Code returns the stable machine-readable code for err.
func Code(err error) string {
	var authErr *AuthError
	switch {
	case errors.As(err, &authErr):
		return string(authErr.Kind)
	case errors.Is(err, ErrValidation):
		return "ValidationError"
	case errors.Is(err, ErrDuplicateKey):
		return "DuplicateKey"
	case errors.Is(err, ErrPermissionDenied):
		return "PermissionDenied"
	case errors.Is(err, ErrNotFound):
		return "NotFound"
	case errors.Is(err, ErrAlreadyFinalized):
		return "AlreadyFinalized"
	case errors.Is(err, ErrAlreadyDistributed):
		return "AlreadyDistributed"
	case errors.Is(err, ErrActionInProgress):
		return "ActionInProgress"
	case errors.Is(err, ErrUnauthenticated):
		return "Unauthenticated"
	}
	return "Internal"
}

// HTTPStatus maps errors to HTTP status codes.
func HTTPStatus(err error) int {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		switch authErr.Kind {
		case AccountDisabled:
			return http.StatusForbidden
		case EmailInUse:
			return http.StatusConflict
		case WeakPassword:
			return http.StatusBadRequest
		case NetworkFailure:
			return http.StatusServiceUnavailable
		default:
			return http.StatusUnauthorized
		}
	}
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateKey), errors.Is(err, ErrAlreadyFinalized),
		errors.Is(err, ErrAlreadyDistributed), errors.Is(err, ErrActionInProgress):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
