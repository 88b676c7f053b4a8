package domain

import "errors"

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account is not activated")
	ErrAccountLocked      = errors.New("account is locked")
	ErrDuplicateIdentity  = errors.New("email already registered")
	ErrRoleNotConfigured  = errors.New("default role is not provisioned")
)

// Activation errors
var (
	ErrTokenNotFound = errors.New("activation token not found")
	ErrTokenExpired  = errors.New("activation token has expired")
)

// Catalog & lending errors.
//
// ErrOperationNotPermitted is wrapped with a human-readable reason, e.g.
// fmt.Errorf("%w: you cannot borrow your own book", ErrOperationNotPermitted).
// The reason never carries identifiers the requester does not already know.
var (
	ErrBookNotFound          = errors.New("book not found")
	ErrOperationNotPermitted = errors.New("operation not permitted")
)

// Infrastructure errors
var (
	ErrEmailDispatch = errors.New("failed to send activation email")
)
