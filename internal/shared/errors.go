package shared

import "errors"

var (
	// ErrInvalidCredentials indicates login failure. Deliberately generic:
	// callers must not reveal whether the identity or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired indicates the token lifetime has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates a malformed token or bad signature.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrUnauthorized indicates a valid token for an inactive or missing user.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden indicates a role, tenant or faculty scope violation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates resource not found within the caller's scope.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEntry indicates a uniqueness conflict.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrAlreadyEdited indicates the logbook single-edit rule was violated.
	ErrAlreadyEdited = errors.New("entry already edited")
	// ErrCapacityExceeded indicates a lecturer is at maximum student capacity.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidState indicates a business workflow violation.
	ErrInvalidState = errors.New("invalid state")
	// ErrAmbiguousCredential indicates an email matched more than one account
	// for the same role.
	ErrAmbiguousCredential = errors.New("ambiguous credential")
	// ErrCorruptCredential indicates a stored password hash could not be parsed.
	ErrCorruptCredential = errors.New("corrupt stored credential")
	// ErrValidation indicates malformed or incomplete request input.
	ErrValidation = errors.New("validation failed")
)
