package domain

import "errors"

// Expected business outcomes. Usecases return these and the HTTP layer maps
// them to status codes; anything else is treated as an internal failure.
var (
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is what repositories return on a unique index violation
	// they cannot attribute more precisely.
	ErrConflict = errors.New("resource already exists")

	ErrUsernameTaken        = errors.New("Username is already taken")
	ErrEmailTaken           = errors.New("Email is already in use")
	ErrDuplicateApplication = errors.New("You have already applied for this job")
	ErrProfileExists        = errors.New("A profile already exists for this user")
	ErrProfileRequired      = errors.New("Create your profile before performing this action")
	ErrJobInactive          = errors.New("Job is not accepting applications")
	ErrInvalidStatus        = errors.New("Invalid application status")
	ErrInvalidTransition    = errors.New("Application status transition is not allowed")
	ErrPasswordMismatch     = errors.New("Current password is incorrect")

	ErrBadCredentials  = errors.New("Bad credentials")
	ErrUnauthenticated = errors.New("Full authentication is required to access this resource")
	ErrForbidden       = errors.New("Access denied")
)

// badRequestErrors are rendered as 400 with their message.
var badRequestErrors = []error{
	ErrConflict,
	ErrUsernameTaken,
	ErrEmailTaken,
	ErrDuplicateApplication,
	ErrProfileExists,
	ErrProfileRequired,
	ErrJobInactive,
	ErrInvalidStatus,
	ErrInvalidTransition,
	ErrPasswordMismatch,
}

// IsBadRequest reports whether err is an expected client-side failure.
func IsBadRequest(err error) bool {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
