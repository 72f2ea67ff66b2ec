package security

import "errors"

var (
	// ErrUserNotFound is returned by FindUser for an unknown user id.
	ErrUserNotFound = errors.New("no such user")

	// ErrWrongCredentials is returned by Login when authentication fails.
	ErrWrongCredentials = errors.New("wrong credentials")

	// ErrUnauthenticated is returned when a request carries no session at
	// all. Distinct from ErrSessionExpired so handlers can word the 401.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrSessionExpired covers an expired, tampered or otherwise invalid
	// session token, and a valid token whose binding was logged out.
	ErrSessionExpired = errors.New("session expired")

	// ErrNoPermission is the single denial outcome for every failed
	// permission check. Callers depend on the uniform message; the
	// underlying cause is not surfaced.
	ErrNoPermission = errors.New("no permission")

	// ErrInvalidPermissionType flags a programming or configuration error,
	// not an authorization denial.
	ErrInvalidPermissionType = errors.New("invalid permission type")
)
