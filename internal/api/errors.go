package api

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrNetwork is returned when the backend could not be reached or
	// answered with a server-side failure.
	ErrNetwork = errors.New("could not reach server")

	// ErrInvalidCredentials is returned when no account matches the
	// given login and password.
	ErrInvalidCredentials = errors.New("invalid login or password")

	// ErrWrongRole is returned when the matched account is not a
	// driver account.
	ErrWrongRole = errors.New("access is limited to drivers")
)
