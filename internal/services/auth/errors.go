package auth

import "errors"

// ErrGenAccessToken is returned when we cannot create a JWT.
var ErrGenAccessToken = errors.New("failed to generate access token")

// ErrInvalidCredentials is returned on any sign-in failure. Lookup misses and
// password mismatches share one message so the response never leaks which
// emails are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRegistrationFailed masks duplicate-email sign-ups for the same reason.
var ErrRegistrationFailed = errors.New("registration failed")

// ErrListUsers is returned when the user directory cannot be loaded.
var ErrListUsers = errors.New("failed to list users")
