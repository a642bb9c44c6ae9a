package auth

import "errors"

var (
	// gate errors
	ErrMissingCredential = errors.New("missing bearer credential")
	ErrInvalidToken      = errors.New("invalid token")

	// login and registration errors
	ErrUnknownAccount   = errors.New("unknown account")
	ErrBadCredential    = errors.New("bad credential")
	ErrDuplicateAccount = errors.New("account already exists")

	// stored hash could not be parsed; distinct from a wrong password
	ErrCredentialFormat = errors.New("malformed credential hash")

	ErrPasswordTooLong = errors.New("password exceeds 72 bytes")
	ErrMissingSecret   = errors.New("token signing secret is empty")
)
