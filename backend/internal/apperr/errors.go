// Package apperr holds the error kinds shared by services and handlers.
package apperr

import "errors"

var (
	// ErrValidation marks a malformed or incomplete request.
	ErrValidation = errors.New("validation error")
	// ErrEmailTaken is returned on registration with an existing email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")
)
