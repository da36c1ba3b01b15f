// Package common defines shared constants and sentinel errors used across
// the client and gateway layers of photovault. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrDataIntegrity reports stored data that violates a structural rule,
	// for example a folder that is its own ancestor.
	ErrDataIntegrity = errors.New("data integrity violation")

	// Input errors. Nothing is mutated when these are returned.
	ErrValidation     = errors.New("validation error")
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrQuotaExceeded is returned before any remote transfer is attempted.
	ErrQuotaExceeded = errors.New("storage limit exceeded")

	// ErrRemoteTransfer wraps failures talking to the object storage gateway.
	ErrRemoteTransfer = errors.New("remote transfer failed")

	// Auth errors.
	ErrUnauthorized             = errors.New("unauthorized")
	ErrForbidden                = errors.New("forbidden")
	ErrInvalidToken             = errors.New("invalid token")
	ErrTokenExpired             = errors.New("token expired")
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrTemporaryPasswordExpired = errors.New("temporary password expired")
	ErrInvalidCode              = errors.New("invalid verification code")
)
