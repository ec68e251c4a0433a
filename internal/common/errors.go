// Package common defines shared helpers and sentinel errors used across
// vault layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Unlock errors.
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrEmptyPassword     = errors.New("master password must not be empty")
	ErrInvalidCredential = errors.New("invalid master password")
	ErrTooManyAttempts   = errors.New("too many failed unlock attempts")
	ErrCorruptMetadata   = errors.New("vault metadata is corrupted")
	ErrNotInitialized    = errors.New("vault is not initialized")

	// Entry validation errors.
	ErrValidation = errors.New("validation error")
)
