// Package common defines shared constants and sentinel errors used across
// client and server layers of datamarket. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Session errors.
	ErrAgentUnavailable = errors.New("signing agent is not available, install or start a wallet to continue")
	ErrNotConnected     = errors.New("wallet not connected")
	ErrNotInitialized   = errors.New("storage session not initialized, please connect your wallet")
	ErrNoAccounts       = errors.New("signing agent returned no authorized accounts")
	ErrBusy             = errors.New("operation already in progress")

	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Domain validation errors.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrInvalidMetadata   = errors.New("invalid metadata")
	ErrForbidden         = errors.New("forbidden")
	ErrContentMismatch   = errors.New("stored content does not match its identifier")
	ErrInvalidRequest    = errors.New("invalid request")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
