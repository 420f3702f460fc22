package models

import "errors"

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// Expected outcomes are returned to the caller and never retried. ErrStorage
// wraps backend faults.
var (
	ErrNotFound        = errors.New("not found")
	ErrHearingConflict = errors.New("hearing date already taken")
	ErrForbidden       = errors.New("forbidden")
	ErrBlocked         = errors.New("billing threshold reached")
	ErrAlreadyResolved = errors.New("case already resolved")
	ErrUserExists      = errors.New("user exists")
	ErrValidation      = errors.New("validation failed")
	ErrStorage         = errors.New("storage failure")
)
