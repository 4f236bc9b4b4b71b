package apperrors

import (
	"errors"
)

var (
	ErrShutdown = errors.New("shutdown error")

	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenMissingFields = errors.New("token missing fields")

	ErrInvalidAnswer   = errors.New("answer must be yes or no")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyIdentity   = errors.New("identity must not be empty")
	ErrEmptyEventDate  = errors.New("event date must not be empty")

	ErrInvalidOccurrence     = errors.New("occurrence must be >= 1")
	ErrRosterEntryIncomplete = errors.New("roster entry must have name and email")
)
