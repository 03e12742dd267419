package core

import "errors"

// Sentinel errors classify every failure the domain can produce. Callers
// match with errors.Is; the HTTP layer maps each class to a status code.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("operation not allowed")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
)

// validationError is a named validation failure. errors.Is(err,
// ErrValidation) is true for every value of this type.
type validationError struct {
	msg string
}

func (e validationError) Error() string { return e.msg }

func (e validationError) Is(target error) bool { return target == ErrValidation }

func validation(msg string) error { return validationError{msg: msg} }

var (
	ErrInvalidAmount    = validation("amount must be greater than zero")
	ErrInvalidDate      = validation("date must be a valid YYYY-MM-DD value")
	ErrEmptyName        = validation("name cannot be empty")
	ErrEmptyEmail       = validation("a valid email is required")
	ErrEmailTaken       = validation("email is already registered")
	ErrWeakPassword     = validation("password must be at least 8 characters")
	ErrEmptySource      = validation("source cannot be empty")
	ErrMissingCategory  = validation("category is required")
	ErrMissingSource    = validation("source is required for recurring income")
	ErrInvalidFrequency = validation("frequency must be daily, weekly, monthly or yearly")
	ErrInvalidMonth     = validation("month must be between 1 and 12")
	ErrInvalidTimeRange = validation("time range must be harian, mingguan, bulanan or tahunan")
	ErrDescriptionLong  = validation("description cannot exceed 200 characters")
)
