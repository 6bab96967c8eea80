package core

import "errors"

var (
	// ErrConflict is returned when a document that must be unique per key
	// already exists, e.g. a second ledger for the same user and month.
	ErrConflict = errors.New("already exists")

	// ErrNotFound is returned when a ledger, day, item, EMI or schedule
	// entry addressed by an operation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for structural violations the core is
	// responsible for: a date outside its ledger month, a schedule index
	// out of range, a negative amount.
	ErrInvalidInput = errors.New("invalid input")

	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidDate   = errors.New("invalid date")
	ErrEmptyPurpose  = errors.New("empty purpose")
	ErrEmptyTitle    = errors.New("empty title")
)

// IsNotFound reports whether err indicates a missing document or sub-record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err indicates a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsClientError reports whether err is caused by the request rather than the
// system. The HTTP layer maps these to 4xx responses.
func IsClientError(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidMonth) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyPurpose) ||
		errors.Is(err, ErrEmptyTitle)
}
