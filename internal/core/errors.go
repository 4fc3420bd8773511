package core

import (
	"errors"
	"sort"
	"strings"
)

var (
	// ErrInvalidAmount means the amount is missing, unparseable or not positive.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrCategoryMismatch means the category does not belong to the
	// selected transaction type.
	ErrCategoryMismatch = errors.New("category does not belong to the selected transaction type")

	// ErrSubcategoryMismatch means the subcategory does not belong to the
	// selected category.
	ErrSubcategoryMismatch = errors.New("subcategory does not belong to the selected category")

	// ErrMissingField means a required reference is absent.
	ErrMissingField = errors.New("required field is missing")

	// ErrDuplicateName means a reference-data name collides within its scope.
	ErrDuplicateName = errors.New("name already exists")

	// ErrReferencedByLedger blocks deletes of reference data that ledger
	// records still point to.
	ErrReferencedByLedger = errors.New("referenced by ledger records")

	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// FieldErrors maps a field name to a human-readable violation message.
// Validation accumulates every violated field so a caller can surface all
// problems in one round trip. FieldErrors is itself an error.
type FieldErrors map[string]string

// Add records a message for a field, keeping the first message when the
// field already has one.
func (fe FieldErrors) Add(field, message string) {
	if _, exists := fe[field]; !exists {
		fe[field] = message
	}
}

// Merge copies entries from other, without overwriting existing fields.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, message := range other {
		fe.Add(field, message)
	}
}

// Err returns fe as an error, or nil when no field is violated.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}
	return strings.Join(parts, "; ")
}

// AsFieldErrors unwraps err into a FieldErrors mapping, if it is one.
func AsFieldErrors(err error) (FieldErrors, bool) {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
