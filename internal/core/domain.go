package core

import (
	"strings"
	"time"
)

const (
	// DirectionInflow marks transaction types that increase the balance.
	DirectionInflow Direction = "inflow"
	// DirectionOutflow marks transaction types that decrease the balance.
	DirectionOutflow Direction = "outflow"
)

type (
	// Direction classifies a transaction type as money in or money out.
	Direction string

	// Date is a calendar date without a time component. Records are
	// stamped and filtered by Date, never by wall-clock time.
	Date struct {
		time.Time
	}

	// Status is an optional label on a ledger record (Business, Personal, ...).
	Status struct {
		ID   int64
		Name string
	}

	// TransactionType is the root of the classification hierarchy.
	TransactionType struct {
		ID        int64
		Name      string
		Direction Direction
	}

	// Category belongs to exactly one transaction type.
	Category struct {
		ID                int64
		TransactionTypeID int64
		Name              string
	}

	// Subcategory belongs to exactly one category.
	Subcategory struct {
		ID         int64
		CategoryID int64
		Name       string
	}

	// Record is a single ledger entry.
	Record struct {
		ID                int64
		CreatedDate       Date
		StatusID          *int64
		TransactionTypeID int64
		CategoryID        int64
		SubcategoryID     int64
		Amount            Amount
		Comment           string
	}

	// RecordDetail is a Record with the names of its references resolved,
	// the shape the read entry points return.
	RecordDetail struct {
		Record
		StatusName          *string
		TransactionTypeName string
		Direction           Direction
		CategoryName        string
		SubcategoryName     string
	}
)

// Valid reports whether d is one of the two known directions.
func (d Direction) Valid() bool {
	return d == DirectionInflow || d == DirectionOutflow
}

const dateLayout = "2006-01-02"

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current date truncated to midnight UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	parsed, err := ParseDate(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthBounds returns the first and last day of the month containing d.
func (d Date) MonthBounds() (Date, Date) {
	first := NewDate(d.Year(), int(d.Month()), 1)
	last := Date{Time: first.AddDate(0, 1, -1)}
	return first, last
}

// ValidName reports whether a reference-data name is acceptable.
func ValidName(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && len(trimmed) <= 100
}
