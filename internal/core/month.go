package core

import (
	"fmt"
	"time"
)

const (
	monthLayout = "2006-01"
	dateLayout  = "2006-01-02"
)

type (
	// Month is a calendar month, canonically rendered as "YYYY-MM".
	// The underlying time is normalized to the first day of the month, UTC.
	Month struct {
		time.Time
	}

	// Date is a calendar day, canonically rendered as "YYYY-MM-DD", UTC.
	Date struct {
		time.Time
	}
)

// ParseMonth parses a "YYYY-MM" string.
func ParseMonth(s string) (Month, error) {
	t, err := time.ParseInLocation(monthLayout, s, time.UTC)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Time: t}, nil
}

// NewMonth creates a Month from year and month number (1-12).
func NewMonth(year, month int) Month {
	return Month{Time: time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)}
}

// AddMonths returns the month n calendar months later, rolling over year
// boundaries. Day-of-month is always 1, so time.AddDate never normalizes
// into a neighboring month.
func (m Month) AddMonths(n int) Month {
	return Month{Time: m.AddDate(0, n, 0)}
}

func (m Month) String() string {
	return m.Format(monthLayout)
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	return m.Time.Before(other.Time)
}

func (m Month) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Month) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidMonth, data)
	}
	parsed, err := ParseMonth(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// NewDate creates a Date from year, month number (1-12) and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Month returns the calendar month the date belongs to.
func (d Date) Month() Month {
	return NewMonth(d.Year(), int(d.Time.Month()))
}

// In reports whether the date falls within the given month.
func (d Date) In(m Month) bool {
	return d.Year() == m.Year() && d.Time.Month() == m.Time.Month()
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
