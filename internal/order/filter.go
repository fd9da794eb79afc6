package order

import (
	"fmt"
	"time"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// Filter narrows the admin order listing. Zero values mean "no constraint".
type Filter struct {
	Status        string
	PaymentMethod string
	// Search matches case-insensitively against the order id, customer
	// email and customer full name, OR-combined.
	Search string
	Start  *time.Time
	End    *time.Time
	// EndExclusive is set when End came from a date-only bound that was
	// advanced one day to cover the whole day.
	EndExclusive bool

	Page    int
	PerPage int
}

func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 || f.PerPage > maxPerPage {
		f.PerPage = defaultPerPage
	}
}

func (f *Filter) Offset() int { return (f.Page - 1) * f.PerPage }

// ParseStartBound parses an inclusive range start, accepting a bare date or
// an RFC 3339 timestamp.
func ParseStartBound(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start date %q", s)
	}
	return t, nil
}

// ParseEndBound parses a range end. A bare date covers the whole day: it is
// advanced by one day and compared exclusively. A timestamp is compared
// inclusively.
func ParseEndBound(s string) (t time.Time, exclusive bool, err error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.AddDate(0, 0, 1), true, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid end date %q", s)
	}
	return t, false, nil
}
