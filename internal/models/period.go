package models

import (
	"fmt"
	"time"
)

// Period is a (month, year) budget cycle.
type Period struct {
	Month time.Month
	Year  int
}

// PeriodOf returns the period containing t, using t's location.
func PeriodOf(t time.Time) Period {
	return Period{Month: t.Month(), Year: t.Year()}
}

// NewPeriod builds a validated period from raw month/year numbers.
func NewPeriod(month, year int) (Period, error) {
	p := Period{Month: time.Month(month), Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks that month and year are in range.
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	if p.Year < 1900 || p.Year > 9999 {
		return &ValidationError{Field: "year", Reason: "must be between 1900 and 9999"}
	}
	return nil
}

// Start is the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first day of the following period (exclusive bound).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether the calendar day falls inside the period.
func (p Period) Contains(day time.Time) bool {
	y, m, _ := day.Date()
	return y == p.Year && m == p.Month
}

// String renders the period as "June 2024".
func (p Period) String() string {
	return fmt.Sprintf("%s %d", p.Month, p.Year)
}
