package tracker

import (
	"time"

	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// Clock supplies the evaluation time. Period boundaries follow the location
// of the returned time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current time in the configured location (UTC when unset).
func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return time.Now().In(loc)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

func currentPeriod(c Clock) models.Period {
	return models.PeriodOf(c.Now())
}
