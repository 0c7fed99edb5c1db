package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeriod(t *testing.T) {
	t.Parallel()

	t.Run("start and end bound the month", func(t *testing.T) {
		t.Parallel()
		p := Period{Month: time.December, Year: 2024}
		require.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), p.Start())
		require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), p.End())
	})

	t.Run("contains checks month and year", func(t *testing.T) {
		t.Parallel()
		p := Period{Month: time.June, Year: 2024}
		require.True(t, p.Contains(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
		require.True(t, p.Contains(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)))
		require.False(t, p.Contains(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)))
		require.False(t, p.Contains(time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)))
	})

	t.Run("formats as month name and year", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "June 2024", Period{Month: time.June, Year: 2024}.String())
	})

	t.Run("period of uses location date", func(t *testing.T) {
		t.Parallel()
		loc := time.FixedZone("UTC+9", 9*3600)
		ts := time.Date(2024, 7, 1, 2, 0, 0, 0, loc)
		require.Equal(t, Period{Month: time.July, Year: 2024}, PeriodOf(ts))
	})
}

func TestNewPeriod(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		p, err := NewPeriod(2, 2025)
		require.NoError(t, err)
		require.Equal(t, time.February, p.Month)
		require.Equal(t, 2025, p.Year)
	})

	t.Run("month zero", func(t *testing.T) {
		t.Parallel()
		_, err := NewPeriod(0, 2025)
		require.True(t, IsValidation(err))
	})

	t.Run("year out of range", func(t *testing.T) {
		t.Parallel()
		_, err := NewPeriod(5, 10)
		require.ErrorContains(t, err, "year")
	})
}
