package models

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validExpense() Expense {
	return Expense{
		UserID:      1,
		CategoryID:  3,
		Amount:      decimal.RequireFromString("12.50"),
		Description: "Lunch",
		Date:        time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpenseValidate(t *testing.T) {
	t.Parallel()

	t.Run("accepts a complete expense", func(t *testing.T) {
		t.Parallel()
		e := validExpense()
		require.NoError(t, e.Validate())
	})

	t.Run("rejects zero amount", func(t *testing.T) {
		t.Parallel()
		e := validExpense()
		e.Amount = decimal.Zero
		err := e.Validate()
		require.Error(t, err)
		require.True(t, IsValidation(err))

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		require.Equal(t, "amount", ve.Field)
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		t.Parallel()
		e := validExpense()
		e.Amount = decimal.RequireFromString("-1")
		require.True(t, IsValidation(e.Validate()))
	})

	t.Run("rejects missing category", func(t *testing.T) {
		t.Parallel()
		e := validExpense()
		e.CategoryID = 0
		require.ErrorContains(t, e.Validate(), "category_id")
	})

	t.Run("rejects missing date", func(t *testing.T) {
		t.Parallel()
		e := validExpense()
		e.Date = time.Time{}
		require.ErrorContains(t, e.Validate(), "date")
	})

	t.Run("rejects long description", func(t *testing.T) {
		t.Parallel()
		e := validExpense()
		e.Description = strings.Repeat("x", MaxDescriptionLength+1)
		require.ErrorContains(t, e.Validate(), "description")
	})

	t.Run("rejects long shared_with", func(t *testing.T) {
		t.Parallel()
		e := validExpense()
		e.SharedWith = strings.Repeat("a,", MaxSharedWithLength)
		require.ErrorContains(t, e.Validate(), "shared_with")
	})
}

func TestBudgetValidate(t *testing.T) {
	t.Parallel()

	base := func() Budget {
		return Budget{
			CategoryID:     1,
			Amount:         decimal.NewFromInt(500),
			Period:         Period{Month: time.June, Year: 2024},
			AlertThreshold: DefaultAlertThreshold,
		}
	}

	t.Run("accepts zero amount", func(t *testing.T) {
		t.Parallel()
		b := base()
		b.Amount = decimal.Zero
		require.NoError(t, b.Validate())
	})

	t.Run("rejects negative amount", func(t *testing.T) {
		t.Parallel()
		b := base()
		b.Amount = decimal.NewFromInt(-5)
		require.ErrorContains(t, b.Validate(), "amount")
	})

	t.Run("rejects negative threshold", func(t *testing.T) {
		t.Parallel()
		b := base()
		b.AlertThreshold = decimal.NewFromInt(-1)
		require.ErrorContains(t, b.Validate(), "alert_threshold")
	})

	t.Run("accepts threshold above 100", func(t *testing.T) {
		t.Parallel()
		b := base()
		b.AlertThreshold = decimal.NewFromInt(150)
		require.NoError(t, b.Validate())
	})

	t.Run("rejects invalid month", func(t *testing.T) {
		t.Parallel()
		b := base()
		b.Period.Month = 13
		require.ErrorContains(t, b.Validate(), "month")
	})
}

func TestAmountPrecision(t *testing.T) {
	t.Parallel()

	tests := []struct {
		amount string
		valid  bool
	}{
		{"0.01", true},
		{"2.50", true},
		{"2.500", true},
		{"9999999999.99", true},
		{"0.001", false},
		{"2.999", false},
		{"10000000000", false},
		{"1e12", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			t.Parallel()
			amount := decimal.RequireFromString(tt.amount)

			e := validExpense()
			e.Amount = amount
			b := Budget{
				CategoryID:     1,
				Amount:         amount,
				Period:         Period{Month: time.June, Year: 2024},
				AlertThreshold: DefaultAlertThreshold,
			}

			for _, err := range []error{e.Validate(), b.Validate()} {
				if tt.valid {
					require.NoError(t, err)
					continue
				}
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				require.Equal(t, "amount", ve.Field)
			}
		})
	}

	t.Run("threshold", func(t *testing.T) {
		t.Parallel()
		b := Budget{CategoryID: 1, Amount: decimal.NewFromInt(100), Period: Period{Month: time.June, Year: 2024}}

		b.AlertThreshold = decimal.RequireFromString("87.555")
		require.ErrorContains(t, b.Validate(), "alert_threshold")

		b.AlertThreshold = decimal.NewFromInt(100_000)
		require.ErrorContains(t, b.Validate(), "alert_threshold")

		b.AlertThreshold = decimal.RequireFromString("99999.99")
		require.NoError(t, b.Validate())
	})
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		user    User
		wantErr string
	}{
		{"valid", User{Username: "asha", Email: "asha@example.com"}, ""},
		{"missing username", User{Email: "asha@example.com"}, "username"},
		{"missing email", User{Username: "asha"}, "email"},
		{"email without at", User{Username: "asha", Email: "asha.example.com"}, "email"},
		{"email ending in at", User{Username: "asha", Email: "asha@"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.user.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestDay(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("IST", 5*3600+1800)
	got := Day(time.Date(2024, 6, 30, 23, 45, 0, 0, loc))
	require.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), got)
}

func TestNotificationError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := &NotificationError{Sink: "smtp", Err: inner}
	require.ErrorIs(t, err, inner)
	require.Contains(t, err.Error(), "smtp")
}

func FuzzExpenseValidateAmount(f *testing.F) {
	f.Add("5.50")
	f.Add("0")
	f.Add("-10")
	f.Add("0.01")
	f.Add("999999999.99")
	f.Add("1e3")
	f.Add("0.001")
	f.Add("10000000000")

	f.Fuzz(func(t *testing.T, input string) {
		amount, err := decimal.NewFromString(input)
		if err != nil {
			return
		}
		e := validExpense()
		e.Amount = amount
		verr := e.Validate()

		storable := amount.IsPositive() &&
			amount.Equal(amount.Round(2)) &&
			amount.LessThan(decimal.New(1, 10))
		if storable && verr != nil {
			t.Errorf("storable amount %s rejected: %v", input, verr)
		}
		if !storable && verr == nil {
			t.Errorf("amount %s accepted", input)
		}
	})
}
