package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

func TestExpenseRepository(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()
	repo := NewExpenseRepository(tx)

	user := createTestUser(t, tx)
	other := createTestUser(t, tx)
	food := foodCategory(t, tx)

	add := func(userID int64, amount string, day time.Time) *models.Expense {
		exp := &models.Expense{
			UserID:      userID,
			CategoryID:  food.ID,
			Amount:      decimal.RequireFromString(amount),
			Description: "lunch",
			Date:        day,
			SharedWith:  "bob",
		}
		require.NoError(t, repo.Create(ctx, exp))
		return exp
	}

	may31 := time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC)
	jun1 := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	jun30 := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	jul1 := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)

	add(user.ID, "10.00", may31)
	first := add(user.ID, "20.50", jun1)
	add(user.ID, "30.25", jun30)
	add(user.ID, "40.00", jul1)
	add(other.ID, "99.00", jun1)

	t.Run("period bounds are inclusive start exclusive end", func(t *testing.T) {
		june := models.Period{Month: time.June, Year: 2024}
		got, err := repo.GetByUserAndPeriod(ctx, user.ID, june)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.True(t, got[0].Amount.Equal(decimal.RequireFromString("20.50")))
		require.True(t, got[1].Amount.Equal(decimal.RequireFromString("30.25")))
		require.Equal(t, jun1, got[0].Date)
		require.Equal(t, "bob", got[0].SharedWith)
		require.Equal(t, "Food", got[0].Category.Name)
	})

	t.Run("lists newest first with limit", func(t *testing.T) {
		got, err := repo.GetByUserID(ctx, user.ID, 2)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, jul1, got[0].Date)
		require.Equal(t, jun30, got[1].Date)
	})

	t.Run("delete is scoped to owner", func(t *testing.T) {
		err := repo.Delete(ctx, other.ID, first.ID)
		require.ErrorIs(t, err, models.ErrNotFound)

		require.NoError(t, repo.Delete(ctx, user.ID, first.ID))
		err = repo.Delete(ctx, user.ID, first.ID)
		require.ErrorIs(t, err, models.ErrNotFound)
	})
}
