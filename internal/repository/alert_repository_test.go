package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

func TestAlertRepository(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()
	repo := NewAlertRepository(tx)

	user := createTestUser(t, tx)
	other := createTestUser(t, tx)
	food := foodCategory(t, tx)

	first := &models.Alert{UserID: user.ID, CategoryID: food.ID, Kind: models.AlertKindWarning, Message: "warn"}
	require.NoError(t, repo.InsertIfNoneUnread(ctx, first))
	require.NotZero(t, first.ID)
	require.False(t, first.IsRead)

	t.Run("second unread alert conflicts", func(t *testing.T) {
		dup := &models.Alert{UserID: user.ID, CategoryID: food.ID, Kind: models.AlertKindExceeded, Message: "over"}
		err := repo.InsertIfNoneUnread(ctx, dup)
		require.ErrorIs(t, err, models.ErrConflict)

		unread, err := repo.UnreadForUserCategory(ctx, user.ID, food.ID)
		require.NoError(t, err)
		require.Len(t, unread, 1)
		require.Equal(t, models.AlertKindWarning, unread[0].Kind)
	})

	t.Run("mark read is scoped to owner", func(t *testing.T) {
		err := repo.MarkRead(ctx, other.ID, first.ID)
		require.ErrorIs(t, err, models.ErrNotFound)

		require.NoError(t, repo.MarkRead(ctx, user.ID, first.ID))
		require.NoError(t, repo.MarkRead(ctx, user.ID, first.ID))
	})

	t.Run("new alert allowed after read", func(t *testing.T) {
		next := &models.Alert{UserID: user.ID, CategoryID: food.ID, Kind: models.AlertKindExceeded, Message: "over"}
		require.NoError(t, repo.InsertIfNoneUnread(ctx, next))

		unread, err := repo.List(ctx, user.ID, true)
		require.NoError(t, err)
		require.Len(t, unread, 1)
		require.Equal(t, next.ID, unread[0].ID)

		all, err := repo.List(ctx, user.ID, false)
		require.NoError(t, err)
		require.Len(t, all, 2)
		require.Equal(t, "Food", all[0].Category.Name)
	})

	t.Run("keeps evaluation time", func(t *testing.T) {
		evaluatedAt := time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)
		alert := &models.Alert{
			UserID: other.ID, CategoryID: food.ID, Kind: models.AlertKindWarning,
			Message: "warn", CreatedAt: evaluatedAt,
		}
		require.NoError(t, repo.InsertIfNoneUnread(ctx, alert))
		require.True(t, alert.CreatedAt.Equal(evaluatedAt), "created_at %s", alert.CreatedAt)

		stored, err := repo.UnreadForUserCategory(ctx, other.ID, food.ID)
		require.NoError(t, err)
		require.Len(t, stored, 1)
		require.True(t, stored[0].CreatedAt.Equal(evaluatedAt))
	})

	t.Run("unknown alert is not found", func(t *testing.T) {
		require.ErrorIs(t, repo.MarkRead(ctx, user.ID, -1), models.ErrNotFound)
	})
}
