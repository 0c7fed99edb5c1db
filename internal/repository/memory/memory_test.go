package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

var _ tracker.Store = (*Store)(nil)

func newUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", NotificationsEnabled: true}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestNew_SeedsCategories(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cats, err := New().AllCategories(context.Background())
		require.NoError(t, err)
		require.Len(t, cats, len(models.DefaultCategories))
		require.Equal(t, 1, cats[0].ID)
		require.Equal(t, "Food", cats[0].Name)
	})

	t.Run("dedupes and skips blanks", func(t *testing.T) {
		cats, err := New("A", " ", "b", "a").AllCategories(context.Background())
		require.NoError(t, err)
		require.Len(t, cats, 2)
		require.Equal(t, "b", cats[1].Name)
	})
}

func TestStore_Users(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := newUser(t, s, "alice")
	require.Equal(t, int64(1), alice.ID)

	t.Run("duplicate username conflicts", func(t *testing.T) {
		err := s.CreateUser(ctx, &models.User{Username: "ALICE", Email: "other@example.com"})
		require.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("settings update", func(t *testing.T) {
		bob := newUser(t, s, "bob")
		bob.Email = "alice@example.com"
		require.ErrorIs(t, s.UpdateUserSettings(ctx, bob), models.ErrConflict)

		bob.Email = "bob2@example.com"
		bob.NotificationsEnabled = false
		require.NoError(t, s.UpdateUserSettings(ctx, bob))

		got, err := s.GetUser(ctx, bob.ID)
		require.NoError(t, err)
		require.Equal(t, "bob2@example.com", got.Email)
		require.False(t, got.NotificationsEnabled)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := s.GetUser(ctx, 99)
		require.ErrorIs(t, err, models.ErrNotFound)
		require.ErrorIs(t, s.UpdateUserSettings(ctx, &models.User{ID: 99}), models.ErrNotFound)
	})
}

func TestStore_Expenses(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := newUser(t, s, "alice")
	bob := newUser(t, s, "bob")

	add := func(userID int64, amount int64, day time.Time) *models.Expense {
		e := &models.Expense{UserID: userID, CategoryID: 1, Amount: decimal.NewFromInt(amount), Date: day}
		require.NoError(t, s.CreateExpense(ctx, e))
		return e
	}

	june := models.Period{Month: time.June, Year: 2024}
	add(alice.ID, 10, time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC))
	first := add(alice.ID, 20, time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	add(alice.ID, 30, time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC))
	add(alice.ID, 40, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC))
	add(bob.ID, 50, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))

	t.Run("period filter", func(t *testing.T) {
		got, err := s.ExpensesForUserInPeriod(ctx, alice.ID, june)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "Food", got[0].Category.Name)
	})

	t.Run("list newest first", func(t *testing.T) {
		got, err := s.ListExpenses(ctx, alice.ID, 3)
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, time.July, got[0].Date.Month())
		require.Equal(t, 30, got[1].Date.Day())
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		err := s.CreateExpense(ctx, &models.Expense{UserID: alice.ID, CategoryID: 42, Amount: decimal.NewFromInt(1), Date: time.Now()})
		require.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("delete scoped to owner", func(t *testing.T) {
		require.ErrorIs(t, s.DeleteExpense(ctx, bob.ID, first.ID), models.ErrNotFound)
		require.NoError(t, s.DeleteExpense(ctx, alice.ID, first.ID))
		require.ErrorIs(t, s.DeleteExpense(ctx, alice.ID, first.ID), models.ErrNotFound)
	})
}

func TestStore_UpsertBudget(t *testing.T) {
	ctx := context.Background()
	s := New()
	june := models.Period{Month: time.June, Year: 2024}

	b := &models.Budget{UserID: 1, CategoryID: 2, Amount: decimal.NewFromInt(100), Period: june, AlertThreshold: models.DefaultAlertThreshold}
	created, err := s.UpsertBudget(ctx, b)
	require.NoError(t, err)
	require.True(t, created)

	b2 := &models.Budget{UserID: 1, CategoryID: 2, Amount: decimal.NewFromInt(300), Period: june, AlertThreshold: decimal.NewFromInt(50)}
	created, err = s.UpsertBudget(ctx, b2)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, b.ID, b2.ID)

	got, err := s.BudgetForUserCategoryPeriod(ctx, 1, 2, june)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(decimal.NewFromInt(300)))
	require.True(t, got.AlertThreshold.Equal(decimal.NewFromInt(50)))
	require.Equal(t, "Transport", got.Category.Name)

	all, err := s.BudgetsForUserPeriod(ctx, 1, june)
	require.NoError(t, err)
	require.Len(t, all, 1)

	_, err = s.BudgetForUserCategoryPeriod(ctx, 1, 2, models.Period{Month: time.July, Year: 2024})
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestStore_Alerts(t *testing.T) {
	ctx := context.Background()
	s := New()

	first := &models.Alert{UserID: 1, CategoryID: 1, Kind: models.AlertKindWarning, Message: "w"}
	require.NoError(t, s.InsertAlertIfNoneUnread(ctx, first))
	require.ErrorIs(t, s.InsertAlertIfNoneUnread(ctx, &models.Alert{UserID: 1, CategoryID: 1}), models.ErrConflict)
	require.NoError(t, s.InsertAlertIfNoneUnread(ctx, &models.Alert{UserID: 1, CategoryID: 2, Kind: models.AlertKindExceeded}))

	unread, err := s.ListAlerts(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, unread, 2)
	require.Equal(t, 2, unread[0].CategoryID, "newest first")

	require.ErrorIs(t, s.MarkAlertRead(ctx, 2, first.ID), models.ErrNotFound)
	require.NoError(t, s.MarkAlertRead(ctx, 1, first.ID))

	forCat, err := s.UnreadAlertsForUserCategory(ctx, 1, 1)
	require.NoError(t, err)
	require.Empty(t, forCat)

	all, err := s.ListAlerts(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	require.NoError(t, s.InsertAlertIfNoneUnread(ctx, &models.Alert{UserID: 1, CategoryID: 1}))
}

func TestStore_AlertKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := New()

	evaluatedAt := time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)
	alert := &models.Alert{UserID: 1, CategoryID: 1, Kind: models.AlertKindWarning, CreatedAt: evaluatedAt}
	require.NoError(t, s.InsertAlertIfNoneUnread(ctx, alert))
	require.True(t, alert.CreatedAt.Equal(evaluatedAt))

	stored, err := s.ListAlerts(ctx, 1, true)
	require.NoError(t, err)
	require.True(t, stored[0].CreatedAt.Equal(evaluatedAt))

	unset := &models.Alert{UserID: 1, CategoryID: 2, Kind: models.AlertKindWarning}
	require.NoError(t, s.InsertAlertIfNoneUnread(ctx, unset))
	require.False(t, unset.CreatedAt.IsZero())
}

func TestStore_InsertAlertConcurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.InsertAlertIfNoneUnread(ctx, &models.Alert{UserID: 1, CategoryID: 1, Kind: models.AlertKindWarning})
		}()
	}
	wg.Wait()
	close(results)

	var ok int
	for err := range results {
		if err == nil {
			ok++
		} else {
			require.ErrorIs(t, err, models.ErrConflict)
		}
	}
	require.Equal(t, 1, ok)
}
