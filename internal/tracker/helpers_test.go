package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
	"gitlab.com/yelinaung/budget-tracker/internal/repository/memory"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

const (
	food      = 1
	transport = 2
)

var june15 = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

type sentMessage struct {
	address string
	message string
}

type recordingSink struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (s *recordingSink) Send(_ context.Context, address, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentMessage{address: address, message: message})
	return s.err
}

func (s *recordingSink) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentMessage(nil), s.sent...)
}

var errSMTPDown = errors.New("smtp down")

type fixture struct {
	store *memory.Store
	sink  *recordingSink
	svc   *tracker.Service
	user  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	sink := &recordingSink{}
	svc := tracker.NewService(tracker.Config{
		Store: store,
		Sink:  sink,
		Clock: tracker.FixedClock(june15),
	})
	user, err := svc.RegisterUser(context.Background(), "alice", "alice@example.com", true)
	require.NoError(t, err)

	return &fixture{store: store, sink: sink, svc: svc, user: user}
}

func (f *fixture) budget(t *testing.T, categoryID int, amount string, threshold *decimal.Decimal) {
	t.Helper()
	_, _, _, err := f.svc.UpsertBudget(context.Background(), f.user.ID, tracker.BudgetInput{
		CategoryID:     categoryID,
		Amount:         decimal.RequireFromString(amount),
		Month:          int(june15.Month()),
		Year:           june15.Year(),
		AlertThreshold: threshold,
	})
	require.NoError(t, err)
}

// spend stores an expense directly so the evaluator can be driven explicitly.
func (f *fixture) spend(t *testing.T, categoryID int, amount string, day time.Time) {
	t.Helper()
	require.NoError(t, f.store.CreateExpense(context.Background(), &models.Expense{
		UserID:     f.user.ID,
		CategoryID: categoryID,
		Amount:     decimal.RequireFromString(amount),
		Date:       day,
	}))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}
