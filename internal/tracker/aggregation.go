package tracker

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// Aggregator sums expense amounts per user, category and period.
// All methods are read-only.
type Aggregator struct {
	store Store
}

// NewAggregator creates an Aggregator over store.
func NewAggregator(store Store) *Aggregator {
	return &Aggregator{store: store}
}

// MonthlyTotal is the amount the user spent in one category during period.
// It is zero when nothing matches.
func (a *Aggregator) MonthlyTotal(ctx context.Context, userID int64, categoryID int, period models.Period) (decimal.Decimal, error) {
	expenses, err := a.expenses(ctx, userID, period)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for i := range expenses {
		if expenses[i].CategoryID == categoryID {
			total = total.Add(expenses[i].Amount)
		}
	}
	return total, nil
}

// MonthlyTotalAllCategories is the amount the user spent across every category.
func (a *Aggregator) MonthlyTotalAllCategories(ctx context.Context, userID int64, period models.Period) (decimal.Decimal, error) {
	expenses, err := a.expenses(ctx, userID, period)
	if err != nil {
		return decimal.Zero, err
	}
	return sumExpenses(expenses), nil
}

// CategoryTotals returns spend keyed by category id. Categories with no
// expenses are absent.
func (a *Aggregator) CategoryTotals(ctx context.Context, userID int64, period models.Period) (map[int]decimal.Decimal, error) {
	expenses, err := a.expenses(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	return totalsByCategory(expenses), nil
}

// DailyBreakdown groups spend by calendar day, ascending.
func (a *Aggregator) DailyBreakdown(ctx context.Context, userID int64, period models.Period) ([]models.DailyAmount, error) {
	expenses, err := a.expenses(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	return dailyTotals(expenses), nil
}

func (a *Aggregator) expenses(ctx context.Context, userID int64, period models.Period) ([]models.Expense, error) {
	expenses, err := a.store.ExpensesForUserInPeriod(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses for %s: %w", period, err)
	}

	// The store filters by period already; this guards against a store
	// that returns a wider range than asked for.
	filtered := expenses[:0:0]
	for i := range expenses {
		if expenses[i].UserID == userID && period.Contains(expenses[i].Date) {
			filtered = append(filtered, expenses[i])
		}
	}
	return filtered, nil
}

func sumExpenses(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for i := range expenses {
		total = total.Add(expenses[i].Amount)
	}
	return total
}

func totalsByCategory(expenses []models.Expense) map[int]decimal.Decimal {
	totals := make(map[int]decimal.Decimal)
	for i := range expenses {
		id := expenses[i].CategoryID
		totals[id] = totals[id].Add(expenses[i].Amount)
	}
	return totals
}

func dailyTotals(expenses []models.Expense) []models.DailyAmount {
	byDay := make(map[int64]*models.DailyAmount)
	for i := range expenses {
		day := models.Day(expenses[i].Date)
		key := day.Unix()
		if entry, ok := byDay[key]; ok {
			entry.Amount = entry.Amount.Add(expenses[i].Amount)
			continue
		}
		byDay[key] = &models.DailyAmount{Day: day, Amount: expenses[i].Amount}
	}

	out := make([]models.DailyAmount, 0, len(byDay))
	for _, entry := range byDay {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
