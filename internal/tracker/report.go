package tracker

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// dashboardExpenseLimit caps the expense list shown on the dashboard.
const dashboardExpenseLimit = 50

// CategoryReport is one row of the per-category spending table.
type CategoryReport struct {
	CategoryID int
	Name       string
	Spent      decimal.Decimal
	Budget     decimal.Decimal
	Remaining  decimal.Decimal
	Percent    decimal.Decimal
}

// Report is the monthly report view model.
type Report struct {
	Period      models.Period
	Categories  []CategoryReport
	TotalSpent  decimal.Decimal
	TotalBudget decimal.Decimal
	Daily       []models.DailyAmount
}

// Dashboard is the current-period overview.
type Dashboard struct {
	Period     models.Period
	Categories []CategoryReport
	TotalSpent decimal.Decimal
	Expenses   []models.Expense
	Alerts     []models.Alert
}

// ReportBuilder composes aggregation results and store reads into view models.
type ReportBuilder struct {
	store      Store
	aggregator *Aggregator
	clock      Clock
}

// NewReportBuilder creates a ReportBuilder.
func NewReportBuilder(store Store, aggregator *Aggregator, clock Clock) *ReportBuilder {
	return &ReportBuilder{store: store, aggregator: aggregator, clock: clock}
}

// MonthlyReport builds the report for period, or the current period when nil.
func (b *ReportBuilder) MonthlyReport(ctx context.Context, userID int64, period *models.Period) (*Report, error) {
	p := currentPeriod(b.clock)
	if period != nil {
		if err := period.Validate(); err != nil {
			return nil, err
		}
		p = *period
	}

	expenses, err := b.aggregator.expenses(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	budgets, err := b.store.BudgetsForUserPeriod(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}

	rows, err := b.categoryRows(ctx, totalsByCategory(expenses), budgets)
	if err != nil {
		return nil, err
	}

	totalBudget := decimal.Zero
	for i := range budgets {
		totalBudget = totalBudget.Add(budgets[i].Amount)
	}

	return &Report{
		Period:      p,
		Categories:  rows,
		TotalSpent:  sumExpenses(expenses),
		TotalBudget: totalBudget,
		Daily:       dailyTotals(expenses),
	}, nil
}

// DashboardSummary builds the current-period overview with unread alerts.
func (b *ReportBuilder) DashboardSummary(ctx context.Context, userID int64) (*Dashboard, error) {
	p := currentPeriod(b.clock)

	expenses, err := b.aggregator.expenses(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	budgets, err := b.store.BudgetsForUserPeriod(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to load budgets: %w", err)
	}

	rows, err := b.categoryRows(ctx, totalsByCategory(expenses), budgets)
	if err != nil {
		return nil, err
	}

	alerts, err := b.store.ListAlerts(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}

	recent := newestFirst(expenses)
	if len(recent) > dashboardExpenseLimit {
		recent = recent[:dashboardExpenseLimit]
	}

	return &Dashboard{
		Period:     p,
		Categories: rows,
		TotalSpent: sumExpenses(expenses),
		Expenses:   recent,
		Alerts:     alerts,
	}, nil
}

// categoryRows emits one row per category in store order.
func (b *ReportBuilder) categoryRows(
	ctx context.Context,
	spent map[int]decimal.Decimal,
	budgets []models.Budget,
) ([]CategoryReport, error) {
	categories, err := b.store.AllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	budgetByCategory := make(map[int]decimal.Decimal, len(budgets))
	for i := range budgets {
		budgetByCategory[budgets[i].CategoryID] = budgets[i].Amount
	}

	rows := make([]CategoryReport, 0, len(categories))
	for _, cat := range categories {
		rows = append(rows, newCategoryReport(cat, spent[cat.ID], budgetByCategory[cat.ID]))
	}
	return rows, nil
}

func newCategoryReport(cat models.Category, spent, budget decimal.Decimal) CategoryReport {
	row := CategoryReport{
		CategoryID: cat.ID,
		Name:       cat.Name,
		Spent:      spent,
		Budget:     budget,
		Remaining:  decimal.Zero,
		Percent:    decimal.Zero,
	}
	if budget.IsPositive() {
		row.Remaining = decimal.Max(budget.Sub(spent), decimal.Zero)
		row.Percent = spent.Div(budget).Mul(hundred).Round(2)
	}
	return row
}

func newestFirst(expenses []models.Expense) []models.Expense {
	out := make([]models.Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
