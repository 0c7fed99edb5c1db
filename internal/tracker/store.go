// Package tracker implements the budget engine: monthly aggregation, alert
// evaluation with de-duplication, and the report view models built on top.
package tracker

import (
	"context"

	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// Store is the persistence contract consumed by the engine.
//
// Lookups of missing rows return models.ErrNotFound. UpsertBudget must be
// atomic per (user, category, month, year). InsertAlertIfNoneUnread must be
// atomic per (user, category) and return models.ErrConflict when an unread
// alert already exists.
type Store interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUserSettings(ctx context.Context, user *models.User) error

	AllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, categoryID int) (*models.Category, error)

	CreateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, userID, expenseID int64) error
	ListExpenses(ctx context.Context, userID int64, limit int) ([]models.Expense, error)
	ExpensesForUserInPeriod(ctx context.Context, userID int64, period models.Period) ([]models.Expense, error)

	// UpsertBudget creates or updates the budget in place and reports
	// whether a new row was created. ID and timestamps are filled in.
	UpsertBudget(ctx context.Context, budget *models.Budget) (bool, error)
	BudgetForUserCategoryPeriod(ctx context.Context, userID int64, categoryID int, period models.Period) (*models.Budget, error)
	BudgetsForUserPeriod(ctx context.Context, userID int64, period models.Period) ([]models.Budget, error)

	InsertAlertIfNoneUnread(ctx context.Context, alert *models.Alert) error
	UnreadAlertsForUserCategory(ctx context.Context, userID int64, categoryID int) ([]models.Alert, error)
	ListAlerts(ctx context.Context, userID int64, unreadOnly bool) ([]models.Alert, error)
	MarkAlertRead(ctx context.Context, userID, alertID int64) error
}

// NotificationSink delivers an alert message to a user address.
// Errors are reported to the caller but never undo the alert.
type NotificationSink interface {
	Send(ctx context.Context, address, message string) error
}

// CategorySuggester proposes a category name for an expense description.
type CategorySuggester interface {
	SuggestCategory(ctx context.Context, description string, availableCategories []string) (*Suggestion, error)
}

// Suggestion is a category proposal with its confidence in [0, 1].
type Suggestion struct {
	CategoryID int
	Category   string
	Confidence float64
	Reasoning  string
}
