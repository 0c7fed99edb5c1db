package repository

import (
	"context"

	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// Store bundles the repositories behind the engine's persistence contract.
type Store struct {
	Users      *UserRepository
	Categories *CategoryRepository
	Expenses   *ExpenseRepository
	Budgets    *BudgetRepository
	Alerts     *AlertRepository
}

// NewStore builds every repository on one connection.
func NewStore(db database.PGXDB) *Store {
	return &Store{
		Users:      NewUserRepository(db),
		Categories: NewCategoryRepository(db),
		Expenses:   NewExpenseRepository(db),
		Budgets:    NewBudgetRepository(db),
		Alerts:     NewAlertRepository(db),
	}
}

func (s *Store) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.Users.GetByID(ctx, userID)
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return s.Users.Create(ctx, user)
}

func (s *Store) UpdateUserSettings(ctx context.Context, user *models.User) error {
	return s.Users.UpdateSettings(ctx, user)
}

func (s *Store) AllCategories(ctx context.Context) ([]models.Category, error) {
	return s.Categories.GetAll(ctx)
}

func (s *Store) GetCategory(ctx context.Context, categoryID int) (*models.Category, error) {
	return s.Categories.GetByID(ctx, categoryID)
}

func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	return s.Expenses.Create(ctx, expense)
}

func (s *Store) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	return s.Expenses.Delete(ctx, userID, expenseID)
}

func (s *Store) ListExpenses(ctx context.Context, userID int64, limit int) ([]models.Expense, error) {
	return s.Expenses.GetByUserID(ctx, userID, limit)
}

func (s *Store) ExpensesForUserInPeriod(ctx context.Context, userID int64, period models.Period) ([]models.Expense, error) {
	return s.Expenses.GetByUserAndPeriod(ctx, userID, period)
}

func (s *Store) UpsertBudget(ctx context.Context, budget *models.Budget) (bool, error) {
	return s.Budgets.Upsert(ctx, budget)
}

func (s *Store) BudgetForUserCategoryPeriod(ctx context.Context, userID int64, categoryID int, period models.Period) (*models.Budget, error) {
	return s.Budgets.GetByUserCategoryPeriod(ctx, userID, categoryID, period)
}

func (s *Store) BudgetsForUserPeriod(ctx context.Context, userID int64, period models.Period) ([]models.Budget, error) {
	return s.Budgets.GetByUserPeriod(ctx, userID, period)
}

func (s *Store) InsertAlertIfNoneUnread(ctx context.Context, alert *models.Alert) error {
	return s.Alerts.InsertIfNoneUnread(ctx, alert)
}

func (s *Store) UnreadAlertsForUserCategory(ctx context.Context, userID int64, categoryID int) ([]models.Alert, error) {
	return s.Alerts.UnreadForUserCategory(ctx, userID, categoryID)
}

func (s *Store) ListAlerts(ctx context.Context, userID int64, unreadOnly bool) ([]models.Alert, error) {
	return s.Alerts.List(ctx, userID, unreadOnly)
}

func (s *Store) MarkAlertRead(ctx context.Context, userID, alertID int64) error {
	return s.Alerts.MarkRead(ctx, userID, alertID)
}
