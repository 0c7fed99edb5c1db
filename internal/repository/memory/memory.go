// Package memory is a mutex-guarded in-process store used by tests and by
// the memory storage backend.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

type budgetKey struct {
	userID     int64
	categoryID int
	period     models.Period
}

// Store keeps every entity in slices and maps under a single mutex, which
// makes each method atomic with respect to the others.
type Store struct {
	mu  sync.Mutex
	now func() time.Time

	users      map[int64]models.User
	categories []models.Category
	expenses   []models.Expense
	budgets    map[budgetKey]models.Budget
	alerts     []models.Alert

	nextUserID    int64
	nextExpenseID int64
	nextBudgetID  int64
	nextAlertID   int64
}

// New returns a store seeded with the given category names. An empty list
// seeds models.DefaultCategories.
func New(categories ...string) *Store {
	if len(categories) == 0 {
		categories = models.DefaultCategories
	}
	s := &Store{
		now:     time.Now,
		users:   map[int64]models.User{},
		budgets: map[budgetKey]models.Budget{},
	}
	created := s.now()
	seen := map[string]struct{}{}
	for _, name := range categories {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		s.categories = append(s.categories, models.Category{
			ID:        len(s.categories) + 1,
			Name:      name,
			CreatedAt: created,
		})
	}
	return s
}

func (s *Store) GetUser(_ context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
	}
	return &u, nil
}

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) || strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("user %q: %w", user.Username, models.ErrConflict)
		}
	}
	s.nextUserID++
	now := s.now()
	user.ID = s.nextUserID
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *Store) UpdateUserSettings(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return fmt.Errorf("user %d: %w", user.ID, models.ErrNotFound)
	}
	for id, u := range s.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return fmt.Errorf("email for user %d: %w", user.ID, models.ErrConflict)
		}
	}
	current.Email = user.Email
	current.NotificationsEnabled = user.NotificationsEnabled
	current.UpdatedAt = s.now()
	s.users[user.ID] = current
	user.UpdatedAt = current.UpdatedAt
	return nil
}

func (s *Store) AllCategories(_ context.Context) ([]models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.categories), nil
}

func (s *Store) GetCategory(_ context.Context, categoryID int) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.category(categoryID)
	if !ok {
		return nil, fmt.Errorf("category %d: %w", categoryID, models.ErrNotFound)
	}
	return cat, nil
}

func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.category(expense.CategoryID); !ok {
		return fmt.Errorf("category %d: %w", expense.CategoryID, models.ErrNotFound)
	}
	s.nextExpenseID++
	expense.ID = s.nextExpenseID
	expense.Date = models.Day(expense.Date)
	expense.CreatedAt = s.now()
	stored := *expense
	stored.Category = nil
	s.expenses = append(s.expenses, stored)
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, userID, expenseID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.expenses, func(e models.Expense) bool {
		return e.ID == expenseID && e.UserID == userID
	})
	if i < 0 {
		return fmt.Errorf("expense %d: %w", expenseID, models.ErrNotFound)
	}
	s.expenses = slices.Delete(s.expenses, i, i+1)
	return nil
}

func (s *Store) ListExpenses(_ context.Context, userID int64, limit int) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Expense
	for _, e := range s.expenses {
		if e.UserID == userID {
			out = append(out, s.withCategory(e))
		}
	}
	slices.SortStableFunc(out, func(a, b models.Expense) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ExpensesForUserInPeriod(_ context.Context, userID int64, period models.Period) ([]models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Expense
	for _, e := range s.expenses {
		if e.UserID == userID && period.Contains(e.Date) {
			out = append(out, s.withCategory(e))
		}
	}
	return out, nil
}

func (s *Store) UpsertBudget(_ context.Context, budget *models.Budget) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.category(budget.CategoryID); !ok {
		return false, fmt.Errorf("category %d: %w", budget.CategoryID, models.ErrNotFound)
	}
	key := budgetKey{userID: budget.UserID, categoryID: budget.CategoryID, period: budget.Period}
	now := s.now()
	existing, ok := s.budgets[key]
	if ok {
		existing.Amount = budget.Amount
		existing.AlertThreshold = budget.AlertThreshold
		existing.UpdatedAt = now
		s.budgets[key] = existing
		budget.ID = existing.ID
		budget.CreatedAt = existing.CreatedAt
		budget.UpdatedAt = now
		return false, nil
	}

	s.nextBudgetID++
	budget.ID = s.nextBudgetID
	budget.CreatedAt = now
	budget.UpdatedAt = now
	stored := *budget
	stored.Category = nil
	s.budgets[key] = stored
	return true, nil
}

func (s *Store) BudgetForUserCategoryPeriod(_ context.Context, userID int64, categoryID int, period models.Period) (*models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[budgetKey{userID: userID, categoryID: categoryID, period: period}]
	if !ok {
		return nil, fmt.Errorf("budget for category %d in %s: %w", categoryID, period, models.ErrNotFound)
	}
	b.Category, _ = s.category(b.CategoryID)
	return &b, nil
}

func (s *Store) BudgetsForUserPeriod(_ context.Context, userID int64, period models.Period) ([]models.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Budget
	for key, b := range s.budgets {
		if key.userID == userID && key.period == period {
			b.Category, _ = s.category(b.CategoryID)
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b models.Budget) int { return a.CategoryID - b.CategoryID })
	return out, nil
}

// InsertAlertIfNoneUnread performs the unread check and the insert under
// one lock, so concurrent evaluators create at most one alert.
func (s *Store) InsertAlertIfNoneUnread(_ context.Context, alert *models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.alerts {
		if a.UserID == alert.UserID && a.CategoryID == alert.CategoryID && !a.IsRead {
			return fmt.Errorf("unread alert %d exists: %w", a.ID, models.ErrConflict)
		}
	}
	s.nextAlertID++
	alert.ID = s.nextAlertID
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = s.now()
	}
	alert.IsRead = false
	stored := *alert
	stored.Category = nil
	s.alerts = append(s.alerts, stored)
	return nil
}

func (s *Store) UnreadAlertsForUserCategory(_ context.Context, userID int64, categoryID int) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterAlerts(func(a models.Alert) bool {
		return a.UserID == userID && a.CategoryID == categoryID && !a.IsRead
	}), nil
}

func (s *Store) ListAlerts(_ context.Context, userID int64, unreadOnly bool) ([]models.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterAlerts(func(a models.Alert) bool {
		return a.UserID == userID && (!unreadOnly || !a.IsRead)
	}), nil
}

func (s *Store) MarkAlertRead(_ context.Context, userID, alertID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alerts {
		if s.alerts[i].ID == alertID && s.alerts[i].UserID == userID {
			s.alerts[i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("alert %d: %w", alertID, models.ErrNotFound)
}

// filterAlerts returns matches newest first. Callers hold the lock.
func (s *Store) filterAlerts(keep func(models.Alert) bool) []models.Alert {
	var out []models.Alert
	for i := len(s.alerts) - 1; i >= 0; i-- {
		a := s.alerts[i]
		if keep(a) {
			a.Category, _ = s.category(a.CategoryID)
			out = append(out, a)
		}
	}
	return out
}

func (s *Store) withCategory(e models.Expense) models.Expense {
	e.Category, _ = s.category(e.CategoryID)
	return e
}

func (s *Store) category(id int) (*models.Category, bool) {
	if id <= 0 || id > len(s.categories) {
		return nil, false
	}
	c := s.categories[id-1]
	return &c, true
}
