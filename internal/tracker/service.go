package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/budget-tracker/internal/logger"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// DefaultExpenseListLimit bounds ListExpenses when the caller passes no limit.
const DefaultExpenseListLimit = 500

// ExpenseInput is a submitted expense before validation.
type ExpenseInput struct {
	Amount      decimal.Decimal
	Description string
	CategoryID  int
	// Date is optional; the current day is used when zero.
	Date       time.Time
	SharedWith string
}

// BudgetInput is a submitted budget before validation.
type BudgetInput struct {
	CategoryID int
	Amount     decimal.Decimal
	Month      int
	Year       int
	// AlertThreshold is optional; models.DefaultAlertThreshold is used when nil.
	AlertThreshold *decimal.Decimal
}

// SettingsInput changes a user's notification settings. A nil Email keeps
// the current address.
type SettingsInput struct {
	Email                *string
	NotificationsEnabled bool
}

// Service is the surface exposed to the presentation layer. Every call takes
// the authenticated user id explicitly.
type Service struct {
	store      Store
	evaluator  *Evaluator
	reports    *ReportBuilder
	aggregator *Aggregator
	suggester  CategorySuggester
	clock      Clock
}

// Config groups Service dependencies.
type Config struct {
	Store          Store
	Sink           NotificationSink
	Clock          Clock
	Suggester      CategorySuggester
	CurrencySymbol string
}

// NewService wires the aggregator, evaluator and report builder over one store.
func NewService(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	var opts []EvaluatorOption
	if cfg.CurrencySymbol != "" {
		opts = append(opts, WithCurrencySymbol(cfg.CurrencySymbol))
	}

	agg := NewAggregator(cfg.Store)
	return &Service{
		store:      cfg.Store,
		aggregator: agg,
		evaluator:  NewEvaluator(cfg.Store, agg, cfg.Sink, clock, opts...),
		reports:    NewReportBuilder(cfg.Store, agg, clock),
		suggester:  cfg.Suggester,
		clock:      clock,
	}
}

// Aggregator exposes the aggregation engine.
func (s *Service) Aggregator() *Aggregator {
	return s.aggregator
}

// EvaluateAndMaybeAlert runs alert evaluation for one category.
func (s *Service) EvaluateAndMaybeAlert(ctx context.Context, userID int64, categoryID int) (*models.Alert, error) {
	return s.evaluator.Evaluate(ctx, userID, categoryID)
}

// MonthlyReport builds the report for a period (nil means current).
func (s *Service) MonthlyReport(ctx context.Context, userID int64, period *models.Period) (*Report, error) {
	return s.reports.MonthlyReport(ctx, userID, period)
}

// DashboardSummary builds the current-period overview.
func (s *Service) DashboardSummary(ctx context.Context, userID int64) (*Dashboard, error) {
	return s.reports.DashboardSummary(ctx, userID)
}

// RegisterUser creates a user with notifications enabled unless disabled.
func (s *Service) RegisterUser(ctx context.Context, username, email string, notificationsEnabled bool) (*models.User, error) {
	user := &models.User{
		Username:             strings.TrimSpace(username),
		Email:                strings.TrimSpace(email),
		NotificationsEnabled: notificationsEnabled,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, &models.ValidationError{Field: "username", Reason: "username or email already registered"}
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	logger.Log.Info().Str("user_hash", logger.HashUserID(user.ID)).Msg("User registered")
	return user, nil
}

// GetUser returns the user or models.ErrNotFound.
func (s *Service) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.store.GetUser(ctx, userID)
}

// UpdateSettings changes email and notification opt-in.
func (s *Service) UpdateSettings(ctx context.Context, userID int64, in SettingsInput) (*models.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.NotificationsEnabled = in.NotificationsEnabled
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if err := models.ValidateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}

	if err := s.store.UpdateUserSettings(ctx, user); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, &models.ValidationError{Field: "email", Reason: "already in use by another account"}
		}
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return user, nil
}

// Categories lists all categories.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.store.AllCategories(ctx)
}

// AddExpense validates and stores an expense, then evaluates its category.
// The returned alert is nil when no new alert fired. An evaluation failure is
// logged and does not fail the call since the expense is already stored.
func (s *Service) AddExpense(ctx context.Context, userID int64, in ExpenseInput) (*models.Expense, *models.Alert, error) {
	date := in.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	expense := &models.Expense{
		UserID:      userID,
		CategoryID:  in.CategoryID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Date:        models.Day(date),
		SharedWith:  strings.TrimSpace(in.SharedWith),
	}
	if err := expense.Validate(); err != nil {
		return nil, nil, err
	}

	cat, err := s.lookupCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, nil, err
	}
	expense.Category = cat

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, nil, fmt.Errorf("failed to add expense: %w", err)
	}

	logger.Log.Debug().
		Str("user_hash", logger.HashUserID(userID)).
		Int64("expense_id", expense.ID).
		Int("category_id", expense.CategoryID).
		Str("description", logger.SanitizeDescription(expense.Description)).
		Msg("Expense added")

	return expense, s.evaluateAfterMutation(ctx, userID, expense.CategoryID), nil
}

// DeleteExpense removes one of the user's expenses. Alerts are not revisited.
func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID int64) error {
	return s.store.DeleteExpense(ctx, userID, expenseID)
}

// ListExpenses returns the user's expenses newest first.
func (s *Service) ListExpenses(ctx context.Context, userID int64, limit int) ([]models.Expense, error) {
	if limit <= 0 {
		limit = DefaultExpenseListLimit
	}
	return s.store.ListExpenses(ctx, userID, limit)
}

// UpsertBudget creates or updates the budget for (category, month, year)
// and evaluates that category. created reports whether a new row was made.
func (s *Service) UpsertBudget(ctx context.Context, userID int64, in BudgetInput) (budget *models.Budget, created bool, alert *models.Alert, err error) {
	threshold := models.DefaultAlertThreshold
	if in.AlertThreshold != nil {
		threshold = *in.AlertThreshold
	}

	budget = &models.Budget{
		UserID:         userID,
		CategoryID:     in.CategoryID,
		Amount:         in.Amount,
		Period:         models.Period{Month: time.Month(in.Month), Year: in.Year},
		AlertThreshold: threshold,
	}
	if err := budget.Validate(); err != nil {
		return nil, false, nil, err
	}

	cat, err := s.lookupCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, false, nil, err
	}
	budget.Category = cat

	created, err = s.store.UpsertBudget(ctx, budget)
	if err != nil {
		return nil, false, nil, fmt.Errorf("failed to save budget: %w", err)
	}

	logger.Log.Debug().
		Str("user_hash", logger.HashUserID(userID)).
		Int("category_id", budget.CategoryID).
		Str("period", budget.Period.String()).
		Bool("created", created).
		Msg("Budget saved")

	return budget, created, s.evaluateAfterMutation(ctx, userID, budget.CategoryID), nil
}

// ListBudgets returns the user's budgets for a period (nil means current).
func (s *Service) ListBudgets(ctx context.Context, userID int64, period *models.Period) ([]models.Budget, error) {
	p := currentPeriod(s.clock)
	if period != nil {
		if err := period.Validate(); err != nil {
			return nil, err
		}
		p = *period
	}
	return s.store.BudgetsForUserPeriod(ctx, userID, p)
}

// ListAlerts returns alerts newest first.
func (s *Service) ListAlerts(ctx context.Context, userID int64, unreadOnly bool) ([]models.Alert, error) {
	return s.store.ListAlerts(ctx, userID, unreadOnly)
}

// MarkAlertRead flips an alert to read. Unknown ids return models.ErrNotFound
// and change nothing.
func (s *Service) MarkAlertRead(ctx context.Context, userID, alertID int64) error {
	return s.store.MarkAlertRead(ctx, userID, alertID)
}

// SuggestCategory proposes a category for a description. It returns
// ErrSuggestionsDisabled when no suggester is configured.
func (s *Service) SuggestCategory(ctx context.Context, description string) (*Suggestion, error) {
	if s.suggester == nil {
		return nil, ErrSuggestionsDisabled
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, &models.ValidationError{Field: "description", Reason: "is required"}
	}

	categories, err := s.store.AllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}

	suggestion, err := s.suggester.SuggestCategory(ctx, description, names)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest category: %w", err)
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, suggestion.Category) {
			suggestion.CategoryID = c.ID
			suggestion.Category = c.Name
			break
		}
	}
	return suggestion, nil
}

// ErrSuggestionsDisabled is returned by SuggestCategory without a suggester.
var ErrSuggestionsDisabled = errors.New("category suggestions are not configured")

func (s *Service) lookupCategory(ctx context.Context, categoryID int) (*models.Category, error) {
	cat, err := s.store.GetCategory(ctx, categoryID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, &models.ValidationError{Field: "category_id", Reason: "unknown category"}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	return cat, nil
}

func (s *Service) evaluateAfterMutation(ctx context.Context, userID int64, categoryID int) *models.Alert {
	alert, err := s.evaluator.Evaluate(ctx, userID, categoryID)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("user_hash", logger.HashUserID(userID)).
			Int("category_id", categoryID).
			Msg("Budget alert evaluation failed")
		return nil
	}
	return alert
}
