package tracker

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/budget-tracker/internal/logger"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

const instrumentationName = "gitlab.com/yelinaung/budget-tracker/internal/tracker"

// DefaultCurrencySymbol prefixes amounts in alert messages.
const DefaultCurrencySymbol = "₹"

var hundred = decimal.NewFromInt(100)

// Evaluator decides whether spending in a category warrants a new alert.
type Evaluator struct {
	store          Store
	aggregator     *Aggregator
	sink           NotificationSink
	clock          Clock
	currencySymbol string

	tracer      trace.Tracer
	created     metric.Int64Counter
	suppressed  metric.Int64Counter
	notifyFails metric.Int64Counter
}

// EvaluatorOption customizes an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithCurrencySymbol sets the prefix used when formatting amounts.
func WithCurrencySymbol(symbol string) EvaluatorOption {
	return func(e *Evaluator) {
		e.currencySymbol = symbol
	}
}

// NewEvaluator wires an Evaluator. A nil sink disables notifications.
func NewEvaluator(store Store, aggregator *Aggregator, sink NotificationSink, clock Clock, opts ...EvaluatorOption) *Evaluator {
	e := &Evaluator{
		store:          store,
		aggregator:     aggregator,
		sink:           sink,
		clock:          clock,
		currencySymbol: DefaultCurrencySymbol,
		tracer:         otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}

	meter := otel.Meter(instrumentationName)
	e.created = int64Counter(meter, "budget.alerts.created", "Alerts persisted by the evaluator")
	e.suppressed = int64Counter(meter, "budget.alerts.suppressed", "Threshold breaches skipped because an unread alert exists")
	e.notifyFails = int64Counter(meter, "budget.notifications.failed", "Notification sink failures")
	return e
}

func int64Counter(meter metric.Meter, name, description string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

// Evaluate compares the current period's spend in a category against its
// budget and creates an alert when the threshold is crossed and no unread
// alert exists for the category. It returns nil when no alert was created.
func (e *Evaluator) Evaluate(ctx context.Context, userID int64, categoryID int) (*models.Alert, error) {
	ctx, span := e.tracer.Start(ctx, "tracker.Evaluate", trace.WithAttributes(
		attribute.Int("category_id", categoryID),
	))
	defer span.End()

	now := e.clock.Now()
	period := models.PeriodOf(now)
	log := logger.Log.With().
		Str("user_hash", logger.HashUserID(userID)).
		Int("category_id", categoryID).
		Str("period", period.String()).
		Logger()

	budget, err := e.store.BudgetForUserCategoryPeriod(ctx, userID, categoryID, period)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}

	if !budget.Amount.IsPositive() {
		log.Debug().Msg("Skipping evaluation for non-positive budget")
		return nil, nil
	}

	spent, err := e.aggregator.MonthlyTotal(ctx, userID, categoryID, period)
	if err != nil {
		return nil, err
	}

	percent := spent.Div(budget.Amount).Mul(hundred)
	if percent.LessThan(budget.AlertThreshold) {
		return nil, nil
	}

	unread, err := e.store.UnreadAlertsForUserCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unread alerts: %w", err)
	}
	if len(unread) > 0 {
		e.suppressed.Add(ctx, 1)
		log.Debug().Int64("alert_id", unread[0].ID).Msg("Unread alert exists, suppressing")
		return nil, nil
	}

	categoryName := fmt.Sprintf("category %d", categoryID)
	cat, err := e.store.GetCategory(ctx, categoryID)
	if err == nil {
		categoryName = cat.Name
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}

	kind, message := e.formatMessage(categoryName, percent, spent, budget.Amount)
	alert := &models.Alert{
		UserID:     userID,
		CategoryID: categoryID,
		Category:   cat,
		Kind:       kind,
		Message:    message,
		CreatedAt:  now,
	}

	err = e.store.InsertAlertIfNoneUnread(ctx, alert)
	if errors.Is(err, models.ErrConflict) {
		e.suppressed.Add(ctx, 1)
		log.Debug().Msg("Concurrent evaluation already created an alert")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	e.created.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
	log.Info().
		Int64("alert_id", alert.ID).
		Str("kind", string(kind)).
		Str("percent", percent.StringFixed(1)).
		Msg("Budget alert created")

	e.notify(ctx, userID, alert)
	return alert, nil
}

// notify delivers the alert if the user opted in. Failures are logged and
// swallowed; the alert row already exists.
func (e *Evaluator) notify(ctx context.Context, userID int64, alert *models.Alert) {
	if e.sink == nil {
		return
	}

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		logger.Log.Warn().Err(err).
			Str("user_hash", logger.HashUserID(userID)).
			Msg("Could not load user for notification")
		return
	}
	if !user.NotificationsEnabled {
		return
	}

	if err := e.sink.Send(ctx, user.Email, alert.Message); err != nil {
		e.notifyFails.Add(ctx, 1)
		var nerr *models.NotificationError
		if !errors.As(err, &nerr) {
			err = &models.NotificationError{Sink: "unknown", Err: err}
		}
		logger.Log.Warn().Err(err).
			Str("user_hash", logger.HashUserID(userID)).
			Str("email", logger.MaskEmail(user.Email)).
			Int64("alert_id", alert.ID).
			Msg("Failed to send alert notification")
	}
}

func (e *Evaluator) formatMessage(category string, percent, spent, budget decimal.Decimal) (models.AlertKind, string) {
	sym := e.currencySymbol
	if percent.GreaterThanOrEqual(hundred) {
		return models.AlertKindExceeded, fmt.Sprintf(
			"ALERT: You've exceeded your budget for %s! (%s%s / %s%s)",
			category, sym, spent.StringFixed(2), sym, budget.StringFixed(2),
		)
	}
	return models.AlertKindWarning, fmt.Sprintf(
		"WARNING: You've used %s%% of your %s budget (%s%s / %s%s)",
		percent.StringFixed(1), category, sym, spent.StringFixed(2), sym, budget.StringFixed(2),
	)
}
