// Package models defines the domain entities for the budget tracker.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAlertThreshold is the budget consumption percent at which alerts fire
// when a budget is submitted without an explicit threshold.
var DefaultAlertThreshold = decimal.NewFromInt(90)

// DefaultCategories are seeded at startup. Categories are shared by all users.
var DefaultCategories = []string{
	"Food",
	"Transport",
	"Entertainment",
	"Housing",
	"Utilities",
	"Healthcare",
	"Shopping",
	"Education",
	"Travel",
	"Other",
}

// Field length limits enforced on user supplied text.
const (
	MaxDescriptionLength = 200
	MaxSharedWithLength  = 200
	MaxUsernameLength    = 80
	MaxEmailLength       = 120
)

// Stored amounts are NUMERIC(12, 2) and thresholds NUMERIC(7, 2).
var (
	maxAmount    = decimal.New(1, 10)
	maxThreshold = decimal.New(1, 5)
)

// checkScale rejects values with more than two decimal places or at or above limit.
func checkScale(field string, d, limit decimal.Decimal) error {
	if !d.Equal(d.Round(2)) {
		return &ValidationError{Field: field, Reason: "must have at most 2 decimal places"}
	}
	if d.Abs().GreaterThanOrEqual(limit) {
		return &ValidationError{Field: field, Reason: "must be less than " + limit.String()}
	}
	return nil
}

// User is an account that owns expenses and budgets.
type User struct {
	ID                   int64
	Username             string
	Email                string
	NotificationsEnabled bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Validate checks the fields required to register a user.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return &ValidationError{Field: "username", Reason: "is required"}
	}
	if len(u.Username) > MaxUsernameLength {
		return &ValidationError{Field: "username", Reason: fmt.Sprintf("must be at most %d characters", MaxUsernameLength)}
	}
	return ValidateEmail(u.Email)
}

// ValidateEmail performs the minimal shape check used for notification addresses.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Reason: "is required"}
	}
	if len(email) > MaxEmailLength {
		return &ValidationError{Field: "email", Reason: fmt.Sprintf("must be at most %d characters", MaxEmailLength)}
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return &ValidationError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

// Category is a global expense label.
type Category struct {
	ID        int
	Name      string
	CreatedAt time.Time
}

// Expense is a single spend entry. Date is a calendar day at midnight UTC.
type Expense struct {
	ID          int64
	UserID      int64
	CategoryID  int
	Category    *Category
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	// SharedWith is free text naming the people the expense was split with.
	// It is stored and returned but never used in any computation.
	SharedWith string
	CreatedAt  time.Time
}

// Validate rejects expenses the engine must never see.
func (e *Expense) Validate() error {
	if !e.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if err := checkScale("amount", e.Amount, maxAmount); err != nil {
		return err
	}
	if e.CategoryID <= 0 {
		return &ValidationError{Field: "category_id", Reason: "is required"}
	}
	if e.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if len(e.Description) > MaxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", MaxDescriptionLength)}
	}
	if len(e.SharedWith) > MaxSharedWithLength {
		return &ValidationError{Field: "shared_with", Reason: fmt.Sprintf("must be at most %d characters", MaxSharedWithLength)}
	}
	return nil
}

// Budget caps spending for one category in one period.
type Budget struct {
	ID             int64
	UserID         int64
	CategoryID     int
	Category       *Category
	Amount         decimal.Decimal
	Period         Period
	AlertThreshold decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Validate checks amount, period and threshold ranges.
func (b *Budget) Validate() error {
	if b.CategoryID <= 0 {
		return &ValidationError{Field: "category_id", Reason: "is required"}
	}
	if b.Amount.IsNegative() {
		return &ValidationError{Field: "amount", Reason: "must not be negative"}
	}
	if err := checkScale("amount", b.Amount, maxAmount); err != nil {
		return err
	}
	if b.AlertThreshold.IsNegative() {
		return &ValidationError{Field: "alert_threshold", Reason: "must not be negative"}
	}
	if err := checkScale("alert_threshold", b.AlertThreshold, maxThreshold); err != nil {
		return err
	}
	return b.Period.Validate()
}

// AlertKind distinguishes approaching from exceeding a budget.
type AlertKind string

// Alert kinds.
const (
	AlertKindWarning  AlertKind = "WARNING"
	AlertKindExceeded AlertKind = "EXCEEDED"
)

// Alert is a generated fact: spending crossed a budget threshold.
// Only IsRead ever changes after creation.
type Alert struct {
	ID         int64
	UserID     int64
	CategoryID int
	Category   *Category
	Kind       AlertKind
	Message    string
	CreatedAt  time.Time
	IsRead     bool
}

// DailyAmount is the total spent on one calendar day.
type DailyAmount struct {
	Day    time.Time
	Amount decimal.Decimal
}

// Day truncates t to its calendar date at midnight UTC, keeping the
// year/month/day as seen in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
