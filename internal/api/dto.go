package api

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/budget-tracker/internal/models"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

type userJSON struct {
	ID                   int64  `json:"id"`
	Username             string `json:"username"`
	Email                string `json:"email"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
}

type categoryJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type expenseJSON struct {
	ID           int64       `json:"id"`
	Amount       json.Number `json:"amount"`
	Description  string      `json:"description"`
	Date         string      `json:"date"`
	CategoryID   int         `json:"category_id"`
	CategoryName string      `json:"category_name"`
	SharedWith   string      `json:"shared_with"`
}

type budgetJSON struct {
	ID             int64       `json:"id"`
	Amount         json.Number `json:"amount"`
	Month          int         `json:"month"`
	Year           int         `json:"year"`
	CategoryID     int         `json:"category_id"`
	CategoryName   string      `json:"category_name"`
	AlertThreshold json.Number `json:"alert_threshold"`
}

type alertJSON struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	Message      string `json:"message"`
	CreatedAt    string `json:"created_at"`
	IsRead       bool   `json:"is_read"`
	CategoryID   int    `json:"category_id"`
	CategoryName string `json:"category_name"`
}

type categorySpendingJSON struct {
	CategoryID int         `json:"category_id"`
	Name       string      `json:"name"`
	Spent      json.Number `json:"spent"`
	Budget     json.Number `json:"budget"`
	Remaining  json.Number `json:"remaining"`
	Percent    json.Number `json:"percent"`
}

type dailySpendingJSON struct {
	Date   string      `json:"date"`
	Amount json.Number `json:"amount"`
}

type reportJSON struct {
	Month            int                    `json:"month"`
	Year             int                    `json:"year"`
	CategorySpending []categorySpendingJSON `json:"category_spending"`
	DailySpending    []dailySpendingJSON    `json:"daily_spending"`
	TotalSpent       json.Number            `json:"total_spent"`
	TotalBudget      json.Number            `json:"total_budget"`
}

type dashboardJSON struct {
	Month            int                    `json:"month"`
	Year             int                    `json:"year"`
	CategorySpending []categorySpendingJSON `json:"category_spending"`
	TotalSpent       json.Number            `json:"total_spent"`
	Expenses         []expenseJSON          `json:"expenses"`
	Alerts           []alertJSON            `json:"alerts"`
}

type suggestionJSON struct {
	CategoryID int     `json:"category_id,omitempty"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// Request bodies.

type registerRequest struct {
	Username             string `json:"username"`
	Email                string `json:"email"`
	NotificationsEnabled *bool  `json:"notifications_enabled"`
}

type settingsRequest struct {
	Email                *string `json:"email"`
	NotificationsEnabled bool    `json:"notifications_enabled"`
}

type expenseRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CategoryID  int             `json:"category_id"`
	SharedWith  string          `json:"shared_with"`
}

type budgetRequest struct {
	CategoryID     int              `json:"category_id"`
	Amount         decimal.Decimal  `json:"amount"`
	Month          int              `json:"month"`
	Year           int              `json:"year"`
	AlertThreshold *decimal.Decimal `json:"alert_threshold"`
}

type suggestRequest struct {
	Description string `json:"description"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func categoryName(c *models.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:                   u.ID,
		Username:             u.Username,
		Email:                u.Email,
		NotificationsEnabled: u.NotificationsEnabled,
	}
}

func toExpenseJSON(e *models.Expense) expenseJSON {
	return expenseJSON{
		ID:           e.ID,
		Amount:       money(e.Amount),
		Description:  e.Description,
		Date:         e.Date.Format(dateLayout),
		CategoryID:   e.CategoryID,
		CategoryName: categoryName(e.Category),
		SharedWith:   e.SharedWith,
	}
}

func toExpensesJSON(expenses []models.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(expenses))
	for i := range expenses {
		out = append(out, toExpenseJSON(&expenses[i]))
	}
	return out
}

func toBudgetJSON(b *models.Budget) budgetJSON {
	return budgetJSON{
		ID:             b.ID,
		Amount:         money(b.Amount),
		Month:          int(b.Period.Month),
		Year:           b.Period.Year,
		CategoryID:     b.CategoryID,
		CategoryName:   categoryName(b.Category),
		AlertThreshold: money(b.AlertThreshold),
	}
}

func toAlertJSON(a *models.Alert) alertJSON {
	return alertJSON{
		ID:           a.ID,
		Kind:         string(a.Kind),
		Message:      a.Message,
		CreatedAt:    a.CreatedAt.Format(dateTimeLayout),
		IsRead:       a.IsRead,
		CategoryID:   a.CategoryID,
		CategoryName: categoryName(a.Category),
	}
}

func toAlertsJSON(alerts []models.Alert) []alertJSON {
	out := make([]alertJSON, 0, len(alerts))
	for i := range alerts {
		out = append(out, toAlertJSON(&alerts[i]))
	}
	return out
}

func toCategorySpending(rows []tracker.CategoryReport) []categorySpendingJSON {
	out := make([]categorySpendingJSON, 0, len(rows))
	for _, r := range rows {
		out = append(out, categorySpendingJSON{
			CategoryID: r.CategoryID,
			Name:       r.Name,
			Spent:      money(r.Spent),
			Budget:     money(r.Budget),
			Remaining:  money(r.Remaining),
			Percent:    json.Number(r.Percent.StringFixed(1)),
		})
	}
	return out
}

func toReportJSON(r *tracker.Report) reportJSON {
	daily := make([]dailySpendingJSON, 0, len(r.Daily))
	for _, d := range r.Daily {
		daily = append(daily, dailySpendingJSON{Date: d.Day.Format(dateLayout), Amount: money(d.Amount)})
	}
	return reportJSON{
		Month:            int(r.Period.Month),
		Year:             r.Period.Year,
		CategorySpending: toCategorySpending(r.Categories),
		DailySpending:    daily,
		TotalSpent:       money(r.TotalSpent),
		TotalBudget:      money(r.TotalBudget),
	}
}

func toDashboardJSON(d *tracker.Dashboard) dashboardJSON {
	return dashboardJSON{
		Month:            int(d.Period.Month),
		Year:             d.Period.Year,
		CategorySpending: toCategorySpending(d.Categories),
		TotalSpent:       money(d.TotalSpent),
		Expenses:         toExpensesJSON(d.Expenses),
		Alerts:           toAlertsJSON(d.Alerts),
	}
}
