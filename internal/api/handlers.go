package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"gitlab.com/yelinaung/budget-tracker/internal/charts"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	enabled := true
	if req.NotificationsEnabled != nil {
		enabled = *req.NotificationsEnabled
	}

	user, err := s.svc.RegisterUser(r.Context(), req.Username, req.Email, enabled)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserJSON(user))
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.GetUser(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(user))
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := s.svc.UpdateSettings(r.Context(), userIDFrom(r.Context()), tracker.SettingsInput{
		Email:                req.Email,
		NotificationsEnabled: req.NotificationsEnabled,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(user))
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	expenses, err := s.svc.ListExpenses(r.Context(), userIDFrom(r.Context()), limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpensesJSON(expenses))
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	in := tracker.ExpenseInput{
		Amount:      req.Amount,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		SharedWith:  req.SharedWith,
	}
	if req.Date != "" {
		date, err := time.Parse(dateLayout, req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date: expected YYYY-MM-DD")
			return
		}
		in.Date = date
	}

	expense, alert, err := s.svc.AddExpense(r.Context(), userIDFrom(r.Context()), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := struct {
		Success bool       `json:"success"`
		ID      int64      `json:"id"`
		Alert   *alertJSON `json:"alert,omitempty"`
	}{Success: true, ID: expense.ID, Alert: optionalAlert(alert)}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.DeleteExpense(r.Context(), userIDFrom(r.Context()), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Expense not found")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) listBudgets(w http.ResponseWriter, r *http.Request) {
	period, ok := queryPeriod(w, r)
	if !ok {
		return
	}

	budgets, err := s.svc.ListBudgets(r.Context(), userIDFrom(r.Context()), period)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]budgetJSON, 0, len(budgets))
	for i := range budgets {
		out = append(out, toBudgetJSON(&budgets[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) upsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	budget, created, alert, err := s.svc.UpsertBudget(r.Context(), userIDFrom(r.Context()), tracker.BudgetInput{
		CategoryID:     req.CategoryID,
		Amount:         req.Amount,
		Month:          req.Month,
		Year:           req.Year,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	resp := struct {
		Success bool       `json:"success"`
		ID      int64      `json:"id"`
		Created bool       `json:"created"`
		Alert   *alertJSON `json:"alert,omitempty"`
	}{Success: true, ID: budget.ID, Created: created, Alert: optionalAlert(alert)}
	writeJSON(w, status, resp)
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Categories(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]categoryJSON, 0, len(categories))
	for _, c := range categories {
		out = append(out, categoryJSON{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) suggestCategory(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	suggestion, err := s.svc.SuggestCategory(r.Context(), req.Description)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestionJSON{
		CategoryID: suggestion.CategoryID,
		Category:   suggestion.Category,
		Confidence: suggestion.Confidence,
		Reasoning:  suggestion.Reasoning,
	})
}

func (s *Server) evaluateCategory(w http.ResponseWriter, r *http.Request) {
	// Category ids are SERIAL, so anything beyond int32 cannot exist.
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 32)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	alert, err := s.svc.EvaluateAndMaybeAlert(r.Context(), userIDFrom(r.Context()), int(id))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := struct {
		Success bool       `json:"success"`
		Alert   *alertJSON `json:"alert,omitempty"`
	}{Success: true, Alert: optionalAlert(alert)}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) monthlyReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(report))
}

func (s *Server) reportChart(w http.ResponseWriter, r *http.Request) {
	report, ok := s.loadReport(w, r)
	if !ok {
		return
	}

	png, err := charts.CategoryPie(report)
	if errors.Is(err, charts.ErrNoSpending) {
		writeError(w, http.StatusNotFound, "no spending in this period")
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (s *Server) loadReport(w http.ResponseWriter, r *http.Request) (*tracker.Report, bool) {
	period, ok := queryPeriod(w, r)
	if !ok {
		return nil, false
	}
	report, err := s.svc.MonthlyReport(r.Context(), userIDFrom(r.Context()), period)
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return report, true
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := s.svc.DashboardSummary(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardJSON(dash))
}

func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	unreadOnly := true
	if raw := r.URL.Query().Get("unread_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid unread_only")
			return
		}
		unreadOnly = v
	}

	alerts, err := s.svc.ListAlerts(r.Context(), userIDFrom(r.Context()), unreadOnly)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAlertsJSON(alerts))
}

func (s *Server) markAlertRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.svc.MarkAlertRead(r.Context(), userIDFrom(r.Context()), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Alert not found")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func optionalAlert(a *models.Alert) *alertJSON {
	if a == nil {
		return nil
	}
	out := toAlertJSON(a)
	return &out
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// queryPeriod reads ?month&year. Both or neither must be present; neither
// means the current period.
func queryPeriod(w http.ResponseWriter, r *http.Request) (*models.Period, bool) {
	q := r.URL.Query()
	monthStr, yearStr := strings.TrimSpace(q.Get("month")), strings.TrimSpace(q.Get("year"))
	if monthStr == "" && yearStr == "" {
		return nil, true
	}
	if monthStr == "" || yearStr == "" {
		writeError(w, http.StatusBadRequest, "month and year must be given together")
		return nil, false
	}

	month, err1 := strconv.Atoi(monthStr)
	year, err2 := strconv.Atoi(yearStr)
	if err1 != nil || err2 != nil {
		writeError(w, http.StatusBadRequest, "month and year must be numbers")
		return nil, false
	}

	p, err := models.NewPeriod(month, year)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return &p, true
}
