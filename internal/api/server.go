// Package api exposes the budget tracker over a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/yelinaung/budget-tracker/internal/logger"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
	"gitlab.com/yelinaung/budget-tracker/internal/tracker"
)

// UserIDHeader carries the authenticated principal set by the fronting
// auth layer.
const UserIDHeader = "X-User-ID"

type ctxKey struct{}

// Server holds HTTP handlers over a tracker.Service.
type Server struct {
	svc *tracker.Service
}

// NewServer creates a Server.
func NewServer(svc *tracker.Service) *Server {
	return &Server{svc: svc}
}

// Handler returns the traced router.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.Routes(), "budget-tracker")
}

// Routes builds the chi router without tracing.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		api.Post("/users", s.registerUser)

		api.Group(func(authed chi.Router) {
			authed.Use(s.requireUser)

			authed.Get("/me", s.getMe)
			authed.Put("/me/settings", s.updateSettings)

			authed.Get("/expenses", s.listExpenses)
			authed.Post("/expenses", s.createExpense)
			authed.Delete("/expenses/{id}", s.deleteExpense)

			authed.Get("/budgets", s.listBudgets)
			authed.Post("/budgets", s.upsertBudget)

			authed.Get("/categories", s.listCategories)
			authed.Post("/categories/suggest", s.suggestCategory)
			authed.Post("/categories/{id}/evaluate", s.evaluateCategory)

			authed.Get("/reports", s.monthlyReport)
			authed.Get("/reports/chart.png", s.reportChart)
			authed.Get("/dashboard", s.dashboard)

			authed.Get("/alerts", s.listAlerts)
			authed.Post("/alerts/{id}/mark_read", s.markAlertRead)
		})
	})

	return r
}

// requireUser resolves X-User-ID to an existing user.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(UserIDHeader))
		userID, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || userID <= 0 {
			writeError(w, http.StatusUnauthorized, "missing or invalid "+UserIDHeader)
			return
		}

		if _, err := s.svc.GetUser(r.Context(), userID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unknown user")
				return
			}
			writeServiceError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, userID)))
	})
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(ctxKey{}).(int64)
	return id
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		logger.Log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
