package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// AlertRepository handles alert database operations.
type AlertRepository struct {
	db database.PGXDB
}

// NewAlertRepository creates a new AlertRepository.
func NewAlertRepository(db database.PGXDB) *AlertRepository {
	return &AlertRepository{db: db}
}

// InsertIfNoneUnread stores the alert unless the user already has an unread
// alert for the category, in which case models.ErrConflict is returned. The
// partial unique index on unread alerts makes this safe under concurrency.
// A zero CreatedAt is filled with the current time.
func (r *AlertRepository) InsertIfNoneUnread(ctx context.Context, alert *models.Alert) error {
	createdAt := alert.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO alerts (user_id, category_id, kind, message, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, category_id) WHERE NOT is_read DO NOTHING
		RETURNING id, created_at, is_read
	`, alert.UserID, alert.CategoryID, string(alert.Kind), alert.Message, createdAt,
	).Scan(&alert.ID, &alert.CreatedAt, &alert.IsRead)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("unread alert already exists: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// UnreadForUserCategory retrieves unread alerts for one category.
func (r *AlertRepository) UnreadForUserCategory(ctx context.Context, userID int64, categoryID int) ([]models.Alert, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.user_id, a.category_id, a.kind, a.message, a.created_at, a.is_read,
		       c.id, c.name, c.created_at
		FROM alerts a
		JOIN categories c ON a.category_id = c.id
		WHERE a.user_id = $1 AND a.category_id = $2 AND NOT a.is_read
		ORDER BY a.created_at DESC, a.id DESC
	`, userID, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query unread alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// List retrieves a user's alerts newest first, optionally unread only.
func (r *AlertRepository) List(ctx context.Context, userID int64, unreadOnly bool) ([]models.Alert, error) {
	rows, err := r.db.Query(ctx, `
		SELECT a.id, a.user_id, a.category_id, a.kind, a.message, a.created_at, a.is_read,
		       c.id, c.name, c.created_at
		FROM alerts a
		JOIN categories c ON a.category_id = c.id
		WHERE a.user_id = $1 AND ($2::boolean IS FALSE OR NOT a.is_read)
		ORDER BY a.created_at DESC, a.id DESC
	`, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// MarkRead flips one of the user's alerts to read. Marking an already read
// alert succeeds; an unknown or foreign alert returns models.ErrNotFound.
func (r *AlertRepository) MarkRead(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE alerts SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark alert read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to mark alert %d read: %w", id, models.ErrNotFound)
	}
	return nil
}

func scanAlerts(rows pgx.Rows) ([]models.Alert, error) {
	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		var cat models.Category
		var kind string
		err := rows.Scan(&a.ID, &a.UserID, &a.CategoryID, &kind, &a.Message, &a.CreatedAt, &a.IsRead,
			&cat.ID, &cat.Name, &cat.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		a.Kind = models.AlertKind(kind)
		a.Category = &cat
		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alerts: %w", err)
	}
	return alerts, nil
}
