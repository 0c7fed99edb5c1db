package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// BudgetRepository handles budget database operations.
type BudgetRepository struct {
	db database.PGXDB
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(db database.PGXDB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Upsert creates the budget for (user, category, month, year) or overwrites
// its amount and threshold. It reports whether a new row was inserted.
func (r *BudgetRepository) Upsert(ctx context.Context, budget *models.Budget) (bool, error) {
	var inserted bool
	err := r.db.QueryRow(ctx, `
		INSERT INTO budgets (user_id, category_id, amount, month, year, alert_threshold)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, category_id, month, year) DO UPDATE
		SET amount = EXCLUDED.amount,
		    alert_threshold = EXCLUDED.alert_threshold,
		    updated_at = NOW()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted
	`, budget.UserID, budget.CategoryID, budget.Amount,
		int(budget.Period.Month), budget.Period.Year, budget.AlertThreshold,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt, &inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert budget: %w", err)
	}
	return inserted, nil
}

// GetByUserCategoryPeriod retrieves the budget for one category and period.
func (r *BudgetRepository) GetByUserCategoryPeriod(
	ctx context.Context,
	userID int64,
	categoryID int,
	period models.Period,
) (*models.Budget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.id, b.user_id, b.category_id, b.amount, b.month, b.year, b.alert_threshold,
		       b.created_at, b.updated_at, c.id, c.name, c.created_at
		FROM budgets b
		JOIN categories c ON b.category_id = c.id
		WHERE b.user_id = $1 AND b.category_id = $2 AND b.month = $3 AND b.year = $4
	`, userID, categoryID, int(period.Month), period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget: %w", err)
	}
	defer rows.Close()

	budgets, err := scanBudgets(rows)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, fmt.Errorf("failed to get budget: %w", models.ErrNotFound)
	}
	return &budgets[0], nil
}

// GetByUserPeriod retrieves all of a user's budgets for a period.
func (r *BudgetRepository) GetByUserPeriod(ctx context.Context, userID int64, period models.Period) ([]models.Budget, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.id, b.user_id, b.category_id, b.amount, b.month, b.year, b.alert_threshold,
		       b.created_at, b.updated_at, c.id, c.name, c.created_at
		FROM budgets b
		JOIN categories c ON b.category_id = c.id
		WHERE b.user_id = $1 AND b.month = $2 AND b.year = $3
		ORDER BY b.category_id
	`, userID, int(period.Month), period.Year)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer rows.Close()

	return scanBudgets(rows)
}

func scanBudgets(rows pgx.Rows) ([]models.Budget, error) {
	var budgets []models.Budget
	for rows.Next() {
		var b models.Budget
		var cat models.Category
		var month int
		err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Amount, &month, &b.Period.Year,
			&b.AlertThreshold, &b.CreatedAt, &b.UpdatedAt,
			&cat.ID, &cat.Name, &cat.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}
		b.Period.Month = time.Month(month)
		b.Category = &cat
		budgets = append(budgets, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budgets: %w", err)
	}
	return budgets, nil
}
