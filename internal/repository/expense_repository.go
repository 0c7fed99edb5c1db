package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense.
func (r *ExpenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (user_id, category_id, amount, description, spent_on, shared_with)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, expense.UserID, expense.CategoryID, expense.Amount, expense.Description,
		expense.Date, expense.SharedWith,
	).Scan(&expense.ID, &expense.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// Delete removes one of the user's expenses. Another user's expense is
// reported as not found.
func (r *ExpenseRepository) Delete(ctx context.Context, userID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete expense %d: %w", id, models.ErrNotFound)
	}
	return nil
}

// GetByUserID retrieves a user's expenses, newest first.
func (r *ExpenseRepository) GetByUserID(ctx context.Context, userID int64, limit int) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.id, e.user_id, e.category_id, e.amount, e.description, e.spent_on, e.shared_with, e.created_at,
		       c.id, c.name, c.created_at
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.user_id = $1
		ORDER BY e.spent_on DESC, e.id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// GetByUserAndPeriod retrieves a user's expenses dated inside period.
func (r *ExpenseRepository) GetByUserAndPeriod(ctx context.Context, userID int64, period models.Period) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT e.id, e.user_id, e.category_id, e.amount, e.description, e.spent_on, e.shared_with, e.created_at,
		       c.id, c.name, c.created_at
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.user_id = $1 AND e.spent_on >= $2 AND e.spent_on < $3
		ORDER BY e.spent_on, e.id
	`, userID, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses by period: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

func scanExpenses(rows pgx.Rows) ([]models.Expense, error) {
	var expenses []models.Expense
	for rows.Next() {
		var exp models.Expense
		var cat models.Category
		err := rows.Scan(&exp.ID, &exp.UserID, &exp.CategoryID, &exp.Amount, &exp.Description,
			&exp.Date, &exp.SharedWith, &exp.CreatedAt,
			&cat.ID, &cat.Name, &cat.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		exp.Date = models.Day(exp.Date)
		exp.Category = &cat
		expenses = append(expenses, exp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}
	return expenses, nil
}
