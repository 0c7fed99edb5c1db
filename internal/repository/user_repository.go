package repository

import (
	"context"

	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

// UserRepository handles user database operations.
type UserRepository struct {
	db database.PGXDB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db database.PGXDB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and fills in its ID and timestamps. A taken username
// or email returns models.ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (username, email, notifications_enabled)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, user.Username, user.Email, user.NotificationsEnabled,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return wrapErr("failed to create user", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, email, notifications_enabled, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Email, &u.NotificationsEnabled, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, wrapErr("failed to get user", err)
	}
	return &u, nil
}

// UpdateSettings stores the email and notification opt-in.
func (r *UserRepository) UpdateSettings(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET email = $2, notifications_enabled = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`, user.ID, user.Email, user.NotificationsEnabled).Scan(&user.UpdatedAt)
	if err != nil {
		return wrapErr("failed to update user settings", err)
	}
	return nil
}
