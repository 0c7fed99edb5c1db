package repository

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/budget-tracker/internal/database"
	"gitlab.com/yelinaung/budget-tracker/internal/models"
)

var userSeq atomic.Int64

func createTestUser(t *testing.T, db database.PGXDB) *models.User {
	t.Helper()

	n := userSeq.Add(1)
	user := &models.User{
		Username:             fmt.Sprintf("user-%d", n),
		Email:                fmt.Sprintf("user-%d@example.com", n),
		NotificationsEnabled: true,
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}

func foodCategory(t *testing.T, db database.PGXDB) models.Category {
	t.Helper()

	cats, err := NewCategoryRepository(db).GetAll(context.Background())
	require.NoError(t, err)
	for _, c := range cats {
		if c.Name == "Food" {
			return c
		}
	}
	t.Fatal("Food category not seeded")
	return models.Category{}
}
