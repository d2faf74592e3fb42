package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/repositories"
	"go-todo-api/backend/internal/services"
	"go-todo-api/backend/testutil"
)

func TestTodoService_RejectsBlankTitle(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewTodoRepository(db)
	svc := services.NewTodoService(repo)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := svc.CreateTodo(ctx, title, nil)
		var vErr *services.ValidationError
		require.True(t, errors.As(err, &vErr), "title %q should be rejected", title)
		assert.Equal(t, "title", vErr.Field)
	}

	// 行は書き込まれていない
	todos, err := svc.GetTodos(ctx)
	require.NoError(t, err)
	assert.Empty(t, todos)
}

func TestTodoService_TrimsTitle(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	svc := services.NewTodoService(repositories.NewTodoRepository(db))
	ctx := context.Background()

	created, err := svc.CreateTodo(ctx, "  Buy milk  ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", created.Title)

	updated, err := svc.UpdateTodo(ctx, created.ID, " Buy bread ", true, nil)
	require.NoError(t, err)
	assert.Equal(t, "Buy bread", updated.Title)
	assert.True(t, updated.Completed)

	_, err = svc.UpdateTodo(ctx, created.ID, " ", false, nil)
	var vErr *services.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestCategoryService_DefaultColorOnCreate(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	svc := services.NewCategoryService(repositories.NewCategoryRepository(db))
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, " Work ", nil)
	require.NoError(t, err)
	assert.Equal(t, "Work", created.Name)
	require.NotNil(t, created.Color)
	assert.Equal(t, models.DefaultCategoryColor, *created.Color)

	blank, err := svc.CreateCategory(ctx, "Home", testutil.Ptr(""))
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategoryColor, *blank.Color)

	_, err = svc.CreateCategory(ctx, "  ", nil)
	var vErr *services.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "name", vErr.Field)

	_, err = svc.UpdateCategory(ctx, created.ID, "", nil)
	assert.True(t, errors.As(err, &vErr))
}
