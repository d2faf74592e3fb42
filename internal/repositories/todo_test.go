package repositories_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/repositories"
	"go-todo-api/backend/testutil"
)

func TestTodoRepository_CreateAndFind(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewTodoRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Todo{Title: "Buy milk"})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.Nil(t, created.CategoryID)
	assert.Nil(t, created.CategoryName)
	assert.False(t, created.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, created.Title, found.Title)
}

func TestTodoRepository_FindAllNewestFirst(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewTodoRepository(db)
	ctx := context.Background()

	todos, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.NotNil(t, todos)
	assert.Empty(t, todos)

	for _, title := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, &models.Todo{Title: title})
		require.NoError(t, err)
	}

	todos, err = repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, todos, 3)
	assert.Equal(t, "third", todos[0].Title)
	assert.Equal(t, "second", todos[1].Title)
	assert.Equal(t, "first", todos[2].Title)
}

func TestTodoRepository_JoinsCategory(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	todoRepo := repositories.NewTodoRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	ctx := context.Background()

	category, err := categoryRepo.Create(ctx, &models.Category{Name: "Work", Color: testutil.Ptr("#FF0000")})
	require.NoError(t, err)

	withCategory, err := todoRepo.Create(ctx, &models.Todo{Title: "Write report", CategoryID: &category.ID})
	require.NoError(t, err)
	require.NotNil(t, withCategory.CategoryName)
	require.NotNil(t, withCategory.CategoryColor)
	assert.Equal(t, "Work", *withCategory.CategoryName)
	assert.Equal(t, "#FF0000", *withCategory.CategoryColor)

	// 存在しないカテゴリIDは保存されるが、結合結果は NULL になる
	dangling := int64(9999)
	orphan, err := todoRepo.Create(ctx, &models.Todo{Title: "Orphan", CategoryID: &dangling})
	require.NoError(t, err)
	require.NotNil(t, orphan.CategoryID)
	assert.Equal(t, dangling, *orphan.CategoryID)
	assert.Nil(t, orphan.CategoryName)
	assert.Nil(t, orphan.CategoryColor)
}

func TestTodoRepository_Update(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewTodoRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Todo{Title: "Buy milk"})
	require.NoError(t, err)

	updated, err := repo.Update(ctx, created.ID, &models.Todo{Title: "Buy oat milk", Completed: true})
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", updated.Title)
	assert.True(t, updated.Completed)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())

	// 同じ値での更新も成功する
	_, err = repo.Update(ctx, created.ID, &models.Todo{Title: "Buy oat milk", Completed: true})
	require.NoError(t, err)

	_, err = repo.Update(ctx, 9999, &models.Todo{Title: "Nope"})
	assert.ErrorIs(t, err, repositories.ErrTodoNotFound)
}

func TestTodoRepository_DeleteTwice(t *testing.T) {
	db, _ := testutil.SetupTestDB(t)
	repo := repositories.NewTodoRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Todo{Title: "Temporary"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), repositories.ErrTodoNotFound)

	_, err = repo.FindByID(ctx, created.ID)
	assert.ErrorIs(t, err, repositories.ErrTodoNotFound)
}
