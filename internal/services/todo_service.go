package services

import (
	"context"
	"strings"

	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/repositories"
)

// TodoService はTodo関連のビジネスロジックを扱います。
type TodoService struct {
	todoRepo *repositories.TodoRepository
}

// NewTodoService は新しいTodoServiceを作成します。
func NewTodoService(todoRepo *repositories.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

// CreateTodo はタイトルを検証してから新しいTodoを作成します。
func (s *TodoService) CreateTodo(ctx context.Context, title string, categoryID *int64) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, newValidationError("title", "Title must not be empty")
	}
	return s.todoRepo.Create(ctx, &models.Todo{Title: title, CategoryID: categoryID})
}

// GetTodos はすべてのTodoを新しい順に取得します。
func (s *TodoService) GetTodos(ctx context.Context) ([]models.Todo, error) {
	return s.todoRepo.FindAll(ctx)
}

// GetTodoByID は指定IDのTodoを取得します。
func (s *TodoService) GetTodoByID(ctx context.Context, id int64) (*models.Todo, error) {
	return s.todoRepo.FindByID(ctx, id)
}

// UpdateTodo はTodoを全置換で更新します。
func (s *TodoService) UpdateTodo(ctx context.Context, id int64, title string, completed bool, categoryID *int64) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, newValidationError("title", "Title must not be empty")
	}
	return s.todoRepo.Update(ctx, id, &models.Todo{Title: title, Completed: completed, CategoryID: categoryID})
}

// DeleteTodo はTodoを削除します。
func (s *TodoService) DeleteTodo(ctx context.Context, id int64) error {
	return s.todoRepo.Delete(ctx, id)
}
