package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"go-todo-api/backend/internal/database"
	"go-todo-api/backend/internal/metrics"
	"go-todo-api/backend/internal/models"
)

// TodoRepository はtodosテーブルへのアクセスを担当します。
type TodoRepository struct {
	DB *sqlx.DB
}

// NewTodoRepository は新しいTodoRepositoryインスタンスを作成します。
func NewTodoRepository(db *sqlx.DB) *TodoRepository {
	return &TodoRepository{DB: db}
}

// カテゴリを持たないTODOも返すため LEFT JOIN する
const todoSelect = `
	SELECT t.id, t.title, t.completed, t.category_id,
		c.name AS category_name, c.color AS category_color,
		t.created_at
	FROM todos t
	LEFT JOIN categories c ON c.id = t.category_id`

// FindAll はすべてのTodoを作成日時の新しい順に取得します。
func (r *TodoRepository) FindAll(ctx context.Context) ([]models.Todo, error) {
	defer metrics.TrackDBOperation("select", "todos").ObserveDuration()

	todos := []models.Todo{}
	query := todoSelect + " ORDER BY t.created_at DESC, t.id DESC"
	if err := r.DB.SelectContext(ctx, &todos, query); err != nil {
		log.Printf("Failed to query todos: %v", err)
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	return todos, nil
}

// FindByID は指定されたIDのTodoを取得します。
func (r *TodoRepository) FindByID(ctx context.Context, id int64) (*models.Todo, error) {
	defer metrics.TrackDBOperation("select", "todos").ObserveDuration()

	var t models.Todo
	err := r.DB.GetContext(ctx, &t, r.DB.Rebind(todoSelect+" WHERE t.id = ?"), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		log.Printf("Failed to query todo by ID: %v", err)
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return &t, nil
}

// Create は新しいTodoを completed=false で挿入し、作成された行を返します。
func (r *TodoRepository) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	defer metrics.TrackDBOperation("insert", "todos").ObserveDuration()

	query := "INSERT INTO todos (title, completed, category_id, created_at) VALUES (?, ?, ?, ?)"
	id, err := database.InsertID(ctx, r.DB, query, t.Title, false, t.CategoryID, database.Now())
	if err != nil {
		log.Printf("Failed to insert todo: %v", err)
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Update は指定されたIDのTodoの title, completed, category_id をまとめて置き換えます。
func (r *TodoRepository) Update(ctx context.Context, id int64, t *models.Todo) (*models.Todo, error) {
	defer metrics.TrackDBOperation("update", "todos").ObserveDuration()

	query := r.DB.Rebind("UPDATE todos SET title = ?, completed = ?, category_id = ? WHERE id = ?")
	result, err := r.DB.ExecContext(ctx, query, t.Title, t.Completed, t.CategoryID, id)
	if err != nil {
		log.Printf("Failed to update todo: %v", err)
		return nil, fmt.Errorf("could not update todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrTodoNotFound
	}

	return r.FindByID(ctx, id)
}

// Delete は指定されたIDのTodoを削除します。
func (r *TodoRepository) Delete(ctx context.Context, id int64) error {
	defer metrics.TrackDBOperation("delete", "todos").ObserveDuration()

	result, err := r.DB.ExecContext(ctx, r.DB.Rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		log.Printf("Failed to delete todo: %v", err)
		return fmt.Errorf("could not delete todo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}
	return nil
}
