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

// CategoryRepository はcategoriesテーブルへのアクセスを担当します。
type CategoryRepository struct {
	DB *sqlx.DB
}

// NewCategoryRepository は新しいCategoryRepositoryインスタンスを作成します。
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{DB: db}
}

const categorySelect = "SELECT id, name, color, created_at FROM categories"

// FindAll はすべてのカテゴリを作成日時の古い順に取得します (Todoとは逆順)。
func (r *CategoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	defer metrics.TrackDBOperation("select", "categories").ObserveDuration()

	categories := []models.Category{}
	if err := r.DB.SelectContext(ctx, &categories, categorySelect+" ORDER BY created_at ASC, id ASC"); err != nil {
		log.Printf("Failed to query categories: %v", err)
		return nil, fmt.Errorf("could not query categories: %w", err)
	}
	return categories, nil
}

// FindByID は指定されたIDのカテゴリを取得します。
func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	defer metrics.TrackDBOperation("select", "categories").ObserveDuration()

	var c models.Category
	if err := r.DB.GetContext(ctx, &c, r.DB.Rebind(categorySelect+" WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("could not query category: %w", err)
	}
	return &c, nil
}

// Create は新しいカテゴリを挿入し、作成された行を返します。
func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) (*models.Category, error) {
	defer metrics.TrackDBOperation("insert", "categories").ObserveDuration()

	query := "INSERT INTO categories (name, color, created_at) VALUES (?, ?, ?)"
	id, err := database.InsertID(ctx, r.DB, query, c.Name, c.Color, database.Now())
	if err != nil {
		log.Printf("Failed to insert category: %v", err)
		return nil, fmt.Errorf("could not insert category: %w", err)
	}
	return r.FindByID(ctx, id)
}

// Update は name と color をまとめて置き換えます。
func (r *CategoryRepository) Update(ctx context.Context, id int64, c *models.Category) (*models.Category, error) {
	defer metrics.TrackDBOperation("update", "categories").ObserveDuration()

	query := r.DB.Rebind("UPDATE categories SET name = ?, color = ? WHERE id = ?")
	result, err := r.DB.ExecContext(ctx, query, c.Name, c.Color, id)
	if err != nil {
		log.Printf("Failed to update category: %v", err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, ErrCategoryNotFound
	}
	return r.FindByID(ctx, id)
}

// Delete はカテゴリを削除します。参照しているTodoの category_id は同じトランザクション内で NULL に戻します。
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	defer metrics.TrackDBOperation("delete", "categories").ObserveDuration()

	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind("UPDATE todos SET category_id = NULL WHERE category_id = ?"), id); err != nil {
		log.Printf("Failed to detach todos from category: %v", err)
		return fmt.Errorf("could not detach todos: %w", err)
	}

	result, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		log.Printf("Failed to delete category: %v", err)
		return fmt.Errorf("could not delete category: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoryNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit category delete: %w", err)
	}
	return nil
}
