package services

import (
	"context"
	"strings"

	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/repositories"
)

// CategoryService はカテゴリ関連のビジネスロジックを扱います。
type CategoryService struct {
	categoryRepo *repositories.CategoryRepository
}

// NewCategoryService は新しいCategoryServiceを作成します。
func NewCategoryService(categoryRepo *repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategory は名前を検証し、色が未指定ならデフォルト色で作成します。
func (s *CategoryService) CreateCategory(ctx context.Context, name string, color *string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "Name must not be empty")
	}
	if color == nil || strings.TrimSpace(*color) == "" {
		defaultColor := models.DefaultCategoryColor
		color = &defaultColor
	}
	return s.categoryRepo.Create(ctx, &models.Category{Name: name, Color: color})
}

func (s *CategoryService) GetCategories(ctx context.Context) ([]models.Category, error) {
	return s.categoryRepo.FindAll(ctx)
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.categoryRepo.FindByID(ctx, id)
}

// UpdateCategory は name と color を全置換します。color が nil なら NULL を書き込みます。
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, name string, color *string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", "Name must not be empty")
	}
	return s.categoryRepo.Update(ctx, id, &models.Category{Name: name, Color: color})
}

// DeleteCategory はカテゴリを削除し、参照していたTodoのカテゴリを外します。
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	return s.categoryRepo.Delete(ctx, id)
}
