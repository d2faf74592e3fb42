package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/services"
)

// CategoryHandler はカテゴリ関連のハンドラーを管理します。
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler は新しいCategoryHandlerを作成します。
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GetCategoriesHandler はカテゴリを古い順に返します。
func (h *CategoryHandler) GetCategoriesHandler(c *gin.Context) {
	categories, err := h.categoryService.GetCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch categories")
		return
	}
	respondData(c, http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategoryByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	category, err := h.categoryService.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch category")
		return
	}
	respondData(c, http.StatusOK, category)
}

// CreateCategoryHandler は新しいカテゴリを作成します。
func (h *CategoryHandler) CreateCategoryHandler(c *gin.Context) {
	var req models.CategoryCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		respondServiceError(c, err, "create category")
		return
	}
	respondData(c, http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategoryHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.CategoryUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), id, req.Name, req.Color)
	if err != nil {
		respondServiceError(c, err, "update category")
		return
	}
	respondData(c, http.StatusOK, category)
}

// DeleteCategoryHandler はカテゴリを削除します。参照していたTodoはカテゴリなしになります。
func (h *CategoryHandler) DeleteCategoryHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete category")
		return
	}
	respondMessage(c, http.StatusOK, nil, "Deleted successfully")
}
