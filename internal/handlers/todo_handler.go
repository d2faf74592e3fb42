package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/services"
)

// TodoHandler はTodo関連のハンドラーを管理します。
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler は新しいTodoHandlerを作成します。
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// GetTodosHandler はTodoリストを新しい順に返します。
func (h *TodoHandler) GetTodosHandler(c *gin.Context) {
	todos, err := h.todoService.GetTodos(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "fetch todos")
		return
	}
	respondData(c, http.StatusOK, todos)
}

// GetTodoByIDHandler は指定IDのTodoを取得します。
func (h *TodoHandler) GetTodoByIDHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	todo, err := h.todoService.GetTodoByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err, "fetch todo")
		return
	}
	respondData(c, http.StatusOK, todo)
}

// CreateTodoHandler は新しいTodoを作成します。
func (h *TodoHandler) CreateTodoHandler(c *gin.Context) {
	var req models.TodoCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	createdTodo, err := h.todoService.CreateTodo(c.Request.Context(), req.Title, req.CategoryID)
	if err != nil {
		respondServiceError(c, err, "create todo")
		return
	}
	respondData(c, http.StatusCreated, createdTodo)
}

// UpdateTodoHandler はTodoを更新します。completed が省略された場合は false として扱います。
func (h *TodoHandler) UpdateTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req models.TodoUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	completed := req.Completed != nil && *req.Completed

	updatedTodo, err := h.todoService.UpdateTodo(c.Request.Context(), id, req.Title, completed, req.CategoryID)
	if err != nil {
		respondServiceError(c, err, "update todo")
		return
	}
	respondData(c, http.StatusOK, updatedTodo)
}

// DeleteTodoHandler はTodoを削除します。
func (h *TodoHandler) DeleteTodoHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete todo")
		return
	}
	respondMessage(c, http.StatusOK, nil, "Deleted successfully")
}
