// Package handlers はHTTPリクエストを受け取り、サービスを呼び出してJSONを返します。
package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-todo-api/backend/internal/repositories"
	"go-todo-api/backend/internal/services"
)

// RequestIDKey はリクエストIDを gin.Context に保存するキーです。
const RequestIDKey = "request_id"

const internalErrorMessage = "Internal server error"

// Envelope はすべてのエンドポイントが返すレスポンス形式です。
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Total   *int        `json:"total,omitempty"`
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}

// respondServiceError はサービス層のエラーをステータスコードに変換します。
// 想定外のエラーは詳細をログにのみ出力し、クライアントには汎用メッセージを返します。
func respondServiceError(c *gin.Context, err error, action string) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		respondError(c, http.StatusBadRequest, vErr.Message)
	case errors.Is(err, repositories.ErrTodoNotFound):
		respondError(c, http.StatusNotFound, "Todo not found")
	case errors.Is(err, repositories.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "Category not found")
	case errors.Is(err, repositories.ErrVisitorNotFound):
		respondError(c, http.StatusNotFound, "Visitor not found")
	default:
		log.Printf("[%s] failed to %s: %v", c.GetString(RequestIDKey), action, err)
		respondError(c, http.StatusInternalServerError, internalErrorMessage)
	}
}

// respondBindError はリクエストボディのバインド失敗を400で返します。
func respondBindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, bindErrorMessage(err))
}

func bindErrorMessage(err error) string {
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return "Invalid request payload"
	}

	fe := vErrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s must not be empty", fe.Field())
	case "hexcolor":
		return fmt.Sprintf("%s must be a hex color", fe.Field())
	case "gte", "gt":
		return fmt.Sprintf("%s must be %s %s", fe.Field(), comparisonWord(fe.Tag()), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func comparisonWord(tag string) string {
	if tag == "gt" {
		return "greater than"
	}
	return "at least"
}

// parseID はパスパラメータ :id を正の整数として解釈します。失敗した場合は400を返して false を返します。
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid ID format")
		return 0, false
	}
	return id, true
}
