package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"go-todo-api/backend/internal/handlers"
)

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware はリクエストごとにIDを割り当て、コンテキストとレスポンスヘッダーに設定するミドルウェアです。
// クライアントが X-Request-ID を送ってきた場合はその値を使います。
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set(handlers.RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}
