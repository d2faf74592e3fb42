package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"go-todo-api/backend/internal/config"
	"go-todo-api/backend/internal/database"
	"go-todo-api/backend/internal/models"
	"go-todo-api/backend/internal/routes"
)

// TestConfig はテスト用の設定を返します。
func TestConfig() *config.Config {
	return &config.Config{
		Port:                 "5000",
		CORSAllowedOrigins:   []string{"*"},
		ShutdownTimeout:      time.Second,
		VisitorRetentionDays: 30,
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Name:   ":memory:",
		},
	}
}

// SetupTestDB はテスト用のデータベース接続を確立し、テーブルを作成します。
// 既定ではインメモリの SQLite を使います。TEST_DB_DRIVER と TEST_DB_DSN が設定されていれば
// そのデータベースに接続し、テーブルを空にしてから返します。
func SetupTestDB(t *testing.T) (*sqlx.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	_ = godotenv.Load("../../.env")

	cfg := TestConfig()
	external := false
	if driver, dsn := os.Getenv("TEST_DB_DRIVER"), os.Getenv("TEST_DB_DSN"); driver != "" && dsn != "" {
		cfg.Database = config.DatabaseConfig{
			Driver:          driver,
			URL:             dsn,
			MaxOpenConns:    5,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Minute,
		}
		external = true
	}

	db, err := database.Open(cfg.Database)
	require.NoError(t, err, "Failed to open test database")
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, database.EnsureSchema(ctx, db), "Failed to create tables")

	// 外部DBはテストのたびにクリーンな状態にする
	if external {
		for _, table := range database.Tables {
			if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				log.Printf("Failed to clear %s table: %v", table, err)
			}
		}
	}

	return db, routes.SetupRouter(db, cfg)
}

// DoJSON はJSONボディ付きのリクエストをルーターに送り、レスポンスを返します。
func DoJSON(t *testing.T, router *gin.Engine, method, path string, payload interface{}, headers ...map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload == nil {
		body = &bytes.Buffer{}
	} else {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Response は Envelope を data の型を指定してデコードするための構造体です。
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message"`
	Total   *int   `json:"total"`
}

// DecodeResponse はレスポンスボディを Response[T] にデコードします。
func DecodeResponse[T any](t *testing.T, w *httptest.ResponseRecorder) Response[T] {
	t.Helper()
	var res Response[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res), "Response should be a valid envelope: %s", w.Body.String())
	return res
}

// CreateTestTodo はAPI経由でTODOを作成します。
func CreateTestTodo(t *testing.T, router *gin.Engine, title string, categoryID *int64) *models.Todo {
	t.Helper()
	payload := map[string]interface{}{"title": title}
	if categoryID != nil {
		payload["category_id"] = *categoryID
	}

	w := DoJSON(t, router, http.MethodPost, "/todos", payload)
	require.Equal(t, http.StatusCreated, w.Code, "TODO作成に失敗しました: %s", w.Body.String())
	res := DecodeResponse[models.Todo](t, w)
	return &res.Data
}

// CreateTestCategory はAPI経由でカテゴリを作成します。
func CreateTestCategory(t *testing.T, router *gin.Engine, name string, color *string) *models.Category {
	t.Helper()
	payload := map[string]interface{}{"name": name}
	if color != nil {
		payload["color"] = *color
	}

	w := DoJSON(t, router, http.MethodPost, "/categories", payload)
	require.Equal(t, http.StatusCreated, w.Code, "カテゴリ作成に失敗しました: %s", w.Body.String())
	res := DecodeResponse[models.Category](t, w)
	return &res.Data
}

// PostVisit は指定IPからの訪問を記録します。
func PostVisit(t *testing.T, router *gin.Engine, ip string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return DoJSON(t, router, http.MethodPost, "/visitors", payload, map[string]string{"X-Forwarded-For": ip})
}

// Ptr は値へのポインタを返します。
func Ptr[T any](v T) *T {
	return &v
}

// BackdateVisitor は訪問者の created_at を age だけ過去にずらします。
func BackdateVisitor(t *testing.T, db *sqlx.DB, id int64, age time.Duration) {
	t.Helper()
	_, err := db.Exec(db.Rebind("UPDATE visitors SET created_at = ? WHERE id = ?"), database.Now().Add(-age), id)
	require.NoError(t, err, fmt.Sprintf("Failed to backdate visitor %d", id))
}
