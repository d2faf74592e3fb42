// Package routesはroutingを行います。
package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go-todo-api/backend/internal/config"
	"go-todo-api/backend/internal/handlers"
	"go-todo-api/backend/internal/metrics"
	"go-todo-api/backend/internal/repositories"
	"go-todo-api/backend/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sqlx.DB, cfg *config.Config) *gin.Engine {
	RegisterValidators()

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(metrics.Middleware())

	// CORS対策
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	// リポジトリ
	todoRepo := repositories.NewTodoRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	visitorRepo := repositories.NewVisitorRepository(db)

	// サービス
	todoService := services.NewTodoService(todoRepo)
	categoryService := services.NewCategoryService(categoryRepo)
	visitorService := services.NewVisitorService(visitorRepo, cfg.VisitorRetentionDays)

	// ハンドラー
	todoHandler := handlers.NewTodoHandler(todoService)
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	visitorHandler := handlers.NewVisitorHandler(visitorService)

	// ルーティング
	r.GET("/", HelloHandler)
	r.GET("/health/db", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, handlers.Envelope{Success: false, Message: "Database connection failed"})
			return
		}
		c.JSON(http.StatusOK, handlers.Envelope{Success: true, Message: "Database connection is healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.Envelope{Success: false, Message: "Not found"})
	})

	todos := r.Group("/todos")
	{
		todos.GET("", todoHandler.GetTodosHandler)
		todos.GET("/:id", todoHandler.GetTodoByIDHandler)
		todos.POST("", todoHandler.CreateTodoHandler)
		todos.PUT("/:id", todoHandler.UpdateTodoHandler)
		todos.DELETE("/:id", todoHandler.DeleteTodoHandler)
	}

	categories := r.Group("/categories")
	{
		categories.GET("", categoryHandler.GetCategoriesHandler)
		categories.GET("/:id", categoryHandler.GetCategoryByIDHandler)
		categories.POST("", categoryHandler.CreateCategoryHandler)
		categories.PUT("/:id", categoryHandler.UpdateCategoryHandler)
		categories.DELETE("/:id", categoryHandler.DeleteCategoryHandler)
	}

	visitors := r.Group("/visitors")
	{
		visitors.GET("", visitorHandler.GetVisitorsHandler)
		visitors.GET("/stats/overview", visitorHandler.GetOverviewHandler)
		visitors.GET("/by-country", visitorHandler.GetByCountryHandler)
		visitors.GET("/by-device", visitorHandler.GetByDeviceHandler)
		visitors.POST("", visitorHandler.RecordVisitHandler)
		visitors.DELETE("/cleanup", visitorHandler.CleanupHandler)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
	config.ExposeHeaders = []string{requestIDHeader}

	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}

func HelloHandler(c *gin.Context) {
	c.JSON(http.StatusOK, handlers.Envelope{Success: true, Message: "Todo API is running"})
}
