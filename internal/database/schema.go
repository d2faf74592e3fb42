package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"go-todo-api/backend/internal/config"
)

// Tables はアプリケーションが扱うテーブル名の一覧です (作成順)。
var Tables = []string{"categories", "todos", "visitors"}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		color VARCHAR(32) NULL DEFAULT '#4CAF50',
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id INT AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		category_id INT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		INDEX idx_todos_category_id (category_id)
	)`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id INT AUTO_INCREMENT PRIMARY KEY,
		ip_address VARCHAR(64) NOT NULL,
		session_id VARCHAR(255) NOT NULL,
		user_agent TEXT NULL,
		referer TEXT NULL,
		country VARCHAR(128) NULL,
		city VARCHAR(128) NULL,
		device_type VARCHAR(64) NULL,
		page_url TEXT NULL,
		visit_count INT NOT NULL DEFAULT 1,
		visit_duration INT NOT NULL DEFAULT 0,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		last_visited DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_visitors_identity (ip_address, session_id)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		color VARCHAR(32) DEFAULT '#4CAF50',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		category_id INTEGER NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_category_id ON todos (category_id)`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id SERIAL PRIMARY KEY,
		ip_address VARCHAR(64) NOT NULL,
		session_id VARCHAR(255) NOT NULL,
		user_agent TEXT,
		referer TEXT,
		country VARCHAR(128),
		city VARCHAR(128),
		device_type VARCHAR(64),
		page_url TEXT,
		visit_count INTEGER NOT NULL DEFAULT 1,
		visit_duration INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_visited TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT uq_visitors_identity UNIQUE (ip_address, session_id)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		color TEXT DEFAULT '#4CAF50',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT 0,
		category_id INTEGER NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_category_id ON todos (category_id)`,
	`CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ip_address TEXT NOT NULL,
		session_id TEXT NOT NULL,
		user_agent TEXT,
		referer TEXT,
		country TEXT,
		city TEXT,
		device_type TEXT,
		page_url TEXT,
		visit_count INTEGER NOT NULL DEFAULT 1,
		visit_duration INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_visited DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (ip_address, session_id)
	)`,
}

// EnsureSchema は3つのテーブルが存在しなければ作成します。何度呼んでも安全です。
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	var stmts []string
	switch db.DriverName() {
	case config.DriverPostgres:
		stmts = postgresSchema
	case config.DriverSQLite:
		stmts = sqliteSchema
	default:
		stmts = mysqlSchema
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("could not create schema: %w", err)
		}
	}
	return nil
}
