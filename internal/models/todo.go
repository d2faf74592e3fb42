// Package modelsはTodo・Category・Visitorのデータ構造とリクエストスキーマを定義します。
package models

import (
	"time"
)

type Todo struct {
	ID            int64     `db:"id" json:"id"`                         // 主キー
	Title         string    `db:"title" json:"title"`                   // タスクのタイトル
	Completed     bool      `db:"completed" json:"completed"`           // 完了状態
	CategoryID    *int64    `db:"category_id" json:"category_id"`       // カテゴリ (NULL可)
	CategoryName  *string   `db:"category_name" json:"category_name"`   // LEFT JOIN で取得
	CategoryColor *string   `db:"category_color" json:"category_color"` // LEFT JOIN で取得
	CreatedAt     time.Time `db:"created_at" json:"created_at"`         // 作成日時
}

// TodoCreateRequest は POST /todos のボディです。
type TodoCreateRequest struct {
	Title      string `json:"title" binding:"required,notblank"`
	CategoryID *int64 `json:"category_id" binding:"omitempty,gt=0"`
}

// TodoUpdateRequest は PUT /todos/:id のボディです。全フィールドを置き換えます。
// completed を省略した場合は false として書き込みます。
type TodoUpdateRequest struct {
	Title      string `json:"title" binding:"required,notblank"`
	Completed  *bool  `json:"completed"`
	CategoryID *int64 `json:"category_id" binding:"omitempty,gt=0"`
}
