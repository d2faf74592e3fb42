package models

import "time"

// DefaultCategoryColor は color 未指定で作成したときの色です。
const DefaultCategoryColor = "#4CAF50"

type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Color     *string   `db:"color" json:"color"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type CategoryCreateRequest struct {
	Name  string  `json:"name" binding:"required,notblank"`
	Color *string `json:"color" binding:"omitempty,hexcolor"`
}

// CategoryUpdateRequest は全置換です。color を省略すると NULL が書き込まれます。
type CategoryUpdateRequest struct {
	Name  string  `json:"name" binding:"required,notblank"`
	Color *string `json:"color" binding:"omitempty,hexcolor"`
}
