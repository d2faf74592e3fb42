// Package repositories はデータベース操作を行うリポジトリを提供します。
package repositories

import "errors"

var (
	// ErrTodoNotFound はTODOが見つからない場合のエラーです。
	ErrTodoNotFound = errors.New("todo not found")
	// ErrCategoryNotFound はカテゴリが見つからない場合のエラーです。
	ErrCategoryNotFound = errors.New("category not found")
	// ErrVisitorNotFound は訪問者が見つからない場合のエラーです。
	ErrVisitorNotFound = errors.New("visitor not found")
)
