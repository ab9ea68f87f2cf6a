// Package db はリマインダーサービスのデータアクセス層を提供する。
//
// sqlcスタイルのクエリ実行オブジェクトとして実装しており、
// *sql.DB と *sql.Tx のどちらでも実行できる。
package db

import (
	"context"
	"database/sql"
)

// DBTX はクエリ実行に必要なデータベース操作のインターフェース。
// *sql.DB と *sql.Tx の両方が満たす。
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries はデータベースクエリの実行オブジェクト。
type Queries struct {
	db DBTX
}

// New は新しいクエリ実行オブジェクトを生成する。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}
