// Package db はバックエンドAPIのSQLiteクエリ実行層を提供する。
//
// sqlcの出力と同じ形（DBTXインターフェース + Queries構造体 +
// パラメータ構造体）で手書きしており、database/sql の
// *sql.DB / *sql.Tx のどちらでも実行できる。
package db

import (
	"context"
	"database/sql"
)

// DBTX はクエリ実行に必要なdatabase/sqlの操作を抽象化する。
// *sql.DB と *sql.Tx の両方が満たす。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New は新しいクエリ実行オブジェクトを生成する。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Queries はSQLクエリの実行メソッドをまとめたオブジェクト。
type Queries struct {
	db DBTX
}
