package api

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS users (
    -- ログインに使用するユーザー名
    username TEXT PRIMARY KEY,
    -- 平文のパスワード
    password TEXT NOT NULL,
    -- 役割（'customer' または 'agent'）
    role TEXT NOT NULL,
    -- 顧客のスコープ識別子（顧客以外はNULL）
    customer_id INTEGER,
    -- 営業担当者のスコープ識別子（営業担当者以外はNULL）
    agent_id INTEGER
);

CREATE TABLE IF NOT EXISTS customers (
    -- 顧客の識別番号
    customer_id INTEGER PRIMARY KEY,
    -- 顧客名
    name TEXT NOT NULL,
    -- 担当する営業担当者の識別子
    agent_id INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
    -- 商品の一意識別子
    id INTEGER PRIMARY KEY,
    -- 商品の説明
    description TEXT NOT NULL,
    -- 単価
    price REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    -- 注文の一意識別子
    id INTEGER PRIMARY KEY,
    -- 注文日（YYYY-MM-DD形式）
    date TEXT NOT NULL,
    -- 注文の合計金額
    total REAL NOT NULL,
    -- 注文した顧客の識別番号
    customer_id INTEGER NOT NULL,
    -- 注文を登録したユーザー名
    username TEXT NOT NULL,
    FOREIGN KEY (customer_id) REFERENCES customers(customer_id)
);

CREATE TABLE IF NOT EXISTS order_items (
    -- 明細行の一意識別子
    id INTEGER PRIMARY KEY,
    -- 明細が属する注文のID
    order_id INTEGER NOT NULL,
    -- 商品のID
    product_id INTEGER NOT NULL,
    -- 数量
    quantity INTEGER NOT NULL,
    -- 単価
    price REAL NOT NULL,
    -- 小計
    subtotal REAL NOT NULL,
    FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE,
    FOREIGN KEY (product_id) REFERENCES products(id)
);

-- 担当顧客の検索を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_customers_agent_id
    ON customers(agent_id);

-- 顧客の注文検索を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_orders_customer_id
    ON orders(customer_id);

-- 注文の明細検索を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_order_items_order_id
    ON order_items(order_id);
`

// initSchema はSQLiteデータベースにスキーマを適用する。
func initSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}
