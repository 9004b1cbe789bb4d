package db

import "database/sql"

// User はusersテーブルの1行を表す。
// 認証情報と、役割に応じたスコープ識別子を持つ。
type User struct {
	// Username はログインに使用するユーザー名。
	Username string
	// Password は平文のパスワード。
	Password string
	// Role は役割（"customer" または "agent"）。
	Role string
	// CustomerID は顧客のスコープ識別子。顧客以外はNULL。
	CustomerID sql.NullInt64
	// AgentID は営業担当者のスコープ識別子。営業担当者以外はNULL。
	AgentID sql.NullInt64
}

// Customer はcustomersテーブルの1行を表す。
type Customer struct {
	// CustomerID は顧客の識別番号。
	CustomerID int64
	// Name は顧客名。
	Name string
	// AgentID は担当する営業担当者の識別子。
	AgentID int64
}

// Product はproductsテーブルの1行を表す。
type Product struct {
	// ID は商品の一意識別子。
	ID int64
	// Description は商品の説明。
	Description string
	// Price は単価。
	Price float64
}

// Order はordersテーブルの1行を表す。
type Order struct {
	// ID は注文の一意識別子。
	ID int64
	// Date は注文日（YYYY-MM-DD形式）。
	Date string
	// Total は注文の合計金額。
	Total float64
	// CustomerID は注文した顧客の識別番号。
	CustomerID int64
	// Username は注文を登録したユーザー名。
	Username string
}

// OrderItem はorder_itemsテーブルの1行を商品説明と結合した結果を表す。
type OrderItem struct {
	// ID は明細行の一意識別子。
	ID int64
	// OrderID は明細が属する注文のID。
	OrderID int64
	// Product は商品の説明。
	Product string
	// Quantity は数量。
	Quantity int64
	// Price は単価。
	Price float64
	// Subtotal は小計。
	Subtotal float64
}
