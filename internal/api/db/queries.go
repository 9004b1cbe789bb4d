package db

import (
	"context"
	"database/sql"
)

// GetUserByUsername はユーザー名でusersテーブルを検索する。
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	const query = `
SELECT username, password, role, customer_id, agent_id
FROM users
WHERE username = ?`

	var u User
	err := q.db.QueryRowContext(ctx, query, username).Scan(
		&u.Username, &u.Password, &u.Role, &u.CustomerID, &u.AgentID,
	)
	return u, err
}

// CreateUserParams はCreateUserのパラメータ。
type CreateUserParams struct {
	Username   string
	Password   string
	Role       string
	CustomerID sql.NullInt64
	AgentID    sql.NullInt64
}

// CreateUser はusersテーブルに1行挿入する。
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	const query = `
INSERT INTO users (username, password, role, customer_id, agent_id)
VALUES (?, ?, ?, ?, ?)`

	_, err := q.db.ExecContext(ctx, query,
		arg.Username, arg.Password, arg.Role, arg.CustomerID, arg.AgentID,
	)
	return err
}

// GetCustomerByID は顧客識別番号でcustomersテーブルを検索する。
func (q *Queries) GetCustomerByID(ctx context.Context, customerID int64) (Customer, error) {
	const query = `
SELECT customer_id, name, agent_id
FROM customers
WHERE customer_id = ?`

	var c Customer
	err := q.db.QueryRowContext(ctx, query, customerID).Scan(
		&c.CustomerID, &c.Name, &c.AgentID,
	)
	return c, err
}

// GetCustomerOfAgentParams はGetCustomerOfAgentのパラメータ。
type GetCustomerOfAgentParams struct {
	CustomerID int64
	AgentID    int64
}

// GetCustomerOfAgent は指定した営業担当者の担当顧客のみを検索する。
// 担当外の顧客は存在しないものとして扱われる。
func (q *Queries) GetCustomerOfAgent(ctx context.Context, arg GetCustomerOfAgentParams) (Customer, error) {
	const query = `
SELECT customer_id, name, agent_id
FROM customers
WHERE customer_id = ? AND agent_id = ?`

	var c Customer
	err := q.db.QueryRowContext(ctx, query, arg.CustomerID, arg.AgentID).Scan(
		&c.CustomerID, &c.Name, &c.AgentID,
	)
	return c, err
}

// CreateCustomerParams はCreateCustomerのパラメータ。
type CreateCustomerParams struct {
	CustomerID int64
	Name       string
	AgentID    int64
}

// CreateCustomer はcustomersテーブルに1行挿入する。
func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) error {
	const query = `
INSERT INTO customers (customer_id, name, agent_id)
VALUES (?, ?, ?)`

	_, err := q.db.ExecContext(ctx, query, arg.CustomerID, arg.Name, arg.AgentID)
	return err
}

// ListCustomersByAgent は営業担当者の担当顧客を一覧する。
func (q *Queries) ListCustomersByAgent(ctx context.Context, agentID int64) ([]Customer, error) {
	const query = `
SELECT customer_id, name, agent_id
FROM customers
WHERE agent_id = ?
ORDER BY customer_id`

	rows, err := q.db.QueryContext(ctx, query, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.CustomerID, &c.Name, &c.AgentID); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// SumOrderTotals は顧客の全注文の合計金額を返す。
// 注文が1件も無い場合は0を返す。
func (q *Queries) SumOrderTotals(ctx context.Context, customerID int64) (float64, error) {
	const query = `
SELECT COALESCE(SUM(total), 0)
FROM orders
WHERE customer_id = ?`

	var total float64
	err := q.db.QueryRowContext(ctx, query, customerID).Scan(&total)
	return total, err
}

// ListProducts は全商品を一覧する。
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	const query = `
SELECT id, description, price
FROM products
ORDER BY id`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Description, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateProductParams はCreateProductのパラメータ。
type CreateProductParams struct {
	ID          int64
	Description string
	Price       float64
}

// CreateProduct はproductsテーブルに1行挿入する。
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) error {
	const query = `
INSERT INTO products (id, description, price)
VALUES (?, ?, ?)`

	_, err := q.db.ExecContext(ctx, query, arg.ID, arg.Description, arg.Price)
	return err
}

// ListOrdersByCustomer は顧客の注文を新しい順に一覧する。
func (q *Queries) ListOrdersByCustomer(ctx context.Context, customerID int64) ([]Order, error) {
	const query = `
SELECT id, date, total, customer_id, username
FROM orders
WHERE customer_id = ?
ORDER BY date DESC, id DESC`

	return q.listOrders(ctx, query, customerID)
}

// ListOrdersByCustomerForAgentParams はListOrdersByCustomerForAgentのパラメータ。
type ListOrdersByCustomerForAgentParams struct {
	CustomerID int64
	AgentID    int64
}

// ListOrdersByCustomerForAgent は顧客の注文を新しい順に一覧する。
// 顧客が指定した営業担当者の担当でない場合、結果は空になる。
func (q *Queries) ListOrdersByCustomerForAgent(ctx context.Context, arg ListOrdersByCustomerForAgentParams) ([]Order, error) {
	const query = `
SELECT o.id, o.date, o.total, o.customer_id, o.username
FROM orders o
INNER JOIN customers c ON c.customer_id = o.customer_id
WHERE o.customer_id = ? AND c.agent_id = ?
ORDER BY o.date DESC, o.id DESC`

	return q.listOrders(ctx, query, arg.CustomerID, arg.AgentID)
}

// listOrders は注文一覧クエリの共通実行処理。
func (q *Queries) listOrders(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Date, &o.Total, &o.CustomerID, &o.Username); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// GetOrderByID は注文IDでordersテーブルを検索する。
func (q *Queries) GetOrderByID(ctx context.Context, id int64) (Order, error) {
	const query = `
SELECT id, date, total, customer_id, username
FROM orders
WHERE id = ?`

	var o Order
	err := q.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Date, &o.Total, &o.CustomerID, &o.Username,
	)
	return o, err
}

// GetOrderForCustomerParams はGetOrderForCustomerのパラメータ。
type GetOrderForCustomerParams struct {
	ID         int64
	CustomerID int64
}

// GetOrderForCustomer は指定した顧客が所有する注文のみを検索する。
// 他の顧客の注文は存在しないものとして扱われる。
func (q *Queries) GetOrderForCustomer(ctx context.Context, arg GetOrderForCustomerParams) (Order, error) {
	const query = `
SELECT id, date, total, customer_id, username
FROM orders
WHERE id = ? AND customer_id = ?`

	var o Order
	err := q.db.QueryRowContext(ctx, query, arg.ID, arg.CustomerID).Scan(
		&o.ID, &o.Date, &o.Total, &o.CustomerID, &o.Username,
	)
	return o, err
}

// GetOrderForAgentParams はGetOrderForAgentのパラメータ。
type GetOrderForAgentParams struct {
	ID      int64
	AgentID int64
}

// GetOrderForAgent は指定した営業担当者の担当顧客が所有する注文のみを検索する。
func (q *Queries) GetOrderForAgent(ctx context.Context, arg GetOrderForAgentParams) (Order, error) {
	const query = `
SELECT o.id, o.date, o.total, o.customer_id, o.username
FROM orders o
INNER JOIN customers c ON c.customer_id = o.customer_id
WHERE o.id = ? AND c.agent_id = ?`

	var o Order
	err := q.db.QueryRowContext(ctx, query, arg.ID, arg.AgentID).Scan(
		&o.ID, &o.Date, &o.Total, &o.CustomerID, &o.Username,
	)
	return o, err
}

// CreateOrderParams はCreateOrderのパラメータ。
type CreateOrderParams struct {
	ID         int64
	Date       string
	Total      float64
	CustomerID int64
	Username   string
}

// CreateOrder はordersテーブルに1行挿入する。
func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) error {
	const query = `
INSERT INTO orders (id, date, total, customer_id, username)
VALUES (?, ?, ?, ?, ?)`

	_, err := q.db.ExecContext(ctx, query,
		arg.ID, arg.Date, arg.Total, arg.CustomerID, arg.Username,
	)
	return err
}

// UpdateOrderParams はUpdateOrderのパラメータ。
type UpdateOrderParams struct {
	ID    int64
	Date  string
	Total float64
}

// UpdateOrder は注文の日付と合計金額を更新する。
func (q *Queries) UpdateOrder(ctx context.Context, arg UpdateOrderParams) error {
	const query = `
UPDATE orders
SET date = ?, total = ?
WHERE id = ?`

	_, err := q.db.ExecContext(ctx, query, arg.Date, arg.Total, arg.ID)
	return err
}

// ListOrderItemsForCustomerParams はListOrderItemsForCustomerのパラメータ。
type ListOrderItemsForCustomerParams struct {
	OrderID    int64
	CustomerID int64
}

// ListOrderItemsForCustomer は注文の明細を商品情報と結合して一覧する。
// 注文が指定した顧客のものでない場合、結果は空になる。
func (q *Queries) ListOrderItemsForCustomer(ctx context.Context, arg ListOrderItemsForCustomerParams) ([]OrderItem, error) {
	const query = `
SELECT oi.id, oi.order_id, p.description, oi.quantity, oi.price, oi.subtotal
FROM order_items oi
INNER JOIN orders o ON o.id = oi.order_id
INNER JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = ? AND o.customer_id = ?
ORDER BY oi.id`

	return q.listOrderItems(ctx, query, arg.OrderID, arg.CustomerID)
}

// ListOrderItemsForAgentParams はListOrderItemsForAgentのパラメータ。
type ListOrderItemsForAgentParams struct {
	OrderID int64
	AgentID int64
}

// ListOrderItemsForAgent は注文の明細を商品情報と結合して一覧する。
// 注文の顧客が指定した営業担当者の担当でない場合、結果は空になる。
func (q *Queries) ListOrderItemsForAgent(ctx context.Context, arg ListOrderItemsForAgentParams) ([]OrderItem, error) {
	const query = `
SELECT oi.id, oi.order_id, p.description, oi.quantity, oi.price, oi.subtotal
FROM order_items oi
INNER JOIN orders o ON o.id = oi.order_id
INNER JOIN customers c ON c.customer_id = o.customer_id
INNER JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = ? AND c.agent_id = ?
ORDER BY oi.id`

	return q.listOrderItems(ctx, query, arg.OrderID, arg.AgentID)
}

// listOrderItems は明細一覧クエリの共通実行処理。
func (q *Queries) listOrderItems(ctx context.Context, query string, args ...any) ([]OrderItem, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Product, &it.Quantity, &it.Price, &it.Subtotal); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// CreateOrderItemParams はCreateOrderItemのパラメータ。
type CreateOrderItemParams struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int64
	Price     float64
	Subtotal  float64
}

// CreateOrderItem はorder_itemsテーブルに1行挿入する。
func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) error {
	const query = `
INSERT INTO order_items (id, order_id, product_id, quantity, price, subtotal)
VALUES (?, ?, ?, ?, ?, ?)`

	_, err := q.db.ExecContext(ctx, query,
		arg.ID, arg.OrderID, arg.ProductID, arg.Quantity, arg.Price, arg.Subtotal,
	)
	return err
}
