package api

import (
	"database/sql"
	"fmt"
)

// デモデータ定義。顧客2名・営業担当者1名・スコープ識別子を持たない
// 営業担当者1名のユーザーと、それに対応する顧客・商品・注文を含む。
const demoSeed = `
INSERT OR IGNORE INTO users (username, password, role, customer_id, agent_id) VALUES
    ('cliente1',  '1234',  'customer', 11111111, NULL),
    ('cliente2',  '1234',  'customer', 22222222, NULL),
    ('vendedor1', '1234',  'agent',    NULL,     10),
    ('admin1',    'admin', 'agent',    NULL,     NULL);

INSERT OR IGNORE INTO customers (customer_id, name, agent_id) VALUES
    (11111111, 'Juan Pérez',   10),
    (22222222, 'María López',  10),
    (33333333, 'Carlos Díaz',  20);

INSERT OR IGNORE INTO products (id, description, price) VALUES
    (1, 'Notebook', 1500.0),
    (2, 'Mouse',    25.5),
    (3, 'Teclado',  45.0);

INSERT OR IGNORE INTO orders (id, date, total, customer_id, username) VALUES
    (1, '2024-05-10', 1525.5, 11111111, 'cliente1'),
    (2, '2024-06-01', 45.0,   11111111, 'cliente1'),
    (3, '2024-06-15', 1500.0, 22222222, 'cliente2');

INSERT OR IGNORE INTO order_items (id, order_id, product_id, quantity, price, subtotal) VALUES
    (1, 1, 1, 1, 1500.0, 1500.0),
    (2, 1, 2, 1, 25.5,   25.5),
    (3, 2, 3, 1, 45.0,   45.0),
    (4, 3, 1, 1, 1500.0, 1500.0);
`

// applyDemoSeed はデモデータをデータベースに投入する。
// すでに投入済みの行はスキップされる。
func applyDemoSeed(db *sql.DB) error {
	if _, err := db.Exec(demoSeed); err != nil {
		return fmt.Errorf("デモデータの投入に失敗: %w", err)
	}
	return nil
}
