package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

var orderColumns = map[string]string{
	"orderNo": "order_no",
	"itemId":  "item_id",
	"qty":     "qty",
	"price":   "price",
}

func (m *MySQLAdapter) ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error) {
	var where whereClause
	if filter.OrderNo != "" {
		where.add("order_no = ?", filter.OrderNo)
	}
	if filter.ItemID != nil {
		where.add("item_id = ?", *filter.ItemID)
	}

	total, err := m.count(ctx, "orders", &where)
	if err != nil {
		return domain.Page[domain.Order]{}, err
	}

	query := "SELECT order_no, item_id, qty, price, created_at, updated_at FROM orders" +
		where.String() + orderBy(orderColumns, page.Sort, "order_no", page.Desc) + " LIMIT ? OFFSET ?"
	rows, err := m.db.QueryContext(ctx, query, append(where.args, page.Size, page.Offset())...)
	if err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := domain.Page[domain.Order]{Content: []domain.Order{}, Number: page.Number, Size: page.Size, TotalElements: total}
	for rows.Next() {
		var o domain.Order
		if err := rows.Scan(&o.OrderNo, &o.ItemID, &o.Quantity, &o.Price, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return domain.Page[domain.Order]{}, fmt.Errorf("scan order: %w", err)
		}
		out.Content = append(out.Content, o)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Order]{}, fmt.Errorf("iterate orders: %w", err)
	}
	return out, nil
}

func (m *MySQLAdapter) GetOrder(ctx context.Context, orderNo string) (*domain.Order, error) {
	var o domain.Order
	err := m.db.QueryRowContext(ctx, `
		SELECT order_no, item_id, qty, price, created_at, updated_at
		FROM orders WHERE order_no = ?`, orderNo,
	).Scan(&o.OrderNo, &o.ItemID, &o.Quantity, &o.Price, &o.CreatedAt, &o.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	return &o, nil
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO orders (order_no, item_id, qty, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.OrderNo, order.ItemID, order.Quantity, order.Price,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", translateExecError(err))
	}
	return nil
}

func (m *MySQLAdapter) UpdateOrder(ctx context.Context, order domain.Order) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE orders SET item_id = ?, qty = ?, price = ?, updated_at = ?
		WHERE order_no = ?`,
		order.ItemID, order.Quantity, order.Price, order.UpdatedAt, order.OrderNo,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteOrder(ctx context.Context, orderNo string) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM orders WHERE order_no = ?`, orderNo)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	return requireAffected(result)
}

func (m *MySQLAdapter) SumOrderedQuantity(ctx context.Context, itemID int) (int64, error) {
	var total int64
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(qty), 0)
		FROM orders WHERE item_id = ?`, itemID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum order qty: %w", err)
	}
	return total, nil
}
