package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

var inventoryColumns = map[string]string{
	"id":     "id",
	"itemId": "item_id",
	"qty":    "qty",
	"type":   "type",
}

func (m *MySQLAdapter) ListInventories(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.Inventory], error) {
	var where whereClause
	if filter.ID != nil {
		where.add("id = ?", *filter.ID)
	}
	if filter.ItemID != nil {
		where.add("item_id = ?", *filter.ItemID)
	}
	if filter.Type != "" {
		where.add("UPPER(type) = ?", strings.ToUpper(filter.Type))
	}

	total, err := m.count(ctx, "inventories", &where)
	if err != nil {
		return domain.Page[domain.Inventory]{}, err
	}

	query := "SELECT id, item_id, qty, type, created_at FROM inventories" +
		where.String() + orderBy(inventoryColumns, page.Sort, "id", page.Desc) + " LIMIT ? OFFSET ?"
	rows, err := m.db.QueryContext(ctx, query, append(where.args, page.Size, page.Offset())...)
	if err != nil {
		return domain.Page[domain.Inventory]{}, fmt.Errorf("query inventories: %w", err)
	}
	defer rows.Close()

	out := domain.Page[domain.Inventory]{Content: []domain.Inventory{}, Number: page.Number, Size: page.Size, TotalElements: total}
	for rows.Next() {
		var inv domain.Inventory
		if err := rows.Scan(&inv.ID, &inv.ItemID, &inv.Quantity, &inv.Type, &inv.CreatedAt); err != nil {
			return domain.Page[domain.Inventory]{}, fmt.Errorf("scan inventory: %w", err)
		}
		out.Content = append(out.Content, inv)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Inventory]{}, fmt.Errorf("iterate inventories: %w", err)
	}
	return out, nil
}

func (m *MySQLAdapter) GetInventory(ctx context.Context, id int) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := m.db.QueryRowContext(ctx, `
		SELECT id, item_id, qty, type, created_at
		FROM inventories WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.ItemID, &inv.Quantity, &inv.Type, &inv.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &inv, nil
}

func (m *MySQLAdapter) CreateInventory(ctx context.Context, inv domain.Inventory) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventories (id, item_id, qty, type, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		inv.ID, inv.ItemID, inv.Quantity, string(inv.Type), inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory: %w", translateExecError(err))
	}
	return nil
}

func (m *MySQLAdapter) DeleteInventory(ctx context.Context, id int) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM inventories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory: %w", err)
	}
	return requireAffected(result)
}

func (m *MySQLAdapter) SumQuantity(ctx context.Context, itemID int, movementType domain.MovementType) (int64, error) {
	var total int64
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(qty), 0)
		FROM inventories WHERE item_id = ? AND type = ?`,
		itemID, string(movementType),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum inventory qty: %w", err)
	}
	return total, nil
}
