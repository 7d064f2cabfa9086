package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

var itemColumns = map[string]string{
	"id":    "id",
	"name":  "name",
	"price": "price",
}

func (m *MySQLAdapter) ListItems(ctx context.Context, filter domain.ItemFilter, page domain.PageRequest) (domain.Page[domain.Item], error) {
	var where whereClause
	if filter.ID != nil {
		where.add("id = ?", *filter.ID)
	}
	if filter.Name != "" {
		where.add("LOWER(name) LIKE ?", "%"+likeEscape(strings.ToLower(filter.Name))+"%")
	}

	total, err := m.count(ctx, "items", &where)
	if err != nil {
		return domain.Page[domain.Item]{}, err
	}

	query := "SELECT id, name, price, created_at, updated_at FROM items" +
		where.String() + orderBy(itemColumns, page.Sort, "id", page.Desc) + " LIMIT ? OFFSET ?"
	rows, err := m.db.QueryContext(ctx, query, append(where.args, page.Size, page.Offset())...)
	if err != nil {
		return domain.Page[domain.Item]{}, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	out := domain.Page[domain.Item]{Content: []domain.Item{}, Number: page.Number, Size: page.Size, TotalElements: total}
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Price, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return domain.Page[domain.Item]{}, fmt.Errorf("scan item: %w", err)
		}
		out.Content = append(out.Content, it)
	}
	if err := rows.Err(); err != nil {
		return domain.Page[domain.Item]{}, fmt.Errorf("iterate items: %w", err)
	}
	return out, nil
}

func (m *MySQLAdapter) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	var it domain.Item
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, price, created_at, updated_at
		FROM items WHERE id = ?`, id,
	).Scan(&it.ID, &it.Name, &it.Price, &it.CreatedAt, &it.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	return &it, nil
}

func (m *MySQLAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO items (id, name, price, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Price, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", translateExecError(err))
	}
	return nil
}

// UpdateItem does not report missing rows: MySQL counts unchanged rows as
// unaffected, so existence is checked by the caller.
func (m *MySQLAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE items SET name = ?, price = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Price, item.UpdatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteItem(ctx context.Context, id int) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return requireAffected(result)
}
