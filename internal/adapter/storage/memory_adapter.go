package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/port"
)

// MemoryAdapter keeps every table in process memory. It honours the same
// contract as MySQLAdapter and is used for tests and local runs.
type MemoryAdapter struct {
	mu          sync.RWMutex
	items       map[int]domain.Item
	inventories map[int]domain.Inventory
	orders      map[string]domain.Order
}

var _ port.DatabaseRepository = (*MemoryAdapter)(nil)

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		items:       make(map[int]domain.Item),
		inventories: make(map[int]domain.Inventory),
		orders:      make(map[string]domain.Order),
	}
}

func (m *MemoryAdapter) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Items

func (m *MemoryAdapter) ListItems(ctx context.Context, filter domain.ItemFilter, page domain.PageRequest) (domain.Page[domain.Item], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name := strings.ToLower(filter.Name)
	var rows []domain.Item
	for _, it := range m.items {
		if filter.ID != nil && it.ID != *filter.ID {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(it.Name), name) {
			continue
		}
		rows = append(rows, it)
	}

	slices.SortFunc(rows, func(a, b domain.Item) int {
		var c int
		switch page.Sort {
		case "name":
			c = cmp.Compare(a.Name, b.Name)
		case "price":
			c = a.Price.Cmp(b.Price)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return direction(c, page.Desc)
	})
	return paginate(rows, page), nil
}

func (m *MemoryAdapter) GetItem(ctx context.Context, id int) (*domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *MemoryAdapter) CreateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; ok {
		return port.ErrDuplicateKey
	}
	m.items[item.ID] = item
	return nil
}

func (m *MemoryAdapter) UpdateItem(ctx context.Context, item domain.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.items[item.ID]
	if !ok {
		return port.ErrNoRows
	}
	current.Name = item.Name
	current.Price = item.Price
	current.UpdatedAt = item.UpdatedAt
	m.items[item.ID] = current
	return nil
}

func (m *MemoryAdapter) DeleteItem(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return port.ErrNoRows
	}
	delete(m.items, id)
	return nil
}

// Inventories

func (m *MemoryAdapter) ListInventories(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.Inventory], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []domain.Inventory
	for _, inv := range m.inventories {
		if filter.ID != nil && inv.ID != *filter.ID {
			continue
		}
		if filter.ItemID != nil && inv.ItemID != *filter.ItemID {
			continue
		}
		if filter.Type != "" && !strings.EqualFold(string(inv.Type), filter.Type) {
			continue
		}
		rows = append(rows, inv)
	}

	slices.SortFunc(rows, func(a, b domain.Inventory) int {
		var c int
		switch page.Sort {
		case "itemId":
			c = cmp.Compare(a.ItemID, b.ItemID)
		case "qty":
			c = cmp.Compare(a.Quantity, b.Quantity)
		case "type":
			c = cmp.Compare(a.Type, b.Type)
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return direction(c, page.Desc)
	})
	return paginate(rows, page), nil
}

func (m *MemoryAdapter) GetInventory(ctx context.Context, id int) (*domain.Inventory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	inv, ok := m.inventories[id]
	if !ok {
		return nil, nil
	}
	return &inv, nil
}

func (m *MemoryAdapter) CreateInventory(ctx context.Context, inv domain.Inventory) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inventories[inv.ID]; ok {
		return port.ErrDuplicateKey
	}
	m.inventories[inv.ID] = inv
	return nil
}

func (m *MemoryAdapter) DeleteInventory(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.inventories[id]; !ok {
		return port.ErrNoRows
	}
	delete(m.inventories, id)
	return nil
}

func (m *MemoryAdapter) SumQuantity(ctx context.Context, itemID int, movementType domain.MovementType) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, inv := range m.inventories {
		if inv.ItemID == itemID && inv.Type == movementType {
			total += inv.Quantity
		}
	}
	return total, nil
}

// Orders

func (m *MemoryAdapter) ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []domain.Order
	for _, o := range m.orders {
		if filter.OrderNo != "" && o.OrderNo != filter.OrderNo {
			continue
		}
		if filter.ItemID != nil && o.ItemID != *filter.ItemID {
			continue
		}
		rows = append(rows, o)
	}

	slices.SortFunc(rows, func(a, b domain.Order) int {
		var c int
		switch page.Sort {
		case "itemId":
			c = cmp.Compare(a.ItemID, b.ItemID)
		case "qty":
			c = cmp.Compare(a.Quantity, b.Quantity)
		case "price":
			c = a.Price.Cmp(b.Price)
		}
		if c == 0 {
			c = cmp.Compare(a.OrderNo, b.OrderNo)
		}
		return direction(c, page.Desc)
	})
	return paginate(rows, page), nil
}

func (m *MemoryAdapter) GetOrder(ctx context.Context, orderNo string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[orderNo]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *MemoryAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.OrderNo]; ok {
		return port.ErrDuplicateKey
	}
	m.orders[order.OrderNo] = order
	return nil
}

func (m *MemoryAdapter) UpdateOrder(ctx context.Context, order domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.orders[order.OrderNo]
	if !ok {
		return port.ErrNoRows
	}
	current.ItemID = order.ItemID
	current.Quantity = order.Quantity
	current.Price = order.Price
	current.UpdatedAt = order.UpdatedAt
	m.orders[order.OrderNo] = current
	return nil
}

func (m *MemoryAdapter) DeleteOrder(ctx context.Context, orderNo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[orderNo]; !ok {
		return port.ErrNoRows
	}
	delete(m.orders, orderNo)
	return nil
}

func (m *MemoryAdapter) SumOrderedQuantity(ctx context.Context, itemID int) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, o := range m.orders {
		if o.ItemID == itemID {
			total += o.Quantity
		}
	}
	return total, nil
}

func direction(c int, desc bool) int {
	if desc {
		return -c
	}
	return c
}

func paginate[T any](rows []T, page domain.PageRequest) domain.Page[T] {
	out := domain.Page[T]{
		Content:       []T{},
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: int64(len(rows)),
	}
	start := page.Offset()
	if start >= len(rows) {
		return out
	}
	end := min(start+page.Size, len(rows))
	out.Content = append(out.Content, rows[start:end]...)
	return out
}
