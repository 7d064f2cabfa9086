package port

import (
	"context"
	"errors"

	"github.com/rl1809/stock-ledger/internal/core/domain"
)

var (
	// ErrDuplicateKey is returned when an insert collides with an existing primary key.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNoRows is returned when an update or delete matched nothing.
	ErrNoRows = errors.New("no rows affected")
)

// Lookups return (nil, nil) when the row does not exist.

type ItemRepository interface {
	ListItems(ctx context.Context, filter domain.ItemFilter, page domain.PageRequest) (domain.Page[domain.Item], error)
	GetItem(ctx context.Context, id int) (*domain.Item, error)
	CreateItem(ctx context.Context, item domain.Item) error
	UpdateItem(ctx context.Context, item domain.Item) error
	DeleteItem(ctx context.Context, id int) error
}

type InventoryRepository interface {
	ListInventories(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (domain.Page[domain.Inventory], error)
	GetInventory(ctx context.Context, id int) (*domain.Inventory, error)
	CreateInventory(ctx context.Context, inv domain.Inventory) error
	DeleteInventory(ctx context.Context, id int) error

	// SumQuantity totals the movements of one type for an item, 0 when there are none.
	SumQuantity(ctx context.Context, itemID int, movementType domain.MovementType) (int64, error)
}

type OrderRepository interface {
	ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (domain.Page[domain.Order], error)
	GetOrder(ctx context.Context, orderNo string) (*domain.Order, error)
	CreateOrder(ctx context.Context, order domain.Order) error
	UpdateOrder(ctx context.Context, order domain.Order) error
	DeleteOrder(ctx context.Context, orderNo string) error

	// SumOrderedQuantity totals the quantity of every order for an item, 0 when there are none.
	SumOrderedQuantity(ctx context.Context, itemID int) (int64, error)
}

type DatabaseRepository interface {
	ItemRepository
	InventoryRepository
	OrderRepository

	Ping(ctx context.Context) error
}
