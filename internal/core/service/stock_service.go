package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/observability"
	"github.com/rl1809/stock-ledger/internal/port"
)

type StockService struct {
	items       port.ItemRepository
	inventories port.InventoryRepository
	orders      port.OrderRepository
}

func NewStockService(items port.ItemRepository, inventories port.InventoryRepository, orders port.OrderRepository) *StockService {
	return &StockService{items: items, inventories: inventories, orders: orders}
}

// RemainingStock is Σ top-ups − Σ withdrawals − Σ ordered quantities for
// itemID. An item without movements or orders has 0, never an error.
func (s *StockService) RemainingStock(ctx context.Context, itemID int) (remaining int64, err error) {
	ctx, span := observability.Tracer().Start(ctx, "StockService.RemainingStock")
	span.SetAttributes(attribute.Int("item.id", itemID))
	defer func() { observability.EndSpan(span, err) }()

	topUp, err := s.inventories.SumQuantity(ctx, itemID, domain.MovementTopUp)
	if err != nil {
		return 0, fmt.Errorf("sum top-ups: %w", err)
	}
	withdrawn, err := s.inventories.SumQuantity(ctx, itemID, domain.MovementWithdrawal)
	if err != nil {
		return 0, fmt.Errorf("sum withdrawals: %w", err)
	}
	ordered, err := s.orders.SumOrderedQuantity(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("sum orders: %w", err)
	}

	remaining = topUp - withdrawn - ordered
	span.SetAttributes(attribute.Int64("stock.remaining", remaining))
	return remaining, nil
}

// ItemRemainingStock is RemainingStock for an item that must exist.
func (s *StockService) ItemRemainingStock(ctx context.Context, itemID int) (int64, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return 0, domain.ErrItemNotFound
	}
	return s.RemainingStock(ctx, itemID)
}

func (s *StockService) withRemaining(ctx context.Context, item domain.Item) (domain.ItemStock, error) {
	remaining, err := s.RemainingStock(ctx, item.ID)
	if err != nil {
		return domain.ItemStock{}, err
	}
	return domain.ItemStock{Item: item, RemainingStock: remaining}, nil
}
