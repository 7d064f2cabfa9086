package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/observability"
	"github.com/rl1809/stock-ledger/internal/pkg/logging"
	"github.com/rl1809/stock-ledger/internal/port"
)

// InventoryService records stock movements. Movements are never edited:
// the remaining stock of an item is derived from the full history.
type InventoryService struct {
	inventories port.InventoryRepository
	items       port.ItemRepository
	now         func() time.Time
}

func NewInventoryService(inventories port.InventoryRepository, items port.ItemRepository) *InventoryService {
	return &InventoryService{inventories: inventories, items: items, now: time.Now}
}

func (s *InventoryService) ListInventories(ctx context.Context, filter domain.InventoryFilter, page domain.PageRequest) (out domain.Page[domain.Inventory], err error) {
	ctx, span := observability.Tracer().Start(ctx, "InventoryService.ListInventories")
	defer func() { observability.EndSpan(span, err) }()

	out, err = s.inventories.ListInventories(ctx, filter, page)
	if err != nil {
		return out, fmt.Errorf("list inventories: %w", err)
	}
	return out, nil
}

func (s *InventoryService) GetInventory(ctx context.Context, id int) (out domain.Inventory, err error) {
	ctx, span := observability.Tracer().Start(ctx, "InventoryService.GetInventory")
	span.SetAttributes(attribute.Int("inventory.id", id))
	defer func() { observability.EndSpan(span, err) }()

	inv, err := s.inventories.GetInventory(ctx, id)
	if err != nil {
		return out, fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return out, domain.ErrInventoryNotFound
	}
	return *inv, nil
}

func (s *InventoryService) CreateInventory(ctx context.Context, req *InventoryRequest) (out domain.Inventory, err error) {
	ctx, span := observability.Tracer().Start(ctx, "InventoryService.CreateInventory")
	defer func() { observability.EndSpan(span, err) }()

	inv, err := validateInventoryRequest(req)
	if err != nil {
		return out, err
	}
	span.SetAttributes(
		attribute.Int("inventory.id", inv.ID),
		attribute.Int("item.id", inv.ItemID),
		attribute.String("inventory.type", string(inv.Type)),
	)

	existing, err := s.inventories.GetInventory(ctx, inv.ID)
	if err != nil {
		return out, fmt.Errorf("get inventory: %w", err)
	}
	if existing != nil {
		return out, domain.ErrInventoryDuplicate
	}

	item, err := s.items.GetItem(ctx, inv.ItemID)
	if err != nil {
		return out, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return out, domain.ErrInventoryItemNotFound
	}

	inv.CreatedAt = s.now()
	if err := s.inventories.CreateInventory(ctx, inv); err != nil {
		if errors.Is(err, port.ErrDuplicateKey) {
			return out, domain.ErrInventoryDuplicate
		}
		return out, fmt.Errorf("create inventory: %w", err)
	}

	logging.FromContext(ctx).Info("inventory_created",
		zap.Int("inventory_id", inv.ID),
		zap.Int("item_id", inv.ItemID),
		zap.String("type", string(inv.Type)),
		zap.Int64("qty", inv.Quantity),
	)
	return inv, nil
}

// UpdateInventory always refuses: rewriting a movement would silently
// change every stock balance derived from it.
func (s *InventoryService) UpdateInventory(ctx context.Context, req *InventoryRequest) (domain.Inventory, error) {
	logging.FromContext(ctx).Warn("inventory_update_refused")
	return domain.Inventory{}, domain.ErrInventoryUpdateUnsupported
}

func (s *InventoryService) DeleteInventory(ctx context.Context, id int) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "InventoryService.DeleteInventory")
	span.SetAttributes(attribute.Int("inventory.id", id))
	defer func() { observability.EndSpan(span, err) }()

	inv, err := s.inventories.GetInventory(ctx, id)
	if err != nil {
		return fmt.Errorf("get inventory: %w", err)
	}
	if inv == nil {
		return domain.ErrInventoryNotFound
	}

	if err := s.inventories.DeleteInventory(ctx, id); err != nil {
		if errors.Is(err, port.ErrNoRows) {
			return domain.ErrInventoryNotFound
		}
		return fmt.Errorf("delete inventory: %w", err)
	}

	logging.FromContext(ctx).Info("inventory_deleted", zap.Int("inventory_id", id), zap.Int("item_id", inv.ItemID))
	return nil
}
