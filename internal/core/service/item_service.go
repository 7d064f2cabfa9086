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

type ItemService struct {
	items port.ItemRepository
	stock *StockService
	now   func() time.Time
}

func NewItemService(items port.ItemRepository, stock *StockService) *ItemService {
	return &ItemService{items: items, stock: stock, now: time.Now}
}

func (s *ItemService) ListItems(ctx context.Context, filter domain.ItemFilter, page domain.PageRequest) (out domain.Page[domain.ItemStock], err error) {
	ctx, span := observability.Tracer().Start(ctx, "ItemService.ListItems")
	defer func() { observability.EndSpan(span, err) }()

	items, err := s.items.ListItems(ctx, filter, page)
	if err != nil {
		return out, fmt.Errorf("list items: %w", err)
	}

	out = domain.Page[domain.ItemStock]{
		Content:       make([]domain.ItemStock, 0, len(items.Content)),
		Number:        items.Number,
		Size:          items.Size,
		TotalElements: items.TotalElements,
	}
	for _, it := range items.Content {
		withStock, err := s.stock.withRemaining(ctx, it)
		if err != nil {
			return domain.Page[domain.ItemStock]{}, err
		}
		out.Content = append(out.Content, withStock)
	}
	return out, nil
}

func (s *ItemService) GetItem(ctx context.Context, id int) (out domain.ItemStock, err error) {
	ctx, span := observability.Tracer().Start(ctx, "ItemService.GetItem")
	span.SetAttributes(attribute.Int("item.id", id))
	defer func() { observability.EndSpan(span, err) }()

	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return out, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return out, domain.ErrItemNotFound
	}
	return s.stock.withRemaining(ctx, *item)
}

func (s *ItemService) CreateItem(ctx context.Context, req *ItemRequest) (out domain.ItemStock, err error) {
	ctx, span := observability.Tracer().Start(ctx, "ItemService.CreateItem")
	defer func() { observability.EndSpan(span, err) }()

	item, err := validateItemRequest(req)
	if err != nil {
		return out, err
	}
	span.SetAttributes(attribute.Int("item.id", item.ID))

	existing, err := s.items.GetItem(ctx, item.ID)
	if err != nil {
		return out, fmt.Errorf("get item: %w", err)
	}
	if existing != nil {
		return out, domain.ErrItemDuplicate
	}

	now := s.now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if err := s.items.CreateItem(ctx, item); err != nil {
		if errors.Is(err, port.ErrDuplicateKey) {
			return out, domain.ErrItemDuplicate
		}
		return out, fmt.Errorf("create item: %w", err)
	}

	logging.FromContext(ctx).Info("item_created", zap.Int("item_id", item.ID), zap.String("price", item.Price.String()))
	return s.stock.withRemaining(ctx, item)
}

func (s *ItemService) UpdateItem(ctx context.Context, req *ItemRequest) (out domain.ItemStock, err error) {
	ctx, span := observability.Tracer().Start(ctx, "ItemService.UpdateItem")
	defer func() { observability.EndSpan(span, err) }()

	update, err := validateItemRequest(req)
	if err != nil {
		return out, err
	}
	span.SetAttributes(attribute.Int("item.id", update.ID))

	item, err := s.items.GetItem(ctx, update.ID)
	if err != nil {
		return out, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return out, domain.ErrItemNotFound
	}

	item.Name = update.Name
	item.Price = update.Price
	item.UpdatedAt = s.now()
	if err := s.items.UpdateItem(ctx, *item); err != nil {
		if errors.Is(err, port.ErrNoRows) {
			return out, domain.ErrItemNotFound
		}
		return out, fmt.Errorf("update item: %w", err)
	}

	logging.FromContext(ctx).Info("item_updated", zap.Int("item_id", item.ID))
	return s.stock.withRemaining(ctx, *item)
}

// DeleteItem removes the item only; movements and orders that reference it
// are left in place.
func (s *ItemService) DeleteItem(ctx context.Context, id int) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "ItemService.DeleteItem")
	span.SetAttributes(attribute.Int("item.id", id))
	defer func() { observability.EndSpan(span, err) }()

	item, err := s.items.GetItem(ctx, id)
	if err != nil {
		return fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		return domain.ErrItemNotFound
	}

	if err := s.items.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, port.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("delete item: %w", err)
	}

	logging.FromContext(ctx).Info("item_deleted", zap.Int("item_id", id))
	return nil
}
