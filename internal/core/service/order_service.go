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

const defaultLockWait = 3 * time.Second

// Updates look the order up by its number and say so.
var errOrderNoNotFound = domain.ErrOrderNotFound.WithMessage("Order no not found")

type OrderService struct {
	orders   port.OrderRepository
	items    port.ItemRepository
	stock    *StockService
	locker   port.Locker
	metrics  *observability.Metrics
	lockWait time.Duration
	now      func() time.Time
}

type OrderOption func(*OrderService)

// WithLockWait bounds how long a create or update waits for the item lock.
func WithLockWait(d time.Duration) OrderOption {
	return func(s *OrderService) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

func WithMetrics(m *observability.Metrics) OrderOption {
	return func(s *OrderService) { s.metrics = m }
}

func WithClock(now func() time.Time) OrderOption {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(orders port.OrderRepository, items port.ItemRepository, stock *StockService, locker port.Locker, opts ...OrderOption) *OrderService {
	s := &OrderService{
		orders:   orders,
		items:    items,
		stock:    stock,
		locker:   locker,
		lockWait: defaultLockWait,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter, page domain.PageRequest) (out domain.Page[domain.Order], err error) {
	ctx, span := observability.Tracer().Start(ctx, "OrderService.ListOrders")
	defer func() { observability.EndSpan(span, err) }()

	out, err = s.orders.ListOrders(ctx, filter, page)
	if err != nil {
		return out, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderNo string) (out domain.Order, err error) {
	ctx, span := observability.Tracer().Start(ctx, "OrderService.GetOrder")
	span.SetAttributes(attribute.String("order.no", orderNo))
	defer func() { observability.EndSpan(span, err) }()

	order, err := s.orders.GetOrder(ctx, orderNo)
	if err != nil {
		return out, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return out, domain.ErrOrderNotFound
	}
	return *order, nil
}

// CreateOrder places an order against the item's remaining stock. The stock
// check and the insert run under the item lock so concurrent orders for the
// same item cannot both pass the check.
func (s *OrderService) CreateOrder(ctx context.Context, req *OrderRequest) (out domain.Order, err error) {
	ctx, span := observability.Tracer().Start(ctx, "OrderService.CreateOrder")
	defer func() { observability.EndSpan(span, err) }()

	order, err := validateOrderRequest(req)
	if err != nil {
		return out, err
	}
	span.SetAttributes(
		attribute.String("order.no", order.OrderNo),
		attribute.Int("item.id", order.ItemID),
		attribute.Int64("order.qty", order.Quantity),
	)

	release, err := s.lockItem(ctx, order.ItemID)
	if err != nil {
		return out, err
	}
	defer release()

	existing, err := s.orders.GetOrder(ctx, order.OrderNo)
	if err != nil {
		return out, fmt.Errorf("get order: %w", err)
	}
	if existing != nil {
		s.metrics.OrderRejected("duplicate")
		return out, domain.ErrOrderDuplicate
	}

	item, err := s.items.GetItem(ctx, order.ItemID)
	if err != nil {
		return out, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		s.metrics.OrderRejected("item_not_found")
		return out, domain.ErrOrderItemNotFound
	}

	remaining, err := s.stock.RemainingStock(ctx, order.ItemID)
	if err != nil {
		return out, err
	}
	if remaining < order.Quantity {
		s.metrics.OrderRejected("insufficient_stock")
		logging.FromContext(ctx).Warn("order_rejected_insufficient_stock",
			zap.String("order_no", order.OrderNo),
			zap.Int("item_id", order.ItemID),
			zap.Int64("remaining", remaining),
			zap.Int64("requested", order.Quantity),
		)
		return out, domain.ErrOrderInsufficientStock
	}

	now := s.now()
	order.Price = item.Price
	order.CreatedAt = now
	order.UpdatedAt = now
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		if errors.Is(err, port.ErrDuplicateKey) {
			s.metrics.OrderRejected("duplicate")
			return out, domain.ErrOrderDuplicate
		}
		return out, fmt.Errorf("create order: %w", err)
	}

	logging.FromContext(ctx).Info("order_created",
		zap.String("order_no", order.OrderNo),
		zap.Int("item_id", order.ItemID),
		zap.Int64("qty", order.Quantity),
		zap.String("price", order.Price.String()),
	)
	return order, nil
}

// UpdateOrder replaces the item and quantity of an existing order and
// re-snapshots the price. The order's current quantity is credited back
// before the stock check, whichever item it was placed against.
func (s *OrderService) UpdateOrder(ctx context.Context, req *OrderRequest) (out domain.Order, err error) {
	ctx, span := observability.Tracer().Start(ctx, "OrderService.UpdateOrder")
	defer func() { observability.EndSpan(span, err) }()

	update, err := validateOrderRequest(req)
	if err != nil {
		return out, err
	}
	span.SetAttributes(
		attribute.String("order.no", update.OrderNo),
		attribute.Int("item.id", update.ItemID),
		attribute.Int64("order.qty", update.Quantity),
	)

	release, err := s.lockItem(ctx, update.ItemID)
	if err != nil {
		return out, err
	}
	defer release()

	order, err := s.orders.GetOrder(ctx, update.OrderNo)
	if err != nil {
		return out, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return out, errOrderNoNotFound
	}

	item, err := s.items.GetItem(ctx, update.ItemID)
	if err != nil {
		return out, fmt.Errorf("get item: %w", err)
	}
	if item == nil {
		s.metrics.OrderRejected("item_not_found")
		return out, domain.ErrOrderItemNotFound
	}

	remaining, err := s.stock.RemainingStock(ctx, update.ItemID)
	if err != nil {
		return out, err
	}
	if remaining+order.Quantity < update.Quantity {
		s.metrics.OrderRejected("insufficient_stock")
		logging.FromContext(ctx).Warn("order_update_rejected_insufficient_stock",
			zap.String("order_no", order.OrderNo),
			zap.Int("item_id", update.ItemID),
			zap.Int64("remaining", remaining),
			zap.Int64("current_qty", order.Quantity),
			zap.Int64("requested", update.Quantity),
		)
		return out, domain.ErrOrderInsufficientStock
	}

	order.ItemID = update.ItemID
	order.Quantity = update.Quantity
	order.Price = item.Price
	order.UpdatedAt = s.now()
	if err := s.orders.UpdateOrder(ctx, *order); err != nil {
		if errors.Is(err, port.ErrNoRows) {
			return out, errOrderNoNotFound
		}
		return out, fmt.Errorf("update order: %w", err)
	}

	logging.FromContext(ctx).Info("order_updated",
		zap.String("order_no", order.OrderNo),
		zap.Int("item_id", order.ItemID),
		zap.Int64("qty", order.Quantity),
	)
	return *order, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, orderNo string) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "OrderService.DeleteOrder")
	span.SetAttributes(attribute.String("order.no", orderNo))
	defer func() { observability.EndSpan(span, err) }()

	order, err := s.orders.GetOrder(ctx, orderNo)
	if err != nil {
		return fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return domain.ErrOrderNotFound
	}

	if err := s.orders.DeleteOrder(ctx, orderNo); err != nil {
		if errors.Is(err, port.ErrNoRows) {
			return domain.ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}

	logging.FromContext(ctx).Info("order_deleted", zap.String("order_no", orderNo), zap.Int("item_id", order.ItemID))
	return nil
}

func (s *OrderService) lockItem(ctx context.Context, itemID int) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	key := fmt.Sprintf("item:%d", itemID)
	unlock, err := s.locker.Acquire(waitCtx, key)
	if err != nil {
		return nil, fmt.Errorf("lock item %d: %w", itemID, err)
	}

	return func() {
		// The request context may already be done; the lock must still go.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := unlock(releaseCtx); err != nil {
			logging.FromContext(ctx).Warn("lock_release_failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
