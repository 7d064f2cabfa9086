package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/core/service"
	"github.com/rl1809/stock-ledger/internal/port"
)

const itemID = 1

func main() {
	redisAddr := flag.String("redis", "", "Redis address for the item lock; empty uses the in-process lock")
	unlocked := flag.Bool("unlocked", false, "run without any item lock")
	initialStock := flag.Int64("stock", 20, "units topped up before the run")
	totalRequests := flag.Int("requests", 50, "concurrent single-unit orders")
	flag.Parse()

	ctx := context.Background()

	var locker port.Locker = storage.NewLocalLocker()
	switch {
	case *unlocked:
		locker = storage.NopLocker{}
	case *redisAddr != "":
		rdb := redis.NewClient(&redis.Options{Addr: *redisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer rdb.Close()
		rdb.Del(ctx, fmt.Sprintf("lock:item:%d", itemID))
		locker = storage.NewRedisAdapter(rdb, 5*time.Second)
	}

	db := storage.NewMemoryAdapter()
	stock := service.NewStockService(db, db, db)
	items := service.NewItemService(db, stock)
	inventories := service.NewInventoryService(db, db)
	orders := service.NewOrderService(db, db, stock, locker, service.WithLockWait(10*time.Second))

	id, name, price := itemID, "stress-item", decimal.NewFromInt(1)
	if _, err := items.CreateItem(ctx, &service.ItemRequest{ID: &id, Name: &name, Price: &price}); err != nil {
		log.Fatalf("failed to create item: %v", err)
	}
	invID, topUp := 1, "T"
	if _, err := inventories.CreateInventory(ctx, &service.InventoryRequest{ID: &invID, ItemID: &id, Qty: initialStock, Type: &topUp}); err != nil {
		log.Fatalf("failed to top up: %v", err)
	}

	var successCount atomic.Int32
	var rejectCount atomic.Int32
	var errorCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			orderNo, qty := fmt.Sprintf("stress-%d", n), int64(1)
			_, err := orders.CreateOrder(ctx, &service.OrderRequest{OrderNo: &orderNo, ItemID: &id, Qty: &qty})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrOrderInsufficientStock):
				rejectCount.Add(1)
			default:
				errorCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success, rejected, failed := successCount.Load(), rejectCount.Load(), errorCount.Load()
	remaining, err := stock.RemainingStock(ctx, itemID)
	if err != nil {
		log.Fatalf("failed to read remaining stock: %v", err)
	}

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Rejected (stock): %d\n", rejected)
	fmt.Printf("Errors:           %d\n", failed)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Printf("Remaining Stock:  %d\n", remaining)
	fmt.Println("==========================================")

	expected := min(int64(*totalRequests), *initialStock)
	if int64(success) == expected && remaining == *initialStock-expected {
		fmt.Printf("PASS: exactly %d orders succeeded, no oversell\n", expected)
	} else {
		fmt.Printf("FAIL: expected %d orders and remaining %d, got %d and %d\n",
			expected, *initialStock-expected, success, remaining)
	}
}
