package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-ledger/internal/core/domain"
	"github.com/rl1809/stock-ledger/internal/port"
)

func getMySQLAdapter(t *testing.T) (*MySQLAdapter, *sql.DB) {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/stockledger?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	adapter := NewMySQLAdapter(db)
	if err := adapter.EnsureSchema(context.Background()); err != nil {
		db.Close()
		t.Fatalf("EnsureSchema failed: %v", err)
	}
	return adapter, db
}

func cleanupMySQL(ctx context.Context, db *sql.DB, itemID int) {
	db.ExecContext(ctx, `DELETE FROM orders WHERE item_id = ?`, itemID)
	db.ExecContext(ctx, `DELETE FROM inventories WHERE item_id = ?`, itemID)
	db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
}

func TestMySQL_ItemLifecycle(t *testing.T) {
	adapter, db := getMySQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	itemID := 910001
	cleanupMySQL(ctx, db, itemID)
	defer cleanupMySQL(ctx, db, itemID)

	now := time.Now().Truncate(time.Millisecond)
	item := domain.Item{ID: itemID, Name: "Ballpoint Pen", Price: decimal.RequireFromString("5.25"), CreatedAt: now, UpdatedAt: now}

	if err := adapter.CreateItem(ctx, item); err != nil {
		t.Fatalf("CreateItem failed: %v", err)
	}

	err := adapter.CreateItem(ctx, item)
	if !errors.Is(err, port.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got: %v", err)
	}

	got, err := adapter.GetItem(ctx, itemID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected item, got nil")
	}
	if got.Name != "Ballpoint Pen" || !got.Price.Equal(item.Price) {
		t.Errorf("unexpected item: %+v", got)
	}

	item.Name = "Gel Pen"
	item.Price = decimal.RequireFromString("7")
	if err := adapter.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	page, err := adapter.ListItems(ctx, domain.ItemFilter{Name: "GEL"}, domain.NewPageRequest(0, 10, "id", false, domain.ItemSortFields))
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	found := false
	for _, it := range page.Content {
		if it.ID == itemID {
			found = true
		}
	}
	if !found {
		t.Error("expected updated item to match name filter")
	}

	if err := adapter.DeleteItem(ctx, itemID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if err := adapter.DeleteItem(ctx, itemID); !errors.Is(err, port.ErrNoRows) {
		t.Errorf("expected ErrNoRows, got: %v", err)
	}
}

func TestMySQL_GetItem_NotFound(t *testing.T) {
	adapter, db := getMySQLAdapter(t)
	defer db.Close()

	it, err := adapter.GetItem(context.Background(), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if it != nil {
		t.Error("expected nil for nonexistent item")
	}
}

func TestMySQL_StockSums(t *testing.T) {
	adapter, db := getMySQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	itemID := 910002
	cleanupMySQL(ctx, db, itemID)
	defer cleanupMySQL(ctx, db, itemID)

	now := time.Now()
	movements := []domain.Inventory{
		{ID: 920001, ItemID: itemID, Quantity: 40, Type: domain.MovementTopUp, CreatedAt: now},
		{ID: 920002, ItemID: itemID, Quantity: 5, Type: domain.MovementTopUp, CreatedAt: now},
		{ID: 920003, ItemID: itemID, Quantity: 10, Type: domain.MovementWithdrawal, CreatedAt: now},
	}
	for _, mv := range movements {
		db.ExecContext(ctx, `DELETE FROM inventories WHERE id = ?`, mv.ID)
		if err := adapter.CreateInventory(ctx, mv); err != nil {
			t.Fatalf("CreateInventory failed: %v", err)
		}
	}

	order := domain.Order{OrderNo: "mysql-test-order-1", ItemID: itemID, Quantity: 5, Price: decimal.NewFromInt(3), CreatedAt: now, UpdatedAt: now}
	db.ExecContext(ctx, `DELETE FROM orders WHERE order_no = ?`, order.OrderNo)
	if err := adapter.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	topUp, err := adapter.SumQuantity(ctx, itemID, domain.MovementTopUp)
	if err != nil {
		t.Fatalf("SumQuantity failed: %v", err)
	}
	withdrawn, _ := adapter.SumQuantity(ctx, itemID, domain.MovementWithdrawal)
	ordered, err := adapter.SumOrderedQuantity(ctx, itemID)
	if err != nil {
		t.Fatalf("SumOrderedQuantity failed: %v", err)
	}

	if topUp != 45 || withdrawn != 10 || ordered != 5 {
		t.Errorf("expected sums 45/10/5, got %d/%d/%d", topUp, withdrawn, ordered)
	}

	page, err := adapter.ListInventories(ctx, domain.InventoryFilter{ItemID: &itemID, Type: "w"}, domain.NewPageRequest(0, 10, "", false, domain.InventorySortFields))
	if err != nil {
		t.Fatalf("ListInventories failed: %v", err)
	}
	if page.TotalElements != 1 || len(page.Content) != 1 || page.Content[0].ID != 920003 {
		t.Errorf("expected only the withdrawal, got %+v", page)
	}
}

func TestMySQL_StockSums_NoRows(t *testing.T) {
	adapter, db := getMySQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	topUp, err := adapter.SumQuantity(ctx, -42, domain.MovementTopUp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ordered, err := adapter.SumOrderedQuantity(ctx, -42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if topUp != 0 || ordered != 0 {
		t.Errorf("expected zero sums, got %d and %d", topUp, ordered)
	}
}

func TestMySQL_UpdateOrder(t *testing.T) {
	adapter, db := getMySQLAdapter(t)
	defer db.Close()

	ctx := context.Background()
	itemID := 910003
	cleanupMySQL(ctx, db, itemID)
	defer cleanupMySQL(ctx, db, itemID)

	now := time.Now()
	order := domain.Order{OrderNo: "mysql-test-order-2", ItemID: itemID, Quantity: 2, Price: decimal.NewFromInt(10), CreatedAt: now, UpdatedAt: now}
	db.ExecContext(ctx, `DELETE FROM orders WHERE order_no = ?`, order.OrderNo)
	if err := adapter.CreateOrder(ctx, order); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	order.Quantity = 4
	order.Price = decimal.RequireFromString("12.5")
	if err := adapter.UpdateOrder(ctx, order); err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}

	got, err := adapter.GetOrder(ctx, order.OrderNo)
	if err != nil || got == nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if got.Quantity != 4 || !got.Price.Equal(order.Price) {
		t.Errorf("unexpected order after update: %+v", got)
	}
}
