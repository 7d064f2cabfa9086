package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rl1809/stock-ledger/internal/adapter/storage"
	"github.com/rl1809/stock-ledger/internal/core/domain"
)

func TestCreateItem_ReturnsZeroStock(t *testing.T) {
	f := newFixture(storage.NewLocalLocker())
	price := decimal.RequireFromString("3.75")

	got, err := f.items.CreateItem(context.Background(), &ItemRequest{ID: intPtr(1), Name: strPtr("Pen"), Price: &price})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if got.RemainingStock != 0 {
		t.Errorf("expected remaining 0 for a new item, got %d", got.RemainingStock)
	}
	if got.Name != "Pen" || !got.Price.Equal(price) {
		t.Errorf("unexpected item: %+v", got.Item)
	}
}

func TestCreateItem_DuplicateKeepsExisting(t *testing.T) {
	f := newFixture(storage.NewLocalLocker())
	f.seedItem(t, 1, "10")

	price := decimal.RequireFromString("99")
	_, err := f.items.CreateItem(context.Background(), &ItemRequest{ID: intPtr(1), Name: strPtr("Other"), Price: &price})
	if !errors.Is(err, domain.ErrItemDuplicate) {
		t.Errorf("expected ErrItemDuplicate, got: %v", err)
	}

	existing, err := f.items.GetItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if existing.Name != "item-1" || !existing.Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("expected the original item to be unchanged, got %+v", existing.Item)
	}
}

func TestCreateItem_ValidationOrder(t *testing.T) {
	f := newFixture(storage.NewLocalLocker())
	zero := decimal.Zero
	negative := decimal.NewFromInt(-1)
	tiny := decimal.RequireFromString("0.00001")
	huge := decimal.New(1, 15)

	tests := []struct {
		name string
		req  *ItemRequest
		want domain.ErrorKind
	}{
		{"nil request", nil, domain.ErrItemRequestNull},
		{"missing id", &ItemRequest{Name: strPtr("")}, domain.ErrItemIDRequired},
		{"blank name", &ItemRequest{ID: intPtr(1), Name: strPtr("  ")}, domain.ErrItemNameRequired},
		{"missing price", &ItemRequest{ID: intPtr(1), Name: strPtr("Pen")}, domain.ErrItemPriceRequired},
		{"zero price", &ItemRequest{ID: intPtr(1), Name: strPtr("Pen"), Price: &zero}, domain.ErrItemPriceNotPositive},
		{"negative price", &ItemRequest{ID: intPtr(1), Name: strPtr("Pen"), Price: &negative}, domain.ErrItemPriceNotPositive},
		{"price below scale", &ItemRequest{ID: intPtr(1), Name: strPtr("Pen"), Price: &tiny}, domain.ErrItemPriceNotPositive},
		{"id beyond int32", &ItemRequest{ID: intPtr(9000000000), Name: strPtr("Pen"), Price: &tiny}, domain.ErrMalformedRequest},
		{"name too long", &ItemRequest{ID: intPtr(1), Name: strPtr(strings.Repeat("a", 256)), Price: &negative}, domain.ErrMalformedRequest},
		{"price beyond column", &ItemRequest{ID: intPtr(1), Name: strPtr("Pen"), Price: &huge}, domain.ErrMalformedRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.items.CreateItem(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %s, got: %v", tt.want.Code(), err)
			}
		})
	}
}

func TestCreateItem_RoundsPriceToStoredScale(t *testing.T) {
	f := newFixture(storage.NewLocalLocker())
	price := decimal.RequireFromString("1.23456")

	got, err := f.items.CreateItem(context.Background(), &ItemRequest{ID: intPtr(1), Name: strPtr("Pen"), Price: &price})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	want := decimal.RequireFromString("1.2346")
	if !got.Price.Equal(want) {
		t.Errorf("expected price %s, got %s", want, got.Price)
	}

	stored, err := f.items.GetItem(context.Background(), 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !stored.Price.Equal(want) {
		t.Errorf("expected stored price %s, got %s", want, stored.Price)
	}
	if !price.Equal(decimal.RequireFromString("1.23456")) {
		t.Errorf("request price was modified: %s", price)
	}
}

func TestUpdateItem(t *testing.T) {
	f := newFixture(storage.NewLocalLocker())
	f.seedItem(t, 1, "10")
	f.seedMovement(t, 1, 1, 4, "T")

	before, _ := f.items.GetItem(context.Background(), 1)

	price := decimal.RequireFromString("11.5")
	got, err := f.items.UpdateItem(context.Background(), &ItemRequest{ID: intPtr(1), Name: strPtr("Renamed"), Price: &price})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if got.Name != "Renamed" || !got.Price.Equal(price) {
		t.Errorf("unexpected item after update: %+v", got.Item)
	}
	if got.RemainingStock != 4 {
		t.Errorf("expected remaining 4, got %d", got.RemainingStock)
	}
	if !got.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("expected created_at to be kept")
	}

	_, err = f.items.UpdateItem(context.Background(), &ItemRequest{ID: intPtr(2), Name: strPtr("Ghost"), Price: &price})
	if !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got: %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	f := newFixture(storage.NewLocalLocker())
	f.seedItem(t, 1, "10")

	if err := f.items.DeleteItem(context.Background(), 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := f.items.GetItem(context.Background(), 1); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound after delete, got: %v", err)
	}
	if err := f.items.DeleteItem(context.Background(), 1); !errors.Is(err, domain.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound on second delete, got: %v", err)
	}
}

func TestListItems_CarriesRemainingStock(t *testing.T) {
	f := newFixture(storage.NewLocalLocker())
	f.seedItem(t, 1, "10")
	f.seedItem(t, 2, "20")
	f.seedMovement(t, 1, 2, 8, "T")

	page, err := f.items.ListItems(context.Background(), domain.ItemFilter{}, domain.NewPageRequest(0, 10, "id", false, domain.ItemSortFields))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.TotalElements != 2 || len(page.Content) != 2 {
		t.Fatalf("expected 2 items, got %d", page.TotalElements)
	}
	if page.Content[0].RemainingStock != 0 || page.Content[1].RemainingStock != 8 {
		t.Errorf("unexpected stock values: %d, %d", page.Content[0].RemainingStock, page.Content[1].RemainingStock)
	}
}
