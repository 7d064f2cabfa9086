package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderNo   string
	ItemID    int
	Quantity  int64
	Price     decimal.Decimal // item price captured when the order was written
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderFilter struct {
	OrderNo string
	ItemID  *int
}

var OrderSortFields = []string{"orderNo", "itemId", "qty", "price"}
