package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Item struct {
	ID        int
	Name      string
	Price     decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemStock is an item together with its remaining stock at read time.
type ItemStock struct {
	Item
	RemainingStock int64
}

type ItemFilter struct {
	ID   *int
	Name string
}

var ItemSortFields = []string{"id", "name", "price"}
