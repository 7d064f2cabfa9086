package domain

import (
	"strings"
	"time"
)

type MovementType string

const (
	MovementTopUp      MovementType = "T"
	MovementWithdrawal MovementType = "W"
)

// ParseMovementType trims and upper-cases raw before matching it against
// the known movement types.
func ParseMovementType(raw string) (MovementType, bool) {
	switch t := MovementType(strings.ToUpper(strings.TrimSpace(raw))); t {
	case MovementTopUp, MovementWithdrawal:
		return t, true
	default:
		return "", false
	}
}

// Inventory is a single stock movement. Rows are append-only: the
// remaining stock of an item is derived from their sum.
type Inventory struct {
	ID        int
	ItemID    int
	Quantity  int64
	Type      MovementType
	CreatedAt time.Time
}

type InventoryFilter struct {
	ID     *int
	ItemID *int
	Type   string
}

var InventorySortFields = []string{"id", "itemId", "qty", "type"}
