package character

import (
	"errors"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
)

var ErrNotFound = errors.New("character: not found")

// Condition is the movement/animation state broadcast for a tamer.
type Condition int32

const (
	ConditionDefault Condition = iota
	ConditionResting
	ConditionPersonalShop
)

// Tamer is the slice of a character record this engine works with: the
// containers it reconciles plus the on-map state the open-shop flow has
// to tear down and restore.
type Tamer struct {
	ID             int64
	Name           string
	GeneralHandler int32
	MapID          int32
	Channel        int32
	X              int32
	Y              int32

	// Inventory is the personal bag, Warehouse receives consigned sale
	// proceeds. Both are owned by this record.
	Inventory *item.Inventory
	Warehouse *item.Inventory

	// ShopItemID is nonzero while the personal single-seat shop UI is up.
	ShopItemID int32

	CurrentCondition  Condition
	previousCondition Condition
}

// NewTamer builds a tamer with empty containers.
func NewTamer(id int64, name string) *Tamer {
	return &Tamer{
		ID:        id,
		Name:      name,
		Inventory: item.NewInventory(0),
		Warehouse: item.NewInventory(0),
	}
}

// UpdateShopItemID swaps the personal-shop listing item; zero closes the
// personal shop mode.
func (t *Tamer) UpdateShopItemID(id int32) {
	t.ShopItemID = id
}

// SetCondition records the current condition and remembers the previous
// one for a later restore.
func (t *Tamer) SetCondition(c Condition) {
	t.previousCondition = t.CurrentCondition
	t.CurrentCondition = c
}

// RestorePreviousCondition rolls the condition back to what it was before
// the last SetCondition and returns the restored value.
func (t *Tamer) RestorePreviousCondition() Condition {
	t.CurrentCondition = t.previousCondition
	return t.CurrentCondition
}

// Clone returns a deep copy of the tamer.
func (t *Tamer) Clone() *Tamer {
	if t == nil {
		return nil
	}
	clone := *t
	clone.Inventory = t.Inventory.Clone()
	clone.Warehouse = t.Warehouse.Clone()
	return &clone
}
