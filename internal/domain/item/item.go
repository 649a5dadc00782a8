package item

import "errors"

var (
	ErrInvalidAmount    = errors.New("item: amount must be greater than zero")
	ErrInsufficientBits = errors.New("item: insufficient bits")
)

// MaxBits is the largest currency balance a single container may hold.
const MaxBits int64 = 9_223_372_036_854_775_807

// Info is the static definition of an item, loaded from game assets.
// Overlap is the maximum number of units that fit in one stack; a value
// of zero or less marks the item as non-stackable and non-consignable.
type Info struct {
	ItemID  int32
	Name    string
	Overlap int32
}

// Sellable reports whether the item may be listed in a consigned shop.
func (i *Info) Sellable() bool {
	return i != nil && i.Overlap > 0
}

// Item is one stack of identical items inside a container. UnitPrice is
// only meaningful for stacks listed in a shop.
type Item struct {
	ItemID    int32
	Amount    int32
	UnitPrice int64
	Info      *Info
}

// NewItem builds a stack after validating the amount.
func NewItem(itemID, amount int32) (*Item, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return &Item{ItemID: itemID, Amount: amount}, nil
}

// SetInfo attaches the static definition resolved from the catalog.
func (it *Item) SetInfo(info *Info) {
	it.Info = info
}

// Clone returns an independent copy of the stack. The static Info is
// shared; it is immutable reference data.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	clone := *it
	return &clone
}

func (it *Item) overlap() int32 {
	if it.Info == nil {
		return 1
	}
	return it.Info.Overlap
}
