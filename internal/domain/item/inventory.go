package item

// Inventory is an ordered collection of item stacks plus a bits balance.
// It backs every container kind in the engine: a tamer's personal bag,
// a consigned shop's stock and the consigned warehouse.
//
// An Inventory is owned by exactly one actor and is not synchronized;
// callers that share one across sessions (the purchase coordinator)
// serialize access themselves. Every mutation takes effect immediately,
// there is no rollback: sequencing and compensation are the caller's
// responsibility.
type Inventory struct {
	slots []*Item
	bits  int64
}

// NewInventory returns an empty inventory with the given starting balance.
func NewInventory(bits int64) *Inventory {
	return &Inventory{bits: bits}
}

// AddItems merges the given stacks into the inventory. Units flow into
// existing stacks of the same item and unit price up to the item's
// overlap, the remainder opens new slots. Incoming stacks are cloned, the
// caller keeps ownership of its arguments.
func (inv *Inventory) AddItems(items []*Item) {
	for _, in := range items {
		if in == nil || in.Amount <= 0 {
			continue
		}
		remaining := in.Amount
		max := in.overlap()
		for _, slot := range inv.slots {
			if remaining == 0 {
				break
			}
			if slot.ItemID != in.ItemID || slot.UnitPrice != in.UnitPrice {
				continue
			}
			if slot.Amount >= max {
				continue
			}
			take := max - slot.Amount
			if take > remaining {
				take = remaining
			}
			slot.Amount += take
			remaining -= take
		}
		for remaining > 0 {
			take := remaining
			if take > max {
				take = max
			}
			clone := in.Clone()
			clone.Amount = take
			inv.slots = append(inv.slots, clone)
			remaining -= take
		}
	}
}

// LoadStacks appends persisted stacks verbatim, without merge. Only
// persistence hydration uses this; stored slot layout is authoritative.
func (inv *Inventory) LoadStacks(items []*Item) {
	for _, in := range items {
		if in == nil || in.Amount <= 0 {
			continue
		}
		inv.slots = append(inv.slots, in.Clone())
	}
}

// RemoveOrReduceItems removes the given transfer set from the inventory,
// reducing slot amounts first-fit per item id. Used when moving a known
// list of stacks wholesale, such as closing out a sell listing.
func (inv *Inventory) RemoveOrReduceItems(items []*Item) {
	for _, in := range items {
		if in == nil || in.Amount <= 0 {
			continue
		}
		inv.RemoveOrReduceItem(in.ItemID, in.Amount)
	}
}

// RemoveOrReduceItem reduces stacks of itemID first-fit across slots
// until amount is satisfied or no matching stock remains. It reports
// whether the full amount was removed; on a false return the inventory
// reflects whatever was actually removed.
func (inv *Inventory) RemoveOrReduceItem(itemID, amount int32) bool {
	remaining := amount
	for _, slot := range inv.slots {
		if remaining == 0 {
			break
		}
		if slot.ItemID != itemID || slot.Amount == 0 {
			continue
		}
		take := slot.Amount
		if take > remaining {
			take = remaining
		}
		slot.Amount -= take
		remaining -= take
	}
	inv.CheckEmptyItems()
	return remaining == 0
}

// RemoveOrReduceItemAtPrice is RemoveOrReduceItem constrained to stacks
// listed at the given unit price. Shop stock may carry the same item at
// different prices; a purchase validated against one listing must only
// draw from stacks at that listing's price.
func (inv *Inventory) RemoveOrReduceItemAtPrice(itemID int32, price int64, amount int32) bool {
	remaining := amount
	for _, slot := range inv.slots {
		if remaining == 0 {
			break
		}
		if slot.ItemID != itemID || slot.UnitPrice != price || slot.Amount == 0 {
			continue
		}
		take := slot.Amount
		if take > remaining {
			take = remaining
		}
		slot.Amount -= take
		remaining -= take
	}
	inv.CheckEmptyItems()
	return remaining == 0
}

// CheckEmptyItems prunes zero-amount slots.
func (inv *Inventory) CheckEmptyItems() {
	kept := inv.slots[:0]
	for _, slot := range inv.slots {
		if slot.Amount > 0 {
			kept = append(kept, slot)
		}
	}
	inv.slots = kept
}

// AddBits credits the balance.
func (inv *Inventory) AddBits(amount int64) {
	if amount <= 0 {
		return
	}
	inv.bits += amount
}

// RemoveBits debits the balance. The debit fails without mutation when
// the balance is insufficient; owner-side sufficiency checks belong
// before any other ledger change since there is no rollback.
func (inv *Inventory) RemoveBits(amount int64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	if amount > inv.bits {
		return ErrInsufficientBits
	}
	inv.bits -= amount
	return nil
}

// Bits returns the current balance.
func (inv *Inventory) Bits() int64 {
	return inv.bits
}

// CountOf returns the total units of itemID across all slots.
func (inv *Inventory) CountOf(itemID int32) int32 {
	var total int32
	for _, slot := range inv.slots {
		if slot.ItemID == itemID {
			total += slot.Amount
		}
	}
	return total
}

// CountAtPrice returns the total units of itemID held in stacks listed
// at the given unit price.
func (inv *Inventory) CountAtPrice(itemID int32, price int64) int32 {
	var total int32
	for _, slot := range inv.slots {
		if slot.ItemID == itemID && slot.UnitPrice == price {
			total += slot.Amount
		}
	}
	return total
}

// TotalAmount returns the total units across all slots.
func (inv *Inventory) TotalAmount() int32 {
	var total int32
	for _, slot := range inv.slots {
		total += slot.Amount
	}
	return total
}

// Items returns a snapshot of the occupied slots in order.
func (inv *Inventory) Items() []*Item {
	out := make([]*Item, 0, len(inv.slots))
	for _, slot := range inv.slots {
		out = append(out, slot.Clone())
	}
	return out
}

// PriceOf returns the listed unit price of the first stack holding
// itemID, or false when no stack does.
func (inv *Inventory) PriceOf(itemID int32) (int64, bool) {
	for _, slot := range inv.slots {
		if slot.ItemID == itemID && slot.Amount > 0 {
			return slot.UnitPrice, true
		}
	}
	return 0, false
}

// Clone returns a deep copy of the inventory.
func (inv *Inventory) Clone() *Inventory {
	clone := &Inventory{bits: inv.bits, slots: make([]*Item, 0, len(inv.slots))}
	for _, slot := range inv.slots {
		clone.slots = append(clone.slots, slot.Clone())
	}
	return clone
}
