package item

import (
	"errors"
	"testing"
)

func stackableInfo(id int32, overlap int32) *Info {
	return &Info{ItemID: id, Name: "test item", Overlap: overlap}
}

func TestAddItemsMergesUpToOverlap(t *testing.T) {
	inv := NewInventory(0)
	info := stackableInfo(100, 5)

	inv.AddItems([]*Item{{ItemID: 100, Amount: 3, Info: info}})
	inv.AddItems([]*Item{{ItemID: 100, Amount: 4, Info: info}})

	if got := inv.CountOf(100); got != 7 {
		t.Fatalf("expected 7 units, got %d", got)
	}
	slots := inv.Items()
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Amount != 5 || slots[1].Amount != 2 {
		t.Fatalf("expected slots [5 2], got [%d %d]", slots[0].Amount, slots[1].Amount)
	}
}

func TestAddItemsKeepsDistinctPricesApart(t *testing.T) {
	inv := NewInventory(0)
	info := stackableInfo(100, 10)

	inv.AddItems([]*Item{{ItemID: 100, Amount: 2, UnitPrice: 10, Info: info}})
	inv.AddItems([]*Item{{ItemID: 100, Amount: 2, UnitPrice: 15, Info: info}})

	if got := len(inv.Items()); got != 2 {
		t.Fatalf("expected separate stacks per price, got %d slots", got)
	}
}

func TestRemoveOrReduceItemAtPriceSkipsOtherListings(t *testing.T) {
	inv := NewInventory(0)
	info := stackableInfo(100, 99)
	inv.AddItems([]*Item{{ItemID: 100, Amount: 2, UnitPrice: 10, Info: info}})
	inv.AddItems([]*Item{{ItemID: 100, Amount: 5, UnitPrice: 50, Info: info}})

	if fully := inv.RemoveOrReduceItemAtPrice(100, 10, 4); fully {
		t.Fatalf("expected shortfall, the other price's stack must not cover it")
	}
	if got := inv.CountAtPrice(100, 10); got != 0 {
		t.Fatalf("expected the 10-bit stack drained, got %d", got)
	}
	if got := inv.CountAtPrice(100, 50); got != 5 {
		t.Fatalf("expected the 50-bit stack untouched, got %d", got)
	}
}

func TestAddItemsDoesNotAliasCallerStacks(t *testing.T) {
	inv := NewInventory(0)
	in := &Item{ItemID: 7, Amount: 3, Info: stackableInfo(7, 9)}

	inv.AddItems([]*Item{in})
	in.Amount = 99

	if got := inv.CountOf(7); got != 3 {
		t.Fatalf("inventory aliased the caller's stack: got %d", got)
	}
}

func TestRemoveOrReduceItemFirstFit(t *testing.T) {
	inv := NewInventory(0)
	info := stackableInfo(100, 3)
	inv.AddItems([]*Item{{ItemID: 100, Amount: 3, Info: info}})
	inv.AddItems([]*Item{{ItemID: 200, Amount: 1, Info: stackableInfo(200, 1)}})
	inv.AddItems([]*Item{{ItemID: 100, Amount: 2, Info: info}})

	if !inv.RemoveOrReduceItem(100, 4) {
		t.Fatalf("expected full removal of 4 units")
	}
	if got := inv.CountOf(100); got != 1 {
		t.Fatalf("expected 1 unit left, got %d", got)
	}
	if got := inv.CountOf(200); got != 1 {
		t.Fatalf("unrelated item touched: got %d", got)
	}
}

func TestRemoveOrReduceItemPartial(t *testing.T) {
	inv := NewInventory(0)
	inv.AddItems([]*Item{{ItemID: 100, Amount: 2, Info: stackableInfo(100, 5)}})

	if inv.RemoveOrReduceItem(100, 5) {
		t.Fatalf("expected partial removal to report false")
	}
	if got := inv.CountOf(100); got != 0 {
		t.Fatalf("partial removal must keep what it took: %d left", got)
	}
	if got := len(inv.Items()); got != 0 {
		t.Fatalf("expected empty slots pruned, got %d", got)
	}
}

func TestRemoveBitsInsufficientLeavesBalance(t *testing.T) {
	inv := NewInventory(10)

	err := inv.RemoveBits(11)
	if !errors.Is(err, ErrInsufficientBits) {
		t.Fatalf("expected ErrInsufficientBits, got %v", err)
	}
	if inv.Bits() != 10 {
		t.Fatalf("failed debit mutated balance: %d", inv.Bits())
	}

	if err := inv.RemoveBits(10); err != nil {
		t.Fatalf("expected debit to succeed, got %v", err)
	}
	if inv.Bits() != 0 {
		t.Fatalf("expected zero balance, got %d", inv.Bits())
	}
}

func TestRemoveOrReduceItemsTransferSet(t *testing.T) {
	inv := NewInventory(0)
	info := stackableInfo(42, 20)
	inv.AddItems([]*Item{{ItemID: 42, Amount: 12, Info: info}})

	inv.RemoveOrReduceItems([]*Item{{ItemID: 42, Amount: 5}, {ItemID: 42, Amount: 7}})

	if got := inv.CountOf(42); got != 0 {
		t.Fatalf("expected transfer set fully removed, got %d", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	inv := NewInventory(50)
	inv.AddItems([]*Item{{ItemID: 1, Amount: 2, Info: stackableInfo(1, 5)}})

	clone := inv.Clone()
	clone.AddBits(100)
	clone.RemoveOrReduceItem(1, 2)

	if inv.Bits() != 50 || inv.CountOf(1) != 2 {
		t.Fatalf("clone mutation leaked into original: bits=%d count=%d", inv.Bits(), inv.CountOf(1))
	}
}
