package protocol

import (
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
)

// SystemMessage carries a plain text notice to the client's chat pane.
func SystemMessage(text string) []byte {
	return NewWriter(TypeSystemMessage).
		WriteString(text).
		Bytes()
}

// LoadConsignedShop announces a newly opened shop with its full state.
func LoadConsignedShop(s *shop.ConsignedShop) []byte {
	w := NewWriter(TypeLoadConsignedShop).
		WriteInt32(s.Handle).
		WriteInt32(s.GeneralHandler).
		WriteInt64(s.OwnerID).
		WriteString(s.Name).
		WriteInt32(s.X).
		WriteInt32(s.Y)
	writeStock(w, s.Stock)
	return w.Bytes()
}

// UnloadConsignedShop tells clients to drop a shop from their view.
func UnloadConsignedShop(handle int32) []byte {
	return NewWriter(TypeUnloadConsignedShop).
		WriteInt32(handle).
		Bytes()
}

// ConsignedShopItemsView refreshes the listing of an open shop.
func ConsignedShopItemsView(s *shop.ConsignedShop, sellerName string) []byte {
	w := NewWriter(TypeConsignedShopItemsView).
		WriteInt32(s.Handle).
		WriteString(sellerName)
	writeStock(w, s.Stock)
	return w.Bytes()
}

// LoadInventory refreshes a client's view of its own bag.
func LoadInventory(inv *item.Inventory) []byte {
	w := NewWriter(TypeLoadInventory).
		WriteInt64(inv.Bits())
	writeStock(w, inv)
	return w.Bytes()
}

// PersonalShopClose tears down the personal single-seat shop window.
func PersonalShopClose(shopItemID int32) []byte {
	return NewWriter(TypePersonalShopClose).
		WriteInt32(shopItemID).
		Bytes()
}

// SyncCondition broadcasts a tamer's restored movement condition.
func SyncCondition(generalHandler, condition int32) []byte {
	return NewWriter(TypeSyncCondition).
		WriteInt32(generalHandler).
		WriteInt32(condition).
		Bytes()
}

func writeStock(w *Writer, inv *item.Inventory) {
	slots := inv.Items()
	w.WriteInt32(int32(len(slots)))
	for _, slot := range slots {
		w.WriteInt32(slot.ItemID).
			WriteInt32(slot.Amount).
			WriteInt64(slot.UnitPrice)
	}
}
