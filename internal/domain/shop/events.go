package shop

import "time"

// SaleEvent is emitted after a purchase committed against a shop; the
// warehouse worker reconciles the seller side from it.
type SaleEvent struct {
	ShopHandle int32
	SellerID   int64
	BuyerID    int64
	ItemID     int32
	ItemName   string
	Amount     int32
	Proceeds   int64
	OccurredAt time.Time
}

func (SaleEvent) EventName() string { return "shop.sale" }

func NewSaleEvent(shopHandle int32, sellerID, buyerID int64, itemID int32, itemName string, amount int32, proceeds int64) SaleEvent {
	return SaleEvent{
		ShopHandle: shopHandle,
		SellerID:   sellerID,
		BuyerID:    buyerID,
		ItemID:     itemID,
		ItemName:   itemName,
		Amount:     amount,
		Proceeds:   proceeds,
		OccurredAt: time.Now().UTC(),
	}
}
