package shop

import (
	"errors"
	"time"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
)

var (
	ErrNotFound      = errors.New("shop: not found")
	ErrSelfPurchase  = errors.New("shop: owner cannot buy from own shop")
	ErrOwnerNotFound = errors.New("shop: owner no longer exists")
	ErrPriceMismatch = errors.New("shop: unit price does not match listing")
	ErrOutOfStock    = errors.New("shop: item not in stock")
)

// ConsignedShop is a server-persisted storefront a tamer leaves behind on
// the map. Handle and GeneralHandler are assigned by the store at
// creation and written back; Handle is how clients reference the shop,
// GeneralHandler identifies the on-map visual object.
//
// Lifecycle: created, then open (visible, purchasable), then deleted once
// the stock empties or the shop is explicitly closed. There is no closed-
// but-retained state and a deleted handle is never reused.
type ConsignedShop struct {
	Handle         int32
	GeneralHandler int32
	OwnerID        int64
	Name           string
	X              int32
	Y              int32
	MapID          int32
	Channel        int32
	Stock          *item.Inventory
	CreatedAt      time.Time
}

// New builds a shop with empty stock at the given map position.
func New(ownerID int64, name string, x, y, mapID, channel int32) *ConsignedShop {
	return &ConsignedShop{
		OwnerID:   ownerID,
		Name:      name,
		X:         x,
		Y:         y,
		MapID:     mapID,
		Channel:   channel,
		Stock:     item.NewInventory(0),
		CreatedAt: time.Now().UTC(),
	}
}

// SetIdentity writes back the store-assigned handle pair.
func (s *ConsignedShop) SetIdentity(handle, generalHandler int32) {
	s.Handle = handle
	s.GeneralHandler = generalHandler
}

// Empty reports whether the shop holds no stock at all.
func (s *ConsignedShop) Empty() bool {
	return s.Stock.TotalAmount() == 0
}

// Clone returns a deep copy of the shop.
func (s *ConsignedShop) Clone() *ConsignedShop {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Stock = s.Stock.Clone()
	return &clone
}
