package protocol

import (
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("protocol: malformed request")

// OpenShopRequest is the decoded consigned-shop-open payload.
type OpenShopRequest struct {
	X       int32
	Y       int32
	Name    string
	Entries []SellEntry
}

// SellEntry is one line of the sell list as sent on the wire.
type SellEntry struct {
	ItemID int32
	Amount int32
	Price  int64
}

// sellEntryWireSize is the fixed on-wire size of one sell-list block.
const sellEntryWireSize = 88

// ParseOpenShop decodes the open-shop payload: position, reserved bytes,
// shop name, reserved bytes, item count, then one fixed-size block per
// listed item.
func ParseOpenShop(payload []byte) (*OpenShopRequest, error) {
	r := NewReader(payload)

	req := &OpenShopRequest{}
	req.X = r.Int32()
	req.Y = r.Int32()
	r.Skip(4)
	req.Name = r.String()
	r.Skip(9)
	count := r.Int32()
	if err := r.Err(); err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative item count %d", ErrMalformed, count)
	}
	// The count is client-supplied; cap it against what the remaining
	// bytes can actually hold before sizing anything by it.
	if int64(count)*sellEntryWireSize > int64(r.Remaining()) {
		return nil, fmt.Errorf("%w: item count %d exceeds payload", ErrMalformed, count)
	}

	req.Entries = make([]SellEntry, 0, count)
	for i := int32(0); i < count; i++ {
		var e SellEntry
		e.ItemID = r.Int32()
		e.Amount = r.Int32()
		r.Skip(64)
		e.Price = int64(r.Int32())
		r.Skip(12)
		if err := r.Err(); err != nil {
			return nil, err
		}
		req.Entries = append(req.Entries, e)
	}
	return req, nil
}

// PurchaseRequest is the decoded purchase payload.
type PurchaseRequest struct {
	ShopHandle int32
	Slot       int32
	ItemID     int32
	Amount     int32
	UnitPrice  int64
}

// ParsePurchaseItem decodes the purchase payload.
func ParsePurchaseItem(payload []byte) (*PurchaseRequest, error) {
	r := NewReader(payload)

	req := &PurchaseRequest{}
	req.ShopHandle = r.Int32()
	req.Slot = r.Int32()
	req.ItemID = r.Int32()
	req.Amount = r.Int32()
	r.Skip(60)
	req.UnitPrice = r.Int64()
	if err := r.Err(); err != nil {
		return nil, err
	}
	return req, nil
}
