package assets

import "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"

// Catalog is the static item-definition lookup, loaded once at boot and
// read-only afterwards.
type Catalog struct {
	byID map[int32]*item.Info
}

// NewCatalog indexes the given definitions by item id. Later duplicates
// win, matching reload-over-base asset layering.
func NewCatalog(infos []item.Info) *Catalog {
	byID := make(map[int32]*item.Info, len(infos))
	for i := range infos {
		info := infos[i]
		byID[info.ItemID] = &info
	}
	return &Catalog{byID: byID}
}

// Info returns the definition for an item id, or false when the id is
// unknown to the asset data.
func (c *Catalog) Info(itemID int32) (*item.Info, bool) {
	info, ok := c.byID[itemID]
	return info, ok
}

// Len reports how many definitions are loaded.
func (c *Catalog) Len() int {
	return len(c.byID)
}
