package character

import (
	"context"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
)

// ContainerKind names a persisted container owned by a tamer.
type ContainerKind string

const (
	ContainerInventory ContainerKind = "inventory"
	ContainerWarehouse ContainerKind = "warehouse"
)

// Store is the persistence gateway for character records and their
// containers.
type Store interface {
	FindByID(ctx context.Context, id int64) (*Tamer, error)
	SaveContainer(ctx context.Context, tamerID int64, kind ContainerKind, inv *item.Inventory) error
}
