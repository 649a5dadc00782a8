package shop

import "context"

// Identity is the handle pair the store assigns when a shop is created.
type Identity struct {
	Handle         int32
	GeneralHandler int32
}

// Store is the durable persistence gateway for consigned shops. The
// registry mirrors it in memory; every stock mutation is written through
// so a crash cannot leave durable state far behind what buyers saw.
type Store interface {
	Create(ctx context.Context, s *ConsignedShop) (Identity, error)
	Update(ctx context.Context, s *ConsignedShop) error
	// Delete is idempotent; deleting an absent handle is a no-op.
	Delete(ctx context.Context, handle int32) error
	List(ctx context.Context) ([]*ConsignedShop, error)
}
