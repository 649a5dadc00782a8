package memory

import (
	"context"
	"sync"

	domain "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
)

// ShopStore is the in-memory shop persistence gateway, the default when
// no database is configured and the backing for tests. Handles and
// general handlers are allocated monotonically and never reused.
type ShopStore struct {
	mu                 sync.RWMutex
	shops              map[int32]*domain.ConsignedShop
	nextHandle         int32
	nextGeneralHandler int32
}

func NewShopStore() *ShopStore {
	return &ShopStore{
		shops:              make(map[int32]*domain.ConsignedShop),
		nextHandle:         30000,
		nextGeneralHandler: 80000,
	}
}

func (s *ShopStore) Create(ctx context.Context, shop *domain.ConsignedShop) (domain.Identity, error) {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextHandle++
	s.nextGeneralHandler++
	identity := domain.Identity{Handle: s.nextHandle, GeneralHandler: s.nextGeneralHandler}

	stored := shop.Clone()
	stored.SetIdentity(identity.Handle, identity.GeneralHandler)
	s.shops[identity.Handle] = stored
	return identity, nil
}

func (s *ShopStore) Update(ctx context.Context, shop *domain.ConsignedShop) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shops[shop.Handle]; !ok {
		return domain.ErrNotFound
	}
	s.shops[shop.Handle] = shop.Clone()
	return nil
}

func (s *ShopStore) Delete(ctx context.Context, handle int32) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.shops, handle)
	return nil
}

func (s *ShopStore) List(ctx context.Context) ([]*domain.ConsignedShop, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ConsignedShop, 0, len(s.shops))
	for _, shop := range s.shops {
		out = append(out, shop.Clone())
	}
	return out, nil
}
