package memory

import (
	"context"
	"sync"

	domain "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
)

// CharacterStore is the in-memory character persistence gateway.
type CharacterStore struct {
	mu     sync.RWMutex
	tamers map[int64]*domain.Tamer
}

func NewCharacterStore() *CharacterStore {
	return &CharacterStore{
		tamers: make(map[int64]*domain.Tamer),
	}
}

// Put seeds or replaces a tamer record.
func (s *CharacterStore) Put(t *domain.Tamer) {
	if t == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tamers[t.ID] = t.Clone()
}

// Remove drops a tamer record, simulating a deleted character.
func (s *CharacterStore) Remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tamers, id)
}

func (s *CharacterStore) FindByID(ctx context.Context, id int64) (*domain.Tamer, error) {
	_ = ctx

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tamers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t.Clone(), nil
}

func (s *CharacterStore) SaveContainer(ctx context.Context, tamerID int64, kind domain.ContainerKind, inv *item.Inventory) error {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tamers[tamerID]
	if !ok {
		return domain.ErrNotFound
	}
	switch kind {
	case domain.ContainerWarehouse:
		t.Warehouse = inv.Clone()
	default:
		t.Inventory = inv.Clone()
	}
	return nil
}
