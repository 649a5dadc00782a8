package shop

import (
	"context"
	"fmt"
	"sync"

	domshop "github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/shop"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
	"go.uber.org/zap"
)

// Registry owns the set of currently open consigned shops: an in-memory
// mirror keyed by handle for fast lookup, written through to the durable
// store on every change.
//
// It also owns the per-handle mutex table. Any flow that mutates a shop's
// stock runs its whole validate-mutate-persist-broadcast sequence inside
// WithHandleLock for that handle; shops under different handles proceed
// fully in parallel.
type Registry struct {
	mu    sync.RWMutex
	shops map[int32]*domshop.ConsignedShop

	lockMu sync.Mutex
	locks  map[int32]*sync.Mutex

	store domshop.Store
}

func NewRegistry(store domshop.Store) *Registry {
	return &Registry{
		shops: make(map[int32]*domshop.ConsignedShop),
		locks: make(map[int32]*sync.Mutex),
		store: store,
	}
}

// Load warms the mirror from the durable store, typically once at boot.
func (r *Registry) Load(ctx context.Context) error {
	shops, err := r.store.List(ctx)
	if err != nil {
		return fmt.Errorf("registry: load: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range shops {
		r.shops[s.Handle] = s
	}

	logging.FromContext(ctx).Info("shop_registry_loaded", zap.Int("shops", len(shops)))
	return nil
}

// Lookup returns the live shop for a handle. The returned instance is the
// registry-owned one; callers mutate it only under WithHandleLock.
func (r *Registry) Lookup(handle int32) (*domshop.ConsignedShop, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shops[handle]
	return s, ok
}

// Create writes the shop durably, obtaining its assigned identity, and
// inserts it into the mirror.
func (r *Registry) Create(ctx context.Context, s *domshop.ConsignedShop) error {
	identity, err := r.store.Create(ctx, s)
	if err != nil {
		return fmt.Errorf("registry: create: %w", err)
	}
	s.SetIdentity(identity.Handle, identity.GeneralHandler)

	r.mu.Lock()
	r.shops[s.Handle] = s
	r.mu.Unlock()
	return nil
}

// Persist writes the shop's current state through to the store. Called
// after every mutation of a shop's stock.
func (r *Registry) Persist(ctx context.Context, s *domshop.ConsignedShop) error {
	if err := r.store.Update(ctx, s); err != nil {
		return fmt.Errorf("registry: persist shop %d: %w", s.Handle, err)
	}
	return nil
}

// Delete removes the shop from the mirror and the store. Idempotent:
// deleting an absent handle is a no-op.
func (r *Registry) Delete(ctx context.Context, handle int32) error {
	r.mu.Lock()
	delete(r.shops, handle)
	r.mu.Unlock()

	r.lockMu.Lock()
	delete(r.locks, handle)
	r.lockMu.Unlock()

	if err := r.store.Delete(ctx, handle); err != nil {
		return fmt.Errorf("registry: delete shop %d: %w", handle, err)
	}
	return nil
}

// WithHandleLock acquires the mutex scoping all stock mutation for one
// handle and returns its release. Handles are never reused after
// deletion, so a waiter that acquires after the shop died simply finds
// the handle absent and takes the stale path.
func (r *Registry) WithHandleLock(handle int32) (release func()) {
	r.lockMu.Lock()
	mu, ok := r.locks[handle]
	if !ok {
		mu = &sync.Mutex{}
		r.locks[handle] = mu
	}
	r.lockMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
