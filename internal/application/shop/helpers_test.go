package shop

import (
	"context"
	"sync"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/outbox"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/infrastructure/assets"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/infrastructure/memory"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/protocol"
)

// fakeClient records every packet pushed at one session.
type fakeClient struct {
	mu    sync.Mutex
	tamer *character.Tamer
	sent  [][]byte
}

func newFakeClient(tamer *character.Tamer) *fakeClient {
	return &fakeClient{tamer: tamer}
}

func (c *fakeClient) TamerID() int64 {
	return c.tamer.ID
}

func (c *fakeClient) Tamer() *character.Tamer {
	return c.tamer
}

func (c *fakeClient) Send(pkt []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, pkt)
	return nil
}

func (c *fakeClient) sentTypes() []protocol.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	types := make([]protocol.Type, 0, len(c.sent))
	for _, pkt := range c.sent {
		types = append(types, protocol.Type(protocol.NewReader(pkt).Uint16()))
	}
	return types
}

func (c *fakeClient) received(t protocol.Type) bool {
	for _, got := range c.sentTypes() {
		if got == t {
			return true
		}
	}
	return false
}

// fakeBroadcaster records broadcast packets per anchor tamer.
type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

type broadcastCall struct {
	tamerID int64
	ptype   protocol.Type
}

func (b *fakeBroadcaster) BroadcastToViewersAndSelf(_ context.Context, tamerID int64, pkt []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, broadcastCall{
		tamerID: tamerID,
		ptype:   protocol.Type(protocol.NewReader(pkt).Uint16()),
	})
}

func (b *fakeBroadcaster) count(t protocol.Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, call := range b.calls {
		if call.ptype == t {
			n++
		}
	}
	return n
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []outbox.Event
}

func (p *fakePublisher) Publish(_ context.Context, e outbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) all() []outbox.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]outbox.Event(nil), p.events...)
}

func testCatalog() *assets.Catalog {
	return assets.NewCatalog([]item.Info{
		{ItemID: 100, Name: "Recovery Floppy", Overlap: 99},
		{ItemID: 200, Name: "Evoluter", Overlap: 50},
		{ItemID: 900, Name: "Starter Digivice", Overlap: 0},
	})
}

func testInfo(id int32) *item.Info {
	switch id {
	case 100:
		return &item.Info{ItemID: 100, Name: "Recovery Floppy", Overlap: 99}
	case 200:
		return &item.Info{ItemID: 200, Name: "Evoluter", Overlap: 50}
	default:
		return &item.Info{ItemID: id, Name: "test item", Overlap: 10}
	}
}

func newSeller(id int64) *character.Tamer {
	t := character.NewTamer(id, "seller")
	t.MapID, t.Channel = 3, 1
	return t
}

func newBuyer(id int64, bits int64) *character.Tamer {
	t := character.NewTamer(id, "buyer")
	t.MapID, t.Channel = 3, 1
	t.Inventory.AddBits(bits)
	return t
}

type fixture struct {
	registry   *Registry
	shops      *memory.ShopStore
	characters *memory.CharacterStore
	broadcast  *fakeBroadcaster
	publisher  *fakePublisher
	open       *OpenShopService
	purchase   *PurchaseService
}

func newFixture() *fixture {
	shops := memory.NewShopStore()
	characters := memory.NewCharacterStore()
	registry := NewRegistry(shops)
	broadcast := &fakeBroadcaster{}
	publisher := &fakePublisher{}
	catalog := testCatalog()

	return &fixture{
		registry:   registry,
		shops:      shops,
		characters: characters,
		broadcast:  broadcast,
		publisher:  publisher,
		open:       NewOpenShopService(registry, characters, catalog, broadcast, nil),
		purchase:   NewPurchaseService(registry, characters, catalog, broadcast, publisher, nil),
	}
}
