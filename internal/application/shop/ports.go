package shop

import (
	"context"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/item"
)

// Catalog resolves static item definitions by id.
type Catalog interface {
	Info(itemID int32) (*item.Info, bool)
}

// Client is the session surface a flow talks back to: the live tamer
// owned by that session and a way to push packets at it.
type Client interface {
	TamerID() int64
	Tamer() *character.Tamer
	Send(pkt []byte) error
}

// Broadcaster fans a packet out to every session currently viewing the
// given tamer, and that tamer itself. Injected so the flows stay testable
// against a recording fake.
type Broadcaster interface {
	BroadcastToViewersAndSelf(ctx context.Context, tamerID int64, pkt []byte)
}
