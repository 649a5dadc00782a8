package gateway

import (
	"context"
	"fmt"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/protocol"
	"go.uber.org/zap"
)

// Processor handles one inbound packet type.
type Processor interface {
	Type() protocol.Type
	Process(ctx context.Context, sess *Session, payload []byte) error
}

// Dispatcher is the flat registration table routing inbound frames to
// processors by packet type. It is populated once at startup and
// read-only afterwards.
type Dispatcher struct {
	processors map[protocol.Type]Processor
}

func NewDispatcher(processors ...Processor) (*Dispatcher, error) {
	table := make(map[protocol.Type]Processor, len(processors))
	for _, p := range processors {
		if _, exists := table[p.Type()]; exists {
			return nil, fmt.Errorf("dispatcher: duplicate processor for packet type %d", p.Type())
		}
		table[p.Type()] = p
	}
	return &Dispatcher{processors: table}, nil
}

// Dispatch decodes the frame's type prefix and runs the matching
// processor. Unknown types and processor failures are logged and
// swallowed; a bad request never tears down the session.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *Session, frame []byte) {
	logger := logging.FromContext(ctx)

	if len(frame) < 2 {
		logger.Warn("frame_too_short", zap.Int("len", len(frame)))
		return
	}
	r := protocol.NewReader(frame)
	ptype := protocol.Type(r.Uint16())
	payload := frame[2:]

	p, ok := d.processors[ptype]
	if !ok {
		logger.Warn("unhandled_packet_type", zap.Uint16("type", uint16(ptype)))
		return
	}

	if err := p.Process(ctx, sess, payload); err != nil {
		logger.Warn("packet_processor_error",
			zap.Uint16("type", uint16(ptype)),
			zap.Int64("tamer_id", sess.TamerID()),
			zap.Error(err),
		)
	}
}
