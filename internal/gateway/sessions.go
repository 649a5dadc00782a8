package gateway

import (
	"context"
	"sync"

	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
	"go.uber.org/zap"
)

// Sessions tracks live sessions by tamer id. It implements the
// visibility broadcast the shop flows depend on: viewers of a tamer are
// the sessions sharing its map and channel.
type Sessions struct {
	mu      sync.RWMutex
	byTamer map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{byTamer: make(map[int64]*Session)}
}

func (r *Sessions) Register(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTamer[s.TamerID()] = s
}

func (r *Sessions) Unregister(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.byTamer[s.TamerID()]; ok && current == s {
		delete(r.byTamer, s.TamerID())
	}
}

// FindByTamerID returns the live session for a tamer, if any.
func (r *Sessions) FindByTamerID(id int64) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byTamer[id]
	return s, ok
}

// SendToTamer delivers a packet to a tamer's session and reports whether
// one was connected.
func (r *Sessions) SendToTamer(id int64, pkt []byte) bool {
	s, ok := r.FindByTamerID(id)
	if !ok {
		return false
	}
	return s.Send(pkt) == nil
}

// BroadcastToViewersAndSelf sends the packet to every session on the
// anchor tamer's map and channel, the anchor included. An anchor with no
// session broadcasts to nobody.
func (r *Sessions) BroadcastToViewersAndSelf(ctx context.Context, tamerID int64, pkt []byte) {
	anchor, ok := r.FindByTamerID(tamerID)
	if !ok {
		return
	}
	mapID := anchor.Tamer().MapID
	channel := anchor.Tamer().Channel

	r.mu.RLock()
	targets := make([]*Session, 0, len(r.byTamer))
	for _, s := range r.byTamer {
		if s.Tamer().MapID == mapID && s.Tamer().Channel == channel {
			targets = append(targets, s)
		}
	}
	r.mu.RUnlock()

	for _, s := range targets {
		if err := s.Send(pkt); err != nil {
			logging.FromContext(ctx).Warn("broadcast_send_failed",
				zap.Int64("tamer_id", s.TamerID()),
				zap.Error(err),
			)
		}
	}
}
