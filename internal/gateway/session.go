package gateway

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
)

// Session is one connected client: the websocket conduit plus the live
// tamer state that session owns.
type Session struct {
	id    string
	tamer *character.Tamer

	writeMu sync.Mutex
	conn    *websocket.Conn
}

func NewSession(conn *websocket.Conn, tamer *character.Tamer) *Session {
	return &Session{
		id:    uuid.NewString(),
		tamer: tamer,
		conn:  conn,
	}
}

// ID is the session correlation id, distinct from the tamer identity.
func (s *Session) ID() string {
	return s.id
}

func (s *Session) TamerID() int64 {
	return s.tamer.ID
}

// Tamer returns the live, session-owned character state.
func (s *Session) Tamer() *character.Tamer {
	return s.tamer
}

// Send writes one binary frame to the client. Writes are serialized;
// gorilla/websocket does not allow concurrent writers.
func (s *Session) Send(pkt []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.BinaryMessage, pkt)
}

func (s *Session) close() error {
	return s.conn.Close()
}
