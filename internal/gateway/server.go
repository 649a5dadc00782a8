package gateway

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/domain/character"
	"github.com/kiwilliwik22/DigimonMasterOnline/internal/pkg/logging"
	"go.uber.org/zap"
)

// maxFrameBytes bounds one inbound frame; the largest legitimate packet
// is an open-shop listing, far below this.
const maxFrameBytes = 64 * 1024

// Server upgrades client connections and pumps inbound frames through
// the dispatcher. Authentication happens upstream at the login server;
// the gateway trusts the tamer id it is handed.
type Server struct {
	upgrader   websocket.Upgrader
	dispatcher *Dispatcher
	sessions   *Sessions
	characters character.Store
	log        *zap.Logger
}

func NewServer(dispatcher *Dispatcher, sessions *Sessions, characters character.Store, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.L()
	}
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		dispatcher: dispatcher,
		sessions:   sessions,
		characters: characters,
		log:        logger.With(zap.String("component", "gateway")),
	}
}

// ServeHTTP handles the websocket upgrade for one client connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tamerID, err := strconv.ParseInt(r.URL.Query().Get("tamer"), 10, 64)
	if err != nil {
		http.Error(w, "missing or invalid tamer id", http.StatusBadRequest)
		return
	}

	tamer, err := s.characters.FindByID(r.Context(), tamerID)
	if err != nil {
		http.Error(w, "unknown tamer", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket_upgrade_failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	sess := NewSession(conn, tamer)
	s.sessions.Register(sess)
	s.log.Info("session_opened",
		zap.String("session_id", sess.ID()),
		zap.Int64("tamer_id", tamerID),
	)

	go s.readLoop(sess)
}

func (s *Server) readLoop(sess *Session) {
	logger := s.log.With(
		zap.String("session_id", sess.ID()),
		zap.Int64("tamer_id", sess.TamerID()),
	)
	defer func() {
		s.sessions.Unregister(sess)
		_ = sess.close()
		logger.Info("session_closed")
	}()

	for {
		msgType, frame, err := sess.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("session_read_error", zap.Error(err))
			}
			return
		}
		if msgType != websocket.BinaryMessage {
			continue
		}

		ctx := logging.ContextWithLogger(context.Background(), logger)
		s.dispatcher.Dispatch(ctx, sess, frame)
	}
}
