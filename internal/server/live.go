package server

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/rankerhq/ranker/internal/auth/jwt"
	ws "github.com/rankerhq/ranker/pkg/http/ws"
)

// wsUpgrader handles WebSocket upgrades.
// TODO: restrict origins once the frontend host is fixed.
var wsUpgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewLiveHandler returns the /ws/live endpoint: clients connect, get
// registered in the hub and receive every broadcast event. Authenticated
// connections are keyed by player, anonymous ones by a random id.
func NewLiveHandler(hub *ws.Hub, logger zerolog.Logger) http.HandlerFunc {
	log := logger.With().Str("component", "live_ws").Logger()

	return func(w http.ResponseWriter, r *http.Request) {
		playerID := uuid.New()
		if claims, ok := r.Context().Value("claims").(*jwt.Claims); ok && claims != nil {
			playerID = claims.PlayerID
		}

		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		wsConn := ws.NewConnection(conn, log)
		hub.RegisterConnection(playerID, wsConn)
		go wsConn.WritePump()

		wsConn.ReadPump(func(msg ws.Message) error {
			if msg.Type == ws.TypePing {
				return wsConn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
			}
			return nil
		})

		hub.UnregisterConnection(playerID)
	}
}
