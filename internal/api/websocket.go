package api

import (
	"net/http"

	"github.com/gorilla/websocket"
)

// upgrader configures the WebSocket upgrader for the device channel.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Devices are not browsers; origin checking does not apply.
		return true
	},
}

// handleWebSocket upgrades the connection and hands it to the realtime
// protocol handler. The connection stays unauthenticated until the device
// sends a valid auth frame.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error response.
		s.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	s.realtime.HandleConnection(conn)
}
