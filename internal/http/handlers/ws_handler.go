package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	wshub "voltswap/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewGridStreamHandler returns GET /ws/pillars/{pillarID} handler upgrading
// the connection and subscribing it to grid updates.
func NewGridStreamHandler(hub *wshub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pillarID := mux.Vars(r)["pillarID"]
		if pillarID == "" {
			writeError(w, http.StatusBadRequest, "pillar id is required")
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.String("pillar_id", pillarID), zap.Error(err))
			return
		}
		hub.Subscribe(pillarID, conn)
	}
}
