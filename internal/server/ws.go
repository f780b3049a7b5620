package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voicepanel/panel-audio-service/internal/panel"
)

const (
	// Maximum inbound command size. Commands are small JSON objects;
	// audio never travels panel-to-service.
	maxCommandSize = 64 * 1024

	writeTimeout = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The panel runs on the same host; the service binds to loopback
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handlePanel implements the /panel WebSocket endpoint. Each text message
// carries one panel command; each response event goes back as one text
// message. Commands on a connection are processed sequentially, which
// preserves the panel's command ordering.
func (h *HTTPServer) handlePanel(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Panel WebSocket upgrade failed",
			slog.String("remote", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxCommandSize)

	h.logger.Info("Panel connected", slog.String("remote", r.RemoteAddr))

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("Panel connection closed unexpectedly",
					slog.String("remote", r.RemoteAddr),
					slog.String("error", err.Error()),
				)
			} else {
				h.logger.Info("Panel disconnected", slog.String("remote", r.RemoteAddr))
			}
			return
		}

		if messageType != websocket.TextMessage {
			h.writeEvent(conn, &panel.Event{
				Event: panel.EventError,
				Error: "expected a text message carrying a JSON command",
			})
			continue
		}

		var cmd panel.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.writeEvent(conn, &panel.Event{
				Event: panel.EventError,
				Error: "malformed command: " + err.Error(),
			})
			continue
		}

		event := h.handler.Handle(r.Context(), cmd)
		if event == nil {
			continue
		}

		if err := h.writeEvent(conn, event); err != nil {
			h.logger.Error("Failed to send panel event",
				slog.String("event", event.Event),
				slog.String("error", err.Error()),
			)
			return
		}
	}
}

func (h *HTTPServer) writeEvent(conn *websocket.Conn, event *panel.Event) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(event)
}
