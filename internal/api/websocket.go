package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// wsEvent is the envelope for everything pushed over the socket.
type wsEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// handleWebSocket upgrades the connection and streams status snapshots
// and notifications until the client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	snapshots, cancelSnapshots := s.poller.Subscribe()
	defer cancelSnapshots()
	notifications, cancelNotifications := s.notifier.Subscribe()
	defer cancelNotifications()

	// Reader goroutine: we never expect client messages, but reading is
	// required to process control frames and notice disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		//nolint:errcheck // Deadline errors surface through ReadMessage
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	// Send the current snapshot immediately so a fresh dashboard is not
	// blank until the next poll cycle.
	if err := s.writeEvent(conn, wsEvent{Type: "status", Payload: s.poller.Status()}); err != nil {
		return
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, wsEvent{Type: "status", Payload: snap}); err != nil {
				return
			}
		case n, ok := <-notifications:
			if !ok {
				return
			}
			if err := s.writeEvent(conn, wsEvent{Type: "notification", Payload: n}); err != nil {
				return
			}
		case <-ping.C:
			//nolint:errcheck // Deadline errors surface through WriteMessage
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) writeEvent(conn *websocket.Conn, ev wsEvent) error {
	//nolint:errcheck // Deadline errors surface through WriteJSON
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(ev)
}
