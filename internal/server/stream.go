package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamWriteTimeout = 5 * time.Second
	streamPingInterval = 30 * time.Second
)

// handleStatusStream pushes the status snapshot over a websocket whenever it
// changes. Clients never send anything meaningful; reads only detect close.
func (s *Server) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("status stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(512)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	poll := time.NewTicker(s.streamInterval)
	defer poll.Stop()
	ping := time.NewTicker(streamPingInterval)
	defer ping.Stop()

	var last []byte
	for {
		data, err := json.Marshal(s.coach.Status())
		if err != nil {
			s.log.Error("encoding status", "error", err)
			return
		}
		if !bytes.Equal(data, last) {
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
			last = data
		}

		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			deadline := time.Now().Add(streamWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), deadline); err != nil {
				return
			}
		case <-poll.C:
		}
	}
}
