package server

import (
	"context"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/gorilla/websocket"
)

// AllowOrigins sets the cross-origin browser pages that may open review
// WebSockets, as scheme://host[:port] strings. "*" allows any origin.
// Same-origin pages and clients that send no Origin header are always
// accepted.
func (s *Server) AllowOrigins(origins ...string) {
	s.origins = s.origins[:0]
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			s.origins = append(s.origins, strings.ToLower(o))
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
		return true
	}
	return slices.Contains(s.origins, "*") ||
		slices.Contains(s.origins, strings.ToLower(strings.TrimRight(origin, "/")))
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024 * 16,
		WriteBufferSize: 1024 * 64,
		CheckOrigin:     s.checkOrigin,
	}
}

// wsError is sent when a WebSocket review cannot start or is interrupted.
type wsError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// handleReviewWebSocket runs one review per connection. The client sends a
// single reviewRequest; the server answers with one JSON event per message
// and closes the connection after the done event. The review is abandoned
// if the client disconnects first.
func (s *Server) handleReviewWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WARNING: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	var req reviewRequest
	if err := conn.ReadJSON(&req); err != nil {
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			sendWSError(conn, "invalid review request: "+err.Error())
		}
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing else; a read error means it has gone.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	_, events, err := s.svc.StartReview(ctx, r.PathValue("id"), req.options())
	if err != nil {
		sendWSError(conn, err.Error())
		return
	}

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			log.Printf("WARNING: websocket write: %v", err)
			return
		}
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "review complete")
	if err := conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		log.Printf("WARNING: websocket close: %v", err)
	}
}

func sendWSError(conn *websocket.Conn, msg string) {
	if err := conn.WriteJSON(wsError{Type: "error", Message: msg}); err != nil {
		log.Printf("WARNING: websocket write: %v", err)
	}
}
