package server

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/acmeliving/sophie-go/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-origin enforcement happens at the proxy
	},
}

// wsError is sent to the client when a turn fails; the connection stays
// open so the visitor can keep typing.
type wsError struct {
	Error string `json:"error"`
}

// handleChatWS runs a chat conversation over one websocket connection.
// Each inbound frame is a ChatRequest; each outbound frame is a
// ChatResponse or a wsError. The session established by the first turn is
// reused for subsequent frames that omit IDs, so a browser client doesn't
// have to echo them back.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var sessionID, prospectID string

	for {
		var req service.ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		if req.SessionID == "" {
			req.SessionID = sessionID
		}
		if req.ProspectID == "" {
			req.ProspectID = prospectID
		}

		resp, err := s.runTurn(r.Context(), req)
		if err != nil {
			msg := "internal server error"
			if errors.Is(err, service.ErrEmptyMessage) {
				msg = "Message is required"
			} else {
				s.logger.Error("websocket turn failed", "session_id", req.SessionID, "error", err)
			}
			if err := conn.WriteJSON(wsError{Error: msg}); err != nil {
				return
			}
			continue
		}

		sessionID = resp.SessionID
		prospectID = resp.ProspectID

		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
