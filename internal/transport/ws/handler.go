package ws

import (
	"net/http"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// TokenVerifier returns the user id carried by a bearer token.
type TokenVerifier interface {
	ParseToken(token string) (string, error)
}

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// With a verifier, auth is done via ?token=xxx (WebSocket can't send
// headers); without one the caller names itself with ?user=.
func ServeWS(hub *Hub, verifier TokenVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user")
		if verifier != nil {
			tokenStr := r.URL.Query().Get("token")
			if tokenStr == "" {
				http.Error(w, "missing token", http.StatusUnauthorized)
				return
			}
			id, err := verifier.ParseToken(tokenStr)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			userID = id
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // Allow any origin (dev mode)
		})
		if err != nil {
			hub.log.Warn("ws_accept_failed", zap.Error(err))
			return
		}

		client := NewClient(hub, conn, userID)
		if !hub.Register(r.Context(), client) {
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}
