// cart_web_socket.go
package cartControllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Ptamayo26/ferremas-final-sub001/cart"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type cartChangedMessage struct {
	Event     string `json:"event"`
	SessionID string `json:"session_id"`
}

// CartWebSocketHandler pushes the cart-changed signal to other open views of
// the same anonymous cart. Only the event and session id go over the wire:
// the view re-reads the store, it never trusts a pushed copy of the cart.
func CartWebSocketHandler(notifier *cart.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Query("session_id")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		events, cancel := notifier.Subscribe()
		defer cancel()

		// Reader goroutine only to detect the peer going away.
		closed := make(chan struct{})
		go func() {
			defer close(closed)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case changed := <-events:
				if changed != sessionID {
					continue
				}
				msg := cartChangedMessage{Event: cart.EventCartChanged, SessionID: changed}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-closed:
				return
			}
		}
	}
}
