package controller

import (
	"net/http"
)

type wsOutput struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// PositionStream pushes position updates to the UI over a websocket. The
// stream is write-only; all commands go through the REST endpoints.
func (c controller) PositionStream(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.InfoContext(r.Context(), "failed to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	updates, unsubscribe := c.sessionService.SubscribeUpdates()
	defer unsubscribe()

	// drain reads so close frames are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				unsubscribe()
				return
			}
		}
	}()

	for update := range updates {
		if err := conn.WriteJSON(wsOutput{Type: "position", Payload: update}); err != nil {
			c.logger.InfoContext(r.Context(), "failed to write position update", "error", err)
			return
		}
	}
}
