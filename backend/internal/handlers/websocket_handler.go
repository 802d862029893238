package handlers

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"

	ws "github.com/user/carbontracker/backend/internal/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// MarketWS streams market snapshots to the connection.
func (h *Handler) MarketWS(c *websocket.Conn) {
	client := ws.NewClient(c)
	if !h.Hub.Join(client) {
		_ = c.Close()
		return
	}
	h.Log.Debug("websocket connection established", zap.String("addr", client.Addr))

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(client)
	}()

	// The fiber websocket handler must block for the lifetime of the connection,
	// the conn is reused once it returns.
	h.readPump(client)
	<-done
}

// writePump pumps messages from the hub to the websocket connection.
func (h *Handler) writePump(client *ws.Client) {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = client.Conn.Close()
		h.Log.Debug("websocket writer stopped", zap.String("addr", client.Addr))
	}()

	for {
		select {
		case message, ok := <-client.Send:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// the hub closed the channel
				_ = client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.Log.Debug("websocket write failed", zap.String("addr", client.Addr), zap.Error(err))
				h.Hub.Leave(client)
				return
			}
		case <-ping.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.Hub.Leave(client)
				return
			}
		}
	}
}

// readPump only handles disconnects and pongs; clients send nothing.
func (h *Handler) readPump(client *ws.Client) {
	defer h.Hub.Leave(client)

	client.Conn.SetReadLimit(512)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Log.Debug("client disconnected unexpectedly", zap.String("addr", client.Addr), zap.Error(err))
			}
			return
		}
	}
}
