package bridge

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/common/utils"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	hub  *Hub
	seq  uint64
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return ErrClientGone
	case c.send <- data:
		return nil
	}
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				utils.Logger.Warn("Bridge read failed", zap.String("client_id", c.ID), zap.Error(err))
			}
			break
		}

		c.handle(message)
	}
}

func (c *Client) handle(message []byte) {
	reply, err := decodeReply(message)
	if err != nil {
		utils.Logger.Warn("Invalid bridge message", zap.String("client_id", c.ID), zap.Error(err))
		return
	}

	if reply.Type == MessageTypeRequestToken {
		data, err := json.Marshal(c.hub.tokenMessage())
		if err != nil {
			return
		}
		if err := c.enqueue(data); err != nil {
			utils.Logger.Warn("Failed to answer token request", zap.String("client_id", c.ID), zap.Error(err))
		}
		return
	}

	if reply.RequestID == "" || !c.hub.deliver(reply) {
		utils.Logger.Debug("Unmatched bridge message", zap.String("type", string(reply.Type)), zap.String("request_id", reply.RequestID))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
		c.Conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				utils.Logger.Warn("Bridge write failed", zap.String("client_id", c.ID), zap.Error(err))
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
