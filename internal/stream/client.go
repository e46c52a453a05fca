package stream

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 64
	maxMessagesPerSec = 50
)

type outbound struct {
	kind int
	data []byte
}

// Client is one websocket viewer.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan outbound
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
}

func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan outbound, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads control messages until the connection fails.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Printf("ws error: %v", err)
			}
			return
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.hub.logger.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			return
		}

		c.handleMessage(message)
	}
}

// WritePump drains the send queue and keeps the connection alive.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(msg.kind, msg.data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// queue hands a message to the write pump, dropping it when the client
// is too slow. Only the hub goroutine calls it, and only while the client
// is registered, so send is never closed underneath it.
func (c *Client) queue(kind int, data []byte) bool {
	select {
	case c.send <- outbound{kind, data}:
		return true
	default:
		return false
	}
}

func (c *Client) sendError(msg string) {
	c.hub.submit(command{reply: c, text: encodeError(msg)})
}

func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("malformed message")
		return
	}

	switch env.T {
	case MsgTrigger:
		msg, err := decodeTrigger(env.D)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		c.hub.submit(command{reply: c, trigger: &msg})
	case MsgClear:
		c.hub.submit(command{clear: true})
	default:
		c.sendError("unknown message type " + env.T)
	}
}
