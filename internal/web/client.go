package web

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/codefionn/codecompanion/internal/logger"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 256 * 1024
)

// Client represents a live analysis WebSocket connection
type Client struct {
	ID        string
	hub       *Hub
	conn      *websocket.Conn
	send      chan *WebMessage
	broker    *AnalysisBroker
	closeOnce sync.Once
	closed    chan struct{}
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, analyzer Analyzer, delay time.Duration) *Client {
	id, _ := generateClientID()

	client := &Client{
		ID:     id,
		hub:    hub,
		conn:   conn,
		send:   make(chan *WebMessage, 64),
		closed: make(chan struct{}),
	}
	client.broker = NewAnalysisBroker(analyzer, delay, client.sendResponse)
	return client
}

// ReadPump pumps messages from the WebSocket connection to the broker
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Error("WebSocket read error: %v", err)
			}
			break
		}

		var msg WebMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn("Failed to unmarshal message: %v", err)
			c.sendResponse(&WebMessage{Type: MessageTypeError, Error: "invalid message"})
			continue
		}

		c.handleMessage(&msg)
	}
}

// WritePump pumps queued messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				logger.Error("Failed to write message: %v", err)
				return
			}

		case <-c.closed:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage handles incoming messages from the client
func (c *Client) handleMessage(msg *WebMessage) {
	switch msg.Type {
	case MessageTypeAnalyze:
		c.broker.Submit(msg.Content)
	default:
		logger.Warn("Unknown message type: %s", msg.Type)
		c.sendResponse(&WebMessage{Type: MessageTypeError, Error: "unknown message type: " + msg.Type})
	}
}

// sendResponse queues a message for the client
func (c *Client) sendResponse(msg *WebMessage) {
	select {
	case <-c.closed:
	case c.send <- msg:
	default:
		logger.Warn("Client send channel full, dropping message")
	}
}

// close stops the broker and ends the write pump. Safe to call repeatedly.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.broker.Stop()
		close(c.closed)
	})
}

// generateClientID generates a random client ID
func generateClientID() (string, error) {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
