package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/0xvlm/nftsearch-go/internal/constants"
	"github.com/0xvlm/nftsearch-go/search"
)

// Client is a middleman between the WebSocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages
	send chan []byte

	// Active subscriptions
	subs   map[SubscriptionType]bool
	subsMu sync.RWMutex

	// Debounced suggestion lookup for this connection
	suggester *search.Suggester

	logger *zap.Logger
}

// NewClient creates a new client. The suggester factory wires the
// client's suggestion deliveries back to its own connection.
func NewClient(hub *Hub, conn *websocket.Conn, newSuggester func(deliver func(string, []search.Suggestion)) *search.Suggester, logger *zap.Logger) *Client {
	c := &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		subs:   make(map[SubscriptionType]bool),
		logger: logger,
	}
	if newSuggester != nil {
		c.suggester = newSuggester(c.deliverSuggestions)
	}
	return c
}

// IsSubscribed reports whether the client subscribed to the given stream
func (c *Client) IsSubscribed(sub SubscriptionType) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return c.subs[sub]
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		if c.suggester != nil {
			c.suggester.Stop()
		}
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(constants.DefaultWSPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(constants.DefaultWSPongTimeout))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected websocket close", zap.Error(err))
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalid message")
			continue
		}

		c.handleMessage(&msg)
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(constants.DefaultWSPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(constants.DefaultWSWriteTimeout))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(constants.DefaultWSWriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *Message) {
	switch msg.Type {
	case "subscribe":
		var req SubscribeRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.sendError("invalid subscribe payload")
			return
		}
		c.subsMu.Lock()
		c.subs[req.Type] = true
		c.subsMu.Unlock()
		c.sendSuccess("subscribed to " + string(req.Type))

	case "unsubscribe":
		var req UnsubscribeRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.sendError("invalid unsubscribe payload")
			return
		}
		c.subsMu.Lock()
		delete(c.subs, req.Type)
		c.subsMu.Unlock()
		c.sendSuccess("unsubscribed from " + string(req.Type))

	case "suggest":
		if c.suggester == nil {
			c.sendError("suggestions not available")
			return
		}
		var req SuggestRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			c.sendError("invalid suggest payload")
			return
		}
		c.suggester.Update(req.Query)

	default:
		c.sendError("unknown message type: " + msg.Type)
	}
}

// deliverSuggestions pushes a settled suggestion result to this client only
func (c *Client) deliverSuggestions(query string, suggestions []search.Suggestion) {
	c.sendEvent(&Event{
		Type: SubscribeSuggestions,
		Data: SuggestionsPayload{Query: query, Suggestions: suggestions},
	})
}

func (c *Client) sendEvent(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		c.logger.Error("failed to marshal event", zap.Error(err))
		return
	}
	c.sendMessage(Message{Type: "event", Payload: payload})
}

func (c *Client) sendError(text string) {
	payload, _ := json.Marshal(ErrorMessage{Error: text})
	c.sendMessage(Message{Type: "error", Payload: payload})
}

func (c *Client) sendSuccess(text string) {
	payload, _ := json.Marshal(SuccessMessage{Message: text})
	c.sendMessage(Message{Type: "success", Payload: payload})
}

func (c *Client) sendMessage(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal message", zap.Error(err))
		return
	}

	defer func() {
		// the send channel may already be closed by the hub
		recover()
	}()

	select {
	case c.send <- data:
	default:
		c.logger.Warn("client send buffer full, dropping message")
	}
}
