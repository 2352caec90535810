package websocket

import (
	"encoding/json"
)

// SubscriptionType represents the type of subscription
type SubscriptionType string

const (
	// SubscribeSessions subscribes to search session lifecycle events
	SubscribeSessions SubscriptionType = "sessions"

	// SubscribeSuggestions marks the stream of suggestion results. Clients
	// do not subscribe to it explicitly; sending a suggest message implies it.
	SubscribeSuggestions SubscriptionType = "suggestions"
)

// Message represents a WebSocket message
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribeRequest represents a subscription request
type SubscribeRequest struct {
	Type SubscriptionType `json:"type"`
}

// UnsubscribeRequest represents an unsubscribe request
type UnsubscribeRequest struct {
	Type SubscriptionType `json:"type"`
}

// SuggestRequest carries one keystroke of the client's search input
type SuggestRequest struct {
	Query string `json:"query"`
}

// Event represents a subscription event
type Event struct {
	Type  SubscriptionType `json:"type"`
	Event string           `json:"event,omitempty"`
	Data  interface{}      `json:"data"`
}

// SuggestionsPayload is the payload of a suggestions event
type SuggestionsPayload struct {
	Query       string      `json:"query"`
	Suggestions interface{} `json:"suggestions"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Error string `json:"error"`
}

// SuccessMessage represents a success message
type SuccessMessage struct {
	Message string `json:"message"`
}
