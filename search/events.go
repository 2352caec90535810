package search

// Session lifecycle events pushed to subscribed clients
const (
	EventSessionStarted   = "sessionStarted"
	EventPageLoaded       = "pageLoaded"
	EventSessionExhausted = "sessionExhausted"
	EventSessionNotFound  = "sessionNotFound"
	EventSessionFailed    = "sessionFailed"
)

// SessionEventData is the payload attached to session lifecycle events
type SessionEventData struct {
	SessionID  string           `json:"sessionId"`
	Collection ResolvedContract `json:"collection"`
	NewItems   int              `json:"newItems,omitempty"`
	TotalItems int              `json:"totalItems"`
	Exhausted  bool             `json:"exhausted"`
	Error      string           `json:"error,omitempty"`
}

// EventSink receives session lifecycle events. Implementations must not
// block; the search core emits events inline.
type EventSink interface {
	SessionEvent(event string, data SessionEventData)
}
