package gateway

// Wire events pushed to connected clients. The presence event carries the
// full online set, not a delta.
const (
	EventOnlineUsers = "onlineUsers"
	EventNewMessage  = "newMessage"
)

type OnlineUsersEvent struct {
	Type    string   `json:"type"`
	UserIDs []string `json:"userIds"`
}

type NewMessageEvent struct {
	Type    string `json:"type"`
	Message any    `json:"message"`
}

// NewMessage wraps a persisted message for realtime delivery.
func NewMessage(message any) NewMessageEvent {
	return NewMessageEvent{Type: EventNewMessage, Message: message}
}
