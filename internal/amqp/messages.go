package amqp

import (
	"encoding/json"
	"time"
)

// ActivityMessage is the queue payload for one account activity event:
// a session operation or a budget change. The worker turns each message
// into a row of the activity log spreadsheet.
type ActivityMessage struct {
	Event       string    `json:"event"`
	Kind        string    `json:"kind"`
	UserEmail   string    `json:"user_email,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewActivityMessage creates an activity message stamped with the current time.
func NewActivityMessage(event, kind, title, description string) *ActivityMessage {
	return &ActivityMessage{
		Event:       event,
		Kind:        kind,
		Title:       title,
		Description: description,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
