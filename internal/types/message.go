package types

import (
	"encoding/json"
	"strings"
	"time"
)

type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderAdmin    Sender = "admin"
)

type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusReplied MessageStatus = "replied"
	MessageStatusClosed  MessageStatus = "closed"
)

// BackendIDLimit is the legacy boundary between backend-assigned message IDs
// and millisecond timestamps used as IDs for client-side bot messages.
const BackendIDLimit int64 = 1_000_000_000_000

type Message struct {
	ID        int64         `json:"message_id"`
	OrderID   *int64        `json:"order_id,omitempty"`
	Text      string        `json:"message_text"`
	Sender    Sender        `json:"sender"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

func (m Message) IsAdmin() bool {
	return m.Sender == SenderAdmin
}

func (m Message) IsClosed() bool {
	return m.Status == MessageStatusClosed
}

// IsBackendID reports whether id looks like a row the backend assigned.
func IsBackendID(id int64) bool {
	return id > 0 && id < BackendIDLimit
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

func (m *Message) UnmarshalJSON(data []byte) error {
	type wire struct {
		ID        int64         `json:"message_id"`
		OrderID   *int64        `json:"order_id,omitempty"`
		Text      string        `json:"message_text"`
		Sender    Sender        `json:"sender"`
		Status    MessageStatus `json:"status"`
		CreatedAt string        `json:"created_at"`
	}
	var raw wire
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.ID = raw.ID
	m.OrderID = raw.OrderID
	m.Text = raw.Text
	m.Sender = Sender(strings.ToLower(strings.TrimSpace(string(raw.Sender))))
	m.Status = MessageStatus(strings.ToLower(strings.TrimSpace(string(raw.Status))))
	m.CreatedAt = ParseTimestamp(raw.CreatedAt)
	return nil
}

// ParseTimestamp accepts the timestamp shapes the backend has been seen to
// emit. Unparseable values yield the zero time.
func ParseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
