package chat

import "time"

type ChannelType string

const (
	TypeOneOnOne ChannelType = "one_on_one"
	TypeGroup    ChannelType = "group"
)

// Channel is the canonical channel document. One-on-one channel ids are
// derived from the sorted participant pair, so both parties resolve the
// same document.
type Channel struct {
	ID           string      `json:"id"`
	Name         string      `json:"name,omitempty"`
	Type         ChannelType `json:"type"`
	Participants []string    `json:"participants"`
	LastMessage  LastMessage `json:"lastMessage"`
	LastActivity time.Time   `json:"lastActivity"`
}

type LastMessage struct {
	Text      string    `json:"text"`
	SenderID  string    `json:"senderId"`
	Timestamp time.Time `json:"timestamp"`
}

// Message is one document of a channel's messages subcollection.
// Append-only; this service only ever reads it from the change feed.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Field names of the channel document.
const (
	FieldName         = "name"
	FieldType         = "type"
	FieldParticipants = "participants"
	FieldLastMessage  = "lastMessage"
	FieldLastActivity = "lastActivity"
)

// Field names of a message document.
const (
	FieldSenderID  = "senderId"
	FieldText      = "text"
	FieldCreatedAt = "createdAt"
)

type InitializeChatRequest struct {
	TargetUID string `json:"targetUid"`
}
