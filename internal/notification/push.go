package notification

import "errors"

// ErrTokenNotRegistered classifies delivery failures where the platform
// reports the device token as permanently invalid. The dispatcher reacts
// by clearing the token from the recipient's profile.
var ErrTokenNotRegistered = errors.New("device token not registered")

// Payload is one push message addressed to a single device.
type Payload struct {
	Title string
	Body  string
	Data  map[string]string
}

// Data keys attached to every chat push.
const (
	DataKeyType      = "type"
	DataKeyChannelID = "channelId"
	DataKeySenderID  = "senderId"
)

// PushTypeChatMessage is the value of the "type" data key for chat pushes.
const PushTypeChatMessage = "chat_message"
