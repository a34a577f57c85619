package services

import (
	"context"
	"log"
	"sync"
	"time"

	"mentorLinkAPI/internal/notification"
	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/chat"
	apperrors "mentorLinkAPI/pkg/errors"
	"mentorLinkAPI/utils"
)

// pushBodyLimit caps the message preview carried in a push body.
const pushBodyLimit = 50

// MessageEvent is one message-creation event from the change feed.
// Delivery is at-least-once, so handling must tolerate redelivery.
type MessageEvent struct {
	ChannelID string
	MessageID string
	SenderID  string
	Text      string
	CreatedAt time.Time
}

// MessageIngest reacts to new messages: it refreshes channel metadata,
// computes the recipient set and fans pushes out through the dispatcher.
type MessageIngest struct {
	store      store.Store
	users      *UserService
	dispatcher *NotificationDispatcher
}

func NewMessageIngest(store store.Store, users *UserService, dispatcher *NotificationDispatcher) *MessageIngest {
	return &MessageIngest{store: store, users: users, dispatcher: dispatcher}
}

// HandleMessageCreated processes one message-creation event. The channel
// metadata update is a plain merge of the event's values, so redelivering
// the same event applies the same state twice without harm. Push dispatch
// is bounded by the recipient set; the call returns once every dispatch
// has completed.
func (m *MessageIngest) HandleMessageCreated(ctx context.Context, ev MessageEvent) error {
	doc, err := m.store.Get(ctx, store.ChatsCollection, ev.ChannelID)
	if err != nil {
		log.Printf("MessageIngest: failed to load channel %s: %v", ev.ChannelID, err)
		return apperrors.ErrStoreFailure(err)
	}
	if doc == nil {
		// Channels must pre-exist; a message without one is dropped.
		log.Printf("MessageIngest: channel %s not found for message %s, dropping event", ev.ChannelID, ev.MessageID)
		return nil
	}

	channelType := chat.ChannelType(store.Str(doc.Data, chat.FieldType))
	participants := store.Strings(doc.Data, chat.FieldParticipants)

	recipients := make([]string, 0, len(participants))
	for _, uid := range participants {
		if uid != ev.SenderID {
			recipients = append(recipients, uid)
		}
	}

	err = m.store.Apply(ctx, store.Write{
		Collection: store.ChatsCollection,
		ID:         ev.ChannelID,
		Set: map[string]any{
			chat.FieldLastMessage: map[string]any{
				"text":      ev.Text,
				"senderId":  ev.SenderID,
				"timestamp": ev.CreatedAt,
			},
			chat.FieldLastActivity: ev.CreatedAt,
		},
	})
	if err != nil {
		log.Printf("MessageIngest: failed to update metadata for %s: %v", ev.ChannelID, err)
		return apperrors.ErrStoreFailure(err)
	}

	if len(recipients) == 0 {
		return nil
	}

	senderName := m.users.DisplayName(ctx, ev.SenderID)
	payload := notification.Payload{
		Title: pushTitle(senderName, channelType, store.Str(doc.Data, chat.FieldName)),
		Body:  utils.Truncate(ev.Text, pushBodyLimit),
		Data: map[string]string{
			notification.DataKeyType:      notification.PushTypeChatMessage,
			notification.DataKeyChannelID: ev.ChannelID,
			notification.DataKeySenderID:  ev.SenderID,
		},
	}

	var wg sync.WaitGroup
	for _, uid := range recipients {
		token, err := m.users.DeviceToken(ctx, uid)
		if err != nil {
			log.Printf("MessageIngest: failed to resolve token for %s: %v", uid, err)
			continue
		}
		if token == "" {
			log.Printf("MessageIngest: %s has no device token, skipping push", uid)
			continue
		}

		wg.Add(1)
		go func(uid, token string) {
			defer wg.Done()
			m.dispatcher.Dispatch(ctx, uid, token, payload)
		}(uid, token)
	}
	wg.Wait()

	return nil
}

func pushTitle(senderName string, channelType chat.ChannelType, channelName string) string {
	if channelType == chat.TypeGroup && channelName != "" {
		return senderName + " @ " + channelName
	}
	return senderName
}
