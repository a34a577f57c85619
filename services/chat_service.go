package services

import (
	"context"
	"log"
	"strings"
	"time"

	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/chat"
	apperrors "mentorLinkAPI/pkg/errors"
)

// ChatService is the directory of canonical channel documents. Channel
// creation is an idempotent merge: either party may call it any number of
// times and both resolve to the same document.
type ChatService struct {
	store store.Store
}

func NewChatService(store store.Store) *ChatService {
	return &ChatService{store: store}
}

// ChannelID derives the canonical one-on-one channel id. Sorting the pair
// makes the id commutative: ChannelID(a, b) == ChannelID(b, a).
func ChannelID(uidA, uidB string) string {
	if uidB < uidA {
		uidA, uidB = uidB, uidA
	}
	return strings.Join([]string{uidA, uidB}, "_")
}

// InitializeChat merge-creates the one-on-one channel between the caller
// and targetUID and returns its id. The lastMessage placeholder is only
// written when the read sees no channel document; the read and the write
// are not one transaction, so two initialize calls racing on the same pair
// can both take the creation path.
func (s *ChatService) InitializeChat(ctx context.Context, callerUID, targetUID string) (string, error) {
	if err := validatePair(callerUID, targetUID); err != nil {
		return "", err
	}

	channelID := ChannelID(callerUID, targetUID)

	doc, err := s.store.Get(ctx, store.ChatsCollection, channelID)
	if err != nil {
		log.Printf("InitializeChat: failed to load channel %s: %v", channelID, err)
		return "", apperrors.ErrStoreFailure(err)
	}
	if doc != nil {
		return channelID, nil
	}

	err = s.store.Apply(ctx, store.Write{
		Collection: store.ChatsCollection,
		ID:         channelID,
		Set: map[string]any{
			chat.FieldType:         string(chat.TypeOneOnOne),
			chat.FieldLastMessage:  emptyLastMessage(),
			chat.FieldLastActivity: time.Now(),
		},
		Union: map[string][]string{chat.FieldParticipants: {callerUID, targetUID}},
	})
	if err != nil {
		log.Printf("InitializeChat: failed to create channel %s: %v", channelID, err)
		return "", apperrors.ErrStoreFailure(err)
	}

	log.Printf("InitializeChat: channel %s initialized", channelID)
	return channelID, nil
}

// InitializeGroupChannel merge-creates the channel backing a group, keyed
// by the group id, with the full member list as participants.
func (s *ChatService) InitializeGroupChannel(ctx context.Context, groupID, name string, memberIDs []string) error {
	doc, err := s.store.Get(ctx, store.ChatsCollection, groupID)
	if err != nil {
		log.Printf("InitializeGroupChannel: failed to load channel %s: %v", groupID, err)
		return apperrors.ErrStoreFailure(err)
	}

	write := store.Write{
		Collection: store.ChatsCollection,
		ID:         groupID,
		Set: map[string]any{
			chat.FieldType: string(chat.TypeGroup),
			chat.FieldName: name,
		},
		Union: map[string][]string{chat.FieldParticipants: memberIDs},
	}
	if doc == nil {
		write.Set[chat.FieldLastMessage] = emptyLastMessage()
		write.Set[chat.FieldLastActivity] = time.Now()
	}

	if err := s.store.Apply(ctx, write); err != nil {
		log.Printf("InitializeGroupChannel: failed to merge channel %s: %v", groupID, err)
		return apperrors.ErrStoreFailure(err)
	}
	return nil
}

// GetChannel loads a channel document; nil means the channel does not
// exist.
func (s *ChatService) GetChannel(ctx context.Context, channelID string) (*chat.Channel, error) {
	doc, err := s.store.Get(ctx, store.ChatsCollection, channelID)
	if err != nil {
		return nil, apperrors.ErrStoreFailure(err)
	}
	if doc == nil {
		return nil, nil
	}

	lm := store.Map(doc.Data, chat.FieldLastMessage)
	return &chat.Channel{
		ID:           doc.ID,
		Name:         store.Str(doc.Data, chat.FieldName),
		Type:         chat.ChannelType(store.Str(doc.Data, chat.FieldType)),
		Participants: store.Strings(doc.Data, chat.FieldParticipants),
		LastMessage: chat.LastMessage{
			Text:      store.Str(lm, "text"),
			SenderID:  store.Str(lm, "senderId"),
			Timestamp: store.Time(lm, "timestamp"),
		},
		LastActivity: store.Time(doc.Data, chat.FieldLastActivity),
	}, nil
}

func emptyLastMessage() map[string]any {
	return map[string]any{
		"text":      "",
		"senderId":  "",
		"timestamp": time.Time{},
	}
}
