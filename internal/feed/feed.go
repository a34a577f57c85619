package feed

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/chat"
	"mentorLinkAPI/services"
)

// MessageHandler consumes message-creation events. Delivery is
// at-least-once: the listener can replay documents after reconnects, so
// handlers must be idempotent.
type MessageHandler interface {
	HandleMessageCreated(ctx context.Context, ev services.MessageEvent) error
}

// MessageFeed tails the messages subcollections with a collection-group
// snapshot listener and hands every newly created document to the handler.
type MessageFeed struct {
	client  *firestore.Client
	handler MessageHandler
}

func NewMessageFeed(client *firestore.Client, handler MessageHandler) *MessageFeed {
	return &MessageFeed{client: client, handler: handler}
}

// Run blocks, streaming message-created events until ctx is cancelled.
// Only messages created after startup are observed; history is not
// replayed on a cold start.
func (f *MessageFeed) Run(ctx context.Context) error {
	query := f.client.CollectionGroup(store.MessagesCollection).
		Where(chat.FieldCreatedAt, ">", time.Now())

	it := query.Snapshots(ctx)
	defer it.Stop()

	log.Println("MessageFeed: listening for new messages")

	for {
		snap, err := it.Next()
		if err != nil {
			if status.Code(err) == codes.Canceled {
				log.Println("MessageFeed: listener stopped")
				return nil
			}
			log.Printf("MessageFeed: snapshot stream failed: %v", err)
			return err
		}

		for _, change := range snap.Changes {
			if change.Kind != firestore.DocumentAdded {
				continue
			}
			f.dispatch(ctx, change.Doc)
		}
	}
}

func (f *MessageFeed) dispatch(ctx context.Context, doc *firestore.DocumentSnapshot) {
	// messages live at chats/{channelId}/messages/{messageId}
	channelRef := doc.Ref.Parent.Parent
	if channelRef == nil {
		log.Printf("MessageFeed: message %s has no parent channel, skipping", doc.Ref.ID)
		return
	}

	data := doc.Data()
	ev := services.MessageEvent{
		ChannelID: channelRef.ID,
		MessageID: doc.Ref.ID,
		SenderID:  store.Str(data, chat.FieldSenderID),
		Text:      store.Str(data, chat.FieldText),
		CreatedAt: store.Time(data, chat.FieldCreatedAt),
	}

	handleCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := f.handler.HandleMessageCreated(handleCtx, ev); err != nil {
		log.Printf("MessageFeed: handler failed for message %s in %s: %v", ev.MessageID, ev.ChannelID, err)
	}
}
