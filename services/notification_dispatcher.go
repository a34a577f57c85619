package services

import (
	"context"
	"errors"
	"log"
	"sync"

	"mentorLinkAPI/internal/notification"
	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/user"
)

// PushProvider delivers one push message to one device token.
type PushProvider interface {
	SendPush(ctx context.Context, token string, p notification.Payload) error
}

// NotificationDispatcher hands messages to the push provider with
// fire-and-forget semantics: one recipient's failure never aborts delivery
// to others and never surfaces to the operation that triggered the push.
// Tokens the platform reports as dead are cleared from the recipient's
// profile so future dispatches skip them.
type NotificationDispatcher struct {
	provider PushProvider
	store    store.Store
}

func NewNotificationDispatcher(provider PushProvider, store store.Store) *NotificationDispatcher {
	return &NotificationDispatcher{provider: provider, store: store}
}

// Dispatch sends one push to one recipient. All failures are handled here;
// the method never reports them to the caller.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, recipientUID, token string, p notification.Payload) {
	if d.provider == nil {
		log.Printf("Dispatch: no push provider configured, dropping push for %s", recipientUID)
		return
	}

	err := d.provider.SendPush(ctx, token, p)
	if err == nil {
		return
	}

	if errors.Is(err, notification.ErrTokenNotRegistered) {
		log.Printf("Dispatch: token for %s is dead, removing it: %v", recipientUID, err)
		d.cleanupToken(ctx, recipientUID)
		return
	}

	log.Printf("Dispatch: push to %s failed: %v", recipientUID, err)
}

// cleanupToken deletes the dead token field. Cleanup failures are logged
// and swallowed like every other delivery error at this layer.
func (d *NotificationDispatcher) cleanupToken(ctx context.Context, recipientUID string) {
	err := d.store.Apply(ctx, store.Write{
		Collection: store.UsersCollection,
		ID:         recipientUID,
		Unset:      []string{user.FieldFCMToken},
	})
	if err != nil {
		log.Printf("Dispatch: failed to remove dead token for %s: %v", recipientUID, err)
	}
}

// MockPushProvider records pushes for tests. Safe for the concurrent
// fan-out the ingest performs.
type MockPushProvider struct {
	mu   sync.Mutex
	sent []MockPush
	// Fail maps tokens to the error SendPush should return for them.
	Fail map[string]error
}

type MockPush struct {
	Token   string
	Payload notification.Payload
}

func (m *MockPushProvider) SendPush(_ context.Context, token string, p notification.Payload) error {
	if err, ok := m.Fail[token]; ok {
		return err
	}
	m.mu.Lock()
	m.sent = append(m.sent, MockPush{Token: token, Payload: p})
	m.mu.Unlock()
	return nil
}

func (m *MockPushProvider) SentPushes() []MockPush {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockPush(nil), m.sent...)
}
