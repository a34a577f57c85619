package store

import (
	"context"
	"time"
)

// Collection names used across the service layer.
const (
	UsersCollection         = "users"
	RelationshipsCollection = "relationships"
	GroupsCollection        = "groups"
	ChatsCollection         = "chats"
	MessagesCollection      = "messages"
)

// Doc is a single document read from the store.
type Doc struct {
	ID   string
	Data map[string]any
}

// Write describes the mutations applied to one document. Union and Remove
// carry atomic set semantics on array fields, so re-applying the same write
// is a no-op after the first application. Every Write passed to a single
// Apply call commits atomically.
type Write struct {
	Collection string
	ID         string
	Set        map[string]any      // fields written with merge semantics
	Union      map[string][]string // field -> values added with set-union
	Remove     map[string][]string // field -> values removed with set-difference
	Unset      []string            // fields deleted from the document
	Delete     bool                // delete the whole document
}

// Store is the document-store surface the services are written against.
// The production implementation is Firestore; tests use MemoryStore.
type Store interface {
	// Get returns nil (and no error) when the document does not exist.
	Get(ctx context.Context, collection, id string) (*Doc, error)
	// GetAll fetches documents by id, omitting the ones that do not exist.
	GetAll(ctx context.Context, collection string, ids []string) ([]*Doc, error)
	// Apply commits all writes as one atomic multi-document batch. Callers
	// must keep the batch under the store's mutation ceiling; use
	// ApplyChunked for arbitrarily large fan-outs.
	Apply(ctx context.Context, writes ...Write) error
}

// Str reads a string field, returning "" for missing or non-string values.
func Str(data map[string]any, field string) string {
	s, _ := data[field].(string)
	return s
}

// Strings reads an array field into a string slice. Firestore decodes
// arrays as []interface{}, so both representations are handled.
func Strings(data map[string]any, field string) []string {
	switch v := data[field].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Time reads a timestamp field, returning the zero time when absent.
func Time(data map[string]any, field string) time.Time {
	t, _ := data[field].(time.Time)
	return t
}

// Map reads a nested map field.
func Map(data map[string]any, field string) map[string]any {
	m, _ := data[field].(map[string]any)
	return m
}
