package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore implements Store on top of a Firestore client. Field
// transforms (ArrayUnion/ArrayRemove/Delete) give the atomic set mutations,
// and WriteBatch gives per-call multi-document atomicity.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (*Doc, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return &Doc{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *FirestoreStore) GetAll(ctx context.Context, collection string, ids []string) ([]*Doc, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, s.client.Collection(collection).Doc(id))
	}

	snaps, err := s.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get all %s: %w", collection, err)
	}

	docs := make([]*Doc, 0, len(snaps))
	for _, snap := range snaps {
		if !snap.Exists() {
			continue
		}
		docs = append(docs, &Doc{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) Apply(ctx context.Context, writes ...Write) error {
	if len(writes) == 0 {
		return nil
	}

	batch := s.client.Batch()
	for _, w := range writes {
		ref := s.client.Collection(w.Collection).Doc(w.ID)
		if w.Delete {
			batch.Delete(ref)
			continue
		}

		data := make(map[string]any, len(w.Set)+len(w.Union)+len(w.Remove)+len(w.Unset))
		for field, value := range w.Set {
			data[field] = value
		}
		for field, values := range w.Union {
			data[field] = firestore.ArrayUnion(toAnySlice(values)...)
		}
		for field, values := range w.Remove {
			data[field] = firestore.ArrayRemove(toAnySlice(values)...)
		}
		for _, field := range w.Unset {
			data[field] = firestore.Delete
		}
		batch.Set(ref, data, firestore.MergeAll)
	}

	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch of %d writes: %w", len(writes), err)
	}
	return nil
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
