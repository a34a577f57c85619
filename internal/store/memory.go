package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore is an in-process Store used by unit tests. Apply holds the
// lock for the whole batch, matching the per-call atomicity of the real
// store. FailAfter lets tests simulate a crash between chunks.
type MemoryStore struct {
	mu   sync.Mutex
	cols map[string]map[string]map[string]any

	// FailAfter, when > 0, fails every Apply call after that many calls
	// have succeeded.
	FailAfter int
	applies   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cols: make(map[string]map[string]map[string]any)}
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (*Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.cols[collection][id]
	if !ok {
		return nil, nil
	}
	return &Doc{ID: id, Data: copyDoc(data)}, nil
}

func (s *MemoryStore) GetAll(_ context.Context, collection string, ids []string) ([]*Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]*Doc, 0, len(ids))
	for _, id := range ids {
		if data, ok := s.cols[collection][id]; ok {
			docs = append(docs, &Doc{ID: id, Data: copyDoc(data)})
		}
	}
	return docs, nil
}

func (s *MemoryStore) Apply(_ context.Context, writes ...Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailAfter > 0 && s.applies >= s.FailAfter {
		return fmt.Errorf("memory store: injected failure after %d applies", s.FailAfter)
	}

	for _, w := range writes {
		col := s.cols[w.Collection]
		if col == nil {
			col = make(map[string]map[string]any)
			s.cols[w.Collection] = col
		}

		if w.Delete {
			delete(col, w.ID)
			continue
		}

		data := col[w.ID]
		if data == nil {
			data = make(map[string]any)
			col[w.ID] = data
		}

		for field, value := range w.Set {
			data[field] = value
		}
		for field, values := range w.Union {
			current := Strings(data, field)
			for _, v := range values {
				if !slices.Contains(current, v) {
					current = append(current, v)
				}
			}
			data[field] = current
		}
		for field, values := range w.Remove {
			current := Strings(data, field)
			kept := current[:0]
			for _, v := range current {
				if !slices.Contains(values, v) {
					kept = append(kept, v)
				}
			}
			data[field] = slices.Clone(kept)
		}
		for _, field := range w.Unset {
			delete(data, field)
		}
	}

	s.applies++
	return nil
}

// Applies reports how many Apply calls have committed.
func (s *MemoryStore) Applies() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applies
}

func copyDoc(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		switch vv := v.(type) {
		case []string:
			out[k] = slices.Clone(vv)
		case map[string]any:
			out[k] = copyDoc(vv)
		default:
			out[k] = v
		}
	}
	return out
}
