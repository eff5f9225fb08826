package docstore

import (
	"context"
	"sync"
)

// TestStore is an in-memory Store used in tests.
type TestStore struct {
	mu          sync.Mutex
	docs        map[string]map[string][]byte
	subscribers map[string][]chan Event
}

func NewTestStore() *TestStore {
	return &TestStore{
		docs:        make(map[string]map[string][]byte),
		subscribers: make(map[string][]chan Event),
	}
}

func (s *TestStore) Get(_ context.Context, collection, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *TestStore) Set(_ context.Context, collection, id string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.docs[collection] == nil {
		s.docs[collection] = make(map[string][]byte)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	s.docs[collection][id] = cp

	s.notifyLocked(Event{Collection: collection, ID: id, Data: cp})

	return nil
}

func (s *TestStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.docs[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.docs[collection], id)

	s.notifyLocked(Event{Collection: collection, ID: id, Deleted: true})

	return nil
}

func (s *TestStore) List(_ context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []Document
	for id, data := range s.docs[collection] {
		cp := make([]byte, len(data))
		copy(cp, data)
		docs = append(docs, Document{Collection: collection, ID: id, Data: cp})
	}

	return docs, nil
}

func (s *TestStore) Subscribe(collection string) (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, 64)
	s.subscribers[collection] = append(s.subscribers[collection], ch)

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[collection]
		for i, sub := range subs {
			if sub == ch {
				s.subscribers[collection] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}

	return ch, cancel
}

func (s *TestStore) notifyLocked(event Event) {
	for _, ch := range s.subscribers[event.Collection] {
		select {
		case ch <- event:
		default:
		}
	}
}
