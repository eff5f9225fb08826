package docstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rosyfit/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PsqlStore keeps documents in a single JSONB table. Change notifications
// are fanned out in-process, under the same lock that orders the writes.
type PsqlStore struct {
	db *pgxpool.Pool

	mu          sync.Mutex
	subscribers map[string][]chan Event
}

func NewPsqlStore(db *pgxpool.Pool) *PsqlStore {
	return &PsqlStore{
		db:          db,
		subscribers: make(map[string][]chan Event),
	}
}

func (s *PsqlStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.get")
	defer span.End()

	var data []byte
	err := s.db.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}

	return data, nil
}

func (s *PsqlStore) Set(ctx context.Context, collection, id string, data []byte) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.set")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(ctx,
		`INSERT INTO documents (collection, id, data, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (collection, id)
			DO UPDATE SET data = $3, updated_at = now()`,
		collection, id, data,
	)
	if err != nil {
		return fmt.Errorf("set document: %w", err)
	}

	s.notifyLocked(Event{Collection: collection, ID: id, Data: data})

	return nil
}

func (s *PsqlStore) Delete(ctx context.Context, collection, id string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.delete")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	tag, err := s.db.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	s.notifyLocked(Event{Collection: collection, ID: id, Deleted: true})

	return nil
}

func (s *PsqlStore) List(ctx context.Context, collection string) ([]Document, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "docstore.list")
	defer span.End()

	rows, err := s.db.Query(ctx,
		`SELECT collection, id, data FROM documents WHERE collection = $1 ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.Collection, &doc.ID, &doc.Data); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func (s *PsqlStore) Subscribe(collection string) (<-chan Event, func()) {
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

// notifyLocked delivers the event to all subscribers of its collection.
// A subscriber that stopped draining its channel loses events rather
// than blocking writers.
func (s *PsqlStore) notifyLocked(event Event) {
	for _, ch := range s.subscribers[event.Collection] {
		select {
		case ch <- event:
		default:
		}
	}
}
