package targets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rosyfit/backend/internal/docstore"
)

const collectionTargets = "weekly_targets"

// TargetsDocument is the stored form of a user's weekly targets,
// stamped with the week id of the last update for rollover detection.
type TargetsDocument struct {
	LastUpdateWeek string         `json:"lastUpdateWeek"`
	Targets        []WeeklyTarget `json:"targets"`
}

type Repo struct {
	store docstore.Store
}

func NewRepo(store docstore.Store) *Repo {
	return &Repo{store: store}
}

// Get returns the stored targets document, zero-valued when the user
// has none yet.
func (r *Repo) Get(ctx context.Context, userID string) (TargetsDocument, error) {
	data, err := r.store.Get(ctx, collectionTargets, userID)
	if errors.Is(err, docstore.ErrNotFound) {
		return TargetsDocument{}, nil
	}
	if err != nil {
		return TargetsDocument{}, fmt.Errorf("get weekly targets: %w", err)
	}

	var doc TargetsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return TargetsDocument{}, fmt.Errorf("unmarshal weekly targets: %w", err)
	}

	return doc, nil
}

func (r *Repo) Save(ctx context.Context, userID string, doc TargetsDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal weekly targets: %w", err)
	}
	if err := r.store.Set(ctx, collectionTargets, userID, data); err != nil {
		return fmt.Errorf("save weekly targets: %w", err)
	}
	return nil
}
