package pricing

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richxcame/logistics-pricing/pkg/kvstore"
)

const snapshotDocument = "config:snapshot"

// Repository keeps the configuration snapshot as one Redis document
type Repository struct {
	store *kvstore.Store
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new pricing repository
func NewRepository(store *kvstore.Store) *Repository {
	return &Repository{store: store}
}

// LoadSnapshot reads the whole configuration in a single GET. found is
// false when nothing has been saved yet.
func (r *Repository) LoadSnapshot(ctx context.Context) (*Snapshot, bool, error) {
	var snapshot Snapshot
	found, err := r.store.Get(ctx, snapshotDocument, &snapshot)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load pricing snapshot: %w", err)
	}
	if !found {
		return nil, false, nil
	}
	return &snapshot, true, nil
}

// UpdateSnapshot runs fn against the stored snapshot (nil when absent) and
// commits its result atomically. fn may run more than once when another
// writer commits first; kvstore.ErrConflict is returned once attempts run out.
func (r *Repository) UpdateSnapshot(ctx context.Context, attempts int, fn func(stored *Snapshot) (*Snapshot, error)) (*Snapshot, error) {
	var committed *Snapshot

	err := r.store.Update(ctx, snapshotDocument, attempts, func(current []byte) ([]byte, error) {
		var stored *Snapshot
		if current != nil {
			stored = &Snapshot{}
			if err := json.Unmarshal(current, stored); err != nil {
				return nil, fmt.Errorf("failed to decode pricing snapshot: %w", err)
			}
		}

		next, err := fn(stored)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pricing snapshot: %w", err)
		}
		committed = next
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}
