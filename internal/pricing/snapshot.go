package pricing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/kvstore"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"go.uber.org/zap"
)

// Snapshot is one immutable version of the whole pricing configuration.
// Readers must not modify a snapshot; writers work on a Clone.
type Snapshot struct {
	Version          int64             `json:"version"`
	UpdatedAt        time.Time         `json:"updated_at"`
	VehiclePricing   []VehiclePricing  `json:"vehicle_pricing"`
	Rules            []PricingRule     `json:"rules"`
	PeakHours        []PeakHour        `json:"peak_hours"`
	CancellationFees []CancellationFee `json:"cancellation_fees"`
	Platform         PlatformSettings  `json:"platform"`
	Cities           []City            `json:"cities"`
}

// Clone returns a deep copy that can be mutated freely.
func (s *Snapshot) Clone() *Snapshot {
	out := *s
	out.VehiclePricing = append([]VehiclePricing(nil), s.VehiclePricing...)
	out.CancellationFees = append([]CancellationFee(nil), s.CancellationFees...)

	out.Rules = make([]PricingRule, len(s.Rules))
	for i, rule := range s.Rules {
		rule.Scope.PurposeID = cloneID(rule.Scope.PurposeID)
		out.Rules[i] = rule
	}

	out.PeakHours = make([]PeakHour, len(s.PeakHours))
	for i, peak := range s.PeakHours {
		peak.CityID = cloneID(peak.CityID)
		peak.DaysOfWeek = append([]int(nil), peak.DaysOfWeek...)
		out.PeakHours[i] = peak
	}

	out.Cities = make([]City, len(s.Cities))
	for i, city := range s.Cities {
		if city.Representative != nil {
			rep := *city.Representative
			city.Representative = &rep
		}
		out.Cities[i] = city
	}
	return &out
}

// City looks up a city by id.
func (s *Snapshot) City(id uuid.UUID) (City, bool) {
	for _, city := range s.Cities {
		if city.ID == id {
			return city, true
		}
	}
	return City{}, false
}

// Rule looks up a pricing rule by id.
func (s *Snapshot) Rule(id uuid.UUID) (PricingRule, bool) {
	for _, rule := range s.Rules {
		if rule.ID == id {
			return rule, true
		}
	}
	return PricingRule{}, false
}

// CancellationFee returns the entry configured for party.
func (s *Snapshot) CancellationFee(party Party) (CancellationFee, bool) {
	for _, fee := range s.CancellationFees {
		if fee.Party == party {
			return fee, true
		}
	}
	return CancellationFee{}, false
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// MutateFunc edits a cloned snapshot in place. Returning an error aborts
// the write.
type MutateFunc func(next *Snapshot) error

type cachedSnapshot struct {
	snapshot *Snapshot
	loadedAt time.Time
}

// SnapshotStore serves the current configuration snapshot to readers and
// serializes writers through an optimistic compare-and-swap in Redis.
type SnapshotStore struct {
	repo     RepositoryInterface
	ttl      time.Duration
	retries  int
	currency string
	now      func() time.Time

	current atomic.Pointer[cachedSnapshot]
	reload  sync.Mutex
}

// StoreOptions tunes a SnapshotStore.
type StoreOptions struct {
	RefreshInterval time.Duration
	WriteRetries    int
	Currency        string
}

// NewSnapshotStore creates a store over repo.
func NewSnapshotStore(repo RepositoryInterface, opts StoreOptions) *SnapshotStore {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 5 * time.Second
	}
	if opts.WriteRetries <= 0 {
		opts.WriteRetries = 3
	}
	return &SnapshotStore{
		repo:     repo,
		ttl:      opts.RefreshInterval,
		retries:  opts.WriteRetries,
		currency: opts.Currency,
		now:      time.Now,
	}
}

// Current returns the cached snapshot, reloading it with a single read
// once it is older than the refresh interval. When a reload fails the
// stale snapshot keeps being served.
func (s *SnapshotStore) Current(ctx context.Context) (*Snapshot, error) {
	if cached := s.current.Load(); cached != nil && s.now().Sub(cached.loadedAt) < s.ttl {
		return cached.snapshot, nil
	}

	s.reload.Lock()
	defer s.reload.Unlock()

	cached := s.current.Load()
	if cached != nil && s.now().Sub(cached.loadedAt) < s.ttl {
		return cached.snapshot, nil
	}

	snapshot, err := s.load(ctx)
	if err != nil {
		if cached != nil {
			logger.WarnContext(ctx, "serving stale pricing snapshot",
				zap.Int64("version", cached.snapshot.Version),
				zap.Error(err),
			)
			return cached.snapshot, nil
		}
		return nil, err
	}

	s.current.Store(&cachedSnapshot{snapshot: snapshot, loadedAt: s.now()})
	snapshotVersion.Set(float64(snapshot.Version))
	return snapshot, nil
}

// Refresh drops the cached snapshot so the next read goes to Redis.
func (s *SnapshotStore) Refresh() {
	s.current.Store(nil)
}

// Update applies mutate to a clone of the stored snapshot, validates the
// result as a whole, bumps the version and commits it only if nobody else
// wrote in between. Conflicting writers are retried a bounded number of times.
func (s *SnapshotStore) Update(ctx context.Context, mutate MutateFunc) (*Snapshot, error) {
	committed, err := s.repo.UpdateSnapshot(ctx, s.retries, func(stored *Snapshot) (*Snapshot, error) {
		if stored == nil {
			stored = DefaultSnapshot(s.currency)
		}

		next := stored.Clone()
		if err := mutate(next); err != nil {
			return nil, err
		}
		if err := ValidateSnapshot(next); err != nil {
			return nil, err
		}

		next.Version = stored.Version + 1
		next.UpdatedAt = s.now().UTC()
		return next, nil
	})
	if errors.Is(err, kvstore.ErrConflict) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}

	s.advance(committed)
	return committed, nil
}

func (s *SnapshotStore) load(ctx context.Context) (*Snapshot, error) {
	snapshot, found, err := s.repo.LoadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return DefaultSnapshot(s.currency), nil
	}
	return snapshot, nil
}

// advance caches a freshly committed snapshot unless a concurrent reload
// already cached a newer version.
func (s *SnapshotStore) advance(snapshot *Snapshot) {
	next := &cachedSnapshot{snapshot: snapshot, loadedAt: s.now()}
	previous := s.current.Load()
	for {
		if previous != nil && previous.snapshot.Version > snapshot.Version {
			return
		}
		if s.current.CompareAndSwap(previous, next) {
			snapshotVersion.Set(float64(snapshot.Version))
			return
		}
		previous = s.current.Load()
	}
}
