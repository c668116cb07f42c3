package geography

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/pricing"
)

// SnapshotStore reads and writes the versioned configuration holding cities.
// *pricing.SnapshotStore satisfies it.
type SnapshotStore interface {
	Current(ctx context.Context) (*pricing.Snapshot, error)
	Update(ctx context.Context, mutate pricing.MutateFunc) (*pricing.Snapshot, error)
}

// ServiceInterface defines the interface for city administration
type ServiceInterface interface {
	ListCities(ctx context.Context) (*CityListResponse, error)
	GetCity(ctx context.Context, id uuid.UUID) (*pricing.City, error)
	UpsertCity(ctx context.Context, id uuid.UUID, req *CityRequest, actor string) (*pricing.City, error)
	SetRepresentative(ctx context.Context, cityID uuid.UUID, req *RepresentativeRequest, actor string) (*pricing.City, error)
	RemoveRepresentative(ctx context.Context, cityID uuid.UUID, actor string) (*pricing.City, error)
}
