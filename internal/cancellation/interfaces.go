package cancellation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/pricing"
)

// Error definitions for the cancellation service
var (
	ErrPartyNotConfigured   = errors.New("no cancellation fee configured for party")
	ErrInvalidElapsed       = errors.New("elapsed time must not be negative")
	ErrInvalidEstimatedFare = errors.New("estimated fare must not be negative")
	ErrChargeNotFound       = errors.New("cancellation charge not found")
)

// RepositoryInterface defines the interface for the cancellation ledger
// This enables mocking in tests
type RepositoryInterface interface {
	// RecordCharge inserts charge unless the ride already has one and
	// returns the stored row. created is false for repeated calls.
	RecordCharge(ctx context.Context, charge *Charge) (stored *Charge, created bool, err error)
	GetChargeByRideID(ctx context.Context, rideID uuid.UUID) (*Charge, error)
	GetChargeStats(ctx context.Context, from, to time.Time) (*ChargeStats, error)
}

// SnapshotSource provides the current pricing configuration
type SnapshotSource interface {
	Current(ctx context.Context) (*pricing.Snapshot, error)
}

// ServiceInterface defines the interface for the cancellation service
type ServiceInterface interface {
	Charge(ctx context.Context, in ChargeInput) (*Charge, error)
	GetCharge(ctx context.Context, rideID uuid.UUID) (*Charge, error)
	Preview(ctx context.Context, req *PreviewRequest) (*PreviewResponse, error)
	GetStats(ctx context.Context, from, to time.Time) (*ChargeStats, error)
}
