package rides

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/cancellation"
	"github.com/richxcame/logistics-pricing/internal/earnings"
	"github.com/richxcame/logistics-pricing/internal/pricing"
)

// RepositoryInterface defines the interface for fare lock storage
// This enables mocking in tests
type RepositoryInterface interface {
	// LockFare inserts lock unless the ride is already locked and returns
	// the stored row. created is false when a lock already existed.
	LockFare(ctx context.Context, lock *FareLock) (stored *FareLock, created bool, err error)
	GetFareLock(ctx context.Context, rideID uuid.UUID) (*FareLock, error)
	// TransitionStatus moves a ride from one status to another and reports
	// whether this call performed the transition.
	TransitionStatus(ctx context.Context, rideID uuid.UUID, from, to Status) (bool, error)
}

// SnapshotSource provides the current pricing configuration
type SnapshotSource interface {
	Current(ctx context.Context) (*pricing.Snapshot, error)
}

// Cancellations records cancellation charges
type Cancellations interface {
	Charge(ctx context.Context, in cancellation.ChargeInput) (*cancellation.Charge, error)
	GetCharge(ctx context.Context, rideID uuid.UUID) (*cancellation.Charge, error)
}

// Earnings records revenue splits
type Earnings interface {
	RecordSplit(ctx context.Context, in earnings.SplitInput) (*earnings.RevenueSplit, error)
	GetSplit(ctx context.Context, rideID uuid.UUID) (*earnings.RevenueSplit, error)
}

// ServiceInterface defines the interface for the ride lifecycle service
type ServiceInterface interface {
	AcceptRide(ctx context.Context, rideID uuid.UUID, req *AcceptRequest) (*FareLock, error)
	CancelRide(ctx context.Context, rideID uuid.UUID, req *CancelRequest) (*CancelResponse, error)
	CompleteRide(ctx context.Context, rideID uuid.UUID, req *CompleteRequest) (*CompleteResponse, error)
	GetFare(ctx context.Context, rideID uuid.UUID) (*FareLock, error)
}
