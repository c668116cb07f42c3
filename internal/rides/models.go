package rides

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/cancellation"
	"github.com/richxcame/logistics-pricing/internal/earnings"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/shopspring/decimal"
)

// Error definitions for the ride lifecycle
var (
	// ErrFareNotLocked is returned for rides no driver has accepted yet.
	ErrFareNotLocked = errors.New("fare not locked for ride")
	// ErrRideFinished rejects a transition out of a terminal status.
	ErrRideFinished = errors.New("ride already finished")
)

// Status is the lifecycle state of a locked fare
type Status string

const (
	StatusLocked    Status = "locked"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// FareLock freezes the quote and every split and cancellation input of the
// snapshot in force when the driver accepted the ride.
type FareLock struct {
	RideID           uuid.UUID                 `json:"ride_id" db:"ride_id"`
	CityID           uuid.UUID                 `json:"city_id" db:"city_id"`
	VehicleCategory  pricing.VehicleCategory   `json:"vehicle_category" db:"vehicle_category"`
	PurposeID        *uuid.UUID                `json:"purpose_id,omitempty" db:"purpose_id"`
	DistanceKm       decimal.Decimal           `json:"distance_km" db:"distance_km"`
	DurationMinutes  decimal.Decimal           `json:"duration_minutes" db:"duration_minutes"`
	Quote            pricing.Quote             `json:"quote" db:"quote"`
	SnapshotVersion  int64                     `json:"snapshot_version" db:"snapshot_version"`
	Terms            pricing.RevenueTerms      `json:"revenue_terms"`
	CancellationFees []pricing.CancellationFee `json:"cancellation_fees" db:"cancellation_fees"`
	Currency         string                    `json:"currency" db:"currency"`
	Status           Status                    `json:"status" db:"status"`
	AcceptedAt       time.Time                 `json:"accepted_at" db:"accepted_at"`
	UpdatedAt        time.Time                 `json:"updated_at" db:"updated_at"`
}

// AcceptRequest carries the trip a driver accepted. AcceptedAt is honoured
// for service and admin callers only.
type AcceptRequest struct {
	CityID          uuid.UUID               `json:"city_id" binding:"required"`
	VehicleCategory pricing.VehicleCategory `json:"vehicle_category" binding:"required,oneof=motorcycle car van truck"`
	PurposeID       *uuid.UUID              `json:"purpose_id,omitempty"`
	DistanceKm      *decimal.Decimal        `json:"distance_km" binding:"required"`
	DurationMinutes *decimal.Decimal        `json:"duration_minutes,omitempty"`
	AcceptedAt      *time.Time              `json:"accepted_at,omitempty"`
}

// CancelRequest names who cancelled. Elapsed time counts from acceptance;
// CancelledAt is honoured for service and admin callers only.
type CancelRequest struct {
	Party       pricing.Party `json:"party" binding:"required,oneof=client driver"`
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"`
}

// CompleteRequest optionally sets when the ride finished. CompletedAt is
// honoured for service and admin callers only.
type CompleteRequest struct {
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CancelResponse is the outcome of cancelling a ride
type CancelResponse struct {
	RideID uuid.UUID            `json:"ride_id"`
	Status Status               `json:"status"`
	Charge *cancellation.Charge `json:"charge"`
}

// CompleteResponse is the outcome of completing a ride
type CompleteResponse struct {
	RideID uuid.UUID              `json:"ride_id"`
	Status Status                 `json:"status"`
	Split  *earnings.RevenueSplit `json:"revenue_split"`
}
