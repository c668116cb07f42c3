package eventbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConfigUpdatedData is emitted after a pricing configuration write commits.
type ConfigUpdatedData struct {
	Version   int64     `json:"version"`
	Section   string    `json:"section"`
	UpdatedBy string    `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FareLockedData is emitted when a driver accepts a ride and its fare is frozen.
type FareLockedData struct {
	RideID          uuid.UUID       `json:"ride_id"`
	CityID          uuid.UUID       `json:"city_id"`
	VehicleCategory string          `json:"vehicle_category"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	SnapshotVersion int64           `json:"snapshot_version"`
	AcceptedAt      time.Time       `json:"accepted_at"`
}

// CancellationChargedData is emitted once per cancelled ride.
type CancellationChargedData struct {
	RideID       uuid.UUID       `json:"ride_id"`
	Party        string          `json:"party"`
	Fee          decimal.Decimal `json:"fee"`
	Waived       bool            `json:"waived"`
	WaiverReason string          `json:"waiver_reason,omitempty"`
	Currency     string          `json:"currency"`
	CancelledAt  time.Time       `json:"cancelled_at"`
}

// RevenueSplitData is emitted once per completed ride.
type RevenueSplitData struct {
	RideID              uuid.UUID       `json:"ride_id"`
	CityID              uuid.UUID       `json:"city_id"`
	RepresentativeID    *uuid.UUID      `json:"representative_id,omitempty"`
	Fare                decimal.Decimal `json:"fare"`
	DriverEarning       decimal.Decimal `json:"driver_earning"`
	RepresentativeShare decimal.Decimal `json:"representative_share"`
	PlatformNet         decimal.Decimal `json:"platform_net"`
	Currency            string          `json:"currency"`
	CompletedAt         time.Time       `json:"completed_at"`
}
