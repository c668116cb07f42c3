package earnings

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/shopspring/decimal"
)

// Error definitions for the earnings service
var (
	ErrInvalidFare   = errors.New("fare must not be negative")
	ErrSplitNotFound = errors.New("revenue split not found")
)

// Breakdown is the result of splitting one fare
type Breakdown struct {
	Fare                     decimal.Decimal `json:"fare"`
	PlatformFeePercentage    decimal.Decimal `json:"platform_fee_percentage"`
	PlatformFeeAmount        decimal.Decimal `json:"platform_fee_amount"`
	DriverEarning            decimal.Decimal `json:"driver_earning"`
	RepresentativeID         *uuid.UUID      `json:"representative_id,omitempty"`
	RepresentativePercentage decimal.Decimal `json:"representative_percentage"`
	RepresentativeShare      decimal.Decimal `json:"representative_share"`
	PlatformNet              decimal.Decimal `json:"platform_net"`
}

// RevenueSplit is the ledger entry written once per completed ride
type RevenueSplit struct {
	RideID uuid.UUID `json:"ride_id" db:"ride_id"`
	CityID uuid.UUID `json:"city_id" db:"city_id"`
	Breakdown
	Currency  string    `json:"currency" db:"currency"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SplitInput carries a completed ride's fare and the revenue terms locked
// when the driver accepted it.
type SplitInput struct {
	RideID      uuid.UUID
	CityID      uuid.UUID
	Fare        decimal.Decimal
	Terms       pricing.RevenueTerms
	Currency    string
	CompletedAt time.Time
}

// CityTotals aggregates the ledger of one city over a period
type CityTotals struct {
	Rides               int             `json:"rides"`
	Fare                decimal.Decimal `json:"fare"`
	PlatformFeeAmount   decimal.Decimal `json:"platform_fee_amount"`
	DriverEarnings      decimal.Decimal `json:"driver_earnings"`
	RepresentativeShare decimal.Decimal `json:"representative_share"`
	PlatformNet         decimal.Decimal `json:"platform_net"`
}

// PayoutSummary is what a city's representative is owed for a period
type PayoutSummary struct {
	CityID           uuid.UUID  `json:"city_id"`
	CityName         string     `json:"city_name"`
	RepresentativeID *uuid.UUID `json:"representative_id,omitempty"`
	From             time.Time  `json:"from"`
	To               time.Time  `json:"to"`
	CityTotals
	Currency        string     `json:"currency"`
	PaymentDay      int        `json:"payment_day,omitempty"`
	NextPaymentDate *time.Time `json:"next_payment_date,omitempty"`
}
