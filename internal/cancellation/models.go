package cancellation

import (
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/shopspring/decimal"
)

// WaiverReason explains why no fee was charged
type WaiverReason string

const (
	WaiverWithinTimeLimit    WaiverReason = "within_time_limit"
	WaiverDisabled           WaiverReason = "disabled"
	WaiverPartyNotConfigured WaiverReason = "party_not_configured"
)

// FeeDecision is the outcome of applying a cancellation policy
type FeeDecision struct {
	Party            pricing.Party   `json:"party"`
	Fee              decimal.Decimal `json:"fee"`
	Waived           bool            `json:"waived"`
	WaiverReason     *WaiverReason   `json:"waiver_reason,omitempty"`
	Capped           bool            `json:"capped"`
	TimeLimitMinutes decimal.Decimal `json:"time_limit_minutes"`
	FeePercentage    decimal.Decimal `json:"fee_percentage"`
	MinimumFee       decimal.Decimal `json:"minimum_fee"`
}

// Charge is the ledger entry written once per cancelled ride
type Charge struct {
	RideID         uuid.UUID       `json:"ride_id" db:"ride_id"`
	Party          pricing.Party   `json:"party" db:"party"`
	ElapsedMinutes decimal.Decimal `json:"elapsed_minutes" db:"elapsed_minutes"`
	EstimatedFare  decimal.Decimal `json:"estimated_fare" db:"estimated_fare"`
	Fee            decimal.Decimal `json:"fee" db:"fee"`
	Waived         bool            `json:"waived" db:"waived"`
	WaiverReason   *WaiverReason   `json:"waiver_reason,omitempty" db:"waiver_reason"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// ChargeInput carries everything needed to charge a cancellation. Fees and
// currency come from the ride's fare lock, never from live configuration.
type ChargeInput struct {
	RideID         uuid.UUID
	Party          pricing.Party
	ElapsedMinutes decimal.Decimal
	EstimatedFare  decimal.Decimal
	Fees           []pricing.CancellationFee
	Currency       string
	CancelledAt    time.Time
}

// ChargeStats aggregates the ledger over a period
type ChargeStats struct {
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Total         int             `json:"total"`
	ByClient      int             `json:"by_client"`
	ByDriver      int             `json:"by_driver"`
	Waived        int             `json:"waived"`
	FeesCollected decimal.Decimal `json:"fees_collected"`
}

// ========================================
// REQUEST/RESPONSE TYPES
// ========================================

// PreviewRequest asks what a cancellation would cost under the current configuration
type PreviewRequest struct {
	Party          pricing.Party    `json:"party" binding:"required,oneof=client driver"`
	ElapsedMinutes *decimal.Decimal `json:"elapsed_minutes" binding:"required"`
	EstimatedFare  *decimal.Decimal `json:"estimated_fare" binding:"required"`
}

// PreviewResponse is the fee decision plus the snapshot it was computed against
type PreviewResponse struct {
	FeeDecision
	SnapshotVersion int64 `json:"snapshot_version"`
}
