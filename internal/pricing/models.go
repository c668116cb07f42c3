package pricing

import (
	"fmt"
	"time"
	_ "time/tzdata" // city clocks must resolve without a system zoneinfo

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleCategory identifies the class of vehicle a fare is quoted for.
type VehicleCategory string

// Vehicle categories
const (
	VehicleMotorcycle VehicleCategory = "motorcycle"
	VehicleCar        VehicleCategory = "car"
	VehicleVan        VehicleCategory = "van"
	VehicleTruck      VehicleCategory = "truck"
)

// VehicleCategories lists every category in display order.
var VehicleCategories = []VehicleCategory{VehicleMotorcycle, VehicleCar, VehicleVan, VehicleTruck}

// Valid reports whether c is a known category.
func (c VehicleCategory) Valid() bool {
	for _, known := range VehicleCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Party is the side that cancels a ride.
type Party string

// Cancelling parties
const (
	PartyClient Party = "client"
	PartyDriver Party = "driver"
)

// Valid reports whether p is a known party.
func (p Party) Valid() bool {
	return p == PartyClient || p == PartyDriver
}

// Source tells which resolution step produced a price.
type Source string

// Pricing sources, most specific first
const (
	SourcePurposeRule    Source = "purpose_rule"
	SourceBaseRule       Source = "base_rule"
	SourceVehicleDefault Source = "vehicle_default"
)

// Pricing holds the fare parameters shared by rules and vehicle defaults
type Pricing struct {
	PricePerKm     decimal.Decimal `json:"price_per_km" validate:"dgte=0"`
	MinimumKm      decimal.Decimal `json:"minimum_km" validate:"dgte=0"`
	MinimumFee     decimal.Decimal `json:"minimum_fee" validate:"dgte=0"`
	BasePrice      decimal.Decimal `json:"base_price" validate:"dgte=0"`
	PricePerMinute decimal.Decimal `json:"price_per_minute" validate:"dgte=0"`
}

// PricingScope is either a base scope (city, vehicle) or a purpose scope
// (city, vehicle, purpose). Build it with BaseScope or PurposeScope.
type PricingScope struct {
	CityID          uuid.UUID       `json:"city_id"`
	VehicleCategory VehicleCategory `json:"vehicle_category" validate:"required,oneof=motorcycle car van truck"`
	PurposeID       *uuid.UUID      `json:"purpose_id,omitempty"`
}

// BaseScope returns the scope of the base rule for a city and vehicle.
func BaseScope(cityID uuid.UUID, vehicle VehicleCategory) PricingScope {
	return PricingScope{CityID: cityID, VehicleCategory: vehicle}
}

// PurposeScope returns the scope of a purpose-specific override.
func PurposeScope(cityID uuid.UUID, vehicle VehicleCategory, purposeID uuid.UUID) PricingScope {
	return PricingScope{CityID: cityID, VehicleCategory: vehicle, PurposeID: &purposeID}
}

// IsBase reports whether the scope carries no purpose.
func (s PricingScope) IsBase() bool {
	return s.PurposeID == nil || *s.PurposeID == uuid.Nil
}

// Key identifies the exact scope; two rules with equal keys overlap.
func (s PricingScope) Key() string {
	if s.IsBase() {
		return fmt.Sprintf("%s/%s", s.CityID, s.VehicleCategory)
	}
	return fmt.Sprintf("%s/%s/%s", s.CityID, s.VehicleCategory, *s.PurposeID)
}

// Matches reports whether s is the exact scope for the given lookup.
func (s PricingScope) Matches(cityID uuid.UUID, vehicle VehicleCategory, purposeID *uuid.UUID) bool {
	if s.CityID != cityID || s.VehicleCategory != vehicle {
		return false
	}
	if purposeID == nil || *purposeID == uuid.Nil {
		return s.IsBase()
	}
	return !s.IsBase() && *s.PurposeID == *purposeID
}

// PricingRule is a scoped override of the fare parameters
type PricingRule struct {
	ID        uuid.UUID    `json:"id"`
	Scope     PricingScope `json:"scope"`
	Pricing   Pricing      `json:"pricing"`
	Active    bool         `json:"active"`
	Priority  int          `json:"priority"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// VehiclePricing is the global fallback for a vehicle category
type VehiclePricing struct {
	VehicleCategory VehicleCategory `json:"vehicle_category" validate:"required,oneof=motorcycle car van truck"`
	Pricing         Pricing         `json:"pricing"`
	Enabled         bool            `json:"enabled"`
}

// PeakHour applies a multiplier inside a local-clock window. StartTime is
// inclusive, EndTime exclusive. A nil CityID applies to every city.
type PeakHour struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name" validate:"required,max=100"`
	CityID     *uuid.UUID      `json:"city_id,omitempty"`
	DaysOfWeek []int           `json:"days_of_week" validate:"min=1,dive,gte=0,lte=6"`
	StartTime  string          `json:"start_time" validate:"required,hhmm"`
	EndTime    string          `json:"end_time" validate:"required,hhmm"`
	Multiplier decimal.Decimal `json:"multiplier" validate:"dgte=1"`
	Enabled    bool            `json:"enabled"`
}

// CancellationFee configures the penalty charged to one party
type CancellationFee struct {
	Party            Party           `json:"party" validate:"required,oneof=client driver"`
	TimeLimitMinutes decimal.Decimal `json:"time_limit_minutes" validate:"dgte=0"`
	FeePercentage    decimal.Decimal `json:"fee_percentage" validate:"dgte=0,dlte=100"`
	MinimumFee       decimal.Decimal `json:"minimum_fee" validate:"dgte=0"`
	Enabled          bool            `json:"enabled"`
}

// PlatformSettings holds the marketplace-wide parameters. Only the fee,
// default split and currency feed fare calculation.
type PlatformSettings struct {
	PlatformFeePercentage           decimal.Decimal `json:"platform_fee_percentage" validate:"dgte=0,dlte=50,decimals=2"`
	SearchRadiusKm                  decimal.Decimal `json:"search_radius_km" validate:"dgte=1,dlte=50"`
	DriverTimeoutSeconds            int             `json:"driver_timeout_seconds" validate:"gte=10,lte=120"`
	MaxDriversToNotify              int             `json:"max_drivers_to_notify" validate:"gte=1"`
	AutoAcceptRadiusKm              decimal.Decimal `json:"auto_accept_radius_km" validate:"dgte=0"`
	DefaultRepresentativePercentage decimal.Decimal `json:"default_representative_percentage" validate:"dgte=0,dlte=100,decimals=2"`
	Currency                        string          `json:"currency" validate:"required,len=3,uppercase"`
}

// RevenueSharing is the split of the platform fee for one city.
// PlatformPercentage is always derived from RepresentativePercentage.
type RevenueSharing struct {
	RepresentativePercentage decimal.Decimal `json:"representative_percentage" validate:"dgte=0,dlte=100,decimals=2"`
	PlatformPercentage       decimal.Decimal `json:"platform_percentage"`
	PaymentDay               int             `json:"payment_day" validate:"omitempty,gte=1,lte=31"`
	Configured               bool            `json:"configured"`
}

// BankAccount holds payout details of a representative
type BankAccount struct {
	BankName string `json:"bank_name" validate:"max=100"`
	Agency   string `json:"agency" validate:"max=20"`
	Account  string `json:"account" validate:"max=30"`
	PixKey   string `json:"pix_key,omitempty" validate:"max=140"`
}

// Representative is the regional partner sharing a city's platform fee
type Representative struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name" validate:"required,max=200"`
	Document string      `json:"document" validate:"required,max=40"`
	Email    string      `json:"email,omitempty" validate:"omitempty,email"`
	Bank     BankAccount `json:"bank"`
}

// City carries the local clock and revenue sharing of a market
type City struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name" validate:"required,max=200"`
	Timezone       string          `json:"timezone" validate:"required,timezone"`
	RevenueSharing RevenueSharing  `json:"revenue_sharing"`
	Representative *Representative `json:"representative,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Location returns the city's time zone, UTC when it cannot be loaded.
func (c City) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ResolvedPricing is the outcome of rule resolution
type ResolvedPricing struct {
	Pricing Pricing    `json:"pricing"`
	Source  Source     `json:"source"`
	RuleID  *uuid.UUID `json:"rule_id,omitempty"`
}

// FareBreakdown itemizes a calculated fare. Components are display values;
// Subtotal is computed from unrounded components and rounded once.
type FareBreakdown struct {
	DistanceComponent decimal.Decimal `json:"distance_component"`
	TimeComponent     decimal.Decimal `json:"time_component"`
	BasePrice         decimal.Decimal `json:"base_price"`
	MinimumFee        decimal.Decimal `json:"minimum_fee"`
	ExceedKm          decimal.Decimal `json:"exceed_km"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// Quote is a complete fare quotation against one snapshot version
type Quote struct {
	FareBreakdown
	PeakMultiplier  decimal.Decimal `json:"peak_multiplier"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	Total           decimal.Decimal `json:"total"`
	Currency        string          `json:"currency"`
	PricingSource   Source          `json:"pricing_source"`
	RuleID          *uuid.UUID      `json:"rule_id,omitempty"`
	SnapshotVersion int64           `json:"snapshot_version"`
}

// QuoteRequest is the engine input for one trip
type QuoteRequest struct {
	CityID          uuid.UUID
	VehicleCategory VehicleCategory
	PurposeID       *uuid.UUID
	DistanceKm      decimal.Decimal
	DurationMinutes decimal.Decimal
	RequestedAt     time.Time
}

// ConfigResponse is the pricing configuration bundle
type ConfigResponse struct {
	Version          int64             `json:"version"`
	UpdatedAt        time.Time         `json:"updated_at"`
	VehiclePricing   []VehiclePricing  `json:"vehicle_pricing"`
	PeakHours        []PeakHour        `json:"peak_hours"`
	CancellationFees []CancellationFee `json:"cancellation_fees"`
	Platform         PlatformSettings  `json:"platform"`
}

// UpdateConfigRequest replaces the whole configuration bundle
type UpdateConfigRequest struct {
	VehiclePricing   []VehiclePricing  `json:"vehicle_pricing" binding:"required"`
	PeakHours        []PeakHour        `json:"peak_hours" binding:"required"`
	CancellationFees []CancellationFee `json:"cancellation_fees" binding:"required"`
	Platform         *PlatformSettings `json:"platform" binding:"required"`
}

// EstimateRequest represents a fare estimate request
type EstimateRequest struct {
	VehicleType     VehicleCategory  `json:"vehicle_type" binding:"required,oneof=motorcycle car van truck"`
	DistanceKm      *decimal.Decimal `json:"distance_km" binding:"required"`
	DurationMinutes *decimal.Decimal `json:"duration_minutes,omitempty"`
	PurposeID       *uuid.UUID       `json:"purpose_id,omitempty"`
	CityID          uuid.UUID        `json:"city_id" binding:"required"`
	RequestedAt     *time.Time       `json:"requested_at,omitempty"`
}

// RuleRequest creates or replaces a pricing rule
type RuleRequest struct {
	CityID          uuid.UUID       `json:"city_id" binding:"required"`
	VehicleCategory VehicleCategory `json:"vehicle_category" binding:"required,oneof=motorcycle car van truck"`
	PurposeID       *uuid.UUID      `json:"purpose_id,omitempty"`
	Pricing         Pricing         `json:"pricing"`
	Active          *bool           `json:"active,omitempty"`
	Priority        int             `json:"priority"`
}

// RuleFilter narrows a rule listing; zero values match everything.
type RuleFilter struct {
	CityID          uuid.UUID
	VehicleCategory VehicleCategory
	PurposeID       uuid.UUID
}

// RuleListResponse lists rules from one snapshot version
type RuleListResponse struct {
	Version int64         `json:"version"`
	Rules   []PricingRule `json:"rules"`
	Total   int           `json:"total"`
}

// PlatformConfigResponse exposes the platform settings. AppFeePercentage
// mirrors PlatformFeePercentage for dashboard clients.
type PlatformConfigResponse struct {
	Version int64 `json:"version"`
	PlatformSettings
	AppFeePercentage decimal.Decimal `json:"app_fee_percentage"`
}

// PlatformConfigRequest replaces the platform settings. When present,
// app_fee_percentage takes precedence over platform_fee_percentage.
type PlatformConfigRequest struct {
	PlatformSettings
	AppFeePercentage *decimal.Decimal `json:"app_fee_percentage,omitempty"`
}
