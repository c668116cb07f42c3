package geography

import (
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/shopspring/decimal"
)

// CityRequest creates or replaces a city. Omitting revenue_sharing keeps the
// city's current split.
type CityRequest struct {
	Name           string                 `json:"name" binding:"required,max=200"`
	Timezone       string                 `json:"timezone" binding:"required,timezone"`
	RevenueSharing *RevenueSharingRequest `json:"revenue_sharing,omitempty"`
}

// RevenueSharingRequest sets how a city's platform fee is shared. The
// platform share is derived and cannot be supplied.
type RevenueSharingRequest struct {
	RepresentativePercentage *decimal.Decimal `json:"representative_percentage" binding:"required"`
	PlatformPercentage       *decimal.Decimal `json:"platform_percentage,omitempty"`
	PaymentDay               int              `json:"payment_day" binding:"required,gte=1,lte=31"`
}

// RepresentativeRequest assigns a regional partner to a city
type RepresentativeRequest struct {
	Name     string              `json:"name" binding:"required,max=200"`
	Document string              `json:"document" binding:"required,max=40"`
	Email    string              `json:"email,omitempty" binding:"omitempty,email"`
	Bank     pricing.BankAccount `json:"bank"`
}

// CityListResponse lists cities from one snapshot version
type CityListResponse struct {
	Version int64          `json:"version"`
	Cities  []pricing.City `json:"cities"`
	Total   int            `json:"total"`
}
