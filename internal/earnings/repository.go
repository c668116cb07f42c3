package earnings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the interface for the revenue split ledger
// This enables mocking in tests
type RepositoryInterface interface {
	// RecordSplit inserts split unless the ride already has one and
	// returns the stored row. created is false for repeated calls.
	RecordSplit(ctx context.Context, split *RevenueSplit) (stored *RevenueSplit, created bool, err error)
	GetSplitByRideID(ctx context.Context, rideID uuid.UUID) (*RevenueSplit, error)
	GetCityTotals(ctx context.Context, cityID uuid.UUID, from, to time.Time) (*CityTotals, error)
}

// Repository handles revenue split data access
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new earnings repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordSplit writes the split once per ride
func (r *Repository) RecordSplit(ctx context.Context, s *RevenueSplit) (*RevenueSplit, bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO revenue_splits (
			ride_id, city_id, representative_id, fare,
			platform_fee_percentage, platform_fee_amount, driver_earning,
			representative_percentage, representative_share, platform_net,
			currency, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (ride_id) DO NOTHING`,
		s.RideID, s.CityID, s.RepresentativeID, s.Fare,
		s.PlatformFeePercentage, s.PlatformFeeAmount, s.DriverEarning,
		s.RepresentativePercentage, s.RepresentativeShare, s.PlatformNet,
		s.Currency, s.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert revenue split: %w", err)
	}

	stored, err := r.GetSplitByRideID(ctx, s.RideID)
	if err != nil {
		return nil, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

// GetSplitByRideID retrieves the split of a ride
func (r *Repository) GetSplitByRideID(ctx context.Context, rideID uuid.UUID) (*RevenueSplit, error) {
	s := &RevenueSplit{}
	err := r.db.QueryRow(ctx, `
		SELECT ride_id, city_id, representative_id, fare,
			platform_fee_percentage, platform_fee_amount, driver_earning,
			representative_percentage, representative_share, platform_net,
			currency, created_at
		FROM revenue_splits WHERE ride_id = $1`, rideID,
	).Scan(
		&s.RideID, &s.CityID, &s.RepresentativeID, &s.Fare,
		&s.PlatformFeePercentage, &s.PlatformFeeAmount, &s.DriverEarning,
		&s.RepresentativePercentage, &s.RepresentativeShare, &s.PlatformNet,
		&s.Currency, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSplitNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get revenue split: %w", err)
	}
	return s, nil
}

// GetCityTotals sums the splits of a city created in [from, to)
func (r *Repository) GetCityTotals(ctx context.Context, cityID uuid.UUID, from, to time.Time) (*CityTotals, error) {
	totals := &CityTotals{}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(fare), 0),
			COALESCE(SUM(platform_fee_amount), 0),
			COALESCE(SUM(driver_earning), 0),
			COALESCE(SUM(representative_share), 0),
			COALESCE(SUM(platform_net), 0)
		FROM revenue_splits
		WHERE city_id = $1 AND created_at >= $2 AND created_at < $3`,
		cityID, from, to,
	).Scan(
		&totals.Rides, &totals.Fare, &totals.PlatformFeeAmount,
		&totals.DriverEarnings, &totals.RepresentativeShare, &totals.PlatformNet,
	)
	if err != nil {
		return nil, fmt.Errorf("get city totals: %w", err)
	}
	return totals, nil
}
