package rides

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles fare lock data access
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new rides repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// LockFare stores the lock once per ride
func (r *Repository) LockFare(ctx context.Context, lock *FareLock) (*FareLock, bool, error) {
	quote, err := json.Marshal(lock.Quote)
	if err != nil {
		return nil, false, fmt.Errorf("encode quote: %w", err)
	}
	fees, err := json.Marshal(lock.CancellationFees)
	if err != nil {
		return nil, false, fmt.Errorf("encode cancellation fees: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		INSERT INTO fare_locks (
			ride_id, city_id, vehicle_category, purpose_id, distance_km, duration_minutes,
			quote, snapshot_version, platform_fee_percentage, representative_id,
			representative_percentage, cancellation_fees, currency, status,
			accepted_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
		ON CONFLICT (ride_id) DO NOTHING`,
		lock.RideID, lock.CityID, lock.VehicleCategory, lock.PurposeID, lock.DistanceKm, lock.DurationMinutes,
		quote, lock.SnapshotVersion, lock.Terms.PlatformFeePercentage, lock.Terms.RepresentativeID,
		lock.Terms.RepresentativePercentage, fees, lock.Currency, lock.Status,
		lock.AcceptedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert fare lock: %w", err)
	}

	stored, err := r.GetFareLock(ctx, lock.RideID)
	if err != nil {
		return nil, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

// GetFareLock retrieves the lock of a ride
func (r *Repository) GetFareLock(ctx context.Context, rideID uuid.UUID) (*FareLock, error) {
	lock := &FareLock{}
	var quote, fees []byte
	err := r.db.QueryRow(ctx, `
		SELECT ride_id, city_id, vehicle_category, purpose_id, distance_km, duration_minutes,
			quote, snapshot_version, platform_fee_percentage, representative_id,
			representative_percentage, cancellation_fees, currency, status,
			accepted_at, updated_at
		FROM fare_locks WHERE ride_id = $1`, rideID,
	).Scan(
		&lock.RideID, &lock.CityID, &lock.VehicleCategory, &lock.PurposeID, &lock.DistanceKm, &lock.DurationMinutes,
		&quote, &lock.SnapshotVersion, &lock.Terms.PlatformFeePercentage, &lock.Terms.RepresentativeID,
		&lock.Terms.RepresentativePercentage, &fees, &lock.Currency, &lock.Status,
		&lock.AcceptedAt, &lock.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFareNotLocked
	}
	if err != nil {
		return nil, fmt.Errorf("get fare lock: %w", err)
	}

	if err := json.Unmarshal(quote, &lock.Quote); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	if err := json.Unmarshal(fees, &lock.CancellationFees); err != nil {
		return nil, fmt.Errorf("decode cancellation fees: %w", err)
	}
	return lock, nil
}

// TransitionStatus moves a ride between statuses in a single UPDATE guarded
// by the current status, so concurrent cancel and complete calls cannot both
// win.
func (r *Repository) TransitionStatus(ctx context.Context, rideID uuid.UUID, from, to Status) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE fare_locks SET status = $1, updated_at = NOW()
		WHERE ride_id = $2 AND status = $3`,
		to, rideID, from,
	)
	if err != nil {
		return false, fmt.Errorf("update fare lock status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
