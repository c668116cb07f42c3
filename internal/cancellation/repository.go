package cancellation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository handles cancellation ledger access
type Repository struct {
	db *pgxpool.Pool
}

var _ RepositoryInterface = (*Repository)(nil)

// NewRepository creates a new cancellation repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordCharge writes the charge once per ride. A retried cancellation
// finds the first row and returns it unchanged.
func (r *Repository) RecordCharge(ctx context.Context, charge *Charge) (*Charge, bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO cancellation_charges (
			ride_id, party, elapsed_minutes, estimated_fare,
			fee, waived, waiver_reason, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (ride_id) DO NOTHING`,
		charge.RideID, charge.Party, charge.ElapsedMinutes, charge.EstimatedFare,
		charge.Fee, charge.Waived, charge.WaiverReason, charge.CreatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert cancellation charge: %w", err)
	}

	stored, err := r.GetChargeByRideID(ctx, charge.RideID)
	if err != nil {
		return nil, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

// GetChargeByRideID retrieves the charge of a ride
func (r *Repository) GetChargeByRideID(ctx context.Context, rideID uuid.UUID) (*Charge, error) {
	charge := &Charge{}
	err := r.db.QueryRow(ctx, `
		SELECT ride_id, party, elapsed_minutes, estimated_fare,
			fee, waived, waiver_reason, created_at
		FROM cancellation_charges WHERE ride_id = $1`, rideID,
	).Scan(
		&charge.RideID, &charge.Party, &charge.ElapsedMinutes, &charge.EstimatedFare,
		&charge.Fee, &charge.Waived, &charge.WaiverReason, &charge.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrChargeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cancellation charge: %w", err)
	}
	return charge, nil
}

// GetChargeStats aggregates charges created in [from, to)
func (r *Repository) GetChargeStats(ctx context.Context, from, to time.Time) (*ChargeStats, error) {
	stats := &ChargeStats{From: from, To: to}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE party = 'client'),
			COUNT(*) FILTER (WHERE party = 'driver'),
			COUNT(*) FILTER (WHERE waived),
			COALESCE(SUM(fee), 0)
		FROM cancellation_charges
		WHERE created_at >= $1 AND created_at < $2`,
		from, to,
	).Scan(&stats.Total, &stats.ByClient, &stats.ByDriver, &stats.Waived, &stats.FeesCollected)
	if err != nil {
		return nil, fmt.Errorf("get cancellation stats: %w", err)
	}
	return stats, nil
}
