package rides

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/logistics-pricing/internal/cancellation"
	"github.com/richxcame/logistics-pricing/internal/earnings"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/eventbus"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"github.com/richxcame/logistics-pricing/pkg/tracing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const tracerName = "pricing-service"

var (
	fareLocksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rides_fare_locks_total",
		Help: "Fares locked at driver acceptance by vehicle category",
	}, []string{"vehicle_category"})

	rideTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rides_transitions_total",
		Help: "Rides moved out of the locked status, by final status",
	}, []string{"status"})
)

// Service drives the fare of a ride from acceptance to cancellation or
// completion.
type Service struct {
	repo          RepositoryInterface
	snapshots     SnapshotSource
	cancellations Cancellations
	earnings      Earnings
	publisher     eventbus.Publisher
	now           func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

// NewService creates a new rides service
func NewService(repo RepositoryInterface, snapshots SnapshotSource, cancellations Cancellations, earnings Earnings, publisher eventbus.Publisher) *Service {
	if publisher == nil {
		publisher = eventbus.Discard{}
	}
	return &Service{
		repo:          repo,
		snapshots:     snapshots,
		cancellations: cancellations,
		earnings:      earnings,
		publisher:     publisher,
		now:           time.Now,
	}
}

// AcceptRide quotes the trip against the current snapshot and freezes the
// quote together with that snapshot's revenue terms and cancellation fees.
// Acceptance is timed on the service clock; a reported time is never later
// than now. A ride that is already locked keeps its original lock.
func (s *Service) AcceptRide(ctx context.Context, rideID uuid.UUID, req *AcceptRequest) (*FareLock, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "AcceptRide")
	defer span.End()
	span.SetAttributes(
		tracing.RideIDKey.String(rideID.String()),
		tracing.CityIDKey.String(req.CityID.String()),
		tracing.VehicleCategoryKey.String(string(req.VehicleCategory)),
	)

	existing, err := s.repo.GetFareLock(ctx, rideID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrFareNotLocked) {
		return nil, err
	}

	acceptedAt := notAfter(req.AcceptedAt, s.now())
	duration := decimal.Zero
	if req.DurationMinutes != nil {
		duration = *req.DurationMinutes
	}

	snapshot, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	quote, err := pricing.QuoteTrip(snapshot, pricing.QuoteRequest{
		CityID:          req.CityID,
		VehicleCategory: req.VehicleCategory,
		PurposeID:       req.PurposeID,
		DistanceKm:      *req.DistanceKm,
		DurationMinutes: duration,
		RequestedAt:     acceptedAt,
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, pricing.ToAppError(err)
	}
	span.SetAttributes(tracing.SnapshotVersionKey.Int64(snapshot.Version))

	stored, created, err := s.repo.LockFare(ctx, &FareLock{
		RideID:           rideID,
		CityID:           req.CityID,
		VehicleCategory:  req.VehicleCategory,
		PurposeID:        req.PurposeID,
		DistanceKm:       *req.DistanceKm,
		DurationMinutes:  duration,
		Quote:            *quote,
		SnapshotVersion:  snapshot.Version,
		Terms:            snapshot.RevenueTermsFor(req.CityID),
		CancellationFees: append([]pricing.CancellationFee(nil), snapshot.CancellationFees...),
		Currency:         quote.Currency,
		Status:           StatusLocked,
		AcceptedAt:       acceptedAt.UTC(),
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if !created {
		return stored, nil
	}

	fareLocksTotal.WithLabelValues(string(stored.VehicleCategory)).Inc()
	logger.InfoContext(ctx, "fare locked",
		zap.String("ride_id", rideID.String()),
		zap.String("total", stored.Quote.Total.String()),
		zap.Int64("snapshot_version", stored.SnapshotVersion),
	)
	s.publishFareLocked(ctx, stored)
	return stored, nil
}

// CancelRide charges the cancelling party against the locked fare. Elapsed
// time is measured from acceptance on the service clock; a reported
// cancellation time is clamped between acceptance and now. Repeated calls
// return the first charge.
func (s *Service) CancelRide(ctx context.Context, rideID uuid.UUID, req *CancelRequest) (*CancelResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CancelRide")
	defer span.End()
	span.SetAttributes(tracing.RideIDKey.String(rideID.String()))

	lock, err := s.repo.GetFareLock(ctx, rideID)
	if err != nil {
		return nil, ToAppError(err)
	}
	cancelledAt := clampToRide(req.CancelledAt, lock.AcceptedAt, s.now())

	if lock, err = s.finish(ctx, lock, StatusCancelled); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	charge, err := s.cancellations.Charge(ctx, cancellation.ChargeInput{
		RideID:         rideID,
		Party:          req.Party,
		ElapsedMinutes: elapsedMinutes(lock.AcceptedAt, cancelledAt),
		EstimatedFare:  lock.Quote.Total,
		Fees:           lock.CancellationFees,
		Currency:       lock.Currency,
		CancelledAt:    cancelledAt.UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &CancelResponse{RideID: rideID, Status: StatusCancelled, Charge: charge}, nil
}

// CompleteRide splits the locked fare between driver, representative and
// platform. A reported completion time is clamped between acceptance and
// now. Repeated calls return the first split.
func (s *Service) CompleteRide(ctx context.Context, rideID uuid.UUID, req *CompleteRequest) (*CompleteResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CompleteRide")
	defer span.End()
	span.SetAttributes(tracing.RideIDKey.String(rideID.String()))

	lock, err := s.repo.GetFareLock(ctx, rideID)
	if err != nil {
		return nil, ToAppError(err)
	}
	if lock, err = s.finish(ctx, lock, StatusCompleted); err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	var reported *time.Time
	if req != nil {
		reported = req.CompletedAt
	}
	completedAt := clampToRide(reported, lock.AcceptedAt, s.now())

	split, err := s.earnings.RecordSplit(ctx, earnings.SplitInput{
		RideID:      rideID,
		CityID:      lock.CityID,
		Fare:        lock.Quote.Total,
		Terms:       lock.Terms,
		Currency:    lock.Currency,
		CompletedAt: completedAt.UTC(),
	})
	if err != nil {
		return nil, err
	}
	return &CompleteResponse{RideID: rideID, Status: StatusCompleted, Split: split}, nil
}

// GetFare returns the locked fare of a ride
func (s *Service) GetFare(ctx context.Context, rideID uuid.UUID) (*FareLock, error) {
	lock, err := s.repo.GetFareLock(ctx, rideID)
	if err != nil {
		return nil, ToAppError(err)
	}
	return lock, nil
}

// finish moves a locked ride to the terminal status to. A ride already in
// that status passes so retries reach the idempotent ledgers; a ride in the
// other terminal status is rejected.
func (s *Service) finish(ctx context.Context, lock *FareLock, to Status) (*FareLock, error) {
	if lock.Status == StatusLocked {
		moved, err := s.repo.TransitionStatus(ctx, lock.RideID, StatusLocked, to)
		if err != nil {
			return nil, err
		}
		if moved {
			rideTransitionsTotal.WithLabelValues(string(to)).Inc()
			lock.Status = to
			return lock, nil
		}
		// lost a race with another transition
		if lock, err = s.repo.GetFareLock(ctx, lock.RideID); err != nil {
			return nil, ToAppError(err)
		}
	}

	if lock.Status != to {
		return nil, ToAppError(ErrRideFinished)
	}
	return lock, nil
}

func (s *Service) publishFareLocked(ctx context.Context, lock *FareLock) {
	event, err := eventbus.NewKeyedEvent(eventbus.SubjectFareLocked, "pricing-service", lock.RideID.String(), eventbus.FareLockedData{
		RideID:          lock.RideID,
		CityID:          lock.CityID,
		VehicleCategory: string(lock.VehicleCategory),
		Total:           lock.Quote.Total,
		Currency:        lock.Currency,
		SnapshotVersion: lock.SnapshotVersion,
		AcceptedAt:      lock.AcceptedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, eventbus.SubjectFareLocked, event)
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to publish fare lock",
			zap.String("ride_id", lock.RideID.String()),
			zap.Error(err),
		)
	}
}

// notAfter returns reported, or now when nothing was reported or reported
// lies in the future.
func notAfter(reported *time.Time, now time.Time) time.Time {
	if reported != nil && reported.Before(now) {
		return *reported
	}
	return now
}

// clampToRide returns reported, or now when nothing was reported, bounded
// to [acceptedAt, now].
func clampToRide(reported *time.Time, acceptedAt, now time.Time) time.Time {
	at := notAfter(reported, now)
	if at.Before(acceptedAt) {
		return acceptedAt
	}
	return at
}

// elapsedMinutes is the time between acceptance and at, in minutes.
func elapsedMinutes(acceptedAt, at time.Time) decimal.Decimal {
	return decimal.NewFromInt(at.Sub(acceptedAt).Milliseconds()).Div(decimal.NewFromInt(60000))
}

// ToAppError maps ride lifecycle errors onto API errors
func ToAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrFareNotLocked):
		return common.NewNotFoundError("fare not locked for this ride", err)
	case errors.Is(err, ErrRideFinished):
		return common.NewConflictError("ride already finished", err)
	default:
		return err
	}
}
