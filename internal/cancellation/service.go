package cancellation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/richxcame/logistics-pricing/pkg/eventbus"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"github.com/richxcame/logistics-pricing/pkg/tracing"
	"go.uber.org/zap"
)

const tracerName = "pricing-service"

var chargesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cancellation_charges_total",
	Help: "Recorded cancellation charges by party and outcome",
}, []string{"party", "outcome"})

// Service handles cancellation fees and the charge ledger
type Service struct {
	repo      RepositoryInterface
	snapshots SnapshotSource
	publisher eventbus.Publisher
	now       func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

// NewService creates a new cancellation service
func NewService(repo RepositoryInterface, snapshots SnapshotSource, publisher eventbus.Publisher) *Service {
	if publisher == nil {
		publisher = eventbus.Discard{}
	}
	return &Service{
		repo:      repo,
		snapshots: snapshots,
		publisher: publisher,
		now:       time.Now,
	}
}

// Charge computes the fee from the policy carried by in and records it.
// Repeated calls for the same ride return the first charge and publish
// nothing new.
func (s *Service) Charge(ctx context.Context, in ChargeInput) (*Charge, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CancellationCharge")
	defer span.End()
	span.SetAttributes(tracing.RideIDKey.String(in.RideID.String()))

	decision, err := s.decide(ctx, in.Fees, in)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	createdAt := in.CancelledAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	stored, created, err := s.repo.RecordCharge(ctx, &Charge{
		RideID:         in.RideID,
		Party:          in.Party,
		ElapsedMinutes: in.ElapsedMinutes,
		EstimatedFare:  in.EstimatedFare,
		Fee:            decision.Fee,
		Waived:         decision.Waived,
		WaiverReason:   decision.WaiverReason,
		CreatedAt:      createdAt.UTC(),
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if !created {
		logger.InfoContext(ctx, "cancellation already charged",
			zap.String("ride_id", in.RideID.String()),
		)
		return stored, nil
	}

	outcome := "charged"
	if stored.Waived {
		outcome = "waived"
	}
	chargesTotal.WithLabelValues(string(stored.Party), outcome).Inc()
	s.publishCharged(ctx, stored, in.Currency)
	return stored, nil
}

// GetCharge returns the charge recorded for a ride
func (s *Service) GetCharge(ctx context.Context, rideID uuid.UUID) (*Charge, error) {
	charge, err := s.repo.GetChargeByRideID(ctx, rideID)
	if err != nil {
		return nil, ToAppError(err)
	}
	return charge, nil
}

// Preview returns the fee a cancellation would cost under the current configuration
func (s *Service) Preview(ctx context.Context, req *PreviewRequest) (*PreviewResponse, error) {
	snapshot, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}

	decision, err := s.decide(ctx, snapshot.CancellationFees, ChargeInput{
		Party:          req.Party,
		ElapsedMinutes: *req.ElapsedMinutes,
		EstimatedFare:  *req.EstimatedFare,
	})
	if err != nil {
		return nil, err
	}
	return &PreviewResponse{FeeDecision: *decision, SnapshotVersion: snapshot.Version}, nil
}

// GetStats aggregates the ledger between from and to
func (s *Service) GetStats(ctx context.Context, from, to time.Time) (*ChargeStats, error) {
	if !from.Before(to) {
		return nil, common.NewBadRequestError("from must be before to", nil)
	}
	return s.repo.GetChargeStats(ctx, from, to)
}

// decide runs CalculateFee and downgrades a missing party to a logged zero fee.
func (s *Service) decide(ctx context.Context, fees []pricing.CancellationFee, in ChargeInput) (*FeeDecision, error) {
	decision, err := CalculateFee(fees, in.Party, in.ElapsedMinutes, in.EstimatedFare)
	if errors.Is(err, ErrPartyNotConfigured) {
		logger.WarnContext(ctx, "no cancellation fee configured, charging zero",
			zap.String("party", string(in.Party)),
			zap.String("ride_id", in.RideID.String()),
		)
		return decision, nil
	}
	if err != nil {
		return nil, ToAppError(err)
	}
	return decision, nil
}

func (s *Service) publishCharged(ctx context.Context, charge *Charge, currency string) {
	data := eventbus.CancellationChargedData{
		RideID:      charge.RideID,
		Party:       string(charge.Party),
		Fee:         charge.Fee,
		Waived:      charge.Waived,
		Currency:    currency,
		CancelledAt: charge.CreatedAt,
	}
	if charge.WaiverReason != nil {
		data.WaiverReason = string(*charge.WaiverReason)
	}

	event, err := eventbus.NewKeyedEvent(eventbus.SubjectCancellationCharged, "pricing-service", charge.RideID.String(), data)
	if err == nil {
		err = s.publisher.Publish(ctx, eventbus.SubjectCancellationCharged, event)
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to publish cancellation charge",
			zap.String("ride_id", charge.RideID.String()),
			zap.Error(err),
		)
	}
}

// ToAppError maps cancellation errors onto API errors
func ToAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidElapsed):
		return common.NewBadRequestError("elapsed_minutes must not be negative", err)
	case errors.Is(err, ErrInvalidEstimatedFare):
		return common.NewBadRequestError("estimated_fare must not be negative", err)
	case errors.Is(err, ErrPartyNotConfigured):
		return common.NewUnprocessableError("no cancellation fee configured for party", err).
			WithCode(common.CodePartyNotConfigured)
	case errors.Is(err, ErrChargeNotFound):
		return common.NewNotFoundError("cancellation charge not found", err)
	default:
		return err
	}
}
