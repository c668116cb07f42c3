package earnings

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

var splitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "revenue_splits_total",
	Help: "Recorded revenue splits by whether a representative shared the fee",
}, []string{"representative"})

// SnapshotSource provides the current pricing configuration
type SnapshotSource interface {
	Current(ctx context.Context) (*pricing.Snapshot, error)
}

// ServiceInterface defines the interface for the earnings service
type ServiceInterface interface {
	RecordSplit(ctx context.Context, in SplitInput) (*RevenueSplit, error)
	GetSplit(ctx context.Context, rideID uuid.UUID) (*RevenueSplit, error)
	GetPayoutSummary(ctx context.Context, cityID uuid.UUID, from, to time.Time) (*PayoutSummary, error)
}

// Service handles revenue splits and representative payouts
type Service struct {
	repo      RepositoryInterface
	snapshots SnapshotSource
	publisher eventbus.Publisher
	now       func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

// NewService creates a new earnings service
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

// ========================================
// SPLITS
// ========================================

// RecordSplit splits a completed fare and writes it to the ledger. Repeated
// calls for the same ride return the first split.
func (s *Service) RecordSplit(ctx context.Context, in SplitInput) (*RevenueSplit, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RecordSplit")
	defer span.End()
	span.SetAttributes(
		tracing.RideIDKey.String(in.RideID.String()),
		tracing.CityIDKey.String(in.CityID.String()),
	)

	breakdown, err := Split(in.Fare, in.Terms)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, ToAppError(err)
	}

	createdAt := in.CompletedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	stored, created, err := s.repo.RecordSplit(ctx, &RevenueSplit{
		RideID:    in.RideID,
		CityID:    in.CityID,
		Breakdown: *breakdown,
		Currency:  in.Currency,
		CreatedAt: createdAt.UTC(),
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	if !created {
		logger.InfoContext(ctx, "revenue already split",
			zap.String("ride_id", in.RideID.String()),
		)
		return stored, nil
	}

	representative := "none"
	if stored.RepresentativeID != nil {
		representative = "assigned"
	}
	splitsTotal.WithLabelValues(representative).Inc()
	s.publishSplit(ctx, stored)
	return stored, nil
}

// GetSplit returns the split recorded for a ride
func (s *Service) GetSplit(ctx context.Context, rideID uuid.UUID) (*RevenueSplit, error) {
	split, err := s.repo.GetSplitByRideID(ctx, rideID)
	if err != nil {
		return nil, ToAppError(err)
	}
	return split, nil
}

// ========================================
// PAYOUTS
// ========================================

// GetPayoutSummary totals a city's splits for [from, to) and, when the city
// shares revenue with a representative, the next payment date.
func (s *Service) GetPayoutSummary(ctx context.Context, cityID uuid.UUID, from, to time.Time) (*PayoutSummary, error) {
	if !from.Before(to) {
		return nil, common.NewBadRequestError("from must be before to", nil)
	}

	snapshot, err := s.snapshots.Current(ctx)
	if err != nil {
		return nil, err
	}
	city, ok := snapshot.City(cityID)
	if !ok {
		return nil, pricing.ToAppError(pricing.ErrCityNotFound)
	}

	totals, err := s.repo.GetCityTotals(ctx, cityID, from, to)
	if err != nil {
		return nil, err
	}

	summary := &PayoutSummary{
		CityID:     city.ID,
		CityName:   city.Name,
		From:       from,
		To:         to,
		CityTotals: *totals,
		Currency:   snapshot.Platform.Currency,
	}
	if city.Representative != nil {
		id := city.Representative.ID
		summary.RepresentativeID = &id
	}
	if city.RevenueSharing.Configured && city.RevenueSharing.PaymentDay > 0 {
		next := NextPaymentDate(to, city.RevenueSharing.PaymentDay, city.Location())
		summary.PaymentDay = city.RevenueSharing.PaymentDay
		summary.NextPaymentDate = &next
	}
	return summary, nil
}

func (s *Service) publishSplit(ctx context.Context, split *RevenueSplit) {
	event, err := eventbus.NewKeyedEvent(eventbus.SubjectRevenueSplit, "pricing-service", split.RideID.String(), eventbus.RevenueSplitData{
		RideID:              split.RideID,
		CityID:              split.CityID,
		RepresentativeID:    split.RepresentativeID,
		Fare:                split.Fare,
		DriverEarning:       split.DriverEarning,
		RepresentativeShare: split.RepresentativeShare,
		PlatformNet:         split.PlatformNet,
		Currency:            split.Currency,
		CompletedAt:         split.CreatedAt,
	})
	if err == nil {
		err = s.publisher.Publish(ctx, eventbus.SubjectRevenueSplit, event)
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to publish revenue split",
			zap.String("ride_id", split.RideID.String()),
			zap.Error(err),
		)
	}
}

// ToAppError maps earnings errors onto API errors
func ToAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidFare):
		return common.NewBadRequestError("fare must not be negative", err)
	case errors.Is(err, ErrSplitNotFound):
		return common.NewNotFoundError("revenue split not found", err)
	default:
		return err
	}
}
