package pricing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/pkg/eventbus"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/richxcame/logistics-pricing/pkg/tracing"
	"go.uber.org/zap"
)

const (
	tracerName  = "pricing-service"
	eventSource = "pricing-service"
)

// Configuration sections reported in metrics and events
const (
	SectionConfig   = "config"
	SectionRules    = "rules"
	SectionPlatform = "platform"
	SectionCities   = "cities"
)

// Service handles pricing configuration and fare estimates
type Service struct {
	store     *SnapshotStore
	publisher eventbus.Publisher
	now       func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

// NewService creates a new pricing service
func NewService(store *SnapshotStore, publisher eventbus.Publisher) *Service {
	if publisher == nil {
		publisher = eventbus.Discard{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// GetConfig returns the configuration bundle of the current snapshot
func (s *Service) GetConfig(ctx context.Context) (*ConfigResponse, error) {
	snapshot, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return configResponse(snapshot), nil
}

// UpdateConfig replaces vehicle pricing, peak hours, cancellation fees and
// platform settings in one atomic write. Nothing is saved when any field
// is invalid.
func (s *Service) UpdateConfig(ctx context.Context, req *UpdateConfigRequest, actor string) (*ConfigResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateConfig")
	defer span.End()

	snapshot, err := s.store.Update(ctx, func(next *Snapshot) error {
		next.VehiclePricing = append([]VehiclePricing(nil), req.VehiclePricing...)
		next.PeakHours = withPeakIDs(req.PeakHours)
		next.CancellationFees = append([]CancellationFee(nil), req.CancellationFees...)

		platform := *req.Platform
		if platform.Currency == "" {
			platform.Currency = next.Platform.Currency
		}
		next.Platform = platform
		return nil
	})
	if err != nil {
		return nil, s.writeFailed(ctx, SectionConfig, err)
	}

	s.written(ctx, SectionConfig, snapshot, actor)
	return configResponse(snapshot), nil
}

// Estimate quotes a trip against the current snapshot
func (s *Service) Estimate(ctx context.Context, req *EstimateRequest) (*Quote, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Estimate")
	defer span.End()

	span.SetAttributes(
		tracing.CityIDKey.String(req.CityID.String()),
		tracing.VehicleCategoryKey.String(string(req.VehicleType)),
	)

	snapshot, err := s.store.Current(ctx)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}

	quoteReq := QuoteRequest{
		CityID:          req.CityID,
		VehicleCategory: req.VehicleType,
		PurposeID:       req.PurposeID,
		RequestedAt:     s.now(),
	}
	if req.DistanceKm != nil {
		quoteReq.DistanceKm = *req.DistanceKm
	}
	if req.DurationMinutes != nil {
		quoteReq.DurationMinutes = *req.DurationMinutes
	}
	if req.RequestedAt != nil {
		quoteReq.RequestedAt = *req.RequestedAt
	}

	quote, err := QuoteTrip(snapshot, quoteReq)
	if err != nil {
		quoteFailuresTotal.WithLabelValues(failureReason(err)).Inc()
		tracing.RecordError(ctx, err)
		return nil, ToAppError(err)
	}

	span.SetAttributes(
		tracing.PricingSourceKey.String(string(quote.PricingSource)),
		tracing.SnapshotVersionKey.Int64(quote.SnapshotVersion),
	)
	ObserveQuote(req.VehicleType, quote)
	return quote, nil
}

// ListRules returns the rules matching filter in stored order
func (s *Service) ListRules(ctx context.Context, filter RuleFilter) (*RuleListResponse, error) {
	snapshot, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}

	rules := make([]PricingRule, 0, len(snapshot.Rules))
	for _, rule := range snapshot.Rules {
		if filter.matches(rule) {
			rules = append(rules, rule)
		}
	}
	return &RuleListResponse{Version: snapshot.Version, Rules: rules, Total: len(rules)}, nil
}

// GetRule returns one rule
func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*PricingRule, error) {
	snapshot, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	rule, ok := snapshot.Rule(id)
	if !ok {
		return nil, ToAppError(ErrRuleNotFound)
	}
	return &rule, nil
}

// CreateRule adds a rule. An active rule whose scope is already taken by
// another active rule is rejected.
func (s *Service) CreateRule(ctx context.Context, req *RuleRequest, actor string) (*PricingRule, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateRule")
	defer span.End()

	now := s.now().UTC()
	rule := PricingRule{
		ID:        uuid.New(),
		Scope:     req.scope(),
		Pricing:   req.Pricing,
		Active:    req.Active == nil || *req.Active,
		Priority:  req.Priority,
		CreatedAt: now,
		UpdatedAt: now,
	}

	snapshot, err := s.store.Update(ctx, func(next *Snapshot) error {
		next.Rules = append(next.Rules, rule)
		return nil
	})
	if err != nil {
		return nil, s.writeFailed(ctx, SectionRules, err)
	}

	s.written(ctx, SectionRules, snapshot, actor)
	return &rule, nil
}

// UpdateRule replaces the scope and pricing of an existing rule
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req *RuleRequest, actor string) (*PricingRule, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdateRule")
	defer span.End()

	var updated PricingRule
	snapshot, err := s.store.Update(ctx, func(next *Snapshot) error {
		for i := range next.Rules {
			if next.Rules[i].ID != id {
				continue
			}
			rule := &next.Rules[i]
			rule.Scope = req.scope()
			rule.Pricing = req.Pricing
			rule.Priority = req.Priority
			if req.Active != nil {
				rule.Active = *req.Active
			}
			rule.UpdatedAt = s.now().UTC()
			updated = *rule
			return nil
		}
		return ErrRuleNotFound
	})
	if err != nil {
		return nil, s.writeFailed(ctx, SectionRules, err)
	}

	s.written(ctx, SectionRules, snapshot, actor)
	return &updated, nil
}

// DeleteRule removes a rule
func (s *Service) DeleteRule(ctx context.Context, id uuid.UUID, actor string) error {
	ctx, span := tracing.StartSpan(ctx, tracerName, "DeleteRule")
	defer span.End()

	snapshot, err := s.store.Update(ctx, func(next *Snapshot) error {
		for i := range next.Rules {
			if next.Rules[i].ID == id {
				next.Rules = append(next.Rules[:i], next.Rules[i+1:]...)
				return nil
			}
		}
		return ErrRuleNotFound
	})
	if err != nil {
		return s.writeFailed(ctx, SectionRules, err)
	}

	s.written(ctx, SectionRules, snapshot, actor)
	return nil
}

// GetPlatformConfig returns the platform settings
func (s *Service) GetPlatformConfig(ctx context.Context) (*PlatformConfigResponse, error) {
	snapshot, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return platformResponse(snapshot), nil
}

// UpdatePlatformConfig replaces the platform settings
func (s *Service) UpdatePlatformConfig(ctx context.Context, req *PlatformConfigRequest, actor string) (*PlatformConfigResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpdatePlatformConfig")
	defer span.End()

	settings := req.PlatformSettings
	if req.AppFeePercentage != nil {
		settings.PlatformFeePercentage = *req.AppFeePercentage
	}

	snapshot, err := s.store.Update(ctx, func(next *Snapshot) error {
		if settings.Currency == "" {
			settings.Currency = next.Platform.Currency
		}
		next.Platform = settings
		return nil
	})
	if err != nil {
		return nil, s.writeFailed(ctx, SectionPlatform, err)
	}

	s.written(ctx, SectionPlatform, snapshot, actor)
	return platformResponse(snapshot), nil
}

func (s *Service) writeFailed(ctx context.Context, section string, err error) error {
	configWritesTotal.WithLabelValues(section, "rejected").Inc()
	tracing.RecordError(ctx, err)
	return ToAppError(err)
}

func (s *Service) written(ctx context.Context, section string, snapshot *Snapshot, actor string) {
	configWritesTotal.WithLabelValues(section, "committed").Inc()
	logger.InfoContext(ctx, "pricing configuration updated",
		zap.String("section", section),
		zap.Int64("version", snapshot.Version),
		zap.String("actor", actor),
	)
	PublishConfigUpdated(ctx, s.publisher, eventbus.SubjectPricingConfigUpdated, section, snapshot, actor)
}

// PublishConfigUpdated announces a committed snapshot. Failures are logged;
// the write itself already succeeded.
func PublishConfigUpdated(ctx context.Context, publisher eventbus.Publisher, subject, section string, snapshot *Snapshot, actor string) {
	event, err := eventbus.NewKeyedEvent(subject, eventSource, strconv.FormatInt(snapshot.Version, 10), eventbus.ConfigUpdatedData{
		Version:   snapshot.Version,
		Section:   section,
		UpdatedBy: actor,
		UpdatedAt: snapshot.UpdatedAt,
	})
	if err == nil {
		err = publisher.Publish(ctx, subject, event)
	}
	if err != nil {
		logger.WarnContext(ctx, "failed to publish config update",
			zap.String("subject", subject),
			zap.Int64("version", snapshot.Version),
			zap.Error(err),
		)
	}
}

// ObserveQuote records quote metrics.
func ObserveQuote(vehicle VehicleCategory, quote *Quote) {
	quotesTotal.WithLabelValues(string(vehicle), string(quote.PricingSource)).Inc()
	if quote.PeakMultiplier.GreaterThan(money.One) {
		peakAppliedTotal.Inc()
	}
	total, _ := quote.Total.Float64()
	quoteTotalAmount.WithLabelValues(string(vehicle)).Observe(total)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrNoApplicablePricing):
		return "no_applicable_pricing"
	case errors.Is(err, ErrInvalidDistance):
		return "invalid_distance"
	case errors.Is(err, ErrInvalidDuration):
		return "invalid_duration"
	default:
		return "other"
	}
}

func (f RuleFilter) matches(rule PricingRule) bool {
	if f.CityID != uuid.Nil && rule.Scope.CityID != f.CityID {
		return false
	}
	if f.VehicleCategory != "" && rule.Scope.VehicleCategory != f.VehicleCategory {
		return false
	}
	if f.PurposeID != uuid.Nil && (rule.Scope.IsBase() || *rule.Scope.PurposeID != f.PurposeID) {
		return false
	}
	return true
}

func (r *RuleRequest) scope() PricingScope {
	if r.PurposeID == nil || *r.PurposeID == uuid.Nil {
		return BaseScope(r.CityID, r.VehicleCategory)
	}
	return PurposeScope(r.CityID, r.VehicleCategory, *r.PurposeID)
}

func withPeakIDs(peaks []PeakHour) []PeakHour {
	out := make([]PeakHour, len(peaks))
	for i, peak := range peaks {
		if peak.ID == uuid.Nil {
			peak.ID = uuid.New()
		}
		out[i] = peak
	}
	return out
}

func configResponse(snapshot *Snapshot) *ConfigResponse {
	return &ConfigResponse{
		Version:          snapshot.Version,
		UpdatedAt:        snapshot.UpdatedAt,
		VehiclePricing:   snapshot.VehiclePricing,
		PeakHours:        snapshot.PeakHours,
		CancellationFees: snapshot.CancellationFees,
		Platform:         snapshot.Platform,
	}
}

func platformResponse(snapshot *Snapshot) *PlatformConfigResponse {
	return &PlatformConfigResponse{
		Version:          snapshot.Version,
		PlatformSettings: snapshot.Platform,
		AppFeePercentage: snapshot.Platform.PlatformFeePercentage,
	}
}
