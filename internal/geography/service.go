package geography

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/logistics-pricing/internal/pricing"
	"github.com/richxcame/logistics-pricing/pkg/eventbus"
	"github.com/richxcame/logistics-pricing/pkg/logger"
	"github.com/richxcame/logistics-pricing/pkg/money"
	"github.com/richxcame/logistics-pricing/pkg/tracing"
	"github.com/richxcame/logistics-pricing/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const tracerName = "pricing-service"

// Service handles city revenue sharing and representatives. Cities live in
// the pricing snapshot so quotes and splits always see a consistent version.
type Service struct {
	store     SnapshotStore
	publisher eventbus.Publisher
	now       func() time.Time
}

var _ ServiceInterface = (*Service)(nil)

// NewService creates a new geography service
func NewService(store SnapshotStore, publisher eventbus.Publisher) *Service {
	if publisher == nil {
		publisher = eventbus.Discard{}
	}
	return &Service{
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// ListCities returns every city sorted by name
func (s *Service) ListCities(ctx context.Context) (*CityListResponse, error) {
	snapshot, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}

	cities := append([]pricing.City(nil), snapshot.Cities...)
	sort.SliceStable(cities, func(i, j int) bool { return cities[i].Name < cities[j].Name })
	return &CityListResponse{Version: snapshot.Version, Cities: cities, Total: len(cities)}, nil
}

// GetCity returns a city by its ID
func (s *Service) GetCity(ctx context.Context, id uuid.UUID) (*pricing.City, error) {
	snapshot, err := s.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	city, ok := snapshot.City(id)
	if !ok {
		return nil, pricing.ToAppError(pricing.ErrCityNotFound)
	}
	return &city, nil
}

// UpsertCity creates the city or replaces its name, clock and revenue
// sharing. The platform percentage is always 100 - representative_percentage.
func (s *Service) UpsertCity(ctx context.Context, id uuid.UUID, req *CityRequest, actor string) (*pricing.City, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "UpsertCity")
	defer span.End()
	span.SetAttributes(tracing.CityIDKey.String(id.String()))

	if err := checkSharing(req.RevenueSharing); err != nil {
		tracing.RecordError(ctx, err)
		return nil, pricing.ToAppError(err)
	}

	return s.writeCity(ctx, id, actor, true, func(city *pricing.City) {
		city.Name = req.Name
		city.Timezone = req.Timezone
		if req.RevenueSharing != nil {
			city.RevenueSharing = derivedSharing(*req.RevenueSharing.RepresentativePercentage, req.RevenueSharing.PaymentDay)
		}
	})
}

// SetRepresentative assigns or replaces a city's representative. The
// representative keeps its ID while the document stays the same.
func (s *Service) SetRepresentative(ctx context.Context, cityID uuid.UUID, req *RepresentativeRequest, actor string) (*pricing.City, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "SetRepresentative")
	defer span.End()
	span.SetAttributes(tracing.CityIDKey.String(cityID.String()))

	return s.writeCity(ctx, cityID, actor, false, func(city *pricing.City) {
		id := uuid.New()
		if current := city.Representative; current != nil && current.Document == req.Document {
			id = current.ID
		}
		city.Representative = &pricing.Representative{
			ID:       id,
			Name:     req.Name,
			Document: req.Document,
			Email:    req.Email,
			Bank:     req.Bank,
		}
	})
}

// RemoveRepresentative unassigns a city's representative. Later splits in
// the city keep the whole platform fee.
func (s *Service) RemoveRepresentative(ctx context.Context, cityID uuid.UUID, actor string) (*pricing.City, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "RemoveRepresentative")
	defer span.End()
	span.SetAttributes(tracing.CityIDKey.String(cityID.String()))

	return s.writeCity(ctx, cityID, actor, false, func(city *pricing.City) {
		city.Representative = nil
	})
}

// writeCity applies change to one city inside a snapshot write. Unknown
// cities are created only when create is set.
func (s *Service) writeCity(ctx context.Context, id uuid.UUID, actor string, create bool, change func(city *pricing.City)) (*pricing.City, error) {
	var written pricing.City
	snapshot, err := s.store.Update(ctx, func(next *pricing.Snapshot) error {
		for i := range next.Cities {
			if next.Cities[i].ID != id {
				continue
			}
			city := &next.Cities[i]
			change(city)
			city.UpdatedAt = s.now().UTC()
			written = *city
			return nil
		}
		if !create {
			return pricing.ErrCityNotFound
		}

		city := pricing.City{
			ID: id,
			RevenueSharing: pricing.RevenueSharing{
				RepresentativePercentage: decimal.Zero,
				PlatformPercentage:       money.Hundred(),
			},
		}
		change(&city)
		city.UpdatedAt = s.now().UTC()
		next.Cities = append(next.Cities, city)
		written = city
		return nil
	})
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, pricing.ToAppError(err)
	}

	logger.InfoContext(ctx, "city updated",
		zap.String("city_id", id.String()),
		zap.Int64("version", snapshot.Version),
		zap.String("actor", actor),
	)
	pricing.PublishConfigUpdated(ctx, s.publisher, eventbus.SubjectCityUpdated, pricing.SectionCities, snapshot, actor)
	return &written, nil
}

func checkSharing(req *RevenueSharingRequest) error {
	if req == nil {
		return nil
	}
	var violations validation.Violations
	if req.PlatformPercentage != nil {
		violations.Add("revenue_sharing.platform_percentage", "derived",
			"is derived from representative_percentage and cannot be set")
	}
	pct := *req.RepresentativePercentage
	if pct.IsNegative() || pct.GreaterThan(money.Hundred()) {
		violations.Add("revenue_sharing.representative_percentage", "range", "must be between 0 and 100")
	}
	if len(violations) > 0 {
		return pricing.ValidationFailed(violations)
	}
	return nil
}

func derivedSharing(representative decimal.Decimal, paymentDay int) pricing.RevenueSharing {
	return pricing.RevenueSharing{
		RepresentativePercentage: representative,
		PlatformPercentage:       money.Hundred().Sub(representative),
		PaymentDay:               paymentDay,
		Configured:               true,
	}
}
