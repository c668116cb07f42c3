package pricing

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the persistence operations of the snapshot store
// This enables mocking in tests
type RepositoryInterface interface {
	LoadSnapshot(ctx context.Context) (*Snapshot, bool, error)
	UpdateSnapshot(ctx context.Context, attempts int, fn func(stored *Snapshot) (*Snapshot, error)) (*Snapshot, error)
}

// ServiceInterface defines the pricing operations used by the HTTP handler
type ServiceInterface interface {
	GetConfig(ctx context.Context) (*ConfigResponse, error)
	UpdateConfig(ctx context.Context, req *UpdateConfigRequest, actor string) (*ConfigResponse, error)
	Estimate(ctx context.Context, req *EstimateRequest) (*Quote, error)
	ListRules(ctx context.Context, filter RuleFilter) (*RuleListResponse, error)
	GetRule(ctx context.Context, id uuid.UUID) (*PricingRule, error)
	CreateRule(ctx context.Context, req *RuleRequest, actor string) (*PricingRule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, req *RuleRequest, actor string) (*PricingRule, error)
	DeleteRule(ctx context.Context, id uuid.UUID, actor string) error
	GetPlatformConfig(ctx context.Context) (*PlatformConfigResponse, error)
	UpdatePlatformConfig(ctx context.Context, req *PlatformConfigRequest, actor string) (*PlatformConfigResponse, error)
}
