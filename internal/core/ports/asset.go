package ports

import (
	"context"
	"time"

	"github.com/campuscare/campuscare/internal/core/domain"
)

// CreateAssetInput is the DTO passed from the transport layer to AssetService.
type CreateAssetInput struct {
	Name     string
	Type     string
	Location string
}

// AssetService owns campus infrastructure assets and their derived health.
type AssetService interface {
	Create(ctx context.Context, actor *domain.Identity, in CreateAssetInput) (*domain.Asset, error)
	// List returns the actor's campus assets, riskiest first.
	List(ctx context.Context, actor *domain.Identity) ([]*domain.Asset, error)
	UpdateRisk(ctx context.Context, actor *domain.Identity, assetID string, risk float64) (*domain.Asset, error)
	HealthScore(ctx context.Context, actor *domain.Identity) (domain.CampusHealth, error)
}

// AssetRepository defines persistence operations for assets, campus-scoped
// on every lookup.
type AssetRepository interface {
	Create(ctx context.Context, a *domain.Asset) error
	UpdateRisk(ctx context.Context, id, campusID string, risk float64, at time.Time) (*domain.Asset, error)
	ListByCampus(ctx context.Context, campusID string) ([]*domain.Asset, error)
}
