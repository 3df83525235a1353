package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/campuscare/campuscare/internal/core/domain"
	"github.com/campuscare/campuscare/internal/core/ports"
	"github.com/campuscare/campuscare/internal/pkg/metrics"
)

// AssetService owns campus infrastructure assets and their derived health
// score.
type AssetService struct {
	repo ports.AssetRepository
	bus  ports.EventBus
	log  zerolog.Logger
}

func NewAssetService(repo ports.AssetRepository, bus ports.EventBus, log zerolog.Logger) *AssetService {
	return &AssetService{repo: repo, bus: bus, log: log}
}

func (s *AssetService) Create(ctx context.Context, actor *domain.Identity, in ports.CreateAssetInput) (*domain.Asset, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}

	asset := &domain.Asset{
		CampusID:        actor.CampusID,
		Name:            in.Name,
		Type:            in.Type,
		Location:        in.Location,
		LastMaintenance: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, asset); err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}

	s.log.Info().Str("asset_id", asset.ID).Str("campus_id", asset.CampusID).Msg("asset registered")
	return asset, nil
}

func (s *AssetService) List(ctx context.Context, actor *domain.Identity) ([]*domain.Asset, error) {
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}
	return s.repo.ListByCampus(ctx, actor.CampusID)
}

// UpdateRisk sets an asset's failure risk and publishes the change to the
// campus staff. The risk update also counts as a maintenance touch.
func (s *AssetService) UpdateRisk(ctx context.Context, actor *domain.Identity, assetID string, risk float64) (*domain.Asset, error) {
	if !actor.IsStaff() {
		return nil, domain.ErrForbidden
	}
	if actor.CampusID == "" {
		return nil, domain.ErrNoCampus
	}
	if risk < 0 || risk > 1 {
		return nil, domain.ErrInvalidRisk
	}

	asset, err := s.repo.UpdateRisk(ctx, assetID, actor.CampusID, risk, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update asset risk: %w", err)
	}

	s.log.Info().
		Str("asset_id", asset.ID).
		Float64("failure_risk", asset.FailureRisk).
		Str("actor_id", actor.ID).
		Msg("asset risk updated")

	ev := domain.NewEvent(domain.EventAssetRiskUpdated, asset.CampusID, domain.AudienceStaff)
	ev.AssetID = asset.ID
	ev.Name = asset.Name
	ev.FailureRisk = &asset.FailureRisk
	s.publish(ctx, domain.CampusChannel(asset.CampusID), ev)

	return asset, nil
}

// HealthScore recomputes the campus health on read; it is never stored.
func (s *AssetService) HealthScore(ctx context.Context, actor *domain.Identity) (domain.CampusHealth, error) {
	if actor.CampusID == "" {
		return domain.CampusHealth{}, domain.ErrNoCampus
	}
	assets, err := s.repo.ListByCampus(ctx, actor.CampusID)
	if err != nil {
		return domain.CampusHealth{}, fmt.Errorf("health score: %w", err)
	}
	return domain.ComputeHealth(assets), nil
}

func (s *AssetService) publish(ctx context.Context, channel string, ev *domain.Event) {
	if err := s.bus.Publish(ctx, channel, ev); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "error").Inc()
		s.log.Error().Err(err).Str("channel", channel).Str("type", string(ev.Type)).Msg("failed to publish event")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(string(ev.Type), "ok").Inc()
}
