package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"usina-backend/internal/models"
	"usina-backend/internal/repositories"

	"github.com/jackc/pgx/v5"
)

// ServerAdService maintains per-ad daily counters and feeds counter growth
// into the distribution ledger. The admin screen submits absolute values; the
// service turns them into deltas so a stale form never rewinds distribution.
type ServerAdService struct {
	ads      *repositories.ServerAdRepository
	servers  *repositories.ServerRepository
	assigner Assigner
}

func NewServerAdService(ads *repositories.ServerAdRepository, servers *repositories.ServerRepository, assigner Assigner) *ServerAdService {
	return &ServerAdService{ads: ads, servers: servers, assigner: assigner}
}

func (s *ServerAdService) Create(ctx context.Context, serverID int, ad *models.ServerAd) (*models.ServerAd, error) {
	if ad.AdID == "" {
		return nil, fmt.Errorf("%w: ad_id is required", ErrValidation)
	}
	if _, err := s.servers.Get(ctx, serverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: server %d", ErrNotFound, serverID)
		}
		return nil, err
	}

	ad.ServerID = serverID
	if ad.Status == "" {
		ad.Status = "active"
	}
	if err := s.ads.Create(ctx, ad); err != nil {
		return nil, err
	}
	return ad, nil
}

func (s *ServerAdService) Get(ctx context.Context, id int) (*models.ServerAd, error) {
	ad, err := s.ads.Get(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: ad %d", ErrNotFound, id)
	}
	return ad, err
}

func (s *ServerAdService) ListByServer(ctx context.Context, serverID int, date time.Time) ([]*models.ServerAd, error) {
	return s.ads.ListByServer(ctx, serverID, date)
}

// UpdateCounters applies absolute counter values from the admin screen.
// Positive deltas on leads and loads are routed through the allocator so the
// daily ledger stays in sync with what the ads reported; negative deltas only
// correct the ad row. Capacity shortages leave the ad counters updated and
// the ledger untouched.
func (s *ServerAdService) UpdateCounters(ctx context.Context, id int, req *models.UpdateServerAdCountersRequest) (*models.ServerAd, error) {
	ad, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	leadsDelta, loadsDelta := 0, 0
	spentDelta := 0.0
	if req.Leads != nil {
		leadsDelta = *req.Leads - ad.Leads
	}
	if req.Loads != nil {
		loadsDelta = *req.Loads - ad.Loads
	}
	if req.Spent != nil {
		spentDelta = *req.Spent - ad.Spent
	}
	if leadsDelta == 0 && loadsDelta == 0 && spentDelta == 0 {
		return ad, nil
	}

	updated, err := s.ads.IncrementCounters(ctx, id, leadsDelta, loadsDelta, spentDelta)
	if err != nil {
		return nil, err
	}

	if leadsDelta > 0 {
		s.distribute(ctx, KindLead, leadsDelta, updated.ServerID)
	}
	if loadsDelta > 0 {
		s.distribute(ctx, KindConversion, loadsDelta, updated.ServerID)
	}
	return updated, nil
}

func (s *ServerAdService) distribute(ctx context.Context, kind string, count, serverID int) {
	_, err := s.assigner.AssignAuto(ctx, kind, count, &serverID)
	if err != nil {
		if errors.Is(err, ErrNoDistributionTarget) || errors.Is(err, ErrNoActivePhones) {
			log.Printf("[ServerAds] %d %s unit(s) recorded on ad counters but not distributed: %v", count, kind, err)
			return
		}
		log.Printf("[ServerAds] failed to distribute %d %s unit(s): %v", count, kind, err)
	}
}
