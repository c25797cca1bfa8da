package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/pkg/telemetry"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
	"github.com/ghuser/lostfound/services/item/domain/repositories"
	"github.com/ghuser/lostfound/services/item/domain/search"
)

// SearchService turns search criteria into an ordered result set.
type SearchService struct {
	repo    repositories.ItemRepository
	metrics *telemetry.ItemMetrics
	log     logger.Logger
}

// NewSearchService returns a SearchService.
func NewSearchService(repo repositories.ItemRepository, metrics *telemetry.ItemMetrics, log logger.Logger) *SearchService {
	return &SearchService{repo: repo, metrics: metrics, log: log}
}

// Search picks the access path, then filters and orders the candidates.
// Admin searches with a status read the status index; everything else scans.
// An index failure falls back to a scan and yields the same result shape.
func (s *SearchService) Search(ctx context.Context, c search.Criteria) (search.Result, error) {
	candidates, err := s.candidates(ctx, c)
	if err != nil {
		return search.Result{}, fmt.Errorf("search items: %w", err)
	}
	return search.Run(candidates, c), nil
}

func (s *SearchService) candidates(ctx context.Context, c search.Criteria) ([]*models.Item, error) {
	if !c.UsesStatusIndex() {
		return s.repo.ScanAll(ctx)
	}

	items, err := s.repo.QueryByStatus(ctx, c.StatusFilter())
	if err == nil {
		return items, nil
	}
	if !errors.Is(err, itemdomain.ErrIndexUnavailable) {
		return nil, err
	}

	s.log.WarnContext(ctx, "status index unavailable, falling back to scan",
		"status", c.Status, "error", err)
	s.metrics.SearchFallback(ctx)
	return s.repo.ScanAll(ctx)
}
