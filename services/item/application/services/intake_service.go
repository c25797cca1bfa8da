package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ghuser/lostfound/pkg/imaging"
	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/pkg/telemetry"
	itemdomain "github.com/ghuser/lostfound/services/item/domain"
	"github.com/ghuser/lostfound/services/item/domain/models"
	"github.com/ghuser/lostfound/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/lostfound/services/item/domain/services"
)

const undatedSegment = "undated"

// IntakeService files new lost and found reports.
type IntakeService struct {
	repo    repositories.ItemRepository
	blobs   repositories.BlobStore
	events  *eventPublisher
	metrics *telemetry.ItemMetrics
	log     logger.Logger
	images  imaging.Options
}

// NewIntakeService returns an IntakeService.
func NewIntakeService(
	repo repositories.ItemRepository,
	blobs repositories.BlobStore,
	pub EventPublisher,
	metrics *telemetry.ItemMetrics,
	log logger.Logger,
	images imaging.Options,
) *IntakeService {
	return &IntakeService{
		repo:    repo,
		blobs:   blobs,
		events:  &eventPublisher{pub: pub, log: log},
		metrics: metrics,
		log:     log,
		images:  images,
	}
}

// Create validates the draft, uploads the optional image and persists the item.
// imageDataURL is a base64 data URL; empty means no image.
// An upload failure aborts the report with ErrBlobStore and nothing is stored.
func (s *IntakeService) Create(ctx context.Context, draft models.Draft, imageDataURL string) (*models.Item, error) {
	if err := domainsvcs.ValidateDraft(draft); err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrValidation, err)
	}

	if imageDataURL != "" {
		url, err := s.upload(ctx, draft, imageDataURL)
		if err != nil {
			return nil, err
		}
		draft.ImageURL = url
	}

	item, err := s.repo.Create(ctx, draft)
	if err != nil {
		if draft.ImageURL != "" {
			s.log.WarnContext(ctx, "item write failed after image upload, image orphaned",
				"image_url", draft.ImageURL, "error", err)
		}
		return nil, fmt.Errorf("create item: %w", err)
	}

	s.log.InfoContext(ctx, "item reported", "item_id", item.ID, "item_type", item.Type, "case_id", item.CaseID)
	s.metrics.ItemCreated(ctx, item.Type.String())
	s.events.itemCreated(ctx, item)
	return item, nil
}

func (s *IntakeService) upload(ctx context.Context, draft models.Draft, dataURL string) (string, error) {
	img, err := imaging.ProcessDataURL(dataURL, s.images)
	if err != nil {
		return "", fmt.Errorf("%w: image: %w", itemdomain.ErrValidation, err)
	}

	url, err := s.blobs.Put(ctx, img.Data, img.ContentType, PathHint(draft))
	if err != nil {
		s.log.ErrorContext(ctx, "image upload failed", "item_type", draft.Type, "error", err)
		if !errors.Is(err, itemdomain.ErrBlobStore) {
			err = fmt.Errorf("%w: %w", itemdomain.ErrBlobStore, err)
		}
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

// PathHint returns the blob prefix for a report's image:
// found-items/<category>/<date> or lost-reports/<date>.
func PathHint(d models.Draft) string {
	date := pathSegment(d.Date)
	if d.Type == models.ItemTypeLost {
		return "lost-reports/" + date
	}
	return "found-items/" + pathSegment(d.Category) + "/" + date
}

func pathSegment(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, "/", "-"))
	if s == "" || s == "." || s == ".." {
		return undatedSegment
	}
	return s
}
