package services

import (
	"context"
	"fmt"

	"github.com/ghuser/lostfound/pkg/app"
	pkgcache "github.com/ghuser/lostfound/pkg/cache"
	"github.com/ghuser/lostfound/pkg/config"
	"github.com/ghuser/lostfound/pkg/imaging"
	"github.com/ghuser/lostfound/pkg/logger"
	"github.com/ghuser/lostfound/pkg/telemetry"
	"github.com/ghuser/lostfound/services/item/domain/repositories"
	blobmemory "github.com/ghuser/lostfound/services/item/infrastructure/blob/memory"
	"github.com/ghuser/lostfound/services/item/infrastructure/blob/s3store"
	"github.com/ghuser/lostfound/services/item/infrastructure/persistence/dynamo"
	"github.com/ghuser/lostfound/services/item/infrastructure/persistence/memory"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Intake    *IntakeService
	Search    *SearchService
	Lifecycle *LifecycleService
	Item      *ItemService

	// Blobs is exposed for health probing.
	Blobs repositories.BlobStore
}

// Deps are the collaborators shared by the item services. Cache, Publisher
// and Metrics are optional.
type Deps struct {
	Repo      repositories.ItemRepository
	Blobs     repositories.BlobStore
	Cache     ItemCache
	Publisher EventPublisher
	Metrics   *telemetry.ItemMetrics
	Logger    logger.Logger
	Images    imaging.Options
}

// New wires all item application services with infrastructure from the Application container.
func New(ctx context.Context, a *app.Application) (*Services, error) {
	cfg := a.Config

	var repo repositories.ItemRepository
	switch {
	case a.Db != nil:
		repo = dynamo.NewItemRepository(a.Db, a.Logger)
	case cfg.StoreBackend == config.BackendMemory:
		repo = memory.NewItemRepository()
	default:
		return nil, fmt.Errorf("item store %q requires a database connection", cfg.StoreBackend)
	}

	var blobs repositories.BlobStore
	if cfg.BlobBackend == config.BackendMemory {
		blobs = blobmemory.NewBlobStore()
	} else {
		s3Blobs, err := s3store.NewBlobStore(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("blob store: %w", err)
		}
		blobs = s3Blobs
	}

	maxBytes, err := cfg.MaxImageBytes()
	if err != nil {
		return nil, err
	}

	deps := Deps{
		Repo:    repo,
		Blobs:   blobs,
		Metrics: a.Metrics,
		Logger:  a.Logger,
		Images:  imaging.Options{MaxBytes: maxBytes, MaxDimension: cfg.MaxImageDimension, MaxPixels: cfg.MaxImagePixels},
	}
	if a.Redis != nil {
		deps.Cache = pkgcache.NewItemCache(a.Redis)
	}
	if a.EventBus != nil {
		deps.Publisher = a.EventBus
	}
	return NewWithDeps(deps), nil
}

// NewWithDeps builds the service container from explicit collaborators.
func NewWithDeps(d Deps) *Services {
	return &Services{
		Intake:    NewIntakeService(d.Repo, d.Blobs, d.Publisher, d.Metrics, d.Logger, d.Images),
		Search:    NewSearchService(d.Repo, d.Metrics, d.Logger),
		Lifecycle: NewLifecycleService(d.Repo, d.Blobs, d.Cache, d.Publisher, d.Metrics, d.Logger),
		Item:      NewItemService(d.Repo, d.Cache, d.Logger),
		Blobs:     d.Blobs,
	}
}
