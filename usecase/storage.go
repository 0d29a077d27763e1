package usecase

import (
	"context"
	"fmt"

	domainOffline "github.com/savora/savora/domains/offline"
	domainRecipe "github.com/savora/savora/domains/recipe"
	domainStorage "github.com/savora/savora/domains/storage"
	"github.com/savora/savora/infrastructure/kvstore"
	pkgError "github.com/savora/savora/pkg/error"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// storageService reports space consumed by the engine-owned records and
// offers the full reset. Diagnostic and maintenance only.
type storageService struct {
	store       kvstore.Store
	capacity    int64
	recipeCache domainRecipe.IRecipeCacheUsecase
	searchCache domainRecipe.ISearchCacheUsecase
	queue       domainOffline.IQueueUsecase
	favorites   domainOffline.IFavoritesUsecase
}

func NewStorageService(
	store kvstore.Store,
	capacity int64,
	recipeCache domainRecipe.IRecipeCacheUsecase,
	searchCache domainRecipe.ISearchCacheUsecase,
	queue domainOffline.IQueueUsecase,
	favorites domainOffline.IFavoritesUsecase,
) domainStorage.IStorageUsecase {
	return &storageService{
		store:       store,
		capacity:    capacity,
		recipeCache: recipeCache,
		searchCache: searchCache,
		queue:       queue,
		favorites:   favorites,
	}
}

func (s *storageService) Usage(ctx context.Context) (domainStorage.Stats, error) {
	used, err := s.store.Usage(ctx)
	if err != nil {
		return domainStorage.Stats{}, pkgError.StorageFailureError(fmt.Sprintf("usage: %v", err))
	}

	percentage := 0.0
	if s.capacity > 0 {
		percentage = float64(used) / float64(s.capacity) * 100
	}

	return domainStorage.Stats{
		Used:       used,
		Total:      s.capacity,
		Percentage: percentage,
		HumanUsed:  humanize.Bytes(uint64(used)),
		HumanTotal: humanize.Bytes(uint64(s.capacity)),
	}, nil
}

// ClearAll wipes every engine-owned record and resets the in-memory caches.
// The pending queue is cleared too: a full reset is an explicit maintenance
// action, not a failure path.
func (s *storageService) ClearAll(ctx context.Context) error {
	s.recipeCache.Clear()
	s.searchCache.Clear()
	s.queue.Clear()
	s.favorites.Clear()
	if err := s.store.Clear(ctx); err != nil {
		return pkgError.StorageFailureError(fmt.Sprintf("clear: %v", err))
	}
	logrus.Info("[STORAGE] All engine data cleared")
	return nil
}
