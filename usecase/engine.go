package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	domainEngine "github.com/savora/savora/domains/engine"
	domainNetwork "github.com/savora/savora/domains/network"
	domainOffline "github.com/savora/savora/domains/offline"
	domainRecipe "github.com/savora/savora/domains/recipe"
	domainRemote "github.com/savora/savora/domains/remote"
	domainStorage "github.com/savora/savora/domains/storage"
	domainSync "github.com/savora/savora/domains/sync"
	pkgError "github.com/savora/savora/pkg/error"
	"github.com/sirupsen/logrus"
)

// engineService is the offline engine facade. It is an explicit instance
// over injected collaborators — storage-backed caches, the mutation queue,
// the reachability view, the sync coordinator and the remote transport —
// with no package-level state, so tests run against fakes.
//
// Read paths prefer fresh remote data, fall back to cache on remote
// failure, and only then surface NotCached. Mutations performed while the
// remote service is unreachable appear to succeed locally and are queued;
// the caller only hears about them again on permanent failure.
type engineService struct {
	recipeCache domainRecipe.IRecipeCacheUsecase
	searchCache domainRecipe.ISearchCacheUsecase
	queue       domainOffline.IQueueUsecase
	favorites   domainOffline.IFavoritesUsecase
	network     domainNetwork.INetworkUsecase
	syncSvc     domainSync.ISyncUsecase
	storage     domainStorage.IStorageUsecase
	remote      domainRemote.IRemoteClient
}

func NewEngineService(
	recipeCache domainRecipe.IRecipeCacheUsecase,
	searchCache domainRecipe.ISearchCacheUsecase,
	queue domainOffline.IQueueUsecase,
	favorites domainOffline.IFavoritesUsecase,
	network domainNetwork.INetworkUsecase,
	syncSvc domainSync.ISyncUsecase,
	storage domainStorage.IStorageUsecase,
	remote domainRemote.IRemoteClient,
) domainEngine.IEngineUsecase {
	return &engineService{
		recipeCache: recipeCache,
		searchCache: searchCache,
		queue:       queue,
		favorites:   favorites,
		network:     network,
		syncSvc:     syncSvc,
		storage:     storage,
		remote:      remote,
	}
}

// --- Cache accessors ---

func (s *engineService) CacheRecipe(r domainRecipe.Recipe) {
	s.recipeCache.Put(r)
}

func (s *engineService) GetCachedRecipe(id string) (domainRecipe.Recipe, bool) {
	return s.recipeCache.Get(id)
}

func (s *engineService) ListCachedRecipes() []domainRecipe.CachedRecipe {
	return s.recipeCache.List()
}

func (s *engineService) ClearCache() {
	s.recipeCache.Clear()
	s.searchCache.Clear()
}

func (s *engineService) CacheSearch(query string, filters domainRecipe.SearchFilters, results []domainRecipe.Recipe) {
	s.searchCache.Put(query, filters, results)
}

func (s *engineService) GetCachedSearch(query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, bool) {
	return s.searchCache.Get(query, filters)
}

// --- Network ---

func (s *engineService) NetworkStatus() domainNetwork.Status {
	return s.network.Status()
}

func (s *engineService) OnNetworkChange(l domainNetwork.Listener) func() {
	return s.network.Subscribe(l)
}

// --- Queue and sync ---

func (s *engineService) EnqueueMutation(opType domainOffline.OperationType, payload any) (domainOffline.PendingOperation, error) {
	op, err := s.queue.Enqueue(opType, payload)
	if err != nil {
		return domainOffline.PendingOperation{}, err
	}
	s.markFavoriteToggle(op)
	s.kickSync()
	return op, nil
}

// markFavoriteToggle keeps the local favorite set in step with the queue: a
// queued toggle is part of the visible favorite state the moment it is
// queued, not when it replays. Applies no matter which path enqueued it.
func (s *engineService) markFavoriteToggle(op domainOffline.PendingOperation) {
	if op.Type != domainOffline.OpFavorite && op.Type != domainOffline.OpUnfavorite {
		return
	}
	var payload domainOffline.FavoritePayload
	if err := json.Unmarshal(op.Payload, &payload); err != nil || payload.RecipeID == "" {
		return
	}
	if op.Type == domainOffline.OpFavorite {
		_ = s.favorites.Add(payload.RecipeID)
	} else {
		_ = s.favorites.Remove(payload.RecipeID)
	}
}

func (s *engineService) SyncNow(ctx context.Context) bool {
	return s.syncSvc.SyncNow(ctx)
}

// kickSync requests a background drain right after an enqueue while online,
// so a transient failure does not leave the operation waiting for the next
// periodic cycle.
func (s *engineService) kickSync() {
	if !s.network.Status().IsOnline {
		return
	}
	go s.syncSvc.SyncNow(context.Background())
}

// --- Offline favorites ---

func (s *engineService) AddOfflineFavorite(recipeID string) error {
	return s.favorites.Add(recipeID)
}

func (s *engineService) RemoveOfflineFavorite(recipeID string) error {
	return s.favorites.Remove(recipeID)
}

func (s *engineService) IsOfflineFavorite(recipeID string) bool {
	return s.favorites.Contains(recipeID)
}

func (s *engineService) RefreshFavorites(ctx context.Context) error {
	if !s.network.Status().IsOnline {
		return pkgError.UnreachableError("refresh favorites: offline")
	}
	ids, err := s.remote.ListFavorites(ctx)
	if err != nil {
		return err
	}
	s.favorites.MergeConfirmed(ids)
	return nil
}

// --- Storage ---

func (s *engineService) StorageUsage(ctx context.Context) (domainStorage.Stats, error) {
	return s.storage.Usage(ctx)
}

// --- Composite paths ---

func (s *engineService) GetRecipe(ctx context.Context, id string) (domainRecipe.Recipe, error) {
	if s.network.Status().IsOnline {
		r, err := s.remote.FetchRecipe(ctx, id)
		if err == nil {
			s.recipeCache.Put(r)
			return r, nil
		}
		logrus.WithError(err).Warnf("[ENGINE] Remote fetch of recipe %s failed, trying cache", id)
	}

	if r, ok := s.recipeCache.Get(id); ok {
		return r, nil
	}
	return domainRecipe.Recipe{}, pkgError.NotCachedError(fmt.Sprintf("recipe %s is not cached and the remote service is unavailable", id))
}

func (s *engineService) Search(ctx context.Context, query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, error) {
	// A fresh cached result short-circuits the transport entirely.
	if results, ok := s.searchCache.Get(query, filters); ok {
		return results, nil
	}

	if s.network.Status().IsOnline {
		results, err := s.remote.Search(ctx, query, filters)
		if err == nil {
			s.searchCache.Put(query, filters, results)
			for _, r := range results {
				s.recipeCache.Put(r)
			}
			return results, nil
		}
		logrus.WithError(err).Warnf("[ENGINE] Remote search %q failed", query)
	}

	return nil, pkgError.NotCachedError(fmt.Sprintf("no cached results for %q and the remote service is unavailable", query))
}

func (s *engineService) Generate(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.GenerateResponse, error) {
	if s.network.Status().IsOnline {
		recipe, err := s.remote.Generate(ctx, req)
		if err == nil {
			s.recipeCache.Put(recipe)
			return domainRecipe.GenerateResponse{Recipe: &recipe}, nil
		}
		logrus.WithError(err).Warn("[ENGINE] Remote generation failed, queueing request")
	}

	op, err := s.EnqueueMutation(domainOffline.OpGenerate, domainOffline.GeneratePayload{Request: req})
	if err != nil {
		return domainRecipe.GenerateResponse{}, err
	}
	return domainRecipe.GenerateResponse{Queued: true, QueuedID: op.ID}, nil
}

func (s *engineService) Favorite(ctx context.Context, recipeID string) (domainRecipe.MutationResult, error) {
	// Optimistic: locally visible immediately, before any sync occurs.
	if err := s.favorites.Add(recipeID); err != nil {
		return domainRecipe.MutationResult{}, err
	}
	return s.attemptOrQueue(ctx, domainOffline.OpFavorite,
		domainOffline.FavoritePayload{RecipeID: recipeID},
		func(ctx context.Context) error { return s.remote.Favorite(ctx, recipeID) })
}

func (s *engineService) Unfavorite(ctx context.Context, recipeID string) (domainRecipe.MutationResult, error) {
	if err := s.favorites.Remove(recipeID); err != nil {
		return domainRecipe.MutationResult{}, err
	}
	return s.attemptOrQueue(ctx, domainOffline.OpUnfavorite,
		domainOffline.FavoritePayload{RecipeID: recipeID},
		func(ctx context.Context) error { return s.remote.Unfavorite(ctx, recipeID) })
}

func (s *engineService) UpdatePreferences(ctx context.Context, prefs domainRecipe.Preferences) (domainRecipe.MutationResult, error) {
	return s.attemptOrQueue(ctx, domainOffline.OpUpdatePreferences,
		domainOffline.PreferencesPayload{Preferences: prefs},
		func(ctx context.Context) error { return s.remote.UpdatePreferences(ctx, prefs) })
}

// attemptOrQueue tries the remote call while online and queues the
// operation when offline or when the attempt fails. Queueing is the only
// error path the caller sees.
func (s *engineService) attemptOrQueue(ctx context.Context, opType domainOffline.OperationType, payload any, call func(ctx context.Context) error) (domainRecipe.MutationResult, error) {
	if s.network.Status().IsOnline {
		if err := call(ctx); err == nil {
			return domainRecipe.MutationResult{}, nil
		} else {
			logrus.WithError(err).Warnf("[ENGINE] %s call failed, queueing for replay", opType)
		}
	}

	op, err := s.EnqueueMutation(opType, payload)
	if err != nil {
		return domainRecipe.MutationResult{}, err
	}
	return domainRecipe.MutationResult{Queued: true, QueuedID: op.ID}, nil
}
