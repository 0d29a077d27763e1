package engine

import (
	"context"

	domainNetwork "github.com/savora/savora/domains/network"
	domainOffline "github.com/savora/savora/domains/offline"
	domainRecipe "github.com/savora/savora/domains/recipe"
	domainStorage "github.com/savora/savora/domains/storage"
)

// IEngineUsecase is the full operation surface of the offline engine:
// cache accessors, network status, offline favorites, the mutation queue,
// and the composite read/mutate paths that prefer fresh remote data and
// degrade to cache or queueing.
type IEngineUsecase interface {
	// Cache accessors.
	CacheRecipe(r domainRecipe.Recipe)
	GetCachedRecipe(id string) (domainRecipe.Recipe, bool)
	ListCachedRecipes() []domainRecipe.CachedRecipe
	ClearCache()
	CacheSearch(query string, filters domainRecipe.SearchFilters, results []domainRecipe.Recipe)
	GetCachedSearch(query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, bool)

	// Network.
	NetworkStatus() domainNetwork.Status
	OnNetworkChange(l domainNetwork.Listener) (unsubscribe func())

	// Queue and sync.
	EnqueueMutation(opType domainOffline.OperationType, payload any) (domainOffline.PendingOperation, error)
	SyncNow(ctx context.Context) bool

	// Offline favorites.
	AddOfflineFavorite(recipeID string) error
	RemoveOfflineFavorite(recipeID string) error
	IsOfflineFavorite(recipeID string) bool
	// RefreshFavorites merges the server-confirmed favorite set into the
	// local one (union semantics).
	RefreshFavorites(ctx context.Context) error

	// Storage.
	StorageUsage(ctx context.Context) (domainStorage.Stats, error)

	// Composite paths.
	GetRecipe(ctx context.Context, id string) (domainRecipe.Recipe, error)
	Search(ctx context.Context, query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, error)
	Generate(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.GenerateResponse, error)
	Favorite(ctx context.Context, recipeID string) (domainRecipe.MutationResult, error)
	Unfavorite(ctx context.Context, recipeID string) (domainRecipe.MutationResult, error)
	UpdatePreferences(ctx context.Context, prefs domainRecipe.Preferences) (domainRecipe.MutationResult, error)
}
