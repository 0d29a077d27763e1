package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainOffline "github.com/savora/savora/domains/offline"
	domainRecipe "github.com/savora/savora/domains/recipe"
	"github.com/savora/savora/infrastructure/kvstore"
)

func TestStorageUsageReflectsStoredBytes(t *testing.T) {
	store := kvstore.NewMemoryStore()
	recipeCache, _ := newTestRecipeCache(t, store, 100, 10)
	searchCache, _ := newTestSearchCache(t, store, 50, time.Hour)
	queue := newTestQueue(t, store, 5)
	favorites := NewFavoritesService(store)
	svc := NewStorageService(store, 1024, recipeCache, searchCache, queue, favorites)

	empty, err := svc.Usage(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Used)
	assert.Equal(t, 0.0, empty.Percentage)

	recipeCache.Put(testRecipe("r1"))

	stats, err := svc.Usage(t.Context())
	require.NoError(t, err)
	assert.Greater(t, stats.Used, int64(0))
	assert.Greater(t, stats.Percentage, 0.0)
	assert.NotEmpty(t, stats.HumanUsed)
	assert.NotEmpty(t, stats.HumanTotal)
}

func TestStorageClearAllResetsEverything(t *testing.T) {
	store := kvstore.NewMemoryStore()
	recipeCache, _ := newTestRecipeCache(t, store, 100, 10)
	searchCache, _ := newTestSearchCache(t, store, 50, time.Hour)
	queue := newTestQueue(t, store, 5)
	favorites := NewFavoritesService(store)
	svc := NewStorageService(store, 1024, recipeCache, searchCache, queue, favorites)

	recipeCache.Put(testRecipe("r1"))
	searchCache.Put("soup", domainRecipe.SearchFilters{}, []domainRecipe.Recipe{testRecipe("r1")})
	_, err := queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "r1"})
	require.NoError(t, err)
	require.NoError(t, favorites.Add("r1"))

	require.NoError(t, svc.ClearAll(t.Context()))

	assert.Equal(t, 0, recipeCache.Len())
	assert.Equal(t, 0, searchCache.Len())
	assert.Equal(t, 0, queue.Len())
	assert.False(t, favorites.Contains("r1"))

	used, err := store.Usage(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
}
