package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainOffline "github.com/savora/savora/domains/offline"
	domainRecipe "github.com/savora/savora/domains/recipe"
	"github.com/savora/savora/infrastructure/kvstore"
	"github.com/savora/savora/infrastructure/reachability"
)

type syncFixture struct {
	svc         *syncService
	queue       domainOffline.IQueueUsecase
	remote      *fakeRemote
	monitor     *reachability.Monitor
	recipeCache domainRecipe.IRecipeCacheUsecase
}

func newSyncFixture(t *testing.T, online bool) *syncFixture {
	t.Helper()
	store := kvstore.NewMemoryStore()
	queue := newTestQueue(t, store, 5)
	remote := newFakeRemote()
	monitor := reachability.NewMonitor(online)
	recipeCache, _ := newTestRecipeCache(t, store, 100, 10)

	svc, ok := NewSyncService(queue, remote, monitor, recipeCache, time.Hour).(*syncService)
	require.True(t, ok)
	svc.now = newFakeClock().Now

	return &syncFixture{svc: svc, queue: queue, remote: remote, monitor: monitor, recipeCache: recipeCache}
}

func TestSyncNowSkipsWhileOffline(t *testing.T) {
	f := newSyncFixture(t, false)

	_, err := f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "r1"})
	require.NoError(t, err)

	assert.False(t, f.svc.SyncNow(t.Context()))
	assert.Equal(t, 1, f.queue.Len())
	assert.Equal(t, 0, f.remote.callCount("Favorite"))
}

func TestSyncNowEmptyQueueSucceeds(t *testing.T) {
	f := newSyncFixture(t, true)

	assert.True(t, f.svc.SyncNow(t.Context()))
	_, ok := f.svc.LastReport()
	assert.False(t, ok)
}

func TestSyncNowDrainsQueue(t *testing.T) {
	f := newSyncFixture(t, true)

	_, err := f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "r1"})
	require.NoError(t, err)
	_, err = f.queue.Enqueue(domainOffline.OpUnfavorite, domainOffline.FavoritePayload{RecipeID: "r2"})
	require.NoError(t, err)
	_, err = f.queue.Enqueue(domainOffline.OpUpdatePreferences, domainOffline.PreferencesPayload{
		Preferences: domainRecipe.Preferences{SkillLevel: "beginner"},
	})
	require.NoError(t, err)

	assert.True(t, f.svc.SyncNow(t.Context()))
	assert.Equal(t, 0, f.queue.Len())
	assert.Equal(t, 1, f.remote.callCount("Favorite"))
	assert.Equal(t, 1, f.remote.callCount("Unfavorite"))
	assert.Equal(t, 1, f.remote.callCount("UpdatePreferences"))

	report, ok := f.svc.LastReport()
	require.True(t, ok)
	assert.Equal(t, domainOffline.DrainReport{Attempted: 3, Succeeded: 3}, report.Drain)
}

func TestSyncDispatchCachesGeneratedRecipe(t *testing.T) {
	f := newSyncFixture(t, true)

	f.remote.GenerateFn = func(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.Recipe, error) {
		return testRecipe("generated-1"), nil
	}

	_, err := f.queue.Enqueue(domainOffline.OpGenerate, domainOffline.GeneratePayload{
		Request: domainRecipe.GenerateRequest{Prompt: "something with leeks"},
	})
	require.NoError(t, err)

	require.True(t, f.svc.SyncNow(t.Context()))
	got, ok := f.recipeCache.Get("generated-1")
	require.True(t, ok)
	assert.Equal(t, "Recipe generated-1", got.Title)
}

func TestSyncPartialFailureRetriesUntilDrop(t *testing.T) {
	f := newSyncFixture(t, true)

	// Three operations; the middle one keeps failing.
	_, err := f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "ok-1"})
	require.NoError(t, err)
	_, err = f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "bad"})
	require.NoError(t, err)
	_, err = f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "ok-2"})
	require.NoError(t, err)

	f.remote.FavoriteFn = func(ctx context.Context, recipeID string) error {
		if recipeID == "bad" {
			return errors.New("remote rejects it")
		}
		return nil
	}

	var failures []domainOffline.PermanentFailure
	f.queue.OnPermanentFailure(func(failure domainOffline.PermanentFailure) {
		failures = append(failures, failure)
	})

	require.True(t, f.svc.SyncNow(t.Context()))
	report, _ := f.svc.LastReport()
	assert.Equal(t, domainOffline.DrainReport{Attempted: 3, Succeeded: 2, Retried: 1}, report.Drain)
	assert.Equal(t, 1, f.queue.Len())

	// Four more drains exhaust the failing operation's budget.
	for i := 0; i < 4; i++ {
		require.True(t, f.svc.SyncNow(t.Context()))
	}
	assert.Equal(t, 0, f.queue.Len())
	require.Len(t, failures, 1)
	assert.Equal(t, domainOffline.OpFavorite, failures[0].Operation.Type)
}

func TestSyncTriggersOnOnlineTransition(t *testing.T) {
	f := newSyncFixture(t, false)

	_, err := f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "r1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()
	f.svc.Start(ctx)

	f.monitor.SetOnline(true)

	require.Eventually(t, func() bool {
		return f.queue.Len() == 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, f.remote.callCount("Favorite"))
}

func TestSyncSingleFlight(t *testing.T) {
	f := newSyncFixture(t, true)

	_, err := f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "r1"})
	require.NoError(t, err)

	entered := make(chan struct{})
	release := make(chan struct{})
	f.remote.FavoriteFn = func(ctx context.Context, recipeID string) error {
		close(entered)
		<-release
		return nil
	}

	done := make(chan bool)
	go func() { done <- f.svc.SyncNow(context.Background()) }()

	<-entered
	assert.True(t, f.svc.InProgress())

	// A second trigger while the drain is running is a no-op.
	assert.False(t, f.svc.SyncNow(t.Context()))

	close(release)
	assert.True(t, <-done)
	assert.False(t, f.svc.InProgress())
}

func TestSyncNowSkipsAfterCoordinatorStop(t *testing.T) {
	f := newSyncFixture(t, true)

	_, err := f.queue.Enqueue(domainOffline.OpFavorite, domainOffline.FavoritePayload{RecipeID: "r1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	f.svc.Start(ctx)
	cancel()

	// A trigger landing after shutdown is a no-op and spends no retries.
	assert.False(t, f.svc.SyncNow(context.Background()))
	require.Equal(t, 1, f.queue.Len())
	assert.Equal(t, 0, f.queue.Snapshot()[0].RetryCount)
	assert.Equal(t, 0, f.remote.callCount("Favorite"))
}

func TestSyncDispatchUnknownTypeFails(t *testing.T) {
	f := newSyncFixture(t, true)

	err := f.svc.dispatch(t.Context(), domainOffline.PendingOperation{
		ID:   "op-1",
		Type: domainOffline.OperationType("bogus"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown operation type")
}
