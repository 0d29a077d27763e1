package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainRecipe "github.com/savora/savora/domains/recipe"
	domainRemote "github.com/savora/savora/domains/remote"
	"github.com/savora/savora/infrastructure/kvstore"
	"github.com/savora/savora/infrastructure/reachability"
	"github.com/savora/savora/ui/rest/middleware"
	"github.com/savora/savora/usecase"
)

// stubRemote answers every call with canned data so handler tests can run
// the real service stack over an in-memory store.
type stubRemote struct {
	recipes map[string]domainRecipe.Recipe
	fail    error
}

var _ domainRemote.IRemoteClient = (*stubRemote)(nil)

func (s *stubRemote) FetchRecipe(ctx context.Context, id string) (domainRecipe.Recipe, error) {
	if s.fail != nil {
		return domainRecipe.Recipe{}, s.fail
	}
	r, ok := s.recipes[id]
	if !ok {
		return domainRecipe.Recipe{ID: id, Title: "Remote " + id}, nil
	}
	return r, nil
}

func (s *stubRemote) Search(ctx context.Context, query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, error) {
	if s.fail != nil {
		return nil, s.fail
	}
	return []domainRecipe.Recipe{{ID: "found-1", Title: "Found"}}, nil
}

func (s *stubRemote) Generate(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.Recipe, error) {
	if s.fail != nil {
		return domainRecipe.Recipe{}, s.fail
	}
	return domainRecipe.Recipe{ID: "gen-1", Title: "Generated"}, nil
}

func (s *stubRemote) Favorite(ctx context.Context, recipeID string) error   { return s.fail }
func (s *stubRemote) Unfavorite(ctx context.Context, recipeID string) error { return s.fail }
func (s *stubRemote) UpdatePreferences(ctx context.Context, prefs domainRecipe.Preferences) error {
	return s.fail
}
func (s *stubRemote) ListFavorites(ctx context.Context) ([]string, error) { return nil, s.fail }

type restFixture struct {
	app     *fiber.App
	remote  *stubRemote
	monitor *reachability.Monitor
}

func newRestFixture(t *testing.T, online bool) *restFixture {
	t.Helper()

	store := kvstore.NewMemoryStore()
	remote := &stubRemote{recipes: map[string]domainRecipe.Recipe{}}
	monitor := reachability.NewMonitor(online)

	recipeCache := usecase.NewRecipeCacheService(store, 100, 10)
	searchCache := usecase.NewSearchCacheService(store, 50, time.Hour)
	queue := usecase.NewQueueService(store, 5)
	favorites := usecase.NewFavoritesService(store)
	syncSvc := usecase.NewSyncService(queue, remote, monitor, recipeCache, time.Hour)
	network := usecase.NewNetworkService(monitor, syncSvc)
	storage := usecase.NewStorageService(store, 5*1024*1024, recipeCache, searchCache, queue, favorites)
	engine := usecase.NewEngineService(recipeCache, searchCache, queue, favorites, network, syncSvc, storage, remote)

	app := fiber.New()
	app.Use(middleware.Recovery())
	InitRestRecipe(app, engine)
	InitRestNetwork(app, network)
	InitRestSync(app, syncSvc, queue)
	InitRestStorage(app, storage)

	return &restFixture{app: app, remote: remote, monitor: monitor}
}

func (f *restFixture) request(t *testing.T, method, target string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestRestGetRecipeOnline(t *testing.T) {
	f := newRestFixture(t, true)
	f.remote.recipes["r1"] = domainRecipe.Recipe{ID: "r1", Title: "Carbonara"}

	status, body := f.request(t, http.MethodGet, "/recipes/r1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SUCCESS", body["code"])

	results := body["results"].(map[string]any)
	assert.Equal(t, "Carbonara", results["title"])
}

func TestRestGetRecipeOfflineMissIs404(t *testing.T) {
	f := newRestFixture(t, false)

	status, body := f.request(t, http.MethodGet, "/recipes/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_CACHED", body["code"])
}

func TestRestListAndClearCache(t *testing.T) {
	f := newRestFixture(t, true)

	// Fetch caches the entity, so the cached listing sees it.
	status, _ := f.request(t, http.MethodGet, "/recipes/r1", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := f.request(t, http.MethodGet, "/recipes/cached", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["results"].([]any), 1)

	status, _ = f.request(t, http.MethodDelete, "/recipes/cached", nil)
	assert.Equal(t, http.StatusOK, status)

	_, body = f.request(t, http.MethodGet, "/recipes/cached", nil)
	assert.Empty(t, body["results"])
}

func TestRestSearchValidatesQuery(t *testing.T) {
	f := newRestFixture(t, true)

	status, body := f.request(t, http.MethodGet, "/recipes/search", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRestSearch(t *testing.T) {
	f := newRestFixture(t, true)

	status, body := f.request(t, http.MethodGet, "/recipes/search?q=pasta", nil)
	assert.Equal(t, http.StatusOK, status)
	results := body["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "found-1", results[0].(map[string]any)["id"])
}

func TestRestGenerateValidatesPrompt(t *testing.T) {
	f := newRestFixture(t, true)

	status, body := f.request(t, http.MethodPost, "/recipes/generate", domainRecipe.GenerateRequest{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestRestGenerateOfflineQueues(t *testing.T) {
	f := newRestFixture(t, false)

	status, body := f.request(t, http.MethodPost, "/recipes/generate",
		domainRecipe.GenerateRequest{Prompt: "a hearty stew"})
	assert.Equal(t, http.StatusOK, status)

	results := body["results"].(map[string]any)
	assert.Equal(t, true, results["queued"])
	assert.NotEmpty(t, results["queued_id"])

	status, body = f.request(t, http.MethodGet, "/sync/pending", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["results"].([]any), 1)
}

func TestRestFavoriteOfflineThenStatus(t *testing.T) {
	f := newRestFixture(t, false)

	status, body := f.request(t, http.MethodPut, "/recipes/r1/favorite", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["results"].(map[string]any)["queued"])

	status, body = f.request(t, http.MethodGet, "/recipes/r1/favorite", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["results"].(map[string]any)["is_favorite"])
}

func TestRestNetworkOverrideTriggersState(t *testing.T) {
	f := newRestFixture(t, true)

	status, body := f.request(t, http.MethodGet, "/network", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["results"].(map[string]any)["is_online"])

	status, body = f.request(t, http.MethodPut, "/network", map[string]any{"online": false})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["results"].(map[string]any)["is_online"])
	assert.False(t, f.monitor.Online())
}

func TestRestSyncNowOfflineSkips(t *testing.T) {
	f := newRestFixture(t, false)

	status, body := f.request(t, http.MethodPost, "/sync", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["results"].(map[string]any)["started"])
}

func TestRestStorageUsageAndClear(t *testing.T) {
	f := newRestFixture(t, true)

	status, _ := f.request(t, http.MethodGet, "/recipes/r1", nil)
	require.Equal(t, http.StatusOK, status)

	status, body := f.request(t, http.MethodGet, "/storage", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Greater(t, body["results"].(map[string]any)["used"].(float64), 0.0)

	status, _ = f.request(t, http.MethodPost, "/storage/clear", nil)
	assert.Equal(t, http.StatusOK, status)

	_, body = f.request(t, http.MethodGet, "/storage", nil)
	assert.Equal(t, 0.0, body["results"].(map[string]any)["used"].(float64))
}
