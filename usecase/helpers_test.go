package usecase

import (
	"context"
	"sync"
	"time"

	domainRecipe "github.com/savora/savora/domains/recipe"
	domainRemote "github.com/savora/savora/domains/remote"
)

// fakeClock drives the injected now func deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// fakeRemote is the transport double. Unset func fields succeed with zero
// values; call counts are recorded per method.
type fakeRemote struct {
	mu sync.Mutex

	FetchRecipeFn       func(ctx context.Context, id string) (domainRecipe.Recipe, error)
	SearchFn            func(ctx context.Context, query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, error)
	GenerateFn          func(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.Recipe, error)
	FavoriteFn          func(ctx context.Context, recipeID string) error
	UnfavoriteFn        func(ctx context.Context, recipeID string) error
	UpdatePreferencesFn func(ctx context.Context, prefs domainRecipe.Preferences) error
	ListFavoritesFn     func(ctx context.Context) ([]string, error)

	calls map[string]int
}

var _ domainRemote.IRemoteClient = (*fakeRemote)(nil)

func newFakeRemote() *fakeRemote {
	return &fakeRemote{calls: make(map[string]int)}
}

func (f *fakeRemote) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
}

func (f *fakeRemote) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeRemote) FetchRecipe(ctx context.Context, id string) (domainRecipe.Recipe, error) {
	f.record("FetchRecipe")
	if f.FetchRecipeFn != nil {
		return f.FetchRecipeFn(ctx, id)
	}
	return domainRecipe.Recipe{ID: id}, nil
}

func (f *fakeRemote) Search(ctx context.Context, query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, error) {
	f.record("Search")
	if f.SearchFn != nil {
		return f.SearchFn(ctx, query, filters)
	}
	return nil, nil
}

func (f *fakeRemote) Generate(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.Recipe, error) {
	f.record("Generate")
	if f.GenerateFn != nil {
		return f.GenerateFn(ctx, req)
	}
	return domainRecipe.Recipe{ID: "generated"}, nil
}

func (f *fakeRemote) Favorite(ctx context.Context, recipeID string) error {
	f.record("Favorite")
	if f.FavoriteFn != nil {
		return f.FavoriteFn(ctx, recipeID)
	}
	return nil
}

func (f *fakeRemote) Unfavorite(ctx context.Context, recipeID string) error {
	f.record("Unfavorite")
	if f.UnfavoriteFn != nil {
		return f.UnfavoriteFn(ctx, recipeID)
	}
	return nil
}

func (f *fakeRemote) UpdatePreferences(ctx context.Context, prefs domainRecipe.Preferences) error {
	f.record("UpdatePreferences")
	if f.UpdatePreferencesFn != nil {
		return f.UpdatePreferencesFn(ctx, prefs)
	}
	return nil
}

func (f *fakeRemote) ListFavorites(ctx context.Context) ([]string, error) {
	f.record("ListFavorites")
	if f.ListFavoritesFn != nil {
		return f.ListFavoritesFn(ctx)
	}
	return nil, nil
}

func testRecipe(id string) domainRecipe.Recipe {
	return domainRecipe.Recipe{
		ID:          id,
		Title:       "Recipe " + id,
		Cuisine:     "Italian",
		Ingredients: []string{"flour", "water"},
		Steps:       []string{"mix", "bake"},
		Tags:        []string{"easy"},
		Servings:    2,
	}
}
