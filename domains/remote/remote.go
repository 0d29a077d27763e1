package remote

import (
	"context"

	domainRecipe "github.com/savora/savora/domains/recipe"
)

// IRemoteClient is the transport boundary to the recipe service. One method
// per operation shape; the same calls serve both direct attempts and queued
// replay. Implementations must bound every call with a timeout and must
// distinguish an unreachable service (pkg/error.UnreachableError) from a
// reached-but-failing one (pkg/error.RemoteFailureError).
type IRemoteClient interface {
	FetchRecipe(ctx context.Context, id string) (domainRecipe.Recipe, error)
	Search(ctx context.Context, query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, error)
	Generate(ctx context.Context, req domainRecipe.GenerateRequest) (domainRecipe.Recipe, error)
	Favorite(ctx context.Context, recipeID string) error
	Unfavorite(ctx context.Context, recipeID string) error
	UpdatePreferences(ctx context.Context, prefs domainRecipe.Preferences) error
	ListFavorites(ctx context.Context) ([]string, error)
}
