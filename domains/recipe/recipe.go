package recipe

import "time"

// Recipe is the domain entity produced by the remote generation service.
type Recipe struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Cuisine     string    `json:"cuisine,omitempty"`
	Ingredients []string  `json:"ingredients"`
	Steps       []string  `json:"steps"`
	Tags        []string  `json:"tags,omitempty"`
	PrepMinutes int       `json:"prep_minutes,omitempty"`
	CookMinutes int       `json:"cook_minutes,omitempty"`
	Servings    int       `json:"servings,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// CachedRecipe wraps a recipe with its cache bookkeeping. CachedAt is set on
// first insertion only; LastAccessedAt moves on every overwrite and read hit
// and drives eviction order.
type CachedRecipe struct {
	CacheKey       string    `json:"cache_key"`
	Recipe         Recipe    `json:"recipe"`
	CachedAt       time.Time `json:"cached_at"`
	LastAccessedAt time.Time `json:"last_accessed_at"`
	Seq            uint64    `json:"seq"`
}

// SearchFilters narrows a recipe search. Zero values mean "no constraint".
type SearchFilters struct {
	Cuisines       []string `json:"cuisines,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Diet           string   `json:"diet,omitempty"`
	MaxPrepMinutes int      `json:"max_prep_minutes,omitempty"`
}

// CachedSearch holds one prior search result list under its composite key.
type CachedSearch struct {
	Key       string        `json:"key"`
	Query     string        `json:"query"`
	Filters   SearchFilters `json:"filters"`
	Results   []Recipe      `json:"results"`
	Timestamp time.Time     `json:"timestamp"`
}

// Preferences is the user's generation profile pushed to the remote service.
type Preferences struct {
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	PreferredCuisines   []string `json:"preferred_cuisines,omitempty"`
	DislikedIngredients []string `json:"disliked_ingredients,omitempty"`
	SkillLevel          string   `json:"skill_level,omitempty"`
	ServingSize         int      `json:"serving_size,omitempty"`
}

// GenerateRequest asks the remote service for a new recipe.
type GenerateRequest struct {
	Prompt      string   `json:"prompt"`
	Ingredients []string `json:"ingredients,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
}

// GenerateResponse carries either the generated recipe or, when the remote
// service was unreachable, the id of the queued operation.
type GenerateResponse struct {
	Recipe   *Recipe `json:"recipe,omitempty"`
	Queued   bool    `json:"queued"`
	QueuedID string  `json:"queued_id,omitempty"`
}

// MutationResult reports whether a mutating call reached the remote service
// directly or was queued for replay.
type MutationResult struct {
	Queued   bool   `json:"queued"`
	QueuedID string `json:"queued_id,omitempty"`
}

type IRecipeCacheUsecase interface {
	Put(r Recipe)
	Get(id string) (Recipe, bool)
	List() []CachedRecipe
	Len() int
	Clear()
}

type ISearchCacheUsecase interface {
	Put(query string, filters SearchFilters, results []Recipe)
	Get(query string, filters SearchFilters) ([]Recipe, bool)
	Len() int
	Clear()
}
