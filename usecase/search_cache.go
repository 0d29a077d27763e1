package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	domainRecipe "github.com/savora/savora/domains/recipe"
	"github.com/savora/savora/infrastructure/kvstore"
	"github.com/sirupsen/logrus"
)

const searchKeyPrefix = "searches:"

// searchCacheService caches prior search result lists under a composite
// (query, filters) key. Entries are bounded two ways: by count, evicting
// oldest-by-timestamp, and by age, treating anything older than the TTL as
// absent. Relevance decays with time even when capacity is free, so the TTL
// keeps stale ranked results from being served confidently.
type searchCacheService struct {
	mu         sync.Mutex
	entries    map[string]*domainRecipe.CachedSearch
	store      kvstore.Store
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

func NewSearchCacheService(store kvstore.Store, maxEntries int, ttl time.Duration) domainRecipe.ISearchCacheUsecase {
	s := &searchCacheService{
		entries:    make(map[string]*domainRecipe.CachedSearch),
		store:      store,
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
	s.load()
	return s
}

func (s *searchCacheService) load() {
	ctx := context.Background()
	keys, err := s.store.Keys(ctx, searchKeyPrefix)
	if err != nil {
		logrus.WithError(err).Warn("[SEARCH_CACHE] Failed to list persisted entries, starting empty")
		return
	}
	for _, key := range keys {
		raw, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var entry domainRecipe.CachedSearch
		if err := json.Unmarshal(raw, &entry); err != nil {
			logrus.WithError(err).Warnf("[SEARCH_CACHE] Dropping corrupt entry %s", key)
			_ = s.store.Delete(ctx, key)
			continue
		}
		s.entries[entry.Key] = &entry
	}
}

// SearchCacheKey derives the composite key from the normalized query text
// and the canonically serialized filter set.
func SearchCacheKey(query string, filters domainRecipe.SearchFilters) string {
	canonical := filters
	canonical.Cuisines = sortedCopy(filters.Cuisines)
	canonical.Tags = sortedCopy(filters.Tags)
	raw, _ := json.Marshal(canonical)
	return normalizeQuery(query) + "|" + string(raw)
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func (s *searchCacheService) Put(query string, filters domainRecipe.SearchFilters, results []domainRecipe.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := SearchCacheKey(query, filters)
	entry := &domainRecipe.CachedSearch{
		Key:       key,
		Query:     query,
		Filters:   filters,
		Results:   cloneRecipes(results),
		Timestamp: s.now(),
	}
	s.entries[key] = entry

	s.evictOverflowLocked()
	s.persistLocked(entry)
}

func (s *searchCacheService) Get(query string, filters domainRecipe.SearchFilters) ([]domainRecipe.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := SearchCacheKey(query, filters)
	entry, ok := s.entries[key]
	if !ok {
		return nil, false
	}

	// Stale entries are treated as absent and purged on access.
	if s.now().Sub(entry.Timestamp) >= s.ttl {
		s.deleteLocked(key)
		return nil, false
	}

	return cloneRecipes(entry.Results), true
}

func (s *searchCacheService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *searchCacheService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.entries {
		s.deleteLocked(key)
	}
}

func (s *searchCacheService) deleteLocked(key string) {
	delete(s.entries, key)
	if err := s.store.Delete(context.Background(), searchKeyPrefix+key); err != nil {
		logrus.WithError(err).Debugf("[SEARCH_CACHE] Failed to delete persisted entry %q", key)
	}
}

func (s *searchCacheService) evictOverflowLocked() {
	overflow := len(s.entries) - s.maxEntries
	if overflow <= 0 {
		return
	}

	order := make([]*domainRecipe.CachedSearch, 0, len(s.entries))
	for _, entry := range s.entries {
		order = append(order, entry)
	}
	sort.Slice(order, func(i, j int) bool {
		if !order[i].Timestamp.Equal(order[j].Timestamp) {
			return order[i].Timestamp.Before(order[j].Timestamp)
		}
		return order[i].Key < order[j].Key
	})

	for _, entry := range order[:overflow] {
		s.deleteLocked(entry.Key)
		logrus.Debugf("[SEARCH_CACHE] Evicted %q (cached %s)", entry.Query, entry.Timestamp)
	}
}

func (s *searchCacheService) persistLocked(entry *domainRecipe.CachedSearch) {
	raw, err := json.Marshal(entry)
	if err != nil {
		logrus.WithError(err).Errorf("[SEARCH_CACHE] Failed to encode entry %q", entry.Key)
		return
	}
	if err := s.store.Set(context.Background(), searchKeyPrefix+entry.Key, raw); err != nil {
		logrus.WithError(err).Warnf("[SEARCH_CACHE] Persist failed for %q, keeping it memory-only", entry.Query)
	}
}

func cloneRecipes(in []domainRecipe.Recipe) []domainRecipe.Recipe {
	if in == nil {
		return nil
	}
	out := make([]domainRecipe.Recipe, len(in))
	for i, r := range in {
		out[i] = cloneRecipe(r)
	}
	return out
}
