package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	domainRecipe "github.com/savora/savora/domains/recipe"
	"github.com/savora/savora/infrastructure/kvstore"
	"github.com/sirupsen/logrus"
)

const recipeKeyPrefix = "recipes:"

// recipeCacheService is the bounded, recency-ordered cache of recipes.
// Capacity overflow evicts the least-recently-accessed entries; persistence
// is write-through and best-effort, so a failing local store degrades the
// cache to memory-only instead of breaking the read path.
type recipeCacheService struct {
	mu         sync.Mutex
	entries    map[string]*domainRecipe.CachedRecipe
	store      kvstore.Store
	maxEntries int
	evictBatch int
	seq        uint64
	now        func() time.Time
}

func NewRecipeCacheService(store kvstore.Store, maxEntries, evictBatch int) domainRecipe.IRecipeCacheUsecase {
	s := &recipeCacheService{
		entries:    make(map[string]*domainRecipe.CachedRecipe),
		store:      store,
		maxEntries: maxEntries,
		evictBatch: evictBatch,
		now:        time.Now,
	}
	s.load()
	return s
}

// load restores persisted entries. A failing store only costs the warm
// start, never the service.
func (s *recipeCacheService) load() {
	ctx := context.Background()
	keys, err := s.store.Keys(ctx, recipeKeyPrefix)
	if err != nil {
		logrus.WithError(err).Warn("[RECIPE_CACHE] Failed to list persisted entries, starting empty")
		return
	}
	for _, key := range keys {
		raw, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var entry domainRecipe.CachedRecipe
		if err := json.Unmarshal(raw, &entry); err != nil {
			logrus.WithError(err).Warnf("[RECIPE_CACHE] Dropping corrupt entry %s", key)
			_ = s.store.Delete(ctx, key)
			continue
		}
		s.entries[entry.CacheKey] = &entry
		if entry.Seq >= s.seq {
			s.seq = entry.Seq + 1
		}
	}
	if len(s.entries) > 0 {
		logrus.Infof("[RECIPE_CACHE] Restored %d cached recipes", len(s.entries))
	}
}

func (s *recipeCacheService) Put(r domainRecipe.Recipe) {
	if r.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry, exists := s.entries[r.ID]
	if exists {
		entry.Recipe = cloneRecipe(r)
		entry.LastAccessedAt = now
	} else {
		entry = &domainRecipe.CachedRecipe{
			CacheKey:       r.ID,
			Recipe:         cloneRecipe(r),
			CachedAt:       now,
			LastAccessedAt: now,
			Seq:            s.seq,
		}
		s.seq++
		s.entries[r.ID] = entry
	}

	s.evictOverflowLocked()
	s.persistLocked(entry)
}

func (s *recipeCacheService) Get(id string) (domainRecipe.Recipe, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return domainRecipe.Recipe{}, false
	}

	// A hit counts as access and moves the entry up in eviction order.
	entry.LastAccessedAt = s.now()
	s.persistLocked(entry)

	return cloneRecipe(entry.Recipe), true
}

func (s *recipeCacheService) List() []domainRecipe.CachedRecipe {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domainRecipe.CachedRecipe, 0, len(s.entries))
	for _, entry := range s.entries {
		cp := *entry
		cp.Recipe = cloneRecipe(entry.Recipe)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastAccessedAt.Equal(out[j].LastAccessedAt) {
			return out[i].LastAccessedAt.After(out[j].LastAccessedAt)
		}
		return out[i].Seq > out[j].Seq
	})
	return out
}

func (s *recipeCacheService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *recipeCacheService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	for id := range s.entries {
		if err := s.store.Delete(ctx, recipeKeyPrefix+id); err != nil {
			logrus.WithError(err).Debugf("[RECIPE_CACHE] Failed to delete persisted entry %s", id)
		}
	}
	s.entries = make(map[string]*domainRecipe.CachedRecipe)
}

// evictOverflowLocked restores the capacity bound by removing exactly the
// overflow count of least-recently-accessed entries.
func (s *recipeCacheService) evictOverflowLocked() {
	overflow := len(s.entries) - s.maxEntries
	if overflow <= 0 {
		return
	}
	s.evictLocked(overflow)
}

// evictLocked removes the n least-recently-accessed entries, ties broken by
// insertion order.
func (s *recipeCacheService) evictLocked(n int) {
	victims := s.lruOrderLocked()
	if n > len(victims) {
		n = len(victims)
	}

	ctx := context.Background()
	for _, entry := range victims[:n] {
		delete(s.entries, entry.CacheKey)
		if err := s.store.Delete(ctx, recipeKeyPrefix+entry.CacheKey); err != nil {
			logrus.WithError(err).Debugf("[RECIPE_CACHE] Failed to delete evicted entry %s", entry.CacheKey)
		}
		logrus.Debugf("[RECIPE_CACHE] Evicted %s (last accessed %s)", entry.CacheKey, entry.LastAccessedAt)
	}
}

func (s *recipeCacheService) lruOrderLocked() []*domainRecipe.CachedRecipe {
	order := make([]*domainRecipe.CachedRecipe, 0, len(s.entries))
	for _, entry := range s.entries {
		order = append(order, entry)
	}
	sort.Slice(order, func(i, j int) bool {
		if !order[i].LastAccessedAt.Equal(order[j].LastAccessedAt) {
			return order[i].LastAccessedAt.Before(order[j].LastAccessedAt)
		}
		return order[i].Seq < order[j].Seq
	})
	return order
}

// persistLocked writes the entry through to the local store. Failures are
// swallowed: on the first one a batch of least-recently-accessed entries is
// dropped to free space and the write retried once, then the cache carries
// on memory-only.
func (s *recipeCacheService) persistLocked(entry *domainRecipe.CachedRecipe) {
	ctx := context.Background()
	raw, err := json.Marshal(entry)
	if err != nil {
		logrus.WithError(err).Errorf("[RECIPE_CACHE] Failed to encode entry %s", entry.CacheKey)
		return
	}

	if err := s.store.Set(ctx, recipeKeyPrefix+entry.CacheKey, raw); err == nil {
		return
	} else {
		logrus.WithError(err).Warnf("[RECIPE_CACHE] Persist failed for %s, evicting %d entries and retrying", entry.CacheKey, s.evictBatch)
	}

	s.evictLocked(s.evictBatch)
	if _, still := s.entries[entry.CacheKey]; !still {
		// The entry itself fell in the eviction batch.
		return
	}
	if err := s.store.Set(ctx, recipeKeyPrefix+entry.CacheKey, raw); err != nil {
		logrus.WithError(err).Warnf("[RECIPE_CACHE] Persist retry failed for %s, keeping it memory-only", entry.CacheKey)
	}
}

func cloneRecipe(r domainRecipe.Recipe) domainRecipe.Recipe {
	cp := r
	cp.Ingredients = append([]string(nil), r.Ingredients...)
	cp.Steps = append([]string(nil), r.Steps...)
	cp.Tags = append([]string(nil), r.Tags...)
	return cp
}
