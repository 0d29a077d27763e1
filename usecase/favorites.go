package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	domainOffline "github.com/savora/savora/domains/offline"
	"github.com/savora/savora/infrastructure/kvstore"
	"github.com/sirupsen/logrus"
)

const favoritesKey = "favorites"

// favoritesService is the locally visible favorite set: the union of
// server-confirmed state (merged in when fetched) and offline toggles not
// yet replayed. It answers "is favorited" before the remote state is
// confirmed.
type favoritesService struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	store kvstore.Store
}

func NewFavoritesService(store kvstore.Store) domainOffline.IFavoritesUsecase {
	s := &favoritesService{
		ids:   make(map[string]struct{}),
		store: store,
	}
	s.load()
	return s
}

func (s *favoritesService) load() {
	raw, err := s.store.Get(context.Background(), favoritesKey)
	if err != nil {
		if err != kvstore.ErrNotFound {
			logrus.WithError(err).Warn("[FAVORITES] Failed to read persisted set, starting empty")
		}
		return
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		logrus.WithError(err).Warn("[FAVORITES] Persisted set is corrupt, starting empty")
		return
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *favoritesService) Add(recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids[recipeID] = struct{}{}
	s.persistLocked()
	return nil
}

func (s *favoritesService) Remove(recipeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ids, recipeID)
	s.persistLocked()
	return nil
}

func (s *favoritesService) Contains(recipeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[recipeID]
	return ok
}

func (s *favoritesService) All() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// MergeConfirmed unions server-confirmed favorites into the local set.
func (s *favoritesService) MergeConfirmed(recipeIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range recipeIDs {
		s.ids[id] = struct{}{}
	}
	s.persistLocked()
}

// Clear empties the set. Only used by the full storage reset.
func (s *favoritesService) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = make(map[string]struct{})
	if err := s.store.Delete(context.Background(), favoritesKey); err != nil {
		logrus.WithError(err).Warn("[FAVORITES] Failed to delete persisted set")
	}
}

func (s *favoritesService) persistLocked() {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	raw, err := json.Marshal(ids)
	if err != nil {
		logrus.WithError(err).Error("[FAVORITES] Failed to encode set")
		return
	}
	if err := s.store.Set(context.Background(), favoritesKey, raw); err != nil {
		logrus.WithError(err).Warn("[FAVORITES] Persist failed, keeping set memory-only")
	}
}
