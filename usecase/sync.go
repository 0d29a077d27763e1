package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	domainOffline "github.com/savora/savora/domains/offline"
	domainRecipe "github.com/savora/savora/domains/recipe"
	domainRemote "github.com/savora/savora/domains/remote"
	domainSync "github.com/savora/savora/domains/sync"
	"github.com/savora/savora/infrastructure/reachability"
	"github.com/sirupsen/logrus"
)

// syncService orchestrates queue replay. Drains are triggered by the
// reachability monitor flipping to online, by the periodic ticker while
// online, and by explicit SyncNow calls. Only one drain runs at a time: the
// guard is an atomic flag, and a trigger landing mid-drain is a no-op —
// whatever was enqueued meanwhile is outside the running drain's snapshot
// and waits for the next cycle.
type syncService struct {
	queue       domainOffline.IQueueUsecase
	remote      domainRemote.IRemoteClient
	monitor     *reachability.Monitor
	recipeCache domainRecipe.IRecipeCacheUsecase
	interval    time.Duration

	inProgress atomic.Bool
	mu         sync.Mutex
	runCtx     context.Context
	lastReport domainSync.Report
	hasReport  bool
	now        func() time.Time
}

func NewSyncService(
	queue domainOffline.IQueueUsecase,
	remote domainRemote.IRemoteClient,
	monitor *reachability.Monitor,
	recipeCache domainRecipe.IRecipeCacheUsecase,
	interval time.Duration,
) domainSync.ISyncUsecase {
	return &syncService{
		queue:       queue,
		remote:      remote,
		monitor:     monitor,
		recipeCache: recipeCache,
		interval:    interval,
		now:         time.Now,
	}
}

// Start subscribes to reachability transitions and runs the periodic drain
// loop until ctx is done.
func (s *syncService) Start(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()

	unsubscribe := s.monitor.Subscribe(func(online bool) {
		if !online {
			return
		}
		// Replay must not block the notifier.
		go s.SyncNow(ctx)
	})

	go func() {
		defer unsubscribe()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		logrus.Infof("[SYNC] Coordinator started, periodic drain every %s", s.interval)
		for {
			select {
			case <-ctx.Done():
				logrus.Info("[SYNC] Coordinator stopped")
				return
			case <-ticker.C:
				s.SyncNow(ctx)
			}
		}
	}()
}

// SyncNow drains the pending queue once. Returns false when offline, when
// another drain is already running, or when the coordinator has been stopped.
func (s *syncService) SyncNow(ctx context.Context) bool {
	if !s.monitor.Online() {
		logrus.Debug("[SYNC] Drain skipped: offline")
		return false
	}
	// After shutdown a drain would only fail its replays on a dead context;
	// skip it so no retry budget is spent.
	s.mu.Lock()
	runCtx := s.runCtx
	s.mu.Unlock()
	if runCtx != nil && runCtx.Err() != nil {
		logrus.Debug("[SYNC] Drain skipped: coordinator stopped")
		return false
	}
	if !s.inProgress.CompareAndSwap(false, true) {
		logrus.Debug("[SYNC] Drain skipped: already in progress")
		return false
	}
	defer s.inProgress.Store(false)

	if s.queue.Len() == 0 {
		return true
	}

	started := s.now()
	logrus.Infof("[SYNC] Draining %d pending operations", s.queue.Len())
	drain := s.queue.Drain(ctx, s.dispatch)

	report := domainSync.Report{
		StartedAt: started,
		Duration:  s.now().Sub(started),
		Drain:     drain,
	}
	s.mu.Lock()
	s.lastReport = report
	s.hasReport = true
	s.mu.Unlock()

	logrus.Infof("[SYNC] Drain finished: %d attempted, %d succeeded, %d retried, %d dropped",
		drain.Attempted, drain.Succeeded, drain.Retried, drain.Dropped)
	return true
}

// dispatch maps one queued operation onto its remote call shape.
func (s *syncService) dispatch(ctx context.Context, op domainOffline.PendingOperation) error {
	switch op.Type {
	case domainOffline.OpFavorite:
		var payload domainOffline.FavoritePayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode favorite payload: %w", err)
		}
		return s.remote.Favorite(ctx, payload.RecipeID)

	case domainOffline.OpUnfavorite:
		var payload domainOffline.FavoritePayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode unfavorite payload: %w", err)
		}
		return s.remote.Unfavorite(ctx, payload.RecipeID)

	case domainOffline.OpGenerate:
		var payload domainOffline.GeneratePayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode generate payload: %w", err)
		}
		recipe, err := s.remote.Generate(ctx, payload.Request)
		if err != nil {
			return err
		}
		s.recipeCache.Put(recipe)
		return nil

	case domainOffline.OpUpdatePreferences:
		var payload domainOffline.PreferencesPayload
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode preferences payload: %w", err)
		}
		return s.remote.UpdatePreferences(ctx, payload.Preferences)
	}

	// Enqueue validates types, so this only happens on corrupt storage.
	logrus.Errorf("[SYNC] FATAL: unknown operation type %q for operation %s", op.Type, op.ID)
	return fmt.Errorf("unknown operation type %q", op.Type)
}

func (s *syncService) InProgress() bool {
	return s.inProgress.Load()
}

func (s *syncService) LastReport() (domainSync.Report, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport, s.hasReport
}
