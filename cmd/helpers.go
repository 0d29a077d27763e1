package cmd

import (
	"context"

	globalConfig "github.com/savora/savora/config"
	domainEngine "github.com/savora/savora/domains/engine"
	domainNetwork "github.com/savora/savora/domains/network"
	domainOffline "github.com/savora/savora/domains/offline"
	domainStorage "github.com/savora/savora/domains/storage"
	domainSync "github.com/savora/savora/domains/sync"
	"github.com/savora/savora/infrastructure/kvstore"
	"github.com/savora/savora/infrastructure/reachability"
	"github.com/savora/savora/infrastructure/recipeapi"
	"github.com/savora/savora/usecase"
	"github.com/sirupsen/logrus"
)

var (
	// Usecase
	engineUsecase  domainEngine.IEngineUsecase
	networkUsecase domainNetwork.INetworkUsecase
	syncUsecase    domainSync.ISyncUsecase
	queueUsecase   domainOffline.IQueueUsecase
	storageUsecase domainStorage.IStorageUsecase

	// Infrastructure
	engineStore   kvstore.Store
	engineMonitor *reachability.Monitor

	// Lifecycle of the background work (sync loop, prober)
	backgroundCtx    context.Context
	backgroundCancel context.CancelFunc
)

// initEngine builds the engine instance from its injected collaborators and
// starts the background sync and probe loops.
func initEngine() {
	store, err := kvstore.NewGormStore(kvstore.GormConfig{
		Driver:   globalConfig.DBDriver,
		Name:     globalConfig.DBName,
		Host:     globalConfig.DBHost,
		Port:     globalConfig.DBPort,
		User:     globalConfig.DBUser,
		Password: globalConfig.DBPassword,
	})
	if err != nil {
		logrus.Fatalf("[ENGINE] Failed to open local store: %v", err)
	}
	engineStore = store

	engineMonitor = reachability.NewMonitor(true)

	remoteClient := recipeapi.NewClient(
		globalConfig.RemoteBaseURL,
		globalConfig.RemoteTimeout,
		func(ctx context.Context) (string, error) {
			return globalConfig.RemoteToken, nil
		},
	)

	recipeCache := usecase.NewRecipeCacheService(store, globalConfig.CacheMaxRecipes, globalConfig.CacheEvictBatch)
	searchCache := usecase.NewSearchCacheService(store, globalConfig.SearchCacheMaxEntries, globalConfig.SearchCacheTTL)
	queueUsecase = usecase.NewQueueService(store, globalConfig.QueueMaxRetries)
	favorites := usecase.NewFavoritesService(store)

	queueUsecase.OnPermanentFailure(func(f domainOffline.PermanentFailure) {
		logrus.Errorf("[ENGINE] Permanent failure: %s operation %s dropped: %s",
			f.Operation.Type, f.Operation.ID, f.Reason)
	})

	syncUsecase = usecase.NewSyncService(queueUsecase, remoteClient, engineMonitor, recipeCache, globalConfig.SyncInterval)
	networkUsecase = usecase.NewNetworkService(engineMonitor, syncUsecase)
	storageUsecase = usecase.NewStorageService(store, globalConfig.StorageCapacityBytes, recipeCache, searchCache, queueUsecase, favorites)

	engineUsecase = usecase.NewEngineService(
		recipeCache, searchCache, queueUsecase, favorites,
		networkUsecase, syncUsecase, storageUsecase, remoteClient,
	)

	backgroundCtx, backgroundCancel = context.WithCancel(context.Background())
	syncUsecase.Start(backgroundCtx)

	if globalConfig.ProbeEnabled {
		prober, err := reachability.NewProber(engineMonitor, globalConfig.RemoteBaseURL, globalConfig.ProbeInterval)
		if err != nil {
			logrus.Warnf("[ENGINE] Invalid remote URL %q, reachability probing disabled: %v", globalConfig.RemoteBaseURL, err)
		} else {
			prober.Start(backgroundCtx)
		}
	}

	logrus.Infof("[ENGINE] Initialized (remote: %s, store: %s/%s)",
		globalConfig.RemoteBaseURL, globalConfig.DBDriver, globalConfig.DBName)
}

// stopEngine cancels background work and closes the local store.
func stopEngine() {
	if backgroundCancel != nil {
		backgroundCancel()
	}
	if engineStore != nil {
		if err := engineStore.Close(); err != nil {
			logrus.Errorf("[ENGINE] Error closing local store: %v", err)
		}
	}
	logrus.Info("[ENGINE] Stopped")
}
