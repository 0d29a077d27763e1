package config

import "time"

var (
	AppVersion             = "v1.0.0"
	AppPort                = "3000"
	AppDebug               = false
	AppBasicAuthCredential []string
	AppBasePath            = ""

	// Local durable store. Driver is "sqlite" or "postgres"; for sqlite the
	// Name is the database file path.
	DBDriver   = "sqlite"
	DBName     = "storages/engine.db"
	DBHost     = "localhost"
	DBPort     = 5432
	DBUser     = "savora"
	DBPassword = ""

	// Remote recipe service.
	RemoteBaseURL = "http://localhost:8080"
	RemoteToken   = ""
	RemoteTimeout = 15 * time.Second

	// Recipe cache: at most CacheMaxRecipes live entries; overflow evicts
	// the least-recently-accessed. CacheEvictBatch entries are dropped in
	// one go when a persistence write fails for lack of space.
	CacheMaxRecipes = 100
	CacheEvictBatch = 10

	// Search cache: bounded by count and by age.
	SearchCacheMaxEntries = 50
	SearchCacheTTL        = time.Hour

	// Pending mutation queue.
	QueueMaxRetries = 5

	// Sync coordinator: periodic drain interval while online.
	SyncInterval = 5 * time.Minute

	// Reachability prober.
	ProbeEnabled  = true
	ProbeInterval = 30 * time.Second

	// Assumed capacity of the local store, for usage reporting.
	StorageCapacityBytes int64 = 5 * 1024 * 1024
)
