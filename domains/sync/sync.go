package sync

import (
	"context"
	"time"

	domainOffline "github.com/savora/savora/domains/offline"
)

// Report is the outcome of one drain cycle.
type Report struct {
	StartedAt time.Time                 `json:"started_at"`
	Duration  time.Duration             `json:"duration"`
	Drain     domainOffline.DrainReport `json:"drain"`
}

type ISyncUsecase interface {
	// Start launches the periodic drain loop; it stops when ctx is done.
	Start(ctx context.Context)
	// SyncNow requests an immediate drain. Returns false when a drain is
	// already running (the trigger is a no-op then).
	SyncNow(ctx context.Context) bool
	InProgress() bool
	LastReport() (Report, bool)
}
