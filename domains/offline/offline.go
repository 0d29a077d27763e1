package offline

import (
	"context"
	"encoding/json"
	"time"

	domainRecipe "github.com/savora/savora/domains/recipe"
)

// OperationType enumerates the mutating calls that can be queued for replay.
type OperationType string

const (
	OpFavorite          OperationType = "favorite"
	OpUnfavorite        OperationType = "unfavorite"
	OpGenerate          OperationType = "generate"
	OpUpdatePreferences OperationType = "update_preferences"
)

// Valid reports whether t is one of the four known operation types.
func (t OperationType) Valid() bool {
	switch t {
	case OpFavorite, OpUnfavorite, OpGenerate, OpUpdatePreferences:
		return true
	}
	return false
}

// FavoritePayload backs OpFavorite and OpUnfavorite.
type FavoritePayload struct {
	RecipeID string `json:"recipe_id"`
}

// GeneratePayload backs OpGenerate.
type GeneratePayload struct {
	Request domainRecipe.GenerateRequest `json:"request"`
}

// PreferencesPayload backs OpUpdatePreferences.
type PreferencesPayload struct {
	Preferences domainRecipe.Preferences `json:"preferences"`
}

// PendingOperation is one queued mutation. Payload is the JSON encoding of
// the payload struct matching Type, so the queue round-trips through the
// local store without type confusion at replay time.
type PendingOperation struct {
	ID         string          `json:"id"`
	Type       OperationType   `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueued_at"`
	RetryCount int             `json:"retry_count"`
}

// PermanentFailure reports an operation dropped after exhausting its retry
// budget. Emitted exactly once per dropped operation.
type PermanentFailure struct {
	Operation PendingOperation `json:"operation"`
	Reason    string           `json:"reason"`
	FailedAt  time.Time        `json:"failed_at"`
}

// ReplayFunc replays one queued operation against the remote service.
type ReplayFunc func(ctx context.Context, op PendingOperation) error

// FailureHandler receives permanent failures from the queue.
type FailureHandler func(f PermanentFailure)

type IQueueUsecase interface {
	Enqueue(opType OperationType, payload any) (PendingOperation, error)
	Drain(ctx context.Context, replay ReplayFunc) DrainReport
	Snapshot() []PendingOperation
	Len() int
	OnPermanentFailure(h FailureHandler)
	Clear()
}

// DrainReport summarizes one pass over the queue snapshot.
type DrainReport struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Retried   int `json:"retried"`
	Dropped   int `json:"dropped"`
}

type IFavoritesUsecase interface {
	Add(recipeID string) error
	Remove(recipeID string) error
	Contains(recipeID string) bool
	All() []string
	MergeConfirmed(recipeIDs []string)
	Clear()
}
