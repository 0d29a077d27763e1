package storage

import "context"

// Stats reports space consumed by the engine-owned records in the local
// store, against the assumed capacity.
type Stats struct {
	Used       int64   `json:"used"`
	Total      int64   `json:"total"`
	Percentage float64 `json:"percentage"`
	HumanUsed  string  `json:"human_used"`
	HumanTotal string  `json:"human_total"`
}

type IStorageUsecase interface {
	Usage(ctx context.Context) (Stats, error)
	ClearAll(ctx context.Context) error
}
