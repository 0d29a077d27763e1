package network

// Status is the engine's view of connectivity, as exposed to callers.
type Status struct {
	IsOnline  bool `json:"is_online"`
	IsSyncing bool `json:"is_syncing"`
}

// Listener is notified on every online/offline transition.
type Listener func(online bool)

type INetworkUsecase interface {
	Status() Status
	Subscribe(l Listener) (unsubscribe func())
	SetOnline(online bool)
}
