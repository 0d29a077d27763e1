package usecase

import (
	domainNetwork "github.com/savora/savora/domains/network"
	domainSync "github.com/savora/savora/domains/sync"
	"github.com/savora/savora/infrastructure/reachability"
)

// networkService exposes the reachability monitor to callers, folding the
// coordinator's in-flight state into the reported status.
type networkService struct {
	monitor *reachability.Monitor
	sync    domainSync.ISyncUsecase
}

func NewNetworkService(monitor *reachability.Monitor, sync domainSync.ISyncUsecase) domainNetwork.INetworkUsecase {
	return &networkService{monitor: monitor, sync: sync}
}

func (s *networkService) Status() domainNetwork.Status {
	return domainNetwork.Status{
		IsOnline:  s.monitor.Online(),
		IsSyncing: s.sync.InProgress(),
	}
}

func (s *networkService) Subscribe(l domainNetwork.Listener) func() {
	return s.monitor.Subscribe(l)
}

// SetOnline is the manual override, standing in for platform online/offline
// events.
func (s *networkService) SetOnline(online bool) {
	s.monitor.SetOnline(online)
}
