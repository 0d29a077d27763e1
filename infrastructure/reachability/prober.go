package reachability

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// Prober feeds the monitor by periodically dialing the remote service host.
// It stands in for the browser online/offline events of the reference
// environment; a manual override through Monitor.SetOnline keeps working
// alongside it.
type Prober struct {
	monitor  *Monitor
	addr     string
	interval time.Duration
	dial     func(ctx context.Context, addr string) error
}

// NewProber probes the host of baseURL. A missing port defaults to 443/80
// by scheme.
func NewProber(monitor *Monitor, baseURL string, interval time.Duration) (*Prober, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		if u.Scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	return &Prober{
		monitor:  monitor,
		addr:     net.JoinHostPort(host, port),
		interval: interval,
		dial:     dialTCP,
	}, nil
}

func dialTCP(ctx context.Context, addr string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return conn.Close()
}

// Start launches the probe loop. It stops when ctx is done.
func (p *Prober) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		logrus.Infof("[REACHABILITY] Probing %s every %s", p.addr, p.interval)
		p.probe(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.probe(ctx)
			}
		}
	}()
}

func (p *Prober) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := p.dial(probeCtx, p.addr)
	if err != nil {
		logrus.Debugf("[REACHABILITY] Probe to %s failed: %v", p.addr, err)
	}
	p.monitor.SetOnline(err == nil)
}
