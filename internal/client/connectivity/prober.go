package connectivity

import (
	"context"
	"log/slog"
	"time"
)

// SourceProbe is the monitor source updated by Prober.
const SourceProbe = "probe"

// Pinger checks reachability of the remote store
type Pinger interface {
	Ping(ctx context.Context) error
}

// Prober periodically pings the remote store and feeds the result into a Monitor.
type Prober struct {
	pinger   Pinger
	monitor  *Monitor
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

// NewProber creates a prober; timeout bounds each ping
func NewProber(pinger Pinger, monitor *Monitor, interval, timeout time.Duration, logger *slog.Logger) *Prober {
	return &Prober{
		pinger:   pinger,
		monitor:  monitor,
		logger:   logger,
		interval: interval,
		timeout:  timeout,
	}
}

// Run probes immediately and then on every tick until ctx is done.
func (p *Prober) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.probe(ctx)
		}
	}
}

// probe выполняет одну проверку
func (p *Prober) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err := p.pinger.Ping(pingCtx)
	if err != nil {
		if ctx.Err() != nil {
			// Остановка, а не потеря связи
			return
		}
		p.logger.Debug("Remote ping failed", "error", err)
	}
	p.monitor.Report(SourceProbe, err == nil)
}
