package dashboard

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

// Poller calls a refresh function immediately and then on every interval
// until its context is cancelled. Refreshes never overlap: ticks that fire
// while one is running are dropped.
type Poller struct {
	interval time.Duration
	refresh  func(ctx context.Context)
	logger   *logrus.Entry
}

// NewPoller creates a poller for refresh
func NewPoller(interval time.Duration, refresh func(ctx context.Context)) *Poller {
	return &Poller{
		interval: interval,
		refresh:  refresh,
		logger:   utils.Component("poller"),
	}
}

// Run blocks until ctx is done. The in-flight refresh sees the same ctx,
// so cancellation also aborts its requests.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.WithField("interval", p.interval).Debug("Polling started")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Polling stopped")
			return ctx.Err()
		case <-ticker.C:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.refresh(ctx)
			// drop a tick that queued up during a slow refresh
			select {
			case <-ticker.C:
			default:
			}
		}
	}
}
