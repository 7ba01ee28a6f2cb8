package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/smartdevs17/steelflow-monitor/internal/aggregator"
	"github.com/smartdevs17/steelflow-monitor/internal/eventlog"
)

// Loader fetches the three dashboard sections concurrently
type Loader struct {
	aggregator  *aggregator.Aggregator
	reader      *eventlog.Reader
	recentLimit int
	now         func() time.Time
}

// NewLoader creates a loader showing recentLimit events
func NewLoader(agg *aggregator.Aggregator, reader *eventlog.Reader, recentLimit int) *Loader {
	return &Loader{
		aggregator:  agg,
		reader:      reader,
		recentLimit: recentLimit,
		now:         time.Now,
	}
}

// Load returns a View; a failing section carries its error instead of data
func (l *Loader) Load(ctx context.Context, filter string) View {
	view := View{Filter: filter, FetchedAt: l.now()}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		view.Snapshot, view.SnapshotErr = l.aggregator.GetAllMetrics(ctx)
	}()
	go func() {
		defer wg.Done()
		view.Logs, view.LogsErr = l.reader.GetRecentLogs(ctx, l.recentLimit)
	}()
	go func() {
		defer wg.Done()
		view.Summary, view.SummaryErr = l.reader.GetEventSummary(ctx)
	}()
	wg.Wait()

	return view
}
