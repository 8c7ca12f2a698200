// Package service coordinates fetching, aggregation and publication of the
// race dataset.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/zed-insights/internal/aggregation"
	"github.com/yourusername/zed-insights/internal/datasource"
	"github.com/yourusername/zed-insights/internal/logger"
	"github.com/yourusername/zed-insights/internal/metrics"
)

const refreshKey = "dataset"

// fallback labels logged when a refresh fails
const (
	fallbackCurrent = "current"
	fallbackEmpty   = "empty"
)

// RefreshOrchestrator owns the published dataset. At most one aggregation
// pass runs at a time; concurrent callers share the in-flight result.
type RefreshOrchestrator struct {
	source  datasource.RecordSource
	ttl     time.Duration
	logger  *logger.RefreshLogger
	now     func() time.Time
	group   singleflight.Group
	tracker *refreshTracker

	current   atomic.Pointer[aggregation.Dataset]
	published atomic.Bool

	subMu       sync.Mutex
	subscribers map[uint64]chan struct{}
	nextSub     uint64
}

// Option configures a RefreshOrchestrator
type Option func(*RefreshOrchestrator)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *RefreshOrchestrator) {
		o.now = now
	}
}

// NewRefreshOrchestrator creates an orchestrator with an empty published dataset
func NewRefreshOrchestrator(source datasource.RecordSource, ttl time.Duration, log *logrus.Logger, opts ...Option) *RefreshOrchestrator {
	o := &RefreshOrchestrator{
		source:      source,
		ttl:         ttl,
		logger:      logger.NewRefreshLogger(log),
		now:         time.Now,
		tracker:     newRefreshTracker(),
		subscribers: make(map[uint64]chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.current.Store(aggregation.EmptyDataset())
	return o
}

// Refresh fetches the record table and publishes a newly built dataset.
// A caller arriving while a pass is in flight waits for that pass instead of
// starting another. On failure the published dataset is left untouched and
// the returned dataset is the fallback: the current one while it is younger
// than the TTL, otherwise an empty dataset.
func (o *RefreshOrchestrator) Refresh(ctx context.Context, force bool) (*aggregation.Dataset, error) {
	// the shared pass must outlive any single caller
	passCtx := context.WithoutCancel(ctx)

	leader := false
	ch := o.group.DoChan(refreshKey, func() (interface{}, error) {
		leader = true
		return o.run(passCtx, force)
	})

	select {
	case res := <-ch:
		if !leader {
			o.tracker.join()
			o.logger.LogRefreshJoined(force)
		}
		ds, _ := res.Val.(*aggregation.Dataset)
		if ds == nil {
			ds, _ = o.fallback()
		}
		return ds, res.Err
	case <-ctx.Done():
		ds, _ := o.fallback()
		return ds, ctx.Err()
	}
}

func (o *RefreshOrchestrator) run(ctx context.Context, force bool) (*aggregation.Dataset, error) {
	refreshID := uuid.NewString()
	start := o.now()
	o.tracker.begin(start)
	o.logger.LogRefreshStarted(refreshID, force)

	table, err := o.source.GetRecords(ctx, o.ttl, force)
	if err != nil {
		duration := o.now().Sub(start)
		ds, label := o.fallback()
		o.tracker.fail(o.now(), err, duration)
		o.logger.LogRefreshFailed(refreshID, err, label, duration)
		metrics.RecordRefresh("error", duration.Seconds())
		return ds, fmt.Errorf("refresh failed: %w", err)
	}

	ds := aggregation.Build(table.Records, table.FetchedAt, o.now())

	o.current.Store(ds)
	o.published.Store(true)

	duration := o.now().Sub(start)
	o.tracker.succeed(ds.GeneratedAt, duration)
	metrics.RecordRefresh("success", duration.Seconds())
	metrics.UpdateDataset(ds.HorseCount(), ds.RaceCount(), ds.EquipmentSetCount(), ds.DroppedRecords, float64(ds.GeneratedAt.Unix()))
	o.logger.LogRefreshCompleted(refreshID, ds.RecordCount, ds.HorseCount(), ds.RaceCount(),
		ds.EquipmentSetCount(), ds.DroppedRecords, table.FromCache, duration)

	o.broadcast()

	return ds, nil
}

// fallback picks the dataset served after a failed refresh
func (o *RefreshOrchestrator) fallback() (*aggregation.Dataset, string) {
	if o.published.Load() {
		current := o.current.Load()
		if current.Age(o.now()) < o.ttl {
			return current, fallbackCurrent
		}
	}
	return aggregation.EmptyDataset(), fallbackEmpty
}

// InvalidateCache clears the persisted snapshot without fetching
func (o *RefreshOrchestrator) InvalidateCache(ctx context.Context) error {
	if err := o.source.Invalidate(ctx); err != nil {
		return err
	}
	o.logger.LogCacheInvalidated()
	return nil
}

// Current returns the published dataset; never nil
func (o *RefreshOrchestrator) Current() *aggregation.Dataset {
	return o.current.Load()
}

// Ready reports whether a dataset has been published
func (o *RefreshOrchestrator) Ready() bool {
	return o.published.Load()
}

// Status returns refresh activity
func (o *RefreshOrchestrator) Status() RefreshStatus {
	return o.tracker.snapshot()
}

// Subscribe registers for dataset-ready notifications. Notifications are
// coalesced: a slow listener sees at least one signal per burst of refreshes.
func (o *RefreshOrchestrator) Subscribe() (<-chan struct{}, func()) {
	o.subMu.Lock()
	defer o.subMu.Unlock()

	id := o.nextSub
	o.nextSub++
	ch := make(chan struct{}, 1)
	o.subscribers[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			o.subMu.Lock()
			defer o.subMu.Unlock()
			delete(o.subscribers, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (o *RefreshOrchestrator) broadcast() {
	o.subMu.Lock()
	defer o.subMu.Unlock()
	for _, ch := range o.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// IsSourceFailure reports whether err came from the record source being unreachable
func IsSourceFailure(err error) bool {
	return errors.Is(err, datasource.ErrSourceUnavailable) || errors.Is(err, datasource.ErrMalformedPayload)
}
