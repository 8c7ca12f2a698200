package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/zed-insights/internal/aggregation"
)

type fakeRefresher struct {
	calls  int32
	forced int32
	err    error
}

func (f *fakeRefresher) Refresh(ctx context.Context, force bool) (*aggregation.Dataset, error) {
	atomic.AddInt32(&f.calls, 1)
	if force {
		atomic.AddInt32(&f.forced, 1)
	}
	if f.err != nil {
		return aggregation.EmptyDataset(), f.err
	}
	return aggregation.EmptyDataset(), nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestSchedulerRunsRefresh(t *testing.T) {
	refresher := &fakeRefresher{}
	s := NewScheduler(refresher, quietLogger())

	require.NoError(t, s.ScheduleRefresh("@every 1s", false))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.True(t, s.IsRunning())
	assert.False(t, s.GetNextRun().IsZero())

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&refresher.calls) >= 1
	}, 3*time.Second, 50*time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&refresher.forced))
}

func TestSchedulerRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, quietLogger())
	assert.Error(t, s.ScheduleRefresh("every now and then", false))
}

func TestSchedulerStartWithoutJobs(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, quietLogger())
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}

func TestSchedulerCannotScheduleWhileRunning(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, quietLogger())
	require.NoError(t, s.ScheduleRefresh("@hourly", false))
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Error(t, s.ScheduleRefresh("@daily", true))
	assert.Error(t, s.Start())
}

func TestSchedulerRunNow(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("source down")}
	s := NewScheduler(refresher, quietLogger())

	err := s.RunNow(context.Background(), true)
	assert.EqualError(t, err, "source down")
	assert.Equal(t, int32(1), atomic.LoadInt32(&refresher.forced))
}

func TestSchedulerStopIdempotent(t *testing.T) {
	s := NewScheduler(&fakeRefresher{}, quietLogger())
	s.Stop()
	assert.False(t, s.IsRunning())
}
