package datasource

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
)

type countingFetcher struct {
	payloads [][]byte
	err      error
	calls    int32
}

func (f *countingFetcher) Fetch(ctx context.Context) ([]byte, error) {
	n := atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	i := int(n) - 1
	if i >= len(f.payloads) {
		i = len(f.payloads) - 1
	}
	return f.payloads[i], nil
}

func (f *countingFetcher) Name() string { return "counting" }

type slowFetcher struct{}

func (slowFetcher) Fetch(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowFetcher) Name() string { return "slow" }

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCachedSourceFetchesAndCaches(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &countingFetcher{payloads: [][]byte{[]byte(sampleCSV)}}
	store := NewMemoryStore("test")
	src := NewCachedSource(fetcher, store, testLogger(), WithClock(fixedClock(now)))
	ctx := context.Background()

	table, err := src.GetRecords(ctx, 30*time.Minute, false)
	require.NoError(t, err)
	assert.Len(t, table.Records, 3)
	assert.False(t, table.FromCache)
	assert.Equal(t, now, table.FetchedAt)

	table, err = src.GetRecords(ctx, 30*time.Minute, false)
	require.NoError(t, err)
	assert.True(t, table.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))

	snap, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, now, snap.FetchedAt)
}

func TestCachedSourceHonorsTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore("test")
	require.NoError(t, store.Set(context.Background(), &Snapshot{Payload: []byte(sampleCSV), FetchedAt: now.Add(-31 * time.Minute)}))

	fetcher := &countingFetcher{payloads: [][]byte{[]byte(sampleCSV)}}
	src := NewCachedSource(fetcher, store, testLogger(), WithClock(fixedClock(now)))

	table, err := src.GetRecords(context.Background(), 30*time.Minute, false)
	require.NoError(t, err)
	assert.False(t, table.FromCache)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
}

func TestCachedSourceForceBypassesCache(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore("test")
	require.NoError(t, store.Set(context.Background(), &Snapshot{Payload: []byte(sampleCSV), FetchedAt: now}))

	fetcher := &countingFetcher{payloads: [][]byte{[]byte("race_id,horse_id\nR1,H1\n")}}
	src := NewCachedSource(fetcher, store, testLogger(), WithClock(fixedClock(now)))

	table, err := src.GetRecords(context.Background(), 30*time.Minute, true)
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
}

func TestCachedSourceForcedFetchFailureUsesValidSnapshot(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore("test")
	require.NoError(t, store.Set(context.Background(), &Snapshot{Payload: []byte(sampleCSV), FetchedAt: now.Add(-time.Minute)}))

	fetcher := &countingFetcher{err: NewSourceError("counting", ErrCodeServerError, "503", nil)}
	src := NewCachedSource(fetcher, store, testLogger(), WithClock(fixedClock(now)))

	table, err := src.GetRecords(context.Background(), 30*time.Minute, true)
	require.NoError(t, err)
	assert.True(t, table.FromCache)
	assert.Len(t, table.Records, 3)
}

func TestCachedSourceMalformedSnapshotRefetchesOnce(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore("test")
	require.NoError(t, store.Set(context.Background(), &Snapshot{Payload: []byte("garbage\"\n"), FetchedAt: now}))

	// the fresh payload is malformed too; the source must not loop
	fetcher := &countingFetcher{payloads: [][]byte{[]byte("not,a,table\n")}}
	src := NewCachedSource(fetcher, store, testLogger(), WithClock(fixedClock(now)))

	_, err := src.GetRecords(context.Background(), 30*time.Minute, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))

	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound, "malformed snapshot is cleared")
}

func TestCachedSourceMalformedSnapshotRecovers(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore("test")
	require.NoError(t, store.Set(context.Background(), &Snapshot{Payload: []byte("horse_id\nH1\n"), FetchedAt: now}))

	fetcher := &countingFetcher{payloads: [][]byte{[]byte(sampleCSV)}}
	src := NewCachedSource(fetcher, store, testLogger(), WithClock(fixedClock(now)))

	table, err := src.GetRecords(context.Background(), 30*time.Minute, false)
	require.NoError(t, err)
	assert.Len(t, table.Records, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetcher.calls))
}

func TestCachedSourceEmptyPayloadIsMalformed(t *testing.T) {
	fetcher := &countingFetcher{payloads: [][]byte{[]byte("race_id,horse_id\n")}}
	src := NewCachedSource(fetcher, NewMemoryStore("test"), testLogger())

	_, err := src.GetRecords(context.Background(), time.Minute, false)
	assert.ErrorIs(t, err, ErrMalformedPayload)

	var srcErr *SourceError
	require.True(t, errors.As(err, &srcErr))
	assert.Equal(t, ErrCodeInvalidData, srcErr.Code)
}

func TestCachedSourceTimeout(t *testing.T) {
	src := NewCachedSource(slowFetcher{}, NewMemoryStore("test"), testLogger(), WithFetchTimeout(10*time.Millisecond))

	_, err := src.GetRecords(context.Background(), time.Minute, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceTimeout)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestCachedSourceWrapsPlainFetchErrors(t *testing.T) {
	fetcher := &countingFetcher{err: errors.New("connection refused")}
	src := NewCachedSource(fetcher, NewMemoryStore("test"), testLogger())

	_, err := src.GetRecords(context.Background(), time.Minute, true)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
	assert.NotErrorIs(t, err, ErrSourceTimeout)
}

func TestCachedSourceInvalidate(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore("test")
	require.NoError(t, store.Set(context.Background(), &Snapshot{Payload: []byte(sampleCSV), FetchedAt: now}))

	fetcher := &countingFetcher{payloads: [][]byte{[]byte(sampleCSV)}}
	src := NewCachedSource(fetcher, store, testLogger(), WithClock(fixedClock(now)))

	require.NoError(t, src.Invalidate(context.Background()))
	assert.Zero(t, atomic.LoadInt32(&fetcher.calls))

	_, err := store.Get(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
