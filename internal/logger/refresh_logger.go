package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RefreshLogger provides dedicated logging for dataset refresh passes.
type RefreshLogger struct {
	*logrus.Entry
}

// NewRefreshLogger creates a new refresh logger.
func NewRefreshLogger(baseLogger *logrus.Logger) *RefreshLogger {
	return &RefreshLogger{
		Entry: baseLogger.WithField("component", "refresh"),
	}
}

// LogRefreshStarted logs the start of a refresh pass.
func (rl *RefreshLogger) LogRefreshStarted(refreshID string, force bool) {
	rl.WithFields(logrus.Fields{
		"refresh_id": refreshID,
		"force":      force,
	}).Info("Dataset refresh started")
}

// LogRefreshJoined logs a caller waiting on an in-flight refresh.
func (rl *RefreshLogger) LogRefreshJoined(force bool) {
	rl.WithField("force", force).Debug("Joined in-flight dataset refresh")
}

// LogRefreshCompleted logs a published dataset.
func (rl *RefreshLogger) LogRefreshCompleted(refreshID string, records, horses, races, sets, dropped int, fromCache bool, duration time.Duration) {
	rl.WithFields(logrus.Fields{
		"refresh_id":  refreshID,
		"records":     records,
		"horses":      horses,
		"races":       races,
		"sets":        sets,
		"dropped":     dropped,
		"from_cache":  fromCache,
		"duration_ms": duration.Milliseconds(),
	}).Info("Dataset refresh completed")
}

// LogRefreshFailed logs a failed pass and the dataset served in its place.
func (rl *RefreshLogger) LogRefreshFailed(refreshID string, err error, fallback string, duration time.Duration) {
	rl.WithFields(logrus.Fields{
		"refresh_id":  refreshID,
		"fallback":    fallback,
		"duration_ms": duration.Milliseconds(),
	}).WithError(err).Error("Dataset refresh failed")
}

// LogCacheInvalidated logs an operator cache clear.
func (rl *RefreshLogger) LogCacheInvalidated() {
	rl.WithField("event_type", "cache_invalidated").Info("Record cache invalidated")
}
