// Package async holds helpers for running periodic work in the background.
package async

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("prefix", "async")

// RunEvery calls f every period in its own goroutine until ctx is done. A call still running
// when the next tick fires delays that tick rather than overlapping it.
func RunEvery(ctx context.Context, period time.Duration, name string, f func()) {
	ticker := time.NewTicker(period)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				log.WithField("task", name).Trace("Running periodic task")
				f()
			case <-ctx.Done():
				log.WithField("task", name).Debug("Context closed, stopping periodic task")
				return
			}
		}
	}()
}
