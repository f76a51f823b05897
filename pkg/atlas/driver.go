package atlas

import (
	"context"
	"time"
)

// driver runs the page-level stages of one prompt against a single page.
type driver struct {
	page      Page
	policy    Policy
	selectors Selectors
	log       Logger
	runID     string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

// sleepContext waits for d or until ctx is done. It reports whether the
// full duration elapsed.
func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// bestEffort runs fn and collapses a failure into fallback.
func bestEffort[T any](log Logger, what string, fn func() (T, error), fallback T) T {
	v, err := fn()
	if err != nil {
		log.Debugf("%s failed, continuing: %v", what, err)
		return fallback
	}
	return v
}

// bestEffortDo runs fn and logs a failure without returning it.
func bestEffortDo(log Logger, what string, fn func() error) {
	if err := fn(); err != nil {
		log.Debugf("%s failed, continuing: %v", what, err)
	}
}

func (d *driver) debugf(format string, v ...interface{}) {
	d.log.Debugf("atlas[%s] "+format, append([]interface{}{d.runID}, v...)...)
}

// countOrZero counts elements matching selector, zero on failure.
func (d *driver) countOrZero(selector string) int {
	return bestEffort(d.log, "count "+selector, d.page.Locator(selector).Count, 0)
}
