package atlas

import (
	"context"
	"time"
)

// findInput returns the first visible, enabled prompt input. Selectors are
// tried in priority order against one shared deadline of
// max(LocateFloor, budget).
func (d *driver) findInput(ctx context.Context, budget time.Duration) (Locator, error) {
	deadline := d.now().Add(maxDuration(d.policy.LocateFloor, budget))

	for _, selector := range d.selectors.Input {
		if ctx.Err() != nil {
			break
		}
		remaining := deadline.Sub(d.now())
		if remaining <= 0 {
			break
		}
		wait := minDuration(d.policy.SelectorWaitCap, maxDuration(d.policy.SelectorWaitFloor, remaining))

		candidate := d.page.Locator(selector).First()
		if err := candidate.WaitVisible(wait); err != nil {
			d.debugf("input %s not visible within %v", selector, wait)
			continue
		}
		enabled, err := candidate.IsEnabled()
		if err != nil || !enabled {
			d.debugf("input %s visible but not usable", selector)
			continue
		}

		d.debugf("input found via %s", selector)
		return candidate, nil
	}

	return nil, unavailable("prompt input not found (sign-in to Atlas may be required)", ctx.Err())
}
