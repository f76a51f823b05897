package atlas

import (
	"context"
	"strings"
	"time"
)

// readStable polls message until its text is unchanged and non-empty for
// StableTicks consecutive samples after the first, or until budget runs
// out. It always returns the latest sample, which may be empty.
func (d *driver) readStable(ctx context.Context, message Locator, budget time.Duration) string {
	start := d.now()
	var last string
	stable := 0

	for {
		text := d.readText(message)
		if text != "" && text == last {
			stable++
		} else {
			stable = 0
		}
		last = text

		if stable >= d.policy.StableTicks {
			d.debugf("reply stable after %v (%d chars)", d.now().Sub(start), len(text))
			return text
		}

		remaining := budget - d.now().Sub(start)
		if remaining <= 0 {
			d.debugf("reply did not settle within %v", budget)
			return last
		}
		if !d.sleep(ctx, minDuration(d.policy.PollInterval, remaining)) {
			return last
		}
	}
}

func (d *driver) readText(message Locator) string {
	text, err := message.InnerText(d.policy.ReadTimeout)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}
