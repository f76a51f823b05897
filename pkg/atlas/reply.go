package atlas

import (
	"time"
)

// waitForReply returns the last assistant message once the count has grown
// past baseline. A timeout on the growth wait is tolerated because the
// frontend may rewrite the last message in place instead of appending.
func (d *driver) waitForReply(baseline int, budget time.Duration) (Locator, error) {
	selector := d.selectors.AssistantMessage
	wait := maxDuration(d.policy.ReplyFloor, budget)

	if err := d.page.WaitForCountAbove(selector, baseline, wait); err != nil {
		d.debugf("no new assistant message within %v (baseline %d): %v", wait, baseline, err)
	}

	messages := d.page.Locator(selector)
	count := bestEffort(d.log, "count assistant messages", messages.Count, 0)
	if count == 0 {
		return nil, unavailable("no assistant response appeared", nil)
	}

	d.debugf("reading last of %d assistant messages", count)
	return messages.Nth(count - 1), nil
}
