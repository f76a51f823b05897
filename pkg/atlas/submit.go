package atlas

// submit commits the filled prompt. It clicks the send control when it is
// visible and enabled, and presses Enter in the input otherwise. Exactly
// one of the two is attempted and failures are only logged.
func (d *driver) submit(input Locator) {
	send := d.page.Locator(d.selectors.Send).First()

	if d.sendReady(send) {
		d.debugf("submitting via send control")
		bestEffortDo(d.log, "click send", func() error {
			return send.Click(d.policy.ActionTimeout)
		})
		return
	}

	d.debugf("submitting via Enter")
	bestEffortDo(d.log, "press Enter", func() error {
		return input.Press("Enter", d.policy.ActionTimeout)
	})
}

func (d *driver) sendReady(send Locator) bool {
	visible := bestEffort(d.log, "send visibility", send.IsVisible, false)
	if !visible {
		return false
	}
	return bestEffort(d.log, "send enabled", send.IsEnabled, false)
}
