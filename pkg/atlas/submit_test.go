package atlas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sendSelector = `button[data-testid="send-button"]`

func TestSubmit(t *testing.T) {
	tests := []struct {
		name        string
		visible     bool
		enabled     bool
		visibleErr  error
		clickErr    error
		wantClicks  int
		wantPresses []string
	}{
		{name: "send control ready", visible: true, enabled: true, wantClicks: 1},
		{name: "send control hidden", visible: false, enabled: true, wantPresses: []string{"Enter"}},
		{name: "send control disabled", visible: true, enabled: false, wantPresses: []string{"Enter"}},
		{name: "visibility probe fails", visible: true, enabled: true, visibleErr: errors.New("detached"), wantPresses: []string{"Enter"}},
		{name: "click fails without fallback", visible: true, enabled: true, clickErr: errors.New("intercepted"), wantClicks: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			page := newFakePage(clock)
			send := page.element(sendSelector)
			send.visible = tt.visible
			send.enabled = tt.enabled
			send.visibleErr = tt.visibleErr
			send.clickErr = tt.clickErr

			input := page.Locator("#prompt-textarea")
			d, _ := newTestDriver(page, clock)
			d.submit(input)

			assert.Equal(t, tt.wantClicks, send.clicks)
			assert.Equal(t, tt.wantPresses, page.element("#prompt-textarea").presses)
		})
	}
}

func TestSubmit_PressFailureSwallowed(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	page.element("#prompt-textarea").pressErr = errors.New("no focus")

	d, log := newTestDriver(page, clock)
	assert.NotPanics(t, func() { d.submit(page.Locator("#prompt-textarea")) })
	assert.NotEmpty(t, log.debug)
}
