package atlas

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindInput_FirstVisibleEnabledWins(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	sel := DefaultSelectors().Input

	// Second and third strategies are both usable; the second must win.
	page.element(sel[1]).visible = true
	page.element(sel[1]).enabled = true
	page.element(sel[2]).visible = true
	page.element(sel[2]).enabled = true

	d, _ := newTestDriver(page, clock)
	input, err := d.findInput(context.Background(), 30*time.Second)
	require.NoError(t, err)

	loc, ok := input.(*fakeLocator)
	require.True(t, ok)
	assert.Equal(t, sel[1], loc.selector)

	require.Len(t, page.waits, 2)
	assert.Equal(t, sel[0], page.waits[0].selector)
	assert.Equal(t, sel[1], page.waits[1].selector)
}

func TestFindInput_SkipsDisabled(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	sel := DefaultSelectors().Input

	page.element(sel[0]).visible = true
	page.element(sel[0]).enabled = false
	page.element(sel[3]).visible = true
	page.element(sel[3]).enabled = true

	d, _ := newTestDriver(page, clock)
	input, err := d.findInput(context.Background(), 30*time.Second)
	require.NoError(t, err)
	assert.Equal(t, sel[3], input.(*fakeLocator).selector)
}

func TestFindInput_PerSelectorWaitBounds(t *testing.T) {
	tests := []struct {
		name   string
		budget time.Duration
		want   time.Duration
	}{
		{name: "large budget capped", budget: 60 * time.Second, want: 2500 * time.Millisecond},
		{name: "small budget uses floor deadline", budget: 100 * time.Millisecond, want: 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			page := newFakePage(clock)
			sel := DefaultSelectors().Input
			page.element(sel[0]).visible = true
			page.element(sel[0]).enabled = true

			d, _ := newTestDriver(page, clock)
			_, err := d.findInput(context.Background(), tt.budget)
			require.NoError(t, err)
			require.Len(t, page.waits, 1)
			assert.Equal(t, tt.want, page.waits[0].timeout)
		})
	}
}

func TestFindInput_SharedDeadline(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)

	d, _ := newTestDriver(page, clock)
	_, err := d.findInput(context.Background(), 3*time.Second)
	require.Error(t, err)

	// 2.5s on the first selector leaves 0.5s for the second; nothing after.
	require.Len(t, page.waits, 2)
	assert.Equal(t, 2500*time.Millisecond, page.waits[0].timeout)
	assert.Equal(t, 500*time.Millisecond, page.waits[1].timeout)
}

func TestFindInput_WaitFloorNearDeadline(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	sel := DefaultSelectors().Input
	page.element(sel[1]).visible = true
	page.element(sel[1]).enabled = true

	d, _ := newTestDriver(page, clock)
	d.policy.SelectorWaitCap = 1900 * time.Millisecond

	// 2s deadline: 1.9s on the first selector leaves 100ms, raised to 500ms.
	_, err := d.findInput(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, page.waits, 2)
	assert.Equal(t, 500*time.Millisecond, page.waits[1].timeout)
}

func TestFindInput_ExhaustedIsUnavailable(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)

	d, _ := newTestDriver(page, clock)
	_, err := d.findInput(context.Background(), 60*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "sign-in")
	assert.Len(t, page.waits, len(DefaultSelectors().Input))
}

func TestDefaultSelectors_InputOrder(t *testing.T) {
	assert.Equal(t, []string{
		"#prompt-textarea",
		`[data-testid="prompt-textarea"]`,
		`textarea[placeholder*="Message"]`,
		`[contenteditable="true"]`,
		"textarea",
	}, DefaultSelectors().Input)
}

func TestFindInput_ContentEditableBeforeTextarea(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	sel := DefaultSelectors().Input

	page.element(sel[3]).visible = true
	page.element(sel[3]).enabled = true
	page.element(sel[4]).visible = true
	page.element(sel[4]).enabled = true

	d, _ := newTestDriver(page, clock)
	input, err := d.findInput(context.Background(), 60*time.Second)
	require.NoError(t, err)
	assert.Equal(t, `[contenteditable="true"]`, input.(*fakeLocator).selector)
	assert.Len(t, page.waits, 4)
}
