package atlas

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const messageSelector = `[data-message-author-role="assistant"]`

func TestReadStable_WaitsForFourEqualSamples(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	el := page.element(messageSelector)
	el.text = sequence("a", "a", "b", "b", "b", "b", "c")

	d, _ := newTestDriver(page, clock)
	start := clock.now()
	got := d.readStable(context.Background(), page.Locator(messageSelector), time.Minute)

	assert.Equal(t, "b", got)
	assert.Equal(t, 6, el.samples, "must return on the fourth b, not earlier")
	assert.Equal(t, 5*400*time.Millisecond, clock.now().Sub(start))
}

func TestReadStable_TrimsWhitespace(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	page.element(messageSelector).text = sequence("Hello  ", " Hello", "Hello\n", "Hello")

	d, _ := newTestDriver(page, clock)
	got := d.readStable(context.Background(), page.Locator(messageSelector), time.Minute)
	assert.Equal(t, "Hello", got)
}

func TestReadStable_EmptyNeverCountsAsStable(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	el := page.element(messageSelector)
	el.text = sequence("")

	d, _ := newTestDriver(page, clock)
	got := d.readStable(context.Background(), page.Locator(messageSelector), 2*time.Second)

	assert.Equal(t, "", got)
	// 0, 400, 800, 1200, 1600, 2000ms
	assert.Equal(t, 6, el.samples)
}

func TestReadStable_TimeoutReturnsLastSample(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	el := page.element(messageSelector)
	el.text = func(i int) (string, error) { return "token " + strconv.Itoa(i), nil }

	d, _ := newTestDriver(page, clock)
	got := d.readStable(context.Background(), page.Locator(messageSelector), time.Second)

	// samples at 0, 400, 800 and 1000ms
	assert.Equal(t, "token 3", got)
	assert.Equal(t, 4, el.samples)
}

func TestReadStable_ReadErrorResetsCounter(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	el := page.element(messageSelector)
	el.text = func(i int) (string, error) {
		if i == 2 {
			return "", errors.New("element detached")
		}
		return "done", nil
	}

	d, _ := newTestDriver(page, clock)
	got := d.readStable(context.Background(), page.Locator(messageSelector), time.Minute)

	assert.Equal(t, "done", got)
	// done, done, <err>, done, done, done, done
	assert.Equal(t, 7, el.samples)
}

func TestReadStable_CancelledContextReturnsLast(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	page.element(messageSelector).text = sequence("partial")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, _ := newTestDriver(page, clock)
	got := d.readStable(ctx, page.Locator(messageSelector), time.Minute)
	assert.Equal(t, "partial", got)
}

func TestReadStable_TunableTicks(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage(clock)
	el := page.element(messageSelector)
	el.text = sequence("x")

	d, _ := newTestDriver(page, clock)
	d.policy.StableTicks = 1
	d.policy.PollInterval = 50 * time.Millisecond

	got := d.readStable(context.Background(), page.Locator(messageSelector), time.Minute)
	assert.Equal(t, "x", got)
	assert.Equal(t, 2, el.samples)
}
