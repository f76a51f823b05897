package atlas

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errTimeout = errors.New("timeout exceeded")

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	c.advance(d)
	return true
}

// fakeElement is the state behind every locator for one selector.
type fakeElement struct {
	visible    bool
	enabled    bool
	visibleErr error
	count      int
	countErr   error

	fillErr  error
	clickErr error
	pressErr error

	// text returns the i-th InnerText sample
	text    func(i int) (string, error)
	samples int

	filled       []string
	fillTimeouts []time.Duration
	clicks       int
	presses      []string
	nthCalls     []int
}

type waitCall struct {
	selector string
	timeout  time.Duration
}

type fakePage struct {
	clock    *fakeClock
	elements map[string]*fakeElement

	readyErr   error
	readyWaits []time.Duration
	waits      []waitCall
	countWaits []waitCall

	// onSubmit runs after a click or key press
	onSubmit func()
	// panicOn makes the named operation panic
	panicOn string
}

func newFakePage(clock *fakeClock) *fakePage {
	return &fakePage{clock: clock, elements: make(map[string]*fakeElement)}
}

func (p *fakePage) element(selector string) *fakeElement {
	el, ok := p.elements[selector]
	if !ok {
		el = &fakeElement{}
		p.elements[selector] = el
	}
	return el
}

func (p *fakePage) WaitForDocumentReady(timeout time.Duration) error {
	p.readyWaits = append(p.readyWaits, timeout)
	return p.readyErr
}

func (p *fakePage) Locator(selector string) Locator {
	return &fakeLocator{page: p, selector: selector}
}

func (p *fakePage) WaitForCountAbove(selector string, n int, timeout time.Duration) error {
	p.countWaits = append(p.countWaits, waitCall{selector, timeout})
	if p.element(selector).count > n {
		return nil
	}
	p.clock.advance(timeout)
	return errTimeout
}

type fakeLocator struct {
	page     *fakePage
	selector string
}

func (l *fakeLocator) el() *fakeElement { return l.page.element(l.selector) }

func (l *fakeLocator) First() Locator { return l }

func (l *fakeLocator) Nth(index int) Locator {
	l.el().nthCalls = append(l.el().nthCalls, index)
	return l
}

func (l *fakeLocator) Count() (int, error) {
	return l.el().count, l.el().countErr
}

func (l *fakeLocator) WaitVisible(timeout time.Duration) error {
	l.page.waits = append(l.page.waits, waitCall{l.selector, timeout})
	if l.el().visible {
		return nil
	}
	l.page.clock.advance(timeout)
	return errTimeout
}

func (l *fakeLocator) IsVisible() (bool, error) {
	return l.el().visible, l.el().visibleErr
}

func (l *fakeLocator) IsEnabled() (bool, error) {
	return l.el().enabled, nil
}

func (l *fakeLocator) Fill(text string, timeout time.Duration) error {
	if l.page.panicOn == "fill" {
		panic("renderer crashed")
	}
	l.el().filled = append(l.el().filled, text)
	l.el().fillTimeouts = append(l.el().fillTimeouts, timeout)
	return l.el().fillErr
}

func (l *fakeLocator) Click(timeout time.Duration) error {
	l.el().clicks++
	if l.page.onSubmit != nil {
		l.page.onSubmit()
	}
	return l.el().clickErr
}

func (l *fakeLocator) Press(key string, timeout time.Duration) error {
	l.el().presses = append(l.el().presses, key)
	if l.page.onSubmit != nil {
		l.page.onSubmit()
	}
	return l.el().pressErr
}

func (l *fakeLocator) InnerText(timeout time.Duration) (string, error) {
	el := l.el()
	i := el.samples
	el.samples++
	if el.text == nil {
		return "", nil
	}
	return el.text(i)
}

// sequence returns samples in order and repeats the last one.
func sequence(samples ...string) func(int) (string, error) {
	return func(i int) (string, error) {
		if len(samples) == 0 {
			return "", nil
		}
		if i >= len(samples) {
			i = len(samples) - 1
		}
		return samples[i], nil
	}
}

type recordingLogger struct {
	mu    sync.Mutex
	debug []string
	warn  []string
}

func (l *recordingLogger) Debugf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debug = append(l.debug, format)
}

func (l *recordingLogger) Warnf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warn = append(l.warn, format)
}

type fakeResolver struct {
	profile *Profile
	err     error
	panics  bool
	names   []string
}

func (r *fakeResolver) ResolveProfile(name string) (*Profile, error) {
	r.names = append(r.names, name)
	if r.panics {
		panic("config exploded")
	}
	return r.profile, r.err
}

type fakeLifecycle struct {
	statuses  []Status
	statusErr error
	startErr  error
	panics    string

	statusCalls int
	startCalls  int
}

func (f *fakeLifecycle) Status(ctx context.Context, profile Profile) (Status, error) {
	i := f.statusCalls
	f.statusCalls++
	if f.panics != "" {
		panic(f.panics)
	}
	if f.statusErr != nil {
		return Status{}, f.statusErr
	}
	if len(f.statuses) == 0 {
		return Status{}, nil
	}
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	return f.statuses[i], nil
}

func (f *fakeLifecycle) Start(ctx context.Context, profile Profile) error {
	f.startCalls++
	return f.startErr
}

type fakeController struct {
	availableErr error
	openErr      error
	getErr       error
	closeErr     error
	page         Page

	opened []string
	closed []string
}

func (c *fakeController) Available() error { return c.availableErr }

func (c *fakeController) OpenPage(ctx context.Context, connectionURL, url string) (PageRef, error) {
	if c.openErr != nil {
		return PageRef{}, c.openErr
	}
	c.opened = append(c.opened, url)
	return PageRef{TargetID: "target-1"}, nil
}

func (c *fakeController) GetPage(ctx context.Context, connectionURL, targetID string) (Page, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.page, nil
}

func (c *fakeController) ClosePage(ctx context.Context, connectionURL, targetID string) error {
	c.closed = append(c.closed, targetID)
	return c.closeErr
}

// newTestDriver wires a driver to a fake page and clock with default policy.
func newTestDriver(page *fakePage, clock *fakeClock) (*driver, *recordingLogger) {
	log := &recordingLogger{}
	return &driver{
		page:      page,
		policy:    DefaultPolicy(),
		selectors: DefaultSelectors(),
		log:       log,
		runID:     "test",
		now:       clock.now,
		sleep:     clock.sleep,
	}, log
}
