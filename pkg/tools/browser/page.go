package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/yaoshengwang/openclaw/pkg/atlas"
)

// countAboveScript resolves once more than n elements match sel.
const countAboveScript = `([sel, n]) => document.querySelectorAll(sel).length > n`

// chatPage adapts a Playwright page to atlas.Page.
type chatPage struct {
	page playwright.Page
}

var _ atlas.Page = (*chatPage)(nil)

func (p *chatPage) WaitForDocumentReady(timeout time.Duration) error {
	return p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateDomcontentloaded,
		Timeout: ms(timeout),
	})
}

func (p *chatPage) Locator(selector string) atlas.Locator {
	return &chatLocator{loc: p.page.Locator(selector)}
}

func (p *chatPage) WaitForCountAbove(selector string, n int, timeout time.Duration) error {
	_, err := p.page.WaitForFunction(countAboveScript, []interface{}{selector, n}, playwright.PageWaitForFunctionOptions{
		Timeout: ms(timeout),
	})
	return err
}

// chatLocator adapts a Playwright locator to atlas.Locator.
type chatLocator struct {
	loc playwright.Locator
}

var _ atlas.Locator = (*chatLocator)(nil)

func (l *chatLocator) First() atlas.Locator { return &chatLocator{loc: l.loc.First()} }

func (l *chatLocator) Nth(index int) atlas.Locator { return &chatLocator{loc: l.loc.Nth(index)} }

func (l *chatLocator) Count() (int, error) { return l.loc.Count() }

func (l *chatLocator) WaitVisible(timeout time.Duration) error {
	return l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: ms(timeout),
	})
}

func (l *chatLocator) IsVisible() (bool, error) { return l.loc.IsVisible() }

func (l *chatLocator) IsEnabled() (bool, error) { return l.loc.IsEnabled() }

func (l *chatLocator) Fill(text string, timeout time.Duration) error {
	return l.loc.Fill(text, playwright.LocatorFillOptions{Timeout: ms(timeout)})
}

func (l *chatLocator) Click(timeout time.Duration) error {
	return l.loc.Click(playwright.LocatorClickOptions{Timeout: ms(timeout)})
}

func (l *chatLocator) Press(key string, timeout time.Duration) error {
	return l.loc.Press(key, playwright.LocatorPressOptions{Timeout: ms(timeout)})
}

func (l *chatLocator) InnerText(timeout time.Duration) (string, error) {
	return l.loc.InnerText(playwright.LocatorInnerTextOptions{Timeout: ms(timeout)})
}

// ms converts a timeout to Playwright milliseconds. Playwright treats 0 as
// no timeout, so non-positive values become 1ms.
func ms(d time.Duration) *float64 {
	v := float64(d.Milliseconds())
	if v < 1 {
		v = 1
	}
	return playwright.Float(v)
}
