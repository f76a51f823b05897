package browser

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/yaoshengwang/openclaw/pkg/atlas"
)

// connection is one CDP attachment to a running browser.
type connection struct {
	browser playwright.Browser
	context playwright.BrowserContext
}

// Controller attaches to running browsers over CDP and manages the tabs
// it opens in them. It implements atlas.Controller.
type Controller struct {
	mu          sync.Mutex
	playwright  *playwright.Playwright
	initialized bool
	initErr     error

	connections map[string]*connection
	pages       map[pageKey]playwright.Page
	log         atlas.Logger
}

type pageKey struct {
	connectionURL string
	targetID      string
}

var _ atlas.Controller = (*Controller)(nil)

// NewController creates a Controller. The Playwright driver is loaded on
// first use.
func NewController(log atlas.Logger) *Controller {
	return &Controller{
		connections: make(map[string]*connection),
		pages:       make(map[pageKey]playwright.Page),
		log:         log,
	}
}

// Available loads the Playwright driver once and reports whether it could
// be loaded. Browsers are not downloaded: pages are always opened in an
// existing browser.
func (c *Controller) Available() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initLocked()
}

func (c *Controller) initLocked() error {
	if c.initialized {
		return nil
	}
	if c.initErr != nil {
		return c.initErr
	}

	// keep driver output away from the terminal
	opts := &playwright.RunOptions{
		SkipInstallBrowsers: true,
		Verbose:             false,
		Stdout:              io.Discard,
		Stderr:              io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		c.initErr = fmt.Errorf("failed to install playwright driver: %w", err)
		return c.initErr
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		c.initErr = fmt.Errorf("failed to start playwright: %w", err)
		return c.initErr
	}

	c.playwright = pw
	c.initialized = true
	return nil
}

// connect returns a live connection to connectionURL, reconnecting if the
// previous one dropped.
func (c *Controller) connect(connectionURL string) (*connection, error) {
	if err := c.initLocked(); err != nil {
		return nil, err
	}

	if conn, ok := c.connections[connectionURL]; ok {
		if conn.browser.IsConnected() {
			return conn, nil
		}
		c.forgetLocked(connectionURL)
	}

	browser, err := c.playwright.Chromium.ConnectOverCDP(connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect over CDP to %s: %w", connectionURL, err)
	}

	// the default context carries the profile's cookies and sign-in
	var bctx playwright.BrowserContext
	if contexts := browser.Contexts(); len(contexts) > 0 {
		bctx = contexts[0]
	} else {
		bctx, err = browser.NewContext()
		if err != nil {
			browser.Close()
			return nil, fmt.Errorf("failed to create context: %w", err)
		}
	}

	conn := &connection{browser: browser, context: bctx}
	c.connections[connectionURL] = conn
	return conn, nil
}

// OpenPage opens a new tab at url and returns its target ID.
func (c *Controller) OpenPage(ctx context.Context, connectionURL, url string) (atlas.PageRef, error) {
	if err := ctx.Err(); err != nil {
		return atlas.PageRef{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	conn, err := c.connect(connectionURL)
	if err != nil {
		return atlas.PageRef{}, err
	}

	page, err := conn.context.NewPage()
	if err != nil {
		return atlas.PageRef{}, fmt.Errorf("failed to open tab: %w", err)
	}

	if _, err := page.Goto(url, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateCommit}); err != nil {
		page.Close()
		return atlas.PageRef{}, fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	targetID := c.targetID(conn, page)
	c.pages[pageKey{connectionURL, targetID}] = page
	return atlas.PageRef{TargetID: targetID}, nil
}

// targetID asks CDP for the tab's target ID. Tabs whose ID cannot be read
// get a local one.
func (c *Controller) targetID(conn *connection, page playwright.Page) string {
	session, err := conn.context.NewCDPSession(page)
	if err != nil {
		return uuid.NewString()
	}
	defer session.Detach()

	info, err := session.Send("Target.getTargetInfo", nil)
	if id := targetIDFromInfo(info); err == nil && id != "" {
		return id
	}
	return uuid.NewString()
}

// targetIDFromInfo extracts targetInfo.targetId from a CDP reply.
func targetIDFromInfo(info interface{}) string {
	reply, ok := info.(map[string]interface{})
	if !ok {
		return ""
	}
	target, ok := reply["targetInfo"].(map[string]interface{})
	if !ok {
		return ""
	}
	id, _ := target["targetId"].(string)
	return id
}

// GetPage returns the driveable page for a tab opened by OpenPage.
func (c *Controller) GetPage(ctx context.Context, connectionURL, targetID string) (atlas.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	page, ok := c.pages[pageKey{connectionURL, targetID}]
	if !ok {
		return nil, fmt.Errorf("page %s not found", targetID)
	}
	if page.IsClosed() {
		delete(c.pages, pageKey{connectionURL, targetID})
		return nil, fmt.Errorf("page %s was closed", targetID)
	}
	return &chatPage{page: page}, nil
}

// ClosePage closes a tab opened by OpenPage. The browser stays running.
func (c *Controller) ClosePage(ctx context.Context, connectionURL, targetID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := pageKey{connectionURL, targetID}
	page, ok := c.pages[key]
	if !ok {
		return fmt.Errorf("page %s not found", targetID)
	}
	delete(c.pages, key)

	if page.IsClosed() {
		return nil
	}
	return page.Close()
}

// OpenPages returns how many tabs are currently tracked.
func (c *Controller) OpenPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

func (c *Controller) forgetLocked(connectionURL string) {
	for key := range c.pages {
		if key.connectionURL == connectionURL {
			delete(c.pages, key)
		}
	}
	delete(c.connections, connectionURL)
}

// Shutdown closes tracked tabs, drops CDP connections and stops the driver.
// Attached browsers keep running.
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, page := range c.pages {
		if !page.IsClosed() {
			_ = page.Close()
		}
		delete(c.pages, key)
	}
	for url, conn := range c.connections {
		_ = conn.browser.Close()
		delete(c.connections, url)
	}

	if c.initialized && c.playwright != nil {
		if err := c.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		c.initialized = false
		c.playwright = nil
	}
	return nil
}
