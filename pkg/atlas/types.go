package atlas

import (
	"context"
	"time"
)

// DefaultChatURL is opened when a request does not name a URL.
const DefaultChatURL = "https://chatgpt.com/"

// DefaultTimeout bounds a request that does not set one.
const DefaultTimeout = 120 * time.Second

// Profile describes how to reach a controllable browser instance.
type Profile struct {
	// Name identifies the profile in configuration
	Name string

	// ConnectionURL is the last known CDP endpoint (e.g. "http://127.0.0.1:9222")
	ConnectionURL string

	// Enabled gates whether automation may use this profile
	Enabled bool

	// AllowedURLs are glob patterns a request URL must match.
	// Empty means any absolute http(s) URL.
	AllowedURLs []string
}

// Status is the live state of a profile's browser.
type Status struct {
	Running       bool
	ConnectionURL string
}

// PageRef identifies a page opened through a Controller.
type PageRef struct {
	TargetID string
}

// Request is the input to one RunPrompt call.
type Request struct {
	// Prompt is the text submitted to the chat input
	Prompt string

	// Timeout is the budget applied to each waiting stage
	Timeout time.Duration

	// URL overrides DefaultChatURL
	URL string

	// Profile names the browser profile; empty selects the default
	Profile string

	// Sandboxed callers are always refused
	Sandboxed bool
}

// Result is the outcome of a successful run.
type Result struct {
	Text   string `json:"text"`
	TookMs int64  `json:"took_ms"`
}

// ProfileResolver looks up browser profiles by name.
// An empty name resolves the default profile. A nil profile with a nil
// error means nothing is configured.
type ProfileResolver interface {
	ResolveProfile(name string) (*Profile, error)
}

// Lifecycle reports on and starts the browser behind a profile.
type Lifecycle interface {
	Status(ctx context.Context, profile Profile) (Status, error)
	Start(ctx context.Context, profile Profile) error
}

// Controller opens, fetches and closes pages over a CDP endpoint.
type Controller interface {
	// Available reports whether the browser-control driver can be loaded
	Available() error

	OpenPage(ctx context.Context, connectionURL, url string) (PageRef, error)
	GetPage(ctx context.Context, connectionURL, targetID string) (Page, error)

	// ClosePage is best effort; callers ignore its error
	ClosePage(ctx context.Context, connectionURL, targetID string) error
}

// Page is the subset of page operations a run needs.
type Page interface {
	// WaitForDocumentReady waits for DOMContentLoaded
	WaitForDocumentReady(timeout time.Duration) error

	// Locator returns a deferred reference to elements matching selector
	Locator(selector string) Locator

	// WaitForCountAbove waits until more than n elements match selector
	WaitForCountAbove(selector string, n int, timeout time.Duration) error
}

// Locator is a deferred element query; every call re-resolves the selector.
type Locator interface {
	First() Locator
	Nth(index int) Locator
	Count() (int, error)

	WaitVisible(timeout time.Duration) error
	IsVisible() (bool, error)
	IsEnabled() (bool, error)

	Fill(text string, timeout time.Duration) error
	Click(timeout time.Duration) error
	Press(key string, timeout time.Duration) error
	InnerText(timeout time.Duration) (string, error)
}

// Logger is the sink runs report progress to.
type Logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}
