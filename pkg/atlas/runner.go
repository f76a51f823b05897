package atlas

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yaoshengwang/openclaw/pkg/logging"
)

// Runner submits prompts to Atlas. A Runner holds no per-run state, so
// concurrent RunPrompt calls are safe; each opens and closes its own page.
type Runner struct {
	profiles   ProfileResolver
	lifecycle  Lifecycle
	controller Controller
	log        Logger

	policy    Policy
	selectors Selectors
	chatURL   string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPolicy overrides the timing heuristics. Zero fields keep defaults.
func WithPolicy(p Policy) RunnerOption {
	return func(r *Runner) {
		r.policy = p.WithDefaults()
	}
}

// WithSelectors overrides the page selectors.
func WithSelectors(s Selectors) RunnerOption {
	return func(r *Runner) {
		r.selectors = s
	}
}

// WithChatURL overrides DefaultChatURL for requests without a URL.
func WithChatURL(url string) RunnerOption {
	return func(r *Runner) {
		if url = strings.TrimSpace(url); url != "" {
			r.chatURL = url
		}
	}
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(profiles ProfileResolver, lifecycle Lifecycle, controller Controller, log Logger, opts ...RunnerOption) *Runner {
	if log == nil {
		log = logging.Nop()
	}
	r := &Runner{
		profiles:   profiles,
		lifecycle:  lifecycle,
		controller: controller,
		log:        log,
		policy:     DefaultPolicy(),
		selectors:  DefaultSelectors(),
		chatURL:    DefaultChatURL,
		now:        time.Now,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunPrompt submits req.Prompt and returns the assistant's settled reply.
// Every failure is an *UnavailableError. The page opened for the request is
// closed before RunPrompt returns, whatever the outcome. A panic from any
// collaborator is reported as an UnavailableError.
func (r *Runner) RunPrompt(ctx context.Context, req Request) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = unavailable("unexpected failure", fmt.Errorf("%v", rec))
		}
	}()

	start := r.now()
	runID := uuid.NewString()[:8]

	if req.Sandboxed {
		return nil, unavailable("sandboxed sessions cannot drive the browser", nil)
	}
	if req.Timeout <= 0 {
		req.Timeout = DefaultTimeout
	}

	profile, err := r.resolveProfile(req.Profile)
	if err != nil {
		return nil, err
	}

	if err := r.controller.Available(); err != nil {
		return nil, unavailable("browser control driver could not be loaded", err)
	}

	target := strings.TrimSpace(req.URL)
	if target == "" {
		target = r.chatURL
	}
	if err := checkURLAllowed(*profile, target); err != nil {
		return nil, unavailable("target url rejected", err)
	}

	connectionURL, err := r.ensureEndpoint(ctx, *profile)
	if err != nil {
		return nil, err
	}

	r.log.Debugf("atlas[%s] opening %s via %s (profile %s)", runID, target, connectionURL, profile.Name)
	ref, err := r.controller.OpenPage(ctx, connectionURL, target)
	if err != nil {
		return nil, unavailable("failed to open page", err)
	}

	return r.drive(ctx, runID, connectionURL, ref, req, start)
}

func (r *Runner) resolveProfile(name string) (*Profile, error) {
	if r.profiles == nil {
		return nil, unavailable("no browser profile configured", nil)
	}
	profile, err := r.profiles.ResolveProfile(name)
	if err != nil {
		return nil, unavailable("browser profile could not be resolved", err)
	}
	if profile == nil {
		return nil, unavailable("no browser profile configured", nil)
	}
	if !profile.Enabled {
		return nil, unavailable(fmt.Sprintf("browser profile %q is disabled", profile.Name), nil)
	}
	return profile, nil
}

// ensureEndpoint returns a CDP endpoint for profile, starting the browser
// when it is not running.
func (r *Runner) ensureEndpoint(ctx context.Context, profile Profile) (string, error) {
	if r.lifecycle == nil {
		return "", unavailable("no browser lifecycle configured", nil)
	}

	status, err := r.lifecycle.Status(ctx, profile)
	if err != nil {
		return "", unavailable("browser status check failed", err)
	}
	if !status.Running {
		if err := r.lifecycle.Start(ctx, profile); err != nil {
			return "", unavailable(fmt.Sprintf("failed to start browser for profile %q", profile.Name), err)
		}
		if status, err = r.lifecycle.Status(ctx, profile); err != nil {
			return "", unavailable("browser status check failed", err)
		}
	}

	url := strings.TrimSpace(status.ConnectionURL)
	if url == "" {
		url = strings.TrimSpace(profile.ConnectionURL)
	}
	if url == "" {
		return "", unavailable(fmt.Sprintf("browser for profile %q is not reachable: no CDP endpoint", profile.Name), nil)
	}
	return url, nil
}

// drive runs the page stages. The page is closed on every exit, including
// a panic from the driver, which is reported as an UnavailableError.
func (r *Runner) drive(ctx context.Context, runID, connectionURL string, ref PageRef, req Request, start time.Time) (res *Result, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = unavailable("unexpected failure while driving the page", fmt.Errorf("%v", rec))
		}
		bestEffortDo(r.log, "close page "+ref.TargetID, func() error {
			return r.controller.ClosePage(context.WithoutCancel(ctx), connectionURL, ref.TargetID)
		})
	}()

	page, err := r.controller.GetPage(ctx, connectionURL, ref.TargetID)
	if err != nil {
		return nil, unavailable("failed to attach to page", err)
	}

	d := &driver{
		page:      page,
		policy:    r.policy,
		selectors: r.selectors,
		log:       r.log,
		runID:     runID,
		now:       r.now,
		sleep:     r.sleep,
	}

	bestEffortDo(r.log, "document ready", func() error {
		return page.WaitForDocumentReady(r.policy.DocumentReadyCap)
	})

	input, err := d.findInput(ctx, req.Timeout)
	if err != nil {
		return nil, err
	}

	baseline := d.countOrZero(r.selectors.AssistantMessage)
	d.debugf("baseline assistant messages: %d", baseline)

	if err := input.Fill(req.Prompt, minDuration(r.policy.FillCap, req.Timeout)); err != nil {
		return nil, unavailable("failed to enter prompt", err)
	}

	d.submit(input)

	message, err := d.waitForReply(baseline, req.Timeout)
	if err != nil {
		return nil, asUnavailable("reply detection failed", err)
	}

	text := d.readStable(ctx, message, req.Timeout)
	if text == "" {
		return nil, unavailable("assistant response was empty", nil)
	}

	return &Result{Text: text, TookMs: r.now().Sub(start).Milliseconds()}, nil
}
