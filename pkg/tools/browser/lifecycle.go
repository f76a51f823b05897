package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/yaoshengwang/openclaw/pkg/atlas"
)

const (
	// DefaultDebugPort is used when a launchable profile names no port
	DefaultDebugPort = 9222

	// DefaultStartTimeout bounds waiting for a launched browser's CDP endpoint
	DefaultStartTimeout = 30 * time.Second

	probeTimeout = 2 * time.Second
	probeEvery   = 200 * time.Millisecond
)

// LaunchSpec describes how to start a profile's browser.
type LaunchSpec struct {
	Executable  string
	Port        int
	UserDataDir string
	Headless    bool
	Args        []string
}

// LaunchLookup returns the launch spec for a profile name. Profiles without
// an executable are attach-only.
type LaunchLookup func(profile string) (LaunchSpec, bool)

// Lifecycle checks and starts profile browsers over the CDP HTTP endpoint.
type Lifecycle struct {
	client       *http.Client
	lookup       LaunchLookup
	startTimeout time.Duration
	log          atlas.Logger

	// startProcess launches cmd and waitProcess reaps it; replaced in tests
	startProcess func(cmd *exec.Cmd) error
	waitProcess  func(cmd *exec.Cmd) error

	mu    sync.Mutex
	procs map[string]*process
}

// process is a launched browser. done is closed once it has exited.
type process struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func (p *process) exited() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithHTTPClient replaces the client used for probes.
func WithHTTPClient(c *http.Client) LifecycleOption {
	return func(l *Lifecycle) {
		l.client = c
	}
}

// WithStartTimeout bounds how long Start waits for the endpoint.
func WithStartTimeout(d time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if d > 0 {
			l.startTimeout = d
		}
	}
}

// NewLifecycle creates a Lifecycle. lookup may be nil, making every
// profile attach-only.
func NewLifecycle(lookup LaunchLookup, log atlas.Logger, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		client:       &http.Client{Timeout: probeTimeout},
		lookup:       lookup,
		startTimeout: DefaultStartTimeout,
		log:          log,
		startProcess: func(cmd *exec.Cmd) error { return cmd.Start() },
		waitProcess:  func(cmd *exec.Cmd) error { return cmd.Wait() },
		procs:        make(map[string]*process),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Status probes the profile's /json/version endpoint. An unreachable
// endpoint is reported as not running, not as an error.
func (l *Lifecycle) Status(ctx context.Context, profile atlas.Profile) (atlas.Status, error) {
	base := l.baseURL(profile)
	if base == "" {
		return atlas.Status{}, nil
	}

	wsURL, ok := l.probe(ctx, base)
	if !ok {
		return atlas.Status{}, nil
	}
	if wsURL == "" {
		wsURL = base
	}
	return atlas.Status{Running: true, ConnectionURL: wsURL}, nil
}

// Start launches the profile's browser and waits for its endpoint.
func (l *Lifecycle) Start(ctx context.Context, profile atlas.Profile) error {
	spec, ok := l.launchSpec(profile.Name)
	if !ok {
		return fmt.Errorf("profile %q is attach-only: start the browser yourself with --remote-debugging-port", profile.Name)
	}

	if err := l.launch(profile.Name, spec); err != nil {
		return err
	}

	base := l.baseURL(profile)
	if base == "" {
		base = fmt.Sprintf("http://127.0.0.1:%d", spec.Port)
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.startTimeout)
	defer cancel()

	for {
		if _, ok := l.probe(waitCtx, base); ok {
			return nil
		}
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("browser for profile %q did not expose CDP at %s within %s", profile.Name, base, l.startTimeout)
		case <-time.After(probeEvery):
		}
	}
}

// launch starts the browser unless one this Lifecycle started for the
// profile is still running.
func (l *Lifecycle) launch(name string, spec LaunchSpec) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if proc, ok := l.procs[name]; ok {
		if !proc.exited() {
			l.debugf("browser for profile %s already launched (pid %d)", name, pid(proc.cmd))
			return nil
		}
		l.debugf("browser for profile %s exited, relaunching", name)
		delete(l.procs, name)
	}

	cmd := exec.Command(spec.Executable, launchArgs(spec)...)
	if err := l.startProcess(cmd); err != nil {
		return fmt.Errorf("failed to start %s: %w", spec.Executable, err)
	}

	proc := &process{cmd: cmd, done: make(chan struct{})}
	go func() {
		if err := l.waitProcess(cmd); err != nil {
			l.debugf("browser for profile %s exited: %v", name, err)
		}
		close(proc.done)
	}()

	l.procs[name] = proc
	l.debugf("launched browser for profile %s (pid %d, port %d)", name, pid(cmd), spec.Port)
	return nil
}

// Shutdown kills browsers this Lifecycle launched.
func (l *Lifecycle) Shutdown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for name, proc := range l.procs {
		if proc.cmd.Process != nil && !proc.exited() {
			_ = proc.cmd.Process.Kill()
			<-proc.done
		}
		delete(l.procs, name)
	}
}

func (l *Lifecycle) launchSpec(name string) (LaunchSpec, bool) {
	if l.lookup == nil {
		return LaunchSpec{}, false
	}
	spec, ok := l.lookup(name)
	if !ok || strings.TrimSpace(spec.Executable) == "" {
		return LaunchSpec{}, false
	}
	if spec.Port <= 0 {
		spec.Port = DefaultDebugPort
	}
	return spec, true
}

// baseURL is the profile's HTTP endpoint, or loopback on its launch port.
func (l *Lifecycle) baseURL(profile atlas.Profile) string {
	if u := httpEndpoint(profile.ConnectionURL); u != "" {
		return u
	}
	if spec, ok := l.launchSpec(profile.Name); ok {
		return fmt.Sprintf("http://127.0.0.1:%d", spec.Port)
	}
	return ""
}

// probe fetches /json/version and returns the browser websocket URL.
func (l *Lifecycle) probe(ctx context.Context, base string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/json/version", nil)
	if err != nil {
		return "", false
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || !gjson.ValidBytes(body) {
		return "", false
	}
	return gjson.GetBytes(body, "webSocketDebuggerUrl").String(), true
}

func (l *Lifecycle) debugf(format string, v ...interface{}) {
	if l.log != nil {
		l.log.Debugf(format, v...)
	}
}

// httpEndpoint normalizes a CDP URL to its HTTP base. Websocket URLs map to
// the same host over http.
func httpEndpoint(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	switch {
	case u == "":
		return ""
	case strings.HasPrefix(u, "ws://"):
		u = "http://" + strings.TrimPrefix(u, "ws://")
	case strings.HasPrefix(u, "wss://"):
		u = "https://" + strings.TrimPrefix(u, "wss://")
	}
	if i := strings.Index(u, "/devtools/"); i >= 0 {
		u = u[:i]
	}
	return u
}

func launchArgs(spec LaunchSpec) []string {
	args := []string{
		fmt.Sprintf("--remote-debugging-port=%d", spec.Port),
		"--no-first-run",
		"--no-default-browser-check",
	}
	if spec.UserDataDir != "" {
		args = append(args, "--user-data-dir="+spec.UserDataDir)
	}
	if spec.Headless {
		args = append(args, "--headless=new")
	}
	args = append(args, spec.Args...)
	return append(args, "about:blank")
}

func pid(cmd *exec.Cmd) int {
	if cmd.Process == nil {
		return 0
	}
	return cmd.Process.Pid
}
