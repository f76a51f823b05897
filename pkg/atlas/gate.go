package atlas

import (
	"strings"
)

// GateOptions are the inputs to CanUse.
type GateOptions struct {
	Resolver ProfileResolver
	Profile  string

	// Sandboxed callers may never drive the browser
	Sandboxed bool

	// IsTestEnvironment disables automation under test runners
	IsTestEnvironment bool
}

// CanUse reports whether a prompt should be attempted through Atlas.
// It never panics and never returns an error: any resolution failure means
// false.
func CanUse(opts GateOptions) (ok bool) {
	if opts.IsTestEnvironment || opts.Sandboxed || opts.Resolver == nil {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	profile, err := opts.Resolver.ResolveProfile(opts.Profile)
	if err != nil || profile == nil {
		return false
	}
	return profile.Enabled
}

// testEnvMarkers are environment variables set by test runners.
var testEnvMarkers = []string{
	"OPENCLAW_TEST",
	"VITEST",
	"JEST_WORKER_ID",
}

// DetectTestEnvironment reports whether getenv shows a recognized test
// runner. Callers pass the result to GateOptions.IsTestEnvironment.
func DetectTestEnvironment(getenv func(string) string) bool {
	if getenv == nil {
		return false
	}
	for _, key := range testEnvMarkers {
		if v := strings.TrimSpace(getenv(key)); v != "" && v != "0" && !strings.EqualFold(v, "false") {
			return true
		}
	}
	return strings.EqualFold(strings.TrimSpace(getenv("NODE_ENV")), "test")
}
