package atlas

import (
	"fmt"
	"net/url"

	"github.com/gobwas/glob"
)

// checkURLAllowed verifies target is an absolute http(s) URL and, when the
// profile lists allowed patterns, that it matches one of them.
func checkURLAllowed(profile Profile, target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url %q is not an absolute http(s) url", target)
	}

	if len(profile.AllowedURLs) == 0 {
		return nil
	}

	for _, pattern := range profile.AllowedURLs {
		g, err := glob.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid allowed_urls pattern %q: %w", pattern, err)
		}
		if g.Match(target) {
			return nil
		}
	}
	return fmt.Errorf("url %q is not allowed by profile %q", target, profile.Name)
}
