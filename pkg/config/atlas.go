package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/yaoshengwang/openclaw/pkg/atlas"
)

const (
	// SectionIDAtlas is the identifier for the Atlas browser section
	SectionIDAtlas = "atlas"

	// DefaultProfileName is the profile used when a caller names none
	DefaultProfileName = "atlas"
)

// ProfileConfig is one named browser profile.
type ProfileConfig struct {
	CDPURL      string   `yaml:"cdp_url"`
	Enabled     bool     `yaml:"enabled"`
	Executable  string   `yaml:"executable"`
	DebugPort   int      `yaml:"debug_port"`
	AllowedURLs []string `yaml:"allowed_urls"`
}

// ConnectionURL is the configured CDP endpoint, or a loopback URL on the
// debug port when only a port is set.
func (p ProfileConfig) ConnectionURL() string {
	if u := strings.TrimSpace(p.CDPURL); u != "" {
		return u
	}
	if p.DebugPort > 0 {
		return fmt.Sprintf("http://127.0.0.1:%d", p.DebugPort)
	}
	return ""
}

// AttachOnly reports whether the profile can only be attached to, never launched.
func (p ProfileConfig) AttachOnly() bool {
	return strings.TrimSpace(p.Executable) == ""
}

// AtlasSection holds browser profiles, the chat URL and the driving policy.
type AtlasSection struct {
	Enabled        bool
	DefaultProfile string
	Profiles       map[string]ProfileConfig
	ChatURL        string

	PollInterval     time.Duration
	StableTicks      int
	SelectorWaitCap  time.Duration
	DocumentReadyCap time.Duration
	FillCap          time.Duration

	mu sync.RWMutex
}

// NewAtlasSection creates the section with Atlas enabled and no profiles.
func NewAtlasSection() *AtlasSection {
	return &AtlasSection{
		Enabled:        true,
		DefaultProfile: DefaultProfileName,
		Profiles:       make(map[string]ProfileConfig),
	}
}

// ID returns the section identifier.
func (s *AtlasSection) ID() string {
	return SectionIDAtlas
}

// Title returns the section title.
func (s *AtlasSection) Title() string {
	return "Atlas Browser"
}

// Description returns the section description.
func (s *AtlasSection) Description() string {
	return "Browser profiles used to drive the Atlas chat page. Durations accept Go syntax (\"400ms\") or milliseconds; zero keeps the built-in default."
}

// Data returns the current configuration data.
func (s *AtlasSection) Data() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profiles := make(map[string]interface{}, len(s.Profiles))
	for name, p := range s.Profiles {
		allowed := make([]interface{}, 0, len(p.AllowedURLs))
		for _, pattern := range p.AllowedURLs {
			allowed = append(allowed, pattern)
		}
		profiles[name] = map[string]interface{}{
			"cdp_url":      p.CDPURL,
			"enabled":      p.Enabled,
			"executable":   p.Executable,
			"debug_port":   p.DebugPort,
			"allowed_urls": allowed,
		}
	}

	return map[string]interface{}{
		"enabled":            s.Enabled,
		"default_profile":    s.DefaultProfile,
		"profiles":           profiles,
		"chat_url":           s.ChatURL,
		"poll_interval":      formatDuration(s.PollInterval),
		"stable_ticks":       s.StableTicks,
		"selector_wait_cap":  formatDuration(s.SelectorWaitCap),
		"document_ready_cap": formatDuration(s.DocumentReadyCap),
		"fill_cap":           formatDuration(s.FillCap),
	}
}

// SetData updates the configuration from the provided data. Values come
// either from decoded JSON or from another section's Data.
func (s *AtlasSection) SetData(data map[string]interface{}) error {
	if data == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if enabled, ok := data["enabled"].(bool); ok {
		s.Enabled = enabled
	}
	if name, ok := data["default_profile"].(string); ok {
		s.DefaultProfile = name
	}
	if chatURL, ok := data["chat_url"].(string); ok {
		s.ChatURL = chatURL
	}

	if raw, ok := data["profiles"]; ok {
		profiles, err := parseProfiles(raw)
		if err != nil {
			return err
		}
		s.Profiles = profiles
	}

	durations := map[string]*time.Duration{
		"poll_interval":      &s.PollInterval,
		"selector_wait_cap":  &s.SelectorWaitCap,
		"document_ready_cap": &s.DocumentReadyCap,
		"fill_cap":           &s.FillCap,
	}
	for key, dst := range durations {
		raw, ok := data[key]
		if !ok {
			continue
		}
		d, err := parseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}

	if raw, ok := data["stable_ticks"]; ok {
		n, ok := toInt(raw)
		if !ok {
			return fmt.Errorf("stable_ticks: expected a number, got %T", raw)
		}
		s.StableTicks = n
	}

	return nil
}

// Validate validates the current configuration.
func (s *AtlasSection) Validate() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ChatURL != "" {
		u, err := url.Parse(s.ChatURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("chat_url %q is not an absolute URL", s.ChatURL)
		}
	}
	if s.StableTicks < 0 {
		return fmt.Errorf("stable_ticks must not be negative")
	}
	for _, d := range []time.Duration{s.PollInterval, s.SelectorWaitCap, s.DocumentReadyCap, s.FillCap} {
		if d < 0 {
			return fmt.Errorf("durations must not be negative")
		}
	}

	for name, p := range s.Profiles {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("profile name must not be empty")
		}
		if p.DebugPort < 0 || p.DebugPort > 65535 {
			return fmt.Errorf("profile %q: debug_port %d out of range", name, p.DebugPort)
		}
		for _, pattern := range p.AllowedURLs {
			if _, err := glob.Compile(pattern); err != nil {
				return fmt.Errorf("profile %q: bad allowed_urls pattern %q: %w", name, pattern, err)
			}
		}
	}
	return nil
}

// Reset resets the section to default configuration.
func (s *AtlasSection) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Enabled = true
	s.DefaultProfile = DefaultProfileName
	s.Profiles = make(map[string]ProfileConfig)
	s.ChatURL = ""
	s.PollInterval = 0
	s.StableTicks = 0
	s.SelectorWaitCap = 0
	s.DocumentReadyCap = 0
	s.FillCap = 0
}

// SetProfile adds or replaces a profile.
func (s *AtlasSection) SetProfile(name string, profile ProfileConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Profiles == nil {
		s.Profiles = make(map[string]ProfileConfig)
	}
	s.Profiles[name] = profile
}

// GetProfile returns the named profile.
func (s *AtlasSection) GetProfile(name string) (ProfileConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.Profiles[name]
	return p, ok
}

// ProfileNames returns the configured profile names, sorted.
func (s *AtlasSection) ProfileNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.Profiles))
	for name := range s.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetChatURL returns the chat page URL, defaulting to the public Atlas URL.
func (s *AtlasSection) GetChatURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ChatURL == "" {
		return atlas.DefaultChatURL
	}
	return s.ChatURL
}

// ResolveProfile maps a profile name to a resolved profile. An empty name
// means the default profile. It returns nil without error when nothing is
// configured for the default, and an error for an unknown explicit name.
func (s *AtlasSection) ResolveProfile(name string) (*atlas.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	explicit := strings.TrimSpace(name) != ""
	if !explicit {
		name = s.DefaultProfile
		if name == "" {
			name = DefaultProfileName
		}
	}

	p, ok := s.Profiles[name]
	if !ok {
		if explicit {
			return nil, fmt.Errorf("unknown browser profile %q", name)
		}
		return nil, nil
	}

	return &atlas.Profile{
		Name:          name,
		ConnectionURL: p.ConnectionURL(),
		Enabled:       s.Enabled && p.Enabled,
		AllowedURLs:   append([]string(nil), p.AllowedURLs...),
	}, nil
}

// Policy returns the driving policy with configured overrides applied.
func (s *AtlasSection) Policy() atlas.Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return atlas.Policy{
		PollInterval:     s.PollInterval,
		StableTicks:      s.StableTicks,
		SelectorWaitCap:  s.SelectorWaitCap,
		DocumentReadyCap: s.DocumentReadyCap,
		FillCap:          s.FillCap,
	}.WithDefaults()
}

func parseProfiles(raw interface{}) (map[string]ProfileConfig, error) {
	out := make(map[string]ProfileConfig)
	switch v := raw.(type) {
	case nil:
		return out, nil
	case map[string]ProfileConfig:
		for name, p := range v {
			out[name] = p
		}
		return out, nil
	case map[string]interface{}:
		for name, entry := range v {
			fields, ok := entry.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("profile %q: expected an object, got %T", name, entry)
			}
			p, err := parseProfile(fields)
			if err != nil {
				return nil, fmt.Errorf("profile %q: %w", name, err)
			}
			out[name] = p
		}
		return out, nil
	default:
		return nil, fmt.Errorf("profiles: expected an object, got %T", raw)
	}
}

func parseProfile(fields map[string]interface{}) (ProfileConfig, error) {
	p := ProfileConfig{Enabled: true}
	if v, ok := fields["cdp_url"].(string); ok {
		p.CDPURL = v
	}
	if v, ok := fields["enabled"].(bool); ok {
		p.Enabled = v
	}
	if v, ok := fields["executable"].(string); ok {
		p.Executable = v
	}
	if raw, ok := fields["debug_port"]; ok {
		port, ok := toInt(raw)
		if !ok {
			return p, fmt.Errorf("debug_port: expected a number, got %T", raw)
		}
		p.DebugPort = port
	}
	switch v := fields["allowed_urls"].(type) {
	case []string:
		p.AllowedURLs = append([]string(nil), v...)
	case []interface{}:
		for _, item := range v {
			pattern, ok := item.(string)
			if !ok {
				return p, fmt.Errorf("allowed_urls: expected strings, got %T", item)
			}
			p.AllowedURLs = append(p.AllowedURLs, pattern)
		}
	}
	return p, nil
}

func parseDuration(raw interface{}) (time.Duration, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case string:
		if v == "" {
			return 0, nil
		}
		return time.ParseDuration(v)
	case time.Duration:
		return v, nil
	}
	if ms, ok := toInt(raw); ok {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, fmt.Errorf("expected a duration, got %T", raw)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
