package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// profileFile is the YAML layout accepted by ImportProfiles:
//
//	default_profile: work
//	profiles:
//	  work:
//	    cdp_url: http://127.0.0.1:9222
//	    executable: /usr/bin/chromium
//	    debug_port: 9222
//	    allowed_urls: ["https://chatgpt.com/*"]
type profileFile struct {
	DefaultProfile string                 `yaml:"default_profile"`
	Profiles       map[string]profileYAML `yaml:"profiles"`
}

// profileYAML mirrors ProfileConfig with an optional enabled flag so
// omitted means enabled.
type profileYAML struct {
	CDPURL      string   `yaml:"cdp_url"`
	Enabled     *bool    `yaml:"enabled"`
	Executable  string   `yaml:"executable"`
	DebugPort   int      `yaml:"debug_port"`
	AllowedURLs []string `yaml:"allowed_urls"`
}

// ImportProfiles merges profiles from YAML into the section, replacing
// profiles of the same name. It returns how many profiles were imported.
// Nothing is applied if the document is invalid.
func (s *AtlasSection) ImportProfiles(r io.Reader) (int, error) {
	var doc profileFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to decode profiles: %w", err)
	}

	staged := make(map[string]ProfileConfig, len(doc.Profiles))
	for name, p := range doc.Profiles {
		if name == "" {
			return 0, fmt.Errorf("profile name must not be empty")
		}
		enabled := true
		if p.Enabled != nil {
			enabled = *p.Enabled
		}
		staged[name] = ProfileConfig{
			CDPURL:      p.CDPURL,
			Enabled:     enabled,
			Executable:  p.Executable,
			DebugPort:   p.DebugPort,
			AllowedURLs: p.AllowedURLs,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Profiles == nil {
		s.Profiles = make(map[string]ProfileConfig)
	}
	for name, p := range staged {
		s.Profiles[name] = p
	}
	if doc.DefaultProfile != "" {
		s.DefaultProfile = doc.DefaultProfile
	}
	return len(staged), nil
}

// ImportProfilesFile is ImportProfiles reading from path.
func (s *AtlasSection) ImportProfilesFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open profiles file: %w", err)
	}
	defer f.Close()
	return s.ImportProfiles(f)
}
