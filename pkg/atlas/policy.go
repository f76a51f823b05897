package atlas

import "time"

// Policy holds the timing heuristics of a run. The defaults were tuned
// against the production chat frontend; override them from configuration
// when its rendering behavior changes.
type Policy struct {
	// PollInterval spaces stability samples
	PollInterval time.Duration

	// StableTicks is how many consecutive equal non-empty samples after the
	// first one mark a reply as finished
	StableTicks int

	// SelectorWaitCap and SelectorWaitFloor bound the visibility wait for
	// each input selector
	SelectorWaitCap   time.Duration
	SelectorWaitFloor time.Duration

	// LocateFloor is the minimum overall budget for finding the input
	LocateFloor time.Duration

	// ReplyFloor is the minimum wait for a new assistant message
	ReplyFloor time.Duration

	// DocumentReadyCap bounds the DOMContentLoaded wait
	DocumentReadyCap time.Duration

	// FillCap bounds filling the input
	FillCap time.Duration

	// ActionTimeout bounds clicks and key presses
	ActionTimeout time.Duration

	// ReadTimeout bounds each text read while polling
	ReadTimeout time.Duration
}

// DefaultPolicy returns the production heuristics.
func DefaultPolicy() Policy {
	return Policy{
		PollInterval:      400 * time.Millisecond,
		StableTicks:       3,
		SelectorWaitCap:   2500 * time.Millisecond,
		SelectorWaitFloor: 500 * time.Millisecond,
		LocateFloor:       2 * time.Second,
		ReplyFloor:        2 * time.Second,
		DocumentReadyCap:  15 * time.Second,
		FillCap:           10 * time.Second,
		ActionTimeout:     5 * time.Second,
		ReadTimeout:       time.Second,
	}
}

// WithDefaults fills zero fields from DefaultPolicy.
func (p Policy) WithDefaults() Policy {
	d := DefaultPolicy()
	if p.PollInterval <= 0 {
		p.PollInterval = d.PollInterval
	}
	if p.StableTicks <= 0 {
		p.StableTicks = d.StableTicks
	}
	if p.SelectorWaitCap <= 0 {
		p.SelectorWaitCap = d.SelectorWaitCap
	}
	if p.SelectorWaitFloor <= 0 {
		p.SelectorWaitFloor = d.SelectorWaitFloor
	}
	if p.LocateFloor <= 0 {
		p.LocateFloor = d.LocateFloor
	}
	if p.ReplyFloor <= 0 {
		p.ReplyFloor = d.ReplyFloor
	}
	if p.DocumentReadyCap <= 0 {
		p.DocumentReadyCap = d.DocumentReadyCap
	}
	if p.FillCap <= 0 {
		p.FillCap = d.FillCap
	}
	if p.ActionTimeout <= 0 {
		p.ActionTimeout = d.ActionTimeout
	}
	if p.ReadTimeout <= 0 {
		p.ReadTimeout = d.ReadTimeout
	}
	return p
}

// Selectors locate the chat page's elements.
type Selectors struct {
	// Input is tried in order, most specific first
	Input []string

	// Send is the dedicated submit control
	Send string

	// AssistantMessage matches every assistant-authored message
	AssistantMessage string
}

// DefaultSelectors returns selectors for the production chat frontend.
func DefaultSelectors() Selectors {
	return Selectors{
		Input: []string{
			"#prompt-textarea",
			`[data-testid="prompt-textarea"]`,
			`textarea[placeholder*="Message"]`,
			`[contenteditable="true"]`,
			"textarea",
		},
		Send:             `button[data-testid="send-button"]`,
		AssistantMessage: `[data-message-author-role="assistant"]`,
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
