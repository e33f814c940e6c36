package model

import (
	"fmt"
	"sort"

	"github.com/gobwas/glob"
)

// Config carries the recognized options for one run. It is immutable once
// validated and safe to share across concurrent workers.
type Config struct {
	// Skip lists parameter names always forced into the synthesized skip
	// list, whether or not they are detected on the function.
	Skip []string

	// Suffix is literal text appended inside the marker's argument list
	// after skip(...), e.g. "ret".
	Suffix string

	// Exclude holds glob patterns matched against slash-separated relative
	// file paths and against qualified function names.
	Exclude []string

	// LogInstrument selects the log_instrument::instrument marker form.
	LogInstrument bool

	compiled []glob.Glob
}

// Validate compiles the exclude patterns. It must be called once before the
// config is used; an invalid pattern aborts the whole run.
func (c *Config) Validate() error {
	c.compiled = c.compiled[:0]

	for _, pattern := range c.Exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}

		c.compiled = append(c.compiled, g)
	}

	return nil
}

// Excluded reports whether the given relative path or qualified name matches
// any exclude pattern.
func (c *Config) Excluded(name string) bool {
	for _, g := range c.compiled {
		if g.Match(name) {
			return true
		}
	}

	return false
}

// ForcedSkips returns the configured skip names not already present in
// detected, sorted for deterministic output.
func (c *Config) ForcedSkips(detected []string) []string {
	seen := make(map[string]bool, len(detected))
	for _, name := range detected {
		seen[name] = true
	}

	var extra []string

	for _, name := range c.Skip {
		if !seen[name] {
			seen[name] = true

			extra = append(extra, name)
		}
	}

	sort.Strings(extra)

	return extra
}
