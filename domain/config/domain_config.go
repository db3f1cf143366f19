package config

import (
	"errors"
	"time"
)

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// History constraints
	HistoryLimit int
	MergeWindow  time.Duration

	// Persistence
	SaveDebounce time.Duration

	// Validation settings
	AllowSelfConnections bool
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		// A keystroke-level undo history; pushing past the limit
		// forgets the oldest step.
		HistoryLimit: 20,

		// Updates to the same card inside this window are treated as
		// one user gesture and share a single undo record.
		MergeWindow: 1500 * time.Millisecond,

		// Trailing window over which outbound saves are coalesced.
		SaveDebounce: 150 * time.Millisecond,

		AllowSelfConnections: true,
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.HistoryLimit < 1 {
		return errors.New("history limit must be at least 1")
	}
	if c.MergeWindow < 0 {
		return errors.New("merge window cannot be negative")
	}
	if c.SaveDebounce < 0 {
		return errors.New("save debounce cannot be negative")
	}
	return nil
}
