// internal/browser/types.go
package browser

import "time"

// Config defines the headless browser session settings.
type Config struct {
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Timeout        time.Duration // zero means no session deadline
}

// DefaultConfig returns the settings used for verification runs.
func DefaultConfig() *Config {
	return &Config{
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 800,
	}
}
