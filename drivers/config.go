package drivers

import "time"

// Config holds options shared by all browser backends.
type Config struct {
	Headless          bool          `yaml:"headless"`
	ImplicitWait      time.Duration `yaml:"implicitWait"`      // how long to look for an element before giving up
	PageLoadTimeout   time.Duration `yaml:"pageLoadTimeout"`   // how long a navigation may take
	LaunchTimeout     time.Duration `yaml:"launchTimeout"`     // how long starting a browser may take
	ChromePath        string        `yaml:"chromePath"`        // overrides the Chrome/Chromium executable
	FirefoxPath       string        `yaml:"firefoxPath"`       // overrides the Playwright Firefox executable
	EdgePath          string        `yaml:"edgePath"`          // overrides the Edge executable
	IEDriverPath      string        `yaml:"ieDriverPath"`      // overrides the IEDriverServer executable
	InstallPlaywright bool          `yaml:"installPlaywright"` // download the Playwright driver and Firefox if missing
}

// DefaultConfig returns the configuration used when nothing else is specified.
func DefaultConfig() Config {
	return Config{
		Headless:        true,
		ImplicitWait:    5 * time.Second,
		PageLoadTimeout: 30 * time.Second,
		LaunchTimeout:   60 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ImplicitWait <= 0 {
		c.ImplicitWait = d.ImplicitWait
	}
	if c.PageLoadTimeout <= 0 {
		c.PageLoadTimeout = d.PageLoadTimeout
	}
	if c.LaunchTimeout <= 0 {
		c.LaunchTimeout = d.LaunchTimeout
	}
	return c
}
