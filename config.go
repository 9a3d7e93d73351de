package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/demowebapp/browser-contract-tests/drivers"
	"github.com/demowebapp/browser-contract-tests/webapp"
	"github.com/demowebapp/browser-contract-tests/webtests"
)

// runConfig is everything that can be set in the configuration file.
type runConfig struct {
	App         webapp.Config  `yaml:"app"`
	Drivers     drivers.Config `yaml:"drivers"`
	Browsers    []drivers.Kind `yaml:"browsers"`
	WaitTimeout time.Duration  `yaml:"waitTimeout"`
	CaseTimeout time.Duration  `yaml:"caseTimeout"`
	Report      string         `yaml:"report"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		App:         webapp.DefaultConfig(),
		Drivers:     drivers.DefaultConfig(),
		Browsers:    drivers.DefaultKinds(),
		WaitTimeout: webtests.DefaultWaitTimeout,
		CaseTimeout: webtests.DefaultCaseTimeout,
	}
}

// loadRunConfig reads a YAML configuration file on top of the defaults. Unknown keys are errors.
func loadRunConfig(path string) (runConfig, error) {
	config := defaultRunConfig()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return config, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	return config, nil
}

// resolveConfig loads the configuration file, if any, and applies the flags that were set
// explicitly on the command line.
func (c *commandParams) resolveConfig() (runConfig, error) {
	config, err := loadRunConfig(c.configPath)
	if err != nil {
		return config, err
	}
	if c.set["addr"] {
		config.App.Addr = c.addr
	}
	if c.set["defect"] {
		config.App.Defect = c.defect
	}
	if c.set["browser"] {
		kinds, err := drivers.ParseKinds(c.browsers)
		if err != nil {
			return config, err
		}
		config.Browsers = kinds
	}
	if c.set["headless"] {
		config.Drivers.Headless = c.headless
	}
	if c.set["install-playwright"] {
		config.Drivers.InstallPlaywright = c.installPlaywright
	}
	if c.set["wait-timeout"] {
		config.WaitTimeout = c.waitTimeout
	}
	if c.set["case-timeout"] {
		config.CaseTimeout = c.caseTimeout
	}
	if c.set["report"] {
		config.Report = c.reportPath
	}
	if len(config.Browsers) == 0 {
		return config, fmt.Errorf("no browsers selected")
	}
	return config, nil
}
