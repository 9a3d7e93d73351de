package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/demowebapp/browser-contract-tests/framework"
)

type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*s = append(*s, v)
		}
	}
	return nil
}

type commandParams struct {
	configPath        string
	addr              string
	browsers          stringList
	filters           framework.RegexFilters
	headless          bool
	defect            bool
	installPlaywright bool
	waitTimeout       time.Duration
	caseTimeout       time.Duration
	reportPath        string
	debug             bool
	debugAll          bool

	// names of the flags that were given explicitly, which take precedence over the config file
	set map[string]bool
}

func (c *commandParams) Read(args []string) bool {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&c.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&c.addr, "addr", "", "address for the demo application to listen on (default \"localhost:5000\")")
	fs.Var(&c.browsers, "browser", "browser(s) to test: chrome, firefox, ie, edge (default chrome,firefox,ie)")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run, one level per \"/\"")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.headless, "headless", true, "run browsers without a visible window where supported")
	fs.BoolVar(&c.defect, "defect", false, "serve a page whose button does nothing, to check that failures are detected")
	fs.BoolVar(&c.installPlaywright, "install-playwright", false, "download the Playwright driver and Firefox if needed")
	fs.DurationVar(&c.waitTimeout, "wait-timeout", 0, "how long to wait for the page to react to a click (default 10s)")
	fs.DurationVar(&c.caseTimeout, "case-timeout", 0, "hard limit on each test, after which its browser is closed (default 2m)")
	fs.StringVar(&c.reportPath, "report", "", "write a JSON report of the results to this file")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		if err != flag.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
		}
		return false
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return false
	}
	c.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { c.set[f.Name] = true })
	return true
}

// rerunCommand builds a command line that runs only the specified test with the same settings.
func (c *commandParams) rerunCommand(program string, id framework.TestID) string {
	var b commandBuilder
	b.add(program)
	if c.configPath != "" {
		b.add("-config", c.configPath)
	}
	if c.set["addr"] {
		b.add("-addr", c.addr)
	}
	if c.set["headless"] {
		b.add(fmt.Sprintf("-headless=%t", c.headless))
	}
	if c.defect {
		b.add("-defect")
	}
	b.add("-run", framework.ExactMatchPattern(id))
	b.add("-debug")
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
