package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"

	"github.com/demowebapp/browser-contract-tests/drivers"
	"github.com/demowebapp/browser-contract-tests/framework"
	"github.com/demowebapp/browser-contract-tests/webapp"
	"github.com/demowebapp/browser-contract-tests/webtests"
)

const (
	exitFailed    = 1
	exitBadParams = 2
	exitNoStartup = 3
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(exitBadParams)
	}
	config, err := params.resolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", err)
		os.Exit(exitBadParams)
	}

	hostLoggers := ldlog.NewDefaultLoggers()
	hostLoggers.SetPrefix("[app]")
	if params.debugAll {
		hostLoggers.SetMinLevel(ldlog.Debug)
	} else {
		hostLoggers.SetMinLevel(ldlog.Warn)
	}

	host := webapp.NewHost(config.App, hostLoggers)
	factory := drivers.NewFactory(config.Drivers)

	var browserNames []string
	for _, k := range config.Browsers {
		browserNames = append(browserNames, k.String())
	}
	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters, browserNames)

	fmt.Println("Running test suite")

	testLogger := &ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	startedAt := time.Now()
	env := webtests.Environment{
		Host:        host,
		Factory:     factory,
		Kinds:       config.Browsers,
		WaitTimeout: config.WaitTimeout,
		CaseTimeout: config.CaseTimeout,
	}
	results, runErr := webtests.RunTestSuite(env, params.filters.AsFilter, testLogger)

	if config.Report != "" {
		report := buildReport(startedAt, host.BaseURL(), results, runErr)
		if err := writeReport(config.Report, report); err != nil {
			fmt.Fprintf(os.Stderr, "Could not write report: %s\n", err)
		}
	}

	if runErr != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Could not start the application: %s\n", runErr)
		os.Exit(exitNoStartup)
	}

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To rerun a single test:")
		for _, f := range results.Failures {
			fmt.Printf("  %s\n", params.rerunCommand(os.Args[0], f.TestID))
		}
		os.Exit(exitFailed)
	}
}
