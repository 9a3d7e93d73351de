package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/demowebapp/browser-contract-tests/framework"
)

var (
	passedMarker  = color.New(color.FgGreen).SprintFunc()
	failedMarker  = color.New(color.FgRed).SprintFunc()
	errorMarker   = color.New(color.FgYellow).SprintFunc()
	skippedMarker = color.New(color.FgCyan).SprintFunc()
)

type ConsoleTestLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c *ConsoleTestLogger) TestStarted(id framework.TestID) {
	fmt.Printf("[%s]\n", id)
}

func (c *ConsoleTestLogger) TestError(id framework.TestID, err error) {
	for _, line := range strings.Split(err.Error(), "\n") {
		fmt.Printf("  %s\n", line)
	}
}

func (c *ConsoleTestLogger) TestFinished(id framework.TestID, result framework.TestResult, debugOutput framework.CapturedOutput) {
	failed := result.Outcome != framework.OutcomePassed
	switch result.Outcome {
	case framework.OutcomePassed:
		fmt.Printf("  %s (%s)\n", passedMarker("PASSED"), result.Duration.Round(time.Millisecond))
	case framework.OutcomeError:
		fmt.Printf("  %s: %s (%s)\n", errorMarker("ERROR"), id, result.Kind)
	default:
		fmt.Printf("  %s: %s (%s)\n", failedMarker("FAILED"), id, result.Kind)
	}
	if len(debugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(os.Stdout, "    DEBUG ")
	}
}

func (c *ConsoleTestLogger) TestSkipped(id framework.TestID, reason string) {
	if reason == "" {
		fmt.Printf("  %s: %s\n", skippedMarker("SKIPPED"), id)
	} else {
		fmt.Printf("  %s: %s (%s)\n", skippedMarker("SKIPPED"), id, reason)
	}
}
