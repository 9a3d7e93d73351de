package framework

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Outcome is the reported status of a single test.
type Outcome string

const (
	OutcomePassed  Outcome = "passed"
	OutcomeFailed  Outcome = "failed"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Errors   []error
	Skipped  bool
	Outcome  Outcome
	Kind     ErrorKind
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Count returns the number of recorded tests with the specified outcome.
func (r Results) Count(outcome Outcome) int {
	n := 0
	for _, t := range r.Tests {
		if t.Outcome == outcome {
			n++
		}
	}
	return n
}

// Find returns the result for the test with the specified ID, if it was recorded.
func (r Results) Find(id string) (TestResult, bool) {
	for _, t := range r.Tests {
		if t.TestID.String() == id {
			return t, true
		}
	}
	return TestResult{}, false
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Name returns the last component of the test's path.
func (t TestID) Name() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// outcomeFor decides how a finished test is reported. Any environment error wins over behavior
// failures, since a broken environment makes the other errors meaningless.
func outcomeFor(failed, skipped bool, errs []error) (Outcome, ErrorKind) {
	if skipped {
		return OutcomeSkipped, AssertionFailure
	}
	if !failed {
		return OutcomePassed, AssertionFailure
	}
	kind := AssertionFailure
	found := false
	for _, err := range errs {
		k := KindOf(err)
		if k.IsEnvironment() {
			return OutcomeError, k
		}
		if !found {
			kind, found = k, true
		}
	}
	return OutcomeFailed, kind
}

// PrintResults writes a summary of all leaf test results.
func PrintResults(w io.Writer, results Results) {
	passed := color.New(color.FgGreen)
	failed := color.New(color.FgRed)
	errored := color.New(color.FgYellow)

	for _, f := range results.Failures {
		switch f.Outcome {
		case OutcomeError:
			errored.Fprintf(w, "ERROR: %s (%s)\n", f.TestID, f.Kind)
		default:
			failed.Fprintf(w, "FAILED: %s (%s)\n", f.TestID, f.Kind)
		}
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
	}

	summary := fmt.Sprintf("%d passed, %d failed, %d errors, %d skipped",
		results.Count(OutcomePassed), results.Count(OutcomeFailed),
		results.Count(OutcomeError), results.Count(OutcomeSkipped))
	if results.OK() {
		passed.Fprintf(w, "All tests passed: %s\n", summary)
	} else {
		failed.Fprintf(w, "Some tests did not pass: %s\n", summary)
	}
}
