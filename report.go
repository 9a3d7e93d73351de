package main

import (
	"encoding/json"
	"os"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/demowebapp/browser-contract-tests/framework"
	"github.com/demowebapp/browser-contract-tests/servicedef"
)

func buildReport(startedAt time.Time, baseURL string, results framework.Results, runErr error) servicedef.Report {
	report := servicedef.Report{
		StartedAt: startedAt,
		BaseURL:   baseURL,
		OK:        runErr == nil && results.OK(),
		Cases:     []servicedef.ReportCase{},
	}
	if runErr != nil {
		report.Cases = append(report.Cases, servicedef.ReportCase{
			ID:        "setup",
			Outcome:   string(framework.OutcomeError),
			ErrorKind: framework.KindOf(runErr).String(),
			Errors:    []string{runErr.Error()},
		})
		return report
	}
	for _, r := range results.Tests {
		c := servicedef.ReportCase{
			ID:         r.TestID.String(),
			Outcome:    string(r.Outcome),
			DurationMS: ldvalue.NewOptionalInt(int(r.Duration / time.Millisecond)),
		}
		if len(r.TestID.Path) > 1 {
			c.Browser = r.TestID.Name()
		}
		if r.Outcome == framework.OutcomeFailed || r.Outcome == framework.OutcomeError {
			c.ErrorKind = r.Kind.String()
		}
		for _, err := range r.Errors {
			c.Errors = append(c.Errors, err.Error())
		}
		report.Cases = append(report.Cases, c)
	}
	return report
}

func writeReport(path string, report servicedef.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
