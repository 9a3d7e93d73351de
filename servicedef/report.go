package servicedef

import (
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

type Report struct {
	StartedAt time.Time    `json:"startedAt"`
	BaseURL   string       `json:"baseUrl"`
	OK        bool         `json:"ok"`
	Cases     []ReportCase `json:"cases"`
}

type ReportCase struct {
	ID         string              `json:"id"`
	Browser    string              `json:"browser,omitempty"`
	Outcome    string              `json:"outcome"`
	ErrorKind  string              `json:"errorKind,omitempty"`
	Errors     []string            `json:"errors,omitempty"`
	DurationMS ldvalue.OptionalInt `json:"durationMs"` // null for the setup case
}
