package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter decides whether a test runs.
//
// MustMatch patterns are split on "/" and matched one level of the test path at a time, the way
// "go test -run" works, so that a group still runs when a pattern only names one of its subtests.
// MustNotMatch patterns are matched against the whole path.
func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatchPath(id.Path)) &&
		!r.MustNotMatch.AnyMatch(id.String())
}

type RegexList struct {
	patterns []*regexp.Regexp
	levels   [][]*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	var levels []*regexp.Regexp
	for _, part := range strings.Split(value, "/") {
		lrx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		levels = append(levels, lrx)
	}
	r.patterns = append(r.patterns, rx)
	r.levels = append(r.levels, levels)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// AnyMatchPath reports whether any pattern matches the path level by level. Levels beyond the
// end of either the pattern or the path are not checked.
func (r RegexList) AnyMatchPath(path []string) bool {
	for _, levels := range r.levels {
		matched := true
		for i := 0; i < len(levels) && i < len(path); i++ {
			if !levels[i].MatchString(path[i]) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

// PrintFilterDescription tells the user which tests the filters will exclude and which browsers
// the run will use.
func PrintFilterDescription(w io.Writer, filters RegexFilters, browsers []string) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(w)
	}

	if len(browsers) > 0 {
		fmt.Fprintln(w, "Tests will run against the following browsers:")
		fmt.Fprintf(w, "  %s\n", strings.Join(browsers, ", "))
		fmt.Fprintln(w)
	}
}

// ExactMatchPattern returns a pattern that selects only the specified test, for use with -run.
func ExactMatchPattern(id TestID) string {
	parts := make([]string, 0, len(id.Path))
	for _, p := range id.Path {
		parts = append(parts, "^"+regexp.QuoteMeta(p)+"$")
	}
	return strings.Join(parts, "/")
}
