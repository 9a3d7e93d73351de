package drivers

import (
	"fmt"
	"strings"
)

// Kind identifies a browser and, through it, the automation backend that drives it.
type Kind int

const (
	Chrome Kind = iota
	Firefox
	InternetExplorer
	Edge
)

// AllKinds lists every kind a Factory knows how to create.
var AllKinds = []Kind{Chrome, Firefox, InternetExplorer, Edge}

// DefaultKinds returns the browsers that are tested when none are specified.
func DefaultKinds() []Kind {
	return []Kind{Chrome, Firefox, InternetExplorer}
}

func (k Kind) String() string {
	switch k {
	case Chrome:
		return "chrome"
	case Firefox:
		return "firefox"
	case InternetExplorer:
		return "internet-explorer"
	case Edge:
		return "edge"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind converts a browser name as given on the command line into a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "chrome", "chromium":
		return Chrome, nil
	case "firefox":
		return Firefox, nil
	case "ie", "internet-explorer", "internetexplorer":
		return InternetExplorer, nil
	case "edge", "msedge":
		return Edge, nil
	}
	return 0, fmt.Errorf("unknown browser %q", s)
}

// ParseKinds converts a list of browser names, dropping duplicates but keeping order.
func ParseKinds(names []string) ([]Kind, error) {
	var ret []Kind
	seen := make(map[Kind]bool)
	for _, n := range names {
		k, err := ParseKind(n)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			ret = append(ret, k)
		}
	}
	return ret, nil
}

// UnmarshalText allows a Kind to be read from YAML configuration.
func (k *Kind) UnmarshalText(data []byte) error {
	parsed, err := ParseKind(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
