// SPDX-License-Identifier: MPL-2.0

package walker

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher classifies file names with doublestar include and exclude patterns.
// Names are lower-cased before matching, so patterns should be lower case.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher validates the patterns and returns a Matcher.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid file pattern %q", p)
		}
	}
	return &Matcher{
		include: lowerAll(include),
		exclude: lowerAll(exclude),
	}, nil
}

// Match reports whether name is included and not excluded.
func (m *Matcher) Match(name string) bool {
	lower := strings.ToLower(name)
	if !matchAny(m.include, lower) {
		return false
	}
	return !matchAny(m.exclude, lower)
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		// Patterns were validated in NewMatcher.
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
