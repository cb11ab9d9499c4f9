// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"errors"
	"regexp"
	"strings"
)

const (
	declarationStart = "extends"
	declarationEnd   = "export"
	separator        = ","
)

// ErrMalformedDeclaration is returned for controller text without an
// "extends" clause.
var ErrMalformedDeclaration = errors.New("controller has no extends declaration")

// noise is tried left to right at each position, so longer names must come
// before their prefixes (BaseController before Base, functions before
// function).
var noise = regexp.MustCompile(strings.Join([]string{
	`\(0`, `\)`, `\(`, `_\d`,
	`BaseController`, `Base`,
	`backapirest/`,
	`class`, `default`, `from`,
	`"`, `'`, `@`, `-`,
	`lambda`, `functions`, `function`,
	`azure`, `digital-ocean`, `oci`, `gcp`, `aws`, `next`,
	`any`, `import`, `export`, `Mixin`,
	`,`, `\.`, `\n`, `\{`, `\}`, `\s`,
}, "|"))

// Token is one word left over from a controller's base-class list. It is
// usually an operation name but is not guaranteed to be one.
type Token string

// ExtractTokens returns the capability tokens declared in controller source
// text, in order of appearance. Repeated tokens are kept.
func ExtractTokens(text string) ([]Token, error) {
	start := strings.Index(text, declarationStart)
	if start < 0 {
		return nil, ErrMalformedDeclaration
	}
	// The region ends at the first "export" or at the next class's "extends".
	region := text[start+len(declarationStart):]
	for _, stop := range []string{declarationStart, declarationEnd} {
		if end := strings.Index(region, stop); end >= 0 {
			region = region[:end]
		}
	}

	cleaned := noise.ReplaceAllLiteralString(region, separator)

	var tokens []Token
	for _, part := range strings.Split(cleaned, separator) {
		if part != "" {
			tokens = append(tokens, Token(part))
		}
	}
	return tokens, nil
}
