// SPDX-License-Identifier: MPL-2.0

// Package route maps capability tokens to HTTP route registrations.
package route

import (
	"strings"

	"github.com/backapirest/samsynth/internal/capability"
	"github.com/backapirest/samsynth/internal/config"
)

const (
	// TokenUpdate2 is the synthetic token emitted after every Update.
	TokenUpdate2 capability.Token = "Update2"
	// TokenOption is the token of the trailing OPTIONS registration.
	TokenOption capability.Token = "Option"
)

// Method is one route registration of a function.
type Method struct {
	FunctionName string
	// Token is the capability token the registration came from. Event names
	// are FunctionName + Token.
	Token capability.Token
	// Verb is the upper-case HTTP method, or the token itself when it names
	// no known operation.
	Verb string
	Path string
}

// EventName returns the template key of the registration.
func (m Method) EventName() string {
	return m.FunctionName + string(m.Token)
}

// Verb maps a token to its HTTP method, case-insensitively. Unknown tokens are
// returned unchanged.
func Verb(token capability.Token) string {
	switch strings.ToLower(string(token)) {
	case "create":
		return "POST"
	case "read":
		return "GET"
	case "update":
		return "PUT"
	case "update2":
		return "PATCH"
	case "delete":
		return "DELETE"
	case "option":
		return "OPTIONS"
	default:
		return string(token)
	}
}

// Map turns tokens into registrations for path. Each Update is followed by
// an Update2 (PATCH) registration and an Option (OPTIONS) registration is
// always appended last. With DedupeVerb only the first registration of each
// verb is kept.
func Map(functionName, path string, tokens []capability.Token, policy config.DedupePolicy) []Method {
	methods := make([]Method, 0, len(tokens)+2)
	add := func(token capability.Token) {
		methods = append(methods, Method{
			FunctionName: functionName,
			Token:        token,
			Verb:         Verb(token),
			Path:         path,
		})
	}

	for _, token := range tokens {
		add(token)
		if strings.EqualFold(string(token), "update") {
			add(TokenUpdate2)
		}
	}
	add(TokenOption)

	if policy == config.DedupeVerb {
		return dedupe(methods)
	}
	return methods
}

// dedupe keeps the first registration of each verb and path. Verbs compare
// case-insensitively so a passthrough "get" collapses into GET.
func dedupe(methods []Method) []Method {
	type key struct{ verb, path string }
	seen := make(map[key]struct{}, len(methods))
	out := methods[:0]
	for _, m := range methods {
		k := key{strings.ToUpper(m.Verb), m.Path}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, m)
	}
	return out
}
