// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/backapirest/samsynth/internal/config"
)

type (
	// Source supplies the capability tokens of a function.
	Source interface {
		Capabilities(ctx context.Context, functionName string) ([]Token, error)
	}

	// Declared serves capabilities listed by the author, keyed by function
	// name. Keys match case-insensitively.
	Declared struct {
		lists map[string][]Token
	}

	// Fallback asks Primary first and Secondary only when Primary has
	// nothing for the function.
	Fallback struct {
		Primary   Source
		Secondary Source
	}
)

// NewDeclared copies lists into a Declared source.
func NewDeclared(lists map[string][]string) *Declared {
	d := &Declared{lists: make(map[string][]Token, len(lists))}
	for name, ops := range lists {
		key := strings.ToLower(name)
		for _, op := range ops {
			d.lists[key] = append(d.lists[key], Token(op))
		}
	}
	return d
}

// Capabilities returns the declared list for functionName.
func (d *Declared) Capabilities(_ context.Context, functionName string) ([]Token, error) {
	list := d.lists[strings.ToLower(functionName)]
	if len(list) == 0 {
		return nil, nil
	}
	return append([]Token(nil), list...), nil
}

// Capabilities implements Source.
func (f Fallback) Capabilities(ctx context.Context, functionName string) ([]Token, error) {
	tokens, err := f.Primary.Capabilities(ctx, functionName)
	if err != nil || len(tokens) > 0 {
		return tokens, err
	}
	return f.Secondary.Capabilities(ctx, functionName)
}

// NewSource picks the Source for mode.
func NewSource(mode config.CapabilityMode, declared *Declared, inferred Source) (Source, error) {
	switch mode {
	case config.CapabilityModeDeclared:
		return declared, nil
	case config.CapabilityModeInferred:
		return inferred, nil
	case config.CapabilityModeAuto:
		return Fallback{Primary: declared, Secondary: inferred}, nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidCapabilityMode, mode)
	}
}
