// SPDX-License-Identifier: MPL-2.0

package capability

import (
	"context"
	"errors"
	"testing"

	"github.com/backapirest/samsynth/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	tokens []Token
	err    error
	calls  int
}

func (s *stubSource) Capabilities(context.Context, string) ([]Token, error) {
	s.calls++
	return s.tokens, s.err
}

func TestDeclared(t *testing.T) {
	t.Parallel()

	d := NewDeclared(map[string][]string{"Widgets": {"Read", "Update"}})

	got, err := d.Capabilities(context.Background(), "widgets")
	require.NoError(t, err)
	assert.Equal(t, []Token{"Read", "Update"}, got)

	got[0] = "Mutated"
	again, _ := d.Capabilities(context.Background(), "WIDGETS")
	assert.Equal(t, Token("Read"), again[0], "callers get a copy")

	none, err := d.Capabilities(context.Background(), "gadgets")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestFallback(t *testing.T) {
	t.Parallel()

	inferred := &stubSource{tokens: []Token{"Delete"}}
	src := Fallback{
		Primary:   NewDeclared(map[string][]string{"widgets": {"Read"}}),
		Secondary: inferred,
	}

	got, err := src.Capabilities(context.Background(), "widgets")
	require.NoError(t, err)
	assert.Equal(t, []Token{"Read"}, got)
	assert.Zero(t, inferred.calls, "declared capabilities win")

	got, err = src.Capabilities(context.Background(), "gadgets")
	require.NoError(t, err)
	assert.Equal(t, []Token{"Delete"}, got)
	assert.Equal(t, 1, inferred.calls)
}

func TestFallback_PrimaryError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	secondary := &stubSource{}
	_, err := Fallback{Primary: &stubSource{err: boom}, Secondary: secondary}.Capabilities(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, secondary.calls)
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	declared := NewDeclared(map[string][]string{"widgets": {"Read"}})
	inferred := &stubSource{tokens: []Token{"Create"}}

	tests := []struct {
		mode config.CapabilityMode
		want []Token
	}{
		{config.CapabilityModeDeclared, []Token{"Read"}},
		{config.CapabilityModeInferred, []Token{"Create"}},
		{config.CapabilityModeAuto, []Token{"Read"}},
	}
	for _, tt := range tests {
		src, err := NewSource(tt.mode, declared, inferred)
		require.NoError(t, err)
		got, err := src.Capabilities(context.Background(), "widgets")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, string(tt.mode))
	}

	_, err := NewSource("guess", declared, inferred)
	assert.ErrorIs(t, err, config.ErrInvalidCapabilityMode)
}
