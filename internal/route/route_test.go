// SPDX-License-Identifier: MPL-2.0

package route

import (
	"testing"

	"github.com/backapirest/samsynth/internal/capability"
	"github.com/backapirest/samsynth/internal/config"

	"github.com/stretchr/testify/assert"
)

func verbs(methods []Method) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = m.Verb
	}
	return out
}

func TestVerb(t *testing.T) {
	t.Parallel()

	tests := []struct {
		token capability.Token
		want  string
	}{
		{"Create", "POST"},
		{"create", "POST"},
		{"READ", "GET"},
		{"Update", "PUT"},
		{"Update2", "PATCH"},
		{"Delete", "DELETE"},
		{"Option", "OPTIONS"},
		{"Head", "Head"},
		{"Trace", "Trace"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Verb(tt.token), string(tt.token))
	}
}

func TestMap(t *testing.T) {
	t.Parallel()

	got := Map("widgets", "/widgets", []capability.Token{"Create", "Read"}, config.DedupeNone)
	assert.Equal(t, []Method{
		{FunctionName: "widgets", Token: "Create", Verb: "POST", Path: "/widgets"},
		{FunctionName: "widgets", Token: "Read", Verb: "GET", Path: "/widgets"},
		{FunctionName: "widgets", Token: "Option", Verb: "OPTIONS", Path: "/widgets"},
	}, got)
}

func TestMap_UpdateAddsPatch(t *testing.T) {
	t.Parallel()

	got := Map("widgets", "/widgets:id", []capability.Token{"Update"}, config.DedupeNone)
	assert.Equal(t, []string{"PUT", "PATCH", "OPTIONS"}, verbs(got))
	assert.Equal(t, "widgetsUpdate2", got[1].EventName())
	for _, m := range got {
		assert.Equal(t, "/widgets:id", m.Path)
	}
}

func TestMap_NoTokens(t *testing.T) {
	t.Parallel()

	got := Map("widgets", "/widgets", nil, config.DedupeNone)
	assert.Equal(t, []string{"OPTIONS"}, verbs(got))
	assert.Equal(t, "widgetsOption", got[0].EventName())
}

func TestMap_DuplicatesKeptByDefault(t *testing.T) {
	t.Parallel()

	got := Map("widgets", "/widgets", []capability.Token{"Read", "Option", "Read"}, config.DedupeNone)
	assert.Equal(t, []string{"GET", "OPTIONS", "GET", "OPTIONS"}, verbs(got))
}

func TestMap_DedupeVerb(t *testing.T) {
	t.Parallel()

	got := Map("widgets", "/widgets", []capability.Token{"Read", "Option", "Read", "get", "Update", "Update2"}, config.DedupeVerb)
	assert.Equal(t, []string{"GET", "OPTIONS", "PUT", "PATCH"}, verbs(got))
	assert.Equal(t, capability.Token("Option"), got[1].Token, "the first OPTIONS registration survives")
}
