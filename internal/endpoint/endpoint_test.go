// SPDX-License-Identifier: MPL-2.0

package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		segments []string
		file     string
		want     Endpoint
	}{
		{
			name:     "index file",
			segments: []string{"widgets"},
			file:     "index.js",
			want:     Endpoint{Segments: []string{"widgets"}, Route: "/widgets", FunctionName: "widgets"},
		},
		{
			name:     "dynamic segment",
			segments: []string{"widgets"},
			file:     "[id].js",
			want:     Endpoint{Segments: []string{"widgets"}, Route: "/widgets:id", Param: "id", FunctionName: "widgets"},
		},
		{
			name:     "nested plain file",
			segments: []string{"shops", "items"},
			file:     "main.mjs",
			want:     Endpoint{Segments: []string{"shops", "items"}, Route: "/shops/items", FunctionName: "items"},
		},
		{
			name:     "function name kept verbatim",
			segments: []string{"user-Profiles"},
			file:     "[userId].js",
			want:     Endpoint{Segments: []string{"user-Profiles"}, Route: "/user-Profiles:userId", Param: "userId", FunctionName: "user-Profiles"},
		},
		{
			name:     "api root itself",
			segments: nil,
			file:     "index.js",
			want:     Endpoint{Segments: nil, Route: "/", FunctionName: "api"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Resolve(tt.segments, "api", tt.file))
		})
	}
}

func TestResolve_NestedAPIRoot(t *testing.T) {
	t.Parallel()

	ep := Resolve(nil, "pages/api/", "index.js")
	assert.Equal(t, "api", ep.FunctionName)
}

func TestResolve_DoesNotAliasSegments(t *testing.T) {
	t.Parallel()

	segments := []string{"widgets"}
	ep := Resolve(segments, "api", "index.js")
	segments[0] = "changed"
	assert.Equal(t, []string{"widgets"}, ep.Segments)
}

func TestIsIndex(t *testing.T) {
	t.Parallel()

	assert.True(t, IsIndex("index.js"))
	assert.True(t, IsIndex("Index.mjs"))
	assert.True(t, IsIndex("index.min.js"))
	assert.False(t, IsIndex("reindex.js"))
	assert.False(t, IsIndex("[index].js"))
}

func TestParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file   string
		want   string
		wantOK bool
	}{
		{"[id].js", "id", true},
		{"[slug].cjs", "slug", true},
		{"[id].d.js", "id", true},
		{"index.js", "", false},
		{"[].js", "", false},
		{"id].js", "", false},
		{"[a[b]].js", "", false},
		{"plain.js", "", false},
	}
	for _, tt := range tests {
		got, ok := Param(tt.file)
		assert.Equal(t, tt.wantOK, ok, tt.file)
		assert.Equal(t, tt.want, got, tt.file)
	}
}
