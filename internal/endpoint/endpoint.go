// SPDX-License-Identifier: MPL-2.0

// Package endpoint derives routes and function names from resource paths.
//
// Directory segments below the API root become route segments. An index file
// names the directory's own endpoint; a bracketed file name such as
// "[id].js" adds one dynamic parameter, written in the legacy ":id" form
// directly after the route.
package endpoint

import (
	"path"
	"strings"
)

const indexStem = "index"

// Endpoint is the route of one resource directory.
type Endpoint struct {
	// Segments are the directory names below the API root.
	Segments []string
	// Route is "/" + the joined segments, plus ":<param>" when the file is
	// a dynamic-segment file.
	Route string
	// Param is the dynamic parameter name, empty when there is none.
	Param string
	// FunctionName is the final segment, or the API root name for files
	// directly in the API root.
	FunctionName string
}

// Resolve computes the endpoint for file found in the directory named by
// segments under apiRoot.
func Resolve(segments []string, apiRoot, file string) Endpoint {
	ep := Endpoint{
		Segments: append([]string(nil), segments...),
		Route:    "/" + strings.Join(segments, "/"),
	}

	if len(segments) > 0 {
		ep.FunctionName = segments[len(segments)-1]
	} else {
		ep.FunctionName = path.Base(strings.TrimRight(apiRoot, "/"))
	}

	if IsIndex(file) {
		return ep
	}
	if param, ok := Param(file); ok {
		ep.Param = param
		ep.Route += ":" + param
	}
	return ep
}

// IsIndex reports whether file is an index file, such as "index.js".
func IsIndex(file string) bool {
	return strings.EqualFold(stem(file), indexStem)
}

// Param returns the name between the brackets of a dynamic-segment file such
// as "[id].js". Index files never carry a parameter.
func Param(file string) (string, bool) {
	if IsIndex(file) {
		return "", false
	}
	s := stem(file)
	open := strings.IndexByte(s, '[')
	if open < 0 || !strings.HasSuffix(s, "]") {
		return "", false
	}
	name := s[open+1 : len(s)-1]
	if name == "" || strings.ContainsAny(name, "[]") {
		return "", false
	}
	return name, true
}

// stem strips every extension: "[id].d.js" and "[id].js" both give "[id]".
func stem(file string) string {
	base := path.Base(file)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}
