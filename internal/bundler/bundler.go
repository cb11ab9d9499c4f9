// SPDX-License-Identifier: MPL-2.0

// Package bundler collects build entry points and renders the esbuild
// configuration that accompanies the SAM template.
package bundler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultOutDir is where sam build expects esbuild output.
	DefaultOutDir = ".aws-sam/esbuild"
	// DefaultTarget is used when the runtime names no Node.js version.
	DefaultTarget = "node16"
)

type (
	// EntryPoint maps a synthetic name to a source file.
	EntryPoint struct {
		Name   string
		Source string
	}

	// DirEntries accumulates the entry points of one resource directory.
	DirEntries struct {
		functionName string
		entries      []EntryPoint
	}

	// Aggregator collects every directory's entry points for the whole run.
	Aggregator struct {
		entries []EntryPoint
	}

	// Options are the non-entry fields of the esbuild configuration.
	Options struct {
		OutDir    string
		Runtime   string
		Minify    bool
		Sourcemap bool
	}

	// Config is the rendered esbuild configuration. EntryPoints keep their
	// insertion order when encoded.
	Config struct {
		EntryPoints EntryPoints `json:"entryPoints"`
		OutDir      string      `json:"outdir"`
		Bundle      bool        `json:"bundle"`
		Platform    string      `json:"platform"`
		Target      string      `json:"target"`
		Format      string      `json:"format"`
		Packages    string      `json:"packages"`
		Minify      bool        `json:"minify"`
		Sourcemap   bool        `json:"sourcemap"`
	}

	// EntryPoints encodes as a JSON object in slice order.
	EntryPoints []EntryPoint
)

// NewDirEntries starts the entry list of the directory holding functionName.
func NewDirEntries(functionName string) *DirEntries {
	return &DirEntries{functionName: functionName}
}

// Add appends source under the next name, functionName + index.
func (d *DirEntries) Add(source string) EntryPoint {
	ep := EntryPoint{
		Name:   d.functionName + strconv.Itoa(len(d.entries)),
		Source: source,
	}
	d.entries = append(d.entries, ep)
	return ep
}

// Names returns the synthetic names in order.
func (d *DirEntries) Names() []string {
	names := make([]string, len(d.entries))
	for i, ep := range d.entries {
		names[i] = ep.Name
	}
	return names
}

// Entries returns a copy of the directory's entry points.
func (d *DirEntries) Entries() []EntryPoint {
	return append([]EntryPoint(nil), d.entries...)
}

// Len returns the number of entry points.
func (d *DirEntries) Len() int {
	return len(d.entries)
}

// Collect appends a finished directory's entry points.
func (a *Aggregator) Collect(d *DirEntries) {
	a.entries = append(a.entries, d.entries...)
}

// Entries returns a copy of every collected entry point.
func (a *Aggregator) Entries() []EntryPoint {
	return append([]EntryPoint(nil), a.entries...)
}

// Build returns the esbuild configuration for the collected entry points.
// All dependencies are left external.
func (a *Aggregator) Build(opts Options) Config {
	outDir := opts.OutDir
	if outDir == "" {
		outDir = DefaultOutDir
	}
	return Config{
		EntryPoints: a.Entries(),
		OutDir:      outDir,
		Bundle:      true,
		Platform:    "node",
		Target:      NodeTarget(opts.Runtime),
		Format:      "cjs",
		Packages:    "external",
		Minify:      opts.Minify,
		Sourcemap:   opts.Sourcemap,
	}
}

// Render encodes c as indented JSON with a trailing newline.
func (c Config) Render() ([]byte, error) {
	out, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode bundler config: %w", err)
	}
	return append(out, '\n'), nil
}

// NodeTarget converts a Lambda runtime such as "nodejs18.x" to an esbuild
// target such as "node18".
func NodeTarget(runtime string) string {
	version, ok := strings.CutPrefix(runtime, "nodejs")
	if !ok {
		return DefaultTarget
	}
	version = strings.TrimSuffix(version, ".x")
	if version == "" {
		return DefaultTarget
	}
	if _, err := strconv.Atoi(version); err != nil {
		return DefaultTarget
	}
	return "node" + version
}

// MarshalJSON writes the entry points as one object, preserving order.
// Repeated names are written as they come.
func (e EntryPoints) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ep := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ep.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(ep.Source)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
