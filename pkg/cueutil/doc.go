// SPDX-License-Identifier: MPL-2.0

// Package cueutil holds the CUE parsing steps shared by the project config
// loader and the tsconfig reader:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify it with the schema definition
//  3. Validate and decode into a Go value
//
// Usage:
//
//	result, err := cueutil.ParseAndDecode[TSConfig](
//	    schemaBytes,
//	    tsconfigBytes,
//	    "#TSConfig",
//	    cueutil.WithFilename("tsconfig.json"),
//	)
//
// JSON is valid CUE, so JSON documents with line comments parse unchanged.
package cueutil
