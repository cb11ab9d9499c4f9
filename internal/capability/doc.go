// SPDX-License-Identifier: MPL-2.0

// Package capability determines which operations a resource supports.
//
// Capabilities come from a Source. Declared reads lists written in the
// project configuration. Inferred scans controller files: the text between
// the first "extends" and the following "export" is stripped of known noise
// (punctuation, quotes, keywords, vendor names and the abstract base classes)
// and what remains is split into tokens such as "Create" or "Read". Inference
// is a best-effort heuristic over unstructured text, not a parse.
package capability
