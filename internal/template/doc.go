// SPDX-License-Identifier: MPL-2.0

// Package template builds the AWS SAM template.
//
// An Emitter is driven in traversal order (header, globals, resources, then
// each function with its route events and optional build metadata) and
// records everything into a Document. The Document is serialized once by
// Render, so a failed run never leaves a truncated template behind. Output
// order mirrors call order.
package template
