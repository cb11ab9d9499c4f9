// SPDX-License-Identifier: MPL-2.0

package template

import (
	"errors"
	"fmt"
	"slices"
)

// ErrOutOfOrder is returned when an Emitter method is called before the
// sections it depends on.
var ErrOutOfOrder = errors.New("template emitted out of order")

type stage int

const (
	stageNew stage = iota
	stageHeader
	stageGlobals
	stageResources
)

// Emitter records template sections in call order.
type Emitter struct {
	doc     Document
	stage   stage
	current *Function
}

// NewEmitter returns an Emitter awaiting Initialize.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Initialize starts the document with the format header.
func (e *Emitter) Initialize(description string) error {
	if e.stage != stageNew {
		return fmt.Errorf("%w: header already written", ErrOutOfOrder)
	}
	if description == "" {
		description = DefaultDescription
	}
	e.doc.Description = description
	e.stage = stageHeader
	return nil
}

// EmitGlobals records the Globals section. It must follow Initialize.
func (e *Emitter) EmitGlobals(g Globals) error {
	if e.stage != stageHeader {
		return fmt.Errorf("%w: globals must directly follow the header", ErrOutOfOrder)
	}
	e.doc.Globals = g
	e.stage = stageGlobals
	return nil
}

// EmitResourcesHeader opens the Resources section.
func (e *Emitter) EmitResourcesHeader() error {
	if e.stage != stageGlobals {
		return fmt.Errorf("%w: resources must follow the globals", ErrOutOfOrder)
	}
	e.stage = stageResources
	return nil
}

// EmitLayer records the shared layer. It must come before any function.
func (e *Emitter) EmitLayer(l Layer) error {
	if e.stage != stageResources || len(e.doc.Functions) > 0 || e.doc.Layer != nil {
		return fmt.Errorf("%w: layer must open the resources section", ErrOutOfOrder)
	}
	l.CompatibleRuntimes = slices.Clone(l.CompatibleRuntimes)
	l.Architectures = slices.Clone(l.Architectures)
	e.doc.Layer = &l
	return nil
}

// EmitFunction starts a new function. Route events and build metadata that
// follow attach to it.
func (e *Emitter) EmitFunction(spec FunctionSpec) error {
	if e.stage != stageResources {
		return fmt.Errorf("%w: function %q before the resources section", ErrOutOfOrder, spec.Name)
	}
	fn := &Function{
		Name:          spec.Name,
		LogicalID:     LogicalID(spec.Name),
		CodeURI:       spec.CodeURI,
		Handler:       DefaultHandler,
		Runtime:       spec.Runtime,
		Architectures: slices.Clone(spec.Architectures),
		Layers:        slices.Clone(spec.Layers),
		Environment:   slices.Clone(spec.Environment),
	}
	e.doc.Functions = append(e.doc.Functions, fn)
	e.current = fn
	return nil
}

// EmitRouteEvent appends an event to the function most recently emitted,
// which must be functionName.
func (e *Emitter) EmitRouteEvent(functionName string, ev Event) error {
	fn, err := e.open(functionName)
	if err != nil {
		return err
	}
	fn.Events = append(fn.Events, ev)
	return nil
}

// EmitBuildMetadata attaches the build metadata of the current function. A
// function carries at most one metadata block.
func (e *Emitter) EmitBuildMetadata(functionName string, md BuildMetadata) error {
	fn, err := e.open(functionName)
	if err != nil {
		return err
	}
	if fn.Metadata != nil {
		return fmt.Errorf("%w: metadata for %q already emitted", ErrOutOfOrder, functionName)
	}
	md.EntryPoints = slices.Clone(md.EntryPoints)
	fn.Metadata = &md
	return nil
}

// Render serializes the recorded document. It fails if the resources section
// was never opened.
func (e *Emitter) Render() ([]byte, error) {
	if e.stage != stageResources {
		return nil, fmt.Errorf("%w: document incomplete", ErrOutOfOrder)
	}
	return e.doc.Render()
}

func (e *Emitter) open(functionName string) (*Function, error) {
	if e.current == nil {
		return nil, fmt.Errorf("%w: no function emitted before %q", ErrOutOfOrder, functionName)
	}
	if e.current.Name != functionName {
		return nil, fmt.Errorf("%w: current function is %q, not %q", ErrOutOfOrder, e.current.Name, functionName)
	}
	return e.current, nil
}
