// SPDX-License-Identifier: MPL-2.0

package template

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	strTag  = "!!str"
	intTag  = "!!int"
	boolTag = "!!bool"
	refTag  = "!Ref"
)

// Render serializes d as YAML with two-space indentation.
func (d *Document) Render() ([]byte, error) {
	root := mapping(
		"AWSTemplateFormatVersion", &yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: FormatVersion, Style: yaml.SingleQuotedStyle},
		"Transform", str(ServerlessTransform),
		"Description", &yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: d.Description + "\n", Style: yaml.FoldedStyle},
		"Globals", d.Globals.node(),
		"Resources", d.resourcesNode(),
	)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	return buf.Bytes(), nil
}

func (g Globals) node() *yaml.Node {
	return mapping(
		"Function", mapping(
			"Timeout", integer(g.Timeout),
			"MemorySize", integer(g.MemorySize),
			"Tracing", str(g.Tracing),
		),
		"Api", mapping(
			"TracingEnabled", capitalBool(g.APITracing),
		),
	)
}

func (d *Document) resourcesNode() *yaml.Node {
	res := &yaml.Node{Kind: yaml.MappingNode}
	if d.Layer != nil {
		res.Content = append(res.Content, str(d.Layer.LogicalID), d.Layer.node())
	}
	for _, fn := range d.Functions {
		res.Content = append(res.Content, str(fn.LogicalID), fn.node())
	}
	return res
}

func (l *Layer) node() *yaml.Node {
	props := mapping(
		"LayerName", str(l.LogicalID),
		"ContentUri", str(l.ContentURI),
	)
	if len(l.CompatibleRuntimes) > 0 {
		props.Content = append(props.Content, str("CompatibleRuntimes"), strSeq(l.CompatibleRuntimes))
	}
	if len(l.Architectures) > 0 {
		props.Content = append(props.Content, str("CompatibleArchitectures"), strSeq(l.Architectures))
	}
	n := mapping(
		"Type", str(LayerType),
		"Properties", props,
	)
	if l.BuildMethod != "" {
		n.Content = append(n.Content, str("Metadata"), mapping("BuildMethod", str(l.BuildMethod)))
	}
	return n
}

func (f *Function) node() *yaml.Node {
	props := mapping(
		"CodeUri", str(f.CodeURI),
		"Handler", str(f.Handler),
		"Runtime", str(f.Runtime),
		"Architectures", strSeq(f.Architectures),
	)

	if len(f.Layers) > 0 {
		refs := &yaml.Node{Kind: yaml.SequenceNode}
		for _, id := range f.Layers {
			refs.Content = append(refs.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: refTag, Value: id})
		}
		props.Content = append(props.Content, str("Layers"), refs)
	}

	if len(f.Environment) > 0 {
		vars := &yaml.Node{Kind: yaml.MappingNode}
		for _, v := range f.Environment {
			vars.Content = append(vars.Content, str(v.Name), str(v.Value))
		}
		props.Content = append(props.Content, str("Environment"), mapping("Variables", vars))
	}

	// Repeated event names are kept as written.
	events := &yaml.Node{Kind: yaml.MappingNode}
	for _, ev := range f.Events {
		events.Content = append(events.Content, str(ev.Name), mapping(
			"Type", str(EventTypeAPI),
			"Properties", mapping(
				"Path", str(ev.Path),
				"Method", str(strings.ToLower(ev.Method)),
			),
		))
	}
	props.Content = append(props.Content, str("Events"), events)

	n := mapping(
		"Type", str(FunctionType),
		"Properties", props,
	)
	if f.Metadata != nil {
		n.Content = append(n.Content, str("Metadata"), f.Metadata.node())
	}
	return n
}

func (m *BuildMetadata) node() *yaml.Node {
	return mapping(
		"BuildMethod", str(BuildMethodESBuild),
		"BuildProperties", mapping(
			"Minify", boolean(m.Minify),
			"Target", str(m.Target),
			"Sourcemap", boolean(m.Sourcemap),
			"EntryPoints", strSeq(m.EntryPoints),
		),
	)
}

// mapping builds a mapping node from alternating string keys and value nodes.
func mapping(pairs ...any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for i := 0; i+1 < len(pairs); i += 2 {
		n.Content = append(n.Content, str(pairs[i].(string)), pairs[i+1].(*yaml.Node))
	}
	return n
}

func str(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: strTag, Value: v}
}

func integer(v int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: intTag, Value: strconv.Itoa(v)}
}

func boolean(v bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: boolTag, Value: strconv.FormatBool(v)}
}

// capitalBool renders True or False.
func capitalBool(v bool) *yaml.Node {
	value := "False"
	if v {
		value = "True"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: boolTag, Value: value}
}

func strSeq(values []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range values {
		n.Content = append(n.Content, str(v))
	}
	return n
}
