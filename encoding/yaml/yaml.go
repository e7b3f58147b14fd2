// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package yaml converts between YAML and the Document model's projected
// Value (document.ToValue, spec.md §4.6), the way the teacher's own
// encoding/yaml sits at the same host boundary for the CUE ast. Like
// the teacher's, this package
// works directly against gopkg.in/yaml.v3's Node tree so integer versus
// float and map key order survive the round trip without an
// interface{} detour.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cockroachdb/apd/v3"
	"gopkg.in/yaml.v3"

	"eure.sh/eure/document"
)

// Marshal renders v as YAML. Like encoding/json, it rejects a Hole: YAML
// has no representation for an incomplete value.
func Marshal(v *document.Value) ([]byte, error) {
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toNode(v *document.Value) (*yaml.Node, error) {
	switch v.Kind {
	case document.ContentMap:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, e := range v.Map {
			kn := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: keyText(e.Key)}
			vn, err := toNode(e.Value)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, kn, vn)
		}
		return n, nil
	case document.ContentArray, document.ContentTuple:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range v.Elements {
			cn, err := toNode(el)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, cn)
		}
		return n, nil
	case document.ContentString, document.ContentCodeBlock:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Text}, nil
	case document.ContentInteger:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.Integer.String()}, nil
	case document.ContentFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: fmt.Sprintf("%v", v.Float)}, nil
	case document.ContentBool:
		if v.Bool {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "true"}, nil
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: "false"}, nil
	case document.ContentNull:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case document.ContentPath:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, s := range v.Path {
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: keyText(s)})
		}
		return n, nil
	case document.ContentHole:
		return nil, fmt.Errorf("yaml: cannot encode an incomplete value (hole)")
	default:
		return nil, fmt.Errorf("yaml: unsupported value kind %v", v.Kind)
	}
}

func keyText(s document.Segment) string {
	switch s.Kind {
	case document.SegIdent:
		return s.Name
	case document.SegString:
		return s.Str
	case document.SegInteger:
		return s.Int.String()
	default:
		return s.Kind.String()
	}
}

// Unmarshal parses a single YAML document into a Value tree. Only the
// first document of a `---`-separated stream is decoded; later documents
// are ignored. Use UnmarshalStream to decode every document of a stream.
func Unmarshal(data []byte) (*document.Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return &document.Value{Kind: document.ContentNull}, nil
	}
	return fromNode(node.Content[0])
}

// UnmarshalStream parses every `---`-separated document in data.
func UnmarshalStream(data []byte) ([]*document.Value, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var out []*document.Value
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("yaml: %w", err)
		}
		if len(node.Content) == 0 {
			continue
		}
		v, err := fromNode(node.Content[0])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func fromNode(n *yaml.Node) (*document.Value, error) {
	switch n.Kind {
	case yaml.MappingNode:
		entries := make([]document.ValueEntry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := fromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			entries = append(entries, document.ValueEntry{
				Key:   document.StringKey(n.Content[i].Value),
				Value: v,
			})
		}
		return &document.Value{Kind: document.ContentMap, Map: entries}, nil
	case yaml.SequenceNode:
		elems := make([]*document.Value, len(n.Content))
		for i, c := range n.Content {
			v, err := fromNode(c)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &document.Value{Kind: document.ContentArray, Elements: elems}, nil
	case yaml.ScalarNode:
		return scalarFromNode(n)
	case yaml.AliasNode:
		return fromNode(n.Alias)
	default:
		return nil, fmt.Errorf("yaml: unsupported node kind %v", n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) (*document.Value, error) {
	switch n.Tag {
	case "!!null":
		return &document.Value{Kind: document.ContentNull}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("yaml: invalid boolean %q: %w", n.Value, err)
		}
		return &document.Value{Kind: document.ContentBool, Bool: b}, nil
	case "!!int":
		d, _, err := apd.NewFromString(n.Value)
		if err != nil {
			return nil, fmt.Errorf("yaml: invalid integer %q: %w", n.Value, err)
		}
		return &document.Value{Kind: document.ContentInteger, Integer: *d}, nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("yaml: invalid float %q: %w", n.Value, err)
		}
		return &document.Value{Kind: document.ContentFloat, Float: f}, nil
	default:
		return &document.Value{Kind: document.ContentString, Text: n.Value}, nil
	}
}
