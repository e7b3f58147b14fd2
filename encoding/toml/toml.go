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

// Package toml converts between TOML and the Document model's projected
// Value (document.ToValue, spec.md §4.6), grounded on github.com/
// pelletier/go-toml/v2, the same module the teacher's own experimental
// encoding/toml is built on (there it drives the /unstable low-level
// parser directly to preserve CUE ast positions; this package has no
// surface-syntax position to preserve for a Value, so it uses the
// stable top-level Marshal/Unmarshal entry points instead).
package toml

import (
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/pelletier/go-toml/v2"

	"eure.sh/eure/document"
)

// Marshal renders v as TOML. TOML documents are always tables, so v must
// be a Map; anything else is rejected, as is a Hole anywhere in the tree.
func Marshal(v *document.Value) ([]byte, error) {
	if v.Kind != document.ContentMap {
		return nil, fmt.Errorf("toml: root value must be a map, got %v", v.Kind)
	}
	m, err := toGeneric(v)
	if err != nil {
		return nil, err
	}
	return toml.Marshal(m)
}

func toGeneric(v *document.Value) (interface{}, error) {
	switch v.Kind {
	case document.ContentMap:
		m := make(map[string]interface{}, len(v.Map))
		for _, e := range v.Map {
			cv, err := toGeneric(e.Value)
			if err != nil {
				return nil, err
			}
			m[keyText(e.Key)] = cv
		}
		return m, nil
	case document.ContentArray, document.ContentTuple:
		out := make([]interface{}, len(v.Elements))
		for i, el := range v.Elements {
			cv, err := toGeneric(el)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	case document.ContentString, document.ContentCodeBlock:
		return v.Text, nil
	case document.ContentInteger:
		i, err := v.Integer.Int64()
		if err != nil {
			return nil, fmt.Errorf("toml: integer %s does not fit in an int64: %w", v.Integer.String(), err)
		}
		return i, nil
	case document.ContentFloat:
		return v.Float, nil
	case document.ContentBool:
		return v.Bool, nil
	case document.ContentNull:
		return nil, fmt.Errorf("toml: TOML has no null value")
	case document.ContentPath:
		toks := make([]string, len(v.Path))
		for i, s := range v.Path {
			toks[i] = keyText(s)
		}
		return toks, nil
	case document.ContentHole:
		return nil, fmt.Errorf("toml: cannot encode an incomplete value (hole)")
	default:
		return nil, fmt.Errorf("toml: unsupported value kind %v", v.Kind)
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

// Unmarshal parses TOML-encoded data into a Value tree rooted at a Map,
// since every TOML document is a table at its root.
func Unmarshal(data []byte) (*document.Value, error) {
	var m map[string]interface{}
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return fromGenericMap(m)
}

func fromGenericMap(m map[string]interface{}) (*document.Value, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	entries := make([]document.ValueEntry, 0, len(m))
	for _, k := range keys {
		v, err := fromGeneric(m[k])
		if err != nil {
			return nil, err
		}
		entries = append(entries, document.ValueEntry{Key: document.StringKey(k), Value: v})
	}
	return &document.Value{Kind: document.ContentMap, Map: entries}, nil
}

func fromGeneric(raw interface{}) (*document.Value, error) {
	switch x := raw.(type) {
	case nil:
		return &document.Value{Kind: document.ContentNull}, nil
	case bool:
		return &document.Value{Kind: document.ContentBool, Bool: x}, nil
	case int64:
		return integerValue(x)
	case float64:
		return &document.Value{Kind: document.ContentFloat, Float: x}, nil
	case string:
		return &document.Value{Kind: document.ContentString, Text: x}, nil
	case time.Time:
		return &document.Value{Kind: document.ContentString, Text: x.Format(time.RFC3339)}, nil
	case []interface{}:
		elems := make([]*document.Value, len(x))
		for i, e := range x {
			v, err := fromGeneric(e)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return &document.Value{Kind: document.ContentArray, Elements: elems}, nil
	case map[string]interface{}:
		return fromGenericMap(x)
	default:
		return nil, fmt.Errorf("toml: unsupported decoded type %T", raw)
	}
}

func integerValue(i int64) (*document.Value, error) {
	d, _, err := apd.NewFromString(fmt.Sprintf("%d", i))
	if err != nil {
		return nil, fmt.Errorf("toml: invalid integer %d: %w", i, err)
	}
	return &document.Value{Kind: document.ContentInteger, Integer: *d}, nil
}
