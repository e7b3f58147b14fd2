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

package document

import "eure.sh/eure/internal"

// Value is the lossy projection `to_value()` produces (spec.md §4.6): a
// simple algebraic value with extensions, variant tags, and CST handles
// dropped, meant for format converters (encoding/json, encoding/yaml,
// encoding/toml) to consume without knowing anything about the Document
// model. Holes survive the projection as a distinct Hole variant so a
// converter can refuse an incomplete Document explicitly rather than
// guessing at a zero value.
type Value struct {
	Kind ContentKind

	Map      []ValueEntry
	Elements []*Value

	StringForm StringForm
	Lang       string
	Text       string

	Integer internal.Decimal
	Float   float64
	Bool    bool

	Path []Segment
}

// ValueEntry is one key/value pair of a projected Map value.
type ValueEntry struct {
	Key   Segment
	Value *Value
}

// ToValue projects the whole Document through to_value(), starting at its
// root. It never fails: an incomplete Document simply surfaces Hole
// variants wherever a value is missing.
func (d *Document) ToValue() *Value { return d.toValue(d.root) }

// ValueAt projects a single node through to_value(), for callers (the
// schema extractor's literal/default/example extensions) that need a
// Value rooted somewhere other than the document root.
func (d *Document) ValueAt(id DocNodeId) *Value { return d.toValue(id) }

func (d *Document) toValue(id DocNodeId) *Value {
	n := d.Node(id)
	v := &Value{Kind: n.Kind}
	switch n.Kind {
	case ContentMap:
		for _, e := range n.Entries() {
			v.Map = append(v.Map, ValueEntry{e.Key, d.toValue(e.Node)})
		}
	case ContentArray, ContentTuple:
		for _, c := range n.Elements() {
			v.Elements = append(v.Elements, d.toValue(c))
		}
	case ContentString, ContentCodeBlock:
		v.StringForm = n.StringForm
		v.Lang = n.Lang
		v.Text = n.Text
	case ContentInteger:
		v.Integer = n.Integer
	case ContentFloat:
		v.Float = n.Float
	case ContentBool:
		v.Bool = n.Bool
	case ContentPath:
		v.Path = n.Path
	case ContentNull, ContentHole, ContentUnset:
		// no payload beyond Kind
	}
	return v
}
