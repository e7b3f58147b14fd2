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

package validate

import (
	"strconv"

	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/schema"
)

// checkLiteral compares the node's projected value against t.Literal by
// canonical equality (spec.md §4.8's "* | Literal | equality by canonical
// form" row).
func (v *validator) checkLiteral(id document.DocNodeId, t schema.Type, path []string, depth int) (*errors.List, int) {
	errs := &errors.List{}
	val := v.doc.ValueAt(id)
	if !valuesEqual(val, t.Literal) {
		v.constraint(errs, id, path, "value does not equal the expected literal")
	}
	return errs, depth
}

// valuesEqual compares two projected Values structurally, ignoring Map
// entry order (two maps with the same key/value pairs in different
// insertion order are still equal).
func valuesEqual(a, b *document.Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case document.ContentMap:
		if len(a.Map) != len(b.Map) {
			return false
		}
		bByKey := make(map[string]*document.Value, len(b.Map))
		for _, e := range b.Map {
			bByKey[segmentKey(e.Key)] = e.Value
		}
		for _, e := range a.Map {
			bv, ok := bByKey[segmentKey(e.Key)]
			if !ok || !valuesEqual(e.Value, bv) {
				return false
			}
		}
		return true
	case document.ContentArray, document.ContentTuple:
		if len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if !valuesEqual(a.Elements[i], b.Elements[i]) {
				return false
			}
		}
		return true
	case document.ContentString, document.ContentCodeBlock:
		return a.Text == b.Text
	case document.ContentInteger:
		return a.Integer.Cmp(&b.Integer) == 0
	case document.ContentFloat:
		return a.Float == b.Float
	case document.ContentBool:
		return a.Bool == b.Bool
	case document.ContentPath:
		return segmentsEqual(a.Path, b.Path)
	case document.ContentNull, document.ContentHole, document.ContentUnset:
		return true
	default:
		return false
	}
}

func segmentsEqual(a, b []document.Segment) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if segmentKey(a[i]) != segmentKey(b[i]) {
			return false
		}
	}
	return true
}

// segmentKey renders a Segment as a string that is equal for two segments
// iff they address the same slot, for use as a plain Go map key here
// (document.Segment itself is not comparable via == because of its slice
// fields, and this package has no access to document's unexported
// canonicalKey).
func segmentKey(s document.Segment) string {
	switch s.Kind {
	case document.SegIdent:
		return "i:" + s.Name
	case document.SegString:
		return "s" + strconv.Itoa(len(s.Str)) + ":" + s.Str
	case document.SegInteger:
		return "n:" + s.Int.String()
	case document.SegTupleIndex:
		return "t#:" + strconv.Itoa(int(s.TupleIdx))
	case document.SegArrayIndex:
		return "a:" + strconv.FormatUint(s.ArrayIdx, 10)
	case document.SegArrayAppend:
		return "append"
	case document.SegExtension:
		return "$" + s.Name
	case document.SegTupleKey:
		out := "t:("
		for _, e := range s.Tuple {
			out += segmentKey(e) + ","
		}
		return out + ")"
	default:
		return "?"
	}
}
