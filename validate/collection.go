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
	"fmt"

	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/schema"
)

func (v *validator) checkArray(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentArray {
		v.mismatch(errs, id, path, "array")
		return errs, depth
	}
	elems := n.Elements()
	maxDepth := depth
	if t.Item != nil {
		for i, c := range elems {
			childPath := appendPath(path, fmt.Sprintf("[%d]", i))
			cerrs, cd := v.check(c, *t.Item, childPath, ambient, depth+1)
			appendAll(errs, cerrs)
			if cd > maxDepth {
				maxDepth = cd
			}
		}
	}
	if t.MinItems != nil && len(elems) < *t.MinItems {
		v.constraint(errs, id, path, "array has %d items, fewer than minimum %d", len(elems), *t.MinItems)
	}
	if t.MaxItems != nil && len(elems) > *t.MaxItems {
		v.constraint(errs, id, path, "array has %d items, more than maximum %d", len(elems), *t.MaxItems)
	}
	if t.Unique && v.hasDuplicateElements(elems) {
		v.constraint(errs, id, path, "array elements are not unique")
	}
	if t.Contains != nil {
		found := false
		for _, c := range elems {
			probe, _ := v.check(c, *t.Contains, nil, ambient, depth+1)
			if !probe.HasErrors() {
				found = true
				break
			}
		}
		if !found {
			v.constraint(errs, id, path, "array does not contain a required element")
		}
	}
	return errs, maxDepth
}

func (v *validator) hasDuplicateElements(elems []document.DocNodeId) bool {
	vals := make([]*document.Value, len(elems))
	for i, c := range elems {
		vals[i] = v.doc.ValueAt(c)
	}
	for i := 0; i < len(vals); i++ {
		for j := i + 1; j < len(vals); j++ {
			if valuesEqual(vals[i], vals[j]) {
				return true
			}
		}
	}
	return false
}

func (v *validator) checkMap(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentMap {
		v.mismatch(errs, id, path, "map")
		return errs, depth
	}
	entries := n.Entries()
	maxDepth := depth
	for _, e := range entries {
		if t.MapKey != nil && !segmentMatchesKeyType(e.Key, *t.MapKey) {
			v.constraint(errs, id, path, "map key does not match the expected key type")
		}
		valType := schema.Type{Kind: schema.KAny}
		if t.MapValue != nil {
			valType = *t.MapValue
		}
		childPath := appendPath(path, segmentName(e.Key))
		cerrs, cd := v.check(e.Node, valType, childPath, ambient, depth+1)
		appendAll(errs, cerrs)
		if cd > maxDepth {
			maxDepth = cd
		}
	}
	if t.MinSize != nil && len(entries) < *t.MinSize {
		v.constraint(errs, id, path, "map has %d entries, fewer than minimum %d", len(entries), *t.MinSize)
	}
	if t.MaxSize != nil && len(entries) > *t.MaxSize {
		v.constraint(errs, id, path, "map has %d entries, more than maximum %d", len(entries), *t.MaxSize)
	}
	return errs, maxDepth
}

func segmentMatchesKeyType(s document.Segment, keyType schema.Type) bool {
	switch keyType.Kind {
	case schema.KText:
		return s.Kind == document.SegString || s.Kind == document.SegIdent
	case schema.KInteger:
		return s.Kind == document.SegInteger
	default:
		return true
	}
}

func (v *validator) checkTuple(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentTuple {
		v.mismatch(errs, id, path, "tuple")
		return errs, depth
	}
	elems := n.Elements()
	if len(elems) != len(t.Elements) {
		v.constraint(errs, id, path, "tuple has %d elements, expected %d", len(elems), len(t.Elements))
		return errs, depth
	}
	maxDepth := depth
	for i, c := range elems {
		childPath := appendPath(path, fmt.Sprintf("#%d", i))
		cerrs, cd := v.check(c, t.Elements[i], childPath, ambient, depth+1)
		appendAll(errs, cerrs)
		if cd > maxDepth {
			maxDepth = cd
		}
	}
	return errs, maxDepth
}

// checkRecord validates n against t's per-field types and unknown-fields
// policy (spec.md §4.8's Map/Record row). exclude names a field the union
// repr(internal) handling has already consumed as a discriminator and that
// must not itself be checked as an ordinary field (spec.md §4.8.1).
func (v *validator) checkRecord(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int, exclude string) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentMap {
		v.mismatch(errs, id, path, "record")
		return errs, depth
	}
	present := map[string]document.DocNodeId{}
	for _, e := range n.Entries() {
		present[segmentName(e.Key)] = e.Node
	}
	maxDepth := depth
	for _, name := range t.FieldOrder {
		if name == exclude {
			continue
		}
		fs := t.Fields[name]
		childID, ok := present[name]
		if !ok {
			if !fs.Optional {
				v.errs(errs, id, path, errors.RequiredFieldMissing, "missing required field %q", name)
			}
			continue
		}
		childPath := appendPath(path, name)
		cerrs, cd := v.check(childID, fs.Type, childPath, ambient, depth+1)
		appendAll(errs, cerrs)
		if cd > maxDepth {
			maxDepth = cd
		}
	}
	if t.UnknownFieldsPolicy == schema.UnknownFieldsReject {
		for _, e := range n.Entries() {
			name := segmentName(e.Key)
			if name == exclude {
				continue
			}
			if _, ok := t.Fields[name]; !ok {
				v.errs(errs, e.Node, appendPath(path, name), errors.UnknownField, "unknown field %q", name)
			}
		}
	}
	return errs, maxDepth
}
