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
	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/schema"
)

// checkUnion dispatches on the Union's variant representation (spec.md
// §4.8.1) to identify the candidate variant(s) before handing off to the
// oneOf matching in speculativeUnion.
func (v *validator) checkUnion(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	switch t.Repr {
	case schema.ReprInternal:
		return v.checkUnionInternal(id, n, t, path, ambient, depth)
	case schema.ReprAdjacent:
		return v.checkUnionAdjacent(id, n, t, path, ambient, depth)
	case schema.ReprUntagged:
		return v.speculativeUnion(id, t, path, ambient, depth)
	default:
		return v.checkUnionExternal(id, n, t, path, ambient, depth)
	}
}

func (v *validator) checkUnionExternal(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	if len(n.Variant) > 0 {
		errs := &errors.List{}
		name := n.Variant[len(n.Variant)-1]
		vt, ok := t.Variants[name]
		if !ok {
			v.errs(errs, id, path, errors.UnknownVariant, "unknown variant %q", name)
			return errs, depth
		}
		return v.check(id, vt, path, ambient, depth+1)
	}
	if n.Kind == document.ContentMap && len(n.Entries()) == 1 {
		e := n.Entries()[0]
		name := segmentName(e.Key)
		if vt, ok := t.Variants[name]; ok {
			return v.check(e.Node, vt, appendPath(path, name), ambient, depth+1)
		}
	}
	return v.speculativeUnion(id, t, path, ambient, depth)
}

func (v *validator) checkUnionInternal(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentMap {
		v.mismatch(errs, id, path, "map")
		return errs, depth
	}
	tagID, ok := findField(n, t.ReprTag)
	if !ok {
		v.errs(errs, id, path, errors.VariantDiscriminatorMissing, "missing variant tag field %q", t.ReprTag)
		return errs, depth
	}
	tagNode := v.doc.Node(tagID)
	if tagNode.Kind != document.ContentString {
		v.errs(errs, tagID, path, errors.VariantDiscriminatorMissing, "variant tag field %q must be a string", t.ReprTag)
		return errs, depth
	}
	vt, ok := t.Variants[tagNode.Text]
	if !ok {
		v.errs(errs, tagID, path, errors.UnknownVariant, "unknown variant %q", tagNode.Text)
		return errs, depth
	}
	if vt.Kind == schema.KRecord {
		return v.checkRecord(id, n, vt, path, ambient, depth+1, t.ReprTag)
	}
	return v.check(id, vt, path, ambient, depth+1)
}

func (v *validator) checkUnionAdjacent(id document.DocNodeId, n *document.Node, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentMap {
		v.mismatch(errs, id, path, "map")
		return errs, depth
	}
	tagID, ok := findField(n, t.ReprTag)
	if !ok {
		v.errs(errs, id, path, errors.VariantDiscriminatorMissing, "missing variant tag field %q", t.ReprTag)
		return errs, depth
	}
	tagNode := v.doc.Node(tagID)
	if tagNode.Kind != document.ContentString {
		v.errs(errs, tagID, path, errors.VariantDiscriminatorMissing, "variant tag field %q must be a string", t.ReprTag)
		return errs, depth
	}
	vt, ok := t.Variants[tagNode.Text]
	if !ok {
		v.errs(errs, tagID, path, errors.UnknownVariant, "unknown variant %q", tagNode.Text)
		return errs, depth
	}
	contentID, ok := findField(n, t.ReprContent)
	if !ok {
		v.errs(errs, id, path, errors.VariantDiscriminatorMissing, "missing variant content field %q", t.ReprContent)
		return errs, depth
	}
	return v.check(contentID, vt, appendPath(path, t.ReprContent), ambient, depth+1)
}

// speculativeUnion runs check against every variant and partitions the
// results (spec.md §4.8.1's oneOf semantics): the untagged representation
// always goes through here, and the external/adjacent/internal paths fall
// back to it when no discriminator was found.
func (v *validator) speculativeUnion(id document.DocNodeId, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	type attempt struct {
		name  string
		errs  *errors.List
		depth int
	}
	attempts := make([]attempt, 0, len(t.VariantOrder))
	for _, name := range t.VariantOrder {
		aerrs, ad := v.check(id, t.Variants[name], path, ambient, depth+1)
		attempts = append(attempts, attempt{name, aerrs, ad})
	}

	var matches, failures []attempt
	for _, a := range attempts {
		if a.errs.HasErrors() {
			failures = append(failures, a)
		} else {
			matches = append(matches, a)
		}
	}

	switch len(matches) {
	case 0:
		if len(failures) == 0 {
			return &errors.List{}, depth
		}
		best := failures[0]
		for _, f := range failures[1:] {
			if f.depth > best.depth {
				best = f
			}
		}
		return best.errs, best.depth
	case 1:
		return matches[0].errs, matches[0].depth
	default:
		if len(t.Priority) > 0 {
			for _, name := range t.Priority {
				for _, m := range matches {
					if m.name == name {
						return m.errs, m.depth
					}
				}
			}
		}
		errs := &errors.List{}
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.name
		}
		v.errs(errs, id, path, errors.AmbiguousUnion, "value matches multiple variants: %v", names)
		return errs, depth
	}
}

func findField(n *document.Node, name string) (document.DocNodeId, bool) {
	for _, e := range n.Entries() {
		if segmentName(e.Key) == name {
			return e.Node, true
		}
	}
	return 0, false
}
