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

// Package validate checks a Document against a Schema (spec.md §4.8): a
// recursive structural type-checker against the closed Type sum schema
// extraction produces, distinct from the teacher's own lattice-based
// unification evaluator (see DESIGN.md).
package validate

import (
	"eure.sh/eure/cst"
	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/schema"
	"eure.sh/eure/token"
)

// maxRefDepth bounds the check depth at which a Ref is still resolved, the
// same way the builder caps extension nesting (document/builder.go's
// maxExtensionDepth), so a cyclic $types definition fails loudly instead of
// recursing forever. The depth counts every nested check (structural
// nesting as well as Ref hops), so a Ref reached more than maxRefDepth
// levels down is reported even when no cycle is involved.
const maxRefDepth = 32

// Result is the output of Validate (spec.md §4.8): IsValid holds regardless
// of Holes, IsComplete additionally requires none remain anywhere the
// check visited.
type Result struct {
	Diagnostics *errors.List
	IsValid     bool
	IsComplete  bool
}

// Validate checks doc against sc, starting at doc's root against sc.Root.
func Validate(store *cst.Store, doc *document.Document, sc *schema.Schema) *Result {
	v := &validator{store: store, doc: doc, sc: sc}
	errs, _ := v.check(doc.Root(), sc.Root, nil, nil, 0)
	appendAll(errs, v.checkExtensions(doc.Root(), nil, map[document.DocNodeId]bool{}))
	errs.Sort()
	return &Result{
		Diagnostics: errs,
		IsValid:     !errs.HasErrors(),
		IsComplete:  !errs.HasErrors() && !v.sawHole,
	}
}

type validator struct {
	store   *cst.Store
	doc     *document.Document
	sc      *schema.Schema
	sawHole bool
}

func (v *validator) span(id document.DocNodeId) token.Span {
	h := v.doc.Node(id).CstHandle
	if h == cst.InvalidNodeId {
		return token.Span{}
	}
	return v.store.Span(h)
}

// check is the recursive dispatch table of spec.md §4.8's table, returning
// this subtree's diagnostics and the deepest recursion depth it reached
// (used by union checking's "closest failure" heuristic, spec.md §4.8.1).
// ambient carries the nearest enclosing $cascade-type, if any (spec.md
// §4.8.3); it is consulted only when t itself leaves the node's type
// unspecified (Kind Any).
func (v *validator) check(id document.DocNodeId, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	errs := &errors.List{}
	n := v.doc.Node(id)

	if n.Kind == document.ContentHole {
		v.sawHole = true
		return errs, depth
	}

	if newAmbient, ok := v.cascadeFor(n); ok {
		ambient = newAmbient
	}
	if t.Kind == schema.KAny && ambient != nil {
		t = *ambient
	}

	switch t.Kind {
	case schema.KAny:
		return errs, depth
	case schema.KNull:
		if n.Kind != document.ContentNull {
			v.mismatch(errs, id, path, "null")
		}
		return errs, depth
	case schema.KBoolean:
		if n.Kind != document.ContentBool {
			v.mismatch(errs, id, path, "boolean")
			return errs, depth
		}
		if t.ConstBool != nil && n.Bool != *t.ConstBool {
			v.constraint(errs, id, path, "expected boolean const %v, got %v", *t.ConstBool, n.Bool)
		}
		v.checkConstEnum(errs, id, n, t, path)
		return errs, depth
	case schema.KInteger:
		return v.checkInteger(id, n, t, path, depth)
	case schema.KFloat:
		return v.checkFloat(id, n, t, path, depth)
	case schema.KText:
		return v.checkText(id, n, t, path, depth)
	case schema.KPath:
		return v.checkPath(id, n, t, path, depth)
	case schema.KArray:
		return v.checkArray(id, n, t, path, ambient, depth)
	case schema.KMap:
		return v.checkMap(id, n, t, path, ambient, depth)
	case schema.KTuple:
		return v.checkTuple(id, n, t, path, ambient, depth)
	case schema.KRecord:
		return v.checkRecord(id, n, t, path, ambient, depth, "")
	case schema.KUnion:
		return v.checkUnion(id, n, t, path, ambient, depth)
	case schema.KLiteral:
		return v.checkLiteral(id, t, path, depth)
	case schema.KRef:
		return v.checkRef(id, t, path, ambient, depth)
	default:
		return errs, depth
	}
}

func (v *validator) checkRef(id document.DocNodeId, t schema.Type, path []string, ambient *schema.Type, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if depth > maxRefDepth {
		v.errs(errs, id, path, errors.ConstraintViolated, "type reference cycle exceeds %d levels", maxRefDepth)
		return errs, depth
	}
	resolved, ok := v.sc.Lookup(t.RefPath)
	if !ok {
		v.errs(errs, id, path, errors.MalformedTypeExpression, "unresolved type reference %v", t.RefPath)
		return errs, depth
	}
	return v.check(id, resolved, path, ambient, depth+1)
}

// cascadeFor reports the type a node's own $cascade-type extension
// establishes, if any (spec.md §4.8.3). It never consults Extensions for
// its own cascade: "excluding extensions" means the cascade propagates
// through regular content (map entries, array/tuple elements) only.
func (v *validator) cascadeFor(n *document.Node) (*schema.Type, bool) {
	id, ok := n.Extensions["cascade-type"]
	if !ok {
		return nil, false
	}
	t, _ := schema.ParseTypeExpr(v.store, v.doc, id, v.sc.Imports)
	return &t, true
}

func (v *validator) mismatch(errs *errors.List, id document.DocNodeId, path []string, want string) {
	n := v.doc.Node(id)
	v.errs(errs, id, path, errors.TypeMismatch, "expected %s, got %s", want, n.Kind)
}

func (v *validator) constraint(errs *errors.List, id document.DocNodeId, path []string, format string, args ...interface{}) {
	v.errs(errs, id, path, errors.ConstraintViolated, format, args...)
}

func (v *validator) errs(errs *errors.List, id document.DocNodeId, path []string, kind errors.Kind, format string, args ...interface{}) {
	d := errors.Newf(kind, v.span(id), format, args...)
	if len(path) > 0 {
		d = d.WithPath(append([]string(nil), path...))
	}
	errs.Add(d)
}
