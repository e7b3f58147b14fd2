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

package cstutil

import "eure.sh/eure/cst"

// Visitor is the double-dispatch interface driven by Walker.Walk (spec.md
// §4.4). Concrete visitors embed DefaultVisitor and override only the rules
// they care about; DefaultVisitor's method for every other rule descends
// into that rule's children by calling back into Walker, so overriding one
// method never breaks traversal of the rest of the tree.
type Visitor interface {
	VisitDocument(w *Walker, h DocumentHandle) error
	VisitBinding(w *Walker, h BindingHandle) error
	VisitBindingRhs(w *Walker, h BindingRhsHandle) error
	VisitSection(w *Walker, h SectionHandle) error
	VisitSectionBody(w *Walker, h SectionBodyHandle) error
	VisitValueBinding(w *Walker, h ValueBindingHandle) error
	VisitKeys(w *Walker, h KeysHandle) error
	VisitKey(w *Walker, h KeyHandle) error
	VisitKeyBase(w *Walker, h KeyBaseHandle) error
	VisitKeyTuple(w *Walker, h KeyTupleHandle) error
	VisitArrayMarker(w *Walker, h ArrayMarkerHandle) error
	VisitValue(w *Walker, h ValueHandle) error
	VisitObject(w *Walker, h ObjectHandle) error
	VisitObjectBinding(w *Walker, h ObjectBindingHandle) error
	VisitArray(w *Walker, h ArrayHandle) error
	VisitTuple(w *Walker, h TupleHandle) error
	VisitStrings(w *Walker, h StringsHandle) error
	VisitHole(w *Walker, h HoleHandle) error
	VisitPath(w *Walker, h PathHandle) error

	// VisitTerminal is called for every terminal the walk reaches. The
	// default descent reaches only a text binding's Text and the String
	// parts of Strings; punctuation, scalar literals, key names and trivia
	// are reached only when RecoverError walks a node's raw children.
	VisitTerminal(w *Walker, h TerminalHandle) error

	// ConstructError is called whenever a rule's View cannot be built from
	// its node's actual children, in place of that rule's Visit method.
	// The default implementation (DefaultVisitor.ConstructError) calls
	// RecoverError, descending into the raw children anyway.
	ConstructError(w *Walker, id cst.NodeId, err *ConstructError) error
}

// Walker threads a Store and the outermost Visitor through a traversal, so
// that DefaultVisitor's methods dispatch back through the overridden
// visitor rather than recursing on themselves.
type Walker struct {
	Store   *cst.Store
	Visitor Visitor
}

// NewWalker builds a Walker over store that dispatches to v.
func NewWalker(store *cst.Store, v Visitor) *Walker {
	return &Walker{Store: store, Visitor: v}
}

// Run walks the whole tree starting at store.Root().
func (w *Walker) Run() error {
	return w.Walk(w.Store.Root())
}

// Walk dispatches on id's kind and invokes the corresponding Visitor method.
func (w *Walker) Walk(id cst.NodeId) error {
	k := w.Store.Kind(id)
	if t, ok := k.AsTerminal(); ok {
		_ = t
		return w.Visitor.VisitTerminal(w, TerminalHandle(id))
	}
	nt, _ := k.AsNonTerminal()
	switch nt {
	case cst.NonTerminalDocument:
		return w.Visitor.VisitDocument(w, DocumentHandle(id))
	case cst.NonTerminalBinding:
		return w.Visitor.VisitBinding(w, BindingHandle(id))
	case cst.NonTerminalBindingRhs:
		return w.Visitor.VisitBindingRhs(w, BindingRhsHandle(id))
	case cst.NonTerminalSection:
		return w.Visitor.VisitSection(w, SectionHandle(id))
	case cst.NonTerminalSectionBody:
		return w.Visitor.VisitSectionBody(w, SectionBodyHandle(id))
	case cst.NonTerminalValueBinding:
		return w.Visitor.VisitValueBinding(w, ValueBindingHandle(id))
	case cst.NonTerminalKeys:
		return w.Visitor.VisitKeys(w, KeysHandle(id))
	case cst.NonTerminalKey:
		return w.Visitor.VisitKey(w, KeyHandle(id))
	case cst.NonTerminalKeyBase:
		return w.Visitor.VisitKeyBase(w, KeyBaseHandle(id))
	case cst.NonTerminalKeyTuple:
		return w.Visitor.VisitKeyTuple(w, KeyTupleHandle(id))
	case cst.NonTerminalArrayMarker:
		return w.Visitor.VisitArrayMarker(w, ArrayMarkerHandle(id))
	case cst.NonTerminalValue:
		return w.Visitor.VisitValue(w, ValueHandle(id))
	case cst.NonTerminalObject:
		return w.Visitor.VisitObject(w, ObjectHandle(id))
	case cst.NonTerminalObjectBinding:
		return w.Visitor.VisitObjectBinding(w, ObjectBindingHandle(id))
	case cst.NonTerminalArray:
		return w.Visitor.VisitArray(w, ArrayHandle(id))
	case cst.NonTerminalTuple:
		return w.Visitor.VisitTuple(w, TupleHandle(id))
	case cst.NonTerminalStrings:
		return w.Visitor.VisitStrings(w, StringsHandle(id))
	case cst.NonTerminalHole:
		return w.Visitor.VisitHole(w, HoleHandle(id))
	case cst.NonTerminalPath:
		return w.Visitor.VisitPath(w, PathHandle(id))
	default:
		return RecoverError(w, id)
	}
}

// RecoverError walks id's raw children directly, bypassing View
// construction entirely. It is the traversal's fallback when a node's
// shape does not match its rule (spec.md §4.4).
func RecoverError(w *Walker, id cst.NodeId) error {
	for _, c := range w.Store.Children(id) {
		if err := w.Walk(c); err != nil {
			return err
		}
	}
	return nil
}

// DefaultVisitor implements Visitor with the rule's natural descent: build
// the View, report ConstructError on failure, otherwise walk every child
// handle in source order. Embed it in a concrete visitor and override
// individual methods to customize behavior at specific rules.
type DefaultVisitor struct{}

func (DefaultVisitor) VisitDocument(w *Walker, h DocumentHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if v.ValueBinding != nil {
		if err := w.Walk(v.ValueBinding.Id()); err != nil {
			return err
		}
	}
	for _, b := range v.Bindings {
		if err := w.Walk(b.Id()); err != nil {
			return err
		}
	}
	for _, sec := range v.Sections {
		if err := w.Walk(sec.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitBinding(w *Walker, h BindingHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if err := w.Walk(v.Keys.Id()); err != nil {
		return err
	}
	return w.Walk(v.Rhs.Id())
}

func (DefaultVisitor) VisitBindingRhs(w *Walker, h BindingRhsHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	switch {
	case v.Value != nil:
		return w.Walk(v.Value.Id())
	case v.Nested != nil:
		return w.Walk(v.Nested.Id())
	case v.Text != nil:
		return w.Walk(v.Text.Id())
	}
	return nil
}

func (DefaultVisitor) VisitSection(w *Walker, h SectionHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if err := w.Walk(v.Keys.Id()); err != nil {
		return err
	}
	return w.Walk(v.Body.Id())
}

func (DefaultVisitor) VisitSectionBody(w *Walker, h SectionBodyHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if v.Nested != nil {
		return w.Walk(v.Nested.Id())
	}
	if v.ValueBinding != nil {
		if err := w.Walk(v.ValueBinding.Id()); err != nil {
			return err
		}
	}
	for _, b := range v.Bindings {
		if err := w.Walk(b.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitValueBinding(w *Walker, h ValueBindingHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	return w.Walk(v.Value.Id())
}

func (DefaultVisitor) VisitKeys(w *Walker, h KeysHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	for _, k := range v.Keys {
		if err := w.Walk(k.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitKey(w *Walker, h KeyHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if err := w.Walk(v.Base.Id()); err != nil {
		return err
	}
	if v.Marker != nil {
		return w.Walk(v.Marker.Id())
	}
	return nil
}

func (DefaultVisitor) VisitKeyBase(w *Walker, h KeyBaseHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if v.Tuple != nil {
		return w.Walk(v.Tuple.Id())
	}
	// Ident/Extension/String/Integer/TupleIdx all terminate in a terminal
	// that VisitTerminal already sees via RecoverError-free direct Walk
	// if the caller wants it; DefaultVisitor treats KeyBase as a leaf for
	// traversal purposes beyond KeyTuple.
	return nil
}

func (DefaultVisitor) VisitKeyTuple(w *Walker, h KeyTupleHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	for _, k := range v.Elements {
		if err := w.Walk(k.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitArrayMarker(w *Walker, h ArrayMarkerHandle) error {
	_, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	return nil
}

func (DefaultVisitor) VisitValue(w *Walker, h ValueHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	switch {
	case v.Object != nil:
		return w.Walk(v.Object.Id())
	case v.Array != nil:
		return w.Walk(v.Array.Id())
	case v.Tuple != nil:
		return w.Walk(v.Tuple.Id())
	case v.Strings != nil:
		return w.Walk(v.Strings.Id())
	case v.Hole != nil:
		return w.Walk(v.Hole.Id())
	case v.Path != nil:
		return w.Walk(v.Path.Id())
	}
	return nil
}

func (DefaultVisitor) VisitObject(w *Walker, h ObjectHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if v.ValueBinding != nil {
		if err := w.Walk(v.ValueBinding.Id()); err != nil {
			return err
		}
	}
	for _, b := range v.Bindings {
		if err := w.Walk(b.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitObjectBinding(w *Walker, h ObjectBindingHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	if err := w.Walk(v.Keys.Id()); err != nil {
		return err
	}
	return w.Walk(v.Value.Id())
}

func (DefaultVisitor) VisitArray(w *Walker, h ArrayHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	for _, e := range v.Elements {
		if err := w.Walk(e.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitTuple(w *Walker, h TupleHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	for _, e := range v.Elements {
		if err := w.Walk(e.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitStrings(w *Walker, h StringsHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	for _, p := range v.Parts {
		if err := w.Walk(p.Id()); err != nil {
			return err
		}
	}
	return nil
}

func (DefaultVisitor) VisitHole(w *Walker, h HoleHandle) error {
	_, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	return nil
}

func (DefaultVisitor) VisitPath(w *Walker, h PathHandle) error {
	v, err := h.View(w.Store)
	if err != nil {
		return w.Visitor.ConstructError(w, h.Id(), err.(*ConstructError))
	}
	return w.Walk(v.Keys.Id())
}

func (DefaultVisitor) VisitTerminal(w *Walker, h TerminalHandle) error { return nil }

func (DefaultVisitor) ConstructError(w *Walker, id cst.NodeId, err *ConstructError) error {
	return RecoverError(w, id)
}
