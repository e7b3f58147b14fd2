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

// Package cstutil is the generated-style handle/view/visitor layer over
// cst.Store (spec.md §3.3, §4.4). Each non-terminal rule R of the grammar
// gets a zero-cost RHandle(cst.NodeId) and an RView produced by
// R.View(store), which matches the node's non-trivia children against the
// rule's expected shape or reports a ConstructError.
//
// This file plays the role of generated code: in a from-scratch toolchain
// it would be emitted by a build step from the grammar; here it is
// hand-written once and kept in lockstep with cst.NonTerminalKind by hand.
package cstutil

import (
	"fmt"

	"eure.sh/eure/cst"
)

// ConstructError is raised when a node's children do not match the shape
// its rule expects — typically because of an upstream parse error. The
// visitor converts it into a recovery call (spec.md §3.3, §4.4).
type ConstructError struct {
	NodeId cst.NodeId
	Rule   cst.NonTerminalKind
	Reason string
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("cannot construct %s view of node %d: %s", e.Rule, e.NodeId, e.Reason)
}

// significant filters out trivia terminals (whitespace, newlines, comments)
// so that View construction only has to reason about grammar-significant
// children, even though the CST keeps trivia interleaved for lossless
// round-tripping (spec.md §3.2).
func significant(s *cst.Store, ids []cst.NodeId) []cst.NodeId {
	out := make([]cst.NodeId, 0, len(ids))
	for _, id := range ids {
		if t, ok := s.Kind(id).AsTerminal(); ok && t.IsTrivia() {
			continue
		}
		out = append(out, id)
	}
	return out
}

func nonTerminalAt(s *cst.Store, ids []cst.NodeId, i int) (cst.NonTerminalKind, bool) {
	if i >= len(ids) {
		return 0, false
	}
	return s.Kind(ids[i]).AsNonTerminal()
}

func terminalAt(s *cst.Store, ids []cst.NodeId, i int) (cst.TerminalKind, bool) {
	if i >= len(ids) {
		return 0, false
	}
	return s.Kind(ids[i]).AsTerminal()
}

// TerminalHandle wraps a terminal node id, typically a token that itself
// carries the payload (an Ident, a String, a Float, ...).
type TerminalHandle cst.NodeId

// Id returns the underlying node id.
func (h TerminalHandle) Id() cst.NodeId { return cst.NodeId(h) }

// Text returns the terminal's exact source text.
func (h TerminalHandle) Text(s *cst.Store) string { return s.Text(cst.NodeId(h)) }

// Kind returns the terminal's TerminalKind.
func (h TerminalHandle) Kind(s *cst.Store) cst.TerminalKind {
	t, _ := s.Kind(cst.NodeId(h)).AsTerminal()
	return t
}

// -----------------------------------------------------------------------------
// Document = [ValueBinding] {Binding} {Section}

type DocumentHandle cst.NodeId

func (h DocumentHandle) Id() cst.NodeId { return cst.NodeId(h) }

type DocumentView struct {
	ValueBinding *ValueBindingHandle
	Bindings     []BindingHandle
	Sections     []SectionHandle
}

func (h DocumentHandle) View(s *cst.Store) (DocumentView, error) {
	id := cst.NodeId(h)
	if nt, ok := s.Kind(id).AsNonTerminal(); !ok || nt != cst.NonTerminalDocument {
		return DocumentView{}, &ConstructError{id, cst.NonTerminalDocument, "not a Document node"}
	}
	children := significant(s, s.Children(id))
	var v DocumentView
	i := 0
	if nt, ok := nonTerminalAt(s, children, i); ok && nt == cst.NonTerminalValueBinding {
		vb := ValueBindingHandle(children[i])
		v.ValueBinding = &vb
		i++
	}
	for {
		nt, ok := nonTerminalAt(s, children, i)
		if !ok || nt != cst.NonTerminalBinding {
			break
		}
		v.Bindings = append(v.Bindings, BindingHandle(children[i]))
		i++
	}
	for {
		nt, ok := nonTerminalAt(s, children, i)
		if !ok || nt != cst.NonTerminalSection {
			break
		}
		v.Sections = append(v.Sections, SectionHandle(children[i]))
		i++
	}
	if i != len(children) {
		return v, &ConstructError{id, cst.NonTerminalDocument, "unexpected trailing child"}
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// Binding = Keys BindingRhs

type BindingHandle cst.NodeId

func (h BindingHandle) Id() cst.NodeId { return cst.NodeId(h) }

type BindingView struct {
	Keys KeysHandle
	Rhs  BindingRhsHandle
}

func (h BindingHandle) View(s *cst.Store) (BindingView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) != 2 {
		return BindingView{}, &ConstructError{id, cst.NonTerminalBinding, "expected Keys then BindingRhs"}
	}
	if nt, ok := nonTerminalAt(s, children, 0); !ok || nt != cst.NonTerminalKeys {
		return BindingView{}, &ConstructError{id, cst.NonTerminalBinding, "missing Keys"}
	}
	if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalBindingRhs {
		return BindingView{}, &ConstructError{id, cst.NonTerminalBinding, "missing BindingRhs"}
	}
	return BindingView{KeysHandle(children[0]), BindingRhsHandle(children[1])}, nil
}

// -----------------------------------------------------------------------------
// BindingRhs = "=" Value | "{" Document "}" | ":" Text

type BindingRhsHandle cst.NodeId

func (h BindingRhsHandle) Id() cst.NodeId { return cst.NodeId(h) }

// BindingRhsView is a sum type: exactly one of Value, Nested, or Text is set.
type BindingRhsView struct {
	Value  *ValueHandle
	Nested *DocumentHandle
	Text   *TerminalHandle
}

func (h BindingRhsHandle) View(s *cst.Store) (BindingRhsView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	// children[0] is the leading punctuation terminal ('=', '{', or ':'),
	// kept for span/trivia fidelity but not part of the view payload.
	if len(children) < 1 {
		return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "empty BindingRhs"}
	}
	lead, ok := terminalAt(s, children, 0)
	if !ok {
		return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "missing leading punctuation"}
	}
	switch lead {
	case cst.TerminalEquals:
		if len(children) != 2 {
			return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "'=' expects one Value"}
		}
		if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalValue {
			return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "'=' expects a Value"}
		}
		v := ValueHandle(children[1])
		return BindingRhsView{Value: &v}, nil
	case cst.TerminalLBrace:
		if len(children) != 3 {
			return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "'{' expects Document '}'"}
		}
		if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalDocument {
			return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "expected nested Document"}
		}
		if t, ok := terminalAt(s, children, 2); !ok || t != cst.TerminalRBrace {
			return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "expected closing '}'"}
		}
		d := DocumentHandle(children[1])
		return BindingRhsView{Nested: &d}, nil
	case cst.TerminalColon:
		if len(children) != 2 {
			return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "':' expects Text"}
		}
		if t, ok := terminalAt(s, children, 1); !ok || t != cst.TerminalText {
			return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "expected Text terminal"}
		}
		th := TerminalHandle(children[1])
		return BindingRhsView{Text: &th}, nil
	default:
		return BindingRhsView{}, &ConstructError{id, cst.NonTerminalBindingRhs, "unrecognized BindingRhs lead token"}
	}
}

// -----------------------------------------------------------------------------
// Section = "@" Keys SectionBody

type SectionHandle cst.NodeId

func (h SectionHandle) Id() cst.NodeId { return cst.NodeId(h) }

type SectionView struct {
	Keys KeysHandle
	Body SectionBodyHandle
}

func (h SectionHandle) View(s *cst.Store) (SectionView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) != 3 {
		return SectionView{}, &ConstructError{id, cst.NonTerminalSection, "expected '@' Keys SectionBody"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != cst.TerminalAt {
		return SectionView{}, &ConstructError{id, cst.NonTerminalSection, "expected leading '@'"}
	}
	if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalKeys {
		return SectionView{}, &ConstructError{id, cst.NonTerminalSection, "expected Keys"}
	}
	if nt, ok := nonTerminalAt(s, children, 2); !ok || nt != cst.NonTerminalSectionBody {
		return SectionView{}, &ConstructError{id, cst.NonTerminalSection, "expected SectionBody"}
	}
	return SectionView{KeysHandle(children[1]), SectionBodyHandle(children[2])}, nil
}

// -----------------------------------------------------------------------------
// SectionBody = [ValueBinding] {Binding} | "{" Document "}"

type SectionBodyHandle cst.NodeId

func (h SectionBodyHandle) Id() cst.NodeId { return cst.NodeId(h) }

type SectionBodyView struct {
	Nested       *DocumentHandle
	ValueBinding *ValueBindingHandle
	Bindings     []BindingHandle
}

func (h SectionBodyHandle) View(s *cst.Store) (SectionBodyView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if t, ok := terminalAt(s, children, 0); ok && t == cst.TerminalLBrace {
		if len(children) != 3 {
			return SectionBodyView{}, &ConstructError{id, cst.NonTerminalSectionBody, "'{' expects Document '}'"}
		}
		if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalDocument {
			return SectionBodyView{}, &ConstructError{id, cst.NonTerminalSectionBody, "expected nested Document"}
		}
		if t, ok := terminalAt(s, children, 2); !ok || t != cst.TerminalRBrace {
			return SectionBodyView{}, &ConstructError{id, cst.NonTerminalSectionBody, "expected closing '}'"}
		}
		d := DocumentHandle(children[1])
		return SectionBodyView{Nested: &d}, nil
	}
	var v SectionBodyView
	i := 0
	if nt, ok := nonTerminalAt(s, children, i); ok && nt == cst.NonTerminalValueBinding {
		vb := ValueBindingHandle(children[i])
		v.ValueBinding = &vb
		i++
	}
	for {
		nt, ok := nonTerminalAt(s, children, i)
		if !ok || nt != cst.NonTerminalBinding {
			break
		}
		v.Bindings = append(v.Bindings, BindingHandle(children[i]))
		i++
	}
	if i != len(children) {
		return v, &ConstructError{id, cst.NonTerminalSectionBody, "unexpected trailing child"}
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// ValueBinding = "=" Value

type ValueBindingHandle cst.NodeId

func (h ValueBindingHandle) Id() cst.NodeId { return cst.NodeId(h) }

type ValueBindingView struct {
	Value ValueHandle
}

func (h ValueBindingHandle) View(s *cst.Store) (ValueBindingView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) != 2 {
		return ValueBindingView{}, &ConstructError{id, cst.NonTerminalValueBinding, "expected '=' Value"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != cst.TerminalEquals {
		return ValueBindingView{}, &ConstructError{id, cst.NonTerminalValueBinding, "expected leading '='"}
	}
	if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalValue {
		return ValueBindingView{}, &ConstructError{id, cst.NonTerminalValueBinding, "expected Value"}
	}
	return ValueBindingView{ValueHandle(children[1])}, nil
}

// -----------------------------------------------------------------------------
// Keys = Key {"." Key}

type KeysHandle cst.NodeId

func (h KeysHandle) Id() cst.NodeId { return cst.NodeId(h) }

type KeysView struct {
	Keys []KeyHandle
}

func (h KeysHandle) View(s *cst.Store) (KeysView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	var v KeysView
	expectKey := true
	for i := 0; i < len(children); i++ {
		if expectKey {
			nt, ok := nonTerminalAt(s, children, i)
			if !ok || nt != cst.NonTerminalKey {
				return v, &ConstructError{id, cst.NonTerminalKeys, "expected Key"}
			}
			v.Keys = append(v.Keys, KeyHandle(children[i]))
			expectKey = false
			continue
		}
		t, ok := terminalAt(s, children, i)
		if !ok || t != cst.TerminalDot {
			return v, &ConstructError{id, cst.NonTerminalKeys, "expected '.'"}
		}
		expectKey = true
	}
	if len(v.Keys) == 0 || expectKey {
		return v, &ConstructError{id, cst.NonTerminalKeys, "dangling '.' or empty Keys"}
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// Key = KeyBase [ArrayMarker]

type KeyHandle cst.NodeId

func (h KeyHandle) Id() cst.NodeId { return cst.NodeId(h) }

type KeyView struct {
	Base   KeyBaseHandle
	Marker *ArrayMarkerHandle
}

func (h KeyHandle) View(s *cst.Store) (KeyView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) < 1 {
		return KeyView{}, &ConstructError{id, cst.NonTerminalKey, "missing KeyBase"}
	}
	if nt, ok := nonTerminalAt(s, children, 0); !ok || nt != cst.NonTerminalKeyBase {
		return KeyView{}, &ConstructError{id, cst.NonTerminalKey, "expected KeyBase"}
	}
	v := KeyView{Base: KeyBaseHandle(children[0])}
	switch len(children) {
	case 1:
	case 2:
		if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalArrayMarker {
			return v, &ConstructError{id, cst.NonTerminalKey, "expected ArrayMarker"}
		}
		m := ArrayMarkerHandle(children[1])
		v.Marker = &m
	default:
		return v, &ConstructError{id, cst.NonTerminalKey, "unexpected trailing child"}
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// KeyBase = Ident | "$" Ident | String | Integer | KeyTuple | "#" Integer

type KeyBaseHandle cst.NodeId

func (h KeyBaseHandle) Id() cst.NodeId { return cst.NodeId(h) }

// KeyBaseView is a sum type; exactly one field is set.
type KeyBaseView struct {
	Ident     *TerminalHandle
	Extension *TerminalHandle
	String    *TerminalHandle
	Integer   *TerminalHandle
	Tuple     *KeyTupleHandle
	TupleIdx  *TerminalHandle
}

func (h KeyBaseHandle) View(s *cst.Store) (KeyBaseView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) == 0 {
		return KeyBaseView{}, &ConstructError{id, cst.NonTerminalKeyBase, "empty KeyBase"}
	}
	if t, ok := terminalAt(s, children, 0); ok {
		switch t {
		case cst.TerminalIdent, cst.TerminalTrue, cst.TerminalFalse, cst.TerminalNull:
			if len(children) != 1 {
				break
			}
			th := TerminalHandle(children[0])
			return KeyBaseView{Ident: &th}, nil
		case cst.TerminalString:
			if len(children) != 1 {
				break
			}
			th := TerminalHandle(children[0])
			return KeyBaseView{String: &th}, nil
		case cst.TerminalInteger:
			if len(children) != 1 {
				break
			}
			th := TerminalHandle(children[0])
			return KeyBaseView{Integer: &th}, nil
		case cst.TerminalDollar:
			if len(children) != 2 {
				break
			}
			if t2, ok := terminalAt(s, children, 1); !ok || t2 != cst.TerminalIdent {
				break
			}
			th := TerminalHandle(children[1])
			return KeyBaseView{Extension: &th}, nil
		case cst.TerminalHash:
			if len(children) != 2 {
				break
			}
			if t2, ok := terminalAt(s, children, 1); !ok || t2 != cst.TerminalInteger {
				break
			}
			th := TerminalHandle(children[1])
			return KeyBaseView{TupleIdx: &th}, nil
		}
	}
	if nt, ok := nonTerminalAt(s, children, 0); ok && nt == cst.NonTerminalKeyTuple && len(children) == 1 {
		kt := KeyTupleHandle(children[0])
		return KeyBaseView{Tuple: &kt}, nil
	}
	return KeyBaseView{}, &ConstructError{id, cst.NonTerminalKeyBase, "unrecognized KeyBase shape"}
}

// -----------------------------------------------------------------------------
// KeyTuple = "(" Key {"," Key} ")"

type KeyTupleHandle cst.NodeId

func (h KeyTupleHandle) Id() cst.NodeId { return cst.NodeId(h) }

type KeyTupleView struct {
	Elements []KeyHandle
}

func (h KeyTupleHandle) View(s *cst.Store) (KeyTupleView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) < 2 {
		return KeyTupleView{}, &ConstructError{id, cst.NonTerminalKeyTuple, "expected '(' ... ')'"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != cst.TerminalLParen {
		return KeyTupleView{}, &ConstructError{id, cst.NonTerminalKeyTuple, "expected leading '('"}
	}
	last := len(children) - 1
	if t, ok := terminalAt(s, children, last); !ok || t != cst.TerminalRParen {
		return KeyTupleView{}, &ConstructError{id, cst.NonTerminalKeyTuple, "expected trailing ')'"}
	}
	var v KeyTupleView
	expectKey := true
	for i := 1; i < last; i++ {
		if expectKey {
			nt, ok := nonTerminalAt(s, children, i)
			if !ok || nt != cst.NonTerminalKey {
				return v, &ConstructError{id, cst.NonTerminalKeyTuple, "expected Key"}
			}
			v.Elements = append(v.Elements, KeyHandle(children[i]))
			expectKey = false
			continue
		}
		t, ok := terminalAt(s, children, i)
		if !ok || t != cst.TerminalComma {
			return v, &ConstructError{id, cst.NonTerminalKeyTuple, "expected ','"}
		}
		expectKey = true
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// ArrayMarker = "[" [Integer] "]"

type ArrayMarkerHandle cst.NodeId

func (h ArrayMarkerHandle) Id() cst.NodeId { return cst.NodeId(h) }

type ArrayMarkerView struct {
	Index *TerminalHandle // nil means append ("[]")
}

func (h ArrayMarkerHandle) View(s *cst.Store) (ArrayMarkerView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) < 2 {
		return ArrayMarkerView{}, &ConstructError{id, cst.NonTerminalArrayMarker, "expected '[' ... ']'"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != cst.TerminalLBracket {
		return ArrayMarkerView{}, &ConstructError{id, cst.NonTerminalArrayMarker, "expected leading '['"}
	}
	last := len(children) - 1
	if t, ok := terminalAt(s, children, last); !ok || t != cst.TerminalRBracket {
		return ArrayMarkerView{}, &ConstructError{id, cst.NonTerminalArrayMarker, "expected trailing ']'"}
	}
	switch last {
	case 1:
		return ArrayMarkerView{}, nil
	case 2:
		if t, ok := terminalAt(s, children, 1); !ok || t != cst.TerminalInteger {
			return ArrayMarkerView{}, &ConstructError{id, cst.NonTerminalArrayMarker, "expected Integer index"}
		}
		th := TerminalHandle(children[1])
		return ArrayMarkerView{Index: &th}, nil
	default:
		return ArrayMarkerView{}, &ConstructError{id, cst.NonTerminalArrayMarker, "unexpected content in ArrayMarker"}
	}
}

// -----------------------------------------------------------------------------
// Value = Object | Array | Tuple | Float | Integer | Bool | Null
//       | Strings | Hole | CodeBlock | InlineCode | Path

type ValueHandle cst.NodeId

func (h ValueHandle) Id() cst.NodeId { return cst.NodeId(h) }

// ValueView is a sum type; exactly one field is set.
type ValueView struct {
	Object  *ObjectHandle
	Array   *ArrayHandle
	Tuple   *TupleHandle
	Float   *TerminalHandle
	Integer *TerminalHandle
	Bool    *TerminalHandle
	Null    *TerminalHandle
	Strings *StringsHandle
	Hole    *HoleHandle
	Code    *TerminalHandle // CodeBlock or (Tagged)InlineCode terminal
	Path    *PathHandle
}

func (h ValueHandle) View(s *cst.Store) (ValueView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) != 1 {
		return ValueView{}, &ConstructError{id, cst.NonTerminalValue, "Value wraps exactly one child"}
	}
	child := children[0]
	if nt, ok := s.Kind(child).AsNonTerminal(); ok {
		switch nt {
		case cst.NonTerminalObject:
			o := ObjectHandle(child)
			return ValueView{Object: &o}, nil
		case cst.NonTerminalArray:
			a := ArrayHandle(child)
			return ValueView{Array: &a}, nil
		case cst.NonTerminalTuple:
			t := TupleHandle(child)
			return ValueView{Tuple: &t}, nil
		case cst.NonTerminalStrings:
			st := StringsHandle(child)
			return ValueView{Strings: &st}, nil
		case cst.NonTerminalHole:
			ho := HoleHandle(child)
			return ValueView{Hole: &ho}, nil
		case cst.NonTerminalPath:
			p := PathHandle(child)
			return ValueView{Path: &p}, nil
		}
		return ValueView{}, &ConstructError{id, cst.NonTerminalValue, "unrecognized Value child rule"}
	}
	t, _ := s.Kind(child).AsTerminal()
	th := TerminalHandle(child)
	switch t {
	case cst.TerminalFloat:
		return ValueView{Float: &th}, nil
	case cst.TerminalInteger:
		return ValueView{Integer: &th}, nil
	case cst.TerminalTrue, cst.TerminalFalse:
		return ValueView{Bool: &th}, nil
	case cst.TerminalNull:
		return ValueView{Null: &th}, nil
	case cst.TerminalCodeBlock, cst.TerminalInlineCode, cst.TerminalTaggedInlineCode:
		return ValueView{Code: &th}, nil
	}
	return ValueView{}, &ConstructError{id, cst.NonTerminalValue, "unrecognized Value child terminal"}
}

// -----------------------------------------------------------------------------
// Object = "{" [ValueBinding [","]] {Keys "=>" Value [","]} "}"

type ObjectHandle cst.NodeId

func (h ObjectHandle) Id() cst.NodeId { return cst.NodeId(h) }

type ObjectView struct {
	ValueBinding *ValueBindingHandle
	Bindings     []ObjectBindingHandle
}

func (h ObjectHandle) View(s *cst.Store) (ObjectView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) < 2 {
		return ObjectView{}, &ConstructError{id, cst.NonTerminalObject, "expected '{' ... '}'"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != cst.TerminalLBrace {
		return ObjectView{}, &ConstructError{id, cst.NonTerminalObject, "expected leading '{'"}
	}
	last := len(children) - 1
	if t, ok := terminalAt(s, children, last); !ok || t != cst.TerminalRBrace {
		return ObjectView{}, &ConstructError{id, cst.NonTerminalObject, "expected trailing '}'"}
	}
	var v ObjectView
	i := 1
	if nt, ok := nonTerminalAt(s, children, i); ok && nt == cst.NonTerminalValueBinding {
		vb := ValueBindingHandle(children[i])
		v.ValueBinding = &vb
		i++
		if t, ok := terminalAt(s, children, i); ok && t == cst.TerminalComma {
			i++
		}
	}
	for i < last {
		if nt, ok := nonTerminalAt(s, children, i); !ok || nt != cst.NonTerminalObjectBinding {
			return v, &ConstructError{id, cst.NonTerminalObject, "expected ObjectBinding"}
		}
		v.Bindings = append(v.Bindings, ObjectBindingHandle(children[i]))
		i++
		if t, ok := terminalAt(s, children, i); ok && t == cst.TerminalComma && i < last {
			i++
		}
	}
	return v, nil
}

// ObjectBinding = Keys "=>" Value — an internal helper rule this module
// introduces to give the object-entry production its own node, mirroring
// how the teacher's generated handles give every repeated group its own
// rule rather than inlining it positionally.

type ObjectBindingHandle cst.NodeId

func (h ObjectBindingHandle) Id() cst.NodeId { return cst.NodeId(h) }

type ObjectBindingView struct {
	Keys  KeysHandle
	Value ValueHandle
}

func (h ObjectBindingHandle) View(s *cst.Store) (ObjectBindingView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) != 3 {
		return ObjectBindingView{}, &ConstructError{id, cst.NonTerminalObjectBinding, "expected Keys '=>' Value"}
	}
	if nt, ok := nonTerminalAt(s, children, 0); !ok || nt != cst.NonTerminalKeys {
		return ObjectBindingView{}, &ConstructError{id, cst.NonTerminalObjectBinding, "expected Keys"}
	}
	if t, ok := terminalAt(s, children, 1); !ok || t != cst.TerminalFatArrow {
		return ObjectBindingView{}, &ConstructError{id, cst.NonTerminalObjectBinding, "expected '=>'"}
	}
	if nt, ok := nonTerminalAt(s, children, 2); !ok || nt != cst.NonTerminalValue {
		return ObjectBindingView{}, &ConstructError{id, cst.NonTerminalObjectBinding, "expected Value"}
	}
	return ObjectBindingView{KeysHandle(children[0]), ValueHandle(children[2])}, nil
}

// -----------------------------------------------------------------------------
// Array = "[" [Value {"," Value} [","]] "]"

type ArrayHandle cst.NodeId

func (h ArrayHandle) Id() cst.NodeId { return cst.NodeId(h) }

type ArrayView struct {
	Elements []ValueHandle
}

func (h ArrayHandle) View(s *cst.Store) (ArrayView, error) {
	id := cst.NodeId(h)
	v, err := viewBracketedValues(s, id, cst.NonTerminalArray, cst.TerminalLBracket, cst.TerminalRBracket)
	return ArrayView{Elements: v}, err
}

// -----------------------------------------------------------------------------
// Tuple = "(" [Value {"," Value} [","]] ")"

type TupleHandle cst.NodeId

func (h TupleHandle) Id() cst.NodeId { return cst.NodeId(h) }

type TupleView struct {
	Elements []ValueHandle
}

func (h TupleHandle) View(s *cst.Store) (TupleView, error) {
	id := cst.NodeId(h)
	v, err := viewBracketedValues(s, id, cst.NonTerminalTuple, cst.TerminalLParen, cst.TerminalRParen)
	return TupleView{Elements: v}, err
}

func viewBracketedValues(s *cst.Store, id cst.NodeId, rule cst.NonTerminalKind, open, close cst.TerminalKind) ([]ValueHandle, error) {
	children := significant(s, s.Children(id))
	if len(children) < 2 {
		return nil, &ConstructError{id, rule, "expected bracketed value list"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != open {
		return nil, &ConstructError{id, rule, "expected leading delimiter"}
	}
	last := len(children) - 1
	if t, ok := terminalAt(s, children, last); !ok || t != close {
		return nil, &ConstructError{id, rule, "expected trailing delimiter"}
	}
	var elems []ValueHandle
	expectValue := true
	for i := 1; i < last; i++ {
		if expectValue {
			nt, ok := nonTerminalAt(s, children, i)
			if !ok || nt != cst.NonTerminalValue {
				return elems, &ConstructError{id, rule, "expected Value"}
			}
			elems = append(elems, ValueHandle(children[i]))
			expectValue = false
			continue
		}
		t, ok := terminalAt(s, children, i)
		if !ok || t != cst.TerminalComma {
			return elems, &ConstructError{id, rule, "expected ','"}
		}
		expectValue = true
	}
	return elems, nil
}

// -----------------------------------------------------------------------------
// Strings = String {"\\" String}

type StringsHandle cst.NodeId

func (h StringsHandle) Id() cst.NodeId { return cst.NodeId(h) }

type StringsView struct {
	Parts []TerminalHandle
}

func (h StringsHandle) View(s *cst.Store) (StringsView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	var v StringsView
	expectString := true
	for i := 0; i < len(children); i++ {
		if expectString {
			t, ok := terminalAt(s, children, i)
			if !ok || t != cst.TerminalString {
				return v, &ConstructError{id, cst.NonTerminalStrings, "expected String"}
			}
			v.Parts = append(v.Parts, TerminalHandle(children[i]))
			expectString = false
			continue
		}
		t, ok := terminalAt(s, children, i)
		if !ok || t != cst.TerminalBackslash {
			return v, &ConstructError{id, cst.NonTerminalStrings, "expected '\\\\'"}
		}
		expectString = true
	}
	if len(v.Parts) == 0 || expectString {
		return v, &ConstructError{id, cst.NonTerminalStrings, "dangling continuation or empty Strings"}
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// Hole = "!" [Ident]

type HoleHandle cst.NodeId

func (h HoleHandle) Id() cst.NodeId { return cst.NodeId(h) }

type HoleView struct {
	Label *TerminalHandle
}

func (h HoleHandle) View(s *cst.Store) (HoleView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) < 1 {
		return HoleView{}, &ConstructError{id, cst.NonTerminalHole, "missing '!'"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != cst.TerminalBang {
		return HoleView{}, &ConstructError{id, cst.NonTerminalHole, "expected leading '!'"}
	}
	switch len(children) {
	case 1:
		return HoleView{}, nil
	case 2:
		if t, ok := terminalAt(s, children, 1); !ok || t != cst.TerminalIdent {
			return HoleView{}, &ConstructError{id, cst.NonTerminalHole, "expected label Ident"}
		}
		th := TerminalHandle(children[1])
		return HoleView{Label: &th}, nil
	default:
		return HoleView{}, &ConstructError{id, cst.NonTerminalHole, "unexpected trailing child"}
	}
}

// -----------------------------------------------------------------------------
// Path = "." Keys

type PathHandle cst.NodeId

func (h PathHandle) Id() cst.NodeId { return cst.NodeId(h) }

type PathView struct {
	Keys KeysHandle
}

func (h PathHandle) View(s *cst.Store) (PathView, error) {
	id := cst.NodeId(h)
	children := significant(s, s.Children(id))
	if len(children) != 2 {
		return PathView{}, &ConstructError{id, cst.NonTerminalPath, "expected '.' Keys"}
	}
	if t, ok := terminalAt(s, children, 0); !ok || t != cst.TerminalDot {
		return PathView{}, &ConstructError{id, cst.NonTerminalPath, "expected leading '.'"}
	}
	if nt, ok := nonTerminalAt(s, children, 1); !ok || nt != cst.NonTerminalKeys {
		return PathView{}, &ConstructError{id, cst.NonTerminalPath, "expected Keys"}
	}
	return PathView{KeysHandle(children[1])}, nil
}
