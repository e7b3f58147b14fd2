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

// Package document holds the Document data model (spec.md §3.4, §4.6) and
// the builder that produces one from a parsed CST (spec.md §4.5). A
// Document is a tree of path-addressed Nodes, distinct from the CST: the
// CST is the lossless surface syntax, the Document is what that syntax
// means.
package document

import (
	"eure.sh/eure/cst"
	"eure.sh/eure/errors"
	"eure.sh/eure/internal"
)

// NavError reports why navigate or assertUnbound rejected a step. The
// Document model has no notion of source position, so it reports just the
// Kind and message; the builder attaches the originating CST span before
// handing the error to its diagnostic list.
type NavError struct {
	Kind errors.Kind
	Msg  string
}

func (e *NavError) Error() string { return e.Msg }

// DocNodeId identifies a Node within a Document. The zero value is never a
// valid id; Document.Root always returns a non-zero id.
type DocNodeId int32

// ContentKind tags the variant currently held by a Node's content.
// ContentUnset marks a slot created by navigation that nothing has bound a
// value to. Such slots can stay reachable in a built Document: the target
// of a `key { }` whose body binds nothing, or of a binding whose value was
// rejected with a diagnostic.
type ContentKind int

const (
	ContentUnset ContentKind = iota
	ContentMap
	ContentArray
	ContentTuple
	ContentString
	ContentCodeBlock
	ContentInteger
	ContentFloat
	ContentBool
	ContentNull
	ContentPath
	ContentHole
)

func (k ContentKind) String() string {
	switch k {
	case ContentUnset:
		return "Unset"
	case ContentMap:
		return "Map"
	case ContentArray:
		return "Array"
	case ContentTuple:
		return "Tuple"
	case ContentString:
		return "String"
	case ContentCodeBlock:
		return "CodeBlock"
	case ContentInteger:
		return "Integer"
	case ContentFloat:
		return "Float"
	case ContentBool:
		return "Bool"
	case ContentNull:
		return "Null"
	case ContentPath:
		return "Path"
	case ContentHole:
		return "Hole"
	default:
		return "ContentKind(?)"
	}
}

// StringForm distinguishes the three ways a String node's text can have
// reached the document (spec.md §3.4): a quoted literal, an implicit text
// binding (`key: text`), or inline code with a language tag.
type StringForm int

const (
	StringPlain StringForm = iota
	StringImplicit
	StringTagged
)

// mapEntry is one key/value pair of a Map node, kept in insertion order.
type mapEntry struct {
	Key  Segment
	Node DocNodeId
}

// Node is one element of a Document tree (spec.md §3.4). Only the fields
// relevant to Kind are meaningful; the rest are zero.
type Node struct {
	Kind ContentKind

	// ContentMap
	entries []mapEntry
	index   map[string]int // canonicalKey(entry.Key) -> index into entries

	// ContentArray, ContentTuple
	elements []DocNodeId

	// ContentString, ContentCodeBlock
	StringForm StringForm
	Lang       string
	Text       string

	// ContentInteger
	Integer internal.Decimal

	// ContentFloat
	Float float64

	// ContentBool
	Bool bool

	// ContentPath
	Path []Segment

	// ContentHole
	HoleLabel string
	HasLabel  bool

	// Extensions is the node's separate metadata channel (spec.md §3.4
	// invariant iii): present regardless of Kind, including on
	// primitive-valued nodes.
	Extensions map[string]DocNodeId

	// Variant records the dotted variant-selection path set by a $variant
	// extension on this node (spec.md §4.5.4); nil if none was set.
	Variant []string

	// CstHandle is the originating CST node, kept for span reporting.
	CstHandle cst.NodeId

	// Bound is true once a value, map, array, or tuple has been committed
	// to this node by bind(); a node created only by navigation and never
	// bound stays false. It only distinguishes "freshly navigated, not yet
	// assigned" from "assigned"; an unbound node is not reported.
	Bound bool
}

// Entry is one key/value pair of a Map node.
type Entry struct {
	Key  Segment
	Node DocNodeId
}

// Entries returns the Map node's key/value pairs in insertion order.
func (n *Node) Entries() []Entry {
	out := make([]Entry, len(n.entries))
	for i, e := range n.entries {
		out[i] = Entry{e.Key, e.Node}
	}
	return out
}

// Elements returns the Array or Tuple node's children in order.
func (n *Node) Elements() []DocNodeId {
	return n.elements
}

// Document is a tree of Nodes, path-addressed from a single root
// (spec.md §3.4). Documents are built incrementally by the builder in
// builder.go and are immutable once Build returns.
type Document struct {
	nodes []Node
	root  DocNodeId
}

// newDocument allocates a Document whose root starts as an unset node; the
// builder turns it into a Map (or a primitive, for a root value binding)
// on first use.
func newDocument() *Document {
	d := &Document{nodes: make([]Node, 2)} // index 0 is reserved invalid
	d.root = 1
	return d
}

// Root returns the id of the document's root node.
func (d *Document) Root() DocNodeId { return d.root }

// Node returns the node identified by id. The returned pointer is valid
// for the lifetime of the (immutable, post-build) Document.
func (d *Document) Node(id DocNodeId) *Node { return &d.nodes[id] }

// IsComplete reports whether the Document contains no Hole nodes anywhere
// in its tree (spec.md §3.4 invariant iv, §4.5.6). It walks the tree fresh
// rather than consulting a flag maintained during navigation, since a
// Hole created transiently while filling an array/tuple gap is routinely
// superseded by a later bind and must not count against completeness.
func (d *Document) IsComplete() bool { return !d.hasHole(d.root, make(map[DocNodeId]bool)) }

func (d *Document) hasHole(id DocNodeId, seen map[DocNodeId]bool) bool {
	if seen[id] {
		return false
	}
	seen[id] = true
	n := &d.nodes[id]
	if n.Kind == ContentHole {
		return true
	}
	for _, e := range n.entries {
		if d.hasHole(e.Node, seen) {
			return true
		}
	}
	for _, c := range n.elements {
		if d.hasHole(c, seen) {
			return true
		}
	}
	for _, c := range n.Extensions {
		if d.hasHole(c, seen) {
			return true
		}
	}
	return false
}

func (d *Document) alloc(n Node) DocNodeId {
	id := DocNodeId(len(d.nodes))
	d.nodes = append(d.nodes, n)
	return id
}

// Get resolves path against the document root without creating anything,
// per F's `get(path) -> Option<&Node>` (spec.md §4.6).
func (d *Document) Get(path []Segment) (DocNodeId, bool) {
	cur := d.root
	for _, seg := range path {
		next, ok := d.childOf(cur, seg)
		if !ok {
			return 0, false
		}
		cur = next
	}
	return cur, true
}

// Insert sets path's content to content, creating intermediate maps,
// arrays, and tuples as needed and enforcing the §3.4 invariants through
// the same navigate/assertUnbound primitives the CST builder uses
// (spec.md §4.6's `insert(path, content) -> Result<DocNodeId>`). Unlike
// the builder, which binds node-by-node as it walks a CST, Insert accepts
// an already-assembled Value and recursively binds it in one call — the
// path for programmatic construction (e.g. default values the schema
// extractor materializes) rather than for parsing source text.
func (d *Document) Insert(path []Segment, content *Value) (DocNodeId, error) {
	cur := d.root
	for _, seg := range path {
		next, err := d.navigate(cur, seg)
		if err != nil {
			return 0, err
		}
		cur = next
	}
	if err := d.assertUnbound(cur); err != nil {
		return 0, err
	}
	d.bindValue(cur, content)
	return cur, nil
}

func (d *Document) bindValue(id DocNodeId, v *Value) {
	switch v.Kind {
	case ContentMap:
		d.forceMap(id)
		for _, e := range v.Map {
			child, err := d.navigate(id, e.Key)
			if err != nil {
				continue
			}
			d.bindValue(child, e.Value)
		}
	case ContentArray:
		d.beginArray(id)
		for _, e := range v.Elements {
			child := d.newSlot()
			d.appendElement(id, child)
			d.bindValue(child, e)
		}
	case ContentTuple:
		d.beginTuple(id)
		for _, e := range v.Elements {
			child := d.newSlot()
			d.appendElement(id, child)
			d.bindValue(child, e)
		}
	case ContentString:
		d.bindString(id, v.StringForm, v.Lang, v.Text)
	case ContentCodeBlock:
		d.bindCodeBlock(id, v.Lang, v.Text)
	case ContentInteger:
		d.bindInteger(id, v.Integer)
	case ContentFloat:
		d.bindFloat(id, v.Float)
	case ContentBool:
		d.bindBool(id, v.Bool)
	case ContentNull:
		d.bindNull(id)
	case ContentPath:
		d.bindPath(id, v.Path)
	case ContentHole:
		d.bindHole(id, "", false)
	}
}

func (d *Document) childOf(parent DocNodeId, seg Segment) (DocNodeId, bool) {
	n := &d.nodes[parent]
	switch seg.Kind {
	case SegArrayIndex:
		if n.Kind != ContentArray {
			return 0, false
		}
		i := int(seg.ArrayIdx)
		if i < 0 || i >= len(n.elements) {
			return 0, false
		}
		return n.elements[i], true
	case SegArrayAppend:
		return 0, false
	case SegTupleIndex:
		if n.Kind != ContentTuple {
			return 0, false
		}
		i := int(seg.TupleIdx)
		if i < 0 || i >= len(n.elements) {
			return 0, false
		}
		return n.elements[i], true
	case SegExtension:
		child, ok := n.Extensions[seg.Name]
		return child, ok
	default:
		if n.Kind != ContentMap {
			return 0, false
		}
		idx, ok := n.index[canonicalKey(seg)]
		if !ok {
			return 0, false
		}
		return n.entries[idx].Node, true
	}
}

// navigate moves from parent along seg, creating (and, for an unset slot,
// kind-shaping) the child as needed — the builder primitive of the same
// name (spec.md §4.5.2). Every mutation below indexes d.nodes[parent]
// fresh immediately before writing, rather than caching a *Node across a
// call to alloc: alloc grows d.nodes and can reallocate its backing
// array, which would leave an earlier pointer dangling into the old one.
func (d *Document) navigate(parent DocNodeId, seg Segment) (DocNodeId, error) {
	switch seg.Kind {
	case SegArrayAppend, SegArrayIndex:
		return d.navigateArray(parent, seg)
	case SegTupleIndex:
		return d.navigateTuple(parent, seg)
	case SegExtension:
		return d.navigateExtension(parent, seg)
	default:
		return d.navigateMapKey(parent, seg)
	}
}

func (d *Document) navigateArray(parent DocNodeId, seg Segment) (DocNodeId, error) {
	kind := d.nodes[parent].Kind
	if kind == ContentUnset {
		kind = ContentArray
	}
	if kind == ContentTuple {
		return 0, &NavError{errors.ArrayIndexMixingConflict, "array index used on a tuple-addressed node"}
	}
	if kind != ContentArray {
		return 0, &NavError{errors.ValueWithRegularBinding, "cannot address an array position on a node that already holds a value"}
	}
	if seg.Kind == SegArrayAppend {
		child := d.alloc(Node{Kind: ContentHole})
		d.nodes[parent].Kind = ContentArray
		d.nodes[parent].elements = append(d.nodes[parent].elements, child)
		return child, nil
	}
	want := int(seg.ArrayIdx)
	for len(d.nodes[parent].elements) <= want {
		child := d.alloc(Node{Kind: ContentHole})
		d.nodes[parent].Kind = ContentArray
		d.nodes[parent].elements = append(d.nodes[parent].elements, child)
	}
	return d.nodes[parent].elements[want], nil
}

func (d *Document) navigateTuple(parent DocNodeId, seg Segment) (DocNodeId, error) {
	kind := d.nodes[parent].Kind
	if kind == ContentUnset {
		kind = ContentTuple
	}
	if kind == ContentArray {
		return 0, &NavError{errors.ArrayIndexMixingConflict, "tuple index used on an array-addressed node"}
	}
	if kind != ContentTuple {
		return 0, &NavError{errors.ValueWithRegularBinding, "cannot address a tuple position on a node that already holds a value"}
	}
	want := int(seg.TupleIdx)
	for len(d.nodes[parent].elements) <= want {
		child := d.alloc(Node{Kind: ContentHole})
		d.nodes[parent].Kind = ContentTuple
		d.nodes[parent].elements = append(d.nodes[parent].elements, child)
	}
	return d.nodes[parent].elements[want], nil
}

func (d *Document) navigateExtension(parent DocNodeId, seg Segment) (DocNodeId, error) {
	if d.nodes[parent].Extensions == nil {
		d.nodes[parent].Extensions = map[string]DocNodeId{}
	}
	if child, ok := d.nodes[parent].Extensions[seg.Name]; ok {
		return child, nil
	}
	child := d.alloc(Node{Kind: ContentUnset})
	d.nodes[parent].Extensions[seg.Name] = child
	return child, nil
}

func (d *Document) navigateMapKey(parent DocNodeId, seg Segment) (DocNodeId, error) {
	kind := d.nodes[parent].Kind
	if kind == ContentUnset {
		d.nodes[parent].Kind = ContentMap
		d.nodes[parent].index = map[string]int{}
		kind = ContentMap
	}
	if kind != ContentMap {
		return 0, &NavError{errors.ValueWithRegularBinding, "cannot add a regular key binding to a node that already holds a value"}
	}
	key := canonicalKey(seg)
	if idx, ok := d.nodes[parent].index[key]; ok {
		return d.nodes[parent].entries[idx].Node, nil
	}
	child := d.alloc(Node{Kind: ContentUnset})
	d.nodes[parent].index[key] = len(d.nodes[parent].entries)
	d.nodes[parent].entries = append(d.nodes[parent].entries, mapEntry{Key: seg, Node: child})
	return child, nil
}

// assertUnbound requires that id points at a hole or a not-yet-assigned
// slot, per the builder primitive of the same name (spec.md §4.5.2).
func (d *Document) assertUnbound(id DocNodeId) error {
	n := &d.nodes[id]
	if n.Bound && n.Kind != ContentHole {
		return &NavError{errors.DuplicateBinding, "duplicate binding"}
	}
	return nil
}

// The bind* helpers below are the builder primitive `bind(value)`
// (spec.md §4.5.2): they commit a content kind and payload to a node and
// mark it Bound. Each is a thin setter; splitting them out keeps
// builder.go's per-Value-alternative dispatch free of field plumbing.

func (d *Document) bindString(id DocNodeId, form StringForm, lang, text string) {
	n := &d.nodes[id]
	n.Kind = ContentString
	n.StringForm = form
	n.Lang = lang
	n.Text = text
	n.Bound = true
}

func (d *Document) bindCodeBlock(id DocNodeId, lang, text string) {
	n := &d.nodes[id]
	n.Kind = ContentCodeBlock
	n.Lang = lang
	n.Text = text
	n.Bound = true
}

func (d *Document) bindInteger(id DocNodeId, v internal.Decimal) {
	n := &d.nodes[id]
	n.Kind = ContentInteger
	n.Integer = v
	n.Bound = true
}

func (d *Document) bindFloat(id DocNodeId, v float64) {
	n := &d.nodes[id]
	n.Kind = ContentFloat
	n.Float = v
	n.Bound = true
}

func (d *Document) bindBool(id DocNodeId, v bool) {
	n := &d.nodes[id]
	n.Kind = ContentBool
	n.Bool = v
	n.Bound = true
}

func (d *Document) bindNull(id DocNodeId) {
	n := &d.nodes[id]
	n.Kind = ContentNull
	n.Bound = true
}

func (d *Document) bindPath(id DocNodeId, segs []Segment) {
	n := &d.nodes[id]
	n.Kind = ContentPath
	n.Path = segs
	n.Bound = true
}

func (d *Document) bindHole(id DocNodeId, label string, hasLabel bool) {
	n := &d.nodes[id]
	n.Kind = ContentHole
	n.HoleLabel = label
	n.HasLabel = hasLabel
	n.Bound = true
}

// forceMap ensures id is at least an empty Map, for an object literal
// (`{ ... }`) whose body consists only of extensions or is empty: those
// never drive navigateMapKey's own ContentUnset->ContentMap promotion, so
// the literal has to stamp it directly. A no-op once id already holds
// content, Map or otherwise — any later non-extension navigateMapKey call
// still enforces the regular-binding-vs-value conflict correctly.
func (d *Document) forceMap(id DocNodeId) {
	n := &d.nodes[id]
	if n.Kind == ContentUnset {
		n.Kind = ContentMap
		n.index = map[string]int{}
	}
}

// beginArray and beginTuple turn an unset node into an empty array/tuple
// ready to receive literal elements (a value-literal `[...]`/`(...)`,
// as opposed to the positional items[]/items[n] navigation path, which
// goes through navigateArray/navigateTuple instead).
func (d *Document) beginArray(id DocNodeId) {
	n := &d.nodes[id]
	n.Kind = ContentArray
	n.Bound = true
}

func (d *Document) beginTuple(id DocNodeId) {
	n := &d.nodes[id]
	n.Kind = ContentTuple
	n.Bound = true
}

// appendElement appends child to id's Array/Tuple element list. The
// caller has already allocated child (via alloc, through the builder);
// this never itself calls alloc, so no aliasing hazard applies.
func (d *Document) appendElement(id, child DocNodeId) {
	d.nodes[id].elements = append(d.nodes[id].elements, child)
}

// newSlot allocates a fresh unset node, for the builder to bind into.
func (d *Document) newSlot() DocNodeId {
	return d.alloc(Node{Kind: ContentUnset})
}

// setHandle records the CST node a Document node was built from, for span
// reporting by the validator (spec.md §3.4).
func (d *Document) setHandle(id DocNodeId, h cst.NodeId) {
	d.nodes[id].CstHandle = h
}

// setVariant records the dotted variant-selection path a $variant
// extension assigned to a map node (spec.md §4.5.4).
func (d *Document) setVariant(id DocNodeId, path []string) {
	d.nodes[id].Variant = path
}
