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

package cst

import "eure.sh/eure/token"

// NodeId is an opaque, stable index into a Store's arena. The zero value
// never refers to a real node.
type NodeId int32

// InvalidNodeId is the zero value of NodeId.
const InvalidNodeId NodeId = 0

// Node stores a kind, a span, and ordered children (spec.md §3.2). Terminals
// additionally cache the exact source slice they cover so Store.Text is
// O(1); non-terminals never cache text (it is reconstructed by walking
// children, per the lossless round-trip invariant).
type Node struct {
	Kind     Kind
	Span     token.Span
	Children []NodeId
	text     string // only set for terminals
}

// A Store is an append-only arena of Nodes (spec.md §4.3). There is no
// parent-pointer API: traversal is strictly top-down from Root.
type Store struct {
	nodes []Node
	root  NodeId
	file  *token.File
}

// NewStore creates an empty Store bound to file, the source file the spans
// of every node it will hold are measured against.
func NewStore(file *token.File) *Store {
	// index 0 is reserved so InvalidNodeId (zero value) never aliases a
	// real node.
	return &Store{nodes: make([]Node, 1), file: file}
}

// File returns the source file this store's spans are measured against.
func (s *Store) File() *token.File { return s.file }

// Alloc appends a new node and returns its id.
func (s *Store) Alloc(kind Kind, span token.Span, children []NodeId) NodeId {
	id := NodeId(len(s.nodes))
	s.nodes = append(s.nodes, Node{Kind: kind, Span: span, Children: children})
	return id
}

// AllocTerminal appends a new terminal node, caching its source text.
func (s *Store) AllocTerminal(kind TerminalKind, span token.Span, text string) NodeId {
	id := NodeId(len(s.nodes))
	s.nodes = append(s.nodes, Node{Kind: Terminal(kind), Span: span, text: text})
	return id
}

// SetRoot records the tree's root node.
func (s *Store) SetRoot(id NodeId) { s.root = id }

// Root returns the tree's root node.
func (s *Store) Root() NodeId { return s.root }

// Node returns the node for id. It panics if id is out of range, which
// indicates a bug in the caller: ids are only ever produced by this store.
func (s *Store) Node(id NodeId) *Node { return &s.nodes[id] }

// Kind returns the kind of id.
func (s *Store) Kind(id NodeId) Kind { return s.nodes[id].Kind }

// Span returns the span of id.
func (s *Store) Span(id NodeId) token.Span { return s.nodes[id].Span }

// Children returns the direct children of id, in source order.
func (s *Store) Children(id NodeId) []NodeId { return s.nodes[id].Children }

// Text returns the cached text of a terminal node id. For non-terminals it
// reconstructs the text by concatenating the text of every descendant
// terminal in pre-order — which, by the round-trip invariant, equals the
// exact source slice the node's span covers.
func (s *Store) Text(id NodeId) string {
	n := &s.nodes[id]
	if n.Kind.IsTerminal() {
		return n.text
	}
	var b []byte
	s.walkTerminals(id, func(t string) { b = append(b, t...) })
	return string(b)
}

func (s *Store) walkTerminals(id NodeId, f func(string)) {
	n := &s.nodes[id]
	if n.Kind.IsTerminal() {
		f(n.text)
		return
	}
	for _, c := range n.Children {
		s.walkTerminals(c, f)
	}
}

// Len reports the number of nodes allocated, including the reserved zero
// slot.
func (s *Store) Len() int { return len(s.nodes) }
