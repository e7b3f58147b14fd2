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

// CommandNodeId identifies a node created by InsertNode before the command
// log has been applied (spec.md §4.4). It is only meaningful within the
// CstCommands batch that produced it.
type CommandNodeId int32

// Target is either a concrete, already-allocated NodeId, or a
// CommandNodeId produced earlier in the same batch.
type Target struct {
	node      NodeId
	cmd       CommandNodeId
	isCommand bool
}

// TargetNode wraps an existing node as a Target.
func TargetNode(id NodeId) Target { return Target{node: id} }

// TargetCommand wraps a pending command-created node as a Target.
func TargetCommand(id CommandNodeId) Target { return Target{cmd: id, isCommand: true} }

type insertOp struct {
	id       CommandNodeId
	parent   Target
	kind     Kind
	span     token.Span
	text     string // for inserted terminals
	children []Target
}

type updateOp struct {
	node NodeId
	kind Kind
	span token.Span
}

// CstCommands accumulates a transcript of edits against a Store. Reads
// against the store remain consistent until Apply: no command takes effect
// until the whole batch is flushed (spec.md §4.4).
type CstCommands struct {
	deletes    map[NodeId]bool
	recursive  map[NodeId]bool
	inserts    []insertOp
	updates    []updateOp
	nextCmdId  CommandNodeId
}

// NewCstCommands returns an empty command batch.
func NewCstCommands() *CstCommands {
	return &CstCommands{deletes: map[NodeId]bool{}, recursive: map[NodeId]bool{}}
}

// DeleteNode marks a single node for removal from its parent's child list.
func (c *CstCommands) DeleteNode(id NodeId) { c.deletes[id] = true }

// DeleteRecursive marks a node and its whole subtree for removal.
func (c *CstCommands) DeleteRecursive(id NodeId) { c.recursive[id] = true }

// InsertNode schedules a new non-terminal node as a child of parent,
// returning a CommandNodeId that can be used as a Target by later commands
// in the same batch (e.g. to insert grandchildren before the parent exists
// in the real store).
func (c *CstCommands) InsertNode(parent Target, kind Kind, span token.Span, children []Target) CommandNodeId {
	c.nextCmdId++
	id := c.nextCmdId
	c.inserts = append(c.inserts, insertOp{id: id, parent: parent, kind: kind, span: span, children: children})
	return id
}

// InsertTerminal schedules a new terminal node as a child of parent.
func (c *CstCommands) InsertTerminal(parent Target, kind TerminalKind, span token.Span, text string) CommandNodeId {
	c.nextCmdId++
	id := c.nextCmdId
	c.inserts = append(c.inserts, insertOp{id: id, parent: parent, kind: Terminal(kind), span: span, text: text})
	return id
}

// UpdateNode schedules a kind/span replacement for an existing node. Its
// children are unaffected.
func (c *CstCommands) UpdateNode(id NodeId, kind Kind, span token.Span) {
	c.updates = append(c.updates, updateOp{node: id, kind: kind, span: span})
}

// Apply flushes the batch against store, producing a new Store reflecting
// every scheduled edit, and a mapping from the CommandNodeIds created in
// this batch to their final NodeIds. The input store is left untouched,
// consistent with Store's append-only, single-pipeline-run contract.
func (c *CstCommands) Apply(store *Store) (*Store, map[CommandNodeId]NodeId) {
	a := &applier{
		cmds:    c,
		store:   store,
		out:     NewStore(store.File()),
		bound:   map[CommandNodeId]NodeId{},
		updated: map[NodeId]updateOp{},
		byID:    map[CommandNodeId]insertOp{},
	}
	for _, u := range c.updates {
		a.updated[u.node] = u
	}
	for _, ins := range c.inserts {
		a.byID[ins.id] = ins
	}

	root, ok := a.rebuild(store.Root())
	if ok {
		a.out.SetRoot(root)
	}
	// Materialize any inserts never reached while rebuilding the original
	// tree (for instance one whose parent node was recursively deleted), so
	// every CommandNodeId of the batch ends up bound.
	for _, ins := range c.inserts {
		a.materialize(ins)
	}
	return a.out, a.bound
}

// applier holds the working state for a single Apply call.
type applier struct {
	cmds    *CstCommands
	store   *Store
	out     *Store
	bound   map[CommandNodeId]NodeId
	updated map[NodeId]updateOp
	byID    map[CommandNodeId]insertOp
}

func (a *applier) resolveTarget(t Target) (NodeId, bool) {
	if t.isCommand {
		if ins, ok := a.byID[t.cmd]; ok {
			return a.materialize(ins)
		}
		id, ok := a.bound[t.cmd]
		return id, ok
	}
	return a.rebuild(t.node)
}

// rebuild copies the subtree rooted at id from the original store into the
// output store, applying deletes/updates and splicing in any insert whose
// parent target names id directly.
func (a *applier) rebuild(id NodeId) (NodeId, bool) {
	if a.cmds.recursive[id] {
		return InvalidNodeId, false
	}
	n := a.store.Node(id)
	kind, span := n.Kind, n.Span
	if u, ok := a.updated[id]; ok {
		kind, span = u.kind, u.span
	}
	if kind.IsTerminal() {
		t, _ := kind.AsTerminal()
		return a.out.AllocTerminal(t, span, n.text), true
	}
	var children []NodeId
	for _, ch := range n.Children {
		if a.cmds.deletes[ch] {
			continue
		}
		if nid, ok := a.rebuild(ch); ok {
			children = append(children, nid)
		}
	}
	for _, ins := range a.cmds.inserts {
		if ins.parent.isCommand || ins.parent.node != id {
			continue
		}
		if nid, ok := a.materialize(ins); ok {
			children = append(children, nid)
		}
	}
	return a.out.Alloc(kind, span, children), true
}

// materialize allocates the node for a single scheduled insert (memoized in
// a.bound), resolving its children's targets first.
func (a *applier) materialize(ins insertOp) (NodeId, bool) {
	if nid, ok := a.bound[ins.id]; ok {
		return nid, true
	}
	if ins.kind.IsTerminal() {
		t, _ := ins.kind.AsTerminal()
		nid := a.out.AllocTerminal(t, ins.span, ins.text)
		a.bound[ins.id] = nid
		return nid, true
	}
	var children []NodeId
	for _, ct := range ins.children {
		if nid, ok := a.resolveTarget(ct); ok {
			children = append(children, nid)
		}
	}
	for _, child := range a.cmds.inserts {
		if !child.parent.isCommand || child.parent.cmd != ins.id {
			continue
		}
		if nid, ok := a.materialize(child); ok {
			children = append(children, nid)
		}
	}
	nid := a.out.Alloc(ins.kind, ins.span, children)
	a.bound[ins.id] = nid
	return nid, true
}
