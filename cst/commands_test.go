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

import (
	"testing"

	"eure.sh/eure/token"
)

func TestApplyDeleteUpdateInsertShare(t *testing.T) {
	file := token.NewFile("test.eure", 3)
	store := NewStore(file)
	a := store.AllocTerminal(TerminalIdent, token.Span{}, "a")
	b := store.AllocTerminal(TerminalIdent, token.Span{}, "b")
	root := store.Alloc(NonTerminal(NonTerminalDocument), token.Span{}, []NodeId{a, b})
	store.SetRoot(root)

	cmds := NewCstCommands()
	cmds.DeleteNode(b)
	newChild := cmds.InsertTerminal(TargetNode(root), TerminalIdent, token.Span{}, "c")
	cmds.UpdateNode(a, Terminal(TerminalString), token.Span{})
	wrapper := cmds.InsertNode(TargetNode(root), NonTerminal(NonTerminalValue), token.Span{}, []Target{TargetCommand(newChild)})

	out, bound := cmds.Apply(store)

	outRoot := out.Root()
	children := out.Children(outRoot)
	if len(children) != 3 {
		t.Fatalf("got %d root children, want 3: %v", len(children), children)
	}

	aKind := out.Kind(children[0])
	if tk, ok := aKind.AsTerminal(); !ok || tk != TerminalString {
		t.Fatalf("child 0 = %v, want updated TerminalString", aKind)
	}
	if out.Text(children[0]) != "a" {
		t.Fatalf("child 0 text = %q, want %q (update must not touch cached text)", out.Text(children[0]), "a")
	}

	cKind := out.Kind(children[1])
	if tk, ok := cKind.AsTerminal(); !ok || tk != TerminalIdent {
		t.Fatalf("child 1 = %v, want TerminalIdent", cKind)
	}
	if out.Text(children[1]) != "c" {
		t.Fatalf("child 1 text = %q, want %q", out.Text(children[1]), "c")
	}

	wrapperKind := out.Kind(children[2])
	if wrapperKind != NonTerminal(NonTerminalValue) {
		t.Fatalf("child 2 kind = %v, want NonTerminalValue", wrapperKind)
	}
	wrapperChildren := out.Children(children[2])
	if len(wrapperChildren) != 1 || wrapperChildren[0] != children[1] {
		t.Fatalf("wrapper children = %v, want [%v] (shared with the directly attached copy)", wrapperChildren, children[1])
	}

	if bound[newChild] != children[1] {
		t.Fatalf("bound[newChild] = %v, want %v", bound[newChild], children[1])
	}
	if bound[wrapper] != children[2] {
		t.Fatalf("bound[wrapper] = %v, want %v", bound[wrapper], children[2])
	}
}

func TestApplyOrphanedInsertStillMaterializes(t *testing.T) {
	file := token.NewFile("test.eure", 1)
	store := NewStore(file)
	leaf := store.AllocTerminal(TerminalIdent, token.Span{}, "x")
	inner := store.Alloc(NonTerminal(NonTerminalValue), token.Span{}, []NodeId{leaf})
	root := store.Alloc(NonTerminal(NonTerminalDocument), token.Span{}, []NodeId{inner})
	store.SetRoot(root)

	cmds := NewCstCommands()
	cmds.DeleteRecursive(inner)
	orphan := cmds.InsertTerminal(TargetNode(inner), TerminalIdent, token.Span{}, "y")

	out, bound := cmds.Apply(store)

	outRoot := out.Root()
	if len(out.Children(outRoot)) != 0 {
		t.Fatalf("root children = %v, want none (inner subtree recursively deleted)", out.Children(outRoot))
	}
	nid, ok := bound[orphan]
	if !ok {
		t.Fatalf("orphaned insert targeting a recursively deleted parent must still be materialized")
	}
	if out.Text(nid) != "y" {
		t.Fatalf("orphan text = %q, want %q", out.Text(nid), "y")
	}
}

func TestResolveTargetUnknownCommand(t *testing.T) {
	file := token.NewFile("test.eure", 1)
	store := NewStore(file)
	root := store.AllocTerminal(TerminalIdent, token.Span{}, "z")
	store.SetRoot(root)

	a := &applier{
		cmds:    NewCstCommands(),
		store:   store,
		out:     NewStore(file),
		bound:   map[CommandNodeId]NodeId{},
		updated: map[NodeId]updateOp{},
		byID:    map[CommandNodeId]insertOp{},
	}
	if _, ok := a.resolveTarget(TargetCommand(CommandNodeId(99))); ok {
		t.Fatalf("resolving a CommandNodeId with no matching insert or binding must report !ok")
	}
}
