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

package document_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/parser"
)

func build(t *testing.T, src string) (*document.Document, *errors.List) {
	t.Helper()
	store, perrs := parser.Parse("test.eure", []byte(src))
	qt.Assert(t, qt.Equals(perrs.HasErrors(), false), qt.Commentf("parse errors: %v", perrs))
	return document.Build(store)
}

func buildOk(t *testing.T, src string) *document.Document {
	t.Helper()
	doc, errs := build(t, src)
	qt.Assert(t, qt.Equals(errs.HasErrors(), false), qt.Commentf("build errors: %v", errs))
	return doc
}

func get(t *testing.T, doc *document.Document, segs ...document.Segment) *document.Node {
	t.Helper()
	id, ok := doc.Get(segs)
	qt.Assert(t, qt.Equals(ok, true), qt.Commentf("path not found: %v", segs))
	return doc.Node(id)
}

func TestBuildSimpleBinding(t *testing.T) {
	doc := buildOk(t, "foo = 1\n")
	n := get(t, doc, document.Ident("foo"))
	qt.Assert(t, qt.Equals(n.Kind, document.ContentInteger))
	qt.Assert(t, qt.Equals(n.Integer.String(), "1"))
	qt.Assert(t, qt.Equals(doc.IsComplete(), true))
}

func TestBuildNestedObjectLiteral(t *testing.T) {
	doc := buildOk(t, `person = { name => "ann", age => 30 }`+"\n")
	person := get(t, doc, document.Ident("person"))
	qt.Assert(t, qt.Equals(person.Kind, document.ContentMap))
	entries := person.Entries()
	qt.Assert(t, qt.Equals(len(entries), 2))

	name := get(t, doc, document.Ident("person"), document.Ident("name"))
	qt.Assert(t, qt.Equals(name.Kind, document.ContentString))
	qt.Assert(t, qt.Equals(name.Text, "ann"))

	age := get(t, doc, document.Ident("person"), document.Ident("age"))
	qt.Assert(t, qt.Equals(age.Kind, document.ContentInteger))
	qt.Assert(t, qt.Equals(age.Integer.String(), "30"))
}

func TestBuildArrayAndTuple(t *testing.T) {
	doc := buildOk(t, "xs = [1, 2, 3]\nys = (1, \"a\", true)\n")

	xs := get(t, doc, document.Ident("xs"))
	qt.Assert(t, qt.Equals(xs.Kind, document.ContentArray))
	qt.Assert(t, qt.Equals(len(xs.Elements()), 3))
	qt.Assert(t, qt.Equals(doc.Node(xs.Elements()[1]).Integer.String(), "2"))

	ys := get(t, doc, document.Ident("ys"))
	qt.Assert(t, qt.Equals(ys.Kind, document.ContentTuple))
	qt.Assert(t, qt.Equals(len(ys.Elements()), 3))
	qt.Assert(t, qt.Equals(doc.Node(ys.Elements()[2]).Bool, true))
}

func TestBuildSection(t *testing.T) {
	doc := buildOk(t, "@ package\nname = \"demo\"\n@ package.deps\nfoo = 1\n")

	name := get(t, doc, document.Ident("package"), document.Ident("name"))
	qt.Assert(t, qt.Equals(name.Text, "demo"))

	foo := get(t, doc, document.Ident("package"), document.Ident("deps"), document.Ident("foo"))
	qt.Assert(t, qt.Equals(foo.Integer.String(), "1"))
}

func TestBuildNestedDocumentBinding(t *testing.T) {
	doc := buildOk(t, "outer = {\n  a.b = 1\n}\n")
	b := get(t, doc, document.Ident("outer"), document.Ident("a"), document.Ident("b"))
	qt.Assert(t, qt.Equals(b.Integer.String(), "1"))
}

func TestBuildTextBinding(t *testing.T) {
	doc := buildOk(t, "note: hello there\n")
	n := get(t, doc, document.Ident("note"))
	qt.Assert(t, qt.Equals(n.Kind, document.ContentString))
	qt.Assert(t, qt.Equals(n.StringForm, document.StringImplicit))
	qt.Assert(t, qt.Equals(n.Text, "hello there"))
}

func TestBuildArrayIndexFillsGap(t *testing.T) {
	doc := buildOk(t, "items[0] = 1\nitems[] = 2\n")
	items := get(t, doc, document.Ident("items"))
	qt.Assert(t, qt.Equals(len(items.Elements()), 2))
	qt.Assert(t, qt.Equals(doc.Node(items.Elements()[0]).Integer.String(), "1"))
	qt.Assert(t, qt.Equals(doc.Node(items.Elements()[1]).Integer.String(), "2"))
	qt.Assert(t, qt.Equals(doc.IsComplete(), true))
}

func TestBuildArrayAppendThenExplicitIndexIsDuplicate(t *testing.T) {
	_, errs := build(t, "items[] = 1\nitems[0] = 2\n")
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.Equals(errs.All()[0].Kind(), errors.DuplicateBinding))
}

func TestBuildExtension(t *testing.T) {
	doc := buildOk(t, "$root-type = \"Config\"\n")
	root := doc.Node(doc.Root())
	ext, ok := root.Extensions["root-type"]
	qt.Assert(t, qt.Equals(ok, true))
	n := doc.Node(ext)
	qt.Assert(t, qt.Equals(n.Kind, document.ContentString))
	qt.Assert(t, qt.Equals(n.Text, "Config"))
}

func TestBuildTupleKey(t *testing.T) {
	doc := buildOk(t, "(a, b) = 1\n")
	root := doc.Node(doc.Root())
	qt.Assert(t, qt.Equals(root.Kind, document.ContentMap))
	entries := root.Entries()
	qt.Assert(t, qt.Equals(len(entries), 1))
	qt.Assert(t, qt.Equals(entries[0].Key.Kind, document.SegTupleKey))
	qt.Assert(t, qt.Equals(len(entries[0].Key.Tuple), 2))
}

func TestBuildTupleIndexKey(t *testing.T) {
	doc := buildOk(t, "#0 = 1\n")
	root := doc.Node(doc.Root())
	qt.Assert(t, qt.Equals(root.Kind, document.ContentTuple))
	qt.Assert(t, qt.Equals(len(root.Elements()), 1))
	qt.Assert(t, qt.Equals(doc.Node(root.Elements()[0]).Integer.String(), "1"))
}

func TestBuildHoleAndPath(t *testing.T) {
	doc := buildOk(t, "todo = !\nref = .a.b\n")
	qt.Assert(t, qt.Equals(doc.IsComplete(), false))

	todo := get(t, doc, document.Ident("todo"))
	qt.Assert(t, qt.Equals(todo.Kind, document.ContentHole))
	qt.Assert(t, qt.Equals(todo.HasLabel, false))

	ref := get(t, doc, document.Ident("ref"))
	qt.Assert(t, qt.Equals(ref.Kind, document.ContentPath))
	qt.Assert(t, qt.Equals(len(ref.Path), 2))
	qt.Assert(t, qt.Equals(ref.Path[0].Name, "a"))
	qt.Assert(t, qt.Equals(ref.Path[1].Name, "b"))
}

func TestBuildStringsContinuation(t *testing.T) {
	doc := buildOk(t, "msg = \"hello\" \\\n  \"world\"\n")
	msg := get(t, doc, document.Ident("msg"))
	qt.Assert(t, qt.Equals(msg.Kind, document.ContentString))
	qt.Assert(t, qt.Equals(msg.Text, "helloworld"))
}

func TestBuildDuplicateBinding(t *testing.T) {
	_, errs := build(t, "foo = 1\nfoo = 2\n")
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.Equals(errs.All()[0].Kind(), errors.DuplicateBinding))
}

func TestBuildValueWithRegularBindingConflict(t *testing.T) {
	_, errs := build(t, "foo = 1\nfoo.bar = 2\n")
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.Equals(errs.All()[0].Kind(), errors.ValueWithRegularBinding))
}

func TestBuildArrayIndexMixingConflict(t *testing.T) {
	_, errs := build(t, "items[] = 1\nitems.#0 = 2\n")
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.Equals(errs.All()[0].Kind(), errors.ArrayIndexMixingConflict))
}

func TestBuildVariantExtension(t *testing.T) {
	doc := buildOk(t, "shape {\n  $variant = .circle\n  radius = 1\n}\n")
	shapeId, ok := doc.Get([]document.Segment{document.Ident("shape")})
	qt.Assert(t, qt.Equals(ok, true))
	shape := doc.Node(shapeId)
	qt.Assert(t, qt.DeepEquals(shape.Variant, []string{"circle"}))

	radius := get(t, doc, document.Ident("shape"), document.Ident("radius"))
	qt.Assert(t, qt.Equals(radius.Integer.String(), "1"))
}

func TestToValueProjectionDropsMetadata(t *testing.T) {
	doc := buildOk(t, "$root-type = \"Config\"\nname = \"ann\"\nage = 30\n")
	v := doc.ToValue()
	qt.Assert(t, qt.Equals(v.Kind, document.ContentMap))
	qt.Assert(t, qt.Equals(len(v.Map), 2))
	for _, e := range v.Map {
		switch e.Key.Name {
		case "name":
			qt.Assert(t, qt.Equals(e.Value.Text, "ann"))
		case "age":
			qt.Assert(t, qt.Equals(e.Value.Integer.String(), "30"))
		default:
			t.Fatalf("unexpected key %v", e.Key)
		}
	}
}
