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

package parser_test

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"eure.sh/eure/cst"
	"eure.sh/eure/parser"
)

// roundtrips asserts that the pre-order terminal walk of the parsed CST
// reproduces src exactly (spec.md §8 property 1).
func roundtrips(t *testing.T, src string) *cst.Store {
	t.Helper()
	store, errs := parser.Parse("test.eure", []byte(src))
	qt.Assert(t, qt.Equals(errs.HasErrors(), false), qt.Commentf("errors: %v", errs))
	qt.Assert(t, qt.Equals(store.Text(store.Root()), src))
	return store
}

func TestParseSimpleBinding(t *testing.T) {
	roundtrips(t, "foo = 1\n")
}

func TestParseNestedObject(t *testing.T) {
	roundtrips(t, `person = { name => "ann", age => 30 }` + "\n")
}

func TestParseArrayAndTuple(t *testing.T) {
	roundtrips(t, "xs = [1, 2, 3]\nys = (1, \"a\", true)\n")
}

func TestParseSection(t *testing.T) {
	roundtrips(t, "@ package\nname = \"demo\"\n@ package.deps\nfoo = 1\n")
}

func TestParseNestedDocumentBinding(t *testing.T) {
	roundtrips(t, "outer = {\n  a.b = 1\n}\n")
}

func TestParseTextBinding(t *testing.T) {
	store := roundtrips(t, "note: hello there\n")
	doc := store.Root()
	qt.Assert(t, qt.Equals(len(store.Children(doc)) > 0, true))
}

func TestParseArrayAppendAndIndex(t *testing.T) {
	roundtrips(t, "items[] = 1\nitems[0] = 2\n")
}

func TestParseExtensionAndTupleKey(t *testing.T) {
	roundtrips(t, "$root-type = \"Config\"\n(a, b) = 1\n#0 = 1\n")
}

func TestParseHoleAndPath(t *testing.T) {
	roundtrips(t, "todo = !\nref = .a.b\n")
}

func TestParseStringsContinuation(t *testing.T) {
	roundtrips(t, "msg = \"hello\" \\\n  \"world\"\n")
}

func TestParseStrictStopsOnError(t *testing.T) {
	store, errs := parser.Parse("test.eure", []byte("foo = \n"))
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.IsNotNil(store))
}

func TestParseTolerantRecoversAndContinues(t *testing.T) {
	src := "foo = \nbar = 2\n"
	store, errs := parser.ParseTolerant("test.eure", []byte(src))
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.Equals(store.Text(store.Root()), src))

	doc := store.Root()
	var sawBar bool
	for _, c := range store.Children(doc) {
		if store.Kind(c).IsTerminal() {
			continue
		}
		if nt, ok := store.Kind(c).AsNonTerminal(); ok && nt == cst.NonTerminalBinding {
			if len(store.Children(c)) > 0 {
				keys := store.Children(c)[0]
				// Keys carries the trivia queued before it (" \n").
				if strings.TrimSpace(store.Text(keys)) == "bar" {
					sawBar = true
				}
			}
		}
	}
	qt.Assert(t, qt.Equals(sawBar, true))
}
