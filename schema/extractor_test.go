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

package schema_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/parser"
	"eure.sh/eure/schema"
)

func extract(t *testing.T, src string, imports map[string]*schema.Schema) (*schema.Schema, *errors.List) {
	t.Helper()
	store, perrs := parser.Parse("schema.eure", []byte(src))
	qt.Assert(t, qt.Equals(perrs.HasErrors(), false), qt.Commentf("parse errors: %v", perrs))
	doc, berrs := document.Build(store)
	qt.Assert(t, qt.Equals(berrs.HasErrors(), false), qt.Commentf("build errors: %v", berrs))
	return schema.Extract(store, doc, imports)
}

func extractOk(t *testing.T, src string) *schema.Schema {
	t.Helper()
	sc, errs := extract(t, src, nil)
	qt.Assert(t, qt.Equals(errs.HasErrors(), false), qt.Commentf("extraction errors: %v", errs))
	return sc
}

func TestExtractRootTypePrimitiveShorthand(t *testing.T) {
	sc := extractOk(t, "$root-type = .string\n")
	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KText))
}

func TestExtractTypesTableAndRef(t *testing.T) {
	sc := extractOk(t, "$types.Name = .string\n$root-type = .$types.Name\n")
	name, ok := sc.Types["Name"]
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Equals(name.Kind, schema.KText))

	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KRef))
	qt.Assert(t, qt.DeepEquals(sc.Root.RefPath, []string{"Name"}))
}

func TestExtractArrayShorthand(t *testing.T) {
	sc := extractOk(t, "$root-type = [.integer]\n")
	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KArray))
	qt.Assert(t, qt.Equals(sc.Root.Item.Kind, schema.KInteger))
}

func TestExtractTupleShorthand(t *testing.T) {
	sc := extractOk(t, "$root-type = (.string, .integer, .boolean)\n")
	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KTuple))
	qt.Assert(t, qt.Equals(len(sc.Root.Elements), 3))
	qt.Assert(t, qt.Equals(sc.Root.Elements[1].Kind, schema.KInteger))
}

func TestExtractInlineRecord(t *testing.T) {
	sc := extractOk(t, "$root-type {\n  name = .string\n  age = .integer\n}\n")
	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KRecord))
	qt.Assert(t, qt.Equals(len(sc.Root.Fields), 2))
	name, ok := sc.Root.Fields["name"]
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Equals(name.Type.Kind, schema.KText))
	qt.Assert(t, qt.Equals(name.Optional, false))
}

func TestExtractOptionalField(t *testing.T) {
	sc := extractOk(t, "$root-type {\n  nickname = .string\n  nickname.$optional = true\n}\n")
	nick, ok := sc.Root.Fields["nickname"]
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Equals(nick.Optional, true))
}

func TestExtractRange(t *testing.T) {
	sc := extractOk(t, "$root-type = .integer\n$root-type.$range = [0, 100]\n")
	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KInteger))
	qt.Assert(t, sc.Root.Range != nil)
	qt.Assert(t, qt.Equals(sc.Root.Range.Min.String(), "0"))
	qt.Assert(t, qt.Equals(sc.Root.Range.Max.String(), "100"))
}

func TestExtractUnion(t *testing.T) {
	sc := extractOk(t, "$root-type {\n  $variant = .union\n  $union {\n    circle = .string\n    square = .integer\n  }\n}\n")
	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KUnion))
	qt.Assert(t, qt.Equals(len(sc.Root.Variants), 2))
	qt.Assert(t, qt.Equals(sc.Root.Repr, schema.ReprExternal))
}

func TestExtractUnionInternalRepr(t *testing.T) {
	sc := extractOk(t, "$root-type {\n  $variant = .union\n  $variant-repr = (\"internal\", \"kind\")\n  $union {\n    circle = .string\n  }\n}\n")
	qt.Assert(t, qt.Equals(sc.Root.Repr, schema.ReprInternal))
	qt.Assert(t, qt.Equals(sc.Root.ReprTag, "kind"))
}

func TestExtractImportBundling(t *testing.T) {
	shapes := extractOk(t, "$types.Circle = .string\n$export = [\"Circle\"]\n")
	sc, errs := extract(t, "$import.shapes = \"shapes\"\n$root-type = .$types.shapes__Circle\n",
		map[string]*schema.Schema{"shapes": shapes})
	qt.Assert(t, qt.Equals(errs.HasErrors(), false), qt.Commentf("extraction errors: %v", errs))
	circle, ok := sc.Types["shapes__Circle"]
	qt.Assert(t, qt.Equals(ok, true))
	qt.Assert(t, qt.Equals(circle.Kind, schema.KText))
	qt.Assert(t, qt.Equals(sc.Root.Kind, schema.KRef))
}

func TestExtractUnknownImport(t *testing.T) {
	_, errs := extract(t, "$import.shapes = \"shapes\"\n$root-type = .any\n", map[string]*schema.Schema{})
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.Equals(errs.All()[0].Kind(), errors.UnknownImportAlias))
}

func TestExtractDuplicateTypeName(t *testing.T) {
	sc, errs := extract(t, "$types.Foo = .string\n$types.Foo = .integer\n", nil)
	qt.Assert(t, qt.Equals(errs.HasErrors(), true))
	qt.Assert(t, qt.Equals(errs.All()[0].Kind(), errors.DuplicateTypeName))
	_, ok := sc.Types["Foo"]
	qt.Assert(t, qt.Equals(ok, true))
}
