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

package validate_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"eure.sh/eure/cst"
	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/parser"
	"eure.sh/eure/schema"
	"eure.sh/eure/validate"
)

func mustParse(t *testing.T, src string) (*cst.Store, *document.Document) {
	t.Helper()
	store, perrs := parser.Parse("doc.eure", []byte(src))
	qt.Assert(t, qt.Equals(perrs.HasErrors(), false), qt.Commentf("parse errors: %v", perrs))
	doc, berrs := document.Build(store)
	qt.Assert(t, qt.Equals(berrs.HasErrors(), false), qt.Commentf("build errors: %v", berrs))
	return store, doc
}

func mustExtract(t *testing.T, src string) *schema.Schema {
	t.Helper()
	store, doc := mustParse(t, src)
	sc, errs := schema.Extract(store, doc, nil)
	qt.Assert(t, qt.Equals(errs.HasErrors(), false), qt.Commentf("extraction errors: %v", errs))
	return sc
}

func validateDoc(t *testing.T, schemaSrc, docSrc string) *validate.Result {
	t.Helper()
	sc := mustExtract(t, schemaSrc)
	store, doc := mustParse(t, docSrc)
	return validate.Validate(store, doc, sc)
}

func TestValidateIntegerRange(t *testing.T) {
	schemaSrc := "$root-type = .integer\n$root-type.$range = [0, 100]\n"
	res := validateDoc(t, schemaSrc, "= 42\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))

	res = validateDoc(t, schemaSrc, "= 200\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
	qt.Assert(t, qt.Equals(res.Diagnostics.All()[0].Kind(), errors.ConstraintViolated))
}

func TestValidateTextLengthAndPattern(t *testing.T) {
	schemaSrc := "$root-type = .string\n$root-type.$length = [1, 5]\n$root-type.$pattern = \"^[a-z]+$\"\n"
	res := validateDoc(t, schemaSrc, "= \"abc\"\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))

	res = validateDoc(t, schemaSrc, "= \"ABCDEFG\"\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
}

func TestValidateConstEnum(t *testing.T) {
	schemaSrc := "$root-type = .integer\n$root-type.$enum = [1, 2, 3]\n"
	res := validateDoc(t, schemaSrc, "= 2\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))

	res = validateDoc(t, schemaSrc, "= 9\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
}

func TestValidateArrayConstraints(t *testing.T) {
	schemaSrc := "$root-type = [.integer]\n$root-type.$unique = true\n$root-type.$min-items = 2\n"
	res := validateDoc(t, schemaSrc, "= [1, 2, 3]\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))

	res = validateDoc(t, schemaSrc, "= [1, 1]\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))

	res = validateDoc(t, schemaSrc, "= [1]\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
}

func TestValidateRecordRequiredAndOptional(t *testing.T) {
	schemaSrc := "$root-type {\n  name = .string\n  nickname = .string\n  nickname.$optional = true\n}\n"
	res := validateDoc(t, schemaSrc, "name = \"joe\"\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))

	res = validateDoc(t, schemaSrc, "nickname = \"joey\"\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
	found := false
	for _, d := range res.Diagnostics.All() {
		if d.Kind() == errors.RequiredFieldMissing {
			found = true
		}
	}
	qt.Assert(t, qt.Equals(found, true))
}

func TestValidateRecordUnknownField(t *testing.T) {
	schemaSrc := "$root-type {\n  name = .string\n}\n"
	res := validateDoc(t, schemaSrc, "name = \"joe\"\nextra = 1\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
	qt.Assert(t, qt.Equals(res.Diagnostics.All()[0].Kind(), errors.UnknownField))
}

func TestValidateUnionExternalByVariant(t *testing.T) {
	schemaSrc := "$root-type {\n  $variant = .union\n  $union {\n    circle { radius = .integer }\n    square { side = .integer }\n  }\n}\n"
	res := validateDoc(t, schemaSrc, "circle { radius = 3 }\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))
}

func TestValidateUnionUnknownVariant(t *testing.T) {
	schemaSrc := "$root-type {\n  $variant = .union\n  $union {\n    circle { radius = .integer }\n  }\n}\n"
	res := validateDoc(t, schemaSrc, "triangle { base = 3 }\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
}

func TestValidateUnionInternalRepr(t *testing.T) {
	schemaSrc := "$root-type {\n  $variant = .union\n  $variant-repr = (\"internal\", \"kind\")\n  $union {\n    circle { radius = .integer }\n  }\n}\n"
	res := validateDoc(t, schemaSrc, "kind = \"circle\"\nradius = 3\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))
}

func TestValidateUnionAdjacentRepr(t *testing.T) {
	schemaSrc := "$root-type {\n  $variant = .union\n" +
		"  $variant-repr = (\"adjacent\", \"kind\", \"body\")\n" +
		"  $union {\n    circle { radius = .integer }\n  }\n}\n"
	res := validateDoc(t, schemaSrc, "kind = \"circle\"\nbody { radius = 3 }\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))
}

func TestValidateUnionUntaggedAmbiguous(t *testing.T) {
	schemaSrc := "$root-type {\n  $variant = .union\n  $variant-repr = \"untagged\"\n" +
		"  $union {\n    a = .integer\n    b = .integer\n  }\n}\n"
	res := validateDoc(t, schemaSrc, "= 3\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
	qt.Assert(t, qt.Equals(res.Diagnostics.All()[0].Kind(), errors.AmbiguousUnion))
}

func TestValidateUnionUntaggedPriorityResolves(t *testing.T) {
	schemaSrc := "$root-type {\n  $variant = .union\n  $variant-repr = \"untagged\"\n" +
		"  $priority = [\"a\", \"b\"]\n" +
		"  $union {\n    a = .integer\n    b = .integer\n  }\n}\n"
	res := validateDoc(t, schemaSrc, "= 3\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))
}

func TestValidateRef(t *testing.T) {
	schemaSrc := "$types.Name = .string\n$root-type = .$types.Name\n"
	res := validateDoc(t, schemaSrc, "= \"joe\"\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))

	res = validateDoc(t, schemaSrc, "= 3\n")
	qt.Assert(t, qt.Equals(res.IsValid, false))
}

func TestValidateHoleIsIncompleteNotInvalid(t *testing.T) {
	schemaSrc := "$root-type {\n  name = .string\n}\n"
	res := validateDoc(t, schemaSrc, "name = !\n")
	qt.Assert(t, qt.Equals(res.IsValid, true))
	qt.Assert(t, qt.Equals(res.IsComplete, false))
}

func TestValidateUnknownExtensionWarns(t *testing.T) {
	schemaSrc := "$root-type = .string\n"
	res := validateDoc(t, schemaSrc, "= \"x\"\n$made-up = 1\n")
	found := false
	for _, d := range res.Diagnostics.All() {
		if d.Kind() == errors.UnknownExtension {
			found = true
		}
	}
	qt.Assert(t, qt.Equals(found, true))
	qt.Assert(t, qt.Equals(res.IsValid, true))
}
