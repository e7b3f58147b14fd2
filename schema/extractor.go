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

package schema

import (
	"regexp"
	"strconv"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/language"

	"eure.sh/eure/cst"
	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/internal"
	"eure.sh/eure/token"
)

// Extract walks doc, a Document built from a schema source file, and
// pattern-matches its well-known extensions into a Schema (spec.md §4.7).
// imports maps an alias name (as used in a $import table) to an
// already-extracted Schema; resolving the alias to a source file is the
// host's job, not this package's (spec.md §5 keeps file I/O out of the
// core pipeline).
func Extract(store *cst.Store, doc *document.Document, imports map[string]*Schema) (*Schema, *errors.List) {
	errs := &errors.List{}
	ex := &extractor{store: store, doc: doc, errs: errs, imports: imports}
	root := doc.Node(doc.Root())

	sc := &Schema{
		Types:    map[string]Type{},
		ExtTypes: map[string]Type{},
		Imports:  map[string]*Schema{},
	}

	if id, ok := root.Extensions["import"]; ok {
		ex.extractImports(id, sc)
	}
	if id, ok := root.Extensions["export"]; ok {
		ex.extractExports(id, sc)
	}
	if id, ok := root.Extensions["types"]; ok {
		ex.extractTypesTable(id, sc, sc.Types, &sc.TypeOrder)
	}
	if id, ok := root.Extensions["ext-type"]; ok {
		var order []string
		ex.extractTypesTable(id, sc, sc.ExtTypes, &order)
	}
	if id, ok := root.Extensions["root-type"]; ok {
		sc.Root = ex.typeExpr(id)
	} else {
		sc.Root = Type{Kind: KAny}
	}

	errs.Sort()
	return sc, errs
}

type extractor struct {
	store   *cst.Store
	doc     *document.Document
	errs    *errors.List
	imports map[string]*Schema
}

func (ex *extractor) span(id document.DocNodeId) token.Span {
	h := ex.doc.Node(id).CstHandle
	if h == cst.InvalidNodeId {
		return token.Span{}
	}
	return ex.store.Span(h)
}

func (ex *extractor) errAt(id document.DocNodeId, format string, args ...interface{}) {
	ex.errs.Addf(errors.MalformedTypeExpression, ex.span(id), format, args...)
}

func (ex *extractor) errKindAt(kind errors.Kind, id document.DocNodeId, format string, args ...interface{}) {
	ex.errs.Addf(kind, ex.span(id), format, args...)
}

// extractImports resolves a $import table ({alias = "schema-name", ...})
// against the caller-supplied imports, then bundles each imported schema's
// exported types under alias__name (spec.md §4.7).
func (ex *extractor) extractImports(id document.DocNodeId, sc *Schema) {
	n := ex.doc.Node(id)
	if n.Kind != document.ContentMap {
		ex.errAt(id, "$import expects a map of alias to schema name")
		return
	}
	for _, e := range n.Entries() {
		alias := segmentName(e.Key)
		if alias == "" {
			ex.errAt(e.Node, "$import alias must be an identifier or string")
			continue
		}
		vn := ex.doc.Node(e.Node)
		if vn.Kind != document.ContentString {
			ex.errAt(e.Node, "$import value must name a schema")
			continue
		}
		imported, ok := ex.imports[vn.Text]
		if !ok {
			ex.errKindAt(errors.UnknownImportAlias, e.Node, "unknown import %q", vn.Text)
			continue
		}
		sc.Imports[alias] = imported
		for _, name := range imported.Exports {
			t, ok := imported.Types[name]
			if !ok {
				continue
			}
			sc.Types[alias+"__"+name] = t
		}
	}
}

func (ex *extractor) extractExports(id document.DocNodeId, sc *Schema) {
	n := ex.doc.Node(id)
	for _, c := range n.Elements() {
		cn := ex.doc.Node(c)
		if cn.Kind == document.ContentString {
			sc.Exports = append(sc.Exports, cn.Text)
		}
	}
}

// extractTypesTable reads a $types or $ext-type table (a map of name to
// type expression) into dst, recording insertion order in order.
func (ex *extractor) extractTypesTable(id document.DocNodeId, sc *Schema, dst map[string]Type, order *[]string) {
	n := ex.doc.Node(id)
	if n.Kind != document.ContentMap {
		ex.errAt(id, "expected a map of name to type expression")
		return
	}
	for _, e := range n.Entries() {
		name := segmentName(e.Key)
		if name == "" {
			ex.errAt(e.Node, "type name must be an identifier or string")
			continue
		}
		if _, dup := dst[name]; dup {
			ex.errKindAt(errors.DuplicateTypeName, e.Node, "duplicate type name %q", name)
			continue
		}
		dst[name] = ex.typeExpr(e.Node)
		*order = append(*order, name)
	}
}

// ParseTypeExpr interprets a single document node as a type expression
// using the same rules Extract applies to $root-type/$types entries. The
// validator uses this to parse a $cascade-type extension's value
// (spec.md §4.8.3) without duplicating the type-expression grammar.
func ParseTypeExpr(store *cst.Store, doc *document.Document, id document.DocNodeId, imports map[string]*Schema) (Type, *errors.List) {
	errs := &errors.List{}
	ex := &extractor{store: store, doc: doc, errs: errs, imports: imports}
	t := ex.typeExpr(id)
	errs.Sort()
	return t, errs
}

// typeExpr interprets id as a type expression (spec.md §4.7): a base shape
// dispatched from its primary content (a path shorthand, a bracket/paren
// literal, or a record/union-shaped map), refined by whatever well-known
// `$`-extensions the same node also carries.
func (ex *extractor) typeExpr(id document.DocNodeId) Type {
	n := ex.doc.Node(id)
	t := ex.baseTypeExpr(id, n)
	ex.applyRefinements(id, n, &t)
	return t
}

func (ex *extractor) baseTypeExpr(id document.DocNodeId, n *document.Node) Type {
	switch n.Kind {
	case document.ContentPath:
		return ex.typeExprFromPath(id, n)
	case document.ContentArray:
		elems := n.Elements()
		if len(elems) != 1 {
			ex.errAt(id, "array type shorthand [.T] expects exactly one element type")
			return Type{Kind: KAny}
		}
		item := ex.typeExpr(elems[0])
		return Type{Kind: KArray, Item: &item}
	case document.ContentTuple:
		t := Type{Kind: KTuple}
		for _, e := range n.Elements() {
			t.Elements = append(t.Elements, ex.typeExpr(e))
		}
		return t
	case document.ContentMap:
		return ex.recordOrUnion(id, n)
	case document.ContentHole:
		return Type{Kind: KAny}
	default:
		v := ex.doc.ValueAt(id)
		return Type{Kind: KLiteral, Literal: v}
	}
}

// typeExprFromPath interprets a `.foo.bar`-shaped value: either a
// primitive-type shorthand (`.string`, `.integer`, ...) or a `.$types.Name`
// reference into the enclosing schema's type table.
func (ex *extractor) typeExprFromPath(id document.DocNodeId, n *document.Node) Type {
	segs := n.Path
	if len(segs) == 1 && segs[0].Kind == document.SegIdent {
		if t, ok := primitiveShorthand(segs[0].Name); ok {
			return t
		}
	}
	if len(segs) >= 2 && segs[0].Kind == document.SegExtension && segs[0].Name == "types" {
		names := make([]string, 0, len(segs)-1)
		for _, s := range segs[1:] {
			if s.Kind != document.SegIdent {
				ex.errAt(id, "malformed .$types reference")
				return Type{Kind: KAny}
			}
			names = append(names, s.Name)
		}
		return Type{Kind: KRef, RefPath: names}
	}
	ex.errAt(id, "unrecognized type-expression path")
	return Type{Kind: KAny}
}

func primitiveShorthand(name string) (Type, bool) {
	switch name {
	case "string":
		return Type{Kind: KText}, true
	case "integer":
		return Type{Kind: KInteger}, true
	case "float":
		return Type{Kind: KFloat}, true
	case "boolean":
		return Type{Kind: KBoolean}, true
	case "null":
		return Type{Kind: KNull}, true
	case "any":
		return Type{Kind: KAny}, true
	case "path":
		return Type{Kind: KPath}, true
	}
	return Type{}, false
}

// recordOrUnion distinguishes `{ $variant = .union, $union { ... } }` from
// an ordinary inline record (spec.md §4.7's union shorthand).
func (ex *extractor) recordOrUnion(id document.DocNodeId, n *document.Node) Type {
	if variantExt, ok := n.Extensions["variant"]; ok {
		vn := ex.doc.Node(variantExt)
		if vn.Kind == document.ContentPath && len(vn.Path) == 1 && vn.Path[0].Kind == document.SegIdent && vn.Path[0].Name == "union" {
			return ex.unionType(id, n)
		}
	}
	return ex.recordType(id, n)
}

func (ex *extractor) unionType(id document.DocNodeId, n *document.Node) Type {
	t := Type{Kind: KUnion, Variants: map[string]Type{}, Repr: ReprExternal}
	unionExt, ok := n.Extensions["union"]
	if !ok {
		ex.errAt(id, "union type missing $union variants table")
		return t
	}
	un := ex.doc.Node(unionExt)
	if un.Kind != document.ContentMap {
		ex.errAt(unionExt, "$union expects a map of variant name to type expression")
		return t
	}
	for _, e := range un.Entries() {
		name := segmentName(e.Key)
		if name == "" {
			ex.errAt(e.Node, "variant name must be an identifier or string")
			continue
		}
		vt := ex.typeExpr(e.Node)
		t.Variants[name] = vt
		t.VariantOrder = append(t.VariantOrder, name)
	}
	if reprExt, ok := n.Extensions["variant-repr"]; ok {
		ex.applyVariantRepr(reprExt, &t)
	}
	if prioExt, ok := n.Extensions["priority"]; ok {
		pn := ex.doc.Node(prioExt)
		for _, c := range pn.Elements() {
			if s := ex.stringAt(c); s != "" {
				t.Priority = append(t.Priority, s)
			}
		}
	}
	return t
}

func (ex *extractor) applyVariantRepr(id document.DocNodeId, t *Type) {
	n := ex.doc.Node(id)
	switch n.Kind {
	case document.ContentString:
		switch n.Text {
		case "external":
			t.Repr = ReprExternal
		case "untagged":
			t.Repr = ReprUntagged
		default:
			ex.errAt(id, "unrecognized $variant-repr %q", n.Text)
		}
	case document.ContentTuple, document.ContentArray:
		elems := n.Elements()
		if len(elems) == 0 {
			ex.errAt(id, "malformed $variant-repr")
			return
		}
		kind := ex.stringAt(elems[0])
		switch kind {
		case "internal":
			if len(elems) < 2 {
				ex.errAt(id, "$variant-repr internal(tag) requires a tag field name")
				return
			}
			t.Repr = ReprInternal
			t.ReprTag = ex.stringAt(elems[1])
		case "adjacent":
			if len(elems) < 3 {
				ex.errAt(id, "$variant-repr adjacent(tag, content) requires two field names")
				return
			}
			t.Repr = ReprAdjacent
			t.ReprTag = ex.stringAt(elems[1])
			t.ReprContent = ex.stringAt(elems[2])
		default:
			ex.errAt(id, "unrecognized $variant-repr kind %q", kind)
		}
	default:
		ex.errAt(id, "malformed $variant-repr")
	}
}

func (ex *extractor) recordType(id document.DocNodeId, n *document.Node) Type {
	t := Type{Kind: KRecord, Fields: map[string]FieldSpec{}}
	if _, ok := n.Extensions["open"]; ok {
		t.UnknownFieldsPolicy = UnknownFieldsAllow
	}
	for _, e := range n.Entries() {
		name := segmentName(e.Key)
		if name == "" {
			ex.errAt(e.Node, "record field key must be an identifier or string")
			continue
		}
		fn := ex.doc.Node(e.Node)
		fs := FieldSpec{Type: ex.typeExpr(e.Node)}
		if _, ok := fn.Extensions["optional"]; ok {
			fs.Optional = true
		}
		if defID, ok := fn.Extensions["default"]; ok {
			fs.Default = ex.doc.ValueAt(defID)
		}
		if descID, ok := fn.Extensions["description"]; ok {
			fs.Description = ex.stringAt(descID)
		}
		if _, ok := fn.Extensions["deprecated"]; ok {
			fs.Deprecated = true
		}
		if exID, ok := fn.Extensions["examples"]; ok {
			exNode := ex.doc.Node(exID)
			for _, c := range exNode.Elements() {
				fs.Examples = append(fs.Examples, ex.doc.ValueAt(c))
			}
		}
		if styleID, ok := fn.Extensions["binding-style"]; ok {
			fs.BindingStyle = ex.stringAt(styleID)
		}
		t.Fields[name] = fs
		t.FieldOrder = append(t.FieldOrder, name)
	}
	return t
}

// applyRefinements layers the scalar/collection constraint extensions
// (spec.md §4.7's `$array`, `$optional` excluded — that one is a field
// property, handled in recordType — `$length`, `$range`, `$pattern`,
// `$unique`, `$min-items`, `$max-items`, `$contains`, `$literal`, plus
// `$lang` for Text) onto a base Type, in the order that lets a later
// extension see the Kind an earlier one established.
func (ex *extractor) applyRefinements(id document.DocNodeId, n *document.Node, t *Type) {
	if arrID, ok := n.Extensions["array"]; ok {
		item := ex.typeExpr(arrID)
		*t = Type{Kind: KArray, Item: &item}
	}
	if litID, ok := n.Extensions["literal"]; ok {
		*t = Type{Kind: KLiteral, Literal: ex.doc.ValueAt(litID)}
		return
	}
	if langID, ok := n.Extensions["lang"]; ok && t.Kind == KText {
		if s := ex.stringAt(langID); s != "" {
			if tag, err := language.Parse(s); err == nil {
				t.Lang = &tag
			} else {
				ex.errAt(langID, "invalid BCP 47 language tag %q: %v", s, err)
			}
		}
	}
	if lenID, ok := n.Extensions["length"]; ok {
		min, max := ex.lengthBounds(lenID)
		switch t.Kind {
		case KText:
			t.MinLen, t.MaxLen = min, max
		case KPath:
			t.MinPathLen, t.MaxPathLen = min, max
		case KArray:
			t.MinItems, t.MaxItems = min, max
		case KMap:
			t.MinSize, t.MaxSize = min, max
		default:
			ex.errAt(lenID, "$length is not applicable to a %s type", t.Kind)
		}
	}
	if rangeID, ok := n.Extensions["range"]; ok {
		if t.Kind != KInteger && t.Kind != KFloat {
			ex.errAt(rangeID, "$range is not applicable to a %s type", t.Kind)
		} else {
			t.Range = ex.rangeBounds(rangeID)
		}
	}
	if moID, ok := n.Extensions["multiple-of"]; ok {
		t.MultipleOf = ex.decimalAt(moID)
	}
	if patID, ok := n.Extensions["pattern"]; ok {
		if t.Kind != KText {
			ex.errAt(patID, "$pattern is not applicable to a %s type", t.Kind)
		} else if s := ex.stringAt(patID); s != "" {
			t.PatternSrc = s
			re, err := regexp.Compile(s)
			if err != nil {
				ex.errAt(patID, "invalid $pattern regular expression: %v", err)
			} else {
				t.Pattern = re
			}
		}
	}
	if _, ok := n.Extensions["unique"]; ok {
		t.Unique = true
	}
	if minID, ok := n.Extensions["min-items"]; ok {
		t.MinItems = ex.intAt(minID)
	}
	if maxID, ok := n.Extensions["max-items"]; ok {
		t.MaxItems = ex.intAt(maxID)
	}
	if containsID, ok := n.Extensions["contains"]; ok {
		if t.Kind != KArray {
			ex.errAt(containsID, "$contains is not applicable to a %s type", t.Kind)
		} else {
			ct := ex.typeExpr(containsID)
			t.Contains = &ct
		}
	}
	if constID, ok := n.Extensions["const"]; ok {
		t.Const = ex.doc.ValueAt(constID)
	}
	if enumID, ok := n.Extensions["enum"]; ok {
		en := ex.doc.Node(enumID)
		for _, c := range en.Elements() {
			t.Enum = append(t.Enum, ex.doc.ValueAt(c))
		}
	}
	if swID, ok := n.Extensions["starts-with"]; ok {
		if t.Kind != KPath {
			ex.errAt(swID, "$starts-with is not applicable to a %s type", t.Kind)
		} else {
			sw := ex.doc.Node(swID)
			if sw.Kind != document.ContentPath {
				ex.errAt(swID, "$starts-with expects a path value")
			} else {
				t.StartsWith = sw.Path
			}
		}
	}
}

func (ex *extractor) lengthBounds(id document.DocNodeId) (*int, *int) {
	n := ex.doc.Node(id)
	switch n.Kind {
	case document.ContentInteger:
		v := ex.intAt(id)
		return v, v
	case document.ContentTuple, document.ContentArray:
		elems := n.Elements()
		if len(elems) != 2 {
			ex.errAt(id, "$length range expects exactly two elements [min, max]")
			return nil, nil
		}
		return ex.intOrHole(elems[0]), ex.intOrHole(elems[1])
	}
	ex.errAt(id, "malformed $length")
	return nil, nil
}

func (ex *extractor) rangeBounds(id document.DocNodeId) *Range {
	n := ex.doc.Node(id)
	elems := n.Elements()
	if (n.Kind != document.ContentTuple && n.Kind != document.ContentArray) || len(elems) != 2 {
		ex.errAt(id, "$range expects exactly two elements [min, max]")
		return nil
	}
	r := &Range{}
	if ex.doc.Node(elems[0]).Kind != document.ContentHole {
		r.Min = ex.decimalAt(elems[0])
	}
	if ex.doc.Node(elems[1]).Kind != document.ContentHole {
		r.Max = ex.decimalAt(elems[1])
	}
	return r
}

func (ex *extractor) intOrHole(id document.DocNodeId) *int {
	if ex.doc.Node(id).Kind == document.ContentHole {
		return nil
	}
	return ex.intAt(id)
}

func (ex *extractor) intAt(id document.DocNodeId) *int {
	n := ex.doc.Node(id)
	if n.Kind != document.ContentInteger {
		ex.errAt(id, "expected an integer")
		return nil
	}
	i64, err := n.Integer.Int64()
	if err != nil {
		ex.errAt(id, "integer out of range: %v", err)
		return nil
	}
	v := int(i64)
	return &v
}

func (ex *extractor) decimalAt(id document.DocNodeId) *internal.Decimal {
	n := ex.doc.Node(id)
	switch n.Kind {
	case document.ContentInteger:
		v := n.Integer
		return &v
	case document.ContentFloat:
		d, _, err := apd.NewFromString(strconv.FormatFloat(n.Float, 'g', -1, 64))
		if err != nil {
			ex.errAt(id, "malformed number: %v", err)
			return nil
		}
		return d
	}
	ex.errAt(id, "expected a number")
	return nil
}

func (ex *extractor) stringAt(id document.DocNodeId) string {
	n := ex.doc.Node(id)
	if n.Kind != document.ContentString {
		ex.errAt(id, "expected a string")
		return ""
	}
	return n.Text
}

func segmentName(s document.Segment) string {
	switch s.Kind {
	case document.SegIdent:
		return s.Name
	case document.SegString:
		return s.Str
	default:
		return ""
	}
}
