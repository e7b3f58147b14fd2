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

// Package schema holds the Schema Model (spec.md §3.5) and the Extractor
// that builds one from a parsed Document (spec.md §4.7). A schema is itself
// an ordinary EURE document; this package's job is to pattern-match its
// well-known `$`-extensions into the closed Type sum a validator can walk
// without re-deriving any of that structure at check time.
package schema

import (
	"regexp"

	"golang.org/x/text/language"

	"eure.sh/eure/document"
	"eure.sh/eure/internal"
)

// Kind tags the variant currently held by a Type.
type Kind int

const (
	KText Kind = iota
	KInteger
	KFloat
	KBoolean
	KNull
	KAny
	KPath
	KArray
	KMap
	KTuple
	KRecord
	KUnion
	KLiteral
	KRef
)

func (k Kind) String() string {
	switch k {
	case KText:
		return "Text"
	case KInteger:
		return "Integer"
	case KFloat:
		return "Float"
	case KBoolean:
		return "Boolean"
	case KNull:
		return "Null"
	case KAny:
		return "Any"
	case KPath:
		return "Path"
	case KArray:
		return "Array"
	case KMap:
		return "Map"
	case KTuple:
		return "Tuple"
	case KRecord:
		return "Record"
	case KUnion:
		return "Union"
	case KLiteral:
		return "Literal"
	case KRef:
		return "Ref"
	default:
		return "Kind(?)"
	}
}

// Range bounds a numeric Type (Integer or Float). A nil Min or Max side is
// unbounded on that side.
type Range struct {
	Min, Max             *internal.Decimal
	MinExclusive         bool
	MaxExclusive         bool
}

// UnknownFieldsPolicy controls whether a Record rejects fields it does not
// name.
type UnknownFieldsPolicy int

const (
	UnknownFieldsReject UnknownFieldsPolicy = iota
	UnknownFieldsAllow
)

// VariantRepr selects how a Union's variant is recovered from a document
// value (spec.md §4.8.1).
type VariantRepr int

const (
	ReprExternal VariantRepr = iota
	ReprInternal
	ReprAdjacent
	ReprUntagged
)

func (r VariantRepr) String() string {
	switch r {
	case ReprExternal:
		return "external"
	case ReprInternal:
		return "internal"
	case ReprAdjacent:
		return "adjacent"
	case ReprUntagged:
		return "untagged"
	default:
		return "VariantRepr(?)"
	}
}

// Type is the closed sum of shapes a schema can require of a Document node
// (spec.md §3.5). Only the fields relevant to Kind are meaningful.
type Type struct {
	Kind Kind

	// Text
	Lang       *language.Tag
	MinLen     *int
	MaxLen     *int
	Pattern    *regexp.Regexp
	PatternSrc string

	// Integer, Float: Range bounds both numeric kinds as internal.Decimal
	// (a Float is compared through Decimal.Float64); MultipleOf is checked
	// for Integer only.
	Range      *Range
	MultipleOf *internal.Decimal

	// Boolean
	ConstBool *bool

	// Text/Integer/Float/Boolean: const and enum, shared across the
	// scalar kinds via the projected Value representation so a single
	// field pair covers every literal-constrained leaf.
	Const *document.Value
	Enum  []*document.Value

	// Path
	MinPathLen *int
	MaxPathLen *int
	StartsWith []document.Segment

	// Array
	Item     *Type
	MinItems *int
	MaxItems *int
	Unique   bool
	Contains *Type

	// Map
	MapKey   *Type
	MapValue *Type
	MinSize  *int
	MaxSize  *int

	// Tuple
	Elements []Type

	// Record
	Fields               map[string]FieldSpec
	FieldOrder           []string
	UnknownFieldsPolicy  UnknownFieldsPolicy

	// Union
	Variants     map[string]Type
	VariantOrder []string
	Repr         VariantRepr
	ReprTag      string
	ReprContent  string
	Priority     []string

	// Literal
	Literal *document.Value

	// Ref: a dotted $types reference, e.g. ["Person"] for .$types.Person
	// or ["alias__Person"] for a bundled import; ["alias", "Person"]
	// (.$types.alias.Person) is looked up under the bundled alias__Person
	// name (spec.md §4.7).
	RefPath []string
}

// FieldSpec describes one field of a Record type (spec.md §3.5).
type FieldSpec struct {
	Type        Type
	Optional    bool
	Default     *document.Value
	Description string
	Deprecated  bool
	Examples    []*document.Value
	BindingStyle string
}

// Schema is the top-level result of extraction (spec.md §3.5): a root
// Type plus the named-type, extension-type, and import/export tables a
// Ref or $ext-type validation lookup resolves against.
type Schema struct {
	Root       Type
	Types      map[string]Type
	TypeOrder  []string
	ExtTypes   map[string]Type
	Imports    map[string]*Schema
	Exports    []string
}

// Lookup resolves a Ref's RefPath against Types: a single name as is, a
// longer path joined with "__" into the bundled alias__type name. It does
// not recurse into Ref chains: a Ref whose resolved Type is itself a Ref is left to the caller
// (the validator) to follow, so Lookup never risks looping on a cyclic
// definition by itself.
func (s *Schema) Lookup(refPath []string) (Type, bool) {
	if len(refPath) == 0 {
		return Type{}, false
	}
	name := refPath[0]
	if len(refPath) == 1 {
		t, ok := s.Types[name]
		return t, ok
	}
	// A dotted path of length > 1 addresses an imported schema's exported
	// type by its bundled alias__type name, the entry extractImports adds
	// to Types (spec.md §4.7's alias.type -> alias__type rewrite).
	t, ok := s.Types[joinRefPath(refPath)]
	return t, ok
}

func joinRefPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "__" + p
	}
	return out
}
