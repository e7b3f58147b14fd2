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

package validate

import (
	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/schema"
)

// builtinExtensions names every $-extension the schema extractor itself
// recognizes (spec.md §4.7, §4.8.1, §4.8.3). checkExtensions's pass 2 falls
// back to this allowlist for a name with no ext_type entry, since a plain
// document being validated (as opposed to a schema document) carries these
// as ordinary metadata rather than schema-defined extensions.
var builtinExtensions = map[string]bool{
	"root-type":     true,
	"types":         true,
	"ext-type":      true,
	"import":        true,
	"export":        true,
	"variant":       true,
	"variant-repr":  true,
	"priority":      true,
	"union":         true,
	"array":         true,
	"literal":       true,
	"lang":          true,
	"length":        true,
	"range":         true,
	"multiple-of":   true,
	"pattern":       true,
	"unique":        true,
	"min-items":     true,
	"max-items":     true,
	"contains":      true,
	"const":         true,
	"enum":          true,
	"optional":      true,
	"default":       true,
	"description":   true,
	"deprecated":    true,
	"examples":      true,
	"binding-style": true,
	"open":          true,
	"cascade-type":  true,
	"starts-with":   true,
	"schema":        true,
}

// checkExtensions walks every node of the document and validates its
// Extensions map against sc (spec.md §4.8.2): an extension named in
// sc.ExtTypes is checked against that type, one of the builtin names is
// accepted unconditionally, and anything else is reported as an
// UnknownExtension warning.
func (v *validator) checkExtensions(id document.DocNodeId, ambient *schema.Type, seen map[document.DocNodeId]bool) *errors.List {
	errs := &errors.List{}
	if seen[id] {
		return errs
	}
	seen[id] = true

	n := v.doc.Node(id)
	for name, extID := range n.Extensions {
		if t, ok := v.sc.ExtTypes[name]; ok {
			cerrs, _ := v.check(extID, t, []string{"$" + name}, ambient, 0)
			appendAll(errs, cerrs)
			continue
		}
		if builtinExtensions[name] {
			continue
		}
		v.errs(errs, extID, []string{"$" + name}, errors.UnknownExtension, "unknown extension %q", name)
	}

	for _, e := range n.Entries() {
		appendAll(errs, v.checkExtensions(e.Node, ambient, seen))
	}
	for _, c := range n.Elements() {
		appendAll(errs, v.checkExtensions(c, ambient, seen))
	}
	for _, extID := range n.Extensions {
		appendAll(errs, v.checkExtensions(extID, ambient, seen))
	}
	return errs
}
