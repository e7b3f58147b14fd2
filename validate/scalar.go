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
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"golang.org/x/text/language"

	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/internal"
	"eure.sh/eure/schema"
)

func (v *validator) checkInteger(id document.DocNodeId, n *document.Node, t schema.Type, path []string, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentInteger {
		v.mismatch(errs, id, path, "integer")
		return errs, depth
	}
	if t.Range != nil {
		if t.Range.Min != nil {
			c := n.Integer.Cmp(t.Range.Min)
			if c < 0 || (c == 0 && t.Range.MinExclusive) {
				v.constraint(errs, id, path, "integer %s below minimum %s", n.Integer.String(), t.Range.Min.String())
			}
		}
		if t.Range.Max != nil {
			c := n.Integer.Cmp(t.Range.Max)
			if c > 0 || (c == 0 && t.Range.MaxExclusive) {
				v.constraint(errs, id, path, "integer %s above maximum %s", n.Integer.String(), t.Range.Max.String())
			}
		}
	}
	if t.MultipleOf != nil {
		var rem apd.Decimal
		if _, err := internal.DecimalContext.Rem(&rem, &n.Integer, t.MultipleOf); err == nil && rem.Sign() != 0 {
			v.constraint(errs, id, path, "integer %s is not a multiple of %s", n.Integer.String(), t.MultipleOf.String())
		}
	}
	v.checkConstEnum(errs, id, n, t, path)
	return errs, depth
}

func (v *validator) checkFloat(id document.DocNodeId, n *document.Node, t schema.Type, path []string, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentFloat {
		v.mismatch(errs, id, path, "float")
		return errs, depth
	}
	if t.Range != nil {
		if t.Range.Min != nil {
			min, _ := t.Range.Min.Float64()
			if n.Float < min || (n.Float == min && t.Range.MinExclusive) {
				v.constraint(errs, id, path, "float %v below minimum %v", n.Float, min)
			}
		}
		if t.Range.Max != nil {
			max, _ := t.Range.Max.Float64()
			if n.Float > max || (n.Float == max && t.Range.MaxExclusive) {
				v.constraint(errs, id, path, "float %v above maximum %v", n.Float, max)
			}
		}
	}
	v.checkConstEnum(errs, id, n, t, path)
	return errs, depth
}

func (v *validator) checkText(id document.DocNodeId, n *document.Node, t schema.Type, path []string, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentString && n.Kind != document.ContentCodeBlock {
		v.mismatch(errs, id, path, "string")
		return errs, depth
	}
	if t.Lang != nil && n.StringForm == document.StringTagged && n.Lang != "" {
		tag, err := language.Parse(n.Lang)
		if err != nil || tag.String() != t.Lang.String() {
			v.constraint(errs, id, path, "tagged language %q does not match expected %s", n.Lang, t.Lang.String())
		}
	}
	textLen := utf8.RuneCountInString(n.Text)
	if t.MinLen != nil && textLen < *t.MinLen {
		v.constraint(errs, id, path, "string length %d below minimum %d", textLen, *t.MinLen)
	}
	if t.MaxLen != nil && textLen > *t.MaxLen {
		v.constraint(errs, id, path, "string length %d above maximum %d", textLen, *t.MaxLen)
	}
	if t.Pattern != nil && !t.Pattern.MatchString(n.Text) {
		v.constraint(errs, id, path, "string does not match pattern %q", t.PatternSrc)
	}
	v.checkConstEnum(errs, id, n, t, path)
	return errs, depth
}

func (v *validator) checkPath(id document.DocNodeId, n *document.Node, t schema.Type, path []string, depth int) (*errors.List, int) {
	errs := &errors.List{}
	if n.Kind != document.ContentPath {
		v.mismatch(errs, id, path, "path")
		return errs, depth
	}
	l := len(n.Path)
	if t.MinPathLen != nil && l < *t.MinPathLen {
		v.constraint(errs, id, path, "path length %d below minimum %d", l, *t.MinPathLen)
	}
	if t.MaxPathLen != nil && l > *t.MaxPathLen {
		v.constraint(errs, id, path, "path length %d above maximum %d", l, *t.MaxPathLen)
	}
	if len(t.StartsWith) > 0 {
		if l < len(t.StartsWith) || !segmentsEqual(n.Path[:len(t.StartsWith)], t.StartsWith) {
			v.constraint(errs, id, path, "path does not start with the expected prefix")
		}
	}
	return errs, depth
}

// checkConstEnum applies the const/enum constraints shared by every scalar
// Type (spec.md §4.8's table: Integer, Float, Text all list "const, enum").
func (v *validator) checkConstEnum(errs *errors.List, id document.DocNodeId, n *document.Node, t schema.Type, path []string) {
	if t.Const == nil && len(t.Enum) == 0 {
		return
	}
	val := v.doc.ValueAt(id)
	if t.Const != nil && !valuesEqual(val, t.Const) {
		v.constraint(errs, id, path, "value does not equal the expected const")
	}
	if len(t.Enum) > 0 {
		ok := false
		for _, e := range t.Enum {
			if valuesEqual(val, e) {
				ok = true
				break
			}
		}
		if !ok {
			v.constraint(errs, id, path, "value is not one of the enumerated values")
		}
	}
}
