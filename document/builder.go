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

package document

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/cockroachdb/apd/v3"

	"eure.sh/eure/cst"
	"eure.sh/eure/cstutil"
	"eure.sh/eure/errors"
	"eure.sh/eure/internal"
)

// maxExtensionDepth bounds how many Extension segments a single key path
// may cross before the builder gives up, matching the original
// implementation's recursion guard for dotted $variant/extension paths
// (SPEC_FULL.md §6) rather than overflowing the Go call stack.
const maxExtensionDepth = 32

// Build interprets a fully parsed CST into a Document (spec.md §4.5): it
// walks the tree with typed cstutil handles/views rather than through the
// generic cstutil.Visitor, since the interpretation here needs tight,
// rule-specific control flow (cursor movement, extension-depth tracking,
// variant bookkeeping) that default descent doesn't fit.
func Build(store *cst.Store) (*Document, *errors.List) {
	errs := &errors.List{}
	doc := newDocument()
	b := &builder{store: store, doc: doc, errs: errs}
	b.buildDocument(cstutil.DocumentHandle(store.Root()), doc.root, 0)
	errs.Sort()
	return doc, errs
}

type builder struct {
	store *cst.Store
	doc   *Document
	errs  *errors.List
}

func (b *builder) errAt(kind errors.Kind, id cst.NodeId, format string, args ...interface{}) {
	b.errs.Addf(kind, b.store.Span(id), format, args...)
}

func (b *builder) reportNavError(id cst.NodeId, err error) {
	if ne, ok := err.(*NavError); ok {
		b.errs.Addf(ne.Kind, b.store.Span(id), "%s", ne.Msg)
		return
	}
	b.errAt(errors.InvalidKey, id, "%v", err)
}

// buildDocument interprets `[ValueBinding] {Binding} {Section}` into
// scope, per the "Top-level Document interpretation" algorithm (spec.md
// §4.5.2): it is used both for the CST root and for a nested `{ ... }`
// binding body, which is structurally the same rule.
func (b *builder) buildDocument(h cstutil.DocumentHandle, scope DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed document")
		return
	}
	if v.ValueBinding != nil {
		b.bindValueBindingInto(*v.ValueBinding, scope, depth)
	}
	for _, binding := range v.Bindings {
		b.buildBinding(binding, scope, depth)
	}
	for _, sec := range v.Sections {
		b.buildSection(sec, scope, depth)
	}
}

func (b *builder) bindValueBindingInto(h cstutil.ValueBindingHandle, scope DocNodeId, depth int) {
	if err := b.doc.assertUnbound(scope); err != nil {
		b.errAt(errors.DuplicateBinding, h.Id(), "value binding at an already-bound node")
		return
	}
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed value binding")
		return
	}
	b.buildValueInto(v.Value, scope, depth)
}

func (b *builder) buildSection(h cstutil.SectionHandle, scope DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed section")
		return
	}
	target, host, segs, newDepth, ok := b.navigateKeys(v.Keys, scope, depth)
	if !ok {
		return
	}
	b.buildSectionBody(v.Body, target, newDepth)
	b.recordVariantIfApplicable(host, segs, target)
}

func (b *builder) buildSectionBody(h cstutil.SectionBodyHandle, scope DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed section body")
		return
	}
	if v.Nested != nil {
		b.buildDocument(*v.Nested, scope, depth)
		return
	}
	if v.ValueBinding != nil {
		b.bindValueBindingInto(*v.ValueBinding, scope, depth)
	}
	for _, binding := range v.Bindings {
		b.buildBinding(binding, scope, depth)
	}
}

func (b *builder) buildBinding(h cstutil.BindingHandle, scope DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed binding")
		return
	}
	target, host, segs, newDepth, ok := b.navigateKeys(v.Keys, scope, depth)
	if !ok {
		return
	}
	b.buildBindingRhs(v.Rhs, target, newDepth)
	b.recordVariantIfApplicable(host, segs, target)
}

func (b *builder) buildBindingRhs(h cstutil.BindingRhsHandle, target DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed binding right-hand side")
		return
	}
	switch {
	case v.Value != nil:
		if err := b.doc.assertUnbound(target); err != nil {
			b.errAt(errors.DuplicateBinding, h.Id(), "duplicate binding")
			return
		}
		b.buildValueInto(*v.Value, target, depth)
	case v.Nested != nil:
		// `key { ... }` extends target as a map; it is not itself a single
		// value binding, so no assertUnbound here (spec.md §4.5.2).
		b.buildDocument(*v.Nested, target, depth)
	case v.Text != nil:
		if err := b.doc.assertUnbound(target); err != nil {
			b.errAt(errors.DuplicateBinding, h.Id(), "duplicate binding")
			return
		}
		text := trimLeadingSpace(v.Text.Text(b.store))
		b.doc.bindString(target, StringImplicit, "", text)
		b.doc.setHandle(target, v.Text.Id())
	}
}

// navigateKeys walks Keys' segments one at a time through doc.navigate,
// per the builder primitive of the same name (spec.md §4.5.2, §4.5.1). It
// returns the final cursor, the cursor just before the last Key was
// navigated (host, used to attribute a trailing $variant extension to the
// map that hosts it rather than to the node it points at), the segments
// contributed by that last Key, and the extension-nesting depth reached.
func (b *builder) navigateKeys(h cstutil.KeysHandle, scope DocNodeId, depth int) (target, host DocNodeId, lastSegs []Segment, newDepth int, ok bool) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed key path")
		return 0, 0, nil, depth, false
	}
	cur := scope
	prev := scope
	for _, key := range v.Keys {
		prev = cur
		keyView, err := key.View(b.store)
		if err != nil {
			b.errAt(errors.InvalidKey, key.Id(), "malformed key")
			return 0, 0, nil, depth, false
		}
		seg, ok := b.keyBaseSegment(keyView.Base)
		if !ok {
			return 0, 0, nil, depth, false
		}
		if seg.Kind == SegExtension {
			depth++
			if depth > maxExtensionDepth {
				b.errAt(errors.NestedExtensionDepthExceeded, key.Id(), "extension path nests more than %d levels deep", maxExtensionDepth)
				return 0, 0, nil, depth, false
			}
		}
		next, nerr := b.doc.navigate(cur, seg)
		if nerr != nil {
			b.reportNavError(key.Id(), nerr)
			return 0, 0, nil, depth, false
		}
		cur = next
		segs := []Segment{seg}
		if keyView.Marker != nil {
			mseg, ok := b.arrayMarkerSegment(*keyView.Marker)
			if !ok {
				return 0, 0, nil, depth, false
			}
			next, nerr := b.doc.navigate(cur, mseg)
			if nerr != nil {
				b.reportNavError(key.Id(), nerr)
				return 0, 0, nil, depth, false
			}
			cur = next
			segs = append(segs, mseg)
		}
		lastSegs = segs
	}
	return cur, prev, lastSegs, depth, true
}

// recordVariantIfApplicable implements §4.5.4: an extension named
// `variant` on a map node selects a variant, recorded on the node that
// hosts the extension (not the extension's own value node).
func (b *builder) recordVariantIfApplicable(host DocNodeId, segs []Segment, valueNode DocNodeId) {
	if len(segs) != 1 || segs[0].Kind != SegExtension || segs[0].Name != "variant" {
		return
	}
	if names, ok := b.variantPathFrom(valueNode); ok {
		b.doc.setVariant(host, names)
	}
}

func (b *builder) variantPathFrom(id DocNodeId) ([]string, bool) {
	n := b.doc.Node(id)
	switch n.Kind {
	case ContentString:
		return []string{n.Text}, true
	case ContentPath:
		names := make([]string, 0, len(n.Path))
		for _, seg := range n.Path {
			if seg.Kind != SegIdent {
				return nil, false
			}
			names = append(names, seg.Name)
		}
		return names, true
	default:
		return nil, false
	}
}

func (b *builder) keyBaseSegment(kb cstutil.KeyBaseView) (Segment, bool) {
	switch {
	case kb.Ident != nil:
		return Ident(kb.Ident.Text(b.store)), true
	case kb.Extension != nil:
		return ExtensionSeg(kb.Extension.Text(b.store)), true
	case kb.String != nil:
		s, ok := b.unquote(*kb.String)
		if !ok {
			return Segment{}, false
		}
		return StringKey(s), true
	case kb.Integer != nil:
		v, ok := b.parseInteger(*kb.Integer)
		if !ok {
			return Segment{}, false
		}
		return IntegerKey(v), true
	case kb.TupleIdx != nil:
		v, ok := b.parseTupleIndex(*kb.TupleIdx)
		if !ok {
			return Segment{}, false
		}
		return TupleIndexSeg(v), true
	case kb.Tuple != nil:
		elems, ok := b.keyTupleSegments(*kb.Tuple)
		if !ok {
			return Segment{}, false
		}
		return TupleKeySeg(elems), true
	}
	return Segment{}, false
}

func (b *builder) keyTupleSegments(h cstutil.KeyTupleHandle) ([]Segment, bool) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed key tuple")
		return nil, false
	}
	segs := make([]Segment, 0, len(v.Elements))
	for _, elemKey := range v.Elements {
		keyView, err := elemKey.View(b.store)
		if err != nil {
			b.errAt(errors.InvalidKey, elemKey.Id(), "malformed key tuple element")
			return nil, false
		}
		if keyView.Marker != nil {
			b.errAt(errors.InvalidKey, elemKey.Id(), "array marker not permitted inside a key tuple")
			return nil, false
		}
		seg, ok := b.keyBaseSegment(keyView.Base)
		if !ok {
			return nil, false
		}
		segs = append(segs, seg)
	}
	return segs, true
}

func (b *builder) arrayMarkerSegment(h cstutil.ArrayMarkerHandle) (Segment, bool) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed array marker")
		return Segment{}, false
	}
	if v.Index == nil {
		return ArrayAppendSeg(), true
	}
	n, ok := b.parseUint64(*v.Index)
	if !ok {
		return Segment{}, false
	}
	return ArrayIndexSeg(n), true
}

func (b *builder) parseInteger(h cstutil.TerminalHandle) (internal.Decimal, bool) {
	txt := cleanNumeric(h.Text(b.store))
	dec, _, err := apd.NewFromString(txt)
	if err != nil {
		b.errAt(errors.TypeMismatch, h.Id(), "invalid integer literal %q", txt)
		return internal.Decimal{}, false
	}
	return *dec, true
}

func (b *builder) parseTupleIndex(h cstutil.TerminalHandle) (uint8, bool) {
	txt := cleanNumeric(h.Text(b.store))
	n, err := strconv.ParseUint(txt, 10, 8)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "tuple index %q out of range 0-255", txt)
		return 0, false
	}
	return uint8(n), true
}

func (b *builder) parseUint64(h cstutil.TerminalHandle) (uint64, bool) {
	txt := cleanNumeric(h.Text(b.store))
	n, err := strconv.ParseUint(txt, 10, 64)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "array index %q out of range", txt)
		return 0, false
	}
	return n, true
}

func (b *builder) unquote(h cstutil.TerminalHandle) (string, bool) {
	s, err := unescapeString(h.Text(b.store))
	if err != nil {
		b.errAt(errors.InvalidEscape, h.Id(), "%v", err)
		return "", false
	}
	return s, true
}

func (b *builder) buildValueInto(h cstutil.ValueHandle, target DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed value")
		return
	}
	switch {
	case v.Object != nil:
		b.buildObjectInto(*v.Object, target, depth)
	case v.Array != nil:
		b.buildArrayInto(*v.Array, target, depth)
	case v.Tuple != nil:
		b.buildTupleInto(*v.Tuple, target, depth)
	case v.Float != nil:
		b.buildFloatInto(*v.Float, target)
	case v.Integer != nil:
		b.buildIntegerInto(*v.Integer, target)
	case v.Bool != nil:
		b.doc.bindBool(target, v.Bool.Text(b.store) == "true")
		b.doc.setHandle(target, v.Bool.Id())
	case v.Null != nil:
		b.doc.bindNull(target)
		b.doc.setHandle(target, v.Null.Id())
	case v.Strings != nil:
		b.buildStringsInto(*v.Strings, target)
	case v.Hole != nil:
		b.buildHoleInto(*v.Hole, target)
	case v.Code != nil:
		b.buildCodeInto(*v.Code, target)
	case v.Path != nil:
		b.buildPathInto(*v.Path, target)
	}
}

func (b *builder) buildObjectInto(h cstutil.ObjectHandle, target DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed object")
		return
	}
	b.doc.forceMap(target)
	if v.ValueBinding != nil {
		b.bindValueBindingInto(*v.ValueBinding, target, depth)
	}
	for _, ob := range v.Bindings {
		obv, err := ob.View(b.store)
		if err != nil {
			b.errAt(errors.InvalidKey, ob.Id(), "malformed object entry")
			continue
		}
		dst, host, segs, newDepth, ok := b.navigateKeys(obv.Keys, target, depth)
		if !ok {
			continue
		}
		if err := b.doc.assertUnbound(dst); err != nil {
			b.errAt(errors.DuplicateBinding, ob.Id(), "duplicate binding")
			continue
		}
		b.buildValueInto(obv.Value, dst, newDepth)
		b.recordVariantIfApplicable(host, segs, dst)
	}
	b.doc.setHandle(target, h.Id())
}

func (b *builder) buildArrayInto(h cstutil.ArrayHandle, target DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed array")
		return
	}
	b.doc.beginArray(target)
	for _, elemH := range v.Elements {
		child := b.doc.newSlot()
		b.doc.appendElement(target, child)
		b.buildValueInto(elemH, child, depth)
	}
	b.doc.setHandle(target, h.Id())
}

func (b *builder) buildTupleInto(h cstutil.TupleHandle, target DocNodeId, depth int) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed tuple")
		return
	}
	b.doc.beginTuple(target)
	for _, elemH := range v.Elements {
		child := b.doc.newSlot()
		b.doc.appendElement(target, child)
		b.buildValueInto(elemH, child, depth)
	}
	b.doc.setHandle(target, h.Id())
}

// buildStringsInto concatenates a `String {"\\" String}` run into one
// String content node (SPEC_FULL.md §6: a supplemented feature, since
// spec.md's grammar names the production but does not spell out the
// builder's join semantics).
func (b *builder) buildStringsInto(h cstutil.StringsHandle, target DocNodeId) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed string literal")
		return
	}
	var text strings.Builder
	for _, part := range v.Parts {
		s, ok := b.unquote(part)
		if !ok {
			return
		}
		text.WriteString(s)
	}
	b.doc.bindString(target, StringPlain, "", text.String())
	b.doc.setHandle(target, h.Id())
}

func (b *builder) buildHoleInto(h cstutil.HoleHandle, target DocNodeId) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed hole")
		return
	}
	if v.Label != nil {
		b.doc.bindHole(target, v.Label.Text(b.store), true)
	} else {
		b.doc.bindHole(target, "", false)
	}
	b.doc.setHandle(target, h.Id())
}

func (b *builder) buildPathInto(h cstutil.PathHandle, target DocNodeId) {
	v, err := h.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, h.Id(), "malformed path value")
		return
	}
	keysView, err := v.Keys.View(b.store)
	if err != nil {
		b.errAt(errors.InvalidKey, v.Keys.Id(), "malformed path")
		return
	}
	var segs []Segment
	for _, key := range keysView.Keys {
		keyView, err := key.View(b.store)
		if err != nil {
			b.errAt(errors.InvalidKey, key.Id(), "malformed path segment")
			return
		}
		seg, ok := b.keyBaseSegment(keyView.Base)
		if !ok {
			return
		}
		segs = append(segs, seg)
		if keyView.Marker != nil {
			mseg, ok := b.arrayMarkerSegment(*keyView.Marker)
			if !ok {
				return
			}
			segs = append(segs, mseg)
		}
	}
	b.doc.bindPath(target, segs)
	b.doc.setHandle(target, h.Id())
}

func (b *builder) buildFloatInto(h cstutil.TerminalHandle, target DocNodeId) {
	txt := h.Text(b.store)
	switch txt {
	case "Inf":
		b.doc.bindFloat(target, math.Inf(1))
		b.doc.setHandle(target, h.Id())
		return
	case "NaN":
		b.doc.bindFloat(target, math.NaN())
		b.doc.setHandle(target, h.Id())
		return
	}
	f, err := strconv.ParseFloat(cleanNumeric(txt), 64)
	if err != nil {
		b.errAt(errors.TypeMismatch, h.Id(), "invalid float literal %q", txt)
		return
	}
	b.doc.bindFloat(target, f)
	b.doc.setHandle(target, h.Id())
}

func (b *builder) buildIntegerInto(h cstutil.TerminalHandle, target DocNodeId) {
	v, ok := b.parseInteger(h)
	if !ok {
		return
	}
	b.doc.bindInteger(target, v)
	b.doc.setHandle(target, h.Id())
}

// buildCodeInto handles the three lexical forms Value.Code can wrap:
// untagged inline code, language-tagged inline code, and a fenced code
// block. Tagged forms get their language validated as a syntactically
// well-formed identifier at build time (SPEC_FULL.md §6), since the set
// of known fence languages is a host concern this module doesn't track.
func (b *builder) buildCodeInto(h cstutil.TerminalHandle, target DocNodeId) {
	raw := h.Text(b.store)
	switch h.Kind(b.store) {
	case cst.TerminalInlineCode:
		if len(raw) < 2 || raw[0] != '`' || raw[len(raw)-1] != '`' {
			b.errAt(errors.InvalidEscape, h.Id(), "malformed inline code literal")
			return
		}
		b.doc.bindString(target, StringPlain, "", raw[1:len(raw)-1])
	case cst.TerminalTaggedInlineCode:
		lang, text, ok := splitTaggedInlineCode(raw)
		if !ok {
			b.errAt(errors.InvalidEscape, h.Id(), "malformed tagged inline code literal")
			return
		}
		if !isValidIdent(lang) {
			b.errAt(errors.TypeMismatch, h.Id(), "code language %q is not a valid identifier", lang)
		}
		b.doc.bindString(target, StringTagged, lang, text)
	case cst.TerminalCodeBlock:
		lang, text, ok := splitCodeBlock(raw)
		if !ok {
			b.errAt(errors.InvalidEscape, h.Id(), "malformed code block literal")
			return
		}
		if lang != "" && !isValidIdent(lang) {
			b.errAt(errors.TypeMismatch, h.Id(), "code block language %q is not a valid identifier", lang)
		}
		b.doc.bindCodeBlock(target, lang, text)
	default:
		b.errAt(errors.InvalidKey, h.Id(), "unrecognized code literal")
		return
	}
	b.doc.setHandle(target, h.Id())
}

func trimLeadingSpace(s string) string {
	if len(s) > 0 && s[0] == ' ' {
		return s[1:]
	}
	return s
}

func cleanNumeric(s string) string {
	return strings.ReplaceAll(s, "_", "")
}

func splitTaggedInlineCode(raw string) (lang, text string, ok bool) {
	idx := strings.IndexByte(raw, '`')
	if idx <= 0 {
		return "", "", false
	}
	lang = raw[:idx]
	rest := raw[idx:]
	if len(rest) < 2 || rest[0] != '`' || rest[len(rest)-1] != '`' {
		return "", "", false
	}
	return lang, rest[1 : len(rest)-1], true
}

func splitCodeBlock(raw string) (lang, text string, ok bool) {
	n := 0
	for n < len(raw) && raw[n] == '`' {
		n++
	}
	if n < 3 || len(raw) < 2*n {
		return "", "", false
	}
	nl := strings.IndexByte(raw, '\n')
	if nl < 0 {
		return "", "", false
	}
	lang = strings.TrimSpace(raw[n:nl])
	fence := strings.Repeat("`", n)
	closeIdx := strings.LastIndex(raw, fence)
	if closeIdx <= nl {
		return "", "", false
	}
	return lang, raw[nl+1 : closeIdx], true
}

func isValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}
			continue
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return false
		}
	}
	return true
}

// unescapeString decodes a double-quoted string literal's escapes
// (spec.md §4.1: `\\ \" \' \n \r \t \0 \u{...}`). raw includes the
// surrounding quotes.
func unescapeString(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", fmt.Errorf("string literal missing surrounding quotes")
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(body) {
			return "", fmt.Errorf("dangling escape at end of string literal")
		}
		switch body[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		case 'u':
			if i+1 >= len(body) || body[i+1] != '{' {
				return "", fmt.Errorf("malformed \\u escape")
			}
			end := strings.IndexByte(body[i+2:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated \\u{...} escape")
			}
			hexDigits := body[i+2 : i+2+end]
			r, err := strconv.ParseUint(hexDigits, 16, 32)
			if err != nil {
				return "", fmt.Errorf("invalid \\u{...} escape")
			}
			b.WriteRune(rune(r))
			i += 2 + end
		default:
			return "", fmt.Errorf("unknown escape sequence")
		}
	}
	return b.String(), nil
}
