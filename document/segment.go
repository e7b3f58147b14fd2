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
	"strings"

	"eure.sh/eure/internal"
)

// SegmentKind distinguishes the eight path-segment forms a key can take
// (spec.md §4.5.1).
type SegmentKind int

const (
	SegIdent SegmentKind = iota
	SegExtension
	SegString
	SegInteger
	SegTupleKey
	SegTupleIndex
	SegArrayAppend
	SegArrayIndex
)

func (k SegmentKind) String() string {
	switch k {
	case SegIdent:
		return "Ident"
	case SegExtension:
		return "Extension"
	case SegString:
		return "String"
	case SegInteger:
		return "Integer"
	case SegTupleKey:
		return "TupleKey"
	case SegTupleIndex:
		return "TupleIndex"
	case SegArrayAppend:
		return "ArrayAppend"
	case SegArrayIndex:
		return "ArrayIndex"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// Segment is one element of a dotted key path, the addressing vocabulary
// spec.md §3.1 and §4.5.1 use to navigate a Document.
type Segment struct {
	Kind SegmentKind

	Name string // SegIdent, SegExtension
	Str  string // SegString

	Int internal.Decimal // SegInteger

	Tuple []Segment // SegTupleKey: deep, ordered key components

	TupleIdx uint8  // SegTupleIndex: "#n"
	ArrayIdx uint64 // SegArrayIndex: "[n]"
}

func Ident(name string) Segment       { return Segment{Kind: SegIdent, Name: name} }
func ExtensionSeg(name string) Segment { return Segment{Kind: SegExtension, Name: name} }
func StringKey(s string) Segment      { return Segment{Kind: SegString, Str: s} }
func IntegerKey(v internal.Decimal) Segment {
	return Segment{Kind: SegInteger, Int: v}
}
func TupleKeySeg(elems []Segment) Segment { return Segment{Kind: SegTupleKey, Tuple: elems} }
func TupleIndexSeg(i uint8) Segment       { return Segment{Kind: SegTupleIndex, TupleIdx: i} }
func ArrayAppendSeg() Segment             { return Segment{Kind: SegArrayAppend} }
func ArrayIndexSeg(i uint64) Segment      { return Segment{Kind: SegArrayIndex, ArrayIdx: i} }

// canonicalKey returns a string that is equal for two segments iff they
// address the same map slot, implementing the tuple-key canonicalization
// resolved in SPEC_FULL.md §7 (element-wise deep structural equality)
// without resorting to reflect.DeepEqual, so it stays usable as a Go map
// key.
func canonicalKey(s Segment) string {
	var b strings.Builder
	writeCanonicalKey(&b, s)
	return b.String()
}

func writeCanonicalKey(b *strings.Builder, s Segment) {
	switch s.Kind {
	case SegIdent:
		b.WriteString("i:")
		b.WriteString(s.Name)
	case SegString:
		fmt.Fprintf(b, "s%d:", len(s.Str))
		b.WriteString(s.Str)
	case SegInteger:
		b.WriteString("n:")
		b.WriteString(s.Int.Text('f'))
	case SegTupleKey:
		b.WriteString("t:(")
		for i, e := range s.Tuple {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonicalKey(b, e)
		}
		b.WriteByte(')')
	default:
		fmt.Fprintf(b, "k:%d", s.Kind)
	}
}
