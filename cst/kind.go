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

// Package cst implements the arena-backed concrete syntax tree (spec.md
// §3.2, §4.3): every source byte, including whitespace, comments, and error
// ranges, is attributable to exactly one terminal node.
package cst

import "fmt"

// TerminalKind enumerates every lexeme the grammar recognizes, including
// trivia (spec.md §3.2). Trivia is preserved so a formatter can round-trip.
type TerminalKind uint16

const (
	TerminalInvalid TerminalKind = iota

	// Trivia
	TerminalWhitespace
	TerminalNewline
	TerminalLineComment
	TerminalBlockComment

	// Identifiers and literals
	TerminalIdent
	TerminalInteger
	TerminalFloat
	TerminalTrue
	TerminalFalse
	TerminalNull
	TerminalString
	TerminalText // text-mode terminal, spec.md §4.1
	TerminalInlineCode
	TerminalTaggedInlineCode
	TerminalCodeBlock

	// Punctuation
	TerminalAt       // @
	TerminalDollar    // $
	TerminalDot       // .
	TerminalEquals    // =
	TerminalColon     // :
	TerminalComma     // ,
	TerminalLBrace    // {
	TerminalRBrace    // }
	TerminalLBracket  // [
	TerminalRBracket  // ]
	TerminalLParen    // (
	TerminalRParen    // )
	TerminalBang      // !
	TerminalHash      // #
	TerminalFatArrow  // =>
	TerminalBackslash // \

	TerminalEOF
	TerminalError // error-recovery placeholder terminal
)

var terminalNames = map[TerminalKind]string{
	TerminalInvalid:          "Invalid",
	TerminalWhitespace:       "Whitespace",
	TerminalNewline:          "Newline",
	TerminalLineComment:      "LineComment",
	TerminalBlockComment:     "BlockComment",
	TerminalIdent:            "Ident",
	TerminalInteger:          "Integer",
	TerminalFloat:            "Float",
	TerminalTrue:             "True",
	TerminalFalse:            "False",
	TerminalNull:             "Null",
	TerminalString:           "String",
	TerminalText:             "Text",
	TerminalInlineCode:       "InlineCode",
	TerminalTaggedInlineCode: "TaggedInlineCode",
	TerminalCodeBlock:        "CodeBlock",
	TerminalAt:               "At",
	TerminalDollar:           "Dollar",
	TerminalDot:              "Dot",
	TerminalEquals:           "Equals",
	TerminalColon:            "Colon",
	TerminalComma:            "Comma",
	TerminalLBrace:           "LBrace",
	TerminalRBrace:           "RBrace",
	TerminalLBracket:         "LBracket",
	TerminalRBracket:         "RBracket",
	TerminalLParen:           "LParen",
	TerminalRParen:           "RParen",
	TerminalBang:             "Bang",
	TerminalHash:             "Hash",
	TerminalFatArrow:         "FatArrow",
	TerminalBackslash:        "Backslash",
	TerminalEOF:              "EOF",
	TerminalError:            "Error",
}

func (k TerminalKind) String() string {
	if s, ok := terminalNames[k]; ok {
		return s
	}
	return fmt.Sprintf("TerminalKind(%d)", int(k))
}

// IsTrivia reports whether k is whitespace or a comment: present in the CST
// for round-tripping, but skipped by the document builder.
func (k TerminalKind) IsTrivia() bool {
	switch k {
	case TerminalWhitespace, TerminalNewline, TerminalLineComment, TerminalBlockComment:
		return true
	default:
		return false
	}
}

// NonTerminalKind enumerates every rule of the grammar (spec.md §6.1).
type NonTerminalKind uint16

const (
	NonTerminalInvalid NonTerminalKind = iota

	NonTerminalDocument
	NonTerminalBinding
	NonTerminalBindingRhs
	NonTerminalSection
	NonTerminalSectionBody
	NonTerminalKeys
	NonTerminalKey
	NonTerminalKeyBase
	NonTerminalKeyTuple
	NonTerminalArrayMarker
	NonTerminalValue
	NonTerminalObject
	NonTerminalObjectBinding
	NonTerminalArray
	NonTerminalTuple
	NonTerminalStrings
	NonTerminalHole
	NonTerminalPath
	NonTerminalValueBinding

	// error recovery
	NonTerminalErrorNode
)

var nonTerminalNames = map[NonTerminalKind]string{
	NonTerminalDocument:      "Document",
	NonTerminalBinding:       "Binding",
	NonTerminalBindingRhs:    "BindingRhs",
	NonTerminalSection:       "Section",
	NonTerminalSectionBody:   "SectionBody",
	NonTerminalKeys:          "Keys",
	NonTerminalKey:           "Key",
	NonTerminalKeyBase:       "KeyBase",
	NonTerminalKeyTuple:      "KeyTuple",
	NonTerminalArrayMarker:   "ArrayMarker",
	NonTerminalValue:         "Value",
	NonTerminalObject:        "Object",
	NonTerminalObjectBinding: "ObjectBinding",
	NonTerminalArray:         "Array",
	NonTerminalTuple:         "Tuple",
	NonTerminalStrings:       "Strings",
	NonTerminalHole:          "Hole",
	NonTerminalPath:          "Path",
	NonTerminalValueBinding:  "ValueBinding",
	NonTerminalErrorNode:     "ErrorNode",
}

func (k NonTerminalKind) String() string {
	if s, ok := nonTerminalNames[k]; ok {
		return s
	}
	return fmt.Sprintf("NonTerminalKind(%d)", int(k))
}

// Kind is the tagged sum NodeKind = Terminal(TerminalKind) |
// NonTerminal(NonTerminalKind) from spec.md §3.2.
type Kind struct {
	terminal    TerminalKind
	nonTerminal NonTerminalKind
	isTerminal  bool
}

// Terminal wraps a TerminalKind as a Kind.
func Terminal(t TerminalKind) Kind { return Kind{terminal: t, isTerminal: true} }

// NonTerminal wraps a NonTerminalKind as a Kind.
func NonTerminal(nt NonTerminalKind) Kind { return Kind{nonTerminal: nt} }

// IsTerminal reports whether k wraps a TerminalKind.
func (k Kind) IsTerminal() bool { return k.isTerminal }

// AsTerminal returns the wrapped TerminalKind and true, or the zero value
// and false if k is a non-terminal.
func (k Kind) AsTerminal() (TerminalKind, bool) {
	return k.terminal, k.isTerminal
}

// AsNonTerminal returns the wrapped NonTerminalKind and true, or the zero
// value and false if k is a terminal.
func (k Kind) AsNonTerminal() (NonTerminalKind, bool) {
	return k.nonTerminal, !k.isTerminal
}

func (k Kind) String() string {
	if k.isTerminal {
		return k.terminal.String()
	}
	return k.nonTerminal.String()
}
