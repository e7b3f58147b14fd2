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

// Package parser implements the LL(k) recursive-descent parser that turns a
// source file into a lossless cst.Store (spec.md §4.2, grammar in §6.1).
// In Parse, a token that cannot start a binding or object entry is reported
// and ends that list; ParseTolerant instead wraps it in an ErrorNode and
// resyncs at the next newline or top-level '@' so it can keep producing
// diagnostics for the rest of the file. In both modes a missing value or
// delimiter is reported and parsing goes on with the next construct.
package parser

import (
	"eure.sh/eure/cst"
	"eure.sh/eure/errors"
	"eure.sh/eure/scanner"
	"eure.sh/eure/token"
)

// mode selects whether the parser resyncs past a syntax error or stops.
type mode int

const (
	strict mode = iota
	tolerant
)

// Parse parses src in strict mode: a token that cannot start a binding or
// object entry is reported and ends that list without resyncing. A missing
// value or delimiter inside a binding does not stop parsing, so more than
// one error can be returned.
func Parse(filename string, src []byte) (*cst.Store, *errors.List) {
	return parse(filename, src, strict)
}

// ParseTolerant parses src in error-recovering mode: every syntax error is
// recorded; a run of tokens that cannot start a binding or object entry is
// wrapped in an ErrorNode, and parsing resumes at the next newline or
// top-level '@' (spec.md §4.2). A missing value or delimiter is reported
// without an ErrorNode.
func ParseTolerant(filename string, src []byte) (*cst.Store, *errors.List) {
	return parse(filename, src, tolerant)
}

func parse(filename string, src []byte, m mode) (*cst.Store, *errors.List) {
	file := token.NewFile(filename, len(src))
	errs := &errors.List{}

	var sc scanner.Scanner
	sc.Init(file, src, errors.CollectInto(errs))

	store := cst.NewStore(file)
	p := &parser{sc: &sc, store: store, errs: errs, mode: m}
	p.advance()
	root := p.parseDocument()
	// Trivia still queued at the end (a trailing newline or comment) goes
	// to the root Document, so the terminal walk covers all of src.
	if len(p.pending) > 0 {
		rn := store.Node(root)
		rn.Children = append(rn.Children, p.pending...)
		rn.Span = spanOfChildren(store, rn.Children)
		p.pending = nil
	}
	store.SetRoot(root)

	errs.Sort()
	return store, errs
}

type parser struct {
	sc    *scanner.Scanner
	store *cst.Store
	errs  *errors.List
	mode  mode

	tok     cst.TerminalKind
	tokPos  token.Pos
	tokText string
	tokId   cst.NodeId

	// newlineBefore reports whether a newline was skipped as trivia since
	// the previous real token, used to find resync points (spec.md §4.2).
	newlineBefore bool

	pending []cst.NodeId
}

func spanFor(pos token.Pos, text string) token.Span {
	return token.NewSpan(pos, pos.Add(len(text)))
}

func spanOfChildren(s *cst.Store, children []cst.NodeId) token.Span {
	if len(children) == 0 {
		return token.Span{}
	}
	return token.NewSpan(s.Span(children[0]).Start, s.Span(children[len(children)-1]).End)
}

// advance scans forward to the next non-trivia token, allocating a terminal
// node for every token it sees (trivia included) and queuing trivia in
// p.pending for the next take/consume call to drain.
func (p *parser) advance() {
	sawNewline := false
	for {
		pos, kind, text := p.sc.Scan()
		id := p.store.AllocTerminal(kind, spanFor(pos, text), text)
		if kind.IsTrivia() {
			if kind == cst.TerminalNewline {
				sawNewline = true
			}
			p.pending = append(p.pending, id)
			continue
		}
		p.tok = kind
		p.tokPos = pos
		p.tokText = text
		p.tokId = id
		p.newlineBefore = sawNewline
		return
	}
}

// advanceText scans exactly one token in text lexical mode (spec.md §4.1),
// used immediately after the ':' of a text binding.
func (p *parser) advanceText() {
	pos, kind, text := p.sc.ScanText()
	id := p.store.AllocTerminal(kind, spanFor(pos, text), text)
	p.tok = kind
	p.tokPos = pos
	p.tokText = text
	p.tokId = id
	p.newlineBefore = false
}

// take appends any pending trivia and the current token to children,
// without advancing the scanner.
func (p *parser) take(children *[]cst.NodeId) cst.NodeId {
	*children = append(*children, p.pending...)
	p.pending = nil
	*children = append(*children, p.tokId)
	return p.tokId
}

// consume is take followed by advance: the usual way to eat one token.
func (p *parser) consume(children *[]cst.NodeId) cst.NodeId {
	id := p.take(children)
	p.advance()
	return id
}

// expect consumes the current token if it matches kind, reporting an error
// and leaving it unconsumed otherwise.
func (p *parser) expect(children *[]cst.NodeId, kind cst.TerminalKind) bool {
	if p.tok == kind {
		p.consume(children)
		return true
	}
	p.errorExpected(kind)
	return false
}

func (p *parser) errorExpected(want cst.TerminalKind) {
	p.errs.Addf(errors.UnexpectedToken, spanFor(p.tokPos, p.tokText),
		"expected %s, found %s", want, p.tok)
}

func (p *parser) atAny(kinds ...cst.TerminalKind) bool {
	for _, k := range kinds {
		if p.tok == k {
			return true
		}
	}
	return false
}

// recover swallows tokens into an ErrorNode until the next token is
// preceded by a newline, matches one of stop, or the input ends. It always
// consumes at least one token, so a caller's retry loop cannot livelock on
// a token that is itself a stop kind.
func (p *parser) recover(stop ...cst.TerminalKind) cst.NodeId {
	var children []cst.NodeId
	start := p.tokPos
	p.consume(&children)
	for !p.newlineBefore && !p.atAny(stop...) && p.tok != cst.TerminalEOF {
		p.consume(&children)
	}
	span := spanOfChildren(p.store, children)
	if len(children) == 0 {
		span = token.NewSpan(start, start)
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalErrorNode), span, children)
}

func isKeyBaseStart(tok cst.TerminalKind) bool {
	switch tok {
	case cst.TerminalIdent, cst.TerminalTrue, cst.TerminalFalse, cst.TerminalNull,
		cst.TerminalString, cst.TerminalInteger, cst.TerminalDollar, cst.TerminalHash, cst.TerminalLParen:
		return true
	}
	return false
}

// -----------------------------------------------------------------------------
// Document = [ValueBinding] {Binding} {Section}

func (p *parser) parseDocument() cst.NodeId {
	var children []cst.NodeId
	if p.tok == cst.TerminalEquals {
		children = append(children, p.parseValueBinding())
	}
	children = append(children, p.parseBindingList()...)
	for p.tok == cst.TerminalAt {
		children = append(children, p.parseSection())
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalDocument), spanOfChildren(p.store, children), children)
}

// parseBindingList parses {Binding}, shared by Document and SectionBody,
// resyncing on malformed input in tolerant mode.
func (p *parser) parseBindingList() []cst.NodeId {
	var out []cst.NodeId
	for {
		switch {
		case p.tok == cst.TerminalEOF || p.tok == cst.TerminalRBrace || p.tok == cst.TerminalAt:
			return out
		case isKeyBaseStart(p.tok):
			out = append(out, p.parseBinding())
		case p.mode == tolerant:
			out = append(out, p.recover(cst.TerminalAt))
		default:
			p.errorExpected(cst.TerminalIdent)
			return out
		}
	}
}

// -----------------------------------------------------------------------------
// Binding = Keys BindingRhs

func (p *parser) parseBinding() cst.NodeId {
	var children []cst.NodeId
	children = append(children, p.parseKeys())
	children = append(children, p.parseBindingRhs())
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalBinding), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// BindingRhs = "=" Value | "{" Document "}" | ":" Text

func (p *parser) parseBindingRhs() cst.NodeId {
	var children []cst.NodeId
	switch p.tok {
	case cst.TerminalEquals:
		p.consume(&children)
		children = append(children, p.parseValue())
	case cst.TerminalLBrace:
		p.consume(&children)
		children = append(children, p.parseDocument())
		p.expect(&children, cst.TerminalRBrace)
	case cst.TerminalColon:
		p.take(&children) // ':' — switch lexical mode before advancing
		p.advanceText()
		if p.tok == cst.TerminalText {
			p.take(&children)
		} else {
			p.errorExpected(cst.TerminalText)
		}
		p.advance()
	default:
		p.errorExpected(cst.TerminalEquals)
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalBindingRhs), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Section = "@" Keys SectionBody

func (p *parser) parseSection() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalAt)
	children = append(children, p.parseKeys())
	children = append(children, p.parseSectionBody())
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalSection), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// SectionBody = [ValueBinding] {Binding} | "{" Document "}"

func (p *parser) parseSectionBody() cst.NodeId {
	var children []cst.NodeId
	if p.tok == cst.TerminalLBrace {
		p.consume(&children)
		children = append(children, p.parseDocument())
		p.expect(&children, cst.TerminalRBrace)
		return p.store.Alloc(cst.NonTerminal(cst.NonTerminalSectionBody), spanOfChildren(p.store, children), children)
	}
	if p.tok == cst.TerminalEquals {
		children = append(children, p.parseValueBinding())
	}
	children = append(children, p.parseBindingList()...)
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalSectionBody), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// ValueBinding = "=" Value

func (p *parser) parseValueBinding() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalEquals)
	children = append(children, p.parseValue())
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalValueBinding), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Keys = Key {"." Key}

func (p *parser) parseKeys() cst.NodeId {
	var children []cst.NodeId
	children = append(children, p.parseKey())
	for p.tok == cst.TerminalDot {
		p.consume(&children)
		children = append(children, p.parseKey())
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalKeys), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Key = KeyBase [ArrayMarker]

func (p *parser) parseKey() cst.NodeId {
	var children []cst.NodeId
	children = append(children, p.parseKeyBase())
	if p.tok == cst.TerminalLBracket {
		children = append(children, p.parseArrayMarker())
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalKey), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// KeyBase = Ident | "$" Ident | String | Integer | KeyTuple | "#" Integer

func (p *parser) parseKeyBase() cst.NodeId {
	var children []cst.NodeId
	switch p.tok {
	case cst.TerminalIdent, cst.TerminalTrue, cst.TerminalFalse, cst.TerminalNull,
		cst.TerminalString, cst.TerminalInteger:
		p.consume(&children)
	case cst.TerminalDollar:
		p.consume(&children)
		p.expect(&children, cst.TerminalIdent)
	case cst.TerminalHash:
		p.consume(&children)
		p.expect(&children, cst.TerminalInteger)
	case cst.TerminalLParen:
		children = append(children, p.parseKeyTuple())
	default:
		p.errorExpected(cst.TerminalIdent)
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalKeyBase), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// KeyTuple = "(" Key {"," Key} ")"

func (p *parser) parseKeyTuple() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalLParen)
	if p.tok != cst.TerminalRParen {
		children = append(children, p.parseKey())
		for p.tok == cst.TerminalComma {
			p.consume(&children)
			if p.tok == cst.TerminalRParen {
				break
			}
			children = append(children, p.parseKey())
		}
	}
	p.expect(&children, cst.TerminalRParen)
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalKeyTuple), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// ArrayMarker = "[" [Integer] "]"

func (p *parser) parseArrayMarker() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalLBracket)
	if p.tok == cst.TerminalInteger {
		p.consume(&children)
	}
	p.expect(&children, cst.TerminalRBracket)
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalArrayMarker), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Value = Object | Array | Tuple | Float | Integer | Bool | Null
//       | Strings | Hole | CodeBlock | InlineCode | Path

func (p *parser) parseValue() cst.NodeId {
	var children []cst.NodeId
	switch p.tok {
	case cst.TerminalLBrace:
		children = append(children, p.parseObject())
	case cst.TerminalLBracket:
		children = append(children, p.parseArray())
	case cst.TerminalLParen:
		children = append(children, p.parseTuple())
	case cst.TerminalFloat, cst.TerminalInteger, cst.TerminalTrue, cst.TerminalFalse, cst.TerminalNull,
		cst.TerminalCodeBlock, cst.TerminalInlineCode, cst.TerminalTaggedInlineCode:
		p.consume(&children)
	case cst.TerminalString:
		children = append(children, p.parseStrings())
	case cst.TerminalBang:
		children = append(children, p.parseHole())
	case cst.TerminalDot:
		children = append(children, p.parsePath())
	default:
		p.errorExpected(cst.TerminalInteger)
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalValue), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Object = "{" [ValueBinding [","]] {ObjectBinding [","]} "}"

func (p *parser) parseObject() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalLBrace)
	if p.tok == cst.TerminalEquals {
		children = append(children, p.parseValueBinding())
		if p.tok == cst.TerminalComma {
			p.consume(&children)
		}
	}
	for p.tok != cst.TerminalRBrace && p.tok != cst.TerminalEOF {
		if !isKeyBaseStart(p.tok) {
			if p.mode == tolerant {
				children = append(children, p.recover(cst.TerminalRBrace, cst.TerminalComma, cst.TerminalAt))
				continue
			}
			p.errorExpected(cst.TerminalIdent)
			break
		}
		children = append(children, p.parseObjectBinding())
		if p.tok == cst.TerminalComma {
			p.consume(&children)
			continue
		}
		break
	}
	p.expect(&children, cst.TerminalRBrace)
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalObject), spanOfChildren(p.store, children), children)
}

// ObjectBinding = Keys "=>" Value

func (p *parser) parseObjectBinding() cst.NodeId {
	var children []cst.NodeId
	children = append(children, p.parseKeys())
	p.expect(&children, cst.TerminalFatArrow)
	children = append(children, p.parseValue())
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalObjectBinding), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Array = "[" [Value {"," Value} [","]] "]"

func (p *parser) parseArray() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalLBracket)
	if p.tok != cst.TerminalRBracket {
		children = append(children, p.parseValue())
		for p.tok == cst.TerminalComma {
			p.consume(&children)
			if p.tok == cst.TerminalRBracket {
				break
			}
			children = append(children, p.parseValue())
		}
	}
	p.expect(&children, cst.TerminalRBracket)
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalArray), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Tuple = "(" [Value {"," Value} [","]] ")"

func (p *parser) parseTuple() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalLParen)
	if p.tok != cst.TerminalRParen {
		children = append(children, p.parseValue())
		for p.tok == cst.TerminalComma {
			p.consume(&children)
			if p.tok == cst.TerminalRParen {
				break
			}
			children = append(children, p.parseValue())
		}
	}
	p.expect(&children, cst.TerminalRParen)
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalTuple), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Strings = String {"\\" String}

func (p *parser) parseStrings() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalString)
	for p.tok == cst.TerminalBackslash {
		p.consume(&children)
		p.expect(&children, cst.TerminalString)
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalStrings), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Hole = "!" [Ident]

func (p *parser) parseHole() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalBang)
	// The label must sit on the same line as '!': a newline ends the hole
	// immediately, leaving whatever follows to be parsed as its own
	// construct (a label can't be confused with the next top-level key).
	if p.tok == cst.TerminalIdent && !p.newlineBefore {
		p.consume(&children)
	}
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalHole), spanOfChildren(p.store, children), children)
}

// -----------------------------------------------------------------------------
// Path = "." Keys

func (p *parser) parsePath() cst.NodeId {
	var children []cst.NodeId
	p.expect(&children, cst.TerminalDot)
	children = append(children, p.parseKeys())
	return p.store.Alloc(cst.NonTerminal(cst.NonTerminalPath), spanOfChildren(p.store, children), children)
}
