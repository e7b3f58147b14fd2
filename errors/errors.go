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

// Package errors defines the diagnostic types shared by every stage of the
// pipeline: lexer, parser, document builder, schema extractor, and
// validator. Every diagnostic is a structured value carrying a span and a
// closed Kind (spec.md §7); there is no fmt.Errorf-only error path.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"eure.sh/eure/token"
)

// New is a convenience wrapper for errors.New in the standard library. It
// does not return a package Error.
func New(msg string) error { return errors.New(msg) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Unwrap returns the result of calling Unwrap on err, if it has one.
func Unwrap(err error) error { return errors.Unwrap(err) }

// Severity classifies a diagnostic (spec.md §6.3).
type Severity int

const (
	SevError Severity = iota
	SevWarning
	SevInfo
)

func (s Severity) String() string {
	switch s {
	case SevError:
		return "error"
	case SevWarning:
		return "warning"
	case SevInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Kind is the closed error taxonomy from spec.md §7. It is stable: adding a
// new value is fine, renumbering existing ones is not (hosts persist them).
type Kind int

const (
	_ Kind = iota

	// Lexical
	UnterminatedString
	UnterminatedCodeBlock
	InvalidEscape
	InvalidCharacter

	// Syntactic
	UnexpectedToken
	UnexpectedEndOfInput
	UnbalancedDelimiter

	// Structural (builder)
	DuplicateBinding
	ValueWithRegularBinding
	InvalidKey
	ArrayIndexMixingConflict
	NestedExtensionDepthExceeded

	// Schema extraction
	MalformedTypeExpression
	UnknownImportAlias
	CyclicImport
	DuplicateTypeName

	// Validation
	TypeMismatch
	RequiredFieldMissing
	UnknownField
	UnknownVariant
	AmbiguousUnion
	VariantDiscriminatorMissing
	ConstraintViolated
	UnknownExtension   // warning
	PreferenceViolated // warning
)

var kindNames = map[Kind]string{
	UnterminatedString:           "UnterminatedString",
	UnterminatedCodeBlock:        "UnterminatedCodeBlock",
	InvalidEscape:                "InvalidEscape",
	InvalidCharacter:             "InvalidCharacter",
	UnexpectedToken:              "UnexpectedToken",
	UnexpectedEndOfInput:         "UnexpectedEndOfInput",
	UnbalancedDelimiter:          "UnbalancedDelimiter",
	DuplicateBinding:             "DuplicateBinding",
	ValueWithRegularBinding:      "ValueWithRegularBinding",
	InvalidKey:                   "InvalidKey",
	ArrayIndexMixingConflict:     "ArrayIndexMixingConflict",
	NestedExtensionDepthExceeded: "NestedExtensionDepthExceeded",
	MalformedTypeExpression:      "MalformedTypeExpression",
	UnknownImportAlias:           "UnknownImportAlias",
	CyclicImport:                 "CyclicImport",
	DuplicateTypeName:            "DuplicateTypeName",
	TypeMismatch:                 "TypeMismatch",
	RequiredFieldMissing:         "RequiredFieldMissing",
	UnknownField:                 "UnknownField",
	UnknownVariant:               "UnknownVariant",
	AmbiguousUnion:               "AmbiguousUnion",
	VariantDiscriminatorMissing:  "VariantDiscriminatorMissing",
	ConstraintViolated:           "ConstraintViolated",
	UnknownExtension:             "UnknownExtension",
	PreferenceViolated:           "PreferenceViolated",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// DefaultSeverity reports the severity a Kind carries unless overridden
// (UnknownExtension and PreferenceViolated are warnings; everything else is
// an error, per spec.md §7).
func (k Kind) DefaultSeverity() Severity {
	switch k {
	case UnknownExtension, PreferenceViolated:
		return SevWarning
	default:
		return SevError
	}
}

// Message implements the error interface and carries an unformatted format
// string plus its arguments, so hosts can localize messages later.
type Message struct {
	format string
	args   []interface{}
}

// NewMessagef creates a Message for human consumption.
func NewMessagef(format string, args ...interface{}) Message {
	return Message{format: format, args: args}
}

// Msg returns the unformatted message and its arguments.
func (m *Message) Msg() (string, []interface{}) { return m.format, m.args }

// Error implements the error interface.
func (m *Message) Error() string { return fmt.Sprintf(m.format, m.args...) }

// Error is the interface every diagnostic in this module satisfies.
type Error interface {
	error
	// Position returns the primary position of the error.
	Position() token.Pos
	// Span returns the primary span of the error.
	Span() token.Span
	// InputPositions reports secondary positions that contributed to the
	// error.
	InputPositions() []token.Pos
	// Path returns the path into the data tree where the error occurred,
	// or nil if not applicable.
	Path() []string
	// Msg returns the unformatted message and its arguments.
	Msg() (format string, args []interface{})
	// Kind returns the closed taxonomy kind (spec.md §7).
	Kind() Kind
	// Severity returns the diagnostic's severity.
	Severity() Severity
}

// Fix is an optional fix suggestion attached to a diagnostic (spec.md §6.3).
type Fix struct {
	Message     string
	Span        token.Span
	Replacement string
}

// Diagnostic is the concrete Error implementation produced by every stage.
type Diagnostic struct {
	Message
	kind      Kind
	severity  Severity
	span      token.Span
	path      []string
	secondary []token.Span
	fix       *Fix
	wrap      error
}

var _ Error = (*Diagnostic)(nil)

// Newf creates a Diagnostic of the given kind at span, with the kind's
// default severity.
func Newf(kind Kind, span token.Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Message:  NewMessagef(format, args...),
		kind:     kind,
		severity: kind.DefaultSeverity(),
		span:     span,
	}
}

// WithPath attaches a data-tree path to the diagnostic.
func (d *Diagnostic) WithPath(path []string) *Diagnostic {
	d.path = path
	return d
}

// WithSecondary attaches secondary spans that contributed to the error.
func (d *Diagnostic) WithSecondary(spans ...token.Span) *Diagnostic {
	d.secondary = append(d.secondary, spans...)
	return d
}

// WithFix attaches a fix suggestion.
func (d *Diagnostic) WithFix(fix Fix) *Diagnostic {
	d.fix = &fix
	return d
}

// WithWrap records a subordinate error for additional context.
func (d *Diagnostic) WithWrap(err error) *Diagnostic {
	d.wrap = err
	return d
}

func (d *Diagnostic) Position() token.Pos { return d.span.Start }
func (d *Diagnostic) Span() token.Span    { return d.span }
func (d *Diagnostic) Kind() Kind          { return d.kind }
func (d *Diagnostic) Severity() Severity  { return d.severity }
func (d *Diagnostic) Path() []string      { return d.path }
func (d *Diagnostic) Fix() *Fix           { return d.fix }

func (d *Diagnostic) InputPositions() []token.Pos {
	ps := make([]token.Pos, len(d.secondary))
	for i, s := range d.secondary {
		ps[i] = s.Start
	}
	return ps
}

func (d *Diagnostic) Error() string {
	msg := d.Message.Error()
	if d.wrap == nil {
		return msg
	}
	if msg == "" {
		return d.wrap.Error()
	}
	return fmt.Sprintf("%s: %s", msg, d.wrap)
}

func (d *Diagnostic) Unwrap() error { return d.wrap }

// List is a sortable, deduplicatable collection of diagnostics, the
// accumulator every stage returns alongside its primary result (spec.md
// §7: "a full error list is always returned").
type List struct {
	items []*Diagnostic
}

// Add appends a diagnostic.
func (l *List) Add(d *Diagnostic) { l.items = append(l.items, d) }

// Addf is a convenience wrapper around Add(Newf(...)).
func (l *List) Addf(kind Kind, span token.Span, format string, args ...interface{}) {
	l.Add(Newf(kind, span, format, args...))
}

// Len reports the number of diagnostics.
func (l *List) Len() int { return len(l.items) }

// All returns the diagnostics in insertion order.
func (l *List) All() []*Diagnostic { return l.items }

// HasErrors reports whether any diagnostic has SevError severity.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Severity() == SevError {
			return true
		}
	}
	return false
}

// Sort orders diagnostics by ascending span start, then kind, then message,
// and removes exact duplicates on (span, kind, message) — the host-visible
// ordering spec.md §7 requires.
func (l *List) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i], l.items[j]
		if c := a.span.Start.Compare(b.span.Start); c != 0 {
			return c < 0
		}
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		return a.Error() < b.Error()
	})
	out := l.items[:0]
	var prevKey string
	for i, d := range l.items {
		key := fmt.Sprintf("%d|%d|%d|%s", d.span.Start.Offset(), d.span.End.Offset(), d.kind, d.Error())
		if i > 0 && key == prevKey {
			continue
		}
		prevKey = key
		out = append(out, d)
	}
	l.items = out
}

// Error implements the error interface by joining every message.
func (l *List) Error() string {
	var b strings.Builder
	for i, d := range l.items {
		if i > 0 {
			b.WriteByte('\n')
		}
		if d.span.IsValid() {
			b.WriteString(d.span.Start.String())
			b.WriteString(": ")
		}
		b.WriteString(d.Error())
	}
	return b.String()
}

// Handler receives diagnostics as they are produced by the scanner and
// parser, mirroring the teacher's errors.Handler used by cue/scanner.
type Handler func(d *Diagnostic)

// CollectInto returns a Handler that appends every diagnostic to l.
func CollectInto(l *List) Handler {
	return func(d *Diagnostic) { l.Add(d) }
}
