// Copyright 2011 Google Inc. All Rights Reserved.
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

package styler

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// lineLengthRule flags (and, with smart_wrap, rewrites) logical lines
// exceeding a configured maximum width.
type lineLengthRule struct{}

func newLineLengthRule() Rule { return &lineLengthRule{} }

func (r *lineLengthRule) ID() string           { return "line_length" }
func (r *lineLengthRule) DefaultEnabled() bool { return true }
func (r *lineLengthRule) Priority() int        { return 10 } // low: wrapping edits should yield to more local rules

func (r *lineLengthRule) ValidateOptions(opts map[string]any) error {
	if v, ok := opts["max_length"]; ok {
		n := optionInt(opts, "max_length", 0)
		if n < 20 {
			return errOption(r.ID(), "max_length", v)
		}
	}
	return nil
}

func (r *lineLengthRule) Apply(ctx *RuleContext) ([]TextEdit, []Violation) {
	maxLength := optionInt(ctx.Options, "max_length", 100)
	tabWidth := optionInt(ctx.Options, "tab_width", 4)
	smartWrap := optionBool(ctx.Options, "smart_wrap", false)

	var violations []Violation
	data := ctx.Buf.Bytes()
	lineStart := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			end := i
			if end > lineStart && data[end-1] == '\r' {
				end--
			}
			width := visualWidth(data[lineStart:end], tabWidth)
			if width > maxLength {
				violations = append(violations, Violation{
					RuleID:   r.ID(),
					Severity: SeverityWarning,
					Message:  fmt.Sprintf("line is %d characters wide, exceeds max_length %d", width, maxLength),
					Span:     Span{Start: lineStart, End: end},
				})
			}
			lineStart = i + 1
		}
	}

	var edits []TextEdit
	if smartWrap {
		edits = smartWrapLongLines(ctx, maxLength, tabWidth)
	}
	return edits, violations
}

// visualWidth measures a line the way a fixed-width terminal or editor
// gutter would: tabs advance to the next tab stop, and East Asian wide and
// fullwidth runes (legal inside a Java identifier, string literal, or
// comment) count as two columns rather than one.
func visualWidth(line []byte, tabWidth int) int {
	col := 0
	for len(line) > 0 {
		r, size := utf8.DecodeRune(line)
		switch {
		case r == '\t':
			col += tabWidth - (col % tabWidth)
		case isWideRune(r):
			col += 2
		default:
			col++
		}
		line = line[size:]
	}
	return col
}

func isWideRune(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	default:
		return false
	}
}

// smartWrapLongLines inserts one line break per call, at the first
// grammar-aware break point (after a comma, before a binary operator,
// after a method chain '.') whose token ends past the configured width,
// scanning the whole file in order. The continuation line is indented
// tab_width spaces beyond the indent of the line being broken.
//
// Other over-long lines in the same file, and segments of the broken line
// that still overflow, are left unwrapped by this call; they are flagged
// again on the next format pass, which converges in practice since each
// pass shortens the longest remaining segment.
func smartWrapLongLines(ctx *RuleContext, maxLength, tabWidth int) []TextEdit {
	var edits []TextEdit
	toks := ctx.Tokens
	for i := 0; i+1 < len(toks); i++ {
		cur := toks[i]
		line, col := ctx.Buf.ByteToLineCol(cur.Span.End)
		if col <= maxLength {
			continue
		}
		next := toks[i+1]
		nextLine, _ := ctx.Buf.ByteToLineCol(next.Span.Start)
		if nextLine != line {
			continue // already wrapped here
		}
		breakable, after := breakPoint(cur.Kind, next.Kind)
		if !breakable {
			continue
		}
		indent := baseIndentOf(ctx.Buf, cur.Span.Start) + tabWidth
		var at int
		if after {
			at = cur.Span.End
		} else {
			at = next.Span.Start
		}
		edits = append(edits, TextEdit{
			Span:    Span{Start: at, End: at},
			NewText: "\n" + spaces(indent),
		})
		break // one wrap per rule invocation; see doc comment
	}
	return edits
}

// breakPoint reports whether the boundary between left and right tokens
// is an acceptable wrap point, and whether the newline goes after left
// (commas, method-chain dots) or before right (binary operators).
func breakPoint(left, right TokenKind) (ok bool, after bool) {
	if left == TokComma {
		return true, true
	}
	if left == TokDot {
		return true, true
	}
	if binaryOperatorTokens[right] {
		return true, false
	}
	return false, false
}

func baseIndentOf(buf *Buffer, offset int) int {
	line, _ := buf.ByteToLineCol(offset)
	_ = line
	data := buf.Bytes()
	start := offset
	for start > 0 && data[start-1] != '\n' {
		start--
	}
	n := 0
	for start+n < len(data) && (data[start+n] == ' ') {
		n++
	}
	return n
}

func spaces(n int) string {
	if n < 0 {
		n = 0
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
