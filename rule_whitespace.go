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

// whitespaceRule enforces spacing around commas, binary/assignment
// operators, and control-structure parens, per spec.md §4.6.
type whitespaceRule struct{}

func newWhitespaceRule() Rule { return &whitespaceRule{} }

func (r *whitespaceRule) ID() string         { return "whitespace" }
func (r *whitespaceRule) DefaultEnabled() bool { return true }
func (r *whitespaceRule) Priority() int      { return 50 }

func (r *whitespaceRule) ValidateOptions(opts map[string]any) error {
	return nil
}

var binaryOperatorTokens = map[TokenKind]bool{
	TokPlus: true, TokMinus: true, TokStar: true, TokSlash: true, TokPercent: true,
	TokAmp: true, TokPipe: true, TokCaret: true, TokLtLt: true, TokGtGt: true, TokGtGtGt: true,
	TokAndAnd: true, TokOrOr: true, TokEqEq: true, TokNotEq: true,
	TokLt: true, TokGt: true, TokLe: true, TokGe: true,
}

var assignOperatorTokens = map[TokenKind]bool{
	TokEq: true, TokPlusEq: true, TokMinusEq: true, TokStarEq: true, TokSlashEq: true,
	TokAmpEq: true, TokPipeEq: true, TokCaretEq: true, TokPercentEq: true,
	TokLtLtEq: true, TokGtGtEq: true, TokGtGtGtEq: true,
}

// Apply walks the token stream linearly (not the AST, since spacing is a
// lexical property of adjacent tokens) and emits an edit wherever the
// gap between two tokens on the same line doesn't match the required
// single space or zero space.
func (r *whitespaceRule) Apply(ctx *RuleContext) ([]TextEdit, []Violation) {
	var edits []TextEdit
	toks := ctx.Tokens
	for i := 0; i+1 < len(toks); i++ {
		cur, next := toks[i], toks[i+1]
		if cur.Kind == TokEOF || next.Kind == TokEOF {
			continue
		}
		if !sameLineGap(cur, next, ctx.Buf) {
			continue // line breaks between tokens are indentation's concern, not whitespace's
		}
		gap := Span{Start: cur.Span.End, End: next.Span.Start}
		want, ok := desiredGap(cur.Kind, next.Kind)
		if !ok {
			continue
		}
		have := string(ctx.Buf.Slice(gap))
		if have == want {
			continue
		}
		edits = append(edits, TextEdit{Span: gap, NewText: want})
	}
	return edits, nil
}

// sameLineGap reports whether cur and next have no newline between them;
// the whitespace rule never touches line breaks.
func sameLineGap(cur, next Token, buf *Buffer) bool {
	l1, _ := buf.ByteToLineCol(cur.Span.End)
	l2, _ := buf.ByteToLineCol(next.Span.Start)
	return l1 == l2
}

// desiredGap returns the exact inter-token spacing the rule wants for the
// pair (left, right), or ok=false if this pair isn't one it governs.
func desiredGap(left, right TokenKind) (string, bool) {
	switch {
	case left == TokComma:
		return " ", true
	case right == TokComma:
		return "", true
	case binaryOperatorTokens[left] && left != TokLt && left != TokGt:
		return " ", true
	case binaryOperatorTokens[right] && right != TokLt && right != TokGt:
		return " ", true
	case assignOperatorTokens[left]:
		return " ", true
	case assignOperatorTokens[right]:
		return " ", true
	case left == TokLParen:
		return "", true
	case right == TokRParen:
		return "", true
	case left == TokLBracket:
		return "", true
	case right == TokRBracket:
		return "", true
	case right == TokLBrace && (left == TokRParen):
		return " ", true
	}
	return "", false
}
