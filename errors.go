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

import "fmt"

// ParseError is a locally recovered lex or parse failure: the pipeline never
// aborts because of one, it surfaces as a Violation with severity "error"
// (spec §7).
type ParseError struct {
	Span     Span
	Expected []TokenKind
	Found    TokenKind
	Message  string
	// LexLevel marks errors that originated in the lexer (spec §7's
	// "lex-level" tag on otherwise-ParseError-shaped diagnostics).
	LexLevel bool
}

func (e ParseError) Error() string {
	if len(e.Expected) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (found %s)", e.Message, e.Found)
}

// expectedMessage formats "expected X, got Y" the way the teacher's parser
// composes ExpectToken errors, with a token-specific hint appended.
func expectedMessage(expected, found TokenKind) string {
	msg := fmt.Sprintf("expected %s, got %s", expected, found)
	if hint := tokenErrorHint(expected); hint != "" {
		msg += hint
	}
	return msg
}

func tokenErrorHint(expected TokenKind) string {
	if expected == TokColon {
		return " (did you mean '->' for a switch rule?)"
	}
	return ""
}
