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

import "testing"

// ruleContext parses src and returns a RuleContext ready for a single
// rule's Apply, the same inputs RunRules would build for it, with opts as
// that rule's resolved option bag.
func ruleContext(t *testing.T, src string, opts map[string]any) *RuleContext {
	t.Helper()
	buf, err := NewBuffer("test.java", []byte(src))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	tokens, trivia, lexErrs := NewLexer(buf).Lex()
	if len(lexErrs) != 0 {
		t.Fatalf("unexpected lex errors: %v", lexErrs)
	}
	parsed := ParseCompilationUnit(buf, tokens, trivia)
	if !parsed.Ok() {
		t.Fatalf("unexpected parse errors: %v", parsed.Errors)
	}
	return &RuleContext{
		Buf:     buf,
		Arena:   parsed.Arena,
		Tokens:  tokens,
		Trivia:  trivia,
		Root:    parsed.Root,
		Options: opts,
	}
}

// applyEditsToSource runs applyEdits over src's bytes for assertions that
// want the resulting text rather than a raw edit list.
func applyEditsToSource(src string, edits []TextEdit) string {
	out, _ := applyEdits([]byte(src), edits)
	return string(out)
}
