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
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestWriteMachineReport_StableFieldNames(t *testing.T) {
	buf, err := NewBuffer("Foo.java", []byte("class Foo {\n  int x;\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	res := FileResult{
		Path: "Foo.java",
		Violations: []Violation{
			{RuleID: "line_length", Severity: SeverityWarning, Message: "too long", Span: Span{Start: 14, End: 19}},
		},
	}

	var out bytes.Buffer
	if err := WriteMachineReport(&out, buf, res, FileStats{Tokens: 10, Nodes: 3, DurationMs: 2}); err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out.String())
	}
	if decoded["path"] != "Foo.java" {
		t.Fatalf("path = %v", decoded["path"])
	}
	stats, ok := decoded["stats"].(map[string]any)
	if !ok {
		t.Fatalf("stats field missing or wrong shape: %v", decoded["stats"])
	}
	if stats["tokens"].(float64) != 10 || stats["nodes"].(float64) != 3 || stats["duration_ms"].(float64) != 2 {
		t.Fatalf("stats = %v", stats)
	}
	violations, ok := decoded["violations"].([]any)
	if !ok || len(violations) != 1 {
		t.Fatalf("violations = %v", decoded["violations"])
	}
	v := violations[0].(map[string]any)
	if v["rule_id"] != "line_length" || v["severity"] != "warning" {
		t.Fatalf("violation = %v", v)
	}
	if _, hasHint := v["fix_hint"]; hasHint {
		t.Fatal("fix_hint should be omitted when empty")
	}
}

func TestWriteHumanReport_ErrorsSortBeforeWarnings(t *testing.T) {
	buf, err := NewBuffer("Foo.java", []byte("class Foo {\n  int x;\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	res := FileResult{
		Path: "Foo.java",
		Violations: []Violation{
			{RuleID: "whitespace", Severity: SeverityWarning, Message: "trailing space", Span: Span{Start: 0, End: 1}},
			{RuleID: "lexer", Severity: SeverityError, Message: "unterminated comment", Span: Span{Start: 5, End: 6}},
		},
	}

	var out bytes.Buffer
	if err := WriteHumanReport(&out, buf, res, false); err != nil {
		t.Fatal(err)
	}

	text := out.String()
	errIdx := strings.Index(text, "lexer")
	warnIdx := strings.Index(text, "whitespace")
	if errIdx == -1 || warnIdx == -1 || errIdx > warnIdx {
		t.Fatalf("expected error violation before warning violation, got:\n%s", text)
	}
}

func TestWriteHumanReport_NoViolations(t *testing.T) {
	buf, err := NewBuffer("Foo.java", []byte("class Foo {}\n"))
	if err != nil {
		t.Fatal(err)
	}
	res := FileResult{Path: "Foo.java"}

	var out bytes.Buffer
	if err := WriteHumanReport(&out, buf, res, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "(0 violation(s))") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestWriteHumanReport_ExcerptShowsCaretUnderSpan(t *testing.T) {
	buf, err := NewBuffer("Foo.java", []byte("class Foo { int xx; }\n"))
	if err != nil {
		t.Fatal(err)
	}
	res := FileResult{
		Path: "Foo.java",
		Violations: []Violation{
			{RuleID: "naming", Severity: SeverityWarning, Message: "short name", Span: Span{Start: 16, End: 18}},
		},
	}

	var out bytes.Buffer
	if err := WriteHumanReport(&out, buf, res, true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) < 4 {
		t.Fatalf("expected header, violation, excerpt and caret lines, got:\n%s", out.String())
	}
	caretLine := lines[len(lines)-1]
	if !strings.Contains(caretLine, "^^") {
		t.Fatalf("caret line = %q, want two carets for a 2-byte span", caretLine)
	}
}

func TestWriteUnifiedDiff_NoChangeProducesNoHunks(t *testing.T) {
	src := []byte("class Foo {}\n")
	var out bytes.Buffer
	if err := WriteUnifiedDiff(&out, "Foo.java", src, src); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "--- a/Foo.java") || !strings.Contains(text, "+++ b/Foo.java") {
		t.Fatalf("missing file headers: %q", text)
	}
	body := strings.TrimPrefix(text, "--- a/Foo.java\n+++ b/Foo.java\n")
	if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") || strings.Contains(body, "\n-") || strings.Contains(body, "\n+") {
		t.Fatalf("expected no hunk lines for identical input, got:\n%s", text)
	}
}

func TestWriteUnifiedDiff_ReportsAddedAndRemovedLines(t *testing.T) {
	before := []byte("line one\nline two\nline three\n")
	after := []byte("line one\nline TWO\nline three\n")

	var out bytes.Buffer
	if err := WriteUnifiedDiff(&out, "Foo.java", before, after); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "-line two\n") {
		t.Fatalf("expected removed line, got:\n%s", text)
	}
	if !strings.Contains(text, "+line TWO\n") {
		t.Fatalf("expected added line, got:\n%s", text)
	}
	if !strings.Contains(text, " line one\n") || !strings.Contains(text, " line three\n") {
		t.Fatalf("expected unchanged context lines, got:\n%s", text)
	}
}

func TestDetectFormat_NonFileWriterIsMachine(t *testing.T) {
	var out bytes.Buffer
	if got := DetectFormat(&out); got != FormatMachine {
		t.Fatalf("DetectFormat(bytes.Buffer) = %v, want FormatMachine", got)
	}
}
