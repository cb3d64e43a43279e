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
	"context"
	"testing"
)

// panickyRule is a test-only Rule whose Apply always panics, used to
// exercise RunRules' panic recovery.
type panickyRule struct{}

func (panickyRule) ID() string                          { return "panicky" }
func (panickyRule) DefaultEnabled() bool                 { return true }
func (panickyRule) Priority() int                        { return 1 }
func (panickyRule) ValidateOptions(map[string]any) error { return nil }
func (panickyRule) Apply(*RuleContext) ([]TextEdit, []Violation) {
	panic("boom")
}

func TestRunRules_PanickingRuleBecomesAnErrorViolationInsteadOfCrashing(t *testing.T) {
	src := "class Foo {}\n"
	buf, err := NewBuffer("test.java", []byte(src))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	tokens, trivia, _ := NewLexer(buf).Lex()
	parsed := ParseCompilationUnit(buf, tokens, trivia)

	registry := NewRuleRegistry(panickyRule{})
	cfg := &EffectiveConfiguration{Rules: map[string]RuleConfig{
		"panicky": {Enabled: true},
	}}

	res := RunRules(context.Background(), buf, parsed.Arena, tokens, trivia, parsed.Root, cfg, registry, ModeCheck)

	if len(res.Violations) != 1 {
		t.Fatalf("expected exactly one violation from the recovered panic, got %d: %+v", len(res.Violations), res.Violations)
	}
	v := res.Violations[0]
	if v.Severity != SeverityError {
		t.Fatalf("expected the recovered panic reported as an error-severity violation, got %v", v.Severity)
	}
	if v.RuleID != "panicky" {
		t.Fatalf("violation RuleID = %q, want %q", v.RuleID, "panicky")
	}
}

func TestRunRules_CancelledContextStopsBeforeFurtherRules(t *testing.T) {
	src := "class Foo {}\n"
	buf, err := NewBuffer("test.java", []byte(src))
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	tokens, trivia, _ := NewLexer(buf).Lex()
	parsed := ParseCompilationUnit(buf, tokens, trivia)

	registry := NewRuleRegistry()
	cfg := &EffectiveConfiguration{Rules: map[string]RuleConfig{
		"line_length": {Enabled: true, Options: map[string]any{}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := RunRules(ctx, buf, parsed.Arena, tokens, trivia, parsed.Root, cfg, registry, ModeCheck)
	if len(res.Violations) != 0 {
		t.Fatalf("expected no violations once ctx is already cancelled before the first rule, got %+v", res.Violations)
	}
}

func TestApplyEdits_RightToLeftKeepsOffsetsValid(t *testing.T) {
	src := []byte("abcdef")
	edits := []TextEdit{
		{Span: Span{Start: 1, End: 2}, NewText: "XX", RuleID: "r1"}, // "b" -> "XX"
		{Span: Span{Start: 4, End: 5}, NewText: "Y", RuleID: "r2"},  // "e" -> "Y"
	}
	out, changed := applyEdits(src, edits)
	if !changed {
		t.Fatal("expected changed = true")
	}
	if got, want := string(out), "aXXcdYf"; got != want {
		t.Fatalf("applyEdits = %q, want %q", got, want)
	}
}

func TestApplyEdits_NoEditsReportsUnchanged(t *testing.T) {
	src := []byte("abc")
	out, changed := applyEdits(src, nil)
	if changed {
		t.Fatal("expected changed = false")
	}
	if string(out) != "abc" {
		t.Fatalf("applyEdits = %q", out)
	}
}

func TestResolveConflicts_HigherPriorityWins(t *testing.T) {
	edits := []TextEdit{
		{Span: Span{Start: 0, End: 5}, NewText: "a", RuleID: "low", Priority: 10},
		{Span: Span{Start: 2, End: 3}, NewText: "b", RuleID: "high", Priority: 50},
	}
	surviving, violations := resolveConflicts(edits)
	if len(surviving) != 1 || surviving[0].RuleID != "high" {
		t.Fatalf("surviving = %+v, want only the high-priority edit", surviving)
	}
	// A priority difference is ordinary deterministic resolution, not a
	// reportable conflict; only the final rule-id tiebreak is reported.
	if len(violations) != 0 {
		t.Fatalf("expected no conflict violation for a priority-resolved pair, got %d", len(violations))
	}
}

func TestResolveConflicts_IdenticalEditsKeepOneSilently(t *testing.T) {
	edits := []TextEdit{
		{Span: Span{Start: 0, End: 3}, NewText: "x", RuleID: "a", Priority: 10},
		{Span: Span{Start: 0, End: 3}, NewText: "x", RuleID: "b", Priority: 10},
	}
	surviving, violations := resolveConflicts(edits)
	if len(surviving) != 1 {
		t.Fatalf("expected exactly one surviving edit, got %d", len(surviving))
	}
	if len(violations) != 0 {
		t.Fatalf("identical edits should not be reported as a conflict, got %d", len(violations))
	}
}

func TestResolveConflicts_FinalTieDropsAlphabeticallyLaterRuleID(t *testing.T) {
	edits := []TextEdit{
		{Span: Span{Start: 0, End: 3}, NewText: "x", RuleID: "zzz_rule", Priority: 10},
		{Span: Span{Start: 0, End: 3}, NewText: "y", RuleID: "aaa_rule", Priority: 10},
	}
	surviving, violations := resolveConflicts(edits)
	if len(surviving) != 1 || surviving[0].RuleID != "aaa_rule" {
		t.Fatalf("surviving = %+v, want only aaa_rule to survive", surviving)
	}
	if len(violations) != 1 || violations[0].RuleID != "zzz_rule" {
		t.Fatalf("violations = %+v, want zzz_rule reported as dropped", violations)
	}
}

func TestResolveConflicts_NonOverlappingEditsBothSurvive(t *testing.T) {
	edits := []TextEdit{
		{Span: Span{Start: 0, End: 2}, NewText: "a", RuleID: "r1", Priority: 10},
		{Span: Span{Start: 5, End: 7}, NewText: "b", RuleID: "r2", Priority: 20},
	}
	surviving, violations := resolveConflicts(edits)
	if len(surviving) != 2 {
		t.Fatalf("expected both edits to survive, got %d", len(surviving))
	}
	if len(violations) != 0 {
		t.Fatalf("expected no conflict violations, got %d", len(violations))
	}
}
