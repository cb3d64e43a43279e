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
	"fmt"
	"sort"
)

// Mode selects whether the engine produces rewritten output and writes it
// back (Format), only reports what it would have changed (Check), or
// computes the rewritten output without ever writing it to disk (Diff, for
// a caller that wants to render a unified diff of proposed edits).
type Mode int

const (
	ModeFormat Mode = iota
	ModeCheck
	ModeDiff
)

// FileResult is the outcome of running the rule engine over one file.
type FileResult struct {
	Path       string
	Mode       Mode
	Output     []byte // populated in ModeFormat and ModeDiff
	Changed    bool
	Violations []Violation
	Stats      FileStats
}

// CheckFailed reports whether check mode should treat this file as
// non-conforming: any error-severity violation, or any applied edit that
// altered the content. Whitespace-only edits are not told apart from other
// edits: any change at all counts.
func (r *FileResult) CheckFailed() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return r.Changed
}

// RunRules executes every enabled rule over one parsed file and produces
// its FileResult. Rule invocations are independent and pure (spec §4.6),
// so the engine runs them sequentially here, "simpler and currently
// preferred for correctness" per the same section; a future engine could
// fan them out with errgroup without changing this function's contract.
// Cancellation is polled at the coarse checkpoint between rule
// invocations: once ctx is done, no further rules run and the edits and
// violations collected so far are resolved and returned as-is.
func RunRules(ctx context.Context, buf *Buffer, arena *Arena, tokens []Token, trivia []Trivia, root NodeId, cfg *EffectiveConfiguration, registry *RuleRegistry, mode Mode) FileResult {
	var allEdits []TextEdit
	var allViolations []Violation

	names := make([]string, 0, len(cfg.Rules))
	for name, rc := range cfg.Rules {
		if rc.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names) // deterministic invocation order regardless of map iteration

	rctx := &RuleContext{Buf: buf, Arena: arena, Tokens: tokens, Trivia: trivia, Root: root, Ctx: ctx}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			break // cooperative cancellation: stop starting new rules
		}
		r, ok := registry.Lookup(name)
		if !ok {
			continue // unreachable once ResolveConfiguration has validated, kept defensive for direct callers
		}
		rctx.Options = cfg.Rules[name].Options
		edits, violations := applyRuleRecovered(rctx, r, name)
		for i := range edits {
			edits[i].RuleID = name
			edits[i].Priority = r.Priority()
		}
		explainf(buf.Path, name, "%d edit(s), %d violation(s)", len(edits), len(violations))
		allEdits = append(allEdits, edits...)
		allViolations = append(allViolations, violations...)
	}

	surviving, conflictViolations := resolveConflicts(allEdits)
	allViolations = append(allViolations, conflictViolations...)

	output, changed := applyEdits(buf.Bytes(), surviving)

	res := FileResult{Path: buf.Path, Mode: mode, Violations: allViolations, Changed: changed}
	if mode == ModeFormat || mode == ModeDiff {
		res.Output = output
	}
	return res
}

// applyRuleRecovered calls r.Apply, recovering a panic into a single
// error-severity RuleApplyFailure violation so one broken rule never takes
// down the whole run (spec §7's propagation policy: rule failures become
// violations, never exceptional control flow across component boundaries).
func applyRuleRecovered(ctx *RuleContext, r Rule, name string) (edits []TextEdit, violations []Violation) {
	defer func() {
		if rec := recover(); rec != nil {
			logRuleApplyPanic(ctx.Buf.Path, name, rec)
			edits = nil
			violations = []Violation{{
				RuleID:   name,
				Severity: SeverityError,
				Message:  fmt.Sprintf("rule %q panicked: %v", name, rec),
			}}
		}
	}()
	return r.Apply(ctx)
}

// resolveConflicts implements spec §4.6 step 3: two edits conflict iff
// their spans overlap and they are not structurally identical. Resolution
// order: (a) higher priority wins; (b) earlier start wins; (c) smaller
// span wins; (d) remaining ties drop the edit whose rule id sorts later
// lexicographically and report a RuleConflict violation.
func resolveConflicts(edits []TextEdit) ([]TextEdit, []Violation) {
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start < sorted[j].Span.Start
	})

	kept := make([]bool, len(sorted))
	for i := range kept {
		kept[i] = true
	}
	var violations []Violation

	for i := 0; i < len(sorted); i++ {
		if !kept[i] {
			continue
		}
		for j := i + 1; j < len(sorted); j++ {
			if !kept[j] {
				continue
			}
			if sorted[j].Span.Start >= sorted[i].Span.End {
				break // sorted by start; no further edit can overlap i
			}
			if !sorted[i].Span.Overlaps(sorted[j].Span) {
				continue
			}
			if identicalEdit(sorted[i], sorted[j]) {
				kept[j] = false // structurally identical: keep one silently
				continue
			}
			loserIsJ, reportConflict := pickLoser(sorted[i], sorted[j])
			loser := j
			if !loserIsJ {
				loser = i
			}
			kept[loser] = false
			if reportConflict {
				l := sorted[loser]
				violations = append(violations, Violation{
					RuleID:   l.RuleID,
					Severity: SeverityWarning,
					Message:  "edit dropped due to an unbreakable tie with another rule's overlapping edit",
					Span:     l.Span,
				})
			}
			if loser == i {
				break // i itself lost; stop comparing it against later edits
			}
		}
	}

	out := make([]TextEdit, 0, len(sorted))
	for i, e := range sorted {
		if kept[i] {
			out = append(out, e)
		}
	}
	return out, violations
}

func identicalEdit(a, b TextEdit) bool {
	return a.Span == b.Span && a.NewText == b.NewText
}

// pickLoser decides which of two conflicting edits (a, b) is dropped,
// applying spec §4.6 step 3's criteria in order: higher priority wins,
// then earlier start, then smaller span, then — only at this final,
// otherwise-unbreakable tie — the edit whose rule id sorts later
// alphabetically is dropped and the conflict is reported as a violation.
// The first three criteria are ordinary deterministic resolution, not
// reportable conflicts.
func pickLoser(a, b TextEdit) (loserIsB bool, report bool) {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority, false
	}
	if a.Span.Start != b.Span.Start {
		return a.Span.Start < b.Span.Start, false
	}
	if a.Span.Len() != b.Span.Len() {
		return a.Span.Len() < b.Span.Len(), false
	}
	return a.RuleID < b.RuleID, true
}

// applyEdits sorts edits by start (stable) and applies them right-to-left
// so earlier offsets stay valid, producing a fresh byte slice. changed
// reports whether any edit actually altered the content.
func applyEdits(src []byte, edits []TextEdit) ([]byte, bool) {
	if len(edits) == 0 {
		out := make([]byte, len(src))
		copy(out, src)
		return out, false
	}
	sorted := make([]TextEdit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	out := make([]byte, len(src))
	copy(out, src)
	changed := false
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		if string(out[e.Span.Start:e.Span.End]) != e.NewText {
			changed = true
		}
		tail := append([]byte{}, out[e.Span.End:]...)
		out = append(out[:e.Span.Start], append([]byte(e.NewText), tail...)...)
	}
	return out, changed
}
