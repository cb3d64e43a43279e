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
)

// TextEdit replaces the bytes in Span with NewText. Span.Empty() means a
// pure insertion. Edits from the same rule invocation never overlap; edits
// from different rules may, and are resolved by the engine.
type TextEdit struct {
	Span     Span
	NewText  string
	RuleID   string
	Priority int
}

// Severity classifies a Violation for reporting and for check-mode
// failure determination.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Violation is a single rule finding, with or without an associated edit.
type Violation struct {
	RuleID   string
	Severity Severity
	Message  string
	Span     Span
}

// RuleContext is the read-only view a Rule's Apply method operates over.
// Per spec, a rule is pure over these inputs: the same Arena/Buffer/Tokens
// and Options always produce the same edits and violations.
type RuleContext struct {
	Buf     *Buffer
	Arena   *Arena
	Tokens  []Token
	Trivia  []Trivia
	Root    NodeId
	Options map[string]any
	// Ctx carries the run's cancellation signal. It is nil when a rule is
	// exercised directly (outside RunRules), in which case callers should
	// treat a nil Ctx the same as context.Background().
	Ctx context.Context
}

// context returns ctx.Ctx, defaulting to context.Background() so direct
// rule-test callers that never set it don't have to.
func (ctx *RuleContext) context() context.Context {
	if ctx.Ctx == nil {
		return context.Background()
	}
	return ctx.Ctx
}

// Rule is the capability every formatting/linting rule implements.
type Rule interface {
	ID() string
	DefaultEnabled() bool
	Priority() int
	ValidateOptions(opts map[string]any) error
	Apply(ctx *RuleContext) ([]TextEdit, []Violation)
}

// RuleRegistry is the static, process-wide set of known rules, keyed by
// id. It is immutable after construction.
type RuleRegistry struct {
	rules map[string]Rule
}

// NewRuleRegistry builds a registry containing the built-in rules plus any
// extras passed in, so external integrations can register additional
// rules through the same capability interface without touching the
// built-ins.
func NewRuleRegistry(extra ...Rule) *RuleRegistry {
	reg := &RuleRegistry{rules: make(map[string]Rule)}
	for _, r := range builtinRules() {
		reg.rules[r.ID()] = r
	}
	for _, r := range extra {
		reg.rules[r.ID()] = r
	}
	return reg
}

func builtinRules() []Rule {
	return []Rule{
		newLineLengthRule(),
		newImportOrganizerRule(),
		newWhitespaceRule(),
		newBracePlacementRule(),
		newIndentationRule(),
	}
}

// Lookup returns a rule by id.
func (reg *RuleRegistry) Lookup(id string) (Rule, bool) {
	r, ok := reg.rules[id]
	return r, ok
}

// All returns every registered rule, keyed by id.
func (reg *RuleRegistry) All() map[string]Rule { return reg.rules }

// optionString/optionInt/optionBool fetch a typed option with a default,
// shared by every rule_*.go file's ValidateOptions/Apply implementations.

func optionString(opts map[string]any, key, def string) string {
	if v, ok := opts[key].(string); ok {
		return v
	}
	return def
}

func optionBool(opts map[string]any, key string, def bool) bool {
	if v, ok := opts[key].(bool); ok {
		return v
	}
	return def
}

func optionInt(opts map[string]any, key string, def int) int {
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func optionStringSlice(opts map[string]any, key string, def []string) []string {
	raw, ok := opts[key]
	if !ok {
		return def
	}
	list, ok := raw.([]any)
	if !ok {
		return def
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// errOption reports an invalid option value in a uniform shape.
func errOption(rule, key string, got any) error {
	return fmt.Errorf("option %q has invalid value %v for rule %q", key, got, rule)
}
