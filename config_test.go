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
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestResolveConfiguration_FlatRulesDocument(t *testing.T) {
	reg := NewRuleRegistry()
	docs := []ConfigDocument{
		{"rules": map[string]any{
			"line_length": map[string]any{"enabled": true, "max_length": float64(100)},
		}},
	}
	eff, err := ResolveConfiguration(docs, "", reg)
	if err != nil {
		t.Fatalf("ResolveConfiguration: %v", err)
	}
	rc := eff.Rules["line_length"]
	if !rc.Enabled {
		t.Fatal("expected line_length enabled")
	}
	if diff := cmp.Diff(float64(100), rc.Options["max_length"]); diff != "" {
		t.Fatalf("+want, -got: %s", diff)
	}
}

func TestResolveConfiguration_ExtendsChainAppliesBaseFirst(t *testing.T) {
	reg := NewRuleRegistry()
	docs := []ConfigDocument{
		{"profiles": map[string]any{
			"base": map[string]any{
				"rules": map[string]any{"whitespace": true},
			},
			"derived": map[string]any{
				"extends": "base",
				"rules":   map[string]any{"whitespace": false},
			},
		}},
	}
	eff, err := ResolveConfiguration(docs, "derived", reg)
	if err != nil {
		t.Fatalf("ResolveConfiguration: %v", err)
	}
	if eff.Rules["whitespace"].Enabled {
		t.Fatal("expected the derived profile's disable to win over its base")
	}
}

func TestResolveConfiguration_ExtendsCycleIsRejected(t *testing.T) {
	reg := NewRuleRegistry()
	docs := []ConfigDocument{
		{"profiles": map[string]any{
			"a": map[string]any{"extends": "b"},
			"b": map[string]any{"extends": "a"},
		}},
	}
	_, err := ResolveConfiguration(docs, "a", reg)
	if err == nil {
		t.Fatal("expected an extends-cycle error")
	}
	ce, ok := err.(*ConfigError)
	if !ok || ce.Kind != ErrConfigurationCycle {
		t.Fatalf("got %v, want ErrConfigurationCycle", err)
	}
}

func TestResolveConfiguration_UnknownRuleIsRejected(t *testing.T) {
	reg := NewRuleRegistry()
	docs := []ConfigDocument{
		{"rules": map[string]any{"not_a_real_rule": true}},
	}
	_, err := ResolveConfiguration(docs, "", reg)
	if err == nil {
		t.Fatal("expected an unknown-rule error")
	}
	if ce, ok := err.(*ConfigError); !ok || ce.Kind != ErrUnknownRule {
		t.Fatalf("got %v, want ErrUnknownRule", err)
	}
}

func TestResolveConfiguration_OptionOnlyLayerDoesNotReEnableADisabledRule(t *testing.T) {
	reg := NewRuleRegistry()
	docs := []ConfigDocument{
		{"rules": map[string]any{"line_length": false}},
		{"rules": map[string]any{"line_length": map[string]any{"max_length": float64(80)}}},
	}
	eff, err := ResolveConfiguration(docs, "", reg)
	if err != nil {
		t.Fatalf("ResolveConfiguration: %v", err)
	}
	rc := eff.Rules["line_length"]
	if rc.Enabled {
		t.Fatal("an option-only layer must not implicitly re-enable a previously disabled rule")
	}
	if diff := cmp.Diff(float64(80), rc.Options["max_length"]); diff != "" {
		t.Fatalf("+want, -got: %s", diff)
	}
}

func TestResolveConfiguration_LaterDocumentsWinOverEarlier(t *testing.T) {
	reg := NewRuleRegistry()
	docs := []ConfigDocument{
		{"rules": map[string]any{"whitespace": true}},
		{"rules": map[string]any{"whitespace": false}},
	}
	eff, err := ResolveConfiguration(docs, "", reg)
	if err != nil {
		t.Fatalf("ResolveConfiguration: %v", err)
	}
	if eff.Rules["whitespace"].Enabled {
		t.Fatal("expected the later document's setting to win")
	}
}

func TestResolveConfiguration_LanguageVersion(t *testing.T) {
	cases := []struct {
		raw     string
		want    JavaVersion
		wantErr bool
	}{
		{"21", Java21, false},
		{"1.8", Java8, false},
		{"", 0, false}, // unset: defaults to latest, handled below
		{"99", 0, true},
	}
	reg := NewRuleRegistry()
	for i, c := range cases {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			var docs []ConfigDocument
			if c.raw != "" {
				docs = []ConfigDocument{{"language_version": c.raw}}
			}
			eff, err := ResolveConfiguration(docs, "", reg)
			if c.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveConfiguration: %v", err)
			}
			want := c.want
			if c.raw == "" {
				want = LatestJavaVersion
			}
			if eff.LanguageVersion != want {
				t.Fatalf("LanguageVersion = %v, want %v", eff.LanguageVersion, want)
			}
		})
	}
}

func TestEffectiveConfiguration_ValidateRejectsBadOptions(t *testing.T) {
	reg := NewRuleRegistry()
	eff := &EffectiveConfiguration{Rules: map[string]RuleConfig{
		"line_length": {Enabled: true, Options: map[string]any{"max_length": "not a number"}},
	}}
	if err := eff.Validate(reg); err == nil {
		t.Fatal("expected Validate to reject a non-numeric max_length")
	}
}
