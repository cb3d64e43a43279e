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
	"sort"
)

// ConfigDocument is one layer of configuration input, already decoded from
// whatever serialization the caller used (YAML, JSON, or a hand-built map
// in tests). The resolver works purely in terms of this map-of-maps shape
// and never parses a file format itself; that boundary is owned by
// cmd/stylerfmt.
type ConfigDocument map[string]any

// RuleConfig is one rule's resolved settings: whether it is enabled and
// its option bag.
type RuleConfig struct {
	Enabled bool
	Options map[string]any
}

// EffectiveConfiguration is the fully merged, fully resolved configuration
// for one run: every profile's `extends` chain flattened, every layer
// merged in precedence order, every rule name validated against the
// registry.
type EffectiveConfiguration struct {
	Rules           map[string]RuleConfig
	LanguageVersion JavaVersion
}

// profile is one named configuration layer as found under a document's
// "profiles" key, prior to `extends` resolution.
type profile struct {
	name    string
	extends string
	rules   map[string]any
}

// ConfigError reports a configuration-layer failure; it always maps to
// ErrConfigurationInvalid, ErrUnknownRule, or ErrConfigurationCycle.
type ConfigError struct {
	Kind    ErrorKind
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// ResolveConfiguration merges a precedence-ordered list of config
// documents (lowest precedence first: built-in defaults, then user home
// config, then project config, then an explicit profile selection, then
// CLI overrides last) into one EffectiveConfiguration, honoring profile
// `extends` inheritance within each document and rejecting extends
// cycles, unknown rule names, and an unparseable language_version. Rule
// option values are not checked here; EffectiveConfiguration.Validate does
// that.
//
// The BindingEnv parent-chain lookup style (child scope shadows parent,
// falling through on miss) is generalized here from a single linear chain
// to an explicit extends graph per profile, since a profile's parent is
// named rather than lexically nested.
func ResolveConfiguration(docs []ConfigDocument, profileName string, registry *RuleRegistry) (*EffectiveConfiguration, error) {
	eff := &EffectiveConfiguration{Rules: make(map[string]RuleConfig), LanguageVersion: LatestJavaVersion}
	for name, r := range registry.All() {
		eff.Rules[name] = RuleConfig{Enabled: r.DefaultEnabled(), Options: map[string]any{}}
	}

	for _, doc := range docs {
		if raw, ok := doc["language_version"]; ok {
			s := fmt.Sprintf("%v", raw)
			v, err := ParseJavaVersion(s)
			if err != nil {
				return nil, &ConfigError{Kind: ErrConfigurationInvalid, Message: err.Error()}
			}
			eff.LanguageVersion = v
		}
		profiles, err := parseProfiles(doc)
		if err != nil {
			return nil, err
		}
		selected := profileName
		if selected == "" {
			selected = "default"
		}
		chain, err := resolveExtendsChain(profiles, selected)
		if err != nil {
			return nil, err
		}
		// Apply from the base ancestor down to the most derived profile, so
		// a derived profile's settings win over its ancestor's, matching
		// extends semantics.
		for i := len(chain) - 1; i >= 0; i-- {
			mergeRules(eff, chain[i].rules)
		}
		// A document with no "profiles" key at all contributes its
		// top-level "rules" map directly (the common case: a flat
		// .styler.yml with no profile layering).
		if len(profiles) == 0 {
			if rules, ok := doc["rules"].(map[string]any); ok {
				mergeRules(eff, rules)
			}
		}
	}

	for name := range eff.Rules {
		if _, ok := registry.Lookup(name); !ok {
			return nil, &ConfigError{Kind: ErrUnknownRule, Message: unknownRuleMessage(name, registry)}
		}
	}
	return eff, nil
}

// unknownRuleMessage builds the "unknown rule" diagnostic, appending a
// "did you mean" suggestion when one rule id in the registry is close
// enough to the requested name to plausibly be a typo.
func unknownRuleMessage(name string, registry *RuleRegistry) string {
	candidates := make([]string, 0, len(registry.All()))
	for id := range registry.All() {
		candidates = append(candidates, id)
	}
	sort.Strings(candidates)
	if suggestion := didYouMean(name, candidates); suggestion != "" {
		return fmt.Sprintf("unknown rule %q, did you mean %q?", name, suggestion)
	}
	return fmt.Sprintf("unknown rule %q", name)
}

func parseProfiles(doc ConfigDocument) (map[string]*profile, error) {
	raw, ok := doc["profiles"]
	if !ok {
		return nil, nil
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, &ConfigError{Kind: ErrConfigurationInvalid, Message: "\"profiles\" must be a map"}
	}
	out := make(map[string]*profile, len(m))
	for name, v := range m {
		pm, ok := v.(map[string]any)
		if !ok {
			return nil, &ConfigError{Kind: ErrConfigurationInvalid, Message: fmt.Sprintf("profile %q must be a map", name)}
		}
		p := &profile{name: name}
		if ext, ok := pm["extends"].(string); ok {
			p.extends = ext
		}
		if rules, ok := pm["rules"].(map[string]any); ok {
			p.rules = rules
		}
		out[name] = p
	}
	return out, nil
}

// resolveExtendsChain walks from name up through "extends" parents,
// returning the chain from most-derived to least-derived (name first). A
// name absent from profiles (including the synthetic "default" when no
// profile of that name is declared) resolves to an empty chain rather
// than an error, so a document with no matching profile simply
// contributes nothing for this layer.
func resolveExtendsChain(profiles map[string]*profile, name string) ([]*profile, error) {
	p, ok := profiles[name]
	if !ok {
		return nil, nil
	}
	var chain []*profile
	seen := map[string]bool{}
	for p != nil {
		if seen[p.name] {
			names := make([]string, 0, len(seen))
			for n := range seen {
				names = append(names, n)
			}
			sort.Strings(names)
			return nil, &ConfigError{Kind: ErrConfigurationCycle, Message: fmt.Sprintf("profile extends cycle: %v", names)}
		}
		seen[p.name] = true
		chain = append(chain, p)
		if p.extends == "" {
			break
		}
		next, ok := profiles[p.extends]
		if !ok {
			return nil, &ConfigError{Kind: ErrConfigurationInvalid, Message: fmt.Sprintf("profile %q extends unknown profile %q", p.name, p.extends)}
		}
		p = next
	}
	return chain, nil
}

// mergeRules applies one layer's rule settings on top of eff, entry by
// entry. A rule's "enabled" flag and its option bag are merged
// independently: a layer that sets only an option for a rule doesn't
// implicitly re-enable or disable it.
func mergeRules(eff *EffectiveConfiguration, rules map[string]any) {
	for ruleName, v := range rules {
		rc := eff.Rules[ruleName]
		if rc.Options == nil {
			rc.Options = map[string]any{}
		}
		switch val := v.(type) {
		case bool:
			rc.Enabled = val
		case map[string]any:
			if en, ok := val["enabled"].(bool); ok {
				rc.Enabled = en
			}
			for k, o := range val {
				if k == "enabled" {
					continue
				}
				rc.Options[k] = o
			}
		}
		eff.Rules[ruleName] = rc
	}
}

// Validate checks every enabled rule's options against its declared
// schema, returning the first violation found; used once after merging,
// before the engine runs any rule against real files.
func (c *EffectiveConfiguration) Validate(registry *RuleRegistry) error {
	for name, rc := range c.Rules {
		if !rc.Enabled {
			continue
		}
		r, ok := registry.Lookup(name)
		if !ok {
			return &ConfigError{Kind: ErrUnknownRule, Message: unknownRuleMessage(name, registry)}
		}
		if err := r.ValidateOptions(rc.Options); err != nil {
			return &ConfigError{Kind: ErrConfigurationInvalid, Message: fmt.Sprintf("rule %q: %v", name, err)}
		}
	}
	return nil
}
