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
	"path"
	"regexp"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// importPatternCacheSize bounds the compiled-glob-pattern cache shared by
// every importOrganizerRule instance within a process; group patterns
// repeat heavily across files in one run (the same config applies to
// every file), so a small read-mostly cache avoids recompiling the same
// glob into a regexp thousands of times.
const importPatternCacheSize = 256

var importPatternCache = mustNewPatternCache()

func mustNewPatternCache() *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](importPatternCacheSize)
	if err != nil {
		panic(err) // only fails for a non-positive size, which importPatternCacheSize never is
	}
	return c
}

// importOrganizerRule groups, sorts, and optionally prunes import
// declarations.
type importOrganizerRule struct{}

func newImportOrganizerRule() Rule { return &importOrganizerRule{} }

func (r *importOrganizerRule) ID() string           { return "import_organizer" }
func (r *importOrganizerRule) DefaultEnabled() bool { return true }
func (r *importOrganizerRule) Priority() int        { return 60 }

func (r *importOrganizerRule) ValidateOptions(opts map[string]any) error {
	for _, pat := range optionStringSlice(opts, "groups", nil) {
		if _, err := compileGroupPattern(pat); err != nil {
			return fmt.Errorf("rule %q: invalid group pattern %q: %w", r.ID(), pat, err)
		}
	}
	return nil
}

// compileGroupPattern turns a glob-like group pattern ("java.*",
// "com.acme.**") into a cached regexp, consulting importPatternCache
// first.
func compileGroupPattern(pat string) (*regexp.Regexp, error) {
	if re, ok := importPatternCache.Get(pat); ok {
		return re, nil
	}
	if ok, _ := regexp.MatchString(`^[\pL\pN_$.*]+$`, pat); !ok {
		return nil, fmt.Errorf("pattern may only contain package-name characters, '.' and '*'")
	}
	quoted := regexp.QuoteMeta(pat)
	// Both "**" and a lone trailing "*" mean "this prefix, plus any number
	// of further dotted segments" — there is no meaningful distinction
	// between the two for package FQNs the way there is for file-path
	// globs, since a single segment can never itself contain a dot.
	quoted = strings.ReplaceAll(quoted, `\*\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\*`, `.*`)
	re, err := regexp.Compile("^" + quoted + "$")
	if err != nil {
		return nil, err
	}
	importPatternCache.Add(pat, re)
	return re, nil
}

type importEntry struct {
	node    NodeId
	fqn     string
	simple  string
	group   int
	span    Span
	trailer Span // not set or read; reordering rewrites the whole import block
}

func (r *importOrganizerRule) Apply(ctx *RuleContext) ([]TextEdit, []Violation) {
	groups := optionStringSlice(ctx.Options, "groups", []string{"java.*", "javax.*", "*"})
	removeUnused := optionBool(ctx.Options, "remove_unused", false)
	mergeWildcards := optionBool(ctx.Options, "merge_wildcards", false)

	patterns := make([]*regexp.Regexp, len(groups))
	for i, g := range groups {
		re, err := compileGroupPattern(g)
		if err != nil {
			return nil, nil // already rejected by ValidateOptions; defensive no-op
		}
		patterns[i] = re
	}

	var imports []importEntry
	for _, c := range ctx.Arena.Children(ctx.Root) {
		if ctx.Arena.Kind(c) != NodeImportDecl {
			continue
		}
		children := ctx.Arena.Children(c)
		if len(children) == 0 {
			continue
		}
		qn := ctx.Arena.QualifiedName(children[0])
		fqn := strings.Join(qn.Parts, ".")
		simple := fqn
		if len(qn.Parts) > 0 {
			simple = qn.Parts[len(qn.Parts)-1]
		}
		imports = append(imports, importEntry{
			node:   c,
			fqn:    fqn,
			simple: simple,
			group:  groupIndexOf(fqn, patterns),
			span:   ctx.Arena.Span(c),
		})
	}
	if len(imports) == 0 {
		return nil, nil
	}

	if mergeWildcards {
		imports = mergeWildcardGroups(imports)
	}

	var violations []Violation
	if removeUnused {
		used := usedSimpleNames(ctx)
		kept := imports[:0]
		for _, imp := range imports {
			if imp.simple == "*" {
				kept = append(kept, imp) // wildcard removal needs classpath resolution, out of scope per spec
				continue
			}
			if used[imp.simple] {
				kept = append(kept, imp)
				continue
			}
			violations = append(violations, Violation{
				RuleID:   r.ID(),
				Severity: SeverityWarning,
				Message:  fmt.Sprintf("unused import %q", imp.fqn),
				Span:     imp.span,
			})
		}
		imports = kept
	}

	sort.SliceStable(imports, func(i, j int) bool {
		if imports[i].group != imports[j].group {
			return imports[i].group < imports[j].group
		}
		return imports[i].fqn < imports[j].fqn
	})

	rendered := renderImportBlock(ctx.Buf, imports)
	blockSpan := importBlockSpan(ctx)
	edits := []TextEdit{{Span: blockSpan, NewText: rendered}}
	return edits, violations
}

func groupIndexOf(fqn string, patterns []*regexp.Regexp) int {
	for i, re := range patterns {
		if re.MatchString(fqn) {
			return i
		}
	}
	return len(patterns)
}

// mergeWildcardGroups collapses "a.b.C" and "a.b.D" into "a.b.*" when a
// wildcard import for that package already exists, dropping the
// now-redundant specific imports; it does not synthesize new wildcards.
func mergeWildcardGroups(imports []importEntry) []importEntry {
	wildcardPkgs := map[string]bool{}
	for _, imp := range imports {
		if imp.simple == "*" {
			wildcardPkgs[path.Dir(strings.ReplaceAll(imp.fqn, ".", "/"))] = true
		}
	}
	if len(wildcardPkgs) == 0 {
		return imports
	}
	out := imports[:0]
	for _, imp := range imports {
		if imp.simple != "*" {
			pkg := path.Dir(strings.ReplaceAll(imp.fqn, ".", "/"))
			if wildcardPkgs[pkg] {
				continue
			}
		}
		out = append(out, imp)
	}
	return out
}

// usedSimpleNames scans every identifier token outside of import
// declarations themselves, returning the set of simple names referenced
// anywhere in the rest of the file (spec's "post-comment-strip token
// stream" definition of usage).
func usedSimpleNames(ctx *RuleContext) map[string]bool {
	var importSpans []Span
	for _, n := range originalImportNodes(ctx) {
		importSpans = append(importSpans, ctx.Arena.Span(n))
	}
	used := map[string]bool{}
	for _, t := range ctx.Tokens {
		if t.Kind != TokIdent {
			continue
		}
		inImport := false
		for _, s := range importSpans {
			if s.Contains(t.Span) {
				inImport = true
				break
			}
		}
		if !inImport {
			used[t.Literal] = true
		}
	}
	return used
}

func originalImportNodes(ctx *RuleContext) []NodeId {
	var out []NodeId
	for _, c := range ctx.Arena.Children(ctx.Root) {
		if ctx.Arena.Kind(c) == NodeImportDecl {
			out = append(out, c)
		}
	}
	return out
}

// importBlockSpan covers every original import declaration, from the
// start of the first to the end of the last, so the rewritten block can
// replace them all in one edit including the blank-line separators
// between groups.
func importBlockSpan(ctx *RuleContext) Span {
	nodes := originalImportNodes(ctx)
	if len(nodes) == 0 {
		return Span{}
	}
	return Span{Start: ctx.Arena.Span(nodes[0]).Start, End: ctx.Arena.Span(nodes[len(nodes)-1]).End}
}

func renderImportBlock(buf *Buffer, imports []importEntry) string {
	var b strings.Builder
	lastGroup := -1
	for i, imp := range imports {
		if lastGroup != -1 && imp.group != lastGroup {
			b.WriteString("\n")
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("import ")
		b.WriteString(imp.fqn)
		b.WriteString(";")
		lastGroup = imp.group
	}
	return b.String()
}
