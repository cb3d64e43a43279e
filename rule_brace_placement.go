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

// bracePlacementRule wraps or unwraps an opening brace onto the same
// line as its preceding token, or onto its own line, per construct
// category (classes, methods, control structures).
type bracePlacementRule struct{}

func newBracePlacementRule() Rule { return &bracePlacementRule{} }

func (r *bracePlacementRule) ID() string           { return "brace_placement" }
func (r *bracePlacementRule) DefaultEnabled() bool { return true }
func (r *bracePlacementRule) Priority() int        { return 40 }

var validBraceStyles = map[string]bool{"same_line": true, "next_line": true}

func (r *bracePlacementRule) ValidateOptions(opts map[string]any) error {
	for _, key := range []string{"classes", "methods", "control_structures"} {
		if v, ok := opts[key]; ok {
			s, isStr := v.(string)
			if !isStr || !validBraceStyles[s] {
				return errOption(r.ID(), key, v)
			}
		}
	}
	return nil
}

func (r *bracePlacementRule) Apply(ctx *RuleContext) ([]TextEdit, []Violation) {
	classesStyle := optionString(ctx.Options, "classes", "same_line")
	methodsStyle := optionString(ctx.Options, "methods", "same_line")
	controlStyle := optionString(ctx.Options, "control_structures", "same_line")

	var edits []TextEdit
	ctx.Arena.VisitContext(ctx.context(), ctx.Root, func(id NodeId) {
		var style string
		switch ctx.Arena.Kind(id) {
		case NodeClassDecl, NodeInterfaceDecl, NodeEnumDecl, NodeRecordDecl, NodeAnnotationDecl:
			style = classesStyle
		case NodeMethodDecl, NodeConstructorDecl, NodeCompactConstructorDecl:
			style = methodsStyle
		case NodeIfStmt, NodeWhileStmt, NodeDoWhileStmt, NodeForStmt, NodeForEachStmt,
			NodeSwitchStmt, NodeSwitchExpr, NodeTryStmt, NodeSynchronizedStmt:
			style = controlStyle
		default:
			return
		}
		brace, ok := findOpeningBrace(ctx.Buf, ctx.Arena, id)
		if !ok {
			return
		}
		if e, ok := braceEdit(ctx.Buf, brace, style); ok {
			edits = append(edits, e)
		}
	}, nil)
	return edits, nil
}

// findOpeningBrace locates the byte offset of the '{' that governs this
// construct's placement. A method, constructor, or control statement
// parses its body as a dedicated Block child, so its brace is that
// child's span start; a class/interface/enum/record/annotation body is
// attached directly to the declaration itself (no Block wrapper, since
// its members are declarations rather than statements), so for those the
// brace is found by scanning forward from the declaration's own span for
// the first '{' — nothing in a class header (type parameters,
// extends/implements/permits clauses) can contain one, so the first hit
// is always the body's opening brace.
func findOpeningBrace(buf *Buffer, arena *Arena, id NodeId) (int, bool) {
	for _, c := range arena.Children(id) {
		if arena.Kind(c) == NodeBlock {
			return arena.Span(c).Start, true
		}
	}
	span := arena.Span(id)
	data := buf.Bytes()
	for i := span.Start; i < span.End; i++ {
		if data[i] == '{' {
			return i, true
		}
	}
	return 0, false
}

// braceEdit computes the edit (if any) needed to fix the gap preceding
// the brace at braceStart so it matches style.
func braceEdit(buf *Buffer, braceStart int, style string) (TextEdit, bool) {
	data := buf.Bytes()
	// Walk backward from the brace to the end of the preceding
	// non-whitespace token.
	i := braceStart
	for i > 0 && isHorizontalOrVerticalSpace(data[i-1]) {
		i--
	}
	prevEnd := i
	gap := Span{Start: prevEnd, End: braceStart}
	hasNewline := false
	for _, b := range data[gap.Start:gap.End] {
		if b == '\n' {
			hasNewline = true
			break
		}
	}
	switch style {
	case "same_line":
		if !hasNewline {
			return TextEdit{}, false
		}
		return TextEdit{Span: gap, NewText: " "}, true
	case "next_line":
		if hasNewline {
			return TextEdit{}, false
		}
		indent := baseIndentOf(buf, prevEnd)
		return TextEdit{Span: gap, NewText: "\n" + spaces(indent)}, true
	}
	return TextEdit{}, false
}

func isHorizontalOrVerticalSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
