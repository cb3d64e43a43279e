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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"
)

// ReportFormat selects the shape of a rendered report.
type ReportFormat int

const (
	// FormatAuto picks Human when the output stream is a terminal, Machine
	// otherwise, matching "no TTY on the output stream" from spec.
	FormatAuto ReportFormat = iota
	FormatHuman
	FormatMachine
	FormatDiff
)

// DetectFormat inspects w and returns Human when it is a TTY, Machine
// otherwise. A sink that isn't an *os.File (an in-memory buffer, as in
// tests or library callers) is never a terminal, so it reports Machine.
func DetectFormat(w io.Writer) ReportFormat {
	f, ok := w.(*os.File)
	if !ok {
		return FormatMachine
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return FormatHuman
	}
	return FormatMachine
}

// FileStats accompanies a FileResult in a machine report, per spec's
// "stats: {tokens, nodes, duration_ms}".
type FileStats struct {
	Tokens     int
	Nodes      int
	DurationMs int64
}

// machineReport and machineViolation mirror the stable JSON field names
// spec's machine report format names explicitly; new fields may be added
// additively but these must never be renamed.
type machineReport struct {
	Path       string              `json:"path"`
	Violations []machineViolation  `json:"violations"`
	Stats      machinePositionless `json:"stats"`
}

// machinePositionless holds the "stats" object's fields; named for its
// absence of position info, distinct from machinePos which is a line/col
// position.

type machinePositionless struct {
	Tokens     int   `json:"tokens"`
	Nodes      int   `json:"nodes"`
	DurationMs int64 `json:"duration_ms"`
}

type machineViolation struct {
	RuleID   string     `json:"rule_id"`
	Severity string     `json:"severity"`
	Start    machinePos `json:"start"`
	End      machinePos `json:"end"`
	Message  string     `json:"message"`
	FixHint  string     `json:"fix_hint,omitempty"`
}

type machinePos struct {
	Line   int `json:"line"`
	Col    int `json:"col"`
	Offset int `json:"offset"`
}

// WriteMachineReport renders res as one JSON object per spec's machine
// report shape, using buf to resolve byte offsets into line:col pairs.
func WriteMachineReport(w io.Writer, buf *Buffer, res FileResult, stats FileStats) error {
	rep := machineReport{
		Path:  res.Path,
		Stats: machinePositionless{Tokens: stats.Tokens, Nodes: stats.Nodes, DurationMs: stats.DurationMs},
	}
	for _, v := range res.Violations {
		start := buf.Pos(v.Span.Start)
		end := buf.Pos(v.Span.End)
		rep.Violations = append(rep.Violations, machineViolation{
			RuleID:   v.RuleID,
			Severity: v.Severity.String(),
			Start:    machinePos{Line: start.Line, Col: start.Col, Offset: start.Offset},
			End:      machinePos{Line: end.Line, Col: end.Col, Offset: end.Offset},
			Message:  v.Message,
		})
	}
	enc := json.NewEncoder(w)
	return enc.Encode(rep)
}

// WriteHumanReport renders res in the narrative form a developer reads at
// a terminal: a per-file header, then each violation grouped by severity
// (errors first), with an optional source excerpt and caret range.
func WriteHumanReport(w io.Writer, buf *Buffer, res FileResult, showExcerpt bool) error {
	fmt.Fprintf(w, "%s (%d violation(s))\n", res.Path, len(res.Violations))
	if len(res.Violations) == 0 {
		return nil
	}

	ordered := make([]Violation, len(res.Violations))
	copy(ordered, res.Violations)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Severity != ordered[j].Severity {
			return ordered[i].Severity == SeverityError // errors first
		}
		return ordered[i].Span.Start < ordered[j].Span.Start
	})

	for _, v := range ordered {
		pos := buf.Pos(v.Span.Start)
		fmt.Fprintf(w, "  %d:%d  %s  %s\n", pos.Line, pos.Col, v.RuleID, v.Message)
		if showExcerpt {
			writeExcerpt(w, buf, v.Span)
		}
	}
	return nil
}

// writeExcerpt prints the source line containing span's start, followed
// by a caret line spanning its width on that line.
func writeExcerpt(w io.Writer, buf *Buffer, span Span) {
	start := buf.Pos(span.Start)
	lineStart, lineEnd := lineBounds(buf, start.Line)
	line := string(buf.Slice(Span{Start: lineStart, End: lineEnd}))
	fmt.Fprintf(w, "    %s\n", line)

	caretCol := start.Col - 1
	width := 1
	if span.End > span.Start {
		end := buf.Pos(span.End)
		if end.Line == start.Line {
			width = end.Col - start.Col
			if width < 1 {
				width = 1
			}
		}
	}
	fmt.Fprintf(w, "    %s%s\n", strings.Repeat(" ", caretCol), strings.Repeat("^", width))
}

// lineBounds returns the byte offsets of the start and end (exclusive,
// before any line terminator) of a 1-based line number. Excerpts are a
// rare, on-demand diagnostic path, so a linear scan from the start of the
// file is an acceptable cost here even though Buffer otherwise answers
// position queries in O(log lines).
func lineBounds(buf *Buffer, line int) (start, end int) {
	hi := buf.Len()
	off := 0
	curLine := 1
	for off < hi && curLine < line {
		if buf.Bytes()[off] == '\n' {
			curLine++
		}
		off++
	}
	start = off
	end = off
	for end < hi && buf.Bytes()[end] != '\n' && buf.Bytes()[end] != '\r' {
		end++
	}
	return start, end
}

// WriteUnifiedDiff renders a line diff between a file's original bytes
// and its formatted output, the optional "diff mode" from spec's external
// interfaces. It writes "--- a/" and "+++ b/" headers, then every line of
// the file prefixed with ' ', '-' or '+'; there are no "@@" hunk headers
// and unchanged lines are not trimmed to context. Lines are matched with
// an O(n*m) longest-common-subsequence table over both buffers.
func WriteUnifiedDiff(w io.Writer, path string, before, after []byte) error {
	beforeLines := strings.SplitAfter(string(before), "\n")
	afterLines := strings.SplitAfter(string(after), "\n")

	fmt.Fprintf(w, "--- a/%s\n", path)
	fmt.Fprintf(w, "+++ b/%s\n", path)

	ops := diffLines(beforeLines, afterLines)
	if len(ops) == 0 {
		return nil
	}
	for _, op := range ops {
		fmt.Fprint(w, op)
	}
	return nil
}

// diffLines produces a minimal line-level diff as a flat list of
// "-"/"+"/" "-prefixed lines using the classic longest-common-subsequence
// backtrace; sufficient for formatter output, which differs from its
// input only in whitespace and rarely spans more than a handful of
// hunks.
func diffLines(a, b []string) []string {
	n, m := len(a), len(b)
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var out []string
	i, j := 0, 0
	for i < n && j < m {
		switch {
		case a[i] == b[j]:
			out = append(out, " "+a[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, "-"+a[i])
			i++
		default:
			out = append(out, "+"+b[j])
			j++
		}
	}
	for ; i < n; i++ {
		out = append(out, "-"+a[i])
	}
	for ; j < m; j++ {
		out = append(out, "+"+b[j])
	}
	return out
}
