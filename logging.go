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
	"github.com/sirupsen/logrus"
)

// log is the package-wide structured logger for internal engine events:
// parser resync points, rule-apply recovery, per-file timing. It is
// distinct from the Violation/FileResult surface a caller renders as a
// report — this is for operators watching a run, not for the formatter's
// output contract.
var log = logrus.New()

func init() {
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel adjusts verbosity; cmd/stylerfmt wires this to its -v flag.
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// logParseRecovery records a recovered parse error at Debug level: these
// are expected during panic-mode synchronization and never abort the
// file, so they don't warrant Warn.
func logParseRecovery(path string, pe ParseError) {
	log.WithFields(logrus.Fields{
		"path":    path,
		"span":    pe.Span,
		"found":   pe.Found.String(),
		"message": pe.Message,
	}).Debug("parser recovered from syntax error")
}

// logRuleApplyPanic records a rule whose Apply method panicked; the
// engine recovers it into an error-severity RuleApplyFailure Violation so
// one broken rule never takes down a run, but the full panic value and
// path are only useful to someone debugging the rule itself.
func logRuleApplyPanic(path, ruleID string, recovered any) {
	log.WithFields(logrus.Fields{
		"path": path,
		"rule": ruleID,
	}).Warnf("rule Apply panicked: %v", recovered)
}

// logFileProcessed records one file's outcome, at Warn level when err is
// non-nil and at Debug level otherwise, including the stats snapshot that
// also feeds the machine report's "stats" field.
func logFileProcessed(path string, stats FileStats, violationCount int, err error) {
	fields := logrus.Fields{
		"path":        path,
		"tokens":      stats.Tokens,
		"nodes":       stats.Nodes,
		"duration_ms": stats.DurationMs,
		"violations":  violationCount,
	}
	if err != nil {
		log.WithFields(fields).WithError(err).Warn("file processing failed")
		return
	}
	log.WithFields(fields).Debug("file processed")
}

// logRunSummary records the aggregate outcome of a parallel run.
func logRunSummary(summary RunSummary) {
	log.WithFields(logrus.Fields{
		"total_files": summary.TotalFiles,
		"total_ms":    summary.TotalDurationMs,
		"formatted":   summary.FilesChanged,
		"errored":     summary.FilesErrored,
	}).Info("run complete")
}

// explaining gates explainf, mirroring the teacher's g_explaining global
// switch for its own EXPLAIN() debug hook. Off by default; cmd/stylerfmt
// wires it to a --explain flag for users debugging why a rule fired.
var explaining = false

// SetExplain toggles rule-level explain tracing for the current process.
func SetExplain(v bool) {
	explaining = v
}

// explainf records why a rule produced the edits or violations it did.
// Like the teacher's EXPLAIN(), this is a no-op unless explicitly enabled,
// so it can sit on the hot path of every rule invocation at negligible cost.
func explainf(path, ruleID string, f string, args ...any) {
	if !explaining {
		return
	}
	log.WithFields(logrus.Fields{
		"path": path,
		"rule": ruleID,
	}).Debugf(f, args...)
}
