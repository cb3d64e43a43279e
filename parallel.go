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
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// ProgressEvent is emitted as files complete, rate-limited so a large run
// doesn't flood the terminal with one line per file.
type ProgressEvent struct {
	FilesSeen      int
	FilesCompleted int
	CurrentFile    string
}

// RunOptions configures one parallel processing pass.
type RunOptions struct {
	Concurrency     int
	MaxFileSize     int64
	PerFileTimeout  time.Duration
	ProgressEvery   time.Duration
	Mode            Mode
	Config          *EffectiveConfiguration
	Registry        *RuleRegistry
	SecurityOptions SecurityOptions
}

// RunResult aggregates the outcome of processing every requested file.
type RunResult struct {
	Results   []FileResult
	Errors    []*EngineError
	Cancelled bool
	Summary   RunSummary
}

// ProcessFiles runs the security gate, lexer/parser, and rule engine over
// each path in paths, bounded to opts.Concurrency concurrent workers. It
// mirrors the teacher's goroutine-per-item-feeding-a-shared-channel
// pattern: one goroutine per path, started only once a semaphore of
// weight opts.Concurrency admits it, so the path loop blocks while that
// many files are in flight. It uses errgroup+semaphore rather than a
// hand-rolled channel/WaitGroup pair; every goroutine returns nil, so one
// file's failure never stops the others, and only cancellation of ctx
// stops admitting new paths.
func ProcessFiles(ctx context.Context, paths []string, opts RunOptions, progress chan<- ProgressEvent) RunResult {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(opts.Concurrency))
	g, gctx := errgroup.WithContext(ctx)

	results := make([]FileResult, len(paths))
	errs := make([]*EngineError, len(paths))

	var completed atomic.Int64
	var reportMu sync.Mutex
	lastReport := time.Now()
	reportEvery := opts.ProgressEvery
	if reportEvery <= 0 {
		reportEvery = 200 * time.Millisecond
	}

	for i, p := range paths {
		i, p := i, p
		if err := sem.Acquire(gctx, 1); err != nil {
			break // context cancelled while waiting for a slot
		}
		g.Go(func() error {
			defer sem.Release(1)

			fileCtx := gctx
			var cancel context.CancelFunc
			if opts.PerFileTimeout > 0 {
				fileCtx, cancel = context.WithTimeout(gctx, opts.PerFileTimeout)
				defer cancel()
			}

			res, err := processOneFile(fileCtx, p, opts)
			if err != nil {
				errs[i] = err
			} else {
				results[i] = res
			}

			n := completed.Add(1)
			if progress != nil {
				reportMu.Lock()
				due := time.Since(lastReport) >= reportEvery
				if due {
					lastReport = time.Now()
				}
				reportMu.Unlock()
				if due {
					select {
					case progress <- ProgressEvent{FilesSeen: len(paths), FilesCompleted: int(n), CurrentFile: p}:
					default:
					}
				}
			}
			return nil // a per-file failure never aborts the run; it's recorded in errs
		})
	}

	cancelled := false
	if err := g.Wait(); err != nil {
		cancelled = true
	}
	if gctx.Err() != nil {
		cancelled = true
	}
	if progress != nil {
		close(progress)
	}

	out := RunResult{Results: results, Errors: errs, Cancelled: cancelled}
	perFile := make([]FileStats, 0, len(results))
	for _, r := range results {
		perFile = append(perFile, r.Stats)
	}
	out.Summary = summarizeRun(out, perFile)
	logRunSummary(out.Summary)
	return out
}

// hasErrorViolation reports whether any violation is error-severity, the
// condition that keeps ModeFormat from writing a file back to disk: a
// file a lexer or parser had to recover from is reported, not rewritten,
// since the recovered tokens don't reliably round-trip the author's intent.
func hasErrorViolation(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// processOneFile runs the security gate, then lex/parse/rule-apply, for
// one file, translating every failure into the ErrorKind taxonomy.
func processOneFile(ctx context.Context, path string, opts RunOptions) (FileResult, *EngineError) {
	defer scopedMetric("process_file")()
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return FileResult{}, &EngineError{Kind: ErrCancelled, Path: path, Message: err.Error()}
	}

	data, secErr := SecureReadFile(path, opts.SecurityOptions)
	if secErr != nil {
		logFileProcessed(path, FileStats{}, 0, secErr)
		return FileResult{}, secErr
	}

	buf, err := NewBuffer(path, data)
	if err != nil {
		if ee, ok := err.(*EngineError); ok {
			return FileResult{}, ee
		}
		return FileResult{}, &EngineError{Kind: ErrIO, Path: path, Message: err.Error()}
	}

	lx := NewLexer(buf)
	tokens, trivia, lexErrs := lx.Lex()

	if err := ctx.Err(); err != nil {
		return FileResult{}, &EngineError{Kind: ErrTimeout, Path: path, Message: err.Error()}
	}

	parsed := ParseCompilationUnit(buf, tokens, trivia)

	if err := opts.Config.Validate(opts.Registry); err != nil {
		return FileResult{}, &EngineError{Kind: ErrConfigurationInvalid, Path: path, Message: err.Error()}
	}

	res := RunRules(ctx, buf, parsed.Arena, tokens, trivia, parsed.Root, opts.Config, opts.Registry, opts.Mode)
	res.Path = path
	res.Stats = FileStats{
		Tokens:     len(tokens),
		Nodes:      parsed.Arena.NodeCount(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	// Lex-level errors (unterminated literals, illegal characters) and
	// parse-level errors are both recovered locally per spec: the lexer
	// substitutes a best-effort token and the parser resyncs, so neither
	// aborts the file. Both surface here as error-severity violations
	// rather than an engine-level EngineError.
	for _, le := range lexErrs {
		res.Violations = append(res.Violations, Violation{
			RuleID:   "lexer",
			Severity: SeverityError,
			Message:  le.Error(),
			Span:     le.Span,
		})
		logParseRecovery(path, le)
	}
	if len(parsed.Errors) > 0 {
		for _, pe := range parsed.Errors {
			res.Violations = append(res.Violations, Violation{
				RuleID:   "parser",
				Severity: SeverityError,
				Message:  pe.Error(),
				Span:     pe.Span,
			})
			logParseRecovery(path, pe)
		}
	}

	if opts.Mode == ModeFormat && res.Output != nil && !hasErrorViolation(res.Violations) {
		if werr := SecureWriteFile(path, res.Output, opts.SecurityOptions); werr != nil {
			logFileProcessed(path, res.Stats, len(res.Violations), werr)
			return FileResult{}, werr
		}
	}

	logFileProcessed(path, res.Stats, len(res.Violations), nil)
	return res, nil
}
