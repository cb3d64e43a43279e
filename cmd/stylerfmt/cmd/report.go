// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	styler "github.com/javastyler/styler"
)

// render prints every file's result in the requested format and computes
// the overall process exit code per spec.md's stable exit-code table:
// 0 success/no changes, 1 formatting needed or warn/info violations,
// 2 error violations present, 4 I/O or security error. Exit code 3
// (configuration invalid) is handled earlier, before ProcessFiles ever
// runs, since that failure aborts the whole run rather than one file.
func render(res styler.RunResult, paths []string, originals map[string][]byte, format styler.ReportFormat) int {
	if format == styler.FormatAuto {
		format = styler.DetectFormat(os.Stdout)
	}

	exitCode := 0
	for i, err := range res.Errors {
		if err == nil {
			continue
		}
		path := fmt.Sprintf("file[%d]", i)
		if i < len(paths) {
			path = paths[i]
		}
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", path, err.Kind, err.Message)
		exitCode = max(exitCode, 4)
	}

	for _, fr := range res.Results {
		if fr.Path == "" {
			continue // slot belongs to a file that errored out above
		}
		data := originals[fr.Path]
		buf, bufErr := styler.NewBuffer(fr.Path, data)
		if bufErr != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", fr.Path, bufErr)
			exitCode = max(exitCode, 4)
			continue
		}

		switch format {
		case styler.FormatDiff:
			if fr.Output != nil {
				_ = styler.WriteUnifiedDiff(os.Stdout, fr.Path, data, fr.Output)
			}
		case styler.FormatHuman:
			_ = styler.WriteHumanReport(os.Stdout, buf, fr, showExcerpt)
		default:
			_ = styler.WriteMachineReport(os.Stdout, buf, fr, fr.Stats)
		}

		exitCode = max(exitCode, fileExitCode(fr))
	}
	return exitCode
}

// fileExitCode maps one FileResult to the 0/1/2 portion of the exit-code
// table; the 4 (I/O/security) and 3 (configuration) cases are handled by
// the caller, since they aren't a property of a successfully-processed
// file.
func fileExitCode(fr styler.FileResult) int {
	hasError := false
	hasWarnOrInfo := false
	for _, v := range fr.Violations {
		if v.Severity == styler.SeverityError {
			hasError = true
		} else {
			hasWarnOrInfo = true
		}
	}
	if hasError {
		return 2
	}
	if fr.Mode == styler.ModeCheck {
		if fr.CheckFailed() {
			return 1
		}
		return 0
	}
	if fr.Changed || hasWarnOrInfo {
		return 1
	}
	return 0
}

