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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	styler "github.com/javastyler/styler"
)

// lastExitCode carries the exit code formatCmd's RunE computed, since
// cobra's RunE contract only surfaces an error, not an arbitrary int; the
// stable exit codes spec.md names are richer than "it failed".
var lastExitCode int

var formatCmd = &cobra.Command{
	Use:   "format [paths...]",
	Short: "format or check Java source files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFormat,
}

func runFormat(_ *cobra.Command, args []string) error {
	if verbose {
		styler.SetLogLevel(logrus.DebugLevel)
	}
	styler.SetExplain(explain)

	docs, err := loadConfigDocuments(configPaths)
	if err != nil {
		return &usageError{err}
	}

	registry := styler.NewRuleRegistry()
	eff, err := styler.ResolveConfiguration(docs, activeProfile, registry)
	if err != nil {
		return &usageError{err}
	}
	if err := eff.Validate(registry); err != nil {
		return &usageError{err}
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}

	mode := styler.ModeFormat
	switch {
	case diffMode:
		mode = styler.ModeDiff
	case checkMode:
		mode = styler.ModeCheck
	}

	concurrencyN := concurrency
	if concurrencyN <= 0 {
		concurrencyN = runtime.NumCPU()
	}

	var timeout time.Duration
	if perFileTimeout != "" {
		timeout, err = time.ParseDuration(perFileTimeout)
		if err != nil {
			return &usageError{fmt.Errorf("--per-file-timeout: %w", err)}
		}
	}

	roots := make([]string, 0, len(allowedRoots))
	for _, r := range allowedRoots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return &usageError{err}
		}
		roots = append(roots, abs)
	}

	opts := styler.RunOptions{
		Concurrency:    concurrencyN,
		MaxFileSize:    maxFileSize,
		PerFileTimeout: timeout,
		Mode:           mode,
		Config:         eff,
		Registry:       registry,
		SecurityOptions: styler.SecurityOptions{
			AllowedRoots: roots,
			MaxFileSize:  maxFileSize,
		},
	}

	// Original bytes are captured before ProcessFiles touches disk so the
	// diff/report layer can still resolve positions and render "before"
	// text for files the engine rewrites in place.
	originals := make(map[string][]byte, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue // surfaced again as a FileNotFound result below
		}
		originals[p] = data
	}

	res := styler.ProcessFiles(context.Background(), paths, opts, nil)

	format := reportFormatFlag()
	if diffMode && format == styler.FormatAuto {
		format = styler.FormatDiff
	}
	lastExitCode = render(res, paths, originals, format)
	return nil
}

func reportFormatFlag() styler.ReportFormat {
	switch strings.ToLower(reportFormat) {
	case "human":
		return styler.FormatHuman
	case "machine":
		return styler.FormatMachine
	case "diff":
		return styler.FormatDiff
	default:
		return styler.FormatAuto
	}
}

// loadConfigDocuments decodes each YAML file into the plain
// map[string]any shape styler.ConfigDocument expects. Later files take
// precedence, matching ResolveConfiguration's documented merge order.
func loadConfigDocuments(paths []string) ([]styler.ConfigDocument, error) {
	docs := make([]styler.ConfigDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		var doc map[string]any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
		docs = append(docs, styler.ConfigDocument(doc))
	}
	return docs, nil
}

// expandPaths turns a mix of file and directory arguments into a flat list
// of .java files, matching the teacher's recursive directory walk idiom.
func expandPaths(args []string) ([]string, error) {
	var out []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, a)
			continue
		}
		err = filepath.Walk(a, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && strings.HasSuffix(path, ".java") {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
