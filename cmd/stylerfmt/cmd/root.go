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

// Package cmd implements the stylerfmt command-line front end: it decodes
// on-disk YAML configuration into the plain maps the configuration
// resolver expects, wires up the security gate's allowed roots, and drives
// the parallel engine exposed by the styler package. None of this is part
// of the core; it exists to exercise the public API end to end the same
// way a real integration would.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "stylerfmt",
		Short:        "stylerfmt formats and lints Java source files",
		SilenceUsage: true,
	}

	configPaths     []string
	activeProfile   string
	allowedRoots    []string
	concurrency     int
	maxFileSize     int64
	perFileTimeout  string
	reportFormat    string
	checkMode       bool
	diffMode        bool
	explain         bool
	verbose         bool
	showExcerpt     bool
)

// Execute runs the CLI and returns the process exit code. It never calls
// os.Exit itself, so tests can invoke it without terminating the test
// binary.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "stylerfmt:", err)
		if _, ok := err.(*usageError); ok {
			return 3
		}
		return 4
	}
	return lastExitCode
}

// usageError marks a configuration-layer failure so Execute can map it to
// exit code 3 (configuration invalid) rather than the generic 4.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&configPaths, "config", "c", nil, "path to a .styler.yml configuration document (repeatable; later files take precedence)")
	rootCmd.PersistentFlags().StringVar(&activeProfile, "profile", "", "named profile to activate on top of defaults")
	rootCmd.PersistentFlags().StringSliceVar(&allowedRoots, "allow-root", nil, "directory the engine is permitted to read/write under (repeatable; default: unrestricted)")
	rootCmd.PersistentFlags().IntVarP(&concurrency, "jobs", "j", 0, "worker pool size (0 = number of CPUs)")
	rootCmd.PersistentFlags().Int64Var(&maxFileSize, "max-file-size", 0, "reject files larger than this many bytes (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&perFileTimeout, "per-file-timeout", "", "per-file processing timeout, e.g. \"5s\" (empty = unlimited)")
	rootCmd.PersistentFlags().StringVar(&reportFormat, "report", "auto", "violation report format: auto|human|machine|diff")
	rootCmd.PersistentFlags().BoolVar(&checkMode, "check", false, "check mode: report violations without writing files")
	rootCmd.PersistentFlags().BoolVar(&diffMode, "diff", false, "print a unified diff of proposed changes instead of writing them")
	rootCmd.PersistentFlags().BoolVar(&explain, "explain", false, "trace why each rule produced the edits/violations it did")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().BoolVar(&showExcerpt, "excerpt", false, "include a source excerpt with each human-format violation")

	rootCmd.AddCommand(formatCmd)
}
