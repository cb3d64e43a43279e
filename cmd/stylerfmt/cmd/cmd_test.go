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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	styler "github.com/javastyler/styler"
)

func TestReportFormatFlag(t *testing.T) {
	defer func(prev string) { reportFormat = prev }(reportFormat)

	cases := map[string]styler.ReportFormat{
		"human":   styler.FormatHuman,
		"Machine": styler.FormatMachine,
		"DIFF":    styler.FormatDiff,
		"":        styler.FormatAuto,
		"bogus":   styler.FormatAuto,
	}
	for in, want := range cases {
		reportFormat = in
		if got := reportFormatFlag(); got != want {
			t.Errorf("reportFormatFlag() with reportFormat=%q = %v, want %v", in, got, want)
		}
	}
}

func TestUsageError_WrapsAndUnwraps(t *testing.T) {
	inner := errors.New("bad config")
	err := &usageError{inner}
	if err.Error() != "bad config" {
		t.Fatalf("Error() = %q", err.Error())
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected errors.Is to see through Unwrap")
	}
}

func TestLoadConfigDocuments_MergesYAMLFiles(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.yml")
	p2 := filepath.Join(dir, "b.yml")
	if err := os.WriteFile(p1, []byte("rules:\n  line_length:\n    enabled: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p2, []byte("language_version: \"17\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	docs, err := loadConfigDocuments([]string{p1, p2})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if _, ok := docs[0]["rules"]; !ok {
		t.Fatalf("first document missing rules key: %v", docs[0])
	}
	if docs[1]["language_version"] != "17" {
		t.Fatalf("second document language_version = %v, want 17", docs[1]["language_version"])
	}
}

func TestLoadConfigDocuments_MissingFileIsAnError(t *testing.T) {
	if _, err := loadConfigDocuments([]string{"/no/such/file.yml"}); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestExpandPaths_FileArgumentPassesThrough(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "Foo.java")
	if err := os.WriteFile(f, []byte("class Foo {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := expandPaths([]string{f})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != f {
		t.Fatalf("expandPaths = %v, want [%s]", got, f)
	}
}

func TestExpandPaths_DirectoryWalksForJavaFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "pkg")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	javaFile := filepath.Join(sub, "Foo.java")
	txtFile := filepath.Join(sub, "readme.txt")
	if err := os.WriteFile(javaFile, []byte("class Foo {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(txtFile, []byte("not java"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := expandPaths([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != javaFile {
		t.Fatalf("expandPaths = %v, want only [%s]", got, javaFile)
	}
}

func TestExpandPaths_MissingPathIsAnError(t *testing.T) {
	if _, err := expandPaths([]string{"/no/such/path"}); err == nil {
		t.Fatal("expected an error for a nonexistent path")
	}
}

func TestFileExitCode(t *testing.T) {
	cases := []struct {
		name string
		fr   styler.FileResult
		want int
	}{
		{
			name: "clean file, format mode",
			fr:   styler.FileResult{Mode: styler.ModeFormat},
			want: 0,
		},
		{
			name: "changed file, format mode",
			fr:   styler.FileResult{Mode: styler.ModeFormat, Changed: true},
			want: 1,
		},
		{
			name: "check mode, would reformat",
			fr:   styler.FileResult{Mode: styler.ModeCheck, Changed: true},
			want: 1,
		},
		{
			name: "check mode, nothing to do",
			fr:   styler.FileResult{Mode: styler.ModeCheck},
			want: 0,
		},
		{
			name: "error-severity violation always wins",
			fr: styler.FileResult{
				Mode:       styler.ModeCheck,
				Violations: []styler.Violation{{Severity: styler.SeverityError}},
			},
			want: 2,
		},
		{
			name: "warning violation in format mode still signals 1",
			fr: styler.FileResult{
				Mode:       styler.ModeFormat,
				Violations: []styler.Violation{{Severity: styler.SeverityWarning}},
			},
			want: 1,
		},
	}
	for _, c := range cases {
		if got := fileExitCode(c.fr); got != c.want {
			t.Errorf("%s: fileExitCode = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestRender_EngineErrorBumpsExitCodeToFour(t *testing.T) {
	res := styler.RunResult{
		Errors: []*styler.EngineError{{Kind: styler.ErrFileNotFound, Message: "nope"}},
	}
	var out bytes.Buffer
	origStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	code := render(res, []string{"Missing.java"}, nil, styler.FormatMachine)
	w.Close()
	os.Stderr = origStderr
	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	out.Write(buf[:n])

	if code != 4 {
		t.Fatalf("render() = %d, want 4", code)
	}
	if !bytes.Contains(out.Bytes(), []byte("Missing.java")) {
		t.Fatalf("expected the failing path in stderr output, got: %s", out.String())
	}
}
