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
	"os"
	"path/filepath"
	"testing"
)

func TestSecureReadFile_AllowedRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.java")
	if err := os.WriteFile(path, []byte("class Foo {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	data, engErr := SecureReadFile(path, SecurityOptions{AllowedRoots: []string{dir}})
	if engErr != nil {
		t.Fatalf("SecureReadFile: %v", engErr)
	}
	if string(data) != "class Foo {}" {
		t.Fatalf("data = %q", data)
	}
}

func TestSecureReadFile_OutsideAllowedRootIsDenied(t *testing.T) {
	allowed := t.TempDir()
	outside := t.TempDir()
	path := filepath.Join(outside, "Foo.java")
	if err := os.WriteFile(path, []byte("class Foo {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, engErr := SecureReadFile(path, SecurityOptions{AllowedRoots: []string{allowed}})
	if engErr == nil {
		t.Fatal("expected an error")
	}
	if engErr.Kind != ErrPathDenied {
		t.Fatalf("Kind = %v, want ErrPathDenied", engErr.Kind)
	}
}

func TestSecureReadFile_NoAllowedRootsPermitsAnyPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.java")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, engErr := SecureReadFile(path, SecurityOptions{}); engErr != nil {
		t.Fatalf("SecureReadFile: %v", engErr)
	}
}

func TestSecureReadFile_TraversalOutsideRootIsDenied(t *testing.T) {
	allowed := t.TempDir()
	outside := t.TempDir()
	path := filepath.Join(outside, "Foo.java")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	traversal := filepath.Join(allowed, "..", filepath.Base(outside), "Foo.java")
	_, engErr := SecureReadFile(traversal, SecurityOptions{AllowedRoots: []string{allowed}})
	if engErr == nil || engErr.Kind != ErrPathDenied {
		t.Fatalf("engErr = %v, want ErrPathDenied", engErr)
	}
}

func TestSecureReadFile_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Missing.java")

	_, engErr := SecureReadFile(path, SecurityOptions{AllowedRoots: []string{dir}})
	if engErr == nil || engErr.Kind != ErrFileNotFound {
		t.Fatalf("engErr = %v, want ErrFileNotFound", engErr)
	}
}

func TestSecureReadFile_TooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Big.java")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, engErr := SecureReadFile(path, SecurityOptions{AllowedRoots: []string{dir}, MaxFileSize: 4})
	if engErr == nil || engErr.Kind != ErrFileTooLarge {
		t.Fatalf("engErr = %v, want ErrFileTooLarge", engErr)
	}
}

func TestSecureReadFile_InvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Bad.java")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 0x00}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, engErr := SecureReadFile(path, SecurityOptions{AllowedRoots: []string{dir}})
	if engErr == nil || engErr.Kind != ErrInvalidEncoding {
		t.Fatalf("engErr = %v, want ErrInvalidEncoding", engErr)
	}
}

func TestSecureWriteFile_AtomicReplaceAndNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Foo.java")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	if engErr := SecureWriteFile(path, []byte("new content"), SecurityOptions{AllowedRoots: []string{dir}}); engErr != nil {
		t.Fatalf("SecureWriteFile: %v", engErr)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "new content" {
		t.Fatalf("content = %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the final file to remain, got %d entries", len(entries))
	}
}

func TestSecureWriteFile_OutsideAllowedRootIsDenied(t *testing.T) {
	allowed := t.TempDir()
	outside := t.TempDir()
	path := filepath.Join(outside, "Foo.java")

	engErr := SecureWriteFile(path, []byte("x"), SecurityOptions{AllowedRoots: []string{allowed}})
	if engErr == nil || engErr.Kind != ErrPathDenied {
		t.Fatalf("engErr = %v, want ErrPathDenied", engErr)
	}
	if _, err := os.Stat(path); err == nil {
		t.Fatal("write should not have happened")
	}
}
