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
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// SecurityOptions bounds what ProcessFiles is willing to touch: an
// allow-list of canonical directory roots, and resource limits that apply
// to every file regardless of root.
type SecurityOptions struct {
	AllowedRoots []string // canonicalized absolute directories; a path must resolve under one of these
	MaxFileSize  int64
}

// canonicalize resolves path to an absolute, symlink-free form, the same
// job RealDiskInterface's path handling does before touching the
// filesystem, so allow-list checks can't be defeated by ".." segments or
// symlinks pointing outside the allowed roots.
func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		// A file that doesn't exist yet (write target) can't be resolved via
		// EvalSymlinks; fall back to the absolute, cleaned path and let the
		// allow-list check apply to that instead.
		if os.IsNotExist(err) {
			return filepath.Clean(abs), nil
		}
		return "", err
	}
	return real, nil
}

func isAllowed(canonicalPath string, roots []string) bool {
	if len(roots) == 0 {
		return true // no allow-list configured: every path is permitted
	}
	for _, root := range roots {
		rel, err := filepath.Rel(root, canonicalPath)
		if err != nil {
			continue
		}
		if rel == "." || (!strings.HasPrefix(rel, "..") && rel != "..") {
			return true
		}
	}
	return false
}

// SecureReadFile canonicalizes path, enforces the allow-list and size
// limit, and reads its content, reporting every failure as the matching
// ErrorKind.
func SecureReadFile(path string, opts SecurityOptions) ([]byte, *EngineError) {
	canon, err := canonicalize(path)
	if err != nil {
		return nil, &EngineError{Kind: ErrFileNotFound, Path: path, Message: err.Error()}
	}
	if !isAllowed(canon, opts.AllowedRoots) {
		return nil, &EngineError{Kind: ErrPathDenied, Path: path, Message: "path is outside the allowed roots"}
	}

	info, err := os.Stat(canon)
	if err != nil {
		return nil, &EngineError{Kind: ErrFileNotFound, Path: path, Message: err.Error()}
	}
	if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
		return nil, &EngineError{Kind: ErrFileTooLarge, Path: path, Message: "exceeds configured size limit"}
	}

	data, err := os.ReadFile(canon)
	if err != nil {
		return nil, &EngineError{Kind: ErrIO, Path: path, Message: err.Error()}
	}
	if !utf8.Valid(data) {
		return nil, &EngineError{Kind: ErrInvalidEncoding, Path: path, Message: "file is not valid UTF-8"}
	}
	return data, nil
}

// SecureWriteFile writes data to path atomically: a uuid-suffixed
// temporary file in the same directory (so the final rename stays on one
// filesystem), fsynced, then renamed over the original. A crash or power
// loss mid-write leaves either the old file or the new one, never a
// truncated mix of both.
func SecureWriteFile(path string, data []byte, opts SecurityOptions) *EngineError {
	canon, err := canonicalize(path)
	if err != nil {
		return &EngineError{Kind: ErrFileNotFound, Path: path, Message: err.Error()}
	}
	if !isAllowed(canon, opts.AllowedRoots) {
		return &EngineError{Kind: ErrPathDenied, Path: path, Message: "path is outside the allowed roots"}
	}

	dir := filepath.Dir(canon)
	tmpName := filepath.Join(dir, ".styler-"+uuid.NewString()+".tmp")

	f, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return &EngineError{Kind: ErrIO, Path: path, Message: err.Error()}
	}
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := f.Write(data); err != nil {
		f.Close()
		return &EngineError{Kind: ErrIO, Path: path, Message: err.Error()}
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return &EngineError{Kind: ErrIO, Path: path, Message: err.Error()}
	}
	if err := f.Close(); err != nil {
		return &EngineError{Kind: ErrIO, Path: path, Message: err.Error()}
	}
	if err := os.Rename(tmpName, canon); err != nil {
		return &EngineError{Kind: ErrIO, Path: path, Message: err.Error()}
	}
	return nil
}
