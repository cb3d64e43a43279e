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
	"fmt"
	"sort"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Buffer owns one file's content: the raw bytes (BOM stripped, UTF-8
// validated) plus a precomputed line-start index that lets ByteToLineCol
// answer in O(log lines) instead of rescanning the file per call.
//
// A Buffer is immutable after construction and is safe to share read-only
// across the lexer, parser, rule engine, and reporter for the lifetime of
// one file's processing.
type Buffer struct {
	Path string
	data []byte

	hadBOM bool
	// crlf is true if any CRLF line ending occurs anywhere in the source;
	// used to pick the output style.
	crlf bool

	lineStarts []int // lineStarts[i] is the byte offset of the first byte of line i+1 (1-based lines)
}

// NewBuffer validates data as UTF-8, strips a leading BOM if present, and
// builds the line-start index. It fails with an InvalidEncoding error if the
// content is not valid UTF-8.
func NewBuffer(path string, data []byte) (*Buffer, error) {
	hadBOM := false
	if len(data) >= 3 && data[0] == utf8BOM[0] && data[1] == utf8BOM[1] && data[2] == utf8BOM[2] {
		hadBOM = true
		data = data[3:]
	}
	if !utf8.Valid(data) {
		return nil, &EngineError{Kind: ErrInvalidEncoding, Path: path, Message: "file is not valid UTF-8"}
	}

	b := &Buffer{Path: path, data: data, hadBOM: hadBOM}
	b.lineStarts = []int{0}
	sawCR, sawCRLF := false, false
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\r':
			sawCR = true
			if i+1 < len(data) && data[i+1] == '\n' {
				sawCRLF = true
				i++
			}
			b.lineStarts = append(b.lineStarts, i+1)
		case '\n':
			b.lineStarts = append(b.lineStarts, i+1)
		}
	}
	_ = sawCR
	b.crlf = sawCRLF
	return b, nil
}

// HadBOM reports whether the source began with a UTF-8 byte-order mark.
func (b *Buffer) HadBOM() bool { return b.hadBOM }

// UsesCRLF reports whether CRLF line endings were detected anywhere in the
// source; per spec, the output preserves CRLF if present anywhere, else LF.
func (b *Buffer) UsesCRLF() bool { return b.crlf }

// Bytes returns the buffer's content (BOM already stripped).
func (b *Buffer) Bytes() []byte { return b.data }

// Len returns the number of content bytes.
func (b *Buffer) Len() int { return len(b.data) }

// LineCount returns the number of lines in the buffer (always >= 1).
func (b *Buffer) LineCount() int { return len(b.lineStarts) }

// Slice returns the bytes covered by span. It panics if span is out of
// bounds, which indicates a bug in the caller (spans are always derived from
// this same buffer).
func (b *Buffer) Slice(span Span) []byte {
	return b.data[span.Start:span.End]
}

// Position is a (line, column, byte offset) triple, 1-based for line and
// column per convention, used in reports.
type Position struct {
	Line, Col, Offset int
}

// ByteToLineCol maps a byte offset to a 1-based (line, column) pair. Column
// counts Unicode code points since the start of the line, not bytes, so that
// multi-byte characters don't distort reported positions.
func (b *Buffer) ByteToLineCol(offset int) (line, col int) {
	// Binary search for the line whose start is <= offset.
	i := sort.Search(len(b.lineStarts), func(i int) bool { return b.lineStarts[i] > offset }) - 1
	if i < 0 {
		i = 0
	}
	line = i + 1
	lineStart := b.lineStarts[i]
	col = 1 + utf8.RuneCount(b.data[lineStart:offset])
	return line, col
}

// Pos returns the full Position for a byte offset.
func (b *Buffer) Pos(offset int) Position {
	line, col := b.ByteToLineCol(offset)
	return Position{Line: line, Col: col, Offset: offset}
}

// EngineError is the taxonomy of errors defined in spec §7 that terminate
// processing of a single file (never the whole run) without being recovered
// into a Violation.
type EngineError struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Kind, e.Message)
}

// ErrorKind is the closed taxonomy from spec §7.
type ErrorKind int

const (
	ErrInvalidEncoding ErrorKind = iota
	ErrFileTooLarge
	ErrPathDenied
	ErrFileNotFound
	ErrLexError
	ErrParseError
	ErrRuleApplyFailure
	ErrRuleConflict
	ErrConfigurationInvalid
	ErrUnknownRule
	ErrConfigurationCycle
	ErrTimeout
	ErrCancelled
	ErrIO
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidEncoding:
		return "invalid encoding"
	case ErrFileTooLarge:
		return "file too large"
	case ErrPathDenied:
		return "path denied"
	case ErrFileNotFound:
		return "file not found"
	case ErrLexError:
		return "lex error"
	case ErrParseError:
		return "parse error"
	case ErrRuleApplyFailure:
		return "rule apply failure"
	case ErrRuleConflict:
		return "rule conflict"
	case ErrConfigurationInvalid:
		return "configuration invalid"
	case ErrUnknownRule:
		return "unknown rule"
	case ErrConfigurationCycle:
		return "configuration cycle"
	case ErrTimeout:
		return "timeout"
	case ErrCancelled:
		return "cancelled"
	case ErrIO:
		return "I/O error"
	}
	return "unknown error"
}
