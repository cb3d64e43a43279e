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

// Span is a half-open byte range [Start, End) into a Buffer's content.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Empty reports whether the span covers zero bytes, i.e. an insertion point.
func (s Span) Empty() bool { return s.Start == s.End }

// Contains reports whether other lies within s (other's bounds may equal
// s's).
func (s Span) Contains(other Span) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Overlaps reports whether s and other share at least one byte.
func (s Span) Overlaps(other Span) bool {
	return s.Start < other.End && other.Start < s.End
}

// TokenKind enumerates every lexical construct of the Java grammar through
// JDK 25, plus the sentinel EOF and Error kinds.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokError

	TokIdent

	// Literals.
	TokIntLiteral
	TokLongLiteral
	TokFloatLiteral
	TokDoubleLiteral
	TokCharLiteral
	TokStringLiteral
	TokTextBlock
	TokTrueLiteral
	TokFalseLiteral
	TokNullLiteral

	// Reserved keywords (JLS 3.9).
	TokAbstract
	TokAssert
	TokBoolean
	TokBreak
	TokByte
	TokCase
	TokCatch
	TokChar
	TokClass
	TokConst
	TokContinue
	TokDefault
	TokDo
	TokDouble
	TokElse
	TokEnum
	TokExtends
	TokFinal
	TokFinally
	TokFloat
	TokFor
	TokGoto
	TokIf
	TokImplements
	TokImport
	TokInstanceof
	TokInt
	TokInterface
	TokLong
	TokNative
	TokNew
	TokPackage
	TokPrivate
	TokProtected
	TokPublic
	TokReturn
	TokShort
	TokStatic
	TokStrictfp
	TokSuper
	TokSwitch
	TokSynchronized
	TokThis
	TokThrow
	TokThrows
	TokTransient
	TokTry
	TokVoid
	TokVolatile
	TokWhile

	// Contextual keywords (restricted identifiers). Lexed as TokIdent and
	// reclassified by the parser based on position, except where noted.
	TokUnderscore // "_" - reserved since Java 9, not a legal identifier.

	// Punctuators / operators.
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokSemi
	TokComma
	TokDot
	TokEllipsis  // ...
	TokAt        // @
	TokColonColon // ::
	TokArrow      // ->

	TokEq       // =
	TokGt       // >
	TokLt       // <
	TokBang     // !
	TokTilde    // ~
	TokQuestion // ?
	TokColon    // :

	TokEqEq  // ==
	TokLe    // <=
	TokGe    // >=
	TokNotEq // !=
	TokAndAnd
	TokOrOr
	TokPlusPlus
	TokMinusMinus

	TokPlus
	TokMinus
	TokStar
	TokSlash
	TokAmp
	TokPipe
	TokCaret
	TokPercent
	TokLtLt
	TokGtGt
	TokGtGtGt

	TokPlusEq
	TokMinusEq
	TokStarEq
	TokSlashEq
	TokAmpEq
	TokPipeEq
	TokCaretEq
	TokPercentEq
	TokLtLtEq
	TokGtGtEq
	TokGtGtGtEq
)

var tokenNames = map[TokenKind]string{
	TokEOF:         "end of file",
	TokError:       "lexing error",
	TokIdent:       "identifier",
	TokIntLiteral:  "int literal",
	TokLongLiteral: "long literal",
	TokFloatLiteral:  "float literal",
	TokDoubleLiteral: "double literal",
	TokCharLiteral:   "char literal",
	TokStringLiteral: "string literal",
	TokTextBlock:     "text block",
	TokTrueLiteral:   "'true'",
	TokFalseLiteral:  "'false'",
	TokNullLiteral:   "'null'",
	TokLParen: "'('", TokRParen: "')'",
	TokLBrace: "'{'", TokRBrace: "'}'",
	TokLBracket: "'['", TokRBracket: "']'",
	TokSemi: "';'", TokComma: "','", TokDot: "'.'",
	TokEllipsis: "'...'", TokAt: "'@'",
	TokColonColon: "'::'", TokArrow: "'->'",
	TokEq: "'='", TokGt: "'>'", TokLt: "'<'", TokBang: "'!'", TokTilde: "'~'",
	TokQuestion: "'?'", TokColon: "':'",
	TokEqEq: "'=='", TokLe: "'<='", TokGe: "'>='", TokNotEq: "'!='",
	TokAndAnd: "'&&'", TokOrOr: "'||'", TokPlusPlus: "'++'", TokMinusMinus: "'--'",
	TokPlus: "'+'", TokMinus: "'-'", TokStar: "'*'", TokSlash: "'/'",
	TokAmp: "'&'", TokPipe: "'|'", TokCaret: "'^'", TokPercent: "'%'",
	TokLtLt: "'<<'", TokGtGt: "'>>'", TokGtGtGt: "'>>>'",
	TokPlusEq: "'+='", TokMinusEq: "'-='", TokStarEq: "'*='", TokSlashEq: "'/='",
	TokAmpEq: "'&='", TokPipeEq: "'|='", TokCaretEq: "'^='", TokPercentEq: "'%='",
	TokLtLtEq: "'<<='", TokGtGtEq: "'>>='", TokGtGtGtEq: "'>>>='",
}

var keywords = map[string]TokenKind{
	"abstract": TokAbstract, "assert": TokAssert, "boolean": TokBoolean,
	"break": TokBreak, "byte": TokByte, "case": TokCase, "catch": TokCatch,
	"char": TokChar, "class": TokClass, "const": TokConst, "continue": TokContinue,
	"default": TokDefault, "do": TokDo, "double": TokDouble, "else": TokElse,
	"enum": TokEnum, "extends": TokExtends, "final": TokFinal, "finally": TokFinally,
	"float": TokFloat, "for": TokFor, "goto": TokGoto, "if": TokIf,
	"implements": TokImplements, "import": TokImport, "instanceof": TokInstanceof,
	"int": TokInt, "interface": TokInterface, "long": TokLong, "native": TokNative,
	"new": TokNew, "package": TokPackage, "private": TokPrivate,
	"protected": TokProtected, "public": TokPublic, "return": TokReturn,
	"short": TokShort, "static": TokStatic, "strictfp": TokStrictfp,
	"super": TokSuper, "switch": TokSwitch, "synchronized": TokSynchronized,
	"this": TokThis, "throw": TokThrow, "throws": TokThrows,
	"transient": TokTransient, "try": TokTry, "void": TokVoid,
	"volatile": TokVolatile, "while": TokWhile,
	"true": TokTrueLiteral, "false": TokFalseLiteral, "null": TokNullLiteral,
	"_": TokUnderscore,
}

// contextualKeywords lists restricted identifiers (JLS 3.9) that the lexer
// leaves as TokIdent; the parser reclassifies them positionally.
var contextualKeywords = map[string]bool{
	"var": true, "yield": true, "record": true, "sealed": true,
	"permits": true, "non-sealed": true, "open": true, "module": true,
	"requires": true, "exports": true, "opens": true, "uses": true,
	"provides": true, "to": true, "with": true, "transitive": true, "when": true,
}

// String returns a human-readable form of a token kind, used in diagnostics.
func (k TokenKind) String() string {
	if s, ok := tokenNames[k]; ok {
		return s
	}
	return "identifier"
}

// Token is a lexical unit with a kind, byte span, optional decoded literal
// value, and half-open ranges into the trivia list for leading/trailing
// trivia. Tokens are produced strictly non-overlapping and sorted by span
// start; exactly one TokEOF terminates a stream.
type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string // decoded value for literal kinds; raw text for TokIdent

	LeadingTriviaStart, LeadingTriviaEnd   int
	TrailingTriviaStart, TrailingTriviaEnd int
}
