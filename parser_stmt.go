// Copyright 2018 Google Inc. All Rights Reserved.
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

// parseBlock parses "{ statements... }".
func (p *parser) parseBlock() NodeId {
	id := p.open(NodeBlock)
	p.expect(TokLBrace)
	for p.curKind() != TokRBrace && !p.atEOF() {
		p.addChild(id, p.parseStatement())
	}
	p.expect(TokRBrace)
	return p.close(id)
}

// parseStatement dispatches on the current token to the right statement
// production. Unrecognized input becomes an error node and triggers
// panic-mode recovery.
func (p *parser) parseStatement() NodeId {
	switch p.curKind() {
	case TokLBrace:
		return p.parseBlock()
	case TokSemi:
		id := p.open(NodeEmptyStmt)
		p.advance()
		return p.close(id)
	case TokIf:
		return p.parseIfStmt()
	case TokWhile:
		return p.parseWhileStmt()
	case TokDo:
		return p.parseDoWhileStmt()
	case TokFor:
		return p.parseForStmt()
	case TokSwitch:
		return p.parseSwitchStmtOrExpr(false)
	case TokTry:
		return p.parseTryStmt()
	case TokReturn:
		return p.parseReturnStmt()
	case TokBreak:
		return p.parseBreakStmt()
	case TokContinue:
		return p.parseContinueStmt()
	case TokThrow:
		return p.parseThrowStmt()
	case TokAssert:
		return p.parseAssertStmt()
	case TokSynchronized:
		return p.parseSynchronizedStmt()
	case TokClass, TokInterface, TokEnum, TokAt:
		return p.parseLocalTypeDecl()
	}
	if p.peekIdent("yield") && !p.statementLooksLikeExprStartingWithYield() {
		return p.parseYieldStmt()
	}
	if p.peekIdent("record") && p.peekAt(1).Kind == TokIdent {
		return p.parseLocalTypeDecl()
	}
	// Labeled statement: "ident ':' statement", distinguished from an
	// expression statement that happens to start with an identifier by
	// requiring a colon (not "::") immediately after.
	if p.curKind() == TokIdent && p.peekAt(1).Kind == TokColon {
		return p.parseLabeledStmt()
	}
	if p.looksLikeLocalVarDeclStart() {
		return p.parseLocalVarDecl()
	}
	return p.parseExprStmt()
}

// statementLooksLikeExprStartingWithYield guards against misreading a
// variable or method literally named "yield" used as an ordinary
// expression; "yield" is only a statement keyword when followed by the
// start of an expression and the whole thing isn't itself being called or
// assigned like "yield.foo()" or "yield = 1".
func (p *parser) statementLooksLikeExprStartingWithYield() bool {
	switch p.peekAt(1).Kind {
	case TokDot, TokEq, TokLBracket, TokPlusPlus, TokMinusMinus,
		TokPlusEq, TokMinusEq, TokStarEq, TokSlashEq:
		return true
	}
	return false
}

func (p *parser) parseLabeledStmt() NodeId {
	id := p.open(NodeLabeledStmt)
	p.expect(TokIdent)
	p.expect(TokColon)
	p.addChild(id, p.parseStatement())
	return p.close(id)
}

func (p *parser) parseLocalTypeDecl() NodeId {
	mods := p.parseModifiers()
	id := p.open(NodeLocalClassDecl)
	p.addChild(id, p.finishNestedType(mods))
	return p.close(id)
}

// looksLikeLocalVarDeclStart performs a bounded lookahead to distinguish a
// local variable declaration ("Type name = ...;", "var name = ...;",
// "final Type name;") from an expression statement. Java's grammar makes
// this ambiguous with arbitrary lookahead in the general case; this
// approximation covers the forms that appear in practice and, for a
// formatter (as opposed to a semantic analyzer), a wrong guess only costs
// a recovered parse error on a single statement rather than a
// misformatted file, since synchronize() resumes at the next statement
// boundary.
func (p *parser) looksLikeLocalVarDeclStart() bool {
	i := 0
	for p.peekAt(i).Kind == TokAt || p.peekAt(i).Kind == TokFinal {
		i++
		if p.peekAt(i-1).Kind == TokAt && p.peekAt(i).Kind == TokIdent {
			i++
		}
	}
	if p.peekAt(i).Kind == TokIdent && p.peekAt(i).Literal == "var" {
		return p.peekAt(i+1).Kind == TokIdent
	}
	switch p.peekAt(i).Kind {
	case TokBoolean, TokByte, TokChar, TokShort, TokInt, TokLong, TokFloat, TokDouble:
		return true
	case TokIdent:
		// Walk a possible qualified/generic type reference, then require an
		// identifier (the variable name) to follow.
		j := i + 1
		for p.peekAt(j).Kind == TokDot && p.peekAt(j+1).Kind == TokIdent {
			j += 2
		}
		if p.peekAt(j).Kind == TokLt {
			depth := 0
			for {
				k := p.peekAt(j).Kind
				switch k {
				case TokLt:
					depth++
				case TokGt:
					depth--
				case TokGtGt:
					depth -= 2
				case TokGtGtGt:
					depth -= 3
				case TokEOF, TokSemi:
					return false
				}
				j++
				if depth <= 0 {
					break
				}
			}
		}
		for p.peekAt(j).Kind == TokLBracket && p.peekAt(j+1).Kind == TokRBracket {
			j += 2
		}
		return p.peekAt(j).Kind == TokIdent
	}
	return false
}

func (p *parser) parseLocalVarDecl() NodeId {
	id := p.open(NodeLocalVarDecl)
	p.addChild(id, p.parseModifiers())
	p.addChild(id, p.parseTypeRef())
	p.addChild(id, p.parseVariableDeclarator())
	for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
		p.addChild(id, p.parseVariableDeclarator())
	}
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseExprStmt() NodeId {
	id := p.open(NodeExprStmt)
	if p.curKind() == TokSemi || p.atEOF() {
		// Nothing recognizable; emit an error placeholder and recover rather
		// than looping forever.
		p.errorf(p.cur().Span, nil, "expected statement, got "+p.curKind().String())
		p.synchronize()
		return p.close(id)
	}
	p.addChild(id, p.parseExpr())
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseIfStmt() NodeId {
	id := p.open(NodeIfStmt)
	p.expect(TokIf)
	p.expect(TokLParen)
	p.addChild(id, p.parseExpr())
	p.expect(TokRParen)
	p.addChild(id, p.parseStatement())
	if p.curKind() == TokElse {
		p.advance()
		p.addChild(id, p.parseStatement())
	}
	return p.close(id)
}

func (p *parser) parseWhileStmt() NodeId {
	id := p.open(NodeWhileStmt)
	p.expect(TokWhile)
	p.expect(TokLParen)
	p.addChild(id, p.parseExpr())
	p.expect(TokRParen)
	p.addChild(id, p.parseStatement())
	return p.close(id)
}

func (p *parser) parseDoWhileStmt() NodeId {
	id := p.open(NodeDoWhileStmt)
	p.expect(TokDo)
	p.addChild(id, p.parseStatement())
	p.expect(TokWhile)
	p.expect(TokLParen)
	p.addChild(id, p.parseExpr())
	p.expect(TokRParen)
	p.expect(TokSemi)
	return p.close(id)
}

// parseForStmt handles both the classic C-style for loop and the enhanced
// for-each loop, disambiguated by scanning for a ':' before the matching
// ')'.
func (p *parser) parseForStmt() NodeId {
	if p.isForEachAhead() {
		return p.parseForEachStmt()
	}
	id := p.open(NodeForStmt)
	p.expect(TokFor)
	p.expect(TokLParen)
	if p.curKind() != TokSemi {
		if p.looksLikeLocalVarDeclStart() {
			p.addChild(id, p.parseLocalVarDecl())
		} else {
			p.addChild(id, p.parseExpr())
			for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
				p.addChild(id, p.parseExpr())
			}
			p.expect(TokSemi)
		}
	} else {
		p.advance()
	}
	if p.curKind() != TokSemi {
		p.addChild(id, p.parseExpr())
	}
	p.expect(TokSemi)
	if p.curKind() != TokRParen {
		p.addChild(id, p.parseExpr())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseExpr())
		}
	}
	p.expect(TokRParen)
	p.addChild(id, p.parseStatement())
	return p.close(id)
}

// isForEachAhead scans from just after "for (" for a top-level ':' before
// the matching ')'.
func (p *parser) isForEachAhead() bool {
	depth := 0
	for i := 2; ; i++ {
		k := p.peekAt(i).Kind
		switch k {
		case TokLParen, TokLBracket, TokLt:
			depth++
		case TokRParen:
			if depth == 0 {
				return false
			}
			depth--
		case TokRBracket, TokGt:
			if depth > 0 {
				depth--
			}
		case TokColon:
			if depth == 0 {
				return true
			}
		case TokSemi:
			if depth == 0 {
				return false
			}
		case TokEOF:
			return false
		}
	}
}

func (p *parser) parseForEachStmt() NodeId {
	id := p.open(NodeForEachStmt)
	p.expect(TokFor)
	p.expect(TokLParen)
	p.addChild(id, p.parseModifiers())
	p.addChild(id, p.parseTypeRef())
	p.expect(TokIdent)
	p.expect(TokColon)
	p.addChild(id, p.parseExpr())
	p.expect(TokRParen)
	p.addChild(id, p.parseStatement())
	return p.close(id)
}

// parseSwitchStmtOrExpr parses a switch construct; asExpr selects whether
// it is being parsed in expression position (affects only the node kind
// produced, since the body grammar is shared between the statement and
// expression forms since Java 14).
func (p *parser) parseSwitchStmtOrExpr(asExpr bool) NodeId {
	kind := NodeSwitchStmt
	if asExpr {
		kind = NodeSwitchExpr
	}
	id := p.open(kind)
	p.expect(TokSwitch)
	p.expect(TokLParen)
	p.addChild(id, p.parseExpr())
	p.expect(TokRParen)
	p.expect(TokLBrace)
	for p.curKind() != TokRBrace && !p.atEOF() {
		p.addChild(id, p.parseSwitchBlock())
	}
	p.expect(TokRBrace)
	return p.close(id)
}

// parseSwitchBlock parses one "case ... ->" / "case ...:" / "default"
// group, including classic fallthrough groups that share one statement
// list across multiple labels.
func (p *parser) parseSwitchBlock() NodeId {
	isArrow := false
	if p.curKind() == TokCase {
		p.advance()
		id := p.open(NodeSwitchLabel)
		p.addChild(id, p.parseCaseLabelElement())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseCaseLabelElement())
		}
		p.parseCaseGuard(id)
		if p.curKind() == TokArrow {
			isArrow = true
			p.advance()
		} else {
			p.expect(TokColon)
		}
		if isArrow {
			p.addChild(id, p.parseSwitchRuleBody())
		} else {
			for !p.atSwitchLabelBoundary() {
				p.addChild(id, p.parseStatement())
			}
		}
		return p.close(id)
	}
	id := p.open(NodeSwitchLabel)
	p.expect(TokDefault)
	if p.curKind() == TokArrow {
		isArrow = true
		p.advance()
	} else {
		p.expect(TokColon)
	}
	if isArrow {
		p.addChild(id, p.parseSwitchRuleBody())
	} else {
		for !p.atSwitchLabelBoundary() {
			p.addChild(id, p.parseStatement())
		}
	}
	return p.close(id)
}

func (p *parser) atSwitchLabelBoundary() bool {
	return p.curKind() == TokCase || p.curKind() == TokDefault || p.curKind() == TokRBrace || p.atEOF()
}

// parseCaseLabelElement parses one element of a case label: a pattern
// (type or record pattern), "null", or a constant expression.
func (p *parser) parseCaseLabelElement() NodeId {
	if p.curKind() == TokNullLiteral {
		id := p.open(NodeNullLiteral)
		p.advance()
		return p.close(id)
	}
	if p.looksLikePatternStart() {
		return p.parsePattern()
	}
	return p.parseExpr()
}

func (p *parser) parseCaseGuard(parent NodeId) {
	if !p.peekIdent("when") {
		return
	}
	id := p.open(NodeCaseGuard)
	p.advance()
	p.addChild(id, p.parseExpr())
	p.addChild(parent, p.close(id))
}

// parseSwitchRuleBody parses the right-hand side of a "->" switch rule: a
// throw statement, a block, or a single expression followed by ';', added
// directly as the rule's child with no expression-statement node.
func (p *parser) parseSwitchRuleBody() NodeId {
	id := p.open(NodeSwitchRule)
	switch p.curKind() {
	case TokThrow:
		p.addChild(id, p.parseThrowStmt())
	case TokLBrace:
		p.addChild(id, p.parseBlock())
	default:
		p.addChild(id, p.parseExpr())
		p.expect(TokSemi)
	}
	return p.close(id)
}

func (p *parser) parseTryStmt() NodeId {
	id := p.open(NodeTryStmt)
	p.expect(TokTry)
	if p.curKind() == TokLParen {
		p.advance()
		p.addChild(id, p.parseResource())
		for p.curKind() == TokSemi {
			p.advance()
			if p.curKind() == TokRParen {
				break
			}
			p.addChild(id, p.parseResource())
		}
		p.expect(TokRParen)
	}
	p.addChild(id, p.parseBlock())
	for p.curKind() == TokCatch {
		p.addChild(id, p.parseCatchClause())
	}
	if p.curKind() == TokFinally {
		p.advance()
		p.addChild(id, p.parseBlock())
	}
	return p.close(id)
}

func (p *parser) parseResource() NodeId {
	id := p.open(NodeResourceDecl)
	// "try (existingVariable)" - a bare expression resource, JEP 394.
	if p.curKind() == TokIdent && (p.peekAt(1).Kind == TokSemi || p.peekAt(1).Kind == TokRParen) {
		p.addChild(id, p.parseExpr())
		return p.close(id)
	}
	p.addChild(id, p.parseModifiers())
	p.addChild(id, p.parseTypeRef())
	p.expect(TokIdent)
	p.expect(TokEq)
	p.addChild(id, p.parseExpr())
	return p.close(id)
}

func (p *parser) parseCatchClause() NodeId {
	id := p.open(NodeCatchClause)
	p.expect(TokCatch)
	p.expect(TokLParen)
	p.addChild(id, p.parseModifiers())
	p.addChild(id, p.parseTypeRef())
	for p.curKind() == TokPipe {
		p.advance()
		p.addChild(id, p.parseTypeRef())
	}
	p.expect(TokIdent)
	p.expect(TokRParen)
	p.addChild(id, p.parseBlock())
	return p.close(id)
}

func (p *parser) parseReturnStmt() NodeId {
	id := p.open(NodeReturnStmt)
	p.expect(TokReturn)
	if p.curKind() != TokSemi {
		p.addChild(id, p.parseExpr())
	}
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseBreakStmt() NodeId {
	id := p.open(NodeBreakStmt)
	p.expect(TokBreak)
	if p.curKind() == TokIdent {
		p.advance()
	}
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseContinueStmt() NodeId {
	id := p.open(NodeContinueStmt)
	p.expect(TokContinue)
	if p.curKind() == TokIdent {
		p.advance()
	}
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseYieldStmt() NodeId {
	id := p.open(NodeYieldStmt)
	p.advance() // "yield"
	p.addChild(id, p.parseExpr())
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseThrowStmt() NodeId {
	id := p.open(NodeThrowStmt)
	p.expect(TokThrow)
	p.addChild(id, p.parseExpr())
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseAssertStmt() NodeId {
	id := p.open(NodeAssertStmt)
	p.expect(TokAssert)
	p.addChild(id, p.parseExpr())
	if p.curKind() == TokColon {
		p.advance()
		p.addChild(id, p.parseExpr())
	}
	p.expect(TokSemi)
	return p.close(id)
}

func (p *parser) parseSynchronizedStmt() NodeId {
	id := p.open(NodeSynchronizedStmt)
	p.expect(TokSynchronized)
	p.expect(TokLParen)
	p.addChild(id, p.parseExpr())
	p.expect(TokRParen)
	p.addChild(id, p.parseBlock())
	return p.close(id)
}
