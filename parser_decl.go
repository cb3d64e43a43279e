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

// parseCompilationUnit is the parser's entry point: an optional package
// declaration, zero or more imports, then zero or more top-level type
// declarations (or, since JEP 445, top-level fields and methods of an
// unnamed class / instance main method).
func (p *parser) parseCompilationUnit() NodeId {
	root := p.open(NodeCompilationUnit)

	// A module-info.java file consists of a single module declaration
	// instead of package/import/type declarations.
	if p.peekIdent("open") && p.peekAt(1).Kind == TokIdent && p.peekAt(1).Literal == "module" {
		p.addChild(root, p.parseModuleDecl())
		return p.close(root)
	}
	if p.peekIdent("module") && (p.peekAt(1).Kind == TokIdent || p.peekAt(1).Kind == TokDot) {
		p.addChild(root, p.parseModuleDecl())
		return p.close(root)
	}

	if p.curKind() == TokAt || p.curKind() == TokPackage {
		p.addChild(root, p.parsePackageDecl())
	}

	for p.curKind() == TokImport {
		p.addChild(root, p.parseImportDecl())
	}

	for !p.atEOF() {
		if _, ok := p.accept(TokSemi); ok {
			continue
		}
		p.addChild(root, p.parseTypeDeclOrUnnamedMember())
	}

	return p.close(root)
}

// parsePackageDecl parses "@Ann package foo.bar;".
func (p *parser) parsePackageDecl() NodeId {
	id := p.open(NodePackageDecl)
	for p.curKind() == TokAt {
		p.addChild(id, p.parseAnnotationUse())
	}
	p.expect(TokPackage)
	p.addChild(id, p.parseQualifiedName())
	p.expect(TokSemi)
	return p.close(id)
}

// parseImportDecl parses "import [static] foo.bar.Baz;" or
// "import foo.bar.*;" or "import module foo.bar;".
func (p *parser) parseImportDecl() NodeId {
	id := p.open(NodeImportDecl)
	p.expect(TokImport)
	isStatic := false
	if p.curKind() == TokStatic {
		p.advance()
		isStatic = true
	}
	_ = isStatic
	if p.acceptIdent("module") {
		p.addChild(id, p.parseQualifiedName())
		p.expect(TokSemi)
		return p.close(id)
	}
	p.addChild(id, p.parseQualifiedNameWithWildcard())
	p.expect(TokSemi)
	return p.close(id)
}

// parseQualifiedName parses a dot-separated identifier sequence.
func (p *parser) parseQualifiedName() NodeId {
	id := p.open(NodeQualifiedName)
	var parts []string
	if t, ok := p.accept(TokIdent); ok {
		parts = append(parts, t.Literal)
	} else {
		p.errorf(p.cur().Span, []TokenKind{TokIdent}, "expected identifier")
	}
	for p.curKind() == TokDot && p.peekAt(1).Kind == TokIdent {
		p.advance()
		parts = append(parts, p.advance().Literal)
	}
	p.arena.SetQualifiedName(id, QualifiedNameAttr{Parts: parts})
	return p.close(id)
}

// parseQualifiedNameWithWildcard is parseQualifiedName plus a trailing
// ".*" for on-demand imports.
func (p *parser) parseQualifiedNameWithWildcard() NodeId {
	id := p.open(NodeQualifiedName)
	var parts []string
	if t, ok := p.accept(TokIdent); ok {
		parts = append(parts, t.Literal)
	}
	for p.curKind() == TokDot {
		if p.peekAt(1).Kind == TokStar {
			p.advance()
			p.advance()
			parts = append(parts, "*")
			break
		}
		if p.peekAt(1).Kind != TokIdent {
			break
		}
		p.advance()
		parts = append(parts, p.advance().Literal)
	}
	p.arena.SetQualifiedName(id, QualifiedNameAttr{Parts: parts})
	return p.close(id)
}

// parseModuleDecl parses "[open] module foo.bar { directives... }".
func (p *parser) parseModuleDecl() NodeId {
	id := p.open(NodeModuleDecl)
	p.acceptIdent("open")
	p.acceptIdent("module")
	p.addChild(id, p.parseQualifiedName())
	p.expect(TokLBrace)
	for p.curKind() != TokRBrace && !p.atEOF() {
		p.addChild(id, p.parseModuleDirective())
	}
	p.expect(TokRBrace)
	return p.close(id)
}

func (p *parser) parseModuleDirective() NodeId {
	switch {
	case p.acceptIdent("requires"):
		id := p.open(NodeModuleRequires)
		for p.acceptIdent("transitive") || p.curKind() == TokStatic {
			p.advance()
		}
		p.addChild(id, p.parseQualifiedName())
		p.expect(TokSemi)
		return p.close(id)
	case p.acceptIdent("exports"):
		id := p.open(NodeModuleExports)
		p.addChild(id, p.parseQualifiedName())
		if p.acceptIdent("to") {
			p.addChild(id, p.parseQualifiedName())
			for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
				p.addChild(id, p.parseQualifiedName())
			}
		}
		p.expect(TokSemi)
		return p.close(id)
	case p.acceptIdent("opens"):
		id := p.open(NodeModuleOpens)
		p.addChild(id, p.parseQualifiedName())
		if p.acceptIdent("to") {
			p.addChild(id, p.parseQualifiedName())
		}
		p.expect(TokSemi)
		return p.close(id)
	case p.acceptIdent("uses"):
		id := p.open(NodeModuleUses)
		p.addChild(id, p.parseQualifiedName())
		p.expect(TokSemi)
		return p.close(id)
	case p.acceptIdent("provides"):
		id := p.open(NodeModuleProvides)
		p.addChild(id, p.parseQualifiedName())
		p.acceptIdent("with")
		p.addChild(id, p.parseQualifiedName())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseQualifiedName())
		}
		p.expect(TokSemi)
		return p.close(id)
	default:
		n := p.errorNode()
		p.synchronize()
		return n
	}
}

// parseTypeDeclOrUnnamedMember distinguishes a normal top-level type
// declaration from a top-level field or method belonging to an implicit
// unnamed class (JEP 445).
func (p *parser) parseTypeDeclOrUnnamedMember() NodeId {
	if p.looksLikeTypeDeclStart() {
		return p.parseTypeDecl()
	}
	return p.parseClassMember()
}

// looksLikeTypeDeclStart scans modifiers/annotations to see whether a
// class/interface/enum/record/annotation keyword follows.
func (p *parser) looksLikeTypeDeclStart() bool {
	i := 0
	for {
		k := p.peekAt(i).Kind
		switch k {
		case TokPublic, TokPrivate, TokProtected, TokStatic, TokFinal, TokAbstract, TokStrictfp:
			i++
			continue
		case TokAt:
			// Skip "@Name(...)" or "@Name".
			i++
			if p.peekAt(i).Kind == TokIdent {
				i++
			}
			if p.peekAt(i).Kind == TokLParen {
				depth := 0
				for {
					kk := p.peekAt(i).Kind
					if kk == TokLParen {
						depth++
					} else if kk == TokRParen {
						depth--
						i++
						if depth == 0 {
							break
						}
						continue
					} else if kk == TokEOF {
						break
					}
					i++
				}
			}
			continue
		}
		break
	}
	switch p.peekAt(i).Kind {
	case TokClass, TokInterface, TokEnum:
		return true
	}
	if p.peekAt(i).Kind == TokIdent && p.peekAt(i).Literal == "record" && p.peekAt(i+1).Kind == TokIdent {
		return true
	}
	if p.peekAt(i).Kind == TokIdent && (p.peekAt(i).Literal == "sealed" || p.peekAt(i).Literal == "non-sealed") {
		return true
	}
	return false
}

// parseModifiers consumes modifier keywords and annotations, returning a
// ModifierList node (always allocated, even if empty, so callers have a
// uniform child to attach).
func (p *parser) parseModifiers() NodeId {
	id := p.open(NodeModifierList)
	var bits ModifierBits
	var anns []NodeId
loop:
	for {
		switch p.curKind() {
		case TokPublic:
			bits |= ModPublic
			p.advance()
		case TokPrivate:
			bits |= ModPrivate
			p.advance()
		case TokProtected:
			bits |= ModProtected
			p.advance()
		case TokStatic:
			bits |= ModStatic
			p.advance()
		case TokFinal:
			bits |= ModFinal
			p.advance()
		case TokAbstract:
			bits |= ModAbstract
			p.advance()
		case TokSynchronized:
			bits |= ModSynchronized
			p.advance()
		case TokNative:
			bits |= ModNative
			p.advance()
		case TokTransient:
			bits |= ModTransient
			p.advance()
		case TokVolatile:
			bits |= ModVolatile
			p.advance()
		case TokStrictfp:
			bits |= ModStrictfp
			p.advance()
		case TokDefault:
			bits |= ModDefault
			p.advance()
		case TokAt:
			anns = append(anns, p.parseAnnotationUse())
		case TokIdent:
			if p.cur().Literal == "sealed" {
				bits |= ModSealed
				p.advance()
				continue
			}
			if p.cur().Literal == "non-sealed" {
				bits |= ModNonSealed
				p.advance()
				continue
			}
			break loop
		default:
			break loop
		}
	}
	p.arena.SetModifiers(id, ModifierAttr{Bits: bits, Annotations: anns})
	return p.close(id)
}

// parseAnnotationUse parses "@Name", "@Name(value)", or "@Name(a=1, b=2)".
// The argument list is not modeled structurally beyond its token span since
// rules never need to restructure annotation arguments, only preserve and
// re-space them.
func (p *parser) parseAnnotationUse() NodeId {
	id := p.open(NodeAnnotationUse)
	p.expect(TokAt)
	p.addChild(id, p.parseQualifiedName())
	if p.curKind() == TokLParen {
		p.advance()
		depth := 1
		for depth > 0 && !p.atEOF() {
			switch p.curKind() {
			case TokLParen:
				depth++
			case TokRParen:
				depth--
				if depth == 0 {
					p.advance()
					return p.close(id)
				}
			}
			p.advance()
		}
	}
	return p.close(id)
}

// parseTypeDecl parses one class/interface/enum/record/annotation
// declaration including its modifiers.
func (p *parser) parseTypeDecl() NodeId {
	mods := p.parseModifiers()
	switch {
	case p.curKind() == TokClass:
		return p.parseClassDecl(mods)
	case p.curKind() == TokInterface:
		return p.parseInterfaceDecl(mods)
	case p.curKind() == TokEnum:
		return p.parseEnumDecl(mods)
	case p.peekIdent("record"):
		return p.parseRecordDecl(mods)
	case p.curKind() == TokAt && p.peekAt(1).Kind == TokInterface:
		return p.parseAnnotationDecl(mods)
	default:
		n := p.errorNode()
		p.synchronize()
		return n
	}
}

func (p *parser) parseTypeParameters(id NodeId) {
	if p.curKind() != TokLt {
		return
	}
	p.advance()
	for {
		tp := p.open(NodeTypeParameter)
		p.expect(TokIdent)
		if p.curKind() == TokExtends {
			p.advance()
			p.addChild(tp, p.parseTypeRef())
			for p.curKind() == TokAmp {
				p.advance()
				p.addChild(tp, p.parseTypeRef())
			}
		}
		p.addChild(id, p.close(tp))
		if _, ok := p.accept(TokComma); !ok {
			break
		}
	}
	p.closeGenericAngle()
}

// closeGenericAngle consumes the closing '>' of a type parameter list,
// splitting a merged ">>"/">>>" token if the list is itself nested inside
// another generic's argument list.
func (p *parser) closeGenericAngle() {
	p.closeAngle()
}

func (p *parser) parseClassDecl(mods NodeId) NodeId {
	id := p.open(NodeClassDecl)
	p.addChild(id, mods)
	p.expect(TokClass)
	p.expect(TokIdent)
	p.parseTypeParameters(id)
	if p.curKind() == TokExtends {
		p.advance()
		p.addChild(id, p.parseTypeRef())
	}
	if p.curKind() == TokImplements {
		p.advance()
		p.addChild(id, p.parseTypeRef())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseTypeRef())
		}
	}
	p.parsePermitsClause(id)
	p.parseClassBody(id)
	return p.close(id)
}

func (p *parser) parseInterfaceDecl(mods NodeId) NodeId {
	id := p.open(NodeInterfaceDecl)
	p.addChild(id, mods)
	p.expect(TokInterface)
	p.expect(TokIdent)
	p.parseTypeParameters(id)
	if p.curKind() == TokExtends {
		p.advance()
		p.addChild(id, p.parseTypeRef())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseTypeRef())
		}
	}
	p.parsePermitsClause(id)
	p.parseClassBody(id)
	return p.close(id)
}

func (p *parser) parsePermitsClause(parent NodeId) {
	if !p.peekIdent("permits") {
		return
	}
	id := p.open(NodePermitsClause)
	p.advance()
	p.addChild(id, p.parseTypeRef())
	for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
		p.addChild(id, p.parseTypeRef())
	}
	p.addChild(parent, p.close(id))
}

func (p *parser) parseEnumDecl(mods NodeId) NodeId {
	id := p.open(NodeEnumDecl)
	p.addChild(id, mods)
	p.expect(TokEnum)
	p.expect(TokIdent)
	if p.curKind() == TokImplements {
		p.advance()
		p.addChild(id, p.parseTypeRef())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseTypeRef())
		}
	}
	p.expect(TokLBrace)
	for p.curKind() == TokAt || p.curKind() == TokIdent {
		p.addChild(id, p.parseEnumConstant())
		if _, ok := p.accept(TokComma); !ok {
			break
		}
		if p.curKind() == TokSemi || p.curKind() == TokRBrace {
			break
		}
	}
	if _, ok := p.accept(TokSemi); ok {
		for p.curKind() != TokRBrace && !p.atEOF() {
			p.addChild(id, p.parseClassMember())
		}
	}
	p.expect(TokRBrace)
	return p.close(id)
}

func (p *parser) parseEnumConstant() NodeId {
	id := p.open(NodeEnumConstant)
	for p.curKind() == TokAt {
		p.addChild(id, p.parseAnnotationUse())
	}
	p.expect(TokIdent)
	if p.curKind() == TokLParen {
		p.advance()
		if p.curKind() != TokRParen {
			p.addChild(id, p.parseExpr())
			for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
				p.addChild(id, p.parseExpr())
			}
		}
		p.expect(TokRParen)
	}
	if p.curKind() == TokLBrace {
		p.parseClassBody(id)
	}
	return p.close(id)
}

func (p *parser) parseRecordDecl(mods NodeId) NodeId {
	id := p.open(NodeRecordDecl)
	p.addChild(id, mods)
	p.advance() // "record"
	p.expect(TokIdent)
	p.parseTypeParameters(id)
	p.expect(TokLParen)
	if p.curKind() != TokRParen {
		p.addChild(id, p.parseRecordComponent())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseRecordComponent())
		}
	}
	p.expect(TokRParen)
	if p.curKind() == TokImplements {
		p.advance()
		p.addChild(id, p.parseTypeRef())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(id, p.parseTypeRef())
		}
	}
	p.parseClassBody(id)
	return p.close(id)
}

func (p *parser) parseRecordComponent() NodeId {
	id := p.open(NodeRecordComponent)
	for p.curKind() == TokAt {
		p.addChild(id, p.parseAnnotationUse())
	}
	p.addChild(id, p.parseTypeRef())
	p.expect(TokIdent)
	return p.close(id)
}

func (p *parser) parseAnnotationDecl(mods NodeId) NodeId {
	id := p.open(NodeAnnotationDecl)
	p.addChild(id, mods)
	p.expect(TokAt)
	p.expect(TokInterface)
	p.expect(TokIdent)
	p.parseClassBody(id)
	return p.close(id)
}

// parseClassBody parses "{ members... }" and attaches each member to
// parent.
func (p *parser) parseClassBody(parent NodeId) {
	p.expect(TokLBrace)
	for p.curKind() != TokRBrace && !p.atEOF() {
		if _, ok := p.accept(TokSemi); ok {
			continue
		}
		p.addChild(parent, p.parseClassMember())
	}
	p.expect(TokRBrace)
}

// parseClassMember parses one field, method, constructor, nested type, or
// initializer block.
func (p *parser) parseClassMember() NodeId {
	mods := p.parseModifiers()

	if p.looksLikeNestedTypeAt() {
		return p.finishNestedType(mods)
	}

	// Static or instance initializer block: modifiers followed directly by
	// "{".
	if p.curKind() == TokLBrace {
		id := p.open(NodeInitializerBlock)
		p.addChild(id, mods)
		p.addChild(id, p.parseBlock())
		return p.close(id)
	}

	return p.finishMethodOrField(mods)
}

func (p *parser) looksLikeNestedTypeAt() bool {
	switch p.curKind() {
	case TokClass, TokInterface, TokEnum:
		return true
	case TokAt:
		return p.peekAt(1).Kind == TokInterface
	case TokIdent:
		if p.cur().Literal == "record" && p.peekAt(1).Kind == TokIdent {
			return true
		}
	}
	return false
}

func (p *parser) finishNestedType(mods NodeId) NodeId {
	switch {
	case p.curKind() == TokClass:
		return p.parseClassDecl(mods)
	case p.curKind() == TokInterface:
		return p.parseInterfaceDecl(mods)
	case p.curKind() == TokEnum:
		return p.parseEnumDecl(mods)
	case p.peekIdent("record"):
		return p.parseRecordDecl(mods)
	case p.curKind() == TokAt:
		return p.parseAnnotationDecl(mods)
	default:
		n := p.errorNode()
		p.synchronize()
		return n
	}
}

// finishMethodOrField parses everything after modifiers: an optional type
// parameter list, a return/field type (or constructor name), the member
// name, and then dispatches on whether a "(" follows.
func (p *parser) finishMethodOrField(mods NodeId) NodeId {
	genericHolder := p.open(NodeError) // scratch node to collect <T> children before we know the real kind
	p.parseTypeParameters(genericHolder)
	typeParams := p.arena.Children(genericHolder)
	delete(p.childCursor, genericHolder)

	// Constructor: identifier immediately followed by "(", and that
	// identifier is conventionally the enclosing type's name; the parser
	// does not verify the name match (that's a semantic check outside the
	// formatter's scope), only the shape.
	if p.curKind() == TokIdent && p.peekAt(1).Kind == TokLParen && !p.isCompactConstructorAhead() {
		id := p.open(NodeConstructorDecl)
		p.addChild(id, mods)
		for _, tp := range typeParams {
			p.addChild(id, tp)
		}
		p.expect(TokIdent)
		p.parseParameterList(id)
		p.parseThrowsClause(id)
		p.addChild(id, p.parseBlock())
		return p.close(id)
	}

	// Compact constructor (records): "Name { ... }" with no parameter list.
	if p.curKind() == TokIdent && p.peekAt(1).Kind == TokLBrace {
		id := p.open(NodeCompactConstructorDecl)
		p.addChild(id, mods)
		p.expect(TokIdent)
		p.addChild(id, p.parseBlock())
		return p.close(id)
	}

	typ := p.parseTypeRef()

	if p.peekAt(1).Kind == TokLParen {
		p.expect(TokIdent) // method name
		id := p.open(NodeMethodDecl)
		p.addChild(id, mods)
		for _, tp := range typeParams {
			p.addChild(id, tp)
		}
		p.addChild(id, typ)
		p.parseParameterList(id)
		// Legacy C-style trailing array brackets on the method, e.g.
		// "int foo()[]", are tolerated by consuming them without altering
		// the recorded return type node (a rare, discouraged form).
		for p.curKind() == TokLBracket {
			p.advance()
			p.expect(TokRBracket)
		}
		p.parseThrowsClause(id)
		if p.curKind() == TokLBrace {
			p.addChild(id, p.parseBlock())
		} else if p.acceptIdent("default") {
			// Annotation element default value.
			p.addChild(id, p.parseExpr())
			p.expect(TokSemi)
		} else {
			p.expect(TokSemi)
		}
		return p.close(id)
	}

	// Field declaration, possibly with multiple declarators.
	id := p.open(NodeFieldDecl)
	p.addChild(id, mods)
	p.addChild(id, typ)
	p.addChild(id, p.finishVariableDeclarator())
	for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
		p.addChild(id, p.parseVariableDeclarator())
	}
	p.expect(TokSemi)
	return p.close(id)
}

// isCompactConstructorAhead disambiguates "Name(" as a normal constructor
// from a plain call-shaped field initializer; at class-member level a
// leading identifier followed by "(" is always a constructor, so this
// always returns false. It exists as a documented extension point for
// record compact constructors, which are instead caught earlier by the
// "Name {" shape.
func (p *parser) isCompactConstructorAhead() bool { return false }

// finishVariableDeclarator parses the declarator whose name token has not
// yet been consumed.
func (p *parser) finishVariableDeclarator() NodeId {
	return p.parseVariableDeclarator()
}

func (p *parser) parseVariableDeclarator() NodeId {
	id := p.open(NodeVariableDeclarator)
	p.expect(TokIdent)
	// C-style array declarators, e.g. "int a[][]".
	for p.curKind() == TokLBracket {
		p.advance()
		p.expect(TokRBracket)
	}
	if _, ok := p.accept(TokEq); ok {
		if p.curKind() == TokLBrace {
			p.addChild(id, p.parseArrayInitializer())
		} else {
			p.addChild(id, p.parseExpr())
		}
	}
	return p.close(id)
}

func (p *parser) parseParameterList(parent NodeId) {
	p.expect(TokLParen)
	if p.curKind() != TokRParen {
		p.addChild(parent, p.parseParameter())
		for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
			p.addChild(parent, p.parseParameter())
		}
	}
	p.expect(TokRParen)
}

func (p *parser) parseParameter() NodeId {
	id := p.open(NodeParameter)
	p.addChild(id, p.parseModifiers())
	p.addChild(id, p.parseTypeRef())
	if _, ok := p.accept(TokEllipsis); ok {
		// Varargs; the "..." is consumed and not recorded in the tree, since
		// it only affects spacing, not structure.
	}
	p.expect(TokIdent)
	for p.curKind() == TokLBracket {
		p.advance()
		p.expect(TokRBracket)
	}
	return p.close(id)
}

func (p *parser) parseThrowsClause(parent NodeId) {
	if p.curKind() != TokThrows {
		return
	}
	id := p.open(NodeThrowsClause)
	p.advance()
	p.addChild(id, p.parseTypeRef())
	for _, ok := p.accept(TokComma); ok; _, ok = p.accept(TokComma) {
		p.addChild(id, p.parseTypeRef())
	}
	p.addChild(parent, p.close(id))
}

func (p *parser) parseArrayInitializer() NodeId {
	id := p.open(NodeArrayInitializer)
	p.expect(TokLBrace)
	for p.curKind() != TokRBrace && !p.atEOF() {
		if p.curKind() == TokLBrace {
			p.addChild(id, p.parseArrayInitializer())
		} else {
			p.addChild(id, p.parseExpr())
		}
		if _, ok := p.accept(TokComma); !ok {
			break
		}
	}
	p.expect(TokRBrace)
	return p.close(id)
}
