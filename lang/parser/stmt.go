package parser

import (
	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/token"
)

// isDeclStart reports whether the current token can only begin a
// declaration (a type specifier or a storage-class specifier).
func (p *parser) isDeclStart() bool {
	switch p.tok() {
	case token.KwInt, token.KwStatic, token.KwExtern:
		return true
	default:
		return false
	}
}

func (p *parser) parseBlock() (*ast.Block, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	b := &ast.Block{}
	for !p.at(token.RBRACE) {
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	p.advance() // consume '}'
	return b, nil
}

func (p *parser) parseBlockItem() (ast.BlockItem, error) {
	if p.isDeclStart() {
		d, err := p.parseTopLevelDecl()
		if err != nil {
			return nil, err
		}
		return &ast.DeclItem{Decl: d}, nil
	}
	s, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.StmtItem{Stmt: s}, nil
}

func (p *parser) parseStmt() (ast.Stmt, error) {
	switch p.tok() {
	case token.KwReturn:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.ReturnStmt{Expr: e}, nil

	case token.KwIf:
		return p.parseIfStmt()

	case token.LBRACE:
		b, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.CompoundStmt{Block: b}, nil

	case token.KwBreak:
		p.advance()
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.BreakStmt{}, nil

	case token.KwContinue:
		p.advance()
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.ContinueStmt{}, nil

	case token.KwWhile:
		return p.parseWhileStmt()

	case token.KwDo:
		return p.parseDoWhileStmt()

	case token.KwFor:
		return p.parseForStmt()

	case token.KwSwitch:
		return p.parseSwitchStmt()

	case token.SEMI:
		p.advance()
		return &ast.NullStmt{}, nil

	default:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.ExprStmt{Expr: e}, nil
	}
}

func (p *parser) parseIfStmt() (ast.Stmt, error) {
	p.advance() // 'if'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	then, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	ifs := &ast.IfStmt{Cond: cond, Then: then}
	if p.at(token.KwElse) {
		p.advance()
		els, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		ifs.Else = els
	}
	return ifs, nil
}

func (p *parser) parseWhileStmt() (ast.Stmt, error) {
	p.advance() // 'while'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *parser) parseDoWhileStmt() (ast.Stmt, error) {
	p.advance() // 'do'
	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwWhile); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.DoWhileStmt{Body: body, Cond: cond}, nil
}

func (p *parser) parseForStmt() (ast.Stmt, error) {
	p.advance() // 'for'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	init, err := p.parseForInit()
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.at(token.SEMI) {
		cond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	var post ast.Expr
	if !p.at(token.RPAREN) {
		post, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.parseStmt()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{Init: init, Cond: cond, Post: post, Body: body}, nil
}

// parseForInit parses a for-loop init clause and consumes the terminating
// ';' (a declaration's own ';', or one the init clause provides itself).
// Storage-class specifiers are accepted syntactically here and rejected
// later by the type checker.
func (p *parser) parseForInit() (ast.ForInit, error) {
	if p.isDeclStart() {
		storage, err := p.parseSpecifiers()
		if err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		vd, err := p.parseVarDeclRest(name.Name, storage)
		if err != nil {
			return nil, err
		}
		return &ast.ForInitDecl{Decl: vd}, nil
	}
	if p.at(token.SEMI) {
		p.advance()
		return &ast.ForInitExpr{}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return &ast.ForInitExpr{Expr: e}, nil
}

func (p *parser) parseSwitchStmt() (ast.Stmt, error) {
	p.advance() // 'switch'
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	sw := &ast.SwitchStmt{Value: value}
	for p.at(token.KwCase) {
		p.advance()
		lit, err := p.expect(token.INT)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		body, err := p.parseCaseBody()
		if err != nil {
			return nil, err
		}
		sw.Cases = append(sw.Cases, &ast.CaseClause{Value: lit.Int, Body: body})
	}
	if p.at(token.KwDefault) {
		p.advance()
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		body, err := p.parseCaseBody()
		if err != nil {
			return nil, err
		}
		sw.Default = body
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return sw, nil
}

// parseCaseBody parses the block items running up to (but not including)
// the next case/default label or the switch's closing brace.
func (p *parser) parseCaseBody() (*ast.Block, error) {
	b := &ast.Block{}
	for !p.at(token.RBRACE) && !p.at(token.KwCase) && !p.at(token.KwDefault) {
		item, err := p.parseBlockItem()
		if err != nil {
			return nil, err
		}
		b.Items = append(b.Items, item)
	}
	return b, nil
}
