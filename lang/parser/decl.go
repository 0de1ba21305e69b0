package parser

import (
	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/token"
)

// parseSpecifiers consumes the leading bag of specifier tokens for a
// declaration: exactly one type specifier (int) and at most one storage
// class (static|extern), in any order, until a non-specifier token is
// reached.
func (p *parser) parseSpecifiers() (ast.StorageClass, error) {
	sawInt := false
	storage := ast.NoStorage
	for {
		switch p.tok() {
		case token.KwInt:
			if sawInt {
				return 0, p.errorf("duplicate type specifier")
			}
			sawInt = true
			p.advance()
		case token.KwStatic:
			if storage != ast.NoStorage {
				return 0, p.errorf("multiple storage-class specifiers")
			}
			storage = ast.Static
			p.advance()
		case token.KwExtern:
			if storage != ast.NoStorage {
				return 0, p.errorf("multiple storage-class specifiers")
			}
			storage = ast.Extern
			p.advance()
		default:
			if !sawInt {
				return 0, p.errorf("expected a type specifier")
			}
			return storage, nil
		}
	}
}

// parseTopLevelDecl parses one top-level function or variable declaration.
func (p *parser) parseTopLevelDecl() (ast.Decl, error) {
	storage, err := p.parseSpecifiers()
	if err != nil {
		return nil, err
	}
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if p.at(token.LPAREN) {
		return p.parseFuncDeclRest(name.Name, storage)
	}
	return p.parseVarDeclRest(name.Name, storage)
}

// parseFuncDeclRest parses a function declaration/definition after the
// function name has already been consumed; p is positioned at "(".
func (p *parser) parseFuncDeclRest(name string, storage ast.StorageClass) (*ast.FuncDecl, error) {
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	params, err := p.parseParamList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	fd := &ast.FuncDecl{Name: name, Params: params, Storage: storage}
	if p.at(token.SEMI) {
		p.advance()
		return fd, nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	fd.Body = body
	return fd, nil
}

// parseParamList parses either "void" or a comma-separated "int NAME" list.
func (p *parser) parseParamList() ([]string, error) {
	if p.at(token.KwVoid) {
		p.advance()
		return nil, nil
	}
	var params []string
	for {
		if _, err := p.expect(token.KwInt); err != nil {
			return nil, err
		}
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, name.Name)
		if !p.at(token.COMMA) {
			break
		}
		p.advance()
	}
	return params, nil
}

// parseVarDeclRest parses a variable declaration after the declared name has
// already been consumed: an optional "= expr", then ";".
func (p *parser) parseVarDeclRest(name string, storage ast.StorageClass) (*ast.VarDecl, error) {
	vd := &ast.VarDecl{Name: name, Storage: storage}
	if p.at(token.ASSIGN) {
		p.advance()
		init, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		vd.Init = init
	}
	if _, err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	return vd, nil
}
