// Package parser implements the recursive-descent, precedence-climbing
// parser that turns a token stream into a source AST.
package parser

import (
	"fmt"

	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/lexer"
	"github.com/mna/minicc/lang/token"
)

// Error reports a parse error together with the token it was raised on.
type Error struct {
	Msg string
	Tok token.Token
}

func (e *Error) Error() string { return e.Msg }

// Parse tokenizes and parses src, returning the program AST or the first
// lex/parse error encountered. There is no error recovery: parsing aborts
// at the first failure, matching the front end's fail-fast contract.
func Parse(src []byte) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	var p parser
	p.toks = toks
	return p.parseProgram()
}

// parser consumes a pre-scanned token slice. Unlike the teacher project's
// parser, there is no panic-mode recovery: every parse function returns an
// error directly and callers propagate it immediately.
type parser struct {
	toks []lexer.TokenValue
	pos  int
}

func (p *parser) cur() lexer.TokenValue { return p.toks[p.pos] }
func (p *parser) tok() token.Token      { return p.toks[p.pos].Token }
func (p *parser) advance()              { p.pos++ }
func (p *parser) at(t token.Token) bool { return p.tok() == t }

func (p *parser) errorf(format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Tok: p.tok()}
}

// expect consumes the current token if it matches t, returning its value;
// otherwise it returns a parse error.
func (p *parser) expect(t token.Token) (lexer.TokenValue, error) {
	if p.tok() != t {
		return lexer.TokenValue{}, p.errorf("expected %s, got %s", t.GoString(), p.tok().GoString())
	}
	tv := p.cur()
	p.advance()
	return tv, nil
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.at(token.EOF) {
		d, err := p.parseTopLevelDecl()
		if err != nil {
			return nil, err
		}
		prog.Decls = append(prog.Decls, d)
	}
	return prog, nil
}
