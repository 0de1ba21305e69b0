package parser

import (
	"github.com/mna/minicc/lang/ast"
	"github.com/mna/minicc/lang/token"
)

// binPrec gives each binary/ternary/assignment operator a binding power
// where a HIGHER number binds TIGHTER (the reverse of the numbering used
// when this table was specified, where lower numbers bind tighter; it is
// inverted here so the usual precedence-climbing comparison, "continue
// while the next operator's power exceeds min power", falls out directly).
var binPrec = map[token.Token]int{
	token.STAR: 12, token.SLASH: 12, token.PERCENT: 12,
	token.PLUS: 11, token.MINUS: 11,
	token.SHL: 10, token.SHR: 10,
	token.LT: 9, token.LE: 9, token.GT: 9, token.GE: 9,
	token.EQEQ: 8, token.BANGEQ: 8,
	token.AMP:      7,
	token.CARET:    6,
	token.PIPE:     5,
	token.AMPAMP:   4,
	token.PIPEPIPE: 3,
	token.QUESTION: 2,
}

// isAssignOp reports whether t is "=" or a compound assignment operator;
// assignment binds loosest of all and is right-associative.
func isAssignOp(t token.Token) bool { return t.IsAssignOp() }

func (p *parser) parseExpr() (ast.Expr, error) {
	return p.parseExprPrec(0)
}

// parseExprPrec implements precedence climbing: it parses a unary factor,
// then repeatedly folds in binary/ternary/assignment operators whose power
// exceeds minPower, recursing with the operator's own power (or power-1
// for an explicitly right-associative operator, so equal-power operators
// to its right are also folded in).
func (p *parser) parseExprPrec(minPower int) (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		op := p.tok()
		switch {
		case op == token.QUESTION && 2 > minPower:
			p.advance()
			then, err := p.parseExpr() // top precedence inside "? :"
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.COLON); err != nil {
				return nil, err
			}
			els, err := p.parseExprPrec(1) // right-associative: allow another '?:' at equal power
			if err != nil {
				return nil, err
			}
			left = &ast.ConditionalExpr{Cond: left, Then: then, Else: els}

		case isAssignOp(op) && 1 > minPower:
			p.advance()
			rhs, err := p.parseExprPrec(0) // right-associative
			if err != nil {
				return nil, err
			}
			left = &ast.AssignExpr{Op: op, Target: left, Value: rhs}

		default:
			power, ok := binPrec[op]
			if !ok || power <= minPower {
				return left, nil
			}
			p.advance()
			right, err := p.parseExprPrec(power) // left-associative
			if err != nil {
				return nil, err
			}
			left = &ast.BinaryExpr{Op: op, Left: left, Right: right}
		}
	}
}

// parseUnary parses a prefix-unary-or-factor: -, ~, ! bind to the factor
// that follows them.
func (p *parser) parseUnary() (ast.Expr, error) {
	switch p.tok() {
	case token.MINUS, token.TILDE, token.BANG:
		op := p.tok()
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Op: op, Operand: operand}, nil
	default:
		return p.parseFactor()
	}
}

func (p *parser) parseFactor() (ast.Expr, error) {
	switch p.tok() {
	case token.INT:
		tv := p.cur()
		p.advance()
		return &ast.ConstExpr{Value: tv.Int}, nil

	case token.LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil

	case token.IDENT:
		name := p.cur().Name
		p.advance()
		if p.at(token.LPAREN) {
			return p.parseCallRest(name)
		}
		return &ast.VarExpr{Name: name}, nil

	default:
		return nil, p.errorf("expected an expression, got %s", p.tok().GoString())
	}
}

// parseCallRest parses a call argument list; the callee name has already
// been consumed by the caller, and '(' is the current token.
func (p *parser) parseCallRest(name string) (ast.Expr, error) {
	p.advance() // '('
	call := &ast.CallExpr{Name: name}
	if !p.at(token.RPAREN) {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
			if !p.at(token.COMMA) {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}
