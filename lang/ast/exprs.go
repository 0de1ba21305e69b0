package ast

import "github.com/mna/minicc/lang/token"

// VarExpr is a reference to a variable by its source-level name. The
// resolver pass rewrites Name in place to the unique internal name.
type VarExpr struct{ Name string }

func (n *VarExpr) Walk(Visitor) {}
func (*VarExpr) exprNode()      {}

// ConstExpr is an integer literal.
type ConstExpr struct{ Value int64 }

func (n *ConstExpr) Walk(Visitor) {}
func (*ConstExpr) exprNode()      {}

// UnaryExpr is a prefix unary operator: -, ~, or !.
type UnaryExpr struct {
	Op      token.Token
	Operand Expr
}

func (n *UnaryExpr) Walk(v Visitor) { Walk(v, n.Operand) }
func (*UnaryExpr) exprNode()        {}

// BinaryExpr is a binary arithmetic, bitwise, relational, or logical
// operator. && and || are short-circuiting and lowered to branches rather
// than eager boolean ops.
type BinaryExpr struct {
	Op    token.Token
	Left  Expr
	Right Expr
}

func (n *BinaryExpr) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}
func (*BinaryExpr) exprNode() {}

// AssignExpr is an assignment, plain or compound. Op is token.ASSIGN for
// plain "=", or the compound token (e.g. token.PLUSEQ) otherwise; the
// compound operator's underlying arithmetic op is recovered with
// Op.CompoundOp(). Target must be an lvalue (enforced by the resolver).
type AssignExpr struct {
	Op     token.Token
	Target Expr
	Value  Expr
}

func (n *AssignExpr) Walk(v Visitor) {
	Walk(v, n.Target)
	Walk(v, n.Value)
}
func (*AssignExpr) exprNode() {}

// ConditionalExpr is the ternary "cond ? then : else_".
type ConditionalExpr struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (n *ConditionalExpr) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Then)
	Walk(v, n.Else)
}
func (*ConditionalExpr) exprNode() {}

// CallExpr is a function call by name with positional arguments.
type CallExpr struct {
	Name string
	Args []Expr
}

func (n *CallExpr) Walk(v Visitor) {
	for _, a := range n.Args {
		Walk(v, a)
	}
}
func (*CallExpr) exprNode() {}
