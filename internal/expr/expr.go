package expr

import (
	"fmt"
	"math"
	"sort"
)

// Env maps symbol names to values for evaluation.
type Env map[string]float64

// Error reports a parse or evaluation failure for a single expression.
type Error struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("expr %q: %s (offset %d)", e.Expr, e.Msg, e.Pos)
}

type node interface {
	eval(src string, env Env) (float64, error)
	vars(set map[string]struct{})
}

type literal struct {
	val float64
}

func (l literal) eval(string, Env) (float64, error) { return l.val, nil }
func (l literal) vars(map[string]struct{})          {}

type symbol struct {
	name string
	pos  int
}

func (s symbol) eval(src string, env Env) (float64, error) {
	v, ok := env[s.name]
	if !ok {
		return 0, &Error{Expr: src, Pos: s.pos, Msg: "unknown symbol " + s.name}
	}
	return v, nil
}

func (s symbol) vars(set map[string]struct{}) { set[s.name] = struct{}{} }

type unary struct {
	operand node
}

func (u unary) eval(src string, env Env) (float64, error) {
	v, err := u.operand.eval(src, env)
	return -v, err
}

func (u unary) vars(set map[string]struct{}) { u.operand.vars(set) }

type binary struct {
	op          byte
	left, right node
	pos         int
}

func (b binary) eval(src string, env Env) (float64, error) {
	l, err := b.left.eval(src, env)
	if err != nil {
		return 0, err
	}
	r, err := b.right.eval(src, env)
	if err != nil {
		return 0, err
	}
	switch b.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, &Error{Expr: src, Pos: b.pos, Msg: "division by zero"}
		}
		return l / r, nil
	case '^':
		return math.Pow(l, r), nil
	}
	return 0, &Error{Expr: src, Pos: b.pos, Msg: fmt.Sprintf("bad operator %q", b.op)}
}

func (b binary) vars(set map[string]struct{}) {
	b.left.vars(set)
	b.right.vars(set)
}

// Expr is a compiled arithmetic expression. Compile once, evaluate many
// times; evaluation never mutates the tree, so a compiled Expr is safe for
// concurrent readers.
type Expr struct {
	src  string
	root node
}

// Compile parses src into an expression tree.
func Compile(src string) (*Expr, error) {
	p := &parser{src: src}
	root, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Expr{src: src, root: root}, nil
}

// Eval computes the expression value under env. Unknown symbols and
// division by zero return an *Error.
func (e *Expr) Eval(env Env) (float64, error) {
	return e.root.eval(e.src, env)
}

// String returns the source text the expression was compiled from.
func (e *Expr) String() string { return e.src }

// Vars returns the free symbols of the expression, sorted.
func (e *Expr) Vars() []string {
	set := make(map[string]struct{})
	e.root.vars(set)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Eval compiles and evaluates src in one shot.
func Eval(src string, env Env) (float64, error) {
	e, err := Compile(src)
	if err != nil {
		return 0, err
	}
	return e.Eval(env)
}
