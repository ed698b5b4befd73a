package expr

import (
	"fmt"
	"strconv"
)

// Grammar, loosest to tightest binding:
//
//	sum     := product (('+' | '-') product)*
//	product := power (('*' | '/') power)*
//	power   := unary ('^' power)?        right-associative
//	unary   := '-' unary | primary       unary minus binds tighter than '^'
//	primary := number | symbol | '(' sum ')'
type parser struct {
	src string
	pos int
}

func (p *parser) parse() (node, error) {
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errf("unexpected %q", p.src[p.pos])
	}
	return n, nil
}

func (p *parser) sum() (node, error) {
	left, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		pos := p.pos
		p.pos++
		right, err := p.product()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right, pos: pos}
	}
}

func (p *parser) product() (node, error) {
	left, err := p.power()
	if err != nil {
		return nil, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		pos := p.pos
		p.pos++
		right, err := p.power()
		if err != nil {
			return nil, err
		}
		left = binary{op: op, left: left, right: right, pos: pos}
	}
}

func (p *parser) power() (node, error) {
	base, err := p.unary()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.peek() != '^' {
		return base, nil
	}
	pos := p.pos
	p.pos++
	exp, err := p.power()
	if err != nil {
		return nil, err
	}
	return binary{op: '^', left: base, right: exp, pos: pos}, nil
}

func (p *parser) unary() (node, error) {
	p.skipSpace()
	if p.peek() == '-' {
		p.pos++
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return unary{operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (node, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errf("unexpected end of expression")
	}
	c := p.src[p.pos]
	switch {
	case c == '(':
		p.pos++
		n, err := p.sum()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errf("missing closing parenthesis")
		}
		p.pos++
		return n, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.number()
	case isIdentStart(c):
		return p.symbol(), nil
	}
	return nil, p.errf("unexpected %q", c)
}

func (p *parser) number() (node, error) {
	start := p.pos
	for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
		p.pos++
	}
	if p.peek() == '.' {
		p.pos++
		for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
			p.pos++
		}
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		mark := p.pos
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		if !isDigit(p.peek()) {
			p.pos = mark // not an exponent, e.g. "2elephants"
		} else {
			for p.pos < len(p.src) && isDigit(p.src[p.pos]) {
				p.pos++
			}
		}
	}
	val, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return nil, &Error{Expr: p.src, Pos: start, Msg: "bad number " + p.src[start:p.pos]}
	}
	return literal{val: val}, nil
}

func (p *parser) symbol() node {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return symbol{name: p.src[start:p.pos], pos: start}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) errf(format string, args ...any) error {
	return &Error{Expr: p.src, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }
