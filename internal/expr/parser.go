package expr

import "strings"

// parser is a recursive-descent parser. From loosest to tightest binding:
// additive operators, multiplicative operators, prefix sign, then ^. Binary
// operators associate to the left; ^ binds tighter than a leading minus, so
// -x^2 is -(x^2).
type parser struct {
	tokens []token
	pos    int
	table  *Dispatch
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.typ != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(ops string) bool {
	t := p.peek()
	return t.typ == tokOp && strings.Contains(ops, t.val)
}

func (p *parser) parse() (node, error) {
	if p.peek().typ == tokEOF {
		return nil, errorf(SyntaxError, 0, "empty expression")
	}
	n, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.typ != tokEOF {
		return nil, errorf(SyntaxError, t.pos, "unexpected %s", t.describe())
	}
	return n, nil
}

func (p *parser) parseAdditive() (node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.isOp("+-") {
		op := p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if left, err = p.binary(op, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parseTerm() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isOp("*/%") {
		op := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if left, err = p.binary(op, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.isOp("+-") {
		op := p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op.val == "-" {
			return negNode{operand: operand}, nil
		}
		return operand, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.isOp("^") {
		op := p.next()
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		if left, err = p.binary(op, left, right); err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parseExponent allows a signed operand after ^, as in 2^-1.
func (p *parser) parseExponent() (node, error) {
	if p.isOp("+-") {
		op := p.next()
		operand, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		if op.val == "-" {
			return negNode{operand: operand}, nil
		}
		return operand, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.next()
	switch t.typ {
	case tokNumber:
		return numNode(t.num), nil
	case tokIdent:
		if p.peek().typ == tokLParen {
			return p.parseCall(t)
		}
		return p.identifier(t)
	case tokLParen:
		inner, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.typ != tokRParen {
			return nil, errorf(SyntaxError, t.pos, "missing closing parenthesis")
		}
		return inner, nil
	case tokEOF:
		return nil, errorf(SyntaxError, t.pos, "unexpected end of expression")
	default:
		return nil, errorf(SyntaxError, t.pos, "unexpected %s", t.describe())
	}
}

func (p *parser) identifier(t token) (node, error) {
	if t.val == "x" {
		return varNode{}, nil
	}
	if v, ok := p.table.Constants[t.val]; ok {
		return numNode(v), nil
	}
	if _, ok := p.table.Functions[t.val]; ok {
		return nil, errorf(SyntaxError, t.pos, "function %q needs an argument list", t.val)
	}
	return nil, errorf(UnknownIdentifierError, t.pos, "%q is not x, a constant or a function", t.val)
}

func (p *parser) parseCall(name token) (node, error) {
	fn, ok := p.table.Functions[name.val]
	if !ok {
		return nil, errorf(UnknownIdentifierError, name.pos, "unknown function %q", name.val)
	}
	p.next() // (

	var args []node
	if p.peek().typ != tokRParen {
		for {
			arg, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().typ != tokComma {
				break
			}
			p.next()
		}
	}
	if closing := p.next(); closing.typ != tokRParen {
		return nil, errorf(SyntaxError, closing.pos, "expected ) to close %s(, got %s", name.val, closing.describe())
	}

	if !fn.accepts(len(args)) {
		return nil, errorf(ArityError, name.pos, "%s expects %s, got %d", name.val, fn.arity(), len(args))
	}
	return callNode{name: name.val, fn: fn, args: args, pos: name.pos}, nil
}

func (p *parser) binary(op token, left, right node) (node, error) {
	fn, ok := p.table.Operators[op.val]
	if !ok {
		return nil, errorf(SyntaxError, op.pos, "unsupported operator %q", op.val)
	}
	return binaryNode{op: op.val, fn: fn, left: left, right: right}, nil
}
