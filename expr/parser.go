package expr

import "fmt"

// Operator binding powers. Power binds tighter than unary minus, so
// "-x**2" parses as -(x**2), matching the usual convention.
const (
	precAdd   = 10
	precMul   = 20
	precUnary = 30
	precPow   = 40
)

type parser struct {
	toks []token
	pos  int
}

// parseProgram parses a statement sequence: ident '=' expr, separated by
// tokSep. At least one statement is required.
func parseProgram(toks []token) ([]stmt, error) {
	p := &parser{toks: toks}
	var prog []stmt
	for {
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog = append(prog, s)
		switch p.peek().kind {
		case tokEOF:
			return prog, nil
		case tokSep:
			p.next()
			if p.peek().kind == tokEOF {
				return prog, nil
			}
		default:
			return nil, p.errorf("expected %s after statement, got %s", tokSep, p.peek().kind)
		}
	}
}

func (p *parser) parseStmt() (stmt, error) {
	tok := p.next()
	if tok.kind != tokIdent {
		return stmt{}, p.errorAtf(tok, "expected an assignment target, got %s", tok.kind)
	}
	if _, reserved := builtins[tok.text]; reserved {
		return stmt{}, p.errorAtf(tok, "cannot assign to builtin function %q", tok.text)
	}
	if eq := p.next(); eq.kind != tokAssign {
		return stmt{}, p.errorAtf(eq, "expected '=' after %q, got %s", tok.text, eq.kind)
	}
	expr, err := p.parseExpr(0)
	if err != nil {
		return stmt{}, err
	}

	return stmt{target: tok.text, expr: expr}, nil
}

// parseExpr is a standard Pratt loop: parse a prefix expression, then fold
// infix operators whose binding power exceeds minPrec.
func (p *parser) parseExpr(minPrec int) (node, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		op := p.peek()
		prec, rightAssoc := infixPrec(op.kind)
		if prec <= minPrec {
			return left, nil
		}
		p.next()
		nextMin := prec
		if rightAssoc {
			nextMin = prec - 1
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: op.kind, left: left, right: right}
	}
}

func infixPrec(kind tokenKind) (prec int, rightAssoc bool) {
	switch kind {
	case tokPlus, tokMinus:
		return precAdd, false
	case tokStar, tokSlash:
		return precMul, false
	case tokPow:
		return precPow, true
	default:
		return 0, false
	}
}

func (p *parser) parsePrefix() (node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return &numberNode{val: tok.val}, nil
	case tokMinus, tokPlus:
		operand, err := p.parseExpr(precUnary)
		if err != nil {
			return nil, err
		}

		return &unaryNode{op: tok.kind, operand: operand}, nil
	case tokLParen:
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, p.errorAtf(closing, "expected ')', got %s", closing.kind)
		}

		return inner, nil
	case tokIdent:
		if p.peek().kind != tokLParen {
			return &identNode{name: tok.text, pos: tok.pos}, nil
		}
		p.next() // consume '('

		return p.parseCall(tok)
	default:
		return nil, p.errorAtf(tok, "expected an expression, got %s", tok.kind)
	}
}

func (p *parser) parseCall(name token) (node, error) {
	call := &callNode{name: name.text, pos: name.pos}
	if p.peek().kind == tokRParen {
		p.next()

		return call, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		call.args = append(call.args, arg)
		switch tok := p.next(); tok.kind {
		case tokComma:
			continue
		case tokRParen:
			return call, nil
		default:
			return nil, p.errorAtf(tok, "expected ',' or ')' in call to %q, got %s", name.text, tok.kind)
		}
	}
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) next() token {
	tok := p.toks[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}

	return tok
}

func (p *parser) errorf(format string, args ...any) *CompileError {
	return p.errorAtf(p.peek(), format, args...)
}

func (p *parser) errorAtf(tok token, format string, args ...any) *CompileError {
	return &CompileError{Msg: fmt.Sprintf(format, args...), Pos: tok.pos}
}
