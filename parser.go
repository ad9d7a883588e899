// parser.go: recursive descent over the token stream, one parse function per
// grammar rule. Statement rules push a human-readable context label on entry;
// a ParseError snapshots the label stack (innermost first) so diagnostics can
// render nested "...while parsing X..." lines. On an unexpected token the
// top-level loop records the error, discards tokens through the next
// statement boundary, and resumes, so one pass reports every independent
// error.
package forge

import "fmt"

// Parse tokenizes and parses a full source unit. It returns the statements
// parsed so far plus every diagnostic collected during the pass; callers must
// not evaluate when any errors remain. Error elements are *LexError or
// *ParseError.
func Parse(src string) ([]Stmt, []error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, []error{err}
	}
	p := &parser{toks: toks}
	var stmts []Stmt
	var errs []error
	for !p.check(EOF) {
		stmt, perr := p.parseStmt()
		if perr != nil {
			errs = append(errs, perr)
			p.synchronize()
			continue
		}
		stmts = append(stmts, stmt)
	}
	return stmts, errs
}

type parser struct {
	toks []Token
	i    int
	ctx  []string // context labels, outermost first
}

func (p *parser) cur() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1] // EOF
	}
	return p.toks[p.i]
}

func (p *parser) advance() Token {
	tok := p.cur()
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return tok
}

func (p *parser) check(tt TokenType) bool { return p.cur().Type == tt }

func (p *parser) match(tt TokenType) (Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	return Token{}, false
}

// within pushes a context label; the returned func pops it.
func (p *parser) within(label string) func() {
	p.ctx = append(p.ctx, label)
	return func() { p.ctx = p.ctx[:len(p.ctx)-1] }
}

// errExpected builds a ParseError at the found token, snapshotting the
// context trail innermost-first.
func (p *parser) errExpected(want string, found Token) *ParseError {
	trail := make([]string, 0, len(p.ctx))
	for i := len(p.ctx) - 1; i >= 0; i-- {
		trail = append(trail, p.ctx[i])
	}
	return &ParseError{
		Span:       found.Span,
		Msg:        fmt.Sprintf("expected %s, found %s", want, tokenName(found)),
		Trail:      trail,
		Incomplete: found.Type == EOF,
	}
}

func (p *parser) expect(tt TokenType, want string) (Token, *ParseError) {
	if p.check(tt) {
		return p.advance(), nil
	}
	return Token{}, p.errExpected(want, p.cur())
}

// synchronize discards tokens until a statement boundary: past the next `;`,
// out of a stray block delimiter, or up to the next statement keyword.
func (p *parser) synchronize() {
	for !p.check(EOF) {
		switch p.cur().Type {
		case SEMICOLON:
			p.advance()
			return
		case RBRACE:
			p.advance()
			continue
		case VAR, PRINT, IF, WHILE, FOR, RETURN, BREAK, CONTINUE:
			return
		}
		p.advance()
	}
}

// ----- statements -----

func (p *parser) parseStmt() (Stmt, *ParseError) {
	switch p.cur().Type {
	case VAR:
		return p.parseVarDecl()
	case PRINT:
		return p.parsePrint()
	case IF:
		return p.parseIfElse()
	case WHILE:
		return p.parseWhile()
	case FOR:
		return p.parseFor()
	case RETURN:
		return p.parseReturn()
	case BREAK:
		return p.parseBreak()
	case CONTINUE:
		return p.parseContinue()
	default:
		return p.parseExprStmt()
	}
}

func (p *parser) parseVarDecl() (Stmt, *ParseError) {
	defer p.within("variable declaration")()

	start := p.advance() // var
	name, err := p.expect(IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(ASSIGN, "'='"); err != nil {
		return nil, err
	}
	init, err2 := p.parseExpr()
	if err2 != nil {
		return nil, err2
	}
	semi, err := p.expect(SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return &VarDeclStmt{
		Name:     name.Lexeme,
		NameSpan: name.Span,
		Init:     init,
		Pos:      start.Span.Union(semi.Span),
	}, nil
}

func (p *parser) parsePrint() (Stmt, *ParseError) {
	defer p.within("print statement")()

	start := p.advance() // print
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	semi, perr := p.expect(SEMICOLON, "';'")
	if perr != nil {
		return nil, perr
	}
	return &PrintStmt{E: e, Pos: start.Span.Union(semi.Span)}, nil
}

func (p *parser) parseIfElse() (Stmt, *ParseError) {
	defer p.within("if-else statement")()

	start := p.advance() // if
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then, Pos: start.Span.Union(then.Pos)}
	if _, ok := p.match(ELSE); ok {
		els, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
		stmt.Pos = stmt.Pos.Union(els.Pos)
	}
	return stmt, nil
}

func (p *parser) parseWhile() (Stmt, *ParseError) {
	defer p.within("while statement")()

	start := p.advance() // while
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Cond: cond, Body: body, Pos: start.Span.Union(body.Pos)}, nil
}

func (p *parser) parseFor() (Stmt, *ParseError) {
	defer p.within("for statement")()

	start := p.advance() // for
	name, err := p.expect(IDENT, "identifier")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(IN, "'in'"); err != nil {
		return nil, err
	}
	iter, err2 := p.parseExpr()
	if err2 != nil {
		return nil, err2
	}
	body, err2 := p.parseBlock()
	if err2 != nil {
		return nil, err2
	}
	return &ForStmt{
		Name:     name.Lexeme,
		NameSpan: name.Span,
		Iter:     iter,
		Body:     body,
		Pos:      start.Span.Union(body.Pos),
	}, nil
}

func (p *parser) parseReturn() (Stmt, *ParseError) {
	defer p.within("return statement")()

	start := p.advance() // return
	stmt := &ReturnStmt{Pos: start.Span}
	if semi, ok := p.match(SEMICOLON); ok {
		stmt.Pos = start.Span.Union(semi.Span)
		return stmt, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	semi, perr := p.expect(SEMICOLON, "';'")
	if perr != nil {
		return nil, perr
	}
	stmt.E = e
	stmt.Pos = start.Span.Union(semi.Span)
	return stmt, nil
}

func (p *parser) parseBreak() (Stmt, *ParseError) {
	defer p.within("break statement")()
	start := p.advance()
	semi, err := p.expect(SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return &BreakStmt{Pos: start.Span.Union(semi.Span)}, nil
}

func (p *parser) parseContinue() (Stmt, *ParseError) {
	defer p.within("continue statement")()
	start := p.advance()
	semi, err := p.expect(SEMICOLON, "';'")
	if err != nil {
		return nil, err
	}
	return &ContinueStmt{Pos: start.Span.Union(semi.Span)}, nil
}

func (p *parser) parseExprStmt() (Stmt, *ParseError) {
	defer p.within("expression statement")()

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	semi, perr := p.expect(SEMICOLON, "';'")
	if perr != nil {
		return nil, perr
	}
	return &ExprStmt{E: e, Pos: e.Span().Union(semi.Span)}, nil
}

func (p *parser) parseBlock() (*BlockStmt, *ParseError) {
	start, err := p.expect(LBRACE, "'{'")
	if err != nil {
		return nil, err
	}
	var stmts []Stmt
	for !p.check(RBRACE) && !p.check(EOF) {
		stmt, perr := p.parseStmt()
		if perr != nil {
			return nil, perr
		}
		stmts = append(stmts, stmt)
	}
	end, err := p.expect(RBRACE, "'}'")
	if err != nil {
		return nil, err
	}
	return &BlockStmt{Stmts: stmts, Pos: start.Span.Union(end.Span)}, nil
}

// ----- expressions, lowest precedence first -----

func (p *parser) parseExpr() (Expr, *ParseError) {
	return p.parseAssign()
}

// parseAssign converts the left side to an lvalue at parse time; anything
// that is not an identifier or index expression left of an assignment
// operator is a ParseError here, never a runtime error.
func (p *parser) parseAssign() (Expr, *ParseError) {
	left, err := p.parseLogical()
	if err != nil {
		return nil, err
	}

	var op AssignOp
	switch p.cur().Type {
	case ASSIGN:
		op = AsnSet
	case PLUS_EQ:
		op = AsnAdd
	case MINUS_EQ:
		op = AsnSub
	case STAR_EQ:
		op = AsnMul
	case SLASH_EQ:
		op = AsnDiv
	case PERCENT_EQ:
		op = AsnRem
	default:
		return left, nil
	}
	opTok := p.advance()

	target, perr := p.toLValue(left, opTok)
	if perr != nil {
		return nil, perr
	}
	value, err := p.parseLogical()
	if err != nil {
		return nil, err
	}
	return &AssignExpr{
		Target: target,
		Op:     op,
		Value:  value,
		OpSpan: opTok.Span,
		Pos:    left.Span().Union(value.Span()),
	}, nil
}

func (p *parser) toLValue(e Expr, opTok Token) (LVal, *ParseError) {
	switch t := e.(type) {
	case *IdentExpr:
		return &LocalLVal{Name: t.Name, Pos: t.Pos}, nil
	case *IndexExpr:
		return &IndexLVal{Target: t.Target, Index: t.Index, Pos: t.Pos}, nil
	default:
		perr := p.errExpected("l-value", opTok)
		perr.Span = e.Span()
		perr.Msg = fmt.Sprintf("left side of '%s' is not assignable", opTok.Lexeme)
		return nil, perr
	}
}

func (p *parser) parseLogical() (Expr, *ParseError) {
	left, err := p.parseEquivalence()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Type {
		case AND:
			op = OpAnd
		case OR:
			op = OpOr
		case XOR:
			op = OpXor
		default:
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseEquivalence()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right, OpSpan: opTok.Span, Pos: left.Span().Union(right.Span())}
	}
}

func (p *parser) parseEquivalence() (Expr, *ParseError) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Type {
		case EQ:
			op = OpEq
		case NEQ:
			op = OpNotEq
		default:
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right, OpSpan: opTok.Span, Pos: left.Span().Union(right.Span())}
	}
}

func (p *parser) parseComparison() (Expr, *ParseError) {
	left, err := p.parseMidUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Type {
		case LESS:
			op = OpLess
		case LESS_EQ:
			op = OpLessEq
		case GREATER:
			op = OpGreater
		case GREATER_EQ:
			op = OpGreaterEq
		default:
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseMidUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right, OpSpan: opTok.Span, Pos: left.Span().Union(right.Span())}
	}
}

// parseMidUnary handles input/clone/mirror, which bind tighter than
// comparison but looser than the range operator.
func (p *parser) parseMidUnary() (Expr, *ParseError) {
	var op UnaryOp
	switch p.cur().Type {
	case INPUT:
		op = OpInput
	case CLONE:
		op = OpClone
	case MIRROR:
		op = OpMirror
	default:
		return p.parseRange()
	}
	opTok := p.advance()
	operand, err := p.parseMidUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{Op: op, Operand: operand, OpSpan: opTok.Span, Pos: opTok.Span.Union(operand.Span())}, nil
}

func (p *parser) parseRange() (Expr, *ParseError) {
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	for p.check(DOTDOT) {
		opTok := p.advance()
		right, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpRange, Left: left, Right: right, OpSpan: opTok.Span, Pos: left.Span().Union(right.Span())}
	}
	return left, nil
}

func (p *parser) parseAddition() (Expr, *ParseError) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Type {
		case PLUS:
			op = OpAdd
		case MINUS:
			op = OpSub
		default:
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right, OpSpan: opTok.Span, Pos: left.Span().Union(right.Span())}
	}
}

func (p *parser) parseMultiplication() (Expr, *ParseError) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinOp
		switch p.cur().Type {
		case STAR:
			op = OpMul
		case SLASH:
			op = OpDiv
		case PERCENT:
			op = OpRem
		default:
			return left, nil
		}
		opTok := p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right, OpSpan: opTok.Span, Pos: left.Span().Union(right.Span())}
	}
}

func (p *parser) parseUnary() (Expr, *ParseError) {
	var op UnaryOp
	switch p.cur().Type {
	case BANG:
		op = OpNot
	case MINUS:
		op = OpNeg
	default:
		return p.parseAs()
	}
	opTok := p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryExpr{Op: op, Operand: operand, OpSpan: opTok.Span, Pos: opTok.Span.Union(operand.Span())}, nil
}

func (p *parser) parseAs() (Expr, *ParseError) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.check(AS) {
		opTok := p.advance()
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpAs, Left: left, Right: right, OpSpan: opTok.Span, Pos: left.Span().Union(right.Span())}
	}
	return left, nil
}

// parsePostfix attaches call and index suffixes in any order.
func (p *parser) parsePostfix() (Expr, *ParseError) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case LPAREN:
			p.advance()
			var args []Expr
			if !p.check(RPAREN) {
				for {
					arg, err := p.parseExpr()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if _, ok := p.match(COMMA); !ok {
						break
					}
				}
			}
			end, perr := p.expect(RPAREN, "')'")
			if perr != nil {
				return nil, perr
			}
			expr = &CallExpr{Callee: expr, Args: args, Pos: expr.Span().Union(end.Span)}
		case LBRACK:
			p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			end, perr := p.expect(RBRACK, "']'")
			if perr != nil {
				return nil, perr
			}
			expr = &IndexExpr{Target: expr, Index: index, Pos: expr.Span().Union(end.Span)}
		default:
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (Expr, *ParseError) {
	tok := p.cur()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &NumberLit{Value: tok.Literal.(float64), Pos: tok.Span}, nil
	case STRING:
		p.advance()
		return &StringLit{Value: tok.Literal.(string), Pos: tok.Span}, nil
	case CHAR:
		p.advance()
		return &CharLit{Value: tok.Literal.(rune), Pos: tok.Span}, nil
	case BOOLEAN:
		p.advance()
		return &BoolLit{Value: tok.Literal.(bool), Pos: tok.Span}, nil
	case NULL:
		p.advance()
		return &NullLit{Pos: tok.Span}, nil
	case IDENT:
		p.advance()
		return &IdentExpr{Name: tok.Lexeme, Pos: tok.Span}, nil
	case LPAREN:
		p.advance()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, perr := p.expect(RPAREN, "')'"); perr != nil {
			return nil, perr
		}
		return e, nil
	case PIPE:
		return p.parseFnLit()
	case LBRACK:
		return p.parseBracketLit()
	default:
		return nil, p.errExpected("primary expression", tok)
	}
}

func (p *parser) parseFnLit() (Expr, *ParseError) {
	defer p.within("function")()

	open := p.advance() // first pipe
	var params []string
	var paramSpans []Span
	if !p.check(PIPE) {
		for {
			name, err := p.expect(IDENT, "identifier")
			if err != nil {
				return nil, err
			}
			params = append(params, name.Lexeme)
			paramSpans = append(paramSpans, name.Span)
			if _, ok := p.match(COMMA); !ok {
				break
			}
		}
	}
	mid, err := p.expect(PIPE, "'|'")
	if err != nil {
		return nil, err
	}
	body, err2 := p.parseBlock()
	if err2 != nil {
		return nil, err2
	}
	return &FnLit{
		Params:     params,
		ParamSpans: paramSpans,
		Body:       body,
		Decl:       open.Span.Union(mid.Span),
	}, nil
}

// parseBracketLit disambiguates the three bracketed forms after the first
// element: `[a, b]` list, `[x; n]` fill, `[k: v, ...]` map. The first element
// parses before the form is known, so it carries no container label.
func (p *parser) parseBracketLit() (Expr, *ParseError) {
	open := p.advance() // '['
	if end, ok := p.match(RBRACK); ok {
		return &ListLit{Pos: open.Span.Union(end.Span)}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	switch p.cur().Type {
	case SEMICOLON:
		defer p.within("list")()
		p.advance()
		count, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		end, perr := p.expect(RBRACK, "']'")
		if perr != nil {
			return nil, perr
		}
		return &ListFill{Elem: first, Count: count, Pos: open.Span.Union(end.Span)}, nil

	case COLON:
		defer p.within("map")()
		p.advance()
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		pairs := []MapPair{{Key: first, Val: val}}
		for {
			if _, ok := p.match(COMMA); !ok {
				break
			}
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, perr := p.expect(COLON, "':'"); perr != nil {
				return nil, perr
			}
			val, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, MapPair{Key: key, Val: val})
		}
		end, perr := p.expect(RBRACK, "']'")
		if perr != nil {
			return nil, perr
		}
		return &MapLit{Pairs: pairs, Pos: open.Span.Union(end.Span)}, nil

	default:
		defer p.within("list")()
		elems := []Expr{first}
		for {
			if _, ok := p.match(COMMA); !ok {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		end, perr := p.expect(RBRACK, "']'")
		if perr != nil {
			return nil, perr
		}
		return &ListLit{Elems: elems, Pos: open.Span.Union(end.Span)}, nil
	}
}
