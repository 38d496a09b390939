// Copyright 2026 The Go Cloud Development Kit Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cosmossql

import (
	"fmt"
	"math"
)

// Parse parses a query. The returned error, if any, is an *Error.
func Parse(sql string) (*Query, error) {
	toks, err := lex(sql)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q after end of query", t.raw)
	}
	if err := q.check(); err != nil {
		return nil, err
	}
	return q, nil
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) peekAt(n int) token {
	if p.i+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+n]
}

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &Error{Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

// keyword consumes the next token if it is the keyword kw.
func (p *parser) keyword(kw string) bool {
	if t := p.peek(); t.kind == tokKeyword && t.text == kw {
		p.i++
		return true
	}
	return false
}

// punct consumes the next token if it is the punctuation s.
func (p *parser) punct(s string) bool {
	if t := p.peek(); t.kind == tokPunct && t.text == s {
		p.i++
		return true
	}
	return false
}

func (p *parser) expectKeyword(kw string) error {
	if !p.keyword(kw) {
		return p.errorf(p.peek(), "expected %s, found %s", kw, describe(p.peek()))
	}
	return nil
}

func (p *parser) expectPunct(s string) error {
	if !p.punct(s) {
		return p.errorf(p.peek(), "expected %q, found %s", s, describe(p.peek()))
	}
	return nil
}

func describe(t token) string {
	if t.kind == tokEOF {
		return "end of query"
	}
	return fmt.Sprintf("%q", t.raw)
}

func (p *parser) parseQuery() (*Query, error) {
	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	q := &Query{}
	if p.keyword("TOP") {
		n, err := p.parseCount("TOP")
		if err != nil {
			return nil, err
		}
		q.Top = &n
	}
	if p.keyword("VALUE") {
		q.Value = true
	}
	if t := p.peek(); p.punct("*") {
		if q.Value {
			return nil, p.errorf(t, "SELECT VALUE requires an expression")
		}
		q.Star = true
	} else {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			col := Column{Expr: e}
			if p.keyword("AS") {
				t := p.next()
				if t.kind != tokIdent {
					return nil, p.errorf(t, "expected column alias, found %s", describe(t))
				}
				col.Alias = t.text
			}
			q.Columns = append(q.Columns, col)
			if !p.punct(",") {
				break
			}
		}
		if q.Value && len(q.Columns) > 1 {
			return nil, p.errorf(t, "SELECT VALUE allows a single expression")
		}
	}

	if err := p.expectKeyword("FROM"); err != nil {
		return nil, err
	}
	t := p.next()
	if t.kind != tokIdent {
		return nil, p.errorf(t, "expected collection name, found %s", describe(t))
	}
	q.Source, q.Alias = t.text, t.text
	if p.keyword("AS") {
		t = p.next()
		if t.kind != tokIdent {
			return nil, p.errorf(t, "expected alias, found %s", describe(t))
		}
		q.Alias = t.text
	} else if p.peek().kind == tokIdent {
		q.Alias = p.next().text
	}

	if p.keyword("WHERE") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Where = e
	}

	if p.keyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		for {
			t := p.peek()
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			path, ok := e.(*Path)
			if !ok {
				return nil, p.errorf(t, "ORDER BY requires a property path, found %s", e)
			}
			item := OrderItem{Path: path}
			if p.keyword("DESC") {
				item.Desc = true
			} else {
				p.keyword("ASC")
			}
			q.OrderBy = append(q.OrderBy, item)
			if !p.punct(",") {
				break
			}
		}
	}

	if p.keyword("OFFSET") {
		off, err := p.parseCount("OFFSET")
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("LIMIT"); err != nil {
			return nil, err
		}
		lim, err := p.parseCount("LIMIT")
		if err != nil {
			return nil, err
		}
		q.Offset, q.Limit = &off, &lim
	}
	return q, nil
}

// parseCount parses the non-negative integer following TOP, OFFSET or LIMIT.
func (p *parser) parseCount(clause string) (int, error) {
	t := p.next()
	if t.kind != tokNumber || t.num != math.Trunc(t.num) || t.num < 0 || t.num > math.MaxInt32 {
		return 0, p.errorf(t, "%s requires a non-negative integer, found %s", clause, describe(t))
	}
	return int(t.num), nil
}

func (p *parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (Expr, error) {
	l, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("OR") {
		r, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		l = &Binary{Op: "OR", L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseAnd() (Expr, error) {
	l, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.keyword("AND") {
		r, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		l = &Binary{Op: "AND", L: l, R: r}
	}
	return l, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.keyword("NOT") {
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "NOT", X: x}, nil
	}
	return p.parseComparison()
}

var comparisons = map[string]string{
	"=":  "=",
	"!=": "!=",
	"<>": "!=",
	"<":  "<",
	"<=": "<=",
	">":  ">",
	">=": ">=",
}

func (p *parser) parseComparison() (Expr, error) {
	l, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	not := false
	if t := p.peek(); t.kind == tokKeyword && t.text == "NOT" {
		if n := p.peekAt(1); n.kind == tokKeyword && n.text == "IN" {
			p.next()
			not = true
		}
	}
	if p.keyword("IN") {
		if err := p.expectPunct("("); err != nil {
			return nil, err
		}
		in := &In{X: l, Not: not}
		for {
			e, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			in.List = append(in.List, e)
			if !p.punct(",") {
				break
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return in, nil
	}
	if t := p.peek(); t.kind == tokPunct {
		if op, ok := comparisons[t.text]; ok {
			p.next()
			r, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			return &Binary{Op: op, L: l, R: r}, nil
		}
	}
	return l, nil
}

func (p *parser) parseAdditive() (Expr, error) {
	l, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !(p.punct("+") || p.punct("-")) {
			return l, nil
		}
		r, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		l = &Binary{Op: t.text, L: l, R: r}
	}
}

func (p *parser) parseMultiplicative() (Expr, error) {
	l, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if !(p.punct("*") || p.punct("/") || p.punct("%")) {
			return l, nil
		}
		r, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		l = &Binary{Op: t.text, L: l, R: r}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if p.punct("-") {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if lit, ok := x.(*Literal); ok {
			if f, ok := lit.Value.(float64); ok {
				return &Literal{Value: -f}, nil
			}
		}
		return &Unary{Op: "-", X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		return &Literal{Value: t.num}, nil
	case tokString:
		return &Literal{Value: t.text}, nil
	case tokParam:
		return &Param{Name: t.text}, nil
	case tokKeyword:
		switch t.text {
		case "TRUE":
			return &Literal{Value: true}, nil
		case "FALSE":
			return &Literal{Value: false}, nil
		case "NULL":
			return &Literal{Value: nil}, nil
		case "UNDEFINED":
			return &Literal{Value: Undefined}, nil
		}
	case tokPunct:
		if t.text == "(" {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
	case tokIdent:
		if p.punct("(") {
			return p.parseCall(t)
		}
		return p.parsePath(t)
	}
	return nil, p.errorf(t, "unexpected %s", describe(t))
}

func (p *parser) parseCall(name token) (Expr, error) {
	c := &Call{Name: toUpper(name.text)}
	if _, ok := arity[c.Name]; !ok {
		return nil, p.errorf(name, "unknown function %s", name.text)
	}
	if !p.punct(")") {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			c.Args = append(c.Args, e)
			if !p.punct(",") {
				break
			}
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
	}
	if a := arity[c.Name]; len(c.Args) < a[0] || len(c.Args) > a[1] {
		return nil, p.errorf(name, "wrong number of arguments to %s: %d", c.Name, len(c.Args))
	}
	return c, nil
}

func (p *parser) parsePath(root token) (Expr, error) {
	path := &Path{Root: root.text}
	for {
		switch {
		case p.punct("."):
			t := p.next()
			// Keywords are valid property names: c.value, c.order.
			if t.kind != tokIdent && t.kind != tokKeyword {
				return nil, p.errorf(t, "expected property name, found %s", describe(t))
			}
			path.Segments = append(path.Segments, Segment{Name: t.raw})
		case p.punct("["):
			t := p.next()
			switch {
			case t.kind == tokString:
				path.Segments = append(path.Segments, Segment{Name: t.text})
			case t.kind == tokNumber && t.num == math.Trunc(t.num) && t.num >= 0:
				path.Segments = append(path.Segments, Segment{Index: int(t.num), IsIndex: true})
			default:
				return nil, p.errorf(t, "expected property name or array index, found %s", describe(t))
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
		default:
			return path, nil
		}
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'a' <= c && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
	}
	return string(b)
}

// check validates name resolution and aggregate placement.
func (q *Query) check() error {
	var err error
	visit := func(e Expr) {
		if err != nil {
			return
		}
		if p, ok := e.(*Path); ok && p.Root != q.Alias {
			err = &Error{Msg: fmt.Sprintf("identifier %q could not be resolved", p.Root)}
		}
	}
	noAggregates := func(where string) func(Expr) {
		return func(e Expr) {
			if err == nil && isAggregateCall(e) {
				err = &Error{Msg: fmt.Sprintf("aggregate %s is not allowed in %s", e, where)}
			}
		}
	}

	aggCols := 0
	for _, c := range q.Columns {
		Walk(c.Expr, visit)
		if isAggregateCall(c.Expr) {
			aggCols++
			for _, a := range c.Expr.(*Call).Args {
				Walk(a, noAggregates("an aggregate argument"))
			}
		} else {
			Walk(c.Expr, noAggregates("a projection without GROUP BY"))
		}
	}
	if err == nil && aggCols > 0 && aggCols != len(q.Columns) {
		err = &Error{Msg: "aggregates cannot be mixed with other projections"}
	}
	Walk(q.Where, visit)
	Walk(q.Where, noAggregates("WHERE"))
	for _, o := range q.OrderBy {
		Walk(o.Path, visit)
	}
	if err == nil && aggCols > 0 && len(q.OrderBy) > 0 {
		err = &Error{Msg: "ORDER BY cannot be used with aggregates"}
	}
	return err
}
