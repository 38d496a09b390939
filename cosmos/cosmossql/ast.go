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

// Package cosmossql parses and evaluates the SQL dialect used to query
// document containers.
//
// The supported grammar is
//
//	SELECT [TOP n] [VALUE] (* | expr [AS name] {, expr [AS name]})
//	FROM source [[AS] alias]
//	[WHERE expr]
//	[ORDER BY path [ASC|DESC] {, path [ASC|DESC]}]
//	[OFFSET n LIMIT m]
//
// Keywords are case-insensitive. Expressions can use property paths
// (c.a.b, c["a"], c.kids[0]), literals, @parameters, the operators
// OR AND NOT = != <> < <= > >= IN + - * / %, the scalar functions
// STARTSWITH ENDSWITH CONTAINS ARRAY_LENGTH ARRAY_CONTAINS IS_DEFINED
// LOWER UPPER LENGTH, and the aggregates COUNT SUM MIN MAX AVG.
package cosmossql // import "github.com/cosmosdb-samples/gocosmos/cosmos/cosmossql"

import "fmt"

// A Query is a parsed SELECT statement.
type Query struct {
	Top     *int
	Value   bool
	Star    bool
	Columns []Column
	// Source is the collection name after FROM, and Alias the name documents
	// are bound to. Alias equals Source when no alias is given.
	Source  string
	Alias   string
	Where   Expr
	OrderBy []OrderItem
	Offset  *int
	Limit   *int
}

// IsAggregate reports whether the query's projection consists of aggregate
// functions, which collapse all matching documents into one result.
func (q *Query) IsAggregate() bool {
	return len(q.Columns) > 0 && isAggregateCall(q.Columns[0].Expr)
}

// A Column is one projected expression.
type Column struct {
	Expr  Expr
	Alias string
}

// An OrderItem is one ORDER BY key.
type OrderItem struct {
	Path *Path
	Desc bool
}

// An Expr is a node in an expression tree.
type Expr interface {
	fmt.Stringer
	exprNode()
}

// Undefined is the value of a property that does not exist. It never
// appears in query results.
var Undefined = undefined{}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// A Literal is a constant. Value is a string, float64, bool, nil (null) or
// Undefined.
type Literal struct {
	Value any
}

// A Param is a reference to a query parameter, including its leading '@'.
type Param struct {
	Name string
}

// A Path selects a property of the document bound to Root.
type Path struct {
	Root     string
	Segments []Segment
}

// A Segment is a property name or, when IsIndex is set, an array index.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

// A Call is a function call. Name is upper-cased.
type Call struct {
	Name string
	Args []Expr
}

// A Unary is NOT x or -x.
type Unary struct {
	Op string
	X  Expr
}

// A Binary is a binary operation. Op is one of OR AND = != < <= > >= + - * / %.
type Binary struct {
	Op   string
	L, R Expr
}

// An In is x [NOT] IN (list).
type In struct {
	X    Expr
	List []Expr
	Not  bool
}

func (*Literal) exprNode() {}
func (*Param) exprNode()   {}
func (*Path) exprNode()    {}
func (*Call) exprNode()    {}
func (*Unary) exprNode()   {}
func (*Binary) exprNode()  {}
func (*In) exprNode()      {}

func (l *Literal) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprint(v)
	}
}

func (p *Param) String() string { return p.Name }

func (p *Path) String() string {
	s := p.Root
	for _, seg := range p.Segments {
		if seg.IsIndex {
			s += fmt.Sprintf("[%d]", seg.Index)
		} else {
			s += "." + seg.Name
		}
	}
	return s
}

// FieldPath returns the segments as a dotted path without the root, such as
// "address.postalCode" or "kids.0".
func (p *Path) FieldPath() string {
	s := ""
	for i, seg := range p.Segments {
		if i > 0 {
			s += "."
		}
		if seg.IsIndex {
			s += fmt.Sprint(seg.Index)
		} else {
			s += seg.Name
		}
	}
	return s
}

func (c *Call) String() string {
	s := c.Name + "("
	for i, a := range c.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (u *Unary) String() string {
	if u.Op == "NOT" {
		return "NOT " + u.X.String()
	}
	return u.Op + u.X.String()
}

func (b *Binary) String() string {
	return "(" + b.L.String() + " " + b.Op + " " + b.R.String() + ")"
}

func (in *In) String() string {
	s := in.X.String()
	if in.Not {
		s += " NOT"
	}
	s += " IN ("
	for i, e := range in.List {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}

var aggregates = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"MIN":   true,
	"MAX":   true,
	"AVG":   true,
}

// arity holds the minimum and maximum argument counts of each function.
var arity = map[string][2]int{
	"COUNT":          {1, 1},
	"SUM":            {1, 1},
	"MIN":            {1, 1},
	"MAX":            {1, 1},
	"AVG":            {1, 1},
	"STARTSWITH":     {2, 3},
	"ENDSWITH":       {2, 3},
	"CONTAINS":       {2, 3},
	"ARRAY_LENGTH":   {1, 1},
	"ARRAY_CONTAINS": {2, 3},
	"IS_DEFINED":     {1, 1},
	"LOWER":          {1, 1},
	"UPPER":          {1, 1},
	"LENGTH":         {1, 1},
}

func isAggregateCall(e Expr) bool {
	c, ok := e.(*Call)
	return ok && aggregates[c.Name]
}

// Walk calls fn for e and every expression below it, in depth-first order.
func Walk(e Expr, fn func(Expr)) {
	if e == nil {
		return
	}
	fn(e)
	switch e := e.(type) {
	case *Call:
		for _, a := range e.Args {
			Walk(a, fn)
		}
	case *Unary:
		Walk(e.X, fn)
	case *Binary:
		Walk(e.L, fn)
		Walk(e.R, fn)
	case *In:
		Walk(e.X, fn)
		for _, x := range e.List {
			Walk(x, fn)
		}
	}
}
