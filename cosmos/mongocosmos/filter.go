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

package mongocosmos

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cosmosdb-samples/gocosmos/cosmos/cosmossql"
)

// A filterBuilder translates a WHERE clause into a MongoDB filter that
// matches every document the clause is true for, and possibly more.
// Results are always re-evaluated with cosmossql, so parts of the clause
// that have no translation are dropped rather than rejected.
type filterBuilder struct {
	alias  string
	params map[string]any
}

// build returns the filter for e. ok is false when the filter would match
// every document.
func (b *filterBuilder) build(e cosmossql.Expr) (f bson.D, ok bool) {
	switch e := e.(type) {
	case *cosmossql.Path:
		field, ok := b.field(e)
		if !ok {
			return nil, false
		}
		return bson.D{{Key: field, Value: true}}, true
	case *cosmossql.Binary:
		switch e.Op {
		case "AND":
			var parts bson.A
			for _, x := range []cosmossql.Expr{e.L, e.R} {
				if f, ok := b.build(x); ok {
					parts = append(parts, f)
				}
			}
			switch len(parts) {
			case 0:
				return nil, false
			case 1:
				return parts[0].(bson.D), true
			}
			return bson.D{{Key: "$and", Value: parts}}, true
		case "OR":
			l, ok := b.build(e.L)
			if !ok {
				return nil, false
			}
			r, ok := b.build(e.R)
			if !ok {
				return nil, false
			}
			return bson.D{{Key: "$or", Value: bson.A{l, r}}}, true
		}
		return b.comparison(e)
	case *cosmossql.In:
		return b.in(e)
	case *cosmossql.Call:
		return b.call(e)
	}
	// Literals, arithmetic and NOT fall through to a full scan.
	return nil, false
}

var comparisonOps = map[string]string{
	"=":  "$eq",
	"!=": "$ne",
	"<":  "$lt",
	"<=": "$lte",
	">":  "$gt",
	">=": "$gte",
}

// flipped gives the operator with its operands swapped.
var flipped = map[string]string{
	"=":  "=",
	"!=": "!=",
	"<":  ">",
	"<=": ">=",
	">":  "<",
	">=": "<=",
}

func (b *filterBuilder) comparison(e *cosmossql.Binary) (bson.D, bool) {
	op, ok := comparisonOps[e.Op]
	if !ok {
		return nil, false
	}
	l, r := e.L, e.R
	if !isOperand(l) && isOperand(r) {
		l, r = r, l
		op = comparisonOps[flipped[e.Op]]
	}
	if c, ok := l.(*cosmossql.Call); ok && c.Name == "ARRAY_LENGTH" {
		return b.arrayLength(c, op, r)
	}
	path, ok := l.(*cosmossql.Path)
	if !ok {
		return nil, false
	}
	field, ok := b.field(path)
	if !ok {
		return nil, false
	}
	v, ok := b.scalar(r)
	if !ok {
		return nil, false
	}
	switch op {
	case "$eq", "$ne":
	default:
		// Ordering is only defined between numbers or between strings.
		switch v.(type) {
		case float64, int64, string:
		default:
			return nil, false
		}
	}
	return bson.D{{Key: field, Value: bson.D{{Key: op, Value: v}}}}, true
}

// isOperand reports whether e is something a filter can test: a path or
// the length of one.
func isOperand(e cosmossql.Expr) bool {
	switch e := e.(type) {
	case *cosmossql.Path:
		return true
	case *cosmossql.Call:
		return e.Name == "ARRAY_LENGTH"
	}
	return false
}

// arrayLength translates ARRAY_LENGTH(path) op n. Documents where the path
// is not an array compare as null.
func (b *filterBuilder) arrayLength(c *cosmossql.Call, op string, operand cosmossql.Expr) (bson.D, bool) {
	path, ok := c.Args[0].(*cosmossql.Path)
	if !ok {
		return nil, false
	}
	for _, seg := range path.Segments {
		if seg.IsIndex {
			return nil, false
		}
	}
	field, ok := b.field(path)
	if !ok {
		return nil, false
	}
	n, _ := b.scalar(operand)
	switch n.(type) {
	case float64, int64:
	default:
		return nil, false
	}
	ref := "$" + field
	size := bson.D{{Key: "$cond", Value: bson.A{
		bson.D{{Key: "$isArray", Value: ref}},
		bson.D{{Key: "$size", Value: ref}},
		nil,
	}}}
	return bson.D{{Key: "$expr", Value: bson.D{{Key: op, Value: bson.A{size, n}}}}}, true
}

// in translates IN lists. NOT IN has no translation: $nin rejects an array
// field holding any listed value, while the query compares the whole array
// and keeps the document.
func (b *filterBuilder) in(e *cosmossql.In) (bson.D, bool) {
	path, ok := e.X.(*cosmossql.Path)
	if !ok || e.Not {
		return nil, false
	}
	field, ok := b.field(path)
	if !ok {
		return nil, false
	}
	values := make(bson.A, 0, len(e.List))
	for _, x := range e.List {
		v, ok := b.scalar(x)
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return bson.D{{Key: field, Value: bson.D{{Key: "$in", Value: values}}}}, true
}

func (b *filterBuilder) call(c *cosmossql.Call) (bson.D, bool) {
	switch c.Name {
	case "STARTSWITH", "ENDSWITH", "CONTAINS":
		path, ok := c.Args[0].(*cosmossql.Path)
		if !ok {
			return nil, false
		}
		field, ok := b.field(path)
		if !ok {
			return nil, false
		}
		v, ok := b.scalar(c.Args[1])
		s, isString := v.(string)
		if !ok || !isString {
			return nil, false
		}
		var opts string
		if len(c.Args) == 3 {
			ignoreCase, ok := b.scalar(c.Args[2])
			if !ok {
				return nil, false
			}
			if ignoreCase == true {
				opts = "i"
			}
		}
		pattern := regexp.QuoteMeta(s)
		switch c.Name {
		case "STARTSWITH":
			pattern = "^" + pattern
		case "ENDSWITH":
			pattern += "$"
		}
		return bson.D{{Key: field, Value: primitive.Regex{Pattern: pattern, Options: opts}}}, true

	case "IS_DEFINED":
		path, ok := c.Args[0].(*cosmossql.Path)
		if !ok {
			return nil, false
		}
		field, ok := b.field(path)
		if !ok {
			return nil, false
		}
		return bson.D{{Key: field, Value: bson.D{{Key: "$exists", Value: true}}}}, true

	case "ARRAY_CONTAINS":
		path, ok := c.Args[0].(*cosmossql.Path)
		if !ok {
			return nil, false
		}
		field, ok := b.field(path)
		if !ok {
			return nil, false
		}
		v, ok := b.scalar(c.Args[1])
		if !ok {
			return nil, false
		}
		// An equality filter on an array field matches arrays holding the value.
		return bson.D{{Key: field, Value: v}}, true
	}
	return nil, false
}

// field returns the dotted MongoDB field name for a path over the query's
// documents.
func (b *filterBuilder) field(p *cosmossql.Path) (string, bool) {
	if p.Root != b.alias || len(p.Segments) == 0 {
		return "", false
	}
	for _, seg := range p.Segments {
		if !seg.IsIndex && (seg.Name == "" || strings.ContainsAny(seg.Name, ".$")) {
			return "", false
		}
	}
	if p.Segments[0].IsIndex || p.Segments[0].Name == "_id" || p.Segments[0].Name == orderField {
		return "", false
	}
	return p.FieldPath(), true
}

// scalar returns the value of a literal or bound parameter if it is a
// string, number, bool or null.
func (b *filterBuilder) scalar(e cosmossql.Expr) (any, bool) {
	var v any
	switch e := e.(type) {
	case *cosmossql.Literal:
		v = e.Value
	case *cosmossql.Param:
		pv, ok := b.params[e.Name]
		if !ok {
			return nil, false
		}
		v = pv
	default:
		return nil, false
	}
	if n, ok := v.(json.Number); ok {
		// Integers stay int64 so the server compares them exactly.
		if i, err := n.Int64(); err == nil {
			v = i
		} else if f, err := n.Float64(); err == nil {
			v = f
		}
	}
	switch v.(type) {
	case nil, string, float64, int64, bool:
		return v, true
	}
	return nil, false
}
