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
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// Execute runs q over docs, which must be decoded JSON objects (as produced
// by encoding/json into map[string]any), and returns the results in order.
// params maps names such as "@id" to values; they are converted to their
// JSON form before use.
//
// Execute follows the service's handling of missing properties: a
// comparison involving an undefined operand, or operands of different JSON
// types, is itself undefined, and WHERE keeps only documents for which the
// condition is exactly true.
func (q *Query) Execute(docs []map[string]any, params map[string]any) ([]any, error) {
	bound, err := q.bind(params)
	if err != nil {
		return nil, err
	}
	ev := &evaluator{q: q, params: bound}
	var matched []map[string]any
	for _, d := range docs {
		if q.Where == nil || ev.eval(q.Where, d) == true {
			matched = append(matched, d)
		}
	}

	if q.IsAggregate() {
		v := ev.aggregate(matched)
		if v == Undefined {
			return nil, nil
		}
		return []any{v}, nil
	}

	if len(q.OrderBy) > 0 {
		keys := make([][]any, len(matched))
		for i, d := range matched {
			keys[i] = make([]any, len(q.OrderBy))
			for j, o := range q.OrderBy {
				keys[i][j] = ev.eval(o.Path, d)
			}
		}
		idx := make([]int, len(matched))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			for j, o := range q.OrderBy {
				c := Compare(keys[idx[a]][j], keys[idx[b]][j])
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
		sorted := make([]map[string]any, len(matched))
		for i, j := range idx {
			sorted[i] = matched[j]
		}
		matched = sorted
	}

	if q.Offset != nil {
		matched = window(matched, *q.Offset, *q.Limit)
	}
	if q.Top != nil && *q.Top < len(matched) {
		matched = matched[:*q.Top]
	}

	results := make([]any, 0, len(matched))
	for _, d := range matched {
		if v := ev.project(d); v != Undefined {
			results = append(results, v)
		}
	}
	return results, nil
}

func window(docs []map[string]any, offset, limit int) []map[string]any {
	if offset >= len(docs) {
		return nil
	}
	docs = docs[offset:]
	if limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}

// Params returns the parameter names q refers to.
func (q *Query) Params() []string {
	seen := map[string]bool{}
	var names []string
	collect := func(e Expr) {
		if p, ok := e.(*Param); ok && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
	}
	for _, c := range q.Columns {
		Walk(c.Expr, collect)
	}
	Walk(q.Where, collect)
	return names
}

func (q *Query) bind(params map[string]any) (map[string]any, error) {
	bound := map[string]any{}
	for _, name := range q.Params() {
		v, ok := params[name]
		if !ok {
			return nil, &Error{Msg: fmt.Sprintf("parameter %s is not defined", name)}
		}
		nv, err := NormalizeValue(v)
		if err != nil {
			return nil, &Error{Msg: fmt.Sprintf("parameter %s: %v", name, err)}
		}
		bound[name] = nv
	}
	return bound, nil
}

// NormalizeValue converts v into the form a decoded document holds: nil,
// bool, float64, json.Number, string, []any or map[string]any. Numbers other
// than float64 become json.Number so that large integers keep their value.
func NormalizeValue(v any) (any, error) {
	switch v.(type) {
	case nil, bool, float64, json.Number, string:
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// NumberValue returns v as a float64 if it is a json.Number, and v
// unchanged otherwise. Partition key values are compared as doubles.
func NumberValue(v any) any {
	if n, ok := v.(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return v
}

type evaluator struct {
	q      *Query
	params map[string]any
	names  []string
}

func (ev *evaluator) eval(e Expr, doc map[string]any) any {
	switch e := e.(type) {
	case *Literal:
		return e.Value
	case *Param:
		return ev.params[e.Name]
	case *Path:
		return lookup(doc, e.Segments)
	case *Unary:
		x := ev.eval(e.X, doc)
		switch e.Op {
		case "NOT":
			if b, ok := x.(bool); ok {
				return !b
			}
		case "-":
			if f, ok := number(x); ok {
				return -f
			}
		}
		return Undefined
	case *Binary:
		return ev.binary(e, doc)
	case *In:
		x := ev.eval(e.X, doc)
		if x == Undefined {
			return Undefined
		}
		found := false
		for _, item := range e.List {
			if Equal(x, ev.eval(item, doc)) == true {
				found = true
				break
			}
		}
		return found != e.Not
	case *Call:
		args := make([]any, len(e.Args))
		for i, a := range e.Args {
			args[i] = ev.eval(a, doc)
		}
		return call(e.Name, args)
	}
	return Undefined
}

func lookup(doc map[string]any, segs []Segment) any {
	var cur any = doc
	for _, s := range segs {
		switch v := cur.(type) {
		case map[string]any:
			if s.IsIndex {
				return Undefined
			}
			next, ok := v[s.Name]
			if !ok {
				return Undefined
			}
			cur = next
		case []any:
			if !s.IsIndex || s.Index >= len(v) {
				return Undefined
			}
			cur = v[s.Index]
		default:
			return Undefined
		}
	}
	return cur
}

func (ev *evaluator) binary(e *Binary, doc map[string]any) any {
	l := ev.eval(e.L, doc)
	// AND and OR are three-valued: a decisive operand wins even if the other
	// one is undefined.
	switch e.Op {
	case "AND":
		r := ev.eval(e.R, doc)
		if l == false || r == false {
			return false
		}
		if l == true && r == true {
			return true
		}
		return Undefined
	case "OR":
		r := ev.eval(e.R, doc)
		if l == true || r == true {
			return true
		}
		if l == false && r == false {
			return false
		}
		return Undefined
	}
	r := ev.eval(e.R, doc)
	switch e.Op {
	case "=":
		return Equal(l, r)
	case "!=":
		if eq, ok := Equal(l, r).(bool); ok {
			return !eq
		}
		return Undefined
	case "<", "<=", ">", ">=":
		if !orderable(l, r) {
			return Undefined
		}
		c := Compare(l, r)
		switch e.Op {
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		case ">":
			return c > 0
		default:
			return c >= 0
		}
	}
	lf, lok := number(l)
	rf, rok := number(r)
	if !lok || !rok {
		return Undefined
	}
	switch e.Op {
	case "+":
		return lf + rf
	case "-":
		return lf - rf
	case "*":
		return lf * rf
	case "/":
		if rf == 0 {
			return Undefined
		}
		return lf / rf
	case "%":
		if rf == 0 {
			return Undefined
		}
		return math.Mod(lf, rf)
	}
	return Undefined
}

func orderable(l, r any) bool {
	switch l.(type) {
	case float64, json.Number:
		_, ok := number(r)
		return ok
	case string:
		_, ok := r.(string)
		return ok
	}
	return false
}

// Equal compares two JSON values. It returns Undefined if either value is
// undefined or the values have different JSON types, and a bool otherwise.
func Equal(a, b any) any {
	if a == Undefined || b == Undefined {
		return Undefined
	}
	if typeRank(a) != typeRank(b) {
		return Undefined
	}
	switch a := a.(type) {
	case float64, json.Number:
		return compareNumbers(a, b) == 0
	case []any:
		bv := b.([]any)
		if len(a) != len(bv) {
			return false
		}
		for i := range a {
			if Equal(a[i], bv[i]) != true {
				return false
			}
		}
		return true
	case map[string]any:
		bv := b.(map[string]any)
		if len(a) != len(bv) {
			return false
		}
		for k, v := range a {
			w, ok := bv[k]
			if !ok || Equal(v, w) != true {
				return false
			}
		}
		return true
	}
	return a == b
}

// number returns the value of a JSON number: a float64, or a json.Number
// from a document decoded with UseNumber.
func number(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// exactInt returns v as an int64 if it is an integer that both an int64 and
// its JSON text represent exactly.
func exactInt(v any) (int64, bool) {
	switch v := v.(type) {
	case json.Number:
		i, err := v.Int64()
		return i, err == nil
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= 1<<53 {
			return int64(v), true
		}
	}
	return 0, false
}

// compareNumbers orders two JSON numbers. Integers compare exactly, so large
// ids that differ only past float64 precision stay distinct.
func compareNumbers(a, b any) int {
	if ai, ok := exactInt(a); ok {
		if bi, ok := exactInt(b); ok {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
	}
	af, _ := number(a)
	bf, _ := number(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	}
	return 0
}

// typeRank orders JSON types the way ORDER BY does.
func typeRank(v any) int {
	switch v.(type) {
	case undefined:
		return 0
	case nil:
		return 1
	case bool:
		return 2
	case float64, json.Number:
		return 3
	case string:
		return 4
	case []any:
		return 5
	case map[string]any:
		return 6
	}
	return 7
}

// Compare orders two JSON values: first by type (undefined, null, booleans,
// numbers, strings, arrays, objects), then by value within booleans, numbers
// and strings.
func Compare(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		if ra < rb {
			return -1
		}
		return 1
	}
	switch a := a.(type) {
	case bool:
		bb := b.(bool)
		switch {
		case a == bb:
			return 0
		case !a:
			return -1
		default:
			return 1
		}
	case float64, json.Number:
		return compareNumbers(a, b)
	case string:
		return strings.Compare(a, b.(string))
	}
	return 0
}

func call(name string, args []any) any {
	switch name {
	case "IS_DEFINED":
		return args[0] != Undefined
	case "STARTSWITH", "ENDSWITH", "CONTAINS":
		s, ok1 := args[0].(string)
		sub, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return Undefined
		}
		if len(args) == 3 {
			ic, ok := args[2].(bool)
			if !ok {
				return Undefined
			}
			if ic {
				s, sub = strings.ToLower(s), strings.ToLower(sub)
			}
		}
		switch name {
		case "STARTSWITH":
			return strings.HasPrefix(s, sub)
		case "ENDSWITH":
			return strings.HasSuffix(s, sub)
		default:
			return strings.Contains(s, sub)
		}
	case "ARRAY_LENGTH":
		if a, ok := args[0].([]any); ok {
			return float64(len(a))
		}
	case "ARRAY_CONTAINS":
		a, ok := args[0].([]any)
		if !ok {
			return Undefined
		}
		partial := false
		if len(args) == 3 {
			if partial, ok = args[2].(bool); !ok {
				return Undefined
			}
		}
		for _, elem := range a {
			if Equal(elem, args[1]) == true || (partial && containsFields(elem, args[1])) {
				return true
			}
		}
		return false
	case "LOWER", "UPPER", "LENGTH":
		s, ok := args[0].(string)
		if !ok {
			return Undefined
		}
		switch name {
		case "LOWER":
			return strings.ToLower(s)
		case "UPPER":
			return strings.ToUpper(s)
		default:
			return float64(utf8.RuneCountInString(s))
		}
	}
	return Undefined
}

// containsFields reports whether object elem has every field of object want
// with an equal value.
func containsFields(elem, want any) bool {
	e, ok1 := elem.(map[string]any)
	w, ok2 := want.(map[string]any)
	if !ok1 || !ok2 {
		return false
	}
	for k, wv := range w {
		ev, ok := e[k]
		if !ok || Equal(ev, wv) != true {
			return false
		}
	}
	return true
}

func (ev *evaluator) project(doc map[string]any) any {
	q := ev.q
	if q.Star {
		return doc
	}
	if q.Value {
		return ev.eval(q.Columns[0].Expr, doc)
	}
	if ev.names == nil {
		ev.names = columnNames(q)
	}
	out := map[string]any{}
	for i, c := range q.Columns {
		if v := ev.eval(c.Expr, doc); v != Undefined {
			out[ev.names[i]] = v
		}
	}
	return out
}

// columnNames returns the property names of a projection: the alias, else
// the last property name of a path, else $1, $2 and so on.
func columnNames(q *Query) []string {
	names := make([]string, len(q.Columns))
	unnamed := 0
	for i, c := range q.Columns {
		switch p, _ := c.Expr.(*Path); {
		case c.Alias != "":
			names[i] = c.Alias
		case p != nil && len(p.Segments) == 0:
			names[i] = p.Root
		case p != nil && !p.Segments[len(p.Segments)-1].IsIndex:
			names[i] = p.Segments[len(p.Segments)-1].Name
		default:
			unnamed++
			names[i] = fmt.Sprintf("$%d", unnamed)
		}
	}
	return names
}

func (ev *evaluator) aggregate(docs []map[string]any) any {
	q := ev.q
	if q.Value {
		return ev.aggregateColumn(q.Columns[0].Expr.(*Call), docs)
	}
	names := columnNames(q)
	out := map[string]any{}
	for i, c := range q.Columns {
		if v := ev.aggregateColumn(c.Expr.(*Call), docs); v != Undefined {
			out[names[i]] = v
		}
	}
	return out
}

func (ev *evaluator) aggregateColumn(c *Call, docs []map[string]any) any {
	var vals []any
	for _, d := range docs {
		if v := ev.eval(c.Args[0], d); v != Undefined {
			vals = append(vals, v)
		}
	}
	switch c.Name {
	case "COUNT":
		return float64(len(vals))
	case "SUM", "AVG":
		sum := 0.0
		for _, v := range vals {
			f, ok := number(v)
			if !ok {
				return Undefined
			}
			sum += f
		}
		if c.Name == "SUM" {
			return sum
		}
		if len(vals) == 0 {
			return Undefined
		}
		return sum / float64(len(vals))
	case "MIN", "MAX":
		if len(vals) == 0 {
			return Undefined
		}
		best := vals[0]
		for _, v := range vals[1:] {
			cmp := Compare(v, best)
			if (c.Name == "MIN" && cmp < 0) || (c.Name == "MAX" && cmp > 0) {
				best = v
			}
		}
		return best
	}
	return Undefined
}
