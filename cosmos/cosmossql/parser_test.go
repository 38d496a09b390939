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
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		sql       string
		wantStar  bool
		wantValue bool
		wantAgg   bool
		wantAlias string
		wantCols  []string
		wantWhere string
		wantTop   int
	}{
		{
			sql:       "SELECT * FROM c WHERE STARTSWITH(c.name, 'New Customer') = true",
			wantStar:  true,
			wantAlias: "c",
			wantWhere: `(STARTSWITH(c.name, "New Customer") = true)`,
		},
		{
			sql:       "select value count(1) from c",
			wantValue: true,
			wantAgg:   true,
			wantAlias: "c",
			wantCols:  []string{"COUNT(1)"},
		},
		{
			sql:       "SELECT c.id, c.address.postalCode FROM c",
			wantAlias: "c",
			wantCols:  []string{"c.id", "c.address.postalCode"},
		},
		{
			sql:       "SELECT f.id FROM Families f WHERE ARRAY_LENGTH(f.kids) > 1",
			wantAlias: "f",
			wantCols:  []string{"f.id"},
			wantWhere: "(ARRAY_LENGTH(f.kids) > 1)",
		},
		{
			sql:       "SELECT TOP 2 x.name AS n FROM c AS x ORDER BY x.name DESC",
			wantAlias: "x",
			wantCols:  []string{"x.name"},
			wantTop:   2,
		},
		{
			sql:       `SELECT * FROM c WHERE c.a.b[0] IN ('x', 2) AND NOT c.done OFFSET 1 LIMIT 5`,
			wantStar:  true,
			wantAlias: "c",
			wantWhere: `(c.a.b[0] IN ("x", 2) AND NOT c.done)`,
		},
		{
			sql:       "SELECT VALUE c.a + c.b * 2 FROM c",
			wantValue: true,
			wantAlias: "c",
			wantCols:  []string{"(c.a + (c.b * 2))"},
		},
		{
			sql:       `SELECT * FROM c WHERE c.x <> -1 OR c["value"] = @v`,
			wantStar:  true,
			wantAlias: "c",
			wantWhere: "((c.x != -1) OR (c.value = @v))",
		},
	} {
		t.Run(test.sql, func(t *testing.T) {
			q, err := Parse(test.sql)
			if err != nil {
				t.Fatal(err)
			}
			if q.Star != test.wantStar || q.Value != test.wantValue || q.IsAggregate() != test.wantAgg {
				t.Errorf("got Star=%t Value=%t aggregate=%t, want %t %t %t",
					q.Star, q.Value, q.IsAggregate(), test.wantStar, test.wantValue, test.wantAgg)
			}
			if q.Alias != test.wantAlias {
				t.Errorf("got alias %q, want %q", q.Alias, test.wantAlias)
			}
			var cols []string
			for _, c := range q.Columns {
				cols = append(cols, c.Expr.String())
			}
			if diff := cmp.Diff(test.wantCols, cols); diff != "" {
				t.Errorf("columns mismatch (-want +got):\n%s", diff)
			}
			var where string
			if q.Where != nil {
				where = q.Where.String()
			}
			if where != test.wantWhere {
				t.Errorf("got WHERE %s, want %s", where, test.wantWhere)
			}
			var top int
			if q.Top != nil {
				top = *q.Top
			}
			if top != test.wantTop {
				t.Errorf("got TOP %d, want %d", top, test.wantTop)
			}
		})
	}
}

func TestParseClauses(t *testing.T) {
	q, err := Parse("SELECT TOP 2 x.name AS n, x.age FROM Families x ORDER BY x.name DESC, x.age OFFSET 3 LIMIT 4")
	if err != nil {
		t.Fatal(err)
	}
	if q.Source != "Families" || q.Columns[0].Alias != "n" {
		t.Errorf("got source %q and first alias %q", q.Source, q.Columns[0].Alias)
	}
	if len(q.OrderBy) != 2 || !q.OrderBy[0].Desc || q.OrderBy[1].Desc || q.OrderBy[1].Path.FieldPath() != "age" {
		t.Errorf("got ORDER BY %+v", q.OrderBy)
	}
	if *q.Offset != 3 || *q.Limit != 4 {
		t.Errorf("got OFFSET %d LIMIT %d, want 3 and 4", *q.Offset, *q.Limit)
	}
}

func TestParseErrors(t *testing.T) {
	for _, sql := range []string{
		"",
		"SELECT",
		"SELECT * FROM",
		"SELECT * FROM c WHERE",
		"SELECT d.id FROM c",
		"SELECT COUNT(1), c.id FROM c",
		"SELECT * FROM c WHERE COUNT(1) > 0",
		"SELECT VALUE * FROM c",
		"SELECT VALUE c.a, c.b FROM c",
		"SELECT * FROM c WHERE c.name = 'unterminated",
		"SELECT * FROM c WHERE FOO(c.x)",
		"SELECT TOP -1 * FROM c",
		"SELECT TOP 1.5 * FROM c",
		"SELECT * FROM c ORDER BY LOWER(c.x)",
		"SELECT * FROM c extra stuff",
		"SELECT * FROM c WHERE c.x = 1 ORDER c.x",
		"SELECT STARTSWITH(c.x) FROM c",
		"SELECT * FROM c WHERE c.x # 1",
		"SELECT * FROM c OFFSET 1",
		"SELECT VALUE COUNT(1) FROM c ORDER BY c.x",
		"SELECT * FROM c WHERE c.x IN ()",
		"SELECT * FROM c WHERE c[",
		`SELECT * FROM c WHERE c.x = "\q"`,
		"SELECT * FROM c WHERE @ = 1",
	} {
		_, err := Parse(sql)
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("%q: got %v, want *Error", sql, err)
		}
	}
}

func TestErrorPosition(t *testing.T) {
	_, err := Parse("SELECT * FROM c WHERE c.x = ")
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *Error", err)
	}
	if perr.Pos != 28 {
		t.Errorf("got position %d, want 28", perr.Pos)
	}
}

func TestStringEscapes(t *testing.T) {
	q, err := Parse(`SELECT * FROM c WHERE c.s = 'it\'s é\n'`)
	if err != nil {
		t.Fatal(err)
	}
	lit := q.Where.(*Binary).R.(*Literal)
	if got, want := lit.Value, "it's é\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
