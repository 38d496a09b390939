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
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testDocs = `[
	{"id": "1", "name": "New Customer 1", "isNew": true, "age": 30, "tags": ["vip"],
	 "address": {"postalCode": "11229"}, "kids": [{"firstName": "Jesse"}]},
	{"id": "2", "name": "New Customer 2", "isNew": false, "age": 5,
	 "address": {"postalCode": "11229"}},
	{"id": "3", "name": "Andersen",
	 "kids": [{"firstName": "Henriette"}, {"firstName": "Lisa"}]}
]`

func TestExecute(t *testing.T) {
	var docs []map[string]any
	if err := json.Unmarshal([]byte(testDocs), &docs); err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		sql    string
		params map[string]any
		want   string
	}{
		{"SELECT VALUE COUNT(1) FROM c", nil, `[3]`},
		{"SELECT VALUE COUNT(1) FROM c WHERE c.isNew = true", nil, `[1]`},
		{"SELECT COUNT(c.age) FROM c", nil, `[{"$1": 2}]`},
		{
			"SELECT c.id, c.address.postalCode FROM c WHERE STARTSWITH(c.name, 'New Customer')", nil,
			`[{"id": "1", "postalCode": "11229"}, {"id": "2", "postalCode": "11229"}]`,
		},
		{"SELECT VALUE c.id FROM c WHERE c.isNew != true", nil, `["2"]`},
		{"SELECT VALUE c.id FROM c WHERE NOT IS_DEFINED(c.isNew)", nil, `["3"]`},
		{"SELECT VALUE c.id FROM c WHERE NOT c.isNew", nil, `["2"]`},
		{"SELECT VALUE c.id FROM c WHERE c.isNew OR c.age < 10", nil, `["1", "2"]`},
		{"SELECT VALUE c.id FROM c ORDER BY c.age DESC", nil, `["1", "2", "3"]`},
		{"SELECT VALUE c.id FROM c ORDER BY c.age", nil, `["3", "2", "1"]`},
		{"SELECT TOP 1 VALUE c.id FROM c ORDER BY c.id", nil, `["1"]`},
		{"SELECT VALUE c.id FROM c ORDER BY c.id OFFSET 1 LIMIT 1", nil, `["2"]`},
		{"SELECT VALUE c.id FROM c OFFSET 5 LIMIT 1", nil, `[]`},
		{
			"SELECT c.name AS n, ARRAY_LENGTH(c.kids) FROM c WHERE c.id = @id",
			map[string]any{"@id": "3"},
			`[{"n": "Andersen", "$1": 2}]`,
		},
		{"SELECT VALUE c.id FROM c WHERE c.age IN (5, 30)", nil, `["1", "2"]`},
		{"SELECT VALUE c.id FROM c WHERE c.age NOT IN (5)", nil, `["1"]`},
		{"SELECT VALUE c.id FROM c WHERE c.age = '30'", nil, `[]`},
		{"SELECT VALUE c.id FROM c WHERE c.age >= @min", map[string]any{"@min": 10}, `["1"]`},
		{"SELECT SUM(c.age) AS total, MAX(c.name) FROM c", nil, `[{"total": 35, "$1": "New Customer 2"}]`},
		{"SELECT VALUE AVG(c.age) FROM c", nil, `[17.5]`},
		{"SELECT VALUE MIN(c.missing) FROM c", nil, `[]`},
		{"SELECT VALUE c.id FROM c WHERE ARRAY_CONTAINS(c.tags, 'vip')", nil, `["1"]`},
		{
			"SELECT VALUE c.id FROM c WHERE ARRAY_CONTAINS(c.kids, @kid, true)",
			map[string]any{"@kid": map[string]string{"firstName": "Lisa"}},
			`["3"]`,
		},
		{"SELECT VALUE c.kids[1].firstName FROM c", nil, `["Lisa"]`},
		{"SELECT VALUE LOWER(c.name) FROM c WHERE ENDSWITH(c.name, 'SEN', true)", nil, `["andersen"]`},
		{"SELECT VALUE c.age * 2 + 1 FROM c WHERE IS_DEFINED(c.age)", nil, `[61, 11]`},
		{"SELECT VALUE LENGTH(c.name) FROM c WHERE CONTAINS(c.name, 'der')", nil, `[8]`},
		{"SELECT c.address FROM c WHERE c.id = '2'", nil, `[{"address": {"postalCode": "11229"}}]`},
		{
			"SELECT * FROM c WHERE c.id = '2'", nil,
			`[{"id": "2", "name": "New Customer 2", "isNew": false, "age": 5, "address": {"postalCode": "11229"}}]`,
		},
	} {
		t.Run(test.sql, func(t *testing.T) {
			q, err := Parse(test.sql)
			if err != nil {
				t.Fatal(err)
			}
			got, err := q.Execute(docs, test.params)
			if err != nil {
				t.Fatal(err)
			}
			var want []any
			if err := json.Unmarshal([]byte(test.want), &want); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(want, got, cmp.Transformer("nilToEmpty", func(s []any) []any {
				if s == nil {
					return []any{}
				}
				return s
			})); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecuteExactNumbers(t *testing.T) {
	dec := json.NewDecoder(strings.NewReader(`[
		{"id": "a", "n": 9007199254740993, "age": 30, "tags": [1, 3]},
		{"id": "b", "n": 9007199254740992, "age": 5.5, "tags": [1, 2]}
	]`))
	dec.UseNumber()
	var docs []map[string]any
	if err := dec.Decode(&docs); err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct {
		sql    string
		params map[string]any
		want   string
	}{
		{"SELECT VALUE c.n FROM c", nil, `[9007199254740993,9007199254740992]`},
		{"SELECT VALUE c.id FROM c WHERE c.n = @n", map[string]any{"@n": int64(9007199254740993)}, `["a"]`},
		{"SELECT VALUE c.id FROM c WHERE c.n > 9007199254740992", nil, `["a"]`},
		{"SELECT VALUE c.id FROM c ORDER BY c.n", nil, `["b","a"]`},
		{"SELECT VALUE c.id FROM c WHERE c.age > 10", nil, `["a"]`},
		{"SELECT VALUE c.id FROM c WHERE c.age IN (5.5)", nil, `["b"]`},
		{"SELECT VALUE c.id FROM c WHERE c.tags = @tags", map[string]any{"@tags": []int{1, 2}}, `["b"]`},
		{"SELECT VALUE c.id FROM c WHERE ARRAY_CONTAINS(c.tags, 3)", nil, `["a"]`},
		{"SELECT VALUE c.id FROM c WHERE c.tags NOT IN (1, 2)", nil, `["a","b"]`},
		{"SELECT VALUE SUM(c.age) FROM c", nil, `[35.5]`},
		{"SELECT VALUE MAX(c.n) FROM c", nil, `[9007199254740993]`},
		{"SELECT VALUE -c.age FROM c", nil, `[-30,-5.5]`},
	} {
		t.Run(test.sql, func(t *testing.T) {
			q, err := Parse(test.sql)
			if err != nil {
				t.Fatal(err)
			}
			got, err := q.Execute(docs, test.params)
			if err != nil {
				t.Fatal(err)
			}
			if got == nil {
				got = []any{}
			}
			b, err := json.Marshal(got)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != test.want {
				t.Errorf("got %s, want %s", b, test.want)
			}
		})
	}
}

func TestExecuteMissingParam(t *testing.T) {
	q, err := Parse("SELECT * FROM c WHERE c.id = @id")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := q.Execute(nil, nil); err == nil {
		t.Error("got nil error for an unbound parameter")
	}
	if diff := cmp.Diff([]string{"@id"}, q.Params()); diff != "" {
		t.Errorf("Params mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare(t *testing.T) {
	ordered := []any{
		Undefined, nil, false, true,
		-1.0, json.Number("1.5"), 2.0, 9007199254740992.0, json.Number("9007199254740993"),
		"", "a", "b", []any{}, map[string]any{},
	}
	for i := range ordered {
		for j := range ordered {
			got := Compare(ordered[i], ordered[j])
			want := 0
			switch {
			case i < j:
				want = -1
			case i > j:
				want = 1
			}
			if got != want {
				t.Errorf("Compare(%v, %v) = %d, want %d", ordered[i], ordered[j], got, want)
			}
		}
	}
}

func TestEqual(t *testing.T) {
	for _, test := range []struct {
		a, b any
		want any
	}{
		{1.0, 1.0, true},
		{1.0, 2.0, false},
		{"1", 1.0, Undefined},
		{nil, nil, true},
		{Undefined, Undefined, Undefined},
		{[]any{1.0}, []any{1.0}, true},
		{json.Number("1"), 1.0, true},
		{json.Number("1.0"), json.Number("1"), true},
		{json.Number("9007199254740993"), 9007199254740992.0, false},
		{[]any{json.Number("2")}, []any{2.0}, true},
		{map[string]any{"a": json.Number("3")}, map[string]any{"a": 3.0}, true},
		{map[string]any{"a": "b"}, map[string]any{"a": "c"}, false},
	} {
		if got := Equal(test.a, test.b); got != test.want {
			t.Errorf("Equal(%v, %v) = %v, want %v", test.a, test.b, got, test.want)
		}
	}
}
