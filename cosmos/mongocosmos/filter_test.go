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
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/cosmosdb-samples/gocosmos/cosmos/cosmossql"
)

func TestFilter(t *testing.T) {
	params := map[string]any{
		"@city":  "Seattle",
		"@kids":  []any{"a"},
		"@big":   json.Number("9007199254740993"),
		"@ratio": json.Number("0.5"),
	}
	for _, test := range []struct {
		where string
		want  bson.D // nil for a full scan
	}{
		{"c.isNew", bson.D{{Key: "isNew", Value: true}}},
		{"c.id = '1'", bson.D{{Key: "id", Value: bson.D{{Key: "$eq", Value: "1"}}}}},
		{"c.address.city = @city", bson.D{{Key: "address.city", Value: bson.D{{Key: "$eq", Value: "Seattle"}}}}},
		{"c.kids[0] != 'Jesse'", bson.D{{Key: "kids.0", Value: bson.D{{Key: "$ne", Value: "Jesse"}}}}},
		{"3 < c.age", bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: float64(3)}}}}},
		{"c.age >= -1", bson.D{{Key: "age", Value: bson.D{{Key: "$gte", Value: float64(-1)}}}}},
		{"c.id IN ('1', '2')", bson.D{{Key: "id", Value: bson.D{{Key: "$in", Value: bson.A{"1", "2"}}}}}},
		{"c.n = @big", bson.D{{Key: "n", Value: bson.D{{Key: "$eq", Value: int64(9007199254740993)}}}}},
		{"c.r > @ratio", bson.D{{Key: "r", Value: bson.D{{Key: "$gt", Value: 0.5}}}}},
		{"ARRAY_LENGTH(c.kids) = @big", bson.D{{Key: "$expr", Value: bson.D{{Key: "$eq", Value: bson.A{
			bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$isArray", Value: "$kids"}},
				bson.D{{Key: "$size", Value: "$kids"}},
				nil,
			}}},
			int64(9007199254740993),
		}}}}}},
		{"STARTSWITH(c.name, 'New (1)')", bson.D{{Key: "name", Value: primitive.Regex{Pattern: `^New \(1\)`}}}},
		{"ENDSWITH(c.name, 'son', true)", bson.D{{Key: "name", Value: primitive.Regex{Pattern: "son$", Options: "i"}}}},
		{"CONTAINS(c.name, 'a.b')", bson.D{{Key: "name", Value: primitive.Regex{Pattern: `a\.b`}}}},
		{"IS_DEFINED(c.kids)", bson.D{{Key: "kids", Value: bson.D{{Key: "$exists", Value: true}}}}},
		{"ARRAY_CONTAINS(c.kids, 'Lisa')", bson.D{{Key: "kids", Value: "Lisa"}}},
		{"ARRAY_LENGTH(c.kids) > 1", bson.D{{Key: "$expr", Value: bson.D{{Key: "$gt", Value: bson.A{
			bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$isArray", Value: "$kids"}},
				bson.D{{Key: "$size", Value: "$kids"}},
				nil,
			}}},
			float64(1),
		}}}}}},
		{"c.isNew = true AND c.age > 1", bson.D{{Key: "$and", Value: bson.A{
			bson.D{{Key: "isNew", Value: bson.D{{Key: "$eq", Value: true}}}},
			bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: float64(1)}}}},
		}}}},
		{"c.a = 1 OR c.b = 2", bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "a", Value: bson.D{{Key: "$eq", Value: float64(1)}}}},
			bson.D{{Key: "b", Value: bson.D{{Key: "$eq", Value: float64(2)}}}},
		}}}},
		// Untranslatable halves of AND are dropped.
		{"NOT c.isNew AND c.id = '1'", bson.D{{Key: "id", Value: bson.D{{Key: "$eq", Value: "1"}}}}},
		{"LOWER(c.name) = 'x' AND c.a > 1", bson.D{{Key: "a", Value: bson.D{{Key: "$gt", Value: float64(1)}}}}},
		// Full scans.
		{"NOT c.isNew", nil},
		{"c.a = 1 OR LOWER(c.name) = 'x'", nil},
		{"c.a + 1 = 2", nil},
		{"c.a = c.b", nil},
		{"c.a < true", nil},
		{"c.kids = @kids", nil},
		{"c.a = @missing", nil},
		// An array field never equals a scalar, so NOT IN keeps it.
		{"c.tags NOT IN (1, 2)", nil},
		{"c.id NOT IN ('1')", nil},
		{"ARRAY_LENGTH(c.kids[0]) > 1", nil},
		{"c._id = 'x'", nil},
		{"c._cosmosOrder = 'x'", nil},
		{"true", nil},
	} {
		q, err := cosmossql.Parse("SELECT * FROM c WHERE " + test.where)
		if err != nil {
			t.Fatalf("%s: %v", test.where, err)
		}
		fb := &filterBuilder{alias: q.Alias, params: params}
		got, ok := fb.build(q.Where)
		if ok != (test.want != nil) {
			t.Errorf("%s: got ok=%t, want %t", test.where, ok, test.want != nil)
			continue
		}
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", test.where, diff)
		}
	}
}

func TestFieldName(t *testing.T) {
	for path, want := range map[string]string{
		"/partitionKey":       "partitionKey",
		"/address/postalCode": "address.postalCode",
	} {
		if got := fieldName(path); got != want {
			t.Errorf("fieldName(%q) = %q, want %q", path, got, want)
		}
	}
}
