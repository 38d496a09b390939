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

package driver

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

type customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestToJSONObject(t *testing.T) {
	want := map[string]any{"id": "1", "name": "New Customer 1"}
	for _, doc := range []any{
		want,
		`{"id": "1", "name": "New Customer 1"}`,
		[]byte(`{"name":"New Customer 1","id":"1"}`),
		customer{ID: "1", Name: "New Customer 1"},
		&customer{ID: "1", Name: "New Customer 1"},
	} {
		got, canon, err := ToJSONObject(doc)
		if err != nil {
			t.Fatalf("%T: %v", doc, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%T: mismatch (-want +got):\n%s", doc, diff)
		}
		if g, w := string(canon), `{"id":"1","name":"New Customer 1"}`; g != w {
			t.Errorf("%T: canonical form %s, want %s", doc, g, w)
		}
	}
}

func TestToJSONObjectKeepsNumbers(t *testing.T) {
	type rec struct {
		ID string  `json:"id"`
		N  int64   `json:"n"`
		F  float64 `json:"f"`
	}
	in := rec{ID: "1", N: 9007199254740993, F: 0.1}
	m, canon, err := ToJSONObject(in)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := m["n"], json.Number("9007199254740993"); got != want {
		t.Errorf("decoded n = %#v, want %#v", got, want)
	}
	if g, w := string(canon), `{"f":0.1,"id":"1","n":9007199254740993}`; g != w {
		t.Errorf("canonical form %s, want %s", g, w)
	}
	var out rec
	if err := json.Unmarshal(canon, &out); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestToJSONObjectErrors(t *testing.T) {
	for _, doc := range []any{nil, "", "[1,2]", `{"id":`, `{"id":"1"} {}`, `{"id":"1"}}`, 17, make(chan int)} {
		_, _, err := ToJSONObject(doc)
		if got := cosmoserrors.Code(err); got != cosmoserrors.InvalidArgument {
			t.Errorf("%#v: got code %v, want InvalidArgument", doc, got)
		}
	}
}

func TestItemID(t *testing.T) {
	for _, test := range []struct {
		doc     map[string]any
		want    string
		wantErr bool
	}{
		{map[string]any{"id": "a"}, "a", false},
		{map[string]any{}, "", true},
		{map[string]any{"id": ""}, "", true},
		{map[string]any{"id": 3.0}, "", true},
	} {
		got, err := ItemID(test.doc)
		if (err != nil) != test.wantErr {
			t.Errorf("%v: got error %v, want error %t", test.doc, err, test.wantErr)
		}
		if got != test.want {
			t.Errorf("%v: got %q, want %q", test.doc, got, test.want)
		}
	}
}

func TestPartitionKeyValue(t *testing.T) {
	doc := map[string]any{
		"partitionKey": "pk",
		"address":      map[string]any{"postalCode": "11229"},
	}
	for _, test := range []struct {
		path   string
		want   any
		wantOK bool
	}{
		{"/partitionKey", "pk", true},
		{"/address/postalCode", "11229", true},
		{"/address/city", nil, false},
		{"/partitionKey/x", nil, false},
	} {
		got, ok := PartitionKeyValue(doc, test.path)
		if ok != test.wantOK || got != test.want {
			t.Errorf("%s: got (%v, %t), want (%v, %t)", test.path, got, ok, test.want, test.wantOK)
		}
	}
	if got := SplitPath("/"); got != nil {
		t.Errorf(`SplitPath("/") = %v, want nil`, got)
	}
}

func TestThroughputString(t *testing.T) {
	for _, test := range []struct {
		tp   Throughput
		want string
	}{
		{Throughput{Manual: 400}, "400 RU/s"},
		{Throughput{AutoscaleMax: 4000}, "autoscale up to 4000 RU/s"},
		{Throughput{}, "none"},
	} {
		if got := test.tp.String(); got != test.want {
			t.Errorf("%+v: got %q, want %q", test.tp, got, test.want)
		}
	}
}
