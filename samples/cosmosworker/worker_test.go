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

package cosmosworker

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/memcosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

var testTime = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func newTestWorker(t *testing.T) (*Worker, *bytes.Buffer) {
	t.Helper()
	a, err := memcosmos.OpenAccount(&memcosmos.Options{Clock: func() time.Time { return testTime }})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	n := 0
	var out bytes.Buffer
	return &Worker{
		Account: a,
		Out:     &out,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}, &out
}

const runAllOutput = `
>>> View Databases <<<

Total databases: 0

>>> Create Database <<<
 Database Id: mydb; Modified: 2026-10-14T09:30:00Z

>>> Create Container mystore in mydb <<<

 Throughput: 400 RU/sec
 Partition key: /address/postalCode

Created new container
     Container ID: mystore
    Last Modified: 2026-10-14T09:30:00Z
    Partition Key: /address/postalCode
       Throughput: 400 RU/s

>>> View Containers in mydb <<<

 Container #1
     Container ID: mystore
    Last Modified: 2026-10-14T09:30:00Z
    Partition Key: /address/postalCode
       Throughput: 400 RU/s

Total containers in mydb database: 1
>>> Create Documents <<<

Created new document id-1 from dynamic object
Created new document id-2 from JSON string
Created new document id-3 from typed object
>>> Query Documents (SQL) <<<

Querying for new customer documents (SQL)
 (1) Id: id-1; Name: New Customer 1;
     City: Redmond
 (2) Id: id-2; Name: New Customer 2;
     City: Beverly Hills
 (3) Id: id-3; Name: New Customer 3;
     City: Brooklyn
Retrieved 3 new documents as dynamic

 (1) Id: id-1; Name: New Customer 1;
     City: Redmond
 (2) Id: id-2; Name: New Customer 2;
     City: Beverly Hills
 (3) Id: id-3; Name: New Customer 3;
     City: Brooklyn
Retrieved 3 new documents as Customer

>>> Replace Documents <<<

Querying for documents with 'isNew' flag
Documents with 'isNew' flag: 0

Querying for documents to be updated
Found 3 documents to be updated
Updated document 'isNew' flag: true
Updated document 'isNew' flag: true
Updated document 'isNew' flag: true

Querying for documents with 'isNew' flag
Documents with 'isNew' flag: 3

>>> Create Families <<<

Created family AndersenFamily
Created family WakefieldFamily
Created family SmithFamily

>>> View Families <<<
Family AndersenFamily has 2 children.
Family WakefieldFamily has 3 children.
>>> Delete Documents <<<

Querying for documents to be deleted
Found 3 documents to be deleted
Deleted 3 new customer documents


>>> Delete Container mystore in mydb <<<
Deleted container mystore from database mydb

>>> Delete Database <<<
Deleted database mydb

>>> View Databases <<<

Total databases: 0
`

func TestRunAll(t *testing.T) {
	w, out := newTestWorker(t)
	if err := w.RunAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(runAllOutput, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRunAllStopsOnError(t *testing.T) {
	ctx := context.Background()
	w, _ := newTestWorker(t)
	if _, err := w.Account.CreateDatabase(ctx, DefaultDatabaseID, nil); err != nil {
		t.Fatal(err)
	}
	err := w.RunAll(ctx)
	if got := cosmoserrors.Code(err); got != cosmoserrors.AlreadyExists {
		t.Errorf("got %v, want AlreadyExists", err)
	}
}

func TestViewContainersMissingDatabase(t *testing.T) {
	w, _ := newTestWorker(t)
	err := w.ViewContainers(context.Background(), "nope")
	if got := cosmoserrors.Code(err); got != cosmoserrors.NotFound {
		t.Errorf("got %v, want NotFound", err)
	}
}

func TestDocumentCommands(t *testing.T) {
	ctx := context.Background()
	w, out := newTestWorker(t)
	db, err := w.Account.CreateDatabase(ctx, DefaultDatabaseID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.CreateContainer(ctx, cosmos.ContainerProperties{ID: DefaultContainerID, PartitionKeyPath: DemoPartitionKeyPath}, nil); err != nil {
		t.Fatal(err)
	}
	pk := ParsePartitionKey("11229")
	if err := w.PutDocument(ctx, pk, `{"id": "a", "address": {"postalCode": "11229"}}`); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := w.GetDocument(ctx, pk, "a"); err != nil {
		t.Fatal(err)
	}
	want := `{
  "address": {
    "postalCode": "11229"
  },
  "id": "a"
}
`
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("GetDocument mismatch (-want +got):\n%s", diff)
	}

	out.Reset()
	if err := w.Query(ctx, "SELECT VALUE c.id FROM c", nil); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("\"a\"\nRetrieved 1 results; pages read: 1\n", out.String()); diff != "" {
		t.Errorf("Query mismatch (-want +got):\n%s", diff)
	}

	err = w.GetDocument(ctx, pk, "b")
	if got := cosmoserrors.Code(err); got != cosmoserrors.NotFound {
		t.Errorf("GetDocument of a missing document: got %v, want NotFound", err)
	}
}

func TestParsePartitionKey(t *testing.T) {
	for _, test := range []struct {
		in   string
		want cosmos.PartitionKey
	}{
		{"11229", cosmos.PartitionKeyNumber(11229)},
		{`"11229"`, cosmos.PartitionKeyString("11229")},
		{"Seattle", cosmos.PartitionKeyString("Seattle")},
		{"true", cosmos.PartitionKeyBool(true)},
		{"null", cosmos.NullPartitionKey},
		{"[1]", cosmos.PartitionKeyString("[1]")},
	} {
		if diff := cmp.Diff(test.want, ParsePartitionKey(test.in)); diff != "" {
			t.Errorf("%s: mismatch (-want +got):\n%s", test.in, diff)
		}
	}
}

func TestPrintDocument(t *testing.T) {
	var out strings.Builder
	if err := PrintDocument(&out, []byte(`{"id": "x", "_etag": "\"1\"", "_ts": 5}`)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("{\n  \"id\": \"x\"\n}\n", out.String()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
