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

// Package drivertest provides a conformance test for implementations of
// driver.
package drivertest // import "github.com/cosmosdb-samples/gocosmos/cosmos/drivertest"

import (
	"context"
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

// Harness descibes the functionality test harnesses must provide to run
// conformance tests.
type Harness interface {
	// MakeAccount makes a driver.Account for testing.
	MakeAccount(context.Context) (driver.Account, error)

	// ReportsThroughput reports whether the account can read back the
	// throughput provisioned for a container.
	ReportsThroughput() bool

	// ExactIntegers reports whether stored integers beyond 2^53 read back
	// unchanged. Services that keep numbers as doubles return false.
	ExactIntegers() bool

	// Close closes resources used by the harness.
	Close()
}

// HarnessMaker describes functions that construct a harness for running tests.
// It is called exactly once per test; Harness.Close() will be called when the test is complete.
type HarnessMaker func(ctx context.Context, t *testing.T) (Harness, error)

// AsTest represents a test of As functionality.
type AsTest interface {
	// Name should return a descriptive name for the test.
	Name() string
	// AccountCheck will be called to allow verification of Account.As.
	AccountCheck(a *cosmos.Account) error
	// ErrorCheck is called to allow verification of Account.ErrorAs.
	ErrorCheck(a *cosmos.Account, err error) error
}

type verifyAsFailsOnNil struct{}

func (verifyAsFailsOnNil) Name() string {
	return "verify As returns false when passed nil"
}

func (verifyAsFailsOnNil) AccountCheck(a *cosmos.Account) error {
	if a.As(nil) {
		return errors.New("want Account.As to return false when passed nil")
	}
	return nil
}

func (verifyAsFailsOnNil) ErrorCheck(a *cosmos.Account, err error) (ret error) {
	defer func() {
		if recover() == nil {
			ret = errors.New("want ErrorAs to panic when passed nil")
		}
	}()
	a.ErrorAs(err, nil)
	return nil
}

// RunConformanceTests runs conformance tests for driver implementations of cosmos.
func RunConformanceTests(t *testing.T, newHarness HarnessMaker, asTests []AsTest) {
	t.Run("DatabaseLifecycle", func(t *testing.T) { withAccount(t, newHarness, testDatabaseLifecycle) })
	t.Run("ContainerLifecycle", func(t *testing.T) { withAccount(t, newHarness, testContainerLifecycle) })
	t.Run("Items", func(t *testing.T) { withContainer(t, newHarness, testItems) })
	t.Run("Query", func(t *testing.T) { withContainer(t, newHarness, testQuery) })
	t.Run("Numbers", func(t *testing.T) { withAccount(t, newHarness, testNumbers) })
	t.Run("NotFound", func(t *testing.T) { withAccount(t, newHarness, testNotFound) })

	asTests = append(asTests, verifyAsFailsOnNil{})
	t.Run("As", func(t *testing.T) {
		for _, st := range asTests {
			if st.Name() == "" {
				t.Fatalf("AsTest.Name is required")
			}
			t.Run(st.Name(), func(t *testing.T) {
				withAccount(t, newHarness, func(t *testing.T, _ Harness, a *cosmos.Account) {
					testAs(t, a, st)
				})
			})
		}
	})
}

// withAccount calls f with a fresh harness and account. The account is
// closed after the cleanups f registers have run.
func withAccount(t *testing.T, newHarness HarnessMaker, f func(*testing.T, Harness, *cosmos.Account)) {
	ctx := context.Background()
	h, err := newHarness(ctx, t)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(h.Close)

	da, err := h.MakeAccount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	a := cosmos.NewAccount(da)
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("closing account: %v", err)
		}
	})
	f(t, h, a)
}

// partitionKeyPath is the partition key of the containers the tests create.
const partitionKeyPath = "/address/postalCode"

// withContainer calls f with a container in a scratch database that is
// deleted afterwards.
func withContainer(t *testing.T, newHarness HarnessMaker, f func(*testing.T, *cosmos.Container)) {
	withAccount(t, newHarness, func(t *testing.T, _ Harness, a *cosmos.Account) {
		ctx := context.Background()
		db := scratchDatabase(t, a)
		if _, err := db.CreateContainer(ctx, cosmos.ContainerProperties{ID: "items", PartitionKeyPath: partitionKeyPath}, nil); err != nil {
			t.Fatal(err)
		}
		f(t, db.Container("items"))
	})
}

// scratchDatabase creates a uniquely named database and arranges for its
// deletion when the test ends.
func scratchDatabase(t *testing.T, a *cosmos.Account) *cosmos.Database {
	ctx := context.Background()
	id := "drivertest-" + uuid.NewString()[:8]
	db, err := a.CreateDatabase(ctx, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := a.DeleteDatabase(ctx, id); err != nil {
			t.Errorf("deleting scratch database %s: %v", id, err)
		}
	})
	return db
}

func checkCode(t *testing.T, err error, want cosmoserrors.ErrorCode) {
	t.Helper()
	if got := cosmoserrors.Code(err); got != want {
		t.Errorf("got error %v with code %v, want code %v", err, got, want)
	}
}

func testDatabaseLifecycle(t *testing.T, _ Harness, a *cosmos.Account) {
	ctx := context.Background()
	id := "drivertest-" + uuid.NewString()[:8]
	db, err := a.CreateDatabase(ctx, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if db.ID() != id {
		t.Errorf("got database id %q, want %q", db.ID(), id)
	}
	_, err = a.CreateDatabase(ctx, id, nil)
	checkCode(t, err, cosmoserrors.AlreadyExists)

	if !hasDatabase(ctx, t, a, id) {
		t.Errorf("ListDatabases does not report %s", id)
	}
	if err := a.DeleteDatabase(ctx, id); err != nil {
		t.Fatal(err)
	}
	if hasDatabase(ctx, t, a, id) {
		t.Errorf("ListDatabases still reports %s after deletion", id)
	}
	checkCode(t, a.DeleteDatabase(ctx, id), cosmoserrors.NotFound)
}

func hasDatabase(ctx context.Context, t *testing.T, a *cosmos.Account, id string) bool {
	dbs, err := a.ListDatabases(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, db := range dbs {
		if db.ID == id {
			return true
		}
	}
	return false
}

func testContainerLifecycle(t *testing.T, h Harness, a *cosmos.Account) {
	ctx := context.Background()
	db := scratchDatabase(t, a)

	props, err := db.CreateContainer(ctx, cosmos.ContainerProperties{ID: "families", PartitionKeyPath: partitionKeyPath},
		&cosmos.CreateContainerOptions{Throughput: 500})
	if err != nil {
		t.Fatal(err)
	}
	if props.ID != "families" || props.PartitionKeyPath != partitionKeyPath {
		t.Errorf("CreateContainer returned %+v", props)
	}
	_, err = db.CreateContainer(ctx, cosmos.ContainerProperties{ID: "families"}, nil)
	checkCode(t, err, cosmoserrors.AlreadyExists)

	if _, err := db.CreateContainer(ctx, cosmos.ContainerProperties{ID: "defaults"}, nil); err != nil {
		t.Fatal(err)
	}

	cs, err := db.ListContainers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, c := range cs {
		got = append(got, c.ID+" "+c.PartitionKeyPath)
	}
	sort.Strings(got)
	want := []string{"defaults " + cosmos.DefaultPartitionKeyPath, "families " + partitionKeyPath}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListContainers mismatch (-want +got):\n%s", diff)
	}

	c := db.Container("families")
	read, err := c.Read(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if read.PartitionKeyPath != partitionKeyPath {
		t.Errorf("Read: got partition key %q, want %q", read.PartitionKeyPath, partitionKeyPath)
	}
	if h.ReportsThroughput() {
		for _, test := range []struct {
			id   string
			want int32
		}{{"families", 500}, {"defaults", cosmos.DefaultThroughput}} {
			tp, err := db.Container(test.id).ReadThroughput(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if tp.Manual != test.want {
				t.Errorf("%s: got throughput %v, want %d RU/s", test.id, tp, test.want)
			}
		}
	}

	if err := db.DeleteContainer(ctx, "families"); err != nil {
		t.Fatal(err)
	}
	_, err = c.Read(ctx)
	checkCode(t, err, cosmoserrors.NotFound)
	checkCode(t, db.DeleteContainer(ctx, "families"), cosmoserrors.NotFound)
}

// Customer is the document type used by the item and query tests.
type Customer struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	IsNew   bool     `json:"isNew,omitempty"`
	Address Address  `json:"address"`
	Kids    []string `json:"kids,omitempty"`
}

// Address is part of a Customer.
type Address struct {
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
}

func testItems(t *testing.T, c *cosmos.Container) {
	ctx := context.Background()
	pk := cosmos.PartitionKeyString("11229")

	asMap := map[string]any{
		"id":      "MAP",
		"name":    "New Customer 1",
		"address": map[string]any{"city": "Brooklyn", "postalCode": "11229"},
	}
	asJSON := `{"id": "JSON", "name": "New Customer 2", "address": {"city": "Brooklyn", "postalCode": "11229"}}`
	asStruct := Customer{ID: "STRUCT", Name: "New Customer 3", Address: Address{City: "Brooklyn", PostalCode: "11229"}}

	for _, doc := range []any{asMap, asJSON, asStruct} {
		stored, err := c.CreateItem(ctx, pk, doc)
		if err != nil {
			t.Fatalf("CreateItem(%T): %v", doc, err)
		}
		if len(stored) == 0 {
			t.Errorf("CreateItem(%T) returned no document", doc)
		}
	}
	_, err := c.CreateItem(ctx, pk, asStruct)
	checkCode(t, err, cosmoserrors.AlreadyExists)

	var got Customer
	if err := c.ReadItem(ctx, pk, "JSON", &got); err != nil {
		t.Fatal(err)
	}
	want := Customer{ID: "JSON", Name: "New Customer 2", Address: Address{City: "Brooklyn", PostalCode: "11229"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItem mismatch (-want +got):\n%s", diff)
	}
	checkCode(t, c.ReadItem(ctx, cosmos.PartitionKeyString("98052"), "JSON", &got), cosmoserrors.NotFound)

	want.IsNew = true
	if _, err := c.ReplaceItem(ctx, pk, "JSON", want); err != nil {
		t.Fatal(err)
	}
	got = Customer{}
	if err := c.ReadItem(ctx, pk, "JSON", &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItem after ReplaceItem mismatch (-want +got):\n%s", diff)
	}
	missing := Customer{ID: "MISSING", Address: Address{PostalCode: "11229"}}
	_, err = c.ReplaceItem(ctx, pk, "MISSING", missing)
	checkCode(t, err, cosmoserrors.NotFound)

	if err := c.DeleteItem(ctx, pk, "JSON"); err != nil {
		t.Fatal(err)
	}
	checkCode(t, c.ReadItem(ctx, pk, "JSON", &got), cosmoserrors.NotFound)
	checkCode(t, c.DeleteItem(ctx, pk, "JSON"), cosmoserrors.NotFound)
}

var queryDocs = []Customer{
	{ID: "1", Name: "New Customer 1", IsNew: true, Address: Address{"Brooklyn", "11229"}, Kids: []string{"Jesse"}},
	{ID: "2", Name: "New Customer 2", Address: Address{"Brooklyn", "11229"}},
	{ID: "3", Name: "New Customer 3", IsNew: true, Address: Address{"Brooklyn", "11229"}},
	{ID: "Andersen.1", Name: "Andersen", Address: Address{"Seattle", "98052"}, Kids: []string{"Henriette", "Lisa"}},
	{ID: "Wakefield.7", Name: "Wakefield", Address: Address{"Seattle", "98052"}, Kids: []string{"Jesse", "Lisa", "Michelle"}},
}

func testQuery(t *testing.T, c *cosmos.Container) {
	ctx := context.Background()
	for _, d := range queryDocs {
		if _, err := c.CreateItem(ctx, cosmos.PartitionKeyString(d.Address.PostalCode), d); err != nil {
			t.Fatal(err)
		}
	}

	seattle := cosmos.PartitionKeyString("98052")
	// Ordering and aggregates are scoped to a partition; some services
	// cannot evaluate them across partitions.
	brooklyn := cosmos.PartitionKeyString("11229")
	ids := func(t *testing.T, sql string, opts *cosmos.QueryOptions, ordered bool) []string {
		t.Helper()
		it := c.Query(sql, opts)
		defer it.Stop()
		var got []string
		for {
			var cust Customer
			err := it.Next(ctx, &cust)
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("%s: %v", sql, err)
			}
			got = append(got, cust.ID)
		}
		if !ordered {
			sort.Strings(got)
		}
		return got
	}

	for _, test := range []struct {
		name    string
		sql     string
		opts    *cosmos.QueryOptions
		ordered bool
		want    []string
	}{
		{"All", "SELECT * FROM c", nil, false, []string{"1", "2", "3", "Andersen.1", "Wakefield.7"}},
		{"StartsWith", "SELECT * FROM c WHERE STARTSWITH(c.name, 'New Customer')", nil, false, []string{"1", "2", "3"}},
		{"Bool", "SELECT * FROM c WHERE c.isNew = true", nil, false, []string{"1", "3"}},
		{"ArrayLength", "SELECT * FROM c WHERE ARRAY_LENGTH(c.kids) > 1", nil, false, []string{"Andersen.1", "Wakefield.7"}},
		{"Param", "SELECT * FROM c WHERE c.id = @id", &cosmos.QueryOptions{
			Parameters: []cosmos.QueryParameter{{Name: "@id", Value: "2"}},
		}, false, []string{"2"}},
		{"Partition", "SELECT * FROM c", &cosmos.QueryOptions{PartitionKey: &seattle}, false, []string{"Andersen.1", "Wakefield.7"}},
		{"OrderBy", "SELECT * FROM c ORDER BY c.name DESC", &cosmos.QueryOptions{PartitionKey: &brooklyn}, true, []string{"3", "2", "1"}},
		{"Projection", "SELECT c.id FROM c WHERE c.address.city = 'Seattle'", nil, false, []string{"Andersen.1", "Wakefield.7"}},
	} {
		t.Run(test.name, func(t *testing.T) {
			got := ids(t, test.sql, test.opts, test.ordered)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("Count", func(t *testing.T) {
		it := c.Query("SELECT VALUE COUNT(1) FROM c WHERE IS_DEFINED(c.name)", &cosmos.QueryOptions{PartitionKey: &brooklyn})
		defer it.Stop()
		var n int
		if err := it.Next(ctx, &n); err != nil {
			t.Fatal(err)
		}
		if n != 3 {
			t.Errorf("got count %d, want 3", n)
		}
		if err := it.Next(ctx, &n); err != io.EOF {
			t.Errorf("got %v after the count, want io.EOF", err)
		}
	})

	t.Run("Pages", func(t *testing.T) {
		it := c.Query("SELECT * FROM c", &cosmos.QueryOptions{MaxItemCount: 2})
		defer it.Stop()
		n := 0
		for {
			err := it.Next(ctx, nil)
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatal(err)
			}
			n++
		}
		if n != len(queryDocs) {
			t.Errorf("got %d results, want %d", n, len(queryDocs))
		}
		if it.Pages() < 3 {
			t.Errorf("got %d pages with a page size of 2, want at least 3", it.Pages())
		}
	})

	t.Run("BadQuery", func(t *testing.T) {
		it := c.Query("SELECT * FROM c WHERE", nil)
		defer it.Stop()
		checkCode(t, it.Next(ctx, nil), cosmoserrors.InvalidArgument)
	})
}

// measurement holds numbers that a float64 cannot represent exactly.
type measurement struct {
	ID      string  `json:"id"`
	Address Address `json:"address"`
	Count   int64   `json:"count"`
	Ratio   float64 `json:"ratio"`
}

func testNumbers(t *testing.T, h Harness, a *cosmos.Account) {
	ctx := context.Background()
	db := scratchDatabase(t, a)
	if _, err := db.CreateContainer(ctx, cosmos.ContainerProperties{ID: "numbers", PartitionKeyPath: partitionKeyPath}, nil); err != nil {
		t.Fatal(err)
	}
	c := db.Container("numbers")
	pk := cosmos.PartitionKeyString("11229")

	var big int64 = 1<<53 - 1
	if h.ExactIntegers() {
		big = 1<<53 + 1
	}
	want := measurement{ID: "m", Address: Address{PostalCode: "11229"}, Count: big, Ratio: 0.1}
	if _, err := c.CreateItem(ctx, pk, want); err != nil {
		t.Fatal(err)
	}
	var got measurement
	if err := c.ReadItem(ctx, pk, "m", &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ReadItem mismatch (-want +got):\n%s", diff)
	}

	it := c.Query("SELECT VALUE c.count FROM c WHERE c.count = @n", &cosmos.QueryOptions{
		PartitionKey: &pk,
		Parameters:   []cosmos.QueryParameter{{Name: "@n", Value: big}},
	})
	defer it.Stop()
	var n int64
	if err := it.Next(ctx, &n); err != nil {
		t.Fatalf("query by count: %v", err)
	}
	if n != big {
		t.Errorf("query returned count %d, want %d", n, big)
	}
	if err := it.Next(ctx, &n); err != io.EOF {
		t.Errorf("got %v after the only result, want io.EOF", err)
	}
}

func testNotFound(t *testing.T, _ Harness, a *cosmos.Account) {
	ctx := context.Background()
	missing := a.Database("drivertest-missing-" + uuid.NewString()[:8])
	_, err := missing.ListContainers(ctx)
	checkCode(t, err, cosmoserrors.NotFound)
	_, err = missing.CreateContainer(ctx, cosmos.ContainerProperties{ID: "c"}, nil)
	checkCode(t, err, cosmoserrors.NotFound)

	db := scratchDatabase(t, a)
	c := db.Container("missing")
	_, err = c.Read(ctx)
	checkCode(t, err, cosmoserrors.NotFound)
	_, err = c.CreateItem(ctx, cosmos.PartitionKeyString("x"), map[string]any{"id": "a", "partitionKey": "x"})
	checkCode(t, err, cosmoserrors.NotFound)
}

func testAs(t *testing.T, a *cosmos.Account, st AsTest) {
	if err := st.AccountCheck(a); err != nil {
		t.Error(err)
	}
	err := a.DeleteDatabase(context.Background(), "drivertest-missing-"+uuid.NewString()[:8])
	if err == nil {
		t.Fatal("deleting a missing database succeeded")
	}
	if err := st.ErrorCheck(a, err); err != nil {
		t.Error(err)
	}
}
