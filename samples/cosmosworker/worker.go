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

// Package cosmosworker holds the demonstration procedures: database and
// container lifecycle, document creation in three representations, queries,
// and bulk replace and delete over query results. Each procedure prints its
// progress to the worker's writer.
package cosmosworker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

// Names used when a Worker does not set its own.
const (
	DefaultDatabaseID  = "mydb"
	DefaultContainerID = "mystore"
)

// DemoPartitionKeyPath is the partition key path of the demo container.
const DemoPartitionKeyPath = "/address/postalCode"

// demoPostalCode is the partition every demo customer lives in.
const demoPostalCode = "11229"

const newCustomersQuery = "SELECT * FROM c WHERE STARTSWITH(c.name, 'New Customer') = true"

// A Worker runs the demonstration procedures against an account.
type Worker struct {
	Account *cosmos.Account
	Out     io.Writer

	// DatabaseID and ContainerID name the demo container the document
	// procedures use.
	DatabaseID  string
	ContainerID string

	// NewID generates document ids. Defaults to uuid.NewString.
	NewID func() string
}

func (w *Worker) databaseID() string {
	if w.DatabaseID == "" {
		return DefaultDatabaseID
	}
	return w.DatabaseID
}

func (w *Worker) containerID() string {
	if w.ContainerID == "" {
		return DefaultContainerID
	}
	return w.ContainerID
}

func (w *Worker) newID() string {
	if w.NewID == nil {
		return uuid.NewString()
	}
	return w.NewID()
}

func (w *Worker) container() *cosmos.Container {
	return w.Account.Database(w.databaseID()).Container(w.containerID())
}

func (w *Worker) println(args ...any) {
	fmt.Fprintln(w.Out, args...)
}

func (w *Worker) printf(format string, args ...any) {
	fmt.Fprintf(w.Out, format, args...)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(time.RFC3339)
}

// ViewDatabases lists the account's databases.
func (w *Worker) ViewDatabases(ctx context.Context) error {
	w.println()
	w.println(">>> View Databases <<<")
	dbs, err := w.Account.ListDatabases(ctx)
	if err != nil {
		return fmt.Errorf("list databases: %w", err)
	}
	for _, db := range dbs {
		w.printf(" Database Id: %s; Modified: %s\n", db.ID, formatTime(db.LastModified))
	}
	w.println()
	w.printf("Total databases: %d\n", len(dbs))
	return nil
}

// CreateDatabase creates a database without shared throughput.
func (w *Worker) CreateDatabase(ctx context.Context, id string) error {
	w.println()
	w.println(">>> Create Database <<<")
	db, err := w.Account.CreateDatabase(ctx, id, nil)
	if err != nil {
		return fmt.Errorf("create database %q: %w", id, err)
	}
	props := db.Properties()
	w.printf(" Database Id: %s; Modified: %s\n", props.ID, formatTime(props.LastModified))
	return nil
}

// DeleteDatabase deletes a database and everything in it.
func (w *Worker) DeleteDatabase(ctx context.Context, id string) error {
	w.println()
	w.println(">>> Delete Database <<<")
	if err := w.Account.DeleteDatabase(ctx, id); err != nil {
		return fmt.Errorf("delete database %q: %w", id, err)
	}
	w.printf("Deleted database %s\n", id)
	return nil
}

// ViewContainers lists the containers of a database with their properties
// and throughput.
func (w *Worker) ViewContainers(ctx context.Context, dbID string) error {
	w.println()
	w.printf(">>> View Containers in %s <<<\n", dbID)
	db := w.Account.Database(dbID)
	containers, err := db.ListContainers(ctx)
	if err != nil {
		return fmt.Errorf("list containers in %q: %w", dbID, err)
	}
	for i, props := range containers {
		w.println()
		w.printf(" Container #%d\n", i+1)
		if err := w.viewContainer(ctx, db, props); err != nil {
			return err
		}
	}
	w.println()
	w.printf("Total containers in %s database: %d\n", dbID, len(containers))
	return nil
}

func (w *Worker) viewContainer(ctx context.Context, db *cosmos.Database, props *cosmos.ContainerProperties) error {
	w.printf("     Container ID: %s\n", props.ID)
	w.printf("    Last Modified: %s\n", formatTime(props.LastModified))
	w.printf("    Partition Key: %s\n", props.PartitionKeyPath)
	tp, err := db.Container(props.ID).ReadThroughput(ctx)
	switch cosmoserrors.Code(err) {
	case cosmoserrors.OK:
	case cosmoserrors.NotFound, cosmoserrors.Unimplemented:
		// Shared or unknown throughput.
		tp = &cosmos.Throughput{}
	default:
		return fmt.Errorf("read throughput of %q: %w", props.ID, err)
	}
	w.printf("       Throughput: %s\n", tp)
	return nil
}

// CreateContainer creates a container with manual throughput. Zero
// throughput and an empty partition key path select the defaults.
func (w *Worker) CreateContainer(ctx context.Context, id, dbID string, throughput int32, partitionKeyPath string) error {
	if throughput == 0 {
		throughput = cosmos.DefaultThroughput
	}
	if partitionKeyPath == "" {
		partitionKeyPath = cosmos.DefaultPartitionKeyPath
	}
	w.println()
	w.printf(">>> Create Container %s in %s <<<\n", id, dbID)
	w.println()
	w.printf(" Throughput: %d RU/sec\n", throughput)
	w.printf(" Partition key: %s\n", partitionKeyPath)
	w.println()

	db := w.Account.Database(dbID)
	props, err := db.CreateContainer(ctx, cosmos.ContainerProperties{ID: id, PartitionKeyPath: partitionKeyPath},
		&cosmos.CreateContainerOptions{Throughput: throughput})
	if err != nil {
		return fmt.Errorf("create container %q: %w", id, err)
	}
	w.println("Created new container")
	return w.viewContainer(ctx, db, props)
}

// DeleteContainer deletes a container and its documents.
func (w *Worker) DeleteContainer(ctx context.Context, id, dbID string) error {
	w.println()
	w.printf(">>> Delete Container %s in %s <<<\n", id, dbID)
	if err := w.Account.Database(dbID).DeleteContainer(ctx, id); err != nil {
		return fmt.Errorf("delete container %q: %w", id, err)
	}
	w.printf("Deleted container %s from database %s\n", id, dbID)
	return nil
}

// CreateDocuments inserts three new customers: one built as a map, one
// parsed from JSON text and one typed Customer.
func (w *Worker) CreateDocuments(ctx context.Context) error {
	w.println(">>> Create Documents <<<")
	w.println()
	c := w.container()
	pk := cosmos.PartitionKeyString(demoPostalCode)

	doc1 := map[string]any{
		"id":   w.newID(),
		"name": "New Customer 1",
		"address": map[string]any{
			"addressType":  "Microsoft HQ",
			"addressLine1": "One Microsoft Way",
			"location": map[string]any{
				"city":              "Redmond",
				"stateProvinceName": "Washington",
			},
			"postalCode":        demoPostalCode,
			"countryRegionName": "United States",
		},
	}
	if _, err := c.CreateItem(ctx, pk, doc1); err != nil {
		return fmt.Errorf("create document from map: %w", err)
	}
	w.printf("Created new document %s from dynamic object\n", doc1["id"])

	id2 := w.newID()
	doc2 := fmt.Sprintf(`{
		"id": %q,
		"name": "New Customer 2",
		"address": {
			"addressType": "Main Office",
			"addressLine1": "123 Main Street",
			"location": {
				"city": "Beverly Hills",
				"stateProvinceName": "Los Angeles"
			},
			"postalCode": %q,
			"countryRegionName": "United States"
		}
	}`, id2, demoPostalCode)
	stored, err := c.CreateItem(ctx, pk, doc2)
	if err != nil {
		return fmt.Errorf("create document from JSON: %w", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(stored, &created); err != nil {
		return err
	}
	w.printf("Created new document %s from JSON string\n", created.ID)

	doc3 := &Customer{
		ID:   w.newID(),
		Name: "New Customer 3",
		Address: &Address{
			AddressType:  "Main Office",
			AddressLine1: "123 Main Street",
			Location: &Location{
				City:              "Brooklyn",
				StateProvinceName: "New York",
			},
			PostalCode:        demoPostalCode,
			CountryRegionName: "United States",
		},
	}
	if _, err := c.CreateItem(ctx, pk, doc3); err != nil {
		return fmt.Errorf("create document from Customer: %w", err)
	}
	w.printf("Created new document %s from typed object\n", doc3.ID)
	return nil
}

func city(c *Customer) string {
	if c.Address == nil || c.Address.Location == nil {
		return ""
	}
	return c.Address.Location.City
}

// QueryDocuments runs the new customer query twice, decoding the results
// dynamically and then as Customers.
func (w *Worker) QueryDocuments(ctx context.Context) error {
	w.println(">>> Query Documents (SQL) <<<")
	w.println()
	c := w.container()

	w.println("Querying for new customer documents (SQL)")
	it := c.Query(newCustomersQuery, nil)
	defer it.Stop()
	count := 0
	for {
		var doc map[string]any
		err := it.Next(ctx, &doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("query documents: %w", err)
		}
		count++
		w.printf(" (%d) Id: %v; Name: %v;\n", count, doc["id"], doc["name"])

		// A dynamic document can be converted into a defined type.
		data, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		var cust Customer
		if err := json.Unmarshal(data, &cust); err != nil {
			return err
		}
		w.printf("     City: %s\n", city(&cust))
	}
	w.printf("Retrieved %d new documents as dynamic\n", count)
	w.println()

	it2 := c.Query(newCustomersQuery, nil)
	defer it2.Stop()
	count = 0
	for {
		var cust Customer
		err := it2.Next(ctx, &cust)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("query documents: %w", err)
		}
		count++
		w.printf(" (%d) Id: %s; Name: %s;\n", count, cust.ID, cust.Name)
		w.printf("     City: %s\n", city(&cust))
	}
	w.printf("Retrieved %d new documents as Customer\n", count)
	w.println()
	return nil
}

// countNew counts the demo customers flagged isNew.
func (w *Worker) countNew(ctx context.Context) (int, error) {
	pk := cosmos.PartitionKeyString(demoPostalCode)
	it := w.container().Query("SELECT VALUE COUNT(c) FROM c WHERE c.isNew = true", &cosmos.QueryOptions{PartitionKey: &pk})
	defer it.Stop()
	var n int
	if err := it.Next(ctx, &n); err != nil && err != io.EOF {
		return 0, fmt.Errorf("count new documents: %w", err)
	}
	return n, nil
}

// ReplaceDocuments sets the isNew flag on every new customer.
func (w *Worker) ReplaceDocuments(ctx context.Context) error {
	w.println(">>> Replace Documents <<<")
	w.println()
	c := w.container()

	w.println("Querying for documents with 'isNew' flag")
	n, err := w.countNew(ctx)
	if err != nil {
		return err
	}
	w.printf("Documents with 'isNew' flag: %d\n", n)
	w.println()

	w.println("Querying for documents to be updated")
	docs, err := w.queryAll(ctx, newCustomersQuery)
	if err != nil {
		return err
	}
	w.printf("Found %d documents to be updated\n", len(docs))
	for _, raw := range docs {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		var cust Customer
		if err := json.Unmarshal(raw, &cust); err != nil {
			return err
		}
		doc["isNew"] = true
		stored, err := c.ReplaceItem(ctx, customerPartitionKey(&cust), cust.ID, doc)
		if err != nil {
			return fmt.Errorf("replace document %q: %w", cust.ID, err)
		}
		var updated Customer
		if err := json.Unmarshal(stored, &updated); err != nil {
			return err
		}
		w.printf("Updated document 'isNew' flag: %t\n", updated.IsNew)
	}
	w.println()

	w.println("Querying for documents with 'isNew' flag")
	if n, err = w.countNew(ctx); err != nil {
		return err
	}
	w.printf("Documents with 'isNew' flag: %d\n", n)
	w.println()
	return nil
}

func customerPartitionKey(c *Customer) cosmos.PartitionKey {
	if c.Address == nil {
		return cosmos.NullPartitionKey
	}
	return cosmos.PartitionKeyString(c.Address.PostalCode)
}

// queryAll returns every result of a cross-partition query.
func (w *Worker) queryAll(ctx context.Context, sql string) ([]json.RawMessage, error) {
	it := w.container().Query(sql, nil)
	defer it.Stop()
	var out []json.RawMessage
	for {
		raw, err := it.NextRaw(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("query %q: %w", sql, err)
		}
		out = append(out, raw)
	}
}

// DeleteDocuments deletes every new customer.
func (w *Worker) DeleteDocuments(ctx context.Context) error {
	w.println(">>> Delete Documents <<<")
	w.println()
	c := w.container()

	w.println("Querying for documents to be deleted")
	docs, err := w.queryAll(ctx, "SELECT c.id, c.address.postalCode FROM c WHERE STARTSWITH(c.name, 'New Customer') = true")
	if err != nil {
		return err
	}
	w.printf("Found %d documents to be deleted\n", len(docs))
	for _, raw := range docs {
		var doc struct {
			ID         string `json:"id"`
			PostalCode string `json:"postalCode"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return err
		}
		if err := c.DeleteItem(ctx, cosmos.PartitionKeyString(doc.PostalCode), doc.ID); err != nil {
			return fmt.Errorf("delete document %q: %w", doc.ID, err)
		}
	}
	w.printf("Deleted %d new customer documents\n", len(docs))
	w.println()
	return nil
}

// Families are the sample households CreateFamilies inserts.
var Families = []*Family{
	{
		ID:       "AndersenFamily",
		LastName: "Andersen",
		Address:  &Address{PostalCode: "98052", Location: &Location{City: "Seattle", StateProvinceName: "Washington"}},
		Kids:     []Child{{FirstName: "Henriette", Grade: 5}, {FirstName: "Lisa", Grade: 3}},
	},
	{
		ID:       "WakefieldFamily",
		LastName: "Wakefield",
		Address:  &Address{PostalCode: "98052", Location: &Location{City: "Seattle", StateProvinceName: "Washington"}},
		Kids:     []Child{{FirstName: "Jesse", Grade: 8}, {FirstName: "Lisa", Grade: 1}, {FirstName: "Michelle", Grade: 1}},
	},
	{
		ID:       "SmithFamily",
		LastName: "Smith",
		Address:  &Address{PostalCode: demoPostalCode, Location: &Location{City: "Brooklyn", StateProvinceName: "New York"}},
		Kids:     []Child{{FirstName: "Sam", Grade: 2}},
	},
}

// CreateFamilies inserts the sample families into the demo container.
func (w *Worker) CreateFamilies(ctx context.Context) error {
	w.println(">>> Create Families <<<")
	w.println()
	c := w.container()
	for _, f := range Families {
		if _, err := c.CreateItem(ctx, cosmos.PartitionKeyString(f.Address.PostalCode), f); err != nil {
			return fmt.Errorf("create family %q: %w", f.ID, err)
		}
		w.printf("Created family %s\n", f.ID)
	}
	return nil
}

// ViewFamilies lists the families with more than one child.
func (w *Worker) ViewFamilies(ctx context.Context) error {
	w.println()
	w.println(">>> View Families <<<")
	docs, err := w.queryAll(ctx, "SELECT * FROM c WHERE ARRAY_LENGTH(c.kids) > 1")
	if err != nil {
		return err
	}
	for _, raw := range docs {
		var f Family
		if err := json.Unmarshal(raw, &f); err != nil {
			return err
		}
		w.printf("Family %s has %d children.\n", f.ID, len(f.Kids))
	}
	return nil
}

// DeleteFamilies removes the sample families.
func (w *Worker) DeleteFamilies(ctx context.Context) error {
	c := w.container()
	for _, f := range Families {
		err := c.DeleteItem(ctx, cosmos.PartitionKeyString(f.Address.PostalCode), f.ID)
		if err != nil && cosmoserrors.Code(err) != cosmoserrors.NotFound {
			return fmt.Errorf("delete family %q: %w", f.ID, err)
		}
	}
	return nil
}

// RunAll runs every procedure in order: it creates the worker's database
// and container, works through the documents, and deletes both again.
func (w *Worker) RunAll(ctx context.Context) error {
	dbID, containerID := w.databaseID(), w.containerID()
	steps := []func(context.Context) error{
		w.ViewDatabases,
		func(ctx context.Context) error { return w.CreateDatabase(ctx, dbID) },
		func(ctx context.Context) error {
			return w.CreateContainer(ctx, containerID, dbID, cosmos.DefaultThroughput, DemoPartitionKeyPath)
		},
		func(ctx context.Context) error { return w.ViewContainers(ctx, dbID) },
		w.CreateDocuments,
		w.QueryDocuments,
		w.ReplaceDocuments,
		w.CreateFamilies,
		w.ViewFamilies,
		w.DeleteFamilies,
		w.DeleteDocuments,
		func(ctx context.Context) error { return w.DeleteContainer(ctx, containerID, dbID) },
		func(ctx context.Context) error { return w.DeleteDatabase(ctx, dbID) },
		w.ViewDatabases,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ParsePartitionKey interprets s as a JSON string, number, bool or null
// partition key value. Anything else is taken as a string.
func ParsePartitionKey(s string) cosmos.PartitionKey {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		switch v := v.(type) {
		case nil:
			return cosmos.NullPartitionKey
		case string:
			return cosmos.PartitionKeyString(v)
		case float64:
			return cosmos.PartitionKeyNumber(v)
		case bool:
			return cosmos.PartitionKeyBool(v)
		}
	}
	return cosmos.PartitionKeyString(s)
}

// PrintDocument writes a document as indented JSON without the system
// properties the service adds, whose names start with an underscore.
func PrintDocument(out io.Writer, doc json.RawMessage) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return err
	}
	if m, ok := v.(map[string]any); ok {
		for k := range m {
			if strings.HasPrefix(k, "_") {
				delete(m, k)
			}
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s\n", data)
	return err
}

// PutDocument creates a document given as JSON text.
func (w *Worker) PutDocument(ctx context.Context, pk cosmos.PartitionKey, doc string) error {
	stored, err := w.container().CreateItem(ctx, pk, doc)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return PrintDocument(w.Out, stored)
}

// GetDocument reads a document and prints it.
func (w *Worker) GetDocument(ctx context.Context, pk cosmos.PartitionKey, id string) error {
	var doc json.RawMessage
	if err := w.container().ReadItem(ctx, pk, id, &doc); err != nil {
		return fmt.Errorf("read document %q: %w", id, err)
	}
	return PrintDocument(w.Out, doc)
}

// Query runs a query and prints each result.
func (w *Worker) Query(ctx context.Context, sql string, opts *cosmos.QueryOptions) error {
	it := w.container().Query(sql, opts)
	defer it.Stop()
	n := 0
	for {
		raw, err := it.NextRaw(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("query: %w", err)
		}
		if err := PrintDocument(w.Out, raw); err != nil {
			return err
		}
		n++
	}
	w.printf("Retrieved %d results; pages read: %d\n", n, it.Pages())
	return nil
}
