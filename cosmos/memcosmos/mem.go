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

// Package memcosmos provides an in-process in-memory implementation of the
// cosmos API. It is suitable for local development and testing.
//
// Queries are evaluated with package cosmossql, which follows the service's
// rules for undefined values, projections and aggregates. Stored documents
// carry the system properties _rid, _etag and _ts like documents read from
// the service.
//
// # URLs
//
// For cosmos.OpenAccount, memcosmos registers for the scheme "mem".
// To customize the URL opener, or for more details on the URL format,
// see URLOpener.
package memcosmos // import "github.com/cosmosdb-samples/gocosmos/cosmos/memcosmos"

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/cosmossql"
	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
	"github.com/cosmosdb-samples/gocosmos/internal/gcerr"
)

// DefaultPageSize is the number of query results per page when neither the
// query nor Options set one.
const DefaultPageSize = 100

// Options are optional arguments to OpenAccount.
type Options struct {
	// The filename associated with this account.
	// When an account is opened with a non-empty filename, its state is
	// loaded from the file if it exists. Otherwise, an empty account is created.
	// When the account is closed, its contents are saved to the file.
	Filename string

	// Clock returns the current time, used for LastModified and _ts.
	// Defaults to time.Now.
	Clock func() time.Time

	// PageSize is the default number of query results per page.
	PageSize int
}

// OpenAccount creates a *cosmos.Account backed by memory.
func OpenAccount(opts *Options) (*cosmos.Account, error) {
	a, err := newAccount(opts)
	if err != nil {
		return nil, err
	}
	return cosmos.NewAccount(a), nil
}

func newAccount(opts *Options) (*account, error) {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	st, err := loadState(o.Filename)
	if err != nil {
		return nil, err
	}
	return &account{opts: o, state: st}, nil
}

type account struct {
	opts Options

	mu    sync.Mutex
	state *state
}

// state is everything an account holds. It is also the file format.
type state struct {
	Seq       int64                `json:"seq"`
	Databases map[string]*database `json:"databases"`
}

type database struct {
	ID           string                `json:"id"`
	LastModified time.Time             `json:"lastModified"`
	Throughput   *driver.Throughput    `json:"throughput,omitempty"`
	Containers   map[string]*container `json:"containers"`
}

type container struct {
	ID               string                 `json:"id"`
	PartitionKeyPath string                 `json:"partitionKeyPath"`
	LastModified     time.Time              `json:"lastModified"`
	Throughput       driver.Throughput      `json:"throughput"`
	Items            map[string]*storedItem `json:"items"`
}

// A storedItem is a document as the service holds it, including system
// properties. Seq orders documents for queries without ORDER BY.
type storedItem struct {
	PartitionKey any            `json:"partitionKey"`
	Seq          int64          `json:"seq"`
	Doc          map[string]any `json:"doc"`
}

func (a *account) now() time.Time { return a.opts.Clock().UTC() }

func (a *account) database(id string) (*database, error) {
	db, ok := a.state.Databases[id]
	if !ok {
		return nil, gcerr.Newf(gcerr.NotFound, nil, "database %q does not exist", id)
	}
	return db, nil
}

func (a *account) container(dbID, id string) (*container, error) {
	db, err := a.database(dbID)
	if err != nil {
		return nil, err
	}
	c, ok := db.Containers[id]
	if !ok {
		return nil, gcerr.Newf(gcerr.NotFound, nil, "container %q does not exist in database %q", id, dbID)
	}
	return c, nil
}

// ListDatabases implements driver.Account.ListDatabases.
func (a *account) ListDatabases(ctx context.Context) ([]*driver.DatabaseProperties, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var props []*driver.DatabaseProperties
	for _, db := range a.state.Databases {
		props = append(props, db.properties())
	}
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
	return props, nil
}

func (db *database) properties() *driver.DatabaseProperties {
	return &driver.DatabaseProperties{ID: db.ID, LastModified: db.LastModified}
}

// CreateDatabase implements driver.Account.CreateDatabase.
func (a *account) CreateDatabase(ctx context.Context, props driver.DatabaseProperties, tp *driver.Throughput) (*driver.DatabaseProperties, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.state.Databases[props.ID]; ok {
		return nil, gcerr.Newf(gcerr.AlreadyExists, nil, "database %q already exists", props.ID)
	}
	db := &database{
		ID:           props.ID,
		LastModified: a.now(),
		Containers:   map[string]*container{},
	}
	if tp != nil {
		t := *tp
		db.Throughput = &t
	}
	a.state.Databases[db.ID] = db
	return db.properties(), nil
}

// DeleteDatabase implements driver.Account.DeleteDatabase.
func (a *account) DeleteDatabase(ctx context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.database(id); err != nil {
		return err
	}
	delete(a.state.Databases, id)
	return nil
}

// ListContainers implements driver.Account.ListContainers.
func (a *account) ListContainers(ctx context.Context, dbID string) ([]*driver.ContainerProperties, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	db, err := a.database(dbID)
	if err != nil {
		return nil, err
	}
	var props []*driver.ContainerProperties
	for _, c := range db.Containers {
		props = append(props, c.properties())
	}
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
	return props, nil
}

func (c *container) properties() *driver.ContainerProperties {
	return &driver.ContainerProperties{
		ID:               c.ID,
		PartitionKeyPath: c.PartitionKeyPath,
		LastModified:     c.LastModified,
	}
}

// CreateContainer implements driver.Account.CreateContainer.
func (a *account) CreateContainer(ctx context.Context, dbID string, props driver.ContainerProperties, tp *driver.Throughput) (*driver.ContainerProperties, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	db, err := a.database(dbID)
	if err != nil {
		return nil, err
	}
	if _, ok := db.Containers[props.ID]; ok {
		return nil, gcerr.Newf(gcerr.AlreadyExists, nil, "container %q already exists in database %q", props.ID, dbID)
	}
	c := &container{
		ID:               props.ID,
		PartitionKeyPath: props.PartitionKeyPath,
		LastModified:     a.now(),
		Throughput:       *tp,
		Items:            map[string]*storedItem{},
	}
	db.Containers[c.ID] = c
	return c.properties(), nil
}

// ReadContainer implements driver.Account.ReadContainer.
func (a *account) ReadContainer(ctx context.Context, dbID, id string) (*driver.ContainerProperties, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, err := a.container(dbID, id)
	if err != nil {
		return nil, err
	}
	return c.properties(), nil
}

// DeleteContainer implements driver.Account.DeleteContainer.
func (a *account) DeleteContainer(ctx context.Context, dbID, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.container(dbID, id); err != nil {
		return err
	}
	delete(a.state.Databases[dbID].Containers, id)
	return nil
}

// ReadThroughput implements driver.Account.ReadThroughput.
func (a *account) ReadThroughput(ctx context.Context, dbID, id string) (*driver.Throughput, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, err := a.container(dbID, id)
	if err != nil {
		return nil, err
	}
	tp := c.Throughput
	return &tp, nil
}

// itemKey identifies a document within a container.
func itemKey(pk any, id string) string {
	b, _ := json.Marshal([]any{pk, id})
	return string(b)
}

func partitionKeyValue(pk driver.PartitionKey) (any, error) {
	v, err := cosmossql.NormalizeValue(pk.Value)
	if err != nil {
		return nil, gcerr.Newf(gcerr.InvalidArgument, err, "partition key")
	}
	v = cosmossql.NumberValue(v)
	switch v.(type) {
	case nil, string, float64, bool:
		return v, nil
	}
	return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "partition key must be a string, number, bool or null, not %T", pk.Value)
}

// checkPartitionKey verifies that the document's value at the container's
// partition key path matches pk.
func (c *container) checkPartitionKey(doc map[string]any, pk any) error {
	got, ok := driver.PartitionKeyValue(doc, c.PartitionKeyPath)
	if !ok {
		got = nil
	}
	if cosmossql.Equal(got, pk) != true {
		return gcerr.Newf(gcerr.InvalidArgument, nil,
			"partition key %v extracted from the document does not match the one specified (%v)", got, pk)
	}
	return nil
}

func (a *account) stamp(doc map[string]any) {
	a.state.Seq++
	doc["_rid"] = fmt.Sprintf("%012x", a.state.Seq)
	doc["_etag"] = strconv.Quote(uuid.NewString())
	doc["_ts"] = float64(a.now().Unix())
}

// CreateItem implements driver.Account.CreateItem.
func (a *account) CreateItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, item []byte) ([]byte, error) {
	pkv, err := partitionKeyValue(pk)
	if err != nil {
		return nil, err
	}
	doc, err := driver.DecodeObject(item)
	if err != nil {
		return nil, err
	}
	id, err := driver.ItemID(doc)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	c, err := a.container(ref.Database, ref.Container)
	if err != nil {
		return nil, err
	}
	if err := c.checkPartitionKey(doc, pkv); err != nil {
		return nil, err
	}
	key := itemKey(pkv, id)
	if _, ok := c.Items[key]; ok {
		return nil, gcerr.Newf(gcerr.AlreadyExists, nil, "entity with id %q already exists in partition %v", id, pk)
	}
	a.stamp(doc)
	c.Items[key] = &storedItem{PartitionKey: pkv, Seq: a.state.Seq, Doc: doc}
	return encode(doc)
}

// ReadItem implements driver.Account.ReadItem.
func (a *account) ReadItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string) ([]byte, error) {
	pkv, err := partitionKeyValue(pk)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	si, err := a.item(ref, pkv, id)
	if err != nil {
		return nil, err
	}
	return encode(si.Doc)
}

func (a *account) item(ref driver.ItemRef, pk any, id string) (*storedItem, error) {
	c, err := a.container(ref.Database, ref.Container)
	if err != nil {
		return nil, err
	}
	si, ok := c.Items[itemKey(pk, id)]
	if !ok {
		return nil, gcerr.Newf(gcerr.NotFound, nil, "entity with id %q does not exist in partition %v", id, pk)
	}
	return si, nil
}

// ReplaceItem implements driver.Account.ReplaceItem.
func (a *account) ReplaceItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string, item []byte) ([]byte, error) {
	pkv, err := partitionKeyValue(pk)
	if err != nil {
		return nil, err
	}
	doc, err := driver.DecodeObject(item)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	si, err := a.item(ref, pkv, id)
	if err != nil {
		return nil, err
	}
	c, _ := a.container(ref.Database, ref.Container)
	if err := c.checkPartitionKey(doc, pkv); err != nil {
		return nil, err
	}
	seq := si.Seq
	a.stamp(doc)
	si.Doc = doc
	si.Seq = seq
	return encode(doc)
}

// DeleteItem implements driver.Account.DeleteItem.
func (a *account) DeleteItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string) error {
	pkv, err := partitionKeyValue(pk)
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.item(ref, pkv, id); err != nil {
		return err
	}
	delete(a.state.Databases[ref.Database].Containers[ref.Container].Items, itemKey(pkv, id))
	return nil
}

func encode(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, gcerr.Newf(gcerr.Internal, err, "encoding document")
	}
	return b, nil
}

// As implements driver.Account.As.
func (a *account) As(i any) bool { return false }

// ErrorAs implements driver.Account.ErrorAs.
func (a *account) ErrorAs(err error, i any) bool { return false }

// ErrorCode implements driver.Account.ErrorCode.
func (a *account) ErrorCode(err error) cosmoserrors.ErrorCode {
	var serr *cosmossql.Error
	if errors.As(err, &serr) {
		return cosmoserrors.InvalidArgument
	}
	return cosmoserrors.Code(err)
}

// Close implements driver.Account.Close.
// If the account was created with a Filename option, Close writes the
// account's state to the file.
func (a *account) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return saveState(a.opts.Filename, a.state)
}

// Read the state from filename if it is not empty and the file exists.
// Otherwise return an empty state.
func loadState(filename string) (*state, error) {
	st := &state{Databases: map[string]*database{}}
	if filename == "" {
		return st, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// If the file doesn't exist, start empty without error.
		return st, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(st); err != nil {
		return nil, fmt.Errorf("failed to decode from %q: %v", filename, err)
	}
	if st.Databases == nil {
		st.Databases = map[string]*database{}
	}
	for _, db := range st.Databases {
		if db.Containers == nil {
			db.Containers = map[string]*container{}
		}
		for _, c := range db.Containers {
			if c.Items == nil {
				c.Items = map[string]*storedItem{}
			}
		}
	}
	return st, nil
}

// saveState saves st to filename if filename is not empty.
func saveState(filename string, st *state) error {
	if filename == "" {
		return nil
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode to %q: %v", filename, err)
	}
	return os.WriteFile(filename, data, 0o644)
}

// RunQuery implements driver.Account.RunQuery. The whole result is computed
// up front and handed out in pages.
func (a *account) RunQuery(ctx context.Context, ref driver.ItemRef, q *driver.Query) (driver.QueryIterator, error) {
	parsed, err := cosmossql.Parse(q.SQL)
	if err != nil {
		return nil, gcerr.New(gcerr.InvalidArgument, err, 1, "")
	}
	params := map[string]any{}
	for _, p := range q.Parameters {
		params[p.Name] = p.Value
	}
	var pk any
	if q.PartitionKey != nil {
		if pk, err = partitionKeyValue(*q.PartitionKey); err != nil {
			return nil, err
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	c, err := a.container(ref.Database, ref.Container)
	if err != nil {
		return nil, err
	}
	items := make([]*storedItem, 0, len(c.Items))
	for _, si := range c.Items {
		if q.PartitionKey == nil || cosmossql.Equal(si.PartitionKey, pk) == true {
			items = append(items, si)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Seq < items[j].Seq })
	docs := make([]map[string]any, len(items))
	for i, si := range items {
		docs[i] = si.Doc
	}
	results, err := parsed.Execute(docs, params)
	if err != nil {
		return nil, gcerr.New(gcerr.InvalidArgument, err, 1, "")
	}
	encoded := make([][]byte, len(results))
	for i, r := range results {
		if encoded[i], err = encode(r); err != nil {
			return nil, err
		}
	}
	pageSize := a.opts.PageSize
	if q.MaxItemCount > 0 {
		pageSize = int(q.MaxItemCount)
	}
	return &queryIterator{results: encoded, pageSize: pageSize}, nil
}

type queryIterator struct {
	results  [][]byte
	pageSize int
}

func (it *queryIterator) NextPage(ctx context.Context) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(it.results) == 0 {
		return nil, io.EOF
	}
	n := min(it.pageSize, len(it.results))
	page := it.results[:n]
	it.results = it.results[n:]
	return page, nil
}

func (it *queryIterator) Stop() { it.results = nil }
