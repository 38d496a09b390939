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

// Package cosmos provides a portable way of interacting with a document
// database account organized as databases, containers and JSON documents,
// such as Azure Cosmos DB.
//
// An Account is opened with a driver constructor (memcosmos.OpenAccount,
// azurecosmos.OpenAccount, mongocosmos.OpenAccount) or with OpenAccount and
// a URL. Database and Container values are lightweight handles; creating
// them performs no I/O.
//
// Documents are JSON objects with a string "id" property. Any value that
// encodes to such an object can be written: a map[string]any, a struct, or
// JSON text as a string, []byte or json.RawMessage.
//
// # OpenTelemetry Integration
//
// Every method that talks to the service creates a span named after the
// package and method, and records latency and call-count metrics. The
// status attribute of a failed call is its cosmoserrors code.
package cosmos // import "github.com/cosmosdb-samples/gocosmos/cosmos"

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/internal/gcerr"
	"github.com/cosmosdb-samples/gocosmos/internal/otel"
)

const pkgName = "github.com/cosmosdb-samples/gocosmos/cosmos"

const (
	// DefaultThroughput is the manual throughput, in RU/s, given to new
	// containers when none is specified.
	DefaultThroughput = 400

	// MinThroughput is the smallest manual throughput the service accepts.
	MinThroughput = 400

	// MinAutoscaleMaxThroughput is the smallest autoscale maximum the service
	// accepts.
	MinAutoscaleMaxThroughput = 1000

	// DefaultPartitionKeyPath is the partition key path of new containers
	// when none is specified.
	DefaultPartitionKeyPath = "/partitionKey"
)

// DatabaseProperties describe a database.
type DatabaseProperties = driver.DatabaseProperties

// ContainerProperties describe a container.
type ContainerProperties = driver.ContainerProperties

// Throughput is provisioned throughput in request units per second.
type Throughput = driver.Throughput

// PartitionKey is the value of a document's partition key.
type PartitionKey = driver.PartitionKey

// QueryParameter binds a value to an @name reference in a query.
type QueryParameter = driver.QueryParameter

// PartitionKeyString returns a string partition key.
func PartitionKeyString(s string) PartitionKey { return PartitionKey{Value: s} }

// PartitionKeyNumber returns a numeric partition key.
func PartitionKeyNumber(f float64) PartitionKey { return PartitionKey{Value: f} }

// PartitionKeyBool returns a boolean partition key.
func PartitionKeyBool(b bool) PartitionKey { return PartitionKey{Value: b} }

// NullPartitionKey is the partition of documents whose partition key
// property is null or absent.
var NullPartitionKey = PartitionKey{}

// An Account is a handle to a document database account.
type Account struct {
	driver driver.Account
	tracer *otel.Tracer

	// mu protects the closed variable.
	// Each call holds a read lock until it returns, so Close waits for
	// calls in progress.
	mu     sync.RWMutex
	closed bool
}

// NewAccount is intended for use by drivers only. Do not use in application code.
var NewAccount = newAccount

// newAccount makes an Account from a driver.Account.
func newAccount(d driver.Account) *Account {
	return &Account{
		driver: d,
		tracer: otel.NewTracer(pkgName, otel.ProviderName(d)),
	}
}

var errClosed = gcerr.Newf(gcerr.FailedPrecondition, nil, "cosmos: Account has been closed")

func wrapError(d driver.Account, err error) error {
	if err == nil {
		return nil
	}
	if gcerr.DoNotWrap(err) {
		return err
	}
	if _, ok := err.(*gcerr.Error); ok {
		return err
	}
	return gcerr.New(d.ErrorCode(err), err, 2, "cosmos")
}

// validateID checks a database, container or item id against the
// service's naming rules.
func validateID(kind, id string) error {
	if id == "" {
		return gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: %s id is empty", kind)
	}
	if strings.ContainsAny(id, `/\?#`) {
		return gcerr.Newf(gcerr.InvalidArgument, nil, `cosmos: %s id %q contains one of the characters '/', '\', '?', '#'`, kind, id)
	}
	if strings.HasSuffix(id, " ") {
		return gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: %s id %q ends with a space", kind, id)
	}
	return nil
}

// CreateDatabaseOptions are options for Account.CreateDatabase.
type CreateDatabaseOptions struct {
	// Throughput provisions manual throughput shared by the database's
	// containers. Zero provisions no shared throughput.
	Throughput int32
	// AutoscaleMaxThroughput provisions shared autoscale throughput instead.
	AutoscaleMaxThroughput int32
}

// CreateContainerOptions are options for Database.CreateContainer.
type CreateContainerOptions struct {
	// Throughput is the container's manual throughput. Zero means
	// DefaultThroughput.
	Throughput int32
	// AutoscaleMaxThroughput selects autoscale throughput with this maximum
	// instead of manual throughput.
	AutoscaleMaxThroughput int32
}

func throughput(manual, autoscaleMax, def int32) (*driver.Throughput, error) {
	switch {
	case manual != 0 && autoscaleMax != 0:
		return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: manual and autoscale throughput are mutually exclusive")
	case autoscaleMax != 0:
		if autoscaleMax < MinAutoscaleMaxThroughput {
			return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: autoscale max throughput %d is below the minimum of %d", autoscaleMax, MinAutoscaleMaxThroughput)
		}
		return &driver.Throughput{AutoscaleMax: autoscaleMax}, nil
	case manual != 0:
		if manual < MinThroughput {
			return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: throughput %d is below the minimum of %d", manual, MinThroughput)
		}
		return &driver.Throughput{Manual: manual}, nil
	case def != 0:
		return &driver.Throughput{Manual: def}, nil
	}
	return nil, nil
}

// ListDatabases returns the properties of every database in the account,
// sorted by ID.
func (a *Account) ListDatabases(ctx context.Context) (_ []*DatabaseProperties, err error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "ListDatabases")
	defer func() { a.tracer.End(ctx, span, err) }()

	dbs, err := a.driver.ListDatabases(ctx)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	return dbs, nil
}

// CreateDatabase creates a database. opts may be nil.
// It fails with code AlreadyExists if the database exists.
func (a *Account) CreateDatabase(ctx context.Context, id string, opts *CreateDatabaseOptions) (_ *Database, err error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "CreateDatabase")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := validateID("database", id); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &CreateDatabaseOptions{}
	}
	tp, err := throughput(opts.Throughput, opts.AutoscaleMaxThroughput, 0)
	if err != nil {
		return nil, err
	}
	props, err := a.driver.CreateDatabase(ctx, DatabaseProperties{ID: id}, tp)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	db := a.Database(id)
	db.props = props
	return db, nil
}

// DeleteDatabase deletes a database and all its containers.
// It fails with code NotFound if the database does not exist.
func (a *Account) DeleteDatabase(ctx context.Context, id string) (err error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errClosed
	}
	ctx, span := a.tracer.Start(ctx, "DeleteDatabase")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := validateID("database", id); err != nil {
		return err
	}
	return wrapError(a.driver, a.driver.DeleteDatabase(ctx, id))
}

// Database returns a handle to the database with the given id. It does not
// check that the database exists.
func (a *Account) Database(id string) *Database {
	return &Database{acct: a, id: id}
}

// As converts i to driver-specific types.
// See the driver package documentation for the specific types supported for
// that driver.
func (a *Account) As(i any) bool {
	if i == nil {
		return false
	}
	return a.driver.As(i)
}

// ErrorAs converts err to driver-specific types.
// ErrorAs panics if i is nil or not a pointer.
// ErrorAs returns false if err == nil.
// See the driver package documentation for the specific types supported for
// that driver.
func (a *Account) ErrorAs(err error, i any) bool {
	return gcerr.ErrorAs(err, i, a.driver.ErrorAs)
}

// Close releases any resources used by the account.
func (a *Account) Close() error {
	a.mu.Lock()
	prev := a.closed
	a.closed = true
	a.mu.Unlock()
	if prev {
		return errClosed
	}
	return wrapError(a.driver, a.driver.Close())
}

// A Database is a handle to one database of an account.
type Database struct {
	acct *Account
	id   string
	// props is set when the handle was returned by CreateDatabase.
	props *DatabaseProperties
}

// ID returns the database's id.
func (d *Database) ID() string { return d.id }

// Properties returns the properties reported when the database was created,
// or nil if the handle did not come from Account.CreateDatabase.
func (d *Database) Properties() *DatabaseProperties { return d.props }

// Delete deletes the database.
func (d *Database) Delete(ctx context.Context) error {
	return d.acct.DeleteDatabase(ctx, d.id)
}

// ListContainers returns the properties of every container in the
// database, sorted by ID.
func (d *Database) ListContainers(ctx context.Context) (_ []*ContainerProperties, err error) {
	a := d.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "ListContainers")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := validateID("database", d.id); err != nil {
		return nil, err
	}
	cs, err := a.driver.ListContainers(ctx, d.id)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	return cs, nil
}

// CreateContainer creates a container. An empty props.PartitionKeyPath
// means DefaultPartitionKeyPath. opts may be nil, which provisions
// DefaultThroughput.
func (d *Database) CreateContainer(ctx context.Context, props ContainerProperties, opts *CreateContainerOptions) (_ *ContainerProperties, err error) {
	a := d.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "CreateContainer")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := validateID("database", d.id); err != nil {
		return nil, err
	}
	if err := validateID("container", props.ID); err != nil {
		return nil, err
	}
	if props.PartitionKeyPath == "" {
		props.PartitionKeyPath = DefaultPartitionKeyPath
	}
	if !strings.HasPrefix(props.PartitionKeyPath, "/") || len(driver.SplitPath(props.PartitionKeyPath)) == 0 {
		return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: partition key path %q must look like /property", props.PartitionKeyPath)
	}
	if opts == nil {
		opts = &CreateContainerOptions{}
	}
	tp, err := throughput(opts.Throughput, opts.AutoscaleMaxThroughput, DefaultThroughput)
	if err != nil {
		return nil, err
	}
	created, err := a.driver.CreateContainer(ctx, d.id, props, tp)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	return created, nil
}

// DeleteContainer deletes a container and its documents.
func (d *Database) DeleteContainer(ctx context.Context, id string) (err error) {
	a := d.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errClosed
	}
	ctx, span := a.tracer.Start(ctx, "DeleteContainer")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := validateID("database", d.id); err != nil {
		return err
	}
	if err := validateID("container", id); err != nil {
		return err
	}
	return wrapError(a.driver, a.driver.DeleteContainer(ctx, d.id, id))
}

// Container returns a handle to the container with the given id. It does
// not check that the container exists.
func (d *Database) Container(id string) *Container {
	return &Container{db: d, id: id}
}

// A Container is a handle to one container of a database.
type Container struct {
	db *Database
	id string
}

// ID returns the container's id.
func (c *Container) ID() string { return c.id }

// Database returns the database the container belongs to.
func (c *Container) Database() *Database { return c.db }

func (c *Container) ref() driver.ItemRef {
	return driver.ItemRef{Database: c.db.id, Container: c.id}
}

func (c *Container) validate() error {
	if err := validateID("database", c.db.id); err != nil {
		return err
	}
	return validateID("container", c.id)
}

// Read returns the container's properties.
func (c *Container) Read(ctx context.Context) (_ *ContainerProperties, err error) {
	a := c.db.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "ReadContainer")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := c.validate(); err != nil {
		return nil, err
	}
	props, err := a.driver.ReadContainer(ctx, c.db.id, c.id)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	return props, nil
}

// ReadThroughput returns the container's provisioned throughput.
func (c *Container) ReadThroughput(ctx context.Context) (_ *Throughput, err error) {
	a := c.db.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "ReadThroughput")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := c.validate(); err != nil {
		return nil, err
	}
	tp, err := a.driver.ReadThroughput(ctx, c.db.id, c.id)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	return tp, nil
}

// CreateItem inserts doc into the partition pk and returns the document as
// stored, including system properties. It fails with code AlreadyExists if
// a document with the same id exists in the partition.
func (c *Container) CreateItem(ctx context.Context, pk PartitionKey, doc any) (_ json.RawMessage, err error) {
	a := c.db.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "CreateItem")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := c.validate(); err != nil {
		return nil, err
	}
	body, _, err := encodeItem(doc)
	if err != nil {
		return nil, err
	}
	stored, err := a.driver.CreateItem(ctx, c.ref(), pk, body)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	return stored, nil
}

// encodeItem returns the JSON encoding of doc and its id.
func encodeItem(doc any) ([]byte, string, error) {
	m, body, err := driver.ToJSONObject(doc)
	if err != nil {
		return nil, "", err
	}
	id, err := driver.ItemID(m)
	if err != nil {
		return nil, "", err
	}
	if err := validateID("item", id); err != nil {
		return nil, "", err
	}
	return body, id, nil
}

// ReadItem reads the document with the given id from partition pk and
// decodes it into dst, which should be a pointer as for json.Unmarshal.
func (c *Container) ReadItem(ctx context.Context, pk PartitionKey, id string, dst any) (err error) {
	a := c.db.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errClosed
	}
	ctx, span := a.tracer.Start(ctx, "ReadItem")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := c.validate(); err != nil {
		return err
	}
	if err := validateID("item", id); err != nil {
		return err
	}
	data, err := a.driver.ReadItem(ctx, c.ref(), pk, id)
	if err != nil {
		return wrapError(a.driver, err)
	}
	return decode(data, dst)
}

func decode(data []byte, dst any) error {
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return gcerr.Newf(gcerr.InvalidArgument, err, "cosmos: decoding document into %T", dst)
	}
	return nil
}

// ReplaceItem replaces the document with the given id in partition pk and
// returns the document as stored. doc's id must equal id. It fails with code
// NotFound if there is no such document.
func (c *Container) ReplaceItem(ctx context.Context, pk PartitionKey, id string, doc any) (_ json.RawMessage, err error) {
	a := c.db.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil, errClosed
	}
	ctx, span := a.tracer.Start(ctx, "ReplaceItem")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := c.validate(); err != nil {
		return nil, err
	}
	body, docID, err := encodeItem(doc)
	if err != nil {
		return nil, err
	}
	if docID != id {
		return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: document id %q does not match %q", docID, id)
	}
	stored, err := a.driver.ReplaceItem(ctx, c.ref(), pk, id, body)
	if err != nil {
		return nil, wrapError(a.driver, err)
	}
	return stored, nil
}

// DeleteItem deletes the document with the given id from partition pk.
func (c *Container) DeleteItem(ctx context.Context, pk PartitionKey, id string) (err error) {
	a := c.db.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errClosed
	}
	ctx, span := a.tracer.Start(ctx, "DeleteItem")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := c.validate(); err != nil {
		return err
	}
	if err := validateID("item", id); err != nil {
		return err
	}
	return wrapError(a.driver, a.driver.DeleteItem(ctx, c.ref(), pk, id))
}
