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

// Package driver defines interfaces to be implemented by cosmos drivers, which
// will be used by the cosmos package to interact with the underlying services.
// Application code should use package cosmos.
package driver // import "github.com/cosmosdb-samples/gocosmos/cosmos/driver"

import (
	"context"
	"fmt"
	"time"

	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

// DatabaseProperties describe a database as reported by the service.
type DatabaseProperties struct {
	ID           string
	LastModified time.Time
}

// ContainerProperties describe a container. PartitionKeyPath is a JSON
// pointer-like path such as "/address/postalCode".
type ContainerProperties struct {
	ID               string
	PartitionKeyPath string
	LastModified     time.Time
}

// Throughput is the provisioned throughput of a container or database, in
// request units per second. Exactly one of the fields is non-zero.
type Throughput struct {
	Manual       int32
	AutoscaleMax int32
}

func (t Throughput) String() string {
	switch {
	case t.AutoscaleMax > 0:
		return fmt.Sprintf("autoscale up to %d RU/s", t.AutoscaleMax)
	case t.Manual > 0:
		return fmt.Sprintf("%d RU/s", t.Manual)
	default:
		return "none"
	}
}

// PartitionKey is the value of a document's partition key. Value holds a
// string, a float64, a bool, or nil for the JSON null key.
type PartitionKey struct {
	Value any
}

func (pk PartitionKey) String() string {
	if pk.Value == nil {
		return "null"
	}
	if s, ok := pk.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(pk.Value)
}

// ItemRef names the container an item operation applies to.
type ItemRef struct {
	Database  string
	Container string
}

// QueryParameter binds a value to an @name reference in a query.
type QueryParameter struct {
	Name  string
	Value any
}

// Query is a SQL query against one container.
type Query struct {
	SQL        string
	Parameters []QueryParameter
	// PartitionKey restricts the query to a single logical partition. A nil
	// PartitionKey runs the query across all partitions.
	PartitionKey *PartitionKey
	// MaxItemCount is a hint for the page size. Zero leaves the choice to the
	// driver.
	MaxItemCount int32
}

// An Account is a connection to one service account.
//
// Implementations may assume that portable-type arguments have already been
// validated: IDs are non-empty and item bodies are JSON objects with a string
// "id" property.
type Account interface {
	// ListDatabases returns all databases in the account, sorted by ID.
	ListDatabases(ctx context.Context) ([]*DatabaseProperties, error)

	// CreateDatabase creates a database. tp may be nil, meaning the database has
	// no shared throughput.
	CreateDatabase(ctx context.Context, props DatabaseProperties, tp *Throughput) (*DatabaseProperties, error)

	// DeleteDatabase deletes a database and everything in it.
	DeleteDatabase(ctx context.Context, id string) error

	// ListContainers returns all containers of a database, sorted by ID.
	ListContainers(ctx context.Context, databaseID string) ([]*ContainerProperties, error)

	// CreateContainer creates a container with dedicated throughput. tp is
	// guaranteed to be non-nil.
	CreateContainer(ctx context.Context, databaseID string, props ContainerProperties, tp *Throughput) (*ContainerProperties, error)

	// ReadContainer returns the properties of a container.
	ReadContainer(ctx context.Context, databaseID, containerID string) (*ContainerProperties, error)

	// DeleteContainer deletes a container and its documents.
	DeleteContainer(ctx context.Context, databaseID, containerID string) error

	// ReadThroughput returns the throughput provisioned for a container.
	ReadThroughput(ctx context.Context, databaseID, containerID string) (*Throughput, error)

	// CreateItem inserts a new document and returns the stored document.
	CreateItem(ctx context.Context, ref ItemRef, pk PartitionKey, item []byte) ([]byte, error)

	// ReadItem returns the document with the given id in partition pk.
	ReadItem(ctx context.Context, ref ItemRef, pk PartitionKey, id string) ([]byte, error)

	// ReplaceItem replaces an existing document and returns the stored document.
	ReplaceItem(ctx context.Context, ref ItemRef, pk PartitionKey, id string, item []byte) ([]byte, error)

	// DeleteItem deletes a document.
	DeleteItem(ctx context.Context, ref ItemRef, pk PartitionKey, id string) error

	// RunQuery starts a query. Drivers should issue their first request here
	// rather than waiting for the first call to NextPage, so that errors in
	// the query text surface early.
	RunQuery(ctx context.Context, ref ItemRef, q *Query) (QueryIterator, error)

	// As converts i to driver-specific types.
	As(i any) bool

	// ErrorAs allows drivers to expose driver-specific types for returned
	// errors.
	ErrorAs(err error, i any) bool

	// ErrorCode should return a code that describes the error, which was returned by
	// one of the other methods in this interface.
	ErrorCode(error) cosmoserrors.ErrorCode

	// Close cleans up any resources used by the Account. Once Close is called,
	// there will be no method calls to the Account other than As, ErrorAs, and
	// ErrorCode.
	Close() error
}

// A QueryIterator returns the results of a query one page at a time.
type QueryIterator interface {
	// NextPage returns the next non-empty page of JSON documents. It returns
	// io.EOF when there are no more results.
	NextPage(ctx context.Context) ([][]byte, error)

	// Stop releases the resources held by the iterator. NextPage should not
	// be called after Stop.
	Stop()
}
