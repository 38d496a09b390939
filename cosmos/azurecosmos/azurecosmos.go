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

// Package azurecosmos provides a cosmos implementation backed by the Azure
// Cosmos DB for NoSQL API. Use OpenAccount to construct a *cosmos.Account.
//
// # URLs
//
// For cosmos.OpenAccount, azurecosmos registers for the scheme "azurecosmos".
// The default URL opener will create a client for the account host named in
// the URL, authenticating with the key in the AZURE_COSMOS_KEY environment
// variable, or with azidentity.NewDefaultAzureCredential if that variable is
// not set.
// To customize the URL opener, or for more details on the URL format,
// see URLOpener.
//
// # As
//
// azurecosmos exposes the following types for As:
//   - Account: **azcosmos.Client
//   - Error: *azcore.ResponseError
//
// # Queries
//
// Queries without a partition key are sent as cross-partition queries.
// The service can only answer those that need no query plan, so aggregates
// and ORDER BY should be scoped to a partition.
package azurecosmos // import "github.com/cosmosdb-samples/gocosmos/cosmos/azurecosmos"

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/google/wire"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
	"github.com/cosmosdb-samples/gocosmos/internal/gcerr"
	"github.com/cosmosdb-samples/gocosmos/internal/useragent"
)

// Set holds Wire providers for this package.
var Set = wire.NewSet(
	NewClient,
	wire.Struct(new(URLOpener), "Client"),
)

// AccountEndpoint is the URL of an account, such as
// "https://myaccount.documents.azure.com:443/".
type AccountEndpoint string

// AccountKey is the primary or secondary key of an account.
type AccountKey string

// NewClient returns a client for the account at endpoint. It authenticates
// with key when key is not empty, and with the default Azure credential
// chain otherwise. Writes return the stored document.
func NewClient(endpoint AccountEndpoint, key AccountKey) (*azcosmos.Client, error) {
	opts := &azcosmos.ClientOptions{EnableContentResponseOnWrite: true}
	opts.Telemetry.ApplicationID = useragent.ApplicationID("azurecosmos")
	if key != "" {
		cred, err := azcosmos.NewKeyCredential(string(key))
		if err != nil {
			return nil, err
		}
		return azcosmos.NewClientWithKey(string(endpoint), cred, opts)
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azcosmos.NewClient(string(endpoint), cred, opts)
}

// Options are optional arguments to OpenAccount.
type Options struct {
	// PageSizeHint is the number of query results per page requested when
	// the query does not set one. Zero leaves the choice to the service.
	PageSizeHint int32
}

// OpenAccount returns a *cosmos.Account backed by client.
func OpenAccount(client *azcosmos.Client, opts *Options) (*cosmos.Account, error) {
	a, err := openAccount(client, opts)
	if err != nil {
		return nil, err
	}
	return cosmos.NewAccount(a), nil
}

func openAccount(client *azcosmos.Client, opts *Options) (*account, error) {
	if client == nil {
		return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "azurecosmos: client is nil")
	}
	a := &account{client: client}
	if opts != nil {
		a.opts = *opts
	}
	return a, nil
}

type account struct {
	client *azcosmos.Client
	opts   Options
}

const allResources = "SELECT * FROM root"

// ListDatabases implements driver.Account.ListDatabases.
func (a *account) ListDatabases(ctx context.Context) ([]*driver.DatabaseProperties, error) {
	pager := a.client.NewQueryDatabasesPager(allResources, nil)
	var dbs []*driver.DatabaseProperties
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Databases {
			dbs = append(dbs, &driver.DatabaseProperties{ID: p.ID, LastModified: p.LastModified})
		}
	}
	sort.Slice(dbs, func(i, j int) bool { return dbs[i].ID < dbs[j].ID })
	return dbs, nil
}

// CreateDatabase implements driver.Account.CreateDatabase.
func (a *account) CreateDatabase(ctx context.Context, props driver.DatabaseProperties, tp *driver.Throughput) (*driver.DatabaseProperties, error) {
	var opts *azcosmos.CreateDatabaseOptions
	if tp != nil {
		p := throughputProperties(*tp)
		opts = &azcosmos.CreateDatabaseOptions{ThroughputProperties: &p}
	}
	resp, err := a.client.CreateDatabase(ctx, azcosmos.DatabaseProperties{ID: props.ID}, opts)
	if err != nil {
		return nil, err
	}
	created := &driver.DatabaseProperties{ID: props.ID}
	if p := resp.DatabaseProperties; p != nil {
		created.LastModified = p.LastModified
	}
	return created, nil
}

func throughputProperties(tp driver.Throughput) azcosmos.ThroughputProperties {
	if tp.AutoscaleMax > 0 {
		return azcosmos.NewAutoscaleThroughputProperties(tp.AutoscaleMax)
	}
	return azcosmos.NewManualThroughputProperties(tp.Manual)
}

// DeleteDatabase implements driver.Account.DeleteDatabase.
func (a *account) DeleteDatabase(ctx context.Context, id string) error {
	db, err := a.client.NewDatabase(id)
	if err != nil {
		return err
	}
	_, err = db.Delete(ctx, nil)
	return err
}

// ListContainers implements driver.Account.ListContainers.
func (a *account) ListContainers(ctx context.Context, dbID string) ([]*driver.ContainerProperties, error) {
	db, err := a.client.NewDatabase(dbID)
	if err != nil {
		return nil, err
	}
	pager := db.NewQueryContainersPager(allResources, nil)
	var cs []*driver.ContainerProperties
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for i := range page.Containers {
			cs = append(cs, containerProperties(&page.Containers[i]))
		}
	}
	sort.Slice(cs, func(i, j int) bool { return cs[i].ID < cs[j].ID })
	return cs, nil
}

func containerProperties(p *azcosmos.ContainerProperties) *driver.ContainerProperties {
	props := &driver.ContainerProperties{ID: p.ID, LastModified: p.LastModified}
	if paths := p.PartitionKeyDefinition.Paths; len(paths) > 0 {
		props.PartitionKeyPath = paths[0]
	}
	return props
}

// CreateContainer implements driver.Account.CreateContainer.
func (a *account) CreateContainer(ctx context.Context, dbID string, props driver.ContainerProperties, tp *driver.Throughput) (*driver.ContainerProperties, error) {
	db, err := a.client.NewDatabase(dbID)
	if err != nil {
		return nil, err
	}
	p := throughputProperties(*tp)
	resp, err := db.CreateContainer(ctx, azcosmos.ContainerProperties{
		ID: props.ID,
		PartitionKeyDefinition: azcosmos.PartitionKeyDefinition{
			Paths: []string{props.PartitionKeyPath},
		},
	}, &azcosmos.CreateContainerOptions{ThroughputProperties: &p})
	if err != nil {
		return nil, err
	}
	if resp.ContainerProperties == nil {
		return &props, nil
	}
	return containerProperties(resp.ContainerProperties), nil
}

// ReadContainer implements driver.Account.ReadContainer.
func (a *account) ReadContainer(ctx context.Context, dbID, id string) (*driver.ContainerProperties, error) {
	c, err := a.client.NewContainer(dbID, id)
	if err != nil {
		return nil, err
	}
	resp, err := c.Read(ctx, nil)
	if err != nil {
		return nil, err
	}
	if resp.ContainerProperties == nil {
		return nil, gcerr.Newf(gcerr.Internal, nil, "azurecosmos: response for container %q has no properties", id)
	}
	return containerProperties(resp.ContainerProperties), nil
}

// DeleteContainer implements driver.Account.DeleteContainer.
func (a *account) DeleteContainer(ctx context.Context, dbID, id string) error {
	c, err := a.client.NewContainer(dbID, id)
	if err != nil {
		return err
	}
	_, err = c.Delete(ctx, nil)
	return err
}

// ReadThroughput implements driver.Account.ReadThroughput.
func (a *account) ReadThroughput(ctx context.Context, dbID, id string) (*driver.Throughput, error) {
	c, err := a.client.NewContainer(dbID, id)
	if err != nil {
		return nil, err
	}
	resp, err := c.ReadThroughput(ctx, nil)
	if err != nil {
		return nil, err
	}
	tp := resp.ThroughputProperties
	if tp == nil {
		return nil, gcerr.Newf(gcerr.NotFound, nil, "azurecosmos: container %q has no dedicated throughput", id)
	}
	if n, ok := tp.ManualThroughput(); ok {
		return &driver.Throughput{Manual: n}, nil
	}
	if n, ok := tp.AutoscaleMaxThroughput(); ok {
		return &driver.Throughput{AutoscaleMax: n}, nil
	}
	return nil, gcerr.Newf(gcerr.Unknown, nil, "azurecosmos: unrecognized throughput for container %q", id)
}

// partitionKey converts a portable partition key value.
func partitionKey(pk driver.PartitionKey) (azcosmos.PartitionKey, error) {
	switch v := pk.Value.(type) {
	case nil:
		return azcosmos.NullPartitionKey, nil
	case string:
		return azcosmos.NewPartitionKeyString(v), nil
	case bool:
		return azcosmos.NewPartitionKeyBool(v), nil
	case float64:
		return azcosmos.NewPartitionKeyNumber(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return azcosmos.PartitionKey{}, gcerr.Newf(gcerr.InvalidArgument, err, "azurecosmos: partition key")
		}
		return azcosmos.NewPartitionKeyNumber(f), nil
	case float32:
		return azcosmos.NewPartitionKeyNumber(float64(v)), nil
	case int:
		return azcosmos.NewPartitionKeyNumber(float64(v)), nil
	case int32:
		return azcosmos.NewPartitionKeyNumber(float64(v)), nil
	case int64:
		return azcosmos.NewPartitionKeyNumber(float64(v)), nil
	}
	return azcosmos.PartitionKey{}, gcerr.Newf(gcerr.InvalidArgument, nil,
		"azurecosmos: partition key must be a string, number, bool or null, not %T", pk.Value)
}

func (a *account) container(ref driver.ItemRef, pk driver.PartitionKey) (*azcosmos.ContainerClient, azcosmos.PartitionKey, error) {
	key, err := partitionKey(pk)
	if err != nil {
		return nil, key, err
	}
	c, err := a.client.NewContainer(ref.Database, ref.Container)
	return c, key, err
}

var writeOptions = &azcosmos.ItemOptions{EnableContentResponseOnWrite: true}

// CreateItem implements driver.Account.CreateItem.
func (a *account) CreateItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, item []byte) ([]byte, error) {
	c, key, err := a.container(ref, pk)
	if err != nil {
		return nil, err
	}
	resp, err := c.CreateItem(ctx, key, item, writeOptions)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// ReadItem implements driver.Account.ReadItem.
func (a *account) ReadItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string) ([]byte, error) {
	c, key, err := a.container(ref, pk)
	if err != nil {
		return nil, err
	}
	resp, err := c.ReadItem(ctx, key, id, nil)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// ReplaceItem implements driver.Account.ReplaceItem.
func (a *account) ReplaceItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string, item []byte) ([]byte, error) {
	c, key, err := a.container(ref, pk)
	if err != nil {
		return nil, err
	}
	resp, err := c.ReplaceItem(ctx, key, id, item, writeOptions)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// DeleteItem implements driver.Account.DeleteItem.
func (a *account) DeleteItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string) error {
	c, key, err := a.container(ref, pk)
	if err != nil {
		return err
	}
	_, err = c.DeleteItem(ctx, key, id, nil)
	return err
}

// RunQuery implements driver.Account.RunQuery. The first page is fetched
// before RunQuery returns.
func (a *account) RunQuery(ctx context.Context, ref driver.ItemRef, q *driver.Query) (driver.QueryIterator, error) {
	c, err := a.client.NewContainer(ref.Database, ref.Container)
	if err != nil {
		return nil, err
	}
	key := azcosmos.NewPartitionKey()
	if q.PartitionKey != nil {
		if key, err = partitionKey(*q.PartitionKey); err != nil {
			return nil, err
		}
	}
	opts := &azcosmos.QueryOptions{PageSizeHint: a.opts.PageSizeHint}
	if q.MaxItemCount > 0 {
		opts.PageSizeHint = q.MaxItemCount
	}
	for _, p := range q.Parameters {
		opts.QueryParameters = append(opts.QueryParameters, azcosmos.QueryParameter{Name: p.Name, Value: p.Value})
	}
	it := &queryIterator{pager: c.NewQueryItemsPager(q.SQL, key, opts)}
	page, err := it.NextPage(ctx)
	switch {
	case err == io.EOF:
	case err != nil:
		return nil, err
	default:
		it.next = page
	}
	return it, nil
}

type queryIterator struct {
	pager *runtime.Pager[azcosmos.QueryItemsResponse]
	// next is a page fetched ahead of time by RunQuery.
	next [][]byte
}

func (it *queryIterator) NextPage(ctx context.Context) ([][]byte, error) {
	if it.next != nil {
		page := it.next
		it.next = nil
		return page, nil
	}
	for it.pager != nil && it.pager.More() {
		resp, err := it.pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if len(resp.Items) > 0 {
			return resp.Items, nil
		}
	}
	return nil, io.EOF
}

func (it *queryIterator) Stop() {
	it.pager = nil
	it.next = nil
}

// As implements driver.Account.As.
func (a *account) As(i any) bool { return driver.AsFunc(a.client)(i) }

// ErrorAs implements driver.Account.ErrorAs.
func (a *account) ErrorAs(err error, i any) bool {
	p, ok := i.(**azcore.ResponseError)
	if !ok {
		return false
	}
	return errors.As(err, p)
}

// ErrorCode implements driver.Account.ErrorCode.
func (a *account) ErrorCode(err error) cosmoserrors.ErrorCode {
	var rerr *azcore.ResponseError
	if errors.As(err, &rerr) {
		return gcerr.HTTPCode(rerr.StatusCode)
	}
	return cosmoserrors.Code(err)
}

// Close implements driver.Account.Close.
func (a *account) Close() error { return nil }
