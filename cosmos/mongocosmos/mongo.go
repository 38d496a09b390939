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

// Package mongocosmos provides a cosmos implementation backed by the Azure
// Cosmos DB for MongoDB API, or by any MongoDB server.
//
// Databases map to MongoDB databases and containers to collections. Each
// database holds a "_cosmos" collection recording the containers and their
// partition key paths, which also keeps empty databases in existence on
// servers that drop them. Items are stored with an _id derived from their
// partition key and id, and with an ObjectID that orders writes made in the
// same second.
//
// Provisioned throughput is set and read with the Azure Cosmos DB extension
// commands (custom actions). Set Options.DisableCustomActions for a plain
// MongoDB server; throughput settings are then ignored and
// Container.ReadThroughput returns an Unimplemented error.
//
// Queries are translated into a MongoDB filter that narrows the documents
// fetched, and the results are then computed with package cosmossql.
//
// # URLs
//
// For cosmos.OpenAccount, mongocosmos registers for the scheme "mongocosmos".
// The default URL opener will connect to a default server based on the
// environment variable "MONGO_SERVER_URL".
// To customize the URL opener, or for more details on the URL format,
// see URLOpener.
//
// # As
//
// mongocosmos exposes the following types for As:
//   - Account: **mongo.Client
//   - Error: mongo.CommandError, mongo.WriteException
package mongocosmos // import "github.com/cosmosdb-samples/gocosmos/cosmos/mongocosmos"

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/cosmossql"
	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
	"github.com/cosmosdb-samples/gocosmos/internal/gcerr"
	"github.com/cosmosdb-samples/gocosmos/internal/useragent"
)

// Dial returns a new mongoDB client that is connected to the server URI.
func Dial(ctx context.Context, uri string) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if opts.AppName == nil {
		opts.SetAppName(useragent.ApplicationID("mongocosmos"))
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return mongo.Connect(ctx, opts)
}

// DefaultPageSize is the number of query results per page when neither the
// query nor Options set one.
const DefaultPageSize = 100

// Options are optional arguments to OpenAccount.
type Options struct {
	// DisableCustomActions turns off the Azure Cosmos DB extension commands,
	// for servers that do not support them.
	DisableCustomActions bool

	// PageSize is the default number of query results per page.
	PageSize int

	// Clock returns the current time, used for LastModified and _ts.
	// Defaults to time.Now.
	Clock func() time.Time
}

// OpenAccount returns a *cosmos.Account backed by client. The caller
// remains responsible for disconnecting the client.
func OpenAccount(client *mongo.Client, opts *Options) (*cosmos.Account, error) {
	a, err := openAccount(client, opts)
	if err != nil {
		return nil, err
	}
	return cosmos.NewAccount(a), nil
}

func openAccount(client *mongo.Client, opts *Options) (*account, error) {
	if client == nil {
		return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "mongocosmos: client is nil")
	}
	a := &account{client: client}
	if opts != nil {
		a.opts = *opts
	}
	if a.opts.Clock == nil {
		a.opts.Clock = time.Now
	}
	if a.opts.PageSize <= 0 {
		a.opts.PageSize = DefaultPageSize
	}
	return a, nil
}

type account struct {
	client *mongo.Client
	opts   Options
}

const (
	metaCollection  = "_cosmos"
	databaseMetaID  = "database"
	containerPrefix = "container/"
)

// meta is a document in a database's _cosmos collection.
type meta struct {
	ID               string    `bson:"_id"`
	LastModified     time.Time `bson:"lastModified"`
	PartitionKeyPath string    `bson:"partitionKeyPath,omitempty"`
}

func (m *meta) container() *driver.ContainerProperties {
	return &driver.ContainerProperties{
		ID:               strings.TrimPrefix(m.ID, containerPrefix),
		PartitionKeyPath: m.PartitionKeyPath,
		LastModified:     m.LastModified,
	}
}

func notFound(kind, id string) error {
	return gcerr.Newf(gcerr.NotFound, nil, "%s %q does not exist", kind, id)
}

func (a *account) now() time.Time {
	// BSON dates have millisecond precision.
	return a.opts.Clock().UTC().Truncate(time.Millisecond)
}

var systemDatabases = map[string]bool{"admin": true, "config": true, "local": true}

func (a *account) databaseExists(ctx context.Context, id string) (bool, error) {
	names, err := a.client.ListDatabaseNames(ctx, bson.D{{Key: "name", Value: id}})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

func (a *account) checkDatabase(ctx context.Context, id string) error {
	ok, err := a.databaseExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return notFound("database", id)
	}
	return nil
}

// containerMeta returns the recorded properties of a container.
func (a *account) containerMeta(ctx context.Context, dbID, id string) (*meta, error) {
	var m meta
	err := a.client.Database(dbID).Collection(metaCollection).FindOne(ctx, bson.D{{Key: "_id", Value: containerPrefix + id}}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound("container", id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListDatabases implements driver.Account.ListDatabases.
func (a *account) ListDatabases(ctx context.Context) ([]*driver.DatabaseProperties, error) {
	names, err := a.client.ListDatabaseNames(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var dbs []*driver.DatabaseProperties
	for _, name := range names {
		if systemDatabases[name] {
			continue
		}
		props := &driver.DatabaseProperties{ID: name}
		var m meta
		err := a.client.Database(name).Collection(metaCollection).FindOne(ctx, bson.D{{Key: "_id", Value: databaseMetaID}}).Decode(&m)
		switch {
		case err == nil:
			props.LastModified = m.LastModified
		case !errors.Is(err, mongo.ErrNoDocuments):
			return nil, err
		}
		dbs = append(dbs, props)
	}
	sort.Slice(dbs, func(i, j int) bool { return dbs[i].ID < dbs[j].ID })
	return dbs, nil
}

// throughputCommand adds the throughput fields of a custom action.
func throughputCommand(cmd bson.D, tp *driver.Throughput) bson.D {
	switch {
	case tp == nil:
	case tp.AutoscaleMax > 0:
		cmd = append(cmd, bson.E{Key: "autoScaleSettings", Value: bson.D{{Key: "maxThroughput", Value: tp.AutoscaleMax}}})
	case tp.Manual > 0:
		cmd = append(cmd, bson.E{Key: "offerThroughput", Value: tp.Manual})
	}
	return cmd
}

// CreateDatabase implements driver.Account.CreateDatabase.
func (a *account) CreateDatabase(ctx context.Context, props driver.DatabaseProperties, tp *driver.Throughput) (*driver.DatabaseProperties, error) {
	exists, err := a.databaseExists(ctx, props.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, gcerr.Newf(gcerr.AlreadyExists, nil, "database %q already exists", props.ID)
	}
	db := a.client.Database(props.ID)
	if !a.opts.DisableCustomActions {
		cmd := throughputCommand(bson.D{{Key: "customAction", Value: "CreateDatabase"}}, tp)
		if err := db.RunCommand(ctx, cmd).Err(); err != nil {
			return nil, err
		}
	}
	m := meta{ID: databaseMetaID, LastModified: a.now()}
	if _, err := db.Collection(metaCollection).InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return &driver.DatabaseProperties{ID: props.ID, LastModified: m.LastModified}, nil
}

// DeleteDatabase implements driver.Account.DeleteDatabase.
func (a *account) DeleteDatabase(ctx context.Context, id string) error {
	if err := a.checkDatabase(ctx, id); err != nil {
		return err
	}
	return a.client.Database(id).Drop(ctx)
}

// ListContainers implements driver.Account.ListContainers.
func (a *account) ListContainers(ctx context.Context, dbID string) ([]*driver.ContainerProperties, error) {
	if err := a.checkDatabase(ctx, dbID); err != nil {
		return nil, err
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$regex", Value: "^" + containerPrefix}}}}
	cur, err := a.client.Database(dbID).Collection(metaCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var ms []meta
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}
	cs := make([]*driver.ContainerProperties, len(ms))
	for i := range ms {
		cs[i] = ms[i].container()
	}
	return cs, nil
}

// CreateContainer implements driver.Account.CreateContainer.
func (a *account) CreateContainer(ctx context.Context, dbID string, props driver.ContainerProperties, tp *driver.Throughput) (*driver.ContainerProperties, error) {
	if err := a.checkDatabase(ctx, dbID); err != nil {
		return nil, err
	}
	_, err := a.containerMeta(ctx, dbID, props.ID)
	if err == nil {
		return nil, gcerr.Newf(gcerr.AlreadyExists, nil, "container %q already exists", props.ID)
	}
	if cosmoserrors.Code(err) != cosmoserrors.NotFound {
		return nil, err
	}
	db := a.client.Database(dbID)
	if a.opts.DisableCustomActions {
		err = db.CreateCollection(ctx, props.ID)
	} else {
		cmd := throughputCommand(bson.D{
			{Key: "customAction", Value: "CreateCollection"},
			{Key: "collection", Value: props.ID},
			{Key: "shardKey", Value: fieldName(props.PartitionKeyPath)},
		}, tp)
		err = db.RunCommand(ctx, cmd).Err()
	}
	if err != nil {
		return nil, err
	}
	m := meta{ID: containerPrefix + props.ID, LastModified: a.now(), PartitionKeyPath: props.PartitionKeyPath}
	if _, err := db.Collection(metaCollection).InsertOne(ctx, m); err != nil {
		return nil, err
	}
	return m.container(), nil
}

// fieldName converts a partition key path like "/address/postalCode" to a
// MongoDB field name like "address.postalCode".
func fieldName(path string) string {
	return strings.Join(driver.SplitPath(path), ".")
}

// ReadContainer implements driver.Account.ReadContainer.
func (a *account) ReadContainer(ctx context.Context, dbID, id string) (*driver.ContainerProperties, error) {
	m, err := a.containerMeta(ctx, dbID, id)
	if err != nil {
		return nil, err
	}
	return m.container(), nil
}

// DeleteContainer implements driver.Account.DeleteContainer.
func (a *account) DeleteContainer(ctx context.Context, dbID, id string) error {
	db := a.client.Database(dbID)
	res, err := db.Collection(metaCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: containerPrefix + id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound("container", id)
	}
	return db.Collection(id).Drop(ctx)
}

// collectionInfo is the reply to the GetCollection custom action.
type collectionInfo struct {
	ProvisionedThroughput int32 `bson:"provisionedThroughput"`
	AutoScaleSettings     *struct {
		MaxThroughput int32 `bson:"maxThroughput"`
	} `bson:"autoScaleSettings"`
}

// ReadThroughput implements driver.Account.ReadThroughput.
func (a *account) ReadThroughput(ctx context.Context, dbID, id string) (*driver.Throughput, error) {
	if a.opts.DisableCustomActions {
		return nil, gcerr.Newf(gcerr.Unimplemented, nil, "reading throughput requires Azure Cosmos DB custom actions")
	}
	if _, err := a.containerMeta(ctx, dbID, id); err != nil {
		return nil, err
	}
	var info collectionInfo
	cmd := bson.D{{Key: "customAction", Value: "GetCollection"}, {Key: "collection", Value: id}}
	if err := a.client.Database(dbID).RunCommand(ctx, cmd).Decode(&info); err != nil {
		return nil, err
	}
	switch {
	case info.AutoScaleSettings != nil && info.AutoScaleSettings.MaxThroughput > 0:
		return &driver.Throughput{AutoscaleMax: info.AutoScaleSettings.MaxThroughput}, nil
	case info.ProvisionedThroughput > 0:
		return &driver.Throughput{Manual: info.ProvisionedThroughput}, nil
	}
	return nil, gcerr.Newf(gcerr.NotFound, nil, "container %q has no dedicated throughput", id)
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

func checkPartitionKey(doc map[string]any, path string, pk any) error {
	got, ok := driver.PartitionKeyValue(doc, path)
	if !ok {
		got = nil
	}
	if cosmossql.Equal(got, pk) != true {
		return gcerr.Newf(gcerr.InvalidArgument, nil,
			"partition key %v extracted from the document does not match the one specified (%v)", got, pk)
	}
	return nil
}

// orderField holds an ObjectID stamped on each write. Its timestamp and
// counter order writes made within the same second of _ts.
const orderField = "_cosmosOrder"

// resultOrder is the order in which query candidates are read.
var resultOrder = bson.D{{Key: "_ts", Value: 1}, {Key: orderField, Value: 1}}

// storedDocument prepends the keys the driver manages to doc.
func storedDocument(key string, doc bson.D) bson.D {
	return append(bson.D{{Key: "_id", Value: key}, {Key: orderField, Value: primitive.NewObjectID()}}, doc...)
}

// documentID returns the _id of the item with the given partition key and id.
func documentID(pk any, id string) string {
	b, _ := json.Marshal([]any{pk, id})
	return string(b)
}

// prepareItem decodes an item for writing, checks its partition key and
// stamps its system properties.
func (a *account) prepareItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, item []byte) (key string, doc bson.D, stored []byte, err error) {
	pkv, err := partitionKeyValue(pk)
	if err != nil {
		return "", nil, nil, err
	}
	m, err := driver.DecodeObject(item)
	if err != nil {
		return "", nil, nil, err
	}
	id, err := driver.ItemID(m)
	if err != nil {
		return "", nil, nil, err
	}
	cm, err := a.containerMeta(ctx, ref.Database, ref.Container)
	if err != nil {
		return "", nil, nil, err
	}
	if err := checkPartitionKey(m, cm.PartitionKeyPath, pkv); err != nil {
		return "", nil, nil, err
	}
	delete(m, "_id")
	delete(m, orderField)
	m["_etag"] = strconv.Quote(uuid.NewString())
	m["_ts"] = float64(a.now().Unix())
	if stored, err = json.Marshal(m); err != nil {
		return "", nil, nil, gcerr.Newf(gcerr.Internal, err, "encoding document")
	}
	if err := bson.UnmarshalExtJSON(stored, false, &doc); err != nil {
		return "", nil, nil, gcerr.Newf(gcerr.InvalidArgument, err, "converting document")
	}
	key = documentID(pkv, id)
	return key, storedDocument(key, doc), stored, nil
}

// fromBSON converts a stored document to JSON without the keys the driver
// manages.
func fromBSON(raw bson.Raw) ([]byte, error) {
	var d bson.D
	if err := bson.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	out := d[:0]
	for _, e := range d {
		if e.Key != "_id" && e.Key != orderField {
			out = append(out, e)
		}
	}
	return bson.MarshalExtJSON(out, false, false)
}

func (a *account) collection(ref driver.ItemRef) *mongo.Collection {
	return a.client.Database(ref.Database).Collection(ref.Container)
}

// CreateItem implements driver.Account.CreateItem.
func (a *account) CreateItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, item []byte) ([]byte, error) {
	_, doc, stored, err := a.prepareItem(ctx, ref, pk, item)
	if err != nil {
		return nil, err
	}
	if _, err := a.collection(ref).InsertOne(ctx, doc); err != nil {
		return nil, err
	}
	return stored, nil
}

// ReadItem implements driver.Account.ReadItem.
func (a *account) ReadItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string) ([]byte, error) {
	pkv, err := partitionKeyValue(pk)
	if err != nil {
		return nil, err
	}
	raw, err := a.collection(ref).FindOne(ctx, bson.D{{Key: "_id", Value: documentID(pkv, id)}}).Raw()
	if err != nil {
		return nil, err
	}
	return fromBSON(raw)
}

// ReplaceItem implements driver.Account.ReplaceItem.
func (a *account) ReplaceItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string, item []byte) ([]byte, error) {
	key, doc, stored, err := a.prepareItem(ctx, ref, pk, item)
	if err != nil {
		return nil, err
	}
	res, err := a.collection(ref).ReplaceOne(ctx, bson.D{{Key: "_id", Value: key}}, doc)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, notFound("item", id)
	}
	return stored, nil
}

// DeleteItem implements driver.Account.DeleteItem.
func (a *account) DeleteItem(ctx context.Context, ref driver.ItemRef, pk driver.PartitionKey, id string) error {
	pkv, err := partitionKeyValue(pk)
	if err != nil {
		return err
	}
	res, err := a.collection(ref).DeleteOne(ctx, bson.D{{Key: "_id", Value: documentID(pkv, id)}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound("item", id)
	}
	return nil
}

// RunQuery implements driver.Account.RunQuery. The documents matching the
// translated filter are read up front and the results handed out in pages.
func (a *account) RunQuery(ctx context.Context, ref driver.ItemRef, q *driver.Query) (driver.QueryIterator, error) {
	parsed, err := cosmossql.Parse(q.SQL)
	if err != nil {
		return nil, err
	}
	params := map[string]any{}
	for _, p := range q.Parameters {
		v, err := cosmossql.NormalizeValue(p.Value)
		if err != nil {
			return nil, gcerr.Newf(gcerr.InvalidArgument, err, "parameter %s", p.Name)
		}
		params[p.Name] = v
	}
	cm, err := a.containerMeta(ctx, ref.Database, ref.Container)
	if err != nil {
		return nil, err
	}

	var filters bson.A
	if q.PartitionKey != nil {
		pkv, err := partitionKeyValue(*q.PartitionKey)
		if err != nil {
			return nil, err
		}
		filters = append(filters, bson.D{{Key: fieldName(cm.PartitionKeyPath), Value: pkv}})
	}
	fb := &filterBuilder{alias: parsed.Alias, params: params}
	if f, ok := fb.build(parsed.Where); ok {
		filters = append(filters, f)
	}
	filter := bson.D{}
	switch len(filters) {
	case 0:
	case 1:
		filter = filters[0].(bson.D)
	default:
		filter = bson.D{{Key: "$and", Value: filters}}
	}

	cur, err := a.collection(ref).Find(ctx, filter, options.Find().SetSort(resultOrder))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []map[string]any
	for cur.Next(ctx) {
		data, err := fromBSON(cur.Current)
		if err != nil {
			return nil, err
		}
		doc, err := driver.DecodeObject(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	results, err := parsed.Execute(docs, params)
	if err != nil {
		return nil, err
	}
	encoded := make([][]byte, len(results))
	for i, r := range results {
		if encoded[i], err = json.Marshal(r); err != nil {
			return nil, gcerr.Newf(gcerr.Internal, err, "encoding query result")
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

// As implements driver.Account.As.
func (a *account) As(i any) bool { return driver.AsFunc(a.client)(i) }

// ErrorAs implements driver.Account.ErrorAs.
func (a *account) ErrorAs(err error, i any) bool {
	switch p := i.(type) {
	case *mongo.CommandError:
		return errors.As(err, p)
	case *mongo.WriteException:
		return errors.As(err, p)
	}
	return false
}

// ErrorCode implements driver.Account.ErrorCode.
func (a *account) ErrorCode(err error) cosmoserrors.ErrorCode {
	var serr *cosmossql.Error
	if errors.As(err, &serr) {
		return cosmoserrors.InvalidArgument
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return cosmoserrors.NotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return cosmoserrors.AlreadyExists
	}
	var cerr mongo.CommandError
	if errors.As(err, &cerr) {
		return translateMongoCode(int(cerr.Code))
	}
	var wexc mongo.WriteException
	if errors.As(err, &wexc) && len(wexc.WriteErrors) > 0 {
		return translateMongoCode(wexc.WriteErrors[0].Code)
	}
	return cosmoserrors.Code(err)
}

// Server error codes. The Go mongo driver doesn't export constants for them.
const (
	mongoBadValueCode            = 2
	mongoFailedToParseCode       = 9
	mongoUnauthorizedCode        = 13
	mongoNamespaceNotFoundCode   = 26
	mongoNamespaceExistsCode     = 48
	mongoCommandNotFoundCode     = 59
	mongoCommandNotSupportedCode = 115
	mongoDupKeyCode              = 11000
	// Azure Cosmos DB returns this when the request rate exceeds the
	// provisioned throughput.
	cosmosTooManyRequestsCode = 16500
)

func translateMongoCode(code int) cosmoserrors.ErrorCode {
	switch code {
	case mongoBadValueCode, mongoFailedToParseCode:
		return cosmoserrors.InvalidArgument
	case mongoUnauthorizedCode:
		return cosmoserrors.PermissionDenied
	case mongoNamespaceNotFoundCode:
		return cosmoserrors.NotFound
	case mongoNamespaceExistsCode, mongoDupKeyCode:
		return cosmoserrors.AlreadyExists
	case mongoCommandNotFoundCode, mongoCommandNotSupportedCode:
		return cosmoserrors.Unimplemented
	case cosmosTooManyRequestsCode:
		return cosmoserrors.ResourceExhausted
	default:
		return cosmoserrors.Unknown
	}
}

// Close implements driver.Account.Close.
func (a *account) Close() error { return nil }
