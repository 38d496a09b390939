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

package cosmos

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/internal/gcerr"
)

// QueryOptions are options for Container.Query.
type QueryOptions struct {
	// PartitionKey restricts the query to one partition. A nil PartitionKey
	// queries all partitions.
	PartitionKey *PartitionKey
	// Parameters bind values to @name references in the query text.
	Parameters []QueryParameter
	// MaxItemCount is a hint for the number of results per page.
	MaxItemCount int32
}

// Query prepares a SQL query such as
//
//	SELECT * FROM c WHERE STARTSWITH(c.name, 'New Customer')
//
// The query is sent to the service on the first call to Next. opts may be
// nil.
func (c *Container) Query(sql string, opts *QueryOptions) *QueryIterator {
	if opts == nil {
		opts = &QueryOptions{}
	}
	return &QueryIterator{
		c: c,
		q: &driver.Query{
			SQL:          sql,
			Parameters:   opts.Parameters,
			PartitionKey: opts.PartitionKey,
			MaxItemCount: opts.MaxItemCount,
		},
	}
}

// QueryIterator iterates over the results of a query.
type QueryIterator struct {
	c     *Container
	q     *driver.Query
	iter  driver.QueryIterator
	page  [][]byte
	pages int
	err   error
}

var errStopped = gcerr.Newf(gcerr.FailedPrecondition, nil, "cosmos: QueryIterator has been stopped")

// Next decodes the next result into dst, which should be a pointer as for
// json.Unmarshal. A nil dst skips the result. Next returns io.EOF when
// there are no more results. Once Next returns a non-nil error, it will
// always return the same error.
func (it *QueryIterator) Next(ctx context.Context, dst any) error {
	raw, err := it.NextRaw(ctx)
	if err != nil {
		return err
	}
	return decode(raw, dst)
}

// NextRaw returns the next result as JSON text. It returns io.EOF when
// there are no more results.
func (it *QueryIterator) NextRaw(ctx context.Context) (json.RawMessage, error) {
	if it.err != nil {
		return nil, it.err
	}
	if it.iter == nil {
		if err := it.start(ctx); err != nil {
			it.err = err
			return nil, err
		}
	}
	for len(it.page) == 0 {
		page, err := it.iter.NextPage(ctx)
		if err != nil {
			it.err = wrapError(it.c.db.acct.driver, err)
			return nil, it.err
		}
		it.pages++
		it.page = page
	}
	item := it.page[0]
	it.page = it.page[1:]
	return item, nil
}

func (it *QueryIterator) start(ctx context.Context) (err error) {
	a := it.c.db.acct
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return errClosed
	}
	ctx, span := a.tracer.Start(ctx, "Query")
	defer func() { a.tracer.End(ctx, span, err) }()

	if err := it.c.validate(); err != nil {
		return err
	}
	if strings.TrimSpace(it.q.SQL) == "" {
		return gcerr.Newf(gcerr.InvalidArgument, nil, "cosmos: empty query")
	}
	iter, err := a.driver.RunQuery(ctx, it.c.ref(), it.q)
	if err != nil {
		return wrapError(a.driver, err)
	}
	it.iter = iter
	return nil
}

// Pages returns the number of result pages fetched so far.
func (it *QueryIterator) Pages() int { return it.pages }

// Stop releases the resources of the iterator. Next returns an error with
// code FailedPrecondition after Stop.
func (it *QueryIterator) Stop() {
	if it.iter != nil {
		it.iter.Stop()
	}
	if it.err == nil || it.err == io.EOF {
		it.err = errStopped
	}
}
