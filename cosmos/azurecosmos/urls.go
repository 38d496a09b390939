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

package azurecosmos

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
)

func init() {
	cosmos.DefaultURLMux().RegisterAccount(Scheme, new(defaultOpener))
}

// Scheme is the URL scheme azurecosmos registers its URLOpener under on
// cosmos.DefaultMux.
const Scheme = "azurecosmos"

// defaultOpener creates a client per account host, authenticating with the
// key in AZURE_COSMOS_KEY if set.
type defaultOpener struct {
	mu      sync.Mutex
	openers map[string]*URLOpener
}

func (o *defaultOpener) OpenAccountURL(ctx context.Context, u *url.URL) (*cosmos.Account, error) {
	if u.Host == "" {
		return nil, fmt.Errorf("open account %v: URL must name the account host", u)
	}
	o.mu.Lock()
	opener, ok := o.openers[u.Host]
	if !ok {
		client, err := NewClient(endpointFromHost(u.Host), AccountKey(os.Getenv("AZURE_COSMOS_KEY")))
		if err != nil {
			o.mu.Unlock()
			return nil, fmt.Errorf("open account %v: failed to create client: %v", u, err)
		}
		opener = &URLOpener{Client: client}
		if o.openers == nil {
			o.openers = map[string]*URLOpener{}
		}
		o.openers[u.Host] = opener
	}
	o.mu.Unlock()
	return opener.OpenAccountURL(ctx, u)
}

// endpointFromHost returns the HTTPS endpoint for an account host such as
// "myaccount.documents.azure.com" or "localhost:8081".
func endpointFromHost(host string) AccountEndpoint {
	return AccountEndpoint((&url.URL{Scheme: "https", Host: host, Path: "/"}).String())
}

// URLOpener opens Azure Cosmos DB URLs like
// "azurecosmos://myaccount.documents.azure.com".
//
// The URL host is the account host; a port may be given, as in
// "azurecosmos://localhost:8081" for the emulator. The path is ignored.
//
// The following query parameters are supported:
//   - page_size: the default number of query results per page; see Options.PageSizeHint.
type URLOpener struct {
	// Client must be set to a non-nil client for the account named in URLs.
	Client *azcosmos.Client

	// Options specifies the options to pass to OpenAccount.
	Options Options
}

// OpenAccountURL opens a cosmos.Account based on u.
func (o *URLOpener) OpenAccountURL(ctx context.Context, u *url.URL) (*cosmos.Account, error) {
	opts := o.Options
	for param, values := range u.Query() {
		switch param {
		case "page_size":
			n, err := strconv.ParseInt(values[0], 10, 32)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("open account %v: invalid page_size %q", u, values[0])
			}
			opts.PageSizeHint = int32(n)
		default:
			return nil, fmt.Errorf("open account %v: invalid query parameter %q", u, param)
		}
	}
	return OpenAccount(o.Client, &opts)
}
