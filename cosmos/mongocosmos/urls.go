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

package mongocosmos

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
)

func init() {
	cosmos.DefaultURLMux().RegisterAccount(Scheme, new(defaultDialer))
}

// defaultDialer dials a default Mongo server based on the environment variable
// MONGO_SERVER_URL.
type defaultDialer struct {
	mongoServerURL string
	mu             sync.Mutex
	opener         *URLOpener
}

func (o *defaultDialer) OpenAccountURL(ctx context.Context, u *url.URL) (*cosmos.Account, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	currentEnv := os.Getenv("MONGO_SERVER_URL")
	if currentEnv == "" {
		return nil, fmt.Errorf("open account %v: %v", u, errors.New("MONGO_SERVER_URL environment variable is not set"))
	}
	// Redial when MONGO_SERVER_URL changes.
	if currentEnv != o.mongoServerURL {
		client, err := Dial(ctx, currentEnv)
		if err != nil {
			return nil, fmt.Errorf("open account %v: failed to dial default Mongo server at %q: %v", u, currentEnv, err)
		}
		o.mongoServerURL = currentEnv
		o.opener = &URLOpener{Client: client}
	}
	return o.opener.OpenAccountURL(ctx, u)
}

// Scheme is the URL scheme mongocosmos registers its URLOpener under on
// cosmos.DefaultMux.
const Scheme = "mongocosmos"

// URLOpener opens URLs like "mongocosmos://" and
// "mongocosmos://?custom_actions=false".
//
// The URL's host and path are ignored.
//
// The following query parameters are supported:
//   - custom_actions: set to false for servers without the Azure Cosmos DB
//     extension commands; see Options.DisableCustomActions.
//   - page_size: the default number of query results per page.
type URLOpener struct {
	// A Client is a MongoDB client that performs operations on the account,
	// must be non-nil.
	Client *mongo.Client

	// Options specifies the options to pass to OpenAccount.
	Options Options
}

// OpenAccountURL opens a cosmos.Account based on u.
func (o *URLOpener) OpenAccountURL(ctx context.Context, u *url.URL) (*cosmos.Account, error) {
	opts := o.Options
	for param, values := range u.Query() {
		value := values[0]
		switch param {
		case "custom_actions":
			on, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("open account %v: invalid custom_actions %q", u, value)
			}
			opts.DisableCustomActions = !on
		case "page_size":
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 {
				return nil, fmt.Errorf("open account %v: invalid page_size %q", u, value)
			}
			opts.PageSize = n
		default:
			return nil, fmt.Errorf("open account %v: invalid query parameter %q", u, param)
		}
	}
	return OpenAccount(o.Client, &opts)
}
