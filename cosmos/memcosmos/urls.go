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

package memcosmos

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
)

func init() {
	cosmos.DefaultURLMux().RegisterAccount(Scheme, &URLOpener{})
}

// Scheme is the URL scheme memcosmos registers its URLOpener under on
// cosmos.DefaultMux.
const Scheme = "mem"

// URLOpener opens URLs like "mem://" and "mem://?file=/tmp/account.json".
//
// The URL's host and path are ignored.
//
// The following query parameters are supported:
//   - file: the file the account state is loaded from and saved to; see Options.Filename.
//   - page_size: the default number of query results per page.
type URLOpener struct {
	// Options specifies the options to pass to OpenAccount. Query parameters
	// override them.
	Options Options
}

// OpenAccountURL opens a cosmos.Account based on u.
func (o *URLOpener) OpenAccountURL(ctx context.Context, u *url.URL) (*cosmos.Account, error) {
	opts := o.Options
	for param, values := range u.Query() {
		value := values[0]
		switch param {
		case "file":
			opts.Filename = value
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
	return OpenAccount(&opts)
}
