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
	"path/filepath"
	"testing"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
)

func TestOpenAccountURL(t *testing.T) {
	file := filepath.Join(t.TempDir(), "account.json")
	tests := []struct {
		URL     string
		WantErr bool
	}{
		// OK.
		{"mem://", false},
		// Host and path are ignored.
		{"mem://demo/path", false},
		// OK, file and page size.
		{"mem://?file=" + file + "&page_size=10", false},
		// Invalid page size.
		{"mem://?page_size=0", true},
		{"mem://?page_size=x", true},
		// Invalid parameter.
		{"mem://?param=value", true},
	}

	ctx := context.Background()
	for _, test := range tests {
		a, err := cosmos.OpenAccount(ctx, test.URL)
		if (err != nil) != test.WantErr {
			t.Errorf("%s: got error %v, want error %v", test.URL, err, test.WantErr)
		}
		if a != nil {
			a.Close()
		}
	}
}
