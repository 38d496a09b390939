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

package main

import (
	"context"
	"flag"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmdtest"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/memcosmos"
)

var update = flag.Bool("update", false, "replace test file contents with output")

func init() {
	// memtest accounts stamp a fixed time so that the golden output is stable.
	cosmos.DefaultURLMux().RegisterAccount("memtest", &memcosmos.URLOpener{
		Options: memcosmos.Options{
			Clock: func() time.Time { return time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC) },
		},
	})
}

func Test(t *testing.T) {
	ts, err := cmdtest.Read("testdata")
	if err != nil {
		t.Fatal(err)
	}
	ts.Commands["cosmosdemo"] = cmdtest.InProcessProgram("cosmosdemo", func() int {
		return run(context.Background())
	})
	ts.Setup = func(string) error {
		n := 0
		newID = func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		}
		return nil
	}
	defer func() { newID = nil }()
	ts.Run(t, *update)
}
