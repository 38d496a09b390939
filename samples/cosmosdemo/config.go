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
	"errors"
	"fmt"
	"os"
	"time"

	"gocloud.dev/runtimevar"
	"gocloud.dev/runtimevar/filevar"
)

// appSettings is the shape of appsettings.json.
type appSettings struct {
	CosmosEndpoint  string
	CosmosMasterKey string
}

// settingsTimeout bounds the wait for the first good value of the settings
// file.
const settingsTimeout = 5 * time.Second

// readSettings reads and decodes the settings file at path.
func readSettings(ctx context.Context, path string) (*appSettings, error) {
	// filevar waits for a missing file to appear; report it instead.
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	v, err := filevar.OpenVariable(path, runtimevar.NewDecoder(&appSettings{}, runtimevar.JSONDecode), nil)
	if err != nil {
		return nil, err
	}
	defer v.Close()

	ctx, cancel := context.WithTimeout(ctx, settingsTimeout)
	defer cancel()
	snap, err := v.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %v", path, err)
	}
	s := snap.Value.(*appSettings)
	if s.CosmosEndpoint == "" {
		return nil, errors.New(path + ": CosmosEndpoint is not set")
	}
	return s, nil
}
