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

//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/azurecosmos"
)

// This file wires the account up to Azure Cosmos DB. It won't be directly
// included in the final binary, since it includes a Wire injector template
// function (setupAzureAccount), but the declarations will be copied into
// wire_gen.go when Wire is run.

// setupAzureAccount is a Wire injector function that opens an Azure Cosmos DB
// account from an endpoint and key.
func setupAzureAccount(ctx context.Context, endpoint azurecosmos.AccountEndpoint, key azurecosmos.AccountKey) (*cosmos.Account, func(), error) {
	wire.Build(
		azurecosmos.Set,
		openAzureAccount,
	)
	return nil, nil, nil
}
