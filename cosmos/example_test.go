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

package cosmos_test

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/memcosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

type Family struct {
	ID       string   `json:"id"`
	LastName string   `json:"lastName"`
	Kids     []string `json:"kids"`
	State    string   `json:"state"`
}

func ExampleContainer_Query() {
	ctx := context.Background()
	acct, err := memcosmos.OpenAccount(nil)
	if err != nil {
		log.Fatal(err)
	}
	defer acct.Close()

	db, err := acct.CreateDatabase(ctx, "Families", nil)
	if err != nil {
		log.Fatal(err)
	}
	if _, err := db.CreateContainer(ctx, cosmos.ContainerProperties{ID: "families", PartitionKeyPath: "/state"}, nil); err != nil {
		log.Fatal(err)
	}
	c := db.Container("families")
	for _, f := range []Family{
		{ID: "Andersen.1", LastName: "Andersen", Kids: []string{"Henriette"}, State: "WA"},
		{ID: "Wakefield.7", LastName: "Wakefield", Kids: []string{"Jesse", "Lisa"}, State: "NY"},
	} {
		if _, err := c.CreateItem(ctx, cosmos.PartitionKeyString(f.State), f); err != nil {
			log.Fatal(err)
		}
	}

	it := c.Query("SELECT * FROM f WHERE ARRAY_LENGTH(f.kids) > 1", nil)
	defer it.Stop()
	for {
		var f Family
		err := it.Next(ctx, &f)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Family %s has %d children.\n", f.LastName, len(f.Kids))
	}

	// Output:
	// Family Wakefield has 2 children.
}

func ExampleContainer_ReadItem() {
	ctx := context.Background()
	acct, err := memcosmos.OpenAccount(nil)
	if err != nil {
		log.Fatal(err)
	}
	defer acct.Close()

	c := acct.Database("Families").Container("families")
	var f Family
	err = c.ReadItem(ctx, cosmos.PartitionKeyString("WA"), "Andersen.1", &f)
	if cosmoserrors.Code(err) == cosmoserrors.NotFound {
		fmt.Println("not found")
	}

	// Output:
	// not found
}
