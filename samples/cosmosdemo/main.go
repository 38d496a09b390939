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

// cosmosdemo walks through the lifecycle of databases, containers and
// documents in a document database account, printing the result of every
// call.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/azurecosmos"
	"github.com/cosmosdb-samples/gocosmos/samples/cosmosworker"

	// Import the cosmos driver packages we want to be able to open.
	_ "github.com/cosmosdb-samples/gocosmos/cosmos/memcosmos"
	_ "github.com/cosmosdb-samples/gocosmos/cosmos/mongocosmos"
)

const helpSuffix = `

  The account is chosen by the -account flag, then the COSMOS_ACCOUNT_URL
  environment variable, then the CosmosEndpoint and CosmosMasterKey values
  in the -config file. Account URLs look like "mem://?file=account.json",
  "azurecosmos://myaccount.documents.azure.com" or "mongocosmos://".
`

// newID generates document ids; nil uses the worker's default.
var newID func() string

func main() {
	os.Exit(run(context.Background()))
}

// globalFlags are the flags shared by every command.
type globalFlags struct {
	config    string
	account   string
	env       string
	telemetry string
	db        string
	container string
}

func run(ctx context.Context) int {
	log.SetOutput(os.Stderr)
	log.SetFlags(0)
	log.SetPrefix("cosmosdemo: ")

	g := &globalFlags{}
	fs := flag.NewFlagSet("cosmosdemo", flag.ContinueOnError)
	fs.StringVar(&g.config, "config", "appsettings.json", "settings file holding CosmosEndpoint and CosmosMasterKey")
	fs.StringVar(&g.account, "account", "", "account URL; overrides COSMOS_ACCOUNT_URL and -config")
	fs.StringVar(&g.env, "env", ".env", "file of environment variables to load; ignored if missing")
	fs.StringVar(&g.telemetry, "telemetry", "none", "telemetry exporter: none, stdout or auto")
	fs.StringVar(&g.db, "db", cosmosworker.DefaultDatabaseID, "database the container commands use")
	fs.StringVar(&g.container, "container", cosmosworker.DefaultContainerID, "container the document commands use")

	cmdr := subcommands.NewCommander(fs, "cosmosdemo")
	cmdr.Register(cmdr.HelpCommand(), "")
	cmdr.Register(cmdr.FlagsCommand(), "")
	cmdr.Register(&procCmd{g: g, name: "demo", synopsis: "Run every demonstration step against a scratch database",
		run: (*cosmosworker.Worker).RunAll}, "")
	cmdr.Register(&procCmd{g: g, name: "dbs", synopsis: "List the databases in the account",
		run: (*cosmosworker.Worker).ViewDatabases}, "databases")
	cmdr.Register(&databaseCmd{g: g, name: "createdb", synopsis: "Create a database", create: true}, "databases")
	cmdr.Register(&databaseCmd{g: g, name: "deletedb", synopsis: "Delete a database"}, "databases")
	cmdr.Register(&containersCmd{g: g}, "containers")
	cmdr.Register(&createContainerCmd{g: g}, "containers")
	cmdr.Register(&deleteContainerCmd{g: g}, "containers")
	cmdr.Register(&procCmd{g: g, name: "createdocs", synopsis: "Create the three demo customers",
		run: (*cosmosworker.Worker).CreateDocuments}, "documents")
	cmdr.Register(&procCmd{g: g, name: "querydocs", synopsis: "Query the demo customers",
		run: (*cosmosworker.Worker).QueryDocuments}, "documents")
	cmdr.Register(&procCmd{g: g, name: "replacedocs", synopsis: "Flag every demo customer as new",
		run: (*cosmosworker.Worker).ReplaceDocuments}, "documents")
	cmdr.Register(&procCmd{g: g, name: "deletedocs", synopsis: "Delete the demo customers",
		run: (*cosmosworker.Worker).DeleteDocuments}, "documents")
	cmdr.Register(&procCmd{g: g, name: "families", synopsis: "Create, query and delete the family documents",
		run: runFamilies}, "documents")
	cmdr.Register(&putCmd{g: g}, "documents")
	cmdr.Register(&getCmd{g: g}, "documents")
	cmdr.Register(&queryCmd{g: g}, "documents")

	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return int(subcommands.ExitSuccess)
		}
		return int(subcommands.ExitUsageError)
	}
	if err := godotenv.Load(g.env); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load %s: %v", g.env, err)
		return int(subcommands.ExitFailure)
	}
	flush, err := setupTelemetry(ctx, g.telemetry, os.Stderr)
	if err != nil {
		log.Printf("Failed to set up telemetry: %v", err)
		return int(subcommands.ExitUsageError)
	}
	defer flush(ctx)
	return int(cmdr.Execute(ctx))
}

// openAccount opens the account chosen by the flags and environment.
func (g *globalFlags) openAccount(ctx context.Context) (*cosmos.Account, func(), error) {
	u := g.account
	if u == "" {
		u = os.Getenv("COSMOS_ACCOUNT_URL")
	}
	if u != "" {
		a, err := cosmos.OpenAccount(ctx, u)
		if err != nil {
			return nil, nil, err
		}
		return a, closeAccount(a), nil
	}
	s, err := readSettings(ctx, g.config)
	if err != nil {
		return nil, nil, err
	}
	return setupAzureAccount(ctx, azurecosmos.AccountEndpoint(s.CosmosEndpoint), azurecosmos.AccountKey(s.CosmosMasterKey))
}

// openAzureAccount is a Wire provider function that opens an account with
// the client in o.
func openAzureAccount(ctx context.Context, o *azurecosmos.URLOpener) (*cosmos.Account, func(), error) {
	a, err := azurecosmos.OpenAccount(o.Client, &o.Options)
	if err != nil {
		return nil, nil, err
	}
	return a, closeAccount(a), nil
}

func closeAccount(a *cosmos.Account) func() {
	return func() {
		if err := a.Close(); err != nil {
			log.Printf("Failed to close account: %v", err)
		}
	}
}

// worker opens the account and returns a worker writing to stdout.
func (g *globalFlags) worker(ctx context.Context) (*cosmosworker.Worker, func(), error) {
	a, cleanup, err := g.openAccount(ctx)
	if err != nil {
		return nil, nil, err
	}
	return &cosmosworker.Worker{
		Account:     a,
		Out:         os.Stdout,
		DatabaseID:  g.db,
		ContainerID: g.container,
		NewID:       newID,
	}, cleanup, nil
}

// execute runs f with a worker, logging failures.
func (g *globalFlags) execute(ctx context.Context, f func(context.Context, *cosmosworker.Worker) error) subcommands.ExitStatus {
	w, cleanup, err := g.worker(ctx)
	if err != nil {
		log.Printf("Failed to open account: %v", err)
		return subcommands.ExitFailure
	}
	defer cleanup()
	if err := f(ctx, w); err != nil {
		log.Printf("Failed: %v", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func runFamilies(w *cosmosworker.Worker, ctx context.Context) error {
	if err := w.CreateFamilies(ctx); err != nil {
		return err
	}
	if err := w.ViewFamilies(ctx); err != nil {
		return err
	}
	return w.DeleteFamilies(ctx)
}

// procCmd runs one worker procedure that takes no arguments.
type procCmd struct {
	g        *globalFlags
	name     string
	synopsis string
	run      func(*cosmosworker.Worker, context.Context) error
}

func (c *procCmd) Name() string     { return c.name }
func (c *procCmd) Synopsis() string { return c.synopsis }
func (c *procCmd) Usage() string {
	return fmt.Sprintf(`%s

  %s.

  Example:
    cosmosdemo -account "mem://?file=account.json" %s`, c.name, c.synopsis, c.name) + helpSuffix
}

func (*procCmd) SetFlags(_ *flag.FlagSet) {}

func (c *procCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		return c.run(w, ctx)
	})
}

type databaseCmd struct {
	g        *globalFlags
	name     string
	synopsis string
	create   bool
}

func (c *databaseCmd) Name() string     { return c.name }
func (c *databaseCmd) Synopsis() string { return c.synopsis }
func (c *databaseCmd) Usage() string {
	return c.name + ` <database id>

  ` + c.synopsis + ` named <database id>.

  Example:
    cosmosdemo ` + c.name + ` demodb` + helpSuffix
}

func (*databaseCmd) SetFlags(_ *flag.FlagSet) {}

func (c *databaseCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		if c.create {
			return w.CreateDatabase(ctx, id)
		}
		return w.DeleteDatabase(ctx, id)
	})
}

type containersCmd struct {
	g *globalFlags
}

func (*containersCmd) Name() string     { return "containers" }
func (*containersCmd) Synopsis() string { return "List the containers in a database" }
func (*containersCmd) Usage() string {
	return `containers

  List the containers in the -db database with their throughput and
  partition key.

  Example:
    cosmosdemo -db demodb containers` + helpSuffix
}

func (*containersCmd) SetFlags(_ *flag.FlagSet) {}

func (c *containersCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		return w.ViewContainers(ctx, c.g.db)
	})
}

type createContainerCmd struct {
	g            *globalFlags
	throughput   int
	partitionKey string
}

func (*createContainerCmd) Name() string     { return "createcontainer" }
func (*createContainerCmd) Synopsis() string { return "Create a container" }
func (*createContainerCmd) Usage() string {
	return `createcontainer [-throughput <RU/s>] [-pk <path>] <container id>

  Create a container named <container id> in the -db database.

  Example:
    cosmosdemo -db demodb createcontainer -pk /address/postalCode mystore` + helpSuffix
}

func (c *createContainerCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.throughput, "throughput", int(cosmos.DefaultThroughput), "provisioned throughput in request units per second")
	f.StringVar(&c.partitionKey, "pk", cosmos.DefaultPartitionKeyPath, "partition key path")
}

func (c *createContainerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	if c.throughput < 0 || c.throughput > math.MaxInt32 {
		log.Printf("-throughput %d is out of range", c.throughput)
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		return w.CreateContainer(ctx, id, c.g.db, int32(c.throughput), c.partitionKey)
	})
}

type deleteContainerCmd struct {
	g *globalFlags
}

func (*deleteContainerCmd) Name() string     { return "deletecontainer" }
func (*deleteContainerCmd) Synopsis() string { return "Delete a container" }
func (*deleteContainerCmd) Usage() string {
	return `deletecontainer <container id>

  Delete the container named <container id> from the -db database.

  Example:
    cosmosdemo -db demodb deletecontainer mystore` + helpSuffix
}

func (*deleteContainerCmd) SetFlags(_ *flag.FlagSet) {}

func (c *deleteContainerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		return w.DeleteContainer(ctx, id, c.g.db)
	})
}

type putCmd struct {
	g  *globalFlags
	pk string
}

func (*putCmd) Name() string     { return "put" }
func (*putCmd) Synopsis() string { return "Create a document from JSON" }
func (*putCmd) Usage() string {
	return `put -pk <partition key> [<document JSON>]

  Create a document in the -container container of the -db database. The
  document is read from stdin when it is not given as an argument. The
  partition key is parsed as JSON when possible, and is a string otherwise.

  Example:
    cosmosdemo put -pk 98052 '{"id": "a", "address": {"postalCode": "98052"}}'` + helpSuffix
}

func (c *putCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pk, "pk", "null", "partition key value")
}

func (c *putCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	var doc string
	switch f.NArg() {
	case 0:
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			log.Printf("Failed to read stdin: %v", err)
			return subcommands.ExitFailure
		}
		doc = string(b)
	case 1:
		doc = f.Arg(0)
	default:
		f.Usage()
		return subcommands.ExitUsageError
	}
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		return w.PutDocument(ctx, cosmosworker.ParsePartitionKey(c.pk), doc)
	})
}

type getCmd struct {
	g  *globalFlags
	pk string
}

func (*getCmd) Name() string     { return "get" }
func (*getCmd) Synopsis() string { return "Print a document" }
func (*getCmd) Usage() string {
	return `get -pk <partition key> <document id>

  Print the document <document id> from the -container container of the -db
  database.

  Example:
    cosmosdemo get -pk 98052 a` + helpSuffix
}

func (c *getCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pk, "pk", "null", "partition key value")
}

func (c *getCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() != 1 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		return w.GetDocument(ctx, cosmosworker.ParsePartitionKey(c.pk), id)
	})
}

type queryCmd struct {
	g        *globalFlags
	pk       string
	pageSize int
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "Run a SQL query" }
func (*queryCmd) Usage() string {
	return `query [-pk <partition key>] [-n <page size>] <SQL>...

  Run a query against the -container container of the -db database and print
  each result. The arguments are joined with spaces to form the query.

  Example:
    cosmosdemo query SELECT VALUE c.id FROM c WHERE c.isNew = true` + helpSuffix
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.pk, "pk", "", "restrict the query to this partition key value")
	f.IntVar(&c.pageSize, "n", 0, "results per page; 0 uses the account default")
}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if f.NArg() == 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	sql := strings.Join(f.Args(), " ")
	opts := &cosmos.QueryOptions{MaxItemCount: int32(c.pageSize)}
	if c.pk != "" {
		pk := cosmosworker.ParsePartitionKey(c.pk)
		opts.PartitionKey = &pk
	}
	return c.g.execute(ctx, func(ctx context.Context, w *cosmosworker.Worker) error {
		return w.Query(ctx, sql, opts)
	})
}
