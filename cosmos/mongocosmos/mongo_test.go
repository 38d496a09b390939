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

// To run the conformance tests, point MONGO_SERVER_URL at a MongoDB server,
// for example one started with
//
//	docker run -d -p 27017:27017 mongo
//
// and set MONGO_CUSTOM_ACTIONS=true when the server is an Azure Cosmos DB
// for MongoDB account.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/cosmossql"
	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/cosmos/drivertest"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

type harness struct {
	client        *mongo.Client
	customActions bool
}

func newHarness(ctx context.Context, t *testing.T) (drivertest.Harness, error) {
	uri := os.Getenv("MONGO_SERVER_URL")
	if uri == "" {
		t.Skip("MONGO_SERVER_URL is not set")
	}
	customActions, _ := strconv.ParseBool(os.Getenv("MONGO_CUSTOM_ACTIONS"))
	client, err := Dial(ctx, uri)
	if err != nil {
		return nil, err
	}
	// The client doesn't actually connect until the first RPC, so time out
	// quickly if there's a problem.
	tctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(tctx, nil); err != nil {
		return nil, fmt.Errorf("connecting to %s: %v", uri, err)
	}
	return &harness{client: client, customActions: customActions}, nil
}

func (h *harness) MakeAccount(context.Context) (driver.Account, error) {
	return openAccount(h.client, &Options{DisableCustomActions: !h.customActions})
}

func (h *harness) ReportsThroughput() bool { return h.customActions }

func (*harness) ExactIntegers() bool { return true }

func (h *harness) Close() { h.client.Disconnect(context.Background()) }

type verifyAs struct{}

func (verifyAs) Name() string { return "verify As" }

func (verifyAs) AccountCheck(a *cosmos.Account) error {
	var client *mongo.Client
	if !a.As(&client) {
		return errors.New("Account.As failed")
	}
	return nil
}

func (verifyAs) ErrorCheck(a *cosmos.Account, err error) error {
	// Missing databases are detected before any command fails.
	var cerr mongo.CommandError
	if a.ErrorAs(err, &cerr) {
		return errors.New("Account.ErrorAs reported a command error for a missing database")
	}
	return nil
}

func TestConformance(t *testing.T) {
	drivertest.RunConformanceTests(t, newHarness, []drivertest.AsTest{verifyAs{}})
}

// mongocosmos-specific tests.

func TestErrorCode(t *testing.T) {
	a := &account{}
	for _, test := range []struct {
		err  error
		want cosmoserrors.ErrorCode
	}{
		{mongo.ErrNoDocuments, cosmoserrors.NotFound},
		{fmt.Errorf("wrapped: %w", mongo.ErrNoDocuments), cosmoserrors.NotFound},
		{mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, cosmoserrors.AlreadyExists},
		{mongo.CommandError{Code: 48}, cosmoserrors.AlreadyExists},
		{mongo.CommandError{Code: 26}, cosmoserrors.NotFound},
		{mongo.CommandError{Code: 13}, cosmoserrors.PermissionDenied},
		{mongo.CommandError{Code: 59}, cosmoserrors.Unimplemented},
		{mongo.CommandError{Code: 16500}, cosmoserrors.ResourceExhausted},
		{mongo.CommandError{Code: 1}, cosmoserrors.Unknown},
		{&cosmossql.Error{Pos: 1, Msg: "bad"}, cosmoserrors.InvalidArgument},
		{errors.New("plain"), cosmoserrors.Unknown},
	} {
		if got := a.ErrorCode(test.err); got != test.want {
			t.Errorf("%v: got %v, want %v", test.err, got, test.want)
		}
	}
}

func TestDocumentID(t *testing.T) {
	for _, test := range []struct {
		pk   any
		want string
	}{
		{"11229", `["11229","a"]`},
		{float64(7), `[7,"a"]`},
		{nil, `[null,"a"]`},
		{true, `[true,"a"]`},
	} {
		if got := documentID(test.pk, "a"); got != test.want {
			t.Errorf("documentID(%v) = %s, want %s", test.pk, got, test.want)
		}
	}
}

func TestFromBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: `["11229","a"]`},
		{Key: orderField, Value: primitive.NewObjectID()},
		{Key: "id", Value: "a"},
		{Key: "count", Value: int32(2)},
		{Key: "n", Value: int64(9007199254740993)},
		{Key: "address", Value: bson.D{{Key: "city", Value: "Brooklyn"}}},
		{Key: "kids", Value: bson.A{"Jesse"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := fromBSON(raw)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := driver.DecodeObject(got)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"id":      "a",
		"count":   json.Number("2"),
		"n":       json.Number("9007199254740993"),
		"address": map[string]any{"city": "Brooklyn"},
		"kids":    []any{"Jesse"},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestStoredDocumentOrder(t *testing.T) {
	first := storedDocument(`["11229","a"]`, bson.D{{Key: "_ts", Value: 1.0}})
	second := storedDocument(`["11229","b"]`, bson.D{{Key: "_ts", Value: 1.0}})
	for _, d := range []bson.D{first, second} {
		if d[0].Key != "_id" || d[1].Key != orderField {
			t.Fatalf("got keys %q, %q; want _id, %s", d[0].Key, d[1].Key, orderField)
		}
	}
	// Writes in the same second still sort in write order.
	a, b := first[1].Value.(primitive.ObjectID), second[1].Value.(primitive.ObjectID)
	if bytes.Compare(a[:], b[:]) >= 0 {
		t.Errorf("order of second write %s is not after first %s", b.Hex(), a.Hex())
	}
	want := bson.D{{Key: "_ts", Value: 1}, {Key: orderField, Value: 1}}
	if diff := cmp.Diff(want, resultOrder); diff != "" {
		t.Errorf("resultOrder mismatch (-want +got):\n%s", diff)
	}
}

func TestThroughputCommand(t *testing.T) {
	base := bson.D{{Key: "customAction", Value: "CreateDatabase"}}
	for _, test := range []struct {
		tp   *driver.Throughput
		want bson.D
	}{
		{nil, base},
		{&driver.Throughput{Manual: 400}, append(base[:1:1], bson.E{Key: "offerThroughput", Value: int32(400)})},
		{&driver.Throughput{AutoscaleMax: 4000}, append(base[:1:1], bson.E{Key: "autoScaleSettings", Value: bson.D{{Key: "maxThroughput", Value: int32(4000)}}})},
	} {
		got := throughputCommand(base[:1:1], test.tp)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%v: mismatch (-want +got):\n%s", test.tp, diff)
		}
	}
}

func TestOpenAccountNilClient(t *testing.T) {
	if _, err := OpenAccount(nil, nil); cosmoserrors.Code(err) != cosmoserrors.InvalidArgument {
		t.Errorf("got %v, want InvalidArgument", err)
	}
}
