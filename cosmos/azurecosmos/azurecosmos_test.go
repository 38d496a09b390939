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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
	"github.com/google/go-cmp/cmp"

	"github.com/cosmosdb-samples/gocosmos/cosmos"
	"github.com/cosmosdb-samples/gocosmos/cosmos/driver"
	"github.com/cosmosdb-samples/gocosmos/cosmos/drivertest"
	"github.com/cosmosdb-samples/gocosmos/cosmoserrors"
)

// Conformance tests run against a live account or the emulator named by
// AZURE_COSMOS_ENDPOINT, authenticating with AZURE_COSMOS_KEY.
type harness struct {
	client *azcosmos.Client
}

func newHarness(ctx context.Context, t *testing.T) (drivertest.Harness, error) {
	endpoint := os.Getenv("AZURE_COSMOS_ENDPOINT")
	if endpoint == "" {
		t.Skip("AZURE_COSMOS_ENDPOINT is not set")
	}
	client, err := NewClient(AccountEndpoint(endpoint), AccountKey(os.Getenv("AZURE_COSMOS_KEY")))
	if err != nil {
		return nil, err
	}
	return &harness{client: client}, nil
}

func (h *harness) MakeAccount(context.Context) (driver.Account, error) {
	return openAccount(h.client, nil)
}

func (*harness) ReportsThroughput() bool { return true }

func (*harness) ExactIntegers() bool { return false }

func (*harness) Close() {}

type verifyAs struct{}

func (verifyAs) Name() string { return "verify As" }

func (verifyAs) AccountCheck(a *cosmos.Account) error {
	var client *azcosmos.Client
	if !a.As(&client) {
		return errors.New("Account.As failed")
	}
	if client == nil {
		return errors.New("Account.As returned a nil client")
	}
	return nil
}

func (verifyAs) ErrorCheck(a *cosmos.Account, err error) error {
	var rerr *azcore.ResponseError
	if !a.ErrorAs(err, &rerr) {
		return errors.New("Account.ErrorAs failed")
	}
	if rerr.StatusCode != http.StatusNotFound {
		return fmt.Errorf("got status %d, want %d", rerr.StatusCode, http.StatusNotFound)
	}
	return nil
}

func TestConformance(t *testing.T) {
	drivertest.RunConformanceTests(t, newHarness, []drivertest.AsTest{verifyAs{}})
}

// azurecosmos-specific tests.

func TestErrorCode(t *testing.T) {
	a := &account{}
	for _, test := range []struct {
		status int
		want   cosmoserrors.ErrorCode
	}{
		{http.StatusBadRequest, cosmoserrors.InvalidArgument},
		{http.StatusUnauthorized, cosmoserrors.PermissionDenied},
		{http.StatusForbidden, cosmoserrors.PermissionDenied},
		{http.StatusNotFound, cosmoserrors.NotFound},
		{http.StatusConflict, cosmoserrors.AlreadyExists},
		{http.StatusPreconditionFailed, cosmoserrors.FailedPrecondition},
		{http.StatusRequestEntityTooLarge, cosmoserrors.InvalidArgument},
		{http.StatusTooManyRequests, cosmoserrors.ResourceExhausted},
		{http.StatusInternalServerError, cosmoserrors.Internal},
	} {
		err := fmt.Errorf("wrapped: %w", &azcore.ResponseError{StatusCode: test.status})
		if got := a.ErrorCode(err); got != test.want {
			t.Errorf("status %d: got %v, want %v", test.status, got, test.want)
		}
	}
	if got := a.ErrorCode(errors.New("plain")); got != cosmoserrors.Unknown {
		t.Errorf("plain error: got %v, want Unknown", got)
	}
}

func TestPartitionKey(t *testing.T) {
	for _, test := range []struct {
		value any
		want  azcosmos.PartitionKey
	}{
		{"11229", azcosmos.NewPartitionKeyString("11229")},
		{float64(7), azcosmos.NewPartitionKeyNumber(7)},
		{7, azcosmos.NewPartitionKeyNumber(7)},
		{int64(7), azcosmos.NewPartitionKeyNumber(7)},
		{json.Number("7"), azcosmos.NewPartitionKeyNumber(7)},
		{true, azcosmos.NewPartitionKeyBool(true)},
		{nil, azcosmos.NullPartitionKey},
	} {
		got, err := partitionKey(driver.PartitionKey{Value: test.value})
		if err != nil {
			t.Errorf("%v: %v", test.value, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, cmp.AllowUnexported(azcosmos.PartitionKey{})); diff != "" {
			t.Errorf("%v: mismatch (-want +got):\n%s", test.value, diff)
		}
	}
	if _, err := partitionKey(driver.PartitionKey{Value: []string{"a"}}); cosmoserrors.Code(err) != cosmoserrors.InvalidArgument {
		t.Errorf("slice partition key: got %v, want InvalidArgument", err)
	}
}

func TestThroughputProperties(t *testing.T) {
	manual := throughputProperties(driver.Throughput{Manual: 400})
	if n, ok := manual.ManualThroughput(); !ok || n != 400 {
		t.Errorf("manual: got %d, %v; want 400", n, ok)
	}
	auto := throughputProperties(driver.Throughput{AutoscaleMax: 4000})
	if n, ok := auto.AutoscaleMaxThroughput(); !ok || n != 4000 {
		t.Errorf("autoscale: got %d, %v; want 4000", n, ok)
	}
}

func TestOpenAccountNilClient(t *testing.T) {
	if _, err := OpenAccount(nil, nil); cosmoserrors.Code(err) != cosmoserrors.InvalidArgument {
		t.Errorf("got %v, want InvalidArgument", err)
	}
}
