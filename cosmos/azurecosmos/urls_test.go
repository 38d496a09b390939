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
	"net/url"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

func TestEndpointFromHost(t *testing.T) {
	for host, want := range map[string]AccountEndpoint{
		"myaccount.documents.azure.com": "https://myaccount.documents.azure.com/",
		"localhost:8081":                "https://localhost:8081/",
	} {
		if got := endpointFromHost(host); got != want {
			t.Errorf("endpointFromHost(%q) = %q, want %q", host, got, want)
		}
	}
}

func TestURLOpener(t *testing.T) {
	cred, err := azcosmos.NewKeyCredential("dGVzdGtleQ==")
	if err != nil {
		t.Fatal(err)
	}
	client, err := azcosmos.NewClientWithKey("https://localhost:8081/", cred, nil)
	if err != nil {
		t.Fatal(err)
	}
	o := &URLOpener{Client: client}
	tests := []struct {
		URL     string
		WantErr bool
	}{
		{"azurecosmos://localhost:8081", false},
		{"azurecosmos://localhost:8081?page_size=10", false},
		{"azurecosmos://localhost:8081?page_size=0", true},
		{"azurecosmos://localhost:8081?page_size=x", true},
		{"azurecosmos://localhost:8081?param=value", true},
	}
	ctx := context.Background()
	for _, test := range tests {
		u, err := url.Parse(test.URL)
		if err != nil {
			t.Fatal(err)
		}
		a, err := o.OpenAccountURL(ctx, u)
		if (err != nil) != test.WantErr {
			t.Errorf("%s: got error %v, want error %v", test.URL, err, test.WantErr)
		}
		if a != nil {
			a.Close()
		}
	}
}

func TestDefaultOpenerNeedsHost(t *testing.T) {
	u, _ := url.Parse("azurecosmos://")
	if _, err := new(defaultOpener).OpenAccountURL(context.Background(), u); err == nil {
		t.Error("got nil error for a URL without a host")
	}
}
