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

package cosmos

import (
	"context"
	"net/url"

	"github.com/cosmosdb-samples/gocosmos/internal/openurl"
)

// AccountURLOpener opens an account based on a URL.
// The opener must not modify the URL argument. It must be safe to call from
// multiple goroutines.
//
// This interface is generally implemented by types in driver packages.
type AccountURLOpener interface {
	OpenAccountURL(ctx context.Context, u *url.URL) (*Account, error)
}

// URLMux is a URL opener multiplexer. It matches the scheme of the URLs against
// a set of registered schemes and calls the opener that matches the URL's
// scheme.
//
// The zero value is a multiplexer with no registered scheme.
type URLMux struct {
	schemes openurl.SchemeMap
}

// AccountSchemes returns a sorted slice of the registered Account schemes.
func (mux *URLMux) AccountSchemes() []string { return mux.schemes.Schemes() }

// ValidAccountScheme returns true iff scheme has been registered for Accounts.
func (mux *URLMux) ValidAccountScheme(scheme string) bool { return mux.schemes.ValidScheme(scheme) }

// RegisterAccount registers the opener with the given scheme. If an opener
// already exists for the scheme, RegisterAccount panics.
func (mux *URLMux) RegisterAccount(scheme string, opener AccountURLOpener) {
	mux.schemes.Register("cosmos", "Account", scheme, opener)
}

// OpenAccount calls OpenAccountURL with the URL parsed from urlstr.
// OpenAccount is safe to call from multiple goroutines.
func (mux *URLMux) OpenAccount(ctx context.Context, urlstr string) (*Account, error) {
	opener, u, err := mux.schemes.FromString("Account", urlstr)
	if err != nil {
		return nil, err
	}
	return opener.(AccountURLOpener).OpenAccountURL(ctx, u)
}

// OpenAccountURL dispatches the URL to the opener that is registered with
// the URL's scheme. OpenAccountURL is safe to call from multiple goroutines.
func (mux *URLMux) OpenAccountURL(ctx context.Context, u *url.URL) (*Account, error) {
	opener, err := mux.schemes.FromURL("Account", u)
	if err != nil {
		return nil, err
	}
	return opener.(AccountURLOpener).OpenAccountURL(ctx, u)
}

var defaultURLMux = new(URLMux)

// DefaultURLMux returns the URLMux used by OpenAccount.
//
// Driver packages can use this to register their AccountURLOpener on the mux.
func DefaultURLMux() *URLMux {
	return defaultURLMux
}

// OpenAccount opens the account identified by the URL given.
// See the URLOpener documentation in driver subpackages for details
// on supported URL formats.
func OpenAccount(ctx context.Context, urlstr string) (*Account, error) {
	return defaultURLMux.OpenAccount(ctx, urlstr)
}
