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

package cosmosworker

// Customer is the typed form of the demo documents.
type Customer struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Address *Address `json:"address,omitempty"`
	IsNew   bool     `json:"isNew,omitempty"`
}

// Address is a customer's postal address. PostalCode is the partition key
// of the demo container.
type Address struct {
	AddressType       string    `json:"addressType,omitempty"`
	AddressLine1      string    `json:"addressLine1,omitempty"`
	Location          *Location `json:"location,omitempty"`
	PostalCode        string    `json:"postalCode"`
	CountryRegionName string    `json:"countryRegionName,omitempty"`
}

// Location is the city part of an Address.
type Location struct {
	City              string `json:"city"`
	StateProvinceName string `json:"stateProvinceName,omitempty"`
}

// Family is a household with children, used by the families query.
type Family struct {
	ID       string   `json:"id"`
	LastName string   `json:"lastName"`
	Address  *Address `json:"address,omitempty"`
	Kids     []Child  `json:"kids"`
}

// Child is a member of a Family.
type Child struct {
	FirstName string `json:"firstName"`
	Grade     int    `json:"grade"`
}
