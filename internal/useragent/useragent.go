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

// Package useragent holds the client identity gocosmos drivers report to the
// services they connect to.
package useragent

// prefix starts every identity string.
const prefix = "gocosmos"

// maxLen is the longest application id Azure SDK clients send unmodified.
const maxLen = 24

// ApplicationID returns the identity to report for connections made by the
// named driver, such as "gocosmos-mongocosmos".
func ApplicationID(driver string) string {
	id := prefix + "-" + driver
	if len(id) > maxLen {
		id = id[:maxLen]
	}
	return id
}
