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

package useragent

import "testing"

func TestApplicationID(t *testing.T) {
	for _, test := range []struct {
		driver, want string
	}{
		{"azurecosmos", "gocosmos-azurecosmos"},
		{"mongocosmos", "gocosmos-mongocosmos"},
		{"a-driver-with-a-long-name", "gocosmos-a-driver-with-a"},
	} {
		if got := ApplicationID(test.driver); got != test.want {
			t.Errorf("ApplicationID(%q) = %q, want %q", test.driver, got, test.want)
		}
	}
}
