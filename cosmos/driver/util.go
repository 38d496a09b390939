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

package driver

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/cosmosdb-samples/gocosmos/internal/gcerr"
)

// ToJSONObject converts a document into a decoded JSON object and its
// canonical encoding. doc may be a string, []byte or json.RawMessage holding
// JSON text, or any value encoding/json can marshal into an object.
func ToJSONObject(doc any) (map[string]any, []byte, error) {
	var data []byte
	switch d := doc.(type) {
	case nil:
		return nil, nil, gcerr.Newf(gcerr.InvalidArgument, nil, "document is nil")
	case string:
		data = []byte(d)
	case []byte:
		data = d
	case json.RawMessage:
		data = d
	default:
		var err error
		data, err = json.Marshal(doc)
		if err != nil {
			return nil, nil, gcerr.Newf(gcerr.InvalidArgument, err, "encoding document of type %T", doc)
		}
	}
	m, err := DecodeObject(data)
	if err != nil {
		return nil, nil, err
	}
	canon, err := json.Marshal(m)
	if err != nil {
		return nil, nil, gcerr.Newf(gcerr.Internal, err, "re-encoding document")
	}
	return m, canon, nil
}

// DecodeObject decodes JSON text that must hold an object. Numbers are
// decoded as json.Number so that re-encoding the object preserves them
// exactly.
func DecodeObject(data []byte) (map[string]any, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "document is not a JSON object")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, gcerr.Newf(gcerr.InvalidArgument, err, "decoding document")
	}
	if dec.InputOffset() != int64(len(data)) {
		return nil, gcerr.Newf(gcerr.InvalidArgument, nil, "document has data after the JSON object")
	}
	return m, nil
}

// ItemID returns the "id" property of a decoded document.
func ItemID(m map[string]any) (string, error) {
	v, ok := m["id"]
	if !ok {
		return "", gcerr.Newf(gcerr.InvalidArgument, nil, `document has no "id" property`)
	}
	id, ok := v.(string)
	if !ok {
		return "", gcerr.Newf(gcerr.InvalidArgument, nil, `document "id" property is a %T, not a string`, v)
	}
	if id == "" {
		return "", gcerr.Newf(gcerr.InvalidArgument, nil, `document "id" property is empty`)
	}
	return id, nil
}

// SplitPath splits a partition key path such as "/address/postalCode" into
// its segments.
func SplitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// PartitionKeyValue extracts the value at path from a decoded document. It
// reports false if some segment of the path is missing.
func PartitionKeyValue(doc map[string]any, path string) (any, bool) {
	var cur any = doc
	for _, seg := range SplitPath(path) {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// AsFunc creates and returns an "as function" that behaves as follows:
// If its argument is a pointer to the same type as val, the argument is set to val
// and the function returns true. Otherwise, the function returns false.
func AsFunc(val any) func(any) bool {
	rval := reflect.ValueOf(val)
	wantType := reflect.PointerTo(rval.Type())
	return func(i any) bool {
		if i == nil {
			return false
		}
		ri := reflect.ValueOf(i)
		if ri.Type() != wantType {
			return false
		}
		ri.Elem().Set(rval)
		return true
	}
}
