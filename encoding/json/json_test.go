// Copyright 2018 The CUE Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package json_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"eure.sh/eure/document"
	ejson "eure.sh/eure/encoding/json"
)

func TestUnmarshalRoundTrip(t *testing.T) {
	v, err := ejson.Unmarshal([]byte(`{"a": 32, "b": [1, 2.5, "x", null, true]}`))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.Kind, document.ContentMap))

	out, err := ejson.Marshal(v, "")
	qt.Assert(t, qt.IsNil(err))

	v2, err := ejson.Unmarshal(out)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(v2.Map), len(v.Map)))
}

func TestUnmarshalIntegerPrecision(t *testing.T) {
	v, err := ejson.Unmarshal([]byte(`12345678901234567890`))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.Kind, document.ContentInteger))
	qt.Assert(t, qt.Equals(v.Integer.String(), "12345678901234567890"))
}

func TestUnmarshalFloat(t *testing.T) {
	v, err := ejson.Unmarshal([]byte(`1.5e2`))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.Kind, document.ContentFloat))
	qt.Assert(t, qt.Equals(v.Float, 150.0))
}

func TestMarshalHoleFails(t *testing.T) {
	_, err := ejson.Marshal(&document.Value{Kind: document.ContentHole}, "")
	qt.Assert(t, err != nil)
}

func TestMarshalIndent(t *testing.T) {
	v := &document.Value{
		Kind: document.ContentMap,
		Map: []document.ValueEntry{
			{Key: document.StringKey("a"), Value: &document.Value{Kind: document.ContentInteger}},
		},
	}
	out, err := ejson.Marshal(v, "  ")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(string(out), "{\n  \"a\": 0\n}\n"))
}
