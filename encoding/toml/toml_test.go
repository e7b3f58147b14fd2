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

package toml_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"eure.sh/eure/document"
	etoml "eure.sh/eure/encoding/toml"
)

func TestUnmarshalBasic(t *testing.T) {
	v, err := etoml.Unmarshal([]byte("name = \"joe\"\nage = 42\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.Kind, document.ContentMap))
	qt.Assert(t, qt.Equals(len(v.Map), 2))
}

func TestMarshalRequiresMapRoot(t *testing.T) {
	_, err := etoml.Marshal(&document.Value{Kind: document.ContentInteger})
	qt.Assert(t, err != nil)
}

func TestMarshalRoundTrip(t *testing.T) {
	v := &document.Value{
		Kind: document.ContentMap,
		Map: []document.ValueEntry{
			{Key: document.StringKey("name"), Value: &document.Value{Kind: document.ContentString, Text: "joe"}},
		},
	}
	out, err := etoml.Marshal(v)
	qt.Assert(t, qt.IsNil(err))

	v2, err := etoml.Unmarshal(out)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v2.Map[0].Value.Text, "joe"))
}

func TestMarshalHoleFails(t *testing.T) {
	v := &document.Value{
		Kind: document.ContentMap,
		Map: []document.ValueEntry{
			{Key: document.StringKey("a"), Value: &document.Value{Kind: document.ContentHole}},
		},
	}
	_, err := etoml.Marshal(v)
	qt.Assert(t, err != nil)
}
