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

package yaml_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"eure.sh/eure/document"
	eyaml "eure.sh/eure/encoding/yaml"
)

func TestUnmarshalScalarKinds(t *testing.T) {
	v, err := eyaml.Unmarshal([]byte("a: 1\nb: 2.5\nc: true\nd: null\ne: text\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v.Kind, document.ContentMap))
	qt.Assert(t, qt.Equals(len(v.Map), 5))
	qt.Assert(t, qt.Equals(v.Map[0].Value.Kind, document.ContentInteger))
	qt.Assert(t, qt.Equals(v.Map[1].Value.Kind, document.ContentFloat))
	qt.Assert(t, qt.Equals(v.Map[2].Value.Kind, document.ContentBool))
	qt.Assert(t, qt.Equals(v.Map[3].Value.Kind, document.ContentNull))
	qt.Assert(t, qt.Equals(v.Map[4].Value.Kind, document.ContentString))
}

func TestMarshalRoundTrip(t *testing.T) {
	v := &document.Value{
		Kind: document.ContentMap,
		Map: []document.ValueEntry{
			{Key: document.StringKey("name"), Value: &document.Value{Kind: document.ContentString, Text: "joe"}},
		},
	}
	out, err := eyaml.Marshal(v)
	qt.Assert(t, qt.IsNil(err))

	v2, err := eyaml.Unmarshal(out)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(v2.Map[0].Value.Text, "joe"))
}

func TestUnmarshalStream(t *testing.T) {
	vs, err := eyaml.UnmarshalStream([]byte("a: 1\n---\nb: 2\n"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(vs), 2))
}

func TestMarshalHoleFails(t *testing.T) {
	_, err := eyaml.Marshal(&document.Value{Kind: document.ContentHole})
	qt.Assert(t, err != nil)
}
