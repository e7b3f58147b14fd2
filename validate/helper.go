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

package validate

import (
	"eure.sh/eure/document"
	"eure.sh/eure/errors"
)

func appendPath(path []string, seg string) []string {
	out := make([]string, len(path)+1)
	copy(out, path)
	out[len(path)] = seg
	return out
}

// appendAll merges src's diagnostics into dst, in order.
func appendAll(dst, src *errors.List) {
	for _, d := range src.All() {
		dst.Add(d)
	}
}

func segmentName(s document.Segment) string {
	switch s.Kind {
	case document.SegIdent:
		return s.Name
	case document.SegString:
		return s.Str
	default:
		return ""
	}
}
