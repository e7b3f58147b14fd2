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

// Package internal holds the few types shared across this module's
// packages that don't belong to any one of them in particular.
package internal

import "github.com/cockroachdb/apd/v3"

// A Decimal is an arbitrary-precision, base-10 number, used for the
// Integer content of a Document node (spec.md §3.4). Float content uses a
// plain float64 instead, since spec.md describes it as "f64 + specials".
//
// Right now Decimal is aliased to apd.Decimal. This may change in the future.
type Decimal = apd.Decimal

// DecimalContext is the rounding/precision context applied when a Decimal
// is produced by arithmetic (the document builder only ever parses literals,
// with apd.NewFromString, and needs no context; the validator uses this one
// for the $multiple-of remainder).
var DecimalContext = apd.BaseContext.WithPrecision(100)
