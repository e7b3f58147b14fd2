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

package main

import (
	"io"
	"os"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"eure.sh/eure/errors"
)

// getLang mirrors cmd/cue/cmd/common.go's getLang: the locale backing the
// CLI's localized printer comes from the environment, not a flag, since
// nothing in this module's data model carries a user-facing locale of its
// own outside schema.Type.Lang.
func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc = strings.Split(loc, ".")[0]
	return language.Make(loc)
}

// printDiagnostics writes every diagnostic in errs to cmd's stderr,
// followed by one pluralized summary line per non-zero count ("2 errors",
// "1 warning") formatted through a message.Printer, the same pairing cmd/cue/cmd/
// common.go uses for its own localized error count.
func printDiagnostics(cmd *Command, errs *errors.List) {
	if errs.Len() == 0 {
		return
	}
	w := cmd.Stderr()
	for _, d := range errs.All() {
		io.WriteString(w, d.Error()+"\n")
	}

	var nerr, nwarn int
	for _, d := range errs.All() {
		switch d.Severity() {
		case errors.SevError:
			nerr++
		case errors.SevWarning:
			nwarn++
		}
	}

	p := message.NewPrinter(getLang())
	if nerr > 0 {
		io.WriteString(w, p.Sprintf("%d %s\n", nerr, plural(nerr, "error", "errors")))
	}
	if nwarn > 0 {
		io.WriteString(w, p.Sprintf("%d %s\n", nwarn, plural(nwarn, "warning", "warnings")))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
