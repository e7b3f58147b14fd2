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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eure.sh/eure/cst"
	"eure.sh/eure/document"
	"eure.sh/eure/errors"
	"eure.sh/eure/parser"
	"eure.sh/eure/schema"
	"eure.sh/eure/token"
	"eure.sh/eure/validate"
)

func newValidateCmd(c *Command) *cobra.Command {
	var schemaPath string
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "parse, build, and optionally schema-check an EURE file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			c.Command = cc
			store, doc, errs := parseAndBuild(args[0])
			if errs.HasErrors() {
				printDiagnostics(c, errs)
				return ErrPrintedError
			}
			if !doc.IsComplete() {
				fmt.Fprintln(c.Stderr(), "document contains unresolved holes")
			}
			if schemaPath == "" {
				return nil
			}

			sc, serrs := loadSchema(schemaPath)
			if serrs.HasErrors() {
				printDiagnostics(c, serrs)
				return ErrPrintedError
			}
			res := validate.Validate(store, doc, sc)
			printDiagnostics(c, res.Diagnostics)
			if !res.IsValid {
				return ErrPrintedError
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&schemaPath, "schema", "", "path to an EURE schema file to validate against")
	return cmd
}

func parseAndBuild(path string) (*cst.Store, *document.Document, *errors.List) {
	src, err := os.ReadFile(path)
	if err != nil {
		errs := &errors.List{}
		errs.Addf(errors.UnexpectedEndOfInput, token.Span{}, "cannot read %s: %v", path, err)
		return nil, nil, errs
	}
	store, perrs := parser.Parse(path, src)
	if perrs.HasErrors() {
		return store, nil, perrs
	}
	doc, berrs := document.Build(store)
	return store, doc, berrs
}

func loadSchema(path string) (*schema.Schema, *errors.List) {
	store, doc, errs := parseAndBuild(path)
	if errs.HasErrors() {
		return nil, errs
	}
	return schema.Extract(store, doc, nil)
}
