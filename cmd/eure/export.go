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

	"github.com/spf13/cobra"

	"eure.sh/eure/document"
	ejson "eure.sh/eure/encoding/json"
	etoml "eure.sh/eure/encoding/toml"
	eyaml "eure.sh/eure/encoding/yaml"
)

func newExportCmd(c *Command) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "project an EURE document to JSON, YAML, or TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			c.Command = cc
			_, doc, errs := parseAndBuild(args[0])
			if errs.HasErrors() {
				printDiagnostics(c, errs)
				return ErrPrintedError
			}

			v := doc.ToValue()
			data, err := marshalValue(v, out)
			if err != nil {
				fmt.Fprintln(c.Stderr(), err)
				return ErrPrintedError
			}
			_, err = cc.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "json", "output format: json, yaml, or toml")
	return cmd
}

func marshalValue(v *document.Value, format string) ([]byte, error) {
	switch format {
	case "json":
		return ejson.Marshal(v, "  ")
	case "yaml", "yml":
		return eyaml.Marshal(v)
	case "toml":
		return etoml.Marshal(v)
	default:
		return nil, fmt.Errorf("export: unknown output format %q", format)
	}
}
