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

// Command eure is the CLI surface over the parser/document/schema/
// validate pipeline, built on github.com/spf13/cobra the way the
// teacher's cmd/cue/cmd builds its own root.go: a Command wrapping
// *cobra.Command, per-subcommand newXCmd(c) factories, and RunE closures
// that return a plain error (ErrPrintedError once diagnostics are already
// printed) rather than calling os.Exit directly.
package main

import (
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ErrPrintedError indicates diagnostics have already been written to
// stderr by the RunE that returned it, so Main must not print err itself
// again (the same role as the teacher's cmd/cue/cmd.ErrPrintedError).
var ErrPrintedError = errors.New("terminating because of errors")

// Command is the currently executing subcommand, with access back to the
// root for shared state (the same embedding shape as cmd/cue/cmd.Command).
type Command struct {
	*cobra.Command
	root   *cobra.Command
	hasErr bool
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = len(b) > 0
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer for diagnostic output; writing to it marks the
// command as having failed, the way cmd/cue/cmd.Command.Stderr does.
func (c *Command) Stderr() io.Writer { return (*errWriter)(c) }

// New builds the root command and wires every subcommand onto it.
func New(args []string) *Command {
	root := &cobra.Command{
		Use:           "eure",
		Short:         "eure reads, validates, and converts EURE documents",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	c := &Command{Command: root, root: root}

	root.AddCommand(
		newValidateCmd(c),
		newExportCmd(c),
	)
	root.SetArgs(args)
	return c
}

// Main runs the CLI and returns a process exit code.
func Main() int {
	c := New(os.Args[1:])
	if err := c.Execute(); err != nil {
		if err != ErrPrintedError {
			os.Stderr.WriteString(err.Error() + "\n")
		}
		return 1
	}
	if c.hasErr {
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
