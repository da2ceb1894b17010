// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/gogpu/glpipe/protocol"
)

func newDecodeCmd(_ *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "decode <file|->",
		Short: "Decode a captured command stream",
		Long: `decode reads raw command words, as written to the pipe after the endpoint
handshake, and prints one command per line. Use - to read stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			cmds, err := protocol.DecodeAll(bufio.NewReader(r))
			out := cmd.OutOrStdout()
			for i, c := range cmds {
				fmt.Fprintf(out, "%4d  %s\n", i, c)
			}
			if err != nil {
				return fmt.Errorf("decode %s: after %d commands: %w", args[0], len(cmds), err)
			}
			return nil
		},
	}
}
