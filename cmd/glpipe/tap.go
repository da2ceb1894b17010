// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/glpipe/diag"
)

func newTapCmd(c *cli) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "tap [socket...]",
		Short: "Dump traffic from guest unix sockets",
		Long: `tap connects to each socket as a passive listener and appends whatever it
delivers to socket_<path>.log. Without arguments it monitors the guest's
well-known sockets under the configured rootfs. Missing sockets are
skipped. tap returns when every listener has ended or on interrupt.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = c.cfg.Debug.Dir
			}
			paths := args
			if len(paths) == 0 {
				paths = diag.DefaultPaths(c.cfg.Rootfs)
			}

			rec := diag.NewRecorder(dir, diag.WithMaxSize(c.cfg.Debug.MaxSizeMB))
			defer rec.Close()

			t := &diag.Tap{Paths: paths, Recorder: rec}
			t.Start(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "tapping %d sockets into %s\n", len(paths), dir)
			return t.Wait()
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default from config)")
	return cmd
}
