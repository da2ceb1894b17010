// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogpu/glpipe/pipe"
)

func newProbeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check the pipe device and report the negotiated endpoint",
		Long: `probe checks that the pipe device is accessible and negotiates an OpenGL ES
endpoint on it. The channel is closed again without sending any command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			d := pipe.DeviceDialer{Path: c.cfg.Device}

			ok := pipe.IsAvailable(d)
			fmt.Fprintf(out, "device:    %s\n", c.cfg.Device)
			fmt.Fprintf(out, "available: %t\n", ok)
			if !ok {
				return fmt.Errorf("probe %s: not accessible", c.cfg.Device)
			}

			ch, err := pipe.Negotiate(d)
			if err != nil {
				return err
			}
			defer ch.Close()
			ep := ch.Endpoint()
			fmt.Fprintf(out, "endpoint:  %s (OpenGL ES %d)\n", ep, ep.Version())
			return nil
		},
	}
}
