// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/config"
)

// cli holds the flags and the state shared by every subcommand.
type cli struct {
	cfgFile    string
	device     string
	width      int
	height     int
	loader     string
	startInput bool
	debug      bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "glpipe",
		Short: "Forward guest OpenGL ES rendering to the host over the pipe device",
		Long: `glpipe boots the guest renderer against an offscreen surface, negotiates
an OpenGL ES endpoint on the pipe device and launches the guest container.

With --start-input it starts only the input subsystem and waits.`,
		Version:       glpipe.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if c.startInput {
				return c.runInput(cmd)
			}
			return c.run(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", config.DefaultPath, "configuration file")
	pf.StringVar(&c.device, "device", "", "pipe device node (default from config)")
	pf.BoolVar(&c.debug, "debug", false, "enable debug logging and the diagnostic recorder")

	f := root.Flags()
	f.IntVar(&c.width, "width", 720, "virtual display width")
	f.IntVar(&c.height, "height", 1280, "virtual display height")
	f.StringVar(&c.loader, "loader", "", "loader library passed to the guest init")
	f.BoolVar(&c.startInput, "start-input", false, "start the input subsystem only")

	root.AddCommand(newProbeCmd(c), newTapCmd(c), newDecodeCmd(c))
	return root
}

// load reads the configuration and applies flag overrides on top of it.
func (c *cli) load(cmd *cobra.Command) error {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Display.Width = c.width
	}
	if flags.Changed("height") {
		cfg.Display.Height = c.height
	}
	if c.device != "" {
		cfg.Device = c.device
	}
	if c.debug {
		cfg.Debug.Enabled = true
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	installLogger(cmd.ErrOrStderr(), cfg.Level())
	return nil
}

func installLogger(w io.Writer, level slog.Level) {
	glpipe.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
