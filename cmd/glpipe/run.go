// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"image/color"

	"github.com/spf13/cobra"

	"github.com/gogpu/glpipe"
	"github.com/gogpu/glpipe/config"
	"github.com/gogpu/glpipe/diag"
	"github.com/gogpu/glpipe/gralloc"
	"github.com/gogpu/glpipe/internal/guest"
	"github.com/gogpu/glpipe/pipe"
	"github.com/gogpu/glpipe/renderer"
)

var statusBackground = color.RGBA{R: 0x20, G: 0x24, B: 0x2c, A: 0xff}

// logInput stands in for the guest input subsystem and logs what it is
// given.
type logInput struct{}

func (logInput) Start(width, height int) error {
	glpipe.Logger().Info("input: started", "width", width, "height", height)
	return nil
}

func (logInput) Touch(ev renderer.PointerEvent) error {
	glpipe.Logger().Debug("input: touch", "action", ev.Action, "id", ev.PointerID, "x", ev.X, "y", ev.Y)
	return nil
}

func (logInput) Key(code int) error {
	glpipe.Logger().Debug("input: key", "code", code)
	return nil
}

func (c *cli) runInput(cmd *cobra.Command) error {
	d := c.cfg.Display
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting input system with dimensions: %dx%d\n", d.Width, d.Height)
	if err := (logInput{}).Start(d.Width, d.Height); err != nil {
		return err
	}
	fmt.Fprintln(out, "Input system started. Press Ctrl+C to exit.")
	<-cmd.Context().Done()
	return nil
}

// run boots the renderer on an offscreen surface and serves until the
// context ends.
func (c *cli) run(cmd *cobra.Command) error {
	cfg := c.cfg
	log := glpipe.Logger()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rec := diag.NewRecorder(cfg.Debug.Dir, diag.WithMaxSize(cfg.Debug.MaxSizeMB))
	rec.SetEnabled(cfg.Debug.Enabled)
	defer rec.Close()

	var tap *diag.Tap
	if cfg.Debug.Taps {
		tap = &diag.Tap{Paths: diag.DefaultPaths(cfg.Rootfs), Recorder: rec}
		tap.Start(ctx)
	}

	go func() {
		err := config.Watch(ctx, c.cfgFile, func(next *config.Config) {
			rec.SetEnabled(next.Debug.Enabled || c.debug)
		})
		if err != nil {
			log.Debug("config: watch stopped", "err", err)
		}
	}()

	opts := renderer.HostOptions{
		Dialer:   pipe.DeviceDialer{Path: cfg.Device},
		Input:    logInput{},
		Recorder: rec,
	}
	if c.loader != "" {
		opts.Launcher = &guest.Launcher{Rootfs: cfg.Rootfs, LogPath: cfg.GuestLog}
	}
	host := renderer.NewHost(opts)
	// The standalone binary links no legacy renderer library.
	if !cfg.Renderer.New {
		log.Warn("renderer: legacy path unavailable, using session path")
	}
	host.SelectRenderer(true)

	d := cfg.Display
	win := gralloc.NewMemoryWindow(d.Width, d.Height)
	surface, err := gralloc.New(win, d.Width, d.Height,
		gralloc.WithRecorder(rec), gralloc.WithOverlay("glpipe: starting"))
	if err != nil {
		return err
	}
	defer surface.Close()
	if err := surface.Fill(statusBackground); err != nil {
		log.Warn("gralloc: status frame failed", "err", err)
	}

	if err := host.WindowAttach(win, c.loader, d.Width, d.Height, d.XDPI, d.YDPI, d.FPS); err != nil {
		return err
	}
	if err := host.Wait(); err != nil {
		return fmt.Errorf("renderer start: %w", err)
	}

	snap := host.Session().Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "renderer running: session %s on %s (%dx%d)\n",
		snap.ID, snap.Endpoint, snap.Width, snap.Height)

	<-ctx.Done()
	if err := host.Destroy(); err != nil {
		log.Warn("renderer: destroy failed", "err", err)
	}
	cancel()
	if tap != nil {
		return tap.Wait()
	}
	return nil
}
