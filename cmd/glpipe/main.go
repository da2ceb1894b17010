// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command glpipe runs the guest renderer bridge outside the host app.
//
// Without a subcommand it boots the renderer against an offscreen surface
// and keeps it running until interrupted:
//
//	glpipe --width 720 --height 1280 --loader /system/lib64/libloader.so
//
// The probe, tap and decode subcommands help diagnose a device.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
