// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package termscreen implements a monochrome 2D display.Drawer that outputs
// to a terminal using ANSI color codes, or plain ASCII art when the output is
// not a terminal.
//
// Useful to run the temperature display on a workstation, without the OLED
// wired.
package termscreen
