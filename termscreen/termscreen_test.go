// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termscreen

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/maruel/ansi256"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

func TestPlain(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{W: 4, H: 2, Out: &out, Plain: true})
	if b := d.Bounds(); b != image.Rect(0, 0, 4, 2) {
		t.Fatalf("Bounds() = %v", b)
	}
	img := image1bit.NewVerticalLSB(d.Bounds())
	img.SetBit(0, 0, image1bit.On)
	img.SetBit(3, 1, image1bit.On)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "#...\n...#\n\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	out.Reset()
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Errorf("Halt wrote %q in plain mode", out.String())
	}
}

func TestPartialDraw(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{W: 4, H: 1, Out: &out, Plain: true})
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 4, 8))
	for x := 0; x < 4; x++ {
		img.SetBit(x, 0, image1bit.On)
	}
	if err := d.Draw(image.Rect(2, 0, 10, 1), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "..##\n\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestANSI(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{W: 2, H: 1, Out: &out})
	img := image1bit.NewVerticalLSB(d.Bounds())
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if strings.Count(s, "\033[2J") != 1 {
		t.Errorf("screen must be cleared once: %q", s)
	}
	if strings.Count(s, "\033[H") != 2 {
		t.Errorf("cursor must go home on each frame: %q", s)
	}
	if err := d.Halt(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(out.String(), "\033[0m\n") {
		t.Error("Halt must reset colors")
	}
	if d.String() != "TermScreen{2x1}" {
		t.Errorf("String() = %q", d.String())
	}
}

func TestANSILitColor(t *testing.T) {
	var out bytes.Buffer
	d := New(&Opts{W: 2, H: 1, Out: &out, Lit: color.Gray{Y: 0xff}})
	img := image1bit.NewVerticalLSB(d.Bounds())
	img.SetBit(0, 0, image1bit.On)
	if err := d.Draw(d.Bounds(), img, image.Point{}); err != nil {
		t.Fatal(err)
	}
	white := ansi256.Default.Block(color.NRGBA{0xff, 0xff, 0xff, 0xff})
	black := ansi256.Default.Block(color.NRGBA{0, 0, 0, 0xff})
	if !strings.Contains(out.String(), white+black) {
		t.Errorf("lit pixel not rendered in the requested color: %q", out.String())
	}
}
