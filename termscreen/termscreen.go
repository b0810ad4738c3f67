// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package termscreen

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"os"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Opts represents the options available for this display.
type Opts struct {
	W int
	H int
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Lit is the color of pixels that are on. Defaults to a pale blue, like
	// most OLED panels.
	Lit color.Color
	// Out defaults to stdout. When Out is set, ANSI codes are used unless
	// Plain is set.
	Out   io.Writer
	Plain bool

	_ struct{}
}

// Dev is an OLED panel emulator that outputs to the console.
type Dev struct {
	w       io.Writer
	ansi    bool
	palette ansi256.Palette
	lit     string
	unlit   string

	img     *image1bit.VerticalLSB
	buf     bytes.Buffer
	cleared bool
}

// New returns a Dev that displays at the console.
func New(opts *Opts) *Dev {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	lit := opts.Lit
	if lit == nil {
		lit = color.NRGBA{0x80, 0xd0, 0xff, 0xff}
	}
	d := &Dev{
		palette: *p,
		img:     image1bit.NewVerticalLSB(image.Rect(0, 0, opts.W, opts.H)),
	}
	if opts.Out != nil {
		d.w = opts.Out
		d.ansi = !opts.Plain
	} else {
		d.w = colorable.NewColorableStdout()
		fd := os.Stdout.Fd()
		d.ansi = !opts.Plain && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	}
	if d.ansi {
		d.lit = d.palette.Block(color.NRGBAModel.Convert(lit).(color.NRGBA))
		d.unlit = d.palette.Block(color.NRGBA{0, 0, 0, 0xff})
	} else {
		d.lit = "#"
		d.unlit = "."
	}
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("TermScreen{%dx%d}", d.img.Rect.Dx(), d.img.Rect.Dy())
}

// Halt implements conn.Resource.
//
// It resets the terminal colors so the shell is not corrupted.
func (d *Dev) Halt() error {
	if !d.ansi {
		return nil
	}
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// ColorModel implements display.Drawer.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return d.img.Rect
}

// Draw implements display.Drawer.
func (d *Dev) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	r = r.Intersect(d.Bounds())
	draw.Src.Draw(d.img, r, src, sp)
	return d.refresh()
}

func (d *Dev) refresh() error {
	// This code is designed to minimize the amount of memory allocated per call.
	d.buf.Reset()
	if d.ansi {
		if !d.cleared {
			_, _ = d.buf.WriteString("\033[2J")
			d.cleared = true
		}
		_, _ = d.buf.WriteString("\033[H")
	}
	b := d.img.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if d.img.At(x, y) == image1bit.On {
				_, _ = d.buf.WriteString(d.lit)
			} else {
				_, _ = d.buf.WriteString(d.unlit)
			}
		}
		if d.ansi {
			_, _ = d.buf.WriteString("\033[0m")
		}
		_ = d.buf.WriteByte('\n')
	}
	if !d.ansi {
		_ = d.buf.WriteByte('\n')
	}
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ display.Drawer = &Dev{}
var _ fmt.Stringer = &Dev{}
