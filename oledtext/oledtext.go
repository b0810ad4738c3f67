// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oledtext

import (
	"fmt"
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const pageHeight = 8

// Console is a text cursor on a display.Drawer.
type Console struct {
	d        display.Drawer
	face     font.Face
	img      *image1bit.VerticalLSB
	ascent   int
	lineRows int
	row      int
	col      int
}

// New returns a Console drawing with face on d. The frame buffer starts
// blank; call Clear to blank the display itself.
func New(d display.Drawer, face font.Face) *Console {
	m := face.Metrics()
	h := (m.Ascent + m.Descent).Ceil()
	lineRows := (h + pageHeight - 1) / pageHeight
	if lineRows < 1 {
		lineRows = 1
	}
	return &Console{
		d:        d,
		face:     face,
		img:      image1bit.NewVerticalLSB(d.Bounds()),
		ascent:   m.Ascent.Ceil(),
		lineRows: lineRows,
	}
}

// Rows returns the number of 8 pixel rows of the display.
func (c *Console) Rows() int {
	return c.img.Rect.Dy() / pageHeight
}

// LineRows returns the number of rows a line of text occupies.
func (c *Console) LineRows() int {
	return c.lineRows
}

// Width returns the display width in pixels.
func (c *Console) Width() int {
	return c.img.Rect.Dx()
}

// Advance returns the width in pixels s takes when printed.
func (c *Console) Advance(s string) int {
	return font.MeasureString(c.face, s).Ceil()
}

// SetRow moves the cursor to row.
func (c *Console) SetRow(row int) error {
	if row < 0 || row >= c.Rows() {
		return fmt.Errorf("oledtext: row %d out of range [0, %d)", row, c.Rows())
	}
	c.row = row
	return nil
}

// SetCol moves the cursor to the pixel column col.
func (c *Console) SetCol(col int) error {
	if col < 0 || col >= c.Width() {
		return fmt.Errorf("oledtext: column %d out of range [0, %d)", col, c.Width())
	}
	c.col = col
	return nil
}

// Cursor returns the current row and column.
func (c *Console) Cursor() (row, col int) {
	return c.row, c.col
}

// Print draws s at the cursor and advances the cursor by its width.
//
// The cells covered by s are cleared first so shorter values do not leave
// stale pixels behind. Text past the right edge is clipped.
func (c *Console) Print(s string) error {
	b := c.img.Rect
	top := b.Min.Y + c.row*pageHeight
	left := b.Min.X + c.col
	adv := c.Advance(s)
	cell := image.Rect(left, top, left+adv, top+c.lineRows*pageHeight).Intersect(b)
	draw.Draw(c.img, cell, &image.Uniform{C: image1bit.Off}, image.Point{}, draw.Src)
	drawer := font.Drawer{
		Dst:  c.img,
		Src:  &image.Uniform{C: image1bit.On},
		Face: c.face,
		Dot:  fixed.P(left, top+c.ascent),
	}
	drawer.DrawString(s)
	c.col += adv
	return c.flush()
}

// Println prints s then moves the cursor to the start of the next line,
// wrapping to the top.
func (c *Console) Println(s string) error {
	if err := c.Print(s); err != nil {
		return err
	}
	c.col = 0
	c.row += c.lineRows
	if c.row+c.lineRows > c.Rows() {
		c.row = 0
	}
	return nil
}

// Clear blanks the display and moves the cursor home.
func (c *Console) Clear() error {
	draw.Draw(c.img, c.img.Rect, &image.Uniform{C: image1bit.Off}, image.Point{}, draw.Src)
	c.row, c.col = 0, 0
	return c.flush()
}

// Frame returns the frame buffer. It must not be modified.
func (c *Console) Frame() *image1bit.VerticalLSB {
	return c.img
}

// Halt implements conn.Resource by halting the underlying display.
func (c *Console) Halt() error {
	return c.d.Halt()
}

func (c *Console) String() string {
	return fmt.Sprintf("oledtext{%s}", c.d)
}

func (c *Console) flush() error {
	return c.d.Draw(c.d.Bounds(), c.img, c.img.Rect.Min)
}

var _ conn.Resource = &Console{}
