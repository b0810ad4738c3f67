// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package readout

import (
	"errors"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// SplashLines is the start up banner.
var SplashLines = []string{DefaultLabel, "temperature", "display"}

// Splash draws lines centered on d.
func Splash(d display.Drawer, face font.Face, lines ...string) error {
	if len(lines) == 0 {
		return errors.New("readout: nothing to draw")
	}
	b := d.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetColor(color.Black)
	dc.Clear()
	dc.SetColor(color.White)
	dc.SetFontFace(face)

	lh := float64(face.Metrics().Height.Ceil())
	top := (h - lh*float64(len(lines))) / 2
	for i, l := range lines {
		dc.DrawStringAnchored(l, w/2, top+lh*(float64(i)+0.5), 0.5, 0.5)
	}

	// Anti aliased edges are thresholded by the 1 bit color model.
	img := image1bit.NewVerticalLSB(b)
	draw.Draw(img, b, dc.Image(), image.Point{}, draw.Src)
	return d.Draw(b, img, b.Min)
}
