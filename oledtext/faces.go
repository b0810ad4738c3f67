// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package oledtext

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomonobold"
)

// DefaultBoldSize keeps a bold line within two 8 pixel rows.
const DefaultBoldSize = 12

// SmallFace returns the 7x13 fixed bitmap font.
func SmallFace() font.Face {
	return basicfont.Face7x13
}

// BoldFace returns Go Mono Bold rasterized at size pixels.
func BoldFace(size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("oledtext: invalid font size %g", size)
	}
	f, err := truetype.Parse(gomonobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("oledtext: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Face returns the face named name: "small" or "bold".
func Face(name string, size float64) (font.Face, error) {
	switch name {
	case "", "bold":
		if size == 0 {
			size = DefaultBoldSize
		}
		return BoldFace(size)
	case "small":
		return SmallFace(), nil
	default:
		return nil, fmt.Errorf("oledtext: unknown font %q", name)
	}
}
