// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package readout

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"periph.io/x/conn/v3/physic"
)

const (
	// Width is the field width of every value.
	Width = 7
	// Precision is the number of decimals of every value.
	Precision = 1

	// DefaultLabel is printed under the values.
	DefaultLabel = "Linea Mini"

	tempUnit    = " *C"
	voltageUnit = " mV"
)

// TextWriter is a cursor addressed text display, rows being 8 pixel pages
// and columns pixels.
type TextWriter interface {
	Rows() int
	LineRows() int
	SetRow(row int) error
	SetCol(col int) error
	Print(s string) error
	Println(s string) error
	Clear() error
}

// Temp is one derived temperature.
type Temp struct {
	Label string
	Value physic.Temperature
	Err   error
}

// Reading is what one refresh displays.
type Reading struct {
	Voltage physic.ElectricPotential
	// Err is set when the voltage could not be measured.
	Err   error
	Temps []Temp
}

// Line is a text line placed at a row.
type Line struct {
	Row  int
	Text string
}

// Fixed formats v right aligned in width characters with prec decimals.
// Values wider than width are not truncated. NaN and infinities are
// rendered as dashes.
func Fixed(v float64, width, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Placeholder(width, prec)
	}
	return fmt.Sprintf("%*.*f", width, prec, v)
}

// Placeholder returns dashes shaped like a value of Fixed.
func Placeholder(width, prec int) string {
	s := "---"
	if prec > 0 {
		s += "." + strings.Repeat("-", prec)
	}
	if n := width - len(s); n > 0 {
		s = strings.Repeat(" ", n) + s
	}
	return s
}

// Lines returns the layout of r on a display of rows rows, each text line
// taking lineRows rows.
func Lines(r Reading, label string, rows, lineRows int) []Line {
	if lineRows < 1 {
		lineRows = 1
	}
	out := make([]Line, 0, len(r.Temps)+2)
	row := 0
	for _, t := range r.Temps {
		out = append(out, Line{Row: row, Text: tempText(t, len(r.Temps) > 1)})
		row += lineRows
	}
	v := Placeholder(Width, Precision)
	if r.Err == nil {
		v = Fixed(float64(r.Voltage)/float64(physic.MilliVolt), Width, Precision)
	}
	out = append(out, Line{Row: row, Text: v + voltageUnit})
	row += lineRows

	// The label sits one line above the bottom when there is room for it.
	labelRow := rows - lineRows - 1
	if labelRow < row {
		labelRow = row
	}
	if labelRow+lineRows > rows {
		labelRow = rows - lineRows
	}
	if labelRow < 0 {
		labelRow = 0
	}
	return append(out, Line{Row: labelRow, Text: " " + label})
}

func tempText(t Temp, tagged bool) string {
	v := Placeholder(Width, Precision)
	if t.Err == nil {
		v = Fixed(t.Value.Celsius(), Width, Precision)
	}
	s := v + tempUnit
	if tagged && t.Label != "" {
		r, _ := utf8.DecodeRuneInString(t.Label)
		s += " " + string(r)
	}
	return s
}

// Render prints r on w.
func Render(w TextWriter, r Reading, label string) error {
	for _, l := range Lines(r, label, w.Rows(), w.LineRows()) {
		if err := w.SetRow(l.Row); err != nil {
			return err
		}
		if err := w.SetCol(0); err != nil {
			return err
		}
		if err := w.Print(l.Text); err != nil {
			return err
		}
	}
	return nil
}
