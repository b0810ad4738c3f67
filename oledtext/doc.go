// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package oledtext prints cursor addressed text on a monochrome pixel
// display.
//
// Rows are 8 pixel high pages, the unit the SSD1306 family addresses its
// memory in, and columns are pixels. A line of text spans LineRows() rows
// depending on the font. Every print is flushed to the display right away;
// drivers doing differential updates, like ssd1306, only transfer the
// modified band.
package oledtext
