// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package readout lays out a temperature and voltage reading on a small text
// display.
//
// The layout is fixed: one line per temperature, the bus voltage in
// millivolts, and the device label near the bottom. Values are right aligned
// in fixed width fields so a refresh overwrites the previous value exactly.
package readout
