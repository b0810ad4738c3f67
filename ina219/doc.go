// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ina219 controls a Texas Instruments INA219 high side current,
// voltage and power monitor over an I²C bus.
//
// The bus voltage input doubles as a general purpose 0-26 V voltmeter, which
// is how the thermistor divider of this repository is measured.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/ina219.pdf
package ina219
