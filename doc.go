// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lmtemp is a boiler thermometer for the La Marzocco Linea Mini.
//
// A thermistor divider is read by an INA219 (package ina219), converted to
// a temperature (package thermistor) and shown on an SSD1306 OLED (packages
// oledtext and readout) once a second by package monitor. The program lives
// in cmd/lmtemp.
package lmtemp
