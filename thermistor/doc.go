// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package thermistor converts the voltage measured across an NTC thermistor
// divider into a temperature.
//
// The conversion has two steps: a Divider maps the measured voltage to the
// thermistor resistance, then the Beta form of the Steinhart-Hart equation
// maps the resistance to a temperature:
//
//	1/T = 1/B · ln(R/R0) + 1/T0
//
// with T and T0 in Kelvin.
package thermistor
