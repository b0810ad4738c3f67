// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package monitor runs the measure, compute, display loop.
//
// Every second the bus voltage of the thermistor divider is read, converted
// to a temperature with each configured calibration and rendered. Failures
// are logged and shown as placeholders; the loop never stops on its own.
package monitor
